package view

import (
	"github.com/emberhome/panel/statesync"
)

// CompositeDeviceView is the merged, render ready combination of a device's
// static record and its latest polled state. It is derived on every render
// and never stored.
type CompositeDeviceView struct {
	Device statesync.Device
	State  map[string]any
}

// Assemble joins the two cache entries for one device. When the state query
// has nothing, the snapshot embedded in the device record (if any) is used
// instead.
func Assemble(device statesync.Device, state map[string]any) CompositeDeviceView {
	if state == nil {
		state = device.State
	}

	return CompositeDeviceView{Device: device, State: state}
}
