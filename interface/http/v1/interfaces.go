package v1

import (
	"context"

	"github.com/emberhome/panel/statesync"
)

// DeviceStore is the slice of the synchronization client the HTTP surface
// consumes.
type DeviceStore interface {
	Devices(ctx context.Context) ([]statesync.Device, error)
	Device(ctx context.Context, id string) (statesync.Device, error)
	State(ctx context.Context, id string) (map[string]any, error)

	CreateDevice(ctx context.Context, create statesync.DeviceCreate) (statesync.Device, error)
	UpdateDevice(ctx context.Context, id string, update statesync.DeviceUpdate) (statesync.Device, error)
	EditState(ctx context.Context, id string, state map[string]any) (map[string]any, error)
	ReloadDevices(ctx context.Context) error

	TriggerDelete(ctx context.Context, id string) (statesync.DeletePhase, error)
	CancelDelete(id string)
	DeletePhaseFor(id string) statesync.DeletePhase

	Observe(id string) *statesync.Observer
}

var _ DeviceStore = (*statesync.Store)(nil)
