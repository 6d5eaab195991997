package v1

import (
	"context"

	"github.com/emberhome/panel/statesync"
	"github.com/stretchr/testify/mock"
)

type MockDeviceStore struct {
	mock.Mock
}

func (m *MockDeviceStore) Devices(ctx context.Context) ([]statesync.Device, error) {
	args := m.Called(ctx)

	var devices []statesync.Device
	if args.Get(0) != nil {
		devices = args.Get(0).([]statesync.Device)
	}

	return devices, args.Error(1)
}

func (m *MockDeviceStore) Device(ctx context.Context, id string) (statesync.Device, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(statesync.Device), args.Error(1)
}

func (m *MockDeviceStore) State(ctx context.Context, id string) (map[string]any, error) {
	args := m.Called(ctx, id)

	var state map[string]any
	if args.Get(0) != nil {
		state = args.Get(0).(map[string]any)
	}

	return state, args.Error(1)
}

func (m *MockDeviceStore) CreateDevice(ctx context.Context, create statesync.DeviceCreate) (statesync.Device, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(statesync.Device), args.Error(1)
}

func (m *MockDeviceStore) UpdateDevice(ctx context.Context, id string, update statesync.DeviceUpdate) (statesync.Device, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(statesync.Device), args.Error(1)
}

func (m *MockDeviceStore) EditState(ctx context.Context, id string, state map[string]any) (map[string]any, error) {
	args := m.Called(ctx, id, state)

	var applied map[string]any
	if args.Get(0) != nil {
		applied = args.Get(0).(map[string]any)
	}

	return applied, args.Error(1)
}

func (m *MockDeviceStore) ReloadDevices(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDeviceStore) TriggerDelete(ctx context.Context, id string) (statesync.DeletePhase, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(statesync.DeletePhase), args.Error(1)
}

func (m *MockDeviceStore) CancelDelete(id string) {
	m.Called(id)
}

func (m *MockDeviceStore) DeletePhaseFor(id string) statesync.DeletePhase {
	args := m.Called(id)
	return args.Get(0).(statesync.DeletePhase)
}

func (m *MockDeviceStore) Observe(id string) *statesync.Observer {
	args := m.Called(id)

	if args.Get(0) != nil {
		return args.Get(0).(*statesync.Observer)
	}

	return nil
}
