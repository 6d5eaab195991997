package statesync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Mutations are never retried automatically, they may not be idempotent. A
// failed mutation invalidates nothing: the cache keeps rendering the
// pre-mutation value and the error goes back to the operator verbatim.

func (s *Store) CreateDevice(ctx context.Context, create DeviceCreate) (Device, error) {
	device, err := s.client.CreateDevice(ctx, create)
	if err != nil {
		return Device{}, err
	}

	s.Invalidate(DeviceListKey)

	// Identifiers are operator chosen and reusable, a recreation must not
	// inherit the deleted phase of its predecessor.
	s.lock.Lock()
	delete(s.deletes, device.ObjectId)
	s.lock.Unlock()

	s.bus.Publish(DeviceAdded{EventId: uuid.New().String(), Device: device})

	return device, nil
}

func (s *Store) UpdateDevice(ctx context.Context, id string, update DeviceUpdate) (Device, error) {
	device, err := s.client.UpdateDevice(ctx, id, update)
	if err != nil {
		return Device{}, err
	}

	s.Invalidate(DeviceKey(id))
	s.Invalidate(DeviceListKey)

	s.bus.Publish(DeviceUpdated{EventId: uuid.New().String(), DeviceId: id, Device: device})

	return device, nil
}

func (s *Store) EditState(ctx context.Context, id string, state map[string]any) (map[string]any, error) {
	applied, err := s.client.PutState(ctx, id, state)
	if err != nil {
		return nil, err
	}

	s.Invalidate(StateKey(id))

	s.bus.Publish(StateUpdated{EventId: uuid.New().String(), DeviceId: id, State: applied, At: time.Now()})

	return applied, nil
}

func (s *Store) ReloadDevices(ctx context.Context) error {
	if err := s.client.Reload(ctx); err != nil {
		return err
	}

	s.Invalidate(DeviceListKey)

	s.bus.Publish(DevicesReloaded{EventId: uuid.New().String()})

	return nil
}
