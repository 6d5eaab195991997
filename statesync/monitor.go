package statesync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shimmeringbee/logwrap"
)

const DefaultPollInterval = 5 * time.Second

type monitor struct {
	deviceId   string
	refs       int
	shutdownCh chan struct{}
}

// Observer is one mounted view of a device. The first observer of a device
// starts its poll task, closing the last one cancels it.
type Observer struct {
	store    *Store
	deviceId string
	closed   bool
}

func (s *Store) Observe(id string) *Observer {
	s.lock.Lock()
	defer s.lock.Unlock()

	m, found := s.monitors[id]
	if !found {
		m = &monitor{deviceId: id, shutdownCh: make(chan struct{}, 1)}
		s.monitors[id] = m

		go s.runMonitor(m)
	}

	m.refs++

	return &Observer{store: s, deviceId: id}
}

func (o *Observer) Close() {
	o.store.lock.Lock()
	defer o.store.lock.Unlock()

	if o.closed {
		return
	}
	o.closed = true

	m, found := o.store.monitors[o.deviceId]
	if !found {
		return
	}

	m.refs--
	if m.refs <= 0 {
		delete(o.store.monitors, o.deviceId)
		m.shutdownCh <- struct{}{}
	}
}

func (s *Store) runMonitor(m *monitor) {
	s.pollDevice(m.deviceId)

	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			s.pollDevice(m.deviceId)
		case <-m.shutdownCh:
			return
		}
	}
}

// pollDevice refreshes one device's state. The state query only runs once
// the device query has resolved, a failing device fetch is retried on the
// next tick instead.
func (s *Store) pollDevice(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pollInterval)
	defer cancel()

	if _, err := s.Device(ctx, id); err != nil {
		s.logger.LogWarn(ctx, "Device query failed, state poll skipped.", logwrap.Datum("device", id), logwrap.Err(err))
		return
	}

	value, err := s.refresh(ctx, StateKey(id), func(ctx context.Context) (any, error) {
		return s.client.GetState(ctx, id)
	})
	if err != nil {
		s.logger.LogWarn(ctx, "State poll failed, keeping last known state.", logwrap.Datum("device", id), logwrap.Err(err))
		return
	}

	state, _ := value.(map[string]any)

	s.bus.Publish(StateUpdated{
		EventId:  uuid.New().String(),
		DeviceId: id,
		State:    state,
		At:       time.Now(),
	})
}
