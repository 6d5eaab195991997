package statesync

import (
	"context"
	"sync"
	"time"

	"github.com/shimmeringbee/logwrap"
)

type QueryKey string

const DeviceListKey QueryKey = "devices"

func DeviceKey(id string) QueryKey {
	return QueryKey("device/" + id)
}

func StateKey(id string) QueryKey {
	return QueryKey("state/" + id)
}

type entry struct {
	value    any
	err      error
	resolved bool
}

// Store is the process wide query cache. Each key caches the last known
// good value, a failed refresh records the error but keeps that value in
// place for callers to render.
type Store struct {
	client       *Client
	bus          EventPublisher
	logger       logwrap.Logger
	pollInterval time.Duration

	lock     sync.Mutex
	entries  map[QueryKey]*entry
	monitors map[string]*monitor
	deletes  map[string]DeletePhase
}

func NewStore(client *Client, bus EventPublisher, logger logwrap.Logger) *Store {
	return &Store{
		client:       client,
		bus:          bus,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		entries:      map[QueryKey]*entry{},
		monitors:     map[string]*monitor{},
		deletes:      map[string]DeletePhase{},
	}
}

func (s *Store) Client() *Client {
	return s.client
}

// Devices is the read through device list query.
func (s *Store) Devices(ctx context.Context) ([]Device, error) {
	value, err := s.resolve(ctx, DeviceListKey, func(ctx context.Context) (any, error) {
		return s.client.ListDevices(ctx)
	})

	devices, _ := value.([]Device)
	return devices, err
}

func (s *Store) Device(ctx context.Context, id string) (Device, error) {
	value, err := s.resolve(ctx, DeviceKey(id), func(ctx context.Context) (any, error) {
		return s.client.GetDevice(ctx, id)
	})

	device, _ := value.(Device)
	return device, err
}

// State is dependent on the device query: it never requests state for a
// device the backend has not confirmed to exist.
func (s *Store) State(ctx context.Context, id string) (map[string]any, error) {
	if _, err := s.Device(ctx, id); err != nil {
		return nil, err
	}

	value, err := s.resolve(ctx, StateKey(id), func(ctx context.Context) (any, error) {
		return s.client.GetState(ctx, id)
	})

	state, _ := value.(map[string]any)
	return state, err
}

func (s *Store) Invalidate(key QueryKey) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.entries, key)
}

// Peek returns the cached value without touching the backend.
func (s *Store) Peek(key QueryKey) (any, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if e, found := s.entries[key]; found && e.resolved {
		return e.value, true
	}

	return nil, false
}

func (s *Store) resolve(ctx context.Context, key QueryKey, fetch func(context.Context) (any, error)) (any, error) {
	s.lock.Lock()

	if e, found := s.entries[key]; found && e.resolved && e.err == nil {
		value := e.value
		s.lock.Unlock()
		return value, nil
	}

	s.lock.Unlock()

	return s.refresh(ctx, key, fetch)
}

// refresh fetches outside the store lock so polls for separate devices do
// not serialise on each other. Reads get exactly one automatic retry,
// mutations never pass through here.
func (s *Store) refresh(ctx context.Context, key QueryKey, fetch func(context.Context) (any, error)) (any, error) {
	value, err := fetch(ctx)
	if err != nil {
		value, err = fetch(ctx)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	e, found := s.entries[key]
	if !found {
		e = &entry{}
		s.entries[key] = e
	}

	if err != nil {
		e.err = err

		if e.resolved {
			return e.value, err
		}

		return nil, err
	}

	e.value = value
	e.err = nil
	e.resolved = true

	return value, nil
}

// Stop cancels all running poll tasks.
func (s *Store) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for id, m := range s.monitors {
		m.shutdownCh <- struct{}{}
		delete(s.monitors, id)
	}
}
