package statesync

import (
	"context"

	"github.com/google/uuid"
)

// Deleting a device takes two calls: the first arms confirmation locally,
// only the second issues the DELETE. Cancel disarms. The phase lives
// outside the query cache so it never collides with shared query state.

type DeletePhase int

const (
	DeleteIdle DeletePhase = iota
	DeleteArmed
	DeleteInFlight
	DeleteDone
)

func (p DeletePhase) String() string {
	switch p {
	case DeleteIdle:
		return "idle"
	case DeleteArmed:
		return "armed"
	case DeleteInFlight:
		return "deleting"
	case DeleteDone:
		return "gone"
	default:
		return "unknown"
	}
}

func (s *Store) DeletePhaseFor(id string) DeletePhase {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.deletes[id]
}

func (s *Store) TriggerDelete(ctx context.Context, id string) (DeletePhase, error) {
	s.lock.Lock()

	switch s.deletes[id] {
	case DeleteIdle:
		s.deletes[id] = DeleteArmed
		s.lock.Unlock()
		return DeleteArmed, nil

	case DeleteInFlight:
		s.lock.Unlock()
		return DeleteInFlight, nil

	case DeleteArmed:
		s.deletes[id] = DeleteInFlight
		s.lock.Unlock()

	default:
		s.lock.Unlock()
		return DeleteDone, nil
	}

	if err := s.client.DeleteDevice(ctx, id); err != nil {
		s.lock.Lock()
		delete(s.deletes, id)
		s.lock.Unlock()

		return DeleteIdle, err
	}

	s.lock.Lock()
	s.deletes[id] = DeleteDone
	delete(s.entries, DeviceKey(id))
	delete(s.entries, StateKey(id))
	delete(s.entries, DeviceListKey)
	s.lock.Unlock()

	s.bus.Publish(DeviceRemoved{EventId: uuid.New().String(), DeviceId: id})

	return DeleteDone, nil
}

func (s *Store) CancelDelete(id string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.deletes[id] == DeleteArmed {
		delete(s.deletes, id)
	}
}
