package statesync

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_TriggerDelete(t *testing.T) {
	t.Run("the first trigger only arms confirmation, the second issues one delete", func(t *testing.T) {
		var deletes int64

		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "DELETE" {
				atomic.AddInt64(&deletes, 1)
				assert.Equal(t, "/api/devices/d1", r.URL.Path)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			w.Write([]byte(`[]`))
		}))

		phase, err := s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)
		assert.Equal(t, DeleteArmed, phase)
		assert.Equal(t, int64(0), atomic.LoadInt64(&deletes))

		phase, err = s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)
		assert.Equal(t, DeleteDone, phase)
		assert.Equal(t, int64(1), atomic.LoadInt64(&deletes))
	})

	t.Run("cancel between the two triggers disarms and nothing is ever issued", func(t *testing.T) {
		var deletes int64

		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "DELETE" {
				atomic.AddInt64(&deletes, 1)
			}
			w.WriteHeader(http.StatusNoContent)
		}))

		phase, err := s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)
		assert.Equal(t, DeleteArmed, phase)

		s.CancelDelete("d1")
		assert.Equal(t, DeleteIdle, s.DeletePhaseFor("d1"))

		assert.Equal(t, int64(0), atomic.LoadInt64(&deletes))
	})

	t.Run("a failed delete returns to idle and reports the error", func(t *testing.T) {
		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "DELETE" {
				http.Error(w, "device is busy", http.StatusConflict)
				return
			}
			w.Write([]byte(`[]`))
		}))

		_, err := s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)

		phase, err := s.TriggerDelete(context.Background(), "d1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "device is busy")
		assert.Equal(t, DeleteIdle, phase)
		assert.Equal(t, DeleteIdle, s.DeletePhaseFor("d1"))
	})

	t.Run("a successful delete removes the device's cache entries and announces the removal", func(t *testing.T) {
		var listGets int64

		s, bus := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == "DELETE":
				w.WriteHeader(http.StatusNoContent)
			case r.URL.Path == "/api/devices":
				atomic.AddInt64(&listGets, 1)
				w.Write([]byte(`[{"object_id":"d1","type":"light"}]`))
			default:
				w.Write([]byte(`{"object_id":"d1","type":"light"}`))
			}
		}))

		eventCh := make(chan any, 1)
		bus.Subscribe(eventCh)
		defer bus.Unsubscribe(eventCh)

		_, _ = s.Devices(context.Background())
		_, _ = s.Device(context.Background(), "d1")

		_, _ = s.TriggerDelete(context.Background(), "d1")
		phase, err := s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)
		assert.Equal(t, DeleteDone, phase)

		_, found := s.Peek(DeviceKey("d1"))
		assert.False(t, found)

		_, found = s.Peek(DeviceListKey)
		assert.False(t, found)

		event := <-eventCh
		removed, ok := event.(DeviceRemoved)
		assert.True(t, ok)
		assert.Equal(t, "d1", removed.DeviceId)
	})

	t.Run("a recreated device starts over at idle and can be deleted again", func(t *testing.T) {
		var deletes int64

		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case "DELETE":
				atomic.AddInt64(&deletes, 1)
				w.WriteHeader(http.StatusNoContent)
			case "POST":
				w.Write([]byte(`{"object_id":"d1","type":"light"}`))
			default:
				w.Write([]byte(`[]`))
			}
		}))

		_, _ = s.TriggerDelete(context.Background(), "d1")
		phase, err := s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)
		assert.Equal(t, DeleteDone, phase)

		_, err = s.CreateDevice(context.Background(), DeviceCreate{Type: "light", ObjectId: "d1"})
		assert.NoError(t, err)
		assert.Equal(t, DeleteIdle, s.DeletePhaseFor("d1"))

		phase, err = s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)
		assert.Equal(t, DeleteArmed, phase)
		assert.Equal(t, int64(1), atomic.LoadInt64(&deletes))

		phase, err = s.TriggerDelete(context.Background(), "d1")
		assert.NoError(t, err)
		assert.Equal(t, DeleteDone, phase)
		assert.Equal(t, int64(2), atomic.LoadInt64(&deletes))
	})

	t.Run("cancel does nothing once the device is gone", func(t *testing.T) {
		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		_, _ = s.TriggerDelete(context.Background(), "d1")
		_, _ = s.TriggerDelete(context.Background(), "d1")

		s.CancelDelete("d1")
		assert.Equal(t, DeleteDone, s.DeletePhaseFor("d1"))
	})
}
