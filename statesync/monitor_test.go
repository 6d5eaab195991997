package statesync

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_Observe(t *testing.T) {
	t.Run("observing a device polls its state on the fixed interval", func(t *testing.T) {
		var deviceHits, stateHits int64

		s, bus := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/devices/d1/state" {
				atomic.AddInt64(&stateHits, 1)
				w.Write([]byte(`{"state":{"state":"on"}}`))
				return
			}

			atomic.AddInt64(&deviceHits, 1)
			w.Write([]byte(`{"object_id":"d1","type":"light"}`))
		}))
		s.pollInterval = 20 * time.Millisecond

		eventCh := make(chan any, 16)
		bus.Subscribe(eventCh)
		defer bus.Unsubscribe(eventCh)

		observer := s.Observe("d1")
		defer observer.Close()

		time.Sleep(150 * time.Millisecond)

		// one device fetch, then cached; several state polls
		assert.Equal(t, int64(1), atomic.LoadInt64(&deviceHits))
		assert.GreaterOrEqual(t, atomic.LoadInt64(&stateHits), int64(2))

		event := <-eventCh
		updated, ok := event.(StateUpdated)
		assert.True(t, ok)
		assert.Equal(t, "d1", updated.DeviceId)
	})

	t.Run("no state request is ever issued while the device query fails", func(t *testing.T) {
		var stateHits int64

		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/devices/d1/state" {
				atomic.AddInt64(&stateHits, 1)
				w.Write([]byte(`{"state":{}}`))
				return
			}

			http.Error(w, "not ready", http.StatusInternalServerError)
		}))
		s.pollInterval = 20 * time.Millisecond

		observer := s.Observe("d1")
		defer observer.Close()

		time.Sleep(120 * time.Millisecond)

		assert.Equal(t, int64(0), atomic.LoadInt64(&stateHits))
	})

	t.Run("the poll task stops when the last observer closes", func(t *testing.T) {
		var stateHits int64

		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/devices/d1/state" {
				atomic.AddInt64(&stateHits, 1)
				w.Write([]byte(`{"state":{}}`))
				return
			}

			w.Write([]byte(`{"object_id":"d1","type":"light"}`))
		}))
		s.pollInterval = 20 * time.Millisecond

		first := s.Observe("d1")
		second := s.Observe("d1")

		time.Sleep(60 * time.Millisecond)

		first.Close()
		time.Sleep(60 * time.Millisecond)

		// still one observer mounted, polling continues
		midway := atomic.LoadInt64(&stateHits)
		assert.Greater(t, midway, int64(0))

		second.Close()
		time.Sleep(60 * time.Millisecond)

		settled := atomic.LoadInt64(&stateHits)
		time.Sleep(100 * time.Millisecond)

		assert.Equal(t, settled, atomic.LoadInt64(&stateHits))

		s.lock.Lock()
		assert.Empty(t, s.monitors)
		s.lock.Unlock()
	})

	t.Run("closing an observer twice releases the monitor once", func(t *testing.T) {
		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"object_id":"d1","type":"light"}`))
		}))
		s.pollInterval = time.Hour

		first := s.Observe("d1")
		second := s.Observe("d1")

		first.Close()
		first.Close()

		s.lock.Lock()
		_, stillRunning := s.monitors["d1"]
		s.lock.Unlock()

		assert.True(t, stillRunning)

		second.Close()
	})

	t.Run("monitors for different devices run independently", func(t *testing.T) {
		var d1State, d2State int64

		s, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/devices/d1/state":
				atomic.AddInt64(&d1State, 1)
				w.Write([]byte(`{"state":{}}`))
			case "/api/devices/d2/state":
				atomic.AddInt64(&d2State, 1)
				w.Write([]byte(`{"state":{}}`))
			case "/api/devices/d2":
				// d2 never resolves, d1 must keep polling regardless
				http.Error(w, "missing", http.StatusInternalServerError)
			default:
				w.Write([]byte(`{"object_id":"d1","type":"light"}`))
			}
		}))
		s.pollInterval = 20 * time.Millisecond

		one := s.Observe("d1")
		two := s.Observe("d2")
		defer one.Close()
		defer two.Close()

		time.Sleep(120 * time.Millisecond)

		assert.Greater(t, atomic.LoadInt64(&d1State), int64(0))
		assert.Equal(t, int64(0), atomic.LoadInt64(&d2State))
	})
}
