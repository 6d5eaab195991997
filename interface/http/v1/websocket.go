package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/emberhome/panel/config"
	"github.com/emberhome/panel/registry"
	"github.com/emberhome/panel/statesync"
	"github.com/emberhome/panel/view"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shimmeringbee/logwrap"
)

var wsUpgrader = websocket.Upgrader{}

const LiveViewEventBufferSize = 16
const LiveViewInitialFetchTimeout = 5 * time.Second

// liveController streams a device's rendered view over a websocket. The
// connection counts as one observer of the device: connecting starts (or
// joins) the poll task, disconnecting releases it.
type liveController struct {
	store    DeviceStore
	registry *registry.Registry
	settings *config.SettingsStore
	eventbus statesync.EventSubscriber
	logger   logwrap.Logger
}

type liveMessage struct {
	Type string             `json:"type"`
	View *view.RenderedView `json:"view,omitempty"`
}

func (l *liveController) serveLiveView(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer c.Close()

	l.handleConnection(c, id)
}

func (l *liveController) handleConnection(c *websocket.Conn, id string) {
	observer := l.store.Observe(id)
	defer observer.Close()

	eventsCh := make(chan any, LiveViewEventBufferSize)
	shutdownCh := make(chan struct{})

	l.eventbus.Subscribe(eventsCh)
	defer l.eventbus.Unsubscribe(eventsCh)

	go l.serviceOutgoing(c, id, eventsCh, shutdownCh)

	// Closed rather than signalled, serviceOutgoing may already have exited
	// on a write failure and a send would block the cleanup forever.
	defer close(shutdownCh)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (l *liveController) serviceOutgoing(c *websocket.Conn, id string, ch chan any, shutCh chan struct{}) {
	if !l.sendView(c, id) {
		return
	}

	for {
		select {
		case event := <-ch:
			switch e := event.(type) {
			case statesync.StateUpdated:
				if e.DeviceId != id {
					continue
				}
			case statesync.DeviceUpdated:
				if e.DeviceId != id {
					continue
				}
			case statesync.DeviceRemoved:
				if e.DeviceId != id {
					continue
				}

				if err := l.writeMessage(c, liveMessage{Type: "removed"}); err != nil {
					l.logger.LogError(context.Background(), "Failed to send removal to websocket.", logwrap.Err(err))
				}

				c.Close()
				return
			default:
				continue
			}

			if !l.sendView(c, id) {
				return
			}

		case <-shutCh:
			return
		}
	}
}

func (l *liveController) sendView(c *websocket.Conn, id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), LiveViewInitialFetchTimeout)
	defer cancel()

	device, err := l.store.Device(ctx, id)
	if err != nil {
		l.logger.LogWarn(ctx, "Failed to resolve device for live view.", logwrap.Datum("device", id), logwrap.Err(err))
		return false
	}

	state, _ := l.store.State(ctx, id)

	rendered := view.Render(l.registry, l.settings.Current().DebugMode, view.Assemble(device, state))

	if err := l.writeMessage(c, liveMessage{Type: "view", View: &rendered}); err != nil {
		l.logger.LogError(ctx, "Failed to send view to websocket.", logwrap.Err(err))
		return false
	}

	return true
}

func (l *liveController) writeMessage(c *websocket.Conn, message liveMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return c.WriteMessage(websocket.TextMessage, data)
}
