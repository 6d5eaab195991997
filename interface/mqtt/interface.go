package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emberhome/panel/statesync"
	"github.com/shimmeringbee/logwrap"
)

type Publisher func(ctx context.Context, topic string, payload []byte) error

func EmptyPublisher(ctx context.Context, topic string, payload []byte) error {
	return nil
}

const DefaultPublishTimeout = 10 * time.Second
const EventBufferSize = 64

type DeviceReader interface {
	Devices(ctx context.Context) ([]statesync.Device, error)
}

// Interface mirrors device records and polled state onto MQTT topics so
// other home automation consumers can follow the panel's view of the world.
type Interface struct {
	Publisher Publisher

	DeviceReader    DeviceReader
	EventSubscriber statesync.EventSubscriber
	Logger          logwrap.Logger

	PublishStateOnConnect bool

	eventCh chan any
	stop    chan bool
}

func (i *Interface) Start() {
	i.eventCh = make(chan any, EventBufferSize)
	i.stop = make(chan bool, 1)

	i.EventSubscriber.Subscribe(i.eventCh)

	go i.serviceEvents()
}

func (i *Interface) Stop() {
	i.EventSubscriber.Unsubscribe(i.eventCh)
	i.stop <- true
}

func (i *Interface) Connected(ctx context.Context, publisher Publisher) error {
	i.Publisher = publisher

	if i.PublishStateOnConnect {
		i.Logger.LogInfo(ctx, "MQTT connected, publishing current state of all devices.")
		go i.publishAll()
	}

	return nil
}

func (i *Interface) Disconnected() {
	i.Publisher = EmptyPublisher
}

func (i *Interface) serviceEvents() {
	for {
		select {
		case event := <-i.eventCh:
			ctx, cancel := context.WithTimeout(context.Background(), DefaultPublishTimeout)

			switch e := event.(type) {
			case statesync.StateUpdated:
				i.publishState(ctx, e.DeviceId, e.State)
			case statesync.DeviceAdded:
				i.publishDevice(ctx, e.Device)
			case statesync.DeviceUpdated:
				i.publishDevice(ctx, e.Device)
			case statesync.DeviceRemoved:
				i.publishRemoval(ctx, e.DeviceId)
			}

			cancel()

		case <-i.stop:
			return
		}
	}
}

func (i *Interface) publishAll() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultPublishTimeout)
	defer cancel()

	devices, err := i.DeviceReader.Devices(ctx)
	if err != nil {
		i.Logger.LogError(ctx, "Failed to list devices for initial publish.", logwrap.Err(err))
		return
	}

	for _, device := range devices {
		i.publishDevice(ctx, device)

		if device.State != nil {
			i.publishState(ctx, device.ObjectId, device.State)
		}
	}
}

func (i *Interface) publishDevice(ctx context.Context, device statesync.Device) {
	payload, err := json.Marshal(device)
	if err != nil {
		i.Logger.LogError(ctx, "Failed to marshal device for publish.", logwrap.Datum("device", device.ObjectId), logwrap.Err(err))
		return
	}

	topic := fmt.Sprintf("devices/%s/meta", device.ObjectId)

	if err := i.Publisher(ctx, topic, payload); err != nil {
		i.Logger.LogError(ctx, "Failed to publish device record.", logwrap.Datum("topic", topic), logwrap.Err(err))
	}
}

func (i *Interface) publishState(ctx context.Context, id string, state map[string]any) {
	payload, err := json.Marshal(statesync.StateDocument{State: state})
	if err != nil {
		i.Logger.LogError(ctx, "Failed to marshal state for publish.", logwrap.Datum("device", id), logwrap.Err(err))
		return
	}

	topic := fmt.Sprintf("devices/%s/state", id)

	if err := i.Publisher(ctx, topic, payload); err != nil {
		i.Logger.LogError(ctx, "Failed to publish device state.", logwrap.Datum("topic", topic), logwrap.Err(err))
	}
}

// publishRemoval clears both topics so consumers drop retained copies.
func (i *Interface) publishRemoval(ctx context.Context, id string) {
	for _, topic := range []string{fmt.Sprintf("devices/%s/meta", id), fmt.Sprintf("devices/%s/state", id)} {
		if err := i.Publisher(ctx, topic, nil); err != nil {
			i.Logger.LogError(ctx, "Failed to publish device removal.", logwrap.Datum("topic", topic), logwrap.Err(err))
		}
	}
}
