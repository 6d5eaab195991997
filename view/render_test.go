package view

import (
	"testing"
	"time"

	"github.com/emberhome/panel/registry"
	"github.com/emberhome/panel/statesync"
	"github.com/emberhome/panel/visualize"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Run("a temperature sensor renders its reading and a synthesised history chart", func(t *testing.T) {
		device := statesync.Device{
			ObjectId:   "temp_lounge",
			Type:       "sensor",
			Name:       "Lounge Temperature",
			SensorType: "temperature",
		}
		state := map[string]any{"state": "21.5"}

		rendered := Render(registry.New(), false, Assemble(device, state))

		assert.Equal(t, "Sensor", rendered.TypeLabel)
		assert.Empty(t, rendered.Placeholder)
		assert.Len(t, rendered.Widgets, 2)

		text, ok := rendered.Widgets[0].Widget.(visualize.Text)
		assert.True(t, ok)
		assert.Equal(t, "21.5", text.Value)

		chart, ok := rendered.Widgets[1].Widget.(visualize.Chart)
		assert.True(t, ok)
		assert.Equal(t, "Lounge Temperature History", chart.Title)
		assert.Equal(t, "°C", chart.Unit)
		assert.Len(t, chart.Series, visualize.DefaultHistoryPoints)
		assert.WithinDuration(t, time.Now(), chart.Series[len(chart.Series)-1].Timestamp, time.Second)
	})

	t.Run("a humidity sensor charts with a percent unit", func(t *testing.T) {
		device := statesync.Device{ObjectId: "hum1", Type: "sensor", SensorType: "humidity"}

		rendered := Render(registry.New(), false, Assemble(device, map[string]any{"state": 45.0}))

		chart, ok := rendered.Widgets[1].Widget.(visualize.Chart)
		assert.True(t, ok)
		assert.Equal(t, "%", chart.Unit)
		assert.Equal(t, "hum1 History", chart.Title)
	})

	t.Run("a sensor with a non numeric reading renders the text but no chart", func(t *testing.T) {
		device := statesync.Device{ObjectId: "s1", Type: "sensor", SensorType: "motion"}

		rendered := Render(registry.New(), false, Assemble(device, map[string]any{"state": "detected"}))

		assert.Len(t, rendered.Widgets, 1)
		assert.Equal(t, registry.KindText, rendered.Widgets[0].Widget.WidgetKind())
	})

	t.Run("an unknown device type renders the placeholder instead of widgets", func(t *testing.T) {
		device := statesync.Device{ObjectId: "t1", Type: "smart_toaster"}

		rendered := Render(registry.New(), false, Assemble(device, map[string]any{"state": "on"}))

		assert.Empty(t, rendered.Widgets)
		assert.Equal(t, NoStatePlaceholder, rendered.Placeholder)
	})

	t.Run("a device with no state falls back to the snapshot on its record", func(t *testing.T) {
		device := statesync.Device{
			ObjectId: "l1",
			Type:     "light",
			State:    map[string]any{"state": "on", "brightness": 200.0},
		}

		rendered := Render(registry.New(), false, Assemble(device, nil))

		assert.Len(t, rendered.Widgets, 2)

		toggle, ok := rendered.Widgets[0].Widget.(visualize.Toggle)
		assert.True(t, ok)
		assert.True(t, toggle.On)

		slider, ok := rendered.Widgets[1].Widget.(visualize.Slider)
		assert.True(t, ok)
		assert.Equal(t, 200.0, slider.Position)
	})

	t.Run("no state at all renders the placeholder", func(t *testing.T) {
		device := statesync.Device{ObjectId: "l1", Type: "light"}

		rendered := Render(registry.New(), false, Assemble(device, nil))

		assert.Empty(t, rendered.Widgets)
		assert.Equal(t, NoStatePlaceholder, rendered.Placeholder)
	})

	t.Run("declared properties absent from the state render nothing", func(t *testing.T) {
		device := statesync.Device{ObjectId: "l1", Type: "light"}

		rendered := Render(registry.New(), false, Assemble(device, map[string]any{"state": "off"}))

		assert.Len(t, rendered.Widgets, 1)
		assert.Equal(t, "state", rendered.Widgets[0].Property)
	})

	t.Run("state keys outside the declared properties render the placeholder", func(t *testing.T) {
		device := statesync.Device{ObjectId: "s1", Type: "switch"}

		rendered := Render(registry.New(), false, Assemble(device, map[string]any{"voltage": 230.0}))

		assert.Empty(t, rendered.Widgets)
		assert.Equal(t, NoStatePlaceholder, rendered.Placeholder)
	})

	t.Run("debug mode shows the raw state document instead of widgets", func(t *testing.T) {
		device := statesync.Device{ObjectId: "l1", Type: "light"}

		rendered := Render(registry.New(), true, Assemble(device, map[string]any{"state": "on"}))

		assert.Empty(t, rendered.Widgets)
		assert.Contains(t, rendered.RawState, `"state": "on"`)
	})

	t.Run("widget ordering follows the type's declared order", func(t *testing.T) {
		device := statesync.Device{ObjectId: "c1", Type: "climate"}
		state := map[string]any{
			"current_temperature": 22.0,
			"mode":                "cool",
			"state":               "on",
			"temperature":         21.0,
		}

		rendered := Render(registry.New(), false, Assemble(device, state))

		var order []string
		for _, widget := range rendered.Widgets {
			order = append(order, widget.Property)
		}

		assert.Equal(t, []string{"state", "temperature", "mode", "current_temperature"}, order)
	})
}
