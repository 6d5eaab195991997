package view

import (
	"encoding/json"
	"strconv"

	"github.com/emberhome/panel/registry"
	"github.com/emberhome/panel/statesync"
	"github.com/emberhome/panel/visualize"
)

const NoStatePlaceholder = "No available state data"

type RenderedProperty struct {
	Property string
	Widget   visualize.Widget
}

func (r RenderedProperty) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Widget)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	fields["property"] = r.Property
	fields["kind"] = r.Widget.WidgetKind()

	return json.Marshal(fields)
}

type RenderedView struct {
	Device      statesync.Device   `json:"device"`
	TypeLabel   string             `json:"typeLabel,omitempty"`
	Widgets     []RenderedProperty `json:"widgets,omitempty"`
	Placeholder string             `json:"placeholder,omitempty"`
	RawState    string             `json:"rawState,omitempty"`
}

// Render turns a composite view into the widget list the panel shows. An
// unknown device type or an absent state document renders the placeholder,
// debug mode bypasses widget dispatch and shows the raw state JSON.
func Render(reg *registry.Registry, debugMode bool, composite CompositeDeviceView) RenderedView {
	rendered := RenderedView{Device: composite.Device}

	spec, known := reg.Lookup(composite.Device.Type)
	if known {
		rendered.TypeLabel = spec.Label
	}

	if !known || composite.State == nil {
		rendered.Placeholder = NoStatePlaceholder
		return rendered
	}

	if debugMode {
		rendered.RawState = statesync.FormatStateDocument(composite.State)
		return rendered
	}

	history := sensorHistory(composite)

	for _, property := range spec.PropertyOrder {
		propertySpec := spec.Properties[property]

		widget, ok := visualize.Render(propertySpec, composite.State[property], history)
		if !ok {
			continue
		}

		if chart, isChart := widget.(visualize.Chart); isChart {
			chart.Title = displayName(composite.Device) + " " + propertySpec.Label
			chart.Unit = sensorUnit(composite.Device.SensorType)
			widget = chart
		}

		rendered.Widgets = append(rendered.Widgets, RenderedProperty{Property: property, Widget: widget})
	}

	if len(rendered.Widgets) == 0 {
		rendered.Placeholder = NoStatePlaceholder
	}

	return rendered
}

// sensorHistory synthesises the chart series for sensors with a numeric
// reading. It is recomputed from the current reading on every render.
func sensorHistory(composite CompositeDeviceView) []visualize.HistoryPoint {
	if composite.Device.Type != "sensor" {
		return nil
	}

	raw, found := composite.State["state"]
	if !found {
		return nil
	}

	var base float64

	switch v := raw.(type) {
	case float64:
		base = v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		base = parsed
	default:
		return nil
	}

	return visualize.GenerateHistory(base, visualize.DefaultHistoryPoints)
}

func sensorUnit(sensorType string) string {
	switch sensorType {
	case "temperature":
		return "°C"
	case "humidity":
		return "%"
	default:
		return ""
	}
}

func displayName(device statesync.Device) string {
	if device.Name != "" {
		return device.Name
	}

	return device.ObjectId
}
