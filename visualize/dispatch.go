package visualize

import (
	"fmt"
	"math"
	"strconv"

	"github.com/emberhome/panel/registry"
)

// HistoryProperty is the only property name a lineChart spec resolves for.
const HistoryProperty = "history"

const (
	DefaultMin  = 0
	DefaultMax  = 100
	DefaultStep = 1
)

// Render maps one declared state property to its widget. It is a pure
// function of its inputs: a missing value or an unrecognised kind resolves
// to nothing rather than an error, missing optional data is not a fault.
func Render(spec registry.VisualizationSpec, value any, history []HistoryPoint) (Widget, bool) {
	switch spec.Kind {
	case registry.KindToggle:
		if value == nil {
			return nil, false
		}

		on := value == "on" || value == true

		stateText := "off"
		if on {
			stateText = "on"
		}

		return Toggle{Label: spec.Label, On: on, StateText: stateText}, true

	case registry.KindSlider:
		if value == nil {
			return nil, false
		}

		return Slider{
			Label:    spec.Label,
			Value:    displayValue(value),
			Position: numericValue(value),
			Min:      boundOr(spec.Min, DefaultMin),
			Max:      boundOr(spec.Max, DefaultMax),
			Step:     boundOr(spec.Step, DefaultStep),
			Unit:     spec.Unit,
		}, true

	case registry.KindText:
		if value == nil {
			return nil, false
		}

		return Text{Label: spec.Label, Value: displayValue(value), Unit: spec.Unit}, true

	case registry.KindGauge:
		if value == nil {
			return nil, false
		}

		return Gauge{
			Label:    spec.Label,
			Value:    displayValue(value),
			Position: numericValue(value),
			Min:      boundOr(spec.Min, DefaultMin),
			Max:      boundOr(spec.Max, DefaultMax),
			Unit:     spec.Unit,
		}, true

	case registry.KindColorPicker:
		if value == nil {
			return nil, false
		}

		return Color{Label: spec.Label, Value: value}, true

	case registry.KindLineChart:
		if spec.Property != HistoryProperty || len(history) == 0 {
			return nil, false
		}

		return Chart{Title: spec.Label, Unit: spec.Unit, Series: history}, true

	default:
		return nil, false
	}
}

func boundOr(bound *float64, fallback float64) float64 {
	if bound == nil {
		return fallback
	}

	return *bound
}

// numericValue parses a reading into a float64, returning NaN when the
// reading is not numeric so callers render blank rather than fail.
func numericValue(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func displayValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
