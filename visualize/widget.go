package visualize

import (
	"github.com/emberhome/panel/registry"
)

// Widget is the closed set of render outputs, one per visualization kind.
type Widget interface {
	WidgetKind() registry.Kind
}

type Toggle struct {
	Label     string `json:"label"`
	On        bool   `json:"on"`
	StateText string `json:"stateText"`
}

func (Toggle) WidgetKind() registry.Kind { return registry.KindToggle }

type Slider struct {
	Label string `json:"label"`
	// Value carries the raw reading for display, Position the parsed number
	// used to place the handle. Position is NaN when parsing failed.
	Value    string  `json:"value"`
	Position float64 `json:"position"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Step     float64 `json:"step"`
	Unit     string  `json:"unit,omitempty"`
}

func (Slider) WidgetKind() registry.Kind { return registry.KindSlider }

type Text struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

func (Text) WidgetKind() registry.Kind { return registry.KindText }

type Gauge struct {
	Label    string  `json:"label"`
	Value    string  `json:"value"`
	Position float64 `json:"position"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Unit     string  `json:"unit,omitempty"`
}

func (Gauge) WidgetKind() registry.Kind { return registry.KindGauge }

type Color struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

func (Color) WidgetKind() registry.Kind { return registry.KindColorPicker }

type Chart struct {
	Title  string         `json:"title"`
	Unit   string         `json:"unit,omitempty"`
	Series []HistoryPoint `json:"series"`
}

func (Chart) WidgetKind() registry.Kind { return registry.KindLineChart }
