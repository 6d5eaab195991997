package registry

// Kind selects the rendering strategy for a single state property.
type Kind string

const (
	KindToggle      Kind = "toggle"
	KindSlider      Kind = "slider"
	KindText        Kind = "text"
	KindLineChart   Kind = "lineChart"
	KindGauge       Kind = "gauge"
	KindColorPicker Kind = "colorPicker"
)

func KnownKind(k Kind) bool {
	switch k {
	case KindToggle, KindSlider, KindText, KindLineChart, KindGauge, KindColorPicker:
		return true
	default:
		return false
	}
}

type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

type VisualizationSpec struct {
	Kind     Kind     `json:"type"`
	Label    string   `json:"label"`
	Property string   `json:"property"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Step     *float64 `json:"step,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Options  []Option `json:"options,omitempty"`
}

type DeviceTypeSpec struct {
	Id          string                       `json:"id"`
	Label       string                       `json:"label"`
	Icon        string                       `json:"icon"`
	Description string                       `json:"description"`
	Properties  map[string]VisualizationSpec `json:"stateProperties"`

	// PropertyOrder fixes the widget ordering, Properties alone cannot.
	PropertyOrder []string `json:"propertyOrder,omitempty"`

	// Advisory only, nothing checks incoming state against these.
	RequiredProperties []string `json:"requiredProperties"`
	OptionalProperties []string `json:"optionalProperties"`
}

// Registry is the fixed catalogue of device types. It is populated at start
// up and read only afterwards, lookups for unknown types simply miss.
type Registry struct {
	types map[string]DeviceTypeSpec
	order []string
}

func New() *Registry {
	r := &Registry{types: map[string]DeviceTypeSpec{}}

	for _, spec := range builtInTypes() {
		r.Register(spec)
	}

	return r
}

func (r *Registry) Register(spec DeviceTypeSpec) {
	if _, present := r.types[spec.Id]; !present {
		r.order = append(r.order, spec.Id)
	}

	if len(spec.PropertyOrder) == 0 {
		for name := range spec.Properties {
			spec.PropertyOrder = append(spec.PropertyOrder, name)
		}
	}

	r.types[spec.Id] = spec
}

func (r *Registry) Lookup(deviceType string) (DeviceTypeSpec, bool) {
	spec, found := r.types[deviceType]
	return spec, found
}

func (r *Registry) TypeOptions() []Option {
	var options []Option

	for _, id := range r.order {
		options = append(options, Option{Label: r.types[id].Label, Value: id})
	}

	return options
}

func float(v float64) *float64 {
	return &v
}

func builtInTypes() []DeviceTypeSpec {
	return []DeviceTypeSpec{
		{
			Id:          "light",
			Label:       "Light",
			Icon:        "lightbulb",
			Description: "Controls power and brightness of a light",
			Properties: map[string]VisualizationSpec{
				"state":      {Kind: KindToggle, Label: "Power", Property: "state"},
				"brightness": {Kind: KindSlider, Label: "Brightness", Property: "brightness", Min: float(0), Max: float(255), Step: float(1)},
				"color_temp": {Kind: KindSlider, Label: "Colour temperature", Property: "color_temp", Min: float(153), Max: float(500), Step: float(1)},
				"rgb_color":  {Kind: KindColorPicker, Label: "Colour", Property: "rgb_color"},
			},
			PropertyOrder:      []string{"state", "brightness", "color_temp", "rgb_color"},
			RequiredProperties: []string{},
			OptionalProperties: []string{"brightness", "color_temp", "rgb_color"},
		},
		{
			Id:          "sensor",
			Label:       "Sensor",
			Icon:        "thermometer",
			Description: "Reports an environmental reading",
			Properties: map[string]VisualizationSpec{
				"state":   {Kind: KindText, Label: "Current value", Property: "state"},
				"history": {Kind: KindLineChart, Label: "History", Property: "history"},
			},
			PropertyOrder:      []string{"state", "history"},
			RequiredProperties: []string{"sensor_type"},
			OptionalProperties: []string{},
		},
		{
			Id:          "binary_sensor",
			Label:       "Binary sensor",
			Icon:        "bell",
			Description: "Reports an on/off condition",
			Properties: map[string]VisualizationSpec{
				"state": {Kind: KindToggle, Label: "State", Property: "state"},
			},
			PropertyOrder:      []string{"state"},
			RequiredProperties: []string{"sensor_type"},
			OptionalProperties: []string{},
		},
		{
			Id:          "switch",
			Label:       "Switch",
			Icon:        "toggle-left",
			Description: "Controls the power state of a device",
			Properties: map[string]VisualizationSpec{
				"state": {Kind: KindToggle, Label: "Power", Property: "state"},
			},
			PropertyOrder:      []string{"state"},
			RequiredProperties: []string{},
			OptionalProperties: []string{},
		},
		{
			Id:          "climate",
			Label:       "Climate",
			Icon:        "air-vent",
			Description: "Controls temperature and mode of a climate unit",
			Properties: map[string]VisualizationSpec{
				"state":       {Kind: KindToggle, Label: "Power", Property: "state"},
				"temperature": {Kind: KindSlider, Label: "Target temperature", Property: "temperature", Min: float(16), Max: float(30), Step: float(0.5), Unit: "°C"},
				"mode": {Kind: KindText, Label: "Mode", Property: "mode", Options: []Option{
					{Label: "Cool", Value: "cool"},
					{Label: "Heat", Value: "heat"},
					{Label: "Auto", Value: "auto"},
					{Label: "Fan only", Value: "fan_only"},
					{Label: "Dry", Value: "dry"},
				}},
				"fan_mode": {Kind: KindText, Label: "Fan speed", Property: "fan_mode", Options: []Option{
					{Label: "Auto", Value: "auto"},
					{Label: "Low", Value: "low"},
					{Label: "Medium", Value: "medium"},
					{Label: "High", Value: "high"},
				}},
				"current_temperature": {Kind: KindGauge, Label: "Current temperature", Property: "current_temperature", Min: float(0), Max: float(40), Unit: "°C"},
			},
			PropertyOrder:      []string{"state", "temperature", "mode", "fan_mode", "current_temperature"},
			RequiredProperties: []string{},
			OptionalProperties: []string{"temperature", "mode", "fan_mode", "current_temperature"},
		},
	}
}
