package config

import (
	"encoding/json"
	"fmt"

	"github.com/emberhome/panel/registry"
	"github.com/tidwall/gjson"
)

// DeviceTypeConfig decodes an operator supplied device type file. The
// visualization kind of every property is checked here, a bad kind fails
// the file load instead of silently rendering nothing later.
type DeviceTypeConfig struct {
	Name string `json:"-"`
	Spec registry.DeviceTypeSpec
}

func (t *DeviceTypeConfig) UnmarshalJSON(data []byte) error {
	if result := gjson.GetBytes(data, "id"); !result.Exists() {
		return fmt.Errorf("failed to find device type id")
	}

	var spec registry.DeviceTypeSpec

	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to parse device type: %w", err)
	}

	var order []string
	var kindErr error

	gjson.GetBytes(data, "stateProperties").ForEach(func(key, value gjson.Result) bool {
		kind := registry.Kind(value.Get("type").String())

		if !registry.KnownKind(kind) {
			kindErr = fmt.Errorf("unknown visualization kind '%s' for property '%s'", kind, key.String())
			return false
		}

		order = append(order, key.String())
		return true
	})

	if kindErr != nil {
		return kindErr
	}

	if len(spec.PropertyOrder) == 0 {
		spec.PropertyOrder = order
	}

	for name, property := range spec.Properties {
		if property.Property == "" {
			property.Property = name
			spec.Properties[name] = property
		}
	}

	t.Spec = spec

	return nil
}
