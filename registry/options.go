package registry

// Static vocabularies for the sensor type pickers. These are curated lists,
// not derived from the backend.

func SensorTypeOptions() []Option {
	return []Option{
		{Label: "Temperature", Value: "temperature"},
		{Label: "Humidity", Value: "humidity"},
		{Label: "Illuminance", Value: "illuminance"},
		{Label: "Pressure", Value: "pressure"},
		{Label: "Battery", Value: "battery"},
		{Label: "Power", Value: "power"},
		{Label: "Voltage", Value: "voltage"},
		{Label: "Current", Value: "current"},
		{Label: "Energy", Value: "energy"},
		{Label: "Gas", Value: "gas"},
		{Label: "Water", Value: "water"},
	}
}

func BinarySensorTypeOptions() []Option {
	return []Option{
		{Label: "Motion", Value: "motion"},
		{Label: "Door", Value: "door"},
		{Label: "Smoke", Value: "smoke"},
		{Label: "Moisture", Value: "moisture"},
		{Label: "Presence", Value: "presence"},
		{Label: "Battery", Value: "battery"},
		{Label: "Plug", Value: "plug"},
	}
}
