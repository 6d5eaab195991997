package statesync

import (
	"encoding/json"
	"fmt"
)

// ParseStateDocument parses operator supplied state JSON at the edit
// boundary. The parse error is returned so callers can show it, a bad edit
// is rejected loudly rather than dropped on the floor.
func ParseStateDocument(text string) (map[string]any, error) {
	var state map[string]any

	if err := json.Unmarshal([]byte(text), &state); err != nil {
		return nil, fmt.Errorf("invalid state document: %w", err)
	}

	return state, nil
}

// FormatStateDocument pretty prints state for the manual editor. Parsing
// the result yields a structurally equal document.
func FormatStateDocument(state map[string]any) string {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(data)
}
