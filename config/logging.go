package config

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// LoggingConfig selects one log destination per file in the logging
// configuration directory, every destination sees the same stream after its
// own level and subsystem filter.
type LoggingConfig struct {
	Name   string `json:"-"`
	Type   string
	Config any
}

func (g *LoggingConfig) UnmarshalJSON(data []byte) error {
	if result := gjson.GetBytes(data, "Type"); !result.Exists() {
		return fmt.Errorf("failed to find logging type information")
	} else {
		g.Type = result.String()
	}

	switch g.Type {
	case "stdout":
		g.Config = &StdoutLogging{}
	case "file":
		g.Config = &FileLogging{}
	default:
		return fmt.Errorf("unknown logging configuration type: %s", g.Type)
	}

	if result := gjson.GetBytes(data, "Config"); result.Exists() {
		return json.Unmarshal([]byte(result.Raw), g.Config)
	} else {
		return fmt.Errorf("unable to find Config stanza: %s", g.Type)
	}
}

// BaseLogging filters what a destination receives. Subsystems lists the
// sources to include, NegateSubsystems inverts the list into an exclusion.
type BaseLogging struct {
	Level string

	NegateSubsystems bool
	Subsystems       []string
}

type StdoutLogging struct {
	BaseLogging
}

// FileLogging writes to a rotated file under the log directory. Size is the
// rotation threshold in megabytes, Backups and Age (days) bound what is
// retained, zero keeps everything.
type FileLogging struct {
	BaseLogging

	Filename string
	Size     int
	Backups  int
	Age      int
	Compress bool
}
