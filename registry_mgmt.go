package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emberhome/panel/config"
	"github.com/emberhome/panel/registry"
	"github.com/shimmeringbee/logwrap"
)

// loadDeviceTypeConfigurations overlays operator supplied device types from
// the config directory onto the built in catalogue.
func loadDeviceTypeConfigurations(dir string, reg *registry.Registry, l logwrap.Logger) error {
	if err := os.MkdirAll(dir, DefaultDirectoryPermissions); err != nil {
		return fmt.Errorf("failed to ensure device type configuration directory exists: %w", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory listing for device type configurations: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		fullPath := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read device type configuration file '%s': %w", fullPath, err)
		}

		cfg := config.DeviceTypeConfig{
			Name: strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())),
		}

		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse device type configuration file '%s': %w", fullPath, err)
		}

		reg.Register(cfg.Spec)

		l.LogInfo(context.Background(), "Loaded device type configuration.", logwrap.Datum("name", cfg.Name), logwrap.Datum("type", cfg.Spec.Id))
	}

	return nil
}
