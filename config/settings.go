package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

const DefaultAPIEndpoint = "http://localhost:8000"
const DefaultSettingsPermissions = 0600

// Settings is the operator's persisted local record. DebugMode switches the
// panel to raw JSON state rendering, APIEndpoint overrides the backend base
// address for every call.
type Settings struct {
	DebugMode   bool   `json:"debugMode"`
	APIEndpoint string `json:"apiEndpoint"`
}

// SettingsStore loads settings at start up and writes them back on every
// explicit save.
type SettingsStore struct {
	lock    sync.RWMutex
	path    string
	current Settings
}

func LoadSettings(path string) (*SettingsStore, error) {
	s := &SettingsStore{
		path:    path,
		current: Settings{APIEndpoint: DefaultAPIEndpoint},
	}

	if _, err := os.Stat(path); err != nil {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &s.current); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if s.current.APIEndpoint == "" {
		s.current.APIEndpoint = DefaultAPIEndpoint
	}

	return s, nil
}

func (s *SettingsStore) Current() Settings {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.current
}

func (s *SettingsStore) Save(settings Settings) error {
	if settings.APIEndpoint == "" {
		settings.APIEndpoint = DefaultAPIEndpoint
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := safeWriteFile(s.path, data, DefaultSettingsPermissions); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	s.current = settings

	return nil
}

// safeWriteFile stages the new content beside the target and swaps it in by
// rename, so a crash mid write never corrupts the settings file.
func safeWriteFile(name string, data []byte, perm os.FileMode) error {
	ut := time.Now().UnixNano() / int64(time.Millisecond)
	baseName := fmt.Sprintf("%s-%d", name, ut)
	newName := fmt.Sprintf("%s-new", baseName)
	oldName := fmt.Sprintf("%s-old", baseName)

	if err := os.WriteFile(newName, data, perm); err != nil {
		return fmt.Errorf("failed to write new file: %w", err)
	}

	_, err := os.Stat(name)
	oldExists := !os.IsNotExist(err)

	if oldExists {
		if err := os.Rename(name, oldName); err != nil {
			return fmt.Errorf("failed to move old file to temporary location: %w", err)
		}
	}

	if err := os.Rename(newName, name); err != nil {
		return fmt.Errorf("failed to move new file to file location: %w", err)
	}

	if oldExists {
		if err := os.Remove(oldName); err != nil {
			return fmt.Errorf("failed to remove old file: %w", err)
		}
	}

	return nil
}
