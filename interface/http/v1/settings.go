package v1

import (
	"encoding/json"
	"net/http"

	"github.com/emberhome/panel/config"
)

type settingsController struct {
	settings *config.SettingsStore

	// apply propagates saved settings to live collaborators, e.g. pointing
	// the backend client at a new base address.
	apply func(config.Settings)
}

func (s *settingsController) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.settings.Current())
}

func (s *settingsController) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings config.Settings

	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := s.settings.Save(settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.apply != nil {
		s.apply(s.settings.Current())
	}

	writeJSON(w, s.settings.Current())
}
