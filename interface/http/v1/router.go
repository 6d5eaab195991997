package v1

import (
	"net/http"

	"github.com/emberhome/panel/config"
	"github.com/emberhome/panel/registry"
	"github.com/emberhome/panel/statesync"
	"github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"
)

func ConstructRouter(store DeviceStore, reg *registry.Registry, settings *config.SettingsStore, applySettings func(config.Settings), eventbus statesync.EventSubscriber, l logwrap.Logger) http.Handler {
	r := mux.NewRouter()

	dc := deviceController{
		store:    store,
		registry: reg,
		settings: settings,
	}

	tc := typesController{registry: reg}

	sc := settingsController{settings: settings, apply: applySettings}

	lc := liveController{
		store:    store,
		registry: reg,
		settings: settings,
		eventbus: eventbus,
		logger:   l,
	}

	r.HandleFunc("/devices", dc.listDevices).Methods("GET")
	r.HandleFunc("/devices", dc.createDevice).Methods("POST")
	r.HandleFunc("/devices/{identifier}", dc.getDevice).Methods("GET")
	r.HandleFunc("/devices/{identifier}", dc.updateDevice).Methods("PUT")
	r.HandleFunc("/devices/{identifier}/state", dc.getState).Methods("GET")
	r.HandleFunc("/devices/{identifier}/state", dc.updateState).Methods("PUT")
	r.HandleFunc("/devices/{identifier}/delete", dc.triggerDelete).Methods("POST")
	r.HandleFunc("/devices/{identifier}/delete/cancel", dc.cancelDelete).Methods("POST")
	r.HandleFunc("/devices/{identifier}/live", lc.serveLiveView).Methods("GET")
	r.HandleFunc("/reload", dc.reload).Methods("POST")

	r.HandleFunc("/types", tc.listTypes).Methods("GET")
	r.HandleFunc("/types/{identifier}", tc.getType).Methods("GET")

	r.HandleFunc("/settings", sc.getSettings).Methods("GET")
	r.HandleFunc("/settings", sc.updateSettings).Methods("PUT")

	return r
}
