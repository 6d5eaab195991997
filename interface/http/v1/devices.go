package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/emberhome/panel/config"
	"github.com/emberhome/panel/registry"
	"github.com/emberhome/panel/statesync"
	"github.com/emberhome/panel/view"
	"github.com/gorilla/mux"
)

type deviceController struct {
	store    DeviceStore
	registry *registry.Registry
	settings *config.SettingsStore
}

func (d *deviceController) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := d.store.Devices(r.Context())
	if err != nil && devices == nil {
		writeError(w, err)
		return
	}

	debugMode := d.settings.Current().DebugMode

	views := make([]view.RenderedView, 0, len(devices))
	for _, device := range devices {
		views = append(views, view.Render(d.registry, debugMode, view.Assemble(device, nil)))
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].Device.ObjectId < views[j].Device.ObjectId
	})

	writeJSON(w, views)
}

func (d *deviceController) getDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	device, err := d.store.Device(r.Context(), id)
	if err != nil {
		if errors.Is(err, statesync.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			writeError(w, err)
		}
		return
	}

	// A failed state query is not fatal here, rendering falls back to the
	// snapshot embedded in the device record.
	state, _ := d.store.State(r.Context(), id)

	rendered := view.Render(d.registry, d.settings.Current().DebugMode, view.Assemble(device, state))

	writeJSON(w, struct {
		view.RenderedView
		DeletePhase string `json:"deletePhase"`
	}{
		RenderedView: rendered,
		DeletePhase:  d.store.DeletePhaseFor(id).String(),
	})
}

func (d *deviceController) createDevice(w http.ResponseWriter, r *http.Request) {
	var create statesync.DeviceCreate

	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if create.Type == "" || create.ObjectId == "" {
		http.Error(w, "type and object_id are required", http.StatusBadRequest)
		return
	}

	device, err := d.store.CreateDevice(r.Context(), create)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.WriteHeader(http.StatusCreated)

	data, _ := json.Marshal(device)
	w.Write(data)
}

func (d *deviceController) updateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var update statesync.DeviceUpdate

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	device, err := d.store.UpdateDevice(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, statesync.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			writeError(w, err)
		}
		return
	}

	writeJSON(w, device)
}

func (d *deviceController) getState(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	state, err := d.store.State(r.Context(), id)
	if err != nil && state == nil {
		if errors.Is(err, statesync.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			writeError(w, err)
		}
		return
	}

	writeJSON(w, struct {
		State    map[string]any `json:"state"`
		Document string         `json:"document"`
	}{
		State:    state,
		Document: statesync.FormatStateDocument(state),
	})
}

func (d *deviceController) updateState(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	state, err := statesync.ParseStateDocument(string(data))
	if err != nil {
		// The parse failure goes back to the operator, a bad edit is
		// rejected visibly rather than dropped.
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	applied, err := d.store.EditState(r.Context(), id, state)
	if err != nil {
		if errors.Is(err, statesync.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			writeError(w, err)
		}
		return
	}

	writeJSON(w, statesync.StateDocument{State: applied})
}

func (d *deviceController) triggerDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	phase, err := d.store.TriggerDelete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, deletePhaseResponse{Phase: phase.String()})
}

func (d *deviceController) cancelDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	d.store.CancelDelete(id)

	writeJSON(w, deletePhaseResponse{Phase: d.store.DeletePhaseFor(id).String()})
}

func (d *deviceController) reload(w http.ResponseWriter, r *http.Request) {
	if err := d.store.ReloadDevices(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type deletePhaseResponse struct {
	Phase string `json:"phase"`
}

func writeJSON(w http.ResponseWriter, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

// writeError relays the failure message verbatim, the operator sees what
// the backend said.
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadGateway)
}
