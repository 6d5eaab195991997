package v1

import (
	"net/http"

	"github.com/emberhome/panel/registry"
	"github.com/gorilla/mux"
)

type typesController struct {
	registry *registry.Registry
}

func (t *typesController) listTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Types             []registry.Option `json:"types"`
		SensorTypes       []registry.Option `json:"sensorTypes"`
		BinarySensorTypes []registry.Option `json:"binarySensorTypes"`
	}{
		Types:             t.registry.TypeOptions(),
		SensorTypes:       registry.SensorTypeOptions(),
		BinarySensorTypes: registry.BinarySensorTypeOptions(),
	})
}

func (t *typesController) getType(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	spec, found := t.registry.Lookup(id)
	if !found {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, spec)
}
