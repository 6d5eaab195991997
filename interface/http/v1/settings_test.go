package v1

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emberhome/panel/config"
	"github.com/emberhome/panel/registry"
	"github.com/emberhome/panel/statesync"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestSettingsController(t *testing.T) {
	t.Run("returns the current settings with defaults filled in", func(t *testing.T) {
		mds := &MockDeviceStore{}

		req := httptest.NewRequest("GET", "/settings", nil)
		rr := httptest.NewRecorder()
		testRouter(t, mds).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		body := rr.Body.String()
		assert.False(t, gjson.Get(body, "debugMode").Bool())
		assert.Equal(t, config.DefaultAPIEndpoint, gjson.Get(body, "apiEndpoint").String())
	})

	t.Run("saving settings notifies the apply hook with the stored values", func(t *testing.T) {
		var applied []config.Settings

		l := logwrap.New(golog.Wrap(log.New(io.Discard, "", 0)))
		router := ConstructRouter(&MockDeviceStore{}, registry.New(), testSettings(t), func(s config.Settings) {
			applied = append(applied, s)
		}, statesync.NewEventBus(), l)

		req := httptest.NewRequest("PUT", "/settings", strings.NewReader(`{"debugMode":true,"apiEndpoint":"http://backend:9000"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, applied, 1)
		assert.True(t, applied[0].DebugMode)
		assert.Equal(t, "http://backend:9000", applied[0].APIEndpoint)
	})

	t.Run("an empty endpoint falls back to the default on save", func(t *testing.T) {
		mds := &MockDeviceStore{}

		req := httptest.NewRequest("PUT", "/settings", strings.NewReader(`{"debugMode":false,"apiEndpoint":""}`))
		rr := httptest.NewRecorder()
		testRouter(t, mds).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, config.DefaultAPIEndpoint, gjson.Get(rr.Body.String(), "apiEndpoint").String())
	})
}
