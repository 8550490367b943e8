package api

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"ultrasonic-web/internal/config/components"
	"ultrasonic-web/internal/models"
	"ultrasonic-web/internal/sensor/sensortest"
	"ultrasonic-web/internal/services"
)

type fixedReader struct {
	reading models.AveragedReading
	calls   int
}

func (f *fixedReader) Reading() models.AveragedReading {
	f.calls++
	return f.reading
}

func newTestServer(t *testing.T, reader *fixedReader) *Server {
	t.Helper()
	cfg := components.ServiceConfigImpl{ListenAddr: "127.0.0.1:0"}
	cfg.SetDefaults()

	s, err := NewServer(cfg, reader, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestIndexServesDashboard(t *testing.T) {
	s := newTestServer(t, &fixedReader{})

	rec := serve(s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/api/distance")
	assert.Contains(t, rec.Body.String(), "setRefresh(200)")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestDistanceValid(t *testing.T) {
	reader := &fixedReader{reading: models.AveragedReading{
		Distance:     models.Distance{Centimeters: 18.865, Valid: true},
		Samples:      3,
		ValidSamples: 2,
	}}
	s := newTestServer(t, reader)

	rec := serve(s, http.MethodGet, "/api/distance")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"ok":true,"distance_cm":18.87}`, rec.Body.String())
	assert.Equal(t, 1, reader.calls)
}

func TestDistanceInvalid(t *testing.T) {
	s := newTestServer(t, &fixedReader{reading: models.AveragedReading{Samples: 3}})

	rec := serve(s, http.MethodGet, "/api/distance")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	v, present := body["distance_cm"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestUnknownRoutes(t *testing.T) {
	reader := &fixedReader{}
	s := newTestServer(t, reader)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/missing"},
		{http.MethodGet, "/api/distance/extra"},
		{http.MethodPost, "/api/distance"},
		{http.MethodDelete, "/"},
	} {
		rec := serve(s, tc.method, tc.path)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, notFoundBody, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	}
	assert.Zero(t, reader.calls)
}

// End to end: scripted echo durations through the ranging service to JSON.
func TestDistanceFromScriptedSensor(t *testing.T) {
	sensor := sensortest.NewSensor(1000, 1200, models.NoEcho)
	clock := sensortest.NewClock(time.Now(), 0)
	ranging := services.NewRangingService(sensor, clock, 3, 10*time.Millisecond, zerolog.Nop())

	cfg := components.ServiceConfigImpl{}
	cfg.SetDefaults()
	s, err := NewServer(cfg, ranging, zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/distance", nil))
	assert.Equal(t, "{\"ok\":true,\"distance_cm\":18.87}\n", rec.Body.String())
}

func TestStartAndShutdown(t *testing.T) {
	s := newTestServer(t, &fixedReader{})
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	_, open := <-s.Errors()
	assert.False(t, open)
}

func TestStartReportsBindError(t *testing.T) {
	holder := httptest.NewServer(http.NotFoundHandler())
	defer holder.Close()

	cfg := components.ServiceConfigImpl{ListenAddr: strings.TrimPrefix(holder.URL, "http://")}
	cfg.SetDefaults()
	s, err := NewServer(cfg, &fixedReader{}, zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, s.Start())
}

func TestLiveRequest(t *testing.T) {
	s := newTestServer(t, &fixedReader{reading: models.AveragedReading{
		Distance: models.Distance{Centimeters: 42.004, Valid: true},
	}})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/distance")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"distance_cm":42}`, string(body))
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	cfg := components.ServiceConfigImpl{}
	cfg.SetDefaults()
	s, err := NewServer(cfg, &fixedReader{}, zerolog.New(&buf))
	require.NoError(t, err)

	rec := serve(s, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "/missing", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, float64(len(notFoundBody)), entry["bytes"])
	assert.Equal(t, rec.Header().Get(requestIDHeader), entry["request_id"])
	assert.NotEmpty(t, entry["request_id"])
}
