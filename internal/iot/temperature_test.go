package iot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sensorPlatform struct {
	logins       atomic.Int32
	readings     atomic.Int32
	temperature  atomic.Value
	failReadings atomic.Bool
}

func newSensorPlatform(t *testing.T) (*sensorPlatform, *Client) {
	t.Helper()

	platform := &sensorPlatform{}
	platform.temperature.Store("4.2")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "sensor-user", creds["username"])

		platform.logins.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"token": "jwt-token"})
	})
	mux.HandleFunc("/api/plugins/telemetry/DEVICE/dev-1/values/timeseries", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("X-Authorization"))

		platform.readings.Add(1)
		if platform.failReadings.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"Temperature": []map[string]string{{"value": platform.temperature.Load().(string)}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "sensor-user", "sensor-pass", "dev-1",
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	return platform, client
}

func TestTemperature_CachesReading(t *testing.T) {
	platform, client := newSensorPlatform(t)

	clock := time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return clock }

	reading, err := client.Temperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.2", reading)

	// Within the TTL the platform is not called again, even when the stored
	// value changes.
	platform.temperature.Store("5.0")
	clock = clock.Add(10 * time.Minute)

	reading, err = client.Temperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.2", reading)
	assert.Equal(t, int32(1), platform.readings.Load())

	// Past the TTL the reading is refreshed.
	clock = clock.Add(15 * time.Minute)

	reading, err = client.Temperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5.0", reading)
	assert.Equal(t, int32(2), platform.readings.Load())
}

func TestTemperature_ReusesAuthToken(t *testing.T) {
	platform, client := newSensorPlatform(t)

	clock := time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return clock }

	_, err := client.Temperature(context.Background())
	require.NoError(t, err)

	// A reading refresh inside the token TTL must not log in again.
	clock = clock.Add(25 * time.Minute)

	_, err = client.Temperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), platform.logins.Load())

	// Past the token TTL a new login happens.
	clock = clock.Add(45 * time.Minute)

	_, err = client.Temperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), platform.logins.Load())
}

func TestTemperature_ServesStaleReadingOnRefreshFailure(t *testing.T) {
	platform, client := newSensorPlatform(t)

	clock := time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return clock }

	reading, err := client.Temperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.2", reading)

	clock = clock.Add(25 * time.Minute)
	platform.failReadings.Store(true)

	reading, err = client.Temperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.2", reading)
}

func TestTemperature_NoStaleReadingPropagatesError(t *testing.T) {
	platform, client := newSensorPlatform(t)
	platform.failReadings.Store(true)

	_, err := client.Temperature(context.Background())
	assert.Error(t, err)
}
