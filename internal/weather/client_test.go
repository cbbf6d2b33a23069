package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywise/flightnet/pkg/logger"
)

func forecastServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClientForecast(t *testing.T) {
	server := forecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "43.6777", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-79.6248", r.URL.Query().Get("longitude"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min", r.URL.Query().Get("daily"))
		assert.Equal(t, "1", r.URL.Query().Get("forecast_days"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"daily":{"temperature_2m_max":[24.1],"temperature_2m_min":[15.3]}}`))
	})

	client := NewClient(Config{APIBaseURL: server.URL}, logger.NewNop())

	forecast, err := client.Forecast(context.Background(), 43.6777, -79.6248)
	require.NoError(t, err)
	assert.Equal(t, 24.1, forecast.High)
	assert.Equal(t, 15.3, forecast.Low)
}

func TestClientForecastServerError(t *testing.T) {
	server := forecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewClient(Config{APIBaseURL: server.URL}, logger.NewNop())

	_, err := client.Forecast(context.Background(), 43.6777, -79.6248)
	assert.Error(t, err)
}

func TestClientForecastEmptyData(t *testing.T) {
	server := forecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily":{"temperature_2m_max":[],"temperature_2m_min":[]}}`))
	})

	client := NewClient(Config{APIBaseURL: server.URL}, logger.NewNop())

	_, err := client.Forecast(context.Background(), 43.6777, -79.6248)
	assert.Error(t, err)
}

func TestClientForecastMalformedBody(t *testing.T) {
	server := forecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	client := NewClient(Config{APIBaseURL: server.URL}, logger.NewNop())

	_, err := client.Forecast(context.Background(), 43.6777, -79.6248)
	assert.Error(t, err)
}

func TestServiceCaching(t *testing.T) {
	var calls atomic.Int64
	server := forecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"daily":{"temperature_2m_max":[20.0],"temperature_2m_min":[10.0]}}`))
	})

	service := NewService(Config{APIBaseURL: server.URL, CacheExpiryMinutes: 30}, logger.NewNop())

	first, err := service.Forecast(context.Background(), 43.6777, -79.6248)
	require.NoError(t, err)
	second, err := service.Forecast(context.Background(), 43.6777, -79.6248)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load(), "second lookup must hit the cache")

	// A different location is a different cache key
	_, err = service.Forecast(context.Background(), 49.1947, -123.1792)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestServiceFailureNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := forecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"daily":{"temperature_2m_max":[20.0],"temperature_2m_min":[10.0]}}`))
	})

	service := NewService(Config{APIBaseURL: server.URL, CacheExpiryMinutes: 30}, logger.NewNop())

	_, err := service.Forecast(context.Background(), 43.6777, -79.6248)
	require.Error(t, err)

	fail.Store(false)
	forecast, err := service.Forecast(context.Background(), 43.6777, -79.6248)
	require.NoError(t, err)
	assert.Equal(t, 20.0, forecast.High)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(10 * time.Millisecond)
	cache.Set(1, 2, Forecast{High: 5, Low: 1})

	_, ok := cache.Get(1, 2)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get(1, 2)
	assert.False(t, ok)
}
