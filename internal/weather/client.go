package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/skywise/flightnet/pkg/logger"
)

// DefaultBaseURL is the forecast provider endpoint used when none is
// configured
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Client handles HTTP requests to the forecast API. Requests are bounded by
// the configured timeout so one slow provider call cannot stall a request;
// failures are reported to the caller and never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new forecast API client
func NewClient(config Config, log *logger.Logger) *Client {
	baseURL := config.APIBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := config.RequestTimeoutSeconds
	if timeout <= 0 {
		timeout = 3
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		logger: log.Named("weather-client"),
	}
}

// Forecast fetches the forecasted daily max/min temperature for the current
// day at the given coordinates
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("daily", "temperature_2m_max,temperature_2m_min")
	params.Set("timezone", "auto")
	params.Set("forecast_days", "1")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error building forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request to forecast API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding forecast data: %w", err)
	}

	if len(result.Daily.TemperatureMax) == 0 || len(result.Daily.TemperatureMin) == 0 {
		return nil, fmt.Errorf("no forecast data for %.4f,%.4f", lat, lon)
	}

	return &Forecast{
		High: result.Daily.TemperatureMax[0],
		Low:  result.Daily.TemperatureMin[0],
	}, nil
}
