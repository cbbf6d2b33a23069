package weather

// Forecast holds the forecasted daily temperature extremes for a location,
// in Celsius
type Forecast struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// Config represents the weather enrichment configuration
type Config struct {
	Enabled               bool   `toml:"enabled"`
	APIBaseURL            string `toml:"api_base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	CacheExpiryMinutes    int    `toml:"cache_expiry_minutes"`
}

// forecastResponse mirrors the provider's daily forecast payload
type forecastResponse struct {
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}
