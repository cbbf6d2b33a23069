package weather

import (
	"context"
	"time"

	"github.com/skywise/flightnet/pkg/logger"
)

// Service provides cached, best-effort forecast lookups. A provider failure
// surfaces as an error the caller is expected to absorb; the service itself
// never degrades the enclosing request.
type Service struct {
	client *Client
	cache  *Cache
	logger *logger.Logger
}

// NewService creates a weather service from the given configuration
func NewService(config Config, log *logger.Logger) *Service {
	expiry := time.Duration(config.CacheExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}

	return &Service{
		client: NewClient(config, log),
		cache:  NewCache(expiry),
		logger: log.Named("weather-service"),
	}
}

// Forecast returns the daily high/low forecast for the coordinates,
// consulting the cache first
func (s *Service) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	if cached, ok := s.cache.Get(lat, lon); ok {
		s.logger.Debug("Forecast cache hit",
			logger.Float64("lat", lat),
			logger.Float64("lon", lon))
		return cached, nil
	}

	forecast, err := s.client.Forecast(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("Forecast fetch failed",
			logger.Float64("lat", lat),
			logger.Float64("lon", lon),
			logger.Error(err))
		return nil, err
	}

	s.cache.Set(lat, lon, *forecast)
	return forecast, nil
}
