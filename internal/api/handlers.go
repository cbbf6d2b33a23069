package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/skywise/flightnet/internal/config"
	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/internal/weather"
	"github.com/skywise/flightnet/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	store   storage.Store
	weather *weather.Service
	config  *config.Config
	logger  *logger.Logger
}

// NewHandler creates a new API handler. weatherService may be nil when
// enrichment is disabled.
func NewHandler(store storage.Store, weatherService *weather.Service, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		store:   store,
		weather: weatherService,
		config:  cfg,
		logger:  log.Named("api-handler"),
	}
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":          "ok",
		"store":           h.config.Database.Driver,
		"weather_enabled": h.weather != nil,
	}

	WriteJSON(w, http.StatusOK, response)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteError writes a JSON error body of the form {"error": "<message>"}
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// serverError logs an unexpected failure and responds with a generic 500
func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("Internal server error",
		logger.String("op", op),
		logger.Error(err))
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeBody decodes a JSON request body into target
func decodeBody(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
