package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/skywise/flightnet/internal/storage"
)

// createAirportRequest is the body of POST /airports
type createAirportRequest struct {
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	IATA      string   `json:"iata"`
	ICAO      string   `json:"icao"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// airportWithWeather is an airport payload optionally enriched with the
// forecasted daily temperature extremes
type airportWithWeather struct {
	storage.Airport
	High *float64 `json:"high,omitempty"`
	Low  *float64 `json:"low,omitempty"`
}

// GetAirports returns the airports located in the requested countries
func (h *Handler) GetAirports(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		WriteError(w, http.StatusBadRequest, "Missing country parameter")
		return
	}

	codes := splitList(country)
	airports, err := h.store.AirportsByCountryCodes(r.Context(), codes)
	if err != nil {
		h.serverError(w, "airports by country", err)
		return
	}

	if len(airports) == 0 {
		WriteError(w, http.StatusNotFound,
			fmt.Sprintf("No airports found for the specified country codes %v", codes))
		return
	}
	WriteJSON(w, http.StatusOK, airports)
}

// GetAirport returns a single airport by its codes, enriched with the daily
// temperature forecast when the provider is reachable. Enrichment is
// best-effort: on failure the airport is returned without high/low fields.
func (h *Handler) GetAirport(w http.ResponseWriter, r *http.Request) {
	iata := r.URL.Query().Get("iata")
	icao := r.URL.Query().Get("icao")
	if iata == "" && icao == "" {
		WriteError(w, http.StatusBadRequest, "Please provide at least one of ICAO or IATA")
		return
	}

	airport, err := h.store.AirportByCodes(r.Context(), iata, icao)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No airport found with the provided ICAO and/or IATA codes")
			return
		}
		h.serverError(w, "airport by codes", err)
		return
	}

	response := airportWithWeather{Airport: *airport}
	if h.weather != nil && airport.Latitude != nil && airport.Longitude != nil {
		if forecast, err := h.weather.Forecast(r.Context(), *airport.Latitude, *airport.Longitude); err == nil {
			response.High = &forecast.High
			response.Low = &forecast.Low
		}
		// Forecast failures already logged by the weather service
	}

	WriteJSON(w, http.StatusOK, response)
}

// CreateAirport creates a new airport
func (h *Handler) CreateAirport(w http.ResponseWriter, r *http.Request) {
	var req createAirportRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" || req.City == "" || req.Country == "" {
		WriteError(w, http.StatusBadRequest, "Name, City, and Country are required")
		return
	}
	if req.IATA != "" && len(req.IATA) != 3 {
		WriteError(w, http.StatusBadRequest, "Invalid Airport IATA code")
		return
	}
	if req.ICAO != "" && len(req.ICAO) != 4 {
		WriteError(w, http.StatusBadRequest, "Invalid Airport ICAO code")
		return
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		WriteError(w, http.StatusBadRequest, "Latitude must be between -90 and 90")
		return
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		WriteError(w, http.StatusBadRequest, "Longitude must be between -180 and 180")
		return
	}

	err := h.store.CreateAirport(r.Context(), storage.Airport{
		Name:      req.Name,
		City:      req.City,
		Country:   req.Country,
		IATA:      req.IATA,
		ICAO:      req.ICAO,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			WriteError(w, http.StatusConflict, "Airport with the provided IATA or ICAO code already exists")
			return
		}
		h.serverError(w, "create airport", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "Airport created successfully!"})
}

// DeleteAirports deletes airports matching the provided codes
func (h *Handler) DeleteAirports(w http.ResponseWriter, r *http.Request) {
	iata := r.URL.Query().Get("iata")
	icao := r.URL.Query().Get("icao")
	if iata == "" && icao == "" {
		WriteError(w, http.StatusBadRequest, "Need at least ICAO or IATA code to delete")
		return
	}

	deleted, err := h.store.DeleteAirports(r.Context(), iata, icao)
	if err != nil {
		h.serverError(w, "delete airports", err)
		return
	}

	if deleted == 0 {
		WriteError(w, http.StatusNotFound, "No airports were deleted with the provided ICAO and/or IATA codes")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "Airport deleted successfully!"})
}
