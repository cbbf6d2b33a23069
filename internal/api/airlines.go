package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/skywise/flightnet/internal/storage"
)

// airlineName is the row shape of the airline list endpoint
type airlineName struct {
	Name string `json:"name"`
}

// createAirlineRequest is the body of POST /airlines
type createAirlineRequest struct {
	Name     string `json:"name"`
	IATA     string `json:"iata"`
	ICAO     string `json:"icao"`
	Callsign string `json:"callsign"`
	Country  string `json:"country"`
}

// GetAirlines returns the airlines based in the requested countries
func (h *Handler) GetAirlines(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		WriteError(w, http.StatusBadRequest, "Missing country parameter")
		return
	}

	codes := splitList(country)
	names, err := h.store.AirlineNamesByCountryCodes(r.Context(), codes)
	if err != nil {
		h.serverError(w, "airlines by country", err)
		return
	}

	if len(names) == 0 {
		WriteError(w, http.StatusNotFound,
			fmt.Sprintf("No airlines found for the specified country codes %v", codes))
		return
	}

	rows := make([]airlineName, 0, len(names))
	for _, n := range names {
		rows = append(rows, airlineName{Name: n})
	}
	WriteJSON(w, http.StatusOK, rows)
}

// GetAirline returns a single airline by its codes
func (h *Handler) GetAirline(w http.ResponseWriter, r *http.Request) {
	iata := r.URL.Query().Get("iata")
	icao := r.URL.Query().Get("icao")
	if iata == "" && icao == "" {
		WriteError(w, http.StatusBadRequest, "Please provide at least one of ICAO or IATA")
		return
	}

	airline, err := h.store.AirlineByCodes(r.Context(), iata, icao)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No airline found with the provided icao and iata codes")
			return
		}
		h.serverError(w, "airline by codes", err)
		return
	}

	WriteJSON(w, http.StatusOK, airline)
}

// GetAirlineAirports returns the airports served by an airline
func (h *Handler) GetAirlineAirports(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "Airline code (IATA or ICAO) is required")
		return
	}

	airline, airports, err := h.store.AirlineAirports(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("No airline found with code %s", code))
			return
		}
		h.serverError(w, "airline airports", err)
		return
	}

	if len(airports) == 0 {
		WriteError(w, http.StatusNotFound,
			fmt.Sprintf("Airline %s has no registered airports", airline.Name))
		return
	}

	response := map[string]interface{}{
		"airline": map[string]string{
			"name": airline.Name,
			"iata": airline.IATA,
			"icao": airline.ICAO,
		},
		"airports": airports,
	}
	WriteJSON(w, http.StatusOK, response)
}

// CreateAirline creates a new airline and returns the inserted row
func (h *Handler) CreateAirline(w http.ResponseWriter, r *http.Request) {
	var req createAirlineRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" || req.Callsign == "" || req.Country == "" {
		WriteError(w, http.StatusBadRequest, "Name, Callsign and Country are required")
		return
	}
	if req.IATA != "" && len(req.IATA) != 2 {
		WriteError(w, http.StatusBadRequest, "Invalid Airline IATA code")
		return
	}
	if req.ICAO != "" && len(req.ICAO) != 3 {
		WriteError(w, http.StatusBadRequest, "Invalid Airline ICAO code")
		return
	}

	inserted, err := h.store.CreateAirline(r.Context(), storage.Airline{
		Name:     req.Name,
		IATA:     req.IATA,
		ICAO:     req.ICAO,
		Callsign: req.Callsign,
		Country:  req.Country,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			WriteError(w, http.StatusConflict,
				fmt.Sprintf("Airline with callsign %s already exists", req.Callsign))
			return
		}
		h.serverError(w, "create airline", err)
		return
	}

	WriteJSON(w, http.StatusOK, inserted)
}

// DeleteAirlines deletes airlines matching the provided codes
func (h *Handler) DeleteAirlines(w http.ResponseWriter, r *http.Request) {
	iata := r.URL.Query().Get("iata")
	icao := r.URL.Query().Get("icao")
	if iata == "" && icao == "" {
		WriteError(w, http.StatusBadRequest, "Need at least ICAO or IATA code to delete")
		return
	}

	deleted, err := h.store.DeleteAirlines(r.Context(), iata, icao)
	if err != nil {
		h.serverError(w, "delete airlines", err)
		return
	}

	if deleted == 0 {
		WriteError(w, http.StatusNotFound, "No airlines were deleted with the provided ICAO and/or IATA codes")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "Airline deleted successfully!"})
}

// splitList splits a comma-separated parameter into trimmed elements
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
