package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/skywise/flightnet/internal/geo"
	"github.com/skywise/flightnet/internal/storage"
)

// aircraftList accepts either a single aircraft code or an array of codes,
// matching the wire format of route create/update requests
type aircraftList []string

func (a *aircraftList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = aircraftList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("aircraft must be a string or an array of strings")
	}
	*a = aircraftList(many)
	return nil
}

// routeRequest is the body of POST /routes and PUT /routes
type routeRequest struct {
	Airline   string       `json:"airline"`
	Departure string       `json:"departure"`
	Arrival   string       `json:"arrival"`
	Aircraft  aircraftList `json:"aircraft"`
}

// routeEndpoint is an airport reference in the route composition payload
type routeEndpoint struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// routeEntry is one airline's service on the queried city pair
type routeEntry struct {
	Airline       string   `json:"airline"`
	AircraftTypes []string `json:"aircraft_types"`
}

// routesResponse is the composed payload of GET /routes
type routesResponse struct {
	Departure       routeEndpoint `json:"departure"`
	Arrival         routeEndpoint `json:"arrival"`
	Distance        *float64      `json:"distance,omitempty"`
	Unit            string        `json:"unit,omitempty"`
	BearingTrue     *float64      `json:"bearing_true,omitempty"`
	BearingMagnetic *float64      `json:"bearing_magnetic,omitempty"`
	Routes          []routeEntry  `json:"routes"`
}

// GetRoutes composes the departure airport, arrival airport, great-circle
// distance and the matching route list into one payload
func (h *Handler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	departure := r.URL.Query().Get("departure")
	arrival := r.URL.Query().Get("arrival")
	if departure == "" || arrival == "" {
		WriteError(w, http.StatusBadRequest, "Both departure and arrival airport codes are required")
		return
	}

	depAirport, err := h.store.AirportByCodes(r.Context(), departure, "")
	if err == nil {
		var arrAirport *storage.Airport
		arrAirport, err = h.store.AirportByCodes(r.Context(), arrival, "")
		if err == nil {
			h.respondRoutes(w, r, depAirport, arrAirport)
			return
		}
	}
	if errors.Is(err, storage.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "One or both airports not found")
		return
	}
	h.serverError(w, "routes airports", err)
}

func (h *Handler) respondRoutes(w http.ResponseWriter, r *http.Request, dep, arr *storage.Airport) {
	routes, err := h.store.RoutesBetween(r.Context(), dep.IATA, arr.IATA)
	if err != nil {
		h.serverError(w, "routes between", err)
		return
	}
	if len(routes) == 0 {
		WriteError(w, http.StatusNotFound,
			fmt.Sprintf("No routes found between %s and %s", dep.IATA, arr.IATA))
		return
	}

	response := routesResponse{
		Departure: routeEndpoint{Code: dep.IATA, Name: dep.Name},
		Arrival:   routeEndpoint{Code: arr.IATA, Name: arr.Name},
		Routes:    make([]routeEntry, 0, len(routes)),
	}
	for _, route := range routes {
		response.Routes = append(response.Routes, routeEntry{
			Airline:       route.Airline,
			AircraftTypes: route.Aircraft,
		})
	}

	// Distance and bearings require coordinates on both endpoints
	if dep.Latitude != nil && dep.Longitude != nil && arr.Latitude != nil && arr.Longitude != nil {
		distance := geo.Distance(*dep.Latitude, *dep.Longitude, *arr.Latitude, *arr.Longitude)
		bearingTrue := geo.InitialBearing(*dep.Latitude, *dep.Longitude, *arr.Latitude, *arr.Longitude)
		bearingMag := geo.MagneticBearing(bearingTrue, *dep.Latitude, *dep.Longitude, time.Now())

		response.Distance = &distance
		response.Unit = "km"
		response.BearingTrue = &bearingTrue
		response.BearingMagnetic = &bearingMag
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetRouteArrivals lists the airports reachable via a direct route from a
// departure airport
func (h *Handler) GetRouteArrivals(w http.ResponseWriter, r *http.Request) {
	departure := r.URL.Query().Get("departure")
	if departure == "" {
		WriteError(w, http.StatusBadRequest, "Departure airport code is required")
		return
	}

	airports, err := h.store.ArrivalAirports(r.Context(), departure)
	if err != nil {
		h.serverError(w, "route arrivals", err)
		return
	}

	if len(airports) == 0 {
		WriteError(w, http.StatusNotFound,
			fmt.Sprintf("No routes found from airport with code %s", departure))
		return
	}
	WriteJSON(w, http.StatusOK, airports)
}

// GetRoutesByAirline lists the routes an airline flies with a given
// aircraft type
func (h *Handler) GetRoutesByAirline(w http.ResponseWriter, r *http.Request) {
	airline := r.URL.Query().Get("airline")
	aircraft := r.URL.Query().Get("aircraft")
	if airline == "" || aircraft == "" {
		WriteError(w, http.StatusBadRequest, "Both airline IATA code and aircraft type code are required")
		return
	}

	ends, err := h.store.RoutesByAirlineAircraft(r.Context(), airline, aircraft)
	if err != nil {
		h.serverError(w, "routes by airline", err)
		return
	}

	if len(ends) == 0 {
		WriteError(w, http.StatusNotFound,
			fmt.Sprintf("No routes found for airline %s using aircraft type %s", airline, aircraft))
		return
	}
	WriteJSON(w, http.StatusOK, ends)
}

// CreateRoute creates a new route after verifying all referenced entities
// exist
func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Airline == "" || req.Departure == "" || req.Arrival == "" || len(req.Aircraft) == 0 {
		WriteError(w, http.StatusBadRequest, "Airline, departure, arrival, and aircraft are all required")
		return
	}
	if len(req.Airline) != 2 {
		WriteError(w, http.StatusBadRequest, "Invalid Airline IATA code")
		return
	}
	if len(req.Departure) != 3 || len(req.Arrival) != 3 {
		WriteError(w, http.StatusBadRequest, "Invalid Airport IATA Code")
		return
	}
	if storage.NormalizeCode(req.Departure) == storage.NormalizeCode(req.Arrival) {
		WriteError(w, http.StatusBadRequest, "Departure and arrival airports must differ")
		return
	}

	exists, err := h.store.AirlineExists(r.Context(), req.Airline)
	if err != nil {
		h.serverError(w, "airline existence", err)
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound,
			fmt.Sprintf("Airline with IATA code %s not found", req.Airline))
		return
	}

	bothExist, err := h.store.AirportsExist(r.Context(), req.Departure, req.Arrival)
	if err != nil {
		h.serverError(w, "airport existence", err)
		return
	}
	if !bothExist {
		WriteError(w, http.StatusNotFound, "One or both airports not found")
		return
	}

	if !h.validateAircraft(w, r, req.Aircraft) {
		return
	}

	err = h.store.CreateRoute(r.Context(), storage.Route{
		Airline:   req.Airline,
		Departure: req.Departure,
		Arrival:   req.Arrival,
		Aircraft:  req.Aircraft,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			WriteError(w, http.StatusConflict, "This route already exists")
			return
		}
		h.serverError(w, "create route", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "Route created successfully"})
}

// UpdateRoute unions new aircraft types into an existing route's list
func (h *Handler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Airline == "" || req.Departure == "" || req.Arrival == "" || len(req.Aircraft) == 0 {
		WriteError(w, http.StatusBadRequest, "Airline, departure, arrival, and aircraft are all required")
		return
	}

	if !h.validateAircraft(w, r, req.Aircraft) {
		return
	}

	planes, changed, err := h.store.UpdateRouteAircraft(r.Context(),
		req.Airline, req.Departure, req.Arrival, req.Aircraft)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Route not found")
			return
		}
		h.serverError(w, "update route", err)
		return
	}

	if !changed {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status": "No changes made - all aircraft types already exist for this route",
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "Route updated successfully",
		"planes": planes,
	})
}

// DeleteRoute deletes a route by its composite key
func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	airline := r.URL.Query().Get("airline")
	departure := r.URL.Query().Get("departure")
	arrival := r.URL.Query().Get("arrival")
	if airline == "" || departure == "" || arrival == "" {
		WriteError(w, http.StatusBadRequest, "Airline, departure, and arrival parameters are all required")
		return
	}

	deleted, err := h.store.DeleteRoute(r.Context(), airline, departure, arrival)
	if err != nil {
		h.serverError(w, "delete route", err)
		return
	}

	if deleted == 0 {
		WriteError(w, http.StatusNotFound, "No route found matching the specified criteria")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "Route deleted successfully"})
}

// validateAircraft checks the format and existence of every aircraft code,
// writing the error response itself and reporting whether to proceed
func (h *Handler) validateAircraft(w http.ResponseWriter, r *http.Request, codes []string) bool {
	for _, code := range codes {
		if len(code) != 3 {
			WriteError(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid Aircraft code: %s (must be 3 characters)", code))
			return false
		}
		exists, err := h.store.PlaneTypeExists(r.Context(), code)
		if err != nil {
			h.serverError(w, "plane type existence", err)
			return false
		}
		if !exists {
			WriteError(w, http.StatusNotFound,
				fmt.Sprintf("Aircraft type with code %s not found", code))
			return false
		}
	}
	return true
}
