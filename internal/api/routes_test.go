package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywise/flightnet/internal/storage"
)

func TestGetRoutes(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/routes?departure=YYZ&arrival=JFK", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	departure := body["departure"].(map[string]interface{})
	assert.Equal(t, "YYZ", departure["code"])
	assert.Equal(t, "Toronto Pearson International Airport", departure["name"])

	arrival := body["arrival"].(map[string]interface{})
	assert.Equal(t, "JFK", arrival["code"])

	assert.InDelta(t, 588.84, body["distance"].(float64), 0.01)
	assert.Equal(t, "km", body["unit"])
	assert.InDelta(t, 123.02, body["bearing_true"].(float64), 0.01)

	bearingMag := body["bearing_magnetic"].(float64)
	assert.GreaterOrEqual(t, bearingMag, 0.0)
	assert.Less(t, bearingMag, 360.0)

	routes := body["routes"].([]interface{})
	require.Len(t, routes, 1)
	route := routes[0].(map[string]interface{})
	assert.Equal(t, "AC", route["airline"])
	assert.Equal(t, []interface{}{"77W"}, route["aircraft_types"])
}

func TestGetRoutesMissingParams(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, target := range []string{"/routes", "/routes?departure=YYZ", "/routes?arrival=JFK"} {
		rec := api.request(t, http.MethodGet, target, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "Both departure and arrival airport codes are required", decodeMap(t, rec)["error"])
	}
}

func TestGetRoutesUnknownAirport(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/routes?departure=YYZ&arrival=ZZZ", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "One or both airports not found", decodeMap(t, rec)["error"])
}

func TestGetRoutesNoRoutes(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/routes?departure=JFK&arrival=YYZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRoutesWithoutCoordinates(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	require.NoError(t, api.store.CreateRoute(context.Background(), storage.Route{
		Airline: "AC", Departure: "YYZ", Arrival: "XQQ", Aircraft: []string{"320"},
	}))

	rec := api.request(t, http.MethodGet, "/routes?departure=YYZ&arrival=XQQ", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Arrival has no coordinates, so the geometry fields are omitted
	body := decodeMap(t, rec)
	assert.NotContains(t, body, "distance")
	assert.NotContains(t, body, "bearing_true")
	assert.NotContains(t, body, "bearing_magnetic")
	assert.Len(t, body["routes"].([]interface{}), 1)
}

func TestGetRouteArrivals(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/routes/arrivals?departure=YYZ", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rows := decodeList(t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, "JFK", rows[0]["iata"])
}

func TestGetRouteArrivalsValidation(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/routes/arrivals", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.request(t, http.MethodGet, "/routes/arrivals?departure=JFK", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No routes found from airport with code JFK", decodeMap(t, rec)["error"])
}

func TestGetRoutesByAirline(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/routes/byairline?airline=AC&aircraft=77W", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rows := decodeList(t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, "YYZ", rows[0]["departure"])
	assert.Equal(t, "Toronto Pearson International Airport", rows[0]["departure_name"])
	assert.Equal(t, "JFK", rows[0]["arrival"])
	assert.Equal(t, "John F Kennedy International Airport", rows[0]["arrival_name"])
}

func TestGetRoutesByAirlineValidation(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/routes/byairline?airline=AC", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.request(t, http.MethodGet, "/routes/byairline?airline=WS&aircraft=320", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No routes found for airline WS using aircraft type 320", decodeMap(t, rec)["error"])
}

func TestCreateRoute(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPost, "/routes", map[string]interface{}{
		"airline": "WS", "departure": "JFK", "arrival": "YYZ", "aircraft": []string{"320", "77W"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Route created successfully", decodeMap(t, rec)["status"])

	rec = api.request(t, http.MethodGet, "/routes?departure=JFK&arrival=YYZ", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	route := decodeMap(t, rec)["routes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"320", "77W"}, route["aircraft_types"])
}

func TestCreateRouteAircraftAsString(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	// A single aircraft code may arrive as a bare string
	rec := api.request(t, http.MethodPost, "/routes", map[string]interface{}{
		"airline": "WS", "departure": "YYZ", "arrival": "JFK", "aircraft": "320",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateRouteValidation(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
		want   string
	}{
		{
			"missing fields",
			map[string]interface{}{"airline": "AC"},
			http.StatusBadRequest,
			"Airline, departure, arrival, and aircraft are all required",
		},
		{
			"bad airline code",
			map[string]interface{}{"airline": "TOOLONG", "departure": "YYZ", "arrival": "JFK", "aircraft": "320"},
			http.StatusBadRequest,
			"Invalid Airline IATA code",
		},
		{
			"bad airport code",
			map[string]interface{}{"airline": "AC", "departure": "TOOLONG", "arrival": "JFK", "aircraft": "320"},
			http.StatusBadRequest,
			"Invalid Airport IATA Code",
		},
		{
			"same endpoints",
			map[string]interface{}{"airline": "AC", "departure": "YYZ", "arrival": "yyz", "aircraft": "320"},
			http.StatusBadRequest,
			"Departure and arrival airports must differ",
		},
		{
			"bad aircraft code",
			map[string]interface{}{"airline": "AC", "departure": "JFK", "arrival": "YYZ", "aircraft": "TOOLONG"},
			http.StatusBadRequest,
			"Invalid Aircraft code: TOOLONG (must be 3 characters)",
		},
		{
			"unknown airline",
			map[string]interface{}{"airline": "ZZ", "departure": "YYZ", "arrival": "JFK", "aircraft": "320"},
			http.StatusNotFound,
			"Airline with IATA code ZZ not found",
		},
		{
			"unknown airport",
			map[string]interface{}{"airline": "AC", "departure": "YYZ", "arrival": "ZZZ", "aircraft": "320"},
			http.StatusNotFound,
			"One or both airports not found",
		},
		{
			"unknown aircraft type",
			map[string]interface{}{"airline": "AC", "departure": "JFK", "arrival": "YYZ", "aircraft": "744"},
			http.StatusNotFound,
			"Aircraft type with code 744 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.request(t, http.MethodPost, "/routes", tt.body)
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, decodeMap(t, rec)["error"])
		})
	}
}

func TestCreateRouteDuplicate(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPost, "/routes", map[string]interface{}{
		"airline": "ac", "departure": "yyz", "arrival": "jfk", "aircraft": "320",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This route already exists", decodeMap(t, rec)["error"])
}

func TestUpdateRoute(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPut, "/routes", map[string]interface{}{
		"airline": "AC", "departure": "YYZ", "arrival": "JFK", "aircraft": []string{"320"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "Route updated successfully", body["status"])
	assert.Equal(t, "77W 320", body["planes"])
}

func TestUpdateRouteNoChanges(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPut, "/routes", map[string]interface{}{
		"airline": "AC", "departure": "YYZ", "arrival": "JFK", "aircraft": "77W",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No changes made - all aircraft types already exist for this route",
		decodeMap(t, rec)["status"])
}

func TestUpdateRouteNotFound(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPut, "/routes", map[string]interface{}{
		"airline": "WS", "departure": "YYZ", "arrival": "JFK", "aircraft": "320",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decodeMap(t, rec)["error"])
}

func TestUpdateRouteUnknownAircraft(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPut, "/routes", map[string]interface{}{
		"airline": "AC", "departure": "YYZ", "arrival": "JFK", "aircraft": "744",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRoute(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodDelete, "/routes?airline=AC&departure=YYZ&arrival=JFK", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Route deleted successfully", decodeMap(t, rec)["status"])

	rec = api.request(t, http.MethodDelete, "/routes?airline=AC&departure=YYZ&arrival=JFK", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No route found matching the specified criteria", decodeMap(t, rec)["error"])
}

func TestDeleteRouteMissingParams(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.request(t, http.MethodDelete, "/routes?airline=AC&departure=YYZ", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Airline, departure, and arrival parameters are all required", decodeMap(t, rec)["error"])
}
