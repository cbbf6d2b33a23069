package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAirlines(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airlines?country=CA", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rows := decodeList(t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "Air Canada", rows[0]["name"])
	assert.Equal(t, "WestJet", rows[1]["name"])
}

func TestGetAirlinesMultipleCountries(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airlines?country=ca,us", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)
}

func TestGetAirlinesMissingParam(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.request(t, http.MethodGet, "/airlines", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAirlinesUnknownCountry(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airlines?country=FR", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAirline(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airline?iata=AC", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "Air Canada", body["name"])
	assert.Equal(t, "ACA", body["icao"])
	assert.Equal(t, "AIR CANADA", body["callsign"])
	assert.Equal(t, "Canada", body["country"])
}

func TestGetAirlineByICAO(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airline?icao=wja", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "WestJet", decodeMap(t, rec)["name"])
}

func TestGetAirlineMissingCodes(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.request(t, http.MethodGet, "/airline", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide at least one of ICAO or IATA", decodeMap(t, rec)["error"])
}

func TestGetAirlineNotFound(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airline?iata=ZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAirlineAirports(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airline/airports?code=AC", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	airline := body["airline"].(map[string]interface{})
	assert.Equal(t, "Air Canada", airline["name"])
	assert.Equal(t, "AC", airline["iata"])

	airports := body["airports"].([]interface{})
	assert.Len(t, airports, 2)
}

func TestGetAirlineAirportsNoAirline(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airline/airports?code=ZZ", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No airline found with code ZZ", decodeMap(t, rec)["error"])
}

func TestGetAirlineAirportsNoRoutes(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodGet, "/airline/airports?code=WS", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Airline WestJet has no registered airports", decodeMap(t, rec)["error"])
}

func TestCreateAirline(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPost, "/airlines", map[string]interface{}{
		"name": "Porter Airlines", "iata": "PD", "icao": "POE",
		"callsign": "PORTER", "country": "Canada",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "Porter Airlines", body["name"])
	assert.Equal(t, "PD", body["iata"])

	// Visible through the read path afterwards
	rec = api.request(t, http.MethodGet, "/airline?iata=PD", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAirlineValidation(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{
			"missing required fields",
			map[string]interface{}{"name": "X", "iata": "XX"},
			"Name, Callsign and Country are required",
		},
		{
			"bad iata length",
			map[string]interface{}{"name": "X", "callsign": "XRAY", "country": "Canada", "iata": "XXX"},
			"Invalid Airline IATA code",
		},
		{
			"bad icao length",
			map[string]interface{}{"name": "X", "callsign": "XRAY", "country": "Canada", "icao": "XX"},
			"Invalid Airline ICAO code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.request(t, http.MethodPost, "/airlines", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeMap(t, rec)["error"])
		})
	}
}

func TestCreateAirlineDuplicate(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodPost, "/airlines", map[string]interface{}{
		"name": "Copycat", "iata": "CX", "icao": "CPY",
		"callsign": "AIR CANADA", "country": "Canada",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Airline with callsign AIR CANADA already exists", decodeMap(t, rec)["error"])
}

func TestDeleteAirlines(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedWorld(t)

	rec := api.request(t, http.MethodDelete, "/airlines?iata=WS", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Airline deleted successfully!", decodeMap(t, rec)["status"])

	rec = api.request(t, http.MethodDelete, "/airlines?iata=WS", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAirlinesMissingCodes(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.request(t, http.MethodDelete, "/airlines", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
