package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates that no row matched the query
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation on an entity's natural key
	ErrConflict = errors.New("already exists")
)

// Store is the entity store contract implemented by the postgres and sqlite
// backends. All code parameters are normalized to uppercase before querying.
type Store interface {
	// Airlines
	AirlineNamesByCountryCodes(ctx context.Context, codes []string) ([]string, error)
	AirlineByCodes(ctx context.Context, iata, icao string) (*Airline, error)
	AirlineAirports(ctx context.Context, code string) (*Airline, []Airport, error)
	CreateAirline(ctx context.Context, airline Airline) (*Airline, error)
	DeleteAirlines(ctx context.Context, iata, icao string) (int64, error)

	// Airports
	AirportsByCountryCodes(ctx context.Context, codes []string) ([]Airport, error)
	AirportByCodes(ctx context.Context, iata, icao string) (*Airport, error)
	CreateAirport(ctx context.Context, airport Airport) error
	DeleteAirports(ctx context.Context, iata, icao string) (int64, error)

	// Routes
	RoutesBetween(ctx context.Context, departure, arrival string) ([]Route, error)
	ArrivalAirports(ctx context.Context, departure string) ([]Airport, error)
	RoutesByAirlineAircraft(ctx context.Context, airline, aircraft string) ([]RouteEnds, error)
	CreateRoute(ctx context.Context, route Route) error
	UpdateRouteAircraft(ctx context.Context, airline, departure, arrival string, aircraft []string) (string, bool, error)
	DeleteRoute(ctx context.Context, airline, departure, arrival string) (int64, error)

	// Referential checks used before route writes
	AirlineExists(ctx context.Context, iata string) (bool, error)
	AirportsExist(ctx context.Context, departure, arrival string) (bool, error)
	PlaneTypeExists(ctx context.Context, code string) (bool, error)

	// Reference data
	CreateCountry(ctx context.Context, country Country) error
	CreatePlaneType(ctx context.Context, planeType PlaneType) error

	Close() error
}
