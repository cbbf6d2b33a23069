package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/pkg/logger"
)

// RoutesBetween returns the routes flown between the two airports
func (s *Store) RoutesBetween(ctx context.Context, departure, arrival string) ([]storage.Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT airline, departure, arrival, planes
		FROM routes
		WHERE departure = ? AND arrival = ?
		ORDER BY airline`,
		storage.NormalizeCode(departure), storage.NormalizeCode(arrival))
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	routes := make([]storage.Route, 0)
	for rows.Next() {
		var r storage.Route
		var planes string
		if err := rows.Scan(&r.Airline, &r.Departure, &r.Arrival, &planes); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		r.Aircraft = storage.SplitAircraft(planes)
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// ArrivalAirports returns the distinct airports reachable via a direct route
// from the given departure airport
func (s *Store) ArrivalAirports(ctx context.Context, departure string) ([]storage.Airport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT a.name, a.city, a.country, a.iata, a.icao, a.latitude, a.longitude
		FROM routes r
		JOIN airports a ON r.arrival = a.iata
		WHERE r.departure = ?
		ORDER BY a.name`,
		storage.NormalizeCode(departure))
	if err != nil {
		return nil, fmt.Errorf("failed to query arrival airports: %w", err)
	}
	defer rows.Close()

	airports := make([]storage.Airport, 0)
	for rows.Next() {
		airport, err := scanAirport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, *airport)
	}
	return airports, rows.Err()
}

// RoutesByAirlineAircraft returns the route endpoints flown by an airline
// with a given aircraft type, matched by substring against the stored
// aircraft list
func (s *Store) RoutesByAirlineAircraft(ctx context.Context, airline, aircraft string) ([]storage.RouteEnds, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.departure, dep.name AS departure_name, r.arrival, arr.name AS arrival_name
		FROM routes r
		JOIN airports dep ON r.departure = dep.iata
		JOIN airports arr ON r.arrival = arr.iata
		WHERE r.airline = ? AND r.planes LIKE ?`,
		storage.NormalizeCode(airline),
		"%"+storage.NormalizeCode(aircraft)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query routes by airline: %w", err)
	}
	defer rows.Close()

	ends := make([]storage.RouteEnds, 0)
	for rows.Next() {
		var e storage.RouteEnds
		if err := rows.Scan(&e.Departure, &e.DepartureName, &e.Arrival, &e.ArrivalName); err != nil {
			return nil, fmt.Errorf("failed to scan route endpoints: %w", err)
		}
		ends = append(ends, e)
	}
	return ends, rows.Err()
}

// CreateRoute inserts a new route. A duplicate (airline, departure, arrival)
// key yields storage.ErrConflict.
func (s *Store) CreateRoute(ctx context.Context, route storage.Route) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routes (airline, departure, arrival, planes)
		VALUES (?, ?, ?, ?)`,
		storage.NormalizeCode(route.Airline),
		storage.NormalizeCode(route.Departure),
		storage.NormalizeCode(route.Arrival),
		storage.JoinAircraft(storage.NormalizeCodes(route.Aircraft)))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("failed to insert route: %w", err)
	}

	s.logger.Debug("Route created",
		logger.String("airline", route.Airline),
		logger.String("departure", route.Departure),
		logger.String("arrival", route.Arrival))
	return nil
}

// UpdateRouteAircraft unions the given aircraft codes into the route's
// stored list. It returns the resulting space-joined list and whether the
// stored row changed.
func (s *Store) UpdateRouteAircraft(ctx context.Context, airline, departure, arrival string, aircraft []string) (string, bool, error) {
	airline = storage.NormalizeCode(airline)
	departure = storage.NormalizeCode(departure)
	arrival = storage.NormalizeCode(arrival)

	var planes string
	err := s.db.QueryRowContext(ctx, `
		SELECT planes FROM routes
		WHERE airline = ? AND departure = ? AND arrival = ?`,
		airline, departure, arrival).Scan(&planes)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, storage.ErrNotFound
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query route: %w", err)
	}

	merged, changed := storage.UnionAircraft(
		storage.SplitAircraft(planes),
		storage.NormalizeCodes(aircraft))
	joined := storage.JoinAircraft(merged)
	if !changed {
		return joined, false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE routes SET planes = ?
		WHERE airline = ? AND departure = ? AND arrival = ?`,
		joined, airline, departure, arrival)
	if err != nil {
		return "", false, fmt.Errorf("failed to update route: %w", err)
	}
	return joined, true, nil
}

// DeleteRoute deletes the route with the given composite key and returns
// the number of rows removed
func (s *Store) DeleteRoute(ctx context.Context, airline, departure, arrival string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM routes
		WHERE airline = ? AND departure = ? AND arrival = ?`,
		storage.NormalizeCode(airline),
		storage.NormalizeCode(departure),
		storage.NormalizeCode(arrival))
	if err != nil {
		return 0, fmt.Errorf("failed to delete route: %w", err)
	}
	return res.RowsAffected()
}
