package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/pkg/logger"
)

// AirportsByCountryCodes returns the airports located in the countries
// identified by the given ISO codes
func (s *Store) AirportsByCountryCodes(ctx context.Context, codes []string) ([]storage.Airport, error) {
	codes = storage.NormalizeCodes(codes)

	query := fmt.Sprintf(`SELECT a.name, a.city, a.country, a.iata, a.icao, a.latitude, a.longitude
		FROM airports a
		JOIN countries c ON a.country = c.name
		WHERE c.code IN (%s)
		ORDER BY a.name`, placeholders(len(codes)))

	args := make([]interface{}, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports by country: %w", err)
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

// AirportByCodes returns the airport matching all of the provided codes
func (s *Store) AirportByCodes(ctx context.Context, iata, icao string) (*storage.Airport, error) {
	filter, values := codeFilter(iata, icao)
	if filter == "" {
		return nil, storage.ErrNotFound
	}

	query := `SELECT name, city, country, iata, icao, latitude, longitude FROM airports WHERE ` + filter
	row := s.db.QueryRowContext(ctx, query, values...)

	airport, err := scanAirport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query airport: %w", err)
	}
	return airport, nil
}

// CreateAirport inserts a new airport. An IATA or ICAO collision yields
// storage.ErrConflict.
func (s *Store) CreateAirport(ctx context.Context, airport storage.Airport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO airports (name, city, country, iata, icao, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		airport.Name,
		airport.City,
		airport.Country,
		nullableCode(airport.IATA),
		nullableCode(airport.ICAO),
		airport.Latitude,
		airport.Longitude)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("failed to insert airport: %w", err)
	}

	s.logger.Debug("Airport created",
		logger.String("name", airport.Name),
		logger.String("iata", airport.IATA))
	return nil
}

// DeleteAirports deletes airports matching all of the provided codes and
// returns the number of rows removed
func (s *Store) DeleteAirports(ctx context.Context, iata, icao string) (int64, error) {
	filter, values := codeFilter(iata, icao)
	if filter == "" {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM airports WHERE `+filter, values...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete airports: %w", err)
	}
	return res.RowsAffected()
}

// AirportsExist reports whether both airports exist (by IATA code)
func (s *Store) AirportsExist(ctx context.Context, departure, arrival string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM airports WHERE iata IN (?, ?)`,
		storage.NormalizeCode(departure), storage.NormalizeCode(arrival)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check airport existence: %w", err)
	}
	return count == 2, nil
}

// scanAirport scans an airport row with nullable code and coordinate columns
func scanAirport(row interface{ Scan(...interface{}) error }) (*storage.Airport, error) {
	var a storage.Airport
	var iata, icao sql.NullString
	var lat, lon sql.NullFloat64
	if err := row.Scan(&a.Name, &a.City, &a.Country, &iata, &icao, &lat, &lon); err != nil {
		return nil, err
	}
	a.IATA = iata.String
	a.ICAO = icao.String
	if lat.Valid {
		a.Latitude = &lat.Float64
	}
	if lon.Valid {
		a.Longitude = &lon.Float64
	}
	return &a, nil
}
