package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/pkg/logger"
)

// AirlineNamesByCountryCodes returns the names of airlines based in the
// countries identified by the given ISO codes
func (s *Store) AirlineNamesByCountryCodes(ctx context.Context, codes []string) ([]string, error) {
	codes = storage.NormalizeCodes(codes)

	query := fmt.Sprintf(`SELECT a.name FROM airlines a
		JOIN countries c ON a.country = c.name
		WHERE c.code IN (%s)
		ORDER BY a.name`, placeholders(len(codes)))

	args := make([]interface{}, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query airlines by country: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan airline name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AirlineByCodes returns the airline matching all of the provided codes
func (s *Store) AirlineByCodes(ctx context.Context, iata, icao string) (*storage.Airline, error) {
	filter, values := codeFilter(iata, icao)
	if filter == "" {
		return nil, storage.ErrNotFound
	}

	query := `SELECT name, iata, icao, callsign, country FROM airlines WHERE ` + filter
	row := s.db.QueryRowContext(ctx, query, values...)

	airline, err := scanAirline(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query airline: %w", err)
	}
	return airline, nil
}

// AirlineAirports returns the airline with the given IATA or ICAO code and
// the distinct airports appearing as an endpoint of any of its routes
func (s *Store) AirlineAirports(ctx context.Context, code string) (*storage.Airline, []storage.Airport, error) {
	code = storage.NormalizeCode(code)

	row := s.db.QueryRowContext(ctx,
		`SELECT name, iata, icao, callsign, country FROM airlines WHERE iata = ? OR icao = ?`,
		code, code)
	airline, err := scanAirline(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, storage.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to query airline: %w", err)
	}

	// Routes key airlines by IATA code; fall back to ICAO for carriers
	// without one
	airlineCode := airline.IATA
	if airlineCode == "" {
		airlineCode = airline.ICAO
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT a.name, a.city, a.country, a.iata, a.icao, a.latitude, a.longitude
		FROM airports a
		WHERE a.iata IN (
			SELECT DISTINCT departure FROM routes WHERE airline = ?
			UNION
			SELECT DISTINCT arrival FROM routes WHERE airline = ?
		)`, airlineCode, airlineCode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query airline airports: %w", err)
	}
	defer rows.Close()

	airports := make([]storage.Airport, 0)
	for rows.Next() {
		airport, err := scanAirport(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, *airport)
	}
	return airline, airports, rows.Err()
}

// CreateAirline inserts a new airline and returns the stored row.
// A callsign, IATA or ICAO collision yields storage.ErrConflict.
func (s *Store) CreateAirline(ctx context.Context, airline storage.Airline) (*storage.Airline, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO airlines (name, iata, icao, callsign, country)
		VALUES (?, ?, ?, ?, ?)
		RETURNING name, iata, icao, callsign, country`,
		airline.Name,
		nullableCode(airline.IATA),
		nullableCode(airline.ICAO),
		airline.Callsign,
		airline.Country)

	inserted, err := scanAirline(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrConflict
		}
		return nil, fmt.Errorf("failed to insert airline: %w", err)
	}

	s.logger.Debug("Airline created",
		logger.String("name", inserted.Name),
		logger.String("callsign", inserted.Callsign))
	return inserted, nil
}

// DeleteAirlines deletes airlines matching all of the provided codes and
// returns the number of rows removed
func (s *Store) DeleteAirlines(ctx context.Context, iata, icao string) (int64, error) {
	filter, values := codeFilter(iata, icao)
	if filter == "" {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM airlines WHERE `+filter, values...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete airlines: %w", err)
	}
	return res.RowsAffected()
}

// AirlineExists reports whether an airline with the given IATA code exists
func (s *Store) AirlineExists(ctx context.Context, iata string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM airlines WHERE iata = ?`,
		storage.NormalizeCode(iata)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check airline existence: %w", err)
	}
	return true, nil
}

// scanAirline scans an airline row with nullable code columns
func scanAirline(row interface{ Scan(...interface{}) error }) (*storage.Airline, error) {
	var a storage.Airline
	var iata, icao sql.NullString
	if err := row.Scan(&a.Name, &iata, &icao, &a.Callsign, &a.Country); err != nil {
		return nil, err
	}
	a.IATA = iata.String
	a.ICAO = icao.String
	return &a, nil
}

// nullableCode maps an absent code to NULL so the UNIQUE constraints on the
// code columns do not collide on empty strings
func nullableCode(code string) interface{} {
	if code == "" {
		return nil
	}
	return storage.NormalizeCode(code)
}
