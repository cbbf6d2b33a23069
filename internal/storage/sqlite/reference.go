package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skywise/flightnet/internal/storage"
)

// CreateCountry inserts a country lookup row
func (s *Store) CreateCountry(ctx context.Context, country storage.Country) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO countries (name, code) VALUES (?, ?)`,
		country.Name, storage.NormalizeCode(country.Code))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("failed to insert country: %w", err)
	}
	return nil
}

// CreatePlaneType inserts an aircraft type lookup row
func (s *Store) CreatePlaneType(ctx context.Context, planeType storage.PlaneType) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO planes (code, name) VALUES (?, ?)`,
		storage.NormalizeCode(planeType.Code), planeType.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("failed to insert plane type: %w", err)
	}
	return nil
}

// PlaneTypeExists reports whether an aircraft type with the given code exists
func (s *Store) PlaneTypeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM planes WHERE code = ?`,
		storage.NormalizeCode(code)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check plane type existence: %w", err)
	}
	return true, nil
}
