package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/pkg/logger"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed entity store
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewStore opens (creating if necessary) the SQLite database at the given
// path and initializes the schema. Use ":memory:" for an in-memory store.
func NewStore(dbPath string, log *logger.Logger) (*Store, error) {
	storeLogger := log.Named("sqlite")

	storeLogger.Info("Initializing SQLite store",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Set pragmas for better performance and concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db, storeLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		logger: storeLogger,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// initSchema creates the tables if they don't exist. Natural-key uniqueness
// lives in the schema so concurrent writers cannot race past a duplicate
// check, per the conflict-mapping contract of the store.
func initSchema(db *sql.DB, log *logger.Logger) error {
	log.Info("Initializing database schema")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			name TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS airlines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			iata TEXT UNIQUE,
			icao TEXT UNIQUE,
			callsign TEXT NOT NULL UNIQUE,
			country TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS airports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			city TEXT NOT NULL,
			country TEXT NOT NULL,
			iata TEXT UNIQUE,
			icao TEXT UNIQUE,
			latitude REAL,
			longitude REAL
		)`,
		`CREATE TABLE IF NOT EXISTS planes (
			code TEXT PRIMARY KEY,
			name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			airline TEXT NOT NULL,
			departure TEXT NOT NULL,
			arrival TEXT NOT NULL,
			planes TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (airline, departure, arrival)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_departure ON routes(departure)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_airline ON routes(airline)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// placeholders returns a comma-joined list of n "?" placeholders
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ",")
}

// codeFilter builds an AND-combined equality filter over the non-empty
// code parameters, returning the clause and positional values
func codeFilter(iata, icao string) (string, []interface{}) {
	var clauses []string
	var values []interface{}
	if iata != "" {
		clauses = append(clauses, "iata = ?")
		values = append(values, storage.NormalizeCode(iata))
	}
	if icao != "" {
		clauses = append(clauses, "icao = ?")
		values = append(values, storage.NormalizeCode(icao))
	}
	return strings.Join(clauses, " AND "), values
}

// isUniqueViolation reports whether the error is a uniqueness constraint
// failure from the SQLite driver
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ storage.Store = (*Store)(nil)
