package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/pkg/logger"
)

// Config holds PostgreSQL connection settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Store is a PostgreSQL-backed entity store over a pgx connection pool
type Store struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewStore opens a connection pool to PostgreSQL, pings it, and ensures the
// schema exists
func NewStore(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	storeLogger := log.Named("postgres")

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{pool: pool, logger: storeLogger}
	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	storeLogger.Info("PostgreSQL store ready",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Database))
	return s, nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// createSchema creates the tables. Natural-key uniqueness lives in the
// schema so concurrent writers cannot race past a duplicate check.
func (s *Store) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS countries (
		name TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS airlines (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		iata TEXT UNIQUE,
		icao TEXT UNIQUE,
		callsign TEXT NOT NULL UNIQUE,
		country TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS airports (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		country TEXT NOT NULL,
		iata TEXT UNIQUE,
		icao TEXT UNIQUE,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);

	CREATE TABLE IF NOT EXISTS planes (
		code TEXT PRIMARY KEY,
		name TEXT
	);

	CREATE TABLE IF NOT EXISTS routes (
		airline TEXT NOT NULL,
		departure TEXT NOT NULL,
		arrival TEXT NOT NULL,
		planes TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (airline, departure, arrival)
	);

	CREATE INDEX IF NOT EXISTS idx_routes_departure ON routes(departure);
	CREATE INDEX IF NOT EXISTS idx_routes_airline ON routes(airline);
	`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// AirlineNamesByCountryCodes returns the names of airlines based in the
// countries identified by the given ISO codes
func (s *Store) AirlineNamesByCountryCodes(ctx context.Context, codes []string) ([]string, error) {
	codes = storage.NormalizeCodes(codes)

	query := fmt.Sprintf(`SELECT a.name FROM airlines a
		JOIN countries c ON a.country = c.name
		WHERE c.code IN (%s)
		ORDER BY a.name`, placeholders(1, len(codes)))

	args := make([]interface{}, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query airlines by country: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan airline name: %w", err)
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

	row := s.pool.QueryRow(ctx,
		`SELECT name, iata, icao, callsign, country FROM airlines WHERE `+filter, values...)
	return scanAirline(row)
}

// AirlineAirports returns the airline with the given IATA or ICAO code and
// the distinct airports appearing as an endpoint of any of its routes
func (s *Store) AirlineAirports(ctx context.Context, code string) (*storage.Airline, []storage.Airport, error) {
	code = storage.NormalizeCode(code)

	airline, err := scanAirline(s.pool.QueryRow(ctx,
		`SELECT name, iata, icao, callsign, country FROM airlines WHERE iata = $1 OR icao = $1`, code))
	if err != nil {
		return nil, nil, err
	}

	airlineCode := airline.IATA
	if airlineCode == "" {
		airlineCode = airline.ICAO
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT a.name, a.city, a.country, a.iata, a.icao, a.latitude, a.longitude
		FROM airports a
		WHERE a.iata IN (
			SELECT DISTINCT departure FROM routes WHERE airline = $1
			UNION
			SELECT DISTINCT arrival FROM routes WHERE airline = $1
		)`, airlineCode)
	if err != nil {
		return nil, nil, fmt.Errorf("query airline airports: %w", err)
	}
	defer rows.Close()

	airports, err := collectAirports(rows)
	if err != nil {
		return nil, nil, err
	}
	return airline, airports, nil
}

// CreateAirline inserts a new airline and returns the stored row
func (s *Store) CreateAirline(ctx context.Context, airline storage.Airline) (*storage.Airline, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO airlines (name, iata, icao, callsign, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING name, iata, icao, callsign, country`,
		airline.Name,
		nullableCode(airline.IATA),
		nullableCode(airline.ICAO),
		airline.Callsign,
		airline.Country)

	inserted, err := scanAirline(row)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Airline created",
		logger.String("name", inserted.Name),
		logger.String("callsign", inserted.Callsign))
	return inserted, nil
}

// DeleteAirlines deletes airlines matching all of the provided codes
func (s *Store) DeleteAirlines(ctx context.Context, iata, icao string) (int64, error) {
	filter, values := codeFilter(iata, icao)
	if filter == "" {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM airlines WHERE `+filter, values...)
	if err != nil {
		return 0, fmt.Errorf("delete airlines: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AirlineExists reports whether an airline with the given IATA code exists
func (s *Store) AirlineExists(ctx context.Context, iata string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM airlines WHERE iata = $1`,
		storage.NormalizeCode(iata)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check airline existence: %w", err)
	}
	return true, nil
}

// AirportsByCountryCodes returns the airports located in the countries
// identified by the given ISO codes
func (s *Store) AirportsByCountryCodes(ctx context.Context, codes []string) ([]storage.Airport, error) {
	codes = storage.NormalizeCodes(codes)

	query := fmt.Sprintf(`SELECT a.name, a.city, a.country, a.iata, a.icao, a.latitude, a.longitude
		FROM airports a
		JOIN countries c ON a.country = c.name
		WHERE c.code IN (%s)
		ORDER BY a.name`, placeholders(1, len(codes)))

	args := make([]interface{}, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query airports by country: %w", err)
	}
	defer rows.Close()

	return collectAirports(rows)
}

// AirportByCodes returns the airport matching all of the provided codes
func (s *Store) AirportByCodes(ctx context.Context, iata, icao string) (*storage.Airport, error) {
	filter, values := codeFilter(iata, icao)
	if filter == "" {
		return nil, storage.ErrNotFound
	}

	row := s.pool.QueryRow(ctx,
		`SELECT name, city, country, iata, icao, latitude, longitude FROM airports WHERE `+filter, values...)
	return scanAirportRow(row)
}

// CreateAirport inserts a new airport
func (s *Store) CreateAirport(ctx context.Context, airport storage.Airport) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO airports (name, city, country, iata, icao, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		airport.Name,
		airport.City,
		airport.Country,
		nullableCode(airport.IATA),
		nullableCode(airport.ICAO),
		airport.Latitude,
		airport.Longitude)
	if err != nil {
		return mapError(err, "insert airport")
	}

	s.logger.Debug("Airport created",
		logger.String("name", airport.Name),
		logger.String("iata", airport.IATA))
	return nil
}

// DeleteAirports deletes airports matching all of the provided codes
func (s *Store) DeleteAirports(ctx context.Context, iata, icao string) (int64, error) {
	filter, values := codeFilter(iata, icao)
	if filter == "" {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM airports WHERE `+filter, values...)
	if err != nil {
		return 0, fmt.Errorf("delete airports: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AirportsExist reports whether both airports exist (by IATA code)
func (s *Store) AirportsExist(ctx context.Context, departure, arrival string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM airports WHERE iata IN ($1, $2)`,
		storage.NormalizeCode(departure), storage.NormalizeCode(arrival)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check airport existence: %w", err)
	}
	return count == 2, nil
}

// RoutesBetween returns the routes flown between the two airports
func (s *Store) RoutesBetween(ctx context.Context, departure, arrival string) ([]storage.Route, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT airline, departure, arrival, planes
		FROM routes
		WHERE departure = $1 AND arrival = $2
		ORDER BY airline`,
		storage.NormalizeCode(departure), storage.NormalizeCode(arrival))
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	routes := make([]storage.Route, 0)
	for rows.Next() {
		var r storage.Route
		var planes string
		if err := rows.Scan(&r.Airline, &r.Departure, &r.Arrival, &planes); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		r.Aircraft = storage.SplitAircraft(planes)
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// ArrivalAirports returns the distinct airports reachable via a direct route
// from the given departure airport
func (s *Store) ArrivalAirports(ctx context.Context, departure string) ([]storage.Airport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT a.name, a.city, a.country, a.iata, a.icao, a.latitude, a.longitude
		FROM routes r
		JOIN airports a ON r.arrival = a.iata
		WHERE r.departure = $1
		ORDER BY a.name`,
		storage.NormalizeCode(departure))
	if err != nil {
		return nil, fmt.Errorf("query arrival airports: %w", err)
	}
	defer rows.Close()

	return collectAirports(rows)
}

// RoutesByAirlineAircraft returns the route endpoints flown by an airline
// with a given aircraft type
func (s *Store) RoutesByAirlineAircraft(ctx context.Context, airline, aircraft string) ([]storage.RouteEnds, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.departure, dep.name AS departure_name, r.arrival, arr.name AS arrival_name
		FROM routes r
		JOIN airports dep ON r.departure = dep.iata
		JOIN airports arr ON r.arrival = arr.iata
		WHERE r.airline = $1 AND r.planes LIKE $2`,
		storage.NormalizeCode(airline),
		"%"+storage.NormalizeCode(aircraft)+"%")
	if err != nil {
		return nil, fmt.Errorf("query routes by airline: %w", err)
	}
	defer rows.Close()

	ends := make([]storage.RouteEnds, 0)
	for rows.Next() {
		var e storage.RouteEnds
		if err := rows.Scan(&e.Departure, &e.DepartureName, &e.Arrival, &e.ArrivalName); err != nil {
			return nil, fmt.Errorf("scan route endpoints: %w", err)
		}
		ends = append(ends, e)
	}
	return ends, rows.Err()
}

// CreateRoute inserts a new route
func (s *Store) CreateRoute(ctx context.Context, route storage.Route) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO routes (airline, departure, arrival, planes)
		VALUES ($1, $2, $3, $4)`,
		storage.NormalizeCode(route.Airline),
		storage.NormalizeCode(route.Departure),
		storage.NormalizeCode(route.Arrival),
		storage.JoinAircraft(storage.NormalizeCodes(route.Aircraft)))
	if err != nil {
		return mapError(err, "insert route")
	}

	s.logger.Debug("Route created",
		logger.String("airline", route.Airline),
		logger.String("departure", route.Departure),
		logger.String("arrival", route.Arrival))
	return nil
}

// UpdateRouteAircraft unions the given aircraft codes into the route's
// stored list
func (s *Store) UpdateRouteAircraft(ctx context.Context, airline, departure, arrival string, aircraft []string) (string, bool, error) {
	airline = storage.NormalizeCode(airline)
	departure = storage.NormalizeCode(departure)
	arrival = storage.NormalizeCode(arrival)

	var planes string
	err := s.pool.QueryRow(ctx, `
		SELECT planes FROM routes
		WHERE airline = $1 AND departure = $2 AND arrival = $3`,
		airline, departure, arrival).Scan(&planes)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, storage.ErrNotFound
	}
	if err != nil {
		return "", false, fmt.Errorf("query route: %w", err)
	}

	merged, changed := storage.UnionAircraft(
		storage.SplitAircraft(planes),
		storage.NormalizeCodes(aircraft))
	joined := storage.JoinAircraft(merged)
	if !changed {
		return joined, false, nil
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE routes SET planes = $4
		WHERE airline = $1 AND departure = $2 AND arrival = $3`,
		airline, departure, arrival, joined)
	if err != nil {
		return "", false, fmt.Errorf("update route: %w", err)
	}
	return joined, true, nil
}

// DeleteRoute deletes the route with the given composite key
func (s *Store) DeleteRoute(ctx context.Context, airline, departure, arrival string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM routes
		WHERE airline = $1 AND departure = $2 AND arrival = $3`,
		storage.NormalizeCode(airline),
		storage.NormalizeCode(departure),
		storage.NormalizeCode(arrival))
	if err != nil {
		return 0, fmt.Errorf("delete route: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CreateCountry inserts a country lookup row
func (s *Store) CreateCountry(ctx context.Context, country storage.Country) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO countries (name, code) VALUES ($1, $2)`,
		country.Name, storage.NormalizeCode(country.Code))
	return mapError(err, "insert country")
}

// CreatePlaneType inserts an aircraft type lookup row
func (s *Store) CreatePlaneType(ctx context.Context, planeType storage.PlaneType) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO planes (code, name) VALUES ($1, $2)`,
		storage.NormalizeCode(planeType.Code), planeType.Name)
	return mapError(err, "insert plane type")
}

// PlaneTypeExists reports whether an aircraft type with the given code exists
func (s *Store) PlaneTypeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM planes WHERE code = $1`,
		storage.NormalizeCode(code)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check plane type existence: %w", err)
	}
	return true, nil
}

// placeholders returns a comma-joined list of n positional placeholders
// starting at $start
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}

// codeFilter builds an AND-combined equality filter over the non-empty
// code parameters
func codeFilter(iata, icao string) (string, []interface{}) {
	var clauses []string
	var values []interface{}
	if iata != "" {
		values = append(values, storage.NormalizeCode(iata))
		clauses = append(clauses, fmt.Sprintf("iata = $%d", len(values)))
	}
	if icao != "" {
		values = append(values, storage.NormalizeCode(icao))
		clauses = append(clauses, fmt.Sprintf("icao = $%d", len(values)))
	}
	return strings.Join(clauses, " AND "), values
}

// nullableCode maps an absent code to NULL so the UNIQUE constraints on the
// code columns do not collide on empty strings
func nullableCode(code string) interface{} {
	if code == "" {
		return nil
	}
	return storage.NormalizeCode(code)
}

// mapError translates driver errors into store sentinels
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanAirline(row pgx.Row) (*storage.Airline, error) {
	var a storage.Airline
	var iata, icao *string
	if err := row.Scan(&a.Name, &iata, &icao, &a.Callsign, &a.Country); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, mapError(err, "scan airline")
	}
	if iata != nil {
		a.IATA = *iata
	}
	if icao != nil {
		a.ICAO = *icao
	}
	return &a, nil
}

func scanAirportRow(row pgx.Row) (*storage.Airport, error) {
	var a storage.Airport
	var iata, icao *string
	if err := row.Scan(&a.Name, &a.City, &a.Country, &iata, &icao, &a.Latitude, &a.Longitude); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan airport: %w", err)
	}
	if iata != nil {
		a.IATA = *iata
	}
	if icao != nil {
		a.ICAO = *icao
	}
	return &a, nil
}

func collectAirports(rows pgx.Rows) ([]storage.Airport, error) {
	airports := make([]storage.Airport, 0)
	for rows.Next() {
		var a storage.Airport
		var iata, icao *string
		if err := rows.Scan(&a.Name, &a.City, &a.Country, &iata, &icao, &a.Latitude, &a.Longitude); err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		if iata != nil {
			a.IATA = *iata
		}
		if icao != nil {
			a.ICAO = *icao
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

var _ storage.Store = (*Store)(nil)
