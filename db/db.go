package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store wraps the relational database behind database/sql. The default
// driver is the pure-Go SQLite build; a Postgres DSN switches to pgx.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects using the given driver. For sqlite the dsn is a file path;
// for postgres it is a DATABASE_URL-style DSN.
func Open(driver, dsn string, logger *slog.Logger) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		conn *sql.DB
		err  error
	)

	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return nil, fmt.Errorf("sqlite database path is empty")
		}
		conn, err = sql.Open("sqlite", dsn)
		if err == nil {
			// The sqlite driver gives one database per connection for
			// in-memory DSNs, and file locking is cheaper with a single
			// writer anyway.
			conn.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		conn, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Info("Connected to database", slog.String("driver", driver))

	return &Store{db: conn, driver: driver, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Driver() string {
	return s.driver
}

// bind rewrites "?" placeholders into the $n form pgx expects. SQLite takes
// the query unchanged.
func (s *Store) bind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Query runs an arbitrary read statement and returns every row as a
// column-name keyed map, with byte slices normalized to strings. This is
// the execution surface the personalised-data handler uses for generated
// SQL; nothing here enforces that the statement is read-only.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]interface{}, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading columns: %w", err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var query string
	switch s.driver {
	case DriverPostgres:
		query = "SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename = ?"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
	}

	var found string
	err := s.db.QueryRowContext(ctx, s.bind(query), name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
