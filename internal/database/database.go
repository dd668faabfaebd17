package database

import (
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Connect opens the database named by dsn and exits the process on failure.
func Connect(dsn string) *sqlx.DB {
	db, err := Open(dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}

// Open opens a PostgreSQL database for postgres:// DSNs and a SQLite file
// otherwise. SQLite connections enforce foreign keys so that deletes
// cascade in the store.
func Open(dsn string) (*sqlx.DB, error) {
	if IsPostgres(dsn) {
		db, err := sqlx.Connect("pgx", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(10)
		return db, nil
	}

	path, _ := SQLitePath(dsn)
	if path == "" {
		path = ":memory:"
	}
	db, err := sqlx.Connect("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// a single connection serialises units of work and keeps :memory: alive
	db.SetMaxOpenConns(1)
	return db, nil
}

func IsPostgres(dsn string) bool {
	d := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://")
}

// SQLitePath returns the data file behind dsn. ok is false for PostgreSQL
// and in-memory databases, which have no file to copy.
func SQLitePath(dsn string) (path string, ok bool) {
	if IsPostgres(dsn) {
		return "", false
	}
	path = strings.TrimSpace(dsn)
	path = strings.TrimPrefix(path, "sqlite:///")
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return path, false
	}
	return path, true
}

func DialectOf(db *sqlx.DB) Dialect {
	if db.DriverName() == "pgx" {
		return Postgres
	}
	return SQLite
}
