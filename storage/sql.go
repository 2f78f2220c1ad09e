package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

const tableName = "tidynote_kv"

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	driver     Driver
	sqlDriver  string
	createStmt string
	getStmt    string
	putStmt    string
}

var (
	sqliteDialect = dialect{
		driver:    DriverSQLite,
		sqlDriver: "sqlite",
		createStmt: `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
		getStmt: `SELECT payload FROM ` + tableName + ` WHERE name = ?`,
		putStmt: `INSERT INTO ` + tableName + ` (name, payload) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
	}

	postgresDialect = dialect{
		driver:    DriverPostgres,
		sqlDriver: "pgx",
		createStmt: `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
		getStmt: `SELECT payload FROM ` + tableName + ` WHERE name = $1`,
		putStmt: `INSERT INTO ` + tableName + ` (name, payload) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload`,
	}
)

// SQL stores keys as rows of a single table. It backs both the sqlite and
// postgres drivers.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLite opens (creating if needed) a SQLite database at path.
func NewSQLite(ctx context.Context, path string) (*SQL, error) {
	if path == "" {
		path = "tidynote.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	return openSQL(ctx, sqliteDialect, path)
}

// NewPostgres connects to PostgreSQL using dsn.
func NewPostgres(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn required")
	}
	return openSQL(ctx, postgresDialect, dsn)
}

func openSQL(ctx context.Context, d dialect, dsn string) (*SQL, error) {
	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if d.driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", d.driver, err)
	}
	if _, err := db.ExecContext(ctx, d.createStmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s table: %w", tableName, err)
	}
	return &SQL{db: db, dialect: d}, nil
}

func (s *SQL) Driver() Driver { return s.dialect.driver }

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	var payload string
	err := s.db.QueryRowContext(ctx, s.dialect.getStmt, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *SQL) Put(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.putStmt, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error { return s.db.Close() }
