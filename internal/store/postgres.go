package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value JSONB NOT NULL
);
`

// PostgresStore implements KV on a single key/JSONB table, for
// deployments that want the collections in a database instead of local
// files. The semantics are identical to FileStore: whole-collection
// reads and replacing writes.
type PostgresStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// OpenPostgres connects to the DSN, verifies the connection and creates
// the kv table if it does not exist.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return NewPostgresStore(db), nil
}

// Get returns the JSON stored under key, or (nil, nil) if the key has
// never been written.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT value FROM kv WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Put stores the JSON under key, replacing any previous value.
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
