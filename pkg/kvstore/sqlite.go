package kvstore

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	createTableStatement = `CREATE TABLE IF NOT EXISTS kv (
		name TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	upsertStatement = `INSERT INTO kv (name, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	selectStatement = `SELECT value FROM kv WHERE name = $1`
)

// SQLite stores values in a single table of a sqlite database file.
type SQLite struct {
	l  *zap.Logger
	db *sql.DB
}

// NewSQLite opens (and creates if needed) the database at path.
func NewSQLite(ctx context.Context, l *zap.Logger, path string) (*SQLite, error) {
	l = l.Named("sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	// a single connection serializes writers on the database file
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTableStatement); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create kv table")
	}

	l.Info("opened key-value database", zap.String("path", path))
	return &SQLite{l: l, db: db}, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertStatement, key, value, time.Now().UTC()); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectStatement, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, unavailable("get", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
