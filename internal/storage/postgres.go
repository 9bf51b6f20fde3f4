package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore guarda las claves en la tabla client_settings.
type PgStore struct {
	pool pgQuerier
}

// NewPgStore recibe un *pgxpool.Pool (o cualquier conexion pgx compatible).
func NewPgStore(pool pgQuerier) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureSchema crea la tabla si no existe.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS client_settings (
			name       TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PgStore) Get(ctx context.Context, key string) (string, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	const query = `
		SELECT value
		FROM client_settings
		WHERE name = $1
	`
	var value string
	err = s.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *PgStore) Set(ctx context.Context, key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO client_settings (name, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	_, err = s.pool.Exec(ctx, query, key, value)
	return err
}

func (s *PgStore) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	const query = `DELETE FROM client_settings WHERE name = $1`
	_, err = s.pool.Exec(ctx, query, key)
	return err
}
