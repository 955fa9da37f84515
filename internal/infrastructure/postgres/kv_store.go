package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

var _ repository.KVStore = (*KVStore)(nil)

const kvTable = "agro_kv"

const createKVTable = `
	CREATE TABLE IF NOT EXISTS agro_kv (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// KVStore almacén clave-valor sobre una tabla PostgreSQL (usable con pool o tx).
type KVStore struct {
	q       Querier
	builder squirrel.StatementBuilderType
	closeFn func()
}

// NewKVStore construye el adaptador. closeFn se llama en Close (p. ej. pool.Close); puede ser nil.
func NewKVStore(q Querier, closeFn func()) *KVStore {
	return &KVStore{
		q:       q,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		closeFn: closeFn,
	}
}

// EnsureSchema crea la tabla si no existe.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, createKVTable); err != nil {
		return fmt.Errorf("crear %s: %w", kvTable, err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	sql, args, err := s.builder.Select("value").From(kvTable).Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build get: %w", err)
	}
	var value []byte
	err = s.q.QueryRow(ctx, sql, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) || (err != nil && isUndefinedTable(err)) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	sql, args, err := s.builder.Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set: %w", err)
	}
	if _, err := s.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	sql, args, err := s.builder.Delete(kvTable).Where(squirrel.Eq{"key": keys}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	sql, args, err := s.builder.Select("key").From(kvTable).OrderBy("key").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keys: %w", err)
	}
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	return keys, nil
}

func (s *KVStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
