package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

var _ repository.KVStore = (*KVStore)(nil)

// Options conexión al servidor Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix se antepone a cada clave; vacío = "agro:".
	Prefix string
}

// KVStore almacén clave-valor sobre Redis. Las claves no expiran.
type KVStore struct {
	client *goredis.Client
	prefix string
}

// NewKVStore crea el cliente y verifica la conexión con PING.
func NewKVStore(ctx context.Context, opts Options) (*KVStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewKVStoreWithClient(client, opts.Prefix), nil
}

// NewKVStoreWithClient usa un cliente ya creado.
func NewKVStoreWithClient(client *goredis.Client, prefix string) *KVStore {
	if prefix == "" {
		prefix = "agro:"
	}
	return &KVStore{client: client, prefix: prefix}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Keys recorre con SCAN las claves del prefijo.
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *KVStore) Close() error {
	return s.client.Close()
}
