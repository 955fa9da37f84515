package repository

import "context"

// KVStore puerto del almacén clave-valor local donde se guardan las colecciones como JSON.
// Cada escritura reemplaza el valor completo de la clave; gana la última escritura.
type KVStore interface {
	// Get devuelve el valor y false si la clave no existe.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}
