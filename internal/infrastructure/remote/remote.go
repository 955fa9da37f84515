// Package remote destinos del respaldo del documento de exportación: la API de contenidos
// de GitHub y almacenamiento de objetos compatible con S3.
package remote

import (
	"context"
	"errors"
	"time"
)

// Errores de los destinos remotos. Nunca afectan a las escrituras locales.
var (
	ErrRemoteAuth          = errors.New("credencial remota rechazada")
	ErrRemoteNotFound      = errors.New("destino remoto no encontrado")
	ErrRemoteConflict      = errors.New("conflicto en el destino remoto")
	ErrRemoteUnavailable   = errors.New("destino remoto no disponible")
	ErrRemoteNotConfigured = errors.New("respaldo remoto no configurado")
)

// Receipt confirmación de un respaldo subido.
type Receipt struct {
	Provider string    `json:"provider"`
	Location string    `json:"location"`
	URL      string    `json:"url,omitempty"`
	Version  string    `json:"version,omitempty"` // sha del commit o ETag
	At       time.Time `json:"at"`
}

// Info destino validado con la credencial configurada.
type Info struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
	Private  bool   `json:"private"`
}

// LastBackup último respaldo visible en el destino.
type LastBackup struct {
	At      time.Time `json:"at"`
	Message string    `json:"message,omitempty"`
	URL     string    `json:"url,omitempty"`
}

// Remote destino de respaldo.
type Remote interface {
	Name() string
	Push(ctx context.Context, payload []byte) (*Receipt, error)
	Pull(ctx context.Context) ([]byte, error)
	Check(ctx context.Context) (*Info, error)
	// Last devuelve nil, nil si todavía no hay respaldo.
	Last(ctx context.Context) (*LastBackup, error)
}
