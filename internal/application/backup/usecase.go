package backup

import (
	"context"
	"time"

	"github.com/jhoicas/agro-inventario/internal/application/exchange"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/remote"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// Importer aplica un documento descargado.
type Importer interface {
	Import(ctx context.Context, raw []byte) (*exchange.Result, error)
}

// CheckResult resultado de verificar credenciales y destino.
type CheckResult struct {
	OK      bool               `json:"ok"`
	Info    *remote.Info       `json:"info,omitempty"`
	Last    *remote.LastBackup `json:"last,omitempty"`
	Message string             `json:"message,omitempty"`
}

// UseCase operaciones de respaldo expuestas a HTTP y CLI.
type UseCase struct {
	remote    remote.Remote
	scheduler *Scheduler
	importer  Importer
	log       *logger.Logger
}

// NewUseCase construye el caso de uso. r puede ser nil (respaldo deshabilitado).
func NewUseCase(r remote.Remote, scheduler *Scheduler, importer Importer, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{remote: r, scheduler: scheduler, importer: importer, log: log.Component("backup")}
}

// Now respaldo manual inmediato.
func (uc *UseCase) Now(ctx context.Context) (*remote.Receipt, error) {
	r, err := uc.scheduler.Now(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("respaldo manual fallido")
		return nil, err
	}
	uc.log.Info().Str("provider", r.Provider).Str("version", r.Version).Msg("respaldo manual subido")
	return r, nil
}

// Restore descarga el último respaldo y lo importa. El respaldo automático que disparan esas
// escrituras se descarta: el remoto ya tiene ese contenido.
func (uc *UseCase) Restore(ctx context.Context) (*exchange.Result, error) {
	if uc.remote == nil {
		return nil, remote.ErrRemoteNotConfigured
	}
	raw, err := uc.remote.Pull(ctx)
	if err != nil {
		return nil, err
	}
	res, err := uc.importer.Import(ctx, raw)
	if err != nil {
		return nil, err
	}
	uc.scheduler.Cancel()
	uc.log.Info().Str("format", res.Format).Int("products", res.Products).Int("movements", res.Movements).
		Msg("respaldo restaurado")
	return res, nil
}

// Check verifica el acceso al destino. Los errores de acceso se devuelven en el resultado.
func (uc *UseCase) Check(ctx context.Context) (*CheckResult, error) {
	if uc.remote == nil {
		return nil, remote.ErrRemoteNotConfigured
	}
	info, err := uc.remote.Check(ctx)
	if err != nil {
		return &CheckResult{OK: false, Message: err.Error()}, nil
	}
	last, err := uc.remote.Last(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo leer el último respaldo")
	}
	return &CheckResult{OK: true, Info: info, Last: last}, nil
}

// Status estado del programador.
func (uc *UseCase) Status(ctx context.Context) Status {
	return uc.scheduler.Status()
}

// Last último respaldo conocido en el remoto.
func (uc *UseCase) Last(ctx context.Context) (*remote.LastBackup, error) {
	if uc.remote == nil {
		return nil, remote.ErrRemoteNotConfigured
	}
	return uc.remote.Last(ctx)
}

// Wait espera a que el programador quede sin trabajo pendiente o vence el plazo.
func (uc *UseCase) Wait(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	t := time.NewTicker(poll)
	defer t.Stop()
	for {
		st := uc.scheduler.Status().State
		if st != StatePending && st != StateSyncing {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
