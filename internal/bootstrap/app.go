// Package bootstrap arma la aplicación a partir de la configuración: almacén, respaldo remoto
// y casos de uso. Lo comparten el servidor HTTP y la CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/application/backup"
	"github.com/jhoicas/agro-inventario/internal/application/exchange"
	"github.com/jhoicas/agro-inventario/internal/application/inventory"
	"github.com/jhoicas/agro-inventario/internal/application/usecase"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/localstore"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/redis"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/remote"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/agro-inventario/internal/interfaces/http"
	"github.com/jhoicas/agro-inventario/pkg/config"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// App contenedor de dependencias.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	Store  *localstore.Store

	Products  *usecase.ProductUseCase
	Settings  *usecase.SettingsUseCase
	Movements *inventory.MovementUseCase
	Transfers *inventory.TransferUseCase
	Mixes     *inventory.MixUseCase
	Stock     *inventory.StockUseCase
	Snapshots *inventory.SnapshotUseCase
	Exchange  *exchange.Service
	Scheduler *backup.Scheduler
	Backup    *backup.UseCase
	PDF       *pdf.ReportGenerator
}

// OpenStore abre el almacén clave-valor según STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.KVStore, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite, "":
		kv, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		kv := postgres.NewKVStore(pool, pool.Close)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return kv, nil
	case config.StoreRedis:
		kv, err := redis.NewKVStore(ctx, redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			Prefix:   cfg.Store.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return kv, nil
	}
	return nil, fmt.Errorf("driver de almacén desconocido: %q", cfg.Store.Driver)
}

// NewRemote construye el destino de respaldo; nil, nil si no hay proveedor.
func NewRemote(ctx context.Context, cfg config.BackupConfig) (remote.Remote, error) {
	switch cfg.Provider {
	case "", config.BackupNone:
		return nil, nil
	case config.BackupGitHub:
		gh, err := remote.NewGitHub(remote.GitHubOptions{
			Token:   cfg.GitHub.Token,
			Owner:   cfg.GitHub.Owner,
			Repo:    cfg.GitHub.Repo,
			Branch:  cfg.GitHub.Branch,
			Path:    cfg.GitHub.Path,
			BaseURL: cfg.GitHub.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return gh, nil
	case config.BackupS3:
		s3, err := remote.NewS3(ctx, remote.S3Options{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			Key:          cfg.S3.Key,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	return nil, fmt.Errorf("proveedor de respaldo desconocido: %q", cfg.Provider)
}

// New abre el almacén configurado y arma la aplicación.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	kv, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("abrir almacén %s: %w", cfg.Store.Driver, err)
	}
	app, err := NewWithKV(ctx, cfg, kv, log)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return app, nil
}

// NewWithKV arma la aplicación sobre un almacén ya abierto. Un proveedor de respaldo mal
// configurado deja el respaldo deshabilitado con un aviso; la aplicación sigue funcionando.
func NewWithKV(ctx context.Context, cfg *config.Config, kv repository.KVStore, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts, err := stockOptions(cfg.Inventory)
	if err != nil {
		return nil, err
	}

	store := localstore.New(kv)
	repos := inventory.Repos{
		Products:  store.Products(),
		Movements: store.Movements(),
		Snapshots: store.Snapshots(),
		Suppliers: store.Suppliers(),
		Settings:  store.Settings(),
		Mixes:     store.Mixes(),
		CostData:  store.CostData(),
	}
	ex := exchange.NewService(exchange.Repos{
		Products:  repos.Products,
		Movements: repos.Movements,
		Snapshots: repos.Snapshots,
		Suppliers: repos.Suppliers,
		Settings:  repos.Settings,
		Mixes:     repos.Mixes,
		CostData:  repos.CostData,
		Schema:    store.Schema(),
	}, store, log.Component("exchange"))

	rem, err := NewRemote(ctx, cfg.Backup)
	if err != nil {
		if !errors.Is(err, remote.ErrRemoteNotConfigured) {
			return nil, err
		}
		log.Warn().Err(err).Str("provider", cfg.Backup.Provider).Msg("respaldo remoto deshabilitado")
		rem = nil
	}
	sched := backup.NewScheduler(rem, ex, backup.SchedulerOptions{
		Debounce: cfg.Backup.Debounce,
		Logger:   log.Component("backup"),
	})
	if rem != nil {
		store.OnWrite(sched.OnWrite)
	}

	return &App{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Products:  usecase.NewProductUseCase(repos.Products),
		Settings:  usecase.NewSettingsUseCase(repos.Settings, repos.Suppliers),
		Movements: inventory.NewMovementUseCase(repos, log.Component("movements")),
		Transfers: inventory.NewTransferUseCase(repos, log.Component("transfers")),
		Mixes:     inventory.NewMixUseCase(repos, log.Component("mixes")),
		Stock:     inventory.NewStockUseCase(repos, log.Component("stock"), opts),
		Snapshots: inventory.NewSnapshotUseCase(repos, log.Component("snapshots")),
		Exchange:  ex,
		Scheduler: sched,
		Backup:    backup.NewUseCase(rem, sched, ex, log),
		PDF:       pdf.NewReportGenerator(),
	}, nil
}

func stockOptions(cfg config.InventoryConfig) (inventory.StockOptions, error) {
	opts := inventory.StockOptions{SeasonStartYear: cfg.SeasonStartYear}
	if cfg.DefaultThreshold != "" {
		v, err := decimal.NewFromString(cfg.DefaultThreshold)
		if err != nil {
			return opts, fmt.Errorf("INVENTORY_DEFAULT_THRESHOLD: %w", err)
		}
		opts.DefaultThreshold = v
	}
	if cfg.HighConsumptionFactor != "" {
		v, err := decimal.NewFromString(cfg.HighConsumptionFactor)
		if err != nil {
			return opts, fmt.Errorf("INVENTORY_HIGH_CONSUMPTION_FACTOR: %w", err)
		}
		opts.HighConsumptionFactor = v
	}
	return opts, nil
}

// RouterDeps dependencias del router HTTP.
func (a *App) RouterDeps() httpRouter.RouterDeps {
	return httpRouter.RouterDeps{
		ProductUC:  a.Products,
		SettingsUC: a.Settings,
		MovementUC: a.Movements,
		TransferUC: a.Transfers,
		MixUC:      a.Mixes,
		StockUC:    a.Stock,
		SnapshotUC: a.Snapshots,
		Exchange:   a.Exchange,
		BackupUC:   a.Backup,
		PDF:        a.PDF,
	}
}

// Close espera el respaldo en curso y cierra el almacén.
func (a *App) Close() error {
	a.Scheduler.Close()
	return a.Store.Close()
}
