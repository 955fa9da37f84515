package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers del almacén local.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Proveedores de respaldo remoto.
const (
	BackupNone   = "none"
	BackupGitHub = "github"
	BackupS3     = "s3"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	DB        DBConfig
	Backup    BackupConfig
	Inventory InventoryConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig almacén clave-valor local.
type StoreConfig struct {
	Driver        string // sqlite | postgres | redis
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// DBConfig configuración de PostgreSQL (driver postgres).
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN arma la URL de conexión; la contraseña va codificada.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// BackupConfig respaldo remoto del documento de exportación.
type BackupConfig struct {
	Provider string        // none | github | s3
	Debounce time.Duration // espera desde la última escritura
	GitHub   GitHubConfig
	S3       S3Config
}

// Enabled indica si hay un proveedor configurado.
func (c BackupConfig) Enabled() bool {
	return c.Provider != "" && c.Provider != BackupNone
}

// GitHubConfig repositorio destino del respaldo.
type GitHubConfig struct {
	Token   string
	Owner   string
	Repo    string
	Branch  string
	Path    string
	BaseURL string // API; vacío = https://api.github.com
}

// S3Config bucket destino del respaldo (S3 o compatible).
type S3Config struct {
	Endpoint     string // vacío = AWS
	Region       string
	Bucket       string
	Key          string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// InventoryConfig parámetros de cálculo.
type InventoryConfig struct {
	DefaultThreshold      string // decimal; vacío = el de settings
	HighConsumptionFactor string // decimal; vacío = 2
	SeasonStartYear       int    // 0 = según la fecha actual
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, STORE_DRIVER, BACKUP_PROVIDER, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // opcional

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // opcional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	debounce, err := time.ParseDuration(getString(v, "BACKUP_DEBOUNCE", "2m"))
	if err != nil {
		return nil, fmt.Errorf("BACKUP_DEBOUNCE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "agro-inventario"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getString(v, "STORE_DRIVER", StoreSQLite)),
			SQLitePath:    getString(v, "STORE_SQLITE_PATH", "agro-inventario.db"),
			RedisAddr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getString(v, "REDIS_PASSWORD", ""),
			RedisDB:       getInt(v, "REDIS_DB", 0),
			RedisPrefix:   getString(v, "REDIS_PREFIX", "agro:"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "agro_inventario"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Backup: BackupConfig{
			Provider: strings.ToLower(getString(v, "BACKUP_PROVIDER", BackupNone)),
			Debounce: debounce,
			GitHub: GitHubConfig{
				Token:   getString(v, "GITHUB_TOKEN", ""),
				Owner:   getString(v, "GITHUB_OWNER", ""),
				Repo:    getString(v, "GITHUB_REPO", ""),
				Branch:  getString(v, "GITHUB_BRANCH", "main"),
				Path:    getString(v, "GITHUB_PATH", "backups/agro-berry-data.json"),
				BaseURL: getString(v, "GITHUB_API_URL", ""),
			},
			S3: S3Config{
				Endpoint:     getString(v, "S3_ENDPOINT", ""),
				Region:       getString(v, "S3_REGION", "us-east-1"),
				Bucket:       getString(v, "S3_BUCKET", ""),
				Key:          getString(v, "S3_KEY", "backups/agro-berry-data.json"),
				AccessKey:    getString(v, "S3_ACCESS_KEY", ""),
				SecretKey:    getString(v, "S3_SECRET_KEY", ""),
				UsePathStyle: getBool(v, "S3_USE_PATH_STYLE", false),
			},
		},
		Inventory: InventoryConfig{
			DefaultThreshold:      getString(v, "INVENTORY_DEFAULT_THRESHOLD", ""),
			HighConsumptionFactor: getString(v, "INVENTORY_HIGH_CONSUMPTION_FACTOR", ""),
			SeasonStartYear:       getInt(v, "INVENTORY_SEASON_START_YEAR", 0),
		},
	}

	switch cfg.Store.Driver {
	case StoreSQLite, StorePostgres, StoreRedis:
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
	}
	switch cfg.Backup.Provider {
	case BackupNone, BackupGitHub, BackupS3:
	default:
		return nil, fmt.Errorf("BACKUP_PROVIDER desconocido: %q", cfg.Backup.Provider)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return n
	}
	return v.GetInt(key)
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	return v.GetBool(key)
}
