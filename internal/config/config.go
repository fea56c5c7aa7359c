package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// DefaultSlots is the storage slot list used when LEDGER_SLOTS is unset.
const DefaultSlots = "file:alkozay_main_data,file:alkozay_backup_1,sqlite:alkozay_backup_2,sqlite:alkozay_backup_3,memory:alkozay_session_data"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Log     LogConfig
	Ledger  LedgerConfig
	Storage StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name               string   `envconfig:"APP_NAME" default:"alkozay-factory-api"`
	Environment        string   `envconfig:"APP_ENV" default:"development"`
	Version            string   `envconfig:"APP_VERSION" default:"5.0.0"`
	APIKeys            []string `envconfig:"API_KEYS" default:""`
	CORSOrigins        []string `envconfig:"CORS_ORIGINS" default:"*"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // json or text
}

// LedgerConfig holds the factory defaults and persistence cadence.
type LedgerConfig struct {
	FactoryName      string        `envconfig:"LEDGER_FACTORY_NAME" default:"Alkozay Water Factory"`
	Location         string        `envconfig:"LEDGER_LOCATION" default:"Peshawar"`
	AutosaveInterval time.Duration `envconfig:"LEDGER_AUTOSAVE_INTERVAL" default:"2s"`
	NodeID           int64         `envconfig:"LEDGER_NODE_ID" default:"1"`
	Slots            string        `envconfig:"LEDGER_SLOTS" default:""`
}

// StorageConfig holds settings for every slot backend. Only backends named in
// LEDGER_SLOTS are opened.
type StorageConfig struct {
	FileDir    string `envconfig:"STORAGE_FILE_DIR" default:"./data"`
	SQLitePath string `envconfig:"STORAGE_SQLITE_PATH" default:"./data/ledger.db"`

	MySQLHost     string `envconfig:"STORAGE_MYSQL_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"STORAGE_MYSQL_PORT" default:"3306"`
	MySQLName     string `envconfig:"STORAGE_MYSQL_NAME" default:"alkozay"`
	MySQLUser     string `envconfig:"STORAGE_MYSQL_USER" default:"root"`
	MySQLPassword string `envconfig:"STORAGE_MYSQL_PASS" default:""`

	PostgresHost     string `envconfig:"STORAGE_POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"STORAGE_POSTGRES_PORT" default:"5432"`
	PostgresName     string `envconfig:"STORAGE_POSTGRES_NAME" default:"alkozay"`
	PostgresUser     string `envconfig:"STORAGE_POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"STORAGE_POSTGRES_PASS" default:""`
	PostgresSSLMode  string `envconfig:"STORAGE_POSTGRES_SSLMODE" default:"disable"`

	RedisHost      string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort      int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"alkozay:ledger"`

	GCSBucket          string `envconfig:"GCS_BUCKET" default:""`
	GCSPrefix          string `envconfig:"GCS_PREFIX" default:"ledger"`
	GCSCredentialsJSON string `envconfig:"GCS_CREDENTIALS_JSON" default:""`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// SlotSpecs splits the configured slot list, falling back to DefaultSlots.
func (l *LedgerConfig) SlotSpecs() []string {
	raw := strings.TrimSpace(l.Slots)
	if raw == "" {
		raw = DefaultSlots
	}
	var specs []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	return specs
}

// MySQLDSN returns the MySQL data source name.
func (s *StorageConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.MySQLUser, s.MySQLPassword, s.MySQLHost, s.MySQLPort, s.MySQLName)
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StorageConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.PostgresUser, s.PostgresPassword, s.PostgresHost, s.PostgresPort, s.PostgresName, s.PostgresSSLMode)
}

// RedisAddress returns the Redis address in host:port format.
func (s *StorageConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.APIKeys = compact(cfg.App.APIKeys)

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
