package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "locuspoint"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	History      HistoryConfig
	Backups      BackupConfig
	Lifecycle    LifecycleConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOCUSPOINT_APP_ENV" required:"true"`
	Port         string `envconfig:"LOCUSPOINT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCUSPOINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOCUSPOINT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOCUSPOINT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LOCUSPOINT_DB_DSN"`
	Driver string `envconfig:"LOCUSPOINT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOCUSPOINT_DB_HOST"`
	LegacyPort     int    `envconfig:"LOCUSPOINT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOCUSPOINT_DB_USER"`
	LegacyPassword string `envconfig:"LOCUSPOINT_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOCUSPOINT_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOCUSPOINT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOCUSPOINT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOCUSPOINT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOCUSPOINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCUSPOINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("db config: either LOCUSPOINT_DB_DSN or host/user/name must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCUSPOINT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOCUSPOINT_REDIS_ADDR"`
	Password     string        `envconfig:"LOCUSPOINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOCUSPOINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOCUSPOINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCUSPOINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCUSPOINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCUSPOINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCUSPOINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// HistoryConfig tunes the field history ledger.
type HistoryConfig struct {
	// RetainPerField caps how many entries survive per (location, field) pair.
	RetainPerField int `envconfig:"LOCUSPOINT_HISTORY_RETAIN_PER_FIELD" default:"6"`
}

// BackupConfig tunes the snapshot rotation windows per cadence.
type BackupConfig struct {
	OnWriteKeep int `envconfig:"LOCUSPOINT_BACKUP_ON_WRITE_KEEP" default:"5"`
	WeeklyKeep  int `envconfig:"LOCUSPOINT_BACKUP_WEEKLY_KEEP" default:"12"`
}

// LifecycleConfig tunes derived classification.
type LifecycleConfig struct {
	// NewRecordWindow is how long a record carries the New overlay after creation.
	NewRecordWindow time.Duration `envconfig:"LOCUSPOINT_LIFECYCLE_NEW_WINDOW" default:"72h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LOCUSPOINT_CRON_INTERVAL" default:"168h"`
	LockTTL  time.Duration `envconfig:"LOCUSPOINT_CRON_LOCK_TTL" default:"169h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOCUSPOINT_AUTO_MIGRATE" default:"false"`
}
