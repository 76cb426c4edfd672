package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	CORSOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseDSN string `envconfig:"DATABASE_DSN"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/magaza.db"`
	DBLogLevel  string `envconfig:"DB_LOG_LEVEL" default:"warn"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"` // console | json

	LoginMaxAttempts  int           `envconfig:"LOGIN_MAX_ATTEMPTS" default:"5"`
	LoginLockDuration time.Duration `envconfig:"LOGIN_LOCK_DURATION" default:"15m"`
	LoginRateLimit    int           `envconfig:"LOGIN_RATE_LIMIT" default:"20"` // dakikada IP başına istek
}

// Load ortam değişkenlerinden konfigürasyonu okur ve doğrular.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config okunamadı: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))

	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		return fmt.Errorf("APP_ENV 'development' veya 'production' olmalı, gelen: %q", c.AppEnv)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment değişkeni tanımlanmamış")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET en az 32 karakter olmalıdır")
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH boş olamaz")
		}
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres için DATABASE_DSN zorunlu")
		}
	default:
		return fmt.Errorf("DB_DRIVER 'sqlite' veya 'postgres' olmalı, gelen: %q", c.DBDriver)
	}

	if c.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS pozitif olmalı")
	}
	if c.LoginLockDuration <= 0 {
		return fmt.Errorf("LOGIN_LOCK_DURATION pozitif olmalı")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL pozitif olmalı")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Warnings production için riskli varsayılanları listeler.
func (c *Config) Warnings() []string {
	var out []string
	if c.IsProduction() && c.DBDriver == DriverSQLite {
		out = append(out, "production ortamında SQLite kullanılıyor, Postgres önerilir")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için kendi domain'ini tanımla")
	}
	return out
}

// AllowedOrigins virgülle ayrılmış CORS listesini temizleyerek döndürür.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
