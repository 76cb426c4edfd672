package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LoginLockDuration)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32")
}

func TestValidatePostgresNeedsDSN(t *testing.T) {
	cfg := Config{
		AppEnv:            EnvProduction,
		DBDriver:          "Postgres",
		JWTSecret:         testSecret,
		JWTTTL:            time.Hour,
		LoginMaxAttempts:  3,
		LoginLockDuration: time.Minute,
	}
	require.Error(t, cfg.Validate())

	cfg.DatabaseDSN = "host=localhost dbname=magaza"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := Config{
		AppEnv:            EnvDevelopment,
		DBDriver:          "mysql",
		JWTSecret:         testSecret,
		JWTTTL:            time.Hour,
		LoginMaxAttempts:  3,
		LoginLockDuration: time.Minute,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestAllowedOriginsAndWarnings(t *testing.T) {
	cfg := Config{
		AppEnv:      EnvProduction,
		DBDriver:    DriverSQLite,
		CORSOrigins: " https://a.example.com , ,https://b.example.com",
	}
	assert.Equal(t, "https://a.example.com,https://b.example.com", cfg.AllowedOrigins())
	assert.Len(t, cfg.Warnings(), 1)

	cfg.CORSOrigins = defaultCORSOrigins
	assert.Len(t, cfg.Warnings(), 2)
}
