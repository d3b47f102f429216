package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USERNAME", "clinic")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("DB_NAME", "clinic_prod")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("JWT_EXPIRATION_MINUTES", "30")
	t.Setenv("JWT_REFRESH_EXPIRATION_HOURS", "72")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 30, cfg.JWTExpirationMinutes)
	assert.Equal(t, 72, cfg.JWTRefreshExpirationHours)
	assert.Equal(t,
		"host=db.internal user=clinic password=hunter2 dbname=clinic_prod port=5433 sslmode=require",
		cfg.Database.DSN)
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_MINUTES", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_EXPIRATION_MINUTES")
}
