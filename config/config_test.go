package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/courtpulse_test")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/courtpulse_test", cfg.DatabaseURL)
	assert.Equal(t, "test-secret", cfg.JWTSecretKey)
	assert.Equal(t, 8080, cfg.ServerPort)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadPortValidation(t *testing.T) {
	setRequired(t)

	t.Setenv("SERVER_PORT", "9000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)

	for _, bad := range []string{"abc", "0", "-1", "70000"} {
		t.Setenv("SERVER_PORT", bad)
		_, err := Load()
		assert.Error(t, err, bad)
	}
}
