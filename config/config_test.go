package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("WOMPI_INTEGRITY_SECRET", "integrity-secret")
	t.Setenv("WOMPI_EVENTS_SECRET", "events-secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setSecrets(t)
	t.Setenv("WOMPI_ENV", "")
	t.Setenv("WOMPI_API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "COP", cfg.Wompi.Currency)
	assert.Equal(t, "kebab_", cfg.Wompi.ReferencePrefix)
	assert.Equal(t, wompiSandboxURL, cfg.Wompi.APIURL)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvProductionGateway(t *testing.T) {
	setSecrets(t)
	t.Setenv("WOMPI_ENV", "production")
	t.Setenv("WOMPI_API_URL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Wompi.IsProduction)
	assert.Equal(t, wompiProductionURL, cfg.Wompi.APIURL)
}

func TestValidateMissingSecrets(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		missing string
	}{
		{name: "integrity secret", unset: "WOMPI_INTEGRITY_SECRET", missing: "WOMPI_INTEGRITY_SECRET"},
		{name: "events secret", unset: "WOMPI_EVENTS_SECRET", missing: "WOMPI_EVENTS_SECRET"},
		{name: "jwt secret", unset: "JWT_SECRET", missing: "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSecrets(t)
			t.Setenv(tt.unset, "")

			cfg, err := FromEnv()
			require.NoError(t, err)

			err = cfg.Validate()
			require.ErrorIs(t, err, ErrMissingSecret)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	setSecrets(t)
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestFromEnvInvalidTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestInitDBSqlite(t *testing.T) {
	cfg := &Config{DBDriver: "sqlite", DBDSN: "file::memory:"}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
