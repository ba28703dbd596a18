package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, 25, cfg.Database.MaxOpenConns)
	require.True(t, cfg.Database.AutoMigrate)
	require.Equal(t, "24h", cfg.Retention.Window)
	require.Equal(t, 30, cfg.Query.DefaultDays)
	require.Equal(t, 10, cfg.Query.DefaultTopLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRAFFICD_SERVER__PORT", "9090")
	t.Setenv("TRAFFICD_DATABASE__DSN", "postgres://db:5432/traffic?sslmode=disable")
	t.Setenv("TRAFFICD_RETENTION__WINDOW", "48h")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "postgres://db:5432/traffic?sslmode=disable", cfg.Database.DSN)
	require.Equal(t, "48h", cfg.Retention.Window)
	require.Equal(t, "0.0.0.0", cfg.Server.Host, "untouched keys keep defaults")
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}
