package ragkit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/henribesnard/ragkit/internal/config"
	"github.com/henribesnard/ragkit/internal/supervisor"
)

func TestNewDevelopmentApp(t *testing.T) {
	app, err := New(config.Default(), Options{})
	require.NoError(t, err)
	require.NotNil(t, app.Supervisor)
	require.NotNil(t, app.Commands)

	// Nothing running yet: idle state, port 0 endpoint.
	require.Equal(t, supervisor.StateIdle, app.Supervisor.State())
	require.Equal(t, "http://127.0.0.1:0", app.Supervisor.BaseURL())
}

func TestNewProductionRequiresResourceDir(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeProduction

	_, err := New(cfg, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "resource_dir")
}

func TestNewRejectsInvalidMode(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "staging"

	_, err := New(cfg, Options{})
	require.Error(t, err)
}
