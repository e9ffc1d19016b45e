package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-processor/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", cfg.RenderURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.NotEmpty(t, cfg.IBPTURL)
	assert.Zero(t, cfg.Workers)
	assert.False(t, cfg.Debug)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NFE_RENDER_URL", "http://render.internal")
	t.Setenv("NFE_WORKERS", "8")
	t.Setenv("NFE_DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://render.internal", cfg.RenderURL)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Debug)
}

func TestLoad_BadWorkers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NFE_WORKERS", "zero")

	_, err := config.Load()
	assert.Error(t, err)
}
