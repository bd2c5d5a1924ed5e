package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2.0, cfg.Difficulty)
	assert.Equal(t, 100.0, cfg.Reward)
	assert.Equal(t, 0.01, cfg.Fee)
	assert.Equal(t, 100, cfg.MaxPageSize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CHAIN_DIFFICULTY", "1.0")
	t.Setenv("CHAIN_REWARD", "50.5")
	t.Setenv("CHAIN_FEE", "0.1")
	t.Setenv("MAX_PAGE_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1.0, cfg.Difficulty)
	assert.Equal(t, 50.5, cfg.Reward)
	assert.Equal(t, 0.1, cfg.Fee)
	assert.Equal(t, 25, cfg.MaxPageSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"difficulty not a number", "CHAIN_DIFFICULTY", "abc", "invalid number"},
		{"difficulty zero", "CHAIN_DIFFICULTY", "0", "must be positive"},
		{"difficulty negative", "CHAIN_DIFFICULTY", "-1", "must be positive"},
		{"reward negative", "CHAIN_REWARD", "-5", "cannot be negative"},
		{"fee zero", "CHAIN_FEE", "0", "must be positive"},
		{"fee not a number", "CHAIN_FEE", "cheap", "invalid number"},
		{"page size zero", "MAX_PAGE_SIZE", "0", "at least 1"},
		{"page size not an integer", "MAX_PAGE_SIZE", "1.5", "invalid integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_CollectsAllErrors(t *testing.T) {
	t.Setenv("CHAIN_DIFFICULTY", "-1")
	t.Setenv("CHAIN_FEE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHAIN_DIFFICULTY")
	assert.Contains(t, err.Error(), "CHAIN_FEE")
}

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("CHAIN_FEE", "0")

	assert.Panics(t, func() { MustLoad() })
}
