package telemetry_test

import (
	"testing"

	"github.com/kanban/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled: false,
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, profiler)

	assert.False(t, profiler.IsEnabled())
	assert.NoError(t, profiler.Stop())
}

func TestNewProfiler_RequiresServerAddress(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         true,
		ApplicationName: "kanban-backend",
	}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")
}

func TestNewProfiler_RequiresApplicationName(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:       true,
		ServerAddress: "http://pyroscope:4040",
	}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application name")
}

func TestProfiler_StopIsIdempotent(t *testing.T) {
	logger := zaptest.NewLogger(t)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{}, logger)
	require.NoError(t, err)

	assert.NoError(t, profiler.Stop())
	assert.NoError(t, profiler.Stop())
}

func TestProfiler_GetConfig(t *testing.T) {
	logger := zaptest.NewLogger(t)

	cfg := telemetry.ProfilerConfig{
		Enabled:         false,
		ApplicationName: "kanban-backend",
		ProfileCPU:      true,
	}
	profiler, err := telemetry.NewProfiler(cfg, logger)
	require.NoError(t, err)

	got := profiler.GetConfig()
	assert.Equal(t, "kanban-backend", got.ApplicationName)
	assert.True(t, got.ProfileCPU)
}
