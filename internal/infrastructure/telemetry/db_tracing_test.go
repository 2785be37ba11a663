package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kanban/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := telemetry.DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
	assert.True(t, cfg.WithoutVariables)
}

func TestDBTracingPlugin_DisabledLeavesDBUntouched(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()

	recorder := newRecordingTracer(t)

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled: false,
	}, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(gormDB))

	mock.ExpectQuery(`SELECT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	var n int
	err := gormDB.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error
	require.NoError(t, err)

	assert.Empty(t, recorder.Ended())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBTracingPlugin_EnabledEmitsSpans(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()

	recorder := newRecordingTracer(t)

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(gormDB))

	mock.ExpectQuery(`SELECT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	var n int
	err := gormDB.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NotEmpty(t, recorder.Ended())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := telemetry.WithQueryStartTime(context.Background())
	assert.NotEqual(t, context.Background(), ctx)
}
