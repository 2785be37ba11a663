// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// KanbanMetrics tracks board activity and ordering health: card
// movement, reorder traffic, rebalances, and optimistic lock conflicts.
type KanbanMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	cardMoveTotal        *Counter
	reorderTotal         *Counter
	rebalanceTotal       *Counter
	versionConflictTotal *Counter
	wipRejectionTotal    *Counter

	activeCards    *Gauge
	wipBreachCount *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	boardProvider BoardMetricsProvider
}

// BoardMetricsProvider provides board data for periodic metrics
// collection without coupling the telemetry layer to the domain.
type BoardMetricsProvider interface {
	// GetActiveCardCountByColumn returns active card counts per column for a tenant
	GetActiveCardCountByColumn(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error)

	// GetWIPBreachCount returns the number of columns whose active card
	// count exceeds their WIP limit
	GetWIPBreachCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// KanbanMetricsConfig holds configuration for kanban metrics.
type KanbanMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	BoardProvider   BoardMetricsProvider
}

// NewKanbanMetrics creates a new KanbanMetrics instance.
func NewKanbanMetrics(cfg KanbanMetricsConfig) (*KanbanMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	km := &KanbanMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		boardProvider: cfg.BoardProvider,
	}

	var err error

	km.cardMoveTotal, err = NewCounter(
		cfg.Meter,
		"kanban_card_move_total",
		"Total number of card move operations",
		"{moves}",
	)
	if err != nil {
		return nil, err
	}

	km.reorderTotal, err = NewCounter(
		cfg.Meter,
		"kanban_reorder_total",
		"Total number of reorder operations by aggregate type",
		"{operations}",
	)
	if err != nil {
		return nil, err
	}

	km.rebalanceTotal, err = NewCounter(
		cfg.Meter,
		"kanban_rebalance_total",
		"Total number of position rebalances triggered",
		"{rebalances}",
	)
	if err != nil {
		return nil, err
	}

	km.versionConflictTotal, err = NewCounter(
		cfg.Meter,
		"kanban_version_conflict_total",
		"Total number of optimistic lock conflicts by aggregate type",
		"{conflicts}",
	)
	if err != nil {
		return nil, err
	}

	km.wipRejectionTotal, err = NewCounter(
		cfg.Meter,
		"kanban_wip_rejection_total",
		"Total number of moves rejected by a column WIP limit",
		"{rejections}",
	)
	if err != nil {
		return nil, err
	}

	km.activeCards, err = NewGauge(
		cfg.Meter,
		"kanban_active_cards",
		"Current number of active cards per column",
		"{cards}",
	)
	if err != nil {
		return nil, err
	}

	km.wipBreachCount, err = NewGauge(
		cfg.Meter,
		"kanban_wip_breach_count",
		"Number of columns currently over their WIP limit",
		"{columns}",
	)
	if err != nil {
		return nil, err
	}

	return km, nil
}

// RecordCardMove records a card move. crossColumn distinguishes moves
// between columns from same-column repositioning.
func (km *KanbanMetrics) RecordCardMove(ctx context.Context, tenantID uuid.UUID, crossColumn bool) {
	km.cardMoveTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrCrossColumn.Bool(crossColumn),
	)
}

// RecordReorder records a reorder operation for a card or column.
func (km *KanbanMetrics) RecordReorder(ctx context.Context, tenantID uuid.UUID, aggregateType string) {
	km.reorderTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAggregateType.String(aggregateType),
	)
}

// RecordRebalance records a position rebalance of a column or board.
func (km *KanbanMetrics) RecordRebalance(ctx context.Context, tenantID uuid.UUID, aggregateType string) {
	km.rebalanceTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAggregateType.String(aggregateType),
	)
}

// RecordVersionConflict records an optimistic lock conflict.
func (km *KanbanMetrics) RecordVersionConflict(ctx context.Context, tenantID uuid.UUID, aggregateType string) {
	km.versionConflictTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAggregateType.String(aggregateType),
	)
}

// RecordWIPRejection records a move rejected by a column WIP limit.
func (km *KanbanMetrics) RecordWIPRejection(ctx context.Context, tenantID, columnID uuid.UUID) {
	km.wipRejectionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrColumnID.String(columnID.String()),
	)
}

// RecordActiveCards records the current active card count for a column.
func (km *KanbanMetrics) RecordActiveCards(ctx context.Context, tenantID, columnID uuid.UUID, count int64) {
	km.activeCards.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
		AttrColumnID.String(columnID.String()),
	)
}

// RecordWIPBreachCount records the number of columns over their WIP limit.
func (km *KanbanMetrics) RecordWIPBreachCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	km.wipBreachCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// Non-blocking; use Stop() to stop collection.
func (km *KanbanMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	km.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go km.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (km *KanbanMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	km.collectBoardMetrics(ctx, tenantProvider)

	for {
		select {
		case <-km.stopChan:
			km.logger.Info("Stopping periodic kanban metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			km.collectBoardMetrics(ctx, tenantProvider)
		}
	}
}

func (km *KanbanMetrics) collectBoardMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if km.boardProvider == nil {
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		km.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		km.collectTenantBoardMetrics(ctx, tenantID)
	}
}

func (km *KanbanMetrics) collectTenantBoardMetrics(ctx context.Context, tenantID uuid.UUID) {
	cardsByColumn, err := km.boardProvider.GetActiveCardCountByColumn(ctx, tenantID)
	if err != nil {
		km.logger.Warn("Failed to get card counts for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		for columnID, count := range cardsByColumn {
			km.RecordActiveCards(ctx, tenantID, columnID, count)
		}
	}

	breaches, err := km.boardProvider.GetWIPBreachCount(ctx, tenantID)
	if err != nil {
		km.logger.Warn("Failed to get WIP breach count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		km.RecordWIPBreachCount(ctx, tenantID, breaches)
	}
}

// Stop stops the periodic collection.
func (km *KanbanMetrics) Stop() {
	km.stopOnce.Do(func() {
		close(km.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewKanbanMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
