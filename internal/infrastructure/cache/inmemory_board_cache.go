package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	appkanban "github.com/kanban/backend/internal/application/kanban"
	"go.uber.org/zap"
)

const (
	defaultBoardTTL        = 5 * time.Minute
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryBoardCache implements BoardCache with process-local storage.
// Single-instance deployments use it directly; it is also the fallback
// when Redis is disabled or unreachable.
type InMemoryBoardCache struct {
	boards  sync.Map // key -> *boardEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type boardEntry struct {
	board     *appkanban.BoardDetailResponse
	expiresAt time.Time
}

func (e *boardEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryBoardCacheOption is a functional option for configuring the cache
type InMemoryBoardCacheOption func(*InMemoryBoardCache)

// WithBoardTTL sets the entry TTL
func WithBoardTTL(ttl time.Duration) InMemoryBoardCacheOption {
	return func(c *InMemoryBoardCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithBoardCacheLogger sets the logger for the cache
func WithBoardCacheLogger(logger *zap.Logger) InMemoryBoardCacheOption {
	return func(c *InMemoryBoardCache) {
		c.logger = logger
	}
}

// NewInMemoryBoardCache creates a new in-memory board cache
func NewInMemoryBoardCache(opts ...InMemoryBoardCacheOption) *InMemoryBoardCache {
	cache := &InMemoryBoardCache{
		ttl:    defaultBoardTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

func boardKey(tenantID, boardID uuid.UUID) string {
	return tenantID.String() + ":" + boardID.String()
}

// GetBoard returns a cached board detail if present and not expired
func (c *InMemoryBoardCache) GetBoard(ctx context.Context, tenantID, boardID uuid.UUID) (*appkanban.BoardDetailResponse, bool) {
	key := boardKey(tenantID, boardID)

	if value, ok := c.boards.Load(key); ok {
		entry := value.(*boardEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.board, true
		}
		c.boards.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// SetBoard caches a board detail under the configured TTL
func (c *InMemoryBoardCache) SetBoard(ctx context.Context, tenantID uuid.UUID, board *appkanban.BoardDetailResponse) {
	if board == nil {
		return
	}

	c.boards.Store(boardKey(tenantID, board.ID), &boardEntry{
		board:     board,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// InvalidateBoard drops the cached entry for a board
func (c *InMemoryBoardCache) InvalidateBoard(ctx context.Context, tenantID, boardID uuid.UUID) {
	c.boards.Delete(boardKey(tenantID, boardID))
}

// Stats returns hit/miss counters for monitoring
func (c *InMemoryBoardCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop terminates the background cleanup goroutine. Safe to call more
// than once.
func (c *InMemoryBoardCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// cleanupExpired periodically evicts expired entries so boards that are
// never read again do not pin memory
func (c *InMemoryBoardCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			c.boards.Range(func(key, value any) bool {
				if value.(*boardEntry).isExpired() {
					c.boards.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("evicted expired board cache entries",
					zap.Int("count", removed))
			}
		case <-c.stopCh:
			return
		}
	}
}

var _ appkanban.BoardCache = (*InMemoryBoardCache)(nil)
