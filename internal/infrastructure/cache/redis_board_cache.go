package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	appkanban "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const boardKeyPrefix = "kanban:board:"

// RedisBoardCache implements BoardCache using Redis. Suitable for
// deployments with multiple instances that need to share cached board
// detail, invalidation included.
type RedisBoardCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisBoardCache creates a Redis-backed board cache and verifies the
// connection
func NewRedisBoardCache(cfg config.RedisConfig, logger *zap.Logger) (*RedisBoardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBoardCacheWithClient(client, cfg.BoardTTL, logger), nil
}

// NewRedisBoardCacheWithClient creates a cache on an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisBoardCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisBoardCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBoardCache{
		client:    client,
		keyPrefix: boardKeyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

func (c *RedisBoardCache) boardKey(tenantID, boardID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + boardID.String()
}

// GetBoard returns a cached board detail. Any Redis or decoding error is
// treated as a miss so the caller falls through to the database.
func (c *RedisBoardCache) GetBoard(ctx context.Context, tenantID, boardID uuid.UUID) (*appkanban.BoardDetailResponse, bool) {
	payload, err := c.client.Get(ctx, c.boardKey(tenantID, boardID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("board cache lookup failed",
				zap.String("board_id", boardID.String()),
				zap.Error(err))
		}
		return nil, false
	}

	var board appkanban.BoardDetailResponse
	if err := json.Unmarshal(payload, &board); err != nil {
		c.logger.Warn("board cache entry is not decodable, dropping it",
			zap.String("board_id", boardID.String()),
			zap.Error(err))
		c.client.Del(ctx, c.boardKey(tenantID, boardID))
		return nil, false
	}

	return &board, true
}

// SetBoard caches a board detail under the configured TTL
func (c *RedisBoardCache) SetBoard(ctx context.Context, tenantID uuid.UUID, board *appkanban.BoardDetailResponse) {
	if board == nil {
		return
	}

	payload, err := json.Marshal(board)
	if err != nil {
		c.logger.Warn("failed to encode board for caching",
			zap.String("board_id", board.ID.String()),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, c.boardKey(tenantID, board.ID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache board",
			zap.String("board_id", board.ID.String()),
			zap.Error(err))
	}
}

// InvalidateBoard drops the cached entry for a board
func (c *RedisBoardCache) InvalidateBoard(ctx context.Context, tenantID, boardID uuid.UUID) {
	if err := c.client.Del(ctx, c.boardKey(tenantID, boardID)).Err(); err != nil {
		c.logger.Warn("failed to invalidate cached board",
			zap.String("board_id", boardID.String()),
			zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisBoardCache) Close() error {
	return c.client.Close()
}

var _ appkanban.BoardCache = (*RedisBoardCache)(nil)
