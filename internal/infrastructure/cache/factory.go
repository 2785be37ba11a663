package cache

import (
	appkanban "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// BoardCacheFactory creates board caches based on configuration
type BoardCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BoardCacheFactoryOption is a functional option for configuring the factory
type BoardCacheFactoryOption func(*BoardCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) BoardCacheFactoryOption {
	return func(f *BoardCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// cache when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) BoardCacheFactoryOption {
	return func(f *BoardCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBoardCacheFactory creates a new factory
func NewBoardCacheFactory(cfg config.RedisConfig, opts ...BoardCacheFactoryOption) *BoardCacheFactory {
	f := &BoardCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Create builds the board cache the configuration asks for. With Redis
// disabled the in-memory cache is used; with Redis enabled but
// unreachable the factory falls back to in-memory unless fallback was
// turned off.
func (f *BoardCacheFactory) Create() (appkanban.BoardCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory board cache")
		return f.createInMemory(), nil
	}

	cache, err := NewRedisBoardCache(f.redisConfig, f.logger)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, err
		}
		f.logger.Warn("redis unavailable, falling back to in-memory board cache",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err))
		return f.createInMemory(), nil
	}

	f.logger.Info("using redis board cache",
		zap.String("addr", f.redisConfig.Addr()),
		zap.Duration("ttl", f.redisConfig.BoardTTL))
	return cache, nil
}

func (f *BoardCacheFactory) createInMemory() *InMemoryBoardCache {
	return NewInMemoryBoardCache(
		WithBoardTTL(f.redisConfig.BoardTTL),
		WithBoardCacheLogger(f.logger),
	)
}
