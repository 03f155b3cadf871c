package cache

import (
	"context"
	"strings"
	"time"

	"yt-network-go/internal/config"
	"yt-network-go/internal/logger"
)

// NewFromConfig returns nil when caching is disabled. An unreachable redis
// falls back to the in-memory cache.
func NewFromConfig(cfg config.Config) Cache {
	backend := strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	switch backend {
	case "", "none", "disabled", "off":
		return nil
	case "memory":
		return NewMemoryCache()
	case "freecache":
		return NewFreeCache(cfg.FreecacheSizeMB)
	case "redis":
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			logger.Warn("redis cache selected without REDIS_ADDR, using memory cache")
			return NewMemoryCache()
		}
		rc := NewRedisCache(RedisOptions{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis cache unreachable, using memory cache", "addr", addr, "err", err)
			_ = rc.Close()
			return NewMemoryCache()
		}
		return rc
	default:
		logger.Warn("unknown cache backend, using memory cache", "backend", backend)
		return NewMemoryCache()
	}
}

// TTL converts the configured default TTL; zero means no expiry.
func TTL(cfg config.Config) time.Duration {
	if cfg.CacheDefaultTTLSec <= 0 {
		return 0
	}
	return time.Duration(cfg.CacheDefaultTTLSec) * time.Second
}
