package services

import (
	"context"
	"time"

	"forkly/pkg/cache"
	"forkly/pkg/logger"
)

type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type cacheService struct {
	cache  *cache.RedisCache
	logger *logger.Logger
}

func NewCacheService(redisCache *cache.RedisCache, log *logger.Logger) CacheService {
	return &cacheService{
		cache:  redisCache,
		logger: log,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.cache.Get(ctx, key, dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.cache.Set(ctx, key, value, expiration); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to set cache key")
		return err
	}
	return nil
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *cacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.cache.Exists(ctx, key)
}
