package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

// CacheRepository stores JSON payloads under namespaced keys.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is a read-through cache for list pages. Backend failures are
// logged and degrade to a direct load; they never fail the request.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	logger     *zap.Logger
	defaultTTL time.Duration
	enabled    bool

	fills singleflight.Group
	// generation moves on every Invalidate; fills started under an older
	// generation are not written back.
	generation atomic.Uint64
}

func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	return &CacheService{
		repo:       repo,
		metrics:    metrics,
		logger:     logger,
		defaultTTL: defaultTTL,
		enabled:    enabled && repo != nil,
	}
}

func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled
}

// Invalidate drops every key matching pattern and fences in-flight fills.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) {
	if !s.Enabled() {
		return
	}
	s.generation.Add(1)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *CacheService) lookup(ctx context.Context, key string, dest interface{}) bool {
	started := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(started))
	switch {
	case err == nil:
		return true
	case !errors.Is(err, appErrors.ErrCacheMiss):
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *CacheService) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	started := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(started))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// readThrough returns the cached value for key, or runs fill once for all
// concurrent callers of the same key and caches its result. A nil or
// disabled cache calls fill directly.
func readThrough[T any](ctx context.Context, s *CacheService, key string, ttl time.Duration, fill func(context.Context) (T, error)) (T, error) {
	if !s.Enabled() {
		return fill(ctx)
	}
	var hit T
	if s.lookup(ctx, key, &hit) {
		return hit, nil
	}

	gen := s.generation.Load()
	v, err, _ := s.fills.Do(key, func() (interface{}, error) {
		value, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() == gen {
			s.store(ctx, key, value, ttl)
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
