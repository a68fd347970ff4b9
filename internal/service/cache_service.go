package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// dashboardTTL caps how stale a dashboard snapshot can get when a write
// forgets to invalidate it.
const dashboardTTL = 30 * time.Second

// dashboardCachePattern matches every cached dashboard payload.
const dashboardCachePattern = "dash:*"

// CacheRepository stores JSON payloads by key. A missing key is reported as
// ErrCacheMiss.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService keeps dashboard snapshots in Redis between writes to the
// ledger. Store failures are logged here and left to the caller to ignore;
// a nil or disabled service does nothing.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService wires the snapshot store. ttl <= 0 falls back to dashboardTTL.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = dashboardTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads the snapshot under key into dest and reports whether it was there.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		s.logger.Warn("snapshot read failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
}

// Set stores a snapshot. ttl <= 0 uses the service TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("snapshot write failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate drops every snapshot whose key matches pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	err := s.repo.DeleteByPattern(ctx, pattern)
	if err != nil {
		s.logger.Warn("snapshot invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
	return err
}

// invalidateDashboard runs after any write that changes counts, enrollments
// or the names shown in recent submissions.
func invalidateDashboard(ctx context.Context, cache *CacheService) {
	_ = cache.Invalidate(ctx, dashboardCachePattern)
}
