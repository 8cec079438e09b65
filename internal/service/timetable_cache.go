package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

const (
	timetableKeyPrefix    = "timetable:tutor:"
	timetableCachePattern = timetableKeyPrefix + "*"
	defaultTimetableTTL   = 10 * time.Minute
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// TimetableCache keeps computed tutor timetables keyed by tutor and date.
// Cache failures never fail a request; they are logged and counted as misses.
type TimetableCache struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewTimetableCache constructs the cache. A non-positive ttl falls back to ten minutes.
func NewTimetableCache(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *TimetableCache {
	if ttl <= 0 {
		ttl = defaultTimetableTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableCache{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// TimetableKey is the cache key of a tutor's timetable as of a date.
func TimetableKey(tutorID string, on time.Time) string {
	return fmt.Sprintf("%s%s:%s", timetableKeyPrefix, tutorID, on.Format(scheduling.DateLayout))
}

func tutorTimetablePattern(tutorID string) string {
	return fmt.Sprintf("%s%s:*", timetableKeyPrefix, tutorID)
}

// Enabled indicates whether caching is active.
func (c *TimetableCache) Enabled() bool {
	return c != nil && c.enabled && c.repo != nil
}

// Lookup returns the cached timetable and whether it was a hit.
func (c *TimetableCache) Lookup(ctx context.Context, tutorID string, on time.Time) (*models.TutorTimetable, bool) {
	if !c.Enabled() {
		return nil, false
	}
	key := TimetableKey(tutorID, on)
	var cached models.TutorTimetable
	start := time.Now()
	err := c.repo.Get(ctx, key, &cached)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			c.logger.Warn("timetable cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return &cached, true
}

// Store caches a computed timetable under its tutor and date.
func (c *TimetableCache) Store(ctx context.Context, timetable *models.TutorTimetable) {
	if !c.Enabled() || timetable == nil {
		return
	}
	key := TimetableKey(timetable.TutorID, timetable.Date)
	start := time.Now()
	err := c.repo.Set(ctx, key, timetable, c.ttl)
	c.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		c.logger.Warn("timetable cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ForgetTutors drops every cached date of the given tutors.
func (c *TimetableCache) ForgetTutors(ctx context.Context, tutorIDs ...string) {
	seen := make(map[string]struct{}, len(tutorIDs))
	for _, id := range tutorIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		c.forget(ctx, tutorTimetablePattern(id))
	}
}

// ForgetAll drops every cached timetable. Slot placements change the
// timetable of whichever tutor holds the classroom, so they clear everything.
func (c *TimetableCache) ForgetAll(ctx context.Context) {
	c.forget(ctx, timetableCachePattern)
}

func (c *TimetableCache) forget(ctx context.Context, pattern string) {
	if !c.Enabled() {
		return
	}
	if err := c.repo.DeleteByPattern(ctx, pattern); err != nil {
		c.logger.Warn("timetable cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
