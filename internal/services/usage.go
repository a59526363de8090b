package services

import (
	"context"
	"time"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/google/uuid"
)

// UsageStore is implemented by *cache.Cache.
type UsageStore interface {
	IncrUsage(ctx context.Context, keyID string, at time.Time) (int64, error)
	UsageCounts(ctx context.Context, keyIDs []string, at time.Time) (map[string]int64, error)
}

// UsageService counts successful summarizer calls per key and month. It only
// feeds the dashboard; limits are never enforced. With a nil store every
// count reads as zero.
type UsageService struct {
	store UsageStore
	now   func() time.Time
	log   *logger.Logger
}

func NewUsageService(store UsageStore, log *logger.Logger) *UsageService {
	if log == nil {
		log = logger.Nop()
	}
	return &UsageService{store: store, now: time.Now, log: log}
}

// Record never fails the caller; store errors are logged.
func (s *UsageService) Record(ctx context.Context, keyID uuid.UUID) {
	if s.store == nil {
		return
	}
	if _, err := s.store.IncrUsage(ctx, keyID.String(), s.now()); err != nil {
		s.log.WithError(err).Warn("failed to record usage", "key_id", keyID)
	}
}

// Counts returns this month's count for each key. Store errors degrade to zeros.
func (s *UsageService) Counts(ctx context.Context, keyIDs []uuid.UUID) map[uuid.UUID]int64 {
	counts := make(map[uuid.UUID]int64, len(keyIDs))
	for _, id := range keyIDs {
		counts[id] = 0
	}
	if s.store == nil || len(keyIDs) == 0 {
		return counts
	}

	ids := make([]string, len(keyIDs))
	for i, id := range keyIDs {
		ids[i] = id.String()
	}

	stored, err := s.store.UsageCounts(ctx, ids, s.now())
	if err != nil {
		s.log.WithError(err).Warn("failed to read usage")
		return counts
	}
	for _, id := range keyIDs {
		counts[id] = stored[id.String()]
	}
	return counts
}

// UsagePercent is floor(100*count/limit) capped at 100. No limit means no
// percentage.
func UsagePercent(count int64, limit *int) *int {
	if limit == nil || *limit <= 0 {
		return nil
	}
	if count < 0 {
		count = 0
	}
	pct := int(count * 100 / int64(*limit))
	if pct > 100 {
		pct = 100
	}
	return &pct
}
