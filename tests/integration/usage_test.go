package integration

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/martsy-api/internal/cache"
	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/dimitrije/martsy-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageCache_Integration_MonthlyBuckets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c := testutil.SetupTestRedis(t)
	ctx := context.Background()

	keyID := uuid.NewString()
	march := time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)
	april := march.Add(2 * time.Minute)

	for range 3 {
		_, err := c.IncrUsage(ctx, keyID, march)
		require.NoError(t, err)
	}
	n, err := c.IncrUsage(ctx, keyID, april)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unused := uuid.NewString()
	counts, err := c.UsageCounts(ctx, []string{keyID, unused}, march)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[keyID])
	assert.Equal(t, int64(0), counts[unused])

	assert.Equal(t, "usage:"+keyID+":2026-04", cache.UsageKey(keyID, april))
}

func TestUsageService_Integration_RecordAndCount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	svc := services.NewUsageService(testutil.SetupTestRedis(t), logger.Nop())
	ctx := context.Background()

	busy, idle := uuid.New(), uuid.New()
	for range 5 {
		svc.Record(ctx, busy)
	}

	counts := svc.Counts(ctx, []uuid.UUID{busy, idle})
	assert.Equal(t, int64(5), counts[busy])
	assert.Equal(t, int64(0), counts[idle])

	limit := 20
	pct := services.UsagePercent(counts[busy], &limit)
	require.NotNil(t, pct)
	assert.Equal(t, 25, *pct)
}
