package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUsageStore struct {
	mock.Mock
}

func (m *mockUsageStore) IncrUsage(ctx context.Context, keyID string, at time.Time) (int64, error) {
	args := m.Called(ctx, keyID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUsageStore) UsageCounts(ctx context.Context, keyIDs []string, at time.Time) (map[string]int64, error) {
	args := m.Called(ctx, keyIDs, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func TestUsagePercent(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		limit *int
		want  *int
	}{
		{"no limit", 10, nil, nil},
		{"zero limit", 10, intPtr(0), nil},
		{"unused", 0, intPtr(100), intPtr(0)},
		{"rounds down", 1, intPtr(3), intPtr(33)},
		{"exact", 50, intPtr(100), intPtr(50)},
		{"capped", 250, intPtr(100), intPtr(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UsagePercent(tt.count, tt.limit))
		})
	}
}

func TestUsageService_Record(t *testing.T) {
	store := new(mockUsageStore)
	keyID := uuid.New()
	fixed := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	store.On("IncrUsage", mock.Anything, keyID.String(), fixed).Return(int64(1), nil)

	svc := NewUsageService(store, nil)
	svc.now = func() time.Time { return fixed }
	svc.Record(context.Background(), keyID)

	store.AssertExpectations(t)
}

func TestUsageService_Record_StoreErrorIsSwallowed(t *testing.T) {
	store := new(mockUsageStore)
	store.On("IncrUsage", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("redis down"))

	svc := NewUsageService(store, nil)

	assert.NotPanics(t, func() { svc.Record(context.Background(), uuid.New()) })
	store.AssertExpectations(t)
}

func TestUsageService_Counts(t *testing.T) {
	store := new(mockUsageStore)
	a, b := uuid.New(), uuid.New()
	store.On("UsageCounts", mock.Anything, []string{a.String(), b.String()}, mock.Anything).
		Return(map[string]int64{a.String(): 7}, nil)

	svc := NewUsageService(store, nil)
	counts := svc.Counts(context.Background(), []uuid.UUID{a, b})

	assert.Equal(t, map[uuid.UUID]int64{a: 7, b: 0}, counts)
}

func TestUsageService_Counts_StoreErrorReadsZero(t *testing.T) {
	store := new(mockUsageStore)
	a := uuid.New()
	store.On("UsageCounts", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	svc := NewUsageService(store, nil)

	assert.Equal(t, map[uuid.UUID]int64{a: 0}, svc.Counts(context.Background(), []uuid.UUID{a}))
}

func TestUsageService_NilStore(t *testing.T) {
	svc := NewUsageService(nil, nil)
	a := uuid.New()

	svc.Record(context.Background(), a)
	assert.Equal(t, map[uuid.UUID]int64{a: 0}, svc.Counts(context.Background(), []uuid.UUID{a}))
}
