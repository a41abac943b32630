package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

var (
	janStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	janEnd   = time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
)

func TestLoadSnapshot(t *testing.T) {
	s, err := LoadSnapshot(context.Background(), exampleStore(), "xuemi", janStart, janEnd, "N", zap.NewNop())
	require.NoError(t, err)

	want := &Snapshot{
		AppID: "xuemi",
		Start: janStart,
		End:   janEnd,
		Managers: []model.ManagerRecord{
			{ID: "m1", Name: "Amy", Contact: "amy@example.com"},
			{ID: "m2", Name: "Ben", Contact: "ben@example.com"},
		},
		Categories: []model.Category{{ID: "a", Name: "A"}},
		Leads: []model.LeadRecord{
			{ID: "l1", Level: "N", CategoryID: strPtr("a")},
			{ID: "l2", Level: "N", CategoryID: strPtr("a")},
			{ID: "l3", Level: "N", CategoryID: strPtr("b")},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshot_StoreError(t *testing.T) {
	store := exampleStore()
	store.leadsErr = fmt.Errorf("connection reset")

	_, err := LoadSnapshot(context.Background(), store, "xuemi", janStart, janEnd, "N", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch leads")
}

func TestSnapshotCache(t *testing.T) {
	store := exampleStore()
	cache := NewSnapshotCache(store, "N", zap.NewNop())
	ctx := context.Background()

	first, err := cache.Snapshot(ctx, "xuemi", janStart, janEnd)
	require.NoError(t, err)
	second, err := cache.Snapshot(ctx, "xuemi", janStart, janEnd)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.leadCalls)
	assert.Equal(t, 1, cache.Len())

	_, err = cache.Snapshot(ctx, "xuemi", janStart, janEnd.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, store.leadCalls, "different window is a different key")
	assert.Equal(t, 2, cache.Len())

	cache.Invalidate("xuemi", janStart, janEnd)
	assert.Equal(t, 1, cache.Len())
	_, err = cache.Snapshot(ctx, "xuemi", janStart, janEnd)
	require.NoError(t, err)
	assert.Equal(t, 3, store.leadCalls)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestSnapshotCache_ErrorsAreNotCached(t *testing.T) {
	store := exampleStore()
	store.managersErr = fmt.Errorf("timeout")
	cache := NewSnapshotCache(store, "N", zap.NewNop())

	_, err := cache.Snapshot(context.Background(), "xuemi", janStart, janEnd)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	store.managersErr = nil
	_, err = cache.Snapshot(context.Background(), "xuemi", janStart, janEnd)
	require.NoError(t, err)
}

func TestViewSnapshot(t *testing.T) {
	cache := NewSnapshotCache(exampleStore(), "N", zap.NewNop())

	overview, err := ViewSnapshot(context.Background(), cache, "xuemi", janStart, janEnd, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, overview.CategoryCount)
	assert.Equal(t, 2, overview.ManagerCount)
	assert.Equal(t, 3, overview.LeadCount)
	assert.Equal(t, map[string]int{"A": 2, "unknown": 1}, overview.LeadsByCategory)
	assert.Equal(t, map[string]int{"N": 3}, overview.LeadsByLevel)
}

func TestSampleOverlay(t *testing.T) {
	o, err := SampleOverlay(context.Background(), exampleStore(), "xuemi", zap.NewNop())
	require.NoError(t, err)

	require.Len(t, o.Managers, 2)
	assert.Equal(t, "amy@example.com", o.Managers[0].Contact)
	assert.Equal(t, map[string]float64{"category.unknown": 1, "category.A": 0}, o.Managers[0].Preferences)
	require.Len(t, o.Categories, 2)
	assert.Equal(t, "unknown", o.Categories[1].ID)
}

func TestSampleOverlay_StoreError(t *testing.T) {
	store := exampleStore()
	store.categoriesErr = fmt.Errorf("boom")

	_, err := SampleOverlay(context.Background(), store, "xuemi", zap.NewNop())
	assert.Error(t, err)
}
