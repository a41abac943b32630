package attributes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

func strPtr(s string) *string {
	return &s
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	levels := model.NewLevelValueTable("N", map[string]float64{"N": 1, "R": 2, "SR": 3, "SSR": 5})
	costs := model.CategoryCostTable{"cat-a": 0.5, "cat-b": 0}
	names := model.NewCategoryNames([]model.Category{
		{ID: "cat-a", Name: "Finance"},
		{ID: "cat-b", Name: "Design"},
		{ID: "cat-c", Name: "Marketing"},
	})

	r, err := NewResolver(levels, costs, names)
	require.NoError(t, err)
	return r
}

func TestNewResolver_MissingBaseline(t *testing.T) {
	levels := model.NewLevelValueTable("N", map[string]float64{"R": 2})

	_, err := NewResolver(levels, model.CategoryCostTable{}, model.CategoryNames{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingBaselineLevel))

	var cfgErr *model.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "N", cfgErr.Key)
}

func TestValue(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name     string
		level    string
		expected float64
	}{
		{"known level", "SR", 3},
		{"baseline level", "N", 1},
		{"unknown level falls back to baseline", "UR", 1},
		{"empty level falls back to baseline", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := r.Value(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestCost(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, 1.5, r.Cost(strPtr("cat-a")))
	assert.Equal(t, 1.0, r.Cost(strPtr("cat-b")), "zero weight still gets the +1 floor")
	assert.Equal(t, 1.0, r.Cost(strPtr("cat-c")), "unconfigured category uses default cost")
	assert.Equal(t, 1.0, r.Cost(nil), "nil category uses default cost")
}

func TestCategoryKey(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "category.Finance", r.CategoryKey(strPtr("cat-a")))
	assert.Equal(t, "category.Marketing", r.CategoryKey(strPtr("cat-c")))
	assert.Equal(t, model.UnknownCategoryKey, r.CategoryKey(strPtr("cat-zzz")))
	assert.Equal(t, model.UnknownCategoryKey, r.CategoryKey(nil))
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t)

	leads := []model.LeadRecord{
		{ID: "lead-1", Level: "SSR", CategoryID: strPtr("cat-a")},
		{ID: "lead-2", Level: "??", CategoryID: nil},
		{ID: "lead-3", Level: "R", CategoryID: strPtr("gone")},
	}

	items, err := r.Resolve(leads)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "lead-1", items[0].ID)
	assert.Equal(t, 5.0, items[0].Value)
	assert.Equal(t, 1.5, items[0].Cost)
	assert.Equal(t, "category.Finance", items[0].CategoryKey)

	assert.Equal(t, 1.0, items[1].Value)
	assert.Equal(t, 1.0, items[1].Cost)
	assert.Equal(t, model.UnknownCategoryKey, items[1].CategoryKey)

	assert.Equal(t, 2.0, items[2].Value)
	assert.Equal(t, 1.0, items[2].Cost)
	assert.Equal(t, model.UnknownCategoryKey, items[2].CategoryKey)

	for _, item := range items {
		assert.Greater(t, item.Value, 0.0)
		assert.GreaterOrEqual(t, item.Cost, 1.0)
	}
}

func TestResolve_Repeatable(t *testing.T) {
	r := newTestResolver(t)
	leads := []model.LeadRecord{{ID: "lead-1", Level: "SR", CategoryID: strPtr("cat-b")}}

	first, err := r.Resolve(leads)
	require.NoError(t, err)
	second, err := r.Resolve(leads)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
