package formulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/lead-allocator/pkg/core/milp"
	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

func testAgents() []model.Agent {
	return []model.Agent{
		{ID: "m1", AbilityScore: 1.0, Capacity: 2, Preference: map[string]float64{"category.A": 1, model.UnknownCategoryKey: 1}},
		{ID: "m2", AbilityScore: 2.0, Capacity: 1, Preference: map[string]float64{"category.A": 1, model.UnknownCategoryKey: 1}},
	}
}

func testItems() []model.Item {
	return []model.Item{
		{ID: "l1", Value: 2, Cost: 1, CategoryKey: "category.A"},
		{ID: "l2", Value: 2, Cost: 1, CategoryKey: "category.A"},
		{ID: "l3", Value: 2, Cost: 2, CategoryKey: model.UnknownCategoryKey},
	}
}

func TestWeight(t *testing.T) {
	agent := model.Agent{AbilityScore: 2, Preference: map[string]float64{"category.A": 0.5}}
	item := model.Item{Value: 3, Cost: 1.5, CategoryKey: "category.A"}

	// 0.5 * 3 * 2^2 / 1.5
	assert.InDelta(t, 4.0, Weight(agent, item), 1e-12)
}

func TestWeight_ZeroPreference(t *testing.T) {
	agent := model.Agent{AbilityScore: 3, Preference: map[string]float64{"category.A": 1}}
	item := model.Item{Value: 5, Cost: 1, CategoryKey: "category.B"}

	assert.Equal(t, 0.0, Weight(agent, item))
}

func TestBuild_Dimensions(t *testing.T) {
	f, err := Build(testItems(), testAgents())
	require.NoError(t, err)

	m := f.Model
	assert.Equal(t, milp.Maximize, m.Sense)
	assert.Equal(t, 6, m.NumVariables())
	require.Len(t, m.Constraints, 5, "3 partition rows + 2 capacity rows")
	require.NoError(t, m.Validate())

	for j := 0; j < 3; j++ {
		c := m.Constraints[j]
		assert.Equal(t, milp.Equal, c.Relation)
		assert.Equal(t, 1.0, c.RHS)
		assert.Len(t, c.Terms, 2)
	}

	assert.Equal(t, milp.LessOrEqual, m.Constraints[3].Relation)
	assert.Equal(t, 2.0, m.Constraints[3].RHS)
	assert.Equal(t, 1.0, m.Constraints[4].RHS)
	assert.Len(t, m.Constraints[4].Terms, 3)
}

func TestBuild_ObjectiveCoefficients(t *testing.T) {
	f, err := Build(testItems(), testAgents())
	require.NoError(t, err)

	expected := map[[2]int]float64{
		{0, 0}: 2, {0, 1}: 2, {0, 2}: 1,
		{1, 0}: 8, {1, 1}: 8, {1, 2}: 4,
	}
	for pair, weight := range expected {
		idx := f.VarIndex(pair[0], pair[1])
		assert.InDelta(t, weight, f.Model.Objective[idx], 1e-12, "agent %d item %d", pair[0], pair[1])
		assert.Equal(t, pair[0], f.Model.Variables[idx].Agent)
		assert.Equal(t, pair[1], f.Model.Variables[idx].Item)
	}
}

func TestBuild_Empty(t *testing.T) {
	f, err := Build(nil, testAgents())
	require.NoError(t, err)
	assert.Equal(t, 0, f.Model.NumVariables())
	assert.Len(t, f.Model.Constraints, 2)

	f, err = Build(testItems(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Model.NumVariables())
	require.Len(t, f.Model.Constraints, 3)
	assert.Empty(t, f.Model.Constraints[0].Terms)
}

func TestBuild_RejectsNegativeCapacity(t *testing.T) {
	agents := []model.Agent{{ID: "m1", Capacity: -1}}
	_, err := Build(testItems(), agents)
	assert.Error(t, err)
}

func TestBuild_IndependentInstances(t *testing.T) {
	first, err := Build(testItems(), testAgents())
	require.NoError(t, err)
	second, err := Build(testItems(), testAgents())
	require.NoError(t, err)

	first.Model.Objective[0] = 999
	assert.NotEqual(t, first.Model.Objective[0], second.Model.Objective[0])
}
