package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/lead-allocator/pkg/core/formulation"
	"github.com/jakechorley/lead-allocator/pkg/core/milp"
	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

var testCategories = []model.Category{
	{ID: "c1", Name: "Finance"},
	{ID: "c2", Name: "Design"},
	{ID: "c3", Name: "Marketing"},
}

func buildFormulation(t *testing.T) *formulation.Formulation {
	t.Helper()
	agents := []model.Agent{
		{ID: "m1", Name: "Amy", Contact: "101", AbilityScore: 1, Capacity: 3},
		{ID: "m2", Name: "Ben", Contact: "102", AbilityScore: 1, Capacity: 3},
		{ID: "m3", Name: "Cat", Contact: "103", AbilityScore: 1, Capacity: 3},
	}
	items := []model.Item{
		{ID: "l1", Value: 1, Cost: 1, CategoryKey: "category.Finance"},
		{ID: "l2", Value: 1, Cost: 1, CategoryKey: "category.Finance"},
		{ID: "l3", Value: 1, Cost: 1, CategoryKey: model.UnknownCategoryKey},
		{ID: "l4", Value: 1, Cost: 1, CategoryKey: "category.Marketing"},
	}
	f, err := formulation.Build(items, agents)
	require.NoError(t, err)
	return f
}

// solutionFor marks item j as owned by owners[j]
func solutionFor(f *formulation.Formulation, owners []int, objective float64) *milp.Solution {
	values := make([]bool, f.Model.NumVariables())
	for j, i := range owners {
		values[f.VarIndex(i, j)] = true
	}
	return &milp.Solution{Status: milp.StatusOptimal, Values: values, Objective: objective}
}

func TestAggregate_CountsAndTrimming(t *testing.T) {
	f := buildFormulation(t)
	// Amy: l1, l3; Ben: l2, l4; Cat: nothing
	sol := solutionFor(f, []int{0, 1, 0, 1}, 12.345)

	r, err := Aggregate(f, sol, testCategories)
	require.NoError(t, err)

	assert.Equal(t, milp.StatusOptimal, r.Status)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 12.35, r.DisplayObjective())

	assert.Equal(t, []string{"Amy(101)", "Ben(102)"}, r.Rows, "Cat has no leads and is trimmed")
	assert.Equal(t, []string{"m1", "m2"}, r.RowAgentIDs)
	assert.Equal(t, []string{"unknown", "Finance", "Marketing"}, r.Columns, "Design has no leads and is trimmed")

	assert.Equal(t, [][]int{
		{1, 1, 0},
		{0, 1, 1},
	}, r.Counts)

	assert.Equal(t, 1, r.Cell("Amy(101)", "Finance"))
	assert.Equal(t, 0, r.Cell("Cat(103)", "Finance"))
	assert.Len(t, r.Assignments, 4)
}

func TestAggregate_CellSumEqualsTotal(t *testing.T) {
	f := buildFormulation(t)
	sol := solutionFor(f, []int{2, 2, 1, 0}, 4)

	r, err := Aggregate(f, sol, testCategories)
	require.NoError(t, err)

	sum := 0
	for _, row := range r.Counts {
		rowSum := 0
		for _, n := range row {
			sum += n
			rowSum += n
		}
		assert.Greater(t, rowSum, 0, "no all-zero rows")
	}
	assert.Equal(t, r.Total, sum)

	for ci := range r.Columns {
		colSum := 0
		for _, row := range r.Counts {
			colSum += row[ci]
		}
		assert.Greater(t, colSum, 0, "no all-zero columns")
	}
}

func TestAggregate_NonOptimalStatus(t *testing.T) {
	f := buildFormulation(t)

	for _, status := range []milp.Status{milp.StatusInfeasible, milp.StatusUnbounded, milp.StatusNotSolved} {
		r, err := Aggregate(f, &milp.Solution{Status: status}, testCategories)
		require.NoError(t, err)
		assert.Equal(t, status, r.Status)
		assert.Zero(t, r.Total)
		assert.Empty(t, r.Rows)
		assert.Empty(t, r.Assignments)
	}
}

func TestAggregate_Empty(t *testing.T) {
	f, err := formulation.Build(nil, nil)
	require.NoError(t, err)

	r, err := Aggregate(f, &milp.Solution{Status: milp.StatusOptimal}, testCategories)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Total)
	assert.Equal(t, 0.0, r.Objective)
	assert.Empty(t, r.Rows)
	assert.Empty(t, r.Columns)
}

func TestAggregate_MismatchedSolution(t *testing.T) {
	f := buildFormulation(t)
	_, err := Aggregate(f, &milp.Solution{Status: milp.StatusOptimal, Values: []bool{true}}, testCategories)
	assert.Error(t, err)
}

func TestColumnKeys(t *testing.T) {
	keys := ColumnKeys([]model.Category{{ID: "a", Name: "X"}, {ID: "b", Name: "X"}, {ID: "c", Name: "Y"}})
	assert.Equal(t, []string{"category.unknown", "category.X", "category.Y"}, keys)
}
