// Package report reduces a solved assignment into manager x category counts.
package report

import (
	"fmt"
	"math"

	"github.com/jakechorley/lead-allocator/pkg/core/formulation"
	"github.com/jakechorley/lead-allocator/pkg/core/milp"
	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

// Assignment is a single lead -> manager decision
type Assignment struct {
	ItemID      string
	AgentID     string
	CategoryKey string
}

// AllocationReport is the aggregated result of one solve. Rows and Columns are
// labels; Counts[r][c] is the number of leads of category Columns[c] assigned to
// manager Rows[r]. Rows and columns whose counts are all zero are omitted.
type AllocationReport struct {
	Status      milp.Status
	Objective   float64
	Total       int
	Rows        []string
	RowAgentIDs []string
	Columns     []string
	Counts      [][]int
	Assignments []Assignment
}

// DisplayObjective returns the objective rounded to 2 decimal places
func (r *AllocationReport) DisplayObjective() float64 {
	return math.Round(r.Objective*100) / 100
}

// Cell returns the count for a row and column label, 0 if either was trimmed
func (r *AllocationReport) Cell(row, column string) int {
	for ri, label := range r.Rows {
		if label != row {
			continue
		}
		for ci, col := range r.Columns {
			if col == column {
				return r.Counts[ri][ci]
			}
		}
	}
	return 0
}

// Empty builds a report carrying only a non-optimal status
func Empty(status milp.Status) *AllocationReport {
	return &AllocationReport{Status: status}
}

// ColumnKeys returns the category keys in column order: unknown first, then the
// roster order. Duplicated names are kept once.
func ColumnKeys(categories []model.Category) []string {
	keys := []string{model.UnknownCategoryKey}
	seen := map[string]bool{model.UnknownCategoryKey: true}
	for _, c := range categories {
		key := model.CategoryKey(c.Name)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// Aggregate builds the report for an optimal solution. Summation is order
// independent so the result depends only on the assignment relation.
func Aggregate(f *formulation.Formulation, sol *milp.Solution, categories []model.Category) (*AllocationReport, error) {
	if sol.Status != milp.StatusOptimal {
		return Empty(sol.Status), nil
	}
	if len(sol.Values) != f.Model.NumVariables() {
		return nil, fmt.Errorf("solution has %d values for %d variables", len(sol.Values), f.Model.NumVariables())
	}

	keys := ColumnKeys(categories)
	column := make(map[string]int, len(keys))
	for ci, key := range keys {
		column[key] = ci
	}

	counts := make([][]int, len(f.Agents))
	for i := range counts {
		counts[i] = make([]int, len(keys))
	}

	total := 0
	assignments := make([]Assignment, 0, len(f.Items))
	for idx, set := range sol.Values {
		if !set {
			continue
		}
		v := f.Model.Variables[idx]
		item := f.Items[v.Item]

		ci, ok := column[item.CategoryKey]
		if !ok {
			// Key resolved from a category missing in the roster passed here
			ci = len(keys)
			keys = append(keys, item.CategoryKey)
			column[item.CategoryKey] = ci
			for i := range counts {
				counts[i] = append(counts[i], 0)
			}
		}

		counts[v.Agent][ci]++
		total++
		assignments = append(assignments, Assignment{
			ItemID:      item.ID,
			AgentID:     f.Agents[v.Agent].ID,
			CategoryKey: item.CategoryKey,
		})
	}

	rows := make([]string, len(f.Agents))
	rowIDs := make([]string, len(f.Agents))
	for i, a := range f.Agents {
		rows[i] = a.Label()
		rowIDs[i] = a.ID
	}
	columns := make([]string, len(keys))
	for ci, key := range keys {
		columns[ci] = model.CategoryNameFromKey(key)
	}

	r := &AllocationReport{
		Status:      sol.Status,
		Objective:   sol.Objective,
		Total:       total,
		Assignments: assignments,
	}
	r.Rows, r.RowAgentIDs, r.Columns, r.Counts = trim(rows, rowIDs, columns, counts)
	return r, nil
}

// trim drops rows and columns whose counts are all zero
func trim(rows, rowIDs, columns []string, counts [][]int) ([]string, []string, []string, [][]int) {
	keepCol := make([]bool, len(columns))
	keepRow := make([]bool, len(rows))
	for ri, row := range counts {
		for ci, n := range row {
			if n != 0 {
				keepRow[ri] = true
				keepCol[ci] = true
			}
		}
	}

	var outCols []string
	for ci, col := range columns {
		if keepCol[ci] {
			outCols = append(outCols, col)
		}
	}

	var outRows, outIDs []string
	var outCounts [][]int
	for ri, row := range counts {
		if !keepRow[ri] {
			continue
		}
		trimmed := make([]int, 0, len(outCols))
		for ci, n := range row {
			if keepCol[ci] {
				trimmed = append(trimmed, n)
			}
		}
		outRows = append(outRows, rows[ri])
		outIDs = append(outIDs, rowIDs[ri])
		outCounts = append(outCounts, trimmed)
	}

	return outRows, outIDs, outCols, outCounts
}
