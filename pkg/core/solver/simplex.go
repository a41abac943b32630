package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/jakechorley/lead-allocator/pkg/core/milp"
)

// simplexTol is passed to gonum's simplex as its optimality tolerance
const simplexTol = 1e-10

// SimplexSolver solves binary models by branch and bound over LP relaxations
type SimplexSolver struct{}

// NewSimplexSolver creates a simplex solver
func NewSimplexSolver() *SimplexSolver {
	return &SimplexSolver{}
}

// Name identifies the backend
func (s *SimplexSolver) Name() string {
	return string(BackendSimplex)
}

// standardForm is the model rewritten as minimize c.x s.t. A x = b, x >= 0.
// Columns [0, nVars) are model variables, the rest are slacks.
type standardForm struct {
	nVars int
	rows  [][]float64
	b     []float64
	c     []float64
}

func newStandardForm(m *milp.Model) *standardForm {
	nVars := m.NumVariables()

	// A unit partition row (x_a + x_b + ... = 1) already bounds its variables by 1
	bounded := make([]bool, nVars)
	for _, c := range m.Constraints {
		if c.Relation != milp.Equal || c.RHS != 1 {
			continue
		}
		unit := true
		for _, t := range c.Terms {
			if t.Coeff != 1 {
				unit = false
				break
			}
		}
		if unit {
			for _, t := range c.Terms {
				bounded[t.Var] = true
			}
		}
	}

	slacks := 0
	for _, c := range m.Constraints {
		if c.Relation == milp.LessOrEqual {
			slacks++
		}
	}
	for _, ok := range bounded {
		if !ok {
			slacks++
		}
	}

	cols := nVars + slacks
	sf := &standardForm{nVars: nVars, c: make([]float64, cols)}
	for v, coeff := range m.Objective {
		if m.Sense == milp.Maximize {
			sf.c[v] = -coeff
		} else {
			sf.c[v] = coeff
		}
	}

	slack := nVars
	addRow := func(row []float64, rhs float64) {
		sf.rows = append(sf.rows, row)
		sf.b = append(sf.b, rhs)
	}
	for _, c := range m.Constraints {
		row := make([]float64, cols)
		for _, t := range c.Terms {
			row[t.Var] += t.Coeff
		}
		if c.Relation == milp.LessOrEqual {
			row[slack] = 1
			slack++
		}
		addRow(row, c.RHS)
	}
	for v, ok := range bounded {
		if ok {
			continue
		}
		row := make([]float64, cols)
		row[v] = 1
		row[slack] = 1
		slack++
		addRow(row, 1)
	}

	return sf
}

type relaxation struct {
	status milp.Status
	value  float64   // objective in minimisation terms, including fixed variables
	x      []float64 // model variable values
	reason string
}

// relax solves the LP with the given variables fixed to 0 or 1. Fixed columns are
// eliminated and rows left without coefficients are dropped or proven infeasible.
func (sf *standardForm) relax(fixed map[int]float64) relaxation {
	cols := len(sf.c)
	keep := make([]int, 0, cols)
	// fixedCols is ascending so the sums below round the same way on every call
	fixedCols := make([]int, 0, len(fixed))
	for j := 0; j < cols; j++ {
		if _, ok := fixed[j]; ok {
			fixedCols = append(fixedCols, j)
		} else {
			keep = append(keep, j)
		}
	}

	constant := 0.0
	for _, v := range fixedCols {
		constant += sf.c[v] * fixed[v]
	}

	var rows [][]float64
	var b []float64
	for i, row := range sf.rows {
		rhs := sf.b[i]
		for _, v := range fixedCols {
			rhs -= row[v] * fixed[v]
		}
		reduced := make([]float64, len(keep))
		nonZero := false
		for k, j := range keep {
			reduced[k] = row[j]
			if row[j] != 0 {
				nonZero = true
			}
		}
		if !nonZero {
			if math.Abs(rhs) > integralityTol {
				return relaxation{status: milp.StatusInfeasible}
			}
			continue
		}
		rows = append(rows, reduced)
		b = append(b, rhs)
	}

	x := make([]float64, sf.nVars)
	for _, v := range fixedCols {
		x[v] = fixed[v]
	}

	if len(rows) == 0 {
		// Every remaining column would be unconstrained; bounded columns always
		// sit in a row, so only an empty column set gets here
		if len(keep) > 0 {
			return relaxation{status: milp.StatusNotSolved, reason: "unconstrained variables"}
		}
		return relaxation{status: milp.StatusOptimal, value: constant, x: x}
	}
	if len(rows) > len(keep) {
		return relaxation{status: milp.StatusNotSolved, reason: "more independent rows than columns"}
	}

	A := mat.NewDense(len(rows), len(keep), nil)
	for i, row := range rows {
		A.SetRow(i, row)
	}
	c := make([]float64, len(keep))
	for k, j := range keep {
		c[k] = sf.c[j]
	}

	optF, optX, err := lp.Simplex(c, A, b, simplexTol, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return relaxation{status: milp.StatusInfeasible}
	case errors.Is(err, lp.ErrUnbounded):
		return relaxation{status: milp.StatusUnbounded}
	case err != nil:
		return relaxation{status: milp.StatusNotSolved, reason: err.Error()}
	}

	for k, j := range keep {
		if j < sf.nVars {
			x[j] = optX[k]
		}
	}
	return relaxation{status: milp.StatusOptimal, value: optF + constant, x: x}
}

// relaxWithContext runs relax in the background so an abandoned solve returns at once
func (sf *standardForm) relaxWithContext(ctx context.Context, fixed map[int]float64) (relaxation, bool) {
	done := make(chan relaxation, 1)
	go func() {
		done <- sf.relax(fixed)
	}()

	select {
	case r := <-done:
		return r, true
	case <-ctx.Done():
		return relaxation{}, false
	}
}

type bbNode struct {
	fixed map[int]float64
}

// Solve runs depth-first branch and bound, branching on the most fractional
// variable and exploring the x=1 child first
func (s *SimplexSolver) Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	for _, c := range m.Constraints {
		if c.Relation != milp.Equal && c.Relation != milp.LessOrEqual {
			return nil, fmt.Errorf("%w: constraint %s has relation %s", ErrUnsupportedModel, c.Name, c.Relation)
		}
	}

	sf := newStandardForm(m)

	var incumbent []float64
	best := math.Inf(1)
	stack := []bbNode{{fixed: map[int]float64{}}}
	root := true

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return milp.NotSolved(contextReason(ctx)), nil
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		r, ok := sf.relaxWithContext(ctx, node.fixed)
		if !ok {
			return milp.NotSolved(contextReason(ctx)), nil
		}

		switch r.status {
		case milp.StatusInfeasible:
			root = false
			continue
		case milp.StatusUnbounded:
			if root {
				return &milp.Solution{Status: milp.StatusUnbounded, Reason: "LP relaxation is unbounded"}, nil
			}
			return milp.NotSolved("unbounded subproblem"), nil
		case milp.StatusNotSolved:
			return milp.NotSolved(r.reason), nil
		}
		root = false

		if r.value >= best-costEps {
			continue
		}

		branchVar := -1
		worst := integralityTol
		for v := 0; v < sf.nVars; v++ {
			frac := math.Abs(r.x[v] - math.Round(r.x[v]))
			if frac > worst {
				worst = frac
				branchVar = v
			}
		}

		if branchVar == -1 {
			best = r.value
			incumbent = r.x
			continue
		}

		zero := make(map[int]float64, len(node.fixed)+1)
		one := make(map[int]float64, len(node.fixed)+1)
		for v, val := range node.fixed {
			zero[v] = val
			one[v] = val
		}
		zero[branchVar] = 0
		one[branchVar] = 1
		stack = append(stack, bbNode{fixed: zero}, bbNode{fixed: one})
	}

	if incumbent == nil {
		return milp.Infeasible("no integral assignment satisfies the constraints"), nil
	}

	values := make([]bool, sf.nVars)
	for v, x := range incumbent {
		values[v] = math.Round(x) == 1
	}
	return &milp.Solution{
		Status:    milp.StatusOptimal,
		Values:    values,
		Objective: m.Evaluate(values),
	}, nil
}
