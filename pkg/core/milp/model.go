// Package milp describes 0/1 linear programs independently of how they are solved.
package milp

import (
	"fmt"
	"math"
)

// Sense is the optimisation direction of the objective
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

// Relation is the comparison used by a constraint row
type Relation int

const (
	Equal Relation = iota
	LessOrEqual
)

func (r Relation) String() string {
	switch r {
	case Equal:
		return "="
	case LessOrEqual:
		return "<="
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Variable is a binary decision variable. Agent and Item record the pair the
// variable decides on so solutions can be mapped back without name parsing.
type Variable struct {
	Name  string
	Agent int
	Item  int
}

// Term is a coefficient applied to a variable in a constraint row
type Term struct {
	Var   int
	Coeff float64
}

// Constraint is a single linear row: sum(terms) relation RHS
type Constraint struct {
	Name     string
	Terms    []Term
	Relation Relation
	RHS      float64
}

// Model is a binary linear program
type Model struct {
	Name        string
	Sense       Sense
	Variables   []Variable
	Objective   []float64 // one coefficient per variable
	Constraints []Constraint
}

// NewModel creates an empty model
func NewModel(name string, sense Sense) *Model {
	return &Model{Name: name, Sense: sense}
}

// AddVariable appends a variable with its objective coefficient and returns its index
func (m *Model) AddVariable(v Variable, objective float64) int {
	m.Variables = append(m.Variables, v)
	m.Objective = append(m.Objective, objective)
	return len(m.Variables) - 1
}

// AddConstraint appends a constraint row
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// NumVariables returns the number of decision variables
func (m *Model) NumVariables() int {
	return len(m.Variables)
}

// Evaluate computes the objective value of an assignment
func (m *Model) Evaluate(values []bool) float64 {
	total := 0.0
	for i, set := range values {
		if set {
			total += m.Objective[i]
		}
	}
	return total
}

// Feasible reports whether an assignment satisfies every constraint within tol
func (m *Model) Feasible(values []bool, tol float64) bool {
	for _, c := range m.Constraints {
		lhs := 0.0
		for _, t := range c.Terms {
			if values[t.Var] {
				lhs += t.Coeff
			}
		}
		switch c.Relation {
		case Equal:
			if math.Abs(lhs-c.RHS) > tol {
				return false
			}
		case LessOrEqual:
			if lhs > c.RHS+tol {
				return false
			}
		}
	}
	return true
}

// Validate checks the structural consistency of the model
func (m *Model) Validate() error {
	if len(m.Objective) != len(m.Variables) {
		return fmt.Errorf("model %s has %d objective coefficients for %d variables", m.Name, len(m.Objective), len(m.Variables))
	}
	for _, c := range m.Constraints {
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= len(m.Variables) {
				return fmt.Errorf("constraint %s references unknown variable %d", c.Name, t.Var)
			}
		}
	}
	return nil
}
