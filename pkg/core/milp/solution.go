package milp

// Status is the outcome of a solve
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	default:
		return "Not Solved"
	}
}

// Solution is the result of solving a model. Values and Objective are only
// meaningful when Status is StatusOptimal.
type Solution struct {
	Status    Status
	Values    []bool
	Objective float64

	// Reason explains a non-optimal status (solver error, deadline, cancellation)
	Reason string
}

// NotSolved builds a solution for a solve that did not complete
func NotSolved(reason string) *Solution {
	return &Solution{Status: StatusNotSolved, Reason: reason}
}

// Infeasible builds a solution for a model with no feasible assignment
func Infeasible(reason string) *Solution {
	return &Solution{Status: StatusInfeasible, Reason: reason}
}
