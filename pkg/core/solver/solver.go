// Package solver solves binary assignment models exactly.
//
// Two backends are available:
//
//   - flow: successive shortest paths on the transportation network formed by
//     unit-coefficient equality (demand) and capacity (supply) rows. Such models are
//     totally unimodular, so the min-cost flow optimum is the 0/1 optimum.
//   - simplex: LP relaxation with gonum's simplex and depth-first branch and bound
//     over fractional variables. Slower, accepts general binary models.
//
// Neither backend approximates. A solve that cannot finish, either because the
// backend failed or because the context ended, reports milp.StatusNotSolved and
// never returns a partial assignment.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakechorley/lead-allocator/pkg/core/milp"
)

// ErrUnsupportedModel is returned when a backend cannot represent a model
var ErrUnsupportedModel = errors.New("model structure not supported by solver backend")

// Backend names a solver implementation
type Backend string

const (
	BackendFlow    Backend = "flow"
	BackendSimplex Backend = "simplex"
)

// IsValid reports whether the backend is known
func (b Backend) IsValid() bool {
	return b == BackendFlow || b == BackendSimplex
}

// Solver solves a model
type Solver interface {
	// Name identifies the backend
	Name() string

	// Solve blocks until the model is solved or ctx is done. Outcomes other than
	// malformed input are reported through the solution status.
	Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error)
}

// New returns the solver for a backend
func New(backend Backend) (Solver, error) {
	switch backend {
	case BackendFlow, "":
		return NewFlowSolver(), nil
	case BackendSimplex:
		return NewSimplexSolver(), nil
	default:
		return nil, fmt.Errorf("unsupported solver backend: %q", backend)
	}
}

// integralityTol is the distance from an integer below which a value counts as integral
const integralityTol = 1e-6

// contextReason describes why a context ended
func contextReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "time budget exceeded"
	}
	return "solve cancelled"
}
