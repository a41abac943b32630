// Package formulation builds the lead assignment model from resolved leads and
// configured managers.
package formulation

import (
	"fmt"

	"github.com/jakechorley/lead-allocator/pkg/core/milp"
	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

// ModelName is the name given to every lead assignment model
const ModelName = "Maximize_Satisfaction"

// Formulation is a lead assignment model together with the agents and items it was
// built from. Variable (i, j) has index i*len(Items)+j.
type Formulation struct {
	Model  *milp.Model
	Agents []model.Agent
	Items  []model.Item
}

// VarIndex returns the variable index for agent i and item j
func (f *Formulation) VarIndex(agent, item int) int {
	return agent*len(f.Items) + item
}

// Weight is the objective coefficient of assigning item to agent:
// preference * value * ability^2 / cost
func Weight(agent model.Agent, item model.Item) float64 {
	return agent.PreferenceFor(item.CategoryKey) * item.Value * agent.AbilityScore * agent.AbilityScore / item.Cost
}

// Build creates the model:
//
//	maximize  sum_i sum_j x[i][j] * Weight(i, j)
//	s.t.      sum_i x[i][j] = 1          for every item j
//	          sum_j x[i][j] <= capacity  for every agent i
//
// Every call produces an independent model instance.
func Build(items []model.Item, agents []model.Agent) (*Formulation, error) {
	for _, a := range agents {
		if a.Capacity < 0 {
			return nil, fmt.Errorf("agent %s has negative capacity %d", a.ID, a.Capacity)
		}
		if a.AbilityScore < 0 {
			return nil, fmt.Errorf("agent %s has negative ability score %v", a.ID, a.AbilityScore)
		}
	}

	m := milp.NewModel(ModelName, milp.Maximize)
	n := len(items)

	for i, agent := range agents {
		for j, item := range items {
			m.AddVariable(milp.Variable{
				Name:  fmt.Sprintf("x_(%d,_%d)", i, j),
				Agent: i,
				Item:  j,
			}, Weight(agent, item))
		}
	}

	// Each lead is claimed exactly once
	for j, item := range items {
		terms := make([]milp.Term, 0, len(agents))
		for i := range agents {
			terms = append(terms, milp.Term{Var: i*n + j, Coeff: 1})
		}
		m.AddConstraint(milp.Constraint{
			Name:     "assign_" + item.ID,
			Terms:    terms,
			Relation: milp.Equal,
			RHS:      1,
		})
	}

	// Each manager stays within quota
	for i, agent := range agents {
		terms := make([]milp.Term, 0, n)
		for j := range items {
			terms = append(terms, milp.Term{Var: i*n + j, Coeff: 1})
		}
		m.AddConstraint(milp.Constraint{
			Name:     "capacity_" + agent.ID,
			Terms:    terms,
			Relation: milp.LessOrEqual,
			RHS:      float64(agent.Capacity),
		})
	}

	return &Formulation{
		Model:  m,
		Agents: agents,
		Items:  items,
	}, nil
}
