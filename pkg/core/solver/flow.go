package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/jakechorley/lead-allocator/pkg/core/milp"
)

// costEps ignores relaxations smaller than floating point noise so that
// equal-cost paths cannot keep re-entering the queue
const costEps = 1e-9

// FlowSolver solves transportation-structured models with min-cost flow
type FlowSolver struct{}

// NewFlowSolver creates a flow solver
func NewFlowSolver() *FlowSolver {
	return &FlowSolver{}
}

// Name identifies the backend
func (s *FlowSolver) Name() string {
	return string(BackendFlow)
}

type flowEdge struct {
	to   int
	rev  int // index of the reverse edge in graph[to]
	cap  int
	cost float64
	v    int // model variable carried by this edge, -1 for structural edges
}

type flowNetwork struct {
	graph  [][]flowEdge
	source int
	sink   int
	demand int
}

func (n *flowNetwork) addEdge(from, to, capacity int, cost float64, variable int) {
	n.graph[from] = append(n.graph[from], flowEdge{to: to, rev: len(n.graph[to]), cap: capacity, cost: cost, v: variable})
	n.graph[to] = append(n.graph[to], flowEdge{to: from, rev: len(n.graph[from]) - 1, cap: 0, cost: -cost, v: -1})
}

// buildNetwork maps the model onto source -> supply rows -> demand rows -> sink.
// Every variable must appear with coefficient 1 in exactly one equality row and
// exactly one capacity row.
func buildNetwork(m *milp.Model) (*flowNetwork, error) {
	nVars := m.NumVariables()
	demandRow := make([]int, nVars)
	supplyRow := make([]int, nVars)
	for i := range demandRow {
		demandRow[i] = -1
		supplyRow[i] = -1
	}

	var demands, supplies []int // constraint indices
	for ci, c := range m.Constraints {
		switch c.Relation {
		case milp.Equal:
			demands = append(demands, ci)
		case milp.LessOrEqual:
			supplies = append(supplies, ci)
		}
	}

	// Node layout: 0 source, then supply rows, then demand rows, then sink
	nodeOf := make(map[int]int, len(m.Constraints))
	for k, ci := range supplies {
		nodeOf[ci] = 1 + k
	}
	for k, ci := range demands {
		nodeOf[ci] = 1 + len(supplies) + k
	}

	network := &flowNetwork{
		graph:  make([][]flowEdge, len(supplies)+len(demands)+2),
		source: 0,
		sink:   len(supplies) + len(demands) + 1,
	}

	for ci, c := range m.Constraints {
		rhs, ok := integral(c.RHS)
		if !ok || rhs < 0 {
			return nil, fmt.Errorf("%w: constraint %s has non-integral or negative right-hand side %v", ErrUnsupportedModel, c.Name, c.RHS)
		}

		for _, t := range c.Terms {
			if t.Coeff != 1 {
				return nil, fmt.Errorf("%w: constraint %s has coefficient %v", ErrUnsupportedModel, c.Name, t.Coeff)
			}
			rows := supplyRow
			if c.Relation == milp.Equal {
				rows = demandRow
			}
			if rows[t.Var] != -1 {
				return nil, fmt.Errorf("%w: variable %s appears in more than one %s row", ErrUnsupportedModel, m.Variables[t.Var].Name, c.Relation)
			}
			rows[t.Var] = ci
		}

		if c.Relation == milp.Equal {
			network.addEdge(nodeOf[ci], network.sink, rhs, 0, -1)
			network.demand += rhs
		} else {
			network.addEdge(network.source, nodeOf[ci], rhs, 0, -1)
		}
	}

	for v := 0; v < nVars; v++ {
		if demandRow[v] == -1 || supplyRow[v] == -1 {
			return nil, fmt.Errorf("%w: variable %s needs one equality and one capacity row", ErrUnsupportedModel, m.Variables[v].Name)
		}
		cost := -m.Objective[v]
		if m.Sense == milp.Minimize {
			cost = m.Objective[v]
		}
		network.addEdge(nodeOf[supplyRow[v]], nodeOf[demandRow[v]], 1, cost, v)
	}

	return network, nil
}

// Solve runs successive shortest paths until every demand is met. If the network
// cannot carry the total demand the model is infeasible.
func (s *FlowSolver) Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	network, err := buildNetwork(m)
	if err != nil {
		return nil, err
	}

	nodes := len(network.graph)
	dist := make([]float64, nodes)
	inQueue := make([]bool, nodes)
	visits := make([]int, nodes)
	prevNode := make([]int, nodes)
	prevEdge := make([]int, nodes)

	flow := 0
	for flow < network.demand {
		if ctx.Err() != nil {
			return milp.NotSolved(contextReason(ctx)), nil
		}

		// Bellman-Ford with a FIFO queue; edge costs may be negative
		for i := range dist {
			dist[i] = math.Inf(1)
			inQueue[i] = false
			visits[i] = 0
			prevNode[i] = -1
		}
		dist[network.source] = 0
		queue := []int{network.source}
		inQueue[network.source] = true

		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			inQueue[u] = false

			visits[u]++
			if visits[u] > nodes {
				return milp.NotSolved("negative cycle in residual network"), nil
			}

			for ei, e := range network.graph[u] {
				if e.cap <= 0 {
					continue
				}
				if candidate := dist[u] + e.cost; candidate < dist[e.to]-costEps {
					dist[e.to] = candidate
					prevNode[e.to] = u
					prevEdge[e.to] = ei
					if !inQueue[e.to] {
						queue = append(queue, e.to)
						inQueue[e.to] = true
					}
				}
			}
		}

		if math.IsInf(dist[network.sink], 1) {
			return milp.Infeasible(fmt.Sprintf("only %d of %d demand units can be routed", flow, network.demand)), nil
		}

		// Bottleneck along the path
		push := network.demand - flow
		for v := network.sink; v != network.source; v = prevNode[v] {
			e := network.graph[prevNode[v]][prevEdge[v]]
			push = min(push, e.cap)
		}
		for v := network.sink; v != network.source; v = prevNode[v] {
			e := &network.graph[prevNode[v]][prevEdge[v]]
			e.cap -= push
			network.graph[v][e.rev].cap += push
		}
		flow += push
	}

	values := make([]bool, m.NumVariables())
	for _, edges := range network.graph {
		for _, e := range edges {
			// A saturated variable edge carries one unit
			if e.v >= 0 && e.cap == 0 {
				values[e.v] = true
			}
		}
	}

	return &milp.Solution{
		Status:    milp.StatusOptimal,
		Values:    values,
		Objective: m.Evaluate(values),
	}, nil
}

// integral returns the integer value of f if it is integral within tolerance
func integral(f float64) (int, bool) {
	r := math.Round(f)
	if math.Abs(f-r) > integralityTol {
		return 0, false
	}
	return int(r), true
}
