// Package engine runs one allocation: attribute resolution, formulation, solving
// and aggregation, strictly in that order.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/attributes"
	"github.com/jakechorley/lead-allocator/pkg/core/formulation"
	"github.com/jakechorley/lead-allocator/pkg/core/milp"
	"github.com/jakechorley/lead-allocator/pkg/core/model"
	"github.com/jakechorley/lead-allocator/pkg/core/report"
	"github.com/jakechorley/lead-allocator/pkg/core/solver"
)

// Input is one static snapshot plus its configuration
type Input struct {
	Leads      []model.LeadRecord
	Agents     []model.Agent
	Categories []model.Category
	Levels     model.LevelValueTable
	Costs      model.CategoryCostTable
}

// Options controls the solve
type Options struct {
	Solver solver.Solver

	// Timeout bounds the solve step. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Result is the outcome of a run
type Result struct {
	Report   *report.AllocationReport
	Backend  string
	Duration time.Duration
	Reason   string
}

// Run executes the pipeline. Configuration errors are returned as errors and abort
// before formulation. Infeasible, unbounded and unsolved outcomes are reported
// through Result.Report.Status with no assignment data.
func Run(ctx context.Context, in Input, opts Options, logger *zap.Logger) (*Result, error) {
	if opts.Solver == nil {
		return nil, fmt.Errorf("no solver configured")
	}

	resolver, err := attributes.NewResolver(in.Levels, in.Costs, model.NewCategoryNames(in.Categories))
	if err != nil {
		return nil, fmt.Errorf("failed to create attribute resolver: %w", err)
	}

	leads := make([]model.LeadRecord, len(in.Leads))
	copy(leads, in.Leads)
	sort.SliceStable(leads, func(a, b int) bool {
		return leads[a].ID < leads[b].ID
	})

	items, err := resolver.Resolve(leads)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lead attributes: %w", err)
	}
	logger.Debug("Resolved lead attributes", zap.Int("leads", len(items)))

	f, err := formulation.Build(items, in.Agents)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	logger.Debug("Built model",
		zap.String("name", f.Model.Name),
		zap.Int("variables", f.Model.NumVariables()),
		zap.Int("constraints", len(f.Model.Constraints)))

	solveCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	sol, err := opts.Solver.Solve(solveCtx, f.Model)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to solve model: %w", err)
	}

	logger.Info("Solve finished",
		zap.String("backend", opts.Solver.Name()),
		zap.String("status", sol.Status.String()),
		zap.Float64("objective", sol.Objective),
		zap.Duration("duration", elapsed))

	result := &Result{
		Backend:  opts.Solver.Name(),
		Duration: elapsed,
		Reason:   sol.Reason,
	}

	if sol.Status != milp.StatusOptimal {
		if sol.Reason != "" {
			logger.Warn("No allocation produced", zap.String("status", sol.Status.String()), zap.String("reason", sol.Reason))
		}
		result.Report = report.Empty(sol.Status)
		return result, nil
	}

	r, err := report.Aggregate(f, sol, in.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate solution: %w", err)
	}
	result.Report = r
	return result, nil
}
