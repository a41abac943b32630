package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/engine"
	"github.com/jakechorley/lead-allocator/pkg/core/milp"
	"github.com/jakechorley/lead-allocator/pkg/core/overlay"
	"github.com/jakechorley/lead-allocator/pkg/core/report"
	"github.com/jakechorley/lead-allocator/pkg/core/solver"
	"github.com/jakechorley/lead-allocator/pkg/db"
)

// AllocationRunStore defines the database operations needed to record a run
type AllocationRunStore interface {
	InsertAllocationRun(ctx context.Context, run *db.AllocationRun, assignments []db.LeadAssignment) error
}

// SolveRecorder receives the outcome of every solve
type SolveRecorder interface {
	RecordSolve(backend, status string, duration time.Duration, assigned int, objective float64)
}

// AllocateLeadsRequest describes one allocation
type AllocateLeadsRequest struct {
	AppID         string
	Start         time.Time
	End           time.Time
	Overlay       *overlay.Overlay
	BaselineLevel string
	Backend       solver.Backend
	Timeout       time.Duration

	// Persist stores the run and its assignments
	Persist bool
}

// AllocationResult is the outcome of AllocateLeads
type AllocationResult struct {
	RunID     string
	AppID     string
	Start     time.Time
	End       time.Time
	Backend   string
	Duration  time.Duration
	Reason    string
	Report    *report.AllocationReport
	Snapshot  *Snapshot
	Persisted bool
}

// Window formats the snapshot window for display
func (r *AllocationResult) Window() string {
	return r.Start.Format("2006-01-02") + ".." + r.End.Format("2006-01-02")
}

// AllocateLeads solves the assignment of a snapshot's leads to the overlay's
// managers. A non-optimal status is not an error: the result carries the status
// and no assignment.
func AllocateLeads(
	ctx context.Context,
	source SnapshotSource,
	runs AllocationRunStore,
	recorder SolveRecorder,
	req AllocateLeadsRequest,
	logger *zap.Logger,
) (*AllocationResult, error) {
	if req.Overlay == nil {
		return nil, fmt.Errorf("no overlay provided")
	}

	s, err := solver.New(req.Backend)
	if err != nil {
		return nil, err
	}

	snapshot, err := source.Snapshot(ctx, req.AppID, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	logger.Info("Allocating leads",
		zap.String("app_id", req.AppID),
		zap.Int("leads", len(snapshot.Leads)),
		zap.Int("managers", len(req.Overlay.Managers)),
		zap.String("backend", s.Name()))

	in := engine.Input{
		Leads:      snapshot.Leads,
		Agents:     req.Overlay.Agents(snapshot.Managers, logger),
		Categories: snapshot.Categories,
		Levels:     req.Overlay.LevelTable(req.BaselineLevel),
		Costs:      req.Overlay.CostTable(),
	}

	out, err := engine.Run(ctx, in, engine.Options{Solver: s, Timeout: req.Timeout}, logger)
	if err != nil {
		return nil, err
	}

	r := out.Report
	if recorder != nil {
		recorder.RecordSolve(out.Backend, r.Status.String(), out.Duration, r.Total, r.Objective)
	}

	result := &AllocationResult{
		RunID:    uuid.New().String(),
		AppID:    req.AppID,
		Start:    req.Start,
		End:      req.End,
		Backend:  out.Backend,
		Duration: out.Duration,
		Reason:   out.Reason,
		Report:   r,
		Snapshot: snapshot,
	}

	if req.Persist && runs != nil {
		if err := persistRun(ctx, runs, result); err != nil {
			return nil, err
		}
		result.Persisted = true
		logger.Info("Recorded allocation run", zap.String("run_id", result.RunID), zap.Int("assignments", len(r.Assignments)))
	}

	return result, nil
}

func persistRun(ctx context.Context, runs AllocationRunStore, result *AllocationResult) error {
	r := result.Report
	run := &db.AllocationRun{
		ID:          result.RunID,
		AppID:       result.AppID,
		WindowStart: result.Start,
		WindowEnd:   result.End,
		Backend:     result.Backend,
		Status:      r.Status.String(),
		Total:       r.Total,
		CreatedAt:   time.Now(),
	}
	if r.Status == milp.StatusOptimal {
		run.Objective = r.Objective
	}

	assignments := make([]db.LeadAssignment, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		assignments = append(assignments, db.LeadAssignment{
			RunID:       result.RunID,
			LeadID:      a.ItemID,
			ManagerID:   a.AgentID,
			CategoryKey: a.CategoryKey,
		})
	}

	if err := runs.InsertAllocationRun(ctx, run, assignments); err != nil {
		return fmt.Errorf("failed to record allocation run: %w", err)
	}
	return nil
}
