package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/lead-allocator/pkg/db"
)

// InsertAllocationRun stores a run and its assignments in one transaction
func (d *DB) InsertAllocationRun(ctx context.Context, run *db.AllocationRun, assignments []db.LeadAssignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO allocation_run (id, app_id, window_start, window_end, backend, status, objective, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, run.ID, run.AppID, run.WindowStart, run.WindowEnd, run.Backend, run.Status, run.Objective, run.Total, run.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert allocation run: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO lead_assignment (run_id, lead_id, manager_id, category_key)
			VALUES ($1, $2, $3, $4)
		`, a.RunID, a.LeadID, a.ManagerID, a.CategoryKey)
		if err != nil {
			return fmt.Errorf("failed to insert lead assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAllocationRuns returns an app's runs, newest first
func (d *DB) GetAllocationRuns(ctx context.Context, appID string) ([]db.AllocationRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id::text, app_id, window_start, window_end, backend, status, objective, total, created_at
		FROM allocation_run
		WHERE app_id = $1
		ORDER BY created_at DESC
	`, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation runs: %w", err)
	}
	defer rows.Close()

	var runs []db.AllocationRun
	for rows.Next() {
		var r db.AllocationRun
		if err := rows.Scan(&r.ID, &r.AppID, &r.WindowStart, &r.WindowEnd, &r.Backend, &r.Status, &r.Objective, &r.Total, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan allocation run: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation runs: %w", err)
	}

	return runs, nil
}
