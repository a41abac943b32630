package db

import (
	"context"
	"time"
)

// Database defines the interface for all database operations. Services declare
// the narrow subsets they need.
type Database interface {
	GetManagers(ctx context.Context, appID string) ([]Manager, error)
	GetCategories(ctx context.Context, appID string) ([]Category, error)
	GetLeads(ctx context.Context, appID string, start, end time.Time) ([]Lead, error)
	InsertAllocationRun(ctx context.Context, run *AllocationRun, assignments []LeadAssignment) error
	GetAllocationRuns(ctx context.Context, appID string) ([]AllocationRun, error)
}
