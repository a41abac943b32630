package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SnapshotOverview summarises a snapshot
type SnapshotOverview struct {
	Snapshot      *Snapshot
	CategoryCount int
	ManagerCount  int
	LeadCount     int

	// LeadsByCategory counts leads per category name, "unknown" for leads without
	// a category in the roster
	LeadsByCategory map[string]int
	LeadsByLevel    map[string]int
}

// ViewSnapshot returns the counts of a snapshot
func ViewSnapshot(ctx context.Context, source SnapshotSource, appID string, start, end time.Time, logger *zap.Logger) (*SnapshotOverview, error) {
	logger.Debug("Viewing snapshot", zap.String("app_id", appID))

	s, err := source.Snapshot(ctx, appID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	names := make(map[string]string, len(s.Categories))
	for _, c := range s.Categories {
		names[c.ID] = c.Name
	}

	overview := &SnapshotOverview{
		Snapshot:        s,
		CategoryCount:   len(s.Categories),
		ManagerCount:    len(s.Managers),
		LeadCount:       len(s.Leads),
		LeadsByCategory: make(map[string]int),
		LeadsByLevel:    make(map[string]int),
	}
	for _, l := range s.Leads {
		name := "unknown"
		if l.CategoryID != nil {
			if n, ok := names[*l.CategoryID]; ok {
				name = n
			}
		}
		overview.LeadsByCategory[name]++
		overview.LeadsByLevel[l.Level]++
	}

	return overview, nil
}
