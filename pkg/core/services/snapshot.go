package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
	"github.com/jakechorley/lead-allocator/pkg/db"
)

// Snapshot is the static input of one allocation: the rosters and the leads created
// inside a window
type Snapshot struct {
	AppID      string
	Start      time.Time
	End        time.Time
	Managers   []model.ManagerRecord
	Categories []model.Category
	Leads      []model.LeadRecord
}

// RosterStore defines the database operations needed to read the rosters
type RosterStore interface {
	GetManagers(ctx context.Context, appID string) ([]db.Manager, error)
	GetCategories(ctx context.Context, appID string) ([]db.Category, error)
}

// SnapshotStore defines the database operations needed to read a snapshot
type SnapshotStore interface {
	RosterStore
	GetLeads(ctx context.Context, appID string, start, end time.Time) ([]db.Lead, error)
}

// SnapshotSource supplies snapshots to services
type SnapshotSource interface {
	Snapshot(ctx context.Context, appID string, start, end time.Time) (*Snapshot, error)
}

// LoadSnapshot reads the rosters and leads concurrently. Lead levels are normalised
// and blank levels become the baseline level.
func LoadSnapshot(ctx context.Context, store SnapshotStore, appID string, start, end time.Time, baseline string, logger *zap.Logger) (*Snapshot, error) {
	var (
		managers   []db.Manager
		categories []db.Category
		leads      []db.Lead
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if managers, err = store.GetManagers(gctx, appID); err != nil {
			return fmt.Errorf("failed to fetch managers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = store.GetCategories(gctx, appID); err != nil {
			return fmt.Errorf("failed to fetch categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if leads, err = store.GetLeads(gctx, appID, start, end); err != nil {
			return fmt.Errorf("failed to fetch leads: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Snapshot{
		AppID:      appID,
		Start:      start,
		End:        end,
		Managers:   toManagerRecords(managers),
		Categories: toCategories(categories),
		Leads:      make([]model.LeadRecord, 0, len(leads)),
	}
	for _, l := range leads {
		s.Leads = append(s.Leads, model.LeadRecord{
			ID:         l.MemberID,
			Level:      model.NormalizeLevel(l.Level, baseline),
			CategoryID: l.CategoryID,
		})
	}

	logger.Debug("Loaded snapshot",
		zap.String("app_id", appID),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("managers", len(s.Managers)),
		zap.Int("categories", len(s.Categories)),
		zap.Int("leads", len(s.Leads)))

	return s, nil
}

func toManagerRecords(managers []db.Manager) []model.ManagerRecord {
	out := make([]model.ManagerRecord, 0, len(managers))
	for _, m := range managers {
		out = append(out, model.ManagerRecord{ID: m.ID, Name: m.Name, Contact: m.Email})
	}
	return out
}

func toCategories(categories []db.Category) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, model.Category{ID: c.ID, Name: c.Name})
	}
	return out
}

type snapshotKey struct {
	appID string
	start string
	end   string
}

func keyFor(appID string, start, end time.Time) snapshotKey {
	return snapshotKey{appID: appID, start: start.Format("2006-01-02"), end: end.Format("2006-01-02")}
}

// SnapshotCache memoizes snapshots by app and window. It is owned by the caller:
// entries live until Invalidate or Clear.
type SnapshotCache struct {
	store    SnapshotStore
	baseline string
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[snapshotKey]*Snapshot
}

// NewSnapshotCache creates an empty cache over a store
func NewSnapshotCache(store SnapshotStore, baseline string, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		store:    store,
		baseline: baseline,
		logger:   logger,
		entries:  make(map[snapshotKey]*Snapshot),
	}
}

// Snapshot returns the cached snapshot or loads it
func (c *SnapshotCache) Snapshot(ctx context.Context, appID string, start, end time.Time) (*Snapshot, error) {
	key := keyFor(appID, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.entries[key]; ok {
		c.logger.Debug("Snapshot cache hit", zap.String("app_id", appID), zap.String("start", key.start), zap.String("end", key.end))
		return s, nil
	}

	s, err := LoadSnapshot(ctx, c.store, appID, start, end, c.baseline, c.logger)
	if err != nil {
		return nil, err
	}
	c.entries[key] = s
	return s, nil
}

// Invalidate drops one entry
func (c *SnapshotCache) Invalidate(appID string, start, end time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, keyFor(appID, start, end))
}

// Clear drops every entry
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[snapshotKey]*Snapshot)
}

// Len returns the number of cached snapshots
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
