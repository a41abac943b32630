package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jakechorley/lead-allocator/pkg/core/report"
	"github.com/jakechorley/lead-allocator/pkg/db"
)

// The aggregate database satisfies every store a service declares
var (
	_ SnapshotStore      = db.Database(nil)
	_ AllocationRunStore = db.Database(nil)
)

func strPtr(s string) *string { return &s }

// mockSnapshotStore implements SnapshotStore
type mockSnapshotStore struct {
	mu            sync.Mutex
	managers      []db.Manager
	categories    []db.Category
	leads         []db.Lead
	managersErr   error
	categoriesErr error
	leadsErr      error
	leadCalls     int
}

func (m *mockSnapshotStore) GetManagers(ctx context.Context, appID string) ([]db.Manager, error) {
	if m.managersErr != nil {
		return nil, m.managersErr
	}
	return m.managers, nil
}

func (m *mockSnapshotStore) GetCategories(ctx context.Context, appID string) ([]db.Category, error) {
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	return m.categories, nil
}

func (m *mockSnapshotStore) GetLeads(ctx context.Context, appID string, start, end time.Time) ([]db.Lead, error) {
	m.mu.Lock()
	m.leadCalls++
	m.mu.Unlock()
	if m.leadsErr != nil {
		return nil, m.leadsErr
	}
	return m.leads, nil
}

// mockRunStore implements AllocationRunStore
type mockRunStore struct {
	runs        []db.AllocationRun
	assignments []db.LeadAssignment
	err         error
}

func (m *mockRunStore) InsertAllocationRun(ctx context.Context, run *db.AllocationRun, assignments []db.LeadAssignment) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, *run)
	m.assignments = append(m.assignments, assignments...)
	return nil
}

// mockRecorder implements SolveRecorder
type mockRecorder struct {
	statuses []string
	assigned []int
}

func (m *mockRecorder) RecordSolve(backend, status string, duration time.Duration, assigned int, objective float64) {
	m.statuses = append(m.statuses, status)
	m.assigned = append(m.assigned, assigned)
}

// mockPublisher implements ReportPublisher
type mockPublisher struct {
	titles []string
	err    error
}

func (m *mockPublisher) PublishReport(spreadsheetID, title string, r *report.AllocationReport, window string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.titles = append(m.titles, title)
	return 7, nil
}

// mockEmailSender implements EmailSender
type mockEmailSender struct {
	sent   []string
	bodies []string
	failTo string
}

func (m *mockEmailSender) SendEmail(to, subject, body string) error {
	if to == m.failTo {
		return fmt.Errorf("mailbox unavailable")
	}
	m.sent = append(m.sent, to)
	m.bodies = append(m.bodies, body)
	return nil
}

// exampleStore: two managers, three leads; l3's category is not a member category
func exampleStore() *mockSnapshotStore {
	return &mockSnapshotStore{
		managers: []db.Manager{
			{ID: "m1", Name: "Amy", Email: "amy@example.com"},
			{ID: "m2", Name: "Ben", Email: "ben@example.com"},
		},
		categories: []db.Category{{ID: "a", Name: "A"}},
		leads: []db.Lead{
			{MemberID: "l1", CategoryID: strPtr("a"), Level: "N"},
			{MemberID: "l2", CategoryID: strPtr("a"), Level: " R, N"},
			{MemberID: "l3", CategoryID: strPtr("b"), Level: ""},
		},
	}
}
