package db

import "time"

// Manager is a member that can receive leads
type Manager struct {
	ID    string
	Name  string
	Email string
}

// Lead is a member created inside the snapshot window. Level is the raw property
// value and is empty when the member has none.
type Lead struct {
	MemberID   string
	CategoryID *string
	Level      string
}

// Category is a member category of an app
type Category struct {
	ID   string
	Name string
}

// AllocationRun records one solve
type AllocationRun struct {
	ID          string
	AppID       string
	WindowStart time.Time
	WindowEnd   time.Time
	Backend     string
	Status      string
	Objective   float64
	Total       int
	CreatedAt   time.Time
}

// LeadAssignment is one lead -> manager decision of a run
type LeadAssignment struct {
	RunID       string
	LeadID      string
	ManagerID   string
	CategoryKey string
}
