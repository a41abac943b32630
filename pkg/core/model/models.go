package model

import "strings"

const (
	// CategoryKeyPrefix prefixes every category key used for preference lookup
	CategoryKeyPrefix = "category."

	// UnknownCategoryName is the reserved category for leads with no resolvable category
	UnknownCategoryName = "unknown"

	// UnknownCategoryKey is the preference key for leads with no resolvable category
	UnknownCategoryKey = CategoryKeyPrefix + UnknownCategoryName

	// DefaultBaselineLevel is the level used when a lead's level is missing or unknown
	DefaultBaselineLevel = "N"
)

// CategoryKey builds the preference key for a category name
func CategoryKey(name string) string {
	return CategoryKeyPrefix + name
}

// CategoryNameFromKey strips the key prefix, returning the bare category name
func CategoryNameFromKey(key string) string {
	return strings.TrimPrefix(key, CategoryKeyPrefix)
}

// LeadRecord is a raw lead row from the snapshot repository
type LeadRecord struct {
	ID         string
	Level      string
	CategoryID *string // nil when the lead has no category
}

// ManagerRecord is a raw manager row from the roster
type ManagerRecord struct {
	ID      string
	Name    string
	Contact string
}

// Category is a lead classification
type Category struct {
	ID   string
	Name string
}

// Item is a lead with its resolved attributes
type Item struct {
	ID          string
	Level       string
	CategoryID  *string
	Value       float64
	Cost        float64
	CategoryKey string
}

// Agent is a manager with the configuration the solver needs
type Agent struct {
	ID           string
	Name         string
	Contact      string
	AbilityScore float64
	Capacity     int

	// Preference maps category keys to a non-negative weight. Missing keys are 0.
	Preference map[string]float64
}

// PreferenceFor returns the agent's weight for a category key, 0 if unset
func (a Agent) PreferenceFor(categoryKey string) float64 {
	return a.Preference[categoryKey]
}

// Label is the human-readable row label used in reports
func (a Agent) Label() string {
	if a.Contact == "" {
		return a.Name
	}
	return a.Name + "(" + a.Contact + ")"
}

// NormalizeLevel cleans a raw level property value. Multi-valued properties are
// comma separated and the last value wins; blanks become the baseline level.
func NormalizeLevel(raw, baseline string) string {
	cleaned := strings.ReplaceAll(raw, " ", "")
	parts := strings.Split(cleaned, ",")
	level := parts[len(parts)-1]
	if level == "" {
		return baseline
	}
	return level
}
