package model

// LevelValueTable maps a lead level to its satisfaction value.
//
// Resolution order for Value: the level's own entry, then the baseline entry.
// A table without a baseline entry cannot resolve unknown levels and is rejected
// by Validate.
type LevelValueTable struct {
	Baseline string
	values   map[string]float64
}

// NewLevelValueTable creates a table with the given baseline level
func NewLevelValueTable(baseline string, values map[string]float64) LevelValueTable {
	copied := make(map[string]float64, len(values))
	for level, value := range values {
		copied[level] = value
	}
	return LevelValueTable{Baseline: baseline, values: copied}
}

// Validate checks that the baseline level has a value
func (t LevelValueTable) Validate() error {
	if _, ok := t.values[t.Baseline]; !ok {
		return &ConfigurationError{Field: "level", Key: t.Baseline, Err: ErrMissingBaselineLevel}
	}
	return nil
}

// Value returns the value for a level, falling back to the baseline level
func (t LevelValueTable) Value(level string) (float64, error) {
	if value, ok := t.values[level]; ok {
		return value, nil
	}
	if value, ok := t.values[t.Baseline]; ok {
		return value, nil
	}
	return 0, &ConfigurationError{Field: "level", Key: t.Baseline, Err: ErrMissingBaselineLevel}
}

// DefaultCategoryCost is the cost of a lead whose category has no configured cost
const DefaultCategoryCost = 1.0

// CategoryCostTable maps a category ID to its cost weight
type CategoryCostTable map[string]float64

// Cost returns the configured weight plus one, or DefaultCategoryCost when the
// category is nil or unconfigured. The +1 keeps every cost at or above 1.
func (t CategoryCostTable) Cost(categoryID *string) float64 {
	if categoryID == nil {
		return DefaultCategoryCost
	}
	weight, ok := t[*categoryID]
	if !ok {
		return DefaultCategoryCost
	}
	return weight + 1
}

// CategoryNames maps a category ID to its display name
type CategoryNames map[string]string

// NewCategoryNames builds the lookup from a category roster
func NewCategoryNames(categories []Category) CategoryNames {
	names := make(CategoryNames, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

// Key returns the category key for a category ID, or UnknownCategoryKey when the
// ID is nil or not in the roster
func (n CategoryNames) Key(categoryID *string) string {
	if categoryID == nil {
		return UnknownCategoryKey
	}
	name, ok := n[*categoryID]
	if !ok {
		return UnknownCategoryKey
	}
	return CategoryKey(name)
}
