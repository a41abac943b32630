// Package attributes derives the numeric weights of each lead from its raw record
// and the configured level and category tables.
package attributes

import (
	"fmt"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

// Resolver resolves value, cost and category key for leads. It holds no state
// beyond its tables and never caches results.
type Resolver struct {
	levels     model.LevelValueTable
	costs      model.CategoryCostTable
	categories model.CategoryNames
}

// NewResolver creates a resolver. It fails with a ConfigurationError if the
// level table has no baseline value, since unknown levels could not be resolved.
func NewResolver(levels model.LevelValueTable, costs model.CategoryCostTable, categories model.CategoryNames) (*Resolver, error) {
	if err := levels.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{
		levels:     levels,
		costs:      costs,
		categories: categories,
	}, nil
}

// Value returns the level's value or the baseline level's value if the level is unknown
func (r *Resolver) Value(level string) (float64, error) {
	return r.levels.Value(level)
}

// Cost returns the category's configured cost plus one, or 1 if unconfigured
func (r *Resolver) Cost(categoryID *string) float64 {
	return r.costs.Cost(categoryID)
}

// CategoryKey returns "category.<name>" or "category.unknown"
func (r *Resolver) CategoryKey(categoryID *string) string {
	return r.categories.Key(categoryID)
}

// Resolve derives attributes for every lead, preserving input order
func (r *Resolver) Resolve(leads []model.LeadRecord) ([]model.Item, error) {
	items := make([]model.Item, 0, len(leads))
	for _, lead := range leads {
		value, err := r.Value(lead.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve value for lead %s: %w", lead.ID, err)
		}

		items = append(items, model.Item{
			ID:          lead.ID,
			Level:       lead.Level,
			CategoryID:  lead.CategoryID,
			Value:       value,
			Cost:        r.Cost(lead.CategoryID),
			CategoryKey: r.CategoryKey(lead.CategoryID),
		})
	}
	return items, nil
}
