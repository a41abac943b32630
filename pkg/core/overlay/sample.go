package overlay

import "github.com/jakechorley/lead-allocator/pkg/core/model"

// Defaults used when generating a sample overlay
const (
	SampleScore        = 0.5
	SampleMaxLeads     = 0
	SampleCategoryCost = 0.5
)

// SampleLevels are the level values written to a sample overlay
var SampleLevels = []LevelConfig{
	{Level: "N", Value: 1},
	{Level: "R", Value: 2},
	{Level: "SR", Value: 3},
	{Level: "SSR", Value: 5},
}

// Sample builds an overlay pre-filled from the rosters for an operator to edit.
// Every manager prefers only uncategorised leads and has no quota, so the sample
// must be edited before it can produce an allocation.
func Sample(managers []model.ManagerRecord, categories []model.Category) *Overlay {
	o := &Overlay{
		Managers:   make([]ManagerConfig, 0, len(managers)),
		Categories: make([]CategoryConfig, 0, len(categories)+1),
		Levels:     make([]LevelConfig, len(SampleLevels)),
	}

	for _, m := range managers {
		prefs := map[string]float64{model.UnknownCategoryKey: 1}
		for _, c := range categories {
			prefs[model.CategoryKey(c.Name)] = 0
		}
		o.Managers = append(o.Managers, ManagerConfig{
			MemberID:    m.ID,
			Name:        m.Name,
			Contact:     m.Contact,
			Score:       SampleScore,
			MaxLeads:    SampleMaxLeads,
			Preferences: prefs,
		})
	}

	for _, c := range categories {
		o.Categories = append(o.Categories, CategoryConfig{ID: c.ID, Name: c.Name, Cost: SampleCategoryCost})
	}
	o.Categories = append(o.Categories, CategoryConfig{
		ID:   model.UnknownCategoryName,
		Name: model.UnknownCategoryName,
		Cost: SampleCategoryCost,
	})

	copy(o.Levels, SampleLevels)
	return o
}
