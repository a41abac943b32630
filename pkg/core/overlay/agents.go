package overlay

import (
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

// Agents converts the overlay's managers into solver agents, in overlay order.
//
// The overlay decides who receives leads. Names and contacts come from the roster
// when the manager is on it, otherwise from the overlay. Roster managers absent
// from the overlay get no leads and are logged.
func (o *Overlay) Agents(roster []model.ManagerRecord, logger *zap.Logger) []model.Agent {
	byID := make(map[string]model.ManagerRecord, len(roster))
	for _, m := range roster {
		byID[m.ID] = m
	}

	configured := make(map[string]bool, len(o.Managers))
	agents := make([]model.Agent, 0, len(o.Managers))
	for _, mc := range o.Managers {
		configured[mc.MemberID] = true

		name, contact := mc.Name, mc.Contact
		if rec, ok := byID[mc.MemberID]; ok {
			name, contact = rec.Name, rec.Contact
		} else {
			logger.Warn("Overlay manager not found in roster", zap.String("memberID", mc.MemberID), zap.String("name", mc.Name))
		}

		prefs := make(map[string]float64, len(mc.Preferences))
		for key, weight := range mc.Preferences {
			prefs[key] = weight
		}

		agents = append(agents, model.Agent{
			ID:           mc.MemberID,
			Name:         name,
			Contact:      contact,
			AbilityScore: mc.Score,
			Capacity:     mc.MaxLeads,
			Preference:   prefs,
		})
	}

	for _, m := range roster {
		if !configured[m.ID] {
			logger.Warn("Roster manager missing from overlay, no leads will be assigned", zap.String("memberID", m.ID), zap.String("name", m.Name))
		}
	}

	return agents
}
