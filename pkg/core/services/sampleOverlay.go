package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/overlay"
)

// SampleOverlay builds an editable overlay from the app's rosters
func SampleOverlay(ctx context.Context, store RosterStore, appID string, logger *zap.Logger) (*overlay.Overlay, error) {
	managers, err := store.GetManagers(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch managers: %w", err)
	}

	categories, err := store.GetCategories(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	logger.Debug("Generating sample overlay",
		zap.String("app_id", appID),
		zap.Int("managers", len(managers)),
		zap.Int("categories", len(categories)))

	return overlay.Sample(toManagerRecords(managers), toCategories(categories)), nil
}
