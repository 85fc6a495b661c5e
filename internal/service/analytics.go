package service

import (
	"context"

	"taskboard/internal/models"
)

// Analytics reports global counters. Results are always computed from the
// live store.
type Analytics struct {
	*base
}

// Stats returns task counts per status plus project and user totals.
func (s *Analytics) Stats(ctx context.Context) (models.Stats, error) {
	return s.repo.Stats(ctx)
}
