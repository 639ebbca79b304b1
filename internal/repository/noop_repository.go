package repository

import (
	"context"
	"time"
	"tripgen/internal/models"
	"tripgen/internal/providers"
)

// noopRepository serves deployments without a store: writes are dropped and
// reads are empty.
type noopRepository struct {
	logger providers.Logger
	now    func() time.Time
}

func (n *noopRepository) Save(_ context.Context, rec models.Record) (string, error) {
	slug := NewSlug(n.now())
	n.logger.Warnf(providers.TypePost, "No plan store configured, %s plan %s was not persisted", rec.RecordVersion(), slug)
	return slug, nil
}

func (n *noopRepository) Get(_ context.Context, _ models.Version, _ string) (models.Record, error) {
	return nil, nil
}

func (n *noopRepository) List(_ context.Context, _ models.Version) ([]string, error) {
	return []string{}, nil
}

func (n *noopRepository) GetRecentWithMetadata(_ context.Context, _ models.Version, _, _ int) ([]*models.PlanMetadata, error) {
	return []*models.PlanMetadata{}, nil
}

func (n *noopRepository) GetTotalCount(_ context.Context, _ models.Version) (int64, error) {
	return 0, nil
}

func (n *noopRepository) Ping(_ context.Context) error {
	return nil
}

func (n *noopRepository) Enabled() bool {
	return false
}
