package services

import (
	"context"
	"errors"
	"fmt"
	"tripgen/internal/models"
	"tripgen/internal/providers"
	"tripgen/internal/repository"
	"tripgen/internal/structures"
)

const defaultPageSize = 12

var ErrVersionMismatch = errors.New("plan version does not match endpoint")

type PlanPage struct {
	Plans      []*models.PlanMetadata `json:"plans"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"totalPages"`
	HasNext    bool                   `json:"hasNext"`
}

type PlanServiceInterface interface {
	Save(ctx context.Context, v models.Version, payload []byte) (string, error)
	Get(ctx context.Context, v models.Version, slug string) (models.Record, error)
	ListPage(ctx context.Context, v models.Version, page int) (*PlanPage, error)
}

type PlanService struct {
	repo     repository.PlanRepositoryInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	pageSize int
}

func NewPlanService(conf *structures.Config, repo repository.PlanRepositoryInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PlanServiceInterface {
	pageSize := conf.Plans.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &PlanService{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		pageSize: min(pageSize, repository.MaxPageSize),
	}
}

// Save accepts only complete objects of the endpoint's version. The store is
// not touched when validation fails.
func (ps *PlanService) Save(ctx context.Context, v models.Version, payload []byte) (string, error) {
	rec, err := ps.parse(v, payload)
	if err != nil {
		ps.metrics.IncSaves(string(v), "invalid")
		return "", err
	}

	slug, err := ps.repo.Save(ctx, rec)
	if err != nil {
		ps.metrics.IncSaves(string(v), "error")
		ps.logger.Errorf(providers.TypePost, "Saving %s plan failed: %s", v, err)
		return "", err
	}

	ps.metrics.IncSaves(string(v), "ok")
	ps.logger.Infof(providers.TypePost, "Saved %s plan %s", v, slug)
	return slug, nil
}

func (ps *PlanService) parse(v models.Version, payload []byte) (models.Record, error) {
	if detected, err := models.DetectVersion(payload); err == nil && detected != v {
		return nil, fmt.Errorf("%w: payload is a %s plan, endpoint expects %s", ErrVersionMismatch, detected, v)
	}
	return models.Parse(v, payload, models.ModeComplete)
}

func (ps *PlanService) Get(ctx context.Context, v models.Version, slug string) (models.Record, error) {
	return ps.repo.Get(ctx, v, slug)
}

func (ps *PlanService) ListPage(ctx context.Context, v models.Version, page int) (*PlanPage, error) {
	page = max(page, 1)

	total, err := ps.repo.GetTotalCount(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("count %s plans: %w", v, err)
	}
	totalPages := int((total + int64(ps.pageSize) - 1) / int64(ps.pageSize))
	// anything past the last page is the same empty page
	page = min(page, totalPages+1)

	plans, err := ps.repo.GetRecentWithMetadata(ctx, v, ps.pageSize, (page-1)*ps.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list %s plans: %w", v, err)
	}

	return &PlanPage{
		Plans:      plans,
		Page:       page,
		PageSize:   ps.pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}, nil
}
