package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"tripgen/internal/models"
	"tripgen/internal/structures"
	"tripgen/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyRepository struct {
	saved   []models.Record
	saveErr error
	total   int64
	gotArgs [2]int
}

func (r *spyRepository) Save(_ context.Context, rec models.Record) (string, error) {
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.saved = append(r.saved, rec)
	return fmt.Sprintf("plan-%d", 1700000000000+len(r.saved)), nil
}

func (r *spyRepository) Get(_ context.Context, _ models.Version, _ string) (models.Record, error) {
	if len(r.saved) == 0 {
		return nil, nil
	}
	return r.saved[0], nil
}

func (r *spyRepository) List(_ context.Context, _ models.Version) ([]string, error) {
	return nil, nil
}

func (r *spyRepository) GetRecentWithMetadata(_ context.Context, _ models.Version, limit, offset int) ([]*models.PlanMetadata, error) {
	r.gotArgs = [2]int{limit, offset}
	return []*models.PlanMetadata{}, nil
}

func (r *spyRepository) GetTotalCount(_ context.Context, _ models.Version) (int64, error) {
	return r.total, nil
}

func (r *spyRepository) Ping(_ context.Context) error { return nil }
func (r *spyRepository) Enabled() bool               { return true }

const tokyoPayload = `{"title":"Test Tokyo Trip","target":"engineer","days":[{"day":1,"events":[["09:00","Shibuya Crossing","Visit Shibuya Crossing","spot","Famous scramble crossing","Shibuya Crossing Tokyo"]]}]}`

func newPlanService(repo *spyRepository, pageSize int) (PlanServiceInterface, *testutil.MockMetrics) {
	metrics := testutil.NewMockMetrics()
	conf := &structures.Config{Plans: structures.PlansConfig{PageSize: pageSize}}
	return NewPlanService(conf, repo, &testutil.MockLogger{}, metrics), metrics
}

func TestPlanService_Save(t *testing.T) {
	repo := &spyRepository{}
	svc, metrics := newPlanService(repo, 12)

	slug, err := svc.Save(context.Background(), models.VersionV1, []byte(tokyoPayload))
	require.NoError(t, err)
	assert.Regexp(t, `^plan-\d+$`, slug)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "Test Tokyo Trip", repo.saved[0].(*models.Plan).Title)
	assert.Equal(t, 1, metrics.Saves["v1:ok"])
}

func TestPlanService_SaveInvalidNeverWrites(t *testing.T) {
	repo := &spyRepository{}
	svc, metrics := newPlanService(repo, 12)

	_, err := svc.Save(context.Background(), models.VersionV1, []byte(`{"title":"Test Tokyo Trip","target":"engineer"}`))
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, repo.saved)
	assert.Equal(t, 1, metrics.Saves["v1:invalid"])
}

func TestPlanService_SaveVersionMismatch(t *testing.T) {
	repo := &spyRepository{}
	svc, _ := newPlanService(repo, 12)

	_, err := svc.Save(context.Background(), models.VersionV2, []byte(tokyoPayload))
	assert.ErrorIs(t, err, ErrVersionMismatch)
	assert.ErrorContains(t, err, "v1")
	assert.Empty(t, repo.saved)
}

func TestPlanService_SaveStorageFailure(t *testing.T) {
	repo := &spyRepository{saveErr: errors.New("connection reset")}
	svc, metrics := newPlanService(repo, 12)

	_, err := svc.Save(context.Background(), models.VersionV1, []byte(tokyoPayload))
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 1, metrics.Saves["v1:error"])
}

func TestPlanService_ListPage(t *testing.T) {
	repo := &spyRepository{total: 25}
	svc, _ := newPlanService(repo, 10)

	page, err := svc.ListPage(context.Background(), models.VersionV1, 2)
	require.NoError(t, err)
	assert.Equal(t, [2]int{10, 10}, repo.gotArgs)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.NotNil(t, page.Plans)

	page, err = svc.ListPage(context.Background(), models.VersionV1, 3)
	require.NoError(t, err)
	assert.False(t, page.HasNext)

	page, err = svc.ListPage(context.Background(), models.VersionV1, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, [2]int{10, 0}, repo.gotArgs)
}

func TestPlanService_ListPagePastTheEnd(t *testing.T) {
	repo := &spyRepository{total: 25}
	svc, _ := newPlanService(repo, 10)

	page, err := svc.ListPage(context.Background(), models.VersionV1, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Page)
	assert.Equal(t, [2]int{10, 30}, repo.gotArgs)
	assert.Empty(t, page.Plans)
	assert.False(t, page.HasNext)

	repo.total = 0
	page, err = svc.ListPage(context.Background(), models.VersionV1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, [2]int{10, 0}, repo.gotArgs)
}

func TestPlanService_PageSizeBounds(t *testing.T) {
	repo := &spyRepository{}
	svc, _ := newPlanService(repo, 0)
	page, err := svc.ListPage(context.Background(), models.VersionV1, 1)
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, page.PageSize)
	assert.Zero(t, page.TotalPages)

	svc, _ = newPlanService(repo, 1000)
	page, err = svc.ListPage(context.Background(), models.VersionV1, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
}
