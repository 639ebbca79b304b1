package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
	"tripgen/internal/models"
	"tripgen/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory struct {
	name string
	open func(t *testing.T) StoreInterface
}

var storeFactories = []storeFactory{
	{"redis", func(t *testing.T) StoreInterface {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisStore(client)
	}},
	{"sqlite", func(t *testing.T) StoreInterface {
		store, err := NewSQLStore(sqlite.Open(filepath.Join(t.TempDir(), "plans.db")))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	}},
}

func eachStore(t *testing.T, fn func(t *testing.T, store StoreInterface)) {
	for _, f := range storeFactories {
		t.Run(f.name, func(t *testing.T) {
			fn(t, f.open(t))
		})
	}
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newRepo(store StoreInterface) (*PlanRepository, *testutil.MockMetrics) {
	metrics := testutil.NewMockMetrics()
	repo := NewPlanRepository(store, &testutil.MockCompressor{}, &testutil.MockLogger{}, metrics).(*PlanRepository)
	repo.now = (&testClock{now: time.UnixMilli(1_700_000_000_000)}).Now
	return repo, metrics
}

func tokyoPlan() *models.Plan {
	q := "Shibuya Crossing Tokyo"
	return &models.Plan{
		Title:  "Test Tokyo Trip",
		Target: models.TargetEngineer,
		Days: []models.Day{{Day: 1, Events: []models.Event{{
			Time:       "09:00",
			Name:       "Shibuya Crossing",
			Activity:   "Visit Shibuya Crossing",
			Type:       models.EventSpot,
			Note:       "Famous scramble crossing",
			ImageQuery: &q,
		}}}},
	}
}

func scouter(title string) *models.ScouterResponse {
	return &models.ScouterResponse{
		MissionTitle: title,
		Intro:        "i",
		TargetSpot:   &models.TargetSpot{Name: "n", MapQuery: "q"},
		Atmosphere:   "a",
		Quests:       []models.Quest{{Title: "a", Description: "b", Gear: "c"}, {Title: "d", Description: "e", Gear: "f"}},
		Affiliate:    &models.Affiliate{Item: "i", Reason: "r", SearchKeyword: "k"},
	}
}

func TestPlanRepository_SaveGet(t *testing.T) {
	eachStore(t, func(t *testing.T, store StoreInterface) {
		repo, metrics := newRepo(store)
		ctx := context.Background()

		slug, err := repo.Save(ctx, tokyoPlan())
		require.NoError(t, err)
		assert.Regexp(t, `^plan-\d+$`, slug)
		assert.True(t, IsValidSlug(slug))

		got, err := repo.Get(ctx, models.VersionV1, slug)
		require.NoError(t, err)
		assert.Equal(t, tokyoPlan(), got)
		assert.Equal(t, 1, metrics.StoreOps["save"])

		missing, err := repo.Get(ctx, models.VersionV1, "plan-1")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestPlanRepository_NamespacesAreIsolated(t *testing.T) {
	eachStore(t, func(t *testing.T, store StoreInterface) {
		repo, _ := newRepo(store)
		ctx := context.Background()

		v1Slug, err := repo.Save(ctx, tokyoPlan())
		require.NoError(t, err)
		v2Slug, err := repo.Save(ctx, scouter("Osaka night"))
		require.NoError(t, err)

		v1List, err := repo.List(ctx, models.VersionV1)
		require.NoError(t, err)
		assert.Equal(t, []string{v1Slug}, v1List)

		v2List, err := repo.List(ctx, models.VersionV2)
		require.NoError(t, err)
		assert.Equal(t, []string{v2Slug}, v2List)

		rec, err := repo.Get(ctx, models.VersionV2, v1Slug)
		require.NoError(t, err)
		assert.Nil(t, rec)

		n, err := repo.GetTotalCount(ctx, models.VersionV3)
		require.NoError(t, err)
		assert.Zero(t, n)

		meta, err := repo.GetRecentWithMetadata(ctx, models.VersionV2, 10, 0)
		require.NoError(t, err)
		require.Len(t, meta, 1)
		assert.Equal(t, 1, meta[0].Days)
		assert.Equal(t, models.VersionV2, meta[0].Version)
	})
}

func TestPlanRepository_ListNewestFirstAndPagination(t *testing.T) {
	eachStore(t, func(t *testing.T, store StoreInterface) {
		repo, _ := newRepo(store)
		ctx := context.Background()

		var saved []string
		for i := 0; i < 7; i++ {
			slug, err := repo.Save(ctx, scouter(fmt.Sprintf("City%d mission", i)))
			require.NoError(t, err)
			saved = append(saved, slug)
		}

		all, err := repo.List(ctx, models.VersionV2)
		require.NoError(t, err)
		require.Len(t, all, 7)
		assert.Equal(t, saved[6], all[0])
		assert.Equal(t, saved[0], all[6])

		for _, k := range []int{1, 3, 7, 100} {
			seen := map[string]bool{}
			var union []string
			for offset := 0; offset < len(all); offset += k {
				page, err := repo.GetRecentWithMetadata(ctx, models.VersionV2, k, offset)
				require.NoError(t, err)
				for _, m := range page {
					assert.False(t, seen[m.ID], "duplicate %s", m.ID)
					seen[m.ID] = true
					union = append(union, m.ID)
				}
			}
			assert.Equal(t, all, union, "page size %d", k)
		}

		first, err := repo.GetRecentWithMetadata(ctx, models.VersionV2, 3, 0)
		require.NoError(t, err)
		again, err := repo.GetRecentWithMetadata(ctx, models.VersionV2, 3, 0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, "City6", first[0].Destination)

		n, err := repo.GetTotalCount(ctx, models.VersionV2)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})
}

func TestPlanRepository_MetadataFallback(t *testing.T) {
	eachStore(t, func(t *testing.T, store StoreInterface) {
		repo, _ := newRepo(store)
		ctx := context.Background()

		legacy, err := json.Marshal(tokyoPlan())
		require.NoError(t, err)

		// plan-100 predates metadata, plan-200 lost its record entirely
		require.NoError(t, store.WriteBatch(ctx, Batch{
			Values: []Entry{{Key: "plan:plan-100", Value: legacy}},
			Index: []IndexEntry{
				{Key: "plans:index", Member: "plan-100", Score: 100},
				{Key: "plans:index", Member: "plan-200", Score: 200},
			},
		}))

		meta, err := repo.GetRecentWithMetadata(ctx, models.VersionV1, 10, 0)
		require.NoError(t, err)
		require.Len(t, meta, 2)

		assert.Equal(t, "plan-200", meta[0].ID)
		assert.Equal(t, models.UnknownDestination, meta[0].Destination)
		assert.Equal(t, int64(200), meta[0].CreatedAt)

		assert.Equal(t, &models.PlanMetadata{
			ID:          "plan-100",
			Title:       "Test Tokyo Trip",
			Destination: "Test",
			Days:        1,
			Target:      "engineer",
			CreatedAt:   100,
		}, meta[1])
	})
}

func TestPlanRepository_PageSizeCapped(t *testing.T) {
	eachStore(t, func(t *testing.T, store StoreInterface) {
		repo, _ := newRepo(store)
		ctx := context.Background()

		var batch Batch
		for i := 1; i <= 120; i++ {
			slug := fmt.Sprintf("plan-%d", i)
			meta, _ := json.Marshal(&models.PlanMetadata{ID: slug, Title: "t", Destination: "d", Days: 1, CreatedAt: int64(i)})
			batch.Values = append(batch.Values, Entry{Key: "v3:plan-meta:" + slug, Value: meta})
			batch.Index = append(batch.Index, IndexEntry{Key: "v3:plans:index", Member: slug, Score: float64(i)})
		}
		require.NoError(t, store.WriteBatch(ctx, batch))

		page, err := repo.GetRecentWithMetadata(ctx, models.VersionV3, 500, 0)
		require.NoError(t, err)
		assert.Len(t, page, MaxPageSize)
		assert.Equal(t, "plan-120", page[0].ID)

		page, err = repo.GetRecentWithMetadata(ctx, models.VersionV3, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, page)

		page, err = repo.GetRecentWithMetadata(ctx, models.VersionV3, 10, 115)
		require.NoError(t, err)
		assert.Len(t, page, 5)
	})
}

func TestNoopRepository(t *testing.T) {
	logger := &testutil.MockLogger{}
	repo := NewPlanRepository(nil, &testutil.MockCompressor{}, logger, testutil.NewMockMetrics())
	ctx := context.Background()

	assert.False(t, repo.Enabled())

	slug, err := repo.Save(ctx, tokyoPlan())
	require.NoError(t, err)
	assert.True(t, IsValidSlug(slug))
	assert.Equal(t, 1, logger.Count("warn"))

	rec, err := repo.Get(ctx, models.VersionV1, slug)
	require.NoError(t, err)
	assert.Nil(t, rec)

	list, err := repo.List(ctx, models.VersionV1)
	require.NoError(t, err)
	assert.Empty(t, list)

	meta, err := repo.GetRecentWithMetadata(ctx, models.VersionV1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, meta)

	n, err := repo.GetTotalCount(ctx, models.VersionV1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.Ping(ctx))
}

func TestSlugHelpers(t *testing.T) {
	slug := NewSlug(time.UnixMilli(1_700_000_000_123))
	assert.Equal(t, "plan-1700000000123", slug)

	ms, ok := SlugTime(slug)
	assert.True(t, ok)
	assert.Equal(t, int64(1_700_000_000_123), ms)

	_, ok = SlugTime("nope")
	assert.False(t, ok)

	assert.False(t, IsValidSlug("plan-"))
	assert.False(t, IsValidSlug("../plan-1"))
}
