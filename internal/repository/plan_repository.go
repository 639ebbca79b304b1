package repository

import (
	"context"
	"fmt"
	"time"
	"tripgen/internal/models"
	"tripgen/internal/providers"
	"tripgen/internal/statistic/interfaces"

	json "github.com/goccy/go-json"
)

const MaxPageSize = 100

type PlanRepositoryInterface interface {
	Save(ctx context.Context, rec models.Record) (string, error)
	Get(ctx context.Context, v models.Version, slug string) (models.Record, error)
	List(ctx context.Context, v models.Version) ([]string, error)
	GetRecentWithMetadata(ctx context.Context, v models.Version, limit, offset int) ([]*models.PlanMetadata, error)
	GetTotalCount(ctx context.Context, v models.Version) (int64, error)
	Ping(ctx context.Context) error
	Enabled() bool
}

type PlanRepository struct {
	store      StoreInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	now        func() time.Time
}

// NewPlanRepository picks the no-op repository when there is no store, so
// callers never check for one.
func NewPlanRepository(store StoreInterface, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PlanRepositoryInterface {
	if store == nil {
		return &noopRepository{logger: logger, now: time.Now}
	}
	return &PlanRepository{
		store:      store,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

func (r *PlanRepository) observe(op string, start time.Time) {
	r.metrics.ObserveStoreDuration(op, time.Since(start))
}

// Save writes the record, its metadata and the index entry as one batch.
// Two saves within the same millisecond get the same slug and the later
// one wins.
func (r *PlanRepository) Save(ctx context.Context, rec models.Record) (string, error) {
	defer r.observe("save", time.Now())

	now := r.now()
	slug := NewSlug(now)
	createdAt := now.UnixMilli()
	keys := keysFor(rec.RecordVersion())

	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	body, err = r.compressor.Compress(body)
	if err != nil {
		return "", fmt.Errorf("compress record: %w", err)
	}
	meta, err := json.Marshal(rec.Project(slug, createdAt))
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	err = r.store.WriteBatch(ctx, Batch{
		Values: []Entry{
			{Key: keys.record(slug), Value: body},
			{Key: keys.metadata(slug), Value: meta},
		},
		Index: []IndexEntry{{Key: keys.index(), Member: slug, Score: float64(createdAt)}},
	})
	if err != nil {
		return "", fmt.Errorf("write plan %s: %w", slug, err)
	}
	return slug, nil
}

func (r *PlanRepository) decode(v models.Version, raw []byte) (models.Record, error) {
	data, err := r.compressor.Decompress(raw)
	if err != nil {
		return nil, err
	}
	rec, err := models.NewRecord(v)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *PlanRepository) Get(ctx context.Context, v models.Version, slug string) (models.Record, error) {
	defer r.observe("get", time.Now())

	raw, ok, err := r.store.Get(ctx, keysFor(v).record(slug))
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", slug, err)
	}
	if !ok {
		return nil, nil
	}
	rec, err := r.decode(v, raw)
	if err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", slug, err)
	}
	return rec, nil
}

func (r *PlanRepository) List(ctx context.Context, v models.Version) ([]string, error) {
	defer r.observe("list", time.Now())
	return r.store.RevRange(ctx, keysFor(v).index(), 0, -1)
}

// GetRecentWithMetadata pages through the index newest first. Slugs without
// a metadata entry are projected from the full record, or from the slug
// alone when that is gone too.
func (r *PlanRepository) GetRecentWithMetadata(ctx context.Context, v models.Version, limit, offset int) ([]*models.PlanMetadata, error) {
	defer r.observe("list_metadata", time.Now())

	if limit <= 0 {
		return []*models.PlanMetadata{}, nil
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)
	keys := keysFor(v)

	slugs, err := r.store.RevRange(ctx, keys.index(), int64(offset), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(slugs) == 0 {
		return []*models.PlanMetadata{}, nil
	}

	metaKeys := make([]string, len(slugs))
	for i, slug := range slugs {
		metaKeys[i] = keys.metadata(slug)
	}
	raws, err := r.store.MGet(ctx, metaKeys)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	out := make([]*models.PlanMetadata, len(slugs))
	var missing []int
	for i, raw := range raws {
		if raw == nil {
			missing = append(missing, i)
			continue
		}
		var meta models.PlanMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			r.logger.Warnf(providers.TypeGet, "Corrupt metadata for %s: %v", slugs[i], err)
			missing = append(missing, i)
			continue
		}
		out[i] = &meta
	}

	if len(missing) > 0 {
		r.fillFromRecords(ctx, v, slugs, missing, out)
	}
	return out, nil
}

func (r *PlanRepository) fillFromRecords(ctx context.Context, v models.Version, slugs []string, missing []int, out []*models.PlanMetadata) {
	keys := keysFor(v)
	recordKeys := make([]string, len(missing))
	for j, i := range missing {
		recordKeys[j] = keys.record(slugs[i])
	}

	raws, err := r.store.MGet(ctx, recordKeys)
	if err != nil {
		r.logger.Errorf(providers.TypeGet, "Metadata fallback read failed: %v", err)
		raws = make([][]byte, len(missing))
	}

	for j, i := range missing {
		slug := slugs[i]
		createdAt, _ := SlugTime(slug)
		if raws[j] != nil {
			if rec, err := r.decode(v, raws[j]); err == nil {
				out[i] = rec.Project(slug, createdAt)
				continue
			}
		}
		out[i] = minimalMetadata(v, slug, createdAt)
	}
}

func minimalMetadata(v models.Version, slug string, createdAt int64) *models.PlanMetadata {
	meta := &models.PlanMetadata{
		ID:          slug,
		Title:       slug,
		Destination: models.UnknownDestination,
		CreatedAt:   createdAt,
	}
	if v != models.VersionV1 {
		meta.Version = v
	}
	return meta
}

func (r *PlanRepository) GetTotalCount(ctx context.Context, v models.Version) (int64, error) {
	defer r.observe("count", time.Now())
	return r.store.Count(ctx, keysFor(v).index())
}

func (r *PlanRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func (r *PlanRepository) Enabled() bool {
	return true
}
