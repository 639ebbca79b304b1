package statistic

import (
	"context"
	"sync"
	"time"
	"tripgen/internal/models"
	"tripgen/internal/providers"
	"tripgen/internal/repository"
	"tripgen/internal/statistic/interfaces"
	"tripgen/internal/structures"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
)

const refreshTimeout = 5 * time.Second

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	repo    repository.PlanRepositoryInterface
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
	opsMu   sync.Mutex

	healthy     atomic.Bool
	lastRefresh atomic.Int64

	totalsMu sync.RWMutex
	totals   map[string]int64
}

func (s *Scheduler) Init() {
	s.Refresh()

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Scheduler.RefreshInterval), s.Refresh)
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Refresh pings the store and recounts every namespace.
func (s *Scheduler) Refresh() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		if s.healthy.Swap(false) {
			s.logger.Errorf(providers.TypeApp, "Plan store unreachable: %s", err)
		}
		return
	}
	if !s.healthy.Swap(true) {
		s.logger.Infof(providers.TypeApp, "Plan store reachable")
	}

	totals := make(map[string]int64, len(models.Versions))
	for _, v := range models.Versions {
		n, err := s.repo.GetTotalCount(ctx, v)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Counting %s plans: %s", v, err)
			continue
		}
		totals[string(v)] = n
		s.metrics.SetPlansTotal(string(v), n)
	}

	s.totalsMu.Lock()
	s.totals = totals
	s.totalsMu.Unlock()
	s.lastRefresh.Store(time.Now().UnixMilli())
}

func (s *Scheduler) StoreHealthy() bool {
	return s.healthy.Load()
}

func (s *Scheduler) Totals() map[string]int64 {
	s.totalsMu.RLock()
	defer s.totalsMu.RUnlock()
	out := make(map[string]int64, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out
}

func (s *Scheduler) LastRefresh() time.Time {
	ms := s.lastRefresh.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func NewScheduler(config *structures.Config, logger providers.Logger, repo repository.PlanRepositoryInterface, metrics providers.MetricsProviderInterface) *Scheduler {
	return &Scheduler{
		config:  config,
		logger:  logger,
		repo:    repo,
		metrics: metrics,
		totals:  map[string]int64{},
	}
}

var (
	_ interfaces.SchedulerInterface = (*Scheduler)(nil)
	_ interfaces.StatusInterface    = (*Scheduler)(nil)
)
