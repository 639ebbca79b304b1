//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"tripgen/internal"
	"tripgen/internal/controllers"
	"tripgen/internal/llm"
	"tripgen/internal/providers"
	"tripgen/internal/ratelimit"
	"tripgen/internal/repository"
	"tripgen/internal/services"
	"tripgen/internal/statistic"
	"tripgen/internal/statistic/interfaces"
	"tripgen/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewRedisProvider,

		ratelimit.NewLimiterProvider,
		ratelimit.NewGuard,
		llm.NewClientProvider,

		statistic.NewZstdCompressor,
		repository.NewStoreProvider,
		repository.NewPlanRepository,
		services.NewGenerationService,
		services.NewPlanService,

		statistic.NewScheduler,
		wire.Bind(new(interfaces.SchedulerInterface), new(*statistic.Scheduler)),
		wire.Bind(new(interfaces.StatusInterface), new(*statistic.Scheduler)),

		controllers.NewGenerateController,
		controllers.NewPlanController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
