package services

import (
	"context"
	"fmt"
	"tripgen/internal/llm"
	"tripgen/internal/models"
	"tripgen/internal/providers"
	"tripgen/internal/ratelimit"
)

type GenerationServiceInterface interface {
	Generate(ctx context.Context, v models.Version, in *GenerateInput, ip string, onFinish func(llm.FinishEvent)) (*llm.ObjectStream, error)
}

type GenerationService struct {
	client  llm.ClientInterface
	guard   ratelimit.GuardInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewGenerationService(client llm.ClientInterface, guard ratelimit.GuardInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) GenerationServiceInterface {
	return &GenerationService{
		client:  client,
		guard:   guard,
		logger:  logger,
		metrics: metrics,
	}
}

// Generate validates, applies both rate limit tiers and starts streaming.
// Nothing is persisted here; the client saves the assembled plan itself.
func (gs *GenerationService) Generate(ctx context.Context, v models.Version, in *GenerateInput, ip string, onFinish func(llm.FinishEvent)) (*llm.ObjectStream, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := gs.guard.Check(ctx, ip); err != nil {
		return nil, err
	}

	system, user := BuildPrompts(v, in)
	stream, err := gs.client.Stream(ctx, llm.Request{Version: v, System: system, User: user}, func(ev llm.FinishEvent) {
		gs.finish(v, in, ip, ev)
		if onFinish != nil {
			onFinish(ev)
		}
	})
	if err != nil {
		gs.metrics.IncGenerations(string(v), "error")
		return nil, fmt.Errorf("start generation: %w", err)
	}
	return stream, nil
}

func (gs *GenerationService) finish(v models.Version, in *GenerateInput, ip string, ev llm.FinishEvent) {
	provider := gs.client.Provider()
	gs.metrics.AddTokens(provider, ev.Usage.InputTokens, ev.Usage.OutputTokens)
	if ev.Err != nil {
		gs.metrics.IncGenerations(string(v), "error")
		return
	}
	gs.metrics.IncGenerations(string(v), "ok")
	gs.logger.Infof(providers.TypeLLM, "%s plan for %q (%s) via %s: %d input, %d output tokens",
		v, in.Destination, ip, provider, ev.Usage.InputTokens, ev.Usage.OutputTokens)
}
