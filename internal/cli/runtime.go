package cli

import (
	"context"
	"fmt"
	"time"

	"resumescan/internal/ai"
	"resumescan/internal/analysis"
	"resumescan/internal/cache"
	"resumescan/internal/config"
	"resumescan/internal/errors"
	"resumescan/internal/observability"
)

// runtime bundles the engine with the optional collaborators built from config
type runtime struct {
	engine   *analysis.Engine
	enricher *ai.Enricher
	cache    *cache.EnrichmentCache
	obs      *observability.Manager
	prompts  *config.PromptStore
}

// buildRuntime wires the analysis engine. When withEnrichment is false, or
// AI is disabled in config, no provider is created and the neutral
// enrichment score is used.
func buildRuntime(cfg *config.Config, logger *errors.Logger, withEnrichment bool) (*runtime, error) {
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return nil, err
	}

	obs, err := observability.NewManager(cfg.Observability, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	rt := &runtime{obs: obs}
	opts := append(cfg.Analysis.EngineOptions(),
		analysis.WithLogger(logger),
		analysis.WithObserver(obs),
	)

	if withEnrichment && cfg.AI.Enabled {
		if err := rt.buildEnricher(cfg, logger); err != nil {
			rt.Close()
			return nil, err
		}
		opts = append(opts, analysis.WithEnricher(rt.enricher))
	} else {
		logger.Debug("AI enrichment disabled, using neutral score",
			"ai_enabled", cfg.AI.Enabled)
	}

	rt.engine = analysis.NewEngine(opts...)
	return rt, nil
}

func (rt *runtime) buildEnricher(cfg *config.Config, logger *errors.Logger) error {
	prompts, err := config.NewPromptStore(cfg.AI.CustomPrompts)
	if err != nil {
		return fmt.Errorf("failed to load custom prompts: %w", err)
	}
	rt.prompts = prompts

	enricherOpts := []ai.EnricherOption{
		ai.WithPrompts(prompts),
		ai.WithMetrics(rt.obs),
		ai.WithLogger(logger),
	}
	if rt.cache = cache.New(cfg.Cache, logger); rt.cache != nil {
		enricherOpts = append(enricherOpts, ai.WithCache(rt.cache))
	}

	rt.enricher, err = ai.NewEnricherFromConfig(cfg.AI, enricherOpts...)
	if err != nil {
		return fmt.Errorf("failed to create AI providers: %w", err)
	}

	logger.Info("AI enrichment enabled", "provider", rt.enricher.Provider())
	return nil
}

// Close releases providers, the cache connection and telemetry exporters
func (rt *runtime) Close() {
	_ = rt.enricher.Close()
	_ = rt.cache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = rt.obs.Shutdown(ctx)
}
