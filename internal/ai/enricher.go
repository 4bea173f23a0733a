package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"resumescan/internal/analysis"
	"resumescan/internal/cache"
	"resumescan/internal/config"
	"resumescan/internal/errors"
	"resumescan/internal/types"
)

// EnrichmentCache memoizes enrichment results
type EnrichmentCache interface {
	Get(ctx context.Context, key string) (*types.Enrichment, bool)
	Set(ctx context.Context, key string, e *types.Enrichment)
}

// Enricher implements analysis.Enricher on top of AI providers
type Enricher struct {
	enrichProvider  Provider
	grammarProvider Provider
	prompts         *config.PromptStore
	cache           EnrichmentCache
	metrics         MetricsRecorder
	logger          *errors.Logger
}

var _ analysis.Enricher = (*Enricher)(nil)

// EnricherOption configures an Enricher
type EnricherOption func(*Enricher)

// WithPrompts sets the store consulted for custom prompts
func WithPrompts(store *config.PromptStore) EnricherOption {
	return func(e *Enricher) { e.prompts = store }
}

// WithCache enables enrichment memoization
func WithCache(c EnrichmentCache) EnricherOption {
	return func(e *Enricher) { e.cache = c }
}

// WithMetrics records every provider request
func WithMetrics(m MetricsRecorder) EnricherOption {
	return func(e *Enricher) { e.metrics = m }
}

// WithLogger sets the enricher's logger
func WithLogger(logger *errors.Logger) EnricherOption {
	return func(e *Enricher) { e.logger = logger }
}

// NewEnricher creates an Enricher. grammar may be nil, in which case the
// enrich provider also reviews grammar.
func NewEnricher(enrich, grammar Provider, opts ...EnricherOption) *Enricher {
	if grammar == nil {
		grammar = enrich
	}
	e := &Enricher{enrichProvider: enrich, grammarProvider: grammar}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEnricherFromConfig builds providers for both operations from cfg
func NewEnricherFromConfig(cfg config.AIConfig, opts ...EnricherOption) (*Enricher, error) {
	probe := &Enricher{}
	for _, opt := range opts {
		opt(probe)
	}

	enrich, err := NewProvider(cfg.GetEnrichConfig(), probe.logger)
	if err != nil {
		return nil, err
	}
	grammar, err := NewProvider(cfg.GetGrammarConfig(), probe.logger)
	if err != nil {
		_ = enrich.Close()
		return nil, err
	}
	return NewEnricher(enrich, grammar, opts...), nil
}

// Enrich asks the enrich provider for an ATS assessment
func (e *Enricher) Enrich(ctx context.Context, req analysis.EnrichRequest) (*types.Enrichment, error) {
	if e == nil || e.enrichProvider == nil {
		return nil, analysis.ErrEnrichmentUnavailable
	}
	p := e.enrichProvider
	text := resumeText(req)

	key := cache.Key("enrich", p.Name(), p.Model(), text, req.JobDescription)
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, key); ok {
			e.logger.Debug("Enrichment served from cache", "provider", p.Name())
			out := *cached
			out.Cached = true
			return &out, nil
		}
	}

	jd := ""
	if strings.TrimSpace(req.JobDescription) != "" {
		jd = fmt.Sprintf(jobDescriptionBlock, req.JobDescription)
	}
	user := renderPrompt(resolvePrompt(e.prompts, config.PromptEnrichUser, DefaultEnrichUserPrompt),
		text, jd)
	system := resolvePrompt(e.prompts, config.PromptEnrichSystem, DefaultEnrichSystemPrompt)

	gen, err := e.generate(ctx, p, GenerateRequest{
		Operation: config.OperationEnrich,
		System:    system,
		User:      user,
		JSON:      true,
	})
	if err != nil {
		return nil, err
	}

	enrichment, err := parseEnrichment(gen.Text)
	if err != nil {
		return nil, err
	}
	enrichment.Provider = p.Name()
	enrichment.Model = gen.Model
	if enrichment.Model == "" {
		enrichment.Model = p.Model()
	}

	if e.cache != nil {
		e.cache.Set(ctx, key, enrichment)
	}
	return enrichment, nil
}

// ReviewGrammar asks the grammar provider for "wrong → correct" pairs
func (e *Enricher) ReviewGrammar(ctx context.Context, fragments []types.TextFragment) (string, error) {
	if e == nil || e.grammarProvider == nil {
		return "", analysis.ErrEnrichmentUnavailable
	}

	var b strings.Builder
	for i, f := range fragments {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Text)
	}

	gen, err := e.generate(ctx, e.grammarProvider, GenerateRequest{
		Operation: config.OperationGrammar,
		System:    resolvePrompt(e.prompts, config.PromptGrammarSystem, DefaultGrammarSystemPrompt),
		User:      renderPrompt(resolvePrompt(e.prompts, config.PromptGrammarUser, DefaultGrammarUserPrompt), b.String()),
	})
	if err != nil {
		return "", err
	}
	return gen.Text, nil
}

func (e *Enricher) generate(ctx context.Context, p Provider, req GenerateRequest) (*Generation, error) {
	start := time.Now()
	gen, err := p.Generate(ctx, req)
	if e.metrics != nil {
		var usage *TokenUsage
		if gen != nil {
			usage = gen.TokenUsage
		}
		e.metrics.RecordAIRequest(ctx, p.Name(), req.Operation, time.Since(start), usage, err)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(gen.Text) == "" {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "AI provider returned an empty reply", nil).
			WithContext("provider", p.Name()).
			WithContext("operation", req.Operation)
	}
	return gen, nil
}

// Stats returns breaker statistics per operation
func (e *Enricher) Stats() map[string]any {
	if e == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":         true,
		"enrich":          e.enrichProvider.Stats(),
		"grammar":         e.grammarProvider.Stats(),
		"overall_healthy": e.Healthy(),
	}
}

// Healthy reports whether both providers accept requests
func (e *Enricher) Healthy() bool {
	if e == nil {
		return true
	}
	return e.enrichProvider.Healthy() && e.grammarProvider.Healthy()
}

// Provider returns the enrich provider's name
func (e *Enricher) Provider() string {
	if e == nil || e.enrichProvider == nil {
		return ""
	}
	return e.enrichProvider.Name()
}

// Close releases both providers
func (e *Enricher) Close() error {
	if e == nil {
		return nil
	}
	err := e.enrichProvider.Close()
	if e.grammarProvider != e.enrichProvider {
		if gerr := e.grammarProvider.Close(); err == nil {
			err = gerr
		}
	}
	return err
}

// resumeText renders the record for a prompt, falling back to the
// normalized text when there is no record to render
func resumeText(req analysis.EnrichRequest) string {
	if req.Resume != nil {
		if out, err := yaml.Marshal(req.Resume); err == nil {
			return strings.TrimSpace(string(out))
		}
	}
	return req.NormalizedText
}
