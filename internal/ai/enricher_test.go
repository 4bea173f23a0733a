package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumescan/internal/analysis"
	"resumescan/internal/config"
	"resumescan/internal/types"
)

type fakeProvider struct {
	name  string
	reply string
	err   error

	mu       sync.Mutex
	requests []GenerateRequest
	closed   bool
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Generate(_ context.Context, req GenerateRequest) (*Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &Generation{Text: f.reply, TokenUsage: &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}, nil
}

func (f *fakeProvider) Stats() map[string]any { return map[string]any{"enabled": false} }
func (f *fakeProvider) Healthy() bool          { return f.err == nil }
func (f *fakeProvider) Close() error           { f.closed = true; return nil }

type mapCache struct {
	mu      sync.Mutex
	entries map[string]types.Enrichment
}

func (m *mapCache) Get(_ context.Context, key string) (*types.Enrichment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return &e, true
}

func (m *mapCache) Set(_ context.Context, key string, e *types.Enrichment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = *e
}

type recordedRequest struct {
	provider, operation string
	usage               *TokenUsage
	err                 error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedRequest
}

func (r *fakeRecorder) RecordAIRequest(_ context.Context, provider, operation string, _ time.Duration, usage *TokenUsage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedRequest{provider, operation, usage, err})
}

func sampleRequest() analysis.EnrichRequest {
	return analysis.EnrichRequest{
		Resume: &types.ResumeRecord{
			Personal: &types.PersonalInfo{Name: "Ada Lovelace", Title: "Analyst"},
			Summary:  "Wrote the first published algorithm.",
		},
		NormalizedText: "ada lovelace\nanalyst\nwrote the first published algorithm.",
		JobDescription: "Looking for a mathematician.",
	}
}

func TestEnricherEnrich(t *testing.T) {
	p := &fakeProvider{name: "fake", reply: `{"score": 77, "strengths": ["concise"], "weaknesses": ["no metrics"], "keywords": ["python"]}`}
	rec := &fakeRecorder{}
	e := NewEnricher(p, nil, WithMetrics(rec))

	got, err := e.Enrich(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, 77, got.Score)
	assert.Equal(t, "fake", got.Provider)
	assert.Equal(t, "fake-model", got.Model)
	assert.False(t, got.Cached)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, config.OperationEnrich, req.Operation)
	assert.True(t, req.JSON)
	assert.Equal(t, DefaultEnrichSystemPrompt, req.System)
	assert.Contains(t, req.User, "Ada Lovelace", "prompt keeps original casing")
	assert.Contains(t, req.User, "Looking for a mathematician.")

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "fake", rec.calls[0].provider)
	assert.Equal(t, int64(15), rec.calls[0].usage.TotalTokens)
	assert.NoError(t, rec.calls[0].err)
}

func TestEnricherOmitsEmptyJobDescription(t *testing.T) {
	p := &fakeProvider{name: "fake", reply: `{"score": 50}`}
	req := sampleRequest()
	req.JobDescription = "  "

	_, err := NewEnricher(p, nil).Enrich(context.Background(), req)
	require.NoError(t, err)
	assert.NotContains(t, p.requests[0].User, "Target job description")
}

func TestEnricherUsesCache(t *testing.T) {
	p := &fakeProvider{name: "fake", reply: `{"score": 61}`}
	c := &mapCache{entries: map[string]types.Enrichment{}}
	e := NewEnricher(p, nil, WithCache(c))

	first, err := e.Enrich(context.Background(), sampleRequest())
	require.NoError(t, err)
	second, err := e.Enrich(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Len(t, p.requests, 1, "second call should be served from cache")
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Score, second.Score)

	other := sampleRequest()
	other.JobDescription = "Different role"
	_, err = e.Enrich(context.Background(), other)
	require.NoError(t, err)
	assert.Len(t, p.requests, 2, "a different job description is a different key")
}

func TestEnricherCacheKeyCoversWholeRecord(t *testing.T) {
	p := &fakeProvider{name: "fake", reply: `{"score": 61}`}
	c := &mapCache{entries: map[string]types.Enrichment{}}
	e := NewEnricher(p, nil, WithCache(c))

	withGPA := func(gpa string) analysis.EnrichRequest {
		req := sampleRequest()
		req.Resume.Education = []types.Education{{Institution: "University of London", Degree: "BSc", GPA: gpa}}
		return req
	}

	_, err := e.Enrich(context.Background(), withGPA("3.1"))
	require.NoError(t, err)
	second, err := e.Enrich(context.Background(), withGPA("3.9"))
	require.NoError(t, err)

	assert.Len(t, p.requests, 2, "records differing only in GPA must not share a cache entry")
	assert.False(t, second.Cached)
}

func TestEnricherErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{"provider error", &fakeProvider{name: "fake", err: errors.New("quota exceeded")}},
		{"empty reply", &fakeProvider{name: "fake", reply: "   "}},
		{"unparseable reply", &fakeProvider{name: "fake", reply: "I'd rather not."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			c := &mapCache{entries: map[string]types.Enrichment{}}
			e := NewEnricher(tt.provider, nil, WithMetrics(rec), WithCache(c))

			got, err := e.Enrich(context.Background(), sampleRequest())
			assert.Error(t, err)
			assert.Nil(t, got)
			assert.Empty(t, c.entries, "failures are not cached")
			assert.Len(t, rec.calls, 1)
		})
	}
}

func TestNilEnricherIsUnavailable(t *testing.T) {
	var e *Enricher
	_, err := e.Enrich(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, analysis.ErrEnrichmentUnavailable)
	_, err = e.ReviewGrammar(context.Background(), nil)
	assert.ErrorIs(t, err, analysis.ErrEnrichmentUnavailable)
	assert.True(t, e.Healthy())
	assert.Equal(t, false, e.Stats()["enabled"])
}

func TestEnricherReviewGrammar(t *testing.T) {
	enrich := &fakeProvider{name: "enrich"}
	grammar := &fakeProvider{name: "grammar", reply: "SPELLING:\nrecieve → receive"}
	e := NewEnricher(enrich, grammar)

	out, err := e.ReviewGrammar(context.Background(), []types.TextFragment{
		{Text: "I recieve feedback.", Section: "summary", Field: "summary"},
		{Text: "Led a team.", Section: "experience", Field: "experience[0].description"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SPELLING:\nrecieve → receive", out)

	assert.Empty(t, enrich.requests)
	require.Len(t, grammar.requests, 1)
	user := grammar.requests[0].User
	assert.Contains(t, user, "1. I recieve feedback.")
	assert.Contains(t, user, "2. Led a team.")
	assert.False(t, grammar.requests[0].JSON)
}

func TestEnricherCustomPrompts(t *testing.T) {
	store, err := config.NewPromptStore(config.PromptConfig{
		EnrichSystem: "Be terse.",
		EnrichUser:   "Score this resume:",
	})
	require.NoError(t, err)

	p := &fakeProvider{name: "fake", reply: `{"score": 40}`}
	_, err = NewEnricher(p, nil, WithPrompts(store)).Enrich(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "Be terse.", p.requests[0].System)
	assert.True(t, strings.HasPrefix(p.requests[0].User, "Score this resume:\n\n"))
	assert.Contains(t, p.requests[0].User, "Ada Lovelace")
}

func TestEnricherDrivesEngine(t *testing.T) {
	p := &fakeProvider{name: "fake", reply: `{"score": 90, "weaknesses": ["Add a portfolio link"]}`}
	engine := analysis.NewEngine(analysis.WithEnricher(NewEnricher(p, nil)))

	report := engine.AnalyzeResume(context.Background(), sampleRequest().Resume, analysis.AnalyzeOptions{})
	require.NotNil(t, report.Enrichment)
	assert.Equal(t, 90, report.Enrichment.Score)
	assert.Equal(t, 90, report.SubScores[types.ScoreEnrichment])
}

func TestEnricherCloseClosesBothProviders(t *testing.T) {
	a, b := &fakeProvider{name: "a"}, &fakeProvider{name: "b"}
	require.NoError(t, NewEnricher(a, b).Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider(config.ResolvedAIConfig{Provider: config.ProviderOpenAI}, nil)
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewProvider(config.ResolvedAIConfig{Provider: "llama", APIKey: "k"}, nil)
	assert.ErrorContains(t, err, "Unsupported AI provider")

	p, err := NewProvider(config.ResolvedAIConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4o-mini", p.Model())
	assert.True(t, p.Healthy())
}
