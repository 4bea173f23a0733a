package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	resumescanErrors "resumescan/internal/errors"
	"resumescan/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultEnrichmentTimeout bounds a single enrichment call
const DefaultEnrichmentTimeout = 10 * time.Second

// Operation names reported to observers
const (
	OperationAnalyze = "analyze"
	OperationGrammar = "grammar"
)

// Observer receives metrics about finished analyses
type Observer interface {
	RecordAnalysis(ctx context.Context, operation string, tier types.Tier, score int, elapsed time.Duration)
	RecordIssues(ctx context.Context, operation string, issues []types.Issue)
	RecordEnrichmentFailure(ctx context.Context, operation, reason string)
}

// AnalyzeOptions tunes a single AnalyzeResume call
type AnalyzeOptions struct {
	JobDescription    string
	DisableEnrichment bool
}

// CheckOptions tunes a single CheckGrammar call
type CheckOptions struct {
	DisableEnrichment bool
}

// Engine runs the analyzers over a resume and assembles reports. It holds
// no per-call state and is safe for concurrent use.
type Engine struct {
	enricher        Enricher
	timeout         time.Duration
	weights         Weights
	penalties       Penalties
	suggestionLimit int
	contextWindow   int
	logger          *resumescanErrors.Logger
	observer        Observer
	now             func() time.Time
	newID           func() string
	tracer          trace.Tracer
}

// Option configures an Engine
type Option func(*Engine)

// WithEnricher attaches an optional enrichment provider
func WithEnricher(enricher Enricher) Option {
	return func(e *Engine) { e.enricher = enricher }
}

// WithEnrichmentTimeout bounds each enrichment call. Non-positive values are ignored.
func WithEnrichmentTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithWeights replaces the score weights. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.Validate() == nil {
			e.weights = w
		}
	}
}

// WithPenalties sets the per-issue grammar deductions
func WithPenalties(p Penalties) Option {
	return func(e *Engine) { e.penalties = p }
}

// WithSuggestionLimit caps the suggestions in a report
func WithSuggestionLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.suggestionLimit = n
		}
	}
}

// WithContextWindow sets how many bytes of context surround each issue
func WithContextWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.contextWindow = n
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *resumescanErrors.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithObserver records analysis metrics
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithClock fixes the time source used for recency checks and timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator replaces the report ID source
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// NewEngine creates an engine with the default weights and penalties
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:         DefaultEnrichmentTimeout,
		weights:         DefaultWeights(),
		penalties:       DefaultPenalties(),
		suggestionLimit: DefaultSuggestionLimit,
		contextWindow:   DefaultContextWindow,
		now:             time.Now,
		newID:           uuid.NewString,
		tracer:          otel.Tracer("resumescan/analysis"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HasEnricher reports whether enrichment is configured
func (e *Engine) HasEnricher() bool {
	return e.enricher != nil
}

// AnalyzeResume runs every analyzer and returns a complete report. It
// never fails: analyzer panics degrade that analyzer to zero and
// enrichment problems fall back to the neutral score.
func (e *Engine) AnalyzeResume(ctx context.Context, r *types.ResumeRecord, opts AnalyzeOptions) (report *types.AnalysisReport) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "analysis.analyze")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			e.logPanic("aggregate", rec)
			report = e.emptyReport(start)
		}
	}()

	norm := e.normalize(r)

	var (
		keywords   = KeywordResult{DetectedIndustry: FallbackIndustry, Found: []string{}, Missing: []string{}}
		education  SectionResult
		experience SectionResult
		formatting SectionResult
		issues     = []types.Issue{}
		enrichment *types.Enrichment
		note       string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(e.guard("keywords", func() { keywords = AnalyzeKeywords(norm.Text, opts.JobDescription) }))
	g.Go(e.guard("education", func() { education = ScoreEducation(recordOrEmpty(r).Education, e.now()) }))
	g.Go(e.guard("experience", func() { experience = ScoreExperience(recordOrEmpty(r).Experience) }))
	g.Go(e.guard("formatting", func() { formatting = ScoreFormatting(r) }))
	g.Go(e.guard("grammar", func() { issues = checkFragments(norm.Fragments, e.contextWindow) }))
	if e.enricher != nil && !opts.DisableEnrichment {
		g.Go(e.guard("enrichment", func() {
			enrichment, note = e.enrich(gctx, EnrichRequest{
				Resume:         r,
				NormalizedText: norm.Text,
				JobDescription: opts.JobDescription,
			})
		}))
	}
	_ = g.Wait()

	agg := Aggregate(AggregateInput{
		Keywords:       keywords,
		Experience:     experience,
		Education:      education,
		Formatting:     formatting,
		Issues:         issues,
		Enrichment:     enrichment,
		EnrichmentNote: note,
	}, e.weights, e.suggestionLimit)

	elapsed := time.Since(start)
	report = &types.AnalysisReport{
		ID:               e.newID(),
		OverallScore:     agg.OverallScore,
		Tier:             agg.Tier,
		SubScores:        agg.SubScores,
		DetectedIndustry: keywords.DetectedIndustry,
		FoundKeywords:    keywords.Found,
		MissingKeywords:  keywords.Missing,
		Detail: types.KeywordDetail{
			IndustryMatch:      keywords.IndustryMatch,
			ActionVerbs:        keywords.ActionVerbScore,
			Metrics:            keywords.MetricsScore,
			JobKeywordsMatched: keywords.JobKeywordsMatched,
			JobKeywordsMissing: keywords.JobKeywordsMissing,
		},
		GrammarScore: GrammarScore(issues, e.penalties),
		Issues:       issues,
		Suggestions:  agg.Suggestions,
		Enrichment:   enrichment,
		Metrics: types.ReportMetrics{
			WordCount:    norm.WordCount,
			ElapsedMs:    elapsed.Milliseconds(),
			SectionCount: norm.SectionCount,
		},
		AnalyzedAt: e.now().UTC(),
	}

	span.SetAttributes(
		attribute.Int("analysis.overall_score", report.OverallScore),
		attribute.String("analysis.tier", string(report.Tier)),
		attribute.String("analysis.industry", report.DetectedIndustry),
		attribute.Int("analysis.issues", len(issues)),
		attribute.Bool("analysis.enriched", enrichment != nil),
	)
	e.logger.Debug("Resume analyzed",
		"report_id", report.ID,
		"overall_score", report.OverallScore,
		"tier", report.Tier,
		"industry", report.DetectedIndustry,
		"issues", len(issues),
		"enriched", enrichment != nil,
		"elapsed_ms", report.Metrics.ElapsedMs)
	if e.observer != nil {
		e.observer.RecordAnalysis(ctx, OperationAnalyze, report.Tier, report.OverallScore, elapsed)
		e.observer.RecordIssues(ctx, OperationAnalyze, issues)
	}
	return report
}

// CheckGrammar runs the grammar analyzer and, when an enricher is
// configured, merges its findings marked as external.
func (e *Engine) CheckGrammar(ctx context.Context, r *types.ResumeRecord, opts CheckOptions) (report *types.GrammarReport) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "analysis.check_grammar")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			e.logPanic("grammar", rec)
			report = e.emptyGrammarReport(start)
		}
	}()

	norm := e.normalize(r)
	issues := checkFragments(norm.Fragments, e.contextWindow)

	enriched := false
	var note string
	if e.enricher != nil && !opts.DisableEnrichment && len(norm.Fragments) > 0 {
		response, err := callBounded(ctx, e.timeout, func(ctx context.Context) (string, error) {
			return e.enricher.ReviewGrammar(ctx, norm.Fragments)
		})
		if err != nil {
			note = e.enrichmentFailed(ctx, OperationGrammar, err)
		} else {
			issues = MergeIssues(issues, ParseExternalIssues(response, norm.Fragments))
			enriched = true
		}
	}

	bySeverity, byCategory := CountIssues(issues)
	elapsed := time.Since(start)
	report = &types.GrammarReport{
		ID:          e.newID(),
		Score:       GrammarScore(issues, e.penalties),
		Issues:      issues,
		BySeverity:  bySeverity,
		ByCategory:  byCategory,
		Suggestions: grammarSuggestions(issues, note, e.suggestionLimit),
		Enriched:    enriched,
		Metrics: types.ReportMetrics{
			WordCount:    norm.WordCount,
			ElapsedMs:    elapsed.Milliseconds(),
			SectionCount: norm.SectionCount,
		},
		CheckedAt: e.now().UTC(),
	}

	span.SetAttributes(
		attribute.Int("grammar.score", report.Score),
		attribute.Int("grammar.issues", len(issues)),
		attribute.Bool("grammar.enriched", enriched),
	)
	if e.observer != nil {
		e.observer.RecordAnalysis(ctx, OperationGrammar, TierFor(report.Score), report.Score, elapsed)
		e.observer.RecordIssues(ctx, OperationGrammar, issues)
	}
	return report
}

func (e *Engine) normalize(r *types.ResumeRecord) (n Normalized) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logPanic("normalize", rec)
			n = Normalized{}
		}
	}()
	return Normalize(r)
}

// guard turns an analyzer into an errgroup task that cannot fail
func (e *Engine) guard(name string, fn func()) func() error {
	return func() error {
		defer func() {
			if rec := recover(); rec != nil {
				e.logPanic(name, rec)
			}
		}()
		fn()
		return nil
	}
}

func (e *Engine) enrich(ctx context.Context, req EnrichRequest) (*types.Enrichment, string) {
	result, err := callBounded(ctx, e.timeout, func(ctx context.Context) (*types.Enrichment, error) {
		return e.enricher.Enrich(ctx, req)
	})
	if err == nil && result == nil {
		err = ErrEnrichmentUnavailable
	}
	if err != nil {
		return nil, e.enrichmentFailed(ctx, OperationAnalyze, err)
	}
	out := *result
	out.Score = clamp(out.Score, 0, 100)
	return &out, ""
}

// enrichmentFailed logs and records a failed enrichment and returns the
// note shown to the reader.
func (e *Engine) enrichmentFailed(ctx context.Context, operation string, err error) string {
	reason, code := "error", resumescanErrors.ErrCodeEnrichmentFailed
	if errors.Is(err, context.DeadlineExceeded) {
		reason, code = "timeout", resumescanErrors.ErrCodeEnrichmentTimeout
	} else if errors.Is(err, ErrEnrichmentUnavailable) {
		reason, code = "unavailable", resumescanErrors.ErrCodeProviderUnavailable
	}

	e.logger.LogError(
		resumescanErrors.NewEnrichmentError(code, "Enrichment failed, continuing without it", err).
			WithContext("operation", operation).
			WithContext("reason", reason),
		"Enrichment unavailable")
	if e.observer != nil {
		e.observer.RecordEnrichmentFailure(ctx, operation, reason)
	}

	if operation == OperationGrammar {
		return fmt.Sprintf("AI grammar review was unavailable (%s); only rule-based findings are shown", reason)
	}
	return fmt.Sprintf("AI enrichment was unavailable (%s); a neutral enrichment score of %d was used", reason, NeutralEnrichmentScore)
}

func (e *Engine) logPanic(stage string, rec any) {
	e.logger.LogError(
		resumescanErrors.NewInternalError(resumescanErrors.ErrCodeAnalyzerPanic, "Analyzer panicked", fmt.Errorf("%v", rec)).
			WithContext("stage", stage),
		"Analyzer recovered from panic")
}

func (e *Engine) emptyReport(start time.Time) *types.AnalysisReport {
	agg := Aggregate(AggregateInput{Keywords: KeywordResult{DetectedIndustry: FallbackIndustry}}, e.weights, e.suggestionLimit)
	return &types.AnalysisReport{
		ID:               e.newID(),
		OverallScore:     agg.OverallScore,
		Tier:             agg.Tier,
		SubScores:        agg.SubScores,
		DetectedIndustry: FallbackIndustry,
		FoundKeywords:    []string{},
		MissingKeywords:  []string{},
		GrammarScore:     100,
		Issues:           []types.Issue{},
		Suggestions:      agg.Suggestions,
		Metrics:          types.ReportMetrics{ElapsedMs: time.Since(start).Milliseconds()},
		AnalyzedAt:       e.now().UTC(),
	}
}

func (e *Engine) emptyGrammarReport(start time.Time) *types.GrammarReport {
	bySeverity, byCategory := CountIssues(nil)
	return &types.GrammarReport{
		ID:          e.newID(),
		Score:       100,
		Issues:      []types.Issue{},
		BySeverity:  bySeverity,
		ByCategory:  byCategory,
		Suggestions: []string{},
		Metrics:     types.ReportMetrics{ElapsedMs: time.Since(start).Milliseconds()},
		CheckedAt:   e.now().UTC(),
	}
}

func grammarSuggestions(issues []types.Issue, note string, limit int) []string {
	s := &suggestionList{limit: limit, seen: make(map[string]struct{})}
	s.add(note)
	for _, sev := range []types.Severity{types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		for _, issue := range issues {
			if issue.Severity == sev {
				s.add(issueSuggestion(issue))
			}
		}
	}
	if len(issues) == 0 {
		s.add("No grammar or spelling issues found")
	}
	return s.items
}

func recordOrEmpty(r *types.ResumeRecord) *types.ResumeRecord {
	if r == nil {
		return &types.ResumeRecord{}
	}
	return r
}

var defaultEngine = NewEngine()

// AnalyzeResume analyzes a resume with the default engine, which has no enricher
func AnalyzeResume(ctx context.Context, r *types.ResumeRecord, opts AnalyzeOptions) *types.AnalysisReport {
	return defaultEngine.AnalyzeResume(ctx, r, opts)
}

// CheckGrammar checks a resume with the default engine
func CheckGrammar(ctx context.Context, r *types.ResumeRecord) *types.GrammarReport {
	return defaultEngine.CheckGrammar(ctx, r, CheckOptions{})
}
