package observability

import (
	"context"
	"fmt"
	"time"

	"resumescan/internal/ai"
	"resumescan/internal/analysis"
	"resumescan/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics holds all custom metrics for resumescan
type Metrics struct {
	// Analysis metrics
	AnalysesTotal      metric.Int64Counter
	AnalysisDuration   metric.Float64Histogram
	OverallScore       metric.Int64Histogram
	IssuesTotal        metric.Int64Counter
	EnrichmentFailures metric.Int64Counter

	// AI provider metrics
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AIProcessingTime metric.Float64Histogram
	AITokenUsage     metric.Int64Histogram

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

var (
	_ analysis.Observer  = (*Manager)(nil)
	_ ai.MetricsRecorder = (*Manager)(nil)
)

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AnalysesTotal, err = meter.Int64Counter(
		"resumescan_analyses_total",
		metric.WithDescription("Total number of completed analyses"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}

	if m.AnalysisDuration, err = meter.Float64Histogram(
		"resumescan_analysis_duration_seconds",
		metric.WithDescription("Wall time of an analysis including enrichment"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	if m.OverallScore, err = meter.Int64Histogram(
		"resumescan_overall_score",
		metric.WithDescription("Distribution of overall and grammar scores"),
		metric.WithExplicitBucketBoundaries(20, 40, 60, 70, 80, 90, 100),
	); err != nil {
		return nil, fmt.Errorf("failed to create score metric: %w", err)
	}

	if m.IssuesTotal, err = meter.Int64Counter(
		"resumescan_grammar_issues_total",
		metric.WithDescription("Grammar issues reported by analyses"),
	); err != nil {
		return nil, fmt.Errorf("failed to create issues metric: %w", err)
	}

	if m.EnrichmentFailures, err = meter.Int64Counter(
		"resumescan_enrichment_failures_total",
		metric.WithDescription("Enrichment calls that fell back to the neutral result"),
	); err != nil {
		return nil, fmt.Errorf("failed to create enrichment failure metric: %w", err)
	}

	if m.AIRequestCount, err = meter.Int64Counter(
		"resumescan_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	if m.AIErrorCount, err = meter.Int64Counter(
		"resumescan_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"resumescan_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"resumescan_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumescan_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limited requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// GetMetrics returns the metrics instance, or nil when metrics are off
func (om *Manager) GetMetrics() *Metrics {
	if om == nil {
		return nil
	}
	return om.metrics
}

// RecordAnalysis records a finished analysis or grammar check
func (om *Manager) RecordAnalysis(ctx context.Context, operation string, tier types.Tier, score int, elapsed time.Duration) {
	m := om.GetMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("tier", string(tier)),
	)
	m.AnalysesTotal.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("operation", operation)))
	m.OverallScore.Record(ctx, int64(score), metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordIssues counts reported issues by category and severity
func (om *Manager) RecordIssues(ctx context.Context, operation string, issues []types.Issue) {
	m := om.GetMetrics()
	if m == nil || len(issues) == 0 {
		return
	}

	type bucket struct {
		category types.IssueCategory
		severity types.Severity
	}
	counts := make(map[bucket]int64)
	for _, issue := range issues {
		counts[bucket{issue.Category, issue.Severity}]++
	}
	for b, n := range counts {
		m.IssuesTotal.Add(ctx, n, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("category", string(b.category)),
			attribute.String("severity", string(b.severity)),
		))
	}
}

// RecordEnrichmentFailure counts an enrichment fallback
func (om *Manager) RecordEnrichmentFailure(ctx context.Context, operation, reason string) {
	m := om.GetMetrics()
	if m == nil {
		return
	}
	m.EnrichmentFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}

// RecordAIRequest records a single provider call and annotates the current span
func (om *Manager) RecordAIRequest(ctx context.Context, provider, operation string, elapsed time.Duration, usage *ai.TokenUsage, err error) {
	span := oteltrace.SpanFromContext(ctx)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}

	m := om.GetMetrics()
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.AIProcessingTime.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if usage != nil {
		m.recordTokenMetrics(ctx, usage, attrs)
	}
}

func (m *Metrics) recordTokenMetrics(ctx context.Context, usage *ai.TokenUsage, attrs []attribute.KeyValue) {
	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func (om *Manager) RecordRateLimitHit(ctx context.Context, route, keyType string) {
	m := om.GetMetrics()
	if m == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("key_type", keyType),
	))
}
