package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumescan/internal/ai"
	"resumescan/internal/config"
	"resumescan/internal/types"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func testConfig() config.ObservabilityConfig {
	return config.ObservabilityConfig{
		Enabled:        true,
		ServiceName:    "resumescan-test",
		ServiceVersion: "dev",
		Tracing:        config.TracingConfig{Enabled: true, SampleRate: 1},
		Metrics:        config.MetricsConfig{Enabled: true},
		Prometheus:     config.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("aggregation is %T, want Sum[int64]", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestDisabledManagerIsNoop(t *testing.T) {
	om, err := NewManager(config.ObservabilityConfig{Enabled: false}, "1.0.0")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if om.Enabled() {
		t.Error("disabled manager reports enabled")
	}
	if om.MetricsHandler() != nil {
		t.Error("disabled manager should not expose a metrics handler")
	}

	ctx := context.Background()
	om.RecordAnalysis(ctx, "analyze", types.TierGood, 70, time.Second)
	om.RecordEnrichmentFailure(ctx, "analyze", "timeout")
	om.RecordAIRequest(ctx, "gemini", "enrich", time.Second, &ai.TokenUsage{TotalTokens: 3}, nil)

	handler := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("pass-through middleware status = %d", rec.Code)
	}

	if err := om.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNilManagerIsSafe(t *testing.T) {
	var om *Manager
	om.RecordAnalysis(context.Background(), "analyze", types.TierCritical, 10, time.Millisecond)
	om.RecordRateLimitHit(context.Background(), "/analyze", "ip")
	if om.MetricsPath() != "/metrics" {
		t.Errorf("MetricsPath() = %q", om.MetricsPath())
	}
	if err := om.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestRecordAnalysisMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	cfg := testConfig()
	cfg.Prometheus.Enabled = false
	om, err := newManager(cfg, "1.2.3", reader)
	if err != nil {
		t.Fatalf("newManager() error = %v", err)
	}
	defer func() { _ = om.Shutdown(context.Background()) }()

	ctx := context.Background()
	om.RecordAnalysis(ctx, "analyze", types.TierGood, 72, 40*time.Millisecond)
	om.RecordAnalysis(ctx, "grammar", types.TierExcellent, 95, 10*time.Millisecond)
	om.RecordIssues(ctx, "grammar", []types.Issue{
		{Category: types.CategorySpelling, Severity: types.SeverityHigh},
		{Category: types.CategorySpelling, Severity: types.SeverityHigh},
		{Category: types.CategoryStyle, Severity: types.SeverityLow},
	})
	om.RecordEnrichmentFailure(ctx, "analyze", "timeout")
	om.RecordAIRequest(ctx, "gemini", "enrich", time.Second, &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil)
	om.RecordAIRequest(ctx, "gemini", "enrich", time.Second, nil, errors.New("quota"))
	om.RecordRateLimitHit(ctx, "/analyze", "ip")

	got := collect(t, reader)

	checks := map[string]int64{
		"resumescan_analyses_total":            2,
		"resumescan_grammar_issues_total":      3,
		"resumescan_enrichment_failures_total": 1,
		"resumescan_ai_requests_total":         2,
		"resumescan_ai_errors_total":           1,
		"resumescan_rate_limit_hits_total":     1,
	}
	for name, want := range checks {
		data, ok := got[name]
		if !ok {
			t.Errorf("metric %s not collected", name)
			continue
		}
		if total := sumOf(t, data); total != want {
			t.Errorf("%s = %d, want %d", name, total, want)
		}
	}

	hist, ok := got["resumescan_ai_token_usage"].(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("token usage aggregation = %T", got["resumescan_ai_token_usage"])
	}
	if len(hist.DataPoints) != 3 {
		t.Errorf("token usage data points = %d, want one per token type", len(hist.DataPoints))
	}
	if om.config.ServiceVersion != "1.2.3" {
		t.Errorf("ServiceVersion = %q, want build version to replace dev", om.config.ServiceVersion)
	}
}

func TestPrometheusHandlerServesMetrics(t *testing.T) {
	om, err := NewManager(testConfig(), "1.0.0")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer func() { _ = om.Shutdown(context.Background()) }()

	om.RecordAnalysis(context.Background(), "analyze", types.TierCritical, 41, time.Second)

	handler := om.MetricsHandler()
	if handler == nil {
		t.Fatal("MetricsHandler() = nil with Prometheus enabled")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{"resumescan_analyses_total", `tier="critical"`, "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHTTPMiddlewareWrapsHandler(t *testing.T) {
	cfg := testConfig()
	cfg.Prometheus.Enabled = false
	om, err := NewManager(cfg, "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer func() { _ = om.Shutdown(context.Background()) }()

	var sawSpan bool
	handler := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = oteltrace.SpanContextFromContext(r.Context()).IsValid()
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if !sawSpan {
		t.Error("request context should carry a recording span")
	}
}
