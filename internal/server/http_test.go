package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"resumescan/internal/analysis"
	"resumescan/internal/config"
	"resumescan/internal/errors"
	"resumescan/internal/types"
)

const analyzeBody = `{
  "resume": {
    "personal": {"name": "Sam Doe", "email": "sam@example.com"},
    "summary": "Software engineer who developed and deployed scalable services.",
    "experience": [
      {"position": "Engineer", "company": "Acme", "startDate": "2021-01", "current": true,
       "description": "Led a team of 5 and improved API latency by 40%."}
    ],
    "skills": [{"name": "Go"}, {"name": "Kubernetes"}]
  },
  "jobDescription": "Looking for a Go engineer with Kubernetes experience."
}`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			IdleTimeout:    5 * time.Second,
			MaxRequestSize: 1 << 20,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	s := NewServer(cfg, Dependencies{Engine: analysis.NewEngine()}, "test", nil)
	t.Cleanup(s.RateLimiter.Close)
	return s
}

func doRequest(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestAnalyzeHandler(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doRequest(t, h, http.MethodPost, "/analyze", analyzeBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report types.AnalysisReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.OverallScore < 0 || report.OverallScore > 100 {
		t.Errorf("overall score %d out of range", report.OverallScore)
	}
	switch report.Tier {
	case types.TierCritical, types.TierGood, types.TierExcellent:
	default:
		t.Errorf("unexpected tier %q", report.Tier)
	}
}

func TestAnalyzeHandlerTextFormat(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doRequest(t, h, http.MethodPost, "/analyze?format=text", analyzeBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "=== RESUME ANALYSIS ===") {
		t.Errorf("text report missing header:\n%s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/analyze?format=pdf", analyzeBody, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported format status = %d, want 400", rec.Code)
	}
}

func TestGrammarHandler(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	body := `{"resume": {"summary": "I recieve many accomplishements."}, "enrich": false}`
	rec := doRequest(t, h, http.MethodPost, "/grammar", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report types.GrammarReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(report.Issues) == 0 {
		t.Error("expected spelling issues to be reported")
	}
}

func TestRequestValidation(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
	}{
		{"malformed JSON", `{"resume": `, "application/json", http.StatusBadRequest},
		{"missing resume", `{"jobDescription": "x"}`, "application/json", http.StatusBadRequest},
		{"unknown field", `{"resume": {}, "extra": 1}`, "application/json", http.StatusBadRequest},
		{"trailing data", `{"resume": {}} {"resume": {}}`, "application/json", http.StatusBadRequest},
		{"wrong content type", `{"resume": {}}`, "text/plain", http.StatusBadRequest},
		{"empty resume is valid", `{"resume": {}}`, "application/json", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/analyze", tt.body,
				map[string]string{"Content-Type": tt.contentType})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK && decodeError(t, rec).Error == "" {
				t.Error("error response has no title")
			}
		})
	}
}

func TestRequestTooLarge(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) { cfg.Server.MaxRequestSize = 64 }).Handler()

	rec := doRequest(t, h, http.MethodPost, "/analyze", analyzeBody, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.APIKeys = []string{"secret-key-123"}
	}).Handler()

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"invalid key", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret-key-123"}, http.StatusOK},
		{"bearer token", map[string]string{"Authorization": "Bearer secret-key-123"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/analyze", analyzeBody, tt.headers)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	rec := doRequest(t, h, http.MethodPost, "/analyze", analyzeBody, nil)
	if code := decodeError(t, rec).Code; code != errors.ErrCodeMissingAPIKey {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeMissingAPIKey)
	}

	// health stays open
	if rec := doRequest(t, h, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 1,
			BurstCapacity:  2,
			ByIP:           true,
		}
	})
	h := s.Handler()

	for i := range 2 {
		if rec := doRequest(t, h, http.MethodGet, "/stats", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := doRequest(t, h, http.MethodGet, "/stats", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if code := decodeError(t, rec).Code; code != errors.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeRateLimited)
	}
	if got := s.RateLimiter.GetStats()["rejected_requests"]; got != int64(1) {
		t.Errorf("rejected_requests = %v, want 1", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/health", "", nil)
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("generated request ID is not a UUID: %q", rec.Header().Get(RequestIDHeader))
	}

	id := uuid.NewString()
	rec = doRequest(t, h, http.MethodGet, "/health", "", map[string]string{RequestIDHeader: id})
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}

	rec = doRequest(t, h, http.MethodPost, "/analyze", `{`, map[string]string{RequestIDHeader: id})
	if got := decodeError(t, rec).RequestID; got != id {
		t.Errorf("error response request ID = %q, want %q", got, id)
	}
}

func TestHealthAndStats(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/health", "", nil)
	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", health["status"])
	}
	if enrichment, _ := health["enrichment"].(map[string]any); enrichment["enabled"] != false {
		t.Errorf("enrichment = %v, want disabled", health["enrichment"])
	}

	rec = doRequest(t, h, http.MethodGet, "/stats", "", nil)
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if limiter, _ := stats["rate_limiting"].(map[string]any); limiter["enabled"] != false {
		t.Errorf("rate_limiting = %v, want disabled", stats["rate_limiting"])
	}

	if rec := doRequest(t, h, http.MethodGet, "/analyze", "", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /analyze status = %d, want 405", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "bogus, 10.0.0.1, 10.0.0.2"}, "1.2.3.4:5", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "1.2.3.4:5", "10.0.0.9"},
		{"remote addr", nil, "1.2.3.4:5", "1.2.3.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
