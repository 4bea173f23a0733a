package ai

import (
	"errors"
	"testing"
	"time"

	"resumescan/internal/config"
)

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestCircuitBreakerName(t *testing.T) {
	cb := NewCircuitBreaker[string](breakerName("gemini", "enrich"), testBreakerConfig(), nil)
	if cb == nil {
		t.Fatal("Circuit breaker should not be nil")
	}

	stats := cb.GetStats()
	if stats["name"] != "AI-gemini-enrich" {
		t.Errorf("name = %v, want AI-gemini-enrich", stats["name"])
	}
	if stats["enabled"] != true {
		t.Errorf("enabled = %v, want true", stats["enabled"])
	}
}

func TestCircuitBreakerTripsAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker[string]("trip", testBreakerConfig(), nil)
	boom := errors.New("boom")

	for i := range 3 {
		if _, err := cb.Execute(func() (string, error) { return "", boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: error = %v, want boom", i, err)
		}
	}

	if cb.IsHealthy() {
		t.Fatal("breaker should be open after 3 failures")
	}

	called := false
	_, err := cb.Execute(func() (string, error) {
		called = true
		return "ok", nil
	})
	if err == nil || called {
		t.Errorf("open breaker should reject without calling, err=%v called=%v", err, called)
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker[string]("off", config.CircuitBreakerConfig{Enabled: false}, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	got, err := cb.Execute(func() (string, error) { return "direct", nil })
	if err != nil || got != "direct" {
		t.Errorf("nil breaker Execute() = %q, %v", got, err)
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should be healthy")
	}
	if cb.GetStats()["enabled"] != false {
		t.Error("nil breaker stats should report disabled")
	}
}
