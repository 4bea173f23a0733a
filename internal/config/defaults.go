package config

import (
	"time"

	"github.com/spf13/viper"

	"resumescan/internal/analysis"
)

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.maxFileSize", 1048576) // 1MB
	v.SetDefault("app.timeout", 60*time.Second)

	// Analysis defaults
	w := analysis.DefaultWeights()
	v.SetDefault("analysis.weights.keywords", w.Keywords)
	v.SetDefault("analysis.weights.experience", w.Experience)
	v.SetDefault("analysis.weights.education", w.Education)
	v.SetDefault("analysis.weights.formatting", w.Formatting)
	v.SetDefault("analysis.weights.enrichment", w.Enrichment)
	p := analysis.DefaultPenalties()
	v.SetDefault("analysis.penalties.high", p.High)
	v.SetDefault("analysis.penalties.medium", p.Medium)
	v.SetDefault("analysis.penalties.low", p.Low)
	v.SetDefault("analysis.penalties.floor", p.Floor)
	v.SetDefault("analysis.enrichmentTimeout", analysis.DefaultEnrichmentTimeout)
	v.SetDefault("analysis.suggestionLimit", analysis.DefaultSuggestionLimit)
	v.SetDefault("analysis.contextWindow", analysis.DefaultContextWindow)

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.2)

	// Circuit breaker defaults
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 1048576) // 1MB

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.pingTimeout", 2*time.Second)

	// Observability defaults
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "resumescan")
	v.SetDefault("observability.serviceVersion", "dev")
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 30*time.Second)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", false)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)

	// Vault defaults
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "http://localhost:8200")
	v.SetDefault("vault.pollInterval", 5*time.Minute)
	v.SetDefault("vault.secrets.aiKey", "secret/data/resumescan/ai")
	v.SetDefault("vault.secrets.apiKeys", "secret/data/resumescan/api-keys")
}
