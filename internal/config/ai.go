package config

import "time"

// Provider names accepted by ai.provider
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Operation names used for per-operation AI overrides
const (
	OperationEnrich  = "enrich"
	OperationGrammar = "grammar"
)

// AIConfig holds AI service configuration
type AIConfig struct {
	Enabled        bool                 `mapstructure:"enabled"`
	Provider       string               `mapstructure:"provider" validate:"oneof=gemini openai"`
	Model          string               `mapstructure:"model"`
	Timeout        time.Duration        `mapstructure:"timeout" validate:"gt=0"`
	APIKey         string               `mapstructure:"apiKey"`
	MaxRetries     int                  `mapstructure:"maxRetries" validate:"gte=0,lte=10"`
	Temperature    float32              `mapstructure:"temperature" validate:"gte=0,lte=2"`
	CustomPrompts  PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Operation-specific configurations
	Enrich  OperationAIConfig `mapstructure:"enrich"`
	Grammar OperationAIConfig `mapstructure:"grammar"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for one operation. Unset
// fields inherit from the global AIConfig.
type OperationAIConfig struct {
	Provider    string         `mapstructure:"provider"`
	Model       string         `mapstructure:"model"`
	Timeout     *time.Duration `mapstructure:"timeout"`
	APIKey      string         `mapstructure:"apiKey"`
	MaxRetries  *int           `mapstructure:"maxRetries"`
	Temperature *float32       `mapstructure:"temperature"`
}

// ResolvedAIConfig is an operation's AI configuration with every fallback
// applied
type ResolvedAIConfig struct {
	Operation      string
	Provider       string
	Model          string
	Timeout        time.Duration
	APIKey         string
	MaxRetries     int
	Temperature    float32
	CircuitBreaker CircuitBreakerConfig
}

// GetEnrichConfig returns the resolved configuration for ATS enrichment
func (c *AIConfig) GetEnrichConfig() ResolvedAIConfig {
	return c.resolve(OperationEnrich, c.Enrich)
}

// GetGrammarConfig returns the resolved configuration for grammar review
func (c *AIConfig) GetGrammarConfig() ResolvedAIConfig {
	return c.resolve(OperationGrammar, c.Grammar)
}

func (c *AIConfig) resolve(operation string, op OperationAIConfig) ResolvedAIConfig {
	r := ResolvedAIConfig{
		Operation:      operation,
		Provider:       c.Provider,
		Model:          c.Model,
		Timeout:        c.Timeout,
		APIKey:         c.APIKey,
		MaxRetries:     c.MaxRetries,
		Temperature:    c.Temperature,
		CircuitBreaker: c.CircuitBreaker,
	}
	if op.Provider != "" {
		r.Provider = op.Provider
	}
	if op.Model != "" {
		r.Model = op.Model
	}
	if op.Timeout != nil {
		r.Timeout = *op.Timeout
	}
	if op.APIKey != "" {
		r.APIKey = op.APIKey
	}
	if op.MaxRetries != nil {
		r.MaxRetries = *op.MaxRetries
	}
	if op.Temperature != nil {
		r.Temperature = *op.Temperature
	}
	if r.Model == "" {
		r.Model = DefaultModel(r.Provider)
	}
	return r
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "gemini-2.0-flash"
	}
}
