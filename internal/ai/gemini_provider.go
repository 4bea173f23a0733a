package ai

import (
	"context"
	stderrors "errors"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"resumescan/internal/config"
	"resumescan/internal/errors"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         config.ResolvedAIConfig
	circuitBreaker *CircuitBreaker[*Generation]
	retry          retryPolicy
	logger         *errors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg config.ResolvedAIConfig, logger *errors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		circuitBreaker: NewCircuitBreaker[*Generation](breakerName(config.ProviderGemini, cfg.Operation), cfg.CircuitBreaker, logger),
		retry: retryPolicy{
			maxRetries:  cfg.MaxRetries,
			isRetryable: isRetryableGeminiError,
			logger:      logger,
		},
		logger: logger,
	}, nil
}

func (g *GeminiProvider) Name() string  { return config.ProviderGemini }
func (g *GeminiProvider) Model() string { return g.config.Model }

// Generate sends one prompt to Gemini
func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	temperature := g.config.Temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		genConfig.ResponseMIMEType = "application/json"
	}

	return traceGenerate(ctx, g.Name(), g.config, g.circuitBreaker, g.retry, req, func(ctx context.Context) (*Generation, error) {
		result, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(req.User), genConfig)
		if err != nil {
			return nil, err
		}
		return &Generation{
			Text:       result.Text(),
			Model:      g.config.Model,
			TokenUsage: extractTokenUsage(result),
		}, nil
	})
}

// Stats returns circuit breaker statistics
func (g *GeminiProvider) Stats() map[string]any {
	return g.circuitBreaker.GetStats()
}

// Healthy reports whether requests are currently let through
func (g *GeminiProvider) Healthy() bool {
	return g.circuitBreaker.IsHealthy()
}

// Close implements Provider. The genai client holds no resources in
// single-shot usage.
func (g *GeminiProvider) Close() error {
	return nil
}

// isRetryableGeminiError determines if an error should trigger a retry
func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}
	if isRetryableNetError(err) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.Code)
	}

	return false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
