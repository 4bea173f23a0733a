package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resumescan/internal/config"
	"resumescan/internal/errors"
)

// Provider is a text-generation backend
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req GenerateRequest) (*Generation, error)
	// Stats reports circuit breaker state for the stats endpoint.
	Stats() map[string]any
	Healthy() bool
	Close() error
}

// GenerateRequest is a single prompt exchange
type GenerateRequest struct {
	Operation string
	System    string
	User      string
	// JSON asks the backend for a JSON object response when supported.
	JSON bool
}

// Generation is a provider reply
type Generation struct {
	Text       string
	Model      string
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// MetricsRecorder receives one call per provider request
type MetricsRecorder interface {
	RecordAIRequest(ctx context.Context, provider, operation string, elapsed time.Duration, usage *TokenUsage, err error)
}

// NewProvider creates the provider selected by cfg.Provider
func NewProvider(cfg config.ResolvedAIConfig, logger *errors.Logger) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			fmt.Sprintf("API key is required for the %s provider", cfg.Provider), nil)
	}

	logger.Debug("Initializing AI provider",
		"provider", cfg.Provider,
		"operation", cfg.Operation,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiProvider(cfg, logger)
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg, logger), nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

// generateFunc is one raw backend call
type generateFunc func(ctx context.Context) (*Generation, error)

// traceGenerate wraps a provider call in a span. The breaker sits outside
// the retry loop and every attempt gets its own timeout.
func traceGenerate(
	ctx context.Context,
	provider string,
	cfg config.ResolvedAIConfig,
	breaker *CircuitBreaker[*Generation],
	retry retryPolicy,
	req GenerateRequest,
	call generateFunc,
) (*Generation, error) {
	tracer := otel.Tracer("resumescan/ai")
	ctx, span := tracer.Start(ctx, "ai."+provider+".generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", provider),
		attribute.String("ai.model", cfg.Model),
		attribute.String("ai.operation", req.Operation),
		attribute.Float64("ai.temperature", float64(cfg.Temperature)),
		attribute.Int("input.prompt_length", len(req.User)),
	)

	result, err := breaker.Execute(func() (*Generation, error) {
		return executeWithRetry(ctx, retry, req.Operation, func() (*Generation, error) {
			callCtx := ctx
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}
			return call(callCtx)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("success", false))
		code := errors.ErrCodeAIServiceFailed
		if stderrors.Is(err, context.DeadlineExceeded) {
			code = errors.ErrCodeAITimeout
		}
		return nil, errors.NewAIError(code, "Failed to generate content for "+req.Operation, err).
			WithContext("provider", provider)
	}

	if u := result.TokenUsage; u != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", u.InputTokens),
			attribute.Int64("ai.tokens.output", u.OutputTokens),
			attribute.Int64("ai.tokens.total", u.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return result, nil
}

// isRetryableNetError reports network failures, which are always retried
func isRetryableNetError(err error) bool {
	var netErr net.Error
	return stderrors.As(err, &netErr)
}
