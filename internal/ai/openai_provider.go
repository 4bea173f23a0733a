package ai

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"

	"resumescan/internal/config"
	"resumescan/internal/errors"
)

const openAIMaxTokens = 2000

// OpenAIProvider implements Provider for the OpenAI chat completions API
type OpenAIProvider struct {
	client         *openai.Client
	config         config.ResolvedAIConfig
	circuitBreaker *CircuitBreaker[*Generation]
	retry          retryPolicy
	logger         *errors.Logger
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider for a specific operation.
// Retries are handled here rather than by the SDK so both providers share
// one policy.
func NewOpenAIProvider(cfg config.ResolvedAIConfig, logger *errors.Logger, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(opts...)

	return &OpenAIProvider{
		client:         &client,
		config:         cfg,
		circuitBreaker: NewCircuitBreaker[*Generation](breakerName(config.ProviderOpenAI, cfg.Operation), cfg.CircuitBreaker, logger),
		retry: retryPolicy{
			maxRetries:  cfg.MaxRetries,
			isRetryable: isRetryableOpenAIError,
			logger:      logger,
		},
		logger: logger,
	}
}

func (o *OpenAIProvider) Name() string  { return config.ProviderOpenAI }
func (o *OpenAIProvider) Model() string { return o.config.Model }

// Generate sends one chat completion request
func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(o.config.Model),
		Temperature: openai.Float(float64(o.config.Temperature)),
		MaxTokens:   openai.Int(openAIMaxTokens),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		}
	}

	return traceGenerate(ctx, o.Name(), o.config, o.circuitBreaker, o.retry, req, func(ctx context.Context) (*Generation, error) {
		completion, err := o.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, err
		}
		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("no response from openai")
		}
		return &Generation{
			Text:  completion.Choices[0].Message.Content,
			Model: completion.Model,
			TokenUsage: &TokenUsage{
				InputTokens:  completion.Usage.PromptTokens,
				OutputTokens: completion.Usage.CompletionTokens,
				TotalTokens:  completion.Usage.TotalTokens,
			},
		}, nil
	})
}

// Stats returns circuit breaker statistics
func (o *OpenAIProvider) Stats() map[string]any {
	return o.circuitBreaker.GetStats()
}

// Healthy reports whether requests are currently let through
func (o *OpenAIProvider) Healthy() bool {
	return o.circuitBreaker.IsHealthy()
}

// Close implements Provider
func (o *OpenAIProvider) Close() error {
	return nil
}

func isRetryableOpenAIError(err error) bool {
	if err == nil {
		return false
	}
	if isRetryableNetError(err) {
		return true
	}
	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.StatusCode)
	}
	return false
}
