package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/utils/text"
)

// OpenAI implements Client using OpenAI's chat completion API.
type OpenAI struct {
	client          *openai.Client
	config          Config
	metricsRecorder CompletionMetricsRecorder
}

// NewOpenAI creates a new OpenAI client. A nil httpClient uses the library default.
func NewOpenAI(config Config, httpClient *http.Client) *OpenAI {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	if config.Model == "" {
		config.Model = DefaultModel(ProviderOpenAI)
	}

	slog.Info("Initialized OpenAI classifier",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens))

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientConfig),
		config:          config,
		metricsRecorder: NewPrometheusCompletionMetrics(),
	}
}

// Provider returns "openai".
func (o *OpenAI) Provider() string { return ProviderOpenAI }

// Complete sends prompt as a single user message and returns the reply text.
// Any failure is returned as *entity.ServiceError.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	slog.DebugContext(ctx, "Starting completion",
		slog.String("provider", ProviderOpenAI),
		slog.Int("prompt_length", text.CountRunes(prompt)))

	// The library omits a zero temperature from the request body.
	temperature := o.config.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		MaxTokens:   o.config.MaxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	duration := time.Since(start)
	o.metricsRecorder.RecordDuration(ProviderOpenAI, duration)

	if err != nil {
		o.metricsRecorder.RecordOutcome(ProviderOpenAI, outcomeFailure)
		slog.ErrorContext(ctx, "Completion failed",
			slog.String("provider", ProviderOpenAI),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", &entity.ServiceError{
			Provider:   ProviderOpenAI,
			StatusCode: openAIStatusCode(err),
			Err:        fmt.Errorf("openai api error: %w", err),
		}
	}

	if len(resp.Choices) == 0 {
		o.metricsRecorder.RecordOutcome(ProviderOpenAI, outcomeFailure)
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		return "", &entity.ServiceError{
			Provider: ProviderOpenAI,
			Err:      errors.New("openai api returned empty response"),
		}
	}

	reply := resp.Choices[0].Message.Content
	o.metricsRecorder.RecordOutcome(ProviderOpenAI, outcomeSuccess)

	slog.InfoContext(ctx, "Completion finished",
		slog.String("provider", ProviderOpenAI),
		slog.Int("reply_length", text.CountRunes(reply)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("duration", duration))

	return reply, nil
}

func openAIStatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
