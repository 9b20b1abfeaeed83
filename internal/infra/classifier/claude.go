package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/utils/text"
)

// Claude implements Client using Anthropic's Messages API.
type Claude struct {
	client          anthropic.Client
	config          Config
	metricsRecorder CompletionMetricsRecorder
}

// NewClaude creates a new Claude client. The SDK's built-in retries are disabled.
func NewClaude(config Config, httpClient *http.Client) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if config.Model == "" {
		config.Model = DefaultModel(ProviderClaude)
	}

	slog.Info("Initialized Claude classifier",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		config:          config,
		metricsRecorder: NewPrometheusCompletionMetrics(),
	}
}

// Provider returns "claude".
func (c *Claude) Provider() string { return ProviderClaude }

// Complete sends prompt as a single user message and returns the concatenated
// text blocks of the reply. Any failure is returned as *entity.ServiceError.
func (c *Claude) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestID := uuid.New().String()

	slog.DebugContext(ctx, "Starting completion",
		slog.String("provider", ProviderClaude),
		slog.String("request_id", requestID),
		slog.Int("prompt_length", text.CountRunes(prompt)))

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.Model),
		MaxTokens:   int64(c.config.MaxTokens),
		Temperature: anthropic.Float(float64(c.config.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(ProviderClaude, duration)

	if err != nil {
		c.metricsRecorder.RecordOutcome(ProviderClaude, outcomeFailure)
		slog.ErrorContext(ctx, "Completion failed",
			slog.String("provider", ProviderClaude),
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", &entity.ServiceError{
			Provider:   ProviderClaude,
			StatusCode: claudeStatusCode(err),
			Err:        fmt.Errorf("claude api error: %w", err),
		}
	}

	var reply strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			reply.WriteString(textBlock.Text)
		}
	}

	if reply.Len() == 0 {
		c.metricsRecorder.RecordOutcome(ProviderClaude, outcomeFailure)
		slog.ErrorContext(ctx, "Claude API returned no text content",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", &entity.ServiceError{
			Provider: ProviderClaude,
			Err:      errors.New("claude api returned no text content"),
		}
	}

	c.metricsRecorder.RecordOutcome(ProviderClaude, outcomeSuccess)

	slog.InfoContext(ctx, "Completion finished",
		slog.String("provider", ProviderClaude),
		slog.String("request_id", requestID),
		slog.Int("reply_length", text.CountRunes(reply.String())),
		slog.Duration("duration", duration))

	return reply.String(), nil
}

func claudeStatusCode(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
