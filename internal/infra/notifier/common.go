package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/utils/text"

	"github.com/google/uuid"
)

const (
	// maxErrorBodyBytes bounds how much of a rejected response is kept.
	maxErrorBodyBytes = 4096

	// maxErrorBodyRunes bounds the body excerpt carried in DeliveryError.
	maxErrorBodyRunes = 300

	truncationSuffix = "..."
)

// postJSON marshals payload and POSTs it to webhookURL exactly once.
func postJSON(ctx context.Context, client *http.Client, channel, webhookURL string, payload any) (int, error) {
	requestID := uuid.New().String()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, &entity.DeliveryError{Channel: channel, Err: fmt.Errorf("marshal webhook payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return 0, &entity.DeliveryError{Channel: channel, Err: fmt.Errorf("create http request: %w", redactURLError(err))}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "webhook request failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", redactURLError(err).Error()))
		return 0, &entity.DeliveryError{Channel: channel, Err: fmt.Errorf("execute http request: %w", redactURLError(err))}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		slog.InfoContext(ctx, "notification delivered",
			slog.String("request_id", requestID),
			slog.String("channel", channel),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", time.Since(start)))
		return resp.StatusCode, nil
	}

	slog.ErrorContext(ctx, "notification rejected",
		slog.String("request_id", requestID),
		slog.String("channel", channel),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(body)))

	return resp.StatusCode, &entity.DeliveryError{
		Channel:    channel,
		StatusCode: resp.StatusCode,
		Body:       text.Truncate(string(body), maxErrorBodyRunes, truncationSuffix),
	}
}

// redactURLError strips the path and query from URLs inside *url.Error.
// Webhook paths carry the credential and must not reach logs.
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	redacted := *urlErr
	redacted.URL = redactURL(urlErr.URL)
	return &redacted
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[redacted]"
	}
	return u.Scheme + "://" + u.Host + "/****"
}
