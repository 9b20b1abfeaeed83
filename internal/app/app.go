// Package app wires configuration into a ready-to-run digest service.
// Both cmd/digest and cmd/worker build their pipeline through it.
package app

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"arxiv-digest/internal/config"
	"arxiv-digest/internal/infra/classifier"
	"arxiv-digest/internal/infra/feed"
	"arxiv-digest/internal/infra/notifier"
	"arxiv-digest/internal/usecase/digest"
	"arxiv-digest/internal/usecase/relation"
)

// userAgent identifies feed requests; arXiv asks API clients to name themselves.
const userAgent = "arxiv-digest/1.0"

// NewHTTPClient returns an HTTP client with the given timeout that enforces TLS 1.2+.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// BuildService constructs the feed client, classifier, relation parser and
// one notifier per channel, and wires them into a digest.Service.
func BuildService(cfg *config.Config, logger *slog.Logger) (*digest.Service, error) {
	arxiv := feed.NewArxivClient(NewHTTPClient(cfg.Feed.Timeout), feed.Config{
		BaseURL:   cfg.Feed.BaseURL,
		Lookback:  cfg.Feed.Lookback,
		UserAgent: userAgent,
	})

	llm, err := classifier.New(cfg.Classifier, NewHTTPClient(cfg.Classifier.Timeout))
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	router := digest.NewRouter(cfg.Routes)
	parser := relation.NewParser(llm, router.Categories())

	channels := make(map[string]digest.Notifier, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		n, err := notifier.New(ch, NewHTTPClient(ch.Timeout))
		if err != nil {
			return nil, fmt.Errorf("create notifier: %w", err)
		}
		channels[ch.Name] = n
		logger.Info("notification channel initialized",
			slog.String("channel", ch.Name),
			slog.String("kind", ch.Kind))
	}

	svc, err := digest.NewService(arxiv, parser, router, channels, digest.Config{
		Category:    cfg.Feed.Category,
		MaxResults:  cfg.Feed.MaxResults,
		ParsePolicy: cfg.ParsePolicy,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("digest service initialized",
		slog.String("category", cfg.Feed.Category),
		slog.Int("max_results", cfg.Feed.MaxResults),
		slog.String("classifier", llm.Provider()),
		slog.String("model", cfg.Classifier.Model),
		slog.String("parse_failure_policy", string(cfg.ParsePolicy)),
		slog.Int("channels", len(channels)),
		slog.Any("categories", router.Categories()))

	return svc, nil
}
