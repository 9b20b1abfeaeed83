// Package config loads the digest configuration once at process start.
// Components receive the values they need through their constructors and
// never read the environment themselves.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"arxiv-digest/internal/infra/classifier"
	"arxiv-digest/internal/infra/feed"
	"arxiv-digest/internal/infra/notifier"
	pkgconfig "arxiv-digest/internal/pkg/config"
	"arxiv-digest/internal/usecase/digest"
)

// Defaults for optional variables.
const (
	DefaultCategory           = "quant-ph"
	DefaultMaxResults         = 100
	DefaultFeedTimeout        = 30 * time.Second
	DefaultClassifierTimeout  = 60 * time.Second
	DefaultClassifierTokens   = 1000
	DefaultChannelTimeout     = 10 * time.Second
	MaxFeedResults            = 2000
	maxClassifierTemperature  = 2.0
	channelsVariable          = "DIGEST_CHANNELS"
	parseFailurePolicyVarName = "PARSE_FAILURE_POLICY"
)

// FeedConfig configures the arXiv feed client.
type FeedConfig struct {
	Category   string
	MaxResults int
	BaseURL    string
	Timeout    time.Duration
	Lookback   time.Duration
}

// Config is the complete digest configuration.
type Config struct {
	Feed        FeedConfig
	Classifier  classifier.Config
	ParsePolicy digest.ParseFailurePolicy
	Channels    []notifier.ChannelConfig
	Routes      map[string][]string
	LogLevel    string
}

// Load reads and validates the configuration through getenv. A nil getenv
// reads the process environment. Every problem found is reported in a
// single joined error.
func Load(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	l := pkgconfig.NewStrictLoader(getenv)

	cfg := &Config{
		Feed: FeedConfig{
			Category:   l.String("FEED_CATEGORY", DefaultCategory),
			MaxResults: l.Int("FEED_MAX_RESULTS", DefaultMaxResults, nil).Value,
			BaseURL:    l.String("FEED_BASE_URL", feed.DefaultBaseURL),
			Timeout:    l.Duration("FEED_TIMEOUT", DefaultFeedTimeout, nil).Value,
			Lookback:   l.Duration("FEED_LOOKBACK", 0, nil).Value,
		},
		ParsePolicy: digest.ParseFailurePolicy(strings.ToLower(l.String(parseFailurePolicyVarName, string(digest.PolicyAbort)))),
		LogLevel:    l.String("LOG_LEVEL", "info"),
	}

	if cfg.Feed.MaxResults < 1 || cfg.Feed.MaxResults > MaxFeedResults {
		l.Fail("FEED_MAX_RESULTS must be between 1 and %d, got %d", MaxFeedResults, cfg.Feed.MaxResults)
	}
	if cfg.Feed.Timeout <= 0 {
		l.Fail("FEED_TIMEOUT must be positive")
	}
	if cfg.Feed.Lookback < 0 {
		l.Fail("FEED_LOOKBACK must not be negative")
	}
	switch cfg.ParsePolicy {
	case digest.PolicyAbort, digest.PolicySkip:
	default:
		l.Fail("%s must be abort or skip, got %q", parseFailurePolicyVarName, cfg.ParsePolicy)
	}

	cfg.Classifier = loadClassifier(l)

	channels, routes, err := parseChannels(l.String(channelsVariable, ""), getenv)
	if err != nil {
		l.Fail("%w", err)
	}
	cfg.Channels = channels
	cfg.Routes = routes

	if err := l.Err(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadClassifier(l *pkgconfig.Loader) classifier.Config {
	provider := strings.ToLower(l.String("CLASSIFIER_TYPE", classifier.ProviderOpenAI))

	var apiKey string
	switch provider {
	case classifier.ProviderOpenAI:
		apiKey = l.String("OPENAI_API_KEY", "")
		if apiKey == "" {
			l.Fail("OPENAI_API_KEY is required when CLASSIFIER_TYPE=openai")
		}
	case classifier.ProviderClaude:
		apiKey = l.String("ANTHROPIC_API_KEY", "")
		if apiKey == "" {
			l.Fail("ANTHROPIC_API_KEY is required when CLASSIFIER_TYPE=claude")
		}
	default:
		l.Fail("CLASSIFIER_TYPE must be openai or claude, got %q", provider)
	}

	cfg := classifier.Config{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       l.String("CLASSIFIER_MODEL", classifier.DefaultModel(provider)),
		BaseURL:     l.String("CLASSIFIER_BASE_URL", ""),
		MaxTokens:   l.Int("CLASSIFIER_MAX_TOKENS", DefaultClassifierTokens, nil).Value,
		Temperature: float32(l.Float("CLASSIFIER_TEMPERATURE", 0, nil).Value),
		Timeout:     l.Duration("CLASSIFIER_TIMEOUT", DefaultClassifierTimeout, nil).Value,
	}

	if cfg.MaxTokens <= 0 {
		l.Fail("CLASSIFIER_MAX_TOKENS must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature < 0 || cfg.Temperature > maxClassifierTemperature {
		l.Fail("CLASSIFIER_TEMPERATURE must be between 0 and 2, got %v", cfg.Temperature)
	}
	if cfg.Timeout <= 0 {
		l.Fail("CLASSIFIER_TIMEOUT must be positive")
	}
	return cfg
}
