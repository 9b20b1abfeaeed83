package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/infra/notifier"

	"gopkg.in/yaml.v3"
)

// channelsDocument is the DIGEST_CHANNELS YAML document:
//
//	channels:
//	  hw:
//	    kind: slack
//	    webhook_url: ${SLACK_HW_WEBHOOK}
//	    timeout: 10s
//	routes:
//	  hardware: [hw]
type channelsDocument struct {
	Channels map[string]channelEntry `yaml:"channels"`
	Routes   map[string][]string     `yaml:"routes"`
}

type channelEntry struct {
	Kind          string `yaml:"kind"`
	WebhookURL    string `yaml:"webhook_url"`
	Timeout       string `yaml:"timeout"`
	AllowInsecure bool   `yaml:"allow_insecure"`
}

// parseChannels decodes and validates the channel table. ${VAR} references
// in webhook_url are expanded through getenv so secrets can live in their
// own variables.
func parseChannels(raw string, getenv func(string) string) ([]notifier.ChannelConfig, map[string][]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, fmt.Errorf("%s is required", channelsVariable)
	}

	var doc channelsDocument
	dec := yaml.NewDecoder(strings.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: parse yaml: %w", channelsVariable, err)
	}

	var errs []error
	if len(doc.Channels) == 0 {
		errs = append(errs, fmt.Errorf("%s: at least one channel is required", channelsVariable))
	}
	if len(doc.Routes) == 0 {
		errs = append(errs, fmt.Errorf("%s: at least one route is required", channelsVariable))
	}

	names := make([]string, 0, len(doc.Channels))
	for name := range doc.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	channels := make([]notifier.ChannelConfig, 0, len(names))
	for _, name := range names {
		entry := doc.Channels[name]
		ch := notifier.ChannelConfig{
			Name:       name,
			Kind:       strings.ToLower(strings.TrimSpace(entry.Kind)),
			WebhookURL: strings.TrimSpace(os.Expand(entry.WebhookURL, getenv)),
			Timeout:    DefaultChannelTimeout,
		}

		if entry.Timeout != "" {
			d, err := time.ParseDuration(entry.Timeout)
			if err != nil || d <= 0 {
				errs = append(errs, fmt.Errorf("channel %q: invalid timeout %q", name, entry.Timeout))
			} else {
				ch.Timeout = d
			}
		}

		switch ch.Kind {
		case notifier.KindSlack, notifier.KindDiscord:
			if err := entity.ValidateWebhookURL(ch.WebhookURL, entry.AllowInsecure); err != nil {
				errs = append(errs, fmt.Errorf("channel %q: %w", name, err))
			}
		case notifier.KindLog:
		default:
			errs = append(errs, fmt.Errorf("channel %q: unknown kind %q (expected slack, discord or log)", name, entry.Kind))
		}

		channels = append(channels, ch)
	}

	routes := make(map[string][]string, len(doc.Routes))
	categories := make([]string, 0, len(doc.Routes))
	for category := range doc.Routes {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		targets := doc.Routes[category]
		key := strings.ToLower(strings.TrimSpace(category))
		if key == "" {
			errs = append(errs, fmt.Errorf("route with empty category"))
			continue
		}
		if _, dup := routes[key]; dup {
			errs = append(errs, fmt.Errorf("route %q: defined more than once", key))
			continue
		}
		if len(targets) == 0 {
			errs = append(errs, fmt.Errorf("route %q: no channels", key))
			continue
		}
		for _, target := range targets {
			if _, ok := doc.Channels[target]; !ok {
				errs = append(errs, fmt.Errorf("route %q: unknown channel %q", key, target))
			}
		}
		routes[key] = targets
	}

	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return channels, routes, nil
}
