package notifier

import (
	"context"
	"net/http"
	"strings"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/utils/text"
)

// DiscordNotifier sends paper notifications to Discord via webhook.
type DiscordNotifier struct {
	config     ChannelConfig
	httpClient *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier posting to config.WebhookURL.
func NewDiscordNotifier(config ChannelConfig, httpClient *http.Client) *DiscordNotifier {
	return &DiscordNotifier{
		config:     config,
		httpClient: httpClient,
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	URL         string              `json:"url"`
	Color       int                 `json:"color"`
	Author      *DiscordEmbedAuthor `json:"author,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
}

// DiscordEmbedAuthor represents the author line of a Discord embed.
type DiscordEmbedAuthor struct {
	Name string `json:"name"`
}

// DiscordEmbedField represents a name/value field of a Discord embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord embed limits
	maxEmbedTitleLength       = 256
	maxEmbedDescriptionLength = 4096
	maxEmbedFieldValueLength  = 1024
	maxEmbedFooterLength      = 2048
	maxEmbedAuthorLength      = 256

	// embedColor is Discord blue (0x3498DB).
	embedColor = 3447003
)

// buildEmbedPayload creates a Discord webhook payload from a structured message.
// Title, link and abstract are carried verbatim unless they exceed Discord's hard limits.
func (d *DiscordNotifier) buildEmbedPayload(msg entity.StructuredMessage) DiscordWebhookPayload {
	rel := msg.Relation

	fields := []DiscordEmbedField{
		{Name: "Category", Value: fieldValue(strings.Join(rel.Categories, ", ")), Inline: true},
		{Name: "Related", Value: fieldValue(strings.Join(rel.RelatedFields, ", ")), Inline: true},
	}
	if rel.Summary != "" {
		fields = append(fields, DiscordEmbedField{Name: "Summary", Value: fieldValue(rel.Summary)})
	}

	embed := DiscordEmbed{
		Title:       text.Truncate(msg.Title, maxEmbedTitleLength, truncationSuffix),
		Description: text.Truncate(msg.Abstract, maxEmbedDescriptionLength, truncationSuffix),
		URL:         msg.Link,
		Color:       embedColor,
		Fields:      fields,
		Footer: DiscordEmbedFooter{
			Text: text.Truncate(rel.Explanation, maxEmbedFooterLength, truncationSuffix),
		},
	}
	if len(msg.Authors) > 0 {
		embed.Author = &DiscordEmbedAuthor{
			Name: text.Truncate(strings.Join(msg.Authors, ", "), maxEmbedAuthorLength, truncationSuffix),
		}
	}

	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// fieldValue keeps field values within limits; Discord rejects empty values.
func fieldValue(s string) string {
	if s == "" {
		return "-"
	}
	return text.Truncate(s, maxEmbedFieldValueLength, truncationSuffix)
}

// Post sends msg to the Discord webhook.
func (d *DiscordNotifier) Post(ctx context.Context, msg entity.StructuredMessage) (int, error) {
	return postJSON(ctx, d.httpClient, d.config.Name, d.config.WebhookURL, d.buildEmbedPayload(msg))
}
