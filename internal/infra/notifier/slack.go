package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/utils/text"
)

// SlackNotifier sends paper notifications to Slack via Incoming Webhook.
type SlackNotifier struct {
	config     ChannelConfig
	httpClient *http.Client
}

// NewSlackNotifier creates a new SlackNotifier posting to config.WebhookURL.
func NewSlackNotifier(config ChannelConfig, httpClient *http.Client) *SlackNotifier {
	return &SlackNotifier{
		config:     config,
		httpClient: httpClient,
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for section)
	Fields   []SlackTextObject `json:"fields,omitempty"`   // Two-column fields (for section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"` // Actual text content
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxFieldTextLength   = 2000
	maxContextTextLength = 2000
	maxFallbackLength    = 150
)

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeSlack escapes the three characters Slack reserves for mrkdwn control sequences.
func escapeSlack(s string) string {
	return slackEscaper.Replace(s)
}

// buildBlockKitPayload creates a Slack webhook payload from a structured message.
//
// Layout:
//   - Section: title linked to the paper
//   - Section fields: categories and related fields
//   - Section: one-sentence summary (when present)
//   - Section: abstract
//   - Context: explanation as a footnote, then authors
func (s *SlackNotifier) buildBlockKitPayload(msg entity.StructuredMessage) SlackWebhookPayload {
	rel := msg.Relation

	blocks := []SlackBlock{
		{
			Type: "section",
			Text: &SlackTextObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*<%s|%s>*", msg.Link, escapeSlack(msg.Title)),
			},
		},
		{
			Type: "section",
			Fields: []SlackTextObject{
				{Type: "mrkdwn", Text: text.Truncate("*Category:*\n"+escapeSlack(strings.Join(rel.Categories, ", ")), maxFieldTextLength, truncationSuffix)},
				{Type: "mrkdwn", Text: text.Truncate("*Related:*\n"+escapeSlack(strings.Join(rel.RelatedFields, ", ")), maxFieldTextLength, truncationSuffix)},
			},
		},
	}

	if rel.Summary != "" {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackTextObject{
				Type: "mrkdwn",
				Text: text.Truncate("*Summary:* "+escapeSlack(rel.Summary), maxSectionTextLength, truncationSuffix),
			},
		})
	}

	blocks = append(blocks, SlackBlock{
		Type: "section",
		Text: &SlackTextObject{
			Type: "mrkdwn",
			Text: text.Truncate(escapeSlack(msg.Abstract), maxSectionTextLength, truncationSuffix),
		},
	})

	footnote := []SlackTextObject{{
		Type: "mrkdwn",
		Text: text.Truncate("_"+escapeSlack(rel.Explanation)+"_", maxContextTextLength, truncationSuffix),
	}}
	if len(msg.Authors) > 0 {
		footnote = append(footnote, SlackTextObject{
			Type: "mrkdwn",
			Text: text.Truncate(escapeSlack(strings.Join(msg.Authors, ", ")), maxContextTextLength, truncationSuffix),
		})
	}
	blocks = append(blocks, SlackBlock{Type: "context", Elements: footnote})

	return SlackWebhookPayload{
		Text:   text.Truncate(escapeSlack(msg.Title), maxFallbackLength, truncationSuffix),
		Blocks: blocks,
	}
}

// Post sends msg to the Slack webhook.
func (s *SlackNotifier) Post(ctx context.Context, msg entity.StructuredMessage) (int, error) {
	return postJSON(ctx, s.httpClient, s.config.Name, s.config.WebhookURL, s.buildBlockKitPayload(msg))
}
