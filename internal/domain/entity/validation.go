package entity

import (
	"fmt"
	"net/url"
)

// maxURLLength defines the maximum allowed length for URLs.
const maxURLLength = 2048

// ValidateWebhookURL validates the format of a channel webhook URL.
// Webhook URLs embed their credential, so only HTTPS is accepted unless
// allowInsecure is set (used for local endpoints in tests).
// Returns a ValidationError if the URL is invalid or empty.
func ValidateWebhookURL(rawURL string, allowInsecure bool) error {
	if rawURL == "" {
		return &ValidationError{Field: "webhook_url", Message: "webhook URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "webhook_url",
			Message: fmt.Sprintf("webhook URL must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "webhook_url", Message: "webhook URL is malformed"}
	}

	switch parsedURL.Scheme {
	case "https":
	case "http":
		if !allowInsecure {
			return &ValidationError{Field: "webhook_url", Message: "webhook URL must use https"}
		}
	default:
		return &ValidationError{Field: "webhook_url", Message: "webhook URL must use https"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "webhook_url", Message: "webhook URL must have a valid host"}
	}

	return nil
}
