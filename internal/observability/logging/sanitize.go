package logging

import (
	"regexp"
)

var (
	// Anthropic keys must be masked before the generic OpenAI pattern.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// Does not match strings that were already masked (contain '*').
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)

	// Slack and Discord webhook paths carry the webhook secret.
	slackWebhookPattern   = regexp.MustCompile(`(hooks\.slack\.com/services)/[A-Za-z0-9/_-]+`)
	discordWebhookPattern = regexp.MustCompile(`(discord(?:app)?\.com/api/webhooks)/[A-Za-z0-9/_-]+`)

	bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]+`)
)

// SanitizeError returns the error message with API keys and webhook secrets masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize masks API keys and webhook secrets in msg.
func Sanitize(msg string) string {
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = slackWebhookPattern.ReplaceAllString(msg, "$1/****")
	msg = discordWebhookPattern.ReplaceAllString(msg, "$1/****")
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
