package entity

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		allowInsecure bool
		wantErr       bool
	}{
		{name: "slack webhook", url: "https://hooks.slack.com/services/T000/B000/XXXX"},
		{name: "discord webhook", url: "https://discord.com/api/webhooks/1/abc"},
		{name: "empty", url: "", wantErr: true},
		{name: "http rejected", url: "http://hooks.slack.com/services/x", wantErr: true},
		{name: "http allowed when insecure", url: "http://127.0.0.1:8080/hook", allowInsecure: true},
		{name: "ftp rejected", url: "ftp://example.com/hook", allowInsecure: true, wantErr: true},
		{name: "missing host", url: "https:///services/x", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWebhookURL(tt.url, tt.allowInsecure)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateWebhookURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}
