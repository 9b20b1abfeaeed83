// Package entity defines the domain records that flow through one digest run:
// papers fetched from the feed, the relation derived for each paper by the
// classifier, and the structured message handed to a notification channel.
package entity

import (
	"strings"
	"time"
)

// ArxivAbsBaseURL is the prefix of every paper landing page.
const ArxivAbsBaseURL = "https://arxiv.org/abs/"

// Paper represents one preprint returned by the feed.
// It is immutable once fetched and discarded at the end of the run.
type Paper struct {
	ID          string
	Title       string
	Abstract    string
	Category    string
	Link        string
	Authors     []string
	PublishedAt time.Time
}

// PaperLink builds the landing page URL of the paper with the given identifier.
func PaperLink(id string) string {
	return ArxivAbsBaseURL + strings.TrimSpace(id)
}

// Validate reports whether the paper carries the fields every later stage relies on.
func (p Paper) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return &ValidationError{Field: "id", Message: "identifier is required"}
	}
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}
