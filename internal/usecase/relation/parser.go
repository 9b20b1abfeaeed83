// Package relation turns a paper's title and abstract into a structured
// Relation by asking the classifier a fixed question set and parsing the
// line-prefixed reply. Replies that deviate from the format are rejected
// with *entity.ParseError; no field is ever guessed.
package relation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"arxiv-digest/internal/domain/entity"
)

// Reply line keys.
const (
	KeyCategory    = "CATEGORY"
	KeyExplanation = "EXPLANATION"
	KeyRelated     = "RELATED"
	KeySummary     = "SUMMARY"
)

// Completer sends a prompt to the language model and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Parser asks the classifier about a paper and parses the answer.
type Parser struct {
	completer  Completer
	categories []string
}

// NewParser creates a Parser. categories are the tags the model may choose
// from; they come from the routing table so the model is never asked to
// invent tags nobody routes.
func NewParser(completer Completer, categories []string) *Parser {
	return &Parser{
		completer:  completer,
		categories: normalizeCategories(categories),
	}
}

// Relate classifies one paper. Classifier failures are returned unchanged
// (*entity.ServiceError); malformed replies return *entity.ParseError.
func (p *Parser) Relate(ctx context.Context, title, abstract string) (entity.Relation, error) {
	prompt := p.BuildPrompt(title, abstract)

	reply, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return entity.Relation{}, fmt.Errorf("classify %q: %w", title, err)
	}

	rel, err := Parse(reply)
	if err != nil {
		slog.WarnContext(ctx, "classifier reply rejected",
			slog.String("title", title),
			slog.String("reply", reply),
			slog.Any("error", err))
		return entity.Relation{}, err
	}
	return rel, nil
}

// Parse parses a reply of the form
//
//	CATEGORY: tag[, tag...]
//	EXPLANATION: text
//	RELATED: field[, field...]
//	SUMMARY: text            (optional)
//
// Keys are matched case-insensitively and values are trimmed; nothing else is
// altered. Blank lines are ignored. Any other line, a repeated key, an empty
// value or a missing required key is a ParseError.
func Parse(reply string) (entity.Relation, error) {
	fail := func(format string, args ...any) (entity.Relation, error) {
		return entity.Relation{}, &entity.ParseError{Reason: fmt.Sprintf(format, args...), Reply: reply}
	}

	seen := make(map[string]string, 4)
	for _, raw := range strings.Split(reply, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return fail("unexpected line %q", line)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case KeyCategory, KeyExplanation, KeyRelated, KeySummary:
		default:
			return fail("unexpected key %q", key)
		}
		if _, dup := seen[key]; dup {
			return fail("duplicate %s line", key)
		}
		if value == "" {
			return fail("empty %s value", key)
		}
		seen[key] = value
	}

	for _, required := range []string{KeyCategory, KeyExplanation, KeyRelated} {
		if _, ok := seen[required]; !ok {
			return fail("missing %s line", required)
		}
	}

	categories, err := splitList(seen[KeyCategory])
	if err != nil {
		return fail("%s: %v", KeyCategory, err)
	}
	related, err := splitList(seen[KeyRelated])
	if err != nil {
		return fail("%s: %v", KeyRelated, err)
	}

	rel := entity.Relation{
		Categories:    dedupeFold(categories),
		Explanation:   seen[KeyExplanation],
		RelatedFields: related,
		Summary:       seen[KeySummary],
	}
	if err := rel.Validate(); err != nil {
		return fail("%v", err)
	}
	return rel, nil
}

func splitList(value string) ([]string, error) {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty element at position %d", i+1)
		}
		out = append(out, part)
	}
	return out, nil
}

// dedupeFold keeps the first spelling of each tag.
func dedupeFold(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, tag := range tags {
		k := strings.ToLower(tag)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, tag)
	}
	return out
}
