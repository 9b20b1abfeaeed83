package notifier

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"arxiv-digest/internal/domain/entity"
)

// LogNotifier writes messages to the structured log instead of posting them.
// It backs channels of kind "log", used for dry runs.
type LogNotifier struct {
	name string
}

// NewLogNotifier creates a LogNotifier for the named channel.
func NewLogNotifier(name string) *LogNotifier {
	return &LogNotifier{name: name}
}

// Post logs msg and reports 200 OK.
func (n *LogNotifier) Post(ctx context.Context, msg entity.StructuredMessage) (int, error) {
	slog.InfoContext(ctx, "dry-run notification",
		slog.String("channel", n.name),
		slog.String("title", msg.Title),
		slog.String("link", msg.Link),
		slog.String("categories", strings.Join(msg.Relation.Categories, ",")),
		slog.String("related", strings.Join(msg.Relation.RelatedFields, ",")))
	return http.StatusOK, nil
}
