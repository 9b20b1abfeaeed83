// Package digest runs the arXiv digest pipeline: fetch the latest papers,
// classify each one, and post it to every channel its categories route to.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/observability/logging"
	"arxiv-digest/internal/observability/metrics"
	"arxiv-digest/internal/observability/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// PaperSource returns the latest papers of a category, most recent first.
type PaperSource interface {
	Latest(ctx context.Context, category string, max int) ([]entity.Paper, error)
}

// Relator classifies a paper into a Relation.
type Relator interface {
	Relate(ctx context.Context, title, abstract string) (entity.Relation, error)
}

// Notifier posts one message to one channel.
type Notifier interface {
	Post(ctx context.Context, msg entity.StructuredMessage) (int, error)
}

// ParseFailurePolicy decides what a run does with a malformed classifier reply.
type ParseFailurePolicy string

const (
	// PolicyAbort fails the run on the first ParseError.
	PolicyAbort ParseFailurePolicy = "abort"
	// PolicySkip drops the paper and continues.
	PolicySkip ParseFailurePolicy = "skip"
)

// Config holds run parameters.
type Config struct {
	Category    string
	MaxResults  int
	ParsePolicy ParseFailurePolicy
}

// RunStats reports how far a run got.
type RunStats struct {
	RunID         string
	Fetched       int
	Classified    int
	Unrouted      int
	ParseFailures int
	Posted        int
	Duration      time.Duration
	State         State
}

// Service orchestrates one digest run. It holds no state between runs.
type Service struct {
	feed     PaperSource
	relator  Relator
	router   *Router
	channels map[string]Notifier
	config   Config

	newRunID func() string
}

// classified pairs a paper with its relation between the two loops.
type classified struct {
	paper    entity.Paper
	relation entity.Relation
}

// NewService wires the pipeline. Every channel referenced by router must
// have a notifier in channels.
func NewService(feed PaperSource, relator Relator, router *Router, channels map[string]Notifier, config Config) (*Service, error) {
	if feed == nil || relator == nil || router == nil {
		return nil, errors.New("digest: feed, relator and router are required")
	}
	for _, name := range router.ChannelNames() {
		if _, ok := channels[name]; !ok {
			return nil, fmt.Errorf("digest: route references unknown channel %q", name)
		}
	}
	switch config.ParsePolicy {
	case "":
		config.ParsePolicy = PolicyAbort
	case PolicyAbort, PolicySkip:
	default:
		return nil, fmt.Errorf("digest: unknown parse failure policy %q", config.ParsePolicy)
	}

	return &Service{
		feed:     feed,
		relator:  relator,
		router:   router,
		channels: channels,
		config:   config,
		newRunID: func() string { return uuid.New().String() },
	}, nil
}

// Run executes one digest run. On failure the returned stats describe the
// progress made before the error, with State set to StateFailed.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{RunID: s.newRunID(), State: StatePending}

	logger := logging.WithRunID(logging.FromContext(ctx), stats.RunID)
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tracing.StartSpan(ctx, "digest.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("digest.run_id", stats.RunID),
		attribute.String("digest.category", s.config.Category),
	)

	fail := func(err error) (*RunStats, error) {
		logger.ErrorContext(ctx, "digest run failed",
			slog.String("state", string(stats.State)),
			slog.String("error", logging.SanitizeError(err)))
		stats.State = StateFailed
		stats.Duration = time.Since(start)
		tracing.RecordError(span, err)
		metrics.RecordRun(false, stats.Duration)
		return stats, err
	}

	s.transition(ctx, stats, StateFetching)
	papers, err := s.fetch(ctx)
	if err != nil {
		return fail(err)
	}
	stats.Fetched = len(papers)

	s.transition(ctx, stats, StateClassifying)
	results := make([]classified, 0, len(papers))
	for _, paper := range papers {
		rel, err := s.classify(ctx, paper)
		if err != nil {
			if errors.Is(err, entity.ErrParse) && s.config.ParsePolicy == PolicySkip {
				stats.ParseFailures++
				logger.WarnContext(ctx, "skipping paper with malformed classification",
					slog.String("paper_id", paper.ID),
					slog.String("error", err.Error()))
				continue
			}
			return fail(err)
		}
		stats.Classified++
		results = append(results, classified{paper: paper, relation: rel})
	}

	s.transition(ctx, stats, StatePosting)
	for _, item := range results {
		channels := s.router.Channels(item.relation)
		if len(channels) == 0 {
			stats.Unrouted++
			metrics.RecordUnrouted()
			logger.InfoContext(ctx, "paper matched no channel",
				slog.String("paper_id", item.paper.ID),
				slog.Any("categories", item.relation.Categories))
			continue
		}
		for _, channel := range channels {
			msg := entity.NewStructuredMessage(item.paper, item.relation, channel)
			if err := s.post(ctx, msg); err != nil {
				return fail(err)
			}
			stats.Posted++
		}
	}

	s.transition(ctx, stats, StateDone)
	stats.Duration = time.Since(start)
	metrics.RecordRun(true, stats.Duration)
	span.SetAttributes(
		attribute.Int("digest.fetched", stats.Fetched),
		attribute.Int("digest.posted", stats.Posted),
	)

	logger.InfoContext(ctx, "digest run completed",
		slog.Int("fetched", stats.Fetched),
		slog.Int("classified", stats.Classified),
		slog.Int("unrouted", stats.Unrouted),
		slog.Int("parse_failures", stats.ParseFailures),
		slog.Int("posted", stats.Posted),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

func (s *Service) transition(ctx context.Context, stats *RunStats, next State) {
	logging.FromContext(ctx).InfoContext(ctx, "digest state transition",
		slog.String("from", string(stats.State)),
		slog.String("to", string(next)))
	stats.State = next
}

func (s *Service) fetch(ctx context.Context) ([]entity.Paper, error) {
	ctx, span := tracing.StartSpan(ctx, "digest.fetch")
	defer span.End()

	papers, err := s.feed.Latest(ctx, s.config.Category, s.config.MaxResults)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("fetch latest %s papers: %w", s.config.Category, err)
	}

	span.SetAttributes(attribute.Int("digest.papers", len(papers)))
	metrics.RecordPapersFetched(s.config.Category, len(papers))
	return papers, nil
}

func (s *Service) classify(ctx context.Context, paper entity.Paper) (entity.Relation, error) {
	ctx, span := tracing.StartSpan(ctx, "digest.classify")
	defer span.End()
	span.SetAttributes(attribute.String("paper.id", paper.ID))

	rel, err := s.relator.Relate(ctx, paper.Title, paper.Abstract)
	if err != nil {
		tracing.RecordError(span, err)
		if errors.Is(err, entity.ErrParse) {
			metrics.RecordClassification(metrics.OutcomeParseFailure)
		} else {
			metrics.RecordClassification(metrics.OutcomeError)
		}
		return entity.Relation{}, err
	}

	metrics.RecordClassification(metrics.OutcomeClassified)
	return rel, nil
}

func (s *Service) post(ctx context.Context, msg entity.StructuredMessage) error {
	ctx, span := tracing.StartSpan(ctx, "digest.post")
	defer span.End()
	span.SetAttributes(attribute.String("digest.channel", msg.Channel))

	status, err := s.channels[msg.Channel].Post(ctx, msg)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordPost(msg.Channel, metrics.StatusFailure)
		return err
	}

	metrics.RecordPost(msg.Channel, metrics.StatusSuccess)
	return nil
}
