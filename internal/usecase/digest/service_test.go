package digest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"arxiv-digest/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

/* ───────── fakes ───────── */

type fakeFeed struct {
	papers []entity.Paper
	err    error
	calls  int
}

func (f *fakeFeed) Latest(_ context.Context, category string, max int) ([]entity.Paper, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.papers) > max {
		return f.papers[:max], nil
	}
	return f.papers, nil
}

// fakeRelator answers by paper title.
type fakeRelator struct {
	relations map[string]entity.Relation
	errs      map[string]error
	calls     []string
}

func (f *fakeRelator) Relate(_ context.Context, title, _ string) (entity.Relation, error) {
	f.calls = append(f.calls, title)
	if err, ok := f.errs[title]; ok {
		return entity.Relation{}, err
	}
	return f.relations[title], nil
}

type fakeNotifier struct {
	name   string
	posted *[]entity.StructuredMessage
	err    error
}

func (f *fakeNotifier) Post(_ context.Context, msg entity.StructuredMessage) (int, error) {
	if f.err != nil {
		return http.StatusInternalServerError, f.err
	}
	*f.posted = append(*f.posted, msg)
	return http.StatusOK, nil
}

func paper(id, title string) entity.Paper {
	return entity.Paper{
		ID:       id,
		Title:    title,
		Abstract: "Abstract of " + title,
		Category: "quant-ph",
		Link:     entity.PaperLink(id),
	}
}

func relation(categories ...string) entity.Relation {
	return entity.Relation{
		Categories:    categories,
		Explanation:   "because",
		RelatedFields: []string{"qec"},
	}
}

type fixture struct {
	feed    *fakeFeed
	relator *fakeRelator
	posted  []entity.StructuredMessage
	svc     *Service
}

func newFixture(t *testing.T, policy ParseFailurePolicy) *fixture {
	t.Helper()
	f := &fixture{
		feed: &fakeFeed{papers: []entity.Paper{
			paper("2301.00001", "Paper A"),
			paper("2301.00002", "Paper B"),
			paper("2301.00003", "Paper C"),
		}},
		relator: &fakeRelator{
			relations: map[string]entity.Relation{
				"Paper A": relation("hardware"),
				"Paper B": relation("other"),
				"Paper C": relation("theory"),
			},
			errs: map[string]error{},
		},
	}

	router := NewRouter(map[string][]string{
		"hardware": {"hw"},
		"theory":   {"theory"},
	})
	channels := map[string]Notifier{
		"hw":     &fakeNotifier{name: "hw", posted: &f.posted},
		"theory": &fakeNotifier{name: "theory", posted: &f.posted},
	}

	svc, err := NewService(f.feed, f.relator, router, channels, Config{
		Category:    "quant-ph",
		MaxResults:  10,
		ParsePolicy: policy,
	})
	require.NoError(t, err)
	svc.newRunID = func() string { return "run-test" }
	f.svc = svc
	return f
}

/* ───────── tests ───────── */

func TestNewService_Validation(t *testing.T) {
	router := NewRouter(map[string][]string{"hardware": {"hw"}})

	_, err := NewService(&fakeFeed{}, &fakeRelator{}, router, map[string]Notifier{}, Config{})
	assert.ErrorContains(t, err, `unknown channel "hw"`)

	_, err = NewService(&fakeFeed{}, &fakeRelator{}, NewRouter(nil), nil, Config{ParsePolicy: "retry"})
	assert.ErrorContains(t, err, "unknown parse failure policy")

	_, err = NewService(nil, &fakeRelator{}, router, nil, Config{})
	assert.Error(t, err)

	svc, err := NewService(&fakeFeed{}, &fakeRelator{}, NewRouter(nil), nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, svc.config.ParsePolicy)
}

func TestService_Run_UnroutedPaperIsNotPosted(t *testing.T) {
	f := newFixture(t, PolicyAbort)

	stats, err := f.svc.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, f.posted, 2)
	assert.Equal(t, "Paper A", f.posted[0].Title)
	assert.Equal(t, "hw", f.posted[0].Channel)
	assert.Equal(t, "Paper C", f.posted[1].Title)
	assert.Equal(t, "theory", f.posted[1].Channel)

	assert.Equal(t, RunStats{
		RunID:      "run-test",
		Fetched:    3,
		Classified: 3,
		Unrouted:   1,
		Posted:     2,
		Duration:   stats.Duration,
		State:      StateDone,
	}, *stats)
}

func TestService_Run_MultiChannelPaper(t *testing.T) {
	f := newFixture(t, PolicyAbort)
	f.feed.papers = f.feed.papers[:1]
	f.relator.relations["Paper A"] = relation("hardware", "theory", "HARDWARE")

	stats, err := f.svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Posted)
	require.Len(t, f.posted, 2)
	assert.Equal(t, []string{"hw", "theory"}, []string{f.posted[0].Channel, f.posted[1].Channel})
}

func TestService_Run_FeedFailureAborts(t *testing.T) {
	f := newFixture(t, PolicyAbort)
	f.feed.err = &entity.NetworkError{URL: "http://feed", Err: errors.New("connection refused")}

	stats, err := f.svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNetwork)
	assert.Equal(t, StateFailed, stats.State)
	assert.Empty(t, f.relator.calls)
	assert.Empty(t, f.posted)
}

func TestService_Run_ServiceErrorAbortsBeforePosting(t *testing.T) {
	f := newFixture(t, PolicySkip)
	f.relator.errs["Paper B"] = &entity.ServiceError{Provider: "openai", StatusCode: 500, Err: errors.New("boom")}

	stats, err := f.svc.Run(context.Background())

	assert.ErrorIs(t, err, entity.ErrService)
	assert.Equal(t, StateFailed, stats.State)
	assert.Equal(t, []string{"Paper A", "Paper B"}, f.relator.calls)
	assert.Equal(t, 1, stats.Classified)
	assert.Empty(t, f.posted, "nothing is posted when classification fails")
}

func TestService_Run_ParseFailurePolicy(t *testing.T) {
	t.Run("abort", func(t *testing.T) {
		f := newFixture(t, PolicyAbort)
		f.relator.errs["Paper A"] = &entity.ParseError{Reason: "missing CATEGORY"}

		stats, err := f.svc.Run(context.Background())

		assert.ErrorIs(t, err, entity.ErrParse)
		assert.Equal(t, StateFailed, stats.State)
		assert.Equal(t, 0, stats.ParseFailures)
		assert.Empty(t, f.posted)
	})

	t.Run("skip", func(t *testing.T) {
		f := newFixture(t, PolicySkip)
		f.relator.errs["Paper A"] = &entity.ParseError{Reason: "missing CATEGORY"}

		stats, err := f.svc.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, stats.ParseFailures)
		assert.Equal(t, 2, stats.Classified)
		require.Len(t, f.posted, 1)
		assert.Equal(t, "Paper C", f.posted[0].Title)
		for _, msg := range f.posted {
			assert.NotEqual(t, "Paper A", msg.Title, "skipped paper must never be posted")
		}
	})
}

func TestService_Run_DeliveryFailureAbortsRemainingPosts(t *testing.T) {
	f := newFixture(t, PolicyAbort)
	deliveryErr := &entity.DeliveryError{Channel: "hw", StatusCode: 500, Body: "oops"}
	f.svc.channels["hw"] = &fakeNotifier{name: "hw", posted: &f.posted, err: deliveryErr}

	stats, err := f.svc.Run(context.Background())

	assert.ErrorIs(t, err, entity.ErrDelivery)
	assert.Equal(t, StateFailed, stats.State)
	assert.Equal(t, 0, stats.Posted)
	assert.Empty(t, f.posted, "Paper C must not be posted after the failure")
}

func TestService_Run_EmptyFeed(t *testing.T) {
	f := newFixture(t, PolicyAbort)
	f.feed.papers = nil

	stats, err := f.svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, stats.State)
	assert.Zero(t, stats.Fetched)
	assert.Empty(t, f.relator.calls)
}

func TestService_Run_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	f := newFixture(t, PolicyAbort)
	_, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	counts := map[string]int{}
	for _, span := range exporter.GetSpans() {
		counts[span.Name]++
	}
	assert.Equal(t, map[string]int{
		"digest.run":      1,
		"digest.fetch":    1,
		"digest.classify": 3,
		"digest.post":     2,
	}, counts)
}
