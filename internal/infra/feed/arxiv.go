// Package feed provides the client for the arXiv preprint listing API.
// It uses the gofeed library to parse the Atom response.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"arxiv-digest/internal/domain/entity"

	"github.com/mmcdole/gofeed"
)

// DefaultBaseURL is the public arXiv query endpoint.
const DefaultBaseURL = "http://export.arxiv.org/api/query"

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL is the query endpoint. Default: DefaultBaseURL
	BaseURL string

	// Lookback restricts results to papers published within this window before now.
	// Zero disables the filter.
	Lookback time.Duration

	// UserAgent is sent with every feed request.
	UserAgent string
}

// ArxivClient fetches the latest papers of an arXiv category.
type ArxivClient struct {
	client *http.Client
	config Config
	now    func() time.Time
}

// NewArxivClient creates a new ArxivClient with the given HTTP client.
// The HTTP client's timeout is the only timeout applied to feed requests.
func NewArxivClient(client *http.Client, config Config) *ArxivClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = "ArxivDigestBot"
	}
	return &ArxivClient{
		client: client,
		config: config,
		now:    time.Now,
	}
}

// Latest returns at most max papers of the given category, most recent first.
// Every returned paper has a non-empty identifier and title; entries missing
// either are skipped. Transport failures, non-2xx responses, unparsable
// bodies and arXiv error entries are returned as *entity.NetworkError.
func (c *ArxivClient) Latest(ctx context.Context, category string, max int) ([]entity.Paper, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, &entity.ValidationError{Field: "category", Message: "category is required"}
	}
	if max <= 0 {
		return []entity.Paper{}, nil
	}

	queryURL, err := c.queryURL(category, max)
	if err != nil {
		return nil, &entity.NetworkError{URL: c.config.BaseURL, Err: err}
	}

	fp := gofeed.NewParser()
	fp.UserAgent = c.config.UserAgent
	fp.Client = c.client

	start := time.Now()
	parsed, err := fp.ParseURLWithContext(queryURL, ctx)
	if err != nil {
		slog.ErrorContext(ctx, "feed request failed",
			slog.String("category", category),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return nil, &entity.NetworkError{URL: queryURL, Err: err}
	}

	papers := make([]entity.Paper, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if isAPIError(it) {
			slog.ErrorContext(ctx, "feed reported query error",
				slog.String("category", category),
				slog.String("guid", it.GUID))
			return nil, &entity.NetworkError{
				URL: queryURL,
				Err: fmt.Errorf("arxiv api error: %s", strings.TrimSpace(it.Description)),
			}
		}
		paper, err := toPaper(it, category)
		if err != nil {
			slog.WarnContext(ctx, "skipping incomplete feed entry",
				slog.String("guid", it.GUID),
				slog.String("link", it.Link),
				slog.Any("error", err))
			continue
		}
		papers = append(papers, paper)
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].PublishedAt.After(papers[j].PublishedAt)
	})

	if c.config.Lookback > 0 {
		papers = publishedSince(papers, c.now().Add(-c.config.Lookback))
	}

	if len(papers) > max {
		papers = papers[:max]
	}

	slog.InfoContext(ctx, "feed fetched",
		slog.String("category", category),
		slog.Int("entries", len(parsed.Items)),
		slog.Int("papers", len(papers)),
		slog.Duration("duration", time.Since(start)))

	return papers, nil
}

func (c *ArxivClient) queryURL(category string, max int) (string, error) {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("search_query", "cat:"+category)
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(max))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func publishedSince(papers []entity.Paper, cutoff time.Time) []entity.Paper {
	kept := papers[:0]
	for _, p := range papers {
		if !p.PublishedAt.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}

// apiErrorPrefix marks entries the API uses to report a rejected query.
// They arrive with status 200 in an otherwise valid feed.
const apiErrorPrefix = "arxiv.org/api/errors"

func isAPIError(it *gofeed.Item) bool {
	return strings.Contains(it.GUID, apiErrorPrefix) || strings.Contains(it.Link, apiErrorPrefix)
}

var versionSuffix = regexp.MustCompile(`v\d+$`)

// PaperID extracts the arXiv identifier from an entry id such as
// "http://arxiv.org/abs/2301.00001v2". The version suffix is dropped so that
// links always point at the latest version.
func PaperID(entryID string) string {
	entryID = strings.TrimSpace(entryID)
	idx := strings.Index(entryID, "/abs/")
	if idx < 0 {
		return ""
	}
	id := strings.Trim(entryID[idx+len("/abs/"):], "/")
	return versionSuffix.ReplaceAllString(id, "")
}

func toPaper(it *gofeed.Item, requested string) (entity.Paper, error) {
	id := PaperID(it.GUID)
	if id == "" {
		id = PaperID(it.Link)
	}
	title := normalizeSpace(it.Title)

	abstract := it.Description
	if abstract == "" {
		abstract = it.Content
	}

	var publishedAt time.Time
	if it.PublishedParsed != nil {
		publishedAt = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		publishedAt = *it.UpdatedParsed
	}

	authors := make([]string, 0, len(it.Authors))
	for _, a := range it.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
	}

	paper := entity.Paper{
		ID:          id,
		Title:       title,
		Abstract:    PlainText(abstract),
		Category:    primaryCategory(it, requested),
		Link:        entity.PaperLink(id),
		Authors:     authors,
		PublishedAt: publishedAt,
	}
	if err := paper.Validate(); err != nil {
		return entity.Paper{}, err
	}
	return paper, nil
}

// primaryCategory reads <arxiv:primary_category term="..."/>, falling back to
// the first listed category and finally to the requested one.
func primaryCategory(it *gofeed.Item, requested string) string {
	if ext, ok := it.Extensions["arxiv"]; ok {
		for _, e := range ext["primary_category"] {
			if term := e.Attrs["term"]; term != "" {
				return term
			}
		}
	}
	if len(it.Categories) > 0 && it.Categories[0] != "" {
		return it.Categories[0]
	}
	return requested
}
