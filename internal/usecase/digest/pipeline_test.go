package digest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"arxiv-digest/internal/domain/entity"
	"arxiv-digest/internal/infra/classifier"
	"arxiv-digest/internal/infra/feed"
	"arxiv-digest/internal/infra/notifier"
	"arxiv-digest/internal/usecase/digest"
	"arxiv-digest/internal/usecase/relation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>ArXiv Query</title>
  <id>http://arxiv.org/api/query</id>
  <updated>2023-01-03T00:00:00Z</updated>
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <published>2023-01-02T18:00:00Z</published>
    <updated>2023-01-02T18:00:00Z</updated>
    <title>Toy Paper</title>
    <summary>A study of X.</summary>
    <author><name>Alice Example</name></author>
    <arxiv:primary_category term="quant-ph" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

const toyReply = "CATEGORY: hardware\nEXPLANATION: relevant to superconducting qubits\nRELATED: qec, control"

// webhookRecorder captures raw webhook bodies.
type webhookRecorder struct {
	mu     sync.Mutex
	bodies [][]byte
	status int
}

func (w *webhookRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.mu.Lock()
		w.bodies = append(w.bodies, raw)
		w.mu.Unlock()
		rw.WriteHeader(w.status)
	}))
	t.Cleanup(server.Close)
	return server
}

func (w *webhookRecorder) snapshot() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]byte(nil), w.bodies...)
}

func TestPipeline_ToyPaper(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cat:quant-ph", r.URL.Query().Get("search_query"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(toyFeed))
	}))
	t.Cleanup(feedServer.Close)

	var (
		promptMu sync.Mutex
		prompts  []string
	)
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		promptMu.Lock()
		for _, m := range req.Messages {
			prompts = append(prompts, m.Content)
		}
		promptMu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		reply, _ := json.Marshal(toyReply)
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":` + string(reply) + `},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(llmServer.Close)

	slackHook := &webhookRecorder{status: http.StatusOK}
	discordHook := &webhookRecorder{status: http.StatusNoContent}
	slackServer := slackHook.server(t)
	discordServer := discordHook.server(t)

	httpClient := &http.Client{Timeout: 5 * time.Second}
	arxiv := feed.NewArxivClient(httpClient, feed.Config{BaseURL: feedServer.URL})
	llm, err := classifier.New(classifier.Config{
		Provider:  classifier.ProviderOpenAI,
		APIKey:    "sk-test-key-1234567890",
		BaseURL:   llmServer.URL + "/v1",
		MaxTokens: 1000,
		Timeout:   5 * time.Second,
	}, httpClient)
	require.NoError(t, err)

	router := digest.NewRouter(map[string][]string{"hardware": {"hw-slack", "hw-discord"}})
	channels := map[string]digest.Notifier{
		"hw-slack":   notifier.NewSlackNotifier(notifier.ChannelConfig{Name: "hw-slack", WebhookURL: slackServer.URL}, httpClient),
		"hw-discord": notifier.NewDiscordNotifier(notifier.ChannelConfig{Name: "hw-discord", WebhookURL: discordServer.URL}, httpClient),
	}

	svc, err := digest.NewService(arxiv, relation.NewParser(llm, router.Categories()), router, channels, digest.Config{
		Category:   "quant-ph",
		MaxResults: 5,
	})
	require.NoError(t, err)

	status, err := digest.Invoke(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, digest.StatusOK, status.Status)
	assert.Equal(t, 1, status.Fetched)
	assert.Equal(t, 2, status.Posted)

	promptMu.Lock()
	joined := strings.Join(prompts, "\n")
	promptMu.Unlock()
	assert.Contains(t, joined, "Toy Paper")
	assert.Contains(t, joined, "A study of X.")

	discordBodies := discordHook.snapshot()
	require.Len(t, discordBodies, 1)
	var embed notifier.DiscordWebhookPayload
	require.NoError(t, json.Unmarshal(discordBodies[0], &embed))
	require.Len(t, embed.Embeds, 1)
	assert.Equal(t, "Toy Paper", embed.Embeds[0].Title)
	assert.Equal(t, "https://arxiv.org/abs/2301.00001", embed.Embeds[0].URL)
	assert.Equal(t, "A study of X.", embed.Embeds[0].Description)
	assert.Equal(t, "relevant to superconducting qubits", embed.Embeds[0].Footer.Text)

	slackBodies := slackHook.snapshot()
	require.Len(t, slackBodies, 1)
	slackBody := string(slackBodies[0])
	assert.Contains(t, slackBody, "Toy Paper")
	assert.Contains(t, slackBody, "https://arxiv.org/abs/2301.00001")
	assert.Contains(t, slackBody, "relevant to superconducting qubits")
}

func TestPipeline_WebhookRejectionFailsRun(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(toyFeed))
	}))
	t.Cleanup(feedServer.Close)

	hook := &webhookRecorder{status: http.StatusForbidden}
	hookServer := hook.server(t)

	router := digest.NewRouter(map[string][]string{"hardware": {"hw"}})
	channels := map[string]digest.Notifier{
		"hw": notifier.NewSlackNotifier(notifier.ChannelConfig{Name: "hw", WebhookURL: hookServer.URL}, hookServer.Client()),
	}
	svc, err := digest.NewService(
		feed.NewArxivClient(feedServer.Client(), feed.Config{BaseURL: feedServer.URL}),
		staticRelator{},
		router, channels,
		digest.Config{Category: "quant-ph", MaxResults: 5},
	)
	require.NoError(t, err)

	status, err := digest.Invoke(context.Background(), svc)

	require.Error(t, err)
	assert.Equal(t, digest.StatusError, status.Status)
	assert.Equal(t, digest.StateFailed, status.State)
	assert.Len(t, hook.snapshot(), 1, "delivery is attempted exactly once")
}

type staticRelator struct{}

func (staticRelator) Relate(ctx context.Context, title, abstract string) (entity.Relation, error) {
	return relation.Parse(toyReply)
}
