package cms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

const postsFixture = `{"result":[
 {"_id":"p1","title":"Building Modals","slug":{"current":"building-modals"},"excerpt":"Accessible dialogs",
  "publishedAt":"2025-03-01T10:00:00Z","author":{"name":"Ada"},
  "categories":[{"title":"React","slug":{"current":"react"}},{"title":"A11y","slug":{"current":"a11y"}}],
  "body":[{"_type":"block","children":[{"_type":"span","text":"Focus "},{"_type":"span","text":"traps."}]},
          {"_type":"image"},
          {"_type":"code","code":"<Dialog />"}],
  "readingTime":"4 min read"},
 {"_id":"p2","title":"No Slug","slug":{"current":""}}
]}`

func testRetry() *RetryConfig {
	return &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		ProjectID:         "abc123",
		Token:             "secret",
		BaseURL:           srv.URL,
		RequestsPerSecond: 1000,
		Retry:             testRetry(),
	})
}

func TestConfigured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{ProjectID: "demo"}.Configured())
	assert.False(t, Config{ProjectID: "  "}.Configured())
	assert.True(t, Config{ProjectID: "abc123"}.Configured())
}

func TestQueryEndpoint(t *testing.T) {
	c := NewClient(Config{ProjectID: "abc123"})
	assert.Equal(t, "https://abc123.api.sanity.io/v2025-09-23/data/query/production", c.endpoint)

	c = NewClient(Config{ProjectID: "abc123", UseCDN: true, Dataset: "staging", APIVersion: "v2024-01-01"})
	assert.Equal(t, "https://abc123.apicdn.sanity.io/v2024-01-01/data/query/staging", c.endpoint)
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient(Config{ProjectID: "demo"})

	_, err := c.Posts(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.PostBySlug(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2025-09-23/data/query/production", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("query"), `order(publishedAt desc)`)
		_, _ = w.Write([]byte(postsFixture))
	})

	posts, err := c.Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	p := posts[0]
	assert.Equal(t, "building-modals", p.Slug.Current)
	assert.Equal(t, "Ada", p.Author.Name)
	assert.Equal(t, "4 min read", p.ReadingTime)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), p.Published())
}

func TestRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(postsFixture))
	})

	records, err := c.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1, "posts without a slug are skipped")

	rec := records[0]
	assert.Equal(t, "p1", rec.ID)
	assert.Equal(t, types.KindBlog, rec.Kind)
	assert.Equal(t, "/blog/building-modals", rec.URL)
	assert.Equal(t, "Accessible dialogs", rec.Description)
	assert.Equal(t, []string{"React", "A11y"}, rec.Tags)
	assert.Equal(t, "Focus traps.\n\n<Dialog />", rec.Body)
}

func TestPostBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("$slug") == `"missing"` {
			_, _ = w.Write([]byte(`{"result":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":{"_id":"p1","title":"Building Modals","slug":{"current":"building-modals"}}}`))
	})

	post, err := c.PostBySlug(context.Background(), "building-modals")
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)

	_, err = c.PostBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSlugs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"slug":"a"},{"slug":""},{"slug":"b"}]}`))
	})

	slugs, err := c.Slugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slugs)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	posts, err := c.Posts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"unexpected token","type":"queryParseError"}}`))
	})

	_, err := c.Posts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.True(t, strings.Contains(err.Error(), "unexpected token"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetriesExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Posts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueryCanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Posts(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		want   string
	}{
		{"empty", nil, ""},
		{"spans joined", []Block{{Type: "block", Children: []Span{{Text: "a"}, {Text: "b"}}}}, "ab"},
		{"blank blocks skipped", []Block{
			{Type: "block", Children: []Span{{Text: "one"}}},
			{Type: "block", Children: []Span{{Text: "  "}}},
			{Type: "block", Children: []Span{{Text: "two"}}},
		}, "one\n\ntwo"},
		{"images skipped", []Block{{Type: "image"}, {Type: "code", Code: "x := 1\n"}}, "x := 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.blocks))
		})
	}
}

func TestHeadings(t *testing.T) {
	blocks := []Block{
		{Type: "block", Style: "h2", Children: []Span{{Text: "Setup"}}},
		{Type: "block", Style: "normal", Children: []Span{{Text: "text"}}},
		{Type: "block", Style: "h3", Children: []Span{{Text: "Install "}, {Text: "deps"}}},
		{Type: "block", Style: "h7", Children: []Span{{Text: "bogus"}}},
		{Type: "block", Style: "blockquote", Children: []Span{{Text: "quote"}}},
		{Type: "code", Style: "h1", Code: "x"},
	}

	assert.Equal(t, []Heading{{Level: 2, Text: "Setup"}, {Level: 3, Text: "Install deps"}}, Headings(blocks))
}
