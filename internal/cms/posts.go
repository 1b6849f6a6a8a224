package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// GROQ projections
const (
	postFields = `_id,title,slug,excerpt,publishedAt,author->{name},categories[]->{title,slug},body,readingTime`

	postsQuery    = `*[_type == "post" && defined(publishedAt)] | order(publishedAt desc) {` + postFields + `}`
	postBySlugQry = `*[_type == "post" && slug.current == $slug][0]{` + postFields + `}`
	slugsQuery    = `*[_type == "post" && defined(slug.current)]{"slug": slug.current}`
)

// Slug is a slug object as stored by the CMS
type Slug struct {
	Current string `json:"current"`
}

// Author is the dereferenced post author
type Author struct {
	Name string `json:"name"`
}

// Category is a dereferenced post category
type Category struct {
	Title string `json:"title"`
	Slug  Slug   `json:"slug"`
}

// Post is a blog post document
type Post struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Slug        Slug       `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	PublishedAt string     `json:"publishedAt"`
	Author      *Author    `json:"author"`
	Categories  []Category `json:"categories"`
	Body        []Block    `json:"body"`
	ReadingTime string     `json:"readingTime"` // Free-form, e.g. "5 min read"
}

// Published parses PublishedAt, zero when missing or malformed
func (p *Post) Published() time.Time {
	if p.PublishedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, p.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Record converts the post into a searchable blog record. Category titles
// become tags and the portable text body is flattened.
func (p *Post) Record() types.ContentRecord {
	tags := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		if c.Title != "" {
			tags = append(tags, c.Title)
		}
	}

	return types.ContentRecord{
		ID:          p.ID,
		Slug:        p.Slug.Current,
		Kind:        types.KindBlog,
		URL:         "/blog/" + p.Slug.Current,
		Title:       p.Title,
		Description: p.Excerpt,
		Tags:        tags,
		Body:        PlainText(p.Body),
		PublishedAt: p.Published(),
	}
}

// Posts returns published posts, newest first
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.Query(ctx, postsQuery, nil, &posts); err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// PostBySlug returns one post or ErrPostNotFound
func (c *Client) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	var raw json.RawMessage
	if err := c.Query(ctx, postBySlugQry, map[string]interface{}{"slug": slug}, &raw); err != nil {
		return nil, fmt.Errorf("fetch post %s: %w", slug, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}

	var post Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", slug, err)
	}
	return &post, nil
}

// Slugs lists the slug of every post
func (c *Client) Slugs(ctx context.Context) ([]string, error) {
	var rows []struct {
		Slug string `json:"slug"`
	}
	if err := c.Query(ctx, slugsQuery, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch slugs: %w", err)
	}

	slugs := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Slug != "" {
			slugs = append(slugs, r.Slug)
		}
	}
	return slugs, nil
}

// Records fetches every published post as a search record
func (c *Client) Records(ctx context.Context) ([]types.ContentRecord, error) {
	posts, err := c.Posts(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]types.ContentRecord, 0, len(posts))
	for i := range posts {
		rec := posts[i].Record()
		if rec.Slug == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
