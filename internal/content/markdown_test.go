package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

func writePost(t *testing.T, dir string, kind types.ContentKind, slug, src string) {
	t.Helper()
	typeDir := filepath.Join(dir, string(kind))
	require.NoError(t, os.MkdirAll(typeDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(typeDir, slug+PostExtension), []byte(src), 0644))
}

func setupContentDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writePost(t, dir, types.KindBlog, "theming", `---
title: Theming Your App
description: Customize colors and typography
date: 2024-03-10
tags: [theming, design]
author: Jane
---
# Theming

Use CSS variables to theme components.
`)
	writePost(t, dir, types.KindBlog, "buttons", `---
title: "Button Variants"
description: Primary, secondary and ghost buttons
date: "2024-05-01"
tags:
  - components
  - design
---
## Variants

Buttons come in several variants.
`)
	writePost(t, dir, types.KindBlog, "draft", `---
title: Untitled draft
tags: [misc]
---
Nothing here yet.
`)
	writePost(t, dir, types.KindBlog, "accessibility", `---
title: Accessibility
date: 2023-11-20T09:30:00Z
tags: [a11y]
---
Keyboard navigation matters.
`)

	// Non-post files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "notes.txt"), []byte("ignore"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog", "images"), 0755))

	return dir
}

func TestLoadPost(t *testing.T) {
	dir := setupContentDir(t)
	l := NewLoader(dir)

	post, err := l.LoadPost(types.KindBlog, "theming.mdx")
	require.NoError(t, err)

	assert.Equal(t, "theming", post.Slug)
	assert.Equal(t, types.KindBlog, post.Type)
	assert.Equal(t, "Theming Your App", post.Frontmatter.Title)
	assert.Equal(t, "Customize colors and typography", post.Frontmatter.Description)
	assert.Equal(t, []string{"theming", "design"}, post.Frontmatter.Tags)
	assert.Equal(t, "Jane", post.Frontmatter.Author)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), post.Date)
	assert.True(t, strings.HasPrefix(post.Content, "# Theming"))
	assert.Equal(t, "1 min read", post.ReadingTime.Text)
}

func TestLoadPostNotFound(t *testing.T) {
	l := NewLoader(t.TempDir())

	_, err := l.LoadPost(types.KindBlog, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = l.LoadPost(types.KindBlog, "../secrets")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestLoadPostInvalidFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, types.KindBlog, "broken", "---\ntitle: [unclosed\n---\nbody\n")

	_, err := NewLoader(dir).LoadPost(types.KindBlog, "broken")
	assert.ErrorIs(t, err, ErrInvalidFrontmatter)
}

func TestLoadAllSortsNewestFirst(t *testing.T) {
	dir := setupContentDir(t)
	l := NewLoader(dir)

	posts, err := l.LoadAll(context.Background(), types.KindBlog)
	require.NoError(t, err)
	require.Len(t, posts, 4)

	slugs := make([]string, len(posts))
	for i, p := range posts {
		slugs[i] = p.Slug
	}
	assert.Equal(t, []string{"buttons", "theming", "accessibility", "draft"}, slugs)
}

func TestLoadAllMissingDirectory(t *testing.T) {
	l := NewLoader(t.TempDir())

	posts, err := l.LoadAll(context.Background(), types.KindTutorials)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoadAllPropagatesErrors(t *testing.T) {
	dir := setupContentDir(t)
	writePost(t, dir, types.KindBlog, "broken", "---\ntags: {\n---\n")

	_, err := NewLoader(dir).LoadAll(context.Background(), types.KindBlog)
	assert.ErrorIs(t, err, ErrInvalidFrontmatter)
}

func TestLoadAllCancelledContext(t *testing.T) {
	dir := setupContentDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(dir).LoadAll(ctx, types.KindBlog)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSlugs(t *testing.T) {
	dir := setupContentDir(t)

	slugs, err := NewLoader(dir).Slugs(types.KindBlog)
	require.NoError(t, err)
	assert.Equal(t, []string{"accessibility", "buttons", "draft", "theming"}, slugs)
}

func TestRelated(t *testing.T) {
	dir := setupContentDir(t)
	posts, err := NewLoader(dir).LoadAll(context.Background(), types.KindBlog)
	require.NoError(t, err)

	related := Related(posts, "theming", 0)
	require.Len(t, related, 1)
	assert.Equal(t, "buttons", related[0].Slug)

	assert.Empty(t, Related(posts, "accessibility", 3))
	assert.Empty(t, Related(posts, "unknown", 3))
}

func TestRelatedRespectsLimit(t *testing.T) {
	var posts []*Post
	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		posts = append(posts, &Post{Slug: slug, Frontmatter: Frontmatter{Tags: []string{"shared"}}})
	}

	related := Related(posts, "c", 2)
	require.Len(t, related, 2)
	assert.Equal(t, "a", related[0].Slug)
	assert.Equal(t, "b", related[1].Slug)
}

func TestPostRecord(t *testing.T) {
	dir := setupContentDir(t)
	post, err := NewLoader(dir).LoadPost(types.KindBlog, "buttons")
	require.NoError(t, err)

	rec := post.Record()
	require.NoError(t, rec.Validate())
	assert.Equal(t, RecordID(types.KindBlog, "buttons"), rec.ID)
	assert.Equal(t, "/blog/buttons", rec.URL)
	assert.Equal(t, "Button Variants", rec.Title)
	assert.Equal(t, []string{"components", "design"}, rec.Tags)
	assert.Equal(t, post.Content, rec.Body)

	// IDs are stable across loads and distinct across types
	assert.Equal(t, RecordID(types.KindBlog, "buttons"), RecordID(types.KindBlog, "buttons"))
	assert.NotEqual(t, RecordID(types.KindBlog, "buttons"), RecordID(types.KindTutorials, "buttons"))
}

func TestRecordsPreservesOrder(t *testing.T) {
	posts := []*Post{{Slug: "b", Type: types.KindDocs}, {Slug: "a", Type: types.KindDocs}}
	records := Records(posts)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].Slug)
	assert.Equal(t, "a", records[1].Slug)
}
