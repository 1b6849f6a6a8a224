package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/sitesearch-mcp/internal/cms"
	"github.com/dshills/sitesearch-mcp/internal/content"
	"github.com/dshills/sitesearch-mcp/internal/seo"
	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// postView is the get_post response
type postView struct {
	Slug            string             `json:"slug"`
	Type            types.ContentKind  `json:"type"`
	Origin          string             `json:"origin"` // cms or markdown
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Date            string             `json:"date,omitempty"`
	Author          string             `json:"author,omitempty"`
	Tags            []string           `json:"tags"`
	URL             string             `json:"url"`
	ReadingTime     string             `json:"reading_time"`
	WordCount       int                `json:"word_count"`
	TableOfContents []content.Heading  `json:"table_of_contents"`
	Related         []relatedView      `json:"related"`
	Metadata        seo.Metadata       `json:"metadata"`
	StructuredData  seo.StructuredData `json:"structured_data"`
	Content         string             `json:"content,omitempty"`

	published time.Time
	image     string
}

type relatedView struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// handleGetPost handles the get_post tool invocation
func (s *Server) handleGetPost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	slug, ok := args["slug"].(string)
	slug = strings.TrimSuffix(strings.TrimSpace(slug), content.PostExtension)
	if !ok || slug == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "slug parameter is required", map[string]interface{}{
			"param":  "slug",
			"reason": "missing or empty",
		})
	}

	kind := types.ContentKind(getStringDefault(args, "type", string(types.KindBlog)))
	if err := types.ValidateKind(kind); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid type", map[string]interface{}{
			"param":   "type",
			"value":   kind,
			"allowed": []string{string(types.KindBlog), string(types.KindTutorials), string(types.KindDocs)},
		})
	}
	includeContent := getBoolDefault(args, "include_content", false)

	var view *postView
	var body string
	var err error

	if kind == types.KindBlog && s.cms.Configured() {
		view, body, err = s.cmsPost(ctx, slug)
		if err != nil && !isCMSMiss(err) {
			s.logger.Warn("cms lookup failed, trying markdown", "slug", slug, "error", err)
		}
	}

	if view == nil {
		view, body, err = s.markdownPost(ctx, kind, slug)
		if errors.Is(err, content.ErrPostNotFound) {
			return nil, newMCPError(ErrorCodePostNotFound, "post not found", map[string]interface{}{
				"slug": slug,
				"type": kind,
			})
		}
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to load post", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	s.decorate(view)
	if includeContent {
		view.Content = body
	}

	return mcp.NewToolResultText(formatJSON(view)), nil
}

// cmsPost loads a blog post from the CMS. Related posts come from the
// catalog.
func (s *Server) cmsPost(ctx context.Context, slug string) (*postView, string, error) {
	post, err := s.cms.PostBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}

	rec := post.Record()
	estimate := content.EstimateReadingTime(rec.Body)
	readingTime := post.ReadingTime
	if readingTime == "" {
		readingTime = estimate.Text
	}

	toc := make([]content.Heading, 0)
	for _, h := range cms.Headings(post.Body) {
		toc = append(toc, content.Heading{Level: h.Level, Text: h.Text, ID: content.HeadingID(h.Text)})
	}

	view := &postView{
		Slug:            rec.Slug,
		Type:            types.KindBlog,
		Origin:          "cms",
		Title:           rec.Title,
		Description:     rec.Description,
		Tags:            rec.Tags,
		URL:             rec.URL,
		ReadingTime:     readingTime,
		WordCount:       estimate.Words,
		TableOfContents: toc,
		Related:         make([]relatedView, 0),
		published:       rec.PublishedAt,
	}
	if post.Author != nil {
		view.Author = post.Author.Name
	}

	if records, err := s.indexer.Records(ctx); err == nil {
		view.Related = relatedFromRecords(records, rec, content.DefaultRelatedLimit)
	} else {
		s.logger.Warn("related posts unavailable", "slug", slug, "error", err)
	}

	return view, rec.Body, nil
}

// markdownPost loads a post from the content directory
func (s *Server) markdownPost(ctx context.Context, kind types.ContentKind, slug string) (*postView, string, error) {
	post, err := s.loader.LoadPost(kind, slug)
	if err != nil {
		return nil, "", err
	}

	tags := post.Frontmatter.Tags
	if tags == nil {
		tags = []string{}
	}

	view := &postView{
		Slug:            post.Slug,
		Type:            kind,
		Origin:          "markdown",
		Title:           post.Frontmatter.Title,
		Description:     post.Frontmatter.Description,
		Author:          post.Frontmatter.Author,
		Tags:            tags,
		URL:             post.Record().URL,
		ReadingTime:     post.ReadingTime.Text,
		WordCount:       post.ReadingTime.Words,
		TableOfContents: content.TableOfContents(post.Content),
		Related:         make([]relatedView, 0),
		published:       post.Date,
		image:           post.Frontmatter.Image,
	}

	all, err := s.loader.LoadAll(ctx, kind)
	if err != nil {
		s.logger.Warn("related posts unavailable", "slug", slug, "error", err)
	} else {
		for _, p := range content.Related(all, slug, content.DefaultRelatedLimit) {
			rec := p.Record()
			view.Related = append(view.Related, relatedView{Slug: rec.Slug, Title: rec.Title, URL: rec.URL})
		}
	}

	return view, post.Content, nil
}

// decorate fills the date and SEO fields
func (s *Server) decorate(view *postView) {
	if !view.published.IsZero() {
		view.Date = view.published.Format("2006-01-02")
	}

	var authors []string
	if view.Author != "" {
		authors = []string{view.Author}
	}

	view.Metadata = s.site.GenerateMetadata(seo.Page{
		Title:         view.Title,
		Description:   view.Description,
		Path:          view.URL,
		Type:          "article",
		PublishedTime: view.published,
		Image:         view.image,
		Authors:       authors,
		Tags:          view.Tags,
	})

	section := sectionTitle(view.Type)
	view.StructuredData = s.site.GenerateStructuredData(seo.Entity{
		Type:          "BlogPosting",
		Name:          view.Title,
		Description:   view.Description,
		URL:           s.site.Absolute(view.URL),
		Author:        view.Author,
		DatePublished: view.published,
		Image:         view.image,
		Breadcrumbs: []seo.Breadcrumb{
			{Name: "Home", URL: s.site.URL},
			{Name: section, URL: s.site.Absolute("/" + string(view.Type))},
			{Name: view.Title, URL: s.site.Absolute(view.URL)},
		},
	})
}

func sectionTitle(kind types.ContentKind) string {
	switch kind {
	case types.KindBlog:
		return "Blog"
	case types.KindTutorials:
		return "Tutorials"
	default:
		return "Documentation"
	}
}

// relatedFromRecords picks up to limit records of the same kind sharing a
// tag with rec, in catalog order
func relatedFromRecords(records []types.ContentRecord, rec types.ContentRecord, limit int) []relatedView {
	tags := make(map[string]struct{}, len(rec.Tags))
	for _, tag := range rec.Tags {
		tags[tag] = struct{}{}
	}

	related := make([]relatedView, 0, limit)
	for _, r := range records {
		if r.Kind != rec.Kind || r.Slug == rec.Slug {
			continue
		}
		for _, tag := range r.Tags {
			if _, ok := tags[tag]; ok {
				related = append(related, relatedView{Slug: r.Slug, Title: r.Title, URL: r.URL})
				break
			}
		}
		if len(related) == limit {
			break
		}
	}
	return related
}

// handleGetSitemap handles the get_sitemap tool invocation
func (s *Server) handleGetSitemap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	format := getStringDefault(args, "format", "json")
	if format != "json" && format != "xml" {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid format", map[string]interface{}{
			"param":   "format",
			"value":   format,
			"allowed": []string{"json", "xml"},
		})
	}

	records, err := s.indexer.Records(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list documents", map[string]interface{}{
			"error": err.Error(),
		})
	}
	entries := seo.GenerateSitemap(records)

	if format == "xml" {
		out, err := s.site.SitemapXML(entries)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to render sitemap", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return mcp.NewToolResultText(string(out)), nil
	}

	response := map[string]interface{}{
		"base_url": s.site.URL,
		"entries":  entries,
		"count":    len(entries),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}
