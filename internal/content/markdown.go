package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// PostExtension is the file suffix of loadable posts
const PostExtension = ".mdx"

// DefaultRelatedLimit caps Related when no limit is given
const DefaultRelatedLimit = 3

var (
	// ErrPostNotFound is returned when no file exists for a slug
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidFrontmatter is returned when a post header is not valid YAML
	ErrInvalidFrontmatter = errors.New("invalid front matter")
)

// recordNamespace seeds the name-based UUIDs of markdown records
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sitesearch-mcp/content"))

// Post is a markdown file with its parsed header
type Post struct {
	Slug        string
	Type        types.ContentKind
	Frontmatter Frontmatter
	Date        time.Time // Parsed Frontmatter.Date, zero when absent
	Content     string
	ReadingTime ReadingTime
}

// Record converts the post into a searchable record
func (p *Post) Record() types.ContentRecord {
	tags := make([]string, len(p.Frontmatter.Tags))
	copy(tags, p.Frontmatter.Tags)

	return types.ContentRecord{
		ID:          RecordID(p.Type, p.Slug),
		Slug:        p.Slug,
		Kind:        p.Type,
		URL:         "/" + string(p.Type) + "/" + p.Slug,
		Title:       p.Frontmatter.Title,
		Description: p.Frontmatter.Description,
		Tags:        tags,
		Body:        p.Content,
		PublishedAt: p.Date,
	}
}

// RecordID returns the stable ID of the markdown record for type/slug
func RecordID(kind types.ContentKind, slug string) string {
	return uuid.NewSHA1(recordNamespace, []byte(string(kind)+"/"+slug)).String()
}

// Loader reads posts from <Dir>/<type>/<slug>.mdx
type Loader struct {
	Dir     string
	Workers int // Concurrent file reads in LoadAll (default: 8)
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, Workers: 8}
}

// LoadPost reads one post. A trailing .mdx on slug is ignored.
func (l *Loader) LoadPost(kind types.ContentKind, slug string) (*Post, error) {
	realSlug := strings.TrimSuffix(slug, PostExtension)
	if realSlug == "" || strings.ContainsAny(realSlug, `/\`) || realSlug == "." || realSlug == ".." {
		return nil, fmt.Errorf("%w: %q", ErrPostNotFound, slug)
	}

	fullPath := filepath.Join(l.Dir, string(kind), realSlug+PostExtension)
	src, err := os.ReadFile(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrPostNotFound, kind, realSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}

	fm, body, err := parseFrontmatter(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fullPath, err)
	}

	return &Post{
		Slug:        realSlug,
		Type:        kind,
		Frontmatter: fm,
		Date:        fm.ParsedDate(),
		Content:     body,
		ReadingTime: EstimateReadingTime(body),
	}, nil
}

// Slugs lists the post slugs of a content type in file-name order. A
// missing directory has no slugs.
func (l *Loader) Slugs(kind types.ContentKind) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.Dir, string(kind)))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s posts: %w", kind, err)
	}

	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PostExtension) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(entry.Name(), PostExtension))
	}
	return slugs, nil
}

// LoadAll reads every post of a content type, newest first. Posts without a
// date sort after dated ones and keep file-name order among themselves.
func (l *Loader) LoadAll(ctx context.Context, kind types.ContentKind) ([]*Post, error) {
	slugs, err := l.Slugs(kind)
	if err != nil {
		return nil, err
	}

	workers := l.Workers
	if workers <= 0 {
		workers = 8
	}

	posts := make([]*Post, len(slugs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, slug := range slugs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			post, err := l.LoadPost(kind, slug)
			if err != nil {
				return err
			}
			posts[i] = post
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByDate(posts)
	return posts, nil
}

// SortByDate orders posts newest first; undated posts go last
func SortByDate(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Date, posts[j].Date
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}

// Related returns up to limit posts sharing at least one tag with the post
// identified by slug, in the order of posts. The post itself is excluded.
func Related(posts []*Post, slug string, limit int) []*Post {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	var current *Post
	for _, p := range posts {
		if p.Slug == slug {
			current = p
			break
		}
	}
	if current == nil {
		return []*Post{}
	}

	tags := make(map[string]struct{}, len(current.Frontmatter.Tags))
	for _, tag := range current.Frontmatter.Tags {
		tags[tag] = struct{}{}
	}

	related := make([]*Post, 0, limit)
	for _, p := range posts {
		if p.Slug == slug {
			continue
		}
		if sharesTag(p.Frontmatter.Tags, tags) {
			related = append(related, p)
			if len(related) == limit {
				break
			}
		}
	}
	return related
}

func sharesTag(candidates []string, tags map[string]struct{}) bool {
	for _, tag := range candidates {
		if _, ok := tags[tag]; ok {
			return true
		}
	}
	return false
}

// Records converts posts to records, preserving order
func Records(posts []*Post) []types.ContentRecord {
	records := make([]types.ContentRecord, len(posts))
	for i, p := range posts {
		records[i] = p.Record()
	}
	return records
}
