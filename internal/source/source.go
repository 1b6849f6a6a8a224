package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/sitesearch-mcp/internal/cms"
	"github.com/dshills/sitesearch-mcp/internal/content"
	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// Source supplies the records of one content origin
type Source interface {
	Name() string
	Records(ctx context.Context) ([]types.ContentRecord, error)
}

// Markdown serves one content type directory
type Markdown struct {
	Loader *content.Loader
	Kind   types.ContentKind
}

// NewMarkdown creates a source over <dir>/<kind>
func NewMarkdown(dir string, kind types.ContentKind) *Markdown {
	return &Markdown{Loader: content.NewLoader(dir), Kind: kind}
}

func (m *Markdown) Name() string {
	return "markdown:" + string(m.Kind)
}

func (m *Markdown) Records(ctx context.Context) ([]types.ContentRecord, error) {
	posts, err := m.Loader.LoadAll(ctx, m.Kind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", m.Kind, err)
	}
	return content.Records(posts), nil
}

// CMS serves published blog posts from the headless CMS
type CMS struct {
	Client *cms.Client
}

// NewCMS wraps client
func NewCMS(client *cms.Client) *CMS {
	return &CMS{Client: client}
}

func (c *CMS) Name() string {
	return "cms:blog"
}

func (c *CMS) Records(ctx context.Context) ([]types.ContentRecord, error) {
	return c.Client.Records(ctx)
}

// ErrDegraded accompanies a best-effort record list from a Fallback whose
// sources all failed. The list is usable but not authoritative: callers
// must not delete stored content that is missing from it.
var ErrDegraded = errors.New("source degraded")

// Fallback reads Primary and falls back to Secondary when Primary fails or
// returns nothing. When no source produced usable content after a failure,
// Records returns an empty list with an error wrapping ErrDegraded.
type Fallback struct {
	Label     string // Optional name override
	Primary   Source
	Secondary Source
	Logger    *slog.Logger
}

func (f *Fallback) Name() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Primary.Name()
}

func (f *Fallback) Records(ctx context.Context) ([]types.ContentRecord, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var primaryErr error
	records, err := f.Primary.Records(ctx)
	switch {
	case errors.Is(err, cms.ErrNotConfigured):
		logger.Debug("primary source not configured", "source", f.Primary.Name())
	case err != nil:
		primaryErr = fmt.Errorf("%s: %w", f.Primary.Name(), err)
		logger.Warn("primary source failed, using fallback",
			"source", f.Primary.Name(),
			"error", err)
	case len(records) > 0:
		return records, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if f.Secondary == nil {
		if primaryErr != nil {
			return []types.ContentRecord{}, fmt.Errorf("%w: %w", ErrDegraded, primaryErr)
		}
		return []types.ContentRecord{}, nil
	}

	records, err = f.Secondary.Records(ctx)
	if err != nil {
		logger.Warn("fallback source failed",
			"source", f.Secondary.Name(),
			"error", err)
		return []types.ContentRecord{}, errors.Join(
			fmt.Errorf("%w: %s: %w", ErrDegraded, f.Secondary.Name(), err), primaryErr)
	}
	if len(records) == 0 && primaryErr != nil {
		return []types.ContentRecord{}, fmt.Errorf("%w: %s empty after %w", ErrDegraded, f.Secondary.Name(), primaryErr)
	}
	return records, nil
}

// Multi concatenates several sources in order. The first error aborts.
type Multi struct {
	Label   string
	Sources []Source
}

func (m *Multi) Name() string {
	if m.Label != "" {
		return m.Label
	}
	return "multi"
}

func (m *Multi) Records(ctx context.Context) ([]types.ContentRecord, error) {
	var all []types.ContentRecord
	for _, s := range m.Sources {
		records, err := s.Records(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Name(), err)
		}
		all = append(all, records...)
	}
	if all == nil {
		all = []types.ContentRecord{}
	}
	return all, nil
}

// Static serves a fixed record list
type Static struct {
	Label string
	List  []types.ContentRecord
}

func (s *Static) Name() string {
	return s.Label
}

func (s *Static) Records(ctx context.Context) ([]types.ContentRecord, error) {
	out := make([]types.ContentRecord, len(s.List))
	for i := range s.List {
		out[i] = s.List[i].Clone()
	}
	return out, nil
}

// Named gives a source a different name, e.g. to key catalog rows by site
// section instead of origin
type Named struct {
	Label string
	Source
}

func (n *Named) Name() string {
	return n.Label
}
