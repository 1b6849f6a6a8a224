package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sitesearch-mcp/internal/cms"
	"github.com/dshills/sitesearch-mcp/pkg/types"
)

type failingSource struct {
	err error
}

func (f failingSource) Name() string { return "failing" }

func (f failingSource) Records(ctx context.Context) ([]types.ContentRecord, error) {
	return nil, f.err
}

func rec(slug string) types.ContentRecord {
	return types.ContentRecord{ID: slug, Slug: slug, Title: slug}
}

func TestFallbackUsesPrimary(t *testing.T) {
	f := &Fallback{
		Primary:   &Static{Label: "a", List: []types.ContentRecord{rec("one")}},
		Secondary: &Static{Label: "b", List: []types.ContentRecord{rec("two")}},
	}

	records, err := f.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "one", records[0].Slug)
	assert.Equal(t, "a", f.Name())
}

func TestFallbackOnEmptyPrimary(t *testing.T) {
	f := &Fallback{
		Label:     "blog",
		Primary:   &Static{Label: "a"},
		Secondary: &Static{Label: "b", List: []types.ContentRecord{rec("two")}},
	}

	records, err := f.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "two", records[0].Slug)
	assert.Equal(t, "blog", f.Name())
}

func TestFallbackOnPrimaryError(t *testing.T) {
	for _, primaryErr := range []error{cms.ErrNotConfigured, errors.New("boom")} {
		f := &Fallback{
			Primary:   failingSource{err: primaryErr},
			Secondary: &Static{List: []types.ContentRecord{rec("two")}},
		}

		records, err := f.Records(context.Background())
		require.NoError(t, err)
		assert.Len(t, records, 1)
	}
}

func TestFallbackReportsDegraded(t *testing.T) {
	tests := []struct {
		name      string
		primary   Source
		secondary Source
	}{
		{
			name:      "both fail",
			primary:   failingSource{err: errors.New("primary down")},
			secondary: failingSource{err: errors.New("secondary down")},
		},
		{
			name:      "primary fails, secondary empty",
			primary:   failingSource{err: errors.New("primary down")},
			secondary: &Static{Label: "b"},
		},
		{
			name:    "primary fails, no secondary",
			primary: failingSource{err: errors.New("primary down")},
		},
		{
			name:      "unconfigured primary, secondary fails",
			primary:   failingSource{err: cms.ErrNotConfigured},
			secondary: failingSource{err: errors.New("secondary down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Fallback{Primary: tt.primary, Secondary: tt.secondary}

			records, err := f.Records(context.Background())
			require.ErrorIs(t, err, ErrDegraded)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestFallbackEmptyIsNotDegraded(t *testing.T) {
	f := &Fallback{
		Primary:   failingSource{err: cms.ErrNotConfigured},
		Secondary: &Static{Label: "b"},
	}

	records, err := f.Records(context.Background())
	require.NoError(t, err, "an unconfigured primary with no content is a real empty list")
	assert.Empty(t, records)
}

func TestFallbackCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &Fallback{
		Primary:   failingSource{err: context.Canceled},
		Secondary: &Static{List: []types.ContentRecord{rec("two")}},
	}

	_, err := f.Records(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrDegraded)
}

func TestMulti(t *testing.T) {
	m := &Multi{Sources: []Source{
		&Static{List: []types.ContentRecord{rec("a"), rec("b")}},
		&Static{List: []types.ContentRecord{rec("c")}},
	}}

	records, err := m.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[2].Slug)

	m.Sources = append(m.Sources, failingSource{err: errors.New("boom")})
	_, err = m.Records(context.Background())
	assert.Error(t, err)
}

func TestMarkdownSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tutorials"), 0o755))
	post := "---\ntitle: Getting Started\ntags: [intro]\n---\nInstall the package.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tutorials", "getting-started.mdx"), []byte(post), 0o644))

	src := NewMarkdown(dir, types.KindTutorials)
	assert.Equal(t, "markdown:tutorials", src.Name())

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Getting Started", records[0].Title)
	assert.Equal(t, "/tutorials/getting-started", records[0].URL)
}

func TestUnconfiguredCMSFallsBackToMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "hello.mdx"), []byte("---\ntitle: Hello\n---\nbody\n"), 0o644))

	f := &Fallback{
		Label:     "blog",
		Primary:   NewCMS(cms.NewClient(cms.Config{ProjectID: "demo"})),
		Secondary: NewMarkdown(dir, types.KindBlog),
	}

	records, err := f.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Slug)
}

func TestNamed(t *testing.T) {
	n := &Named{Label: "blog", Source: &Static{Label: "inner", List: []types.ContentRecord{rec("a")}}}
	assert.Equal(t, "blog", n.Name())

	records, err := n.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
