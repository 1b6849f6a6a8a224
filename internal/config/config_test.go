package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("~/.sitesearch", "sitesearch.db"), cfg.DBPath)
	assert.Equal(t, "src/content", cfg.ContentDir)
	assert.Equal(t, []types.ContentKind{types.KindBlog, types.KindTutorials}, cfg.ContentTypes)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceInterval)
	assert.Equal(t, 2, cfg.MinQueryLength)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "production", cfg.CMS.Dataset)
	assert.Equal(t, "2025-09-23", cfg.CMS.APIVersion)
	assert.False(t, cfg.CMS.Configured())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		EnvDBPath:                ":memory:",
		EnvContentDir:            "/srv/content",
		EnvContentTypes:          "docs, Blog ,docs",
		EnvDebounceMs:            "150",
		EnvMinQueryLength:        "3",
		EnvMaxResults:            "25",
		EnvLogLevel:              "debug",
		EnvSanityProjectIDPublic: "abc123",
		EnvSanityUseCDN:          "true",
		EnvSanityToken:           "tok",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, []types.ContentKind{types.KindDocs, types.KindBlog}, cfg.ContentTypes)
	assert.Equal(t, 150*time.Millisecond, cfg.DebounceInterval)
	assert.Equal(t, 3, cfg.MinQueryLength)
	assert.Equal(t, 25, cfg.MaxResults)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "abc123", cfg.CMS.ProjectID)
	assert.True(t, cfg.CMS.UseCDN)
	assert.True(t, cfg.CMS.Configured())

	sc := cfg.SearchConfig()
	assert.Equal(t, 150*time.Millisecond, sc.DebounceInterval)
	assert.Equal(t, 25, sc.MaxResults)
}

func TestLoadProjectIDPrecedence(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		EnvSanityProjectID:       "server",
		EnvSanityProjectIDPublic: "public",
	}))
	require.NoError(t, err)
	assert.Equal(t, "server", cfg.CMS.ProjectID)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-numeric debounce", map[string]string{EnvDebounceMs: "soon"}},
		{"zero min length", map[string]string{EnvMinQueryLength: "0"}},
		{"negative max results", map[string]string{EnvMaxResults: "-1"}},
		{"unknown level", map[string]string{EnvLogLevel: "chatty"}},
		{"unknown content type", map[string]string{EnvContentTypes: "blog,recipes"}},
		{"empty content types", map[string]string{EnvContentTypes: " , "}},
		{"bad cdn flag", map[string]string{EnvSanityUseCDN: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(envMap(tt.env))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestResolveDBPath(t *testing.T) {
	cfg := &Config{DBPath: ":memory:"}
	path, err := cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", path)

	dir := t.TempDir()
	cfg.DBPath = filepath.Join(dir, "nested", "catalog.db")
	path, err = cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, cfg.DBPath, path)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	t.Setenv("HOME", dir)
	cfg.DBPath = "~/.sitesearch/x.db"
	path, err = cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".sitesearch", "x.db"), path)
}
