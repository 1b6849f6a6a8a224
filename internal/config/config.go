package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/sitesearch-mcp/internal/cms"
	"github.com/dshills/sitesearch-mcp/internal/searcher"
	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// Environment variables
const (
	EnvDBPath         = "SITESEARCH_DB_PATH"
	EnvContentDir     = "SITESEARCH_CONTENT_DIR"
	EnvContentTypes   = "SITESEARCH_CONTENT_TYPES"
	EnvDebounceMs     = "SITESEARCH_DEBOUNCE_MS"
	EnvMinQueryLength = "SITESEARCH_MIN_QUERY_LENGTH"
	EnvMaxResults     = "SITESEARCH_MAX_RESULTS"
	EnvLogLevel       = "SITESEARCH_LOG_LEVEL"
	EnvSiteConfig     = "SITESEARCH_SITE_CONFIG"

	EnvSanityProjectID       = "SANITY_PROJECT_ID"
	EnvSanityProjectIDPublic = "NEXT_PUBLIC_SANITY_PROJECT_ID"
	EnvSanityDataset         = "SANITY_DATASET"
	EnvSanityAPIVersion      = "SANITY_API_VERSION"
	EnvSanityToken           = "SANITY_API_TOKEN"
	EnvSanityUseCDN          = "SANITY_USE_CDN"
)

// Defaults
const (
	DefaultDBDir        = "~/.sitesearch"
	DefaultDBFile       = "sitesearch.db"
	DefaultContentDir   = "src/content"
	DefaultContentTypes = "blog,tutorials"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process configuration
type Config struct {
	DBPath       string
	ContentDir   string
	ContentTypes []types.ContentKind
	SiteConfig   string // Optional YAML file for seo.LoadSite

	DebounceInterval time.Duration
	MinQueryLength   int
	MaxResults       int

	LogLevel slog.Level

	CMS cms.Config
}

// FromEnv loads configuration from the process environment
func FromEnv() (*Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config from getenv. Unset values take defaults; malformed
// values are errors.
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBPath:           getenv(EnvDBPath),
		ContentDir:       valueOr(getenv(EnvContentDir), DefaultContentDir),
		SiteConfig:       getenv(EnvSiteConfig),
		DebounceInterval: searcher.DefaultDebounceInterval,
		MinQueryLength:   searcher.DefaultMinQueryLength,
		MaxResults:       searcher.DefaultMaxResults,
		LogLevel:         slog.LevelInfo,
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(DefaultDBDir, DefaultDBFile)
	}

	kinds, err := parseKinds(valueOr(getenv(EnvContentTypes), DefaultContentTypes))
	if err != nil {
		return nil, err
	}
	cfg.ContentTypes = kinds

	if raw := getenv(EnvDebounceMs); raw != "" {
		ms, err := positiveInt(EnvDebounceMs, raw)
		if err != nil {
			return nil, err
		}
		cfg.DebounceInterval = time.Duration(ms) * time.Millisecond
	}
	if raw := getenv(EnvMinQueryLength); raw != "" {
		if cfg.MinQueryLength, err = positiveInt(EnvMinQueryLength, raw); err != nil {
			return nil, err
		}
	}
	if raw := getenv(EnvMaxResults); raw != "" {
		if cfg.MaxResults, err = positiveInt(EnvMaxResults, raw); err != nil {
			return nil, err
		}
	}

	if raw := getenv(EnvLogLevel); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvLogLevel, raw)
		}
	}

	cfg.CMS = cms.Config{
		ProjectID:  valueOr(getenv(EnvSanityProjectID), getenv(EnvSanityProjectIDPublic)),
		Dataset:    valueOr(getenv(EnvSanityDataset), cms.DefaultDataset),
		APIVersion: valueOr(getenv(EnvSanityAPIVersion), cms.DefaultAPIVersion),
		Token:      getenv(EnvSanityToken),
	}
	if raw := getenv(EnvSanityUseCDN); raw != "" {
		useCDN, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvSanityUseCDN, raw)
		}
		cfg.CMS.UseCDN = useCDN
	}

	return cfg, nil
}

// ResolveDBPath expands a leading ~ and creates the parent directory
func (c *Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if path == ":memory:" {
		return path, nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

// NewLogger returns a text logger at the configured level. Use stderr for
// stdio servers: stdout carries the protocol.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// SearchConfig returns the engine settings; the caller fills in Logger and
// callbacks
func (c *Config) SearchConfig() searcher.Config {
	return searcher.Config{
		DebounceInterval: c.DebounceInterval,
		MinQueryLength:   c.MinQueryLength,
		MaxResults:       c.MaxResults,
	}
}

func parseKinds(raw string) ([]types.ContentKind, error) {
	var kinds []types.ContentKind
	seen := make(map[types.ContentKind]bool)
	for _, part := range strings.Split(raw, ",") {
		kind := types.ContentKind(strings.ToLower(strings.TrimSpace(part)))
		if kind == "" || seen[kind] {
			continue
		}
		if err := types.ValidateKind(kind); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvContentTypes, err)
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, EnvContentTypes)
	}
	return kinds, nil
}

func positiveInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidConfig, name, raw)
	}
	return n, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
