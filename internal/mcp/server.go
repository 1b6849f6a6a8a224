package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/sitesearch-mcp/internal/cms"
	"github.com/dshills/sitesearch-mcp/internal/config"
	"github.com/dshills/sitesearch-mcp/internal/content"
	"github.com/dshills/sitesearch-mcp/internal/indexer"
	"github.com/dshills/sitesearch-mcp/internal/searcher"
	"github.com/dshills/sitesearch-mcp/internal/seo"
	"github.com/dshills/sitesearch-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "sitesearch-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	cfg     *config.Config
	storage storage.Storage
	indexer *indexer.Indexer
	engine  *searcher.Engine
	loader  *content.Loader
	cms     *cms.Client
	site    seo.Site
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a new MCP server instance. The search engine starts
// with whatever the catalog already holds.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	site := seo.DefaultSite()
	if cfg.SiteConfig != "" {
		site, err = seo.LoadSite(cfg.SiteConfig)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	cmsCfg := cfg.CMS
	cmsCfg.Logger = logger.With("component", "cms")

	s := &Server{
		cfg:     cfg,
		storage: store,
		indexer: indexer.New(store, logger.With("component", "indexer")),
		loader:  content.NewLoader(cfg.ContentDir),
		cms:     cms.NewClient(cmsCfg),
		site:    site,
		logger:  logger,
	}

	records, err := s.indexer.Records(context.Background())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	searchCfg := cfg.SearchConfig()
	searchCfg.Logger = logger.With("component", "searcher")
	s.engine = searcher.New(records, searchCfg)

	s.mcp = server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	if err := s.registerTools(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	logger.Info("server initialized",
		"db_path", dbPath,
		"documents", len(records),
		"cms_configured", s.cms.Configured())
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()
	return server.ServeStdio(s.mcp)
}

// Close stops pending searches and closes the catalog. Safe to call more
// than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.engine.Close()
		s.closeErr = s.storage.Close()
	})
	return s.closeErr
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(indexContentTool(), s.handleIndexContent)
	s.mcp.AddTool(searchContentTool(s.cfg.MaxResults), s.handleSearchContent)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(getPostTool(), s.handleGetPost)
	s.mcp.AddTool(getSitemapTool(), s.handleGetSitemap)
	return nil
}
