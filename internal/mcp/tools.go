package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/sitesearch-mcp/internal/cms"
	"github.com/dshills/sitesearch-mcp/internal/indexer"
	"github.com/dshills/sitesearch-mcp/internal/searcher"
	"github.com/dshills/sitesearch-mcp/internal/source"
	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal JSON-RPC error
	ErrorCodeSourceNotConfigured = -32001 // Requested source has no configuration
	ErrorCodeIndexingInProgress  = -32002 // Another indexing operation is already running
	ErrorCodePostNotFound        = -32003 // No post with the given slug
	ErrorCodeEmptyQuery          = -32004 // Query parameter is empty
)

// index_content source selections
const (
	SourceAll      = "all"
	SourceMarkdown = "markdown"
	SourceCMS      = "cms"
)

// handleIndexContent handles the index_content tool invocation
func (s *Server) handleIndexContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	selection := getStringDefault(args, "source", SourceAll)
	prune := getBoolDefault(args, "prune", false)

	sources, err := s.sources(selection)
	if err != nil {
		return nil, err
	}

	stats, err := s.indexer.IndexSources(ctx, sources, &indexer.Config{Prune: prune})
	if errors.Is(err, indexer.ErrIndexingInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	total, err := s.refreshEngine(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to refresh search engine", map[string]interface{}{
			"error": err.Error(),
		})
	}

	perSource := make([]map[string]interface{}, 0, len(stats))
	for _, st := range stats {
		entry := map[string]interface{}{
			"source":            st.Source,
			"documents_loaded":  st.DocumentsLoaded,
			"documents_indexed": st.DocumentsIndexed,
			"documents_skipped": st.DocumentsSkipped,
			"documents_failed":  st.DocumentsFailed,
			"documents_pruned":  st.DocumentsPruned,
			"degraded":          st.Degraded,
			"duration_ms":       st.Duration.Milliseconds(),
		}
		if len(st.ErrorMessages) > 0 {
			// Include first few errors
			errorCount := len(st.ErrorMessages)
			if errorCount > 5 {
				entry["errors"] = st.ErrorMessages[:5]
				entry["error_count"] = errorCount
			} else {
				entry["errors"] = st.ErrorMessages
			}
		}
		perSource = append(perSource, entry)
	}

	response := map[string]interface{}{
		"indexed":         true,
		"source":          selection,
		"sources":         perSource,
		"documents_total": total,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// sources maps a selection to catalog sources, one per configured site
// section. Rows are keyed by section, so switching origin replaces content
// instead of duplicating it.
func (s *Server) sources(selection string) ([]source.Source, error) {
	switch selection {
	case SourceAll, SourceMarkdown, SourceCMS:
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid source", map[string]interface{}{
			"param":   "source",
			"value":   selection,
			"allowed": []string{SourceAll, SourceMarkdown, SourceCMS},
		})
	}

	if selection == SourceCMS && !s.cms.Configured() {
		return nil, newMCPError(ErrorCodeSourceNotConfigured, "cms is not configured", map[string]interface{}{
			"hint": "set SANITY_PROJECT_ID",
		})
	}

	srcs := make([]source.Source, 0, len(s.cfg.ContentTypes))
	for _, kind := range s.cfg.ContentTypes {
		name := string(kind)
		md := source.NewMarkdown(s.cfg.ContentDir, kind)

		switch {
		case selection == SourceMarkdown:
			srcs = append(srcs, &source.Named{Label: name, Source: md})
		case kind != types.KindBlog && selection == SourceCMS:
			// The CMS only carries blog posts
		case kind == types.KindBlog && selection == SourceCMS:
			srcs = append(srcs, &source.Named{Label: name, Source: source.NewCMS(s.cms)})
		case kind == types.KindBlog && s.cms.Configured():
			srcs = append(srcs, &source.Fallback{
				Label:     name,
				Primary:   source.NewCMS(s.cms),
				Secondary: md,
				Logger:    s.logger,
			})
		default:
			srcs = append(srcs, &source.Named{Label: name, Source: md})
		}
	}

	if len(srcs) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "no content types to index", map[string]interface{}{
			"param": "source",
			"value": selection,
		})
	}
	return srcs, nil
}

// refreshEngine reloads the search collection from the catalog
func (s *Server) refreshEngine(ctx context.Context) (int, error) {
	records, err := s.indexer.Records(ctx)
	if err != nil {
		return 0, err
	}
	s.engine.SetRecords(records)
	return len(records), nil
}

// handleSearchContent handles the search_content tool invocation
func (s *Server) handleSearchContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	engineCfg := s.engine.Config()
	limit := getIntDefault(args, "limit", engineCfg.MaxResults)
	if limit < 1 || limit > engineCfg.MaxResults {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", engineCfg.MaxResults),
			map[string]interface{}{
				"param": "limit",
				"value": limit,
			})
	}

	start := time.Now()
	results := s.engine.Evaluate(query)
	if len(results) > limit {
		results = results[:limit]
	}

	items := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		item := map[string]interface{}{
			"rank":        r.Rank,
			"score":       r.RelevanceScore,
			"title":       r.Record.Title,
			"description": r.Record.Description,
			"url":         r.Record.URL,
			"kind":        r.Record.Kind,
			"slug":        r.Record.Slug,
			"tags":        r.Record.Tags,
		}
		if !r.Record.PublishedAt.IsZero() {
			item["published_at"] = r.Record.PublishedAt.Format(time.RFC3339)
		}
		items = append(items, item)
	}

	response := map[string]interface{}{
		"query":       query,
		"results":     items,
		"total":       len(items),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if searcher.QueryLength(query) < engineCfg.MinQueryLength {
		response["message"] = fmt.Sprintf("query must be at least %d characters", engineCfg.MinQueryLength)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	sources := make([]map[string]interface{}, 0, len(status.Sources))
	for _, src := range status.Sources {
		sources = append(sources, map[string]interface{}{
			"name":            src.Name,
			"kind":            src.Kind,
			"documents_count": src.DocumentsCount,
			"last_synced_at":  formatTime(src.LastSyncedAt),
		})
	}

	engineCfg := s.engine.Config()
	response := map[string]interface{}{
		"indexed": status.DocumentsCount > 0,
		"catalog": map[string]interface{}{
			"schema_version":  status.SchemaVersion,
			"documents_count": status.DocumentsCount,
			"index_size_mb":   fmt.Sprintf("%.2f", status.IndexSizeMB),
			"last_synced_at":  formatTime(status.LastSyncedAt),
			"sources":         sources,
		},
		"search": map[string]interface{}{
			"records":          s.engine.Len(),
			"debounce_ms":      engineCfg.DebounceInterval.Milliseconds(),
			"min_query_length": engineCfg.MinQueryLength,
			"max_results":      engineCfg.MaxResults,
		},
		"cms": map[string]interface{}{
			"configured": s.cms.Configured(),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"has_documents":       status.Health.HasDocuments,
		},
	}
	if !status.Health.HasDocuments {
		response["message"] = "Catalog is empty. Use index_content tool to sync content."
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// arguments returns the argument map; tools without required parameters
// may be called with none
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// isCMSMiss reports whether err means the CMS has no such post
func isCMSMiss(err error) bool {
	return errors.Is(err, cms.ErrPostNotFound) || errors.Is(err, cms.ErrNotConfigured)
}
