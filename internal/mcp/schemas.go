package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexContentTool returns the tool definition for index_content
func indexContentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_content",
		Description: "Sync blog posts, tutorials and docs into the search catalog",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Which origin to sync: all (CMS with markdown fallback for the blog), markdown, or cms",
					"enum":        []string{SourceAll, SourceMarkdown, SourceCMS},
					"default":     SourceAll,
				},
				"prune": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, remove catalog entries the source no longer returns",
					"default":     false,
				},
			},
		},
	}
}

// searchContentTool returns the tool definition for search_content
func searchContentTool(maxResults int) mcp.Tool {
	return mcp.Tool{
		Name:        "search_content",
		Description: "Rank site content against a keyword query (title > description = tags > body)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive substring to look for",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"default":     maxResults,
					"minimum":     1,
					"maximum":     maxResults,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report catalog statistics per source and search engine settings",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getPostTool returns the tool definition for get_post
func getPostTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_post",
		Description: "Fetch one post with reading time, table of contents, related posts and SEO metadata",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slug": map[string]interface{}{
					"type":        "string",
					"description": "Post slug, e.g. building-modals",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Site section the post belongs to",
					"enum":        []string{"blog", "tutorials", "docs"},
					"default":     "blog",
				},
				"include_content": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include the full body",
					"default":     false,
				},
			},
			Required: []string{"slug"},
		},
	}
}

// getSitemapTool returns the tool definition for get_sitemap
func getSitemapTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_sitemap",
		Description: "List site pages and catalog content as sitemap entries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"format": map[string]interface{}{
					"type":        "string",
					"description": "json for entries, xml for a sitemaps.org document",
					"enum":        []string{"json", "xml"},
					"default":     "json",
				},
			},
		},
	}
}
