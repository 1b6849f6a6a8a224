// Package mcp implements the Model Context Protocol (MCP) server for site
// content search.
//
// The server exposes five tools:
//   - index_content: Sync markdown and CMS content into the catalog
//   - search_content: Rank catalog content against a keyword query
//   - get_status: Catalog statistics and search settings
//   - get_post: One post with reading time, table of contents, related
//     posts and SEO metadata
//   - get_sitemap: Sitemap entries for static pages and catalog content
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Logs go to stderr; stdout carries the protocol.
//
// # Tool: index_content
//
//	Request:
//	{
//	  "name": "index_content",
//	  "arguments": {"source": "all", "prune": true}
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "source": "all",
//	  "documents_total": 42,
//	  "sources": [
//	    {"source": "blog", "documents_indexed": 3, "documents_skipped": 27, ...},
//	    {"source": "tutorials", ...}
//	  ]
//	}
//
// With source "all" the blog section reads from the CMS when it is
// configured and falls back to the markdown directory when the CMS fails or
// has no posts. Catalog rows are keyed by section, so a later "markdown"
// sync replaces CMS content for the blog rather than duplicating it.
//
// # Tool: search_content
//
//	Request:
//	{
//	  "name": "search_content",
//	  "arguments": {"query": "modal", "limit": 5}
//	}
//
//	Response:
//	{
//	  "query": "modal",
//	  "total": 2,
//	  "results": [
//	    {"rank": 1, "score": 16, "title": "Building Modals", "url": "/blog/building-modals", ...},
//	    {"rank": 2, "score": 1, "title": "Dialogs", ...}
//	  ]
//	}
//
// Scores add 10 for a title match, 5 for description, 5 for any tag and 1
// for body. Queries shorter than the minimum length return no results.
//
// # Error Codes
//
//	-32602: Invalid params
//	-32603: Internal error
//	-32001: Source not configured
//	-32002: Indexing in progress
//	-32003: Post not found
//	-32004: Empty query
package mcp
