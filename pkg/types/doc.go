// Package types provides shared type definitions for the site search server.
//
// ContentRecord is the unit every loader produces and the search engine
// consumes. Only Title, Description, Tags and Body are matched against a
// query; ID, Slug, Kind, URL and PublishedAt travel with the record so
// callers can render or link a result:
//
//	rec := types.ContentRecord{
//	    ID:          "a3c1...",
//	    Slug:        "getting-started",
//	    Kind:        types.KindBlog,
//	    Title:       "Getting Started",
//	    Description: "Install the component library",
//	    Tags:        []string{"setup", "install"},
//	    Body:        markdownBody,
//	}
//
// SearchResult pairs a record with its integer relevance score and its
// 1-based rank within a result set.
package types
