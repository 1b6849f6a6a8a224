// Package content loads markdown posts with YAML front matter from a content
// directory laid out as <dir>/<type>/<slug>.mdx.
//
//	l := content.NewLoader("src/content")
//	posts, err := l.LoadAll(ctx, types.KindBlog) // newest first
//	post, err := l.LoadPost(types.KindBlog, "getting-started")
//
// Each Post carries its parsed header, the markdown body, and a reading time
// estimate at 200 words per minute. TableOfContents lists the body's ATX
// headings with anchor IDs, and Related finds posts sharing a tag.
//
// Post.Record converts a post into a types.ContentRecord whose ID is a
// name-based UUID of type/slug, so re-loading the same file yields the same ID.
package content
