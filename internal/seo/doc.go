// Package seo generates page metadata, schema.org structured data and
// sitemaps for the content site.
package seo
