// Package cms is a small client for a Sanity dataset.
//
// It issues GROQ queries over the HTTP query API, throttled by a token
// bucket and retried with exponential backoff on transport failures, 429
// and 5xx responses. Blog posts are converted into types.ContentRecord
// values with their portable text body flattened to plain text.
//
// A client built from a Config without a project ID (or with the "demo"
// placeholder) is valid but every call returns ErrNotConfigured, so callers
// can fall back to local content.
package cms
