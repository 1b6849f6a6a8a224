package types

import "errors"

// Domain errors for type validation
var (
	// Record errors
	ErrMissingID   = errors.New("record ID is required")
	ErrMissingSlug = errors.New("record slug is required")
	ErrUnknownKind = errors.New("unknown content kind")

	// Search result errors
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidRelevanceScore = errors.New("relevance score cannot be negative")
)
