package types

// SearchResult is one ranked entry of a search
type SearchResult struct {
	Record         ContentRecord
	RelevanceScore int // Sum of per-field match bonuses
	Rank           int // Position in result set (1-based)
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.RelevanceScore < 0 {
		return ErrInvalidRelevanceScore
	}

	return nil
}
