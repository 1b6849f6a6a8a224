package searcher

import (
	"sort"
	"strings"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// Per-field score contributions
const (
	TitleScore       = 10
	DescriptionScore = 5
	TagScore         = 5
	BodyScore        = 1
)

// Matches reports whether the lowercased query is a substring of the
// record's lowercased title, description, body or space-joined tag list.
func Matches(rec *types.ContentRecord, query string) bool {
	term := strings.ToLower(query)
	return strings.Contains(strings.ToLower(rec.Title), term) ||
		strings.Contains(strings.ToLower(rec.Description), term) ||
		strings.Contains(strings.ToLower(rec.Body), term) ||
		strings.Contains(strings.ToLower(rec.JoinedTags()), term)
}

// Score sums the bonuses of every field that contains the query.
// Tags are checked one at a time, so a query that only matches across
// the joined tag string contributes nothing here.
func Score(rec *types.ContentRecord, query string) int {
	term := strings.ToLower(query)
	score := 0

	if strings.Contains(strings.ToLower(rec.Title), term) {
		score += TitleScore
	}

	if strings.Contains(strings.ToLower(rec.Description), term) {
		score += DescriptionScore
	}

	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			score += TagScore
			break
		}
	}

	if strings.Contains(strings.ToLower(rec.Body), term) {
		score += BodyScore
	}

	return score
}

// Rank filters records by Matches, scores them, orders them by descending
// score keeping collection order for ties, and truncates to maxResults.
// A non-positive maxResults means no cap.
func Rank(records []types.ContentRecord, query string, maxResults int) []types.SearchResult {
	results := make([]types.SearchResult, 0)
	for i := range records {
		rec := &records[i]
		if !Matches(rec, query) {
			continue
		}
		results = append(results, types.SearchResult{
			Record:         rec.Clone(),
			RelevanceScore: Score(rec, query),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	for i := range results {
		results[i].Rank = i + 1
	}

	return results
}
