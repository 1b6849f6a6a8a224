package searcher

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

func TestMatches(t *testing.T) {
	rec := types.ContentRecord{
		Title:       "Navigation Menu",
		Description: "Accessible dropdown navigation",
		Tags:        []string{"menu", "a11y"},
		Body:        "Use the NavigationMenu component for headers.",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"TitleCaseInsensitive", "NAVIGATION", true},
		{"Description", "dropdown", true},
		{"Tag", "a11y", true},
		{"Body", "headers", true},
		{"AcrossJoinedTags", "menu a11y", true},
		{"NoMatch", "tooltip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(&rec, tt.query))
		})
	}
}

func TestMatchesMissingFields(t *testing.T) {
	rec := types.ContentRecord{Title: "Badge"}
	assert.True(t, Matches(&rec, "bad"))
	assert.False(t, Matches(&rec, "status"))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		rec   types.ContentRecord
		query string
		want  int
	}{
		{
			name:  "TitleOnly",
			rec:   types.ContentRecord{Title: "Button"},
			query: "button",
			want:  10,
		},
		{
			name:  "DescriptionOnly",
			rec:   types.ContentRecord{Title: "Card", Description: "A button-like card"},
			query: "button",
			want:  5,
		},
		{
			name: "AllFields",
			rec: types.ContentRecord{
				Title:       "Dialog",
				Description: "Modal dialog",
				Tags:        []string{"overlay", "dialog"},
				Body:        "A dialog interrupts the user.",
			},
			query: "dialog",
			want:  21,
		},
		{
			name:  "TagBonusCountedOnce",
			rec:   types.ContentRecord{Title: "Sheet", Tags: []string{"panel", "side-panel"}},
			query: "panel",
			want:  5,
		},
		{
			name:  "JoinedTagsMatchScoresZero",
			rec:   types.ContentRecord{Title: "Sheet", Tags: []string{"side", "panel"}},
			query: "side panel",
			want:  0,
		},
		{
			name:  "BodyOnly",
			rec:   types.ContentRecord{Title: "Input", Body: "Supports validation states"},
			query: "VALIDATION",
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(&tt.rec, tt.query))
		})
	}
}

func TestRankButtonCardScenario(t *testing.T) {
	records := []types.ContentRecord{
		{ID: "button", Title: "Button"},
		{ID: "card", Title: "Card", Description: "A button-like card"},
	}

	results := Rank(records, "button", 10)
	require.Len(t, results, 2)

	assert.Equal(t, "Button", results[0].Record.Title)
	assert.Equal(t, 10, results[0].RelevanceScore)
	assert.Equal(t, 1, results[0].Rank)

	assert.Equal(t, "Card", results[1].Record.Title)
	assert.Equal(t, 5, results[1].RelevanceScore)
	assert.Equal(t, 2, results[1].Rank)
}

func TestRankStableForEqualScores(t *testing.T) {
	records := []types.ContentRecord{
		{ID: "first", Title: "Theming guide", Tags: []string{"theme"}},
		{ID: "low", Title: "Other", Body: "theming in body"},
		{ID: "second", Title: "Theming guide", Tags: []string{"theme"}},
		{ID: "third", Title: "Theming guide", Tags: []string{"theme"}},
	}

	results := Rank(records, "theming", 10)
	require.Len(t, results, 4)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Record.ID
	}
	assert.Equal(t, []string{"first", "second", "third", "low"}, ids)
}

func TestRankCapsResults(t *testing.T) {
	records := make([]types.ContentRecord, 25)
	for i := range records {
		records[i] = types.ContentRecord{ID: fmt.Sprintf("r%d", i), Title: fmt.Sprintf("Component %d", i)}
	}

	results := Rank(records, "component", 10)
	assert.Len(t, results, 10)
	assert.Equal(t, "r0", results[0].Record.ID)
	assert.Equal(t, "r9", results[9].Record.ID)
}

func TestRankMaxResultsOneKeepsFirstOfTie(t *testing.T) {
	records := []types.ContentRecord{
		{ID: "a", Title: "Command palette"},
		{ID: "b", Title: "Command palette"},
	}

	results := Rank(records, "command", 1)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Record.ID)
}

func TestRankEmptyCollection(t *testing.T) {
	results := Rank(nil, "anything", 10)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

// Every returned record satisfies the match rule, in descending score order
func TestRankProperties(t *testing.T) {
	records := []types.ContentRecord{
		{ID: "1", Title: "Button", Tags: []string{"form"}},
		{ID: "2", Title: "Form layout", Description: "Group form controls"},
		{ID: "3", Title: "Card", Body: "Cards can hold a form."},
		{ID: "4", Title: "Tooltip"},
		{ID: "5", Title: "Input", Tags: []string{"form", "text"}, Body: "form input"},
	}

	for _, query := range []string{"form", "card", "to", "xyz", "FORM"} {
		t.Run(query, func(t *testing.T) {
			results := Rank(records, query, 3)
			assert.LessOrEqual(t, len(results), 3)

			for i, r := range results {
				assert.True(t, Matches(&r.Record, query), "result %s does not match %q", r.Record.ID, query)
				assert.Equal(t, Score(&r.Record, query), r.RelevanceScore)
				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].RelevanceScore, r.RelevanceScore)
				}
			}

			for _, rec := range records {
				if !Matches(&rec, query) {
					for _, r := range results {
						assert.NotEqual(t, rec.ID, r.Record.ID)
					}
				}
			}
		})
	}
}

func TestRankDoesNotAliasInput(t *testing.T) {
	records := []types.ContentRecord{{ID: "1", Title: "Badge", Tags: []string{"status"}}}
	results := Rank(records, "badge", 10)
	require.Len(t, results, 1)

	results[0].Record.Tags[0] = "mutated"
	assert.Equal(t, "status", records[0].Tags[0])
	assert.False(t, strings.Contains(records[0].Tags[0], "mutated"))
}
