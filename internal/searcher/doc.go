// Package searcher implements debounced, ranked search over an in-memory
// collection of content records.
//
// # Basic Usage
//
//	e := searcher.New(records, searcher.Config{
//	    OnSettle: func(s searcher.State) { render(s.Results) },
//	})
//	defer e.Close()
//
//	e.SetQuery("b")
//	e.SetQuery("bu")
//	e.SetQuery("button") // only "button" is evaluated, 300ms after this call
//
// RawQuery is visible through State immediately; DebouncedQuery and Results
// change only once the debounce interval elapses with no further SetQuery.
// Clear resets all three and cancels the pending evaluation.
//
// # Matching
//
// A record matches when the lowercased query is a substring of its
// lowercased title, description, body, or space-joined tag list. Missing
// fields are empty strings and never fail a search.
//
// # Relevance Scoring
//
// Bonuses are summed per field:
//
//	title contains query        +10
//	description contains query  +5
//	any single tag contains it  +5
//	body contains query         +1
//
// Results are ordered by descending score. Equal scores keep the order of the
// input collection, then the list is cut to MaxResults.
//
// # Configuration
//
//	DebounceInterval  300ms
//	MinQueryLength    2 (characters, checked on the untrimmed query)
//	MaxResults        10
//	CacheSize         256 evaluated queries
//
// # Request/Response Callers
//
// Evaluate runs the same filter/score/sort/cap pass synchronously without the
// debounce, for callers that already have a complete query:
//
//	results := e.Evaluate("card")
//
// Evaluated queries are cached in an LRU keyed by the lowercased query;
// SetRecords purges it.
package searcher
