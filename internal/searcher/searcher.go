package searcher

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// Defaults applied to zero-valued Config fields
const (
	DefaultDebounceInterval = 300 * time.Millisecond
	DefaultMinQueryLength   = 2
	DefaultMaxResults       = 10
	DefaultCacheSize        = 256
)

// Timer is a pending delayed callback. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a callback to run once after d
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config contains configuration for an Engine
type Config struct {
	DebounceInterval time.Duration // Quiet period before a query is evaluated (default: 300ms)
	MinQueryLength   int           // Shorter debounced queries yield no results (default: 2)
	MaxResults       int           // Result cap (default: 10)
	CacheSize        int           // Evaluated queries kept in the LRU (default: 256)

	Logger    *slog.Logger
	OnSettle  func(State) // Called after every evaluation, outside the engine lock
	AfterFunc AfterFunc   // Scheduling primitive (default: time.AfterFunc)
}

// State is a snapshot of an engine's observable fields
type State struct {
	RawQuery       string
	DebouncedQuery string
	Results        []types.SearchResult
	IsSearching    bool
}

// HasResults reports whether the last evaluation produced anything
func (s State) HasResults() bool {
	return len(s.Results) > 0
}

// Engine ranks a fixed record collection against a debounced query.
type Engine struct {
	cfg   Config
	cache *lru.Cache[string, []types.SearchResult]

	mu         sync.Mutex
	records    []types.ContentRecord
	version    uint64 // bumped by SetRecords; guards cache writes
	state      State
	timer      Timer
	generation uint64
}

// New creates an Engine over records. The slice is copied.
func New(records []types.ContentRecord, cfg Config) *Engine {
	cfg = withDefaults(cfg)

	cache, err := lru.New[string, []types.SearchResult](cfg.CacheSize)
	if err != nil {
		// Only reachable with a non-positive size, which withDefaults rules out
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Engine{
		cfg:     cfg,
		cache:   cache,
		records: copyRecords(records),
	}
}

func withDefaults(cfg Config) Config {
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = DefaultMinQueryLength
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = stdAfterFunc
	}
	return cfg
}

// Config returns the effective configuration, defaults applied
func (e *Engine) Config() Config {
	return e.cfg
}

// SetQuery records text as the raw query and restarts the debounce timer.
// Only the last query set within one debounce interval is evaluated.
func (e *Engine) SetQuery(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.RawQuery = text
	e.stopTimerLocked()

	e.generation++
	gen := e.generation
	e.timer = e.cfg.AfterFunc(e.cfg.DebounceInterval, func() {
		e.fire(gen, text)
	})
}

// Clear empties the raw query, debounced query and results and cancels any
// pending evaluation.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimerLocked()
	e.generation++
	e.state = State{}
}

// Close cancels any pending evaluation. The engine stays usable.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimerLocked()
	e.generation++
	e.state.IsSearching = false
}

// State returns a snapshot of the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyState(e.state)
}

// Len returns the size of the record collection
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

// SetRecords replaces the collection and re-evaluates the current debounced
// query against it, if any.
func (e *Engine) SetRecords(records []types.ContentRecord) {
	e.mu.Lock()
	e.records = copyRecords(records)
	e.version++
	e.cache.Purge()
	query := e.state.DebouncedQuery
	gen := e.generation
	e.mu.Unlock()

	e.cfg.Logger.Debug("search collection replaced", "records", len(records))

	if query != "" {
		e.settle(gen, query)
	}
}

// Evaluate runs the synchronous filter/score/sort/cap pass for query without
// touching the debounced state. Queries shorter than MinQueryLength yield an
// empty result.
func (e *Engine) Evaluate(query string) []types.SearchResult {
	if query == "" || QueryLength(query) < e.cfg.MinQueryLength {
		return []types.SearchResult{}
	}

	key := strings.ToLower(query)
	if cached, ok := e.cache.Get(key); ok {
		return copyResults(cached)
	}

	e.mu.Lock()
	records, version := e.records, e.version
	e.mu.Unlock()

	start := time.Now()
	results := Rank(records, query, e.cfg.MaxResults)
	e.cfg.Logger.Debug("search evaluated",
		"query", query,
		"records", len(records),
		"results", len(results),
		"duration", time.Since(start))

	e.mu.Lock()
	if version == e.version {
		e.cache.Add(key, copyResults(results))
	}
	e.mu.Unlock()

	return results
}

// fire is the debounce callback. gen identifies the SetQuery that armed it;
// a superseded callback does nothing.
func (e *Engine) fire(gen uint64, query string) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.mu.Unlock()

	e.settle(gen, query)
}

// settle evaluates query and publishes it as the debounced state. It leaves
// any pending timer alone, so SetRecords can call it between SetQuery and
// the timer firing.
func (e *Engine) settle(gen uint64, query string) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.state.DebouncedQuery = query

	if query == "" || QueryLength(query) < e.cfg.MinQueryLength {
		e.state.Results = []types.SearchResult{}
		e.state.IsSearching = false
		snapshot := copyState(e.state)
		e.mu.Unlock()
		e.notify(snapshot)
		return
	}

	e.state.IsSearching = true
	e.mu.Unlock()

	results := e.Evaluate(query)

	e.mu.Lock()
	if gen != e.generation {
		// A later SetQuery or Clear owns the state now
		e.mu.Unlock()
		return
	}
	e.state.Results = results
	e.state.IsSearching = false
	snapshot := copyState(e.state)
	e.mu.Unlock()

	e.notify(snapshot)
}

// QueryLength counts query in UTF-16 code units, the unit browsers report
// for input length. Characters outside the Basic Multilingual Plane count
// as two.
func QueryLength(query string) int {
	n := 0
	for _, r := range query {
		n += utf16.RuneLen(r)
	}
	return n
}

func (e *Engine) notify(s State) {
	if e.cfg.OnSettle != nil {
		e.cfg.OnSettle(s)
	}
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func copyRecords(src []types.ContentRecord) []types.ContentRecord {
	dst := make([]types.ContentRecord, len(src))
	for i := range src {
		dst[i] = src[i].Clone()
	}
	return dst
}

func copyResults(src []types.SearchResult) []types.SearchResult {
	dst := make([]types.SearchResult, len(src))
	for i, r := range src {
		dst[i] = types.SearchResult{
			Record:         r.Record.Clone(),
			RelevanceScore: r.RelevanceScore,
			Rank:           r.Rank,
		}
	}
	return dst
}

func copyState(s State) State {
	out := s
	if s.Results != nil {
		out.Results = copyResults(s.Results)
	}
	return out
}
