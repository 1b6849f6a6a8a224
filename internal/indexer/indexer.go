package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/sitesearch-mcp/internal/source"
	"github.com/dshills/sitesearch-mcp/internal/storage"
	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// ErrIndexingInProgress is returned when another sync holds the lock
var ErrIndexingInProgress = errors.New("indexing already in progress")

// Indexer coordinates the sync pipeline: load -> hash -> store
type Indexer struct {
	storage storage.Storage
	logger  *slog.Logger
	lock    IndexLock
}

// Config contains configuration for a sync
type Config struct {
	Workers   int  // Concurrent batch writers (default: runtime.NumCPU())
	BatchSize int  // Documents per transaction (default: 20)
	Prune     bool // Delete stored documents the source no longer returns
}

// Statistics contains statistics about one source sync
type Statistics struct {
	Source           string
	DocumentsLoaded  int
	DocumentsIndexed int
	DocumentsSkipped int
	DocumentsFailed  int
	DocumentsPruned  int
	Degraded         bool // Source fell back to a partial list; prune was skipped
	Duration         time.Duration
	ErrorMessages    []string
}

// New creates a new Indexer instance
func New(store storage.Storage, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		storage: store,
		logger:  logger,
	}
}

func withDefaults(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	out := *config
	if out.Workers <= 0 {
		out.Workers = runtime.NumCPU()
	}
	if out.BatchSize <= 0 {
		out.BatchSize = 20
	}
	return &out
}

// IndexSources syncs each source in order. Only one call runs at a time;
// a concurrent call fails fast with ErrIndexingInProgress.
func (idx *Indexer) IndexSources(ctx context.Context, sources []source.Source, config *Config) ([]*Statistics, error) {
	if err := idx.acquire(sources); err != nil {
		return nil, err
	}
	defer idx.lock.Release()

	all := make([]*Statistics, 0, len(sources))
	for _, src := range sources {
		stats, err := idx.indexSource(ctx, src, withDefaults(config))
		if err != nil {
			return all, fmt.Errorf("index %s: %w", src.Name(), err)
		}
		all = append(all, stats)
	}
	return all, nil
}

// IndexSource syncs one source into the catalog
func (idx *Indexer) IndexSource(ctx context.Context, src source.Source, config *Config) (*Statistics, error) {
	if err := idx.acquire([]source.Source{src}); err != nil {
		return nil, err
	}
	defer idx.lock.Release()

	return idx.indexSource(ctx, src, withDefaults(config))
}

func (idx *Indexer) indexSource(ctx context.Context, src source.Source, config *Config) (*Statistics, error) {
	startTime := time.Now()
	stats := &Statistics{
		Source:        src.Name(),
		ErrorMessages: make([]string, 0),
	}

	row, err := idx.getOrCreateSource(ctx, src.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to get or create source: %w", err)
	}

	records, err := src.Records(ctx)
	if errors.Is(err, source.ErrDegraded) {
		stats.Degraded = true
		stats.ErrorMessages = append(stats.ErrorMessages, err.Error())
		idx.logger.Warn("source degraded, keeping stored documents",
			"source", stats.Source,
			"error", err)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	stats.DocumentsLoaded = len(records)

	if err := idx.indexRecords(ctx, row, records, config, stats); err != nil {
		return nil, fmt.Errorf("failed to index records: %w", err)
	}

	if config.Prune && !stats.Degraded {
		pruned, err := idx.pruneMissing(ctx, row, records)
		if err != nil {
			return nil, fmt.Errorf("failed to prune documents: %w", err)
		}
		stats.DocumentsPruned = pruned
	}

	if err := idx.updateSourceStats(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to update source stats: %w", err)
	}

	stats.Duration = time.Since(startTime)
	idx.logger.Info("source synced",
		"source", stats.Source,
		"loaded", stats.DocumentsLoaded,
		"indexed", stats.DocumentsIndexed,
		"skipped", stats.DocumentsSkipped,
		"failed", stats.DocumentsFailed,
		"pruned", stats.DocumentsPruned,
		"degraded", stats.Degraded,
		"duration", stats.Duration)
	return stats, nil
}

// getOrCreateSource retrieves an existing source row or creates a new one
func (idx *Indexer) getOrCreateSource(ctx context.Context, name string) (*storage.Source, error) {
	row, err := idx.storage.GetSource(ctx, name)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	row = &storage.Source{Name: name, Kind: sourceKind(name)}
	if err := idx.storage.CreateSource(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// sourceKind is the part of a source name before the colon
func sourceKind(name string) string {
	kind, _, _ := strings.Cut(name, ":")
	return kind
}

// indexRecords stores records in batches, each batch in one transaction
func (idx *Indexer) indexRecords(ctx context.Context, row *storage.Source, records []types.ContentRecord,
	config *Config, stats *Statistics) error {

	var (
		indexed int32
		skipped int32
		failed  int32
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	var mu sync.Mutex // Protect stats.ErrorMessages

	for i := 0; i < len(records); i += config.BatchSize {
		end := i + config.BatchSize
		if end > len(records) {
			end = len(records)
		}
		start := i
		batch := records[start:end]

		g.Go(func() error {
			return idx.indexBatch(gctx, row, batch, start, &indexed, &skipped, &failed, &mu, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats.DocumentsIndexed = int(indexed)
	stats.DocumentsSkipped = int(skipped)
	stats.DocumentsFailed = int(failed)
	return nil
}

// indexBatch stores a batch of records within a transaction. offset is the
// position of the first record in the source's load order.
func (idx *Indexer) indexBatch(ctx context.Context, row *storage.Source, batch []types.ContentRecord, offset int,
	indexed, skipped, failed *int32, mu *sync.Mutex, stats *Statistics) error {

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := batch[i]
		changed, err := idx.indexRecord(ctx, tx, row, rec, offset+i)
		if err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", rec.Slug, err))
			mu.Unlock()
			continue
		}
		if changed {
			atomic.AddInt32(indexed, 1)
		} else {
			atomic.AddInt32(skipped, 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// indexRecord upserts one record unless the stored copy has the same hash
// and position. It reports whether anything was written.
func (idx *Indexer) indexRecord(ctx context.Context, store storage.Storage, row *storage.Source,
	rec types.ContentRecord, position int) (bool, error) {

	if err := rec.Validate(); err != nil {
		return false, err
	}

	doc := storage.FromRecord(rec, row.ID, position)

	existing, err := store.GetDocument(ctx, row.ID, rec.Slug)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// New document
	case err != nil:
		return false, err
	case existing.ContentHash == doc.ContentHash && existing.Position == position:
		return false, nil
	}

	if err := store.UpsertDocument(ctx, doc); err != nil {
		return false, err
	}
	return true, nil
}

// pruneMissing deletes stored documents whose slug was not loaded
func (idx *Indexer) pruneMissing(ctx context.Context, row *storage.Source, records []types.ContentRecord) (int, error) {
	keep := make(map[string]struct{}, len(records))
	for i := range records {
		keep[records[i].Slug] = struct{}{}
	}

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	docs, err := tx.ListDocuments(ctx, row.ID)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, doc := range docs {
		if _, ok := keep[doc.Slug]; ok {
			continue
		}
		if err := tx.DeleteDocument(ctx, doc.ID); err != nil {
			return 0, err
		}
		pruned++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return pruned, nil
}

// updateSourceStats refreshes the source's document count and sync time
func (idx *Indexer) updateSourceStats(ctx context.Context, row *storage.Source) error {
	docs, err := idx.storage.ListDocuments(ctx, row.ID)
	if err != nil {
		return err
	}

	row.TotalDocuments = len(docs)
	row.LastSyncedAt = time.Now()
	return idx.storage.UpdateSource(ctx, row)
}

// Records returns every stored document as a search record, grouped by
// source in load order
func (idx *Indexer) Records(ctx context.Context) ([]types.ContentRecord, error) {
	docs, err := idx.storage.ListAllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return storage.Records(docs), nil
}
