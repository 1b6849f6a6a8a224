// Package indexer syncs content sources into the SQLite catalog.
//
// # Basic Usage
//
//	idx := indexer.New(store, logger)
//	stats, err := idx.IndexSources(ctx, []source.Source{blog, tutorials}, &indexer.Config{Prune: true})
//
//	records, err := idx.Records(ctx) // feed the search engine
//
// # Incremental Sync
//
// Every record is hashed with SHA-256 over its stored fields. A record whose
// hash and position match the stored copy is counted as skipped and not
// written again.
//
// # Concurrency
//
// Records are split into batches of Config.BatchSize. Each batch is written
// in its own transaction by an errgroup worker, at most Config.Workers at a
// time. A record that fails validation or storage is counted in
// DocumentsFailed and the batch continues.
//
// Only one sync runs at a time per Indexer; IndexSource and IndexSources
// return ErrIndexingInProgress instead of waiting.
package indexer
