// Package storage provides SQLite-based persistence for synced content.
//
// The catalog holds one row per content source (a markdown directory or the
// CMS) and one row per document. Documents keep the searchable fields of a
// types.ContentRecord plus a SHA-256 content hash, so a re-sync can skip
// records that have not changed.
//
// # Database Schema
//
// Tables:
//   - schema_version: Applied migrations, compared with semver
//   - sources: Source name, kind, totals and last sync time
//   - documents: Records with tags stored as a JSON array
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("sitesearch.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	src := &storage.Source{Name: "markdown:blog", Kind: "markdown"}
//	if err := db.CreateSource(ctx, src); err != nil {
//	    return err
//	}
//	doc := storage.FromRecord(rec, src.ID, 0)
//	if err := db.UpsertDocument(ctx, doc); err != nil {
//	    return err
//	}
//
// # Transactions
//
// Tx embeds Storage, so the same calls work inside a transaction:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//	// ... upserts ...
//	return tx.Commit()
//
// # Build Modes
//
// The default build uses the pure Go driver (modernc.org/sqlite). Building
// with the sqlite_vec tag switches to github.com/mattn/go-sqlite3, which
// needs CGO.
package storage
