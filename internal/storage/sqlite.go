package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStorage) querier() querier {
	return s.db
}

// nullTime maps the zero time to NULL
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Source operations

func createSource(ctx context.Context, q querier, source *Source) error {
	query := `
		INSERT INTO sources (name, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query, source.Name, source.Kind, now, now)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: source %s", ErrAlreadyExists, source.Name)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	source.ID = id
	source.CreatedAt = now
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateSource(ctx context.Context, source *Source) error {
	return createSource(ctx, s.querier(), source)
}

const sourceColumns = `id, name, kind, total_documents, last_synced_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*Source, error) {
	var source Source
	var lastSyncedAt sql.NullTime
	err := row.Scan(
		&source.ID, &source.Name, &source.Kind, &source.TotalDocuments,
		&lastSyncedAt, &source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSyncedAt.Valid {
		source.LastSyncedAt = lastSyncedAt.Time
	}
	return &source, nil
}

func getSource(ctx context.Context, q querier, name string) (*Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE name = ?`
	source, err := scanSource(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

func (s *SQLiteStorage) GetSource(ctx context.Context, name string) (*Source, error) {
	return getSource(ctx, s.querier(), name)
}

func updateSource(ctx context.Context, q querier, source *Source) error {
	query := `
		UPDATE sources
		SET kind = ?, total_documents = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		source.Kind, source.TotalDocuments, nullTime(source.LastSyncedAt), now, source.ID)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateSource(ctx context.Context, source *Source) error {
	return updateSource(ctx, s.querier(), source)
}

func listSources(ctx context.Context, q querier) ([]*Source, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*Source, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (s *SQLiteStorage) ListSources(ctx context.Context) ([]*Source, error) {
	return listSources(ctx, s.querier())
}

// Document operations

func upsertDocument(ctx context.Context, q querier, doc *Document) error {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO documents (source_id, record_id, kind, slug, title, description, tags, body, url,
		                       published_at, content_hash, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, slug) DO UPDATE SET
			record_id = excluded.record_id,
			kind = excluded.kind,
			title = excluded.title,
			description = excluded.description,
			tags = excluded.tags,
			body = excluded.body,
			url = excluded.url,
			published_at = excluded.published_at,
			content_hash = excluded.content_hash,
			position = excluded.position,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err = q.QueryRowContext(ctx, query,
		doc.SourceID, doc.RecordID, doc.Kind, doc.Slug, doc.Title, doc.Description,
		string(tagsJSON), doc.Body, doc.URL, nullTime(doc.PublishedAt),
		doc.ContentHash[:], doc.Position, now, now).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *Document) error {
	return upsertDocument(ctx, s.querier(), doc)
}

const documentColumns = `id, source_id, record_id, kind, slug, title, description, tags, body, url,
	published_at, content_hash, position, created_at, updated_at`

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var description, body, url sql.NullString
	var tagsJSON string
	var publishedAt sql.NullTime
	var hash []byte

	err := row.Scan(
		&doc.ID, &doc.SourceID, &doc.RecordID, &doc.Kind, &doc.Slug, &doc.Title,
		&description, &tagsJSON, &body, &url, &publishedAt, &hash, &doc.Position,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Description = description.String
	doc.Body = body.String
	doc.URL = url.String
	if publishedAt.Valid {
		doc.PublishedAt = publishedAt.Time
	}
	copy(doc.ContentHash[:], hash)
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of document %d: %w", doc.ID, err)
	}
	return &doc, nil
}

func getDocument(ctx context.Context, q querier, sourceID int64, slug string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE source_id = ? AND slug = ?`
	doc, err := scanDocument(q.QueryRowContext(ctx, query, sourceID, slug))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, sourceID int64, slug string) (*Document, error) {
	return getDocument(ctx, s.querier(), sourceID, slug)
}

func deleteDocument(ctx context.Context, q querier, documentID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, documentID)
	return err
}

func (s *SQLiteStorage) DeleteDocument(ctx context.Context, documentID int64) error {
	return deleteDocument(ctx, s.querier(), documentID)
}

func queryDocuments(ctx context.Context, q querier, query string, args ...interface{}) ([]*Document, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context, sourceID int64) ([]*Document, error) {
	return queryDocuments(ctx, s.querier(),
		`SELECT `+documentColumns+` FROM documents WHERE source_id = ? ORDER BY position, id`, sourceID)
}

// ListAllDocuments returns every document grouped by source, each source
// in its load order
func (s *SQLiteStorage) ListAllDocuments(ctx context.Context) ([]*Document, error) {
	return queryDocuments(ctx, s.querier(),
		`SELECT `+documentColumns+` FROM documents ORDER BY source_id, position, id`)
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*CatalogStatus, error) {
	version, err := SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, err
	}

	status := &CatalogStatus{
		SchemaVersion: version,
		Sources:       make([]SourceStatus, 0),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, s.kind, s.last_synced_at, COUNT(d.id)
		FROM sources s
		LEFT JOIN documents d ON d.source_id = s.id
		GROUP BY s.id
		ORDER BY s.name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var ss SourceStatus
		var lastSyncedAt sql.NullTime
		if err := rows.Scan(&ss.Name, &ss.Kind, &lastSyncedAt, &ss.DocumentsCount); err != nil {
			return nil, err
		}
		if lastSyncedAt.Valid {
			ss.LastSyncedAt = lastSyncedAt.Time
			if ss.LastSyncedAt.After(status.LastSyncedAt) {
				status.LastSyncedAt = ss.LastSyncedAt
			}
		}
		status.DocumentsCount += ss.DocumentsCount
		status.Sources = append(status.Sources, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		HasDocuments:       status.DocumentsCount > 0,
	}

	return status, nil
}

// Transaction methods delegate to the shared implementations with the tx querier

func (t *sqliteTx) CreateSource(ctx context.Context, source *Source) error {
	return createSource(ctx, t.querier(), source)
}

func (t *sqliteTx) GetSource(ctx context.Context, name string) (*Source, error) {
	return getSource(ctx, t.querier(), name)
}

func (t *sqliteTx) UpdateSource(ctx context.Context, source *Source) error {
	return updateSource(ctx, t.querier(), source)
}

func (t *sqliteTx) ListSources(ctx context.Context) ([]*Source, error) {
	return listSources(ctx, t.querier())
}

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *Document) error {
	return upsertDocument(ctx, t.querier(), doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, sourceID int64, slug string) (*Document, error) {
	return getDocument(ctx, t.querier(), sourceID, slug)
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, documentID int64) error {
	return deleteDocument(ctx, t.querier(), documentID)
}

func (t *sqliteTx) ListDocuments(ctx context.Context, sourceID int64) ([]*Document, error) {
	return queryDocuments(ctx, t.querier(),
		`SELECT `+documentColumns+` FROM documents WHERE source_id = ? ORDER BY position, id`, sourceID)
}

func (t *sqliteTx) ListAllDocuments(ctx context.Context) ([]*Document, error) {
	return queryDocuments(ctx, t.querier(),
		`SELECT `+documentColumns+` FROM documents ORDER BY source_id, position, id`)
}

// GetStatus is unavailable inside a transaction: the pool has a single
// connection and the tx already holds it.
func (t *sqliteTx) GetStatus(ctx context.Context) (*CatalogStatus, error) {
	return nil, errors.New("status not available inside a transaction")
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions not supported")
}
