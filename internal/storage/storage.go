package storage

import (
	"context"
	"time"

	"github.com/dshills/sitesearch-mcp/pkg/types"
)

// Storage defines the interface for persisting synced content records
type Storage interface {
	// Source operations
	CreateSource(ctx context.Context, source *Source) error
	GetSource(ctx context.Context, name string) (*Source, error)
	UpdateSource(ctx context.Context, source *Source) error
	ListSources(ctx context.Context) ([]*Source, error)

	// Document operations
	UpsertDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, sourceID int64, slug string) (*Document, error)
	DeleteDocument(ctx context.Context, documentID int64) error
	ListDocuments(ctx context.Context, sourceID int64) ([]*Document, error)
	ListAllDocuments(ctx context.Context) ([]*Document, error)

	// Status operations
	GetStatus(ctx context.Context) (*CatalogStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Source is one synced content origin, e.g. "markdown:tutorials"
type Source struct {
	ID             int64
	Name           string
	Kind           string
	TotalDocuments int
	LastSyncedAt   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Document is a stored content record
type Document struct {
	ID          int64
	SourceID    int64
	RecordID    string
	Kind        string
	Slug        string
	Title       string
	Description string
	Tags        []string
	Body        string
	URL         string
	PublishedAt time.Time // Zero when unknown
	ContentHash [32]byte
	Position    int // Order within the source as last loaded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CatalogStatus contains statistics about the catalog
type CatalogStatus struct {
	SchemaVersion  string
	Sources        []SourceStatus
	DocumentsCount int
	IndexSizeMB    float64
	LastSyncedAt   time.Time
	Health         HealthStatus
}

// SourceStatus is the per-source part of CatalogStatus
type SourceStatus struct {
	Name           string
	Kind           string
	DocumentsCount int
	LastSyncedAt   time.Time
}

// HealthStatus represents the health of the catalog
type HealthStatus struct {
	DatabaseAccessible bool
	HasDocuments       bool
}

// ToRecord converts a stored document back into a search record
func (d *Document) ToRecord() types.ContentRecord {
	tags := make([]string, len(d.Tags))
	copy(tags, d.Tags)

	return types.ContentRecord{
		ID:          d.RecordID,
		Slug:        d.Slug,
		Kind:        types.ContentKind(d.Kind),
		URL:         d.URL,
		Title:       d.Title,
		Description: d.Description,
		Tags:        tags,
		Body:        d.Body,
		PublishedAt: d.PublishedAt,
	}
}

// FromRecord converts a search record into a document of sourceID
func FromRecord(rec types.ContentRecord, sourceID int64, position int) *Document {
	tags := make([]string, len(rec.Tags))
	copy(tags, rec.Tags)

	return &Document{
		SourceID:    sourceID,
		RecordID:    rec.ID,
		Kind:        string(rec.Kind),
		Slug:        rec.Slug,
		Title:       rec.Title,
		Description: rec.Description,
		Tags:        tags,
		Body:        rec.Body,
		URL:         rec.URL,
		PublishedAt: rec.PublishedAt,
		ContentHash: rec.ContentHash(),
		Position:    position,
	}
}

// Records converts documents to records, preserving order
func Records(docs []*Document) []types.ContentRecord {
	records := make([]types.ContentRecord, len(docs))
	for i, d := range docs {
		records[i] = d.ToRecord()
	}
	return records
}
