package types

import (
	"crypto/sha256"
	"errors"
	"strings"
	"time"
)

// ContentKind identifies which section of the site a record belongs to
type ContentKind string

const (
	KindBlog      ContentKind = "blog"
	KindTutorials ContentKind = "tutorials"
	KindDocs      ContentKind = "docs"
)

// ContentRecord is the minimal searchable unit supplied by a loader.
// Title, Description, Tags and Body take part in matching; the remaining
// fields are carried through to results untouched.
type ContentRecord struct {
	// Searchable fields
	Title       string
	Description string   // Optional
	Tags        []string // Optional
	Body        string   // Optional, full text

	// Metadata
	ID          string
	Slug        string
	Kind        ContentKind
	URL         string
	PublishedAt time.Time
}

// Validate checks the fields a loader must always provide
func (r *ContentRecord) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	if r.Slug == "" {
		return ErrMissingSlug
	}
	return nil
}

// JoinedTags returns the tag list joined with single spaces
func (r *ContentRecord) JoinedTags() string {
	return strings.Join(r.Tags, " ")
}

// ContentHash returns a SHA-256 digest over every stored field, used to skip
// unchanged records during sync.
func (r *ContentRecord) ContentHash() [32]byte {
	var b strings.Builder
	b.WriteString(r.ID)
	b.WriteString("\x00")
	b.WriteString(string(r.Kind))
	b.WriteString("\x00")
	b.WriteString(r.Slug)
	b.WriteString("\x00")
	b.WriteString(r.Title)
	b.WriteString("\x00")
	b.WriteString(r.Description)
	b.WriteString("\x00")
	b.WriteString(strings.Join(r.Tags, "\x1f"))
	b.WriteString("\x00")
	b.WriteString(r.URL)
	b.WriteString("\x00")
	if !r.PublishedAt.IsZero() {
		b.WriteString(r.PublishedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("\x00")
	b.WriteString(r.Body)
	return sha256.Sum256([]byte(b.String()))
}

// Clone returns a copy that shares no slices with r
func (r *ContentRecord) Clone() ContentRecord {
	cp := *r
	if r.Tags != nil {
		cp.Tags = make([]string, len(r.Tags))
		copy(cp.Tags, r.Tags)
	}
	return cp
}

var errEmptyKind = errors.New("content kind cannot be empty")

// ValidateKind checks that k is one of the known site sections
func ValidateKind(k ContentKind) error {
	switch k {
	case KindBlog, KindTutorials, KindDocs:
		return nil
	case "":
		return errEmptyKind
	default:
		return ErrUnknownKind
	}
}
