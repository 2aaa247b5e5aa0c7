package types

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Validation errors
var (
	ErrEmptyID     = errors.New("id cannot be empty")
	ErrEmptyText   = errors.New("text cannot be empty")
	ErrEmptySource = errors.New("source cannot be empty")
)

// Sentinel errors for the retrieval pipeline.
var (
	// ErrInvalidFilterKey is returned when a metadata filter names an unknown field.
	ErrInvalidFilterKey = errors.New("invalid filter key")
	// ErrStorageUnavailable is returned when the chunk store cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrEmbeddingProvider is returned when the embedding provider fails.
	ErrEmbeddingProvider = errors.New("embedding provider failure")
	// ErrDimensionMismatch is returned when two embeddings have different lengths.
	// This always indicates an indexing bug and is never silently skipped.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNotFound is returned when a requested chunk or document does not exist.
	ErrNotFound = errors.New("not found")
)

// Chunk is a contiguous span of a source document, carrying the text, its
// position within the document, an optional embedding, and document metadata.
type Chunk struct {
	ID         string    `json:"id" mapstructure:"id"`
	Text       string    `json:"text" mapstructure:"text"`
	Source     string    `json:"source" mapstructure:"source"`
	ChunkIndex int       `json:"chunk_index" mapstructure:"chunk_index"`
	Embedding  []float32 `json:"embedding,omitempty" mapstructure:"embedding"`
	Metadata   Metadata  `json:"metadata" mapstructure:"metadata"`
}

// Validate checks if the Chunk has all required fields set.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if c.Text == "" {
		return ErrEmptyText
	}
	if c.Source == "" {
		return ErrEmptySource
	}
	return nil
}

// Metadata is the fixed per-document metadata schema. Fields mirror the
// payload carried alongside each chunk in the vector store.
type Metadata struct {
	Title          string   `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Year           int      `json:"year,omitempty" yaml:"year,omitempty" mapstructure:"year"`
	Semester       string   `json:"semester,omitempty" yaml:"semester,omitempty" mapstructure:"semester"`
	Month          string   `json:"month,omitempty" yaml:"month,omitempty" mapstructure:"month"`
	FullDate       string   `json:"full_date,omitempty" yaml:"full_date,omitempty" mapstructure:"full_date"`
	CommitteeCodes []string `json:"committee_codes,omitempty" yaml:"committee_codes,omitempty" mapstructure:"committee_codes"`
	BodyCode       string   `json:"body_code,omitempty" yaml:"body_code,omitempty" mapstructure:"body_code"`
	FileType       string   `json:"file_type,omitempty" yaml:"file_type,omitempty" mapstructure:"file_type"`
	Stance         string   `json:"stance,omitempty" yaml:"stance,omitempty" mapstructure:"stance"`
	Topic          string   `json:"topic,omitempty" yaml:"topic,omitempty" mapstructure:"topic"`
	Status         string   `json:"status,omitempty" yaml:"status,omitempty" mapstructure:"status"`
	ActionType     string   `json:"action_type,omitempty" yaml:"action_type,omitempty" mapstructure:"action_type"`
	Link           string   `json:"link,omitempty" yaml:"link,omitempty" mapstructure:"link"`
	Draft          bool     `json:"draft,omitempty" yaml:"draft,omitempty" mapstructure:"draft"`
}

// FilterableFields lists the metadata keys accepted by equality filters.
// Keys outside this set are rejected with ErrInvalidFilterKey.
var FilterableFields = []string{
	"title", "year", "semester", "month", "full_date", "committee_codes",
	"body_code", "file_type", "stance", "topic", "status", "action_type",
	"link", "draft", "source",
}

// Field returns the metadata value stored under the given key, and whether the
// key is part of the schema at all. Slice-valued fields are returned as-is.
func (m *Metadata) Field(key string) (interface{}, bool) {
	switch key {
	case "title":
		return m.Title, true
	case "year":
		return m.Year, true
	case "semester":
		return m.Semester, true
	case "month":
		return m.Month, true
	case "full_date":
		return m.FullDate, true
	case "committee_codes":
		return m.CommitteeCodes, true
	case "body_code":
		return m.BodyCode, true
	case "file_type":
		return m.FileType, true
	case "stance":
		return m.Stance, true
	case "topic":
		return m.Topic, true
	case "status":
		return m.Status, true
	case "action_type":
		return m.ActionType, true
	case "link":
		return m.Link, true
	case "draft":
		return m.Draft, true
	default:
		return nil, false
	}
}

// Date parses FullDate (YYYY-MM-DD) into a time.Time. Falls back to
// January 1 of Year when only the year is known. Returns the zero time
// when no date information is present.
func (m *Metadata) Date() time.Time {
	if m.FullDate != "" {
		if t, err := time.Parse("2006-01-02", m.FullDate); err == nil {
			return t
		}
	}
	if m.Year > 0 {
		return time.Date(m.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// SearchText builds the text a lexical index sees for this chunk: the
// populated metadata fields followed by the chunk body. Filenames and
// committee tags carry a lot of query-matching signal in this corpus, so
// they are scored alongside the content itself.
func (c *Chunk) SearchText() string {
	var b strings.Builder
	m := &c.Metadata
	parts := []string{c.Source, m.Title, m.Semester, m.Month, m.FullDate, m.BodyCode, m.FileType, m.Stance, m.Topic, m.Status, m.ActionType}
	for _, p := range parts {
		if p != "" {
			b.WriteString(p)
			b.WriteByte(' ')
		}
	}
	for _, code := range m.CommitteeCodes {
		b.WriteString(code)
		b.WriteByte(' ')
	}
	if m.Year > 0 {
		b.WriteString(strconv.Itoa(m.Year))
		b.WriteByte(' ')
	}
	b.WriteString(c.Text)
	return b.String()
}
