package ingest

import (
	"context"
	"time"
)

// Metadata carries best-effort document properties read from the source.
type Metadata struct {
	Title    string
	Author   string
	Created  *time.Time
	Modified *time.Time
}

// RenderSpec bounds a page rendering request.
type RenderSpec struct {
	MaxWidth  int
	MaxHeight int

	// Format is the requested artifact format. Sources fall back to their
	// native format when the request is unsupported.
	Format string

	// Scale, when non-zero, reduces the bounded dimensions by the given
	// fraction. Used for thumbnail rendering.
	Scale float64
}

// Rendered is the product of rendering a single page.
type Rendered struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// Source provides page-level access to an opened document. Page numbers are
// 1-based.
type Source interface {
	PageCount() int
	Metadata() Metadata
	RenderPage(ctx context.Context, pageNumber int, spec RenderSpec) (*Rendered, error)
	PageText(ctx context.Context, pageNumber int) (string, error)
	Close() error
}

// Opener turns an uploaded file into a Source. Implementations delegate the
// actual decoding and rasterization to an external renderer.
type Opener interface {
	Open(ctx context.Context, file *SourceFile) (Source, error)
}

// ProcessedPage is one unit of the converted document, immutable once
// produced.
type ProcessedPage struct {
	PageNumber   int    `json:"page_number"`
	ImageRef     string `json:"image_ref"`
	ThumbnailRef string `json:"thumbnail_ref"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Text         string `json:"text"`
}

// ProcessedDocument is the resolved output of a completed ingest run: the
// full page sequence in page-number order plus best-effort source metadata.
type ProcessedDocument struct {
	Title         string          `json:"title"`
	Author        string          `json:"author,omitempty"`
	FileName      string          `json:"file_name"`
	FileSize      int64           `json:"file_size"`
	PageCount     int             `json:"page_count"`
	Pages         []ProcessedPage `json:"pages"`
	SourceRef     string          `json:"source_ref"`
	StoragePrefix string          `json:"storage_prefix"`
}
