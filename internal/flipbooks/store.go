package flipbooks

import (
	"context"
	"fmt"
	"path"

	"github.com/JaimeStill/flipbook-lab/internal/search"
	"github.com/JaimeStill/flipbook-lab/pkg/pagination"
	"github.com/google/uuid"
)

// System is the document store contract. Both the in-memory and PostgreSQL
// implementations satisfy it; operations are atomic with respect to each
// other regardless of backend.
type System interface {
	// Create registers a processed document and returns the stored record.
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)

	// List returns a page of documents matching the filters.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error)

	// Find returns a single document by id.
	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// Update applies a partial modification and returns the updated record.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error)

	// Delete removes a document and its stored artifacts.
	Delete(ctx context.Context, id uuid.UUID) error

	// TrackView records a view event. Failures are logged, never surfaced;
	// a missing document makes the event a no-op.
	TrackView(ctx context.Context, event ViewEvent)

	// Search scans the document's extracted page text for the query.
	Search(ctx context.Context, id uuid.UUID, query string) ([]search.Result, error)

	// CreateShare issues a new share record for the document.
	CreateShare(ctx context.Context, id uuid.UUID, cmd ShareCommand) (*Share, error)

	// FindShare resolves a share record by its identifier.
	FindShare(ctx context.Context, shareID string) (*Share, error)

	// Export renders the document in the requested format, returning the
	// payload and its content type.
	Export(ctx context.Context, id uuid.UUID, format ExportFormat) ([]byte, string, error)

	// PageAsset streams a stored page image or thumbnail, returning the
	// payload and its content type.
	PageAsset(ctx context.Context, id uuid.UUID, pageNumber int, thumbnail bool) ([]byte, string, error)
}

// searchPages adapts stored pages for the search scanner.
func searchPages(doc *Document) []search.Page {
	pages := make([]search.Page, len(doc.Pages))
	for i, p := range doc.Pages {
		pages[i] = search.Page{PageNumber: p.PageNumber, Text: p.Text}
	}
	return pages
}

// pageRef selects the stored artifact reference for a page, validating the
// requested page number against the document.
func pageRef(doc *Document, pageNumber int, thumbnail bool) (string, error) {
	for _, p := range doc.Pages {
		if p.PageNumber == pageNumber {
			if thumbnail {
				return p.ThumbnailRef, nil
			}
			return p.ImageRef, nil
		}
	}
	return "", fmt.Errorf("%w: page %d", ErrNotFound, pageNumber)
}

// assetContentType infers the content type of a stored page artifact from
// its file extension.
func assetContentType(ref string) string {
	switch path.Ext(ref) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// validatePages enforces that page numbers form the contiguous sequence
// 1..n in order.
func validatePages(pages []Page) error {
	if len(pages) == 0 {
		return fmt.Errorf("%w: document has no pages", ErrInvalidPages)
	}
	for i, p := range pages {
		if p.PageNumber != i+1 {
			return fmt.Errorf("%w: expected page %d, found %d", ErrInvalidPages, i+1, p.PageNumber)
		}
	}
	return nil
}
