package flipbooks

import (
	"fmt"
	"strings"
)

// ExportFormat identifies a document export encoding.
type ExportFormat string

// Recognized export formats. Only text export is implemented; pdf and
// images are accepted identifiers that report as unsupported.
const (
	ExportText   ExportFormat = "text"
	ExportPDF    ExportFormat = "pdf"
	ExportImages ExportFormat = "images"
)

// exportDocument renders the document in the requested format, returning the
// payload and its content type.
func exportDocument(doc *Document, format ExportFormat) ([]byte, string, error) {
	switch format {
	case ExportText:
		return exportText(doc), "text/plain; charset=utf-8", nil
	case ExportPDF, ExportImages:
		return nil, "", fmt.Errorf("%w: %s export is not available", ErrUnsupportedExport, format)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedExport, format)
	}
}

// exportText concatenates extracted page text with page headers. Pages
// without extracted text still contribute a header so page numbering stays
// aligned with the source document.
func exportText(doc *Document) []byte {
	var sb strings.Builder
	for i, page := range doc.Pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n", page.PageNumber)
		sb.WriteString(strings.TrimSpace(page.Text))
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}
