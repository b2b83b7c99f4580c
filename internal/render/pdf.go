// Package render provides the PDF-backed ingest source. Page artifacts are
// produced by splitting the document into single-page files with pdfcpu;
// per-page text extraction uses ledongthuc/pdf (pure Go, no CGO).
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/flipbook-lab/internal/ingest"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFOpener implements ingest.Opener for application/pdf sources.
type PDFOpener struct{}

// NewPDFOpener creates a PDF source opener.
func NewPDFOpener() *PDFOpener {
	return &PDFOpener{}
}

// Open materializes the uploaded file in a temporary workspace, optimizes
// it, splits it into single-page files, and prepares a text reader.
func (o *PDFOpener) Open(ctx context.Context, file *ingest.SourceFile) (ingest.Source, error) {
	dir, err := os.MkdirTemp("", "flipbook-ingest-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	src := &pdfSource{dir: dir, data: file.Data}

	if err := src.prepare(file); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return src, nil
}

type pdfSource struct {
	dir       string
	data      []byte
	pageCount int
	meta      ingest.Metadata
	reader    *pdf.Reader
}

func (s *pdfSource) prepare(file *ingest.SourceFile) error {
	source := filepath.Join(s.dir, "source.pdf")
	if err := os.WriteFile(source, s.data, 0644); err != nil {
		return fmt.Errorf("write source: %w", err)
	}

	optimized := filepath.Join(s.dir, "optimized.pdf")
	if err := api.OptimizeFile(source, optimized, nil); err != nil {
		return fmt.Errorf("optimize pdf: %w", err)
	}

	count, err := api.PageCountFile(optimized)
	if err != nil {
		return fmt.Errorf("page count: %w", err)
	}
	s.pageCount = count

	if err := api.SplitFile(optimized, s.dir, 1, nil); err != nil {
		return fmt.Errorf("split pdf: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(s.data), int64(len(s.data)))
	if err != nil {
		return fmt.Errorf("open text reader: %w", err)
	}
	s.reader = reader

	s.meta = ingest.Metadata{
		Title: strings.TrimSuffix(file.Name, filepath.Ext(file.Name)),
	}

	return nil
}

func (s *pdfSource) PageCount() int {
	return s.pageCount
}

func (s *pdfSource) Metadata() ingest.Metadata {
	return s.meta
}

// RenderPage returns the single-page artifact for the requested page. The
// artifact stays in PDF form; rasterization to the requested image format is
// the responsibility of the external renderer serving the artifact.
func (s *pdfSource) RenderPage(ctx context.Context, pageNumber int, spec ingest.RenderSpec) (*ingest.Rendered, error) {
	if pageNumber < 1 || pageNumber > s.pageCount {
		return nil, fmt.Errorf("page %d out of range [1, %d]", pageNumber, s.pageCount)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("optimized_%d.pdf", pageNumber))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page artifact: %w", err)
	}

	width, height := spec.MaxWidth, spec.MaxHeight
	if spec.Scale > 0 {
		width = int(float64(width) * spec.Scale)
		height = int(float64(height) * spec.Scale)
	}

	return &ingest.Rendered{
		Data:   data,
		Width:  width,
		Height: height,
		Format: "pdf",
	}, nil
}

func (s *pdfSource) PageText(ctx context.Context, pageNumber int) (string, error) {
	page := s.reader.Page(pageNumber)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		// Scanned or image-based pages yield no extractable text.
		return "", nil
	}

	return strings.TrimSpace(text), nil
}

func (s *pdfSource) Close() error {
	return os.RemoveAll(s.dir)
}
