package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/flipbook-lab/internal/config"
	"github.com/JaimeStill/flipbook-lab/internal/storage"
	"github.com/google/uuid"
)

// Options controls a single ingest run.
type Options struct {
	// IncludeText enables per-page text extraction.
	IncludeText bool

	// MaxWidth and MaxHeight bound full-resolution rendering.
	// Zero values fall back to the configured defaults.
	MaxWidth  int
	MaxHeight int

	// Format is the target artifact format, passed through to the source
	// renderer.
	Format string

	// Progress, when set, is invoked synchronously for every emitted event.
	// A slow callback stalls the pipeline.
	Progress func(ProgressEvent)
}

// Run is the handle for an in-flight ingest. Progress arrives on Events();
// Result blocks until the run reaches a terminal state.
type Run struct {
	stream *Stream
	done   chan struct{}

	doc *ProcessedDocument
	err error
}

// Events returns the run's progress event channel. It is closed once the
// run completes, fails, or is cancelled.
func (r *Run) Events() <-chan ProgressEvent {
	return r.stream.Events()
}

// Done is closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Result blocks until the run finishes and returns the processed document
// or the failure that ended the run. Undelivered progress events are
// discarded so the pipeline never stalls on an undrained event channel.
func (r *Run) Result() (*ProcessedDocument, error) {
	for range r.stream.Events() {
	}
	<-r.done
	return r.doc, r.err
}

// Pipeline converts validated source files into page sequences. Each stage
// and each per-page conversion is a suspension point; a cancelled context
// stops further progress emission and no partial document is produced.
type Pipeline struct {
	opener  Opener
	storage storage.System
	logger  *slog.Logger
	cfg     config.IngestConfig
}

// New creates an ingestion pipeline.
func New(opener Opener, store storage.System, logger *slog.Logger, cfg config.IngestConfig) *Pipeline {
	return &Pipeline{
		opener:  opener,
		storage: store,
		logger:  logger.With("system", "ingest"),
		cfg:     cfg,
	}
}

// Ingest starts an asynchronous run for the file and returns its handle.
// Failures after this call are delivered through the progress stream as a
// single error event; Ingest itself never fails.
func (p *Pipeline) Ingest(ctx context.Context, file *SourceFile, opts Options) *Run {
	run := &Run{
		stream: NewStream(p.cfg.StreamBuffer),
		done:   make(chan struct{}),
	}

	go p.execute(ctx, file, opts, run)
	return run
}

func (p *Pipeline) execute(ctx context.Context, file *SourceFile, opts Options, run *Run) {
	defer close(run.done)
	defer run.stream.Close()

	if opts.MaxWidth < 1 {
		opts.MaxWidth = p.cfg.MaxPageWidth
	}
	if opts.MaxHeight < 1 {
		opts.MaxHeight = p.cfg.MaxPageHeight
	}

	emit := func(event ProgressEvent) {
		if run.stream.send(ctx, event) && opts.Progress != nil {
			opts.Progress(event)
		}
	}

	prefix := fmt.Sprintf("flipbooks/%s", uuid.New())

	fail := func(err error, message string) {
		p.logger.Error("ingest failed", "prefix", prefix, "error", err)
		p.cleanup(prefix)
		emit(ProgressEvent{
			Stage:   StageError,
			Message: message,
		})
		run.err = fmt.Errorf("%w: %s", ErrStageFailed, message)
	}

	cancelled := func() bool {
		if ctx.Err() != nil {
			p.cleanup(prefix)
			run.err = ctx.Err()
			return true
		}
		return false
	}

	emit(ProgressEvent{
		Stage:   StageUploading,
		Percent: percentUploading,
		Message: "uploading source file",
	})

	sourceRef := fmt.Sprintf("%s/source%s", prefix, sourceExt(file))
	if err := p.storage.Store(ctx, sourceRef, file.Data); err != nil {
		fail(err, "failed to store source file")
		return
	}

	if cancelled() {
		return
	}

	emit(ProgressEvent{
		Stage:   StageProcessing,
		Percent: percentProcessing,
		Message: "analyzing document",
	})

	src, err := p.opener.Open(ctx, file)
	if err != nil {
		fail(err, "could not read the uploaded document")
		return
	}
	defer src.Close()

	total := src.PageCount()
	if total < 1 {
		fail(fmt.Errorf("document has no pages"), "the document contains no pages")
		return
	}

	if cancelled() {
		return
	}

	emit(ProgressEvent{
		Stage:      StageConverting,
		Percent:    percentConverting,
		Message:    "converting pages",
		TotalPages: total,
	})

	pages := make([]ProcessedPage, 0, total)

	for pageNum := 1; pageNum <= total; pageNum++ {
		if cancelled() {
			return
		}

		page, err := p.convertPage(ctx, src, prefix, pageNum, opts)
		if err != nil {
			fail(err, fmt.Sprintf("failed to convert page %d of %d", pageNum, total))
			return
		}

		pages = append(pages, *page)

		emit(ProgressEvent{
			Stage:       StageConverting,
			Percent:     convertingPercent(pageNum, total),
			Message:     fmt.Sprintf("converted page %d of %d", pageNum, total),
			CurrentPage: pageNum,
			TotalPages:  total,
		})
	}

	meta := src.Metadata()
	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	}

	run.doc = &ProcessedDocument{
		Title:         title,
		Author:        meta.Author,
		FileName:      file.Name,
		FileSize:      file.Size,
		PageCount:     total,
		Pages:         pages,
		SourceRef:     sourceRef,
		StoragePrefix: prefix,
	}

	emit(ProgressEvent{
		Stage:      StageComplete,
		Percent:    percentComplete,
		Message:    "conversion complete",
		TotalPages: total,
	})
}

func (p *Pipeline) convertPage(ctx context.Context, src Source, prefix string, pageNum int, opts Options) (*ProcessedPage, error) {
	full, err := src.RenderPage(ctx, pageNum, RenderSpec{
		MaxWidth:  opts.MaxWidth,
		MaxHeight: opts.MaxHeight,
		Format:    opts.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	imageRef := fmt.Sprintf("%s/pages/%04d.%s", prefix, pageNum, full.Format)
	if err := p.storage.Store(ctx, imageRef, full.Data); err != nil {
		return nil, fmt.Errorf("store page image: %w", err)
	}

	thumb, err := src.RenderPage(ctx, pageNum, RenderSpec{
		MaxWidth:  opts.MaxWidth,
		MaxHeight: opts.MaxHeight,
		Format:    opts.Format,
		Scale:     p.cfg.ThumbnailScale,
	})
	if err != nil {
		return nil, fmt.Errorf("render thumbnail: %w", err)
	}

	thumbRef := fmt.Sprintf("%s/thumbs/%04d.%s", prefix, pageNum, thumb.Format)
	if err := p.storage.Store(ctx, thumbRef, thumb.Data); err != nil {
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	var text string
	if opts.IncludeText {
		text, err = src.PageText(ctx, pageNum)
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
	}

	return &ProcessedPage{
		PageNumber:   pageNum,
		ImageRef:     imageRef,
		ThumbnailRef: thumbRef,
		Width:        full.Width,
		Height:       full.Height,
		Text:         text,
	}, nil
}

func (p *Pipeline) cleanup(prefix string) {
	if err := p.storage.DeletePrefix(context.Background(), prefix); err != nil {
		p.logger.Warn("artifact cleanup failed", "prefix", prefix, "error", err)
	}
}

func sourceExt(file *SourceFile) string {
	if ext := filepath.Ext(file.Name); ext != "" {
		return ext
	}
	return ".bin"
}
