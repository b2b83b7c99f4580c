package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/config"
	"github.com/JaimeStill/flipbook-lab/internal/ingest"
)

// fakeStorage is an in-memory storage.System for pipeline tests.
type fakeStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	failKey string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string][]byte)}
}

func (f *fakeStorage) Init() error { return nil }

func (f *fakeStorage) Store(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKey != "" && strings.Contains(key, f.failKey) {
		return fmt.Errorf("store %s: disk full", key)
	}
	f.data[key] = data
	return nil
}

func (f *fakeStorage) Retrieve(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[key]
	if !ok {
		return nil, fmt.Errorf("not found: %s", key)
	}
	return data, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeStorage) DeletePrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func (f *fakeStorage) Validate(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data))
	for key := range f.data {
		keys = append(keys, key)
	}
	return keys
}

// fakeSource renders placeholder pages without any document backend.
type fakeSource struct {
	pages      int
	meta       ingest.Metadata
	failPage   int
	textByPage map[int]string
}

func (f *fakeSource) PageCount() int            { return f.pages }
func (f *fakeSource) Metadata() ingest.Metadata { return f.meta }
func (f *fakeSource) Close() error              { return nil }

func (f *fakeSource) RenderPage(_ context.Context, pageNumber int, spec ingest.RenderSpec) (*ingest.Rendered, error) {
	if f.failPage > 0 && pageNumber == f.failPage {
		return nil, errors.New("render failure")
	}
	return &ingest.Rendered{
		Data:   []byte(fmt.Sprintf("page-%d", pageNumber)),
		Width:  spec.MaxWidth,
		Height: spec.MaxHeight,
		Format: "pdf",
	}, nil
}

func (f *fakeSource) PageText(_ context.Context, pageNumber int) (string, error) {
	return f.textByPage[pageNumber], nil
}

type fakeOpener struct {
	src     *fakeSource
	openErr error
}

func (f *fakeOpener) Open(_ context.Context, _ *ingest.SourceFile) (ingest.Source, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.src, nil
}

func testConfig() config.IngestConfig {
	return config.IngestConfig{
		AcceptedTypes:  []string{"application/pdf"},
		MaxPageWidth:   1600,
		MaxPageHeight:  2000,
		ThumbnailScale: 0.2,
		StreamBuffer:   64,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFile() *ingest.SourceFile {
	return &ingest.SourceFile{
		Name:        "report.pdf",
		ContentType: "application/pdf",
		Size:        64,
		Data:        []byte("%PDF-fake"),
	}
}

func collect(run *ingest.Run) []ingest.ProgressEvent {
	var events []ingest.ProgressEvent
	for event := range run.Events() {
		events = append(events, event)
	}
	return events
}

func TestPipeline_Ingest_Success(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{
		pages:      3,
		meta:       ingest.Metadata{Title: "Quarterly Report", Author: "Finance"},
		textByPage: map[int]string{1: "alpha", 2: "beta alpha"},
	}}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{IncludeText: true})
	events := collect(run)

	doc, err := run.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}

	if doc.Title != "Quarterly Report" {
		t.Errorf("Title = %q, want %q", doc.Title, "Quarterly Report")
	}
	if doc.PageCount != 3 || len(doc.Pages) != 3 {
		t.Fatalf("PageCount = %d, Pages = %d, want 3", doc.PageCount, len(doc.Pages))
	}

	for i, page := range doc.Pages {
		if page.PageNumber != i+1 {
			t.Errorf("page %d number = %d, want %d", i, page.PageNumber, i+1)
		}
		if !strings.Contains(page.ImageRef, fmt.Sprintf("pages/%04d", i+1)) {
			t.Errorf("page %d image ref = %q", i, page.ImageRef)
		}
		if !strings.Contains(page.ThumbnailRef, fmt.Sprintf("thumbs/%04d", i+1)) {
			t.Errorf("page %d thumbnail ref = %q", i, page.ThumbnailRef)
		}
	}
	if doc.Pages[1].Text != "beta alpha" {
		t.Errorf("page 2 text = %q, want %q", doc.Pages[1].Text, "beta alpha")
	}

	if len(events) == 0 {
		t.Fatal("no progress events emitted")
	}

	first, last := events[0], events[len(events)-1]
	if first.Stage != ingest.StageUploading || first.Percent != 0 {
		t.Errorf("first event = %s@%d, want uploading@0", first.Stage, first.Percent)
	}
	if last.Stage != ingest.StageComplete || last.Percent != 100 {
		t.Errorf("last event = %s@%d, want complete@100", last.Stage, last.Percent)
	}

	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent {
			t.Errorf("percent decreased: %d then %d", events[i-1].Percent, events[i].Percent)
		}
	}

	// source file plus image and thumbnail per page
	if got := len(store.keys()); got != 7 {
		t.Errorf("stored %d artifacts, want 7", got)
	}
}

func TestPipeline_Ingest_TitleFallsBackToFileName(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{pages: 1}}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{})
	collect(run)

	doc, err := run.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if doc.Title != "report" {
		t.Errorf("Title = %q, want %q", doc.Title, "report")
	}
}

func TestPipeline_Ingest_TextExtractionDisabled(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{
		pages:      1,
		textByPage: map[int]string{1: "alpha"},
	}}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{IncludeText: false})
	collect(run)

	doc, err := run.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if doc.Pages[0].Text != "" {
		t.Errorf("page text = %q, want empty with extraction disabled", doc.Pages[0].Text)
	}
}

func TestPipeline_Ingest_OpenFailure(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{openErr: errors.New("corrupt file")}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{})
	events := collect(run)

	_, err := run.Result()
	if !errors.Is(err, ingest.ErrStageFailed) {
		t.Fatalf("Result() error = %v, want ErrStageFailed", err)
	}

	errorEvents := 0
	for _, event := range events {
		if event.Stage == ingest.StageError {
			errorEvents++
		}
	}
	if errorEvents != 1 {
		t.Errorf("emitted %d error events, want exactly 1", errorEvents)
	}
	if events[len(events)-1].Stage != ingest.StageError {
		t.Errorf("last event = %s, want error", events[len(events)-1].Stage)
	}

	if got := len(store.keys()); got != 0 {
		t.Errorf("%d artifacts remain after failed run, want 0", got)
	}
}

func TestPipeline_Ingest_PageFailureCleansUp(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{pages: 3, failPage: 2}}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{})
	events := collect(run)

	doc, err := run.Result()
	if !errors.Is(err, ingest.ErrStageFailed) {
		t.Fatalf("Result() error = %v, want ErrStageFailed", err)
	}
	if doc != nil {
		t.Error("partial document returned from failed run")
	}

	last := events[len(events)-1]
	if last.Stage != ingest.StageError {
		t.Errorf("last event = %s, want error", last.Stage)
	}
	if !strings.Contains(last.Message, "page 2 of 3") {
		t.Errorf("error message = %q, want page reference", last.Message)
	}

	if got := len(store.keys()); got != 0 {
		t.Errorf("%d artifacts remain after failed run, want 0", got)
	}
}

func TestPipeline_Ingest_EmptyDocument(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{pages: 0}}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{})
	events := collect(run)

	_, err := run.Result()
	if !errors.Is(err, ingest.ErrStageFailed) {
		t.Fatalf("Result() error = %v, want ErrStageFailed", err)
	}
	if events[len(events)-1].Stage != ingest.StageError {
		t.Errorf("last event = %s, want error", events[len(events)-1].Stage)
	}
}

func TestPipeline_Ingest_Cancellation(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{pages: 3}}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := pipeline.Ingest(ctx, testFile(), ingest.Options{})
	events := collect(run)

	_, err := run.Result()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Result() error = %v, want context.Canceled", err)
	}

	for _, event := range events {
		if event.Stage == ingest.StageError || event.Stage == ingest.StageComplete {
			t.Errorf("terminal event %s emitted after cancellation", event.Stage)
		}
	}

	if got := len(store.keys()); got != 0 {
		t.Errorf("%d artifacts remain after cancelled run, want 0", got)
	}
}

func TestPipeline_Result_WithoutDrainingEvents(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{pages: 10}}

	// a buffer smaller than the event count forces the pipeline to rely on
	// Result consuming the backlog
	cfg := testConfig()
	cfg.StreamBuffer = 2
	pipeline := ingest.New(opener, store, testLogger(), cfg)

	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{})

	done := make(chan struct{})
	var doc *ingest.ProcessedDocument
	var err error
	go func() {
		doc, err = run.Result()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Result() blocked on undrained event channel")
	}

	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if doc == nil || doc.PageCount != 10 {
		t.Fatalf("doc = %+v, want 10 pages", doc)
	}
}

func TestPipeline_Ingest_ProgressCallback(t *testing.T) {
	store := newFakeStorage()
	opener := &fakeOpener{src: &fakeSource{pages: 2}}
	pipeline := ingest.New(opener, store, testLogger(), testConfig())

	var callbacks []ingest.Stage
	run := pipeline.Ingest(context.Background(), testFile(), ingest.Options{
		Progress: func(event ingest.ProgressEvent) {
			callbacks = append(callbacks, event.Stage)
		},
	})

	events := collect(run)
	<-run.Done()

	if len(callbacks) != len(events) {
		t.Errorf("callback fired %d times, %d events delivered", len(callbacks), len(events))
	}
}
