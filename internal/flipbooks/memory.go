package flipbooks

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/config"
	"github.com/JaimeStill/flipbook-lab/internal/search"
	"github.com/JaimeStill/flipbook-lab/internal/storage"
	"github.com/JaimeStill/flipbook-lab/pkg/pagination"
	"github.com/google/uuid"
)

// memoryStore is a mutex-guarded in-memory System. Every operation takes
// effect atomically, so concurrent callers observe a single total order.
type memoryStore struct {
	mu      sync.RWMutex
	docs    map[uuid.UUID]*Document
	order   []uuid.UUID
	shares  map[string]*Share
	storage storage.System
	logger  *slog.Logger
	share   config.ShareConfig
	paging  pagination.Config
	now     func() time.Time
}

// NewMemory creates an in-memory document store backed by blob storage for
// page artifacts.
func NewMemory(store storage.System, logger *slog.Logger, share config.ShareConfig, paging pagination.Config) System {
	return &memoryStore{
		docs:    make(map[uuid.UUID]*Document),
		shares:  make(map[string]*Share),
		storage: store,
		logger:  logger.With("system", "flipbooks"),
		share:   share,
		paging:  paging,
		now:     time.Now,
	}
}

func (s *memoryStore) Create(_ context.Context, cmd CreateCommand) (*Document, error) {
	pages := pagesFromProcessed(cmd.Processed.Pages)
	if err := validatePages(pages); err != nil {
		return nil, err
	}

	title := cmd.Title
	if title == "" {
		title = cmd.Processed.Title
	}

	now := s.now().UTC()
	doc := &Document{
		ID:             uuid.New(),
		Title:          title,
		Description:    cmd.Description,
		FileName:       cmd.Processed.FileName,
		FileSize:       cmd.Processed.FileSize,
		ModuleType:     cmd.ModuleType,
		OrganizationID: cmd.OrganizationID,
		WorkspaceID:    cmd.WorkspaceID,
		TotalPages:     len(pages),
		Pages:          pages,
		Settings:       DefaultSettings().Merge(cmd.Settings),
		Tags:           normalizeTags(cmd.Tags),
		Thumbnail:      pages[0].ThumbnailRef,
		SourceRef:      cmd.Processed.SourceRef,
		StoragePrefix:  cmd.Processed.StoragePrefix,
		UploadedAt:     now,
		LastModified:   now,
		Analytics:      Analytics{PagesViewed: make(map[int]int64)},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)

	s.logger.Info("document created", "id", doc.ID, "title", doc.Title, "pages", doc.TotalPages)
	return cloneDocument(doc), nil
}

func (s *memoryStore) List(_ context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Document, 0, len(s.docs))
	for _, id := range s.order {
		if doc := s.docs[id]; filters.Matches(doc) {
			matched = append(matched, doc)
		}
	}
	filters.Sort(matched)

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}

	data := make([]Document, 0, end-start)
	for _, doc := range matched[start:end] {
		data = append(data, *cloneDocument(doc))
	}

	result := pagination.NewPageResult(data, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *memoryStore) Find(_ context.Context, id uuid.UUID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id)
}

func (s *memoryStore) Update(_ context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if cmd.Title != nil {
		doc.Title = *cmd.Title
	}
	if cmd.Description != nil {
		doc.Description = *cmd.Description
	}
	if cmd.ModuleType != nil {
		doc.ModuleType = *cmd.ModuleType
	}
	if cmd.Tags != nil {
		doc.Tags = normalizeTags(*cmd.Tags)
	}
	doc.Settings = doc.Settings.Merge(cmd.Settings)
	doc.LastModified = s.now().UTC()

	s.logger.Info("document updated", "id", doc.ID)
	return cloneDocument(doc), nil
}

func (s *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	doc, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(s.docs, id)
	s.order = slices.DeleteFunc(s.order, func(existing uuid.UUID) bool {
		return existing == id
	})
	maps.DeleteFunc(s.shares, func(_ string, share *Share) bool {
		return share.DocumentID == id
	})
	prefix := doc.StoragePrefix
	s.mu.Unlock()

	if prefix != "" {
		if err := s.storage.DeletePrefix(ctx, prefix); err != nil {
			s.logger.Warn("failed to remove document artifacts", "id", id, "error", err)
		}
	}

	s.logger.Info("document deleted", "id", id)
	return nil
}

func (s *memoryStore) TrackView(_ context.Context, event ViewEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[event.DocumentID]
	if !ok {
		s.logger.Warn("view event for unknown document", "id", event.DocumentID)
		return
	}

	at := event.Timestamp
	if at.IsZero() {
		at = s.now().UTC()
	}

	doc.Analytics.TotalViews++
	doc.Analytics.LastViewedAt = &at
	if event.PageNumber >= 1 && event.PageNumber <= doc.TotalPages {
		doc.Analytics.PagesViewed[event.PageNumber]++
	} else {
		s.logger.Warn("view event for out-of-range page",
			"id", event.DocumentID,
			"page", event.PageNumber)
	}
}

func (s *memoryStore) Search(_ context.Context, id uuid.UUID, query string) ([]search.Result, error) {
	s.mu.RLock()
	doc, err := s.find(id)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return search.Search(searchPages(doc), query), nil
}

func (s *memoryStore) CreateShare(_ context.Context, id uuid.UUID, cmd ShareCommand) (*Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	share := buildShare(s.share.Origin, id, cmd, s.now().UTC())
	s.shares[share.ID] = share

	s.logger.Info("share created", "id", share.ID, "document", id, "mode", share.Mode)
	clone := *share
	return &clone, nil
}

func (s *memoryStore) FindShare(_ context.Context, shareID string) (*Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	share, ok := s.shares[shareID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShareNotFound, shareID)
	}
	clone := *share
	return &clone, nil
}

func (s *memoryStore) Export(_ context.Context, id uuid.UUID, format ExportFormat) ([]byte, string, error) {
	s.mu.RLock()
	doc, err := s.find(id)
	s.mu.RUnlock()
	if err != nil {
		return nil, "", err
	}
	return exportDocument(doc, format)
}

func (s *memoryStore) PageAsset(ctx context.Context, id uuid.UUID, pageNumber int, thumbnail bool) ([]byte, string, error) {
	s.mu.RLock()
	doc, err := s.find(id)
	s.mu.RUnlock()
	if err != nil {
		return nil, "", err
	}

	ref, err := pageRef(doc, pageNumber, thumbnail)
	if err != nil {
		return nil, "", err
	}

	data, err := s.storage.Retrieve(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read page asset: %w", err)
	}
	return data, assetContentType(ref), nil
}

// find requires the caller to hold at least a read lock.
func (s *memoryStore) find(id uuid.UUID) (*Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneDocument(doc), nil
}

// cloneDocument deep-copies a document so callers can never alias store
// internals.
func cloneDocument(doc *Document) *Document {
	clone := *doc
	clone.Pages = slices.Clone(doc.Pages)
	clone.Tags = slices.Clone(doc.Tags)
	clone.Analytics.PagesViewed = maps.Clone(doc.Analytics.PagesViewed)
	if doc.Analytics.LastViewedAt != nil {
		at := *doc.Analytics.LastViewedAt
		clone.Analytics.LastViewedAt = &at
	}
	return &clone
}
