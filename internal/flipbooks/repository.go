package flipbooks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/config"
	"github.com/JaimeStill/flipbook-lab/internal/search"
	"github.com/JaimeStill/flipbook-lab/internal/storage"
	"github.com/JaimeStill/flipbook-lab/pkg/pagination"
	"github.com/JaimeStill/flipbook-lab/pkg/query"
	"github.com/JaimeStill/flipbook-lab/pkg/repository"
	"github.com/google/uuid"
)

// repo is the PostgreSQL-backed System. Multi-statement operations run in
// transactions so concurrent callers observe each operation atomically.
type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
	share   config.ShareConfig
	now     func() time.Time
}

// NewRepository creates a PostgreSQL document store backed by blob storage
// for page artifacts.
func NewRepository(db *sql.DB, store storage.System, logger *slog.Logger, share config.ShareConfig) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "flipbooks"),
		share:   share,
		now:     time.Now,
	}
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	pages := pagesFromProcessed(cmd.Processed.Pages)
	if err := validatePages(pages); err != nil {
		return nil, err
	}

	title := cmd.Title
	if title == "" {
		title = cmd.Processed.Title
	}

	now := r.now().UTC()
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

	settings, err := json.Marshal(doc.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var zero struct{}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO flipbook.documents (
				id, title, description, file_name, file_size, module_type,
				organization_id, workspace_id, total_pages, thumbnail,
				source_ref, storage_prefix, settings, tags, uploaded_at, last_modified
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			doc.ID, doc.Title, doc.Description, doc.FileName, doc.FileSize,
			doc.ModuleType, doc.OrganizationID, doc.WorkspaceID, doc.TotalPages,
			doc.Thumbnail, doc.SourceRef, doc.StoragePrefix, settings, tags,
			doc.UploadedAt, doc.LastModified,
		)
		if err != nil {
			return zero, err
		}

		for _, page := range doc.Pages {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO flipbook.pages (
					document_id, page_number, image_ref, thumbnail_ref,
					width, height, page_text
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				doc.ID, page.PageNumber, page.ImageRef, page.ThumbnailRef,
				page.Width, page.Height, page.Text,
			)
			if err != nil {
				return zero, err
			}
		}

		return zero, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", doc.ID, "title", doc.Title, "pages", doc.TotalPages)
	return doc, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error) {
	builder := r.builder(filters)

	countSQL, countArgs := builder.BuildCount()
	total, err := repository.QueryOne(ctx, r.db, countSQL, countArgs,
		func(s repository.Scanner) (int, error) {
			var count int
			err := s.Scan(&count)
			return count, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	pageSQL, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	data := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if err := r.hydrate(ctx, r.db, doc); err != nil {
			return nil, err
		}
		data = append(data, *doc)
	}

	result := pagination.NewPageResult(data, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	return r.find(ctx, r.db, id, false)
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Document, error) {
		doc, err := r.find(ctx, tx, id, true)
		if err != nil {
			return nil, err
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
		doc.LastModified = r.now().UTC()

		settings, err := json.Marshal(doc.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode settings: %w", err)
		}
		tags, err := json.Marshal(doc.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}

		err = repository.ExecExpectOne(ctx, tx, `
			UPDATE flipbook.documents
			SET title = $2, description = $3, module_type = $4,
				settings = $5, tags = $6, last_modified = $7
			WHERE id = $1`,
			doc.ID, doc.Title, doc.Description, doc.ModuleType,
			settings, tags, doc.LastModified,
		)
		return doc, err
	})
	if err != nil {
		return nil, repository.MapError(err, fmt.Errorf("%w: %s", ErrNotFound, id), ErrDuplicate)
	}

	r.logger.Info("document updated", "id", id)
	return doc, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	prefix, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		var prefix string
		err := tx.QueryRowContext(ctx,
			"SELECT storage_prefix FROM flipbook.documents WHERE id = $1", id,
		).Scan(&prefix)
		if err != nil {
			return "", err
		}

		err = repository.ExecExpectOne(ctx, tx,
			"DELETE FROM flipbook.documents WHERE id = $1", id)
		return prefix, err
	})
	if err != nil {
		return repository.MapError(err, fmt.Errorf("%w: %s", ErrNotFound, id), ErrDuplicate)
	}

	if prefix != "" {
		if err := r.storage.DeletePrefix(ctx, prefix); err != nil {
			r.logger.Warn("failed to remove document artifacts", "id", id, "error", err)
		}
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) TrackView(ctx context.Context, event ViewEvent) {
	at := event.Timestamp
	if at.IsZero() {
		at = r.now().UTC()
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var zero struct{}

		err := repository.ExecExpectOne(ctx, tx, `
			UPDATE flipbook.documents
			SET total_views = total_views + 1, last_viewed_at = $2
			WHERE id = $1`,
			event.DocumentID, at,
		)
		if err != nil {
			return zero, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO flipbook.page_views (document_id, page_number, views)
			SELECT $1, $2, 1
			WHERE EXISTS (
				SELECT 1 FROM flipbook.pages p
				WHERE p.document_id = $1 AND p.page_number = $2
			)
			ON CONFLICT (document_id, page_number)
			DO UPDATE SET views = flipbook.page_views.views + 1`,
			event.DocumentID, event.PageNumber,
		)
		return zero, err
	})
	if err != nil {
		r.logger.Warn("failed to record view event",
			"id", event.DocumentID,
			"page", event.PageNumber,
			"error", err)
	}
}

func (r *repo) Search(ctx context.Context, id uuid.UUID, query string) ([]search.Result, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return search.Search(searchPages(doc), query), nil
}

func (r *repo) CreateShare(ctx context.Context, id uuid.UUID, cmd ShareCommand) (*Share, error) {
	share := buildShare(r.share.Origin, id, cmd, r.now().UTC())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO flipbook.shares (
			id, document_id, mode, password, expires_at, max_views,
			current_views, share_url, embed_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		share.ID, share.DocumentID, share.Mode, share.Password,
		share.ExpiresAt, share.MaxViews, share.CurrentViews,
		share.ShareURL, share.EmbedCode, share.CreatedAt,
	)
	if err != nil {
		// foreign key violations report as a missing document
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	r.logger.Info("share created", "id", share.ID, "document", id, "mode", share.Mode)
	return share, nil
}

func (r *repo) FindShare(ctx context.Context, shareID string) (*Share, error) {
	share, err := repository.QueryOne(ctx, r.db, `
		SELECT id, document_id, mode, password, expires_at, max_views,
			current_views, share_url, embed_code, created_at
		FROM flipbook.shares WHERE id = $1`,
		[]any{shareID},
		func(s repository.Scanner) (*Share, error) {
			var (
				share     Share
				password  sql.NullString
				expiresAt sql.NullTime
				maxViews  sql.NullInt64
			)
			err := s.Scan(
				&share.ID, &share.DocumentID, &share.Mode, &password,
				&expiresAt, &maxViews, &share.CurrentViews,
				&share.ShareURL, &share.EmbedCode, &share.CreatedAt,
			)
			if err != nil {
				return nil, err
			}
			if password.Valid {
				share.Password = &password.String
			}
			if expiresAt.Valid {
				share.ExpiresAt = &expiresAt.Time
			}
			if maxViews.Valid {
				views := int(maxViews.Int64)
				share.MaxViews = &views
			}
			return &share, nil
		})
	if err != nil {
		return nil, repository.MapError(err, fmt.Errorf("%w: %s", ErrShareNotFound, shareID), ErrDuplicate)
	}
	return share, nil
}

func (r *repo) Export(ctx context.Context, id uuid.UUID, format ExportFormat) ([]byte, string, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return exportDocument(doc, format)
}

func (r *repo) PageAsset(ctx context.Context, id uuid.UUID, pageNumber int, thumbnail bool) ([]byte, string, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}

	ref, err := pageRef(doc, pageNumber, thumbnail)
	if err != nil {
		return nil, "", err
	}

	data, err := r.storage.Retrieve(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read page asset: %w", err)
	}
	return data, assetContentType(ref), nil
}

// builder assembles the filtered, ordered document query.
func (r *repo) builder(filters Filters) *query.Builder {
	return query.NewBuilder(documentsProjection(), "UploadedAt").
		WhereSearch(filters.Search, "Title", "Description", "TagsText").
		WhereEquals("ModuleType", equalsArg(filters.ModuleType)).
		WhereContainsAny("Tags", filters.Tags).
		WhereAfter("UploadedAt", filters.DateFrom).
		WhereBefore("UploadedAt", filters.DateTo).
		OrderBy(sortField(filters.SortBy), filters.Descending)
}

// find loads a document with its pages and view counts. forUpdate locks the
// document row for the duration of the caller's transaction.
func (r *repo) find(ctx context.Context, q repository.Queryer, id uuid.UUID, forUpdate bool) (*Document, error) {
	sqlStr, args := query.NewBuilder(documentsProjection(), "UploadedAt").BuildSingle("ID", id)
	if forUpdate {
		sqlStr += " FOR UPDATE"
	}

	doc, err := repository.QueryOne(ctx, q, sqlStr, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, fmt.Errorf("%w: %s", ErrNotFound, id), ErrDuplicate)
	}

	if err := r.hydrate(ctx, q, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// hydrate loads the pages and per-page view counts for a scanned document.
func (r *repo) hydrate(ctx context.Context, q repository.Queryer, doc *Document) error {
	pages, err := repository.QueryMany(ctx, q, `
		SELECT page_number, image_ref, thumbnail_ref, width, height, page_text
		FROM flipbook.pages WHERE document_id = $1
		ORDER BY page_number`,
		[]any{doc.ID},
		func(s repository.Scanner) (Page, error) {
			var page Page
			err := s.Scan(
				&page.PageNumber, &page.ImageRef, &page.ThumbnailRef,
				&page.Width, &page.Height, &page.Text,
			)
			return page, err
		})
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}
	doc.Pages = pages

	type pageViews struct {
		page  int
		views int64
	}
	views, err := repository.QueryMany(ctx, q, `
		SELECT page_number, views FROM flipbook.page_views
		WHERE document_id = $1`,
		[]any{doc.ID},
		func(s repository.Scanner) (pageViews, error) {
			var pv pageViews
			err := s.Scan(&pv.page, &pv.views)
			return pv, err
		})
	if err != nil {
		return fmt.Errorf("failed to load view counts: %w", err)
	}

	doc.Analytics.PagesViewed = make(map[int]int64, len(views))
	for _, pv := range views {
		doc.Analytics.PagesViewed[pv.page] = pv.views
	}
	return nil
}

// scanDocument scans one documents row in projection column order.
func scanDocument(s repository.Scanner) (*Document, error) {
	var (
		doc          Document
		settings     []byte
		tags         []byte
		lastViewedAt sql.NullTime
	)

	err := s.Scan(
		&doc.ID, &doc.Title, &doc.Description, &doc.FileName, &doc.FileSize,
		&doc.ModuleType, &doc.OrganizationID, &doc.WorkspaceID, &doc.TotalPages,
		&doc.Thumbnail, &doc.SourceRef, &doc.StoragePrefix, &settings, &tags,
		&doc.Analytics.TotalViews, &doc.Analytics.UniqueViewers, &lastViewedAt,
		&doc.Analytics.AverageTimeSpent, &doc.Analytics.CompletionRate,
		&doc.UploadedAt, &doc.LastModified,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(settings, &doc.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := json.Unmarshal(tags, &doc.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if lastViewedAt.Valid {
		doc.Analytics.LastViewedAt = &lastViewedAt.Time
	}

	return &doc, nil
}

// equalsArg unwraps an optional string filter for WhereEquals, which ignores
// untyped nil values.
func equalsArg(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
