// Package flipbooks provides the document store: identity, metadata,
// settings, analytics counters, sharing, and query over converted documents.
// It is the system of record for completed ingests and integrates with blob
// storage for page artifacts.
package flipbooks

import (
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/ingest"
	"github.com/google/uuid"
)

// Theme selects the viewer color scheme.
type Theme string

// Recognized themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Page is one unit of a converted document. Pages are created once by the
// ingestion pipeline and immutable thereafter.
type Page struct {
	PageNumber   int    `json:"page_number"`
	ImageRef     string `json:"image_ref"`
	ThumbnailRef string `json:"thumbnail_ref"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Text         string `json:"text,omitempty"`
}

// Settings holds per-document viewer configuration. The boolean gates
// control UI affordances only; nothing in this package enforces them.
type Settings struct {
	AllowDownload     bool  `json:"allow_download"`
	AllowPrint        bool  `json:"allow_print"`
	AllowShare        bool  `json:"allow_share"`
	AutoFlip          bool  `json:"auto_flip"`
	FlipDuration      int   `json:"flip_duration"`
	DefaultZoom       int   `json:"default_zoom"`
	Theme             Theme `json:"theme"`
	ShowPageNumbers   bool  `json:"show_page_numbers"`
	EnableSearch      bool  `json:"enable_search"`
	EnableAnnotations bool  `json:"enable_annotations"`
}

// DefaultSettings returns the settings seeded onto a new document before any
// caller-supplied values are merged.
func DefaultSettings() Settings {
	return Settings{
		AllowDownload:   true,
		AllowPrint:      true,
		AllowShare:      true,
		FlipDuration:    3000,
		DefaultZoom:     100,
		Theme:           ThemeAuto,
		ShowPageNumbers: true,
		EnableSearch:    true,
	}
}

// SettingsPatch is a partial settings update. Unset fields retain their
// previous value; they never revert to defaults.
type SettingsPatch struct {
	AllowDownload     *bool  `json:"allow_download,omitempty"`
	AllowPrint        *bool  `json:"allow_print,omitempty"`
	AllowShare        *bool  `json:"allow_share,omitempty"`
	AutoFlip          *bool  `json:"auto_flip,omitempty"`
	FlipDuration      *int   `json:"flip_duration,omitempty"`
	DefaultZoom       *int   `json:"default_zoom,omitempty"`
	Theme             *Theme `json:"theme,omitempty"`
	ShowPageNumbers   *bool  `json:"show_page_numbers,omitempty"`
	EnableSearch      *bool  `json:"enable_search,omitempty"`
	EnableAnnotations *bool  `json:"enable_annotations,omitempty"`
}

// Merge applies the patch over the receiver and returns the result.
func (s Settings) Merge(patch *SettingsPatch) Settings {
	if patch == nil {
		return s
	}
	if patch.AllowDownload != nil {
		s.AllowDownload = *patch.AllowDownload
	}
	if patch.AllowPrint != nil {
		s.AllowPrint = *patch.AllowPrint
	}
	if patch.AllowShare != nil {
		s.AllowShare = *patch.AllowShare
	}
	if patch.AutoFlip != nil {
		s.AutoFlip = *patch.AutoFlip
	}
	if patch.FlipDuration != nil {
		s.FlipDuration = *patch.FlipDuration
	}
	if patch.DefaultZoom != nil {
		s.DefaultZoom = *patch.DefaultZoom
	}
	if patch.Theme != nil {
		s.Theme = *patch.Theme
	}
	if patch.ShowPageNumbers != nil {
		s.ShowPageNumbers = *patch.ShowPageNumbers
	}
	if patch.EnableSearch != nil {
		s.EnableSearch = *patch.EnableSearch
	}
	if patch.EnableAnnotations != nil {
		s.EnableAnnotations = *patch.EnableAnnotations
	}
	return s
}

// Analytics is the mutable view-tracking aggregate for a document.
// TotalViews, PagesViewed, and LastViewedAt are maintained by the store;
// UniqueViewers, AverageTimeSpent, and CompletionRate are externally
// computed and merely stored.
type Analytics struct {
	TotalViews       int64         `json:"total_views"`
	UniqueViewers    int64         `json:"unique_viewers"`
	PagesViewed      map[int]int64 `json:"pages_viewed"`
	LastViewedAt     *time.Time    `json:"last_viewed_at,omitempty"`
	AverageTimeSpent float64       `json:"average_time_spent"`
	CompletionRate   float64       `json:"completion_rate"`
}

// Document is the persisted unit of the store.
type Document struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	FileName       string    `json:"file_name"`
	FileSize       int64     `json:"file_size"`
	ModuleType     string    `json:"module_type,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	WorkspaceID    string    `json:"workspace_id,omitempty"`
	TotalPages     int       `json:"total_pages"`
	Pages          []Page    `json:"pages"`
	Settings       Settings  `json:"settings"`
	Tags           []string  `json:"tags"`
	Thumbnail      string    `json:"thumbnail,omitempty"`
	SourceRef      string    `json:"source_ref,omitempty"`
	StoragePrefix  string    `json:"storage_prefix,omitempty"`
	UploadedAt     time.Time `json:"uploaded_at"`
	LastModified   time.Time `json:"last_modified"`
	Analytics      Analytics `json:"analytics"`
}

// CreateCommand contains the data required to register a processed document.
type CreateCommand struct {
	Title          string
	Description    string
	ModuleType     string
	OrganizationID string
	WorkspaceID    string
	Tags           []string
	Settings       *SettingsPatch
	Processed      ingest.ProcessedDocument
}

// UpdateCommand contains the fields that can be modified on an existing
// document. Nil fields are left unchanged; Settings merges nested partial
// values. Pages and analytics are never mutated through this path.
type UpdateCommand struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	ModuleType  *string        `json:"module_type,omitempty"`
	Tags        *[]string      `json:"tags,omitempty"`
	Settings    *SettingsPatch `json:"settings,omitempty"`
}

// ViewEvent is a passive telemetry signal from a viewer session.
type ViewEvent struct {
	DocumentID uuid.UUID `json:"document_id"`
	PageNumber int       `json:"page_number"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id,omitempty"`
}

// pagesFromProcessed converts pipeline output pages to stored pages.
func pagesFromProcessed(processed []ingest.ProcessedPage) []Page {
	pages := make([]Page, len(processed))
	for i, p := range processed {
		pages[i] = Page{
			PageNumber:   p.PageNumber,
			ImageRef:     p.ImageRef,
			ThumbnailRef: p.ThumbnailRef,
			Width:        p.Width,
			Height:       p.Height,
			Text:         p.Text,
		}
	}
	return pages
}

// normalizeTags deduplicates tags while preserving first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}
