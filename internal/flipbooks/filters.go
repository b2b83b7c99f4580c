package flipbooks

import (
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"
)

// SortField identifies a document list sort key.
type SortField string

// Recognized sort fields.
const (
	SortByDate  SortField = "date"
	SortByName  SortField = "name"
	SortByViews SortField = "views"
	SortBySize  SortField = "size"
)

// Filters narrows and orders document listings. All criteria are optional
// and combine conjunctively. The tag criterion matches documents carrying
// any of the listed tags.
type Filters struct {
	Search     *string
	ModuleType *string
	Tags       []string
	DateFrom   *time.Time
	DateTo     *time.Time
	SortBy     SortField
	Descending bool
}

// FiltersFromQuery extracts listing filters from URL query parameters.
// Unrecognized sort fields fall back to date; unparseable dates are ignored.
// Sort order is ascending unless sort_order=desc is supplied.
func FiltersFromQuery(values url.Values) Filters {
	filters := Filters{SortBy: SortByDate}

	if search := strings.TrimSpace(values.Get("search")); search != "" {
		filters.Search = &search
	}
	if moduleType := strings.TrimSpace(values.Get("module_type")); moduleType != "" {
		filters.ModuleType = &moduleType
	}
	for _, raw := range values["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}
	if from, err := time.Parse(time.RFC3339, values.Get("date_from")); err == nil {
		filters.DateFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, values.Get("date_to")); err == nil {
		filters.DateTo = &to
	}

	switch SortField(values.Get("sort_by")) {
	case SortByName:
		filters.SortBy = SortByName
	case SortByViews:
		filters.SortBy = SortByViews
	case SortBySize:
		filters.SortBy = SortBySize
	case SortByDate:
		filters.SortBy = SortByDate
	}
	filters.Descending = strings.EqualFold(values.Get("sort_order"), "desc")

	return filters
}

// Matches reports whether the document satisfies every set criterion.
func (f Filters) Matches(doc *Document) bool {
	if f.Search != nil {
		needle := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(doc.Title), needle) &&
			!strings.Contains(strings.ToLower(doc.Description), needle) &&
			!tagsContain(doc.Tags, needle) {
			return false
		}
	}
	if f.ModuleType != nil && doc.ModuleType != *f.ModuleType {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(tag string) bool {
		return slices.Contains(doc.Tags, tag)
	}) {
		return false
	}
	if f.DateFrom != nil && doc.UploadedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && doc.UploadedAt.After(*f.DateTo) {
		return false
	}
	return true
}

// Sort orders documents in place by the configured key. Equal keys retain
// their relative input order.
func (f Filters) Sort(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if f.Descending {
			a, b = b, a
		}
		switch f.SortBy {
		case SortByName:
			return a.Title < b.Title
		case SortByViews:
			return a.Analytics.TotalViews < b.Analytics.TotalViews
		case SortBySize:
			return a.FileSize < b.FileSize
		default:
			return a.UploadedAt.Before(b.UploadedAt)
		}
	})
}

func tagsContain(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
