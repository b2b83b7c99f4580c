package flipbooks_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/flipbooks"
	"github.com/JaimeStill/flipbook-lab/pkg/pagination"
)

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("search", "  handbook  ")
	values.Set("module_type", "hr")
	values.Add("tags", "policy, onboarding")
	values.Add("tags", "benefits")
	values.Set("date_from", "2026-01-01T00:00:00Z")
	values.Set("sort_by", "views")
	values.Set("sort_order", "asc")

	filters := flipbooks.FiltersFromQuery(values)

	if filters.Search == nil || *filters.Search != "handbook" {
		t.Errorf("Search = %v, want trimmed handbook", filters.Search)
	}
	if filters.ModuleType == nil || *filters.ModuleType != "hr" {
		t.Errorf("ModuleType = %v, want hr", filters.ModuleType)
	}
	if len(filters.Tags) != 3 {
		t.Errorf("Tags = %v, want 3 entries", filters.Tags)
	}
	if filters.DateFrom == nil || filters.DateTo != nil {
		t.Errorf("DateFrom = %v, DateTo = %v", filters.DateFrom, filters.DateTo)
	}
	if filters.SortBy != flipbooks.SortByViews || filters.Descending {
		t.Errorf("sort = %s desc=%v, want views asc", filters.SortBy, filters.Descending)
	}
}

func TestFiltersFromQuery_Defaults(t *testing.T) {
	filters := flipbooks.FiltersFromQuery(url.Values{})

	if filters.Search != nil || filters.ModuleType != nil || len(filters.Tags) != 0 {
		t.Error("empty query produced non-empty criteria")
	}
	if filters.SortBy != flipbooks.SortByDate || filters.Descending {
		t.Errorf("sort = %s desc=%v, want date asc", filters.SortBy, filters.Descending)
	}
}

func TestFiltersFromQuery_SortOrder(t *testing.T) {
	values := url.Values{}
	values.Set("sort_order", "desc")
	if filters := flipbooks.FiltersFromQuery(values); !filters.Descending {
		t.Error("sort_order=desc not honored")
	}

	values.Set("sort_order", "asc")
	if filters := flipbooks.FiltersFromQuery(values); filters.Descending {
		t.Error("sort_order=asc sorted descending")
	}
}

func TestFiltersFromQuery_UnknownSortFallsBack(t *testing.T) {
	values := url.Values{}
	values.Set("sort_by", "popularity")

	filters := flipbooks.FiltersFromQuery(values)
	if filters.SortBy != flipbooks.SortByDate {
		t.Errorf("SortBy = %s, want date fallback", filters.SortBy)
	}
}

func seedListDocs(t *testing.T, sys flipbooks.System) {
	t.Helper()
	docs := []flipbooks.CreateCommand{
		{Title: "Alpha Manual", ModuleType: "training", Tags: []string{"safety"},
			Processed: processed("flipbooks/1", "forklift operation")},
		{Title: "Beta Handbook", ModuleType: "hr", Tags: []string{"policy", "onboarding"},
			Processed: processed("flipbooks/2", "dress code policy")},
		{Title: "Gamma Catalog", ModuleType: "hr", Tags: []string{"benefits"},
			Processed: processed("flipbooks/3", "health plans")},
	}
	for i, cmd := range docs {
		doc := mustCreate(t, sys, cmd)
		for range i {
			sys.TrackView(context.Background(), flipbooks.ViewEvent{DocumentID: doc.ID, PageNumber: 1})
		}
	}
}

func listTitles(t *testing.T, sys flipbooks.System, values url.Values) []string {
	t.Helper()
	page := pagination.PageRequest{Page: 1, PageSize: 20}
	result, err := sys.List(context.Background(), page, flipbooks.FiltersFromQuery(values))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	titles := make([]string, len(result.Data))
	for i, doc := range result.Data {
		titles[i] = doc.Title
	}
	return titles
}

func TestMemory_List_Filters(t *testing.T) {
	sys := testStore(newFakeStorage())
	seedListDocs(t, sys)

	tests := []struct {
		name   string
		query  string
		titles []string
	}{
		{"module type", "module_type=hr&sort_by=name&sort_order=asc",
			[]string{"Beta Handbook", "Gamma Catalog"}},
		{"tag", "tags=safety", []string{"Alpha Manual"}},
		{"any tag matches", "tags=safety,benefits",
			[]string{"Alpha Manual", "Gamma Catalog"}},
		{"partial tag overlap matches", "tags=benefits,missing",
			[]string{"Gamma Catalog"}},
		{"search matches title", "search=catalog", []string{"Gamma Catalog"}},
		{"search matches tags", "search=onboard", []string{"Beta Handbook"}},
		{"search case insensitive", "search=ALPHA", []string{"Alpha Manual"}},
		{"sort by views desc", "sort_by=views&sort_order=desc",
			[]string{"Gamma Catalog", "Beta Handbook", "Alpha Manual"}},
		{"sort by name asc", "sort_by=name&sort_order=asc",
			[]string{"Alpha Manual", "Beta Handbook", "Gamma Catalog"}},
		{"no match", "search=nonexistent", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery() error = %v", err)
			}

			titles := listTitles(t, sys, values)
			if len(titles) != len(tt.titles) {
				t.Fatalf("List() titles = %v, want %v", titles, tt.titles)
			}
			for i := range titles {
				if titles[i] != tt.titles[i] {
					t.Errorf("List() titles = %v, want %v", titles, tt.titles)
					break
				}
			}
		})
	}
}

func TestMemory_List_DateRange(t *testing.T) {
	sys := testStore(newFakeStorage())
	seedListDocs(t, sys)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	values := url.Values{}
	values.Set("date_from", past)
	values.Set("date_to", future)
	if got := listTitles(t, sys, values); len(got) != 3 {
		t.Errorf("in-range window returned %v, want all 3", got)
	}

	values = url.Values{}
	values.Set("date_to", past)
	if got := listTitles(t, sys, values); len(got) != 0 {
		t.Errorf("past-only window returned %v, want none", got)
	}
}

func TestMemory_List_Pagination(t *testing.T) {
	sys := testStore(newFakeStorage())

	for i := range 5 {
		mustCreate(t, sys, flipbooks.CreateCommand{
			Title:     fmt.Sprintf("Doc %d", i),
			Processed: processed(fmt.Sprintf("flipbooks/%d", i), "text"),
		})
	}

	result, err := sys.List(context.Background(),
		pagination.PageRequest{Page: 2, PageSize: 2}, flipbooks.FiltersFromQuery(url.Values{}))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
	if len(result.Data) != 2 {
		t.Errorf("page size = %d, want 2", len(result.Data))
	}

	// pages past the end are empty, not an error
	result, err = sys.List(context.Background(),
		pagination.PageRequest{Page: 9, PageSize: 2}, flipbooks.FiltersFromQuery(url.Values{}))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Data) != 0 {
		t.Errorf("past-end page returned %d documents, want 0", len(result.Data))
	}
}
