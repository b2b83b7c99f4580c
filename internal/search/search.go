// Package search provides on-demand full-text search over extracted page text.
// Matching is case-insensitive, non-overlapping, and reports excerpted contexts
// around each match.
package search

import (
	"strings"
	"unicode"
)

// ContextPadding is the number of characters of surrounding text included
// on each side of a match in an excerpt.
const ContextPadding = 50

// Ellipsis marks an excerpt truncated before the page boundary.
const Ellipsis = "..."

// Result reports the matches found within a single page.
type Result struct {
	PageNumber int      `json:"page_number"`
	Matches    int      `json:"matches"`
	Contexts   []string `json:"contexts"`
}

// Page is the searchable unit: a page number and its extracted text.
type Page struct {
	PageNumber int
	Text       string
}

// Search scans each page's text for the query and returns one Result per page
// with at least one match, ordered by ascending page number. Empty or
// whitespace-only queries return no results. Matches within a page are found
// by repeated non-overlapping scanning.
func Search(pages []Page, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}
	}

	needle := []rune(query)
	results := make([]Result, 0)

	for _, page := range pages {
		if page.Text == "" {
			continue
		}

		text := []rune(page.Text)
		var contexts []string

		for pos := indexFold(text, needle, 0); pos >= 0; pos = indexFold(text, needle, pos+len(needle)) {
			contexts = append(contexts, excerpt(text, pos, len(needle)))
		}

		if len(contexts) > 0 {
			results = append(results, Result{
				PageNumber: page.PageNumber,
				Matches:    len(contexts),
				Contexts:   contexts,
			})
		}
	}

	return results
}

// indexFold returns the first case-insensitive occurrence of needle in text
// at or after from, or -1 when absent.
func indexFold(text, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}

	for i := from; i+len(needle) <= len(text); i++ {
		match := true
		for j := range needle {
			if unicode.ToLower(text[i+j]) != unicode.ToLower(needle[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// excerpt returns the matched substring padded with up to ContextPadding
// characters on each side, marking truncation with an ellipsis wherever the
// window stops short of the page boundary.
func excerpt(text []rune, pos, length int) string {
	start := pos - ContextPadding
	if start < 0 {
		start = 0
	}

	end := pos + length + ContextPadding
	if end > len(text) {
		end = len(text)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(Ellipsis)
	}
	b.WriteString(string(text[start:end]))
	if end < len(text) {
		b.WriteString(Ellipsis)
	}
	return b.String()
}
