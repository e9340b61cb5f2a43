// Package search finds bookmarks in a library by fuzzy title and URL match.
package search

import (
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark *model.Bookmark
	// FolderPath is the slash path of the bookmark's folder, empty at root.
	FolderPath string
	// MatchedIndexes index into Bookmark.Title followed by a space and Bookmark.URL.
	MatchedIndexes []int
	Score          int
}

// bookmarkSource implements fuzzy.Source over title and URL.
type bookmarkSource []*model.Bookmark

func (bs bookmarkSource) String(i int) string {
	return bs[i].Title + " " + bs[i].URL
}

func (bs bookmarkSource) Len() int {
	return len(bs)
}

// FuzzySearchBookmarks searches all bookmarks by title and URL using fuzzy
// matching. Returns results sorted by match score (best first).
func FuzzySearchBookmarks(lib *model.Library, query string) []SearchResult {
	if query == "" {
		return nil
	}

	bookmarks := make(bookmarkSource, len(lib.Bookmarks))
	for i := range lib.Bookmarks {
		bookmarks[i] = &lib.Bookmarks[i]
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		b := bookmarks[m.Index]
		var path string
		if b.FolderID != nil {
			path = lib.FolderPath(*b.FolderID)
		}
		results[i] = SearchResult{
			Bookmark:       b,
			FolderPath:     path,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
