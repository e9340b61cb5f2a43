package exporter

import (
	"strings"
	"testing"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/golden"
)

func strPtr(s string) *string { return &s }

// sampleLibrary has nesting, escaping and optional attributes.
func sampleLibrary() *model.Library {
	return &model.Library{
		Folders: []model.Folder{
			{ID: "f1", Name: "Development"},
			{ID: "f2", Name: "Go", ParentID: strPtr("f1")},
			{ID: "f3", Name: "Tools & Utils"},
		},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Hacker News", URL: "https://news.ycombinator.com", AddDate: "1700000000"},
			{ID: "b2", Title: "Go Docs", URL: "https://go.dev/doc/", AddDate: "1700000001", Tags: []string{"go", "docs"}, FolderID: strPtr("f2")},
			{ID: "b3", Title: "GitHub", URL: "https://github.com", FolderID: strPtr("f1")},
			{ID: "b4", Title: "Tom & Jerry <test>", URL: "https://example.com/?a=1&b=2", Icon: "data:x", FolderID: strPtr("f3")},
		},
	}
}

func TestExportHTML_EmptyLibrary(t *testing.T) {
	golden.Assert(t, ExportHTML(model.NewLibrary()), "empty.golden")
}

func TestExportHTML_Nested(t *testing.T) {
	golden.Assert(t, ExportHTML(sampleLibrary()), "nested.golden")
}

func TestExportHTML_SingleBookmark(t *testing.T) {
	lib := model.NewLibrary()
	lib.Bookmarks = append(lib.Bookmarks, model.Bookmark{
		ID:      "b1",
		Title:   "GitHub",
		URL:     "https://github.com",
		AddDate: "1700000000",
	})

	html := ExportHTML(lib)

	assert.Check(t, is.Contains(html, `<A HREF="https://github.com" ADD_DATE="1700000000">GitHub</A>`))
	assert.Check(t, !strings.Contains(html, "ICON="), "ICON should be omitted when empty")
}

func TestExportHTML_FoldersBeforeBookmarks(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "f1", Name: "Later Folder"}},
		Bookmarks: []model.Bookmark{{ID: "b1", Title: "Early Bookmark", URL: "https://a.example"}},
	}

	html := ExportHTML(lib)

	folderAt := strings.Index(html, "Later Folder")
	bookmarkAt := strings.Index(html, "Early Bookmark")
	assert.Assert(t, folderAt > 0 && bookmarkAt > 0)
	assert.Check(t, folderAt < bookmarkAt, "folders render before bookmarks at the same level")
}

func TestExportHTML_Escaping(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{{ID: "f1", Name: `"Quotes" & 'Ticks'`}},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Tom & Jerry <test>", URL: `https://x.example/"><script>`},
		},
	}

	html := ExportHTML(lib)

	assert.Check(t, is.Contains(html, "Tom &amp; Jerry &lt;test&gt;"))
	assert.Check(t, is.Contains(html, "&#34;Quotes&#34; &amp; &#39;Ticks&#39;"))
	assert.Check(t, !strings.Contains(html, "<script>"))
	assert.Check(t, !strings.Contains(html, "Tom & Jerry"))
}

func TestExportHTML_DuplicateFolderIDsTerminate(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{
			{ID: "dup", Name: "Outer"},
			{ID: "dup", Name: "Inner", ParentID: strPtr("dup")},
		},
	}

	html := ExportHTML(lib)

	assert.Check(t, is.Contains(html, "Outer"))
	assert.Check(t, is.Equal(strings.Count(html, "<H3>"), 1))
}

func TestExport_CountsOmittedBookmarks(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{
			{ID: "f1", Name: "Kept"},
			{ID: "f2", Name: "Stranded", ParentID: strPtr("gone-parent")},
		},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Root", URL: "https://root.example"},
			{ID: "b2", Title: "Filed", URL: "https://filed.example", FolderID: strPtr("f1")},
			{ID: "b3", Title: "Orphan", URL: "https://o.example", FolderID: strPtr("gone")},
			{ID: "b4", Title: "Stranded child", URL: "https://s.example", FolderID: strPtr("f2")},
		},
	}

	html, sum := Export(lib)

	assert.DeepEqual(t, sum, Summary{Folders: 1, Bookmarks: 2, Omitted: 2})
	assert.Check(t, is.Equal(strings.Count(html, "<DT><A "), sum.Bookmarks))
	assert.Check(t, !strings.Contains(html, "Orphan"))
	assert.Check(t, !strings.Contains(html, "Stranded"))
}

func TestExport_SkippedAssignmentIsReported(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{{ID: "old", Name: "Old"}},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Moved", URL: "https://moved.example", FolderID: strPtr("old")},
			{ID: "b2", Title: "Left behind", URL: "https://left.example", FolderID: strPtr("old")},
		},
	}
	next, report := reconcile.New(logger.Nop()).ApplyProposal(lib, model.Proposal{
		Folders: []model.FolderSuggestion{{Path: "New"}},
		Assignments: []model.Assignment{
			{BookmarkID: "b1", FolderPath: "New"},
			{BookmarkID: "b2", FolderPath: "Nowhere"},
		},
	})
	assert.Equal(t, report.Skipped, 1)

	html, sum := Export(next)

	assert.Equal(t, sum.Bookmarks, 1)
	assert.Equal(t, sum.Omitted, len(next.DanglingBookmarks()))
	assert.Check(t, is.Equal(strings.Count(html, "<DT><A "), sum.Bookmarks))
	assert.Check(t, is.Equal(sum.Bookmarks+sum.Omitted, len(next.Bookmarks)))
}
