package model_test

import (
	"errors"
	"testing"

	"github.com/nikbrunner/bmsort/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func stringPtr(s string) *string { return &s }

func testLibrary() *model.Library {
	return &model.Library{
		Folders: []model.Folder{
			{ID: "f1", Name: "Development", ParentID: nil},
			{ID: "f2", Name: "React", ParentID: stringPtr("f1")},
			{ID: "f3", Name: "Design", ParentID: nil},
			{ID: "f4", Name: "Node", ParentID: stringPtr("f1")},
		},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Root Bookmark", URL: "https://example.com"},
			{ID: "b2", Title: "React Docs", URL: "https://react.dev", FolderID: stringPtr("f2"), Tags: []string{"react"}},
			{ID: "b3", Title: "Another Root", URL: "https://example.net"},
		},
	}
}

func TestLibrary_FoldersIn(t *testing.T) {
	lib := testLibrary()

	assert.Check(t, is.Len(lib.FoldersIn(nil), 2))
	assert.Check(t, is.Len(lib.FoldersIn(stringPtr("f1")), 2))
	assert.Check(t, is.Len(lib.FoldersIn(stringPtr("f3")), 0))

	// order follows the folder sequence
	nested := lib.FoldersIn(stringPtr("f1"))
	assert.Equal(t, nested[0].Name, "React")
	assert.Equal(t, nested[1].Name, "Node")
}

func TestLibrary_BookmarksIn(t *testing.T) {
	lib := testLibrary()

	assert.Check(t, is.Len(lib.BookmarksIn(nil), 2))
	assert.Check(t, is.Len(lib.BookmarksIn(stringPtr("f2")), 1))
	assert.Check(t, is.Len(lib.BookmarksIn(stringPtr("f1")), 0))
}

func TestLibrary_FolderByID(t *testing.T) {
	lib := testLibrary()

	folder := lib.FolderByID("f1")
	assert.Assert(t, folder != nil)
	assert.Equal(t, folder.Name, "Development")

	assert.Check(t, lib.FolderByID("nonexistent") == nil)
}

func TestLibrary_BookmarkByID(t *testing.T) {
	lib := testLibrary()

	b := lib.BookmarkByID("b2")
	assert.Assert(t, b != nil)
	assert.Equal(t, b.Title, "React Docs")

	assert.Check(t, lib.BookmarkByID("missing") == nil)
}

func TestLibrary_CloneIsDeep(t *testing.T) {
	lib := testLibrary()
	clone := lib.Clone()

	*clone.Bookmarks[1].FolderID = "changed"
	clone.Bookmarks[1].Tags[0] = "vue"
	*clone.Folders[1].ParentID = "changed"
	clone.Folders[0].Name = "Renamed"

	assert.Equal(t, *lib.Bookmarks[1].FolderID, "f2")
	assert.Equal(t, lib.Bookmarks[1].Tags[0], "react")
	assert.Equal(t, *lib.Folders[1].ParentID, "f1")
	assert.Equal(t, lib.Folders[0].Name, "Development")
}

func TestLibrary_FolderPath(t *testing.T) {
	lib := testLibrary()

	assert.Equal(t, lib.FolderPath("f2"), "Development/React")
	assert.Equal(t, lib.FolderPath("f3"), "Design")
	assert.Equal(t, lib.FolderPath("missing"), "")
}

func TestLibrary_FolderPath_Cycle(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{
			{ID: "a", Name: "A", ParentID: stringPtr("b")},
			{ID: "b", Name: "B", ParentID: stringPtr("a")},
		},
	}

	assert.Equal(t, lib.FolderPath("a"), "B/A")
	assert.Check(t, lib.HasCycle())
}

func TestLibrary_HasCycle(t *testing.T) {
	assert.Check(t, !testLibrary().HasCycle())

	self := &model.Library{Folders: []model.Folder{{ID: "a", Name: "A", ParentID: stringPtr("a")}}}
	assert.Check(t, self.HasCycle())
}

func TestLibrary_IsAncestor(t *testing.T) {
	lib := testLibrary()

	assert.Check(t, lib.IsAncestor("f1", "f2"))
	assert.Check(t, !lib.IsAncestor("f2", "f1"))
	assert.Check(t, !lib.IsAncestor("f3", "f2"))
}

func TestLibrary_DanglingBookmarks(t *testing.T) {
	lib := testLibrary()
	assert.Check(t, is.Len(lib.DanglingBookmarks(), 0))

	lib.Bookmarks[0].FolderID = stringPtr("gone")
	dangling := lib.DanglingBookmarks()
	assert.Assert(t, is.Len(dangling, 1))
	assert.Equal(t, dangling[0].ID, "b1")
}

func TestNewBookmark_FreshIDAndUniqueTags(t *testing.T) {
	a := model.NewBookmark(model.NewBookmarkParams{Title: "Go", URL: "https://go.dev", Tags: []string{"go", "docs", "go"}})
	b := model.NewBookmark(model.NewBookmarkParams{Title: "Go", URL: "https://go.dev"})

	assert.Check(t, a.ID != "")
	assert.Check(t, a.ID != b.ID, "IDs must not derive from URL or title")
	assert.DeepEqual(t, a.Tags, []string{"go", "docs"})
}

func TestNewFolder(t *testing.T) {
	f := model.NewFolder(model.NewFolderParams{Name: "Work", ParentID: stringPtr("p")})

	assert.Check(t, f.ID != "")
	assert.Equal(t, f.Name, "Work")
	assert.Equal(t, *f.ParentID, "p")
}

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    model.Action
		wantErr bool
	}{
		{
			name:    "create folder at root",
			payload: `{"type":"CREATE_FOLDER","name":"Dev"}`,
			want:    model.CreateFolder{Name: "Dev"},
		},
		{
			name:    "create nested folder",
			payload: `{"type":"CREATE_FOLDER","name":"Go","parentId":"f1"}`,
			want:    model.CreateFolder{Name: "Go", ParentID: stringPtr("f1")},
		},
		{
			name:    "move bookmarks",
			payload: `{"type":"MOVE_BOOKMARKS","bookmarkIds":["b1","b2"],"targetFolderId":"Dev"}`,
			want:    model.MoveBookmarks{BookmarkIDs: []string{"b1", "b2"}, TargetFolderID: "Dev"},
		},
		{
			name:    "move with empty target is left to the reconciler",
			payload: `{"type":"MOVE_BOOKMARKS","bookmarkIds":["b1"]}`,
			want:    model.MoveBookmarks{BookmarkIDs: []string{"b1"}},
		},
		{
			name:    "create folder without name",
			payload: `{"type":"CREATE_FOLDER"}`,
			wantErr: true,
		},
		{
			name:    "move with blank bookmark id",
			payload: `{"type":"MOVE_BOOKMARKS","bookmarkIds":[""],"targetFolderId":"Dev"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `{type`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.DecodeAction([]byte(tt.payload))
			if tt.wantErr {
				assert.Check(t, err != nil)
				return
			}
			assert.NilError(t, err)
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestDecodeAction_UnknownTag(t *testing.T) {
	_, err := model.DecodeAction([]byte(`{"type":"DELETE_EVERYTHING"}`))
	assert.Check(t, errors.Is(err, model.ErrUnknownAction))

	_, err = model.DecodeToolCall("rename_folder", []byte(`{}`))
	assert.Check(t, errors.Is(err, model.ErrUnknownAction))
}

func TestEncodeAction_RoundTrips(t *testing.T) {
	actions := []model.Action{
		model.CreateFolder{Name: "Dev", ParentID: stringPtr("root-id")},
		model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "Dev"},
	}
	for _, a := range actions {
		data, err := model.EncodeAction(a)
		assert.NilError(t, err)

		got, err := model.DecodeAction(data)
		assert.NilError(t, err)
		assert.DeepEqual(t, got, a)
	}
}

func TestAssignment_Validate(t *testing.T) {
	assert.NilError(t, model.Assignment{BookmarkID: "b1", FolderPath: "A/B"}.Validate())
	assert.Check(t, model.Assignment{BookmarkID: "", FolderPath: "A"}.Validate() != nil)
	assert.Check(t, model.Assignment{BookmarkID: "b1"}.Validate() != nil)
}

func TestProposal_Validate(t *testing.T) {
	ok := model.Proposal{
		Folders:     []model.FolderSuggestion{{Path: "Dev"}, {Path: "Dev/Go", Description: "Go things"}},
		Assignments: []model.Assignment{{BookmarkID: "", FolderPath: "Dev"}},
	}
	assert.NilError(t, ok.Validate())
	assert.DeepEqual(t, ok.Paths(), []string{"Dev", "Dev/Go"})

	bad := model.Proposal{Folders: []model.FolderSuggestion{{Path: "Dev"}, {Path: ""}}}
	assert.Check(t, bad.Validate() != nil)
}
