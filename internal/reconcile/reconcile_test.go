package reconcile_test

import (
	"testing"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func stringPtr(s string) *string { return &s }

func observed() (*reconcile.Reconciler, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return reconcile.New(logger.Wrap(zap.New(core))), logs
}

func kinds(diags []reconcile.Diagnostic) []reconcile.Kind {
	out := make([]reconcile.Kind, len(diags))
	for i, d := range diags {
		out[i] = d.Kind
	}
	return out
}

func folderByName(t *testing.T, lib *model.Library, name string) model.Folder {
	t.Helper()
	for _, f := range lib.Folders {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("folder %q not found", name)
	return model.Folder{}
}

// === Full proposal ===

func TestApplyProposal_ReplacesFolders(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{{ID: "old", Name: "OldFolder"}},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Covered", URL: "https://one.example", FolderID: stringPtr("old")},
			{ID: "b2", Title: "Uncovered", URL: "https://two.example", FolderID: stringPtr("old")},
		},
	}
	proposal := model.Proposal{
		Folders:     []model.FolderSuggestion{{Path: "X", Description: "everything"}},
		Assignments: []model.Assignment{{BookmarkID: "b1", FolderPath: "X"}},
	}

	r, _ := observed()
	out, report := r.ApplyProposal(lib, proposal)

	assert.Assert(t, is.Len(out.Folders, 1))
	x := out.Folders[0]
	assert.Equal(t, x.Name, "X")
	assert.Equal(t, *out.Bookmarks[0].FolderID, x.ID)

	// uncovered bookmark keeps its now dangling reference
	assert.Equal(t, *out.Bookmarks[1].FolderID, "old")
	dangling := out.DanglingBookmarks()
	assert.Assert(t, is.Len(dangling, 1))
	assert.Equal(t, dangling[0].ID, "b2")

	assert.Equal(t, report.Assigned, 1)
	assert.Equal(t, report.Skipped, 0)
	assert.Equal(t, report.FoldersCreated, 1)
}

func TestApplyProposal_DoesNotModifyInput(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "old", Name: "OldFolder"}},
		Bookmarks: []model.Bookmark{{ID: "b1", Title: "One", URL: "https://one.example", FolderID: stringPtr("old")}},
	}
	proposal := model.Proposal{
		Folders:     []model.FolderSuggestion{{Path: "New"}},
		Assignments: []model.Assignment{{BookmarkID: "b1", FolderPath: "New"}},
	}

	r, _ := observed()
	_, _ = r.ApplyProposal(lib, proposal)

	assert.Assert(t, is.Len(lib.Folders, 1))
	assert.Equal(t, lib.Folders[0].Name, "OldFolder")
	assert.Equal(t, *lib.Bookmarks[0].FolderID, "old")
}

func TestApplyProposal_NestedPathsShareAncestors(t *testing.T) {
	lib := &model.Library{
		Bookmarks: []model.Bookmark{
			{ID: "b1", URL: "https://a.example"},
			{ID: "b2", URL: "https://b.example"},
		},
	}
	proposal := model.Proposal{
		Folders: []model.FolderSuggestion{{Path: "Work/Projects/AI"}, {Path: "Work/Projects/Infra"}},
		Assignments: []model.Assignment{
			{BookmarkID: "b1", FolderPath: "Work/Projects/AI"},
			{BookmarkID: "b2", FolderPath: "Work/Projects"},
		},
	}

	r, _ := observed()
	out, report := r.ApplyProposal(lib, proposal)

	assert.Check(t, is.Len(out.Folders, 4))
	assert.Equal(t, out.FolderPath(*out.Bookmarks[0].FolderID), "Work/Projects/AI")
	assert.Equal(t, out.FolderPath(*out.Bookmarks[1].FolderID), "Work/Projects")
	assert.Equal(t, report.Assigned, 2)
	assert.Check(t, !out.HasCycle())
}

func TestApplyProposal_LenientSkips(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{{ID: "old", Name: "Old"}},
		Bookmarks: []model.Bookmark{
			{ID: "b1", URL: "https://a.example", FolderID: stringPtr("old")},
			{ID: "b2", URL: "https://b.example"},
		},
	}
	proposal := model.Proposal{
		Folders: []model.FolderSuggestion{{Path: "Dev"}},
		Assignments: []model.Assignment{
			{BookmarkID: "b1", FolderPath: "Nowhere"},
			{BookmarkID: "ghost", FolderPath: "Dev"},
			{BookmarkID: "", FolderPath: "Dev"},
			{BookmarkID: "b2", FolderPath: "Dev"},
		},
	}

	r, logs := observed()
	out, report := r.ApplyProposal(lib, proposal)

	assert.Equal(t, report.Assigned, 1)
	assert.Equal(t, report.Skipped, 3)
	assert.DeepEqual(t, kinds(report.Diagnostics), []reconcile.Kind{
		reconcile.KindUnresolvedPath,
		reconcile.KindUnknownBookmark,
		reconcile.KindInvalidAssignment,
	})
	assert.Equal(t, logs.Len(), 3)

	assert.Equal(t, *out.Bookmarks[0].FolderID, "old")
	assert.Equal(t, out.FolderPath(*out.Bookmarks[1].FolderID), "Dev")
}

func TestApplyProposal_FirstMatchOnlyForDuplicateIDs(t *testing.T) {
	lib := &model.Library{
		Bookmarks: []model.Bookmark{
			{ID: "dup", URL: "https://a.example"},
			{ID: "dup", URL: "https://b.example"},
		},
	}
	proposal := model.Proposal{
		Folders:     []model.FolderSuggestion{{Path: "Dev"}},
		Assignments: []model.Assignment{{BookmarkID: "dup", FolderPath: "Dev"}},
	}

	r, _ := observed()
	out, _ := r.ApplyProposal(lib, proposal)

	assert.Check(t, out.Bookmarks[0].FolderID != nil)
	assert.Check(t, out.Bookmarks[1].FolderID == nil)
}

func TestApplyProposal_EmptyProposalClearsFolders(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "f1", Name: "Dev"}},
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://a.example", FolderID: stringPtr("f1")}},
	}

	r, _ := observed()
	out, report := r.ApplyProposal(lib, model.Proposal{})

	assert.Check(t, is.Len(out.Folders, 0))
	assert.Equal(t, *out.Bookmarks[0].FolderID, "f1")
	assert.Equal(t, report.Assigned, 0)
}

// === Name index ===

func TestBuildNameIndex_PreOrder(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{
			{ID: "nested-dev", Name: "Dev", ParentID: stringPtr("work")},
			{ID: "work", Name: "Work"},
			{ID: "root-dev", Name: "Dev"},
		},
	}

	idx := reconcile.BuildNameIndex(lib)

	// Work's subtree is visited before the later root folder
	assert.DeepEqual(t, idx["Dev"], []string{"nested-dev", "root-dev"})
	assert.DeepEqual(t, idx["Work"], []string{"work"})
}

func TestBuildNameIndex_IncludesUnreachableFolders(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{
			{ID: "orphan", Name: "Orphan", ParentID: stringPtr("gone")},
			{ID: "loop", Name: "Loop", ParentID: stringPtr("loop")},
		},
	}

	idx := reconcile.BuildNameIndex(lib)

	assert.DeepEqual(t, idx["Orphan"], []string{"orphan"})
	assert.DeepEqual(t, idx["Loop"], []string{"loop"})
}

// === Incremental actions ===

func TestSession_CreateThenMoveUsesSessionIndex(t *testing.T) {
	lib := &model.Library{
		Bookmarks: []model.Bookmark{{ID: "b1", Title: "Go", URL: "https://go.dev"}},
	}

	r, _ := observed()
	s := r.SessionFor(lib)
	out, effects := s.ApplyAll(lib, []model.Action{
		model.CreateFolder{Name: "Dev"},
		model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "Dev"},
	})

	assert.Assert(t, is.Len(effects, 2))
	created := effects[0].CreatedFolderID
	assert.Check(t, created != "")
	assert.Equal(t, effects[1].TargetFolderID, created)
	assert.DeepEqual(t, effects[1].Moved, []string{"b1"})
	assert.Check(t, is.Len(effects[1].Diagnostics, 0))

	assert.Assert(t, is.Len(out.Folders, 1))
	assert.Equal(t, out.Folders[0].ID, created)
	assert.Equal(t, *out.Bookmarks[0].FolderID, created)
	assert.Equal(t, s.Created()["Dev"], created)

	// the input library is untouched
	assert.Check(t, is.Len(lib.Folders, 0))
	assert.Check(t, lib.Bookmarks[0].FolderID == nil)
}

func TestSession_SessionIndexWinsOverGlobal(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "existing-dev", Name: "Dev"}},
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://go.dev"}},
	}

	r, _ := observed()
	s := r.SessionFor(lib)
	out, effects := s.ApplyAll(lib, []model.Action{
		model.CreateFolder{Name: "Dev"},
		model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "Dev"},
	})

	assert.Check(t, effects[1].TargetFolderID != "existing-dev")
	assert.Equal(t, *out.Bookmarks[0].FolderID, effects[0].CreatedFolderID)
}

func TestSession_AmbiguousNamePicksFirstAndWarns(t *testing.T) {
	lib := &model.Library{
		Folders: []model.Folder{
			{ID: "dev-1", Name: "Dev"},
			{ID: "dev-2", Name: "Dev"},
		},
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://go.dev"}},
	}

	r, logs := observed()
	s := r.SessionFor(lib)
	out, effect := s.Apply(lib, model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "Dev"})

	assert.Equal(t, *out.Bookmarks[0].FolderID, "dev-1")
	assert.DeepEqual(t, kinds(effect.Diagnostics), []reconcile.Kind{reconcile.KindAmbiguousName})
	assert.Check(t, !effect.Aborted)
	assert.Equal(t, logs.FilterField(zap.String("kind", "ambiguous_name")).Len(), 1)
}

func TestSession_UniqueNameResolves(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "f-read", Name: "Reading"}},
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://a.example"}},
	}

	r, _ := observed()
	out, effect := r.SessionFor(lib).Apply(lib, model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "Reading"})

	assert.Equal(t, *out.Bookmarks[0].FolderID, "f-read")
	assert.Check(t, is.Len(effect.Diagnostics, 0))
}

func TestSession_LiteralIDTarget(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "f-123", Name: "Reading"}},
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://a.example"}},
	}

	r, _ := observed()
	out, effect := r.SessionFor(lib).Apply(lib, model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "f-123"})

	assert.Equal(t, *out.Bookmarks[0].FolderID, "f-123")
	assert.Check(t, is.Len(effect.Diagnostics, 0))
}

func TestSession_UnknownTargetStillMoves(t *testing.T) {
	lib := &model.Library{
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://a.example"}},
	}

	r, _ := observed()
	out, effect := r.SessionFor(lib).Apply(lib, model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "no-such-folder"})

	assert.Equal(t, *out.Bookmarks[0].FolderID, "no-such-folder")
	assert.DeepEqual(t, kinds(effect.Diagnostics), []reconcile.Kind{reconcile.KindUnknownTarget})
}

func TestSession_EmptyTargetAbortsOnlyThatAction(t *testing.T) {
	lib := &model.Library{
		Bookmarks: []model.Bookmark{
			{ID: "b1", URL: "https://a.example"},
			{ID: "b2", URL: "https://b.example"},
		},
	}

	r, _ := observed()
	s := r.SessionFor(lib)
	out, effects := s.ApplyAll(lib, []model.Action{
		model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "  "},
		model.CreateFolder{Name: "Dev"},
		model.MoveBookmarks{BookmarkIDs: []string{"b2"}, TargetFolderID: "Dev"},
	})

	assert.Check(t, effects[0].Aborted)
	assert.DeepEqual(t, kinds(effects[0].Diagnostics), []reconcile.Kind{reconcile.KindEmptyTarget})
	assert.Check(t, out.Bookmarks[0].FolderID == nil)
	assert.Equal(t, *out.Bookmarks[1].FolderID, effects[1].CreatedFolderID)
}

func TestSession_MoveSkipsUnknownBookmarks(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "f1", Name: "Dev"}},
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://a.example"}},
	}

	r, _ := observed()
	out, effect := r.SessionFor(lib).Apply(lib, model.MoveBookmarks{BookmarkIDs: []string{"ghost", "b1"}, TargetFolderID: "Dev"})

	assert.DeepEqual(t, effect.Moved, []string{"b1"})
	assert.DeepEqual(t, kinds(effect.Diagnostics), []reconcile.Kind{reconcile.KindUnknownBookmark})
	assert.Equal(t, *out.Bookmarks[0].FolderID, "f1")
}

func TestSession_MoveWithNoBookmarks(t *testing.T) {
	lib := &model.Library{Folders: []model.Folder{{ID: "f1", Name: "Dev"}}}

	r, _ := observed()
	_, effect := r.SessionFor(lib).Apply(lib, model.MoveBookmarks{TargetFolderID: "Dev"})

	assert.Check(t, is.Len(effect.Moved, 0))
	assert.Check(t, !effect.Aborted)
}

func TestSession_CreateNestedByParentName(t *testing.T) {
	lib := &model.Library{Folders: []model.Folder{{ID: "work", Name: "Work"}}}

	r, _ := observed()
	s := r.SessionFor(lib)
	out, effects := s.ApplyAll(lib, []model.Action{
		model.CreateFolder{Name: "Projects", ParentID: stringPtr("Work")},
		model.CreateFolder{Name: "AI", ParentID: stringPtr("Projects")},
	})

	assert.Check(t, is.Len(effects[0].Diagnostics, 0))
	ai := folderByName(t, out, "AI")
	assert.Equal(t, out.FolderPath(ai.ID), "Work/Projects/AI")
	assert.Check(t, !out.HasCycle())
}

func TestSession_CreateWithUnknownParentGoesToRoot(t *testing.T) {
	lib := model.NewLibrary()

	r, _ := observed()
	out, effect := r.SessionFor(lib).Apply(lib, model.CreateFolder{Name: "Dev", ParentID: stringPtr("missing")})

	assert.Assert(t, is.Len(out.Folders, 1))
	assert.Check(t, out.Folders[0].ParentID == nil)
	assert.DeepEqual(t, kinds(effect.Diagnostics), []reconcile.Kind{reconcile.KindUnknownParent})
}

func TestSession_NoActions(t *testing.T) {
	lib := &model.Library{Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://a.example"}}}

	r, _ := observed()
	out, effects := r.SessionFor(lib).ApplyAll(lib, nil)

	assert.Check(t, is.Len(effects, 0))
	assert.DeepEqual(t, out, lib)
}

func TestApplyAction_WithoutSession(t *testing.T) {
	lib := &model.Library{
		Folders:   []model.Folder{{ID: "a", Name: "Dev"}, {ID: "b", Name: "Dev"}},
		Bookmarks: []model.Bookmark{{ID: "b1", URL: "https://a.example"}},
	}
	created := map[string]string{}

	out, _ := reconcile.ApplyAction(lib, model.CreateFolder{Name: "Fresh"}, reconcile.BuildNameIndex(lib), created)
	out, effect := reconcile.ApplyAction(out, model.MoveBookmarks{BookmarkIDs: []string{"b1"}, TargetFolderID: "Fresh"}, reconcile.BuildNameIndex(lib), created)

	assert.Equal(t, effect.TargetFolderID, created["Fresh"])
	assert.Equal(t, *out.Bookmarks[0].FolderID, created["Fresh"])
}

func TestSession_RecordCreatedAndResolve(t *testing.T) {
	r, _ := observed()
	s := r.NewSession(nil)
	s.RecordCreated("Dev", "host-42")

	id, diags := s.Resolve("Dev")
	assert.Equal(t, id, "host-42")
	assert.Check(t, is.Len(diags, 0))

	id, _ = s.Resolve("host-7")
	assert.Equal(t, id, "host-7")
}
