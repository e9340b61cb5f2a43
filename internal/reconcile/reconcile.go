// Package reconcile merges externally proposed structure into a Library.
//
// Every operation takes a Library and returns a new one; the input is never
// modified, so the caller can keep it as an undo point and decide which
// result to commit. Problems with the proposed input (unknown paths, unknown
// bookmarks, ambiguous names) are reported as Diagnostics rather than errors.
package reconcile

import (
	"strings"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/resolver"
)

// Reconciler applies proposals and actions, logging every diagnostic.
type Reconciler struct {
	log logger.Logger
}

// New creates a Reconciler. A nil logger discards diagnostics output.
func New(log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{log: log}
}

// Report summarizes a proposal application.
type Report struct {
	FoldersCreated int
	Assigned       int
	Skipped        int
	Diagnostics    []Diagnostic
}

// ApplyProposal applies a complete reorganization.
//
// The resulting folder set is exactly the folders resolved from the
// proposal's paths; the previous folders are discarded. Each assignment whose
// path resolves moves the first bookmark with that ID. Assignments that do
// not resolve are skipped and the bookmark keeps its previous folder, even
// when that folder no longer exists.
func (r *Reconciler) ApplyProposal(lib *model.Library, p model.Proposal) (*model.Library, Report) {
	res := resolver.Resolve(p.Paths())

	out := lib.Clone()
	out.Folders = res.Folders

	report := Report{FoldersCreated: len(res.Folders)}
	for _, a := range p.Assignments {
		if err := a.Validate(); err != nil {
			report.Skipped++
			report.Diagnostics = append(report.Diagnostics,
				diag(KindInvalidAssignment, a.BookmarkID, "invalid assignment: %v", err))
			continue
		}

		folderID, ok := res.Lookup(a.FolderPath)
		if !ok {
			report.Skipped++
			report.Diagnostics = append(report.Diagnostics,
				diag(KindUnresolvedPath, a.FolderPath, "assignment of %s targets a path not in the proposal", a.BookmarkID))
			continue
		}

		b := out.BookmarkByID(a.BookmarkID)
		if b == nil {
			report.Skipped++
			report.Diagnostics = append(report.Diagnostics,
				diag(KindUnknownBookmark, a.BookmarkID, "assignment names a bookmark not in the library"))
			continue
		}

		b.FolderID = model.StringPtr(folderID)
		report.Assigned++
	}

	logDiagnostics(r.log, report.Diagnostics)
	r.log.Debug("proposal applied",
		logger.Int("folders", report.FoldersCreated),
		logger.Int("assigned", report.Assigned),
		logger.Int("skipped", report.Skipped),
	)
	return out, report
}

// Effect describes what one incremental action did.
type Effect struct {
	Action model.Action
	// CreatedFolderID is set by a CreateFolder action.
	CreatedFolderID string
	// TargetFolderID is the resolved target of a MoveBookmarks action.
	TargetFolderID string
	// Moved lists bookmark IDs that were moved.
	Moved []string
	// Aborted is true when the action changed nothing because its target
	// could not be determined.
	Aborted     bool
	Diagnostics []Diagnostic
}

// ApplyAction applies one incremental action.
//
// index is the name index of the live folder tree and created holds names of
// folders created earlier in the same batch; a CreateFolder records into
// created. Use a Session to carry both across a batch.
func ApplyAction(lib *model.Library, action model.Action, index NameIndex, created map[string]string) (*model.Library, Effect) {
	switch a := action.(type) {
	case model.CreateFolder:
		return applyCreate(lib, a, index, created)
	case model.MoveBookmarks:
		return applyMove(lib, a, index, created)
	default:
		return lib, Effect{
			Action:      action,
			Aborted:     true,
			Diagnostics: []Diagnostic{diag(KindUnsupportedAction, "", "unsupported action %T", action)},
		}
	}
}

func applyCreate(lib *model.Library, a model.CreateFolder, index NameIndex, created map[string]string) (*model.Library, Effect) {
	effect := Effect{Action: a}

	var parentID *string
	if a.ParentID != nil && strings.TrimSpace(*a.ParentID) != "" {
		id, diags := resolveRef(*a.ParentID, index, created)
		effect.Diagnostics = append(effect.Diagnostics, diags...)
		if lib.FolderByID(id) != nil {
			parentID = model.StringPtr(id)
		} else {
			effect.Diagnostics = append(effect.Diagnostics,
				diag(KindUnknownParent, *a.ParentID, "parent folder not found, creating %q at root", a.Name))
		}
	}

	folder := model.NewFolder(model.NewFolderParams{Name: a.Name, ParentID: parentID})
	out := lib.Clone()
	out.Folders = append(out.Folders, folder)

	if created != nil {
		created[a.Name] = folder.ID
	}
	effect.CreatedFolderID = folder.ID
	return out, effect
}

func applyMove(lib *model.Library, a model.MoveBookmarks, index NameIndex, created map[string]string) (*model.Library, Effect) {
	effect := Effect{Action: a}

	ref := strings.TrimSpace(a.TargetFolderID)
	if ref == "" {
		effect.Aborted = true
		effect.Diagnostics = append(effect.Diagnostics,
			diag(KindEmptyTarget, strings.Join(a.BookmarkIDs, ","), "move has no target folder"))
		return lib, effect
	}

	target, diags := resolveRef(ref, index, created)
	effect.Diagnostics = append(effect.Diagnostics, diags...)
	effect.TargetFolderID = target
	if lib.FolderByID(target) == nil {
		effect.Diagnostics = append(effect.Diagnostics,
			diag(KindUnknownTarget, target, "target is not a known folder, moving by literal ID"))
	}

	out := lib.Clone()
	for _, id := range a.BookmarkIDs {
		b := out.BookmarkByID(id)
		if b == nil {
			effect.Diagnostics = append(effect.Diagnostics,
				diag(KindUnknownBookmark, id, "move names a bookmark not in the library"))
			continue
		}
		b.FolderID = model.StringPtr(target)
		effect.Moved = append(effect.Moved, id)
	}
	return out, effect
}

// resolveRef turns a folder reference into an ID: names created in this
// batch first, then names in the live tree (first in traversal order when
// ambiguous), otherwise the reference itself as a literal ID.
func resolveRef(ref string, index NameIndex, created map[string]string) (string, []Diagnostic) {
	if id, ok := created[ref]; ok {
		return id, nil
	}

	switch ids := index[ref]; len(ids) {
	case 0:
		return ref, nil
	case 1:
		return ids[0], nil
	default:
		return ids[0], []Diagnostic{
			diag(KindAmbiguousName, ref, "%d folders share this name, using the first (%s)", len(ids), ids[0]),
		}
	}
}
