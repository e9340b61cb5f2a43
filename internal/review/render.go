package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bmsort/internal/model"
)

const (
	rootLabel    = "(root)"
	missingLabel = "(missing folder)"
)

// RenderTree renders the library as an indented outline, folders before
// bookmarks at each level. Bookmarks whose folder no longer exists are
// listed under a separate heading.
func RenderTree(lib *model.Library, s Styles) string {
	var b strings.Builder

	if len(lib.Folders) == 0 && len(lib.Bookmarks) == 0 {
		return s.Empty.Render("No bookmarks") + "\n"
	}

	visited := make(map[string]bool)
	var walk func(parentID *string, depth int)
	walk = func(parentID *string, depth int) {
		pad := strings.Repeat("  ", depth)
		for _, f := range lib.FoldersIn(parentID) {
			if visited[f.ID] {
				continue
			}
			visited[f.ID] = true
			b.WriteString(pad + s.Folder.Render(f.Name+"/") + "\n")
			id := f.ID
			walk(&id, depth+1)
		}
		for _, bm := range lib.BookmarksIn(parentID) {
			b.WriteString(pad + s.Bookmark.Render(bm.Title) + " " + s.URL.Render(bm.URL) + "\n")
		}
	}
	walk(nil, 0)

	if dangling := lib.DanglingBookmarks(); len(dangling) > 0 {
		b.WriteString(s.Title.Render("Unfiled") + "\n")
		for _, bm := range dangling {
			b.WriteString("  " + s.Bookmark.Render(bm.Title) + " " + s.URL.Render(bm.URL) + "\n")
		}
	}

	return b.String()
}

// Change is one bookmark that ends up in a different folder.
type Change struct {
	Bookmark model.Bookmark
	From     string
	To       string
}

// Diff summarizes how a library changes.
type Diff struct {
	Moves          []Change
	AddedFolders   []string
	RemovedFolders []string
}

// Empty reports whether nothing changes.
func (d Diff) Empty() bool {
	return len(d.Moves) == 0 && len(d.AddedFolders) == 0 && len(d.RemovedFolders) == 0
}

// Compare describes the changes from before to after by folder path, so a
// folder recreated under a new ID at the same path is not a change.
func Compare(before, after *model.Library) Diff {
	var d Diff

	for _, bm := range after.Bookmarks {
		prev := before.BookmarkByID(bm.ID)
		if prev == nil {
			continue
		}
		from, to := locate(before, prev.FolderID), locate(after, bm.FolderID)
		if from != to {
			d.Moves = append(d.Moves, Change{Bookmark: bm, From: from, To: to})
		}
	}

	beforePaths, afterPaths := folderPaths(before), folderPaths(after)
	for _, p := range afterPaths.order {
		if !beforePaths.set[p] {
			d.AddedFolders = append(d.AddedFolders, p)
		}
	}
	for _, p := range beforePaths.order {
		if !afterPaths.set[p] {
			d.RemovedFolders = append(d.RemovedFolders, p)
		}
	}

	return d
}

// RenderDiff renders the changes from before to after.
func RenderDiff(before, after *model.Library, s Styles) string {
	d := Compare(before, after)
	if d.Empty() {
		return s.Empty.Render("No changes") + "\n"
	}

	var b strings.Builder
	if len(d.AddedFolders) > 0 {
		b.WriteString(s.Title.Render("New folders") + "\n")
		for _, p := range d.AddedFolders {
			b.WriteString("  " + s.Added.Render("+ "+p) + "\n")
		}
	}
	if len(d.RemovedFolders) > 0 {
		b.WriteString(s.Title.Render("Removed folders") + "\n")
		for _, p := range d.RemovedFolders {
			b.WriteString("  " + s.Removed.Render("- "+p) + "\n")
		}
	}
	if len(d.Moves) > 0 {
		b.WriteString(s.Title.Render(fmt.Sprintf("Moves (%d)", len(d.Moves))) + "\n")
		for _, c := range d.Moves {
			b.WriteString(fmt.Sprintf("  %s  %s -> %s\n",
				s.Bookmark.Render(c.Bookmark.Title),
				s.Path.Render(c.From),
				s.Added.Render(c.To),
			))
		}
	}

	return b.String()
}

// RenderSummary frames a short text, such as a proposal's reasoning.
func RenderSummary(title, text string, s Styles) string {
	body := lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(title), text)
	return s.Box.Render(body)
}

func locate(lib *model.Library, folderID *string) string {
	if folderID == nil {
		return rootLabel
	}
	if lib.FolderByID(*folderID) == nil {
		return missingLabel
	}
	return lib.FolderPath(*folderID)
}

type pathSet struct {
	order []string
	set   map[string]bool
}

func folderPaths(lib *model.Library) pathSet {
	ps := pathSet{set: make(map[string]bool)}
	for _, f := range lib.Folders {
		p := lib.FolderPath(f.ID)
		if ps.set[p] {
			continue
		}
		ps.set[p] = true
		ps.order = append(ps.order, p)
	}
	return ps
}
