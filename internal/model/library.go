package model

import "strings"

// Library holds all bookmarks and folders being organized.
//
// Sequence order reflects insertion (document) order only; the parent/child
// graph is the canonical structure. Operations that derive a new Library
// from an old one work on a Clone so the previous value stays usable as an
// undo point.
type Library struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewLibrary creates an empty Library with initialized slices.
func NewLibrary() *Library {
	return &Library{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
}

// Clone returns a deep copy of the library.
func (l *Library) Clone() *Library {
	out := &Library{
		Folders:   make([]Folder, len(l.Folders)),
		Bookmarks: make([]Bookmark, len(l.Bookmarks)),
	}
	for i, f := range l.Folders {
		f.ParentID = clonePtr(f.ParentID)
		out.Folders[i] = f
	}
	for i, b := range l.Bookmarks {
		b.FolderID = clonePtr(b.FolderID)
		if b.Tags != nil {
			b.Tags = append([]string(nil), b.Tags...)
		}
		out.Bookmarks[i] = b
	}
	return out
}

// FoldersIn returns folders with the given parent ID.
// Pass nil for root level folders.
func (l *Library) FoldersIn(parentID *string) []Folder {
	var result []Folder
	for _, f := range l.Folders {
		if f.InFolder(parentID) {
			result = append(result, f)
		}
	}
	return result
}

// BookmarksIn returns bookmarks in the given folder.
// Pass nil for root level bookmarks.
func (l *Library) BookmarksIn(folderID *string) []Bookmark {
	var result []Bookmark
	for _, b := range l.Bookmarks {
		if b.InFolder(folderID) {
			result = append(result, b)
		}
	}
	return result
}

// FolderByID finds a folder by ID, returns nil if not found.
func (l *Library) FolderByID(id string) *Folder {
	for i := range l.Folders {
		if l.Folders[i].ID == id {
			return &l.Folders[i]
		}
	}
	return nil
}

// BookmarkByID finds the first bookmark with the given ID, returns nil if not found.
func (l *Library) BookmarkByID(id string) *Bookmark {
	for i := range l.Bookmarks {
		if l.Bookmarks[i].ID == id {
			return &l.Bookmarks[i]
		}
	}
	return nil
}

// FolderPath returns the slash-delimited path of names from the root to the
// folder. Unknown IDs yield "". A parent chain that loops or leaves the
// library stops where it breaks.
func (l *Library) FolderPath(id string) string {
	var names []string
	seen := make(map[string]bool)
	for cur := l.FolderByID(id); cur != nil; {
		if seen[cur.ID] {
			break
		}
		seen[cur.ID] = true
		names = append(names, cur.Name)
		if cur.ParentID == nil {
			break
		}
		cur = l.FolderByID(*cur.ParentID)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// DanglingBookmarks returns bookmarks whose folder reference does not match
// any folder in the library.
func (l *Library) DanglingBookmarks() []Bookmark {
	ids := l.folderIDs()
	var result []Bookmark
	for _, b := range l.Bookmarks {
		if b.FolderID != nil && !ids[*b.FolderID] {
			result = append(result, b)
		}
	}
	return result
}

// HasCycle reports whether any folder's parent chain loops back on itself.
func (l *Library) HasCycle() bool {
	parents := make(map[string]*string, len(l.Folders))
	for _, f := range l.Folders {
		parents[f.ID] = f.ParentID
	}
	for _, f := range l.Folders {
		seen := map[string]bool{f.ID: true}
		for p := f.ParentID; p != nil; p = parents[*p] {
			if seen[*p] {
				return true
			}
			seen[*p] = true
		}
	}
	return false
}

// IsAncestor reports whether ancestorID appears in the parent chain of id.
func (l *Library) IsAncestor(ancestorID, id string) bool {
	seen := make(map[string]bool)
	for cur := l.FolderByID(id); cur != nil && cur.ParentID != nil; cur = l.FolderByID(*cur.ParentID) {
		if *cur.ParentID == ancestorID {
			return true
		}
		if seen[cur.ID] {
			return false
		}
		seen[cur.ID] = true
	}
	return false
}

func (l *Library) folderIDs() map[string]bool {
	ids := make(map[string]bool, len(l.Folders))
	for _, f := range l.Folders {
		ids[f.ID] = true
	}
	return ids
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
