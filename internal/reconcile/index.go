package reconcile

import "github.com/nikbrunner/bmsort/internal/model"

// NameIndex maps a folder name to every folder ID carrying it, in pre-order
// traversal order of the folder tree.
type NameIndex map[string][]string

// Add records id under name.
func (idx NameIndex) Add(name, id string) {
	idx[name] = append(idx[name], id)
}

// BuildNameIndex indexes the library's folders by a pre-order walk from the
// root. Folders not reachable from the root (dangling or looping parents) are
// appended afterwards in sequence order so they stay addressable.
func BuildNameIndex(lib *model.Library) NameIndex {
	idx := make(NameIndex)
	visited := make(map[string]bool, len(lib.Folders))

	var walk func(parentID *string)
	walk = func(parentID *string) {
		for _, f := range lib.FoldersIn(parentID) {
			if visited[f.ID] {
				continue
			}
			visited[f.ID] = true
			idx.Add(f.Name, f.ID)
			id := f.ID
			walk(&id)
		}
	}
	walk(nil)

	for _, f := range lib.Folders {
		if !visited[f.ID] {
			visited[f.ID] = true
			idx.Add(f.Name, f.ID)
		}
	}
	return idx
}
