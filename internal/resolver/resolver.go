// Package resolver turns slash-delimited folder paths into concrete folders.
package resolver

import (
	"strings"

	"github.com/nikbrunner/bmsort/internal/model"
)

// Separator splits path segments.
const Separator = "/"

// Resolution is the outcome of resolving a set of folder paths.
type Resolution struct {
	// Folders covers every distinct prefix of every input path, in first-seen order.
	Folders []model.Folder
	// PathToID maps each accumulated path key ("A", "A/B", ...) to the ID of
	// the folder for its last segment.
	PathToID map[string]string
}

// Resolve synthesizes one folder per distinct path prefix. Paths sharing a
// prefix share the folders for that prefix, so "A/B/C" and "A/B/D" yield four
// folders, not six.
//
// Segments are taken literally: "A//B" produces a folder named "" between A
// and B.
func Resolve(paths []string) Resolution {
	r := Resolution{
		Folders:  []model.Folder{},
		PathToID: make(map[string]string),
	}

	for _, path := range paths {
		var key string
		var parentID *string
		for i, segment := range strings.Split(path, Separator) {
			if i == 0 {
				key = segment
			} else {
				key += Separator + segment
			}

			id, ok := r.PathToID[key]
			if !ok {
				folder := model.NewFolder(model.NewFolderParams{
					Name:     segment,
					ParentID: parentID,
				})
				r.Folders = append(r.Folders, folder)
				r.PathToID[key] = folder.ID
				id = folder.ID
			}
			parentID = model.StringPtr(id)
		}
	}

	return r
}

// Lookup returns the folder ID for a full path.
func (r Resolution) Lookup(path string) (string, bool) {
	id, ok := r.PathToID[path]
	return id, ok
}
