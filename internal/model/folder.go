package model

// Folder represents a container for bookmarks and other folders.
// Two folders may share a name; identity is the ID alone.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"` // nil = root level
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name     string
	ParentID *string
}

// NewFolder creates a Folder with a freshly generated ID.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:       NewID(),
		Name:     params.Name,
		ParentID: params.ParentID,
	}
}

// InFolder reports whether the folder's parent is the given folder (nil = root).
func (f Folder) InFolder(parentID *string) bool {
	return ptrEqual(f.ParentID, parentID)
}
