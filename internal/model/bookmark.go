package model

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	AddDate  string   `json:"addDate,omitempty"` // raw ADD_DATE attribute, usually unix seconds
	Icon     string   `json:"icon,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	FolderID *string  `json:"folderId"` // nil = root level
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title    string
	URL      string
	AddDate  string
	Icon     string
	FolderID *string
	Tags     []string
}

// NewBookmark creates a Bookmark with a freshly generated ID.
// The ID is never derived from the URL or title.
func NewBookmark(params NewBookmarkParams) Bookmark {
	return Bookmark{
		ID:       NewID(),
		Title:    params.Title,
		URL:      params.URL,
		AddDate:  params.AddDate,
		Icon:     params.Icon,
		Tags:     uniqueTags(params.Tags),
		FolderID: params.FolderID,
	}
}

// InFolder reports whether the bookmark lives in the given folder (nil = root).
func (b Bookmark) InFolder(folderID *string) bool {
	return ptrEqual(b.FolderID, folderID)
}

// uniqueTags drops repeated tags while keeping first-seen order.
func uniqueTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
