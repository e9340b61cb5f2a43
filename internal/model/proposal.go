package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Proposal is a complete candidate reorganization returned by the
// suggestion service.
type Proposal struct {
	Folders     []FolderSuggestion `json:"folders"`
	Assignments []Assignment       `json:"assignments"`
	Reasoning   string             `json:"reasoning"`
}

// FolderSuggestion is one proposed folder, addressed by a root-relative
// slash-delimited path such as "Work/Projects/AI".
type FolderSuggestion struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Assignment places a bookmark into the folder at FolderPath.
type Assignment struct {
	BookmarkID string `json:"bookmarkId"`
	FolderPath string `json:"folderPath"`
}

// Validate checks that the assignment names both a bookmark and a path.
func (a Assignment) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BookmarkID, validation.Required),
		validation.Field(&a.FolderPath, validation.Required),
	)
}

// Validate checks that every proposed folder has a path. Assignments are
// checked one by one when the proposal is applied.
func (p Proposal) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Folders),
	)
}

// Validate checks that the folder suggestion has a path.
func (f FolderSuggestion) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Path, validation.Required),
	)
}

// Paths returns the folder paths in proposal order.
func (p Proposal) Paths() []string {
	paths := make([]string, len(p.Folders))
	for i, f := range p.Folders {
		paths[i] = f.Path
	}
	return paths
}
