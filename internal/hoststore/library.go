package hoststore

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikbrunner/bmsort/internal/model"
)

// LibraryStore exposes an in-memory Library through the Store interface.
type LibraryStore struct {
	mu  sync.Mutex
	lib *model.Library
}

// NewLibraryStore wraps a copy of lib.
func NewLibraryStore(lib *model.Library) *LibraryStore {
	return &LibraryStore{lib: lib.Clone()}
}

// Library returns a copy of the current contents.
func (s *LibraryStore) Library() *model.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib.Clone()
}

// GetTree implements Store.
func (s *LibraryStore) GetTree(ctx context.Context) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TreeFromLibrary(s.lib), nil
}

// Create implements Store.
func (s *LibraryStore) Create(ctx context.Context, params CreateParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parentID *string
	if params.ParentID != "" && params.ParentID != RootID {
		if s.lib.FolderByID(params.ParentID) == nil {
			return "", fmt.Errorf("create %q: parent %s: %w", params.Title, params.ParentID, ErrNotFound)
		}
		parentID = model.StringPtr(params.ParentID)
	}

	folder := model.NewFolder(model.NewFolderParams{Name: params.Title, ParentID: parentID})
	s.lib.Folders = append(s.lib.Folders, folder)
	return folder.ID, nil
}

// Move implements Store. Moving a folder into itself or one of its
// descendants is rejected.
func (s *LibraryStore) Move(ctx context.Context, id, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *string
	if parentID != "" && parentID != RootID {
		if s.lib.FolderByID(parentID) == nil {
			return fmt.Errorf("move %s: target %s: %w", id, parentID, ErrNotFound)
		}
		target = model.StringPtr(parentID)
	}

	if b := s.lib.BookmarkByID(id); b != nil {
		b.FolderID = target
		return nil
	}

	if f := s.lib.FolderByID(id); f != nil {
		if target != nil && (*target == id || s.lib.IsAncestor(id, *target)) {
			return fmt.Errorf("move %s into its own subtree", id)
		}
		f.ParentID = target
		return nil
	}

	return fmt.Errorf("move %s: %w", id, ErrNotFound)
}
