package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmsort/internal/model"
)

// Storage defines the interface for persisting a library.
type Storage interface {
	Load() (*model.Library, error)
	Save(lib *model.Library) error
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the library from the JSON file.
// Returns an empty library if the file doesn't exist.
func (s *JSONStorage) Load() (*model.Library, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewLibrary(), nil
		}
		return nil, err
	}

	var lib model.Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, err
	}

	// Ensure slices are not nil
	if lib.Folders == nil {
		lib.Folders = []model.Folder{}
	}
	if lib.Bookmarks == nil {
		lib.Bookmarks = []model.Bookmark{}
	}

	return &lib, nil
}

// Save writes the library to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Save(lib *model.Library) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Exists reports whether the backing file has been written.
func (s *JSONStorage) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Paths returns the file locations used under a data directory.
func Paths(dataDir string) (jsonPath, sqlitePath, backupPath string) {
	return filepath.Join(dataDir, "bookmarks.json"),
		filepath.Join(dataDir, "bookmarks.db"),
		filepath.Join(dataDir, "bookmarks.prev.json")
}

// OpenStorage opens the storage backend for dataDir.
// Prefers SQLite if the database file exists or useSQLite is set, otherwise
// falls back to JSON.
func OpenStorage(dataDir string, useSQLite bool) (Storage, error) {
	jsonPath, sqlitePath, _ := Paths(dataDir)

	if _, err := os.Stat(sqlitePath); err == nil || useSQLite {
		return NewSQLiteStorage(sqlitePath)
	}
	return NewJSONStorage(jsonPath), nil
}

// OpenBackup opens the single-slot backup holding the library replaced by
// the most recent commit.
func OpenBackup(dataDir string) *JSONStorage {
	_, _, backupPath := Paths(dataDir)
	return NewJSONStorage(backupPath)
}

// Commit stores prev in the backup slot, then saves next.
func Commit(s Storage, backup Storage, prev, next *model.Library) error {
	if err := backup.Save(prev); err != nil {
		return err
	}
	return s.Save(next)
}

// Close releases the backend if it holds resources.
func Close(s Storage) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
