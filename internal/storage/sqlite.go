package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmsort/internal/hoststore"
	"github.com/nikbrunner/bmsort/internal/model"
)

const currentSchemaVersion = 1

// ErrDuplicateID is returned by SQLiteStorage.Save when two folders or two
// bookmarks share an ID. The JSON backend keeps such libraries as they are.
var ErrDuplicateID = errors.New("duplicate id")

// SQLiteStorage implements Storage using a SQLite database. It also serves as
// a live hoststore.Store, applying folder creation and moves row by row.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

var _ hoststore.Store = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema. position keeps library sequence order.
func (s *SQLiteStorage) migrateV1() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (parent_id) REFERENCES folders(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			folder_id TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			add_date TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_folder_id ON bookmarks(folder_id);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);

		INSERT OR REPLACE INTO schema_version (version) VALUES (%d);
	`, currentSchemaVersion)
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the library from the SQLite database.
func (s *SQLiteStorage) Load() (*model.Library, error) {
	return s.load(context.Background())
}

func (s *SQLiteStorage) load(ctx context.Context) (*model.Library, error) {
	lib := model.NewLibrary()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, parent_id
		FROM folders
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f model.Folder
		var parentID sql.NullString

		if err := rows.Scan(&f.ID, &f.Name, &parentID); err != nil {
			return nil, err
		}
		if parentID.Valid {
			f.ParentID = &parentID.String
		}
		lib.Folders = append(lib.Folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, title, url, folder_id, tags, add_date, icon
		FROM bookmarks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Bookmark
		var folderID sql.NullString
		var tagsJSON string

		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &folderID, &tagsJSON, &b.AddDate, &b.Icon); err != nil {
			return nil, err
		}
		if folderID.Valid {
			b.FolderID = &folderID.String
		}
		if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil || len(b.Tags) == 0 {
			b.Tags = nil
		}
		lib.Bookmarks = append(lib.Bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lib, nil
}

// Save writes the library to the SQLite database.
// Uses a transaction for atomicity - all or nothing. IDs are primary keys, so
// a library with duplicate folder or bookmark IDs is rejected with
// ErrDuplicateID before anything is written.
func (s *SQLiteStorage) Save(lib *model.Library) error {
	if err := checkUniqueIDs(lib); err != nil {
		return err
	}

	// Libraries may carry dangling folder references after a proposal is
	// applied, and folders may reference parents inserted later.
	// Note: PRAGMA foreign_keys cannot be changed inside a transaction
	if _, err := s.db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return err
	}
	defer func() { _, _ = s.db.Exec("PRAGMA foreign_keys = ON") }()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM bookmarks"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM folders"); err != nil {
		return err
	}

	folderStmt, err := tx.Prepare(`
		INSERT INTO folders (id, name, parent_id, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer folderStmt.Close()

	for i, f := range lib.Folders {
		if _, err := folderStmt.Exec(f.ID, f.Name, f.ParentID, i); err != nil {
			return err
		}
	}

	bookmarkStmt, err := tx.Prepare(`
		INSERT INTO bookmarks (id, title, url, folder_id, tags, add_date, icon, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer bookmarkStmt.Close()

	for i, b := range lib.Bookmarks {
		tagsJSON := []byte("[]")
		if len(b.Tags) > 0 {
			tagsJSON, _ = json.Marshal(b.Tags)
		}
		if _, err := bookmarkStmt.Exec(
			b.ID, b.Title, b.URL, b.FolderID,
			string(tagsJSON), b.AddDate, b.Icon, i,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetTree implements hoststore.Store.
func (s *SQLiteStorage) GetTree(ctx context.Context) (*hoststore.Node, error) {
	lib, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return hoststore.TreeFromLibrary(lib), nil
}

// Create implements hoststore.Store by inserting a folder row.
func (s *SQLiteStorage) Create(ctx context.Context, params hoststore.CreateParams) (string, error) {
	var parentID *string
	if params.ParentID != "" && params.ParentID != hoststore.RootID {
		parentID = &params.ParentID
	}

	folder := model.NewFolder(model.NewFolderParams{Name: params.Title, ParentID: parentID})
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folders (id, name, parent_id, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM folders))
	`, folder.ID, folder.Name, folder.ParentID)
	if err != nil {
		if parentID != nil && isConstraintErr(err) {
			return "", fmt.Errorf("create %q: parent %s: %w", params.Title, params.ParentID, hoststore.ErrNotFound)
		}
		return "", err
	}
	return folder.ID, nil
}

// Move implements hoststore.Store. The ID may name a bookmark or a folder;
// a target that does not exist is rejected by the foreign key.
func (s *SQLiteStorage) Move(ctx context.Context, id, parentID string) error {
	var target *string
	if parentID != "" && parentID != hoststore.RootID {
		target = &parentID
	}

	res, err := s.db.ExecContext(ctx, "UPDATE bookmarks SET folder_id = ? WHERE id = ?", target, id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("move %s: target %s: %w", id, parentID, hoststore.ErrNotFound)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	if target != nil {
		lib, err := s.load(ctx)
		if err != nil {
			return err
		}
		if *target == id || lib.IsAncestor(id, *target) {
			return fmt.Errorf("move %s into its own subtree", id)
		}
	}

	res, err = s.db.ExecContext(ctx, "UPDATE folders SET parent_id = ? WHERE id = ?", target, id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("move %s: target %s: %w", id, parentID, hoststore.ErrNotFound)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("move %s: %w", id, hoststore.ErrNotFound)
	}
	return nil
}

// isConstraintErr reports whether err came from a violated SQLite constraint.
func isConstraintErr(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		// SQLITE_CONSTRAINT and its extended codes share the low byte 19
		return coder.Code()&0xff == 19
	}
	return false
}

func checkUniqueIDs(lib *model.Library) error {
	folders := make(map[string]bool, len(lib.Folders))
	for _, f := range lib.Folders {
		if folders[f.ID] {
			return fmt.Errorf("%w: folder %q", ErrDuplicateID, f.ID)
		}
		folders[f.ID] = true
	}

	bookmarks := make(map[string]bool, len(lib.Bookmarks))
	for _, b := range lib.Bookmarks {
		if bookmarks[b.ID] {
			return fmt.Errorf("%w: bookmark %q", ErrDuplicateID, b.ID)
		}
		bookmarks[b.ID] = true
	}
	return nil
}
