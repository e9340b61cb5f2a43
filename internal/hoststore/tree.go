// Package hoststore drives incremental actions against a live bookmark store
// such as a browser's bookmark tree or the bm database.
package hoststore

import (
	"context"
	"errors"

	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
)

// ErrNotFound is returned when a node or move target does not exist.
var ErrNotFound = errors.New("bookmark node not found")

// RootID is the ID of the synthetic root node returned by GetTree.
const RootID = "root"

// Node is one entry of a host bookmark tree. A node without a URL is a folder.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.URL == ""
}

// CreateParams describes a folder to create. An empty ParentID means the root.
type CreateParams struct {
	Title    string
	ParentID string
}

// Store is the host bookmark store.
type Store interface {
	GetTree(ctx context.Context) (*Node, error)
	Create(ctx context.Context, params CreateParams) (string, error)
	Move(ctx context.Context, id, parentID string) error
}

// NameIndex indexes the folders of a tree by name in pre-order, skipping the
// synthetic root.
func NameIndex(root *Node) reconcile.NameIndex {
	idx := make(reconcile.NameIndex)
	if root == nil {
		return idx
	}
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if !c.IsFolder() {
				continue
			}
			idx.Add(c.Title, c.ID)
			walk(c)
		}
	}
	walk(root)
	return idx
}

// TreeFromLibrary builds a host tree rooted at a synthetic RootID node.
// Folders precede bookmarks at every level, matching the exported document.
func TreeFromLibrary(lib *model.Library) *Node {
	root := &Node{ID: RootID, Title: "Bookmarks"}
	visited := make(map[string]bool)

	var fill func(n *Node, parentID *string)
	fill = func(n *Node, parentID *string) {
		for _, f := range lib.FoldersIn(parentID) {
			if visited[f.ID] {
				continue
			}
			visited[f.ID] = true
			child := &Node{ID: f.ID, Title: f.Name}
			n.Children = append(n.Children, child)
			id := f.ID
			fill(child, &id)
		}
		for _, b := range lib.BookmarksIn(parentID) {
			n.Children = append(n.Children, &Node{ID: b.ID, Title: b.Title, URL: b.URL})
		}
	}
	fill(root, nil)
	return root
}
