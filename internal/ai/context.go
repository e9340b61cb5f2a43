package ai

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nikbrunner/bmsort/internal/model"
)

// BuildContext renders the library as an indented outline for a prompt.
// Folders carry their ids and bookmarks are listed with their ids so the
// service can refer to them.
func BuildContext(lib *model.Library) string {
	var sb strings.Builder

	sb.WriteString("Current bookmarks (folders as [folder id] name, bookmarks as - [id] title <url>):\n")

	visited := make(map[string]bool)
	buildFolderTree(&sb, lib, nil, 0, visited)

	if dangling := lib.DanglingBookmarks(); len(dangling) > 0 {
		sb.WriteString("Unfiled:\n")
		for _, b := range dangling {
			writeBookmark(&sb, b, 1)
		}
	}

	if tags := AllTags(lib); len(tags) > 0 {
		sb.WriteString("\nExisting tags: ")
		sb.WriteString(strings.Join(tags, ", "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// buildFolderTree writes folders before bookmarks at each level.
func buildFolderTree(sb *strings.Builder, lib *model.Library, parentID *string, depth int, visited map[string]bool) {
	for _, folder := range lib.FoldersIn(parentID) {
		if visited[folder.ID] {
			continue
		}
		visited[folder.ID] = true

		fmt.Fprintf(sb, "%s[%s] %s/\n", indent(depth), folder.ID, folder.Name)
		id := folder.ID
		buildFolderTree(sb, lib, &id, depth+1, visited)
	}
	for _, b := range lib.BookmarksIn(parentID) {
		writeBookmark(sb, b, depth)
	}
}

func writeBookmark(sb *strings.Builder, b model.Bookmark, depth int) {
	fmt.Fprintf(sb, "%s- [%s] %s <%s>\n", indent(depth), b.ID, b.Title, b.URL)
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// AllTags returns the unique tags of the library, sorted.
func AllTags(lib *model.Library) []string {
	tagSet := make(map[string]bool)
	for _, b := range lib.Bookmarks {
		for _, tag := range b.Tags {
			tagSet[tag] = true
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	return tags
}
