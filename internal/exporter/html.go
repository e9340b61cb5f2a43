package exporter

import (
	"fmt"
	"html"
	"strings"

	"github.com/nikbrunner/bmsort/internal/model"
)

const (
	// DefaultFilename is the file name offered for exported libraries.
	DefaultFilename = "organized_bookmarks.html"
	// MIMEType is the content type of exported documents.
	MIMEType = "text/html"
)

const header = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
`

// Summary counts what an export wrote.
type Summary struct {
	Folders   int
	Bookmarks int
	// Omitted counts bookmarks that are not reachable from the root: their
	// folder ID names no folder, or a folder whose ancestry does not reach
	// the root.
	Omitted int
}

// ExportHTML renders the library as a Netscape bookmark document.
func ExportHTML(lib *model.Library) string {
	out, _ := Export(lib)
	return out
}

// Export renders the library as a Netscape bookmark document and reports
// what was written.
//
// At every level the direct child folders come first, then the direct child
// bookmarks, each in library sequence order. All text and attribute values
// are escaped. Only items reachable from the root are written.
func Export(lib *model.Library) (string, Summary) {
	var b strings.Builder
	var sum Summary

	b.WriteString(header)
	b.WriteString("<DL><p>\n")

	writeItems(&b, &sum, lib, nil, 1, make(map[string]bool))

	b.WriteString("</DL><p>\n")

	sum.Omitted = len(lib.Bookmarks) - sum.Bookmarks
	return b.String(), sum
}

// writeItems recursively writes folders and bookmarks for a given parent.
// visited guards against duplicate folder IDs forming a loop.
func writeItems(b *strings.Builder, sum *Summary, lib *model.Library, parentID *string, indent int, visited map[string]bool) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range lib.FoldersIn(parentID) {
		if visited[folder.ID] {
			continue
		}
		visited[folder.ID] = true
		sum.Folders++

		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.Name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)

		folderID := folder.ID
		writeItems(b, sum, lib, &folderID, indent+1, visited)

		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}

	for _, bookmark := range lib.BookmarksIn(parentID) {
		sum.Bookmarks++
		fmt.Fprintf(b, "%s<DT><A%s>%s</A>\n",
			prefix,
			linkAttrs(bookmark),
			html.EscapeString(bookmark.Title),
		)
	}
}

func linkAttrs(bm model.Bookmark) string {
	var b strings.Builder
	fmt.Fprintf(&b, ` HREF="%s"`, html.EscapeString(bm.URL))
	if bm.AddDate != "" {
		fmt.Fprintf(&b, ` ADD_DATE="%s"`, html.EscapeString(bm.AddDate))
	}
	if bm.Icon != "" {
		fmt.Fprintf(&b, ` ICON="%s"`, html.EscapeString(bm.Icon))
	}
	if len(bm.Tags) > 0 {
		fmt.Fprintf(&b, ` TAGS="%s"`, html.EscapeString(strings.Join(bm.Tags, ",")))
	}
	return b.String()
}
