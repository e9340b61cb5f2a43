package importer

import (
	"io"
	"strings"

	"github.com/nikbrunner/bmsort/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	defaultBookmarkTitle = "Untitled"
	defaultFolderName    = "New Folder"
)

// ParseHTMLBookmarks parses a Netscape bookmark document into a Library.
//
// Bookmarks and folders are appended in depth-first, pre-order document order
// and receive fresh IDs on every call. A document without any definition list
// falls back to a flat list of every link it contains.
func ParseHTMLBookmarks(r io.Reader) (*model.Library, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	lib := model.NewLibrary()

	root := findFirst(doc, atom.Dl)
	if root == nil {
		parseFlat(lib, doc)
		return lib, nil
	}

	parseList(lib, root, nil)
	return lib, nil
}

// ParseString is ParseHTMLBookmarks over an in-memory document.
func ParseString(s string) (*model.Library, error) {
	return ParseHTMLBookmarks(strings.NewReader(s))
}

// parseList walks the entries of one definition list with parentID as the
// enclosing folder context.
func parseList(lib *model.Library, dl *html.Node, parentID *string) {
	for _, dt := range listEntries(dl) {
		if heading := findHeading(dt); heading != nil {
			name := getTextContent(heading)
			if name == "" {
				name = defaultFolderName
			}
			folder := model.NewFolder(model.NewFolderParams{
				Name:     name,
				ParentID: parentID,
			})
			lib.Folders = append(lib.Folders, folder)

			if sub := folderList(dt); sub != nil {
				id := folder.ID
				parseList(lib, sub, &id)
			}
			continue
		}

		if link := findLink(dt); link != nil {
			lib.Bookmarks = append(lib.Bookmarks, bookmarkFromLink(link, parentID))
		}
	}
}

// parseFlat turns every link in the document into a root level bookmark.
func parseFlat(lib *model.Library, doc *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			lib.Bookmarks = append(lib.Bookmarks, bookmarkFromLink(n, nil))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

func bookmarkFromLink(a *html.Node, folderID *string) model.Bookmark {
	title := getTextContent(a)
	if title == "" {
		title = defaultBookmarkTitle
	}

	return model.NewBookmark(model.NewBookmarkParams{
		Title:    title,
		URL:      getAttr(a, "href"),
		AddDate:  getAttr(a, "add_date"),
		Icon:     getAttr(a, "icon"),
		Tags:     splitTags(getAttr(a, "tags")),
		FolderID: folderID,
	})
}

// listEntries returns the DT entries that belong directly to dl. Stray
// wrappers such as the <p> that follows every <DL> are looked through, nested
// lists are not.
func listEntries(dl *html.Node) []*html.Node {
	var entries []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Dt:
				entries = append(entries, c)
			case atom.Dl:
				// belongs to a folder entry
			default:
				collect(c)
			}
		}
	}
	collect(dl)
	return entries
}

// folderList locates the list holding a folder's contents. The HTML parser
// usually nests it inside the DT next to the heading; other producers leave
// it as a following sibling of the DT.
func folderList(dt *html.Node) *html.Node {
	for c := dt.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Dl) {
			return c
		}
	}
	for s := dt.NextSibling; s != nil; s = s.NextSibling {
		if isElement(s, atom.Dt) {
			return nil
		}
		if isElement(s, atom.Dl) {
			return s
		}
		if isElement(s, atom.Dd) || isElement(s, atom.P) {
			if dl := findFirst(s, atom.Dl); dl != nil {
				return dl
			}
		}
	}
	return nil
}

// findHeading returns the folder heading of an entry, if it has one.
func findHeading(dt *html.Node) *html.Node {
	for c := dt.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return c
		}
	}
	return nil
}

// findLink returns the first link of an entry without descending into a
// nested list.
func findLink(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom == atom.Dl {
			continue
		}
		if c.DataAtom == atom.A {
			return c
		}
		if found := findLink(c); found != nil {
			return found
		}
	}
	return nil
}

// findFirst returns the first element of the given type in pre-order.
func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if isElement(n, a) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
