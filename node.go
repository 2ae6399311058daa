package downdrag

import (
	"net/url"
	"strings"
)

// Node is a queryable position in a parsed document: the document root, an
// element, or a text or attribute result.
type Node interface {
	// Query evaluates expr relative to the node and returns the results in
	// document order. An empty slice means nothing matched; an error means
	// the expression itself is invalid.
	Query(expr string) ([]Node, error)

	// Text returns the text content of the node.
	Text() string

	// Attr returns the named attribute of an element node.
	Attr(name string) (string, bool)
}

// Page is a parsed document together with the URL it was retrieved from.
type Page struct {
	URL  string
	Root Node
}

// Query evaluates expr against the page root.
func (p *Page) Query(expr string) ([]Node, error) {
	return p.Root.Query(expr)
}

// RebaseLink resolves link against the page URL. Fragment-only links are
// appended to the page URL verbatim.
func (p *Page) RebaseLink(link string) string {
	if strings.HasPrefix(link, "#") {
		return p.URL + link
	}
	base, err := url.Parse(p.URL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// Parser turns retrieved HTML (or XML) into a Page.
type Parser interface {
	Parse(url string, content string) (*Page, error)
}

// SourceItem is one listing entry together with its position within its
// source. Index is zero-based, contiguous and reset per source.
type SourceItem struct {
	Source string
	Index  int
	Node   Node
	Page   *Page
}

// Link returns the href of node, falling back to its text for feed formats
// that carry links as element content.
func Link(node Node) string {
	if href, ok := node.Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return strings.TrimSpace(node.Text())
}
