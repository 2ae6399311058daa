// Package goquery implements downdrag.Parser for HTML documents queried with
// CSS selectors.
//
// A selector may end in a pseudo-element that selects a value instead of
// elements: "::text" yields the text of every match and "::attr(name)" the
// named attribute of every match that has it.
package goquery

import (
	"strings"
	"sync"

	"github.com/CodeBeast357/downdrag"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Ensure Parser implements downdrag.Parser at compile time.
var _ downdrag.Parser = (*Parser)(nil)

// Parser parses HTML into CSS-queryable pages.
type Parser struct {
	mu        sync.Mutex
	selectors map[string]cascadia.Selector
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{selectors: make(map[string]cascadia.Selector)}
}

// Parse parses content as an HTML document retrieved from url.
func (p *Parser) Parse(url, content string) (*downdrag.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, downdrag.Errorf(downdrag.EINVALID, "parse HTML: %v", err)
	}
	return &downdrag.Page{URL: url, Root: &Node{sel: doc.Selection, parser: p}}, nil
}

func (p *Parser) compile(selector string) (cascadia.Selector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.selectors[selector]; ok {
		return s, nil
	}
	s, err := cascadia.Compile(selector)
	if err != nil {
		return nil, downdrag.Errorf(downdrag.EINVALID, "selector %q: %v", selector, err)
	}
	p.selectors[selector] = s
	return s, nil
}

// Ensure Node implements downdrag.Node at compile time.
var _ downdrag.Node = (*Node)(nil)

// Node is a single selected element or a selected value.
type Node struct {
	sel    *goquery.Selection
	value  string
	parser *Parser
}

// Query selects the descendants of the node matching expr.
func (n *Node) Query(expr string) ([]downdrag.Node, error) {
	if n.sel == nil {
		return nil, nil
	}
	selector, pseudo, attr := splitPseudo(strings.TrimSpace(expr))

	matched := n.sel
	if selector != "" {
		s, err := n.parser.compile(selector)
		if err != nil {
			return nil, err
		}
		matched = n.sel.FindMatcher(s)
	}

	var nodes []downdrag.Node
	matched.Each(func(_ int, s *goquery.Selection) {
		switch pseudo {
		case "text":
			nodes = append(nodes, &Node{value: s.Text(), parser: n.parser})
		case "attr":
			if v, ok := s.Attr(attr); ok {
				nodes = append(nodes, &Node{value: v, parser: n.parser})
			}
		default:
			nodes = append(nodes, &Node{sel: s, parser: n.parser})
		}
	})
	return nodes, nil
}

// Text returns the combined text of the node.
func (n *Node) Text() string {
	if n.sel == nil {
		return n.value
	}
	return n.sel.Text()
}

// Attr returns the named attribute of the node.
func (n *Node) Attr(name string) (string, bool) {
	if n.sel == nil {
		return "", false
	}
	return n.sel.Attr(name)
}

// splitPseudo separates a trailing ::text or ::attr(name) from selector.
func splitPseudo(expr string) (selector, pseudo, attr string) {
	i := strings.LastIndex(expr, "::")
	if i < 0 {
		return expr, "", ""
	}
	tail := expr[i+2:]
	switch {
	case tail == "text":
		return strings.TrimSpace(expr[:i]), "text", ""
	case strings.HasPrefix(tail, "attr(") && strings.HasSuffix(tail, ")"):
		return strings.TrimSpace(expr[:i]), "attr", strings.TrimSpace(tail[len("attr(") : len(tail)-1])
	}
	return expr, "", ""
}
