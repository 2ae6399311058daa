// Package etree implements downdrag.Parser for XML documents such as RSS and
// Atom feeds, queried with etree paths.
//
// A path may end in "/@name" to select the named attribute of every match
// or in "/text()" to select the text of every match.
package etree

import (
	"strings"
	"sync"

	"github.com/CodeBeast357/downdrag"
	"github.com/beevik/etree"
)

// Ensure Parser implements downdrag.Parser at compile time.
var _ downdrag.Parser = (*Parser)(nil)

// Parser parses XML into path-queryable pages.
type Parser struct {
	mu    sync.Mutex
	paths map[string]etree.Path
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{paths: make(map[string]etree.Path)}
}

// Parse parses content as an XML document retrieved from url.
func (p *Parser) Parse(url, content string) (*downdrag.Page, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(content); err != nil {
		return nil, downdrag.Errorf(downdrag.EINVALID, "parse XML: %v", err)
	}
	return &downdrag.Page{URL: url, Root: &Node{el: &doc.Element, parser: p}}, nil
}

func (p *Parser) compile(path string) (etree.Path, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.paths[path]; ok {
		return c, nil
	}
	c, err := etree.CompilePath(path)
	if err != nil {
		return etree.Path{}, downdrag.Errorf(downdrag.EINVALID, "path %q: %v", path, err)
	}
	p.paths[path] = c
	return c, nil
}

// Ensure Node implements downdrag.Node at compile time.
var _ downdrag.Node = (*Node)(nil)

// Node is an XML element or a selected value.
type Node struct {
	el     *etree.Element
	value  string
	parser *Parser
}

// Query finds the elements matching expr.
func (n *Node) Query(expr string) ([]downdrag.Node, error) {
	if n.el == nil {
		return nil, nil
	}
	path, attr, text := splitValue(strings.TrimSpace(expr))

	elements := []*etree.Element{n.el}
	if path != "" && path != "." {
		c, err := n.parser.compile(path)
		if err != nil {
			return nil, err
		}
		elements = n.el.FindElementsPath(c)
	}

	var nodes []downdrag.Node
	for _, el := range elements {
		switch {
		case attr != "":
			if a := el.SelectAttr(attr); a != nil {
				nodes = append(nodes, &Node{value: a.Value, parser: n.parser})
			}
		case text:
			nodes = append(nodes, &Node{value: innerText(el), parser: n.parser})
		default:
			nodes = append(nodes, &Node{el: el, parser: n.parser})
		}
	}
	return nodes, nil
}

// Text returns the character data of the element and its descendants.
func (n *Node) Text() string {
	if n.el == nil {
		return n.value
	}
	return innerText(n.el)
}

// Attr returns the named attribute of the element.
func (n *Node) Attr(name string) (string, bool) {
	if n.el == nil {
		return "", false
	}
	a := n.el.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func innerText(el *etree.Element) string {
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return b.String()
}

// splitValue separates a trailing /@name or /text() from path.
func splitValue(expr string) (path, attr string, text bool) {
	if p, ok := strings.CutSuffix(expr, "/text()"); ok {
		return p, "", true
	}
	if i := strings.LastIndex(expr, "/@"); i >= 0 && !strings.ContainsAny(expr[i+2:], "/[]") {
		return expr[:i], expr[i+2:], false
	}
	return expr, "", false
}
