// Package htmlquery implements downdrag.Parser for HTML documents queried
// with XPath 1.0 expressions.
package htmlquery

import (
	"strconv"
	"strings"
	"sync"

	"github.com/CodeBeast357/downdrag"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Ensure Parser implements downdrag.Parser at compile time.
var _ downdrag.Parser = (*Parser)(nil)

// Parser parses HTML into XPath-queryable pages. Compiled expressions are
// shared by every page the parser produces.
type Parser struct {
	exprs sync.Map // string -> *xpath.Expr
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses content as an HTML document retrieved from url.
func (p *Parser) Parse(url, content string) (*downdrag.Page, error) {
	doc, err := htmlquery.Parse(strings.NewReader(content))
	if err != nil {
		return nil, downdrag.Errorf(downdrag.EINVALID, "parse HTML: %v", err)
	}
	return &downdrag.Page{URL: url, Root: &Node{node: doc, parser: p}}, nil
}

// Compile compiles expr, reusing an earlier compilation when possible.
func (p *Parser) Compile(expr string) (*xpath.Expr, error) {
	if e, ok := p.exprs.Load(expr); ok {
		return e.(*xpath.Expr), nil
	}
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, downdrag.Errorf(downdrag.EINVALID, "xpath %q: %v", expr, err)
	}
	p.exprs.Store(expr, e)
	return e, nil
}

// Ensure Node implements downdrag.Node at compile time.
var _ downdrag.Node = (*Node)(nil)

// Node is an HTML node or a scalar XPath result (an attribute value, a
// string, a number or a boolean).
type Node struct {
	node   *html.Node
	value  string
	parser *Parser
}

// Query evaluates expr relative to the node. Scalar results yield a single
// node; scalar nodes have no children.
func (n *Node) Query(expr string) ([]downdrag.Node, error) {
	if n.node == nil {
		return nil, nil
	}
	e, err := n.parser.Compile(expr)
	if err != nil {
		return nil, err
	}
	switch res := e.Evaluate(htmlquery.CreateXPathNavigator(n.node)).(type) {
	case *xpath.NodeIterator:
		var nodes []downdrag.Node
		for res.MoveNext() {
			nav, ok := res.Current().(*htmlquery.NodeNavigator)
			if !ok {
				continue
			}
			if nav.NodeType() == xpath.AttributeNode {
				nodes = append(nodes, &Node{value: nav.Value(), parser: n.parser})
				continue
			}
			nodes = append(nodes, &Node{node: nav.Current(), parser: n.parser})
		}
		return nodes, nil
	case string:
		return []downdrag.Node{&Node{value: res, parser: n.parser}}, nil
	case float64:
		return []downdrag.Node{&Node{value: strconv.FormatFloat(res, 'f', -1, 64), parser: n.parser}}, nil
	case bool:
		return []downdrag.Node{&Node{value: strconv.FormatBool(res), parser: n.parser}}, nil
	}
	return nil, nil
}

// Text returns the text content of the node.
func (n *Node) Text() string {
	if n.node == nil {
		return n.value
	}
	return htmlquery.InnerText(n.node)
}

// Attr returns the named attribute of an element node.
func (n *Node) Attr(name string) (string, bool) {
	if n.node == nil || n.node.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
