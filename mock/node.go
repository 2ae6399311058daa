package mock

import (
	"github.com/CodeBeast357/downdrag"
)

var _ downdrag.Node = (*Node)(nil)

// Node is a mock implementation of downdrag.Node.
type Node struct {
	QueryFn func(expr string) ([]downdrag.Node, error)
	TextFn  func() string
	AttrFn  func(name string) (string, bool)
}

func (n *Node) Query(expr string) ([]downdrag.Node, error) {
	return n.QueryFn(expr)
}

func (n *Node) Text() string {
	return n.TextFn()
}

func (n *Node) Attr(name string) (string, bool) {
	return n.AttrFn(name)
}

// Text returns a leaf node with the given text and no attributes.
func Text(s string) *Node {
	return &Node{
		QueryFn: func(string) ([]downdrag.Node, error) { return nil, nil },
		TextFn:  func() string { return s },
		AttrFn:  func(string) (string, bool) { return "", false },
	}
}

// Texts returns one leaf node per string.
func Texts(ss ...string) []downdrag.Node {
	nodes := make([]downdrag.Node, len(ss))
	for i, s := range ss {
		nodes[i] = Text(s)
	}
	return nodes
}

var _ downdrag.Parser = (*Parser)(nil)

// Parser is a mock implementation of downdrag.Parser.
type Parser struct {
	ParseFn func(url, content string) (*downdrag.Page, error)
}

func (p *Parser) Parse(url, content string) (*downdrag.Page, error) {
	return p.ParseFn(url, content)
}
