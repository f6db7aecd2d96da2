//go:build cgo

package sqltree

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// SitterParser adapts a go-tree-sitter parser to the Parser interface. The
// SQL grammar is supplied by the caller as a *ts.Language; grammar bindings
// are linked by the embedding build, not by this package.
type SitterParser struct {
	parser *ts.Parser
}

// NewSitterParser creates a SitterParser for the given language.
func NewSitterParser(lang *ts.Language) (*SitterParser, error) {
	p := ts.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("sqltree: set language: %w", err)
	}
	return &SitterParser{parser: p}, nil
}

// Parse parses text into a Tree. A nil Tree is returned only when the
// underlying parser gives up entirely (e.g. after a cancellation).
func (p *SitterParser) Parse(text string) Tree {
	src := []byte(text)
	t := p.parser.Parse(src, nil)
	if t == nil {
		return nil
	}
	return &sitterTree{tree: t, src: src}
}

// Close releases the underlying parser.
func (p *SitterParser) Close() {
	p.parser.Close()
}

type sitterTree struct {
	tree *ts.Tree
	src  []byte
}

func (t *sitterTree) RootNode() Node {
	return wrapNode(t.tree.RootNode(), t.src)
}

// sitterNode wraps *ts.Node. The source slice rides along so Text can be
// answered without holding a reference back to the tree.
type sitterNode struct {
	node *ts.Node
	src  []byte
}

func wrapNode(n *ts.Node, src []byte) Node {
	if n == nil {
		return nil
	}
	return &sitterNode{node: n, src: src}
}

func (n *sitterNode) Kind() string { return n.node.Kind() }

func (n *sitterNode) StartPoint() Point {
	p := n.node.StartPosition()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

func (n *sitterNode) EndPoint() Point {
	p := n.node.EndPosition()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

func (n *sitterNode) ChildCount() int { return int(n.node.ChildCount()) }

func (n *sitterNode) Child(i int) Node {
	return wrapNode(n.node.Child(uint(i)), n.src)
}

func (n *sitterNode) Parent() Node {
	return wrapNode(n.node.Parent(), n.src)
}

func (n *sitterNode) Text() string {
	return n.node.Utf8Text(n.src)
}

func (n *sitterNode) DescendantForPointRange(start, end Point) Node {
	d := n.node.DescendantForPointRange(
		ts.Point{Row: uint(start.Row), Column: uint(start.Column)},
		ts.Point{Row: uint(end.Row), Column: uint(end.Column)},
	)
	return wrapNode(d, n.src)
}
