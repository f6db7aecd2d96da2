// Package treetest provides a hand-built sqltree implementation for tests
// that need syntax trees without a real parser.
package treetest

import "github.com/dbshell/dbshell/internal/sqltree"

// Node is a fake syntax node. Build trees with NewNode and Add; point
// ranges must be set explicitly and are not validated.
type Node struct {
	kind     string
	start    sqltree.Point
	end      sqltree.Point
	text     string
	parent   *Node
	children []*Node
}

// Tree wraps a root Node.
type Tree struct {
	root *Node
}

// NewTree creates a Tree with the given root.
func NewTree(root *Node) *Tree { return &Tree{root: root} }

func (t *Tree) RootNode() sqltree.Node {
	if t.root == nil {
		return nil
	}
	return t.root
}

// NewNode creates a node covering [start, end) with the given kind and text.
func NewNode(kind string, start, end sqltree.Point, text string) *Node {
	return &Node{kind: kind, start: start, end: end, text: text}
}

// Add appends children to n and sets their parent pointers. It returns n for
// chaining.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func (n *Node) Kind() string              { return n.kind }
func (n *Node) StartPoint() sqltree.Point { return n.start }
func (n *Node) EndPoint() sqltree.Point   { return n.end }
func (n *Node) ChildCount() int           { return len(n.children) }
func (n *Node) Text() string              { return n.text }

func (n *Node) Child(i int) sqltree.Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) Parent() sqltree.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// covers reports whether the node's range contains [start, end].
func (n *Node) covers(start, end sqltree.Point) bool {
	if start.Before(n.start) {
		return false
	}
	// A cursor sitting exactly at the end of a node still counts as
	// covered, mirroring tree-sitter's point range lookup.
	if n.end.Before(end) {
		return false
	}
	return true
}

func (n *Node) DescendantForPointRange(start, end sqltree.Point) sqltree.Node {
	if !n.covers(start, end) {
		return nil
	}
	for _, c := range n.children {
		if d := c.DescendantForPointRange(start, end); d != nil {
			return d
		}
	}
	return n
}
