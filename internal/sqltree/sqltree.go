// Package sqltree abstracts the syntax tree consumed by the suggestion
// engine. The engine only needs node kinds, point ranges, child access and
// point lookup, so any parser that can provide those can sit behind these
// interfaces. A go-tree-sitter bridge lives in sitter.go; tests use
// hand-built trees.
package sqltree

// Point is a zero-based (row, column) position in the source text.
type Point struct {
	Row    int
	Column int
}

// Before reports whether p comes before other in document order.
func (p Point) Before(other Point) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Column < other.Column
}

// Node is a read-only view of a single syntax tree node. Ranges are
// non-decreasing in document order and child ranges nest within the parent.
type Node interface {
	// Kind returns the grammar production name, e.g. "identifier",
	// "relation", "object_reference", "statement", "program".
	Kind() string
	StartPoint() Point
	EndPoint() Point
	ChildCount() int
	Child(i int) Node
	Parent() Node
	// Text returns the source text covered by the node.
	Text() string
	// DescendantForPointRange returns the deepest node covering the
	// given range, or nil if the range falls outside the node.
	DescendantForPointRange(start, end Point) Node
}

// Tree is a parsed syntax tree.
type Tree interface {
	RootNode() Node
}

// Parser produces a Tree from SQL text. Parse never fails: a parser that
// cannot make sense of the input still returns a tree (possibly with error
// nodes), matching tree-sitter semantics.
type Parser interface {
	Parse(text string) Tree
}

// Walk visits node and all of its descendants in document order. The visit
// function returning false prunes the subtree below node.
func Walk(node Node, visit func(Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < node.ChildCount(); i++ {
		Walk(node.Child(i), visit)
	}
}

// NodeAt returns the deepest node in the tree covering the given point, or
// nil when the tree is nil or the point is outside the root range.
func NodeAt(tree Tree, p Point) Node {
	if tree == nil {
		return nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	return root.DescendantForPointRange(p, p)
}
