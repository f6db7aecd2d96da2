package sqltree_test

import (
	"reflect"
	"testing"

	"github.com/dbshell/dbshell/internal/sqltree"
	"github.com/dbshell/dbshell/internal/sqltree/treetest"
)

func sampleTree() *treetest.Tree {
	root := treetest.NewNode("program", sqltree.Point{}, sqltree.Point{Row: 0, Column: 10}, "").Add(
		treetest.NewNode("statement", sqltree.Point{}, sqltree.Point{Row: 0, Column: 10}, "").Add(
			treetest.NewNode("identifier",
				sqltree.Point{Row: 0, Column: 0}, sqltree.Point{Row: 0, Column: 4}, "left"),
			treetest.NewNode("identifier",
				sqltree.Point{Row: 0, Column: 5}, sqltree.Point{Row: 0, Column: 10}, "right"),
		),
	)
	return treetest.NewTree(root)
}

func TestWalkOrder(t *testing.T) {
	var kinds []string
	sqltree.Walk(sampleTree().RootNode(), func(n sqltree.Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})

	want := []string{"program", "statement", "identifier", "identifier"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("Walk order = %v, want %v", kinds, want)
	}
}

func TestWalkPrune(t *testing.T) {
	var kinds []string
	sqltree.Walk(sampleTree().RootNode(), func(n sqltree.Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != "statement"
	})

	want := []string{"program", "statement"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("Walk with prune = %v, want %v", kinds, want)
	}
}

func TestNodeAt(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name string
		p    sqltree.Point
		want string
		text string
	}{
		{"inside first identifier", sqltree.Point{Row: 0, Column: 2}, "identifier", "left"},
		{"at end of first identifier", sqltree.Point{Row: 0, Column: 4}, "identifier", "left"},
		{"between identifiers covered by statement", sqltree.Point{Row: 0, Column: 5}, "identifier", "right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := sqltree.NodeAt(tree, tt.p)
			if n == nil {
				t.Fatalf("NodeAt(%v) = nil", tt.p)
			}
			if n.Kind() != tt.want || n.Text() != tt.text {
				t.Errorf("NodeAt(%v) = %s %q, want %s %q", tt.p, n.Kind(), n.Text(), tt.want, tt.text)
			}
		})
	}
}

func TestNodeAtNilTree(t *testing.T) {
	if n := sqltree.NodeAt(nil, sqltree.Point{}); n != nil {
		t.Errorf("NodeAt(nil) = %v, want nil", n)
	}
}

func TestNodeAtOutsideRoot(t *testing.T) {
	if n := sqltree.NodeAt(sampleTree(), (sqltree.Point{Row: 3, Column: 0})); n != nil {
		t.Errorf("NodeAt outside root = %v, want nil", n)
	}
}

func TestPointBefore(t *testing.T) {
	a := sqltree.Point{Row: 0, Column: 5}
	b := sqltree.Point{Row: 1, Column: 0}

	if !a.Before(b) {
		t.Error("earlier row should sort first")
	}
	if b.Before(a) {
		t.Error("later row should not sort first")
	}
	if a.Before(a) {
		t.Error("a point is not before itself")
	}
}
