package suggest

import (
	"regexp"
	"strings"

	"github.com/dbshell/dbshell/internal/sqltree"
)

// QueryContext holds the tables referenced by the statement and the alias
// map used to resolve qualified column references. Tables keeps appearance
// order and may contain duplicates; alias keys are unique.
type QueryContext struct {
	Tables  []string
	Aliases map[string]string
}

// Resolve maps an alias or bare table name to the resolved table name,
// falling back to the raw reference when unknown.
func (qc QueryContext) Resolve(ref string) string {
	if t, ok := qc.Aliases[ref]; ok {
		return t
	}
	return ref
}

// extractContext discovers table references and aliases. The primary
// strategy walks the syntax tree for relation nodes; when that yields
// nothing (nil tree, or SQL too broken for the parser to represent), a
// regex scan over the raw text produces the same structure.
func extractContext(text string, tree sqltree.Tree) QueryContext {
	qc := QueryContext{Aliases: make(map[string]string)}

	if tree != nil {
		extractFromTree(tree.RootNode(), &qc)
	}
	if len(qc.Tables) == 0 {
		extractFromText(text, &qc)
	}
	return qc
}

// extractFromTree records every relation node's table name and optional
// alias. A relation holds an object_reference child (whose identifier
// grandchild is the table name) and, for aliased references, a trailing
// bare identifier child.
func extractFromTree(root sqltree.Node, qc *QueryContext) {
	sqltree.Walk(root, func(n sqltree.Node) bool {
		if n.Kind() != "relation" {
			return true
		}

		var table, alias string
		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			switch {
			case child.Kind() == "object_reference":
				for j := 0; j < child.ChildCount(); j++ {
					if gc := child.Child(j); gc.Kind() == "identifier" {
						table = gc.Text()
						break
					}
				}
			case child.Kind() == "identifier" && table != "":
				alias = child.Text()
			}
		}

		if table != "" {
			qc.record(table, alias)
		}
		return true
	})
}

// fromJoinRe matches "FROM table [AS alias]" and "JOIN table [AS alias]".
var fromJoinRe = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+(\w+)(?:\s+(?:AS\s+)?(\w+))?`)

// reservedAfterTable are words that can directly follow a table reference
// and must not be mistaken for aliases by the regex fallback.
var reservedAfterTable = map[string]bool{
	"WHERE": true, "ON": true, "SET": true, "ORDER": true, "GROUP": true,
	"HAVING": true, "LIMIT": true, "UNION": true, "JOIN": true,
	"INNER": true, "LEFT": true, "RIGHT": true, "OUTER": true,
	"CROSS": true, "FULL": true, "VALUES": true, "AND": true, "OR": true,
}

// extractFromText is the regex fallback for malformed or partial SQL.
func extractFromText(text string, qc *QueryContext) {
	for _, m := range fromJoinRe.FindAllStringSubmatch(text, -1) {
		table, alias := m[1], m[2]
		if reservedAfterTable[strings.ToUpper(alias)] {
			alias = ""
		}
		qc.record(table, alias)
	}
}

func (qc *QueryContext) record(table, alias string) {
	qc.Tables = append(qc.Tables, table)
	if alias != "" {
		qc.Aliases[alias] = table
	} else {
		qc.Aliases[table] = table
	}
}
