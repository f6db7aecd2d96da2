package suggest

import (
	"strings"

	"github.com/dbshell/dbshell/internal/sqltree"
)

// ClauseKind is the classification of the cursor's syntactic position.
// Exactly one kind applies per request; the classifier is an ordered
// decision list and the first match wins.
type ClauseKind int

const (
	KindUnclassified ClauseKind = iota
	KindSelectList
	KindWhereLike
	KindFromClause
	KindInsertTableTarget
	KindInsertColumnList
	KindUpdateTableTarget
	KindUpdateSetList
	KindDeleteTableTarget
	KindQualifiedColumn
	KindBareIdentifier
)

func (k ClauseKind) String() string {
	switch k {
	case KindSelectList:
		return "select-list"
	case KindWhereLike:
		return "where-like"
	case KindFromClause:
		return "from-clause"
	case KindInsertTableTarget:
		return "insert-table-target"
	case KindInsertColumnList:
		return "insert-column-list"
	case KindUpdateTableTarget:
		return "update-table-target"
	case KindUpdateSetList:
		return "update-set-list"
	case KindDeleteTableTarget:
		return "delete-table-target"
	case KindQualifiedColumn:
		return "qualified-column"
	case KindBareIdentifier:
		return "bare-identifier"
	default:
		return "unclassified"
	}
}

// Clause is the classifier result. Table carries the bound table for
// column-list kinds and the alias-resolved table for qualified references.
// Fragment is the partially typed identifier used for prefix filtering.
type Clause struct {
	Kind     ClauseKind
	Table    string
	Fragment string
}

// classify runs the decision list of detectors. The qualified-column and
// INSERT/UPDATE/DELETE detectors are pure text scans and therefore work
// with or without a tree; the clause-keyword region checks run when the
// tree resolves no node finer than a whole statement, and again as a
// fallback when a finer node was found but matched nothing more specific.
func classify(text string, cursor Position, tree sqltree.Tree, qc QueryContext) Clause {
	if cl, ok := qualifiedColumn(text, cursor, qc); ok {
		return cl
	}
	if cl, ok := insertClause(text, cursor); ok {
		return cl
	}
	if cl, ok := updateClause(text, cursor); ok {
		return cl
	}
	if cl, ok := deleteClause(text, cursor); ok {
		return cl
	}

	before := textBefore(text, cursor)
	leaf := sqltree.NodeAt(tree, sqltree.Point{Row: cursor.Line, Column: cursor.Column})

	if leaf == nil || leaf.Kind() == "program" || leaf.Kind() == "statement" {
		switch {
		case inWhereRegion(before):
			return Clause{Kind: KindWhereLike}
		case inSelectRegion(before):
			return Clause{Kind: KindSelectList}
		case inFromRegion(before):
			return Clause{Kind: KindFromClause}
		}
		return Clause{Kind: KindUnclassified}
	}

	var frag string
	if leaf.Kind() == "identifier" {
		frag = leaf.Text()
	}

	// The region checks are text-based and independent of tree granularity,
	// so they re-run here for finer nodes.
	if inSelectRegion(before) {
		return Clause{Kind: KindSelectList, Fragment: frag}
	}
	if inWhereRegion(before) {
		if table, ok := fieldReferenceTable(leaf, qc); ok {
			return Clause{Kind: KindWhereLike, Table: table, Fragment: frag}
		}
		return Clause{Kind: KindWhereLike, Fragment: frag}
	}
	if parent := leaf.Parent(); parent != nil &&
		parent.Kind() == "object_reference" && leaf.Kind() == "identifier" {
		return Clause{Kind: KindFromClause, Fragment: frag}
	}
	if inFromRegion(before) {
		return Clause{Kind: KindFromClause, Fragment: frag}
	}
	if leaf.Kind() == "identifier" {
		return Clause{Kind: KindBareIdentifier, Fragment: frag}
	}
	return Clause{Kind: KindUnclassified}
}

// qualifiedColumn scans backward from the cursor on the current line for an
// "identifier.partial" chain. The identifier is resolved through the alias
// map, falling back to the raw token.
func qualifiedColumn(text string, cursor Position, qc QueryContext) (Clause, bool) {
	line, ok := lineAt(text, cursor.Line)
	if !ok {
		return Clause{}, false
	}
	col := cursor.Column
	if col > len(line) {
		col = len(line)
	}

	dot := -1
	for i := col - 1; i >= 0; i-- {
		if line[i] == '.' {
			dot = i
			break
		}
		if !isIdentByte(line[i]) {
			break
		}
	}
	if dot < 0 {
		return Clause{}, false
	}

	start := dot - 1
	for start >= 0 && isIdentByte(line[start]) {
		start--
	}
	start++
	if start >= dot {
		return Clause{}, false
	}

	ref := line[start:dot]
	return Clause{
		Kind:     KindQualifiedColumn,
		Table:    qc.Resolve(ref),
		Fragment: line[dot+1 : col],
	}, true
}

// insertClause detects INSERT INTO contexts: a missing or in-progress table
// name classifies as the table target; an unbalanced open paren after the
// table name classifies as that table's column list.
func insertClause(text string, cursor Position) (Clause, bool) {
	before := textBefore(text, cursor)
	insPos := lastKeywordIndex(before, "INSERT")
	if insPos < 0 {
		return Clause{}, false
	}
	afterInsert := before[insPos:]
	intoPos := firstKeywordIndex(afterInsert, "INTO")
	if intoPos < 0 {
		return Clause{}, false
	}

	afterInto := strings.TrimSpace(afterInsert[intoPos+len("INTO"):])
	words := strings.Fields(afterInto)

	if len(words) <= 1 {
		var frag string
		if len(words) == 1 {
			frag = words[0]
		}
		return Clause{Kind: KindInsertTableTarget, Fragment: frag}, true
	}

	rest := strings.Join(words[1:], " ")
	if strings.Count(rest, "(")-strings.Count(rest, ")") > 0 {
		return Clause{
			Kind:     KindInsertColumnList,
			Table:    words[0],
			Fragment: wordAtCursor(text, cursor),
		}, true
	}
	return Clause{}, false
}

// updateClause detects UPDATE contexts: before SET the table target, after
// SET the column list of the table named between UPDATE and SET.
func updateClause(text string, cursor Position) (Clause, bool) {
	before := textBefore(text, cursor)
	upPos := lastKeywordIndex(before, "UPDATE")
	if upPos < 0 {
		return Clause{}, false
	}
	afterUpdate := strings.TrimSpace(before[upPos+len("UPDATE"):])
	setPos := firstKeywordIndex(afterUpdate, "SET")

	if setPos < 0 {
		words := strings.Fields(afterUpdate)
		if len(words) > 1 {
			return Clause{}, false
		}
		var frag string
		if len(words) == 1 {
			frag = words[0]
		}
		return Clause{Kind: KindUpdateTableTarget, Fragment: frag}, true
	}

	beforeSet := strings.Fields(afterUpdate[:setPos])
	if len(beforeSet) == 0 {
		return Clause{}, false
	}
	return Clause{
		Kind:     KindUpdateSetList,
		Table:    beforeSet[0],
		Fragment: wordAtCursor(text, cursor),
	}, true
}

// deleteClause detects DELETE FROM with a missing or in-progress table name.
func deleteClause(text string, cursor Position) (Clause, bool) {
	before := textBefore(text, cursor)
	delPos := lastKeywordIndex(before, "DELETE")
	if delPos < 0 {
		return Clause{}, false
	}
	afterDelete := before[delPos+len("DELETE"):]
	fromPos := firstKeywordIndex(afterDelete, "FROM")
	if fromPos < 0 {
		return Clause{}, false
	}

	afterFrom := strings.TrimSpace(afterDelete[fromPos+len("FROM"):])
	words := strings.Fields(afterFrom)
	if len(words) > 1 {
		return Clause{}, false
	}
	var frag string
	if len(words) == 1 {
		frag = words[0]
	}
	return Clause{Kind: KindDeleteTableTarget, Fragment: frag}, true
}

// fieldReferenceTable inspects the leaf's parent for a field_reference node
// (tree form of table.column) and resolves the table part via the alias
// map.
func fieldReferenceTable(leaf sqltree.Node, qc QueryContext) (string, bool) {
	if leaf.Kind() != "identifier" {
		return "", false
	}
	parent := leaf.Parent()
	if parent == nil || parent.Kind() != "field_reference" {
		return "", false
	}
	for i := 0; i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child.Kind() == "identifier" && !sameRange(child, leaf) {
			return qc.Resolve(child.Text()), true
		}
	}
	return "", false
}

// sameRange compares nodes by position; wrapper values cannot be compared
// by identity.
func sameRange(a, b sqltree.Node) bool {
	return a.StartPoint() == b.StartPoint() && a.EndPoint() == b.EndPoint()
}

// ---------------------------------------------------------------------------
// Clause-keyword regions
// ---------------------------------------------------------------------------

var whereStarters = []string{"WHERE", "ON", "ORDER BY", "GROUP BY", "HAVING"}

var fromEnders = []string{"WHERE", "ORDER BY", "GROUP BY", "HAVING", "LIMIT", "UNION"}

// inWhereRegion reports whether the rightmost WHERE-like clause starter
// appears before the cursor with the cursor at or past its end.
func inWhereRegion(before string) bool {
	for _, kw := range whereStarters {
		if hasKeyword(before, kw) {
			return true
		}
	}
	return false
}

// inSelectRegion reports whether the cursor sits between the last SELECT
// and its (not yet typed) FROM.
func inSelectRegion(before string) bool {
	selPos := lastKeywordIndex(before, "SELECT")
	if selPos < 0 {
		return false
	}
	return firstKeywordIndex(before[selPos:], "FROM") < 0
}

// inFromRegion reports whether the cursor is after a FROM keyword with no
// clause-ending keyword in between.
func inFromRegion(before string) bool {
	fromPos := lastKeywordIndex(before, "FROM")
	if fromPos < 0 {
		return false
	}
	if len(before) <= fromPos+len("FROM") {
		return false
	}
	afterFrom := before[fromPos+len("FROM"):]
	for _, kw := range fromEnders {
		if hasKeyword(afterFrom, kw) {
			return false
		}
	}
	return true
}
