package suggest

import (
	"strconv"
	"strings"
)

// valueOperators are comparison operators after which a literal value is
// expected rather than a column or table name. Word operators (LIKE, IN,
// NOT IN) additionally require a token boundary so that identifiers ending
// in "in" do not match.
var (
	symbolOperators = []string{"!=", "<>", "<=", ">=", "=", "<", ">"}
	wordOperators   = []string{"NOT IN", "LIKE", "IN"}
)

// shouldSuppress reports whether the cursor sits in a zone where no
// suggestion should ever be offered: string literals, comments, numeric
// literals, INSERT value lists, value positions after comparison operators,
// or trailing whitespace after an already-complete statement.
//
// These are textual heuristics carried over from the original provider, not
// guaranteed-correct parsing. In particular, the string-literal check counts
// quotes on the cursor's line only, so multi-line string literals are not
// tracked across line boundaries.
func shouldSuppress(text string, cursor Position) bool {
	line, ok := lineAt(text, cursor.Line)
	if !ok {
		return false
	}
	col := cursor.Column
	if col > len(line) {
		col = len(line)
	}
	before := textBefore(text, cursor)

	switch {
	case insideStringLiteral(line, col):
		return true
	case insideComment(text, line, col, before):
		return true
	case insideNumericLiteral(line, col):
		return true
	case insideValuesList(before):
		return true
	case afterValueOperator(line, col):
		return true
	case afterSemicolon(before):
		return true
	case afterCompleteStatement(before):
		return true
	case afterLoneFromTable(before):
		return true
	}
	return false
}

// insideStringLiteral counts unescaped single and double quotes on the line
// up to the cursor. An odd count of either kind means the cursor is inside
// a string.
func insideStringLiteral(line string, col int) bool {
	singles, doubles := 0, 0
	for i := 0; i < col && i < len(line); i++ {
		escaped := i > 0 && line[i-1] == '\\'
		switch {
		case line[i] == '\'' && !escaped:
			singles++
		case line[i] == '"' && !escaped:
			doubles++
		}
	}
	return singles%2 == 1 || doubles%2 == 1
}

// insideComment detects "--" line comments on the cursor's line and
// unterminated "/* ... */" block comments before the cursor.
func insideComment(text, line string, col int, before string) bool {
	if idx := strings.Index(line, "--"); idx >= 0 && col >= idx {
		return true
	}
	open := strings.LastIndex(before, "/*")
	clos := strings.LastIndex(before, "*/")
	return open >= 0 && open > clos
}

// insideNumericLiteral expands around the cursor over digits, '.' and '-'
// and reports whether the covered token parses as a float.
func insideNumericLiteral(line string, col int) bool {
	if col == 0 || col > len(line) {
		return false
	}
	isNumByte := func(b byte) bool {
		return (b >= '0' && b <= '9') || b == '.' || b == '-'
	}
	start := col - 1
	for start > 0 && isNumByte(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isNumByte(line[end]) {
		end++
	}
	if start >= end {
		return false
	}
	_, err := strconv.ParseFloat(line[start:end], 64)
	return err == nil
}

// insideValuesList reports whether the cursor sits inside the parenthesized
// value list of an INSERT ... VALUES (...) clause: the paren depth after the
// last VALUES keyword before the cursor is strictly positive.
func insideValuesList(before string) bool {
	if !hasKeyword(before, "INSERT") {
		return false
	}
	vpos := lastKeywordIndex(before, "VALUES")
	if vpos < 0 {
		return false
	}
	depth := 0
	for _, ch := range before[vpos+len("VALUES"):] {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth > 0
}

// afterValueOperator reports whether the cursor is immediately after a
// value-comparison operator, optionally followed by a single space.
func afterValueOperator(line string, col int) bool {
	if col < 2 {
		return false
	}
	if col > len(line) {
		col = len(line)
	}
	s := strings.ToUpper(line[:col])
	s = strings.TrimSuffix(s, " ")

	for _, op := range symbolOperators {
		if strings.HasSuffix(s, op) {
			return true
		}
	}
	for _, op := range wordOperators {
		if strings.HasSuffix(s, op) && wholeToken(s, len(s)-len(op), len(op)) {
			return true
		}
	}
	return false
}

// afterSemicolon reports whether the statement before the cursor is already
// terminated: a semicolon followed by nothing but whitespace and line
// comments.
func afterSemicolon(before string) bool {
	idx := strings.LastIndex(before, ";")
	if idx < 0 {
		return false
	}
	for _, line := range strings.Split(before[idx+1:], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			return false
		}
	}
	return true
}

// afterCompleteStatement is the "statement looks finished" heuristic: the
// text before the cursor ends with SELECT ... FROM <table> and the cursor
// sits in trailing whitespace after the table name.
func afterCompleteStatement(before string) bool {
	cleaned := strings.TrimSpace(stripComments(before))
	if cleaned == "" {
		return false
	}
	if before == strings.TrimRight(before, " \t\n") {
		return false
	}
	words := strings.Fields(strings.ToUpper(cleaned))
	if len(words) < 3 {
		return false
	}
	for i := len(words) - 1; i >= 0; i-- {
		if words[i] == "FROM" {
			// Exactly one word after FROM: a lone table name.
			return i == len(words)-2
		}
	}
	return false
}

// afterLoneFromTable reports whether the cursor has moved into whitespace
// after a single bare table name in a FROM clause, with nothing typed yet.
func afterLoneFromTable(before string) bool {
	if !inFromRegion(before) {
		return false
	}
	fromPos := lastKeywordIndex(before, "FROM")
	afterFrom := before[fromPos+len("FROM"):]
	if afterFrom == "" {
		return false
	}
	last := afterFrom[len(afterFrom)-1]
	if last != ' ' && last != '\t' && last != '\n' {
		return false
	}
	return len(strings.Fields(afterFrom)) == 1
}

// stripComments removes "--" line comments and balanced "/* */" block
// comments, joining lines with spaces.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	cleaned := strings.Join(lines, " ")
	for {
		start := strings.Index(cleaned, "/*")
		if start < 0 {
			break
		}
		end := strings.Index(cleaned[start:], "*/")
		if end < 0 {
			break
		}
		cleaned = cleaned[:start] + cleaned[start+end+2:]
	}
	return cleaned
}
