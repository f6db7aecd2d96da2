// Package suggest implements the context-aware SQL completion engine behind
// the editor's suggestion popup. Given the full statement text, a cursor
// position and an optional syntax tree, it decides what kind of token the
// user is typing and returns an ordered list of candidate strings.
//
// The engine is a pure read path: it holds no per-request state, performs no
// caching and never fails. Catalog errors and unparseable SQL degrade the
// answer (down to the plain keyword list), they never surface as errors.
package suggest

import (
	"strings"

	"github.com/dbshell/dbshell/internal/sqltree"
)

// Position is a zero-based (line, column) cursor position. Lines are the
// result of splitting the text on '\n'; the column is a position within the
// visual line, not a byte offset into the whole text.
type Position struct {
	Line   int
	Column int
}

// Catalog supplies schema names on demand. Both methods treat failure as
// "no information": Tables may return an error, Columns returns an empty
// slice for unknown tables. Implementations must never panic.
type Catalog interface {
	Tables() ([]string, error)
	Columns(table string) []string
}

// Provider computes completion candidates. It holds only the injected
// catalog handle, so a single Provider is safe to share across calls and a
// fresh one per call is equally fine.
type Provider struct {
	catalog Catalog
}

// NewProvider creates a Provider backed by the given catalog.
func NewProvider(catalog Catalog) *Provider {
	return &Provider{catalog: catalog}
}

// Suggestions returns the ordered candidate list for the cursor position.
// tree may be nil; every tree-dependent decision then falls back to plain
// text scanning. The returned slice is freshly allocated on every call.
func (p *Provider) Suggestions(text string, cursor Position, tree sqltree.Tree) []string {
	if shouldSuppress(text, cursor) {
		return nil
	}

	qc := extractContext(text, tree)
	cl := classify(text, cursor, tree, qc)
	return p.generate(cl, qc)
}

// ---------------------------------------------------------------------------
// Text helpers shared across the suppression filter and the classifier
// ---------------------------------------------------------------------------

// lineAt returns the cursor's line, or ok=false when the line index is past
// the end of the text.
func lineAt(text string, line int) (string, bool) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return "", false
	}
	return lines[line], true
}

// offsetAt converts a Position into a byte offset, clamping out-of-range
// lines and columns to the nearest valid offset.
func offsetAt(text string, cursor Position) int {
	if cursor.Line < 0 {
		return 0
	}
	lines := strings.Split(text, "\n")
	if cursor.Line >= len(lines) {
		return len(text)
	}
	off := 0
	for i := 0; i < cursor.Line; i++ {
		off += len(lines[i]) + 1
	}
	col := cursor.Column
	if col < 0 {
		col = 0
	}
	if col > len(lines[cursor.Line]) {
		col = len(lines[cursor.Line])
	}
	return off + col
}

// textBefore returns everything before the cursor.
func textBefore(text string, cursor Position) string {
	return text[:offsetAt(text, cursor)]
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// WordAt returns the identifier fragment ending at the cursor, e.g. "na" for
// "SELECT na|". Callers use it as the prefix the candidate list completes.
func WordAt(text string, cursor Position) string {
	return wordAtCursor(text, cursor)
}

// wordAtCursor returns the identifier fragment ending at the cursor, e.g.
// "na" for "SELECT na|". Empty when the cursor does not touch a word.
func wordAtCursor(text string, cursor Position) string {
	line, ok := lineAt(text, cursor.Line)
	if !ok {
		return ""
	}
	col := cursor.Column
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}
	return line[start:col]
}

// lastKeywordIndex returns the byte index of the rightmost whole-token,
// case-insensitive occurrence of kw in s, or -1. Multi-word keywords such as
// "ORDER BY" match with a single space between the words.
func lastKeywordIndex(s, kw string) int {
	upper := strings.ToUpper(s)
	kw = strings.ToUpper(kw)
	for end := len(upper); end > 0; {
		i := strings.LastIndex(upper[:end], kw)
		if i < 0 {
			return -1
		}
		if wholeToken(upper, i, len(kw)) {
			return i
		}
		end = i
	}
	return -1
}

// firstKeywordIndex is lastKeywordIndex's left-to-right counterpart.
func firstKeywordIndex(s, kw string) int {
	upper := strings.ToUpper(s)
	kw = strings.ToUpper(kw)
	for start := 0; start <= len(upper)-len(kw); {
		i := strings.Index(upper[start:], kw)
		if i < 0 {
			return -1
		}
		i += start
		if wholeToken(upper, i, len(kw)) {
			return i
		}
		start = i + 1
	}
	return -1
}

func hasKeyword(s, kw string) bool {
	return lastKeywordIndex(s, kw) >= 0
}

// wholeToken reports whether the match at [i, i+n) is not embedded in a
// larger identifier.
func wholeToken(s string, i, n int) bool {
	if i > 0 && isIdentByte(s[i-1]) {
		return false
	}
	if i+n < len(s) && isIdentByte(s[i+n]) {
		return false
	}
	return true
}
