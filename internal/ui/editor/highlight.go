// Package editor provides the SQL editor component for dbshell.
package editor

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/dbshell/dbshell/internal/theme"
)

// Highlighter renders SQL text with the active theme's syntax styles, using
// chroma for tokenisation.
type Highlighter struct {
	lexer chroma.Lexer
}

// NewHighlighter picks the PostgreSQL lexer, falling back to the generic SQL
// lexer and finally chroma's plaintext fallback.
func NewHighlighter() *Highlighter {
	for _, name := range []string{"PostgreSQL", "SQL"} {
		if l := lexers.Get(name); l != nil {
			return &Highlighter{lexer: chroma.Coalesce(l)}
		}
	}
	return &Highlighter{lexer: chroma.Coalesce(lexers.Fallback)}
}

// Highlight returns sql with each token wrapped in its theme style. Newlines
// pass through unstyled so the caller can still split the result into lines.
// A nil theme returns the input unchanged.
func (h *Highlighter) Highlight(sql string, th *theme.Theme) string {
	if th == nil {
		return sql
	}

	iter, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) * 2)
	for _, tok := range iter.Tokens() {
		writeToken(&b, tok, th)
	}
	return b.String()
}

func writeToken(b *strings.Builder, tok chroma.Token, th *theme.Theme) {
	if tok.Value == "" {
		return
	}

	style, styled := tokenStyle(tok.Type, th)
	if !styled {
		b.WriteString(tok.Value)
		return
	}

	// A styled token may span lines (block comments, heredocs). Style each
	// segment separately so the newline itself stays unstyled.
	for i, line := range strings.Split(tok.Value, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(style.Render(line))
		}
	}
}

// tokenStyle maps a chroma token type to a theme style. The specific checks
// come before the category checks: KeywordType (INT, VARCHAR) gets the type
// colour even though its category is Keyword.
func tokenStyle(tt chroma.TokenType, th *theme.Theme) (lipgloss.Style, bool) {
	switch {
	case tt == chroma.KeywordType:
		return th.SQLType, true
	case tt == chroma.NameFunction:
		return th.SQLFunction, true
	case tt.Category() == chroma.Keyword:
		return th.SQLKeyword, true
	case tt.SubCategory() == chroma.LiteralString:
		return th.SQLString, true
	case tt.SubCategory() == chroma.LiteralNumber:
		return th.SQLNumber, true
	case tt.Category() == chroma.Comment:
		return th.SQLComment, true
	case tt.Category() == chroma.Operator:
		return th.SQLOperator, true
	}
	return lipgloss.Style{}, false
}
