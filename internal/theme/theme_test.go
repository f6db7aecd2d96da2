package theme

import "testing"

var themeNames = []string{"default", "light", "monokai"}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegistry(t *testing.T) {
	for _, name := range themeNames {
		th, ok := Themes[name]
		if !ok {
			t.Errorf("theme %q not registered", name)
			continue
		}
		if th.Name != name {
			t.Errorf("theme registered as %q carries Name=%q", name, th.Name)
		}
	}
}

func TestRegistryEntriesDistinct(t *testing.T) {
	seen := map[*Theme]string{}
	for name, th := range Themes {
		if prev, dup := seen[th]; dup {
			t.Errorf("themes %q and %q share one Theme value", prev, name)
		}
		seen[th] = name
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if d == nil {
		t.Fatal("Default() returned nil")
	}
	if d.Name != "default" {
		t.Errorf("Default().Name = %q", d.Name)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"default", "default", "default"},
		{"light", "light", "light"},
		{"monokai", "monokai", "monokai"},
		{"unknown falls back", "solarized", "default"},
		{"empty falls back", "", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := Get(tt.arg)
			if th == nil {
				t.Fatalf("Get(%q) returned nil", tt.arg)
			}
			if th.Name != tt.want {
				t.Errorf("Get(%q).Name = %q, want %q", tt.arg, th.Name, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Active theme
// ---------------------------------------------------------------------------

func TestCurrentStartsAsDefault(t *testing.T) {
	if Current == nil {
		t.Fatal("Current is nil at init")
	}
	if Current.Name != "default" {
		t.Errorf("Current.Name = %q at init", Current.Name)
	}
}

func TestCurrentSwap(t *testing.T) {
	orig := Current
	defer func() { Current = orig }()

	Current = Get("monokai")
	if Current.Name != "monokai" {
		t.Errorf("Current.Name = %q after swap", Current.Name)
	}
}

// ---------------------------------------------------------------------------
// Style coverage
// ---------------------------------------------------------------------------

// Without a TTY lipgloss drops the ANSI escapes, so the most these checks
// can do is prove each style is wired up enough to render its input back.
func TestStylesRenderContent(t *testing.T) {
	for _, name := range themeNames {
		th := Themes[name]
		t.Run(name, func(t *testing.T) {
			outputs := map[string]string{
				"SQLKeyword":       th.SQLKeyword.Render("SELECT"),
				"SQLString":        th.SQLString.Render("'hello'"),
				"SQLNumber":        th.SQLNumber.Render("42"),
				"SQLComment":       th.SQLComment.Render("-- note"),
				"SQLOperator":      th.SQLOperator.Render("="),
				"SQLFunction":      th.SQLFunction.Render("COUNT"),
				"SQLType":          th.SQLType.Render("INTEGER"),
				"SQLIdentifier":    th.SQLIdentifier.Render("users"),
				"StatusBar":        th.StatusBar.Render("status"),
				"StatusBarError":   th.StatusBarError.Render("err"),
				"FocusedBorder":    th.FocusedBorder.Render("focused"),
				"UnfocusedBorder":  th.UnfocusedBorder.Render("unfocused"),
				"ErrorText":        th.ErrorText.Render("error"),
				"SuccessText":      th.SuccessText.Render("ok"),
				"MutedText":        th.MutedText.Render("muted"),
				"ExplorerSelected": th.ExplorerSelected.Render("sel"),
				"SuggestItem":      th.SuggestItem.Render("item"),
				"SuggestSelected":  th.SuggestSelected.Render("sel"),
				"ResultsHeader":    th.ResultsHeader.Render("hdr"),
			}
			for label, out := range outputs {
				if out == "" {
					t.Errorf("%s rendered empty output", label)
				}
			}
		})
	}
}
