package utils

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
)

// chroma has no "dark"/"light" styles; the other theme names exist in both libraries.
var codeStyles = map[string]string{
	"dark":        "monokai",
	"light":       "github",
	"tokyo-night": "tokyonight-night",
	"pink":        "friendly",
	"ascii":       "bw",
	"notty":       "bw",
}

// CodeStyle maps a theme name to a chroma style.
func CodeStyle(theme string) string {
	if style, ok := codeStyles[theme]; ok {
		return style
	}
	if theme == "" {
		return "dracula"
	}
	return theme
}

// LexerName picks a chroma lexer from a file path, falling back to the advisory language tag.
func LexerName(path string, language string) string {
	if path != "" {
		if l := lexers.Match(filepath.Base(path)); l != nil {
			return l.Config().Name
		}
	}
	if language != "" && lexers.Get(language) != nil {
		return language
	}
	return "plaintext"
}

// RenderCode writes syntax highlighted code to w.
func RenderCode(w io.Writer, code string, path string, language string, theme string) error {
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return quick.Highlight(w, code, LexerName(path, language), "terminal256", CodeStyle(theme))
}

// RenderMarkdown renders model prose for the terminal. Unknown styles fall back to the plain text.
func RenderMarkdown(text string, theme string) string {
	if theme == "" {
		theme = "dracula"
	}
	out, err := glamour.Render(text, theme)
	if err != nil {
		return text
	}
	return out
}
