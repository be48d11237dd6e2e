// ABOUTME: Markdown preview rendering for the browser and the terminal.
// ABOUTME: HTML goes through goldmark then bluemonday; terminal output through glamour.

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Placeholder replaces the preview when rendering fails.
const Placeholder = "Error rendering markdown preview."

const DefaultWidth = 80

var (
	engine = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	convert = engine.Convert

	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Task list checkboxes.
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	return p
}

// HTML converts markdown to sanitized HTML.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown parse: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// Preview renders markdown for display. It never fails: errors and panics
// in the renderer yield Placeholder.
func Preview(markdown string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = Placeholder
		}
	}()
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	html, err := HTML(markdown)
	if err != nil {
		return Placeholder
	}
	return html
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; }
pre, code { background: #f4f4f4; border-radius: 4px; }
pre { padding: 0.75rem; overflow-x: auto; }
blockquote { border-left: 4px solid #ddd; margin-left: 0; padding-left: 1rem; color: #555; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page wraps the preview of markdown in a standalone HTML document.
func Page(title, markdown string) (string, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		// Preview output is already sanitized.
		Body: template.HTML(Preview(markdown)), //nolint:gosec
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders markdown for a terminal of the given width using a
// glamour style name ("auto", "dark", "light", "notty"). Rendering problems
// fall back to the raw text.
func Terminal(markdown string, width int, style string) string {
	if width <= 0 {
		width = DefaultWidth
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}

	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
