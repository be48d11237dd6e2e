// ABOUTME: Terminal output formatting for mdpad commands.
// ABOUTME: Uses glamour for markdown and fatih/color for styling.

package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/render"
)

const timeLayout = "2006-01-02 15:04"

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func FormatFileListItem(f *models.MarkdownFile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s\n", cyan(fmt.Sprintf("%4d", f.ID)), bold(f.Name)))
	sb.WriteString(fmt.Sprintf("        %s %s  %s\n",
		faint("Updated:"),
		faint(f.UpdatedAt.Local().Format(timeLayout)),
		faint(fmt.Sprintf("(%s)", sizeLabel(f.Content)))))

	return sb.String()
}

func sizeLabel(content string) string {
	words := len(strings.Fields(content))
	if words == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", words)
}

// FormatFileContent renders markdown for the terminal, falling back to the
// raw text when glamour cannot.
func FormatFileContent(content string, width int, style string) string {
	return render.Terminal(content, width, style)
}

func FormatFileHeader(f *models.MarkdownFile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", bold(f.Name)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(f.ID)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(f.CreatedAt.Local().Format(timeLayout))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(f.UpdatedAt.Local().Format(timeLayout))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Size:"), faint(fmt.Sprintf("%d chars", utf8.RuneCountInString(f.Content)))))

	sb.WriteString(Separator())
	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

func Warning(msg string) string {
	return color.New(color.FgYellow).Sprint("! ") + msg
}

func FormatEmptyList() string {
	return faint("No files yet. Create one with `mdpad new`.") + "\n"
}
