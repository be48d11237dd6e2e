// ABOUTME: Markdown formatting insertion around a selection.
// ABOUTME: Offsets are rune indices so multi-byte text splices cleanly.

package editor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrBadSelection is returned for selections outside the content or with
// start after end.
var ErrBadSelection = errors.New("selection out of range")

// Format is a prefix/suffix pair wrapped around the selection.
type Format struct {
	Name   string
	Prefix string
	Suffix string
}

var (
	Bold           = Format{"bold", "**", "**"}
	Italic         = Format{"italic", "*", "*"}
	Strikethrough  = Format{"strikethrough", "~~", "~~"}
	Code           = Format{"code", "`", "`"}
	CodeBlock      = Format{"code-block", "```\n", "\n```"}
	Heading1       = Format{"h1", "# ", ""}
	Heading2       = Format{"h2", "## ", ""}
	Heading3       = Format{"h3", "### ", ""}
	Quote          = Format{"quote", "> ", ""}
	BulletList     = Format{"bullet", "- ", ""}
	NumberedList   = Format{"numbered", "1. ", ""}
	TaskList       = Format{"task", "- [ ] ", ""}
	Link           = Format{"link", "[", "](url)"}
	Image          = Format{"image", "![", "](url)"}
	HorizontalRule = Format{"rule", "\n---\n", ""}
)

var formats = []Format{
	Bold, Italic, Strikethrough, Code, CodeBlock,
	Heading1, Heading2, Heading3, Quote,
	BulletList, NumberedList, TaskList,
	Link, Image, HorizontalRule,
}

// Formats returns the toolbar formats in display order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// LookupFormat finds a format by name, case-insensitively.
func LookupFormat(name string) (Format, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// Insert returns content[:start] + prefix + content[start:end] + suffix +
// content[end:] and the caret position just after the inserted suffix.
func Insert(content string, start, end int, prefix, suffix string) (string, int, error) {
	runes := []rune(content)
	if start < 0 || end < start || end > len(runes) {
		return "", 0, fmt.Errorf("%w: [%d,%d) in %d runes", ErrBadSelection, start, end, len(runes))
	}

	var sb strings.Builder
	sb.Grow(len(content) + len(prefix) + len(suffix))
	sb.WriteString(string(runes[:start]))
	sb.WriteString(prefix)
	sb.WriteString(string(runes[start:end]))
	sb.WriteString(suffix)
	sb.WriteString(string(runes[end:]))

	caret := start + utf8.RuneCountInString(prefix) + (end - start) + utf8.RuneCountInString(suffix)
	return sb.String(), caret, nil
}

// Apply wraps the selection with f.
func (f Format) Apply(content string, start, end int) (string, int, error) {
	return Insert(content, start, end, f.Prefix, f.Suffix)
}
