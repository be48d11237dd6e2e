// ABOUTME: MarkdownFile model representing one markdown document with metadata.
// ABOUTME: Provides constructor, naming policy, and timestamp lifecycle helpers.

package models

import (
	"strings"
	"time"
)

// DefaultName is used whenever a file is saved with a blank name.
const DefaultName = "Untitled"

// MarkdownFile is a single markdown document. ID is zero until a store has
// assigned one on first insert.
type MarkdownFile struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewFile(name, content string) *MarkdownFile {
	now := time.Now()
	return &MarkdownFile{
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasID reports whether the file has been persisted.
func (f *MarkdownFile) HasID() bool {
	return f.ID > 0
}

func (f *MarkdownFile) Touch() {
	f.TouchAt(time.Now())
}

// TouchAt sets UpdatedAt to now, clamped so it never precedes CreatedAt.
func (f *MarkdownFile) TouchAt(now time.Time) {
	if now.Before(f.CreatedAt) {
		now = f.CreatedAt
	}
	f.UpdatedAt = now
}

// Clone returns an independent copy.
func (f *MarkdownFile) Clone() *MarkdownFile {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Filename returns the export filename, <name>.md.
func (f *MarkdownFile) Filename() string {
	return SanitizeFilename(NormalizeName(f.Name)) + ".md"
}

// NormalizeName trims surrounding whitespace and maps blank names to DefaultName.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return name
}

func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	name = replacer.Replace(name)
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}
	return name
}

// NameFromFilename strips the last extension from a base filename, the way a
// browser upload would, falling back to DefaultName.
func NameFromFilename(filename string) string {
	if i := strings.LastIndexAny(filename, "/\\"); i >= 0 {
		filename = filename[i+1:]
	}
	if i := strings.LastIndex(filename, "."); i > 0 {
		filename = filename[:i]
	}
	return NormalizeName(filename)
}
