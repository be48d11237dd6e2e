// ABOUTME: Export handles for downloading a file as markdown.
// ABOUTME: Handles are tracked by token and must be released after use.

package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/mdpad/internal/models"
	"gopkg.in/yaml.v3"
)

// MediaTypeMarkdown is the media type of every export.
const MediaTypeMarkdown = "text/markdown"

// ErrExportReleased is returned when reading a released export handle.
var ErrExportReleased = errors.New("export handle released")

// Export is a transient downloadable copy of one file's content.
type Export struct {
	m        *Manager
	token    uuid.UUID
	filename string
	data     []byte

	mu       sync.Mutex
	released bool
}

// ExportOption configures ExportFile.
type ExportOption func(*exportConfig)

type exportConfig struct {
	frontmatter bool
}

// WithFrontmatter prefixes the content with a YAML block carrying the file's
// name and timestamps.
func WithFrontmatter() ExportOption {
	return func(c *exportConfig) {
		c.frontmatter = true
	}
}

type exportFrontmatter struct {
	Title   string    `yaml:"title"`
	Created time.Time `yaml:"created"`
	Updated time.Time `yaml:"updated"`
}

// ExportFile returns a handle for the content of file id, or
// store.ErrRecordNotFound. The caller must Release the handle.
func (m *Manager) ExportFile(ctx context.Context, id int64, opts ...ExportOption) (*Export, error) {
	var cfg exportConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := m.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	data := []byte(f.Content)
	if cfg.frontmatter {
		data, err = withFrontmatter(f)
		if err != nil {
			return nil, err
		}
	}

	e := &Export{
		m:        m,
		token:    uuid.New(),
		filename: f.Filename(),
		data:     data,
	}

	m.exportsMu.Lock()
	m.exports[e.token] = e
	m.exportsMu.Unlock()

	m.logger.Debug("export opened", "id", id, "token", e.token)
	return e, nil
}

func withFrontmatter(f *models.MarkdownFile) ([]byte, error) {
	meta, err := yaml.Marshal(exportFrontmatter{
		Title:   f.Name,
		Created: f.CreatedAt.UTC(),
		Updated: f.UpdatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(meta)
	sb.WriteString("---\n\n")
	sb.WriteString(f.Content)
	return []byte(sb.String()), nil
}

// OpenExports returns the number of handles not yet released.
func (m *Manager) OpenExports() int {
	m.exportsMu.Lock()
	defer m.exportsMu.Unlock()
	return len(m.exports)
}

// LookupExport resolves a live handle by token.
func (m *Manager) LookupExport(token string) (*Export, bool) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, false
	}
	m.exportsMu.Lock()
	defer m.exportsMu.Unlock()
	e, ok := m.exports[id]
	return e, ok
}

func (m *Manager) releaseAll() {
	m.exportsMu.Lock()
	pending := make([]*Export, 0, len(m.exports))
	for _, e := range m.exports {
		pending = append(pending, e)
	}
	m.exportsMu.Unlock()

	for _, e := range pending {
		e.Release()
	}
}

// Filename is the suggested download name, <name>.md.
func (e *Export) Filename() string {
	return e.filename
}

func (e *Export) MediaType() string {
	return MediaTypeMarkdown
}

// Token identifies the handle until it is released.
func (e *Export) Token() string {
	return e.token.String()
}

// Bytes returns a copy of the exported content.
func (e *Export) Bytes() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return nil, ErrExportReleased
	}
	return bytes.Clone(e.data), nil
}

// Reader returns a reader over the exported content.
func (e *Export) Reader() (io.Reader, error) {
	b, err := e.Bytes()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// WriteTo writes the exported content to w.
func (e *Export) WriteTo(w io.Writer) (int64, error) {
	b, err := e.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Release revokes the handle and frees its content. Safe to call more than once.
func (e *Export) Release() {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return
	}
	e.released = true
	e.data = nil
	e.mu.Unlock()

	e.m.exportsMu.Lock()
	delete(e.m.exports, e.token)
	e.m.exportsMu.Unlock()
	e.m.logger.Debug("export released", "token", e.token)
}
