// ABOUTME: Composition root wiring the store, file manager, and current selection.
// ABOUTME: Holds the policies that keep the selection in step with persistence.

package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/adrg/frontmatter"
	"github.com/charmbracelet/log"
	"github.com/harper/mdpad/internal/config"
	"github.com/harper/mdpad/internal/files"
	"github.com/harper/mdpad/internal/logging"
	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/selection"
	"github.com/harper/mdpad/internal/store"
)

// App is one running editor: a file manager and the file open in it.
type App struct {
	Config  *config.Config
	Files   *files.Manager
	Current *selection.Publisher

	logger *log.Logger
}

// New wires an App from cfg. The store is opened lazily on first use.
func New(cfg *config.Config, logger *log.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	backend, path := cfg.Backend, cfg.StorePath()
	opener := func(ctx context.Context) (store.Store, error) {
		logger.Debug("opening store", "backend", backend, "path", path)
		return store.Open(backend, path)
	}

	opts := []files.Option{files.WithLogger(logger)}
	if !cfg.SeedWelcome {
		opts = append(opts, files.WithoutSeed())
	}
	return NewWithManager(cfg, files.NewManager(opener, opts...), logger)
}

// NewWithManager wires an App around an existing manager.
func NewWithManager(cfg *config.Config, m *files.Manager, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		Config:  cfg,
		Files:   m,
		Current: selection.New(nil),
		logger:  logger,
	}
}

// Close releases export handles and closes the store.
func (a *App) Close() error {
	return a.Files.Close()
}

// List returns every file, most recently updated first.
func (a *App) List(ctx context.Context) ([]*models.MarkdownFile, error) {
	return a.Files.ListFilesSortedByRecency(ctx)
}

// NewDraft publishes and returns a fresh unsaved file.
func (a *App) NewDraft() *models.MarkdownFile {
	f := models.NewFile(models.DefaultName, "")
	a.Current.Set(f)
	return f
}

// Open loads file id and makes it current.
func (a *App) Open(ctx context.Context, id int64) (*models.MarkdownFile, error) {
	f, err := a.Files.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Current.Set(f)
	return f, nil
}

// Persist creates f when it has no id and updates it otherwise, returning
// the stored record. It does not touch the current selection.
func (a *App) Persist(ctx context.Context, f *models.MarkdownFile) (*models.MarkdownFile, error) {
	if !f.HasID() {
		id, err := a.Files.CreateFile(ctx, f)
		if err != nil {
			return nil, err
		}
		return a.Files.GetFile(ctx, id)
	}

	saved := f.Clone()
	if _, err := a.Files.UpdateFile(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Save persists f and makes the stored record current, so a saved draft
// becomes current carrying its new id.
func (a *App) Save(ctx context.Context, f *models.MarkdownFile) (*models.MarkdownFile, error) {
	saved, err := a.Persist(ctx, f)
	if err != nil {
		return nil, err
	}
	a.Current.Set(saved)
	a.logger.Info("file saved", "id", saved.ID, "name", saved.Name)
	return saved, nil
}

// Delete removes file id. If it was current, a fresh draft becomes current.
func (a *App) Delete(ctx context.Context, id int64) error {
	if err := a.Files.DeleteFile(ctx, id); err != nil {
		return err
	}
	if a.Current.Current().ID == id {
		a.NewDraft()
	}
	a.logger.Info("file deleted", "id", id)
	return nil
}

// Rename sets the name of file id and refreshes the current file when it is
// the one renamed. It reports false when no such file exists.
func (a *App) Rename(ctx context.Context, id int64, name string) (bool, error) {
	ok, err := a.Files.RenameFile(ctx, id, name)
	if err != nil || !ok {
		return ok, err
	}

	cur := a.Current.Current()
	if cur.ID == id {
		stored, err := a.Files.GetFile(ctx, id)
		if err != nil {
			return true, err
		}
		cur.Name = stored.Name
		cur.UpdatedAt = stored.UpdatedAt
		a.Current.Set(cur)
	}
	a.logger.Info("file renamed", "id", id, "name", name)
	return true, nil
}

type importMeta struct {
	Title string `yaml:"title"`
}

// Import creates a file from an uploaded document and makes it current. The
// content is stored exactly as given. The name is the filename without its
// extension unless YAML frontmatter sets a title.
func (a *App) Import(ctx context.Context, filename string, content []byte) (*models.MarkdownFile, error) {
	name := models.NameFromFilename(filename)

	var meta importMeta
	if _, err := frontmatter.Parse(bytes.NewReader(content), &meta); err != nil {
		a.logger.Warn("ignoring unreadable frontmatter", "file", filename, "err", err)
	} else if meta.Title != "" {
		name = meta.Title
	}

	id, err := a.Files.CreateFile(ctx, models.NewFile(name, string(content)))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filename, err)
	}
	f, err := a.Files.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Current.Set(f)
	a.logger.Info("file imported", "id", id, "name", f.Name)
	return f, nil
}

// ImportPath reads a markdown document from disk and imports it.
func (a *App) ImportPath(ctx context.Context, path string) (*models.MarkdownFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return nil, err
	}
	return a.Import(ctx, path, data)
}

// ExportTo writes the export of file id to w and releases the handle. It
// returns the suggested filename.
func (a *App) ExportTo(ctx context.Context, id int64, w io.Writer, opts ...files.ExportOption) (string, error) {
	e, err := a.Files.ExportFile(ctx, id, opts...)
	if err != nil {
		return "", err
	}
	defer e.Release()

	if _, err := e.WriteTo(w); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return e.Filename(), nil
}
