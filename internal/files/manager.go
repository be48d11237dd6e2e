// ABOUTME: File manager orchestrating markdown file lifecycle over a store.
// ABOUTME: Owns naming policy, timestamps, first-run seeding, and the init state machine.

package files

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harper/mdpad/internal/logging"
	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/store"
)

// ErrMissingIdentity is returned when an update targets a file that was never
// saved. It signals a programming error in the caller.
var ErrMissingIdentity = errors.New("file has no id")

const (
	WelcomeName    = "Welcome"
	welcomeContent = `# Welcome to mdpad

mdpad is a small markdown editor. Files are saved locally and the preview
updates as you type.

## Getting started

- Create a file with **ctrl+n** (or ` + "`mdpad new`" + `)
- Your changes are saved automatically after a short pause
- Use the toolbar shortcuts for **bold**, *italic*, and [links](https://commonmark.org)
- Export any file as a ` + "`.md`" + ` download, or import one from disk

Delete this file whenever you like.
`
)

// Opener opens the underlying store. It is called once, when the manager
// leaves StateUninitialized.
type Opener func(ctx context.Context) (store.Store, error)

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithWelcome overrides the file seeded into an empty store.
func WithWelcome(name, content string) Option {
	return func(m *Manager) {
		m.welcomeName = name
		m.welcomeContent = content
	}
}

// WithoutSeed disables first-run seeding.
func WithoutSeed() Option {
	return func(m *Manager) {
		m.seed = false
	}
}

// Manager enforces the file-level invariants the raw store does not. It is
// safe for concurrent use.
type Manager struct {
	open           Opener
	now            func() time.Time
	logger         *log.Logger
	seed           bool
	welcomeName    string
	welcomeContent string

	mu      sync.Mutex
	state   State
	done    chan struct{}
	initErr error
	store   store.Store

	exportsMu sync.Mutex
	exports   map[uuid.UUID]*Export
}

func NewManager(open Opener, opts ...Option) *Manager {
	m := &Manager{
		open:           open,
		now:            time.Now,
		logger:         logging.Discard(),
		seed:           true,
		welcomeName:    WelcomeName,
		welcomeContent: welcomeContent,
		exports:        make(map[uuid.UUID]*Export),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerForStore wraps an already-open store.
func NewManagerForStore(s store.Store, opts ...Option) *Manager {
	return NewManager(func(context.Context) (store.Store, error) { return s, nil }, opts...)
}

// CreateFile inserts a new file built from draft and returns its id. The name
// is normalized and both timestamps are set to now; draft is not modified.
func (m *Manager) CreateFile(ctx context.Context, draft *models.MarkdownFile) (int64, error) {
	s, err := m.ready(ctx)
	if err != nil {
		return 0, err
	}
	if draft == nil {
		draft = &models.MarkdownFile{}
	}

	rec := draft.Clone()
	rec.ID = 0
	rec.Name = models.NormalizeName(rec.Name)
	now := m.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	id, err := s.Add(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	m.logger.Debug("file created", "id", id, "name", rec.Name)
	return id, nil
}

// UpdateFile writes f back to the store. It normalizes f.Name and advances
// f.UpdatedAt in place before writing. A file deleted since it was loaded is
// not recreated: the write fails with store.ErrRecordNotFound.
func (m *Manager) UpdateFile(ctx context.Context, f *models.MarkdownFile) (int64, error) {
	if f == nil || !f.HasID() {
		return 0, ErrMissingIdentity
	}
	s, err := m.ready(ctx)
	if err != nil {
		return 0, err
	}

	now := m.now()
	if now.Before(f.UpdatedAt) {
		now = f.UpdatedAt
	}
	f.Name = models.NormalizeName(f.Name)
	f.TouchAt(now)

	id, err := s.Update(ctx, f.ID, f)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			m.logger.Warn("dropping save for missing file", "id", f.ID)
		}
		return 0, fmt.Errorf("update file %d: %w", f.ID, err)
	}
	m.logger.Debug("file updated", "id", id)
	return id, nil
}

// GetFile returns the file with id or store.ErrRecordNotFound.
func (m *Manager) GetFile(ctx context.Context, id int64) (*models.MarkdownFile, error) {
	s, err := m.ready(ctx)
	if err != nil {
		return nil, err
	}
	f, ok, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("file %d: %w", id, store.ErrRecordNotFound)
	}
	return f, nil
}

// RenameFile sets the name of file id. It reports false, without error, when
// no such file exists.
func (m *Manager) RenameFile(ctx context.Context, id int64, name string) (bool, error) {
	s, err := m.ready(ctx)
	if err != nil {
		return false, err
	}
	f, ok, err := s.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get file %d: %w", id, err)
	}
	if !ok {
		m.logger.Debug("rename of missing file", "id", id)
		return false, nil
	}

	f.Name = models.NormalizeName(name)
	if _, err := m.UpdateFile(ctx, f); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteFile removes file id permanently. Deleting a missing file succeeds.
// Callers that track a current selection must re-point it themselves.
func (m *Manager) DeleteFile(ctx context.Context, id int64) error {
	s, err := m.ready(ctx)
	if err != nil {
		return err
	}
	if err := s.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete file %d: %w", id, err)
	}
	m.logger.Debug("file deleted", "id", id)
	return nil
}

// ListFilesSortedByRecency returns every file, most recently updated first.
// Ties keep store iteration order.
func (m *Manager) ListFilesSortedByRecency(ctx context.Context) ([]*models.MarkdownFile, error) {
	s, err := m.ready(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	SortByRecency(files)
	return files, nil
}

// SortByRecency orders files by UpdatedAt descending, stable on ties.
func SortByRecency(files []*models.MarkdownFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UpdatedAt.After(files[j].UpdatedAt)
	})
}

// Close releases outstanding export handles and closes the store. Later
// operations fail with store.ErrStorageUnavailable.
func (m *Manager) Close() error {
	m.releaseAll()

	m.mu.Lock()
	for m.state == StateInitializing {
		done := m.done
		m.mu.Unlock()
		<-done
		m.mu.Lock()
	}
	s := m.store
	m.store = nil
	m.state = StateFailed
	m.initErr = fmt.Errorf("%w: manager closed", store.ErrStorageUnavailable)
	m.mu.Unlock()

	if s != nil {
		return s.Close()
	}
	return nil
}
