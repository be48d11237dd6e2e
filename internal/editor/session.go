// ABOUTME: Editing session holding the working file, selection, and timers.
// ABOUTME: Debounces preview updates and autosaves after a quiet period.

package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/mdpad/internal/logging"
	"github.com/harper/mdpad/internal/models"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultAutosave = 2 * time.Second
)

// SaveFunc persists f and returns the stored record. A draft comes back
// carrying its assigned id.
type SaveFunc func(ctx context.Context, f *models.MarkdownFile) (*models.MarkdownFile, error)

// SessionOption configures a Session.
type SessionOption func(*Session)

func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.debounceWindow = d
		}
	}
}

func WithAutosave(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.autosaveWindow = d
		}
	}
}

// OnChange is called with the content once input has been quiet for the
// debounce window.
func OnChange(fn func(content string)) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// OnSaved is called after every successful save.
func OnSaved(fn func(*models.MarkdownFile)) SessionOption {
	return func(s *Session) {
		s.onSaved = fn
	}
}

// OnSaveError is called when an autosave fails, including saves dropped
// because the file was deleted meanwhile.
func OnSaveError(fn func(error)) SessionOption {
	return func(s *Session) {
		s.onSaveError = fn
	}
}

func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is the working state of the editor for one file at a time. It is
// safe for concurrent use; callbacks run on timer goroutines without any
// session lock held.
type Session struct {
	save           SaveFunc
	debounceWindow time.Duration
	autosaveWindow time.Duration
	onChange       func(string)
	onSaved        func(*models.MarkdownFile)
	onSaveError    func(error)
	logger         *log.Logger

	// saveMu serializes saves so a draft is created at most once.
	saveMu sync.Mutex

	mu       sync.Mutex
	file     *models.MarkdownFile
	selStart int
	selEnd   int
	epoch    uint64
	gen      uint64
	savedGen uint64
	closed   bool
	debounce *time.Timer
	autosave *time.Timer
}

// NewSession starts a session on f. A nil f starts on a fresh draft.
func NewSession(save SaveFunc, f *models.MarkdownFile, opts ...SessionOption) *Session {
	s := &Session{
		save:           save,
		debounceWindow: DefaultDebounce,
		autosaveWindow: DefaultAutosave,
		onChange:       func(string) {},
		onSaved:        func(*models.MarkdownFile) {},
		onSaveError:    func(error) {},
		logger:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(f)
	return s
}

// Load replaces the working file, discarding unsaved edits and pending
// timers. Call Flush first to keep them.
func (s *Session) Load(f *models.MarkdownFile) {
	if f == nil {
		f = models.NewFile(models.DefaultName, "")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
	s.file = f.Clone()
	s.epoch++
	s.gen++
	s.savedGen = s.gen
	n := len([]rune(s.file.Content))
	s.selStart, s.selEnd = n, n
}

// Adopt takes identity, name, and timestamps from a stored copy of the
// working file while keeping the working content.
func (s *Session) Adopt(f *models.MarkdownFile) {
	if f == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.ID = f.ID
	s.file.Name = f.Name
	s.file.CreatedAt = f.CreatedAt
	s.file.UpdatedAt = f.UpdatedAt
}

// File returns a copy of the working file.
func (s *Session) File() *models.MarkdownFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Clone()
}

func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Content
}

// Dirty reports whether there are edits not yet saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != s.savedGen
}

// Selection returns the current selection as rune offsets.
func (s *Session) Selection() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selStart, s.selEnd
}

// Select sets the selection. start == end is a caret.
func (s *Session) Select(start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len([]rune(s.file.Content))
	if start < 0 || end < start || end > n {
		return ErrBadSelection
	}
	s.selStart, s.selEnd = start, end
	return nil
}

// Input replaces the content and restarts both timers. It is a no-op after
// Close.
func (s *Session) Input(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.setContentLocked(content)
	n := len([]rune(content))
	if s.selEnd > n {
		s.selEnd = n
	}
	if s.selStart > s.selEnd {
		s.selStart = s.selEnd
	}
}

// SetName renames the working file. The new name is written by the next
// save, so it counts as input.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.file.Name = models.NormalizeName(name)
	s.setContentLocked(s.file.Content)
}

// ApplyFormat wraps the selection with f, leaves the caret after the
// inserted suffix, and counts as input.
func (s *Session) ApplyFormat(f Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	out, caret, err := f.Apply(s.file.Content, s.selStart, s.selEnd)
	if err != nil {
		return err
	}
	s.setContentLocked(out)
	s.selStart, s.selEnd = caret, caret
	return nil
}

func (s *Session) setContentLocked(content string) {
	s.file.Content = content
	s.gen++
	gen := s.gen

	s.stopTimersLocked()
	s.debounce = time.AfterFunc(s.debounceWindow, func() { s.fireChange(gen) })
	s.autosave = time.AfterFunc(s.autosaveWindow, func() { s.fireAutosave(gen) })
}

func (s *Session) stopTimersLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	if s.autosave != nil {
		s.autosave.Stop()
		s.autosave = nil
	}
}

func (s *Session) fireChange(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	content := s.file.Content
	s.mu.Unlock()

	s.onChange(content)
}

func (s *Session) fireAutosave(gen uint64) {
	s.mu.Lock()
	stale := s.closed || gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}

	if err := s.Flush(context.Background()); err != nil {
		s.onSaveError(err)
	}
}

// Flush saves pending edits now and cancels the autosave timer. It does
// nothing when there are no unsaved edits.
func (s *Session) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.autosave != nil {
		s.autosave.Stop()
		s.autosave = nil
	}
	if s.gen == s.savedGen {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.file.Clone()
	epoch, gen := s.epoch, s.gen
	s.mu.Unlock()

	saved, err := s.save(ctx, snapshot)
	if err != nil {
		s.logger.Warn("save failed", "id", snapshot.ID, "err", err)
		return err
	}

	s.mu.Lock()
	// A Load during the save switched files; the result belongs to the old one.
	if s.epoch == epoch {
		s.file.ID = saved.ID
		s.file.Name = saved.Name
		s.file.CreatedAt = saved.CreatedAt
		s.file.UpdatedAt = saved.UpdatedAt
		if gen > s.savedGen {
			s.savedGen = gen
		}
	}
	s.mu.Unlock()

	s.logger.Debug("saved", "id", saved.ID)
	s.onSaved(saved.Clone())
	return nil
}

// Close stops both timers. Later input is ignored; unsaved edits are not
// written, so call Flush first to keep them.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimersLocked()
}
