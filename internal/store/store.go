// ABOUTME: Persistence store contract for markdown files plus backend selection.
// ABOUTME: Each backend keeps one collection keyed by a store-assigned integer id.

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/harper/mdpad/internal/models"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrRecordNotFound     = errors.New("record not found")
	ErrIDAssigned         = errors.New("record already has an id")
)

// Collection is the name of the single collection every backend uses.
const Collection = "markdown_files"

// Store persists markdown files. Implementations keep no in-memory cache:
// every call round-trips to the underlying engine.
type Store interface {
	// Add inserts f, which must not carry an id, and returns the new id.
	Add(ctx context.Context, f *models.MarkdownFile) (int64, error)
	// Get returns (nil, false, nil) when no record has the id.
	Get(ctx context.Context, id int64) (*models.MarkdownFile, bool, error)
	// List returns all records in store iteration order.
	List(ctx context.Context) ([]*models.MarkdownFile, error)
	// Update replaces the record's name, content, and UpdatedAt. The stored
	// CreatedAt is kept. Returns ErrRecordNotFound when the id is absent.
	Update(ctx context.Context, id int64, f *models.MarkdownFile) (int64, error)
	// Delete removes the record; deleting an absent id is not an error.
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Backends lists every supported backend, default first.
var Backends = []string{BackendBadger, BackendSQLite, BackendBolt}

// Open opens the named backend at path. Engine failures are wrapped with
// ErrStorageUnavailable.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendBadger:
		return OpenBadger(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// DefaultFilename is the on-disk name each backend uses under the data dir.
func DefaultFilename(backend string) string {
	switch backend {
	case BackendSQLite:
		return "mdpad.db"
	case BackendBolt:
		return "mdpad.bolt"
	default:
		return "badger"
	}
}

// DefaultPath joins the data dir with the backend's default filename.
func DefaultPath(dataDir, backend string) string {
	return filepath.Join(dataDir, DefaultFilename(backend))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

func checkInsert(ctx context.Context, f *models.MarkdownFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f == nil {
		return errors.New("nil record")
	}
	if f.HasID() {
		return ErrIDAssigned
	}
	return nil
}
