// ABOUTME: Badger-backed store, the default backend.
// ABOUTME: Uses type-prefixed keys (file:<id>) and a badger sequence for ids.

package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/mdpad/internal/models"
)

const (
	// FilePrefix is the key prefix for markdown files.
	FilePrefix = "file:"

	sequenceKey       = "seq:" + Collection
	sequenceBandwidth = 64
	conflictRetries   = 3
)

// BadgerStore keeps markdown files in a badger database.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens a badger database in dir. An empty dir opens an in-memory
// database.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, unavailable("create data directory", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, unavailable("open badger", err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, unavailable("open id sequence", err)
	}

	return &BadgerStore{db: db, seq: seq}, nil
}

// fileKey returns the key for a file.
func fileKey(id int64) []byte {
	return append([]byte(FilePrefix), marshalID(id)...)
}

func (s *BadgerStore) nextID() (int64, error) {
	n, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	// Sequences start at zero; ids start at one.
	return int64(n) + 1, nil
}

func (s *BadgerStore) Add(ctx context.Context, f *models.MarkdownFile) (int64, error) {
	if err := checkInsert(ctx, f); err != nil {
		return 0, err
	}

	id, err := s.nextID()
	if err != nil {
		return 0, err
	}

	encoded, err := encodeFile(FromModel(id, f))
	if err != nil {
		return 0, err
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fileKey(id), encoded)
	}); err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	return id, nil
}

func (s *BadgerStore) Get(ctx context.Context, id int64) (*models.MarkdownFile, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data *FileData
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data, err = decodeFile(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data.ToModel(), true, nil
}

func (s *BadgerStore) List(ctx context.Context) ([]*models.MarkdownFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []*models.MarkdownFile
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(FilePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				data, err := decodeFile(val)
				if err != nil {
					return err
				}
				files = append(files, data.ToModel())
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *BadgerStore) Update(ctx context.Context, id int64, f *models.MarkdownFile) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	update := func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}

		var stored *FileData
		if err := item.Value(func(val []byte) error {
			stored, err = decodeFile(val)
			return err
		}); err != nil {
			return err
		}

		encoded, err := encodeFile(mergeUpdate(stored, f))
		if err != nil {
			return err
		}
		return txn.Set(fileKey(id), encoded)
	}

	var err error
	for i := 0; i < conflictRetries; i++ {
		err = s.db.Update(update)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *BadgerStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(fileKey(id))
	})
}

func (s *BadgerStore) Close() error {
	if err := s.seq.Release(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}
