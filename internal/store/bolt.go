// ABOUTME: bbolt-backed store keeping files in a single bucket.
// ABOUTME: Ids come from the bucket sequence; keys are big-endian ids.

package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/mdpad/internal/models"
	bolt "go.etcd.io/bbolt"
)

// BoltStore keeps markdown files in a bbolt database.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, unavailable("create data directory", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, unavailable("open bolt", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(Collection))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, unavailable("initialize bucket", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Add(ctx context.Context, f *models.MarkdownFile) (int64, error) {
	if err := checkInsert(ctx, f); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(Collection))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)
		encoded, err := encodeFile(FromModel(id, f))
		if err != nil {
			return err
		}
		return b.Put(marshalID(id), encoded)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *BoltStore) Get(ctx context.Context, id int64) (*models.MarkdownFile, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data *FileData
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(Collection)).Get(marshalID(id))
		if v == nil {
			return nil
		}
		var err error
		data, err = decodeFile(v)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}
	return data.ToModel(), true, nil
}

func (s *BoltStore) List(ctx context.Context) ([]*models.MarkdownFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []*models.MarkdownFile
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(Collection)).ForEach(func(k, v []byte) error {
			data, err := decodeFile(v)
			if err != nil {
				return err
			}
			data.ID = unmarshalID(k)
			files = append(files, data.ToModel())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *BoltStore) Update(ctx context.Context, id int64, f *models.MarkdownFile) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(Collection))
		v := b.Get(marshalID(id))
		if v == nil {
			return ErrRecordNotFound
		}
		stored, err := decodeFile(v)
		if err != nil {
			return err
		}
		encoded, err := encodeFile(mergeUpdate(stored, f))
		if err != nil {
			return err
		}
		return b.Put(marshalID(id), encoded)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *BoltStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(Collection)).Delete(marshalID(id))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
