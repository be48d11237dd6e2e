// ABOUTME: SQLite-backed store using the pure-Go modernc driver.
// ABOUTME: Handles schema creation and CRUD against the markdown_files table.

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/mdpad/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS markdown_files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS markdown_files_name ON markdown_files(name);
CREATE INDEX IF NOT EXISTS markdown_files_updated_at ON markdown_files(updated_at);
`

// SQLiteStore keeps markdown files in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, unavailable("create data directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open database", err)
	}
	// One writer at a time; SQLite serializes writes to the same row.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, unavailable("ping database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, unavailable("run migrations", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, f *models.MarkdownFile) (int64, error) {
	if err := checkInsert(ctx, f); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO markdown_files (name, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		f.Name, f.Content, f.CreatedAt.UnixNano(), f.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*models.MarkdownFile, bool, error) {
	var created, updated int64
	f := &models.MarkdownFile{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, created_at, updated_at FROM markdown_files WHERE id = ?`,
		id,
	).Scan(&f.ID, &f.Name, &f.Content, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	f.CreatedAt = time.Unix(0, created)
	f.UpdatedAt = time.Unix(0, updated)
	return f, true, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.MarkdownFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, created_at, updated_at FROM markdown_files ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var files []*models.MarkdownFile
	for rows.Next() {
		var created, updated int64
		f := &models.MarkdownFile{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Content, &created, &updated); err != nil {
			return nil, err
		}
		f.CreatedAt = time.Unix(0, created)
		f.UpdatedAt = time.Unix(0, updated)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, f *models.MarkdownFile) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE markdown_files SET name = ?, content = ?, updated_at = MAX(?, created_at) WHERE id = ?`,
		f.Name, f.Content, f.UpdatedAt.UnixNano(), id,
	)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrRecordNotFound
	}
	return id, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM markdown_files WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
