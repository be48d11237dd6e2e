// ABOUTME: Wire encoding shared by the key-value backends.
// ABOUTME: Records are JSON with unix-nano timestamps under big-endian id keys.

package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/mdpad/internal/models"
)

// FileData is the stored form of a markdown file.
type FileData struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ToModel converts FileData to a models.MarkdownFile.
func (d *FileData) ToModel() *models.MarkdownFile {
	return &models.MarkdownFile{
		ID:        d.ID,
		Name:      d.Name,
		Content:   d.Content,
		CreatedAt: time.Unix(0, d.CreatedAt),
		UpdatedAt: time.Unix(0, d.UpdatedAt),
	}
}

// FromModel creates FileData for the given id.
func FromModel(id int64, f *models.MarkdownFile) *FileData {
	return &FileData{
		ID:        id,
		Name:      f.Name,
		Content:   f.Content,
		CreatedAt: f.CreatedAt.UnixNano(),
		UpdatedAt: f.UpdatedAt.UnixNano(),
	}
}

func encodeFile(d *FileData) ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal file: %w", err)
	}
	return b, nil
}

func decodeFile(b []byte) (*FileData, error) {
	var d FileData
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("unmarshal file: %w", err)
	}
	return &d, nil
}

func marshalID(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func unmarshalID(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// mergeUpdate applies an update onto the stored record, keeping identity and
// creation time.
func mergeUpdate(stored *FileData, f *models.MarkdownFile) *FileData {
	merged := FromModel(stored.ID, f)
	merged.CreatedAt = stored.CreatedAt
	if merged.UpdatedAt < merged.CreatedAt {
		merged.UpdatedAt = merged.CreatedAt
	}
	return merged
}
