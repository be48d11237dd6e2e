// ABOUTME: Backend-agnostic conformance tests for store.Store implementations.
// ABOUTME: Each backend's test file calls Run with its own opener.

// Package storetest keeps the tests every store backend must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/store"
)

// Opener returns a fresh, empty store for one test.
type Opener func(t *testing.T) store.Store

// Run runs the whole conformance suite.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"AddAssignsUniqueIDs", testAddAssignsUniqueIDs},
		{"AddRejectsAssignedID", testAddRejectsAssignedID},
		{"GetRoundTrip", testGetRoundTrip},
		{"GetMissing", testGetMissing},
		{"ListAll", testListAll},
		{"UpdateKeepsCreatedAt", testUpdateKeepsCreatedAt},
		{"UpdateMissing", testUpdateMissing},
		{"DeleteIdempotent", testDeleteIdempotent},
		{"IDsNotReused", testIDsNotReused},
		{"ConcurrentAdds", testConcurrentAdds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func newFile(name, content string) *models.MarkdownFile {
	return models.NewFile(name, content)
}

func mustAdd(t *testing.T, s store.Store, f *models.MarkdownFile) int64 {
	t.Helper()
	id, err := s.Add(context.Background(), f)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return id
}

func testAddAssignsUniqueIDs(t *testing.T, s store.Store) {
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		id := mustAdd(t, s, newFile("f", "c"))
		if id <= 0 {
			t.Fatalf("expected positive id, got %d", id)
		}
		if seen[id] {
			t.Fatalf("id %d assigned twice", id)
		}
		seen[id] = true
	}
}

func testAddRejectsAssignedID(t *testing.T, s store.Store) {
	f := newFile("f", "c")
	f.ID = 42
	if _, err := s.Add(context.Background(), f); !errors.Is(err, store.ErrIDAssigned) {
		t.Errorf("expected ErrIDAssigned, got %v", err)
	}
}

func testGetRoundTrip(t *testing.T, s store.Store) {
	f := newFile("Round trip", "# title\n\nbody ✓")
	id := mustAdd(t, s, f)

	got, ok, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record to be found")
	}
	if got.ID != id {
		t.Errorf("expected id %d, got %d", id, got.ID)
	}
	if got.Name != f.Name || got.Content != f.Content {
		t.Errorf("expected %q/%q, got %q/%q", f.Name, f.Content, got.Name, got.Content)
	}
	if !got.CreatedAt.Equal(f.CreatedAt) {
		t.Errorf("expected CreatedAt %v, got %v", f.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(f.UpdatedAt) {
		t.Errorf("expected UpdatedAt %v, got %v", f.UpdatedAt, got.UpdatedAt)
	}
}

func testGetMissing(t *testing.T, s store.Store) {
	got, ok, err := s.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("expected no error for missing id, got %v", err)
	}
	if ok || got != nil {
		t.Errorf("expected absent result, got %+v", got)
	}
}

func testListAll(t *testing.T, s store.Store) {
	files, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected empty store, got %d files", len(files))
	}

	want := map[int64]string{}
	for _, name := range []string{"a", "b", "c"} {
		want[mustAdd(t, s, newFile(name, ""))] = name
	}

	files, err = s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(files))
	}
	for _, f := range files {
		if want[f.ID] != f.Name {
			t.Errorf("file %d: expected name %q, got %q", f.ID, want[f.ID], f.Name)
		}
	}
}

func testUpdateKeepsCreatedAt(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := newFile("before", "old")
	id := mustAdd(t, s, f)

	changed := f.Clone()
	changed.Name = "after"
	changed.Content = "new"
	changed.CreatedAt = f.CreatedAt.Add(time.Hour)
	changed.UpdatedAt = f.UpdatedAt.Add(time.Minute)

	gotID, err := s.Update(ctx, id, changed)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if gotID != id {
		t.Errorf("expected Update to return %d, got %d", id, gotID)
	}

	got, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Get after update: ok=%v err=%v", ok, err)
	}
	if got.Name != "after" || got.Content != "new" {
		t.Errorf("expected updated fields, got %q/%q", got.Name, got.Content)
	}
	if !got.CreatedAt.Equal(f.CreatedAt) {
		t.Errorf("expected CreatedAt to be kept, got %v", got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(changed.UpdatedAt) {
		t.Errorf("expected UpdatedAt %v, got %v", changed.UpdatedAt, got.UpdatedAt)
	}
}

func testUpdateMissing(t *testing.T, s store.Store) {
	_, err := s.Update(context.Background(), 12345, newFile("ghost", ""))
	if !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	files, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected update of missing id not to insert, got %d files", len(files))
	}
}

func testDeleteIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	keep := mustAdd(t, s, newFile("keep", ""))
	gone := mustAdd(t, s, newFile("gone", ""))

	for i := 0; i < 2; i++ {
		if err := s.Delete(ctx, gone); err != nil {
			t.Fatalf("Delete #%d failed: %v", i+1, err)
		}
		files, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(files) != 1 || files[0].ID != keep {
			t.Errorf("after delete #%d expected only %d, got %+v", i+1, keep, files)
		}
	}

	if err := s.Delete(ctx, 777); err != nil {
		t.Errorf("expected deleting unknown id to succeed, got %v", err)
	}
}

func testIDsNotReused(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := mustAdd(t, s, newFile("first", ""))
	if err := s.Delete(ctx, first); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	second := mustAdd(t, s, newFile("second", ""))
	if second == first {
		t.Errorf("expected id %d not to be reused", first)
	}
}

func testConcurrentAdds(t *testing.T, s store.Store) {
	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Add(context.Background(), newFile("c", ""))
			if err != nil {
				t.Errorf("Add failed: %v", err)
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != n {
		t.Errorf("expected %d unique ids, got %d", n, len(ids))
	}
}
