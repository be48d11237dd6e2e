// ABOUTME: Tests for the composition root and its selection policies.
// ABOUTME: Runs against a bolt store in a temp dir.

package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harper/mdpad/internal/config"
	"github.com/harper/mdpad/internal/files"
	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	s, err := store.OpenBolt(filepath.Join(t.TempDir(), "test.bolt"))
	if err != nil {
		t.Fatalf("OpenBolt failed: %v", err)
	}
	a := NewWithManager(nil, files.NewManagerForStore(s, files.WithoutSeed()), nil)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewDraftIsCurrent(t *testing.T) {
	a := newTestApp(t)
	d := a.NewDraft()
	if d.HasID() || d.Name != models.DefaultName {
		t.Errorf("unexpected draft %+v", d)
	}
	if cur := a.Current.Current(); cur.HasID() || cur.Content != "" {
		t.Errorf("expected draft current, got %+v", cur)
	}
}

func TestSaveDraftPublishesAssignedID(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	var seen []*models.MarkdownFile
	sub := a.Current.Subscribe(func(f *models.MarkdownFile) { seen = append(seen, f) })
	defer sub.Cancel()

	draft := a.NewDraft()
	draft.Content = "# notes"
	saved, err := a.Save(ctx, draft)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !saved.HasID() {
		t.Fatal("expected saved file to carry an id")
	}
	last := seen[len(seen)-1]
	if last.ID != saved.ID || last.Content != "# notes" {
		t.Errorf("expected current to be the saved record, got %+v", last)
	}
}

func TestSaveExistingUpdates(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	saved, err := a.Save(ctx, models.NewFile("doc", "v1"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	saved.Content = "v2"
	again, err := a.Save(ctx, saved)
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if again.ID != saved.ID {
		t.Errorf("expected same id, got %d and %d", saved.ID, again.ID)
	}

	stored, err := a.Files.GetFile(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if stored.Content != "v2" {
		t.Errorf("expected v2, got %q", stored.Content)
	}
	list, _ := a.List(ctx)
	if len(list) != 1 {
		t.Errorf("expected one file, got %d", len(list))
	}
}

func TestPersistDoesNotPublish(t *testing.T) {
	a := newTestApp(t)
	saved, err := a.Persist(context.Background(), models.NewFile("quiet", "x"))
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if a.Current.Current().ID == saved.ID {
		t.Error("Persist should not change the current file")
	}
}

func TestDeleteCurrentPublishesDraft(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	saved, _ := a.Save(ctx, models.NewFile("doomed", "bye"))
	if err := a.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	cur := a.Current.Current()
	if cur.HasID() || cur.Content != "" {
		t.Errorf("expected fresh draft current, got %+v", cur)
	}
	if _, err := a.Files.GetFile(ctx, saved.ID); !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("expected file gone, got %v", err)
	}
}

func TestDeleteOtherKeepsCurrent(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	other, _ := a.Persist(ctx, models.NewFile("other", ""))
	current, _ := a.Save(ctx, models.NewFile("current", ""))
	if err := a.Delete(ctx, other.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if a.Current.Current().ID != current.ID {
		t.Error("deleting another file should not change the current one")
	}
}

func TestRenameRefreshesCurrent(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	saved, _ := a.Save(ctx, models.NewFile("before", "body"))
	ok, err := a.Rename(ctx, saved.ID, "  after  ")
	if err != nil || !ok {
		t.Fatalf("Rename failed: ok=%v err=%v", ok, err)
	}
	cur := a.Current.Current()
	if cur.Name != "after" || cur.Content != "body" {
		t.Errorf("expected renamed current, got %+v", cur)
	}

	ok, err = a.Rename(ctx, 999, "ghost")
	if err != nil || ok {
		t.Errorf("expected false without error for missing file, got ok=%v err=%v", ok, err)
	}
}

func TestOpenMissing(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.Open(context.Background(), 42); !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestOpenPublishes(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	saved, _ := a.Persist(ctx, models.NewFile("open me", "hi"))
	if _, err := a.Open(ctx, saved.ID); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if a.Current.Current().ID != saved.ID {
		t.Error("expected opened file to be current")
	}
}

func TestImport(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		wantName    string
		wantContent string
	}{
		{"plain", "notes.md", "# Notes\n", "notes", "# Notes\n"},
		{"nested path", "/tmp/in/todo.markdown", "- a", "todo", "- a"},
		{"frontmatter title", "x.md", "---\ntitle: Real Title\n---\nbody\n", "Real Title", "---\ntitle: Real Title\n---\nbody\n"},
		{"frontmatter without title", "kept.md", "---\ntags: [a]\n---\nbody\n", "kept", "---\ntags: [a]\n---\nbody\n"},
		{"empty", "empty.md", "", "empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			f, err := a.Import(context.Background(), tt.filename, []byte(tt.content))
			if err != nil {
				t.Fatalf("Import failed: %v", err)
			}
			if f.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, f.Name)
			}
			if f.Content != tt.wantContent {
				t.Errorf("expected content %q, got %q", tt.wantContent, f.Content)
			}
			if a.Current.Current().ID != f.ID {
				t.Error("expected imported file to be current")
			}
		})
	}
}

func TestImportExportKeepsBytes(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	docs := []string{
		"---\nlayout: post\ndate: 2024-01-01\n---\n# Hi\n",
		"+++\ntitle = \"Hugo\"\ndraft = true\n+++\nbody\n",
		"no frontmatter at all",
	}
	for _, doc := range docs {
		f, err := a.Import(ctx, "post.md", []byte(doc))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		var buf bytes.Buffer
		if _, err := a.ExportTo(ctx, f.ID, &buf); err != nil {
			t.Fatalf("ExportTo failed: %v", err)
		}
		if buf.String() != doc {
			t.Errorf("expected export of %q to match import, got %q", doc, buf.String())
		}
	}
}

func TestExportToReleasesHandle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	saved, _ := a.Persist(ctx, models.NewFile("report", "# Report"))

	var buf bytes.Buffer
	name, err := a.ExportTo(ctx, saved.ID, &buf)
	if err != nil {
		t.Fatalf("ExportTo failed: %v", err)
	}
	if name != "report.md" {
		t.Errorf("expected report.md, got %q", name)
	}
	if buf.String() != "# Report" {
		t.Errorf("unexpected export %q", buf.String())
	}
	if a.Files.OpenExports() != 0 {
		t.Errorf("expected handle released, %d open", a.Files.OpenExports())
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = store.BackendSQLite
	cfg.DataPath = filepath.Join(t.TempDir(), "mdpad.db")

	a := New(cfg, nil)
	defer func() { _ = a.Close() }()

	list, err := a.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != files.WelcomeName {
		t.Errorf("expected seeded welcome file, got %+v", list)
	}
}
