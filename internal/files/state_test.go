// ABOUTME: Tests for the manager's initialization state machine.
// ABOUTME: Covers seeding, failure, waiting callers, and cancellation.

package files

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/store"
)

func TestInitSeedsWelcomeIntoEmptyStore(t *testing.T) {
	s := openTestStore(t)
	m := NewManagerForStore(s)
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	if m.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %v", m.State())
	}
	if err := m.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if m.State() != StateReady {
		t.Fatalf("expected ready, got %v", m.State())
	}

	files, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(files))
	}
	if files[0].Name != "Welcome" {
		t.Errorf("expected Welcome, got %q", files[0].Name)
	}
	if files[0].Content == "" {
		t.Error("expected welcome content")
	}

	// A second Init is a no-op.
	if err := m.Init(ctx); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	files, _ = s.List(ctx)
	if len(files) != 1 {
		t.Errorf("expected still one record, got %d", len(files))
	}
}

func TestInitSkipsSeedWhenStoreHasFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Add(ctx, models.NewFile("existing", "")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	m := NewManagerForStore(s)
	defer func() { _ = m.Close() }()
	if err := m.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	files, _ := s.List(ctx)
	if len(files) != 1 || files[0].Name != "existing" {
		t.Errorf("expected only the existing file, got %+v", files)
	}
}

func TestWithWelcomeOverridesSeed(t *testing.T) {
	s := openTestStore(t)
	m := NewManagerForStore(s, WithWelcome("Start here", "hello"))
	defer func() { _ = m.Close() }()

	files, err := m.ListFilesSortedByRecency(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "Start here" || files[0].Content != "hello" {
		t.Errorf("unexpected seed %+v", files)
	}
}

func TestOperationsInitializeLazily(t *testing.T) {
	s := openTestStore(t)
	m := NewManagerForStore(s, WithoutSeed())
	defer func() { _ = m.Close() }()

	id, err := m.CreateFile(context.Background(), models.NewFile("lazy", ""))
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive id, got %d", id)
	}
	if m.State() != StateReady {
		t.Errorf("expected ready, got %v", m.State())
	}
}

func TestInitFailureIsTerminal(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("disk on fire")
	m := NewManager(func(context.Context) (store.Store, error) {
		calls.Add(1)
		return nil, boom
	})
	ctx := context.Background()

	err := m.Init(ctx)
	if !errors.Is(err, store.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if m.State() != StateFailed {
		t.Fatalf("expected failed, got %v", m.State())
	}

	if _, err := m.CreateFile(ctx, models.NewFile("x", "")); !errors.Is(err, store.ErrStorageUnavailable) {
		t.Errorf("CreateFile: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := m.ListFilesSortedByRecency(ctx); !errors.Is(err, store.ErrStorageUnavailable) {
		t.Errorf("List: expected ErrStorageUnavailable, got %v", err)
	}
	if err := m.DeleteFile(ctx, 1); !errors.Is(err, store.ErrStorageUnavailable) {
		t.Errorf("Delete: expected ErrStorageUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected opener to run once, ran %d times", calls.Load())
	}
}

func TestUpdateMissingIdentityCheckedBeforeInit(t *testing.T) {
	m := NewManager(func(context.Context) (store.Store, error) {
		return nil, errors.New("unreachable")
	})
	if _, err := m.UpdateFile(context.Background(), &models.MarkdownFile{}); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestCallersWaitForInitialization(t *testing.T) {
	s := openTestStore(t)
	release := make(chan struct{})
	var calls atomic.Int32
	m := NewManager(func(context.Context) (store.Store, error) {
		calls.Add(1)
		<-release
		return s, nil
	})
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CreateFile(ctx, models.NewFile("queued", ""))
			errs <- err
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.State() != StateInitializing {
		if time.Now().After(deadline) {
			t.Fatal("manager never entered initializing")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("CreateFile failed: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected one initialization, got %d", calls.Load())
	}
	files, _ := s.List(ctx)
	if len(files) != n+1 {
		t.Errorf("expected welcome plus %d files, got %d", n, len(files))
	}
}

func TestCancelledInitCanBeRetried(t *testing.T) {
	s := openTestStore(t)
	var calls atomic.Int32
	m := NewManager(func(ctx context.Context) (store.Store, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return s, nil
	}, WithoutSeed())
	defer func() { _ = m.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Init(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.State() != StateUninitialized {
		t.Fatalf("expected uninitialized after cancel, got %v", m.State())
	}

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("retry Init failed: %v", err)
	}
	if m.State() != StateReady {
		t.Errorf("expected ready, got %v", m.State())
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateInitializing:  "initializing",
		StateReady:         "ready",
		StateFailed:        "failed",
		State(9):           "State(9)",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
