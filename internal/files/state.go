// ABOUTME: Initialization state machine for the file manager.
// ABOUTME: Opens the store once, seeds an empty store, and gates every operation.

package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/store"
)

// State is the manager's initialization state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// State returns the current initialization state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Init opens and verifies the store, seeding the welcome file when the store
// is empty. Concurrent callers wait for the first to finish. Failed is
// terminal: Init and every operation then return the same
// store.ErrStorageUnavailable error without retrying. A cancelled context
// during initialization returns the manager to StateUninitialized.
func (m *Manager) Init(ctx context.Context) error {
	_, err := m.ready(ctx)
	return err
}

// ready returns the open store, initializing or waiting as needed.
func (m *Manager) ready(ctx context.Context) (store.Store, error) {
	for {
		m.mu.Lock()
		switch m.state {
		case StateReady:
			s := m.store
			m.mu.Unlock()
			return s, nil
		case StateFailed:
			err := m.initErr
			m.mu.Unlock()
			return nil, err
		case StateInitializing:
			done := m.done
			m.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		m.state = StateInitializing
		m.done = make(chan struct{})
		m.mu.Unlock()
		m.logger.Debug("initializing storage")

		s, err := m.initialize(ctx)

		m.mu.Lock()
		switch {
		case err == nil:
			m.state = StateReady
			m.store = s
			m.logger.Info("storage ready")
		case ctx.Err() != nil:
			m.state = StateUninitialized
		default:
			m.state = StateFailed
			m.initErr = err
			m.logger.Error("storage unavailable", "err", err)
		}
		close(m.done)
		m.mu.Unlock()

		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func (m *Manager) initialize(ctx context.Context) (store.Store, error) {
	s, err := m.open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, store.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
		}
		return nil, err
	}

	// Listing doubles as the reachability check.
	existing, err := s.List(ctx)
	if err != nil {
		_ = s.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: verify store: %v", store.ErrStorageUnavailable, err)
	}

	if m.seed && len(existing) == 0 {
		now := m.now()
		welcome := &models.MarkdownFile{
			Name:      models.NormalizeName(m.welcomeName),
			Content:   m.welcomeContent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		id, err := s.Add(ctx, welcome)
		if err != nil {
			_ = s.Close()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: seed welcome file: %v", store.ErrStorageUnavailable, err)
		}
		m.logger.Info("seeded welcome file", "id", id)
	}
	return s, nil
}
