// ABOUTME: Current-selection publisher holding the file open in the editor.
// ABOUTME: Replays the latest value to new subscribers and fans out synchronously.

package selection

import (
	"sync"

	"github.com/harper/mdpad/internal/models"
)

// Publisher is a single-slot holder of the current file. It never touches
// persistence.
type Publisher struct {
	mu      sync.Mutex
	current *models.MarkdownFile
	subs    []*Subscription
	nextSeq uint64
}

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	p   *Publisher
	seq uint64
	fn  func(*models.MarkdownFile)
}

// New returns a publisher holding initial. A nil initial holds a fresh
// unsaved file.
func New(initial *models.MarkdownFile) *Publisher {
	if initial == nil {
		initial = models.NewFile(models.DefaultName, "")
	}
	return &Publisher{current: initial.Clone()}
}

// Current returns a copy of the held file.
func (p *Publisher) Current() *models.MarkdownFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

// Set replaces the held file and notifies every current subscriber, in
// subscription order, before returning.
func (p *Publisher) Set(f *models.MarkdownFile) {
	p.mu.Lock()
	p.current = f.Clone()
	subs := make([]*Subscription, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, s := range subs {
		s.fn(f.Clone())
	}
}

// Subscribe registers fn. fn is called immediately with the held file, then
// with every subsequent value. Callbacks run on the caller's goroutine of Set.
func (p *Publisher) Subscribe(fn func(*models.MarkdownFile)) *Subscription {
	p.mu.Lock()
	p.nextSeq++
	s := &Subscription{p: p, seq: p.nextSeq, fn: fn}
	p.subs = append(p.subs, s)
	current := p.current.Clone()
	p.mu.Unlock()

	fn(current)
	return s
}

// Len returns the number of live subscriptions.
func (p *Publisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Cancel stops further notifications. Safe to call more than once.
func (s *Subscription) Cancel() {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, other := range p.subs {
		if other.seq == s.seq {
			p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
			return
		}
	}
}
