// Package cartsync implements the optimistic quantity mutation protocol
// between a cart view and the authoritative store. Every bump is applied
// to local state immediately and accumulated into a per-line pending
// delta; a short per-line debounce window coalesces rapid bumps into a
// single send carrying the net delta. A failed send rolls the local
// state back by the equal-and-opposite delta and surfaces the error.
package cartsync

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window for rapid bumps on one line.
const DefaultDebounce = 150 * time.Millisecond

// Line is one locally tracked cart line.
type Line struct {
	VariantID      string
	UnitPriceCents int64
	Qty            int
}

// View is a consistent snapshot of the local cart state.
type View struct {
	Lines         []Line
	SubtotalCents int64
}

// Sender delivers one net delta to the authoritative store.
type Sender func(ctx context.Context, variantID string, delta int) error

// ErrorFunc is called after a failed send, once local state has been
// rolled back. The failure is recoverable; the view simply shows the
// pre-bump quantities again.
type ErrorFunc func(variantID string, delta int, err error)

// Syncer is the protocol state machine. All methods are safe for
// concurrent use.
type Syncer struct {
	mu       sync.Mutex
	lines    map[string]*Line
	order    []string
	pending  map[string]int
	timers   map[string]*time.Timer
	debounce time.Duration
	send     Sender
	onError  ErrorFunc
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithDebounce overrides the coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) { s.debounce = d }
}

// WithErrorFunc installs the failure callback.
func WithErrorFunc(f ErrorFunc) Option {
	return func(s *Syncer) { s.onError = f }
}

// New creates a Syncer that flushes net deltas through send.
func New(send Sender, opts ...Option) *Syncer {
	s := &Syncer{
		lines:    make(map[string]*Line),
		pending:  make(map[string]int),
		timers:   make(map[string]*time.Timer),
		debounce: DefaultDebounce,
		send:     send,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load seeds the local state from an authoritative cart view, dropping
// any previous state and pending deltas.
func (s *Syncer) Load(lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		t.Stop()
	}
	s.lines = make(map[string]*Line, len(lines))
	s.order = s.order[:0]
	s.pending = make(map[string]int)
	s.timers = make(map[string]*time.Timer)
	for _, l := range lines {
		line := l
		s.lines[l.VariantID] = &line
		s.order = append(s.order, l.VariantID)
	}
}

// Bump applies a quantity delta optimistically and schedules a debounced
// flush of the accumulated net delta for that line. Bumps on lines not
// present in the view are ignored.
func (s *Syncer) Bump(variantID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[variantID]
	if !ok {
		return
	}
	// Accumulate only the portion that visibly changed the line. A bump
	// swallowed by the zero clamp must not inflate the pending delta, or
	// a failed flush would roll back past the pre-optimistic view.
	applied := s.applyLocked(line, delta)
	if applied == 0 {
		return
	}
	s.pending[variantID] += applied

	if t, ok := s.timers[variantID]; ok {
		t.Stop()
	}
	id := variantID
	s.timers[variantID] = time.AfterFunc(s.debounce, func() {
		s.flushLine(context.Background(), id)
	})
}

// Remove zeroes a line: removal is not a distinct operation, it is a
// delta to zero.
func (s *Syncer) Remove(variantID string) {
	s.mu.Lock()
	qty := 0
	if line, ok := s.lines[variantID]; ok {
		qty = line.Qty
	}
	s.mu.Unlock()
	if qty > 0 {
		s.Bump(variantID, -qty)
	}
}

// applyLocked mutates a line under the lock, clamping at zero, and
// returns the delta actually applied. Lines at zero stay tracked so a
// later rollback can restore them.
func (s *Syncer) applyLocked(line *Line, delta int) int {
	before := line.Qty
	line.Qty += delta
	if line.Qty < 0 {
		line.Qty = 0
	}
	return line.Qty - before
}

// flushLine sends the accumulated net delta for one line. On failure the
// optimistic local state is rolled back by the opposite delta before the
// error callback runs.
func (s *Syncer) flushLine(ctx context.Context, variantID string) error {
	s.mu.Lock()
	delta := s.pending[variantID]
	s.pending[variantID] = 0
	s.mu.Unlock()

	if delta == 0 {
		return nil
	}
	if err := s.send(ctx, variantID, delta); err != nil {
		s.mu.Lock()
		if line, ok := s.lines[variantID]; ok {
			s.applyLocked(line, -delta)
		}
		s.mu.Unlock()
		if s.onError != nil {
			s.onError(variantID, delta, err)
		}
		return err
	}
	return nil
}

// Flush drains every pending delta immediately, bypassing the debounce
// window. Call it before navigating to checkout so the finalizer never
// reads a stale cart. The first send failure is returned; that line has
// already been rolled back locally.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id, delta := range s.pending {
		if delta != 0 {
			ids = append(ids, id)
		}
	}
	for _, t := range s.timers {
		t.Stop()
	}
	s.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := s.flushLine(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Snapshot returns the current local view. Zero-quantity lines are
// hidden; their entries remain tracked internally for rollbacks.
func (s *Syncer) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view View
	for _, id := range s.order {
		line := s.lines[id]
		if line == nil || line.Qty <= 0 {
			continue
		}
		view.Lines = append(view.Lines, *line)
		view.SubtotalCents += line.UnitPriceCents * int64(line.Qty)
	}
	return view
}
