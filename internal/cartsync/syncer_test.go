package cartsync_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/cartsync"

	"github.com/stretchr/testify/assert"
)

// recordingSender captures every delta delivered to the store and
// signals each send on a channel so tests never sleep blindly.
type recordingSender struct {
	mu     sync.Mutex
	sends  []sentDelta
	fail   bool
	signal chan struct{}
}

type sentDelta struct {
	variantID string
	delta     int
}

func newRecordingSender() *recordingSender {
	return &recordingSender{signal: make(chan struct{}, 16)}
}

func (r *recordingSender) send(_ context.Context, variantID string, delta int) error {
	r.mu.Lock()
	defer func() {
		r.mu.Unlock()
		r.signal <- struct{}{}
	}()
	if r.fail {
		return fmt.Errorf("store unreachable")
	}
	r.sends = append(r.sends, sentDelta{variantID: variantID, delta: delta})
	return nil
}

func (r *recordingSender) all() []sentDelta {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentDelta, len(r.sends))
	copy(out, r.sends)
	return out
}

func (r *recordingSender) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a send")
	}
}

func seededLines() []cartsync.Line {
	return []cartsync.Line{
		{VariantID: "var_1", UnitPriceCents: 1999, Qty: 1},
		{VariantID: "var_2", UnitPriceCents: 500, Qty: 2},
	}
}

func TestSyncerCoalescesRapidBumps(t *testing.T) {
	sender := newRecordingSender()
	s := cartsync.New(sender.send, cartsync.WithDebounce(50*time.Millisecond))
	s.Load(seededLines())

	// Three rapid bumps inside the window
	s.Bump("var_1", 1)
	s.Bump("var_1", 1)
	s.Bump("var_1", 1)

	// The view shows the result immediately, before any send
	view := s.Snapshot()
	assert.Equal(t, 4, view.Lines[0].Qty)
	assert.Equal(t, int64(4*1999+2*500), view.SubtotalCents)

	sender.waitForSend(t)
	sends := sender.all()
	assert.Len(t, sends, 1)
	assert.Equal(t, sentDelta{variantID: "var_1", delta: 3}, sends[0])
}

func TestSyncerOppositeBumpsCancelOut(t *testing.T) {
	sender := newRecordingSender()
	s := cartsync.New(sender.send, cartsync.WithDebounce(20*time.Millisecond))
	s.Load(seededLines())

	// +1 then -1 inside the window nets to zero
	s.Bump("var_1", 1)
	s.Bump("var_1", -1)

	assert.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, sender.all())

	view := s.Snapshot()
	assert.Equal(t, 1, view.Lines[0].Qty)
}

func TestSyncerRollsBackOnSendFailure(t *testing.T) {
	sender := newRecordingSender()
	sender.fail = true

	type failure struct {
		variantID string
		delta     int
	}
	failures := make(chan failure, 1)

	s := cartsync.New(sender.send,
		cartsync.WithDebounce(10*time.Millisecond),
		cartsync.WithErrorFunc(func(variantID string, delta int, err error) {
			failures <- failure{variantID: variantID, delta: delta}
		}))
	s.Load(seededLines())

	s.Bump("var_1", 2)
	assert.Equal(t, 3, s.Snapshot().Lines[0].Qty) // optimistic

	sender.waitForSend(t)
	select {
	case f := <-failures:
		assert.Equal(t, "var_1", f.variantID)
		assert.Equal(t, 2, f.delta)
	case <-time.After(2 * time.Second):
		t.Fatal("error callback never ran")
	}

	// Local state rolled back by the opposite delta
	assert.Equal(t, 1, s.Snapshot().Lines[0].Qty)
}

func TestSyncerRemoveIsDeltaToZero(t *testing.T) {
	sender := newRecordingSender()
	s := cartsync.New(sender.send, cartsync.WithDebounce(10*time.Millisecond))
	s.Load(seededLines())

	s.Remove("var_2")

	// The removed line is hidden from the view immediately
	view := s.Snapshot()
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, "var_1", view.Lines[0].VariantID)

	sender.waitForSend(t)
	sends := sender.all()
	assert.Len(t, sends, 1)
	assert.Equal(t, sentDelta{variantID: "var_2", delta: -2}, sends[0])
}

func TestSyncerFailedRemoveRestoresLine(t *testing.T) {
	sender := newRecordingSender()
	sender.fail = true
	rolledBack := make(chan struct{}, 1)
	s := cartsync.New(sender.send,
		cartsync.WithDebounce(10*time.Millisecond),
		cartsync.WithErrorFunc(func(string, int, error) {
			rolledBack <- struct{}{}
		}))
	s.Load(seededLines())

	s.Remove("var_2")
	assert.Len(t, s.Snapshot().Lines, 1) // optimistically gone

	select {
	case <-rolledBack:
	case <-time.After(2 * time.Second):
		t.Fatal("rollback never happened")
	}

	// The failed send rolled the removal back; the line reappears with
	// its prior quantity instead of being lost
	view := s.Snapshot()
	assert.Len(t, view.Lines, 2)
	assert.Equal(t, 2, view.Lines[1].Qty)
}

func TestSyncerFlushBypassesDebounce(t *testing.T) {
	sender := newRecordingSender()
	s := cartsync.New(sender.send, cartsync.WithDebounce(time.Hour))
	s.Load(seededLines())

	s.Bump("var_1", 1)
	s.Bump("var_2", -1)

	// Nothing has been sent yet; the window is an hour wide
	assert.Empty(t, sender.all())

	assert.NoError(t, s.Flush(context.Background()))
	sends := sender.all()
	assert.Len(t, sends, 2)

	// Pending state drained; a second flush sends nothing
	assert.NoError(t, s.Flush(context.Background()))
	assert.Len(t, sender.all(), 2)
}

func TestSyncerIgnoresUnknownLines(t *testing.T) {
	sender := newRecordingSender()
	s := cartsync.New(sender.send, cartsync.WithDebounce(5*time.Millisecond))
	s.Load(seededLines())

	s.Bump("var_nope", 3)

	assert.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, sender.all())
	assert.Len(t, s.Snapshot().Lines, 2)
}

func TestSyncerLoadResetsPendingState(t *testing.T) {
	sender := newRecordingSender()
	s := cartsync.New(sender.send, cartsync.WithDebounce(time.Hour))
	s.Load(seededLines())

	s.Bump("var_1", 5)

	// Reloading from the authoritative view discards pending deltas
	s.Load([]cartsync.Line{{VariantID: "var_3", UnitPriceCents: 100, Qty: 1}})

	assert.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, sender.all())

	view := s.Snapshot()
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, "var_3", view.Lines[0].VariantID)
}

func TestSyncerClampedBumpsRollBackExactly(t *testing.T) {
	sender := newRecordingSender()
	sender.fail = true

	deltas := make(chan int, 1)
	s := cartsync.New(sender.send,
		cartsync.WithDebounce(10*time.Millisecond),
		cartsync.WithErrorFunc(func(_ string, delta int, _ error) {
			deltas <- delta
		}))
	s.Load(seededLines())

	// Two decrements on a quantity of one; the second is swallowed by the
	// zero clamp and must not count toward the pending delta
	s.Bump("var_1", -1)
	s.Bump("var_1", -1)
	assert.Len(t, s.Snapshot().Lines, 1) // var_1 hidden at zero

	var sent int
	select {
	case sent = <-deltas:
	case <-time.After(2 * time.Second):
		t.Fatal("error callback never ran")
	}
	assert.Equal(t, -1, sent)

	// The rollback lands on the pre-bump quantity, not one past it
	view := s.Snapshot()
	assert.Len(t, view.Lines, 2)
	assert.Equal(t, "var_1", view.Lines[0].VariantID)
	assert.Equal(t, 1, view.Lines[0].Qty)
}

func TestSyncerClampsAtZero(t *testing.T) {
	sender := newRecordingSender()
	s := cartsync.New(sender.send, cartsync.WithDebounce(time.Hour))
	s.Load(seededLines())

	// Bumping far below zero clamps the local view
	s.Bump("var_1", -10)
	view := s.Snapshot()
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, "var_2", view.Lines[0].VariantID)
}
