package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/parley/internal/state"
)

// renderTrigger forwards store notifications to the program. Listeners run on
// whichever goroutine wrote to the store, including the event loop itself, so
// listen never blocks: it keeps only the newest snapshot and a pending wake.
// A separate goroutine delivers it with program.Send.
type renderTrigger struct {
	mu     sync.Mutex
	latest state.Snapshot
	wake   chan struct{}
}

func newRenderTrigger() *renderTrigger {
	return &renderTrigger{wake: make(chan struct{}, 1)}
}

func (t *renderTrigger) listen(snap state.Snapshot) {
	t.mu.Lock()
	t.latest = snap
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *renderTrigger) run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.wake:
			t.mu.Lock()
			snap := t.latest
			t.mu.Unlock()
			send(snapshotMsg(snap))
		}
	}
}
