package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/parley/internal/state"
)

func TestRenderTrigger_CoalescesToLatest(t *testing.T) {
	tr := newRenderTrigger()
	tr.listen(state.Snapshot{SessionID: "a"})
	tr.listen(state.Snapshot{SessionID: "b"})

	got := make(chan tea.Msg, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.run(ctx, func(msg tea.Msg) { got <- msg })
		close(done)
	}()

	select {
	case msg := <-got:
		snap, ok := msg.(snapshotMsg)
		if !ok {
			t.Fatalf("msg = %T, want snapshotMsg", msg)
		}
		if snap.SessionID != "b" {
			t.Fatalf("SessionID = %q, want b", snap.SessionID)
		}
	case <-time.After(time.Second):
		t.Fatalf("no snapshot delivered")
	}

	select {
	case msg := <-got:
		t.Fatalf("unexpected extra delivery %v", msg)
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("run did not return after cancel")
	}
}

func TestRenderTrigger_ListenNeverBlocks(t *testing.T) {
	tr := newRenderTrigger()
	store := state.New()
	store.Subscribe(tr.listen)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			store.SetView(state.ViewSettings)
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("store writes blocked on the render trigger")
	}
}

func TestRenderTrigger_DeliversWritesMadeFromEventLoop(t *testing.T) {
	tr := newRenderTrigger()
	store := state.New()
	store.Subscribe(tr.listen)

	got := make(chan state.View, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.run(ctx, func(msg tea.Msg) {
		got <- msg.(snapshotMsg).View
		// A handler reacting to the snapshot writes again.
		if msg.(snapshotMsg).View == state.ViewChats {
			store.SetView(state.ViewSettings)
		}
	})

	store.SetView(state.ViewChats)

	deadline := time.After(time.Second)
	for {
		select {
		case v := <-got:
			if v == state.ViewSettings {
				return
			}
		case <-deadline:
			t.Fatalf("write made while delivering was never forwarded")
		}
	}
}
