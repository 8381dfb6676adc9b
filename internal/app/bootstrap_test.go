package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/five82/parley/internal/state"
	"github.com/five82/parley/internal/waha"
)

type fakeBackend struct {
	pingErr     error
	sessions    []waha.SessionSummary
	sessionsErr error
	chats       []waha.ChatSummary
	chatsErr    error
}

func (f *fakeBackend) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeBackend) FetchSessions(ctx context.Context) ([]waha.SessionSummary, error) {
	return f.sessions, f.sessionsErr
}

func (f *fakeBackend) FetchChats(ctx context.Context, session string) ([]waha.ChatSummary, error) {
	return f.chats, f.chatsErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPickSession(t *testing.T) {
	sessions := []waha.SessionSummary{
		{Name: "stopped", Status: waha.SessionStopped},
		{Name: "scan", Status: waha.SessionScanQR},
		{Name: "work1", Status: waha.SessionWorking},
		{Name: "work2", Status: waha.SessionWorking},
	}

	tests := []struct {
		name      string
		sessions  []waha.SessionSummary
		preferred string
		want      string
		wantOK    bool
	}{
		{"first working", sessions, "", "work1", true},
		{"preferred working", sessions, "work2", "work2", true},
		{"preferred needs pairing", sessions, "scan", "scan", false},
		{"preferred missing", sessions, "nope", "work1", true},
		{"none working", sessions[:2], "", "", false},
		{"empty", nil, "work1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickSession(tt.sessions, tt.preferred)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("pickSession(%q) = %q, %v, want %q, %v", tt.preferred, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBootstrap_OpensWorkingSession(t *testing.T) {
	store := state.New()
	client := &fakeBackend{
		sessions: []waha.SessionSummary{{Name: "default", Status: waha.SessionWorking}},
		chats:    []waha.ChatSummary{{ID: "c1"}},
	}

	session, err := bootstrap(context.Background(), store, client, "", discardLogger())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if session != "default" {
		t.Fatalf("session = %q, want default", session)
	}

	snap := store.Read()
	if snap.SessionID != "default" || snap.View != state.ViewChats {
		t.Fatalf("session=%q view=%v, want default chats", snap.SessionID, snap.View)
	}
	if len(snap.Sessions) != 1 || len(snap.Chats) != 1 {
		t.Fatalf("sessions=%d chats=%d, want 1 and 1", len(snap.Sessions), len(snap.Chats))
	}
	if snap.Connection != state.StatusConnected {
		t.Fatalf("connection = %v, want connected", snap.Connection)
	}
}

func TestBootstrap_StaysOnSessionsWithoutWorkingSession(t *testing.T) {
	store := state.New()
	client := &fakeBackend{sessions: []waha.SessionSummary{{Name: "default", Status: waha.SessionScanQR}}}

	session, err := bootstrap(context.Background(), store, client, "default", discardLogger())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if session != "" {
		t.Fatalf("session = %q, want none", session)
	}
	if snap := store.Read(); snap.View != state.ViewSessions || snap.SessionID != "" {
		t.Fatalf("view=%v session=%q, want sessions view", snap.View, snap.SessionID)
	}
}

func TestBootstrap_ChatLoadFailureIsNotFatal(t *testing.T) {
	store := state.New()
	client := &fakeBackend{
		sessions: []waha.SessionSummary{{Name: "default", Status: waha.SessionWorking}},
		chatsErr: errors.New("timeout"),
	}

	session, err := bootstrap(context.Background(), store, client, "", discardLogger())
	if err != nil || session != "default" {
		t.Fatalf("bootstrap = %q, %v, want default, nil", session, err)
	}
}

func TestBootstrap_UnreachableServer(t *testing.T) {
	store := state.New()
	client := &fakeBackend{pingErr: &waha.FetchError{Op: "ping", Err: errors.New("connection refused")}}

	_, err := bootstrap(context.Background(), store, client, "", discardLogger())
	if err == nil {
		t.Fatalf("bootstrap succeeded against an unreachable server")
	}
	var fetchErr *waha.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error %v does not wrap *waha.FetchError", err)
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Fatalf("error = %q, want reachability message", err)
	}

	snap := store.Read()
	if snap.Connection != state.StatusError || snap.ErrorMessage == "" {
		t.Fatalf("connection = %v %q, want error with message", snap.Connection, snap.ErrorMessage)
	}
}

func TestBootstrap_SessionListFailure(t *testing.T) {
	store := state.New()
	client := &fakeBackend{sessionsErr: errors.New("unauthorized")}

	if _, err := bootstrap(context.Background(), store, client, "", discardLogger()); err == nil {
		t.Fatalf("bootstrap succeeded without a session list")
	}
	if got := store.Read().Connection; got != state.StatusError {
		t.Fatalf("connection = %v, want error", got)
	}
}

func TestRun_RejectsInvalidConfig(t *testing.T) {
	err := Run(context.Background(), Options{})
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("Run() error = %v, want invalid config", err)
	}
}
