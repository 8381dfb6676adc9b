package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/parley/internal/state"
	"github.com/five82/parley/internal/waha"
)

const pingTimeout = 3 * time.Second

// backend is the part of the WAHA API needed before the UI starts.
type backend interface {
	Ping(ctx context.Context) error
	FetchSessions(ctx context.Context) ([]waha.SessionSummary, error)
	FetchChats(ctx context.Context, session string) ([]waha.ChatSummary, error)
}

// bootstrap checks that the server is reachable, loads the session list and
// opens a session when one is ready. It returns the opened session, empty
// when the user has to pick or pair one first.
func bootstrap(ctx context.Context, store *state.Store, client backend, preferred string, logger *slog.Logger) (string, error) {
	store.SetConnection(state.StatusConnecting, "")

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		store.SetConnection(state.StatusError, err.Error())
		return "", fmt.Errorf("waha server not reachable: %w", err)
	}

	sessions, err := client.FetchSessions(ctx)
	if err != nil {
		store.SetConnection(state.StatusError, err.Error())
		return "", fmt.Errorf("list sessions: %w", err)
	}
	store.SetSessions(sessions)
	store.SetConnection(state.StatusConnected, "")

	session, ok := pickSession(sessions, preferred)
	if !ok {
		if preferred != "" {
			logger.Warn("preferred session not working", "session", preferred)
		}
		return "", nil
	}

	store.SetSession(session)
	store.SetView(state.ViewChats)

	// The first scheduler tick is a full period away.
	chats, err := client.FetchChats(ctx, session)
	if err != nil {
		logger.Warn("initial chat load failed", "session", session, "error", err)
		return session, nil
	}
	store.SetChats(chats)
	return session, nil
}

// pickSession returns preferred when it is working, otherwise the first
// working session. A preferred session that exists but is not working is
// not replaced by another one.
func pickSession(sessions []waha.SessionSummary, preferred string) (string, bool) {
	if preferred != "" {
		for _, s := range sessions {
			if s.Name == preferred {
				return s.Name, s.Working()
			}
		}
	}
	for _, s := range sessions {
		if s.Working() {
			return s.Name, true
		}
	}
	return "", false
}
