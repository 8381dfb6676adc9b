package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/parley/internal/logtail"
	"github.com/five82/parley/internal/qr"
	"github.com/five82/parley/internal/state"
	"github.com/five82/parley/internal/waha"
)

type tickMsg time.Time

// snapshotMsg carries a committed store state into the event loop.
type snapshotMsg state.Snapshot

type flashMsg struct {
	text    string
	isError bool
}

type logLinesMsg []string

type sessionCreatedMsg waha.SessionSummary

// sessionReadyMsg reports that a session waiting for a scan is now working.
type sessionReadyMsg string

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Read())
	}
}

// failed records err as the connection error and returns it as a flash.
func failed(store *state.Store, err error) tea.Msg {
	store.SetConnection(state.StatusError, err.Error())
	return flashMsg{text: err.Error(), isError: true}
}

func loadSessionsCmd(ctx context.Context, client Client, store *state.Store) tea.Cmd {
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		sessions, err := client.FetchSessions(ctx)
		if err != nil {
			return failed(store, err)
		}
		store.SetSessions(sessions)
		store.SetConnection(state.StatusConnected, "")
		return nil
	}
}

func loadChatsCmd(ctx context.Context, client Client, store *state.Store, session string) tea.Cmd {
	if client == nil || session == "" {
		return nil
	}
	return func() tea.Msg {
		chats, err := client.FetchChats(ctx, session)
		if err != nil {
			return failed(store, err)
		}
		if store.Read().SessionID != session {
			return nil
		}
		store.SetChats(chats)
		store.SetConnection(state.StatusConnected, "")
		return nil
	}
}

func loadMessagesCmd(ctx context.Context, client Client, store *state.Store, session, chatID string) tea.Cmd {
	if client == nil || session == "" || chatID == "" {
		return nil
	}
	return func() tea.Msg {
		messages, err := client.FetchMessages(ctx, session, chatID)
		if err != nil {
			return failed(store, err)
		}
		if store.Read().SessionID != session {
			return nil
		}
		store.SetMessages(chatID, messages)
		store.SetConnection(state.StatusConnected, "")
		return nil
	}
}

// showQRCmd fetches the pairing value of session and shows it as a QR code.
func showQRCmd(ctx context.Context, client Client, store *state.Store, session string) tea.Cmd {
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		value, err := client.FetchQR(ctx, session)
		if err != nil {
			return failed(store, err)
		}
		matrix, err := qr.Matrix(value)
		if err != nil {
			return flashMsg{text: "QR code: " + err.Error(), isError: true}
		}
		// SetQR switches to the QR view; do not pull the user back into it.
		if snap := store.Read(); snap.SessionID != session || snap.View != state.ViewQR {
			return nil
		}
		store.SetQR(matrix)
		store.SetConnection(state.StatusConnected, "")
		return nil
	}
}

// checkPairedCmd refreshes the session list and reports when session has
// finished pairing.
func checkPairedCmd(ctx context.Context, client Client, store *state.Store, session string) tea.Cmd {
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		sessions, err := client.FetchSessions(ctx)
		if err != nil {
			return failed(store, err)
		}
		store.SetSessions(sessions)
		for _, s := range sessions {
			if s.Name == session && s.Working() {
				return sessionReadyMsg(session)
			}
		}
		return nil
	}
}

func createSessionCmd(ctx context.Context, client Client, store *state.Store, name string) tea.Cmd {
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		created, err := client.CreateSession(ctx, name)
		if err != nil {
			return failed(store, err)
		}
		if sessions, err := client.FetchSessions(ctx); err == nil {
			store.SetSessions(sessions)
		}
		return sessionCreatedMsg(created)
	}
}

func pairingCodeCmd(ctx context.Context, client Client, store *state.Store, session, phone string) tea.Cmd {
	if client == nil || session == "" {
		return nil
	}
	return func() tea.Msg {
		code, err := client.RequestPairingCode(ctx, session, phone)
		if errors.Is(err, waha.ErrInvalidPhone) {
			return flashMsg{text: err.Error(), isError: true}
		}
		if err != nil {
			return failed(store, err)
		}
		store.SetPairingCode(code)
		return flashMsg{text: "Enter the code on your phone"}
	}
}

func readLogCmd(path string, lines int) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		got, err := logtail.Read(path, lines)
		if err != nil {
			return flashMsg{text: "read log: " + err.Error(), isError: true}
		}
		return logLinesMsg(got)
	}
}
