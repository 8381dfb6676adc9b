package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/parley/internal/prefs"
	"github.com/five82/parley/internal/qr"
	"github.com/five82/parley/internal/state"
	"github.com/five82/parley/internal/waha"
)

type fakeClient struct {
	sessions []waha.SessionSummary
	chats    []waha.ChatSummary
	messages []waha.Message
	qrValue  string
	code     string
	err      error

	mu     sync.Mutex
	phones []string
}

func (f *fakeClient) FetchSessions(ctx context.Context) ([]waha.SessionSummary, error) {
	return f.sessions, f.err
}

func (f *fakeClient) FetchChats(ctx context.Context, session string) ([]waha.ChatSummary, error) {
	return f.chats, f.err
}

func (f *fakeClient) FetchMessages(ctx context.Context, session, chatID string) ([]waha.Message, error) {
	return f.messages, f.err
}

func (f *fakeClient) FetchQR(ctx context.Context, session string) (string, error) {
	return f.qrValue, f.err
}

func (f *fakeClient) CreateSession(ctx context.Context, name string) (waha.SessionSummary, error) {
	return waha.SessionSummary{Name: name, Status: waha.SessionScanQR}, f.err
}

func (f *fakeClient) RequestPairingCode(ctx context.Context, session, phone string) (string, error) {
	f.mu.Lock()
	f.phones = append(f.phones, phone)
	f.mu.Unlock()
	return f.code, f.err
}

type fakeScheduler struct {
	starts []string
	stops  int
}

func (f *fakeScheduler) Start(ctx context.Context, sessionID string) {
	f.starts = append(f.starts, sessionID)
}

func (f *fakeScheduler) Stop() {
	f.stops++
}

func newTestModel(t *testing.T, store *state.Store, client *fakeClient, sched *fakeScheduler) Model {
	t.Helper()
	m := New(Options{Store: store, Client: client, Scheduler: sched})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

// press sends a key and runs the command it returns, feeding the result and
// the new store state back into the model.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	m, cmd := update(t, m, k)
	return settle(t, m, cmd)
}

func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd != nil {
		if msg := cmd(); msg != nil {
			if _, isBatch := msg.(tea.BatchMsg); !isBatch {
				m, _ = update(t, m, msg)
			}
		}
	}
	m, _ = update(t, m, snapshotMsg(m.store.Read()))
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestModel_EnterWorkingSessionOpensChats(t *testing.T) {
	store := state.New()
	store.SetSessions([]waha.SessionSummary{
		{Name: "a", Status: waha.SessionStopped},
		{Name: "b", Status: waha.SessionWorking},
	})
	client := &fakeClient{chats: []waha.ChatSummary{{ID: "c1", Name: "Alice"}}}
	sched := &fakeScheduler{}
	m := newTestModel(t, store, client, sched)

	m = press(t, m, runes("j"))
	m = press(t, m, enterKey)

	snap := store.Read()
	if snap.View != state.ViewChats || snap.SessionID != "b" {
		t.Fatalf("view=%v session=%q, want chats b", snap.View, snap.SessionID)
	}
	if len(sched.starts) != 1 || sched.starts[0] != "b" {
		t.Fatalf("scheduler starts = %v, want [b]", sched.starts)
	}
	if len(snap.Chats) != 1 || snap.Connection != state.StatusConnected {
		t.Fatalf("chats = %v connection = %v, want loaded and connected", snap.Chats, snap.Connection)
	}
	if !strings.Contains(m.View(), "Alice") {
		t.Fatalf("chat list does not show Alice:\n%s", m.View())
	}
}

func TestModel_EnterStoppedSessionOnlyFlashes(t *testing.T) {
	store := state.New()
	store.SetSessions([]waha.SessionSummary{{Name: "a", Status: waha.SessionStopped}})
	sched := &fakeScheduler{}
	m := newTestModel(t, store, &fakeClient{}, sched)

	m = press(t, m, enterKey)

	if got := store.Read(); got.View != state.ViewSessions || got.SessionID != "" {
		t.Fatalf("view=%v session=%q, want sessions and no session", got.View, got.SessionID)
	}
	if len(sched.starts) != 0 {
		t.Fatalf("scheduler started for a stopped session")
	}
	if !strings.Contains(m.flash, "STOPPED") {
		t.Fatalf("flash = %q, want status mention", m.flash)
	}
}

func TestModel_EnterScanSessionShowsQR(t *testing.T) {
	store := state.New()
	store.SetSessions([]waha.SessionSummary{{Name: "new", Status: waha.SessionScanQR}})
	client := &fakeClient{qrValue: "2@pairing-value"}
	sched := &fakeScheduler{}
	m := newTestModel(t, store, client, sched)

	m = press(t, m, enterKey)

	snap := store.Read()
	if snap.View != state.ViewQR || snap.SessionID != "new" {
		t.Fatalf("view=%v session=%q, want qr new", snap.View, snap.SessionID)
	}
	if len(snap.QR) == 0 {
		t.Fatalf("QR matrix not stored")
	}
	if len(sched.starts) != 0 {
		t.Fatalf("scheduler started before pairing")
	}

	view := m.View()
	if !strings.Contains(view, "Link device: new") || !strings.ContainsRune(view, qr.Full) {
		t.Fatalf("QR view missing title or code:\n%s", view)
	}
}

func TestModel_SessionReadySwitchesToChats(t *testing.T) {
	store := state.New()
	store.SetSession("new")
	matrix, err := qr.Matrix("value")
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	store.SetQR(matrix)
	sched := &fakeScheduler{}
	m := newTestModel(t, store, &fakeClient{}, sched)

	// A stale notification for another session is ignored.
	m, _ = update(t, m, sessionReadyMsg("other"))
	if got := store.Read().View; got != state.ViewQR {
		t.Fatalf("view = %v, want qr", got)
	}

	m, _ = update(t, m, sessionReadyMsg("new"))
	if got := store.Read().View; got != state.ViewChats {
		t.Fatalf("view = %v, want chats", got)
	}
	if len(sched.starts) != 1 || sched.starts[0] != "new" {
		t.Fatalf("scheduler starts = %v, want [new]", sched.starts)
	}
	_ = m
}

func TestModel_CheckPairedReportsWorkingSession(t *testing.T) {
	store := state.New()
	client := &fakeClient{sessions: []waha.SessionSummary{{Name: "new", Status: waha.SessionWorking}}}

	msg := checkPairedCmd(context.Background(), client, store, "new")()
	if got, ok := msg.(sessionReadyMsg); !ok || string(got) != "new" {
		t.Fatalf("msg = %#v, want sessionReadyMsg(new)", msg)
	}

	client.sessions[0].Status = waha.SessionScanQR
	if msg := checkPairedCmd(context.Background(), client, store, "new")(); msg != nil {
		t.Fatalf("msg = %#v, want nil while still scanning", msg)
	}
}

func TestModel_OpenAndCloseConversation(t *testing.T) {
	store := state.New()
	store.SetSession("a")
	store.SetView(state.ViewChats)
	store.SetChats([]waha.ChatSummary{{ID: "c1", Name: "Alice"}, {ID: "c2", Name: "Bob"}})
	client := &fakeClient{messages: []waha.Message{
		{ID: "m1", Body: "hello there", Timestamp: 1700000000},
		{ID: "m2", Body: "hi Bob", FromMe: true, Ack: 3, Timestamp: 1700000060},
	}}
	m := newTestModel(t, store, client, &fakeScheduler{})

	m = press(t, m, runes("j"))
	m = press(t, m, enterKey)

	snap := store.Read()
	if snap.View != state.ViewConversation || snap.ChatID != "c2" {
		t.Fatalf("view=%v chat=%q, want conversation c2", snap.View, snap.ChatID)
	}
	if len(snap.Messages["c2"]) != 2 {
		t.Fatalf("messages = %v, want 2 loaded", snap.Messages["c2"])
	}
	view := m.View()
	if !strings.Contains(view, "hello there") || !strings.Contains(view, "hi Bob") {
		t.Fatalf("conversation missing messages:\n%s", view)
	}

	m = press(t, m, escKey)
	snap = store.Read()
	if snap.View != state.ViewChats || snap.ChatID != "" {
		t.Fatalf("after esc: view=%v chat=%q, want chats", snap.View, snap.ChatID)
	}
	_ = m
}

func TestModel_SelectionFollowsChatWhenListReorders(t *testing.T) {
	store := state.New()
	store.SetSession("a")
	store.SetView(state.ViewChats)
	store.SetChats([]waha.ChatSummary{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}})
	m := newTestModel(t, store, &fakeClient{}, &fakeScheduler{})

	m = press(t, m, runes("j"))
	if m.selectedChat != "c2" {
		t.Fatalf("selectedChat = %q, want c2", m.selectedChat)
	}

	store.SetChats([]waha.ChatSummary{{ID: "c3"}, {ID: "c1"}, {ID: "c2"}})
	m, _ = update(t, m, snapshotMsg(store.Read()))
	if m.chatIdx != 2 || m.selectedChat != "c2" {
		t.Fatalf("chatIdx=%d selected=%q, want 2 c2", m.chatIdx, m.selectedChat)
	}

	store.SetChats([]waha.ChatSummary{{ID: "c9"}})
	m, _ = update(t, m, snapshotMsg(store.Read()))
	if m.chatIdx != 0 || m.selectedChat != "c9" {
		t.Fatalf("chatIdx=%d selected=%q, want clamp to c9", m.chatIdx, m.selectedChat)
	}
}

func TestModel_ChatListScrollsWithSelection(t *testing.T) {
	store := state.New()
	store.SetSession("a")
	store.SetView(state.ViewChats)
	chats := make([]waha.ChatSummary, 60)
	for i := range chats {
		chats[i] = waha.ChatSummary{ID: string(rune('a'+i%26)) + string(rune('0'+i/26))}
	}
	store.SetChats(chats)
	m := newTestModel(t, store, &fakeClient{}, &fakeScheduler{})

	capacity := m.chatCapacity()
	for i := 0; i < capacity+1; i++ {
		m = press(t, m, runes("j"))
	}
	if m.chatIdx < m.chatOffset || m.chatIdx >= m.chatOffset+capacity {
		t.Fatalf("selection %d outside window [%d,%d)", m.chatIdx, m.chatOffset, m.chatOffset+capacity)
	}

	m = press(t, m, runes("G"))
	if m.chatIdx != 59 || m.chatOffset != 60-capacity {
		t.Fatalf("after G: idx=%d offset=%d, want 59 %d", m.chatIdx, m.chatOffset, 60-capacity)
	}
}

func TestModel_PhonePairing(t *testing.T) {
	store := state.New()
	store.SetSession("new")
	store.SetQR([][]bool{{true}})
	client := &fakeClient{code: "ABCD-EFGH"}
	m := newTestModel(t, store, client, &fakeScheduler{})

	m, _ = update(t, m, runes("p"))
	if m.inputMode != inputPhone {
		t.Fatalf("inputMode = %v, want phone", m.inputMode)
	}
	m, _ = update(t, m, runes("12132132130"))
	m = press(t, m, enterKey)

	if m.inputMode != inputNone {
		t.Fatalf("input still open after enter")
	}
	if got := store.Read().PairingCode; got != "ABCD-EFGH" {
		t.Fatalf("PairingCode = %q, want ABCD-EFGH", got)
	}
	if len(client.phones) != 1 || client.phones[0] != "12132132130" {
		t.Fatalf("phones = %v, want [12132132130]", client.phones)
	}
	if !strings.Contains(m.View(), "ABCD-EFGH") {
		t.Fatalf("pairing code not shown:\n%s", m.View())
	}
}

func TestModel_InvalidPhoneDoesNotMarkConnectionError(t *testing.T) {
	store := state.New()
	store.SetConnection(state.StatusConnected, "")
	client := &fakeClient{err: waha.ErrInvalidPhone}

	msg := pairingCodeCmd(context.Background(), client, store, "new", "123")()
	flash, ok := msg.(flashMsg)
	if !ok || !flash.isError {
		t.Fatalf("msg = %#v, want error flash", msg)
	}
	if got := store.Read().Connection; got != state.StatusConnected {
		t.Fatalf("connection = %v, want connected", got)
	}
}

func TestModel_LoadFailureSetsConnectionError(t *testing.T) {
	store := state.New()
	client := &fakeClient{err: errors.New("connection refused")}

	msg := loadSessionsCmd(context.Background(), client, store)()
	if flash, ok := msg.(flashMsg); !ok || !flash.isError {
		t.Fatalf("msg = %#v, want error flash", msg)
	}
	snap := store.Read()
	if snap.Connection != state.StatusError || snap.ErrorMessage != "connection refused" {
		t.Fatalf("connection = %v %q, want error", snap.Connection, snap.ErrorMessage)
	}
}

func TestModel_LoadChatsDropsResultForOtherSession(t *testing.T) {
	store := state.New()
	store.SetSession("b")
	client := &fakeClient{chats: []waha.ChatSummary{{ID: "c1"}}}

	loadChatsCmd(context.Background(), client, store, "a")()
	if got := store.Read().Chats; len(got) != 0 {
		t.Fatalf("chats = %v, want none for a stale session", got)
	}
}

func TestModel_NewSessionPrompt(t *testing.T) {
	store := state.New()
	client := &fakeClient{qrValue: "value"}
	m := newTestModel(t, store, client, &fakeScheduler{})

	m, _ = update(t, m, runes("n"))
	if m.inputMode != inputSessionName || m.input.Value() != "default" {
		t.Fatalf("input = %v %q, want session name prompt with default", m.inputMode, m.input.Value())
	}

	m = press(t, m, escKey)
	if m.inputMode != inputNone {
		t.Fatalf("esc did not close the prompt")
	}

	m, _ = update(t, m, runes("n"))
	m = press(t, m, enterKey)
	// sessionCreatedMsg enters the new session, which waits for a scan.
	m = settle(t, m, showQRCmd(context.Background(), client, store, "default"))
	if snap := store.Read(); snap.SessionID != "default" || snap.View != state.ViewQR {
		t.Fatalf("session=%q view=%v, want default qr", snap.SessionID, snap.View)
	}
	_ = m
}

func TestModel_CycleThemeSavesPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := New(Options{Store: state.New(), Prefs: prefs.Prefs{Theme: "Whatsapp"}, PrefsPath: path})

	m = press(t, m, runes("T"))
	if m.theme.Name != "Whatsapp Light" {
		t.Fatalf("theme = %q, want Whatsapp Light", m.theme.Name)
	}
	saved, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Theme != "Whatsapp Light" {
		t.Fatalf("saved theme = %q, want Whatsapp Light", saved.Theme)
	}
}

func TestModel_ViewSwitchingKeys(t *testing.T) {
	store := state.New()
	m := newTestModel(t, store, &fakeClient{}, &fakeScheduler{})

	m = press(t, m, runes("2"))
	if got := store.Read().View; got != state.ViewSessions {
		t.Fatalf("view = %v, want sessions without an active session", got)
	}
	if m.flash == "" {
		t.Fatalf("no flash explaining why chats cannot open")
	}

	m = press(t, m, runes("3"))
	if got := store.Read().View; got != state.ViewSettings {
		t.Fatalf("view = %v, want settings", got)
	}
	if !strings.Contains(m.View(), "WAHA URL") {
		t.Fatalf("settings view missing config:\n%s", m.View())
	}

	m = press(t, m, escKey)
	if got := store.Read().View; got != state.ViewSessions {
		t.Fatalf("view = %v, want sessions", got)
	}
}

func TestModel_HelpAndQuit(t *testing.T) {
	m := newTestModel(t, state.New(), &fakeClient{}, &fakeScheduler{})

	m, _ = update(t, m, runes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help not shown")
	}
	m, _ = update(t, m, runes("x"))
	if m.showHelp {
		t.Fatalf("help still shown after a key")
	}

	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() = %q, want Loading...", got)
	}
}
