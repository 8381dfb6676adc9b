package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/parley/internal/config"
	"github.com/five82/parley/internal/logtail"
	"github.com/five82/parley/internal/prefs"
	"github.com/five82/parley/internal/state"
	"github.com/five82/parley/internal/waha"
)

const (
	uiTick         = time.Second
	flashTTL       = 4 * time.Second
	pairCheckEvery = 3 * time.Second
	qrRefreshEvery = 20 * time.Second
	logTailLines   = 200
)

// Client is the part of the WAHA API the UI calls directly.
type Client interface {
	FetchSessions(ctx context.Context) ([]waha.SessionSummary, error)
	FetchChats(ctx context.Context, session string) ([]waha.ChatSummary, error)
	FetchMessages(ctx context.Context, session, chatID string) ([]waha.Message, error)
	FetchQR(ctx context.Context, session string) (string, error)
	CreateSession(ctx context.Context, name string) (waha.SessionSummary, error)
	RequestPairingCode(ctx context.Context, session, phone string) (string, error)
}

// Scheduler keeps the active session's data fresh in the background.
type Scheduler interface {
	Start(ctx context.Context, sessionID string)
	Stop()
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    Client
	Store     *state.Store
	Scheduler Scheduler
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger
}

type inputMode int

const (
	inputNone inputMode = iota
	inputSessionName
	inputPhone
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    Client
	store     *state.Store
	scheduler Scheduler
	config    config.Config
	prefs     prefs.Prefs
	prefsPath string
	logger    *slog.Logger
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot state.Snapshot

	// Sessions list
	sessionIdx    int
	sessionOffset int

	// Chat list; selectedChat keeps the cursor on the same chat when the
	// list reorders under it.
	chatIdx      int
	chatOffset   int
	selectedChat string

	// Conversation
	messages   viewport.Model
	followTail bool
	shownChat  string

	// Settings
	logView    viewport.Model
	logEntries []logtail.Entry

	// Prompt for a new session name or a phone number
	input     textinput.Model
	inputMode inputMode

	spinner spinner.Model

	flash        string
	flashIsError bool
	flashAt      time.Time

	lastPairCheck time.Time
	lastQRFetch   time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	store := opts.Store
	if store == nil {
		store = state.New()
	}

	theme := GetTheme(opts.Prefs.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 32

	return Model{
		ctx:        ctx,
		client:     opts.Client,
		store:      store,
		scheduler:  opts.Scheduler,
		config:     opts.Config,
		prefs:      opts.Prefs,
		prefsPath:  opts.PrefsPath,
		logger:     logger.With("component", "ui"),
		keys:       DefaultKeyMap(),
		theme:      theme,
		snapshot:   store.Read(),
		input:      ti,
		spinner:    sp,
		followTail: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(uiTick),
		fetchSnapshotCmd(m.store),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.messages = viewport.New(0, 0)
			m.logView = viewport.New(0, 0)
		}
		m.ready = true
		m.layout()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case flashMsg:
		m.setFlash(msg.text, msg.isError)
		return m, nil

	case logLinesMsg:
		entries := make([]logtail.Entry, 0, len(msg))
		for _, line := range msg {
			entries = append(entries, logtail.Parse(line))
		}
		m.logEntries = entries
		m.updateLogView()
		return m, nil

	case sessionCreatedMsg:
		m.setFlash("Created session "+msg.Name, false)
		return m, m.enterSession(waha.SessionSummary(msg))

	case sessionReadyMsg:
		if m.snapshot.View != state.ViewQR || m.snapshot.SessionID != string(msg) {
			return m, nil
		}
		m.setFlash("Linked "+string(msg), false)
		return m, m.openSession(string(msg))
	}

	if m.inputMode != inputNone {
		// Cursor blink and other prompt internals.
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode != inputNone {
		return m.handleInputKey(msg)
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.refreshMessages()
		return m, nil

	case key.Matches(msg, m.keys.ViewSessions):
		m.store.SetView(state.ViewSessions)
		m.sync()
		return m, loadSessionsCmd(m.ctx, m.client, m.store)

	case key.Matches(msg, m.keys.ViewChats):
		if m.snapshot.SessionID == "" {
			m.setFlash("Select a session first", true)
			return m, nil
		}
		m.store.SetView(state.ViewChats)
		m.sync()
		return m, loadChatsCmd(m.ctx, m.client, m.store, m.snapshot.SessionID)

	case key.Matches(msg, m.keys.ViewSettings):
		m.store.SetView(state.ViewSettings)
		m.sync()
		return m, readLogCmd(m.config.LogFile, logTailLines)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	switch m.snapshot.View {
	case state.ViewSessions:
		return m.handleSessionsKey(msg)
	case state.ViewChats:
		return m.handleChatsKey(msg)
	case state.ViewConversation:
		return m.handleConversationKey(msg)
	case state.ViewSettings:
		return m.handleSettingsKey(msg)
	case state.ViewQR:
		return m.handleQRKey(msg)
	}
	return m, nil
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Sessions)

	switch {
	case key.Matches(msg, m.keys.NewSession):
		return m, m.startInput(inputSessionName, "default")
	case count == 0:
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.moveSession(m.sessionIdx - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveSession(m.sessionIdx + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveSession(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveSession(count - 1)
	case key.Matches(msg, m.keys.Select):
		return m, m.enterSession(m.snapshot.Sessions[m.sessionIdx])
	}
	return m, nil
}

func (m Model) handleChatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.store.SetView(state.ViewSessions)
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.ToggleCompact):
		m.prefs.CompactChats = !m.prefs.CompactChats
		m.savePrefs()
		m.moveChat(m.chatIdx)
		return m, nil
	}
	return m.handleChatListKey(msg)
}

// handleChatListKey moves through the chat list and opens chats. The list is
// also live beside an open conversation.
func (m Model) handleChatListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Chats)
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveChat(m.chatIdx - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveChat(m.chatIdx + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveChat(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveChat(count - 1)
	case key.Matches(msg, m.keys.Select):
		return m, m.openChat(m.snapshot.Chats[m.chatIdx].ID)
	}
	return m, nil
}

func (m Model) handleConversationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.store.SetChat("")
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.messages.ViewUp()
		m.followTail = m.messages.AtBottom()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.messages.ViewDown()
		m.followTail = m.messages.AtBottom()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.messages.GotoTop()
		m.followTail = m.messages.AtBottom()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.messages.GotoBottom()
		m.followTail = true
		return m, nil
	}
	return m.handleChatListKey(msg)
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.store.SetView(m.homeView())
		m.sync()
	case key.Matches(msg, m.keys.Up):
		m.logView.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logView.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logView.ViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logView.ViewDown()
	case key.Matches(msg, m.keys.Top):
		m.logView.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
	}
	return m, nil
}

func (m Model) handleQRKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.store.SetView(state.ViewSessions)
		m.sync()
		return m, loadSessionsCmd(m.ctx, m.client, m.store)
	case key.Matches(msg, m.keys.PairPhone):
		return m, m.startInput(inputPhone, "")
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopInput()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		mode := m.inputMode
		m.stopInput()
		switch mode {
		case inputSessionName:
			if value == "" {
				value = "default"
			}
			return m, createSessionCmd(m.ctx, m.client, m.store, value)
		case inputPhone:
			return m, pairingCodeCmd(m.ctx, m.client, m.store, m.snapshot.SessionID, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startInput(mode inputMode, value string) tea.Cmd {
	m.inputMode = mode
	m.input.Reset()
	m.input.SetValue(value)
	switch mode {
	case inputSessionName:
		m.input.Prompt = "Session name: "
		m.input.Placeholder = "default"
	case inputPhone:
		m.input.Prompt = "Phone number: "
		m.input.Placeholder = "+1 555 123 4567"
	}
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.inputMode = inputNone
	m.input.Blur()
}

// enterSession opens a session according to its status: working sessions go
// to the chat list, sessions that are starting or waiting for a scan show the
// QR code.
func (m *Model) enterSession(s waha.SessionSummary) tea.Cmd {
	switch s.Status {
	case waha.SessionWorking:
		return m.openSession(s.Name)
	case waha.SessionScanQR, waha.SessionStarting:
		if m.scheduler != nil {
			m.scheduler.Stop()
		}
		m.store.SetSession(s.Name)
		m.store.SetPairingCode("")
		// Drops the code of any previous pairing and shows the QR view.
		m.store.SetQR(nil)
		m.sync()
		m.lastQRFetch = time.Now()
		m.lastPairCheck = time.Now()
		return showQRCmd(m.ctx, m.client, m.store, s.Name)
	default:
		m.setFlash("Session "+s.Name+" is "+s.Status, s.Status == waha.SessionFailed)
		return nil
	}
}

// openSession makes name the active session and starts background sync.
func (m *Model) openSession(name string) tea.Cmd {
	m.store.SetSession(name)
	m.store.SetView(state.ViewChats)
	if m.scheduler != nil {
		m.scheduler.Start(m.ctx, name)
	}
	m.chatIdx, m.chatOffset, m.selectedChat = 0, 0, ""
	m.sync()
	return loadChatsCmd(m.ctx, m.client, m.store, name)
}

func (m *Model) openChat(chatID string) tea.Cmd {
	m.selectedChat = chatID
	m.followTail = true
	m.store.SetChat(chatID)
	m.sync()
	return loadMessagesCmd(m.ctx, m.client, m.store, m.snapshot.SessionID, chatID)
}

func (m Model) refresh() tea.Cmd {
	switch m.snapshot.View {
	case state.ViewSessions:
		return loadSessionsCmd(m.ctx, m.client, m.store)
	case state.ViewChats:
		if m.snapshot.SessionID != "" {
			return loadChatsCmd(m.ctx, m.client, m.store, m.snapshot.SessionID)
		}
	case state.ViewConversation:
		return loadMessagesCmd(m.ctx, m.client, m.store, m.snapshot.SessionID, m.snapshot.ChatID)
	case state.ViewSettings:
		return readLogCmd(m.config.LogFile, logTailLines)
	case state.ViewQR:
		if m.snapshot.SessionID != "" {
			return showQRCmd(m.ctx, m.client, m.store, m.snapshot.SessionID)
		}
	}
	return nil
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(uiTick)}

	if m.flash != "" && now.Sub(m.flashAt) > flashTTL {
		m.flash = ""
	}

	switch m.snapshot.View {
	case state.ViewSettings:
		cmds = append(cmds, readLogCmd(m.config.LogFile, logTailLines))
	case state.ViewQR:
		session := m.snapshot.SessionID
		if session == "" {
			break
		}
		if now.Sub(m.lastPairCheck) >= pairCheckEvery {
			m.lastPairCheck = now
			cmds = append(cmds, checkPairedCmd(m.ctx, m.client, m.store, session))
		}
		// WAHA rotates the code; keep the displayed one current. Until the
		// first code arrives, retry at the pairing check rate.
		every := qrRefreshEvery
		if len(m.snapshot.QR) == 0 {
			every = pairCheckEvery
		}
		if now.Sub(m.lastQRFetch) >= every {
			m.lastQRFetch = now
			cmds = append(cmds, showQRCmd(m.ctx, m.client, m.store, session))
		}
	}

	return m, tea.Batch(cmds...)
}

// sync pulls the latest state after a write made from a key handler, so the
// next frame does not wait for the store notification.
func (m *Model) sync() {
	m.applySnapshot(m.store.Read())
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap

	m.sessionIdx = clampInt(m.sessionIdx, 0, max(0, len(snap.Sessions)-1))
	m.sessionOffset = NextOffset(m.sessionIdx, m.sessionOffset, len(snap.Sessions), m.sessionCapacity())

	if snap.ChatID != "" {
		m.selectedChat = snap.ChatID
	}
	if m.selectedChat != "" {
		for i, chat := range snap.Chats {
			if chat.ID == m.selectedChat {
				m.chatIdx = i
				break
			}
		}
	}
	m.moveChat(m.chatIdx)

	m.refreshMessages()
}

func (m *Model) moveSession(idx int) {
	m.sessionIdx = clampInt(idx, 0, max(0, len(m.snapshot.Sessions)-1))
	m.sessionOffset = NextOffset(m.sessionIdx, m.sessionOffset, len(m.snapshot.Sessions), m.sessionCapacity())
}

func (m *Model) moveChat(idx int) {
	total := len(m.snapshot.Chats)
	m.chatIdx = clampInt(idx, 0, max(0, total-1))
	if total > 0 {
		m.selectedChat = m.snapshot.Chats[m.chatIdx].ID
	}
	m.chatOffset = NextOffset(m.chatIdx, m.chatOffset, total, m.chatCapacity())
}

// homeView is where esc from settings lands.
func (m Model) homeView() state.View {
	if m.snapshot.SessionID != "" {
		return state.ViewChats
	}
	return state.ViewSessions
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = text
	m.flashIsError = isError
	m.flashAt = time.Now()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

// Run starts the Bubble Tea program and blocks until it exits. Store writes
// are forwarded to the program as they happen.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
		opts.Context = ctx
	}
	if opts.Store == nil {
		opts.Store = state.New()
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	trigger := newRenderTrigger()
	unsubscribe := opts.Store.Subscribe(trigger.listen)
	defer unsubscribe()

	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	go trigger.run(pumpCtx, p.Send)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
