package state

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/five82/parley/internal/waha"
)

// View identifies the screen currently shown.
type View int

const (
	ViewSessions View = iota
	ViewChats
	ViewConversation
	ViewSettings
	ViewQR
)

func (v View) String() string {
	switch v {
	case ViewSessions:
		return "sessions"
	case ViewChats:
		return "chats"
	case ViewConversation:
		return "conversation"
	case ViewSettings:
		return "settings"
	case ViewQR:
		return "qr"
	default:
		return "unknown"
	}
}

// ConnectionStatus describes the link to the WAHA server as last observed.
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (c ConnectionStatus) String() string {
	switch c {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is an independent copy of the application state.
type Snapshot struct {
	View      View
	SessionID string
	ChatID    string

	Sessions []waha.SessionSummary
	Chats    []waha.ChatSummary
	// Messages maps a chat id to its messages in arrival order.
	Messages map[string][]waha.Message

	Connection   ConnectionStatus
	ErrorMessage string

	Profile     *waha.Profile
	QR          [][]bool
	PairingCode string

	LastUpdated time.Time
}

// ChatMessages returns the messages of the selected chat.
func (s Snapshot) ChatMessages() []waha.Message {
	if s.ChatID == "" {
		return nil
	}
	return s.Messages[s.ChatID]
}

// Listener receives a snapshot after every committed write.
type Listener func(Snapshot)

type subscription struct {
	fn Listener
}

// Store is the single source of truth for application state. The zero value
// is ready to use.
type Store struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []*subscription

	// pending holds committed snapshots not yet delivered. Only the goroutine
	// that set delivering drains it, which keeps delivery in commit order and
	// lets a listener write back into the store without deadlocking.
	pending    []Snapshot
	delivering bool
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Read returns a copy of the current state.
func (s *Store) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// Write merges the set fields of p into the state and notifies subscribers.
func (s *Store) Write(p Partial) {
	s.commit(p.apply)
}

// Subscribe registers fn and returns a function removing exactly that
// registration. Calling the returned function more than once is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(candidate *subscription) bool {
				return candidate == sub
			})
		})
	}
}

func (s *Store) commit(mutate func(*Snapshot)) {
	s.mu.Lock()
	prevView := s.snapshot.View
	mutate(&s.snapshot)
	normalize(&s.snapshot, prevView)
	s.snapshot.LastUpdated = time.Now()
	s.pending = append(s.pending, s.snapshot.clone())
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	s.mu.Unlock()

	s.drain()
}

func (s *Store) drain() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.delivering = false
			s.pending = nil
			s.mu.Unlock()
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		snap := s.pending[0]
		s.pending[0] = Snapshot{}
		s.pending = s.pending[1:]
		listeners := slices.Clone(s.listeners)
		s.mu.Unlock()

		for i, sub := range listeners {
			if i == 0 {
				sub.fn(snap)
				continue
			}
			sub.fn(snap.clone())
		}
	}
}

// normalize keeps the selected chat and the view consistent: a selected chat
// implies the conversation view, and leaving that view drops the selection.
func normalize(snap *Snapshot, prevView View) {
	if snap.ChatID == "" {
		return
	}
	if prevView == ViewConversation && snap.View != ViewConversation {
		snap.ChatID = ""
		return
	}
	snap.View = ViewConversation
}

func (s Snapshot) clone() Snapshot {
	dup := s
	dup.Sessions = slices.Clone(s.Sessions)
	dup.Chats = cloneChats(s.Chats)
	dup.Messages = make(map[string][]waha.Message, len(s.Messages))
	for chatID, list := range s.Messages {
		dup.Messages[chatID] = slices.Clone(list)
	}
	if s.Profile != nil {
		profile := *s.Profile
		dup.Profile = &profile
	}
	dup.QR = cloneMatrix(s.QR)
	return dup
}

func cloneChats(chats []waha.ChatSummary) []waha.ChatSummary {
	if chats == nil {
		return nil
	}
	dup := make([]waha.ChatSummary, len(chats))
	for i, chat := range chats {
		if chat.LastMessage != nil {
			last := *chat.LastMessage
			chat.LastMessage = &last
		}
		dup[i] = chat
	}
	return dup
}

func cloneMatrix(matrix [][]bool) [][]bool {
	if matrix == nil {
		return nil
	}
	dup := make([][]bool, len(matrix))
	for i, row := range matrix {
		dup[i] = slices.Clone(row)
	}
	return dup
}

// SetView switches the visible screen.
func (s *Store) SetView(view View) {
	s.Write(Partial{View: Some(view)})
}

// SetSession records the active session. Switching sessions drops the chat
// list, the selection and the profile of the previous one.
func (s *Store) SetSession(sessionID string) {
	s.commit(func(snap *Snapshot) {
		if snap.SessionID == sessionID {
			return
		}
		snap.SessionID = sessionID
		snap.ChatID = ""
		snap.Chats = nil
		snap.Messages = nil
		snap.Profile = nil
		if snap.View == ViewConversation {
			snap.View = ViewChats
		}
	})
}

// SetChat selects a chat, moving to the conversation view. An empty chatID
// clears the selection and returns to the chat list.
func (s *Store) SetChat(chatID string) {
	view := ViewChats
	if chatID != "" {
		view = ViewConversation
	}
	s.Write(Partial{ChatID: Some(chatID), View: Some(view)})
}

// SetSessions replaces the session list.
func (s *Store) SetSessions(sessions []waha.SessionSummary) {
	s.Write(Partial{Sessions: Some(sessions)})
}

// SetChats replaces the chat list.
func (s *Store) SetChats(chats []waha.ChatSummary) {
	s.Write(Partial{Chats: Some(chats)})
}

// SetMessages replaces the messages of one chat, leaving other chats alone.
func (s *Store) SetMessages(chatID string, messages []waha.Message) {
	list := slices.Clone(messages)
	if list == nil {
		list = []waha.Message{}
	}
	s.commit(func(snap *Snapshot) {
		next := maps.Clone(snap.Messages)
		if next == nil {
			next = make(map[string][]waha.Message, 1)
		}
		next[chatID] = list
		snap.Messages = next
	})
}

// AppendMessage adds msg to the end of a chat. The chat gets a new slice;
// previously read lists and other chats' lists are never modified.
func (s *Store) AppendMessage(chatID string, msg waha.Message) {
	s.commit(func(snap *Snapshot) {
		existing := snap.Messages[chatID]
		list := make([]waha.Message, len(existing), len(existing)+1)
		copy(list, existing)
		list = append(list, msg)

		next := maps.Clone(snap.Messages)
		if next == nil {
			next = make(map[string][]waha.Message, 1)
		}
		next[chatID] = list
		snap.Messages = next
	})
}

// SetProfile records the logged in account.
func (s *Store) SetProfile(profile waha.Profile) {
	s.Write(Partial{Profile: Some(&profile)})
}

// SetQR stores the pairing QR matrix and shows it.
func (s *Store) SetQR(matrix [][]bool) {
	s.Write(Partial{QR: Some(matrix), View: Some(ViewQR)})
}

// SetPairingCode stores the phone pairing code.
func (s *Store) SetPairingCode(code string) {
	s.Write(Partial{PairingCode: Some(code)})
}

// SetConnection records the connection status. The error message is kept
// only for StatusError.
func (s *Store) SetConnection(status ConnectionStatus, errMsg string) {
	if status != StatusError {
		errMsg = ""
	}
	s.Write(Partial{Connection: Some(status), ErrorMessage: Some(errMsg)})
}
