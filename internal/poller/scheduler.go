package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/parley/internal/state"
	"github.com/five82/parley/internal/waha"
)

const (
	DefaultChatsInterval    = 3 * time.Second
	DefaultMessagesInterval = 2 * time.Second
)

// Target names a synchronized collection.
type Target string

const (
	TargetChats    Target = "chats"
	TargetMessages Target = "messages"
	TargetProfile  Target = "profile"
)

// Options configure a Scheduler.
type Options struct {
	ChatsInterval    time.Duration // zero uses DefaultChatsInterval
	MessagesInterval time.Duration // zero uses DefaultMessagesInterval
	Logger           *slog.Logger
}

// target is the Idle/Fetching state machine of one collection. true means
// Fetching.
type target struct {
	name     Target
	fetching atomic.Bool
}

// run holds everything one Start installs. Stop discards the run, so every
// target of the next run starts Idle and late completions of an old run can
// only touch that run's flags.
type run struct {
	generation uint64
	sessionID  string
	cancel     context.CancelFunc

	chats    target
	messages target
	profile  target
}

func (r *run) target(t Target) *target {
	switch t {
	case TargetChats:
		return &r.chats
	case TargetMessages:
		return &r.messages
	case TargetProfile:
		return &r.profile
	default:
		return nil
	}
}

// Scheduler refreshes chats and messages of the active session on fixed
// periods and fetches the profile once per Start.
type Scheduler struct {
	store   *state.Store
	fetcher waha.Fetcher
	logger  *slog.Logger

	chatsEvery    time.Duration
	messagesEvery time.Duration

	mu         sync.Mutex
	generation uint64
	active     *run
}

// New builds a Scheduler writing into store.
func New(store *state.Store, fetcher waha.Fetcher, opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	chatsEvery := opts.ChatsInterval
	if chatsEvery <= 0 {
		chatsEvery = DefaultChatsInterval
	}
	messagesEvery := opts.MessagesInterval
	if messagesEvery <= 0 {
		messagesEvery = DefaultMessagesInterval
	}
	return &Scheduler{
		store:         store,
		fetcher:       fetcher,
		logger:        logger.With("component", "poller"),
		chatsEvery:    chatsEvery,
		messagesEvery: messagesEvery,
	}
}

// Start tears down any running timers, then installs fresh ones for the
// periodic targets and issues the one-shot profile fetch. Timers also stop
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, sessionID string) {
	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.generation++
	r := &run{generation: s.generation, sessionID: sessionID, cancel: cancel}
	r.chats.name = TargetChats
	r.messages.name = TargetMessages
	r.profile.name = TargetProfile
	s.active = r
	s.mu.Unlock()

	s.logger.Info("starting scheduler", "session", sessionID, "generation", r.generation)

	go s.loop(runCtx, s.chatsEvery, func() { s.pollChats(runCtx, r) })
	go s.loop(runCtx, s.messagesEvery, func() { s.pollMessages(runCtx, r) })
	go s.fetchProfile(runCtx, r)
}

// Stop cancels all timers and resets every target to Idle. It does not wait
// for in-flight fetches; their results are discarded. Safe to call
// repeatedly.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	r := s.active
	s.active = nil
	s.mu.Unlock()

	if r == nil {
		return
	}
	r.cancel()
	s.logger.Info("stopped scheduler", "session", r.sessionID, "generation", r.generation)
}

// Session returns the session of the running scheduler, empty when stopped.
func (s *Scheduler) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.sessionID
}

// Fetching reports whether a fetch for t is in flight in the current run.
func (s *Scheduler) Fetching(t Target) bool {
	s.mu.Lock()
	r := s.active
	s.mu.Unlock()
	if r == nil {
		return false
	}
	tg := r.target(t)
	return tg != nil && tg.fetching.Load()
}

func (s *Scheduler) loop(ctx context.Context, every time.Duration, tick func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Ticks run on their own goroutine so a slow fetch never holds
			// up the ticker; overlapping ticks are dropped by begin.
			go tick()
		}
	}
}

func (s *Scheduler) current(r *run) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active == r
}

// begin moves t from Idle to Fetching. It reports false when a fetch is
// already in flight; the tick is then dropped, not queued.
func (s *Scheduler) begin(t *target) bool {
	if !t.fetching.CompareAndSwap(false, true) {
		s.logger.Debug("tick dropped, fetch in flight", "target", t.name)
		return false
	}
	return true
}

func (s *Scheduler) pollChats(ctx context.Context, r *run) {
	if !s.begin(&r.chats) {
		return
	}
	defer r.chats.fetching.Store(false)

	chats, err := s.fetcher.FetchChats(ctx, r.sessionID)
	if err != nil {
		s.logger.Debug("chats poll failed", "session", r.sessionID, "error", err)
		return
	}
	if !s.current(r) {
		s.logger.Debug("discarding stale chats", "generation", r.generation)
		return
	}
	s.store.SetChats(chats)
}

func (s *Scheduler) pollMessages(ctx context.Context, r *run) {
	snap := s.store.Read()
	if snap.ChatID == "" || snap.View != state.ViewConversation {
		return
	}
	chatID := snap.ChatID

	if !s.begin(&r.messages) {
		return
	}
	defer r.messages.fetching.Store(false)

	messages, err := s.fetcher.FetchMessages(ctx, r.sessionID, chatID)
	if err != nil {
		s.logger.Debug("messages poll failed", "session", r.sessionID, "chat", chatID, "error", err)
		return
	}
	if !s.current(r) {
		s.logger.Debug("discarding stale messages", "generation", r.generation)
		return
	}
	s.store.SetMessages(chatID, messages)
}

func (s *Scheduler) fetchProfile(ctx context.Context, r *run) {
	if !s.begin(&r.profile) {
		return
	}
	defer r.profile.fetching.Store(false)

	profile, err := s.fetcher.FetchProfile(ctx, r.sessionID)
	if err != nil {
		s.logger.Debug("profile fetch failed", "session", r.sessionID, "error", err)
		return
	}
	if !s.current(r) {
		return
	}
	s.store.SetProfile(profile)
	s.logger.Debug("fetched profile", "name", profile.Name, "id", profile.ID)
}
