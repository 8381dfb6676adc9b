package state

import (
	"github.com/five82/parley/internal/waha"
)

// Opt is an optional field of a Partial. The zero value is unset.
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a set Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// Partial lists the fields a Write replaces. Unset fields keep their value.
// Setting Messages replaces the whole map; use Store.SetMessages or
// Store.AppendMessage to touch a single chat.
type Partial struct {
	View      Opt[View]
	SessionID Opt[string]
	ChatID    Opt[string]

	Sessions Opt[[]waha.SessionSummary]
	Chats    Opt[[]waha.ChatSummary]
	Messages Opt[map[string][]waha.Message]

	Connection   Opt[ConnectionStatus]
	ErrorMessage Opt[string]

	Profile     Opt[*waha.Profile]
	QR          Opt[[][]bool]
	PairingCode Opt[string]
}

// apply merges p into snap. Collections are copied so the caller keeps no
// alias into canonical state.
func (p Partial) apply(snap *Snapshot) {
	if v, ok := p.View.Get(); ok {
		snap.View = v
	}
	if v, ok := p.SessionID.Get(); ok {
		snap.SessionID = v
	}
	if v, ok := p.ChatID.Get(); ok {
		snap.ChatID = v
	}
	if v, ok := p.Sessions.Get(); ok {
		snap.Sessions = append([]waha.SessionSummary(nil), v...)
	}
	if v, ok := p.Chats.Get(); ok {
		snap.Chats = cloneChats(v)
	}
	if v, ok := p.Messages.Get(); ok {
		next := make(map[string][]waha.Message, len(v))
		for chatID, list := range v {
			next[chatID] = append([]waha.Message{}, list...)
		}
		snap.Messages = next
	}
	if v, ok := p.Connection.Get(); ok {
		snap.Connection = v
	}
	if v, ok := p.ErrorMessage.Get(); ok {
		snap.ErrorMessage = v
	}
	if v, ok := p.Profile.Get(); ok {
		if v == nil {
			snap.Profile = nil
		} else {
			profile := *v
			snap.Profile = &profile
		}
	}
	if v, ok := p.QR.Get(); ok {
		snap.QR = cloneMatrix(v)
	}
	if v, ok := p.PairingCode.Get(); ok {
		snap.PairingCode = v
	}
}
