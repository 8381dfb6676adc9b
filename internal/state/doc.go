// Package state provides the single source of truth for parley's UI state.
//
// # Overview
//
// Store holds everything the terminal display shows: the current view, the
// selected session and chat, the session and chat lists, per-chat messages,
// the connection status, the logged in profile and the pairing QR matrix.
// The background scheduler writes into it, key handlers write into it, and
// the UI re-renders from the snapshots it publishes.
//
// # Architecture
//
//	Producers:                         Consumers:
//	┌──────────────────┐              ┌──────────────────────┐
//	│ poller.Scheduler │──Write()───→ │ Subscribe(listener)  │
//	│ ui key handlers  │              │   └─> program.Send() │
//	│ app.Run bootstrap│              │ Read() (any time)    │
//	└──────────────────┘              └──────────────────────┘
//
// # Core Types
//
// Snapshot:
//   - Independent deep copy of the state returned by Read and handed to
//     listeners; mutating it never reaches the store
//
// Partial:
//   - The fields a Write replaces, each wrapped in Opt so "unset" and
//     "set to empty" stay distinct
//
// Store:
//   - Read, Write, Subscribe plus derived setters (SetView, SetChat,
//     SetChats, SetMessages, AppendMessage, ...)
//
// # Write Semantics
//
// Write merges the set fields of a Partial into the state, last write wins
// per field. The commit happens under the store mutex; listeners run after
// the mutex is released. Two rules are enforced on every commit:
//
//   - a selected chat implies ViewConversation
//   - leaving ViewConversation clears the selected chat
//
// SetMessages and AppendMessage are copy-on-write: the affected chat gets a
// new slice and a new map, so lists handed out earlier are never changed and
// other chats keep the exact same backing arrays.
//
// # Notification
//
// Each commit enqueues a snapshot. The goroutine that finds no delivery in
// progress drains the queue; every round invokes a copy of the listener list
// taken when the round starts, in registration order. Consequences:
//
//   - listeners observe writes in commit order, whatever goroutine produced them
//   - a listener subscribed or unsubscribed mid-round does not change that round
//   - a listener may call Write; the nested commit is delivered after the
//     current round instead of deadlocking
//
// The unsubscribe function returned by Subscribe removes exactly one
// registration and is idempotent.
//
// # Testing Considerations
//
// The zero Store is ready to use:
//
//	var s state.Store
//	unsubscribe := s.Subscribe(func(snap state.Snapshot) { ... })
//	defer unsubscribe()
//	s.SetChats(chats)
package state
