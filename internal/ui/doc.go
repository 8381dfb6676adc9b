// Package ui provides the terminal user interface of parley.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds presentation state only
// (cursor positions, viewports, the prompt, the theme); everything the
// screens show comes from the latest state.Snapshot. Key handlers write
// navigation into the state store and kick off WAHA requests as tea.Cmds,
// and the poller writes fresh data in the background.
//
// # Package Structure
//
//   - app.go: Model, Update and key handling, Run
//   - commands.go: tea.Cmds that call the WAHA client and write the store
//   - trigger.go: forwards store notifications to the running program
//   - layout.go: pane sizes and the frame around the current view
//   - header.go, footer.go: status bar and per-view key hints
//   - sessions.go, chats.go, conversation.go, settings.go, qrview.go: views
//   - scroll.go: windowing for the session and chat lists
//   - keys.go, help.go, theme.go, strings.go: bindings, help overlay,
//     colors and text formatting
//
// # View Types
//
//   - Sessions: every WAHA session with its status; n creates one
//   - Chats: chat list of the active session, newest first
//   - Conversation: chat list beside the messages of the selected chat
//   - Settings: effective configuration and a tail of the debug log
//   - Link device: QR code or phone pairing code for a session that is not
//     linked yet; switches to Chats once pairing completes
//
// # Render Flow
//
//  1. Run subscribes a renderTrigger to the store and starts the program
//  2. Every committed write stores the newest snapshot and wakes the trigger
//  3. The trigger sends it as a snapshotMsg; Update copies it into the model
//  4. View renders header, current view and footer from that copy
//
// Listeners may run on the event loop goroutine itself (a key handler that
// writes to the store), so the trigger never calls program.Send from a
// listener.
package ui
