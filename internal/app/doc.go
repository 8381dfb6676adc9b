// Package app provides the orchestration layer for parley.
//
// # Overview
//
// This package wires together configuration, the WAHA client, the state
// store, the poller and the UI. It is the composition root: everything is
// built here and passed down explicitly.
//
// # Startup
//
//  1. Validate the configuration loaded by cmd/parley
//  2. Load UI preferences (theme, compact chat list)
//  3. Create the WAHA client and the shared state.Store
//  4. Ping the server (3 second timeout) and load the session list
//  5. Open the preferred session, or the first working one, and load its chats
//  6. Start the poller for that session and run the TUI until the user quits
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> waha.NewClient()   HTTP client
//	       ├─────> state.New()        Shared store
//	       ├─────> bootstrap()        Ping, sessions, initial chats
//	       ├─────> poller.New/Start   Background sync of the open session
//	       └─────> ui.Run()           TUI (blocks)
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration (missing URL or API key)
//   - Server unreachable or session list rejected at startup
//
// Recoverable errors (logged, shown in the status bar):
//   - Initial chat load failure
//   - Every poll or request after startup
//
// When no session is working yet, the UI starts on the session list so the
// user can pick one or link a new device.
package app
