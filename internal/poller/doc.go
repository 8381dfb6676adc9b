// Package poller keeps the state store in sync with the WAHA server.
//
// A Scheduler polls the chat list of the active session every few seconds
// and, while a conversation is open, that conversation's messages. The
// profile is fetched once per Start. Each target runs its own Idle/Fetching
// state machine: a tick that finds a fetch in flight is dropped, so a slow
// server never stacks up requests.
//
// Failed fetches are logged and leave the store untouched; the next tick
// retries. Results that arrive after Stop, or after a Start for another
// session, are discarded.
package poller
