// Package expiry runs the background worker that waits for the earliest
// expiring alarm, claims it from the registry, and emits a firing event.
//
// The worker never holds the registry lock while waiting: it claims or
// computes a wait under the lock, releases it, then sleeps on a timer that
// the registry's wake channel can cut short when the earliest deadline
// changes. With an empty registry it falls back to a fixed idle poll.
package expiry
