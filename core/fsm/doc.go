// Package fsm keeps the per-user conversation state (a state label plus a
// JSON data map) in a durable Store and serves reads from an in-memory
// cache that is refreshed from the store after every write.
package fsm
