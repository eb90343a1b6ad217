// Package transcript defines the entry model and sinks for relaying
// observed protocol events. The session lifecycle controller emits one
// entry per event it handles; sinks decide where those entries go (a
// channel for tests, a JSON line writer for the console, or nowhere).
package transcript
