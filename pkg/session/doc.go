// Package session coordinates concurrent access to many diagrams. It
// keeps one live engine per open diagram, serializes edits with local
// and optionally distributed locks, and autosaves snapshots to a
// pluggable store.
package session
