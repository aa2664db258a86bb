// Package runtime is the command/history core of flume. It owns the
// canonical DiagramState, applies structural and text commands as
// atomic transitions, and maintains bounded undo/redo stacks of
// immutable snapshots.
//
// The three-stack history model (past, present, future) avoids
// per-command inverse bookkeeping at the cost of snapshot memory;
// the stack depth bound trades memory for history length.
package runtime
