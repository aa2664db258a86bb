// Package domain defines the core entities of a flume diagram: nodes,
// links, customizations, labels, layout overrides, settings, and the
// DiagramState aggregate that snapshots all of them.
//
// The package holds data and invariants only. Behavior lives elsewhere:
// the codec in pkg/dsl, the analyzer in pkg/balance, and the command
// machinery in the engine. Cross-references between entities are always
// string node IDs into lookup maps, never direct pointers, so identity
// migrations are targeted map rewrites rather than graph traversals.
package domain
