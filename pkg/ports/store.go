package ports

import (
	"context"

	"github.com/aretw0/flume/pkg/domain"
)

// AuxKeys is the fixed set of auxiliary entries stored next to a
// diagram snapshot. ResetSession deletes these together with the
// snapshot itself.
var AuxKeys = []string{"recent_colors", "palettes", "templates"}

// SnapshotStore persists one DiagramState per diagram ID. Implementors
// must return domain.ErrSnapshotNotFound when the ID is unknown.
// Loading tolerates unknown fields and fills missing ones with
// defaults; the schema is additive and forward-compatible.
type SnapshotStore interface {
	// Save persists the snapshot for a diagram ID.
	Save(ctx context.Context, diagramID string, state *domain.DiagramState) error

	// Load retrieves the snapshot for a diagram ID.
	Load(ctx context.Context, diagramID string) (*domain.DiagramState, error)

	// Delete removes the snapshot and its auxiliary keys.
	Delete(ctx context.Context, diagramID string) error

	// List returns every persisted diagram ID.
	List(ctx context.Context) ([]string, error)
}

// AuxStore is an optional extension for stores that keep the auxiliary
// key-value entries (recent colors, custom palettes, templates).
type AuxStore interface {
	SaveAux(ctx context.Context, diagramID, key string, value []byte) error
	LoadAux(ctx context.Context, diagramID, key string) ([]byte, error)
}
