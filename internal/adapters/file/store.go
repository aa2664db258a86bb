package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
)

// Store implements ports.SnapshotStore using the local filesystem.
// Each diagram is one JSON file in a configured directory, plus one
// file per auxiliary key under <id>.<key>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".flume/diagrams".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".flume", "diagrams")
	}
	return &Store{BasePath: basePath}
}

// Save persists the diagram snapshot to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, diagramID string, state *domain.DiagramState) error {
	if diagramID == "" {
		return fmt.Errorf("diagramID cannot be empty")
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return s.writeAtomic(diagramID+".json", data)
}

func (s *Store) writeAtomic(name string, data []byte) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure diagram directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, name)

	// Temp file lives in the same directory so the rename stays on one
	// filesystem (required for atomicity).
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // Remove if still exists (not renamed)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists, so remove it first.
	// The delete+rename window is acceptable for CLI usage compared to
	// a partial write.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing snapshot for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to snapshot: %w", err)
	}

	return nil
}

// Load retrieves the diagram snapshot from a JSON file. Unknown fields
// in the file are ignored and missing ones fall back to defaults.
func (s *Store) Load(ctx context.Context, diagramID string) (*domain.DiagramState, error) {
	if diagramID == "" {
		return nil, fmt.Errorf("diagramID cannot be empty")
	}

	filePath := filepath.Join(s.BasePath, diagramID+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var state domain.DiagramState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	state.EnsureDefaults()

	return &state, nil
}

// Delete removes the snapshot file and every auxiliary file for the ID.
func (s *Store) Delete(ctx context.Context, diagramID string) error {
	if diagramID == "" {
		return fmt.Errorf("diagramID cannot be empty")
	}

	paths := []string{filepath.Join(s.BasePath, diagramID+".json")}
	for _, key := range ports.AuxKeys {
		paths = append(paths, s.auxPath(diagramID, key))
	}

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete snapshot file: %w", err)
		}
	}

	return nil
}

// List returns all persisted diagram IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id := name[:len(name)-len(".json")]
		// Auxiliary files are <id>.<key>.json; skip them.
		if isAuxName(id) {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// SaveAux persists one auxiliary entry next to the snapshot.
func (s *Store) SaveAux(ctx context.Context, diagramID, key string, value []byte) error {
	if diagramID == "" {
		return fmt.Errorf("diagramID cannot be empty")
	}
	return s.writeAtomic(diagramID+"."+key+".json", value)
}

// LoadAux retrieves one auxiliary entry. A missing entry returns
// ErrSnapshotNotFound.
func (s *Store) LoadAux(ctx context.Context, diagramID, key string) ([]byte, error) {
	data, err := os.ReadFile(s.auxPath(diagramID, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read aux file: %w", err)
	}
	return data, nil
}

func (s *Store) auxPath(diagramID, key string) string {
	return filepath.Join(s.BasePath, diagramID+"."+key+".json")
}

func isAuxName(trimmed string) bool {
	for _, key := range ports.AuxKeys {
		if strings.HasSuffix(trimmed, "."+key) {
			return true
		}
	}
	return false
}
