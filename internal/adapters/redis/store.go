package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.SnapshotStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for snapshots.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for snapshots.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "flume:diagram:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(diagramID string) string {
	return s.prefix + diagramID
}

func (s *Store) auxKey(diagramID, key string) string {
	return s.prefix + diagramID + ":aux:" + key
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the snapshot to Redis. The snapshot JSON and an index
// ZSET entry are written in one pipeline.
func (s *Store) Save(ctx context.Context, diagramID string, state *domain.DiagramState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.Pipeline()

	pipe.Set(ctx, s.key(diagramID), data, s.ttl)

	// Index score is the expiry time, or far-future when no TTL is set,
	// so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: diagramID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the snapshot from Redis. Fields missing from older
// payloads fall back to defaults.
func (s *Store) Load(ctx context.Context, diagramID string) (*domain.DiagramState, error) {
	val, err := s.client.Get(ctx, s.key(diagramID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var state domain.DiagramState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	state.EnsureDefaults()

	return &state, nil
}

// Delete removes the snapshot, its auxiliary entries, and its index
// membership.
func (s *Store) Delete(ctx context.Context, diagramID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(diagramID))
	for _, key := range ports.AuxKeys {
		pipe.Del(ctx, s.auxKey(diagramID, key))
	}
	pipe.ZRem(ctx, s.indexKey(), diagramID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored diagram IDs. Expired index entries are pruned
// lazily before reading.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired diagrams: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}

	return ids, nil
}

// SaveAux stores one auxiliary entry, sharing the snapshot TTL.
func (s *Store) SaveAux(ctx context.Context, diagramID, key string, value []byte) error {
	if err := s.client.Set(ctx, s.auxKey(diagramID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save aux entry: %w", err)
	}
	return nil
}

// LoadAux retrieves one auxiliary entry.
func (s *Store) LoadAux(ctx context.Context, diagramID, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.auxKey(diagramID, key)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get aux entry: %w", err)
	}
	return val, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
