// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const snapshotKeyPrefix = "snapshot:"

// SnapshotStore keeps the last successful result per key so a failing
// upstream can be served stale instead of blank.
type SnapshotStore interface {
	// Save records v as the latest good value for key.
	Save(ctx context.Context, key string, v any) error
	// Load decodes the latest value for key into out and returns when it
	// was saved. ok is false when nothing is stored.
	Load(ctx context.Context, key string, out any) (savedAt time.Time, ok bool, err error)
	Close() error
}

type snapshotEnvelope struct {
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

func encodeSnapshot(v any, now time.Time) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return json.Marshal(snapshotEnvelope{SavedAt: now.UTC(), Data: data})
}

func decodeSnapshot(raw []byte, out any) (time.Time, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return time.Time{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return time.Time{}, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return env.SavedAt, nil
}

// BadgerSnapshotStore persists snapshots in BadgerDB so they survive restarts.
type BadgerSnapshotStore struct {
	db *badger.DB
}

// OpenBadgerSnapshotStore opens a BadgerDB at path. An empty path opens
// an in-memory database.
func OpenBadgerSnapshotStore(path string) (*BadgerSnapshotStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshots: %w", err)
	}
	return &BadgerSnapshotStore{db: db}, nil
}

// Save stores v under key.
func (s *BadgerSnapshotStore) Save(_ context.Context, key string, v any) error {
	data, err := encodeSnapshot(v, time.Now())
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(snapshotKeyPrefix+key), data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		return nil
	})
}

// Load reads the snapshot for key into out.
func (s *BadgerSnapshotStore) Load(_ context.Context, key string, out any) (time.Time, bool, error) {
	var savedAt time.Time
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var derr error
			savedAt, derr = decodeSnapshot(val, out)
			return derr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return savedAt, true, nil
}

// Close closes the database.
func (s *BadgerSnapshotStore) Close() error {
	return s.db.Close()
}

// MemorySnapshotStore is a SnapshotStore for tests and ephemeral runs.
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{items: make(map[string][]byte)}
}

// Save stores v under key.
func (s *MemorySnapshotStore) Save(_ context.Context, key string, v any) error {
	data, err := encodeSnapshot(v, time.Now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[key] = data
	s.mu.Unlock()
	return nil
}

// Load reads the snapshot for key into out.
func (s *MemorySnapshotStore) Load(_ context.Context, key string, out any) (time.Time, bool, error) {
	s.mu.RLock()
	raw, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, false, nil
	}
	savedAt, err := decodeSnapshot(raw, out)
	if err != nil {
		return time.Time{}, false, err
	}
	return savedAt, true, nil
}

// Close is a no-op.
func (s *MemorySnapshotStore) Close() error { return nil }
