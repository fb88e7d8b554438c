// Package storage persists JSON documents under string keys. The Adapter
// owns serialisation; a Backend only moves bytes.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned by a Backend when a key holds no value
var ErrNotFound = errors.New("key not found")

// Entry is one raw key/value pair handed to a Backend
type Entry struct {
	Key  string
	Data []byte
}

// Backend is a byte-level key/value store
type Backend interface {
	// Load returns ErrNotFound when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save writes every entry. Backends that support it apply the whole
	// batch atomically.
	Save(ctx context.Context, entries ...Entry) error

	// Remove deletes a key; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	Close() error
}

// KV is a value to be serialised under Key
type KV struct {
	Key   string
	Value any
}

// Adapter stores JSON-serialised values on top of a Backend
type Adapter struct {
	backend Backend
	logger  *slog.Logger
}

// NewAdapter creates an adapter over backend
func NewAdapter(backend Backend, logger *slog.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		logger:  logger,
	}
}

// Put serialises value and writes it under key, replacing any previous value
func (a *Adapter) Put(ctx context.Context, key string, value any) error {
	return a.PutAll(ctx, KV{Key: key, Value: value})
}

// PutAll serialises every value and writes them in one backend call
func (a *Adapter) PutAll(ctx context.Context, values ...KV) error {
	if len(values) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		data, err := json.Marshal(v.Value)
		if err != nil {
			return fmt.Errorf("error encoding %q: %w", v.Key, err)
		}
		entries = append(entries, Entry{Key: v.Key, Data: data})
	}

	if err := a.backend.Save(ctx, entries...); err != nil {
		return fmt.Errorf("error saving %d key(s): %w", len(entries), err)
	}
	return nil
}

// Get decodes the value stored under key into dst. It reports false, with
// no error, when the key is absent or its payload cannot be decoded.
func (a *Adapter) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := a.backend.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error loading %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		a.logger.WarnContext(ctx, "discarding unreadable payload", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// Delete removes key
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if err := a.backend.Remove(ctx, key); err != nil {
		return fmt.Errorf("error removing %q: %w", key, err)
	}
	return nil
}

// Close releases the backend
func (a *Adapter) Close() error {
	return a.backend.Close()
}
