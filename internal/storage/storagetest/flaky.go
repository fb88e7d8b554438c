// Package storagetest provides storage backends for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/rongwang/studyswap/internal/storage"
)

// FlakyBackend wraps a backend and fails writes on demand
type FlakyBackend struct {
	storage.Backend

	mu      sync.Mutex
	saveErr error
	saves   int
}

// NewFlakyBackend wraps an in-memory backend
func NewFlakyBackend() *FlakyBackend {
	return &FlakyBackend{Backend: storage.NewMemoryBackend()}
}

// FailSaves makes every following Save return err; nil restores normal writes
func (f *FlakyBackend) FailSaves(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

// Saves counts the successful Save calls
func (f *FlakyBackend) Saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *FlakyBackend) Save(ctx context.Context, entries ...storage.Entry) error {
	f.mu.Lock()
	err := f.saveErr
	f.mu.Unlock()
	if err != nil {
		return err
	}

	if err := f.Backend.Save(ctx, entries...); err != nil {
		return err
	}

	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	return nil
}

// Raw stores bytes directly, bypassing JSON encoding
func (f *FlakyBackend) Raw(ctx context.Context, key string, data []byte) error {
	return f.Backend.Save(ctx, storage.Entry{Key: key, Data: data})
}
