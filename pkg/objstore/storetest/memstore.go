// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package storetest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gomlx/fsdp/pkg/objstore"
	"github.com/pkg/errors"
)

// MemStore is an in-memory objstore.Store. It exists to test the conformance
// suite itself and to stand in for a remote backend in higher-level tests; it
// is not a production backend.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ objstore.Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// MemFactory is an objstore.Factory creating a fresh MemStore.
func MemFactory(_ context.Context) (objstore.Store, error) {
	return NewMemStore(), nil
}

// Upload implements objstore.Store.
func (s *MemStore) Upload(_ context.Context, localPath, remoteKey string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return errors.Wrapf(err, "MemStore.Upload(%q)", remoteKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[remoteKey] = data
	return nil
}

// Download implements objstore.Store.
func (s *MemStore) Download(_ context.Context, remoteKey, localPath string) error {
	s.mu.RLock()
	data, found := s.objects[remoteKey]
	s.mu.RUnlock()
	if !found {
		return errors.Wrapf(objstore.ErrNotFound, "MemStore.Download(%q)", remoteKey)
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return errors.Wrapf(err, "MemStore.Download(%q)", remoteKey)
	}
	return errors.Wrapf(os.WriteFile(localPath, data, 0o600), "MemStore.Download(%q)", remoteKey)
}

// Size implements objstore.Store.
func (s *MemStore) Size(_ context.Context, remoteKey string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, found := s.objects[remoteKey]
	if !found {
		return 0, errors.Wrapf(objstore.ErrNotFound, "MemStore.Size(%q)", remoteKey)
	}
	return int64(len(data)), nil
}

// List implements objstore.Store.
func (s *MemStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete implements objstore.Store.
func (s *MemStore) Delete(_ context.Context, remoteKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, remoteKey)
	return nil
}

// Close implements objstore.Store.
func (s *MemStore) Close() error { return nil }
