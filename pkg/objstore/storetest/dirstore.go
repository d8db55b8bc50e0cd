// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package storetest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomlx/fsdp/pkg/objstore"
	"github.com/gomlx/fsdp/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// DirStore is an objstore.Store backed by a local directory, one file per
// object. Like MemStore it is test scaffolding, not a production backend: it
// gives suites a store whose contents survive process boundaries and can be
// inspected with ordinary file tools.
type DirStore struct {
	root string
}

var _ objstore.Store = (*DirStore)(nil)

// NewDirStore creates a store rooted at dir ("~" is expanded), creating the
// directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	root, err := fsutil.ReplaceTildeInDir(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "NewDirStore(%q)", dir)
	}
	return &DirStore{root: root}, nil
}

// DirFactory returns an objstore.Factory creating stores rooted at dir.
func DirFactory(dir string) objstore.Factory {
	return func(_ context.Context) (objstore.Store, error) {
		return NewDirStore(dir)
	}
}

func (s *DirStore) path(remoteKey string) string {
	return filepath.Join(s.root, filepath.FromSlash(remoteKey))
}

// Upload implements objstore.Store.
func (s *DirStore) Upload(_ context.Context, localPath, remoteKey string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return errors.Wrapf(err, "DirStore.Upload(%q)", remoteKey)
	}
	target := s.path(remoteKey)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "DirStore.Upload(%q)", remoteKey)
	}
	return errors.Wrapf(os.WriteFile(target, data, 0o600), "DirStore.Upload(%q)", remoteKey)
}

// Download implements objstore.Store.
func (s *DirStore) Download(_ context.Context, remoteKey, localPath string) error {
	exists, err := fsutil.FileExists(s.path(remoteKey))
	if err != nil {
		return errors.Wrapf(err, "DirStore.Download(%q)", remoteKey)
	}
	if !exists {
		return errors.Wrapf(objstore.ErrNotFound, "DirStore.Download(%q)", remoteKey)
	}
	data, err := os.ReadFile(s.path(remoteKey))
	if err != nil {
		return errors.Wrapf(err, "DirStore.Download(%q)", remoteKey)
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return errors.Wrapf(err, "DirStore.Download(%q)", remoteKey)
	}
	return errors.Wrapf(os.WriteFile(localPath, data, 0o600), "DirStore.Download(%q)", remoteKey)
}

// Size implements objstore.Store.
func (s *DirStore) Size(_ context.Context, remoteKey string) (int64, error) {
	info, err := os.Stat(s.path(remoteKey))
	if errors.Is(err, os.ErrNotExist) {
		return 0, errors.Wrapf(objstore.ErrNotFound, "DirStore.Size(%q)", remoteKey)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "DirStore.Size(%q)", remoteKey)
	}
	return info.Size(), nil
}

// List implements objstore.Store.
func (s *DirStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "DirStore.List(%q)", prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete implements objstore.Store.
func (s *DirStore) Delete(_ context.Context, remoteKey string) error {
	err := os.Remove(s.path(remoteKey))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, "DirStore.Delete(%q)", remoteKey)
}

// Close implements objstore.Store.
func (s *DirStore) Close() error { return nil }
