// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package objstore defines the pluggable remote-storage interface used to
// save and load training artifacts (checkpoints, traces) and a registry for
// backend implementations.
//
// Backend implementations (S3, GCS, SFTP, ...) live in their own modules and
// register themselves at init time; this package only defines the contract
// they implement. The storetest subpackage provides the conformance suite a
// backend's tests are expected to run.
package objstore

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotFound is wrapped by Store implementations when a remote key does not
// exist. Test for it with errors.Is.
var ErrNotFound = errors.New("object not found")

// Store is a remote object store holding named blobs.
//
// Remote keys are slash-separated paths; implementations must treat them as
// opaque beyond prefix matching in List. All methods take a context for
// cancellation since backends typically sit across a network.
type Store interface {
	// Upload copies the file at localPath to remoteKey, overwriting any
	// existing object.
	Upload(ctx context.Context, localPath, remoteKey string) error

	// Download copies the object at remoteKey to localPath, creating parent
	// directories as needed. Returns an error wrapping ErrNotFound if the
	// object does not exist.
	Download(ctx context.Context, remoteKey, localPath string) error

	// Size returns the object's size in bytes, or an error wrapping
	// ErrNotFound.
	Size(ctx context.Context, remoteKey string) (int64, error)

	// List returns the keys of all objects whose key starts with prefix, in
	// lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object at remoteKey. Deleting a missing object is
	// not an error.
	Delete(ctx context.Context, remoteKey string) error

	// Closer releases connections held by the backend.
	io.Closer
}

// Factory creates a fresh Store. Backends register one per scheme.
type Factory func(ctx context.Context) (Store, error)

var (
	registryMu sync.Mutex
	registry   = make(map[string]Factory)
)

// Register makes a backend factory available under the given scheme (e.g.
// "s3"). It is meant to be called from the backend's init function and
// returns an error if the scheme is already taken.
func Register(scheme string, factory Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		return errors.Errorf("objstore: Register(%q) with nil factory", scheme)
	}
	if _, found := registry[scheme]; found {
		return errors.Errorf("objstore: scheme %q registered twice", scheme)
	}
	registry[scheme] = factory
	return nil
}

// Lookup returns the factory registered for scheme.
func Lookup(scheme string) (Factory, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factory, found := registry[scheme]
	return factory, found
}

// Schemes returns the registered backend schemes, sorted.
func Schemes() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	schemes := make([]string, 0, len(registry))
	for scheme := range registry {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}
