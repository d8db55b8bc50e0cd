// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package storetest is the conformance suite for objstore.Store backends.
//
// A backend's tests hand their factory to Run, which exercises the whole
// Store contract (round trips, listing, deletion, missing-key errors,
// concurrent reads) against a scratch key space. Backends that need
// credentials or a live endpoint guard themselves with RequireEnv so the
// suite skips instead of failing on machines without access.
package storetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gomlx/fsdp/pkg/objstore"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireEnv skips the test unless all the given environment variables are
// set. Remote backends use it to gate themselves on credentials.
func RequireEnv(t *testing.T, vars ...string) {
	t.Helper()
	for _, v := range vars {
		if os.Getenv(v) == "" {
			t.Skipf("environment variable %s not set", v)
		}
	}
}

// writeScratchFile creates a file with the given contents under the test's
// temp dir and returns its path.
func writeScratchFile(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), uuid.NewString())
	require.NoError(t, os.WriteFile(path, contents, 0o600))
	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// Run exercises the full objstore.Store contract against a store created by
// factory. Every test uses a fresh uuid-derived key space, so the suite is
// safe to run against shared live backends.
func Run(t *testing.T, factory objstore.Factory) {
	ctx := context.Background()
	store, err := factory(ctx)
	require.NoError(t, err, "factory failed to create store")
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	scratch := "storetest-" + uuid.NewString()
	key := func(parts ...string) string {
		k := scratch
		for _, p := range parts {
			k += "/" + p
		}
		return k
	}

	t.Run("UploadDownloadRoundTrip", func(t *testing.T) {
		contents := []byte("round trip " + uuid.NewString())
		local := writeScratchFile(t, contents)
		require.NoError(t, store.Upload(ctx, local, key("roundtrip")))

		downloaded := filepath.Join(t.TempDir(), "sub", "dir", "object")
		require.NoError(t, store.Download(ctx, key("roundtrip"), downloaded))
		assert.Equal(t, contents, readFile(t, downloaded))
	})

	t.Run("Size", func(t *testing.T) {
		contents := []byte("0123456789")
		local := writeScratchFile(t, contents)
		require.NoError(t, store.Upload(ctx, local, key("sized")))
		size, err := store.Size(ctx, key("sized"))
		require.NoError(t, err)
		assert.Equal(t, int64(len(contents)), size)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, writeScratchFile(t, []byte("first")), key("overwritten")))
		require.NoError(t, store.Upload(ctx, writeScratchFile(t, []byte("second")), key("overwritten")))
		downloaded := filepath.Join(t.TempDir(), "object")
		require.NoError(t, store.Download(ctx, key("overwritten"), downloaded))
		assert.Equal(t, []byte("second"), readFile(t, downloaded))
	})

	t.Run("ListPrefix", func(t *testing.T) {
		for _, name := range []string{"list/a", "list/b", "other/c"} {
			require.NoError(t, store.Upload(ctx, writeScratchFile(t, []byte(name)), key(name)))
		}
		keys, err := store.List(ctx, key("list"))
		require.NoError(t, err)
		assert.Equal(t, []string{key("list/a"), key("list/b")}, keys)
	})

	t.Run("DownloadMissing", func(t *testing.T) {
		err := store.Download(ctx, key("never-uploaded"), filepath.Join(t.TempDir(), "object"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, objstore.ErrNotFound), "want ErrNotFound, got: %v", err)
	})

	t.Run("SizeMissing", func(t *testing.T) {
		_, err := store.Size(ctx, key("never-uploaded"))
		assert.True(t, errors.Is(err, objstore.ErrNotFound), "want ErrNotFound, got: %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, writeScratchFile(t, []byte("doomed")), key("doomed")))
		require.NoError(t, store.Delete(ctx, key("doomed")))
		_, err := store.Size(ctx, key("doomed"))
		assert.True(t, errors.Is(err, objstore.ErrNotFound), "want ErrNotFound, got: %v", err)
		// Deleting a missing object is not an error.
		assert.NoError(t, store.Delete(ctx, key("doomed")))
	})

	t.Run("ConcurrentReads", func(t *testing.T) {
		contents := []byte("shared contents")
		require.NoError(t, store.Upload(ctx, writeScratchFile(t, contents), key("concurrent")))

		const numReaders = 8
		var wg sync.WaitGroup
		errs := make([]error, numReaders)
		paths := make([]string, numReaders)
		for ii := range numReaders {
			paths[ii] = filepath.Join(t.TempDir(), fmt.Sprintf("reader%d", ii))
		}
		for ii := range numReaders {
			wg.Add(1)
			go func(ii int) {
				defer wg.Done()
				errs[ii] = store.Download(ctx, key("concurrent"), paths[ii])
			}(ii)
		}
		wg.Wait()
		for ii := range numReaders {
			require.NoError(t, errs[ii])
			assert.Equal(t, contents, readFile(t, paths[ii]))
		}
	})
}
