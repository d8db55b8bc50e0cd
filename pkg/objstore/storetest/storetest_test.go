// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package storetest_test

import (
	"context"
	"testing"

	"github.com/gomlx/fsdp/pkg/objstore/storetest"
	"github.com/stretchr/testify/require"
)

func TestMemStoreConformance(t *testing.T) {
	storetest.Run(t, storetest.MemFactory)
}

func TestRequireEnvSkips(t *testing.T) {
	t.Run("skipped", func(t *testing.T) {
		storetest.RequireEnv(t, "STORETEST_SURELY_UNSET_VARIABLE")
		t.Fatal("RequireEnv should have skipped this test")
	})
}

func TestMemStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	s1, err := storetest.MemFactory(ctx)
	require.NoError(t, err)
	s2, err := storetest.MemFactory(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, s1.Close())
		require.NoError(t, s2.Close())
	}()

	keys, err := s1.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, keys)
	keys, err = s2.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestDirStoreConformance(t *testing.T) {
	storetest.Run(t, storetest.DirFactory(t.TempDir()))
}
