// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp_test

import (
	"testing"

	"github.com/gomlx/fsdp/pkg/fsdp"
	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStandaloneAndTied(t *testing.T) {
	_, a, b, c := tiedModel()

	standalone, tied := fsdp.SplitStandaloneAndTied([]nn.Module{a, b, c})
	assert.Equal(t, []nn.Module{c}, standalone)
	require.Len(t, tied, 2)
	assert.True(t, tied.Has(a))
	assert.True(t, tied.Has(b))
}

func TestSplitStandaloneAndTiedOrderAndEmptyModules(t *testing.T) {
	a := nn.NewLinear("a", 2, 2)
	b := nn.NewLinear("b", 2, 2)
	empty := nn.NewContainer("empty")

	standalone, tied := fsdp.SplitStandaloneAndTied([]nn.Module{b, empty, a})
	// Input order preserved, parameterless module in neither output.
	assert.Equal(t, []nn.Module{b, a}, standalone)
	assert.Empty(t, tied)
}

func TestSplitStandaloneAndTiedInternalRepeat(t *testing.T) {
	// A module referencing the same parameter twice internally is not tied
	// with itself.
	m := nn.NewContainer("m")
	shared := nn.NewParameter("weight", 2, 2)
	m.SetParameter("w1", shared)
	m.SetParameter("w2", shared)

	standalone, tied := fsdp.SplitStandaloneAndTied([]nn.Module{m})
	assert.Equal(t, []nn.Module{m}, standalone)
	assert.Empty(t, tied)
}

func TestSplitStandaloneAndTiedOnlyTiedParams(t *testing.T) {
	// middle's only parameter is tied to modules both earlier and later in
	// the candidate list: membership is binary, middle is tied, not counted.
	shared := nn.NewParameter("weight", 2, 2)
	first := nn.NewContainer("first").SetParameter("weight", shared)
	middle := nn.NewContainer("middle").SetParameter("weight", shared)
	last := nn.NewContainer("last").SetParameter("weight", shared)

	standalone, tied := fsdp.SplitStandaloneAndTied([]nn.Module{first, middle, last})
	assert.Empty(t, standalone)
	assert.Len(t, tied, 3)
}

func TestSplitStandaloneAndTiedIdempotent(t *testing.T) {
	_, a, b, c := tiedModel()
	candidates := []nn.Module{a, b, c}

	standalone1, tied1 := fsdp.SplitStandaloneAndTied(candidates)
	standalone2, tied2 := fsdp.SplitStandaloneAndTied(candidates)
	assert.Equal(t, standalone1, standalone2)
	assert.True(t, tied1.Equal(tied2))
}

func TestCheckParamTyingNoOp(t *testing.T) {
	root, _, _, _ := tiedModel()
	require.NoError(t, fsdp.CheckParamTying(root, func() error { return nil }))
}

func TestCheckParamTyingShardingPreservesTying(t *testing.T) {
	// Replacing every parameter while keeping the aliasing structure is
	// exactly what a correct sharding engine does; the guard accepts it.
	root, a, b, c := tiedModel()
	err := fsdp.CheckParamTying(root, func() error {
		shardedWeight := a.Weight.Shard(2)
		a.Weight = shardedWeight
		b.Weight = shardedWeight
		a.Bias = a.Bias.Shard(2)
		b.Bias = b.Bias.Shard(2)
		c.Weight = c.Weight.Shard(2)
		c.Bias = c.Bias.Shard(2)
		return nil
	})
	require.NoError(t, err)
}

func TestCheckParamTyingBreak(t *testing.T) {
	// Untying b.weight from a.weight changes the tied group's FQN set.
	root, _, b, _ := tiedModel()
	err := fsdp.CheckParamTying(root, func() error {
		b.Weight = nn.NewParameter("weight", 4, 4)
		return nil
	})
	require.Error(t, err)
	var tyingErr *fsdp.TyingConsistencyError
	require.ErrorAs(t, err, &tyingErr)
	assert.Contains(t, tyingErr.Pre, []string{"a.weight", "b.weight"})
	assert.NotContains(t, tyingErr.Post, []string{"a.weight", "b.weight"})
}

func TestCheckParamTyingTransformError(t *testing.T) {
	root, _, b, _ := tiedModel()

	// Transformation error with intact tying passes through untouched.
	failure := errors.New("engine exploded")
	err := fsdp.CheckParamTying(root, func() error { return failure })
	require.ErrorIs(t, err, failure)
	var tyingErr *fsdp.TyingConsistencyError
	assert.False(t, errors.As(err, &tyingErr))

	// Transformation error plus broken tying: the consistency error wins and
	// wraps the transformation's error.
	err = fsdp.CheckParamTying(root, func() error {
		b.Weight = nn.NewParameter("weight", 4, 4)
		return failure
	})
	require.ErrorAs(t, err, &tyingErr)
	assert.ErrorIs(t, err, failure)
}

func TestCheckParamTyingPanicPropagates(t *testing.T) {
	root, _, b, _ := tiedModel()
	assert.PanicsWithValue(t, "boom", func() {
		_ = fsdp.CheckParamTying(root, func() error {
			b.Weight = nn.NewParameter("weight", 4, 4)
			panic("boom")
		})
	})
}
