// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp_test

import (
	"sync"
	"testing"

	"github.com/gomlx/fsdp/pkg/fsdp"
	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flaggedLinear carries the legacy per-module wrap flag.
type flaggedLinear struct {
	*nn.Linear
	wrap bool
}

func (f *flaggedLinear) FSDPWrap() bool { return f.wrap }

// predicateModel is a root model supplying its own wrap predicate.
type predicateModel struct {
	*nn.Container
	fn func(m nn.Module) any
}

func (p *predicateModel) FSDPWrapFn(m nn.Module) any { return p.fn(m) }

func mustDecide(t *testing.T, policy fsdp.Policy, m nn.Module) fsdp.WrapDecision {
	t.Helper()
	decision, err := policy(m)
	require.NoError(t, err)
	return decision
}

func TestGeneratePolicyDefaults(t *testing.T) {
	root, a, b, c := tiedModel()
	policy := fsdp.GeneratePolicy(root)

	// Without flags or predicate only the root wraps.
	assert.True(t, mustDecide(t, policy, root).Wrap)
	for _, m := range []nn.Module{a, b, c} {
		assert.False(t, mustDecide(t, policy, m).Wrap)
	}
}

func TestGeneratePolicyLegacyFlag(t *testing.T) {
	wrapped := &flaggedLinear{Linear: nn.NewLinear("wrapped", 2, 2), wrap: true}
	skipped := &flaggedLinear{Linear: nn.NewLinear("skipped", 2, 2), wrap: false}
	root := nn.NewContainer("root")
	root.AddChild("wrapped", wrapped).AddChild("skipped", skipped)

	var once sync.Once
	policy := fsdp.GeneratePolicy(root, fsdp.WithDeprecationOnce(&once))
	assert.True(t, mustDecide(t, policy, wrapped).Wrap)
	assert.False(t, mustDecide(t, policy, skipped).Wrap)
}

func TestGeneratePolicyLegacyFlagBeatsPredicate(t *testing.T) {
	flagged := &flaggedLinear{Linear: nn.NewLinear("flagged", 2, 2), wrap: false}
	root := &predicateModel{
		Container: nn.NewContainer("root"),
		fn:        func(nn.Module) any { return true },
	}
	root.AddChild("flagged", flagged)

	policy := fsdp.GeneratePolicy(root)
	assert.False(t, mustDecide(t, policy, flagged).Wrap)
}

func TestGeneratePolicyPredicate(t *testing.T) {
	block := nn.NewLinear("block", 2, 2)
	head := nn.NewLinear("head", 2, 2)
	root := &predicateModel{Container: nn.NewContainer("root")}
	root.AddChild("block", block).AddChild("head", head)
	root.fn = func(m nn.Module) any { return m == nn.Module(block) }

	policy := fsdp.GeneratePolicy(root)
	// The root always wraps, regardless of the predicate.
	assert.True(t, mustDecide(t, policy, root).Wrap)
	assert.True(t, mustDecide(t, policy, block).Wrap)
	assert.False(t, mustDecide(t, policy, head).Wrap)
}

func TestGeneratePolicyPredicateOptions(t *testing.T) {
	block := nn.NewLinear("block", 2, 2)
	root := &predicateModel{Container: nn.NewContainer("root")}
	root.AddChild("block", block)

	mesh, err := fsdp.NewMesh([]int{4}, []string{"shard"})
	require.NoError(t, err)
	options := map[string]any{
		"reshard_after_forward": false,
		"mesh":                  mesh,
	}
	root.fn = func(nn.Module) any { return options }

	policy := fsdp.GeneratePolicy(root)
	decision := mustDecide(t, policy, block)
	assert.True(t, decision.Wrap)
	assert.Equal(t, options, decision.Options)
}

func TestGeneratePolicyPredicateInvalidKeys(t *testing.T) {
	block := nn.NewLinear("block", 2, 2)
	root := &predicateModel{Container: nn.NewContainer("root")}
	root.AddChild("block", block)
	root.fn = func(nn.Module) any {
		return map[string]any{
			"reshard_after_forward": true,
			"zshard_weirdness":      1,
			"activation_ckpt":       true,
		}
	}

	policy := fsdp.GeneratePolicy(root)
	_, err := policy(block)
	require.Error(t, err)
	var cfgErr *fsdp.PolicyConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"activation_ckpt", "zshard_weirdness"}, cfgErr.InvalidKeys)
	assert.Equal(t, "block", cfgErr.Module)
	assert.Contains(t, cfgErr.ValidKeys, "reshard_after_forward")
}

func TestGeneratePolicyPredicateBadReturnType(t *testing.T) {
	block := nn.NewLinear("block", 2, 2)
	root := &predicateModel{Container: nn.NewContainer("root")}
	root.AddChild("block", block)
	root.fn = func(nn.Module) any { return 42 }

	policy := fsdp.GeneratePolicy(root)
	_, err := policy(block)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int")
}

func TestRecognizedConfigKeys(t *testing.T) {
	keys := fsdp.RecognizedConfigKeys()
	for _, key := range []string{"mesh", "reshard_after_forward", "mixed_precision_policy", "shard_placement_fn"} {
		assert.True(t, keys.Has(key), "missing key %q", key)
	}
	assert.Len(t, keys, 4)
}
