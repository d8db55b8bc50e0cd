// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp

import (
	"reflect"

	"github.com/gomlx/fsdp/pkg/support/sets"
)

// ShardConfig holds the per-module sharding-engine options a wrap policy may
// override.
//
// The `option` tags define the recognized option keys a wrap predicate is
// allowed to return, see RecognizedConfigKeys.
type ShardConfig struct {
	// Mesh is the device mesh the module's parameters are sharded across.
	Mesh *Mesh `option:"mesh"`

	// ReshardAfterForward controls whether the full parameters gathered for
	// the forward pass are freed again before the backward pass.
	ReshardAfterForward bool `option:"reshard_after_forward"`

	// MixedPrecisionPolicy sets the compute/reduce dtypes used while the
	// module's parameters are unsharded.
	MixedPrecisionPolicy *MixedPrecision `option:"mixed_precision_policy"`

	// ShardPlacementFn optionally overrides which mesh axis a given
	// parameter is sharded along.
	ShardPlacementFn func(paramFQN string) string `option:"shard_placement_fn"`
}

// MixedPrecision names the dtypes used for compute and gradient reduction
// while a module is unsharded.
type MixedPrecision struct {
	ParamDType  string
	ReduceDType string
}

// RecognizedConfigKeys returns the set of option keys a wrap predicate may
// use, derived from the ShardConfig field tags.
func RecognizedConfigKeys() sets.Set[string] {
	cfgType := reflect.TypeOf(ShardConfig{})
	keys := sets.Make[string](cfgType.NumField())
	for ii := range cfgType.NumField() {
		if tag := cfgType.Field(ii).Tag.Get("option"); tag != "" {
			keys.Insert(tag)
		}
	}
	return keys
}
