// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp

import (
	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/gomlx/fsdp/pkg/support/sets"
	"github.com/pkg/errors"
)

// ValidateParamSharing checks that no parameter reachable from a module
// outside toShard is also reachable from a module inside toShard.
//
// Sharding a module while a sibling outside the sharded set still references
// one of its parameters leaves that sibling holding a stale unsharded tensor,
// and the engine fails later with a misleading error. Either remove the
// sharing, or include every module that shares parameters in toShard.
//
// The traversal does not descend into the toShard subtrees themselves and
// visits every other module at most once, so trees with shared (re-parented)
// submodules are handled. Read-only: passes by returning nil, fails with an
// error naming the offending module.
func ValidateParamSharing(root nn.Module, toShard []nn.Module) error {
	shardParams := sets.Make[*nn.Parameter]()
	for _, m := range toShard {
		shardParams.Insert(nn.Parameters(m)...)
	}
	shardSet := sets.MakeWith(toShard...)

	visited := sets.Make[nn.Module]()
	var check func(m nn.Module) error
	check = func(m nn.Module) error {
		if shardSet.Has(m) || visited.Has(m) {
			return nil
		}
		visited.Insert(m)
		for _, param := range nn.OwnParameters(m) {
			if shardParams.Has(param) {
				return errors.Errorf(
					"parameter sharing detected between modules to be sharded and module %q: "+
						"either ensure no parameter sharing exists or include all modules with "+
						"shared parameters in the modules to shard", m.Name())
			}
		}
		for _, child := range nn.Children(m) {
			if err := check(child); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root)
}
