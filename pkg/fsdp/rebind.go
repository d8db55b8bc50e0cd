// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/gomlx/fsdp/pkg/optim"
	"github.com/gomlx/fsdp/pkg/support/sets"
	"github.com/gomlx/fsdp/pkg/support/xslices"
	"k8s.io/klog/v2"
)

// RebindFailureKind classifies why an optimizer parameter reference could not
// be resolved to a post-sharding parameter.
type RebindFailureKind int

//go:generate go tool enumer -type=RebindFailureKind -trimprefix=Rebind -output=gen_rebindfailurekind_enumer.go rebind.go

const (
	// RebindUnknownOptimizerParam: the reference is not in the
	// origParamToName map, which means the optimizer was constructed over a
	// different model instance than the one being sharded.
	RebindUnknownOptimizerParam RebindFailureKind = iota

	// RebindMissingShardedParam: the reference's name is absent from the
	// post-sharding model, which means sharding did not run or ran
	// incorrectly.
	RebindMissingShardedParam
)

// RebindFailure is one unresolvable optimizer parameter reference.
type RebindFailure struct {
	Kind RebindFailureKind

	// Ref identifies the offending reference: the parameter's pre-sharding
	// FQN when known, otherwise its object identity.
	Ref string
}

// RebindError aggregates every unresolvable reference found by
// RebindOptimizer: the caller sees the full scope of the problem at once, not
// one failure at a time.
type RebindError struct {
	// Failures is deduplicated and sorted by (Kind, Ref).
	Failures []RebindFailure
}

// Error implements the error interface.
func (e *RebindError) Error() string {
	refs := xslices.Map(e.Failures, func(f RebindFailure) string {
		return fmt.Sprintf("%s (%s)", f.Ref, f.Kind)
	})
	return fmt.Sprintf(
		"the same model must be passed to the optimizer and to the sharding call, but the following "+
			"parameters were not found in the sharded model: [%s]. "+
			"%q failures imply the optimizer holds a different model; "+
			"%q failures imply sharding has not been applied correctly",
		strings.Join(refs, ", "), RebindUnknownOptimizerParam, RebindMissingShardedParam)
}

// RebindOptimizer rewrites every parameter reference in the optimizer's
// parameter groups to the corresponding post-sharding parameter of model,
// matched by name.
//
// origParamToName maps each pre-sharding parameter object to its FQN; build
// it with nn.ParameterNames(model) before sharding, since identity is the
// only way to recover a name once the tree has been rewritten.
//
// The optimizer must not have taken any training step yet: rebinding
// per-parameter state (momentum buffers etc.) across a sharding transform is
// not supported. Non-empty state is cleared with a warning.
//
// The rewrite is atomic: either every reference resolves and the whole group
// list is replaced (preserving group order and hyperparameter overrides), or
// a *RebindError lists every unresolvable reference and the optimizer is left
// untouched. Tied parameters appearing in several groups are rebound to the
// same object in each; deduplication is deliberately not performed.
func RebindOptimizer(opt optim.Optimizer, model nn.Module, origParamToName map[*nn.Parameter]string) error {
	if opt.State().Len() > 0 {
		klog.Warning("sharding assumes the optimizer state is empty (i.e., training has not started), " +
			"but non-empty optimizer state was found; optimizer state will be cleared")
		opt.State().Clear()
	}

	nameToSharded := nn.NamedParameters(model)

	oldToNew := make(map[*nn.Parameter]*nn.Parameter)
	failures := sets.Make[RebindFailure]()
	for _, group := range opt.ParamGroups() {
		for _, param := range group.Params {
			// Names are stable across sharding, so the pre-sharding FQN
			// addresses the post-sharding parameter.
			name, known := origParamToName[param]
			switch {
			case !known:
				failures.Insert(RebindFailure{
					Kind: RebindUnknownOptimizerParam,
					Ref:  fmt.Sprintf("optimizer.param_id.%p", param),
				})
			case nameToSharded[name] == nil:
				failures.Insert(RebindFailure{
					Kind: RebindMissingShardedParam,
					Ref:  "model.param_name." + name,
				})
			default:
				oldToNew[param] = nameToSharded[name]
			}
		}
	}
	if len(failures) > 0 {
		sorted := failures.Keys()
		slices.SortFunc(sorted, func(a, b RebindFailure) int {
			if a.Kind != b.Kind {
				return int(a.Kind) - int(b.Kind)
			}
			return strings.Compare(a.Ref, b.Ref)
		})
		return &RebindError{Failures: sorted}
	}

	newGroups := xslices.Map(opt.ParamGroups(), func(group optim.ParamGroup) optim.ParamGroup {
		newGroup := group.Clone()
		for ii, param := range group.Params {
			newGroup.Params[ii] = oldToNew[param]
		}
		return newGroup
	})

	opt.ClearParamGroups()
	for _, group := range newGroups {
		opt.AddParamGroup(group)
	}
	return nil
}
