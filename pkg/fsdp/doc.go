// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsdp provides correctness-preserving analyses for sharding a model's
// parameters across devices under a fully-sharded data-parallel strategy.
//
// The sharding engine itself (the mechanism that actually partitions tensors
// across devices) is an external collaborator: this package only checks that a
// model is safe to hand to it, and repairs the bookkeeping around it.
//
// Four analyses over an nn.Module tree:
//
//   - ValidateParamSharing: no parameter may be reachable from both a
//     to-be-sharded module and a disjoint sibling.
//   - SplitStandaloneAndTied: partitions candidate modules into independently
//     shardable ones and ones with tied parameters that must be grouped.
//   - CheckParamTying: wraps the sharding transformation and fails if it
//     silently changed any parameter-tying relationship.
//   - RebindOptimizer: rewrites an optimizer's parameter groups to reference
//     the post-sharding parameter objects, matched by name.
//
// Plus GeneratePolicy, which produces the per-module wrap decision function
// the engine's policy hook consumes.
//
// All analyses are synchronous, in-memory and free of side effects except the
// two explicitly mutating steps: the transformation wrapped by
// CheckParamTying (caller-supplied, opaque) and RebindOptimizer's atomic
// parameter-group swap.
package fsdp
