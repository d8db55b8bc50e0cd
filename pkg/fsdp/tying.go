// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp

import (
	"fmt"
	"slices"

	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/gomlx/fsdp/pkg/support/sets"
	"k8s.io/klog/v2"
)

// SplitStandaloneAndTied partitions the candidate modules into those whose
// parameters are exclusively their own (safe to shard independently) and
// those that share ("tie") at least one parameter with another candidate.
//
// Standalone modules are returned in input order. Modules owning no
// parameters at all appear in neither output. Only cross-module sharing
// counts: a module referencing the same parameter several times internally is
// not tied with itself.
func SplitStandaloneAndTied(modules []nn.Module) (standalone []nn.Module, tied sets.Set[nn.Module]) {
	seenParams := sets.Make[*nn.Parameter]()
	tiedParams := sets.Make[*nn.Parameter]()
	for _, module := range modules {
		params := nn.Parameters(module)
		for _, param := range params {
			if seenParams.Has(param) {
				tiedParams.Insert(param)
			}
		}
		// seenParams is only updated at module granularity.
		seenParams.Insert(params...)
	}

	tied = sets.Make[nn.Module]()
	for _, module := range modules {
		for _, param := range nn.Parameters(module) {
			if tiedParams.Has(param) {
				tied.Insert(module)
				break
			}
		}
	}

	for _, module := range modules {
		if tied.Has(module) || len(nn.Parameters(module)) == 0 {
			continue
		}
		standalone = append(standalone, module)
	}
	return standalone, tied
}

// TyingConsistencyError reports that a transformation changed the model's
// parameter-tying relationships. It carries both canonicalized group
// snapshots for diffing.
type TyingConsistencyError struct {
	// Pre and Post are the tying groups before and after the transformation:
	// per distinct parameter the sorted list of its FQNs, groups sorted.
	Pre, Post [][]string

	// Cause is the error returned by the transformation itself, if any.
	Cause error
}

// Error implements the error interface.
func (e *TyingConsistencyError) Error() string {
	msg := fmt.Sprintf("parameter tying relationship changed during the transformation:\n"+
		"\tpre-shard tying groups: %v\n\tpost-shard tying groups: %v", e.Pre, e.Post)
	if e.Cause != nil {
		msg += fmt.Sprintf("\ntransformation also failed with: %v", e.Cause)
	}
	return msg
}

// Unwrap returns the transformation's own error, if it failed too.
func (e *TyingConsistencyError) Unwrap() error { return e.Cause }

// tyingGroups computes the canonical tying groups of the model: one group of
// FQNs per distinct parameter object, FQNs sorted within each group and the
// groups sorted among themselves, so two snapshots compare
// order-independently.
func tyingGroups(root nn.Module) [][]string {
	fqns := nn.ParamToFQNs(root)
	groups := make([][]string, 0, len(fqns))
	for _, group := range fqns {
		groups = append(groups, sets.Sorted(group))
	}
	slices.SortFunc(groups, slices.Compare)
	return groups
}

// CheckParamTying runs transform and verifies it did not change any
// parameter-tying relationship of the model: the set of FQNs aliasing each
// distinct parameter object must be identical before and after.
//
// The post-check runs on every exit path. If the transformation panics, the
// comparison still runs (a detected break is logged) and the panic is then
// propagated unchanged. If the transformation returns an error and tying also
// broke, the returned *TyingConsistencyError wraps it.
//
// This is a correctness oracle, not a repair mechanism: a failure indicates a
// bug in the transformation and is never fixed up.
func CheckParamTying(root nn.Module, transform func() error) (err error) {
	pre := tyingGroups(root)
	defer func() {
		post := tyingGroups(root)
		if slices.EqualFunc(pre, post, slices.Equal) {
			return
		}
		cErr := &TyingConsistencyError{Pre: pre, Post: post}
		if p := recover(); p != nil {
			klog.Errorf("%v", cErr)
			panic(p)
		}
		cErr.Cause = err
		err = cErr
	}()
	err = transform()
	return
}
