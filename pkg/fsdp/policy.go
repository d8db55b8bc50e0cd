// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/gomlx/fsdp/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Policy is the sharding engine's policy hook: called once per module, it
// decides whether the module becomes an independent sharding boundary and
// with which option overrides.
type Policy func(m nn.Module) (WrapDecision, error)

// WrapDecision is one module's sharding-boundary decision.
type WrapDecision struct {
	Wrap bool

	// Options carries sharding-configuration overrides for this module, set
	// only when the root's wrap predicate returned an options mapping (which
	// implies Wrap). Keys are restricted to RecognizedConfigKeys.
	Options map[string]any
}

// WrapFlagged is the legacy per-module wrap flag. Deprecated in favor of a
// WrapPredicateProvider on the root model; when present it still wins over
// everything else, and the policy emits a one-time deprecation notice.
type WrapFlagged interface {
	FSDPWrap() bool
}

// WrapPredicateProvider is implemented by root models that supply their own
// per-module wrap predicate. The predicate returns either a bool or a
// sharding-configuration options map (map[string]any, keys restricted to
// RecognizedConfigKeys) which implies wrapping.
type WrapPredicateProvider interface {
	FSDPWrapFn(m nn.Module) any
}

// PolicyConfigError reports that a wrap predicate returned options with
// unrecognized keys.
type PolicyConfigError struct {
	// Module names the module the predicate was consulted for.
	Module string

	// InvalidKeys and ValidKeys are sorted.
	InvalidKeys []string
	ValidKeys   []string
}

// Error implements the error interface.
func (e *PolicyConfigError) Error() string {
	return fmt.Sprintf("invalid sharding-configuration keys %v returned by the wrap predicate for module %q, valid keys are %v",
		e.InvalidKeys, e.Module, e.ValidKeys)
}

// policyOptions collects GeneratePolicy options.
type policyOptions struct {
	deprecationOnce *sync.Once
}

// PolicyOption configures GeneratePolicy.
type PolicyOption func(*policyOptions)

// WithDeprecationOnce makes the generated policy share the given sync.Once
// for its legacy-flag deprecation notice, deduplicating the notice across
// several generated policies. By default each policy warns once on its own.
func WithDeprecationOnce(once *sync.Once) PolicyOption {
	return func(o *policyOptions) { o.deprecationOnce = once }
}

// GeneratePolicy produces the default wrap policy for the given root model.
//
// Decision precedence, evaluated per module:
//
//  1. The module's legacy WrapFlagged flag, if implemented, wins (and emits a
//     one-time deprecation notice).
//  2. Otherwise, if root implements WrapPredicateProvider, its predicate is
//     consulted; the root itself always wraps regardless of the predicate's
//     answer. A predicate may return an options map instead of a bool, whose
//     keys must be a subset of RecognizedConfigKeys; unrecognized keys fail
//     with a *PolicyConfigError.
//  3. Otherwise the root wraps and every other module does not.
func GeneratePolicy(root nn.Module, opts ...PolicyOption) Policy {
	options := policyOptions{deprecationOnce: new(sync.Once)}
	for _, opt := range opts {
		opt(&options)
	}
	validKeys := RecognizedConfigKeys()

	return func(m nn.Module) (WrapDecision, error) {
		if flagged, ok := m.(WrapFlagged); ok {
			options.deprecationOnce.Do(func() {
				klog.Warning("the FSDPWrap module flag is deprecated and will be removed in a future release; " +
					"implement FSDPWrapFn on the root model instead")
			})
			return WrapDecision{Wrap: flagged.FSDPWrap()}, nil
		}

		if provider, ok := root.(WrapPredicateProvider); ok {
			// The predicate usually wraps submodules (e.g. all transformer
			// blocks); in that setup the root model should wrap too, so it is
			// not consulted.
			if m == root {
				return WrapDecision{Wrap: true}, nil
			}
			switch ret := provider.FSDPWrapFn(m).(type) {
			case bool:
				return WrapDecision{Wrap: ret}, nil
			case map[string]any:
				var invalid []string
				for key := range ret {
					if !validKeys.Has(key) {
						invalid = append(invalid, key)
					}
				}
				if len(invalid) > 0 {
					slices.Sort(invalid)
					return WrapDecision{}, &PolicyConfigError{
						Module:      m.Name(),
						InvalidKeys: invalid,
						ValidKeys:   sets.Sorted(validKeys),
					}
				}
				return WrapDecision{Wrap: true, Options: ret}, nil
			default:
				return WrapDecision{}, errors.Errorf(
					"wrap predicate for module %q returned %T, want bool or map[string]any with keys in %v",
					m.Name(), ret, sets.Sorted(validKeys))
			}
		}

		return WrapDecision{Wrap: m == root}, nil
	}
}
