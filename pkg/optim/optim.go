// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package optim defines the optimizer bookkeeping abstraction consumed by the
// fsdp analyses, and a plain SGD implementation of it.
//
// An optimizer holds an ordered list of parameter groups (parameter
// references plus per-group hyperparameter overrides) and a per-parameter
// state store keyed by parameter identity. Both are exactly what
// fsdp.RebindOptimizer inspects and rewrites after a sharding
// transformation.
package optim

import (
	"github.com/gomlx/fsdp/pkg/nn"
	"golang.org/x/exp/maps"
)

// ParamGroup associates an ordered list of parameters with hyperparameter
// overrides that apply to them only.
//
// Options keys are optimizer-specific ("lr", "momentum", "weight_decay", ...);
// an absent key falls back to the optimizer's defaults.
type ParamGroup struct {
	Params  []*nn.Parameter
	Options map[string]any
}

// Clone returns a copy of the group sharing the Options map but with its own
// Params slice.
func (g ParamGroup) Clone() ParamGroup {
	params := make([]*nn.Parameter, len(g.Params))
	copy(params, g.Params)
	return ParamGroup{Params: params, Options: g.Options}
}

// Optimizer is the subset of an optimizer's surface the fsdp remapper needs:
// inspectable/clearable per-parameter state and replaceable parameter groups.
type Optimizer interface {
	// State returns the optimizer's per-parameter state store. Non-empty
	// state means training steps have already run.
	State() *State

	// ParamGroups returns the ordered parameter groups. The returned slice
	// is owned by the optimizer and must not be mutated by callers.
	ParamGroups() []ParamGroup

	// ClearParamGroups drops all parameter groups.
	ClearParamGroups()

	// AddParamGroup appends one parameter group.
	AddParamGroup(group ParamGroup)
}

// State is a per-parameter state store keyed by parameter identity
// (momentum buffers, moment estimates and the like).
type State struct {
	perParam map[*nn.Parameter]map[string]any
}

// NewState returns an empty state store.
func NewState() *State {
	return &State{perParam: make(map[*nn.Parameter]map[string]any)}
}

// Len returns the number of parameters with any state.
func (s *State) Len() int { return len(s.perParam) }

// Params returns the parameters holding state, in undefined order.
func (s *State) Params() []*nn.Parameter { return maps.Keys(s.perParam) }

// Get returns the state value stored for (param, key).
func (s *State) Get(param *nn.Parameter, key string) (value any, found bool) {
	entry, found := s.perParam[param]
	if !found {
		return nil, false
	}
	value, found = entry[key]
	return
}

// Set stores a state value for (param, key).
func (s *State) Set(param *nn.Parameter, key string, value any) {
	entry, found := s.perParam[param]
	if !found {
		entry = make(map[string]any)
		s.perParam[param] = entry
	}
	entry[key] = value
}

// Clear drops all per-parameter state.
func (s *State) Clear() {
	maps.Clear(s.perParam)
}
