// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package optim

import (
	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/pkg/errors"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum velocities live in the per-parameter state store, so a freshly
// constructed SGD has empty state until the first Step.
type SGD struct {
	lr, momentum float64

	state  *State
	groups []ParamGroup
}

var _ Optimizer = (*SGD)(nil)

// NewSGD creates an SGD optimizer over the given parameters, which form its
// initial (only) parameter group. Extra groups with their own hyperparameter
// overrides can be added with AddParamGroup.
func NewSGD(params []*nn.Parameter, lr, momentum float64) *SGD {
	opt := &SGD{
		lr:       lr,
		momentum: momentum,
		state:    NewState(),
	}
	opt.AddParamGroup(ParamGroup{Params: params})
	return opt
}

// State implements Optimizer.
func (o *SGD) State() *State { return o.state }

// ParamGroups implements Optimizer.
func (o *SGD) ParamGroups() []ParamGroup { return o.groups }

// ClearParamGroups implements Optimizer.
func (o *SGD) ClearParamGroups() { o.groups = nil }

// AddParamGroup implements Optimizer.
func (o *SGD) AddParamGroup(group ParamGroup) {
	o.groups = append(o.groups, group)
}

// groupHyperparam resolves a float64 hyperparameter for a group, falling back
// to the optimizer default.
func groupHyperparam(group ParamGroup, key string, fallback float64) float64 {
	if v, found := group.Options[key]; found {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return fallback
}

// Step applies one update using the given per-parameter gradients.
// Parameters without a gradient are skipped.
func (o *SGD) Step(grads map[*nn.Parameter][]float32) error {
	for _, group := range o.groups {
		lr := groupHyperparam(group, "lr", o.lr)
		momentum := groupHyperparam(group, "momentum", o.momentum)
		for _, param := range group.Params {
			grad, found := grads[param]
			if !found {
				continue
			}
			value := param.Value()
			if len(grad) != len(value) {
				return errors.Errorf("SGD.Step: gradient for %q has %d elements, parameter has %d",
					param.Name(), len(grad), len(value))
			}
			update := grad
			if momentum != 0 {
				update = o.velocity(param, grad, momentum)
			}
			for ii := range value {
				value[ii] -= float32(lr) * update[ii]
			}
		}
	}
	return nil
}

// velocity updates and returns the momentum buffer for param.
func (o *SGD) velocity(param *nn.Parameter, grad []float32, momentum float64) []float32 {
	var buf []float32
	if v, found := o.state.Get(param, "momentum_buffer"); found {
		buf = v.([]float32)
	} else {
		buf = make([]float32, len(grad))
		o.state.Set(param, "momentum_buffer", buf)
	}
	for ii := range buf {
		buf[ii] = float32(momentum)*buf[ii] + grad[ii]
	}
	return buf
}
