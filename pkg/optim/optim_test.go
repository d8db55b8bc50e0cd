// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package optim_test

import (
	"testing"

	"github.com/gomlx/fsdp/pkg/nn"
	"github.com/gomlx/fsdp/pkg/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSGDStep(t *testing.T) {
	p := nn.NewParameter("weight", 2)
	p.SetValue([]float32{1, 2})
	opt := optim.NewSGD([]*nn.Parameter{p}, 0.5, 0)

	require.NoError(t, opt.Step(map[*nn.Parameter][]float32{p: {2, 4}}))
	assert.Equal(t, []float32{0, 0}, p.Value())
	// No momentum, no state.
	assert.Equal(t, 0, opt.State().Len())
}

func TestSGDMomentumState(t *testing.T) {
	p := nn.NewParameter("weight", 1)
	opt := optim.NewSGD([]*nn.Parameter{p}, 0.1, 0.9)

	require.NoError(t, opt.Step(map[*nn.Parameter][]float32{p: {1}}))
	assert.Equal(t, 1, opt.State().Len())
	buf, found := opt.State().Get(p, "momentum_buffer")
	require.True(t, found)
	assert.Equal(t, []float32{1}, buf)

	opt.State().Clear()
	assert.Equal(t, 0, opt.State().Len())
	assert.Empty(t, opt.State().Params())
}

func TestSGDGroupOverrides(t *testing.T) {
	p1 := nn.NewParameter("w1", 1)
	p1.SetValue([]float32{1})
	p2 := nn.NewParameter("w2", 1)
	p2.SetValue([]float32{1})

	opt := optim.NewSGD([]*nn.Parameter{p1}, 1.0, 0)
	opt.AddParamGroup(optim.ParamGroup{
		Params:  []*nn.Parameter{p2},
		Options: map[string]any{"lr": 0.1},
	})
	require.Len(t, opt.ParamGroups(), 2)

	grads := map[*nn.Parameter][]float32{p1: {1}, p2: {1}}
	require.NoError(t, opt.Step(grads))
	assert.InDelta(t, 0.0, p1.Value()[0], 1e-6)
	assert.InDelta(t, 0.9, p2.Value()[0], 1e-6)
}

func TestSGDGradSizeMismatch(t *testing.T) {
	p := nn.NewParameter("weight", 2)
	opt := optim.NewSGD([]*nn.Parameter{p}, 0.1, 0)
	err := opt.Step(map[*nn.Parameter][]float32{p: {1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gradient")
}

func TestParamGroupClone(t *testing.T) {
	p := nn.NewParameter("weight", 1)
	g := optim.ParamGroup{Params: []*nn.Parameter{p}, Options: map[string]any{"lr": 0.1}}
	clone := g.Clone()
	clone.Params[0] = nil
	assert.Same(t, p, g.Params[0])
}
