// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"fmt"

	. "github.com/gomlx/exceptions"
)

// Parameter is a learnable tensor owned by one or more Modules.
//
// Identity matters, not value: two modules are "tied" when they reference the
// same *Parameter object, so Parameter pointers are used as map keys
// throughout the fsdp analyses. Never compare parameters by contents.
//
// The flat float32 value stands in for the device buffer: the analyses in
// this repository never look at it, only the sharding engine (an external
// collaborator) does.
type Parameter struct {
	name string
	dims []int

	value []float32

	// sharded marks a parameter that is the local shard of a larger logical
	// tensor, produced by a sharding engine.
	sharded bool
}

// NewParameter creates a zero-initialized parameter with the given attribute
// name hint and dimensions.
//
// The name is a hint only (the attribute name on the owning module); the
// authoritative names are the FQNs derived from the tree, see NamedParameters.
func NewParameter(name string, dims ...int) *Parameter {
	numElements := 1
	for _, dim := range dims {
		numElements *= dim
	}
	return &Parameter{
		name:  name,
		dims:  dims,
		value: make([]float32, numElements),
	}
}

// AssertValid panics if the parameter is nil.
func (p *Parameter) AssertValid() {
	if p == nil {
		Panicf("nn.Parameter is nil")
	}
}

// Name returns the attribute name hint given at construction.
func (p *Parameter) Name() string {
	p.AssertValid()
	return p.name
}

// Dims returns the dimensions of the parameter.
func (p *Parameter) Dims() []int {
	p.AssertValid()
	return p.dims
}

// Value returns the flat backing data. It is shared, not copied.
func (p *Parameter) Value() []float32 {
	p.AssertValid()
	return p.value
}

// SetValue replaces the flat backing data. The length must match the
// parameter's dimensions.
func (p *Parameter) SetValue(value []float32) {
	p.AssertValid()
	if len(value) != len(p.value) {
		Panicf("nn.Parameter %q: SetValue with %d elements, parameter has %d", p.name, len(value), len(p.value))
	}
	p.value = value
}

// IsSharded reports whether this parameter is a local shard produced by a
// sharding engine.
func (p *Parameter) IsSharded() bool {
	p.AssertValid()
	return p.sharded
}

// Shard returns a new Parameter holding this rank's 1/numShards slice of the
// leading dimension. It is what a sharding engine substitutes for the
// original parameter; the original is left untouched.
//
// The leading dimension must be divisible by numShards.
func (p *Parameter) Shard(numShards int) *Parameter {
	p.AssertValid()
	if len(p.dims) == 0 || p.dims[0]%numShards != 0 {
		Panicf("nn.Parameter %q: cannot shard dims %v across %d devices", p.name, p.dims, numShards)
	}
	dims := append([]int{p.dims[0] / numShards}, p.dims[1:]...)
	shard := NewParameter(p.name, dims...)
	copy(shard.value, p.value)
	shard.sharded = true
	return shard
}

// String implements fmt.Stringer.
func (p *Parameter) String() string {
	if p == nil {
		return "INVALID (NIL) PARAMETER"
	}
	return fmt.Sprintf("%s%v", p.name, p.dims)
}
