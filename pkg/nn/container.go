// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	. "github.com/gomlx/exceptions"
)

// Container is a general-purpose Module holding named parameters and named
// child modules in registration order.
//
// It is the building block model-construction code composes into trees, and
// what tests use to build fixtures. Registering an already-registered *Parameter
// under a second name (or a second container) is how parameters are tied.
type Container struct {
	name string

	params     []NamedParameter
	paramIndex map[string]int

	children   []NamedModule
	childIndex map[string]int
}

// Compile-time check that Container implements Module.
var _ Module = (*Container)(nil)

// NewContainer creates an empty container module with the given name.
func NewContainer(name string) *Container {
	return &Container{
		name:       name,
		paramIndex: make(map[string]int),
		childIndex: make(map[string]int),
	}
}

// Name implements Module.
func (c *Container) Name() string { return c.name }

// OwnNamedParameters implements Module. The returned slice is owned by the
// container and must not be mutated.
func (c *Container) OwnNamedParameters() []NamedParameter { return c.params }

// NamedChildren implements Module. The returned slice is owned by the
// container and must not be mutated.
func (c *Container) NamedChildren() []NamedModule { return c.children }

// SetParameter registers param under the given attribute name, replacing any
// previous parameter registered under the same name (this is how a sharding
// engine swaps in sharded parameters). Returns the container so calls can be
// chained.
func (c *Container) SetParameter(name string, param *Parameter) *Container {
	param.AssertValid()
	if idx, found := c.paramIndex[name]; found {
		c.params[idx].Param = param
		return c
	}
	c.paramIndex[name] = len(c.params)
	c.params = append(c.params, NamedParameter{Name: name, Param: param})
	return c
}

// Parameter returns the parameter registered under name, or nil.
func (c *Container) Parameter(name string) *Parameter {
	if idx, found := c.paramIndex[name]; found {
		return c.params[idx].Param
	}
	return nil
}

// AddChild registers child under the given attribute name. Registering the
// same name twice panics: replacing a whole subtree is not something the
// sharding flow ever does.
func (c *Container) AddChild(name string, child Module) *Container {
	if child == nil {
		Panicf("nn.Container %q: AddChild(%q) with nil module", c.name, name)
	}
	if _, found := c.childIndex[name]; found {
		Panicf("nn.Container %q: child %q registered twice", c.name, name)
	}
	c.childIndex[name] = len(c.children)
	c.children = append(c.children, NamedModule{Name: name, Module: child})
	return c
}

// Child returns the child module registered under name, or nil.
func (c *Container) Child(name string) Module {
	if idx, found := c.childIndex[name]; found {
		return c.children[idx].Module
	}
	return nil
}
