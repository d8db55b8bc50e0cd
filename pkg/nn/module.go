// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package nn defines the module-tree abstraction the fsdp analyses operate
// on: a rooted tree of Modules, each directly owning named Parameters and
// child Modules.
//
// A Parameter may be referenced from more than one place in the tree ("tied"
// or "shared" parameters): aliasing is a property of object identity, not of
// the tree shape, and the tree is therefore allowed to be a DAG (the same
// child module registered under two parents). All recursive enumeration
// helpers in this package are written to be safe under such sharing.
//
// FQNs (fully qualified names) are dot-separated paths from the root to the
// attribute name of the parameter on the module that directly owns it, e.g.
// "encoder.layers.0.weight". The root module's own name is not part of the
// FQN, matching the usual convention of recursive named-parameter
// enumeration.
package nn

// NamedParameter pairs a parameter with its attribute name on the owning
// module.
type NamedParameter struct {
	Name  string
	Param *Parameter
}

// NamedModule pairs a child module with its attribute name on the parent.
type NamedModule struct {
	Name   string
	Module Module
}

// Module is a node in a model tree.
//
// Implementations must be pointer types: Module interface values are compared
// and used as map keys by identity throughout this repository, the same way
// Parameters are.
type Module interface {
	// Name returns the module's own name, used in diagnostics only (FQNs are
	// built from the attribute names returned by NamedChildren).
	Name() string

	// OwnNamedParameters enumerates the parameters directly owned by this
	// module (not descendants'), in registration order.
	OwnNamedParameters() []NamedParameter

	// NamedChildren enumerates the direct child modules, in registration
	// order.
	NamedChildren() []NamedModule
}

// OwnParameters returns the parameters directly owned by m, in registration
// order.
func OwnParameters(m Module) []*Parameter {
	named := m.OwnNamedParameters()
	params := make([]*Parameter, len(named))
	for ii, np := range named {
		params[ii] = np.Param
	}
	return params
}

// Children returns the direct children of m, in registration order.
func Children(m Module) []Module {
	named := m.NamedChildren()
	children := make([]Module, len(named))
	for ii, nm := range named {
		children[ii] = nm.Module
	}
	return children
}

// Parameters returns every parameter reachable from m (m's own and all
// descendants'), in depth-first registration order.
//
// A parameter referenced through several paths appears once per path: callers
// that need uniqueness collect the result into an identity-keyed set.
func Parameters(m Module) []*Parameter {
	var params []*Parameter
	var recurse func(m Module)
	recurse = func(m Module) {
		params = append(params, OwnParameters(m)...)
		for _, child := range Children(m) {
			recurse(child)
		}
	}
	recurse(m)
	return params
}

// NamedParameters returns the FQN→parameter mapping for every parameter
// reachable from root.
//
// When a parameter is reachable through several FQNs, the first FQN in
// depth-first registration order wins, matching flat named-parameter
// enumeration semantics. Use ParamToFQNs when every alias is needed.
func NamedParameters(root Module) map[string]*Parameter {
	named := make(map[string]*Parameter)
	seen := make(map[*Parameter]bool)
	walkNamed(root, "", func(fqn string, param *Parameter) {
		if seen[param] {
			return
		}
		seen[param] = true
		named[fqn] = param
	})
	return named
}

// ParameterNames returns the parameter→FQN mapping for every parameter
// reachable from root, using the first FQN in depth-first registration order
// for tied parameters.
//
// Build this before a sharding transformation: identity is the only way to
// recover a parameter's name once the tree has been rewritten, and the
// result is exactly the origParamToName input that RebindOptimizer expects.
func ParameterNames(root Module) map[*Parameter]string {
	names := make(map[*Parameter]string)
	walkNamed(root, "", func(fqn string, param *Parameter) {
		if _, found := names[param]; !found {
			names[param] = fqn
		}
	})
	return names
}

// walkNamed visits every (FQN, parameter) reference reachable from m,
// including every alias of tied parameters.
func walkNamed(m Module, prefix string, visit func(fqn string, param *Parameter)) {
	for _, np := range m.OwnNamedParameters() {
		fqn := np.Name
		if prefix != "" {
			fqn = prefix + "." + np.Name
		}
		visit(fqn, np.Param)
	}
	for _, nm := range m.NamedChildren() {
		childPrefix := nm.Name
		if prefix != "" {
			childPrefix = prefix + "." + nm.Name
		}
		walkNamed(nm.Module, childPrefix, visit)
	}
}

// Walk traverses the tree depth-first from root, calling visit on every
// module exactly once.
//
// Modules reachable through several parents are visited only on the first
// path: the traversal keeps an identity-keyed visited set, so shared
// subtrees and diamond shapes do not cause re-visits or infinite loops.
// If visit returns false, the traversal does not descend into that module's
// children.
func Walk(root Module, visit func(m Module) bool) {
	visited := make(map[Module]bool)
	var recurse func(m Module)
	recurse = func(m Module) {
		if visited[m] {
			return
		}
		visited[m] = true
		if !visit(m) {
			return
		}
		for _, child := range Children(m) {
			recurse(child)
		}
	}
	recurse(root)
}
