// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

// Linear is a leaf module owning a weight matrix and a bias vector.
//
// Weight and Bias are exported so model code can tie them across modules
// (e.g. tying an output projection to an embedding) by direct assignment
// before the tree is analyzed.
type Linear struct {
	name string

	Weight *Parameter
	Bias   *Parameter
}

var _ Module = (*Linear)(nil)

// NewLinear creates a zero-initialized linear layer computing [out x in].
func NewLinear(name string, inFeatures, outFeatures int) *Linear {
	return &Linear{
		name:   name,
		Weight: NewParameter("weight", outFeatures, inFeatures),
		Bias:   NewParameter("bias", outFeatures),
	}
}

// Name implements Module.
func (l *Linear) Name() string { return l.name }

// OwnNamedParameters implements Module.
func (l *Linear) OwnNamedParameters() []NamedParameter {
	return []NamedParameter{
		{Name: "weight", Param: l.Weight},
		{Name: "bias", Param: l.Bias},
	}
}

// NamedChildren implements Module: a Linear has no children.
func (l *Linear) NamedChildren() []NamedModule { return nil }
