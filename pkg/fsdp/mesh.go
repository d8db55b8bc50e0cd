// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Mesh is the logical topology of the devices a model is sharded across:
// named axes with a fixed number of devices along each.
//
// For plain FSDP the mesh is one-dimensional, e.g. NewMesh([]int{8},
// []string{"shard"}); hybrid setups add a replica axis.
type Mesh struct {
	axesNames  []string
	axesSizes  []int
	numDevices int
}

// NewMesh creates a device mesh with one size per named axis. Axis names must
// be valid identifiers (ASCII letter first, then letters, digits or
// underscore) and unique.
func NewMesh(axesSizes []int, axesNames []string) (*Mesh, error) {
	if len(axesSizes) != len(axesNames) {
		return nil, errors.Errorf("axesSizes and axesNames must have the same length, got %d and %d",
			len(axesSizes), len(axesNames))
	}
	if len(axesSizes) == 0 {
		return nil, errors.New("mesh must have at least one axis")
	}
	numDevices := 1
	for ii, name := range axesNames {
		if !isAxisNameValid(name) {
			return nil, errors.Errorf("mesh axis name %q at index %d is not a valid identifier", name, ii)
		}
		if slices.Index(axesNames, name) != ii {
			return nil, errors.Errorf("mesh axis name %q is duplicated", name)
		}
		if axesSizes[ii] < 1 {
			return nil, errors.Errorf("mesh axis %q must have at least one device, got %d", name, axesSizes[ii])
		}
		numDevices *= axesSizes[ii]
	}
	return &Mesh{
		axesNames:  slices.Clone(axesNames),
		axesSizes:  slices.Clone(axesSizes),
		numDevices: numDevices,
	}, nil
}

func isAxisNameValid(name string) bool {
	if name == "" {
		return false
	}
	if name[0] >= '0' && name[0] <= '9' {
		return false
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return false
	}
	return true
}

// NumDevices returns the total number of devices in the mesh.
func (m *Mesh) NumDevices() int { return m.numDevices }

// Rank returns the number of mesh axes.
func (m *Mesh) Rank() int { return len(m.axesNames) }

// AxisSize returns the number of devices along the named axis, or 0 if the
// axis does not exist.
func (m *Mesh) AxisSize(name string) int {
	idx := slices.Index(m.axesNames, name)
	if idx < 0 {
		return 0
	}
	return m.axesSizes[idx]
}

// AxisNames returns the mesh axis names in order.
func (m *Mesh) AxisNames() []string { return slices.Clone(m.axesNames) }

// String implements fmt.Stringer.
func (m *Mesh) String() string {
	parts := make([]string, len(m.axesNames))
	for ii, name := range m.axesNames {
		parts[ii] = fmt.Sprintf("%s=%d", name, m.axesSizes[ii])
	}
	return fmt.Sprintf("Mesh(%s)", strings.Join(parts, ", "))
}
