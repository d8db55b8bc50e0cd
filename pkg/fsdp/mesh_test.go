// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsdp_test

import (
	"testing"

	"github.com/gomlx/fsdp/pkg/fsdp"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMesh(t *testing.T) {
	tests := []struct {
		name      string
		sizes     []int
		axisNames []string
		wantErr   bool
		wantNum   int
	}{
		{name: "1D mesh", sizes: []int{8}, axisNames: []string{"shard"}, wantNum: 8},
		{name: "2D hybrid mesh", sizes: []int{2, 4}, axisNames: []string{"replica", "shard"}, wantNum: 8},
		{name: "length mismatch", sizes: []int{2}, axisNames: []string{"a", "b"}, wantErr: true},
		{name: "empty", sizes: nil, axisNames: nil, wantErr: true},
		{name: "duplicate axis", sizes: []int{2, 2}, axisNames: []string{"x", "x"}, wantErr: true},
		{name: "invalid axis name", sizes: []int{2}, axisNames: []string{"1x"}, wantErr: true},
		{name: "zero-sized axis", sizes: []int{0}, axisNames: []string{"x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := fsdp.NewMesh(tt.sizes, tt.axisNames)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNum, mesh.NumDevices())
			assert.Equal(t, len(tt.sizes), mesh.Rank())
		})
	}
}

func TestMeshAccessors(t *testing.T) {
	mesh := must.M1(fsdp.NewMesh([]int{2, 4}, []string{"replica", "shard"}))
	assert.Equal(t, 4, mesh.AxisSize("shard"))
	assert.Equal(t, 0, mesh.AxisSize("nope"))
	assert.Equal(t, []string{"replica", "shard"}, mesh.AxisNames())
	assert.Equal(t, "Mesh(replica=2, shard=4)", mesh.String())
}
