// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"github.com/gomlx/fsdp/pkg/support/sets"
)

// ParamToFQNs maps every parameter reachable from root to the full set of
// FQNs through which it is reachable.
//
// Unlike NamedParameters, no alias is dropped: a parameter tied into the tree
// at three places maps to a set of three FQNs. This requires the recursive
// walk rather than flat enumeration, which under-reports aliases whose FQN
// collides with an earlier one at the same depth.
func ParamToFQNs(root Module) map[*Parameter]sets.Set[string] {
	fqns := make(map[*Parameter]sets.Set[string])
	walkNamed(root, "", func(fqn string, param *Parameter) {
		group, found := fqns[param]
		if !found {
			group = sets.Make[string]()
			fqns[param] = group
		}
		group.Insert(fqn)
	})
	return fqns
}
