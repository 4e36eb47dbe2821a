// Copyright 2025 riegen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ext holds the generation parameters shared by the extension
// recipe packages.
package ext

import (
	"github.com/samber/lo"

	"github.com/ajroetker/riegen/rvv"
)

// Header is the include block emitted at the top of every generated
// translation unit.
const Header = "#include <stdint.h>\n#include <riscv_vector.h>\n#include <stddef.h>\n"

// Params selects what an extension generator emits. Nil dimension
// filters keep the extension's whole valid set; non-nil filters
// intersect with it, so a filter can narrow the output but never
// request combinations the extension does not support.
type Params struct {
	// Attributes are prepended verbatim to every generated function
	// definition, e.g. "static", "inline".
	Attributes []string

	// Prototypes and Definitions select the output sections. Both may
	// be set.
	Prototypes  bool
	Definitions bool

	Elts  []rvv.EltType
	LMULs []rvv.LMUL
	Tails []rvv.TailPolicy
	Masks []rvv.MaskPolicy
}

// DefaultParams generates definitions for an extension's whole valid
// combination space.
func DefaultParams() Params {
	return Params{Definitions: true}
}

// Filter intersects an extension's valid values with a caller filter,
// preserving the valid set's order.
func Filter[T comparable](valid, filter []T) []T {
	if filter == nil {
		return valid
	}
	return lo.Filter(valid, func(v T, _ int) bool {
		return lo.Contains(filter, v)
	})
}

// PolicyDst reports whether a tail/mask policy pair needs a previous
// destination operand.
func PolicyDst(tail rvv.TailPolicy, mask rvv.MaskPolicy) bool {
	return tail == rvv.TailUndisturbed || mask == rvv.MaskUndisturbed
}

// AllTails is the canonical ordering of the tail policy dimension for
// extensions that generate the full policy space.
var AllTails = []rvv.TailPolicy{rvv.TailUndisturbed, rvv.TailAgnostic}

// AllMasks is the canonical ordering of the mask policy dimension.
var AllMasks = []rvv.MaskPolicy{rvv.MaskUndisturbed, rvv.MaskAgnostic, rvv.MaskUnmasked}
