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

package rvv

import (
	"errors"
	"fmt"
)

// ErrMaskedSplit reports that an LMUL-split emulation was requested
// with a mask. Splitting the mask register between the halves is not
// implemented.
var ErrMaskedSplit = errors.New("rvv: masked operation cannot be LMUL-split")

// SplitRecipe builds the emulation graph of one half of a split
// computation. operands are the half-width views of the operands
// passed to SplitLMUL, in the same order; vl is the half's active
// length. The halves run tail-agnostic and unmasked.
type SplitRecipe func(operands []Node, vl Node, vm Node, dst Node, tail TailPolicy, mask MaskPolicy) (Node, error)

// SplitLMUL emulates an operation whose intermediate computation would
// exceed M8 by running the recipe twice at half the LMUL and
// reassembling the halves with a register-group create. Vector
// operands are viewed through get(0)/get(1); scalar and vector-length
// operands are shared by both halves. The low half runs with
// vl_lo = min(vl, vlmax_half) and the high half with the remainder.
func SplitLMUL(resultFmt Format, operands []Node, vl Node, recipe SplitRecipe, tail TailPolicy, mask MaskPolicy, vm Node) (Node, error) {
	if vm != nil || mask.Masked() {
		return nil, ErrMaskedSplit
	}
	halfLMUL, err := resultFmt.LMUL.Div(2)
	if err != nil {
		return nil, fmt.Errorf("rvv: split of %v: %w", resultFmt.LMUL, err)
	}
	if !IsValidForEEW(resultFmt.Elt, halfLMUL) {
		return nil, fmt.Errorf("rvv: cannot split %v%s: %s is too small for the element width",
			resultFmt.Elt, resultFmt.LMUL, halfLMUL)
	}

	lo := make([]Node, len(operands))
	hi := make([]Node, len(operands))
	for i, operand := range operands {
		if operand.Format().Kind != KindVector {
			lo[i] = operand
			hi[i] = operand
			continue
		}
		// Each operand keeps its own element type at the halved
		// grouping.
		operandHalf, err := operand.Format().LMUL.Div(2)
		if err != nil {
			return nil, fmt.Errorf("rvv: split operand %d: %w", i, err)
		}
		halfFmt := VectorFormat(operand.Format().Elt, operandHalf)
		idxFmt := ImmediateFormat(SizeT)
		lo[i] = NewOperation(halfFmt, OpGet, operand, NewImmediate(idxFmt, 0))
		hi[i] = NewOperation(halfFmt, OpGet, operand, NewImmediate(idxFmt, 1))
	}

	vlmaxHalf := NewOperation(VLFormat(), OpVsetvlMax,
		NewFormatPlaceholder(PlaceholderFormat(resultFmt.Elt, halfLMUL)))
	vlLo := NewOperation(VLFormat(), OpMin, vl, vlmaxHalf)
	vlHi := NewOperation(VLFormat(), OpSub, vl, vlLo)

	resultLo, err := recipe(lo, vlLo, nil, nil, TailAgnostic, MaskUnmasked)
	if err != nil {
		return nil, err
	}
	resultHi, err := recipe(hi, vlHi, nil, nil, TailAgnostic, MaskUnmasked)
	if err != nil {
		return nil, err
	}
	return NewOperation(resultFmt, OpCreate, resultLo, resultHi), nil
}
