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

// Package zvdot4a8i emulates a packed 8-bit dot-product-accumulate
// extension: each 32-bit lane of vd accumulates the dot product of the
// four 8-bit values packed into the matching lanes of vs2 and vs1.
//
// The emulation views the sources as 8-bit lanes, forms 16-bit
// products with a widening multiply (EMUL doubles), then folds
// neighboring products pairwise at 32 and 64 bits before narrowing
// back to the accumulator width. At m8 the widening multiply would
// need a m16 group, so the computation is split into two m4 halves.
package zvdot4a8i

import (
	"fmt"
	"strings"

	"github.com/ajroetker/riegen/rvv"
	"github.com/ajroetker/riegen/rvv/ext"
)

// Variant is one of the four signedness forms.
type Variant int

const (
	// SS: both sources signed, signed accumulator.
	SS Variant = iota
	// UU: both sources unsigned, unsigned accumulator.
	UU
	// SU: vs2 signed, vs1 unsigned, signed accumulator.
	SU
	// US: vs2 unsigned, vs1 signed, signed accumulator.
	US
)

// Opcode returns the surface opcode of the variant.
func (v Variant) Opcode() rvv.Opcode {
	switch v {
	case UU:
		return rvv.OpDot4au
	case SU:
		return rvv.OpDot4asu
	case US:
		return rvv.OpDot4aus
	}
	return rvv.OpDot4a
}

// AccElt returns the 32-bit accumulator element type of the variant.
func (v Variant) AccElt() rvv.EltType {
	if v == UU {
		return rvv.U32
	}
	return rvv.S32
}

func (v Variant) vs2Elt() rvv.EltType {
	if v == SS || v == SU {
		return rvv.S8
	}
	return rvv.U8
}

func (v Variant) vs1Elt() rvv.EltType {
	if v == SS || v == US {
		return rvv.S8
	}
	return rvv.U8
}

// Accumulate builds the emulation graph of one dot-product variant.
// vd, vs2 and vs1 share the accumulator format; the sources are
// reinterpreted to their packed 8-bit element types internally.
func (v Variant) Accumulate(vd, vs2, vs1, vl, vm rvv.Node, dst rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) (rvv.Node, error) {
	accFmt := vd.Format()
	if accFmt.LMUL == rvv.M8 {
		// The widening multiply would overflow the register-group
		// limit; run two half-LMUL dot products and reassemble.
		recipe := func(operands []rvv.Node, vl rvv.Node, vm rvv.Node, dst rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) (rvv.Node, error) {
			return v.Accumulate(operands[0], operands[1], operands[2], vl, vm, dst, tail, mask)
		}
		return rvv.SplitLMUL(accFmt, []rvv.Node{vd, vs2, vs1}, vl, recipe, tail, mask, vm)
	}

	lmul := accFmt.LMUL
	wideLMUL, err := lmul.Mul(2)
	if err != nil {
		return nil, fmt.Errorf("zvdot4a8i: %w", err)
	}

	bytes2, err := rvv.ExpandReinterpretCast(vs2, rvv.VectorFormat(v.vs2Elt(), lmul))
	if err != nil {
		return nil, err
	}
	bytes1, err := rvv.ExpandReinterpretCast(vs1, rvv.VectorFormat(v.vs1Elt(), lmul))
	if err != nil {
		return nil, err
	}

	// vwmulsu wants its signed operand first.
	mulOp := rvv.OpWmulsu
	lhs, rhs := bytes2, bytes1
	prodElt := rvv.S16
	switch v {
	case SS:
		mulOp = rvv.OpWmul
	case UU:
		mulOp = rvv.OpWmulu
		prodElt = rvv.U16
	case US:
		lhs, rhs = bytes1, bytes2
	}

	fourVl := rvv.NewOperation(rvv.VLFormat(), rvv.OpMul, vl,
		rvv.NewImmediate(rvv.ImmediateFormat(rvv.SizeT), 4))
	twoVl := rvv.NewOperation(rvv.VLFormat(), rvv.OpMul, vl,
		rvv.NewImmediate(rvv.ImmediateFormat(rvv.SizeT), 2))

	products := rvv.NewOperation(rvv.VectorFormat(prodElt, wideLMUL), mulOp, lhs, rhs, fourVl)

	// Fold neighboring products pairwise: first within 32-bit views,
	// then within 64-bit views, so each 64-bit lane ends with the full
	// four-product sum in its low half.
	sum32, err := v.pairwiseFold(products, 32, twoVl)
	if err != nil {
		return nil, err
	}
	sum64, err := v.pairwiseFold(sum32, 64, vl)
	if err != nil {
		return nil, err
	}

	narrowOp := rvv.OpNsrl
	if v.AccElt().Signed() {
		narrowOp = rvv.OpNsra
	}
	laneSums := rvv.NewOperation(rvv.VectorFormat(v.AccElt(), lmul), narrowOp, sum64,
		rvv.NewImmediate(rvv.ScalarFormat(rvv.SizeT), 0), vl)

	return rvv.NewOperation(accFmt, rvv.OpAdd, vd, laneSums, vl).
		WithPolicies(vm, dst, tail, mask), nil
}

// pairwiseFold views src at double the element width and adds each
// lane's low and high halves, leaving the pair sum in every lane. The
// half extraction is sign- or zero-extending to match the accumulator.
func (v Variant) pairwiseFold(src rvv.Node, width int, vl rvv.Node) (rvv.Node, error) {
	srcFmt := src.Format()
	wideElt, err := rvv.EltFromSize(v.AccElt().Signed(), width)
	if err != nil {
		return nil, err
	}
	wideFmt := rvv.VectorFormat(wideElt, srcFmt.LMUL)
	lanes, err := rvv.ExpandReinterpretCast(src, wideFmt)
	if err != nil {
		return nil, err
	}

	half := int64(width / 2)
	shift := rvv.NewImmediate(rvv.ScalarFormat(rvv.SizeT), half)
	var low, high rvv.Node
	if wideElt.Signed() {
		up := rvv.NewOperation(wideFmt, rvv.OpSll, lanes, shift, vl)
		low = rvv.NewOperation(wideFmt, rvv.OpSra, up, shift, vl)
		high = rvv.NewOperation(wideFmt, rvv.OpSra, lanes, shift, vl)
	} else {
		halfMask := int64(1)<<half - 1
		low = rvv.NewOperation(wideFmt, rvv.OpAnd, lanes,
			rvv.NewImmediate(rvv.ScalarFormat(wideElt), halfMask), vl)
		high = rvv.NewOperation(wideFmt, rvv.OpSrl, lanes, shift, vl)
	}
	return rvv.NewOperation(wideFmt, rvv.OpAdd, low, high, vl), nil
}

// Variants is the generation order of the four signedness forms.
var Variants = []Variant{SS, UU, SU, US}

var validLMULs = []rvv.LMUL{rvv.M1, rvv.M2, rvv.M4, rvv.M8}

// Generate emits the dot-product emulation translation unit. All four
// variants are generated over the full policy space, except at m8
// where the split-LMUL path supports only the unmasked tail-agnostic
// form.
func Generate(p ext.Params) (string, error) {
	var prototypes, definitions []string

	emit := func(proto *rvv.Operation, body rvv.Node) error {
		if p.Prototypes {
			s, err := rvv.GeneratePrototype(proto)
			if err != nil {
				return err
			}
			prototypes = append(prototypes, s)
		}
		if p.Definitions {
			s, err := rvv.GenerateFunction(proto, body, p.Attributes)
			if err != nil {
				return err
			}
			definitions = append(definitions, s)
		}
		return nil
	}

	for _, variant := range Variants {
		if p.Elts != nil && !containsElt(p.Elts, variant.AccElt()) {
			continue
		}
		for _, lmul := range ext.Filter(validLMULs, p.LMULs) {
			for _, tail := range ext.Filter(ext.AllTails, p.Tails) {
				for _, mask := range ext.Filter(ext.AllMasks, p.Masks) {
					if lmul == rvv.M8 && (mask.Masked() || tail == rvv.TailUndisturbed) {
						continue
					}
					accFmt := rvv.VectorFormat(variant.AccElt(), lmul)
					vd := rvv.NewNamedInput(accFmt, 0, "vd")
					vs2 := rvv.NewInput(accFmt, 1)
					vs1 := rvv.NewInput(accFmt, 2)
					vl := rvv.NewNamedInput(rvv.VLFormat(), 3, "vl")

					var vm rvv.Node
					if mask.Masked() {
						vm = rvv.NewNamedInput(accFmt.MaskOf(), 4, "vm")
					}
					var dst rvv.Node
					if ext.PolicyDst(tail, mask) {
						// The accumulator is its own prior value.
						dst = vd
					}

					proto := rvv.NewOperation(accFmt, variant.Opcode(), vd, vs2, vs1, vl).
						WithPolicies(vm, dst, tail, mask)
					body, err := variant.Accumulate(vd, vs2, vs1, vl, vm, dst, tail, mask)
					if err != nil {
						return "", err
					}
					if err := emit(proto, body); err != nil {
						return "", err
					}
				}
			}
		}
	}

	return assemble(prototypes, definitions), nil
}

func containsElt(elts []rvv.EltType, elt rvv.EltType) bool {
	for _, e := range elts {
		if e == elt {
			return true
		}
	}
	return false
}

func assemble(prototypes, definitions []string) string {
	var sb strings.Builder
	sb.WriteString(ext.Header)
	if len(prototypes) > 0 {
		sb.WriteString("\n// prototypes\n")
		sb.WriteString(strings.Join(prototypes, "\n"))
		sb.WriteByte('\n')
	}
	if len(definitions) > 0 {
		sb.WriteString("\n// intrinsics\n")
		sb.WriteString(strings.Join(definitions, "\n\n"))
		sb.WriteByte('\n')
	}
	return sb.String()
}
