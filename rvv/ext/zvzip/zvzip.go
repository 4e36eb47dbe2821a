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

// Package zvzip emulates the proposed Zvzip extension: interleave two
// vectors into a double-LMUL result and extract the even or odd lanes
// of a double-LMUL vector.
//
// Elements narrower than ELEN interleave through the next wider
// element type (zero-extend, shift, or). ELEN-wide elements have no
// wider type to go through, so they take a permute path built on
// masked slides, vcompress and register-group views.
package zvzip

import (
	"fmt"
	"strings"

	"github.com/ajroetker/riegen/rvv"
	"github.com/ajroetker/riegen/rvv/ext"
)

// vlTimes returns vl scaled by a small constant, as a scalar
// expression node.
func vlTimes(vl rvv.Node, factor int64) rvv.Node {
	return rvv.NewOperation(rvv.VLFormat(), rvv.OpMul, vl,
		rvv.NewImmediate(rvv.ImmediateFormat(rvv.SizeT), factor))
}

// splatMask broadcasts an 8-bit pattern across a whole mask register.
// The splat runs at u8/m1 with vlmax so every mask bit is defined, then
// the register is reinterpreted to the target vboolN_t shape.
func splatMask(pattern int64, target rvv.Format) rvv.Node {
	vlenb := rvv.NewOperation(rvv.VLFormat(), rvv.OpVsetvlMax,
		rvv.NewFormatPlaceholder(rvv.PlaceholderFormat(rvv.U8, rvv.M1)))
	splat := rvv.NewOperation(rvv.VectorFormat(rvv.U8, rvv.M1), rvv.OpMv,
		rvv.NewImmediate(rvv.ScalarFormat(rvv.U8), pattern), vlenb)
	return rvv.NewOperation(target, rvv.OpReinterpret, splat)
}

// Zip builds the emulation graph of vzip: lanes of vs2 land in the
// even result lanes, lanes of vs1 in the odd ones. The result has
// twice the LMUL of the sources.
func Zip(vs2, vs1, vl, vm, vd rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) (rvv.Node, error) {
	format := vs2.Format()
	size, err := format.Elt.Size()
	if err != nil {
		return nil, fmt.Errorf("zvzip: zip: %w", err)
	}
	if size == 64 {
		return zipElen(vs2, vs1, vl, vm, vd, tail, mask)
	}

	widenedElt, err := format.Elt.Widen()
	if err != nil {
		return nil, fmt.Errorf("zvzip: zip: %w", err)
	}
	widenedLMUL, err := format.LMUL.Mul(2)
	if err != nil {
		return nil, fmt.Errorf("zvzip: zip: %w", err)
	}
	widenedFmt := rvv.VectorFormat(widenedElt, widenedLMUL)
	resultFmt := rvv.VectorFormat(format.Elt, widenedLMUL)
	twiceVl := vlTimes(vl, 2)

	evens := rvv.NewOperation(widenedFmt, rvv.OpZextVf2, vs2, vl)
	odds := rvv.NewOperation(widenedFmt, rvv.OpZextVf2, vs1, vl)
	oddsShifted := rvv.NewOperation(widenedFmt, rvv.OpSll, odds,
		rvv.NewImmediate(rvv.ScalarFormat(rvv.SizeT), int64(size)), vl)
	evensCast, err := rvv.ExpandReinterpretCast(evens, resultFmt)
	if err != nil {
		return nil, err
	}
	oddsCast, err := rvv.ExpandReinterpretCast(oddsShifted, resultFmt)
	if err != nil {
		return nil, err
	}
	return rvv.NewOperation(resultFmt, rvv.OpOr, evensCast, oddsCast, twiceVl).
		WithPolicies(vm, vd, tail, mask), nil
}

// zipElen interleaves 64-bit lanes. Each source is viewed as 32-bit
// halves, spread across double the group via zero-extension, and the
// displaced halves are slid back into position under alternating-lane
// masks before the two spread sources are or-ed together.
func zipElen(vs2, vs1, vl, vm, vd rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) (rvv.Node, error) {
	format := vs2.Format()
	narrowElt, err := format.Elt.Narrow()
	if err != nil {
		return nil, fmt.Errorf("zvzip: zip elen: %w", err)
	}
	widenedLMUL, err := format.LMUL.Mul(2)
	if err != nil {
		return nil, fmt.Errorf("zvzip: zip elen: %w", err)
	}
	narrowFmt := rvv.VectorFormat(narrowElt, format.LMUL)
	wideNarrowFmt := rvv.VectorFormat(narrowElt, widenedLMUL)
	resultFmt := rvv.VectorFormat(format.Elt, widenedLMUL)
	twiceVl := vlTimes(vl, 2)
	fourVl := vlTimes(vl, 4)
	one := rvv.NewImmediate(rvv.ScalarFormat(rvv.SizeT), 1)
	two := rvv.NewImmediate(rvv.ScalarFormat(rvv.SizeT), 2)

	spread := func(src rvv.Node) (rvv.Node, error) {
		halves, err := rvv.ExpandReinterpretCast(src, narrowFmt)
		if err != nil {
			return nil, err
		}
		extended := rvv.NewOperation(resultFmt, rvv.OpZextVf2, halves, twiceVl)
		return rvv.ExpandReinterpretCast(extended, wideNarrowFmt)
	}

	evenHalves, err := spread(vs2)
	if err != nil {
		return nil, err
	}
	// The high 32-bit half of each source lane landed one slot too far
	// right; pull it back under an alternating mask.
	evenFixed := rvv.NewOperation(wideNarrowFmt, rvv.OpSlideDown, evenHalves, one, fourVl).
		WithPolicies(splatMask(0x66, rvv.MaskFormat(narrowElt, widenedLMUL)), evenHalves,
			rvv.TailAgnostic, rvv.MaskUndisturbed)
	evenLanes, err := rvv.ExpandReinterpretCast(evenFixed, resultFmt)
	if err != nil {
		return nil, err
	}

	oddHalves, err := spread(vs1)
	if err != nil {
		return nil, err
	}
	// Odd-destined halves move up: low halves by two slots, high
	// halves by one.
	oddHigh := rvv.NewOperation(wideNarrowFmt, rvv.OpSlideUp, oddHalves, one, fourVl).
		WithPolicies(splatMask(0x88, rvv.MaskFormat(narrowElt, widenedLMUL)), oddHalves,
			rvv.TailAgnostic, rvv.MaskUndisturbed)
	oddFixed := rvv.NewOperation(wideNarrowFmt, rvv.OpSlideUp, oddHalves, two, fourVl).
		WithPolicies(splatMask(0x44, rvv.MaskFormat(narrowElt, widenedLMUL)), oddHigh,
			rvv.TailAgnostic, rvv.MaskUndisturbed)
	oddLanes, err := rvv.ExpandReinterpretCast(oddFixed, resultFmt)
	if err != nil {
		return nil, err
	}

	return rvv.NewOperation(resultFmt, rvv.OpOr, evenLanes, oddLanes, twiceVl).
		WithPolicies(vm, vd, tail, mask), nil
}

// Unzip builds the emulation graph of vunzipeven/vunzipodd: the even
// or odd lanes of vs2 packed into a half-LMUL result.
func Unzip(even bool, vs2, vl, vm, vd rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) (rvv.Node, error) {
	format := vs2.Format()
	size, err := format.Elt.Size()
	if err != nil {
		return nil, fmt.Errorf("zvzip: unzip: %w", err)
	}
	if size == 64 {
		return unzipElen(even, vs2, vl, vm, vd, tail, mask)
	}

	widenedElt, err := format.Elt.Widen()
	if err != nil {
		return nil, fmt.Errorf("zvzip: unzip: %w", err)
	}
	halfLMUL, err := format.LMUL.Div(2)
	if err != nil {
		return nil, fmt.Errorf("zvzip: unzip: %w", err)
	}
	// Each wide lane holds one even/odd pair; a narrowing shift by 0
	// or by the element width extracts the wanted half of every pair.
	pairs, err := rvv.ExpandReinterpretCast(vs2, rvv.VectorFormat(widenedElt, format.LMUL))
	if err != nil {
		return nil, err
	}
	shift := int64(0)
	if !even {
		shift = int64(size)
	}
	resultFmt := rvv.VectorFormat(format.Elt, halfLMUL)
	return rvv.NewOperation(resultFmt, rvv.OpNsrl, pairs,
		rvv.NewImmediate(rvv.ScalarFormat(rvv.SizeT), shift), vl).
		WithPolicies(vm, vd, tail, mask), nil
}

// unzipElen extracts alternating 64-bit lanes by compressing under a
// constant alternating mask and taking the low half of the group.
func unzipElen(even bool, vs2, vl, vm, vd rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) (rvv.Node, error) {
	format := vs2.Format()
	halfLMUL, err := format.LMUL.Div(2)
	if err != nil {
		return nil, fmt.Errorf("zvzip: unzip elen: %w", err)
	}
	pattern := int64(0x55)
	if !even {
		pattern = 0xAA
	}
	keep := splatMask(pattern, format.MaskOf())
	compressed := rvv.NewOperation(format, rvv.OpCompress, vs2, keep, vl)
	resultFmt := rvv.VectorFormat(format.Elt, halfLMUL)
	low := rvv.NewOperation(resultFmt, rvv.OpGet, compressed,
		rvv.NewImmediate(rvv.ImmediateFormat(rvv.SizeT), 0))
	if !mask.Masked() && tail != rvv.TailUndisturbed {
		return low, nil
	}
	// Replay the packed lanes through a policied move so the caller's
	// tail/mask semantics apply.
	halfVl := rvv.NewOperation(rvv.VLFormat(), rvv.OpDiv, vl,
		rvv.NewImmediate(rvv.ImmediateFormat(rvv.SizeT), 2))
	return rvv.NewOperation(resultFmt, rvv.OpMv, low, halfVl).
		WithPolicies(vm, vd, tail, mask), nil
}

var validElts = []rvv.EltType{rvv.U8, rvv.U16, rvv.U32, rvv.U64}

// validLMULs are the source LMULs of vzip, equivalently the result
// LMULs of vunzip; the double-width side of either operation must not
// exceed m8.
var validLMULs = []rvv.LMUL{rvv.M1, rvv.M2, rvv.M4}

// Generate emits the Zvzip emulation translation unit.
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

	for _, elt := range ext.Filter(validElts, p.Elts) {
		for _, lmul := range ext.Filter(validLMULs, p.LMULs) {
			for _, tail := range ext.Filter(ext.AllTails, p.Tails) {
				for _, mask := range ext.Filter(ext.AllMasks, p.Masks) {
					wideLMUL, err := lmul.Mul(2)
					if err != nil {
						return "", err
					}
					narrowFmt := rvv.VectorFormat(elt, lmul)
					wideFmt := rvv.VectorFormat(elt, wideLMUL)
					vl := rvv.NewNamedInput(rvv.VLFormat(), 2, "vl")

					// vzip: two narrow sources, wide destination.
					{
						vs2 := rvv.NewInput(narrowFmt, 0)
						vs1 := rvv.NewInput(narrowFmt, 1)
						var vm, vd rvv.Node
						if mask.Masked() {
							vm = rvv.NewNamedInput(rvv.MaskFormat(elt, wideLMUL), 3, "vm")
						}
						if ext.PolicyDst(tail, mask) {
							vd = rvv.NewNamedInput(wideFmt, 4, "vd")
						}
						proto := rvv.NewOperation(wideFmt, rvv.OpZip, vs2, vs1, vl).
							WithPolicies(vm, vd, tail, mask)
						body, err := Zip(vs2, vs1, vl, vm, vd, tail, mask)
						if err != nil {
							return "", err
						}
						if err := emit(proto, body); err != nil {
							return "", err
						}
					}

					// vunzipeven / vunzipodd: wide source, narrow
					// destination.
					for _, evenLanes := range []bool{true, false} {
						op := rvv.OpUnzipOdd
						if evenLanes {
							op = rvv.OpUnzipEven
						}
						vs2 := rvv.NewInput(wideFmt, 0)
						var vm, vd rvv.Node
						if mask.Masked() {
							vm = rvv.NewNamedInput(rvv.MaskFormat(elt, lmul), 3, "vm")
						}
						if ext.PolicyDst(tail, mask) {
							vd = rvv.NewNamedInput(narrowFmt, 4, "vd")
						}
						proto := rvv.NewOperation(narrowFmt, op, vs2, vl).
							WithPolicies(vm, vd, tail, mask)
						body, err := Unzip(evenLanes, vs2, vl, vm, vd, tail, mask)
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
	}

	return assemble(prototypes, definitions), nil
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
