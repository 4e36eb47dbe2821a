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

// Package zvabd emulates the proposed Zvabd extension: absolute value
// and absolute difference, across the full tail/mask policy space.
package zvabd

import (
	"strings"

	"github.com/ajroetker/riegen/rvv"
	"github.com/ajroetker/riegen/rvv/ext"
)

// Abs builds the emulation graph of vabs: compare against zero, negate
// via reverse-subtract from zero, and merge the negated value over the
// negative lanes. The merge carries the caller's policies.
func Abs(vs2, vl, vm, vd rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) rvv.Node {
	format := vs2.Format()
	zero := rvv.ScalarFormat(format.Elt)
	negative := rvv.NewOperation(format.MaskOf(), rvv.OpLt, vs2, rvv.NewImmediate(zero, 0), vl)
	negated := rvv.NewOperation(format, rvv.OpRsub, vs2, rvv.NewImmediate(zero, 0), vl)
	return rvv.NewOperation(format, rvv.OpMerge, vs2, negated, negative, vl).
		WithPolicies(vm, vd, tail, mask)
}

// Abd builds the emulation graph of vabd/vabdu: |a - b| as the
// difference of max and min, so it is correct for both signednesses
// without widening. The final subtract carries the caller's policies.
func Abd(vs2, vs1, vl, vm, vd rvv.Node, tail rvv.TailPolicy, mask rvv.MaskPolicy) rvv.Node {
	format := vs2.Format()
	minOp, maxOp := rvv.OpMinu, rvv.OpMaxu
	if format.Elt.Signed() {
		minOp, maxOp = rvv.OpMin, rvv.OpMax
	}
	smaller := rvv.NewOperation(format, minOp, vs2, vs1, vl)
	larger := rvv.NewOperation(format, maxOp, vs2, vs1, vl)
	return rvv.NewOperation(format, rvv.OpSub, larger, smaller, vl).
		WithPolicies(vm, vd, tail, mask)
}

var validSizes = []int{8, 16, 32, 64}

var validLMULs = []rvv.LMUL{rvv.M1, rvv.M2, rvv.M4, rvv.M8}

// Generate emits the Zvabd emulation translation unit: vabs over the
// signed element types and vabd/vabdu over both signednesses, for
// every tail/mask policy combination.
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

	var validElts []rvv.EltType
	for _, size := range validSizes {
		s, err := rvv.EltFromSize(true, size)
		if err != nil {
			return "", err
		}
		u, err := rvv.EltFromSize(false, size)
		if err != nil {
			return "", err
		}
		validElts = append(validElts, s, u)
	}

	for _, elt := range ext.Filter(validElts, p.Elts) {
		for _, lmul := range ext.Filter(validLMULs, p.LMULs) {
			for _, tail := range ext.Filter(ext.AllTails, p.Tails) {
				for _, mask := range ext.Filter(ext.AllMasks, p.Masks) {
					format := rvv.VectorFormat(elt, lmul)
					vs2 := rvv.NewInput(format, 0)
					vs1 := rvv.NewInput(format, 1)
					vl := rvv.NewNamedInput(rvv.VLFormat(), 2, "vl")

					var vm, vd rvv.Node
					if mask.Masked() {
						vm = rvv.NewNamedInput(format.MaskOf(), 3, "vm")
					}
					if ext.PolicyDst(tail, mask) {
						vd = rvv.NewNamedInput(format, 4, "vd")
					}

					if elt.Signed() {
						proto := rvv.NewOperation(format, rvv.OpAbs, vs2, vl).
							WithPolicies(vm, vd, tail, mask)
						if err := emit(proto, Abs(vs2, vl, vm, vd, tail, mask)); err != nil {
							return "", err
						}
					}

					abdOp := rvv.OpAbdu
					if elt.Signed() {
						abdOp = rvv.OpAbd
					}
					proto := rvv.NewOperation(format, abdOp, vs2, vs1, vl).
						WithPolicies(vm, vd, tail, mask)
					if err := emit(proto, Abd(vs2, vs1, vl, vm, vd, tail, mask)); err != nil {
						return "", err
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
