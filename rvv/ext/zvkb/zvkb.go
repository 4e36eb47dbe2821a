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

// Package zvkb emulates the Zvkb vector bit-manipulation extension:
// rotates, and-not, bit reversal in bytes, and byte reversal.
package zvkb

import (
	"fmt"
	"strings"

	"github.com/ajroetker/riegen/rvv"
	"github.com/ajroetker/riegen/rvv/ext"
)

// rotate builds the classic two-shift rotate: the element shifted one
// way by the rotate amount, the other way by width minus the amount,
// the two halves OR-ed together. A scalar rotate amount keeps the
// complement computation scalar too.
func rotate(left bool, elts, rotAmount, vl rvv.Node) (rvv.Node, error) {
	size, err := elts.Format().Elt.Size()
	if err != nil {
		return nil, fmt.Errorf("zvkb: rotate: %w", err)
	}
	width := rvv.NewImmediate(rotAmount.Format().ScalarOf(), int64(size))

	var complement rvv.Node
	if rotAmount.Format().Kind == rvv.KindVector {
		complement = rvv.NewOperation(rotAmount.Format(), rvv.OpRsub, rotAmount, width, vl)
	} else {
		complement = rvv.NewOperation(rotAmount.Format(), rvv.OpRsub, rotAmount, width)
	}

	fwd, bwd := rvv.OpSll, rvv.OpSrl
	if !left {
		fwd, bwd = rvv.OpSrl, rvv.OpSll
	}
	main := rvv.NewOperation(elts.Format(), fwd, elts, rotAmount, vl)
	spill := rvv.NewOperation(elts.Format(), bwd, elts, complement, vl)
	if !left {
		// Keep the left-shifted half first in the OR regardless of
		// rotate direction.
		main, spill = spill, main
	}
	return rvv.NewOperation(elts.Format(), rvv.OpOr, main, spill, vl), nil
}

// RotateLeft builds the emulation graph of vrol.
func RotateLeft(elts, rotAmount, vl rvv.Node) (rvv.Node, error) {
	return rotate(true, elts, rotAmount, vl)
}

// RotateRight builds the emulation graph of vror.
func RotateRight(elts, rotAmount, vl rvv.Node) (rvv.Node, error) {
	return rotate(false, elts, rotAmount, vl)
}

// AndNot builds the emulation graph of vandn: op0 & ~op1.
func AndNot(op0, op1, vl rvv.Node) rvv.Node {
	inverted := rvv.NewOperation(op1.Format(), rvv.OpNot, op1, vl)
	return rvv.NewOperation(op0.Format(), rvv.OpAnd, op0, inverted, vl)
}

// swapStage masks out alternating bit groups, shifts the two groups
// past each other, and recombines them.
func swapStage(elts, vl rvv.Node, mask int64, shift int64) rvv.Node {
	format := elts.Format()
	scalar := format.ScalarOf()
	high := rvv.NewOperation(format, rvv.OpAnd, elts, rvv.NewImmediate(scalar, mask<<shift), vl)
	low := rvv.NewOperation(format, rvv.OpAnd, elts, rvv.NewImmediate(scalar, mask), vl)
	highDown := rvv.NewOperation(format, rvv.OpSrl, high, rvv.NewImmediate(scalar, shift), vl)
	lowUp := rvv.NewOperation(format, rvv.OpSll, low, rvv.NewImmediate(scalar, shift), vl)
	return rvv.NewOperation(format, rvv.OpOr, highDown, lowUp, vl)
}

// Brev8 builds the emulation graph of vbrev8: reverse the bits inside
// each byte with three swap rounds (nibbles, bit pairs, single bits).
// Masks are truncated to the element width.
func Brev8(elts, vl rvv.Node) (rvv.Node, error) {
	size, err := elts.Format().Elt.Size()
	if err != nil {
		return nil, fmt.Errorf("zvkb: brev8: %w", err)
	}
	m := widthMask(size)
	swapped := swapStage(elts, vl, 0x0F0F0F0F0F0F0F0F&m, 4)
	swapped = swapStage(swapped, vl, 0x3333333333333333&m, 2)
	return swapStage(swapped, vl, 0x5555555555555555&m, 1), nil
}

// Rev8 builds the emulation graph of vrev8: reverse the bytes of each
// element. Elements of a single byte are returned unchanged.
func Rev8(elts, vl rvv.Node) (rvv.Node, error) {
	size, err := elts.Format().Elt.Size()
	if err != nil {
		return nil, fmt.Errorf("zvkb: rev8: %w", err)
	}
	result := elts
	if size >= 64 {
		result = swapStage(result, vl, 0x00000000FFFFFFFF, 32)
	}
	if size >= 32 {
		result = swapStage(result, vl, 0x0000FFFF0000FFFF&widthMask(size), 16)
	}
	if size >= 16 {
		result = swapStage(result, vl, 0x00FF00FF00FF00FF&widthMask(size), 8)
	}
	return result, nil
}

func widthMask(size int) int64 {
	if size >= 64 {
		return -1
	}
	return (1 << size) - 1
}

var validElts = []rvv.EltType{rvv.U8, rvv.U16, rvv.U32, rvv.U64}

var validLMULs = []rvv.LMUL{rvv.M1, rvv.M2, rvv.M4, rvv.M8}

// Generate emits the Zvkb emulation translation unit: vror (vector and
// scalar rotate amounts), vrol, vandn, vbrev8 and vrev8 over the
// unsigned element types at whole-register LMULs.
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
			format := rvv.VectorFormat(elt, lmul)
			lhs := rvv.NewInput(format, 0)
			rhs := rvv.NewInput(format, 1)
			rhsScalar := rvv.NewInput(rvv.ScalarFormat(elt), 1)
			vl := rvv.NewNamedInput(rvv.VLFormat(), 2, "vl")

			type insn struct {
				op    rvv.Opcode
				args  []rvv.Node
				build func() (rvv.Node, error)
			}
			insns := []insn{
				{op: rvv.OpRor, args: []rvv.Node{lhs, rhs, vl},
					build: func() (rvv.Node, error) { return RotateRight(lhs, rhs, vl) }},
				{op: rvv.OpRor, args: []rvv.Node{lhs, rhsScalar, vl},
					build: func() (rvv.Node, error) { return RotateRight(lhs, rhsScalar, vl) }},
				{op: rvv.OpRol, args: []rvv.Node{lhs, rhs, vl},
					build: func() (rvv.Node, error) { return RotateLeft(lhs, rhs, vl) }},
				{op: rvv.OpRol, args: []rvv.Node{lhs, rhsScalar, vl},
					build: func() (rvv.Node, error) { return RotateLeft(lhs, rhsScalar, vl) }},
				{op: rvv.OpAndn, args: []rvv.Node{lhs, rhs, vl},
					build: func() (rvv.Node, error) { return AndNot(lhs, rhs, vl), nil }},
				{op: rvv.OpAndn, args: []rvv.Node{lhs, rhsScalar, vl},
					build: func() (rvv.Node, error) { return AndNot(lhs, rhsScalar, vl), nil }},
				{op: rvv.OpBrev8, args: []rvv.Node{lhs, vl},
					build: func() (rvv.Node, error) { return Brev8(lhs, vl) }},
				{op: rvv.OpRev8, args: []rvv.Node{lhs, vl},
					build: func() (rvv.Node, error) { return Rev8(lhs, vl) }},
			}
			for _, in := range insns {
				proto := rvv.NewOperation(format, in.op, in.args...)
				body, err := in.build()
				if err != nil {
					return "", err
				}
				if err := emit(proto, body); err != nil {
					return "", err
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
