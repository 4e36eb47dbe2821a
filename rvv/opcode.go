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

import "fmt"

// Opcode identifies an abstract operation. Opcode behavior is defined
// by the lookup tables below rather than per-opcode methods, so adding
// an opcode is a table edit.
type Opcode int

const (
	OpNone Opcode = iota

	// Shifts and rotates.
	OpRor
	OpRol
	OpSll
	OpSrl
	OpSra
	OpNsrl
	OpNsra

	// Integer arithmetic.
	OpAdd
	OpSub
	OpRsub
	OpMul
	OpDiv
	OpRem
	OpMin
	OpMax
	OpMinu
	OpMaxu

	// Bitwise.
	OpAnd
	OpOr
	OpXor
	OpAndn
	OpNot
	OpBrev8
	OpRev8

	// Comparisons (vector forms produce mask registers).
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Widening arithmetic.
	OpWadd
	OpWaddu
	OpWmul
	OpWmulu
	OpWmulsu
	OpMacc
	OpWmacc
	OpWmaccu
	OpWmaccsu
	OpWmaccus

	// Emulated extension surfaces.
	OpDot4a
	OpDot4au
	OpDot4asu
	OpDot4aus
	OpAbs
	OpAbd
	OpAbdu
	OpZip
	OpUnzipEven
	OpUnzipOdd

	// Moves, permutes, register manipulation.
	OpMv
	OpMerge
	OpSlideUp
	OpSlideDown
	OpCompress
	OpZextVf2
	OpSextVf2
	OpReinterpret
	OpCreate
	OpGet
	OpVsetvlMax
)

// opcodeNames maps each opcode to the mnemonic fragment spliced into
// the mangled intrinsic name after the "__riscv_v" prefix.
var opcodeNames = map[Opcode]string{
	OpRor:  "ror",
	OpRol:  "rol",
	OpSll:  "sll",
	OpSrl:  "srl",
	OpSra:  "sra",
	OpNsrl: "nsrl",
	OpNsra: "nsra",

	OpAdd:  "add",
	OpSub:  "sub",
	OpRsub: "rsub",
	OpMul:  "mul",
	OpDiv:  "div",
	OpRem:  "rem",
	OpMin:  "min",
	OpMax:  "max",
	OpMinu: "minu",
	OpMaxu: "maxu",

	OpAnd:   "and",
	OpOr:    "or",
	OpXor:   "xor",
	OpAndn:  "andn",
	OpNot:   "not",
	OpBrev8: "brev8",
	OpRev8:  "rev8",

	OpEq: "mseq",
	OpNe: "msne",
	OpLt: "mslt",
	OpLe: "msle",
	OpGt: "msgt",
	OpGe: "msge",

	OpWadd:    "wadd",
	OpWaddu:   "waddu",
	OpWmul:    "wmul",
	OpWmulu:   "wmulu",
	OpWmulsu:  "wmulsu",
	OpMacc:    "macc",
	OpWmacc:   "wmacc",
	OpWmaccu:  "wmaccu",
	OpWmaccsu: "wmaccsu",
	OpWmaccus: "wmaccus",

	OpDot4a:     "dot4a",
	OpDot4au:    "dot4au",
	OpDot4asu:   "dot4asu",
	OpDot4aus:   "dot4aus",
	OpAbs:       "abs",
	OpAbd:       "abd",
	OpAbdu:      "abdu",
	OpZip:       "zip",
	OpUnzipEven: "unzipeven",
	OpUnzipOdd:  "unzipodd",

	OpMv:          "mv",
	OpMerge:       "merge",
	OpSlideUp:     "slideup",
	OpSlideDown:   "slidedown",
	OpCompress:    "compress",
	OpZextVf2:     "zext_vf2",
	OpSextVf2:     "sext_vf2",
	OpReinterpret: "reinterpret",
	OpCreate:      "create",
	OpGet:         "get",
	OpVsetvlMax:   "setvlmax",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// accumulatorOps take the accumulator as their first operand; the
// mangled operand descriptor never describes it.
var accumulatorOps = map[Opcode]bool{
	OpMacc:    true,
	OpWmacc:   true,
	OpWmaccu:  true,
	OpWmaccsu: true,
	OpWmaccus: true,
	OpDot4a:   true,
	OpDot4au:  true,
	OpDot4asu: true,
	OpDot4aus: true,
}

// registerManipOps rearrange whole register groups: they carry no vl
// and never take mask or destination operands.
var registerManipOps = map[Opcode]bool{
	OpCreate: true,
	OpGet:    true,
}

// sourceTagOps mangle the source operand's type tag ahead of the
// destination tag and use a fixed "v" operand descriptor.
var sourceTagOps = map[Opcode]bool{
	OpReinterpret: true,
	OpCreate:      true,
	OpGet:         true,
}

// maskResultOps produce a mask register; their names carry the source
// tag ahead of the bN destination tag.
var maskResultOps = map[Opcode]bool{
	OpEq: true,
	OpNe: true,
	OpLt: true,
	OpLe: true,
	OpGt: true,
	OpGe: true,
}

// noDescriptorOps encode the operand shape in the mnemonic itself
// (vzext_vf2 and friends) and omit the descriptor segment.
var noDescriptorOps = map[Opcode]bool{
	OpZextVf2: true,
	OpSextVf2: true,
}

// scalarBuilder renders an all-scalar operation as a native C
// expression from its already-lowered operand strings.
type scalarBuilder func(op *Operation, args []string) (string, error)

func binaryScalar(operator string) scalarBuilder {
	return func(op *Operation, args []string) (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("rvv: scalar %v needs two operands, got %d", op.Op(), len(args))
		}
		return fmt.Sprintf("%s %s %s", args[0], operator, args[1]), nil
	}
}

func selectScalar(operator string) scalarBuilder {
	return func(op *Operation, args []string) (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("rvv: scalar %v needs two operands, got %d", op.Op(), len(args))
		}
		return fmt.Sprintf("%s %s %s ? %s : %s", args[0], operator, args[1], args[0], args[1]), nil
	}
}

// rotateScalar rotates at the operation's element width, so the width
// must be a concrete integer size.
func rotateScalar(left bool) scalarBuilder {
	return func(op *Operation, args []string) (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("rvv: scalar %v needs two operands, got %d", op.Op(), len(args))
		}
		size, err := op.Format().Elt.Size()
		if err != nil {
			return "", fmt.Errorf("rvv: scalar %v: %w", op.Op(), err)
		}
		fwd, bwd := "<<", ">>"
		if !left {
			fwd, bwd = ">>", "<<"
		}
		return fmt.Sprintf("%s %s %s | %s %s (%d - %s)",
			args[0], fwd, args[1], args[0], bwd, size, args[1]), nil
	}
}

var scalarBuilders = map[Opcode]scalarBuilder{
	OpAdd: binaryScalar("+"),
	OpSub: binaryScalar("-"),
	OpMul: binaryScalar("*"),
	OpDiv: binaryScalar("/"),
	OpRem: binaryScalar("%"),
	OpAnd: binaryScalar("&"),
	OpOr:  binaryScalar("|"),
	OpXor: binaryScalar("^"),
	OpSll: binaryScalar("<<"),
	OpSrl: binaryScalar(">>"),
	OpSra: binaryScalar(">>"),
	OpEq:  binaryScalar("=="),
	OpNe:  binaryScalar("!="),
	OpLt:  binaryScalar("<"),
	OpLe:  binaryScalar("<="),
	OpGt:  binaryScalar(">"),
	OpGe:  binaryScalar(">="),

	OpMin:  selectScalar("<"),
	OpMinu: selectScalar("<"),
	OpMax:  selectScalar(">"),
	OpMaxu: selectScalar(">"),

	OpRol: rotateScalar(true),
	OpRor: rotateScalar(false),

	OpRsub: func(op *Operation, args []string) (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("rvv: scalar rsub needs two operands, got %d", len(args))
		}
		return fmt.Sprintf("%s - %s", args[1], args[0]), nil
	},
	OpNot: func(op *Operation, args []string) (string, error) {
		if len(args) < 1 {
			return "", fmt.Errorf("rvv: scalar not needs an operand")
		}
		return "~" + args[0], nil
	},
	OpAndn: func(op *Operation, args []string) (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("rvv: scalar andn needs two operands, got %d", len(args))
		}
		return fmt.Sprintf("%s & ~%s", args[0], args[1]), nil
	},
}
