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

// Node is a vertex in an emulation graph. Nodes are built once per
// generated combination and never mutated after construction; shared
// subexpressions are expressed by reusing the same pointer, so two
// structurally equal nodes built separately are still distinct
// computations.
type Node interface {
	Format() Format
}

// Input is a parameter of the intrinsic being emulated.
type Input struct {
	format Format
	index  int
	name   string
}

// NewInput returns an input with the default positional name opN.
func NewInput(format Format, index int) *Input {
	return &Input{format: format, index: index}
}

// NewNamedInput returns an input with an explicit parameter name.
func NewNamedInput(format Format, index int, name string) *Input {
	return &Input{format: format, index: index, name: name}
}

func (in *Input) Format() Format { return in.format }

// ParamName returns the declared parameter name, or the positional
// default when none was given.
func (in *Input) ParamName() string {
	if in.name != "" {
		return in.name
	}
	return fmt.Sprintf("op%d", in.index)
}

// Immediate is a compile-time constant operand; it lowers to a C
// integer literal rather than a temporary.
type Immediate struct {
	format Format
	value  int64
}

// NewImmediate returns an immediate with the given literal value.
func NewImmediate(format Format, value int64) *Immediate {
	return &Immediate{format: format, value: value}
}

// NewFormatPlaceholder returns an immediate that exists only to carry
// format metadata for operations such as vsetvlmax. Its value is never
// rendered.
func NewFormatPlaceholder(format Format) *Immediate {
	return &Immediate{format: format}
}

func (im *Immediate) Format() Format { return im.format }

// Value returns the literal value.
func (im *Immediate) Value() int64 { return im.value }

// Operation is an interior graph node: an opcode applied to ordered
// operands, with optional side channels for the mask operand, the
// destination operand required by undisturbed policies, and the
// tail/mask policies themselves.
type Operation struct {
	format Format
	op     Opcode
	args   []Node

	// VM is the mask operand; nil unless the mask policy needs one.
	VM Node
	// Dst is the previous destination value; nil unless a policy is
	// undisturbed.
	Dst  Node
	Tail TailPolicy
	Mask MaskPolicy
}

// NewOperation returns an operation node with default (absent)
// policies. Construction is declarative: no operand validation happens
// here, mismatches surface as lowering errors.
func NewOperation(format Format, op Opcode, args ...Node) *Operation {
	return &Operation{format: format, op: op, args: args}
}

func (o *Operation) Format() Format { return o.format }

// Op returns the opcode.
func (o *Operation) Op() Opcode { return o.op }

// Args returns the ordered operand list.
func (o *Operation) Args() []Node { return o.args }

// WithPolicies sets the side-channel operands and policies and returns
// o, so policied roots can be built in one expression.
func (o *Operation) WithPolicies(vm, dst Node, tail TailPolicy, mask MaskPolicy) *Operation {
	o.VM = vm
	o.Dst = dst
	o.Tail = tail
	o.Mask = mask
	return o
}

// needsDst reports whether an undisturbed policy forces the previous
// destination value into the operand list.
func (o *Operation) needsDst() bool {
	return o.Tail == TailUndisturbed || o.Mask == MaskUndisturbed
}

// ExpandReinterpretCast wraps source in the reinterpret operations
// needed to view it as the target vector format. A single reinterpret
// intrinsic changes either signedness or element width, never both, so
// a cast changing both expands to two chained nodes. Reinterprets that
// would be identities collapse to the source itself.
func ExpandReinterpretCast(source Node, target Format) (Node, error) {
	from := source.Format()
	if from.Elt == target.Elt && from.LMUL == target.LMUL && from.Kind == target.Kind {
		return source, nil
	}
	fromSize, err := from.Elt.Size()
	if err != nil {
		return nil, fmt.Errorf("rvv: reinterpret source: %w", err)
	}
	targetSize, err := target.Elt.Size()
	if err != nil {
		return nil, fmt.Errorf("rvv: reinterpret target: %w", err)
	}
	if from.Elt.Signed() != target.Elt.Signed() && fromSize != targetSize {
		// Flip the sign at the source width first, then change width.
		mid, err := from.Elt.InverseSign()
		if err != nil {
			return nil, err
		}
		flipped := NewOperation(Format{Kind: target.Kind, Elt: mid, LMUL: from.LMUL}, OpReinterpret, source)
		return NewOperation(target, OpReinterpret, flipped), nil
	}
	return NewOperation(target, OpReinterpret, source), nil
}
