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
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// lowerer holds the per-invocation state of one graph lowering: the
// emitted statement buffer, the temporary counter, and the node memo.
// The memo is keyed by node pointer, so shared subexpressions lower
// once while structurally equal but distinct nodes lower separately.
type lowerer struct {
	buf     bytes.Buffer
	nextTmp int
	memo    map[Node]string
}

func newLowerer() *lowerer {
	return &lowerer{memo: make(map[Node]string)}
}

func (l *lowerer) newTmp() string {
	name := fmt.Sprintf("tmp%d", l.nextTmp)
	l.nextTmp++
	return name
}

// lower returns the C expression or temporary naming n's value,
// emitting any statements n needs first.
func (l *lowerer) lower(n Node) (string, error) {
	switch n := n.(type) {
	case *Input:
		name, ok := l.memo[n]
		if !ok {
			return "", fmt.Errorf("rvv: input %s is not a parameter of the lowered function", n.ParamName())
		}
		return name, nil
	case *Immediate:
		// Bit patterns with the top bit set on unsigned operands
		// render as unsigned 64-bit literals, not negative decimals.
		if !n.Format().Elt.Signed() && n.Value() < 0 {
			return strconv.FormatUint(uint64(n.Value()), 10) + "ULL", nil
		}
		return strconv.FormatInt(n.Value(), 10), nil
	case *Operation:
		if name, ok := l.memo[n]; ok {
			return name, nil
		}
		if n.Format().Kind == KindVector || n.Format().Kind == KindMask || hasVectorOperand(n) {
			return l.lowerCall(n)
		}
		return l.lowerScalar(n)
	}
	return "", fmt.Errorf("rvv: cannot lower node of type %T", n)
}

func hasVectorOperand(op *Operation) bool {
	for _, arg := range op.Args() {
		switch arg.Format().Kind {
		case KindVector, KindMask:
			return true
		}
	}
	return false
}

// lowerCall emits an intrinsic call statement for a vector-touching
// operation. The destination operand (for undisturbed policies) and
// the mask operand (for masked policies) are prepended to the call,
// mask first, matching the RVV intrinsic calling convention. Register
// manipulation ops never take either.
func (l *lowerer) lowerCall(op *Operation) (string, error) {
	args := make([]string, 0, len(op.Args())+2)
	for _, arg := range op.Args() {
		s, err := l.lower(arg)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}
	if !registerManipOps[op.Op()] {
		if op.needsDst() {
			if op.Dst == nil {
				return "", fmt.Errorf("rvv: undisturbed policy on %v without a destination operand", op.Op())
			}
			s, err := l.lower(op.Dst)
			if err != nil {
				return "", err
			}
			args = append([]string{s}, args...)
		}
		if op.Mask.Masked() {
			if op.VM == nil {
				return "", fmt.Errorf("rvv: masked policy on %v without a mask operand", op.Op())
			}
			s, err := l.lower(op.VM)
			if err != nil {
				return "", err
			}
			args = append([]string{s}, args...)
		}
	}

	name, err := IntrinsicName(op)
	if err != nil {
		return "", err
	}
	ctype, err := op.Format().CType()
	if err != nil {
		return "", fmt.Errorf("rvv: lowering %v: %w", op.Op(), err)
	}
	tmp := l.newTmp()
	l.memo[op] = tmp
	fmt.Fprintf(&l.buf, "  %s %s = %s(%s);\n", ctype, tmp, name, strings.Join(args, ", "))
	return tmp, nil
}

// lowerScalar emits a native C statement for an all-scalar operation.
// VSETVLMAX is special: it reads only its placeholder operand's format
// and lowers to a plain call expression.
func (l *lowerer) lowerScalar(op *Operation) (string, error) {
	if op.Op() == OpVsetvlMax {
		if len(op.Args()) == 0 {
			return "", fmt.Errorf("rvv: vsetvlmax needs a format placeholder operand")
		}
		f := op.Args()[0].Format()
		size, err := f.Elt.Size()
		if err != nil {
			return "", fmt.Errorf("rvv: vsetvlmax: %w", err)
		}
		if _, err := f.LMUL.Eighths(); err != nil {
			return "", fmt.Errorf("rvv: vsetvlmax: %w", err)
		}
		return fmt.Sprintf("__riscv_vsetvlmax_e%d%s()", size, f.LMUL), nil
	}

	args := make([]string, 0, len(op.Args()))
	for _, arg := range op.Args() {
		s, err := l.lower(arg)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}
	build, ok := scalarBuilders[op.Op()]
	if !ok {
		return "", fmt.Errorf("rvv: opcode %v has no scalar lowering", op.Op())
	}
	expr, err := build(op, args)
	if err != nil {
		return "", err
	}
	ctype, err := op.Format().CType()
	if err != nil {
		return "", fmt.Errorf("rvv: lowering scalar %v: %w", op.Op(), err)
	}
	tmp := l.newTmp()
	l.memo[op] = tmp
	fmt.Fprintf(&l.buf, "  %s %s = %s;\n", ctype, tmp, expr)
	return tmp, nil
}

// seedParams declares proto's parameters in the memo and returns the
// parameter declaration list, mask first, then destination, then the
// operands.
func (l *lowerer) seedParams(proto *Operation) ([]string, error) {
	params := make([]string, 0, len(proto.Args())+2)
	for i, arg := range proto.Args() {
		in, ok := arg.(*Input)
		if !ok {
			return nil, fmt.Errorf("rvv: prototype operand %d must be an input, got %T", i, arg)
		}
		ctype, err := in.Format().CType()
		if err != nil {
			return nil, fmt.Errorf("rvv: prototype operand %d: %w", i, err)
		}
		params = append(params, ctype+" "+in.ParamName())
		l.memo[in] = in.ParamName()
	}
	if proto.needsDst() && !containsNode(proto.Args(), proto.Dst) {
		in, ok := proto.Dst.(*Input)
		if !ok {
			return nil, fmt.Errorf("rvv: prototype destination must be an input, got %T", proto.Dst)
		}
		ctype, err := in.Format().CType()
		if err != nil {
			return nil, fmt.Errorf("rvv: prototype destination: %w", err)
		}
		params = append([]string{ctype + " " + in.ParamName()}, params...)
		l.memo[in] = in.ParamName()
	}
	if proto.Mask.Masked() {
		in, ok := proto.VM.(*Input)
		if !ok {
			return nil, fmt.Errorf("rvv: prototype mask must be an input, got %T", proto.VM)
		}
		ctype, err := in.Format().CType()
		if err != nil {
			return nil, fmt.Errorf("rvv: prototype mask: %w", err)
		}
		params = append([]string{ctype + " " + in.ParamName()}, params...)
		l.memo[in] = in.ParamName()
	}
	return params, nil
}

// GenerateFunction renders a complete C function definition whose
// signature is the intrinsic described by proto and whose body lowers
// the emulation graph. attributes, when present, are prepended to the
// signature verbatim.
func GenerateFunction(proto *Operation, emulation Node, attributes []string) (string, error) {
	name, err := IntrinsicName(proto)
	if err != nil {
		return "", err
	}
	dstType, err := proto.Format().CType()
	if err != nil {
		return "", err
	}

	l := newLowerer()
	params, err := l.seedParams(proto)
	if err != nil {
		return "", err
	}
	result, err := l.lower(emulation)
	if err != nil {
		return "", fmt.Errorf("rvv: lowering %s: %w", name, err)
	}

	var sb strings.Builder
	if len(attributes) > 0 {
		sb.WriteString(strings.Join(attributes, " "))
		sb.WriteByte(' ')
	}
	fmt.Fprintf(&sb, "%s %s(%s) {\n", dstType, name, strings.Join(params, ", "))
	sb.Write(l.buf.Bytes())
	fmt.Fprintf(&sb, "  return %s;\n}", result)
	return sb.String(), nil
}
