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
	"fmt"
	"strings"
)

var scalarCTypes = map[EltType]string{
	U8:    "uint8_t",
	U16:   "uint16_t",
	U32:   "uint32_t",
	U64:   "uint64_t",
	S8:    "int8_t",
	S16:   "int16_t",
	S32:   "int32_t",
	S64:   "int64_t",
	SizeT: "size_t",
}

// CType renders the C spelling of the format.
func (f Format) CType() (string, error) {
	switch f.Kind {
	case KindVector:
		size, err := f.Elt.Size()
		if err != nil {
			return "", err
		}
		if _, err := f.LMUL.Eighths(); err != nil {
			return "", fmt.Errorf("rvv: vector format: %w", err)
		}
		if f.Elt.Signed() {
			return fmt.Sprintf("vint%d%s_t", size, f.LMUL), nil
		}
		return fmt.Sprintf("vuint%d%s_t", size, f.LMUL), nil
	case KindScalar, KindImmediate:
		t, ok := scalarCTypes[f.Elt]
		if !ok {
			return "", fmt.Errorf("rvv: no scalar C type for element type %v", f.Elt)
		}
		return t, nil
	case KindVectorLength:
		return "size_t", nil
	case KindMask:
		n, err := maskBits(f)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vbool%d_t", n), nil
	}
	return "", fmt.Errorf("rvv: format kind %d has no C type", f.Kind)
}

// maskBits returns the N of vboolN_t: element width divided by LMUL.
func maskBits(f Format) (int, error) {
	size, err := f.Elt.Size()
	if err != nil {
		return 0, fmt.Errorf("rvv: mask format: %w", err)
	}
	e, err := f.LMUL.Eighths()
	if err != nil {
		return 0, fmt.Errorf("rvv: mask format: %w", err)
	}
	n := size * 8 / e
	if n == 0 {
		return 0, fmt.Errorf("rvv: mask format %de%s is out of range", size, f.LMUL)
	}
	return n, nil
}

var eltTags = map[EltType]string{
	U8:  "u8",
	U16: "u16",
	U32: "u32",
	U64: "u64",
	S8:  "i8",
	S16: "i16",
	S32: "i32",
	S64: "i64",
}

// typeTag returns the intrinsic-name type tag of a register-shaped
// format: u32m1-style for vectors, bN for masks.
func typeTag(f Format) (string, error) {
	if f.Kind == KindMask {
		n, err := maskBits(f)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("b%d", n), nil
	}
	tag, ok := eltTags[f.Elt]
	if !ok {
		return "", fmt.Errorf("rvv: no type tag for element type %v", f.Elt)
	}
	if _, err := f.LMUL.Eighths(); err != nil {
		return "", fmt.Errorf("rvv: type tag for %v: %w", f.Elt, err)
	}
	return tag + f.LMUL.String(), nil
}

// operandDescriptor returns the per-operand descriptor characters:
// v for a vector, w for a wider-than-result vector, x for a scalar,
// i for an immediate, m for a mask. Vector-length operands contribute
// nothing.
func operandDescriptor(op *Operation) (string, error) {
	resultSize := 0
	if s, err := op.Format().Elt.Size(); err == nil {
		resultSize = s
	}
	var desc strings.Builder
	args := op.Args()
	for i, arg := range args {
		if i == 0 && len(args) > 3 && accumulatorOps[op.Op()] {
			continue
		}
		switch arg.Format().Kind {
		case KindVector:
			argSize, err := arg.Format().Elt.Size()
			if err != nil {
				return "", fmt.Errorf("rvv: %v operand %d: %w", op.Op(), i, err)
			}
			if len(args) > 1 && resultSize != 0 && argSize > resultSize {
				desc.WriteByte('w')
			} else {
				desc.WriteByte('v')
			}
		case KindScalar:
			desc.WriteByte('x')
		case KindImmediate:
			desc.WriteByte('i')
		case KindMask:
			desc.WriteByte('m')
		}
	}
	return desc.String(), nil
}

// IntrinsicName returns the mangled RVV intrinsic name for op:
// __riscv_v{mnemonic}_{descriptor}_{typetag}{_policysuffix}.
func IntrinsicName(op *Operation) (string, error) {
	mnemonic, ok := opcodeNames[op.Op()]
	if !ok {
		return "", fmt.Errorf("rvv: cannot mangle unknown opcode %v", op.Op())
	}
	tag, err := typeTag(op.Format())
	if err != nil {
		return "", fmt.Errorf("rvv: mangling %v: %w", op.Op(), err)
	}
	desc, err := operandDescriptor(op)
	if err != nil {
		return "", err
	}

	switch {
	case sourceTagOps[op.Op()]:
		if len(op.Args()) == 0 {
			return "", fmt.Errorf("rvv: %v needs a source operand", op.Op())
		}
		srcTag, err := typeTag(op.Args()[0].Format())
		if err != nil {
			return "", fmt.Errorf("rvv: mangling %v source: %w", op.Op(), err)
		}
		tag = srcTag + "_" + tag
		desc = "v"
	case maskResultOps[op.Op()]:
		if len(op.Args()) == 0 {
			return "", fmt.Errorf("rvv: %v needs a source operand", op.Op())
		}
		srcTag, err := typeTag(op.Args()[0].Format())
		if err != nil {
			return "", fmt.Errorf("rvv: mangling %v source: %w", op.Op(), err)
		}
		tag = srcTag + "_" + tag
	case noDescriptorOps[op.Op()]:
		desc = ""
	case op.Op() == OpMv:
		desc = "v_" + desc
	}

	suffix := ""
	if op.Tail == TailUndisturbed {
		suffix = "tu"
	}
	switch op.Mask {
	case MaskAgnostic:
		suffix += "m"
	case MaskUndisturbed:
		suffix += "mu"
	}
	if suffix != "" {
		suffix = "_" + suffix
	}

	if desc == "" {
		return fmt.Sprintf("__riscv_v%s_%s%s", mnemonic, tag, suffix), nil
	}
	return fmt.Sprintf("__riscv_v%s_%s_%s%s", mnemonic, desc, tag, suffix), nil
}

// prototypeParamTypes returns the C parameter types of the prototype
// in call order: mask first when the policy is masked, then the
// destination when an undisturbed policy needs one and it is not
// already among the operands, then the operands themselves.
func prototypeParamTypes(proto *Operation) ([]string, error) {
	types := make([]string, 0, len(proto.Args())+2)
	for i, arg := range proto.Args() {
		t, err := arg.Format().CType()
		if err != nil {
			return nil, fmt.Errorf("rvv: prototype operand %d: %w", i, err)
		}
		types = append(types, t)
	}
	if proto.needsDst() && !containsNode(proto.Args(), proto.Dst) {
		if proto.Dst == nil {
			return nil, fmt.Errorf("rvv: undisturbed policy on %v without a destination operand", proto.Op())
		}
		t, err := proto.Dst.Format().CType()
		if err != nil {
			return nil, fmt.Errorf("rvv: prototype destination: %w", err)
		}
		types = append([]string{t}, types...)
	}
	if proto.Mask.Masked() {
		if proto.VM == nil {
			return nil, fmt.Errorf("rvv: masked policy on %v without a mask operand", proto.Op())
		}
		t, err := proto.VM.Format().CType()
		if err != nil {
			return nil, fmt.Errorf("rvv: prototype mask: %w", err)
		}
		types = append([]string{t}, types...)
	}
	return types, nil
}

// GeneratePrototype renders the C prototype declaration of the
// intrinsic described by proto.
func GeneratePrototype(proto *Operation) (string, error) {
	name, err := IntrinsicName(proto)
	if err != nil {
		return "", err
	}
	dstType, err := proto.Format().CType()
	if err != nil {
		return "", err
	}
	params, err := prototypeParamTypes(proto)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s(%s);", dstType, name, strings.Join(params, ", ")), nil
}

func containsNode(nodes []Node, n Node) bool {
	for _, candidate := range nodes {
		if candidate == n {
			return true
		}
	}
	return false
}
