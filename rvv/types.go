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

// elen is the maximum supported element width in bits. All validity
// rules in this package assume a target with ELEN=64.
const elen = 64

// EltType identifies the element kind of a vector or scalar operand.
type EltType int

const (
	EltNone EltType = iota
	U8
	U16
	U32
	U64
	S8
	S16
	S32
	S64
	SizeT
	EltPlaceholder
)

var eltNames = map[EltType]string{
	U8:             "u8",
	U16:            "u16",
	U32:            "u32",
	U64:            "u64",
	S8:             "s8",
	S16:            "s16",
	S32:            "s32",
	S64:            "s64",
	SizeT:          "size_t",
	EltPlaceholder: "placeholder",
}

func (t EltType) String() string {
	if s, ok := eltNames[t]; ok {
		return s
	}
	return fmt.Sprintf("EltType(%d)", int(t))
}

var eltSizes = map[EltType]int{
	U8: 8, S8: 8,
	U16: 16, S16: 16,
	U32: 32, S32: 32,
	U64: 64, S64: 64,
}

// Size returns the element width in bits. It fails for non-integer
// element types (size_t and placeholders have no vector element width).
func (t EltType) Size() (int, error) {
	size, ok := eltSizes[t]
	if !ok {
		return 0, fmt.Errorf("rvv: element type %v has no width", t)
	}
	return size, nil
}

// Signed reports whether t is a signed integer type.
func (t EltType) Signed() bool {
	switch t {
	case S8, S16, S32, S64:
		return true
	}
	return false
}

// InverseSign returns the same-width integer type with the opposite
// signedness.
func (t EltType) InverseSign() (EltType, error) {
	switch t {
	case U8:
		return S8, nil
	case U16:
		return S16, nil
	case U32:
		return S32, nil
	case U64:
		return S64, nil
	case S8:
		return U8, nil
	case S16:
		return U16, nil
	case S32:
		return U32, nil
	case S64:
		return U64, nil
	}
	return EltNone, fmt.Errorf("rvv: element type %v has no signedness", t)
}

// Widen returns the integer type with double the width of t.
func (t EltType) Widen() (EltType, error) {
	size, err := t.Size()
	if err != nil {
		return EltNone, err
	}
	return EltFromSize(t.Signed(), size*2)
}

// Narrow returns the integer type with half the width of t.
func (t EltType) Narrow() (EltType, error) {
	size, err := t.Size()
	if err != nil {
		return EltNone, err
	}
	return EltFromSize(t.Signed(), size/2)
}

// EltFromSize returns the integer type with the given signedness and
// width in bits.
func EltFromSize(signed bool, bits int) (EltType, error) {
	unsigned := map[int]EltType{8: U8, 16: U16, 32: U32, 64: U64}
	if signed {
		unsigned = map[int]EltType{8: S8, 16: S16, 32: S32, 64: S64}
	}
	t, ok := unsigned[bits]
	if !ok {
		return EltNone, fmt.Errorf("rvv: no %d-bit integer element type", bits)
	}
	return t, nil
}

// LMUL is a register-grouping multiplier. The zero value LMULNone
// means the grouping does not apply (scalar and vector-length shapes).
type LMUL int

const (
	LMULNone LMUL = iota
	MF8
	MF4
	MF2
	M1
	M2
	M4
	M8
)

var lmulNames = map[LMUL]string{
	MF8: "mf8",
	MF4: "mf4",
	MF2: "mf2",
	M1:  "m1",
	M2:  "m2",
	M4:  "m4",
	M8:  "m8",
}

// lmulEighths maps each canonical grouping to its exact value expressed
// as a multiple of 1/8, so all LMUL arithmetic stays rational.
var lmulEighths = map[LMUL]int{
	MF8: 1,
	MF4: 2,
	MF2: 4,
	M1:  8,
	M2:  16,
	M4:  32,
	M8:  64,
}

func (l LMUL) String() string {
	if s, ok := lmulNames[l]; ok {
		return s
	}
	return fmt.Sprintf("LMUL(%d)", int(l))
}

// Eighths returns the grouping as an exact multiple of 1/8 of a vector
// register.
func (l LMUL) Eighths() (int, error) {
	e, ok := lmulEighths[l]
	if !ok {
		return 0, fmt.Errorf("rvv: invalid LMUL %v", l)
	}
	return e, nil
}

// LMULFromEighths maps a multiple of 1/8 back to its canonical LMUL.
// It fails for any value outside the seven canonical groupings.
func LMULFromEighths(e int) (LMUL, error) {
	for l, v := range lmulEighths {
		if v == e {
			return l, nil
		}
	}
	return LMULNone, fmt.Errorf("rvv: no LMUL with value %d/8", e)
}

// Mul scales the grouping by a power-of-two factor. The result must
// land on a canonical grouping.
func (l LMUL) Mul(factor int) (LMUL, error) {
	e, err := l.Eighths()
	if err != nil {
		return LMULNone, err
	}
	return LMULFromEighths(e * factor)
}

// Div scales the grouping down by a power-of-two divisor. The result
// must land on a canonical grouping.
func (l LMUL) Div(divisor int) (LMUL, error) {
	e, err := l.Eighths()
	if err != nil {
		return LMULNone, err
	}
	if divisor == 0 || e%divisor != 0 {
		return LMULNone, fmt.Errorf("rvv: cannot divide LMUL %v by %d", l, divisor)
	}
	return LMULFromEighths(e / divisor)
}

// IsValidForEEW reports whether the grouping is large enough for the
// element width: a register group may not shrink below 1/8 of a vector
// register, so lmul must be at least eew/ELEN.
func IsValidForEEW(elt EltType, l LMUL) bool {
	size, err := elt.Size()
	if err != nil {
		return false
	}
	e, err := l.Eighths()
	if err != nil {
		return false
	}
	return e*(elen/8) >= size
}

// TailPolicy selects what happens to destination elements past the
// active vector length. The zero value means the policy does not apply
// to the operation.
type TailPolicy int

const (
	TailNone TailPolicy = iota
	TailAgnostic
	TailUndisturbed
)

// MaskPolicy selects what happens to masked-off destination elements.
// The zero value means the policy does not apply to the operation.
type MaskPolicy int

const (
	MaskNone MaskPolicy = iota
	MaskAgnostic
	MaskUndisturbed
	MaskUnmasked
)

// Masked reports whether the policy requires a mask operand.
func (p MaskPolicy) Masked() bool {
	return p == MaskAgnostic || p == MaskUndisturbed
}

// FormatKind is the syntactic category of a node.
type FormatKind int

const (
	KindNone FormatKind = iota
	KindVector
	KindScalar
	KindImmediate
	KindVectorLength
	KindMask
	KindPlaceholder
)

// Format describes the shape of a node: its category, element type and,
// for register-shaped categories, the register grouping. Use the
// constructors below; they enforce which categories carry an LMUL.
type Format struct {
	Kind FormatKind
	Elt  EltType
	LMUL LMUL
}

// VectorFormat returns the format of a vector register group.
func VectorFormat(elt EltType, lmul LMUL) Format {
	return Format{Kind: KindVector, Elt: elt, LMUL: lmul}
}

// ScalarFormat returns the format of a scalar operand.
func ScalarFormat(elt EltType) Format {
	return Format{Kind: KindScalar, Elt: elt}
}

// ImmediateFormat returns the format of an immediate operand.
func ImmediateFormat(elt EltType) Format {
	return Format{Kind: KindImmediate, Elt: elt}
}

// VLFormat returns the format of a vector-length operand.
func VLFormat() Format {
	return Format{Kind: KindVectorLength, Elt: SizeT}
}

// MaskFormat returns the format of a mask register shaped for the given
// element width and grouping.
func MaskFormat(elt EltType, lmul LMUL) Format {
	return Format{Kind: KindMask, Elt: elt, LMUL: lmul}
}

// PlaceholderFormat returns a format that only carries metadata; nodes
// with this format are never evaluated.
func PlaceholderFormat(elt EltType, lmul LMUL) Format {
	return Format{Kind: KindPlaceholder, Elt: elt, LMUL: lmul}
}

// ScalarOf returns the scalar format carrying f's element type.
func (f Format) ScalarOf() Format {
	return ScalarFormat(f.Elt)
}

// MaskOf returns the mask format matching f's element width and
// grouping.
func (f Format) MaskOf() Format {
	return MaskFormat(f.Elt, f.LMUL)
}
