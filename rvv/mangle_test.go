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

import "testing"

func TestIntrinsicName(t *testing.T) {
	u32m1 := VectorFormat(U32, M1)
	u64m2 := VectorFormat(U64, M2)
	i32m1 := VectorFormat(S32, M1)
	vl := NewInput(VLFormat(), 99)

	tests := []struct {
		name string
		op   *Operation
		want string
	}{
		{
			name: "vector vector add",
			op: NewOperation(u32m1, OpAdd,
				NewInput(u32m1, 0), NewInput(u32m1, 1), vl),
			want: "__riscv_vadd_vv_u32m1",
		},
		{
			name: "masked vector vector add",
			op: NewOperation(u32m1, OpAdd,
				NewInput(u32m1, 0), NewInput(u32m1, 1), vl).
				WithPolicies(NewInput(MaskFormat(U32, M1), 98), nil, TailNone, MaskAgnostic),
			want: "__riscv_vadd_vv_u32m1_m",
		},
		{
			name: "tail undisturbed rotate by scalar",
			op: NewOperation(u64m2, OpRor,
				NewInput(u64m2, 0), NewInput(ScalarFormat(U64), 1), vl).
				WithPolicies(nil, NewInput(u64m2, 97), TailUndisturbed, MaskNone),
			want: "__riscv_vror_vx_u64m2_tu",
		},
		{
			name: "tail undisturbed masked",
			op: NewOperation(u32m1, OpSub,
				NewInput(u32m1, 0), NewInput(u32m1, 1), vl).
				WithPolicies(NewInput(MaskFormat(U32, M1), 98), NewInput(u32m1, 97),
					TailUndisturbed, MaskUndisturbed),
			want: "__riscv_vsub_vv_u32m1_tumu",
		},
		{
			name: "scalar reverse subtract",
			op: NewOperation(u32m1, OpRsub,
				NewInput(u32m1, 0), NewImmediate(ScalarFormat(U32), 32), vl),
			want: "__riscv_vrsub_vx_u32m1",
		},
		{
			name: "splat move",
			op: NewOperation(VectorFormat(U8, M1), OpMv,
				NewImmediate(ScalarFormat(U8), 0x55), vl),
			want: "__riscv_vmv_v_x_u8m1",
		},
		{
			name: "reinterpret width change",
			op: NewOperation(VectorFormat(U16, M2), OpReinterpret,
				NewInput(VectorFormat(U32, M2), 0)),
			want: "__riscv_vreinterpret_v_u32m2_u16m2",
		},
		{
			name: "reinterpret to mask",
			op: NewOperation(MaskFormat(U32, M2), OpReinterpret,
				NewInput(VectorFormat(U8, M1), 0)),
			want: "__riscv_vreinterpret_v_u8m1_b16",
		},
		{
			name: "register group get",
			op: NewOperation(VectorFormat(S32, M4), OpGet,
				NewInput(VectorFormat(S32, M8), 0), NewImmediate(ImmediateFormat(SizeT), 0)),
			want: "__riscv_vget_v_i32m8_i32m4",
		},
		{
			name: "register group create",
			op: NewOperation(VectorFormat(S32, M8), OpCreate,
				NewInput(VectorFormat(S32, M4), 0), NewInput(VectorFormat(S32, M4), 1)),
			want: "__riscv_vcreate_v_i32m4_i32m8",
		},
		{
			name: "widening multiply",
			op: NewOperation(VectorFormat(S16, M2), OpWmul,
				NewInput(VectorFormat(S8, M1), 0), NewInput(VectorFormat(S8, M1), 1), vl),
			want: "__riscv_vwmul_vv_i16m2",
		},
		{
			name: "widening accumulate skips the accumulator operand",
			op: NewOperation(VectorFormat(S32, M2), OpWmacc,
				NewInput(VectorFormat(S32, M2), 0),
				NewInput(VectorFormat(S16, M1), 1),
				NewInput(VectorFormat(S16, M1), 2), vl),
			want: "__riscv_vwmacc_vv_i32m2",
		},
		{
			name: "narrowing shift marks the wide operand",
			op: NewOperation(i32m1, OpNsra,
				NewInput(VectorFormat(S64, M2), 0), NewImmediate(ScalarFormat(SizeT), 0), vl),
			want: "__riscv_vnsra_wx_i32m1",
		},
		{
			name: "zero extend has no operand descriptor",
			op: NewOperation(VectorFormat(U32, M2), OpZextVf2,
				NewInput(VectorFormat(U16, M1), 0), vl),
			want: "__riscv_vzext_vf2_u32m2",
		},
		{
			name: "merge takes a mask operand",
			op: NewOperation(i32m1, OpMerge,
				NewInput(i32m1, 0), NewInput(i32m1, 1),
				NewInput(MaskFormat(S32, M1), 2), vl),
			want: "__riscv_vmerge_vvm_i32m1",
		},
		{
			name: "compare splices the source tag",
			op: NewOperation(MaskFormat(S32, M1), OpLt,
				NewInput(i32m1, 0), NewImmediate(ScalarFormat(S32), 0), vl),
			want: "__riscv_vmslt_vx_i32m1_b32",
		},
		{
			name: "compress",
			op: NewOperation(u64m2, OpCompress,
				NewInput(u64m2, 0), NewInput(MaskFormat(U64, M2), 1), vl),
			want: "__riscv_vcompress_vm_u64m2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntrinsicName(tt.op)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIntrinsicNameErrors(t *testing.T) {
	u32m1 := VectorFormat(U32, M1)
	tests := []struct {
		name string
		op   *Operation
	}{
		{
			name: "unknown opcode",
			op:   NewOperation(u32m1, Opcode(9999), NewInput(u32m1, 0)),
		},
		{
			name: "placeholder element type",
			op:   NewOperation(VectorFormat(EltPlaceholder, M1), OpAdd, NewInput(u32m1, 0)),
		},
		{
			name: "vector format without lmul",
			op:   NewOperation(Format{Kind: KindVector, Elt: U32}, OpAdd, NewInput(u32m1, 0)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := IntrinsicName(tt.op); err == nil {
				t.Errorf("got %q, want error", got)
			}
		})
	}
}

func TestGeneratePrototype(t *testing.T) {
	u32m1 := VectorFormat(U32, M1)
	u64m2 := VectorFormat(U64, M2)
	vl := NewInput(VLFormat(), 99)

	tests := []struct {
		name string
		op   *Operation
		want string
	}{
		{
			name: "plain",
			op: NewOperation(u32m1, OpRor,
				NewInput(u32m1, 0), NewInput(u32m1, 1), vl),
			want: "vuint32m1_t __riscv_vror_vv_u32m1(vuint32m1_t, vuint32m1_t, size_t);",
		},
		{
			name: "tail undisturbed lists the destination first",
			op: NewOperation(u64m2, OpRor,
				NewInput(u64m2, 0), NewInput(ScalarFormat(U64), 1), vl).
				WithPolicies(nil, NewInput(u64m2, 97), TailUndisturbed, MaskNone),
			want: "vuint64m2_t __riscv_vror_vx_u64m2_tu(vuint64m2_t, vuint64m2_t, uint64_t, size_t);",
		},
		{
			name: "masked lists the mask before the destination",
			op: NewOperation(u32m1, OpAdd,
				NewInput(u32m1, 0), NewInput(u32m1, 1), vl).
				WithPolicies(NewInput(MaskFormat(U32, M1), 98), NewInput(u32m1, 97),
					TailNone, MaskUndisturbed),
			want: "vuint32m1_t __riscv_vadd_vv_u32m1_mu(vbool32_t, vuint32m1_t, vuint32m1_t, vuint32m1_t, size_t);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GeneratePrototype(tt.op)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}
