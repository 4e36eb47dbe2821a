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

package zvdot4a8i

import (
	"strings"
	"testing"

	"github.com/ajroetker/riegen/rvv"
	"github.com/ajroetker/riegen/rvv/ext"
)

func buildVariant(t *testing.T, v Variant, lmul rvv.LMUL, tail rvv.TailPolicy, mask rvv.MaskPolicy) string {
	t.Helper()
	accFmt := rvv.VectorFormat(v.AccElt(), lmul)
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
		dst = vd
	}
	proto := rvv.NewOperation(accFmt, v.Opcode(), vd, vs2, vs1, vl).
		WithPolicies(vm, dst, tail, mask)
	body, err := v.Accumulate(vd, vs2, vs1, vl, vm, dst, tail, mask)
	if err != nil {
		t.Fatal(err)
	}
	got, err := rvv.GenerateFunction(proto, body, nil)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestSignedDotProduct(t *testing.T) {
	got := buildVariant(t, SS, rvv.M1, rvv.TailAgnostic, rvv.MaskUnmasked)

	if !strings.HasPrefix(got,
		"vint32m1_t __riscv_vdot4a_vv_i32m1(vint32m1_t vd, vint32m1_t op1, vint32m1_t op2, size_t vl) {") {
		t.Errorf("signature wrong:\n%s", got)
	}
	for _, frag := range []string{
		// Sources viewed as packed signed bytes.
		"__riscv_vreinterpret_v_i32m1_i8m1(op1)",
		"__riscv_vreinterpret_v_i32m1_i8m1(op2)",
		// Widening multiply at four lanes per accumulator lane.
		" = vl * 4;",
		"__riscv_vwmul_vv_i16m2(",
		// Pairwise folds at 32 then 64 bits with arithmetic shifts.
		"__riscv_vreinterpret_v_i16m2_i32m2(",
		"__riscv_vsra_vx_i32m2(",
		"__riscv_vreinterpret_v_i32m2_i64m2(",
		"__riscv_vsra_vx_i64m2(",
		// Narrow back and accumulate.
		"__riscv_vnsra_wx_i32m1(",
		"__riscv_vadd_vv_i32m1(vd, ",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %q in:\n%s", frag, got)
		}
	}
}

func TestUnsignedDotProduct(t *testing.T) {
	got := buildVariant(t, UU, rvv.M2, rvv.TailAgnostic, rvv.MaskUnmasked)

	if !strings.Contains(got, "__riscv_vdot4au_vv_u32m2(") {
		t.Errorf("unsigned surface name wrong:\n%s", got)
	}
	for _, frag := range []string{
		"__riscv_vwmulu_vv_u16m4(",
		// Unsigned folds mask the low half instead of shifting twice.
		"__riscv_vand_vx_u32m4(", ", 65535, vl)",
		"__riscv_vand_vx_u64m4(", ", 4294967295, vl)",
		"__riscv_vsrl_vx_u64m4(",
		"__riscv_vnsrl_wx_u32m2(",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %q in:\n%s", frag, got)
		}
	}
	if strings.Contains(got, "vsra") {
		t.Errorf("unsigned variant uses arithmetic shifts:\n%s", got)
	}
}

func TestMixedSignVariantsSwapForWmulsu(t *testing.T) {
	su := buildVariant(t, SU, rvv.M1, rvv.TailAgnostic, rvv.MaskUnmasked)
	if !strings.Contains(su, "__riscv_vdot4asu_vv_i32m1(") {
		t.Errorf("su surface name wrong:\n%s", su)
	}
	// vs2 (op1) is the signed operand and stays first.
	if !strings.Contains(su, "__riscv_vreinterpret_v_i32m1_i8m1(op1)") {
		t.Errorf("su does not view op1 as signed bytes:\n%s", su)
	}
	if !strings.Contains(su, "__riscv_vwmulsu_vv_i16m2(") {
		t.Errorf("su does not use vwmulsu:\n%s", su)
	}

	us := buildVariant(t, US, rvv.M1, rvv.TailAgnostic, rvv.MaskUnmasked)
	if !strings.Contains(us, "__riscv_vdot4aus_vv_i32m1(") {
		t.Errorf("us surface name wrong:\n%s", us)
	}
	// vs1 (op2) carries the signed bytes, so the multiply operands
	// swap to keep the signed side first.
	if !strings.Contains(us, "__riscv_vreinterpret_v_i32m1_i8m1(op2)") {
		t.Errorf("us does not view op2 as signed bytes:\n%s", us)
	}
	if !strings.Contains(us, "__riscv_vwmulsu_vv_i16m2(") {
		t.Errorf("us does not use vwmulsu:\n%s", us)
	}
}

func TestMaskedAccumulate(t *testing.T) {
	got := buildVariant(t, SS, rvv.M1, rvv.TailUndisturbed, rvv.MaskUndisturbed)
	if !strings.Contains(got, "__riscv_vdot4a_vv_i32m1_tumu(vbool32_t vm, vint32m1_t vd, ") {
		t.Errorf("policied signature wrong:\n%s", got)
	}
	// Only the final accumulate carries the policies; the internal
	// pipeline stays unpolicied.
	if !strings.Contains(got, "__riscv_vadd_vv_i32m1_tumu(vm, vd, vd, ") {
		t.Errorf("final add does not carry policies into vd:\n%s", got)
	}
	if strings.Contains(got, "vwmul_vv_i16m2_tumu") {
		t.Errorf("internal multiply picked up policies:\n%s", got)
	}
}

func TestM8SplitsTheComputation(t *testing.T) {
	got := buildVariant(t, SS, rvv.M8, rvv.TailAgnostic, rvv.MaskUnmasked)
	for _, frag := range []string{
		// Halved operand views, including the accumulator.
		"__riscv_vget_v_i32m8_i32m4(vd, 0)",
		"__riscv_vget_v_i32m8_i32m4(vd, 1)",
		"__riscv_vget_v_i32m8_i32m4(op1, 0)",
		"__riscv_vget_v_i32m8_i32m4(op2, 1)",
		// Per-half vector lengths.
		"vl < __riscv_vsetvlmax_e32m4() ? vl : __riscv_vsetvlmax_e32m4()",
		// The halves run the ordinary m4 pipeline.
		"__riscv_vwmul_vv_i16m8(",
		"__riscv_vnsra_wx_i32m4(",
		// Reassembly.
		"__riscv_vcreate_v_i32m4_i32m8(",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %q in:\n%s", frag, got)
		}
	}
	if n := strings.Count(got, "__riscv_vwmul_vv_i16m8("); n != 2 {
		t.Errorf("got %d half multiplies, want 2:\n%s", n, got)
	}
}

func TestMaskedM8IsRejected(t *testing.T) {
	accFmt := rvv.VectorFormat(rvv.S32, rvv.M8)
	vd := rvv.NewNamedInput(accFmt, 0, "vd")
	vs2 := rvv.NewInput(accFmt, 1)
	vs1 := rvv.NewInput(accFmt, 2)
	vl := rvv.NewNamedInput(rvv.VLFormat(), 3, "vl")
	vm := rvv.NewNamedInput(accFmt.MaskOf(), 4, "vm")

	if _, err := SS.Accumulate(vd, vs2, vs1, vl, vm, nil, rvv.TailAgnostic, rvv.MaskAgnostic); err == nil {
		t.Error("masked m8 dot product succeeded, want error")
	}
}

func TestGenerateSkipsMaskedM8(t *testing.T) {
	p := ext.DefaultParams()
	p.Prototypes = true
	got, err := Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"__riscv_vdot4a_vv_i32m1(",
		"__riscv_vdot4a_vv_i32m1_tumu(",
		"__riscv_vdot4au_vv_u32m4(",
		"__riscv_vdot4a_vv_i32m8(",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in generated unit", want)
		}
	}
	for _, reject := range []string{
		"__riscv_vdot4a_vv_i32m8_m(",
		"__riscv_vdot4a_vv_i32m8_tu(",
		"__riscv_vdot4au_vv_u32m8_tumu(",
	} {
		if strings.Contains(got, reject) {
			t.Errorf("unsupported combination %q was generated", reject)
		}
	}
}
