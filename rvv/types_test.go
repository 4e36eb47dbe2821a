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

var allLMULs = []LMUL{MF8, MF4, MF2, M1, M2, M4, M8}

var allIntElts = []EltType{U8, U16, U32, U64, S8, S16, S32, S64}

func TestLMULEighthsRoundTrip(t *testing.T) {
	for _, l := range allLMULs {
		e, err := l.Eighths()
		if err != nil {
			t.Fatalf("Eighths(%v): %v", l, err)
		}
		back, err := LMULFromEighths(e)
		if err != nil {
			t.Fatalf("FromEighths(%d): %v", e, err)
		}
		if back != l {
			t.Errorf("round trip of %v via %d/8 gave %v", l, e, back)
		}
	}
}

func TestLMULMulDiv(t *testing.T) {
	tests := []struct {
		name    string
		got     func() (LMUL, error)
		want    LMUL
		wantErr bool
	}{
		{name: "m1 times 2", got: func() (LMUL, error) { return M1.Mul(2) }, want: M2},
		{name: "m4 times 2", got: func() (LMUL, error) { return M4.Mul(2) }, want: M8},
		{name: "mf8 times 4", got: func() (LMUL, error) { return MF8.Mul(4) }, want: MF2},
		{name: "m8 times 2 overflows", got: func() (LMUL, error) { return M8.Mul(2) }, wantErr: true},
		{name: "m2 div 2", got: func() (LMUL, error) { return M2.Div(2) }, want: M1},
		{name: "mf4 div 2", got: func() (LMUL, error) { return MF4.Div(2) }, want: MF8},
		{name: "mf8 div 2 underflows", got: func() (LMUL, error) { return MF8.Div(2) }, wantErr: true},
		{name: "none times 2", got: func() (LMUL, error) { return LMULNone.Mul(2) }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("got %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidForEEW(t *testing.T) {
	// An LMUL is valid exactly when it is at least eew/64: vector
	// register groups cannot shrink below one eighth of a register.
	invalid := map[EltType][]LMUL{
		U8:  nil,
		U16: {MF8},
		U32: {MF8, MF4},
		U64: {MF8, MF4, MF2},
	}
	for uelt, bad := range invalid {
		selt, err := uelt.InverseSign()
		if err != nil {
			t.Fatal(err)
		}
		for _, elt := range []EltType{uelt, selt} {
			for _, l := range allLMULs {
				want := true
				for _, b := range bad {
					if l == b {
						want = false
					}
				}
				if got := IsValidForEEW(elt, l); got != want {
					t.Errorf("IsValidForEEW(%v, %v) = %v, want %v", elt, l, got, want)
				}
			}
		}
	}
	if IsValidForEEW(SizeT, M1) {
		t.Error("IsValidForEEW(size_t, m1) = true, want false")
	}
	if IsValidForEEW(U32, LMULNone) {
		t.Error("IsValidForEEW(u32, none) = true, want false")
	}
}

func TestEltTypeConversions(t *testing.T) {
	for _, elt := range allIntElts {
		size, err := elt.Size()
		if err != nil {
			t.Fatalf("Size(%v): %v", elt, err)
		}
		back, err := EltFromSize(elt.Signed(), size)
		if err != nil {
			t.Fatalf("EltFromSize(%v, %d): %v", elt.Signed(), size, err)
		}
		if back != elt {
			t.Errorf("EltFromSize(%v, %d) = %v, want %v", elt.Signed(), size, back, elt)
		}
		inv, err := elt.InverseSign()
		if err != nil {
			t.Fatalf("InverseSign(%v): %v", elt, err)
		}
		if inv.Signed() == elt.Signed() {
			t.Errorf("InverseSign(%v) = %v keeps signedness", elt, inv)
		}
		invSize, err := inv.Size()
		if err != nil || invSize != size {
			t.Errorf("InverseSign(%v) = %v changes width", elt, inv)
		}
	}

	if w, err := U16.Widen(); err != nil || w != U32 {
		t.Errorf("Widen(u16) = %v, %v; want u32", w, err)
	}
	if w, err := S32.Widen(); err != nil || w != S64 {
		t.Errorf("Widen(s32) = %v, %v; want s64", w, err)
	}
	if _, err := U64.Widen(); err == nil {
		t.Error("Widen(u64) succeeded, want error")
	}
	if n, err := U32.Narrow(); err != nil || n != U16 {
		t.Errorf("Narrow(u32) = %v, %v; want u16", n, err)
	}
	if _, err := S8.Narrow(); err == nil {
		t.Error("Narrow(s8) succeeded, want error")
	}
	if _, err := SizeT.Size(); err == nil {
		t.Error("Size(size_t) succeeded, want error")
	}
}

func TestFormatCType(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		want    string
		wantErr bool
	}{
		{name: "unsigned vector", format: VectorFormat(U32, M1), want: "vuint32m1_t"},
		{name: "signed vector", format: VectorFormat(S64, M8), want: "vint64m8_t"},
		{name: "fractional vector", format: VectorFormat(U8, MF4), want: "vuint8mf4_t"},
		{name: "scalar", format: ScalarFormat(S16), want: "int16_t"},
		{name: "vector length", format: VLFormat(), want: "size_t"},
		{name: "mask m1", format: MaskFormat(U32, M1), want: "vbool32_t"},
		{name: "mask m8", format: MaskFormat(U8, M8), want: "vbool1_t"},
		{name: "mask fractional", format: MaskFormat(U64, M2), want: "vbool32_t"},
		{name: "vector without lmul", format: Format{Kind: KindVector, Elt: U32}, wantErr: true},
		{name: "placeholder", format: PlaceholderFormat(U8, M1), wantErr: true},
		{name: "size_t vector", format: VectorFormat(SizeT, M1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.format.CType()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("got %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
