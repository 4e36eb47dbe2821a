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

// Package rvv builds symbolic operation graphs over RISC-V Vector
// values and lowers them to C source expressed in baseline RVV 1.0
// intrinsics.
//
// A graph is constructed declaratively from Input, Immediate and
// Operation nodes; GenerateFunction then walks it depth-first,
// memoizing shared subexpressions by pointer identity, and emits one
// intrinsic call or native C statement per operation. IntrinsicName
// implements the RVV intrinsic naming scheme (operand descriptors,
// type tags, tail/mask policy suffixes) so that both emitted calls and
// the emulated function's own signature come from the same mangler.
//
// SplitLMUL lets recipe authors express operations whose widened
// intermediates would exceed the M8 register-group limit as two
// half-LMUL computations reassembled with vcreate.
package rvv
