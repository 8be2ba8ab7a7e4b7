/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package coldpath

import (
    `fmt`

    `github.com/klauspost/cpuid/v2`

    `github.com/coldpath/coldpath/internal/ir`
)

// Option is the property setter function for ir.Options.
type Option func(*ir.Options)

// WithInlineConstants controls whether Phase 3 (ImmediateInlining) runs
// at all. Disabled, a Pass only performs ConstantPooling and
// AlgebraicRewrite — useful for targets or debug builds where inline
// literal markers aren't wanted in the output.
//
// The default is enabled.
func WithInlineConstants(enabled bool) Option {
    return func(o *ir.Options) { o.InlineConstants = enabled }
}

// WithTSOImm9 tells ImmediateInlining that the target core implements
// LRCPC2, so LOADMEMTSO/STOREMEMTSO offsets may also be inlined when
// they fit the 9-bit signed range.
//
// The default is disabled; see WithAutoTSODetection to derive this from
// the running CPU instead of hardcoding it.
func WithTSOImm9(supported bool) Option {
    return func(o *ir.Options) { o.SupportsTSOImm9 = supported }
}

// WithAutoTSODetection probes the running CPU for the LRCPC2 feature bit
// and sets SupportsTSOImm9 accordingly. On non-arm64 hosts, or hosts
// without the feature, this behaves like WithTSOImm9(false).
func WithAutoTSODetection() Option {
    return WithTSOImm9(cpuid.CPU.Has(cpuid.LRCPC2))
}

// WithConstantPoolRange sets FEXCore's CONSTANT_POOL_RANGE_LIMIT
// equivalent: the maximum node-ID distance between two CONSTANT nodes of
// the same value before ConstantPooling stops reusing the earlier producer.
//
// Panics on a non-positive limit; there is no such thing as a zero or
// negative live range.
func WithConstantPoolRange(limit int) Option {
    if limit <= 0 {
        panic(fmt.Sprintf("coldpath: invalid constant pool range: %d", limit))
    }
    return func(o *ir.Options) { o.ConstantPoolRange = limit }
}

// WithAddressGenWindow sets the address-value window ConstantPooling uses
// to decide whether a LOADMEM/STOREMEM address is close enough above an
// already-seen base address to coalesce into base+offset form.
//
// Set to 0 to fall back to the default (65536).
func WithAddressGenWindow(window uint64) Option {
    return func(o *ir.Options) { o.AddressGenWindow = window }
}
