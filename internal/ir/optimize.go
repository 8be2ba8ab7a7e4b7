/*
 * Copyright 2022 ByteDance Inc.
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

package ir

import (
    `github.com/coldpath/coldpath/debug`
)

// Options carries every tunable this package's passes read. The root
// package's functional-options layer builds one of these and
// hands it to Run; internal/ir never imports the root package, so the
// two stay decoupled.
type Options struct {
    // InlineConstants gates Phase 3 (ImmediateInlining) entirely. With
    // it false, Run only performs ConstantPooling and AlgebraicRewrite.
    InlineConstants bool

    // SupportsTSOImm9 mirrors the target CPU's LRCPC2 feature bit. Only
    // relevant to the LOADMEMTSO/STOREMEMTSO rows of the inlining table.
    SupportsTSOImm9 bool

    // ConstantPoolRange is FEXCore's CONSTANT_POOL_RANGE_LIMIT: a pooled
    // constant whose recorded node ID is more than this many IDs behind
    // a later CONSTANT of the same value is evicted from the pool rather
    // than reused.
    ConstantPoolRange int

    // AddressGenWindow is FEXCore's ADDRESSGEN_WINDOW: how far (in address
    // value, upward only) a constant address may lie above an already-seen
    // base address to be coalesced into base+offset form.
    AddressGenWindow uint64

    // Counters accumulates the bucket counts each pass increments as it
    // works. Owned by the Pass that built these Options, never shared
    // package-level state.
    Counters *debug.Counters
}

// DefaultOptions mirrors FEXCore's ConstProp.cpp defaults.
func DefaultOptions() Options {
    return Options{
        InlineConstants:   true,
        ConstantPoolRange: constantPoolRangeLimit,
        AddressGenWindow:  addressgenWindow,
        Counters:          debug.NewCounters(),
    }
}

// Pass is one phase of the pipeline. Each pass owns its own per-block
// scratch state and is free to mutate the program through em.
type Pass interface {
    Apply(em *Emitter, opts Options)
}

type passDescriptor struct {
    pass Pass
    desc string
    gate func(Options) bool
}

var passes = [...]passDescriptor{
    {desc: "Constant Pooling", pass: new(ConstantPooling), gate: always},
    {desc: "Algebraic Rewrite", pass: new(AlgebraicRewrite), gate: always},
    {desc: "Immediate Inlining", pass: new(ImmediateInlining), gate: inlineConstantsEnabled},
}

func always(Options) bool { return true }
func inlineConstantsEnabled(opts Options) bool { return opts.InlineConstants }

// Run drives the full three-phase pipeline over prog in order:
// ConstantPooling, then AlgebraicRewrite, then (when enabled)
// ImmediateInlining. Each phase sees the output of the previous one.
func Run(prog *Program, opts Options) {
    em := NewEmitter(prog)

    for _, p := range passes {
        if p.gate(opts) {
            p.pass.Apply(em, opts)
        }
    }
}
