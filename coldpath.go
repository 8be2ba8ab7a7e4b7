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

// Package coldpath runs the constant-pooling, algebraic-rewrite and
// immediate-inlining optimization over a block-structured IR program,
// the way a JIT backend's cold compilation path folds and flattens
// everything it can before handing the program to an instruction
// selector.
package coldpath

import (
    `github.com/coldpath/coldpath/debug`
    `github.com/coldpath/coldpath/internal/ir`
)

// Pass runs the three-phase constant-propagation pipeline over an
// ir.Program, carrying whatever configuration its Options built up.
type Pass struct {
    opts ir.Options
}

// New builds a Pass from the given options. Options default to
// DefaultOptions() and are adjusted one at a time by each Option.
func New(options ...Option) *Pass {
    opts := ir.DefaultOptions()

    for _, opt := range options {
        opt(&opts)
    }

    return &Pass{opts: opts}
}

// Run executes ConstantPooling, then AlgebraicRewrite, then (if enabled)
// ImmediateInlining over prog, mutating it in place.
func (self *Pass) Run(prog *ir.Program) {
    ir.Run(prog, self.opts)
}

// Verify checks prog's structural well-formedness: every operand must
// be produced earlier, in the same block, than the node that reads it.
// Returns a *MalformedIRError on violation.
func Verify(prog *ir.Program) error {
    err := ir.Verify(prog)
    if err == nil {
        return nil
    }

    if malformed, ok := err.(*ir.MalformedIRError); ok {
        return &MalformedIRError{Block: malformed.Block, Reason: malformed.Msg}
    }

    return err
}

// Stats snapshots this Pass's own counters for diagnostics, mirroring
// the teacher's debug.Stats style. Each Pass owns its counters, so two
// Pass instances never share or clobber each other's counts.
func (self *Pass) Stats() debug.Stats {
    return self.opts.Counters.Snapshot()
}
