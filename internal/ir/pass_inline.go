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

package ir

import (
    `github.com/coldpath/coldpath/internal/target/aarch64`
)

// ImmediateInlining is Phase 3: replaces operand references to constant
// producers with inline literal markers, wherever the target ISA can
// encode that literal directly in the consuming instruction. It only
// runs when Options.InlineConstants is set.
type ImmediateInlining struct {
    dedup map[uint64]Ref
}

func (self *ImmediateInlining) Apply(em *Emitter, opts Options) {
    self.dedup = make(map[uint64]Ref)

    em.ForEachAllCode(func(n *Node) {
        self.inline(em, opts, n)
    })
}

// inlineConstant returns the shared inline-constant marker for value,
// creating and caching one the first time it's seen this pass. Small
// literals like 0 and 1 recur constantly across a block, so pooling
// the markers keeps the pass's own allocation pressure down.
func (self *ImmediateInlining) inlineConstant(value uint64) Ref {
    if ref, ok := self.dedup[value]; ok {
        return ref
    }
    ref := InlineConstantRef(value, 0)
    self.dedup[value] = ref
    return ref
}

func (self *ImmediateInlining) replace(em *Emitter, opts Options, n *Node, index int, value uint64) {
    if operand := n.arg(index); operand.Kind == RefNode {
        em.SetWriteCursor(operand.Node)
    }
    em.ReplaceNodeArgument(n, index, self.inlineConstant(value))
    opts.Counters.IncInlined()
}

func (self *ImmediateInlining) inline(em *Emitter, opts Options, n *Node) {
    switch n.Op {
        case OpLshr, OpAshr, OpRor, OpLshl:
            self.inlineShiftAmount(em, opts, n)
        case OpAdd, OpSub, OpAddNZCV, OpSubNZCV, OpAddWithFlags, OpSubWithFlags:
            self.inlineAddSub(em, opts, n)
        case OpAdc, OpAdcWithFlags:
            self.inlineZeroFirstOperand(em, opts, n)
        case OpRmifNZCV:
            self.inlineZeroFirstOperand(em, opts, n)
        case OpCondAddNZCV, OpCondSubNZCV:
            self.inlineCondAddSubNZCV(em, opts, n)
        case OpTestNZ:
            self.inlineLogicalSecondOperand(em, opts, n)
        case OpSelect:
            self.inlineSelect(em, opts, n)
        case OpNZCVSelect:
            self.inlineNZCVSelect(em, opts, n)
        case OpCondJump:
            self.inlineCondJump(em, opts, n)
        case OpExitFunction:
            self.inlineExitFunction(em, opts, n)
        case OpOr, OpXor, OpAnd, OpAndWithFlags, OpAndn:
            self.inlineLogicalSecondOperand(em, opts, n)
        case OpLoadMem, OpStoreMem, OpPrefetch:
            self.inlineMemoryOffset(em, opts, n, aarch64.IsImmMemory)
        case OpLoadMemTSO, OpStoreMemTSO:
            if opts.SupportsTSOImm9 {
                self.inlineMemoryOffset(em, opts, n, func(v uint64, _ uint8) bool { return aarch64.IsTSOImm9(v) })
            }
        case OpMemCpy, OpMemSet:
            self.inlineDirection(em, opts, n)
    }
}

func (self *ImmediateInlining) inlineShiftAmount(em *Emitter, opts Options, n *Node) {
    c2, ok := em.IsValueConstant(n.arg(1))
    if !ok {
        return
    }

    // This masking belongs conceptually to the emitter or an earlier
    // transform, not here, but matching the upstream pass keeps the
    // inlined literal always in range for the shift's actual width.
    c2 &= shiftMask(n.Size)
    self.replace(em, opts, n, 1, c2)
}

func (self *ImmediateInlining) inlineAddSub(em *Emitter, opts Options, n *Node) {
    if c2, ok := em.IsValueConstant(n.arg(1)); ok {
        // 8/16-bit operations never get a constant inlined: no encoding
        // would stay in bounds after the emitter's 24/16-bit shift.
        if aarch64.IsImmAddSub(c2) && n.Size >= 4 {
            self.replace(em, opts, n, 1, c2)
        }
        return
    }

    if n.Op == OpSubNZCV || n.Op == OpSubWithFlags || n.Op == OpSub {
        if c1, ok := em.IsValueConstant(n.arg(0)); ok && c1 == 0 {
            self.replace(em, opts, n, 0, 0)
        }
    }
}

func (self *ImmediateInlining) inlineZeroFirstOperand(em *Emitter, opts Options, n *Node) {
    if c1, ok := em.IsValueConstant(n.arg(0)); ok && c1 == 0 {
        self.replace(em, opts, n, 0, 0)
    }
}

func (self *ImmediateInlining) inlineCondAddSubNZCV(em *Emitter, opts Options, n *Node) {
    if c2, ok := em.IsValueConstant(n.arg(1)); ok && aarch64.IsImmAddSub(c2) {
        self.replace(em, opts, n, 1, c2)
    }
    if c1, ok := em.IsValueConstant(n.arg(0)); ok && c1 == 0 {
        self.replace(em, opts, n, 0, 0)
    }
}

func (self *ImmediateInlining) inlineLogicalSecondOperand(em *Emitter, opts Options, n *Node) {
    if c2, ok := em.IsValueConstant(n.arg(1)); ok && aarch64.IsImmLogical(c2, uint(n.Size)*8) {
        self.replace(em, opts, n, 1, c2)
    }
}

func allOnes(size uint8) uint64 {
    if size == 8 {
        return 0xffffffffffffffff
    }
    return 0xffffffff
}

func (self *ImmediateInlining) inlineSelect(em *Emitter, opts Options, n *Node) {
    if c1, ok := em.IsValueConstant(n.arg(1)); ok && aarch64.IsImmAddSub(c1) {
        self.replace(em, opts, n, 1, c1)
    }

    c2, ok2 := em.IsValueConstant(n.arg(2))
    c3, ok3 := em.IsValueConstant(n.arg(3))

    if ok2 && ok3 && (c2 == 1 || c2 == allOnes(n.Size)) && c3 == 0 {
        self.replace(em, opts, n, 2, c2)
        self.replace(em, opts, n, 3, c3)
    }
}

func (self *ImmediateInlining) inlineNZCVSelect(em *Emitter, opts Options, n *Node) {
    // Source 1 may always be inlined as a plain zero; source 0 may only
    // be inlined to the special 1/~0 constant once source 1 is zero.
    c1, ok := em.IsValueConstant(n.arg(1))
    if !ok || c1 != 0 {
        return
    }

    self.replace(em, opts, n, 1, c1)

    if c0, ok0 := em.IsValueConstant(n.arg(0)); ok0 && (c0 == 1 || c0 == allOnes(n.Size)) {
        self.replace(em, opts, n, 0, c0)
    }
}

func (self *ImmediateInlining) inlineCondJump(em *Emitter, opts Options, n *Node) {
    if c2, ok := em.IsValueConstant(n.arg(1)); ok && aarch64.IsImmAddSub(c2) {
        self.replace(em, opts, n, 1, c2)
    }
}

func (self *ImmediateInlining) inlineExitFunction(em *Emitter, opts Options, n *Node) {
    target := n.arg(0)

    if c, ok := em.IsValueConstant(target); ok {
        self.replace(em, opts, n, 0, c)
        return
    }

    if target.Kind != RefNode {
        return
    }

    header := target.Node
    if header.Op == OpEntrypointOffset {
        em.SetWriteCursor(header)
        em.ReplaceNodeArgument(n, 0, InlineEntrypointOffsetRef(header.Constant, header.Size))
    }
}

func (self *ImmediateInlining) inlineMemoryOffset(em *Emitter, opts Options, n *Node, accepts func(uint64, uint8) bool) {
    offsetIndex := 1

    if n.OffsetType != MemOffsetSXTX {
        return
    }

    c2, ok := em.IsValueConstant(n.arg(offsetIndex))
    if !ok || !accepts(c2, n.Size) {
        return
    }

    self.replace(em, opts, n, offsetIndex, c2)
}

func (self *ImmediateInlining) inlineDirection(em *Emitter, opts Options, n *Node) {
    directionIndex := len(n.Args) - 1
    if directionIndex < 0 {
        return
    }

    if c, ok := em.IsValueConstant(n.arg(directionIndex)); ok {
        self.replace(em, opts, n, directionIndex, c)
    }
}
