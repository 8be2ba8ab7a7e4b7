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
    `github.com/coldpath/coldpath/debug`
)

// This is a heuristic to limit constant pool live ranges, reducing
// register-allocator interference pressure. An unbounded range lets long
// blocks of constant usage slow to a crawl.
const constantPoolRangeLimit = 500

// addressgenWindow bounds how far back a LOADMEM/STOREMEM base address
// may sit for a later address to be rewritten as base+offset instead of
// materializing its own constant.
const addressgenWindow = 65536

// constPoolEntry tracks the live producer of a pooled constant value and
// that producer's node ID, so the range-limit heuristic can measure
// distance without re-scanning the block.
type constPoolEntry struct {
    node *Node
    id   NodeID
}

// ConstantPooling is Phase 1 of the pipeline: within each block, it
// dedups repeated CONSTANT nodes (subject to a live-range limit) and
// coalesces LOADMEM/STOREMEM addresses that land close to an
// already-materialized address into a base+offset form.
type ConstantPooling struct{}

func (self *ConstantPooling) Apply(em *Emitter, opts Options) {
    limit := uint32(opts.ConstantPoolRange)
    if limit == 0 {
        limit = constantPoolRangeLimit
    }

    window := opts.AddressGenWindow
    if window == 0 {
        window = addressgenWindow
    }

    em.ForEachBlock(func(b *Block) {
        pool := make(map[uint64]constPoolEntry)
        addrgen := make(map[*Node]uint64)

        em.ForEachCode(b, func(n *Node) {
            switch n.Op {
                case OpLoadMem, OpStoreMem:
                    self.handleMemOp(em, n, addrgen, window, opts.Counters)
                case OpConstant:
                    self.handleConstant(em, n, pool, limit, opts.Counters)
            }

            em.SetWriteCursor(n)
        })
    })
}

// memOperandIndices returns the (addr, offset) argument indices for a
// LOADMEM or STOREMEM node — identical layout for both opcodes in this IR.
func memOperandIndices() (addr, offset int) {
    return 0, 1
}

func (self *ConstantPooling) handleMemOp(em *Emitter, n *Node, addrgen map[*Node]uint64, window uint64, counters *debug.Counters) {
    addrIdx, offsetIdx := memOperandIndices()
    addrRef := n.arg(addrIdx)
    offsetRef := n.arg(offsetIdx)

    addr, isConst := em.IsValueConstant(addrRef)
    if !isConst || !offsetRef.IsInvalid() {
        return
    }

    for base, baseAddr := range addrgen {
        var delta uint64
        if addr >= baseAddr {
            delta = addr - baseAddr
        } else {
            continue
        }
        if delta < window {
            em.ReplaceNodeArgument(n, addrIdx, NodeRef(base))
            em.ReplaceNodeArgument(n, offsetIdx, NodeRef(em.Constant(8, delta)))
            counters.IncAddressCoalesced()
            return
        }
    }

    addrgen[em.UnwrapNode(addrRef)] = addr
}

func (self *ConstantPooling) handleConstant(em *Emitter, n *Node, pool map[uint64]constPoolEntry, limit uint32, counters *debug.Counters) {
    newID := n.id

    entry, found := pool[n.Constant]
    if !found {
        pool[n.Constant] = constPoolEntry{node: n, id: newID}
        return
    }

    if uint32(newID-entry.id) > limit {
        pool[n.Constant] = constPoolEntry{node: n, id: newID}
        counters.IncEvicted()
        return
    }

    em.ReplaceUsesWithAfter(n, entry.node, n.pos)
    counters.IncPooled()
}
