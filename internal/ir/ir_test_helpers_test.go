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

// builder is a small test-only fluent helper for constructing a single
// block of IR without going through the pass-time Emitter write cursor.
type builder struct {
    prog *Program
    blk  *Block
}

func newBuilder() *builder {
    p := NewProgram()
    return &builder{prog: p, blk: p.NewBlock()}
}

func (b *builder) constant(size uint8, value uint64) *Node {
    n := &Node{id: b.prog.allocID(), Op: OpConstant, Size: size, Constant: value & mask(size)}
    b.blk.append(n)
    return n
}

func (b *builder) node(op Opcode, size uint8, args ...*Node) *Node {
    n := &Node{id: b.prog.allocID(), Op: op, Size: size, Args: make([]Ref, len(args))}
    for i, a := range args {
        n.Args[i] = NodeRef(a)
        a.uses = append(a.uses, Use{User: n, Index: i})
    }
    b.blk.append(n)
    return n
}
