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

// Block is an ordered sequence of nodes. The pass never allocates new
// blocks and never looks at control flow between them — ConstantPooling's
// maps are cleared at every block boundary and AlgebraicRewrite/
// ImmediateInlining never compare nodes across two different blocks.
type Block struct {
    ID    int
    Nodes []*Node
    prog  *Program
}

// append adds n at the end of the block.
func (self *Block) append(n *Node) {
    n.block = self
    n.pos = len(self.Nodes)
    self.Nodes = append(self.Nodes, n)
}

// insertAt splices n into the block at position i, shifting everything
// at or after i one slot to the right and renumbering their pos fields.
func (self *Block) insertAt(i int, n *Node) {
    self.Nodes = append(self.Nodes, nil)
    copy(self.Nodes[i+1:], self.Nodes[i:])
    self.Nodes[i] = n
    n.block = self

    for j := i; j < len(self.Nodes); j++ {
        self.Nodes[j].pos = j
    }
}

// indexOf returns n's current position within the block. Panics if n is
// not a member of this block — that would be an invariant violation in
// the caller, not a recoverable runtime condition (spec.md §7).
func (self *Block) indexOf(n *Node) int {
    if n.block != self || n.pos >= len(self.Nodes) || self.Nodes[n.pos] != n {
        panic("ir: node is not a member of this block")
    }
    return n.pos
}

// Program is the whole IR under optimization: an ordered list of blocks,
// plus the monotonic ID counter every new Node draws from.
type Program struct {
    Blocks []*Block
    nextID NodeID
}

// NewProgram returns an empty program.
func NewProgram() *Program {
    return &Program{nextID: 1}
}

// NewBlock appends a fresh, empty block to the program and returns it.
func (self *Program) NewBlock() *Block {
    b := &Block{ID: len(self.Blocks), prog: self}
    self.Blocks = append(self.Blocks, b)
    return b
}

func (self *Program) allocID() NodeID {
    id := self.nextID
    self.nextID++
    return id
}
