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
    `fmt`

    "gonum.org/v1/gonum/graph/simple"
    "gonum.org/v1/gonum/graph/topo"
)

// MalformedIRError reports a well-formedness violation caught by Verify.
type MalformedIRError struct {
    Block int
    Msg   string
}

func (e *MalformedIRError) Error() string {
    return fmt.Sprintf("ir: malformed program in block %d: %s", e.Block, e.Msg)
}

// Verify checks the one structural invariant every pass in this package
// depends on: within a block, every operand must be produced earlier in
// that same block's linear order (an operand can never be its own user,
// directly or transitively). This pass has no notion of control-flow
// edges between blocks, so unlike the teacher's dominator-tree
// machinery this only needs a per-block def-use cycle check, which a
// topological sort either succeeds or fails at in one pass.
func Verify(prog *Program) error {
    for _, b := range prog.Blocks {
        if err := verifyBlock(b); err != nil {
            return err
        }
    }
    return nil
}

func verifyBlock(b *Block) error {
    g := simple.NewDirectedGraph()

    for _, n := range b.Nodes {
        g.AddNode(simpleNode(n.id))
    }

    for _, n := range b.Nodes {
        for _, a := range n.Args {
            if a.Kind != RefNode {
                continue
            }
            if a.Node.block != b {
                return &MalformedIRError{Block: b.ID, Msg: fmt.Sprintf("node %d reads an operand from another block", n.id)}
            }
            if a.Node.pos >= n.pos {
                return &MalformedIRError{Block: b.ID, Msg: fmt.Sprintf("node %d reads operand %d defined at or after its own position", n.id, a.Node.id)}
            }
            g.SetEdge(g.NewEdge(simpleNode(a.Node.id), simpleNode(n.id)))
        }
    }

    if _, err := topo.Sort(g); err != nil {
        return &MalformedIRError{Block: b.ID, Msg: "def-use graph contains a cycle"}
    }

    return nil
}

// simpleNode adapts a NodeID into gonum's graph.Node interface.
type simpleNode int64

func (n simpleNode) ID() int64 { return int64(n) }
