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
)

// RefKind tags what a Ref actually holds.
type RefKind uint8

const (
    // RefInvalid marks an absent operand slot.
    RefInvalid RefKind = iota

    // RefNode names another Node in the same program.
    RefNode

    // RefInlineConstant is a post-Phase-3 marker carrying a literal that
    // the target ISA can encode directly as an immediate operand.
    RefInlineConstant

    // RefInlineEntrypointOffset is the EXITFUNCTION-specific marker that
    // preserves an ENTRYPOINTOFFSET node's offset and size without a
    // register-materialized constant.
    RefInlineEntrypointOffset
)

// Ref is an operand handle: either invalid, a reference to a producing
// Node, or (after ImmediateInlining) an inline marker carrying a literal
// value directly.
type Ref struct {
    Kind  RefKind
    Node  *Node
    Value uint64
    Size  uint8
}

// Invalid returns the absent-operand Ref.
func Invalid() Ref {
    return Ref{Kind: RefInvalid}
}

// NodeRef wraps n as an operand reference.
func NodeRef(n *Node) Ref {
    if n == nil {
        return Invalid()
    }
    return Ref{Kind: RefNode, Node: n}
}

// InlineConstantRef builds the Phase-3 literal marker for v.
func InlineConstantRef(v uint64, size uint8) Ref {
    return Ref{Kind: RefInlineConstant, Value: v, Size: size}
}

// InlineEntrypointOffsetRef builds the EXITFUNCTION entrypoint-offset marker.
func InlineEntrypointOffsetRef(offset uint64, size uint8) Ref {
    return Ref{Kind: RefInlineEntrypointOffset, Value: offset, Size: size}
}

// IsInvalid reports whether self names no operand at all.
func (self Ref) IsInvalid() bool {
    return self.Kind == RefInvalid
}

// IsInline reports whether self is a Phase-3 literal marker of any kind.
func (self Ref) IsInline() bool {
    return self.Kind == RefInlineConstant || self.Kind == RefInlineEntrypointOffset
}

// ID returns the referenced node's identifier, or 0 if self does not
// name a node. Used by identity comparisons such as "AND x x -> x".
func (self Ref) ID() NodeID {
    if self.Node == nil {
        return 0
    }
    return self.Node.id
}

func (self Ref) String() string {
    switch self.Kind {
        case RefInvalid:
            return "<invalid>"
        case RefNode:
            return self.Node.String()
        case RefInlineConstant:
            return fmt.Sprintf("#0x%x", self.Value)
        case RefInlineEntrypointOffset:
            return fmt.Sprintf("entry+0x%x", self.Value)
        default:
            return "<unknown-ref>"
    }
}
