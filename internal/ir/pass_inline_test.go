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
    "testing"

    "github.com/stretchr/testify/require"
)

func runInlining(b *builder, opts Options) {
    em := NewEmitter(b.prog)
    new(ImmediateInlining).Apply(em, opts)
}

func TestImmediateInliningAddSubUsesImmAddSubRange(t *testing.T) {
    b := newBuilder()
    x := b.node(OpLoadMem, 4)
    small := b.constant(4, 100)
    add := b.node(OpAdd, 4, x, small)

    runInlining(b, DefaultOptions())

    require.Equal(t, RefInlineConstant, add.Args[1].Kind)
    require.EqualValues(t, 100, add.Args[1].Value)
}

func TestImmediateInliningSkipsOutOfRangeAddSub(t *testing.T) {
    b := newBuilder()
    x := b.node(OpLoadMem, 4)
    huge := b.constant(4, 0xdeadbeef)
    add := b.node(OpAdd, 4, x, huge)

    runInlining(b, DefaultOptions())

    require.Equal(t, RefNode, add.Args[1].Kind)
}

func TestImmediateInliningSkips8And16BitAddSub(t *testing.T) {
    b := newBuilder()
    x := b.node(OpLoadMem, 1)
    small := b.constant(1, 5)
    add := b.node(OpAdd, 1, x, small)

    runInlining(b, DefaultOptions())

    require.Equal(t, RefNode, add.Args[1].Kind)
}

func TestImmediateInliningShiftAmountMasksToSize(t *testing.T) {
    b := newBuilder()
    x := b.node(OpLoadMem, 4)
    amt := b.constant(4, 200)
    shift := b.node(OpLshl, 4, x, amt)

    runInlining(b, DefaultOptions())

    require.Equal(t, RefInlineConstant, shift.Args[1].Kind)
    require.EqualValues(t, 200&31, shift.Args[1].Value)
}

func TestImmediateInliningLogicalUsesBitmaskEncoding(t *testing.T) {
    b := newBuilder()
    x := b.node(OpLoadMem, 4)
    c := b.constant(4, 0xff) // contiguous run of ones, encodable
    and := b.node(OpAnd, 4, x, c)

    runInlining(b, DefaultOptions())

    require.Equal(t, RefInlineConstant, and.Args[1].Kind)
}

func TestImmediateInliningLoadMemOffsetRequiresSXTX(t *testing.T) {
    b := newBuilder()
    addr := b.node(OpLoadMem, 8)
    off := b.constant(8, 16)
    load := b.node(OpLoadMem, 4, addr, off)
    load.OffsetType = MemOffsetSXTX

    runInlining(b, DefaultOptions())

    require.Equal(t, RefInlineConstant, load.Args[1].Kind)
}

func TestImmediateInliningLoadMemTSOGatedBySupport(t *testing.T) {
    b := newBuilder()
    addr := b.node(OpLoadMemTSO, 8)
    off := b.constant(8, 16)
    load := b.node(OpLoadMemTSO, 4, addr, off)
    load.OffsetType = MemOffsetSXTX

    opts := DefaultOptions()
    opts.SupportsTSOImm9 = false

    runInlining(b, opts)

    require.Equal(t, RefNode, load.Args[1].Kind)
}

func TestImmediateInliningLoadMemTSOInlinesWhenSupported(t *testing.T) {
    b := newBuilder()
    addr := b.node(OpLoadMemTSO, 8)
    off := b.constant(8, 16)
    load := b.node(OpLoadMemTSO, 4, addr, off)
    load.OffsetType = MemOffsetSXTX

    opts := DefaultOptions()
    opts.SupportsTSOImm9 = true

    runInlining(b, opts)

    require.Equal(t, RefInlineConstant, load.Args[1].Kind)
}

func TestImmediateInliningExitFunctionEntrypointOffset(t *testing.T) {
    b := newBuilder()
    eo := &Node{id: b.prog.allocID(), Op: OpEntrypointOffset, Size: 8, Constant: 0x40}
    b.blk.append(eo)
    exit := b.node(OpExitFunction, 8, eo)

    runInlining(b, DefaultOptions())

    require.Equal(t, RefInlineEntrypointOffset, exit.Args[0].Kind)
    require.EqualValues(t, 0x40, exit.Args[0].Value)
}

func TestImmediateInliningDedupsRepeatedLiteral(t *testing.T) {
    b := newBuilder()
    x := b.node(OpLoadMem, 4)
    c1 := b.constant(4, 7)
    add1 := b.node(OpAdd, 4, x, c1)
    y := b.node(OpLoadMem, 4)
    c2 := b.constant(4, 7)
    add2 := b.node(OpAdd, 4, y, c2)

    runInlining(b, DefaultOptions())

    require.Equal(t, add1.Args[1], add2.Args[1])
}
