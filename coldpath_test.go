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
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/coldpath/coldpath/internal/ir"
)

func TestNewAppliesOptions(t *testing.T) {
    p := New(WithInlineConstants(false), WithConstantPoolRange(10))
    require.False(t, p.opts.InlineConstants)
    require.Equal(t, 10, p.opts.ConstantPoolRange)
}

func TestWithConstantPoolRangeRejectsNegative(t *testing.T) {
    require.Panics(t, func() {
        WithConstantPoolRange(-1)
    })
}

func TestWithConstantPoolRangeRejectsZero(t *testing.T) {
    require.Panics(t, func() {
        WithConstantPoolRange(0)
    })
}

func TestStatsAreNotSharedBetweenPassInstances(t *testing.T) {
    prog := ir.NewProgram()
    prog.NewBlock()

    p1 := New()
    p2 := New()

    p1.Run(prog)

    require.Zero(t, p2.Stats().Pooled)
    require.Zero(t, p2.Stats().Rewritten)
    require.Zero(t, p2.Stats().Inlined)
}

func TestVerifyAcceptsEmptyProgram(t *testing.T) {
    prog := ir.NewProgram()
    prog.NewBlock()

    require.NoError(t, Verify(prog))
}

func TestRunIsANoOpOnEmptyProgram(t *testing.T) {
    prog := ir.NewProgram()
    prog.NewBlock()

    require.NotPanics(t, func() {
        New().Run(prog)
    })
}
