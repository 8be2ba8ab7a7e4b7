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

package debug

import (
    "testing"

    "github.com/stretchr/testify/require"
)

func TestSnapshotReflectsIncrements(t *testing.T) {
    c := NewCounters()

    c.IncPooled()
    c.IncPooled()
    c.IncEvicted()
    c.IncAddressCoalesced()
    c.IncRewritten()
    c.IncInlined()
    c.IncInlined()
    c.IncInlined()

    s := c.Snapshot()
    require.Equal(t, 2, s.Pooled)
    require.Equal(t, 1, s.Evicted)
    require.Equal(t, 1, s.AddressCoalesced)
    require.Equal(t, 1, s.Rewritten)
    require.Equal(t, 3, s.Inlined)
}

func TestResetZeroesCounters(t *testing.T) {
    c := NewCounters()
    c.IncPooled()
    c.Reset()

    require.Equal(t, Stats{}, c.Snapshot())
}

func TestStringRendersSortedBuckets(t *testing.T) {
    c := NewCounters()
    c.IncPooled()
    c.IncInlined()

    out := c.Snapshot().String()
    require.Contains(t, out, "inlined=1")
    require.Contains(t, out, "pooled=1")
}

func TestCountersAreIndependentPerInstance(t *testing.T) {
    a := NewCounters()
    b := NewCounters()

    a.IncPooled()
    a.IncPooled()

    require.Equal(t, 2, a.Snapshot().Pooled)
    require.Equal(t, 0, b.Snapshot().Pooled)
}
