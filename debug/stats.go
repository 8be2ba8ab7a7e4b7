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
    `fmt`
    `sort`

    `golang.org/x/exp/maps`
)

// Stats is a snapshot of how much work a Pass run actually did, so tests
// and callers tuning ConstantPoolRange/AddressGenWindow have something to
// look at besides "did the output change".
type Stats struct {
    Pooled           int
    Evicted          int
    AddressCoalesced int
    Rewritten        int
    Inlined          int
}

// Counters accumulates the bucket counts a Pass run increments as it
// works. Each coldpath.Pass owns its own Counters, so two Pass instances
// running concurrently never share mutable state.
type Counters struct {
    pooled           int
    evicted          int
    addressCoalesced int
    rewritten        int
    inlined          int
}

// NewCounters returns a zeroed Counters ready for a Pass to use.
func NewCounters() *Counters {
    return &Counters{}
}

// Snapshot returns the counters accumulated since construction or the
// last Reset.
func (c *Counters) Snapshot() Stats {
    return Stats{
        Pooled:           c.pooled,
        Evicted:          c.evicted,
        AddressCoalesced: c.addressCoalesced,
        Rewritten:        c.rewritten,
        Inlined:          c.inlined,
    }
}

// Reset zeroes every counter, so a later Snapshot only reflects work
// done after the call.
func (c *Counters) Reset() {
    c.pooled, c.evicted, c.addressCoalesced = 0, 0, 0
    c.rewritten, c.inlined = 0, 0
}

// IncPooled records a constant reuse found by ConstantPooling.
func (c *Counters) IncPooled() { c.pooled++ }

// IncEvicted records a pooled constant falling outside the live-range
// heuristic and getting re-tracked instead of reused.
func (c *Counters) IncEvicted() { c.evicted++ }

// IncAddressCoalesced records a LOADMEM/STOREMEM address rewritten to a
// base+offset form by ConstantPooling's address-gen window.
func (c *Counters) IncAddressCoalesced() { c.addressCoalesced++ }

// IncRewritten records an AlgebraicRewrite fold, identity elision, or
// strength reduction applied to a node.
func (c *Counters) IncRewritten() { c.rewritten++ }

// IncInlined records an operand ImmediateInlining turned into a literal
// marker.
func (c *Counters) IncInlined() { c.inlined++ }

// String renders every bucket, zeros included, in a sorted, stable order — handy
// in test failure output and ad-hoc diagnostics alike.
func (s Stats) String() string {
    buckets := map[string]int{
        "pooled":            s.Pooled,
        "evicted":           s.Evicted,
        "address_coalesced": s.AddressCoalesced,
        "rewritten":         s.Rewritten,
        "inlined":           s.Inlined,
    }

    keys := maps.Keys(buckets)
    sort.Strings(keys)

    out := "Stats{"
    for i, k := range keys {
        if i > 0 {
            out += ", "
        }
        out += fmt.Sprintf("%s=%d", k, buckets[k])
    }
    return out + "}"
}
