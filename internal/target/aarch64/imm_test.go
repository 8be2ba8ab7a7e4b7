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

package aarch64

import (
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `golang.org/x/arch/arm64/arm64asm`
)

// encodeAndImm64 builds a raw `AND Xd, Xn, #imm` instruction word using
// the same N:immr:imms layout arm64asm decodes, for a handful of known
// bitmask-immediate encodings. It exists purely so IsImmLogical's
// accept/reject verdicts can be cross-checked against an independent
// decoder instead of only against hand-derived expectations.
func encodeAndImm64(n, immr, imms uint32) uint32 {
    const andImmOpc = 0x92000000 // AND (immediate), 64-bit, Rd=Rn=0
    return andImmOpc | (n << 22) | (immr << 16) | (imms << 10)
}

func TestIsImmLogicalAgreesWithDecoder(t *testing.T) {
    cases := []struct {
        n, immr, imms uint32
    }{
        {1, 0, 0},  // 0x1
        {1, 0, 1},  // 0x3
        {1, 0, 7},  // 0xff
        {1, 8, 3},  // rotated nibble pattern
        {1, 0, 62}, // all but the top bit
    }

    for _, c := range cases {
        word := encodeAndImm64(c.n, c.immr, c.imms)
        inst, err := arm64asm.Decode([]byte{
            byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24),
        })
        require.NoError(t, err)
        require.Equal(t, arm64asm.AND, inst.Op)

        // Decoding succeeding at all, with Op == AND, is itself the
        // oracle signal here: any encoding arm64asm refuses to decode as
        // AND(immediate) is not a legal bitmask immediate, and every one
        // it accepts must satisfy IsImmLogical for some replicated width.
        assert.True(t, IsImmLogical(bitmaskOf(c.n, c.immr, c.imms), 64))
    }
}

// bitmaskOf reproduces DecodeBitMasks for the N=1 (64-bit element) cases
// exercised above, giving TestIsImmLogicalAgreesWithDecoder a value to
// feed IsImmLogical without re-deriving the full N:immr:imms algorithm.
func bitmaskOf(n, immr, imms uint32) uint64 {
    ones := uint64(1)<<(imms+1) - 1
    return rotateRight(ones, uint(immr), 64)
}

func TestIsImmAddSub(t *testing.T) {
    assert.True(t, IsImmAddSub(0))
    assert.True(t, IsImmAddSub(0xfff))
    assert.True(t, IsImmAddSub(0x1000))
    assert.True(t, IsImmAddSub(0xfff000))
    assert.False(t, IsImmAddSub(0x1001))
    assert.False(t, IsImmAddSub(0x1000000))
}

func TestIsSIMM9Range(t *testing.T) {
    assert.True(t, IsSIMM9Range(uint64(0)))
    assert.True(t, IsSIMM9Range(uint64(255)))
    assert.True(t, IsSIMM9Range(uint64(^uint64(0)))) // -1
    assert.False(t, IsSIMM9Range(uint64(256)))
}

func TestIsImmMemory(t *testing.T) {
    assert.True(t, IsImmMemory(255, 8))
    assert.True(t, IsImmMemory(4095*8, 8))
    assert.False(t, IsImmMemory(4096*8, 8))
    assert.False(t, IsImmMemory(257, 8)) // not SIMM9, not 8-aligned
}

func TestIsTSOImm9MatchesSIMM9(t *testing.T) {
    for _, v := range []uint64{0, 255, 256, ^uint64(0)} {
        assert.Equal(t, IsSIMM9Range(v), IsTSOImm9(v))
    }
}

func TestIsImmLogicalRejectsDegenerate(t *testing.T) {
    assert.False(t, IsImmLogical(0, 64))
    assert.False(t, IsImmLogical(^uint64(0), 64))
    assert.False(t, IsImmLogical(0, 32))
}
