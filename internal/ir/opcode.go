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

// Opcode is the closed enumeration of node kinds this pass understands.
// Opcodes it does not recognize fall through every dispatcher untouched,
// which keeps the pass forward-compatible with new IR additions.
type Opcode uint16

const (
    OpInvalid Opcode = iota

    OpConstant

    // arithmetic
    OpAdd
    OpSub
    OpAddWithFlags
    OpSubWithFlags
    OpAddNZCV
    OpSubNZCV
    OpCondAddNZCV
    OpCondSubNZCV
    OpAdc
    OpAdcWithFlags
    OpRmifNZCV
    OpSubShift
    OpNeg
    OpMul

    // logical
    OpAnd
    OpAndWithFlags
    OpAndn
    OpOr
    OpOrlshl
    OpOrlshr
    OpXor
    OpTestNZ

    // shifts
    OpLshl
    OpLshr
    OpAshr
    OpRor

    // bitfield
    OpBfe
    OpSbfe
    OpBfi

    // selects
    OpSelect
    OpNZCVSelect

    // control flow
    OpCondJump
    OpExitFunction
    OpEntrypointOffset

    // memory
    OpLoadMem
    OpStoreMem
    OpLoadMemTSO
    OpStoreMemTSO
    OpLoadContext
    OpPrefetch
    OpMemCpy
    OpMemSet

    // vector passthrough
    OpVMov
)

func (o Opcode) String() string {
    if s, ok := opcodeNames[o]; ok {
        return s
    }
    return "OP_UNKNOWN"
}

var opcodeNames = map[Opcode]string{
    OpInvalid:          "INVALID",
    OpConstant:         "CONSTANT",
    OpAdd:              "ADD",
    OpSub:              "SUB",
    OpAddWithFlags:     "ADDWITHFLAGS",
    OpSubWithFlags:     "SUBWITHFLAGS",
    OpAddNZCV:          "ADDNZCV",
    OpSubNZCV:          "SUBNZCV",
    OpCondAddNZCV:      "CONDADDNZCV",
    OpCondSubNZCV:      "CONDSUBNZCV",
    OpAdc:              "ADC",
    OpAdcWithFlags:     "ADCWITHFLAGS",
    OpRmifNZCV:         "RMIFNZCV",
    OpSubShift:         "SUBSHIFT",
    OpNeg:              "NEG",
    OpMul:              "MUL",
    OpAnd:              "AND",
    OpAndWithFlags:     "ANDWITHFLAGS",
    OpAndn:             "ANDN",
    OpOr:               "OR",
    OpOrlshl:           "ORLSHL",
    OpOrlshr:           "ORLSHR",
    OpXor:              "XOR",
    OpTestNZ:           "TESTNZ",
    OpLshl:             "LSHL",
    OpLshr:             "LSHR",
    OpAshr:             "ASHR",
    OpRor:              "ROR",
    OpBfe:              "BFE",
    OpSbfe:             "SBFE",
    OpBfi:              "BFI",
    OpSelect:           "SELECT",
    OpNZCVSelect:       "NZCVSELECT",
    OpCondJump:         "CONDJUMP",
    OpExitFunction:     "EXITFUNCTION",
    OpEntrypointOffset: "ENTRYPOINTOFFSET",
    OpLoadMem:          "LOADMEM",
    OpStoreMem:         "STOREMEM",
    OpLoadMemTSO:       "LOADMEMTSO",
    OpStoreMemTSO:      "STOREMEMTSO",
    OpLoadContext:      "LOADCONTEXT",
    OpPrefetch:         "PREFETCH",
    OpMemCpy:           "MEMCPY",
    OpMemSet:           "MEMSET",
    OpVMov:             "VMOV",
}

// ShiftType is the shift form carried by SUBSHIFT and friends. Only LSL
// is folded by AlgebraicRewrite; the others are left alone, matching
// spec.md's "other shift types are left alone".
type ShiftType uint8

const (
    ShiftLSL ShiftType = iota
    ShiftLSR
    ShiftASR
    ShiftROR
)

// MemOffsetType distinguishes the memory-offset encodings a LOADMEM/
// STOREMEM/LOADMEMTSO/STOREMEMTSO/PREFETCH can carry. Only the
// sign-extended-to-64-bit form (MEM_OFFSET_SXTX) is eligible for
// ImmediateInlining, per spec.md's §4.3 table.
type MemOffsetType uint8

const (
    MemOffsetNone MemOffsetType = iota
    MemOffsetSXTX
    MemOffsetUXTW
    MemOffsetSXTW
)
