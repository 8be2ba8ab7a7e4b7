/*
 * Copyright 2021 ByteDance Inc.
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
    `fmt`
)

// MalformedIRError occurs when Verify finds a program that violates this
// package's one structural invariant: every operand must be produced
// earlier, in the same block, than the node reading it.
type MalformedIRError struct {
    Block int
    Reason string
}

func (self MalformedIRError) Error() string {
    return fmt.Sprintf("MalformedIRError(block %d): %s", self.Block, self.Reason)
}

// OracleMismatchError occurs when a target-ISA immediate predicate and
// an independent decoder disagree about whether a literal is encodable —
// the condition internal/target/aarch64's tests cross-check for, never
// expected to surface outside of that test.
type OracleMismatchError struct {
    Value  uint64
    Oracle string
}

func (self OracleMismatchError) Error() string {
    return fmt.Sprintf("OracleMismatchError(%s): disagreement on 0x%x", self.Oracle, self.Value)
}
