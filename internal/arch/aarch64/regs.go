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

package aarch64

import (
    `fmt`
    `strings`

    `github.com/cloudwego/peephole/opto`
    `golang.org/x/arch/arm64/arm64asm`
)

// Physical register numbers of the general purpose registers.
const (
    R0 opto.OptoReg = iota
    R1
    R2
    R3
    R4
    R5
    R6
    R7
    R8
    R9
    R10
    R11
    R12
    R13
    R14
    R15
)

// NumRegs counts the allocatable general purpose registers X0 to X30.
const NumRegs = 31

// Reg64 converts a physical register number to the disassembler register.
func Reg64(r opto.OptoReg) arm64asm.Reg {
    if r < 0 || r >= NumRegs {
        panic(fmt.Sprintf("aarch64: invalid physical register %d", r))
    } else {
        return arm64asm.X0 + arm64asm.Reg(r)
    }
}

// RegName returns the assembler name of a physical register.
func RegName(r opto.OptoReg) string {
    return strings.ToLower(Reg64(r).String())
}
