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

package amd64

import (
    `fmt`
    `strings`

    `golang.org/x/arch/x86/x86asm`
)

// Disassemble decodes x86_64 machine code.
func Disassemble(code []byte) ([]x86asm.Inst, error) {
    var pc int
    var ret []x86asm.Inst

    /* decode one by one */
    for pc < len(code) {
        if ins, err := x86asm.Decode(code[pc:], 64); err != nil {
            return nil, fmt.Errorf("amd64: cannot decode at offset %d: %w", pc, err)
        } else if ins.Op == 0 || ins.Len == 0 {
            return nil, fmt.Errorf("amd64: truncated instruction at offset %d", pc)
        } else {
            ret = append(ret, ins)
            pc += ins.Len
        }
    }

    /* all done */
    return ret, nil
}

// Listing renders machine code in GNU syntax, one instruction per line.
func Listing(code []byte) (string, error) {
    var pc uint64
    var buf []string

    /* decode the whole thing */
    ins, err := Disassemble(code)
    if err != nil {
        return "", err
    }

    /* format every instruction with its offset */
    for _, v := range ins {
        buf = append(buf, fmt.Sprintf("0x%04x : %s", pc, x86asm.GNUSyntax(v, pc, nil)))
        pc += uint64(v.Len)
    }

    /* join them together */
    return strings.Join(buf, "\n"), nil
}
