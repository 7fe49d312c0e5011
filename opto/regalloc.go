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

package opto

import (
    `fmt`
)

// OptoReg is a physical register number of the target architecture.
type OptoReg int32

const (
    OptoRegBad OptoReg = -1
)

// RegAlloc holds the result of register allocation: the physical register
// every value-producing node ended up in.
type RegAlloc struct {
    regs  map[int]OptoReg
    Names func(OptoReg) string
}

func NewRegAlloc() *RegAlloc {
    return &RegAlloc {
        regs: make(map[int]OptoReg),
    }
}

func (self *RegAlloc) Set(n *Node, r OptoReg) {
    if r < 0 {
        panic(fmt.Sprintf("invalid register %d for %s", r, n))
    } else {
        self.regs[n.Id] = r
    }
}

// GetRegFirst returns the (first) register assigned to n.
func (self *RegAlloc) GetRegFirst(n *Node) OptoReg {
    if r, ok := self.regs[n.Id]; ok {
        return r
    } else {
        return OptoRegBad
    }
}

func (self *RegAlloc) Name(r OptoReg) string {
    if r == OptoRegBad {
        return "bad"
    } else if self.Names == nil {
        return fmt.Sprintf("r%d", r)
    } else {
        return self.Names(r)
    }
}
