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

// Rule identifies an opcode shape in the catalog of one architecture.
type Rule uint32

// Class tells how the peephole passes should treat nodes of a shape.
type Class uint8

const (
    C_mach Class = iota
    C_proj
    C_branch
)

func (self Class) String() string {
    switch self {
        case C_mach   : return "mach"
        case C_proj   : return "proj"
        case C_branch : return "branch"
        default       : return fmt.Sprintf("Class(%d)", uint8(self))
    }
}

// FlagsEffect describes what a shape does to the condition-flags register.
type FlagsEffect uint8

const (
    F_none FlagsEffect = iota
    F_def
    F_use
    F_kill
)

func (self FlagsEffect) String() string {
    switch self {
        case F_none : return "none"
        case F_def  : return "def"
        case F_use  : return "use"
        case F_kill : return "kill"
        default     : return fmt.Sprintf("FlagsEffect(%d)", uint8(self))
    }
}

// Shape describes one opcode shape.
type Shape struct {
    Name  string
    Class Class
    Flags FlagsEffect
    Opnds []BasicType
}

// Catalog is the instruction description table of an architecture.
type Catalog interface {
    Arch() string
    Shape(r Rule) *Shape
}

// ShapeTable is a Catalog backed by a slice indexed by Rule.
type ShapeTable struct {
    Name   string
    Shapes []Shape
}

func (self *ShapeTable) Arch() string {
    return self.Name
}

func (self *ShapeTable) Shape(r Rule) *Shape {
    if int(r) >= len(self.Shapes) || self.Shapes[r].Name == "" {
        panic(fmt.Sprintf("%s: invalid rule %d", self.Name, r))
    } else {
        return &self.Shapes[r]
    }
}

// Lookup finds a rule by its shape name.
func (self *ShapeTable) Lookup(name string) (Rule, bool) {
    for i := range self.Shapes {
        if self.Shapes[i].Name == name {
            return Rule(i), true
        }
    }
    return 0, false
}
