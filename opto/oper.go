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
    `math`
    `unsafe`
)

// BasicType is the literal category of a value or a constant operand.
type BasicType uint8

const (
    T_ILLEGAL BasicType = iota
    T_SHORT
    T_INT
    T_LONG
    T_FLOAT
    T_DOUBLE
    T_OBJECT
    T_ADDRESS
    T_FLAGS
)

func (self BasicType) String() string {
    switch self {
        case T_ILLEGAL : return "illegal"
        case T_SHORT   : return "short"
        case T_INT     : return "int"
        case T_LONG    : return "long"
        case T_FLOAT   : return "float"
        case T_DOUBLE  : return "double"
        case T_OBJECT  : return "object"
        case T_ADDRESS : return "address"
        case T_FLAGS   : return "flags"
        default        : return fmt.Sprintf("BasicType(%d)", uint8(self))
    }
}

// Operand is one operand slot of a machine node. Operands with no data edges
// carry a literal, all others are backed by the registers of their inputs.
type Operand interface {
    fmt.Stringer
    Type() BasicType
    NumEdges() int
}

// RegOper is a register-backed operand consuming N consecutive data edges.
type RegOper struct {
    T BasicType
    N int
}

// Reg returns a register-backed operand of type t consuming a single edge.
func Reg(t BasicType) *RegOper {
    return &RegOper { T: t, N: 1 }
}

func (self *RegOper) Type() BasicType {
    return self.T
}

func (self *RegOper) NumEdges() int {
    return self.N
}

func (self *RegOper) String() string {
    if self.N == 1 {
        return fmt.Sprintf("reg.%s", self.T)
    } else {
        return fmt.Sprintf("reg.%s x%d", self.T, self.N)
    }
}

// ImmOper is an integer constant operand.
type ImmOper struct {
    T BasicType
    V int64
}

func ImmS(v int16) *ImmOper { return &ImmOper { T: T_SHORT, V: int64(v) } }
func ImmI(v int32) *ImmOper { return &ImmOper { T: T_INT, V: int64(v) } }
func ImmL(v int64) *ImmOper { return &ImmOper { T: T_LONG, V: v } }

func (self *ImmOper) Type() BasicType    { return self.T }
func (self *ImmOper) NumEdges() int      { return 0 }
func (self *ImmOper) Constant() int32    { return int32(self.V) }
func (self *ImmOper) ConstantH() int16   { return int16(self.V) }
func (self *ImmOper) ConstantL() int64   { return self.V }

func (self *ImmOper) String() string {
    switch self.T {
        case T_SHORT : return fmt.Sprintf("$%d.h", self.ConstantH())
        case T_INT   : return fmt.Sprintf("$%d", self.Constant())
        case T_LONG  : return fmt.Sprintf("$%d.l", self.ConstantL())
        default      : return fmt.Sprintf("$%d.%s", self.V, self.T)
    }
}

// ImmFOper is a floating-point constant operand.
type ImmFOper struct {
    T BasicType
    V float64
}

func ImmF(v float32) *ImmFOper { return &ImmFOper { T: T_FLOAT, V: float64(v) } }
func ImmD(v float64) *ImmFOper { return &ImmFOper { T: T_DOUBLE, V: v } }

func (self *ImmFOper) Type() BasicType { return self.T }
func (self *ImmFOper) NumEdges() int   { return 0 }

func (self *ImmFOper) String() string {
    if self.T == T_FLOAT {
        return fmt.Sprintf("$%#x.f", math.Float32bits(float32(self.V)))
    } else {
        return fmt.Sprintf("$%#x.d", math.Float64bits(self.V))
    }
}

// ImmPOper is an object or raw pointer constant operand.
type ImmPOper struct {
    T BasicType
    P unsafe.Pointer
}

func ImmP(p unsafe.Pointer) *ImmPOper {
    return &ImmPOper { T: T_OBJECT, P: p }
}

func (self *ImmPOper) Type() BasicType { return self.T }
func (self *ImmPOper) NumEdges() int   { return 0 }

func (self *ImmPOper) String() string {
    return fmt.Sprintf("$%p", self.P)
}
