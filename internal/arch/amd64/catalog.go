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
    `github.com/cloudwego/peephole/opto`
)

const (
    _ opto.Rule = iota
    MachProj
    CompI_rReg
    CompI_rReg_imm
    CompU_rReg
    CompU_rReg_imm
    CompL_rReg
    CompL_rReg_imm
    CompUL_rReg
    CompUL_rReg_imm
    TestI_reg
    TestL_reg
    AddI_rReg
    AddI_rReg_imm
    SubI_rReg
    LoadConI
    LoadConI0
    LoadConL
    CountTrailingZerosI
    JmpDir
    JmpCon
    JmpConU
    Ret
)

// Condition codes carried by the cmpOp operand of JmpCon and JmpConU.
const (
    CC_eq int32 = iota
    CC_ne
    CC_lt
    CC_ge
    CC_le
    CC_gt
)

const (
    _I = opto.T_INT
    _L = opto.T_LONG
    _F = opto.T_FLAGS
    _X = opto.T_ILLEGAL
)

// Catalog describes every opcode shape the x86_64 matcher may produce.
var Catalog = &opto.ShapeTable {
    Name   : "amd64",
    Shapes : []opto.Shape {
        MachProj            : { Name: "MachProj"            , Class: opto.C_proj                          , Opnds: []opto.BasicType { _X } },
        CompI_rReg          : { Name: "compI_rReg"          , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _I, _I } },
        CompI_rReg_imm      : { Name: "compI_rReg_imm"      , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _I, _I } },
        CompU_rReg          : { Name: "compU_rReg"          , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _I, _I } },
        CompU_rReg_imm      : { Name: "compU_rReg_imm"      , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _I, _I } },
        CompL_rReg          : { Name: "compL_rReg"          , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _L, _L } },
        CompL_rReg_imm      : { Name: "compL_rReg_imm"      , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _L, _L } },
        CompUL_rReg         : { Name: "compUL_rReg"         , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _L, _L } },
        CompUL_rReg_imm     : { Name: "compUL_rReg_imm"     , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _L, _L } },
        TestI_reg           : { Name: "testI_reg"           , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _I, _I } },
        TestL_reg           : { Name: "testL_reg"           , Flags: opto.F_def                           , Opnds: []opto.BasicType { _F, _L, _L } },
        AddI_rReg           : { Name: "addI_rReg"           , Flags: opto.F_kill                          , Opnds: []opto.BasicType { _I, _I, _I } },
        AddI_rReg_imm       : { Name: "addI_rReg_imm"       , Flags: opto.F_kill                          , Opnds: []opto.BasicType { _I, _I, _I } },
        SubI_rReg           : { Name: "subI_rReg"           , Flags: opto.F_kill                          , Opnds: []opto.BasicType { _I, _I, _I } },
        LoadConI            : { Name: "loadConI"            , Flags: opto.F_none                          , Opnds: []opto.BasicType { _I, _I } },
        LoadConI0           : { Name: "loadConI0"           , Flags: opto.F_kill                          , Opnds: []opto.BasicType { _I, _I } },
        LoadConL            : { Name: "loadConL"            , Flags: opto.F_none                          , Opnds: []opto.BasicType { _L, _L } },
        CountTrailingZerosI : { Name: "countTrailingZerosI" , Flags: opto.F_kill                          , Opnds: []opto.BasicType { _I, _I } },
        JmpDir              : { Name: "jmpDir"              , Class: opto.C_branch                        , Opnds: []opto.BasicType { _X } },
        JmpCon              : { Name: "jmpCon"              , Class: opto.C_branch , Flags: opto.F_use    , Opnds: []opto.BasicType { _X, _I, _F } },
        JmpConU             : { Name: "jmpConU"             , Class: opto.C_branch , Flags: opto.F_use    , Opnds: []opto.BasicType { _X, _I, _F } },
        Ret                 : { Name: "Ret"                 , Flags: opto.F_none                          , Opnds: []opto.BasicType { _X } },
    },
}
