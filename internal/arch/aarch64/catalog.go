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
    `github.com/cloudwego/peephole/opto`
)

const (
    _ opto.Rule = iota
    MachProj
    CompI_reg_reg
    CompI_reg_immI
    CompU_reg_reg
    CompU_reg_immI
    CompL_reg_reg
    CompL_reg_immL
    CompUL_reg_reg
    CompUL_reg_immL
    AddI_reg_reg
    AddI_reg_reg_flags
    LoadConI
    LoadConL
    BranchCon
    BranchConU
    Goto
    Ret
)

const (
    _I = opto.T_INT
    _L = opto.T_LONG
    _F = opto.T_FLAGS
    _X = opto.T_ILLEGAL
)

// Catalog describes every opcode shape the AArch64 matcher may produce.
// Plain arithmetic does not touch NZCV, only the "s" forms do.
var Catalog = &opto.ShapeTable {
    Name   : "aarch64",
    Shapes : []opto.Shape {
        MachProj           : { Name: "MachProj"           , Class: opto.C_proj                       , Opnds: []opto.BasicType { _X } },
        CompI_reg_reg      : { Name: "compI_reg_reg"      , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _I, _I } },
        CompI_reg_immI     : { Name: "compI_reg_immI"     , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _I, _I } },
        CompU_reg_reg      : { Name: "compU_reg_reg"      , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _I, _I } },
        CompU_reg_immI     : { Name: "compU_reg_immI"     , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _I, _I } },
        CompL_reg_reg      : { Name: "compL_reg_reg"      , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _L, _L } },
        CompL_reg_immL     : { Name: "compL_reg_immL"     , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _L, _L } },
        CompUL_reg_reg     : { Name: "compUL_reg_reg"     , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _L, _L } },
        CompUL_reg_immL    : { Name: "compUL_reg_immL"    , Flags: opto.F_def                        , Opnds: []opto.BasicType { _F, _L, _L } },
        AddI_reg_reg       : { Name: "addI_reg_reg"       , Flags: opto.F_none                       , Opnds: []opto.BasicType { _I, _I, _I } },
        AddI_reg_reg_flags : { Name: "addsI_reg_reg"      , Flags: opto.F_kill                       , Opnds: []opto.BasicType { _I, _I, _I } },
        LoadConI           : { Name: "loadConI"           , Flags: opto.F_none                       , Opnds: []opto.BasicType { _I, _I } },
        LoadConL           : { Name: "loadConL"           , Flags: opto.F_none                       , Opnds: []opto.BasicType { _L, _L } },
        BranchCon          : { Name: "branchCon"          , Class: opto.C_branch , Flags: opto.F_use , Opnds: []opto.BasicType { _X, _I, _F } },
        BranchConU         : { Name: "branchConU"         , Class: opto.C_branch , Flags: opto.F_use , Opnds: []opto.BasicType { _X, _I, _F } },
        Goto               : { Name: "goto"               , Class: opto.C_branch                     , Opnds: []opto.BasicType { _X } },
        Ret                : { Name: "Ret"                , Flags: opto.F_none                       , Opnds: []opto.BasicType { _X } },
    },
}
