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
    `github.com/cloudwego/peephole/internal/driver`
    `github.com/cloudwego/peephole/internal/windowopt`
    `github.com/cloudwego/peephole/opto`
)

// InterBlockRedundantFlagOps is the x86_64 entry point of the cross-block
// redundant flag elimination.
func InterBlockRedundantFlagOps(
    block   *opto.Block,
    index   int,
    cfg     *opto.CFG,
    ra      *opto.RegAlloc,
    newRoot windowopt.NewRoot,
    rule    opto.Rule,
) bool {
    return windowopt.InterBlockRedundantFlagOps(block, index, cfg, ra, newRoot, rule)
}

var interBlockRedundantFlagOps = []driver.Procedure {
    { Name: "inter_block_redundant_flag_ops", Proc: InterBlockRedundantFlagOps },
}

// Target binds the x86_64 catalog to its peephole rules.
var Target = &driver.Arch {
    Name    : "amd64",
    Shapes  : Catalog,
    RegName : RegName,
    Rules   : map[opto.Rule][]driver.Procedure {
        CompI_rReg      : interBlockRedundantFlagOps,
        CompI_rReg_imm  : interBlockRedundantFlagOps,
        CompU_rReg      : interBlockRedundantFlagOps,
        CompU_rReg_imm  : interBlockRedundantFlagOps,
        CompL_rReg      : interBlockRedundantFlagOps,
        CompL_rReg_imm  : interBlockRedundantFlagOps,
        CompUL_rReg     : interBlockRedundantFlagOps,
        CompUL_rReg_imm : interBlockRedundantFlagOps,
        TestI_reg       : interBlockRedundantFlagOps,
        TestL_reg       : interBlockRedundantFlagOps,
    },
}
