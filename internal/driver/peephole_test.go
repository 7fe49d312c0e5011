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

package driver_test

import (
    `bytes`
    `log/slog`
    `testing`

    `github.com/cloudwego/peephole/internal/arch/amd64`
    `github.com/cloudwego/peephole/internal/driver`
    `github.com/cloudwego/peephole/internal/windowopt`
    `github.com/cloudwego/peephole/opto`
    `github.com/stretchr/testify/require`
)

// newChain builds
//
//     bb_0: cmp a, 5; jl bb_2, bb_1
//     bb_1: cmp a, 5; je bb_3, bb_4
//     bb_2, bb_3, bb_4: ret
func newChain(arch *driver.Arch) (*opto.Builder, *opto.Node) {
    var c1 *opto.Node
    b := arch.NewBuilder()
    bb := []*opto.Block { b.Block(), b.Block(), b.Block(), b.Block(), b.Block() }
    a := b.Parm(bb[0], amd64.RDI)

    /* the comparisons */
    for k, cc := range []int32 { amd64.CC_lt, amd64.CC_eq } {
        c1 = b.Mach(bb[k], amd64.CompI_rReg_imm, []opto.Operand { nil, opto.Reg(opto.T_INT), opto.ImmI(5) }, a)
        j := b.Mach(bb[k], amd64.JmpCon, []opto.Operand { nil, opto.ImmI(cc), opto.Reg(opto.T_FLAGS) }, c1)
        b.Edge(bb[k], b.Proj(bb[k], amd64.MachProj, j), bb[k + 2])
        b.Edge(bb[k], b.Proj(bb[k], amd64.MachProj, j), bb[k + 1 + k * 2])
    }

    /* the exits */
    for _, v := range bb[2:] {
        b.Mach(v, amd64.Ret, []opto.Operand { nil })
    }
    return b, c1
}

func TestPeephole_Apply(t *testing.T) {
    b, c1 := newChain(amd64.Target)
    st := driver.Peephole{Arch: amd64.Target, MaxRounds: 4}.Apply(b.CFG(), b.RegAlloc())
    b.CFG().Verify()
    require.True(t, c1.IsRemoved())
    require.Equal(t, driver.Stats {
        Visits     : 5,
        Candidates : 2,
        Applied    : 1,
        ByRule     : map[string]int { "compI_rReg_imm": 1 },
    }, st)
}

func TestPeephole_Trace(t *testing.T) {
    buf := bytes.NewBuffer(nil)
    log := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
    b, _ := newChain(amd64.Target)
    driver.Peephole{Arch: amd64.Target, MaxRounds: 4, Logger: log}.Apply(b.CFG(), b.RegAlloc())
    require.Contains(t, buf.String(), `"msg":"peephole applied"`)
    require.Contains(t, buf.String(), `"arch":"amd64"`)
    require.Contains(t, buf.String(), `"procedure":"inter_block_redundant_flag_ops"`)
    require.Contains(t, buf.String(), `"rule":"compI_rReg_imm"`)
    require.Contains(t, buf.String(), `"block":1`)
}

func TestPeephole_MaxRounds(t *testing.T) {
    calls := 0
    arch := &driver.Arch {
        Name    : "always",
        Shapes  : amd64.Catalog,
        RegName : amd64.RegName,
        Rules   : map[opto.Rule][]driver.Procedure {
            amd64.CompI_rReg_imm: {{
                Name: "always",
                Proc: func(*opto.Block, int, *opto.CFG, *opto.RegAlloc, windowopt.NewRoot, opto.Rule) bool {
                    calls++
                    return true
                },
            }},
        },
    }

    /* bb_1 loops back to itself */
    b := arch.NewBuilder()
    b0 := b.Block()
    b1 := b.Block()
    a := b.Parm(b0, amd64.RDI)
    b.Edge(b0, b.Mach(b0, amd64.JmpDir, []opto.Operand { nil }), b1)
    b.Mach(b1, amd64.CompI_rReg_imm, []opto.Operand { nil, opto.Reg(opto.T_INT), opto.ImmI(5) }, a)
    b.Edge(b1, b.Mach(b1, amd64.JmpDir, []opto.Operand { nil }), b1)

    /* every visit of bb_1 reports progress */
    st := driver.Peephole{Arch: arch, MaxRounds: 3}.Apply(b.CFG(), b.RegAlloc())
    require.Equal(t, 3, calls)
    require.Equal(t, 4, st.Visits)
    require.Equal(t, 3, st.Applied)
}

func TestArch_NewRoot(t *testing.T) {
    b, _ := newChain(amd64.Target)
    n := amd64.Target.NewRoot(b.CFG(), amd64.CompL_rReg)()
    require.True(t, n.IsMach())
    require.Equal(t, amd64.CompL_rReg, n.Rule)
    require.Nil(t, b.CFG().GetBlockForNode(n))
    require.Same(t, n, b.CFG().Node(n.Id))
    require.Nil(t, amd64.Target.Procedures(amd64.Ret))
    require.Len(t, amd64.Target.Procedures(amd64.CompL_rReg), 1)
}
