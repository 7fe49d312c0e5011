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
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/cloudwego/peephole/internal/driver`
    `github.com/cloudwego/peephole/opto`
    `github.com/stretchr/testify/require`
    `golang.org/x/arch/x86/x86asm`
)

type chainDesc struct {
    cmp  opto.Rule
    jcc  opto.Rule
    ty   opto.BasicType
    rhs  []opto.Operand
    kill bool
}

type chainFunc struct {
    b    *opto.Builder
    bb   []*opto.Block
    cmps []*opto.Node
}

var conds = []int32 { CC_lt, CC_eq, CC_gt }

func rhsOf(ty opto.BasicType, v ...int64) []opto.Operand {
    ret := make([]opto.Operand, len(v))
    for i, x := range v {
        if ty == opto.T_LONG {
            ret[i] = opto.ImmL(x)
        } else {
            ret[i] = opto.ImmI(int32(x))
        }
    }
    return ret
}

func regsOf(ty opto.BasicType, n int) []opto.Operand {
    ret := make([]opto.Operand, n)
    for i := range ret {
        ret[i] = opto.Reg(ty)
    }
    return ret
}

// newChain builds a function comparing its first argument once per block.
// Comparison k returns k + 1 when taken, and falls through to comparison
// k + 1 otherwise.
//
//     int f(int a, int b) {
//         if (a <  5) return 1;
//         if (a == 5) return 2;
//         ...
//         return 0;
//     }
func newChain(sp chainDesc) *chainFunc {
    n := len(sp.rhs)
    f := &chainFunc{b: Target.NewBuilder()}

    /* comparison blocks, return blocks, and the final return */
    for i := 0; i < n * 2 + 1; i++ {
        f.bb = append(f.bb, f.b.Block())
    }

    /* function arguments */
    a := f.b.Parm(f.bb[0], RDI)
    b := f.b.Parm(f.bb[0], RSI)

    /* the comparisons */
    for k := 0; k < n; k++ {
        bb := f.bb[k]
        in := []*opto.Node { a }

        /* clobber the flags at the top of the block */
        if sp.kill && k != 0 {
            f.b.Def(f.b.Mach(bb, AddI_rReg_imm, []opto.Operand { opto.Reg(_I), opto.Reg(_I), opto.ImmI(1) }, a), RCX)
        }

        /* register operands consume another input */
        if _, ok := sp.rhs[k].(*opto.RegOper); ok {
            in = append(in, b)
        }

        /* compare and branch */
        c := f.b.Mach(bb, sp.cmp, []opto.Operand { nil, opto.Reg(sp.ty), sp.rhs[k] }, in...)
        j := f.b.Mach(bb, sp.jcc, []opto.Operand { nil, opto.ImmI(conds[k % len(conds)]), opto.Reg(_F) }, c)
        f.cmps = append(f.cmps, c)
        f.b.Edge(bb, f.b.Proj(bb, MachProj, j), f.bb[n + k])
        f.b.Edge(bb, f.b.Proj(bb, MachProj, j), f.bb[k + 1 + boolint(k == n - 1) * n])
    }

    /* the return blocks */
    for k := n; k <= n * 2; k++ {
        f.b.Def(f.b.Mach(f.bb[k], LoadConI, []opto.Operand { opto.Reg(_I), opto.ImmI(int32((k - n + 1) % (n + 1))) }), RAX)
        f.b.Mach(f.bb[k], Ret, []opto.Operand { nil })
    }

    /* all done */
    f.b.CFG().Verify()
    return f
}

func boolint(v bool) int {
    if v {
        return 1
    } else {
        return 0
    }
}

func (self *chainFunc) optimize() driver.Stats {
    st := driver.Peephole{Arch: Target, MaxRounds: 4}.Apply(self.b.CFG(), self.b.RegAlloc())
    self.b.CFG().Verify()
    return st
}

func (self *chainFunc) emit(t *testing.T) []x86asm.Inst {
    ins, err := Disassemble(Emit(self.b.CFG(), self.b.RegAlloc()))
    require.NoError(t, err)
    return ins
}

func count(ins []x86asm.Inst, ops ...x86asm.Op) (n int) {
    for _, v := range ins {
        for _, op := range ops {
            if v.Op == op {
                n++
            }
        }
    }
    return
}

func TestInterBlockRedundantFlagOps_Rules(t *testing.T) {
    tests := []struct {
        name string
        desc func() chainDesc
    }{
        { "compI_rReg"      , func() chainDesc { return chainDesc { CompI_rReg      , JmpCon  , _I, regsOf(_I, 2)         , false } } },
        { "compI_rReg_imm"  , func() chainDesc { return chainDesc { CompI_rReg_imm  , JmpCon  , _I, rhsOf(_I, 5, 5)       , false } } },
        { "compU_rReg"      , func() chainDesc { return chainDesc { CompU_rReg      , JmpConU , _I, regsOf(_I, 2)         , false } } },
        { "compU_rReg_imm"  , func() chainDesc { return chainDesc { CompU_rReg_imm  , JmpConU , _I, rhsOf(_I, 5, 5)       , false } } },
        { "compL_rReg"      , func() chainDesc { return chainDesc { CompL_rReg      , JmpCon  , _L, regsOf(_L, 2)         , false } } },
        { "compL_rReg_imm"  , func() chainDesc { return chainDesc { CompL_rReg_imm  , JmpCon  , _L, rhsOf(_L, 5, 5)       , false } } },
        { "compUL_rReg"     , func() chainDesc { return chainDesc { CompUL_rReg     , JmpConU , _L, regsOf(_L, 2)         , false } } },
        { "compUL_rReg_imm" , func() chainDesc { return chainDesc { CompUL_rReg_imm , JmpConU , _L, rhsOf(_L, -1, -1)     , false } } },
        { "testI_reg"       , func() chainDesc { return chainDesc { TestI_reg       , JmpCon  , _I, regsOf(_I, 2)         , false } } },
        { "testL_reg"       , func() chainDesc { return chainDesc { TestL_reg       , JmpCon  , _L, regsOf(_L, 2)         , false } } },
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            before := newChain(tc.desc()).emit(t)
            f := newChain(tc.desc())
            st := f.optimize()
            after := f.emit(t)
            require.Equal(t, 2, count(before, x86asm.CMP, x86asm.TEST))
            require.Equal(t, 1, count(after, x86asm.CMP, x86asm.TEST))
            require.Equal(t, 1, st.Applied)
            require.Equal(t, 1, st.ByRule[tc.name])
            require.True(t, f.cmps[1].IsRemoved())
        })
    }
}

func TestInterBlockRedundantFlagOps_DifferentConstant(t *testing.T) {
    f := newChain(chainDesc { CompI_rReg_imm, JmpCon, _I, rhsOf(_I, 5, 6), false })
    dump := f.b.CFG().String()
    st := f.optimize()
    require.Equal(t, 0, st.Applied)
    require.Equal(t, 2, st.Candidates)
    require.Equal(t, dump, f.b.CFG().String())
    require.Equal(t, 2, count(f.emit(t), x86asm.CMP))
}

func TestInterBlockRedundantFlagOps_Clobbered(t *testing.T) {
    f := newChain(chainDesc { CompI_rReg_imm, JmpCon, _I, rhsOf(_I, 5, 5), true })
    require.Equal(t, 0, f.optimize().Applied)
    ins := f.emit(t)
    require.Equal(t, 2, count(ins, x86asm.CMP))
    require.Equal(t, 1, count(ins, x86asm.ADD))
}

func TestInterBlockRedundantFlagOps_OnlyImmediatePredecessor(t *testing.T) {
    f := newChain(chainDesc { CompI_rReg_imm, JmpCon, _I, rhsOf(_I, 5, 5, 5), false })
    st := f.optimize()
    require.Equal(t, 1, st.Applied)
    require.True(t, f.cmps[1].IsRemoved())
    require.False(t, f.cmps[2].IsRemoved())
    require.Equal(t, 2, count(f.emit(t), x86asm.CMP))
}

func TestInterBlockRedundantFlagOps_Idempotent(t *testing.T) {
    f := newChain(chainDesc { CompL_rReg_imm, JmpCon, _L, rhsOf(_L, 1 << 20, 1 << 20), false })
    require.Equal(t, 1, f.optimize().Applied)
    dump := f.b.CFG().String()
    require.Equal(t, 0, f.optimize().Applied)
    require.Equal(t, dump, f.b.CFG().String())
}

func TestInterBlockRedundantFlagOps_RandomConstants(t *testing.T) {
    for i := 0; i < 32; i++ {
        v0 := int64(gofakeit.Int32())
        v1 := v0
        if gofakeit.Bool() {
            v1 = int64(gofakeit.Int32())
        }
        f := newChain(chainDesc { CompI_rReg_imm, JmpCon, _I, rhsOf(_I, v0, v1), false })
        st := f.optimize()
        require.Equal(t, boolint(v0 == v1), st.Applied, "v0 = %d, v1 = %d", v0, v1)
        require.Equal(t, 2 - boolint(v0 == v1), count(f.emit(t), x86asm.CMP))
    }
}

// newDiamond builds
//
//     bb_0: cmp a, 5; jl bb_1, bb_2
//     bb_1: jmp bb_3
//     bb_2: jmp bb_3
//     bb_3: cmp a, 5; je bb_4, bb_5
//     bb_4, bb_5: ret
func newDiamond() (*opto.Builder, *opto.Node) {
    b := Target.NewBuilder()
    bb := []*opto.Block { b.Block(), b.Block(), b.Block(), b.Block(), b.Block(), b.Block() }
    a := b.Parm(bb[0], RDI)
    cmp := func(bb *opto.Block, cc int32, t *opto.Block, f *opto.Block) *opto.Node {
        c := b.Mach(bb, CompI_rReg_imm, []opto.Operand { nil, opto.Reg(_I), opto.ImmI(5) }, a)
        j := b.Mach(bb, JmpCon, []opto.Operand { nil, opto.ImmI(cc), opto.Reg(_F) }, c)
        b.Edge(bb, b.Proj(bb, MachProj, j), t)
        b.Edge(bb, b.Proj(bb, MachProj, j), f)
        return c
    }

    /* the diamond */
    cmp(bb[0], CC_lt, bb[1], bb[2])
    b.Edge(bb[1], b.Mach(bb[1], JmpDir, []opto.Operand { nil }), bb[3])
    b.Edge(bb[2], b.Mach(bb[2], JmpDir, []opto.Operand { nil }), bb[3])
    c := cmp(bb[3], CC_eq, bb[4], bb[5])

    /* the exits */
    b.Mach(bb[4], Ret, []opto.Operand { nil })
    b.Mach(bb[5], Ret, []opto.Operand { nil })
    return b, c
}

func TestInterBlockRedundantFlagOps_Merge(t *testing.T) {
    b, c := newDiamond()
    st := driver.Peephole{Arch: Target, MaxRounds: 4}.Apply(b.CFG(), b.RegAlloc())
    require.Equal(t, 0, st.Applied)
    require.False(t, c.IsRemoved())
    b.CFG().Verify()
}

func TestInterBlockRedundantFlagOps_Trampoline(t *testing.T) {
    b, c := newDiamond()
    bb := b.CFG().Blocks

    /* drop the bb_2 -> bb_3 edge, leaving bb_1 as the only way in */
    bb[3].Head().SetReq(2, nil)
    bb[3].Head().In = bb[3].Head().In[:2]
    bb[2].Succs = nil
    require.Equal(t, 2, bb[3].NumPreds())

    /* bb_1 holds nothing but the jump */
    require.False(t, InterBlockRedundantFlagOps(bb[3], 1, b.CFG(), b.RegAlloc(), Target.NewRoot(b.CFG(), CompI_rReg_imm), CompI_rReg_imm))
    require.False(t, c.IsRemoved())
}

func TestEmit_Branches(t *testing.T) {
    f := newChain(chainDesc { CompU_rReg_imm, JmpConU, _I, rhsOf(_I, 7, 9), false })
    ins := f.emit(t)
    require.Equal(t, 1, count(ins, x86asm.JB))
    require.Equal(t, 1, count(ins, x86asm.JE))
    require.Equal(t, 3, count(ins, x86asm.RET))
    require.Equal(t, 3, count(ins, x86asm.MOV))
    require.Equal(t, 1, count(ins, x86asm.JMP))
}

func TestEmit_CountTrailingZeros(t *testing.T) {
    for _, tzcnt := range []bool { true, false } {
        b := Target.NewBuilder()
        bb := b.Block()
        a := b.Parm(bb, RDI)
        b.Def(b.Mach(bb, CountTrailingZerosI, []opto.Operand { opto.Reg(_I), opto.Reg(_I) }, a), RAX)
        b.Mach(bb, Ret, []opto.Operand { nil })

        /* generate with the given feature set */
        g := CreateCodeGen(b.CFG(), b.RegAlloc())
        g.TZCNT = tzcnt
        p := g.Generate()
        ins, err := Disassemble(p.Assemble(0))
        p.Free()
        require.NoError(t, err)

        /* check the lowering */
        if tzcnt {
            require.Equal(t, 1, count(ins, x86asm.TZCNT))
            require.Equal(t, 0, count(ins, x86asm.BSF))
        } else {
            require.Equal(t, 0, count(ins, x86asm.TZCNT))
            require.Equal(t, 1, count(ins, x86asm.BSF))
            require.Equal(t, 1, count(ins, x86asm.JNE))
        }
    }
}

func TestEmit_Arithmetic(t *testing.T) {
    b := Target.NewBuilder()
    bb := b.Block()
    x := b.Parm(bb, RDI)
    y := b.Parm(bb, RSI)
    r3 := []opto.Operand { opto.Reg(_I), opto.Reg(_I), opto.Reg(_I) }
    b.Def(b.Mach(bb, AddI_rReg, r3, x, y), RDI)
    b.Def(b.Mach(bb, AddI_rReg, r3, x, y), RSI)
    b.Def(b.Mach(bb, AddI_rReg, r3, x, y), RAX)
    b.Def(b.Mach(bb, SubI_rReg, r3, x, y), RSI)
    b.Def(b.Mach(bb, LoadConI0, []opto.Operand { opto.Reg(_I), opto.ImmI(0) }), RDX)
    b.Def(b.Mach(bb, LoadConL, []opto.Operand { opto.Reg(_L), opto.ImmL(1 << 40) }), RCX)
    b.Mach(bb, Ret, []opto.Operand { nil })
    ins, err := Disassemble(Emit(b.CFG(), b.RegAlloc()))
    require.NoError(t, err)
    require.Equal(t, 4, count(ins, x86asm.ADD))
    require.Equal(t, 1, count(ins, x86asm.NEG))
    require.Equal(t, 1, count(ins, x86asm.XOR))
    require.Equal(t, 2, count(ins, x86asm.MOV))
}

func TestEmit_RejectsRemovedNodes(t *testing.T) {
    f := newChain(chainDesc { CompI_rReg_imm, JmpCon, _I, rhsOf(_I, 5, 5), false })
    bb := f.b.CFG().Blocks[1]
    f.cmps[1].ReplaceBy(f.cmps[0])
    f.cmps[1].SetRemoved()
    require.Panics(t, func() { Emit(f.b.CFG(), f.b.RegAlloc()) })
    require.Equal(t, 1, bb.FindNode(f.cmps[1]))
}

func TestListing(t *testing.T) {
    f := newChain(chainDesc { CompI_rReg_imm, JmpCon, _I, rhsOf(_I, 5), false })
    s, err := Listing(Emit(f.b.CFG(), f.b.RegAlloc()))
    require.NoError(t, err)
    require.Contains(t, s, "cmp $0x5,%edi")
    _, err = Disassemble([]byte { 0x0f })
    require.EqualError(t, err, "amd64: truncated instruction at offset 0")
    _, err = Listing(append(Emit(f.b.CFG(), f.b.RegAlloc()), 0x0f))
    require.Error(t, err)
}

func TestTarget(t *testing.T) {
    for r := range Catalog.Shapes[1:] {
        rule := opto.Rule(r + 1)
        sh := Catalog.Shape(rule)
        require.Equal(t, sh.Flags == opto.F_def, len(Target.Procedures(rule)) != 0, sh.Name)
    }
    require.Equal(t, "%rdi", RegName(RDI))
    require.Equal(t, "%r15", Target.NewBuilder().RegAlloc().Name(R15))
    require.Panics(t, func() { Reg64(16) })
    require.Panics(t, func() { Reg64(opto.OptoRegBad) })
}
