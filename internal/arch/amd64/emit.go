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

    `github.com/chenzhuoyu/iasm/x86_64`
    `github.com/cloudwego/peephole/internal/cpu`
    `github.com/cloudwego/peephole/opto`
)

// CodeGen lowers a scheduled and register-allocated graph to x86_64 machine
// code, blocks in layout order.
type CodeGen struct {
    cfg    *opto.CFG
    ra     *opto.RegAlloc
    pos    map[int]int
    labels []*x86_64.Label
    TZCNT  bool
}

func CreateCodeGen(cfg *opto.CFG, ra *opto.RegAlloc) *CodeGen {
    return &CodeGen {
        cfg   : cfg,
        ra    : ra,
        pos   : make(map[int]int, len(cfg.Blocks)),
        TZCNT : cpu.HasBMI1,
    }
}

// Emit generates and assembles the machine code of the entire graph.
func Emit(cfg *opto.CFG, ra *opto.RegAlloc) []byte {
    p := CreateCodeGen(cfg, ra).Generate()
    defer p.Free()
    return p.Assemble(0)
}

func (self *CodeGen) Generate() *x86_64.Program {
    p := x86_64.DefaultArch.CreateProgram()
    self.labels = make([]*x86_64.Label, len(self.cfg.Blocks))

    /* create a label for every block */
    for i, bb := range self.cfg.Blocks {
        self.pos[bb.Id] = i
        self.labels[i] = x86_64.CreateLabel(bb.String())
    }

    /* translate the blocks in layout order */
    for i, bb := range self.cfg.Blocks {
        p.Link(self.labels[i])
        self.block(p, bb)
    }

    /* all done */
    return p
}

func (self *CodeGen) block(p *x86_64.Program, bb *opto.Block) {
    term := false
    self.check(bb)

    /* the block head is not an instruction */
    for _, v := range bb.Nodes[1:] {
        if self.translate(p, bb, v); v.IsMach() && (self.cfg.IsMachBranch(v) || v.Rule == Ret) {
            term = true
        }
    }

    /* fall through to the only successor if it is not the next block */
    if !term && len(bb.Succs) == 1 {
        self.jump(p, bb, bb.Succs[0])
    }
}

func (self *CodeGen) check(bb *opto.Block) {
    for _, v := range bb.Nodes {
        if v.IsRemoved() {
            panic("amd64: removed node is still scheduled: " + v.String())
        }
    }
}

func (self *CodeGen) translate(p *x86_64.Program, bb *opto.Block, v *opto.Node) {
    if v.IsMach() {
        if int(v.Rule) >= len(translators) || translators[v.Rule] == nil {
            panic("amd64: cannot emit " + v.Format(self.cfg.Catalog))
        } else {
            translators[v.Rule](self, p, bb, v)
        }
    }
}

/** Operand Helpers **/

func (self *CodeGen) rd(v *opto.Node) opto.OptoReg {
    return self.ra.GetRegFirst(v)
}

func (self *CodeGen) rx(v *opto.Node, i int) opto.OptoReg {
    return self.ra.GetRegFirst(v.In[v.OperInputBase() + i - 1])
}

func (self *CodeGen) imm(v *opto.Node, i int) (*opto.ImmOper, bool) {
    x, ok := v.Opnds[i].(*opto.ImmOper)
    return x, ok
}

func imm32(x *opto.ImmOper) int32 {
    if v := x.ConstantL(); int64(int32(v)) != v {
        panic(fmt.Sprintf("amd64: immediate %d does not fit in 32 bits", v))
    } else {
        return int32(v)
    }
}

/** Control Flow Helpers **/

func (self *CodeGen) label(bb *opto.Block) *x86_64.Label {
    return self.labels[self.pos[bb.Id]]
}

func (self *CodeGen) jump(p *x86_64.Program, from *opto.Block, to *opto.Block) {
    if self.pos[to.Id] != self.pos[from.Id] + 1 {
        p.JMP(self.label(to))
    }
}

func (self *CodeGen) succ(ctrl *opto.Node) *opto.Block {
    for _, u := range ctrl.Out {
        if bb := self.cfg.GetBlockForNode(u); bb != nil && bb.Head() == u {
            return bb
        }
    }
    panic("amd64: control node without a successor: " + ctrl.String())
}

func (self *CodeGen) projs(v *opto.Node) (taken *opto.Block, other *opto.Block) {
    var ps []*opto.Node
    for _, u := range v.Out {
        if self.cfg.IsMachProj(u) {
            ps = append(ps, u)
        }
    }

    /* a conditional branch projects exactly two paths */
    if len(ps) != 2 {
        panic(fmt.Sprintf("amd64: conditional branch %s has %d projections", v, len(ps)))
    } else {
        return self.succ(ps[0]), self.succ(ps[1])
    }
}

/** Instruction Translators **/

var translators = [...]func(*CodeGen, *x86_64.Program, *opto.Block, *opto.Node) {
    MachProj            : (*CodeGen).translate_MachProj,
    CompI_rReg          : (*CodeGen).translate_CompI,
    CompI_rReg_imm      : (*CodeGen).translate_CompI,
    CompU_rReg          : (*CodeGen).translate_CompI,
    CompU_rReg_imm      : (*CodeGen).translate_CompI,
    CompL_rReg          : (*CodeGen).translate_CompL,
    CompL_rReg_imm      : (*CodeGen).translate_CompL,
    CompUL_rReg         : (*CodeGen).translate_CompL,
    CompUL_rReg_imm     : (*CodeGen).translate_CompL,
    TestI_reg           : (*CodeGen).translate_TestI,
    TestL_reg           : (*CodeGen).translate_TestL,
    AddI_rReg           : (*CodeGen).translate_AddI,
    AddI_rReg_imm       : (*CodeGen).translate_AddI,
    SubI_rReg           : (*CodeGen).translate_SubI,
    LoadConI            : (*CodeGen).translate_LoadConI,
    LoadConI0           : (*CodeGen).translate_LoadConI0,
    LoadConL            : (*CodeGen).translate_LoadConL,
    CountTrailingZerosI : (*CodeGen).translate_CountTrailingZerosI,
    JmpDir              : (*CodeGen).translate_JmpDir,
    JmpCon              : (*CodeGen).translate_JmpCon,
    JmpConU             : (*CodeGen).translate_JmpConU,
    Ret                 : (*CodeGen).translate_Ret,
}

func (self *CodeGen) translate_MachProj(_ *x86_64.Program, _ *opto.Block, _ *opto.Node) {
    /* projections produce no code */
}

func (self *CodeGen) translate_CompI(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    if x, ok := self.imm(v, 2); ok {
        p.CMPL(x.Constant(), Reg32(self.rx(v, 1)))
    } else {
        p.CMPL(Reg32(self.rx(v, 2)), Reg32(self.rx(v, 1)))
    }
}

func (self *CodeGen) translate_CompL(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    if x, ok := self.imm(v, 2); ok {
        p.CMPQ(imm32(x), Reg64(self.rx(v, 1)))
    } else {
        p.CMPQ(Reg64(self.rx(v, 2)), Reg64(self.rx(v, 1)))
    }
}

func (self *CodeGen) translate_TestI(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    p.TESTL(Reg32(self.rx(v, 2)), Reg32(self.rx(v, 1)))
}

func (self *CodeGen) translate_TestL(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    p.TESTQ(Reg64(self.rx(v, 2)), Reg64(self.rx(v, 1)))
}

func (self *CodeGen) translate_AddI(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    rd := self.rd(v)
    rx := self.rx(v, 1)

    /* add immediate */
    if x, ok := self.imm(v, 2); ok {
        if rd != rx { p.MOVL(Reg32(rx), Reg32(rd)) }
        p.ADDL(x.Constant(), Reg32(rd))
        return
    }

    /* add is commutative, pick whichever source lives in the destination */
    switch ry := self.rx(v, 2); rd {
        case rx  : p.ADDL(Reg32(ry), Reg32(rd))
        case ry  : p.ADDL(Reg32(rx), Reg32(rd))
        default  : p.MOVL(Reg32(rx), Reg32(rd)); p.ADDL(Reg32(ry), Reg32(rd))
    }
}

func (self *CodeGen) translate_SubI(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    rd := self.rd(v)
    rx := self.rx(v, 1)

    /* rd = rx - ry, with rd possibly aliasing ry */
    switch ry := self.rx(v, 2); rd {
        case rx  : p.SUBL(Reg32(ry), Reg32(rd))
        case ry  : p.NEGL(Reg32(rd)); p.ADDL(Reg32(rx), Reg32(rd))
        default  : p.MOVL(Reg32(rx), Reg32(rd)); p.SUBL(Reg32(ry), Reg32(rd))
    }
}

func (self *CodeGen) translate_LoadConI(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    x, _ := self.imm(v, 1)
    p.MOVL(x.Constant(), Reg32(self.rd(v)))
}

func (self *CodeGen) translate_LoadConI0(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    rd := Reg32(self.rd(v))
    p.XORL(rd, rd)
}

func (self *CodeGen) translate_LoadConL(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    x, _ := self.imm(v, 1)
    p.MOVQ(x.ConstantL(), Reg64(self.rd(v)))
}

func (self *CodeGen) translate_CountTrailingZerosI(p *x86_64.Program, _ *opto.Block, v *opto.Node) {
    rd := Reg32(self.rd(v))
    rx := Reg32(self.rx(v, 1))

    /* TZCNT defines the zero input */
    if self.TZCNT {
        p.TZCNTL(rx, rd)
        return
    }

    /* BSF leaves the destination undefined for zero */
    nz := x86_64.CreateLabel(fmt.Sprintf("_ctz_%d", v.Id))
    p.BSFL(rx, rd)
    p.JNZ(nz)
    p.MOVL(32, rd)
    p.Link(nz)
}

func (self *CodeGen) translate_JmpDir(p *x86_64.Program, bb *opto.Block, v *opto.Node) {
    self.jump(p, bb, self.succ(v))
}

func (self *CodeGen) translate_JmpCon(p *x86_64.Program, bb *opto.Block, v *opto.Node) {
    taken, other := self.projs(v)
    cc, _ := self.imm(v, 1)

    /* signed conditions */
    switch to := self.label(taken); cc.Constant() {
        case CC_eq : p.JE(to)
        case CC_ne : p.JNE(to)
        case CC_lt : p.JL(to)
        case CC_ge : p.JGE(to)
        case CC_le : p.JLE(to)
        case CC_gt : p.JG(to)
        default    : panic(fmt.Sprintf("amd64: invalid condition code %d", cc.Constant()))
    }

    /* the other path */
    self.jump(p, bb, other)
}

func (self *CodeGen) translate_JmpConU(p *x86_64.Program, bb *opto.Block, v *opto.Node) {
    taken, other := self.projs(v)
    cc, _ := self.imm(v, 1)

    /* unsigned conditions */
    switch to := self.label(taken); cc.Constant() {
        case CC_eq : p.JE(to)
        case CC_ne : p.JNE(to)
        case CC_lt : p.JB(to)
        case CC_ge : p.JAE(to)
        case CC_le : p.JBE(to)
        case CC_gt : p.JA(to)
        default    : panic(fmt.Sprintf("amd64: invalid condition code %d", cc.Constant()))
    }

    /* the other path */
    self.jump(p, bb, other)
}

func (self *CodeGen) translate_Ret(p *x86_64.Program, _ *opto.Block, _ *opto.Node) {
    p.RET()
}
