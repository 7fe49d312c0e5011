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

// Builder assembles a scheduled, register-allocated machine graph the way
// instruction selection and register allocation would leave it.
type Builder struct {
    cfg *CFG
    ra  *RegAlloc
}

func CreateBuilder(cat Catalog) *Builder {
    return &Builder {
        cfg : NewCFG(cat),
        ra  : NewRegAlloc(),
    }
}

func (self *Builder) CFG() *CFG {
    return self.cfg
}

func (self *Builder) RegAlloc() *RegAlloc {
    return self.ra
}

// Block creates a new block. The first block becomes the root.
func (self *Builder) Block() *Block {
    kind := K_region
    bb := self.cfg.NewBlock()

    /* the first block starts the function */
    if bb.Id == 0 {
        kind = K_start
    }

    /* create the block head, slot 0 refers to itself */
    hd := self.cfg.NewNode(kind, 0, nil)
    hd.In = []*Node { hd }
    self.schedule(bb, hd)
    return bb
}

// Parm appends an incoming parameter living in register r.
func (self *Builder) Parm(bb *Block, r OptoReg) *Node {
    p := self.cfg.NewNode(K_parm, 0, nil)
    p.AddReq(bb.Head())
    self.ra.Set(p, r)
    self.schedule(bb, p)
    return p
}

// Phi appends a non-machine merge node.
func (self *Builder) Phi(bb *Block, r OptoReg, in ...*Node) *Node {
    p := self.cfg.NewNode(K_phi, 0, nil)
    p.AddReq(bb.Head())
    for _, v := range in { p.AddReq(v) }
    self.ra.Set(p, r)
    self.schedule(bb, p)
    return p
}

// Mach appends a machine node with its operands and data edges.
func (self *Builder) Mach(bb *Block, rule Rule, opnds []Operand, in ...*Node) *Node {
    self.check(rule, opnds, in)
    p := self.cfg.NewNode(K_mach, rule, opnds)

    /* no control edge after scheduling */
    for p.AddReq(nil); len(in) != 0; in = in[1:] {
        p.AddReq(in[0])
    }

    /* add to the block */
    self.schedule(bb, p)
    return p
}

// Proj appends a projection of the control node of.
func (self *Builder) Proj(bb *Block, rule Rule, of *Node) *Node {
    if self.cfg.Catalog.Shape(rule).Class != C_proj {
        panic(fmt.Sprintf("%s is not a projection", self.cfg.Catalog.Shape(rule).Name))
    }

    /* the projected node is the control input */
    p := self.cfg.NewNode(K_mach, rule, []Operand { nil })
    p.AddReq(of)
    self.schedule(bb, p)
    return p
}

// Def records the register assigned to the value n produces.
func (self *Builder) Def(n *Node, r OptoReg) *Node {
    self.ra.Set(n, r)
    return n
}

// Edge links from -> to, with ctrl being the node of from that transfers
// control to the head of to.
func (self *Builder) Edge(from *Block, ctrl *Node, to *Block) {
    if self.cfg.GetBlockForNode(ctrl) != from {
        panic(fmt.Sprintf("%s does not belong to %s", ctrl, from))
    }

    /* link the blocks */
    to.Head().AddReq(ctrl)
    from.Succs = append(from.Succs, to)
}

func (self *Builder) schedule(bb *Block, p *Node) {
    bb.Nodes = append(bb.Nodes, p)
    self.cfg.MapNodeToBlock(p, bb)
}

func (self *Builder) check(rule Rule, opnds []Operand, in []*Node) {
    nb := 0
    sh := self.cfg.Catalog.Shape(rule)

    /* operand count must match the shape */
    if len(opnds) != len(sh.Opnds) {
        panic(fmt.Sprintf("%s: expect %d operands, got %d", sh.Name, len(sh.Opnds), len(opnds)))
    }

    /* operand types must match the shape, the result slot may be empty */
    for i, v := range opnds {
        if v == nil {
            if i != 0 {
                panic(fmt.Sprintf("%s: operand %d is missing", sh.Name, i))
            }
        } else if v.Type() != sh.Opnds[i] {
            panic(fmt.Sprintf("%s: operand %d should be %s, got %s", sh.Name, i, sh.Opnds[i], v.Type()))
        } else if i == 0 {
            continue
        } else if r, ok := v.(*RegOper); ok && r.N < 1 {
            panic(fmt.Sprintf("%s: register operand %d consumes no edges", sh.Name, i))
        } else {
            nb += v.NumEdges()
        }
    }

    /* every input operand consumes its own data edges */
    if nb != len(in) {
        panic(fmt.Sprintf("%s: operands consume %d edges, got %d inputs", sh.Name, nb, len(in)))
    }
}
