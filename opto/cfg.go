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
    `strings`

    `github.com/davecgh/go-spew/spew`
)

// CFG owns every node and block of one compilation, and keeps the
// node-to-block index in sync with the block contents.
type CFG struct {
    Blocks  []*Block
    Catalog Catalog
    nodes   []*Node
    bmap    []*Block
}

func NewCFG(cat Catalog) *CFG {
    return &CFG { Catalog: cat }
}

// NewNode allocates a detached node in the arena.
func (self *CFG) NewNode(kind Kind, rule Rule, opnds []Operand) *Node {
    p := &Node {
        Id    : len(self.nodes),
        Kind  : kind,
        Rule  : rule,
        Opnds : opnds,
    }

    /* add to the arena */
    self.nodes = append(self.nodes, p)
    self.bmap = append(self.bmap, nil)
    return p
}

// NewBlock creates an empty block at the end of the block list.
func (self *CFG) NewBlock() *Block {
    bb := &Block{Id: len(self.Blocks)}
    self.Blocks = append(self.Blocks, bb)
    return bb
}

func (self *CFG) NumNodes() int {
    return len(self.nodes)
}

func (self *CFG) Node(id int) *Node {
    return self.nodes[id]
}

func (self *CFG) Root() *Block {
    if len(self.Blocks) == 0 {
        return nil
    } else {
        return self.Blocks[0]
    }
}

// GetBlockForNode returns the block n is scheduled in, or nil.
func (self *CFG) GetBlockForNode(n *Node) *Block {
    if n == nil || n.Id >= len(self.bmap) || self.nodes[n.Id] != n {
        return nil
    } else {
        return self.bmap[n.Id]
    }
}

// MapNodeToBlock updates the node-to-block index, bb may be nil.
func (self *CFG) MapNodeToBlock(n *Node, bb *Block) {
    if n.Id >= len(self.nodes) || self.nodes[n.Id] != n {
        panic("node does not belong to this graph: " + n.String())
    } else {
        self.bmap[n.Id] = bb
    }
}

// Shape returns the shape of a machine node.
func (self *CFG) Shape(n *Node) *Shape {
    if !n.IsMach() {
        panic("not a machine node: " + n.String())
    } else {
        return self.Catalog.Shape(n.Rule)
    }
}

// IsMachProj reports whether n is a projection with no effect on flags.
func (self *CFG) IsMachProj(n *Node) bool {
    return n.IsMach() && self.Catalog.Shape(n.Rule).Class == C_proj
}

// IsMachBranch reports whether n is a control transfer.
func (self *CFG) IsMachBranch(n *Node) bool {
    return n.IsMach() && self.Catalog.Shape(n.Rule).Class == C_branch
}

// Verify checks that the node-to-block index agrees with the block contents.
func (self *CFG) Verify() {
    seen := make(map[*Node]*Block, len(self.nodes))

    /* every scheduled node must be mapped to its own block */
    for _, bb := range self.Blocks {
        for i, p := range bb.Nodes {
            if p.IsRemoved() {
                self.fail("removed node %s still scheduled at %s[%d]", p, bb, i)
            }
            if q, ok := seen[p]; ok {
                self.fail("node %s scheduled in both %s and %s", p, q, bb)
            }
            if seen[p] = bb; self.GetBlockForNode(p) != bb {
                self.fail("node %s at %s[%d] is mapped to %v", p, bb, i, self.GetBlockForNode(p))
            }
        }
    }

    /* every mapped node must be scheduled */
    for id, bb := range self.bmap {
        if p := self.nodes[id]; bb != nil && seen[p] != bb {
            self.fail("node %s mapped to %s but not scheduled there", p, bb)
        }
    }

    /* use lists must mirror the input lists */
    for _, p := range self.nodes {
        if !p.IsRemoved() {
            for i, v := range p.In {
                if v != nil && v != p && countref(v.Out, p) != countref(p.In, v) {
                    self.fail("use list of %s disagrees with input %d of %s", v, i, p)
                }
            }
        }
    }
}

func (self *CFG) fail(msg string, args ...interface{}) {
    idx := make(map[int]int, len(self.bmap))

    /* dump the node-to-block index along with the message */
    for id, bb := range self.bmap {
        if bb != nil {
            idx[id] = bb.Id
        }
    }

    /* abort the compilation */
    cfg := spew.ConfigState { Indent: "    ", SortKeys: true }
    panic(fmt.Sprintf("opto: inconsistent graph: " + msg + "\n%s", append(args, cfg.Sdump(idx))...))
}

func countref(nodes []*Node, n *Node) (r int) {
    for _, p := range nodes {
        if p == n {
            r++
        }
    }
    return
}

func (self *CFG) String() string {
    buf := make([]string, 0, len(self.Blocks))
    for _, bb := range self.Blocks { buf = append(buf, bb.Format(self)) }
    return strings.Join(buf, "\n")
}
