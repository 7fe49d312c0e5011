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
)

// Kind separates machine nodes from the structural nodes the matcher leaves
// behind in a block.
type Kind uint8

const (
    K_start Kind = iota
    K_region
    K_parm
    K_phi
    K_mach
)

func (self Kind) String() string {
    switch self {
        case K_start  : return "start"
        case K_region : return "region"
        case K_parm   : return "parm"
        case K_phi    : return "phi"
        case K_mach   : return "mach"
        default       : return fmt.Sprintf("Kind(%d)", uint8(self))
    }
}

// Node is a vertex of the machine graph. In[0] is the control edge, data
// edges of a machine node start at OperInputBase(). Out holds one entry per
// edge that refers to this node.
type Node struct {
    Id      int
    Kind    Kind
    Rule    Rule
    Opnds   []Operand
    In      []*Node
    Out     []*Node
    removed bool
}

func (self *Node) IsMach() bool {
    return self.Kind == K_mach
}

func (self *Node) Req() int {
    return len(self.In)
}

func (self *Node) OperInputBase() int {
    return 1
}

func (self *Node) NumOpnds() int {
    return len(self.Opnds)
}

func (self *Node) IsRemoved() bool {
    return self.removed
}

// AddReq appends a new input edge.
func (self *Node) AddReq(n *Node) {
    self.In = append(self.In, n)
    if n != nil { n.Out = append(n.Out, self) }
}

// SetReq replaces the i-th input edge.
func (self *Node) SetReq(i int, n *Node) {
    if old := self.In[i]; old != nil {
        old.delOut(self)
    }
    if self.In[i] = n; n != nil {
        n.Out = append(n.Out, self)
    }
}

func (self *Node) delOut(n *Node) {
    for i, p := range self.Out {
        if p == n {
            self.Out = append(self.Out[:i], self.Out[i + 1:]...)
            return
        }
    }
    panic(fmt.Sprintf("%s is not a user of %s", n, self))
}

// ReplaceBy moves every user of this node over to n.
func (self *Node) ReplaceBy(n *Node) {
    if n == self {
        panic("replacing a node by itself: " + self.String())
    }

    /* each entry in Out stands for exactly one edge */
    for _, u := range self.Out {
        for i, p := range u.In {
            if p == self {
                u.In[i] = n
                n.Out = append(n.Out, u)
                break
            }
        }
    }

    /* no more users */
    self.Out = nil
}

// SetRemoved marks the node dead and detaches it from its inputs.
func (self *Node) SetRemoved() {
    if len(self.Out) != 0 {
        panic("removing a node that still has users: " + self.String())
    }

    /* drop the use edges held by the inputs */
    for i, p := range self.In {
        if p != nil && p != self {
            p.delOut(self)
        }
        self.In[i] = nil
    }

    /* mark as removed */
    self.removed = true
}

func (self *Node) String() string {
    if self.Kind != K_mach {
        return fmt.Sprintf("n%d:%s", self.Id, self.Kind)
    } else {
        return fmt.Sprintf("n%d:rule#%d", self.Id, self.Rule)
    }
}

// Format renders the node with its shape name and operands.
func (self *Node) Format(cat Catalog) string {
    var in []string
    var ops []string

    /* structural nodes */
    if self.Kind != K_mach {
        return self.String()
    }

    /* dump the operands */
    for _, v := range self.Opnds {
        if v == nil {
            ops = append(ops, "_")
        } else {
            ops = append(ops, v.String())
        }
    }

    /* dump the data edges */
    for _, v := range self.In[minint(self.OperInputBase(), len(self.In)):] {
        if v == nil {
            in = append(in, "nil")
        } else {
            in = append(in, fmt.Sprintf("n%d", v.Id))
        }
    }

    /* join them together */
    return fmt.Sprintf(
        "n%d = %s {%s} (%s)",
        self.Id,
        cat.Shape(self.Rule).Name,
        strings.Join(ops, ", "),
        strings.Join(in, ", "),
    )
}

func minint(a int, b int) int {
    if a < b {
        return a
    } else {
        return b
    }
}
