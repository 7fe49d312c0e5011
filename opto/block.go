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

// Block is a basic block of scheduled machine nodes. Nodes[0] is the block
// head, whose input slot 0 refers to the head itself. The remaining head
// inputs are the control nodes of the predecessor blocks.
type Block struct {
    Id    int
    Nodes []*Node
    Succs []*Block
}

func (self *Block) Head() *Node {
    return self.Nodes[0]
}

// NumPreds counts predecessor slots, including the reserved slot 0.
func (self *Block) NumPreds() int {
    if len(self.Nodes) == 0 {
        return 0
    } else {
        return self.Head().Req()
    }
}

func (self *Block) Pred(i int) *Node {
    return self.Head().In[i]
}

func (self *Block) NumberOfNodes() int {
    return len(self.Nodes)
}

func (self *Block) GetNode(i int) *Node {
    return self.Nodes[i]
}

// FindNode returns the position of n in this block, or -1.
func (self *Block) FindNode(n *Node) int {
    for i, p := range self.Nodes {
        if p == n {
            return i
        }
    }
    return -1
}

// RemoveNode excises the i-th node from the node list. The caller is
// responsible for unmapping it from the CFG.
func (self *Block) RemoveNode(i int) {
    copy(self.Nodes[i:], self.Nodes[i + 1:])
    self.Nodes[len(self.Nodes) - 1] = nil
    self.Nodes = self.Nodes[:len(self.Nodes) - 1]
}

func (self *Block) String() string {
    return fmt.Sprintf("bb_%d", self.Id)
}

// Format dumps the block in a human readable form.
func (self *Block) Format(cfg *CFG) string {
    var pred []string
    var succ []string

    /* predecessor blocks */
    for i := 1; i < self.NumPreds(); i++ {
        if bb := cfg.GetBlockForNode(self.Pred(i)); bb == nil {
            pred = append(pred, "?")
        } else {
            pred = append(pred, bb.String())
        }
    }

    /* successor blocks */
    for _, bb := range self.Succs {
        succ = append(succ, bb.String())
    }

    /* block header */
    buf := []string {
        fmt.Sprintf(
            "%s: ; pred = {%s}, succ = {%s}",
            self,
            strings.Join(pred, ", "),
            strings.Join(succ, ", "),
        ),
    }

    /* every node */
    for _, v := range self.Nodes {
        buf = append(buf, "    " + v.Format(cfg.Catalog))
    }

    /* join them together */
    return strings.Join(buf, "\n")
}
