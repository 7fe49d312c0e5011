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

package driver

import (
    `github.com/cloudwego/peephole/internal/windowopt`
    `github.com/cloudwego/peephole/opto`
)

// Proc is a peephole procedure. It may rewrite the graph around the node at
// index and reports whether it did so.
type Proc func(
    block   *opto.Block,
    index   int,
    cfg     *opto.CFG,
    ra      *opto.RegAlloc,
    newRoot windowopt.NewRoot,
    rule    opto.Rule,
) bool

// Procedure is a named peephole procedure.
type Procedure struct {
    Name string
    Proc Proc
}

// Arch binds the shape catalog of a target to its peephole rules.
type Arch struct {
    Name    string
    Shapes  *opto.ShapeTable
    Rules   map[opto.Rule][]Procedure
    RegName func(opto.OptoReg) string
}

// NewBuilder starts a graph for this target.
func (self *Arch) NewBuilder() *opto.Builder {
    b := opto.CreateBuilder(self.Shapes)
    b.RegAlloc().Names = self.RegName
    return b
}

// NewRoot returns the shape factory for rule. The nodes it creates are
// detached from every block.
func (self *Arch) NewRoot(cfg *opto.CFG, rule opto.Rule) windowopt.NewRoot {
    return func() *opto.Node {
        return cfg.NewNode(opto.K_mach, rule, nil)
    }
}

// Procedures returns the peephole procedures registered for rule.
func (self *Arch) Procedures(rule opto.Rule) []Procedure {
    return self.Rules[rule]
}
