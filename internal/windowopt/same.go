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

package windowopt

import (
    `fmt`

    `github.com/cloudwego/peephole/opto`
)

// sameConstants compares two literal operands. Only short, int and long
// constants are ever considered equal.
func sameConstants(left opto.Operand, right opto.Operand) bool {
    lt := left.Type()
    rt := right.Type()

    /* literal categories must match */
    if lt != rt {
        return false
    }

    /* compare by category */
    switch lt {
        case opto.T_INT   : return immof(left).Constant() == immof(right).Constant()
        case opto.T_SHORT : return immof(left).ConstantH() == immof(right).ConstantH()
        case opto.T_LONG  : return immof(left).ConstantL() == immof(right).ConstantL()
        default           : return false
    }
}

func immof(v opto.Operand) *opto.ImmOper {
    if p, ok := v.(*opto.ImmOper); ok {
        return p
    } else {
        panic(fmt.Sprintf("integer operand %s is not an immediate", v))
    }
}

// sameRegisters checks that n edges starting at idx resolve to the same
// physical registers in both nodes.
func sameRegisters(ra *opto.RegAlloc, left *opto.Node, right *opto.Node, idx int, n int) bool {
    for j := 0; j < n; j++ {
        lv := left.In[idx + j]
        rv := right.In[idx + j]

        /* same rule implies the same input structure */
        if lv == nil || rv == nil {
            panic(fmt.Sprintf("missing input %d of %s or %s", idx + j, left, right))
        }

        /* every register-backed input must have been allocated */
        lr := ra.GetRegFirst(lv)
        rr := ra.GetRegFirst(rv)

        /* unallocated inputs would all look alike */
        if lr == opto.OptoRegBad || rr == opto.OptoRegBad {
            panic(fmt.Sprintf("unallocated input %d of %s or %s", idx + j, left, right))
        }

        /* compare the allocated registers */
        if lr != rr {
            return false
        }
    }
    return true
}

// sameOps reports whether two machine nodes share the rule and every input
// operand. Operand 0 defines the result and is not compared.
func sameOps(ra *opto.RegAlloc, left *opto.Node, right *opto.Node) bool {
    if left.Rule != right.Rule {
        return false
    }

    /* compare every input operand, edges are consumed in operand order */
    for i, idx := 1, left.OperInputBase(); i < left.NumOpnds(); i++ {
        lop := left.Opnds[i]
        rop := right.Opnds[i]
        nb := lop.NumEdges()

        /* literals or registers */
        if nb == 0 {
            if !sameConstants(lop, rop) {
                return false
            }
        } else {
            if !sameRegisters(ra, left, right, idx, nb) {
                return false
            }
        }

        /* advance the edge cursor */
        idx += nb
    }

    /* all operands match */
    return true
}
