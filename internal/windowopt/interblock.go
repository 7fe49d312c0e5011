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

// NewRoot constructs a fresh node of the shape a peephole rule expects. It is
// threaded through to every procedure for shape validation by the callers.
type NewRoot func() *opto.Node

// InterBlockRedundantFlagOps removes a flag-setting node at the start of a
// block when an identical node ends the single predecessor of that block.
// Chained comparisons and switches produce this pattern on every path into
// a block.
//
// It returns true if the node at index has been removed, in which case all
// its users now consume the matching node of the predecessor.
func InterBlockRedundantFlagOps(
    block   *opto.Block,
    index   int,
    cfg     *opto.CFG,
    ra      *opto.RegAlloc,
    newRoot NewRoot,
    rule    opto.Rule,
) bool {
    current := block.GetNode(index)

    /* the caller must have matched the rule already */
    if !current.IsMach() || current.Rule != rule {
        panic(fmt.Sprintf("windowopt: %s does not match rule %d", current, rule))
    }

    /* block must have exactly one predecessor (slot 0 is reserved) */
    if block.NumPreds() != 2 {
        return false
    }

    /* no nodes in the predecessor, nothing could be redundant */
    pred := cfg.GetBlockForNode(block.Pred(1))
    if pred == nil || pred.NumberOfNodes() == 0 {
        return false
    }

    /* a self loop would match the candidate against itself */
    if pred == block {
        return false
    }

    /* anything between the block head and the candidate may clobber flags */
    for i := 1; i < index; i++ {
        if !cfg.IsMachProj(block.GetNode(i)) {
            return false
        }
    }

    /* walk backwards over the predecessor to find the redundant node */
    match := (*opto.Node)(nil)
    for i := pred.NumberOfNodes() - 1; i > 0; i-- {
        p := pred.GetNode(i)

        /* unknown nodes stop the search */
        if !p.IsMach() {
            return false
        }

        /* branches and projections do not touch flags */
        if cfg.IsMachBranch(p) || cfg.IsMachProj(p) {
            continue
        }

        /* only the last flag-relevant node is considered */
        if sameOps(ra, current, p) {
            match = p
            break
        }

        /* anything else may have changed the flags */
        return false
    }

    /* nothing redundant */
    if match == nil {
        return false
    }

    /* redirect the users, then drop the node from both the block and the index */
    current.ReplaceBy(match)
    current.SetRemoved()
    block.RemoveNode(index)
    cfg.MapNodeToBlock(current, nil)
    return true
}
