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
    `log/slog`
    `sync/atomic`

    `github.com/cloudwego/peephole/opto`
    `github.com/oleiade/lane`
)

var (
    RunCount       atomic.Uint64
    CandidateCount atomic.Uint64
    AppliedCount   atomic.Uint64
)

// Stats records what one run of the peephole pass did.
type Stats struct {
    Visits     int
    Candidates int
    Applied    int
    ByRule     map[string]int
}

// Peephole offers every machine node with registered procedures to those
// procedures, block by block.
type Peephole struct {
    Arch      *Arch
    MaxRounds int
    Logger    *slog.Logger
}

func (self Peephole) Apply(cfg *opto.CFG, ra *opto.RegAlloc) (st Stats) {
    q := lane.NewQueue()
    n := make(map[int]int, len(cfg.Blocks))
    w := make(map[int]bool, len(cfg.Blocks))

    /* start with every block in layout order */
    for _, bb := range cfg.Blocks {
        w[bb.Id] = true
        q.Enqueue(bb)
    }

    /* process until the worklist drains */
    for st.ByRule = make(map[string]int); !q.Empty(); {
        bb := q.Dequeue().(*opto.Block)
        w[bb.Id] = false

        /* each block is only revisited a bounded number of times */
        if n[bb.Id]++; n[bb.Id] > self.MaxRounds {
            continue
        }

        /* a successful rewrite may expose new candidates in the successors */
        if st.Visits++; self.block(cfg, ra, bb, &st) {
            for _, p := range bb.Succs {
                if !w[p.Id] {
                    w[p.Id] = true
                    q.Enqueue(p)
                }
            }
        }
    }

    /* update the global counters */
    RunCount.Add(1)
    CandidateCount.Add(uint64(st.Candidates))
    AppliedCount.Add(uint64(st.Applied))
    return
}

func (self Peephole) block(cfg *opto.CFG, ra *opto.RegAlloc, bb *opto.Block, st *Stats) (progress bool) {
    for i := bb.NumberOfNodes() - 1; i > 0; i-- {
        p := bb.GetNode(i)

        /* only machine nodes have rules */
        if !p.IsMach() {
            continue
        }

        /* try every procedure registered for this rule */
        for _, v := range self.Arch.Procedures(p.Rule) {
            st.Candidates++
            rule := p.Rule

            /* stop at the first procedure that rewrites the node */
            if v.Proc(bb, i, cfg, ra, self.Arch.NewRoot(cfg, rule), rule) {
                name := cfg.Catalog.Shape(rule).Name
                progress = true
                st.Applied++
                st.ByRule[name]++
                self.trace(bb, i, p, name, v.Name)
                break
            }
        }
    }
    return
}

func (self Peephole) trace(bb *opto.Block, i int, p *opto.Node, rule string, proc string) {
    if self.Logger != nil {
        self.Logger.Debug("peephole applied",
            slog.String("arch", self.Arch.Name),
            slog.String("procedure", proc),
            slog.String("rule", rule),
            slog.Int("block", bb.Id),
            slog.Int("index", i),
            slog.Int("node", p.Id),
        )
    }
}
