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
    `strings`

    `github.com/oleiade/lane`
    `gonum.org/v1/gonum/graph/encoding`
    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/simple`
)

type _DotBlock struct {
    bb  *Block
    cfg *CFG
}

func (self _DotBlock) ID() int64 {
    return int64(self.bb.Id)
}

func (self _DotBlock) DOTID() string {
    return self.bb.String()
}

func (self _DotBlock) Attributes() []encoding.Attribute {
    buf := make([]string, 0, len(self.bb.Nodes) + 1)
    buf = append(buf, self.bb.String() + ":")

    /* one line per node */
    for _, v := range self.bb.Nodes {
        buf = append(buf, v.Format(self.cfg.Catalog))
    }

    /* build the label */
    return []encoding.Attribute {
        { Key: "shape", Value: "box" },
        { Key: "label", Value: strings.Join(buf, "\n") },
    }
}

// Dot renders the blocks reachable from the root in Graphviz format.
func Dot(cfg *CFG, name string) ([]byte, error) {
    q := lane.NewQueue()
    g := simple.NewDirectedGraph()
    m := make(map[int]_DotBlock)

    /* no blocks at all */
    if cfg.Root() == nil {
        return dot.Marshal(g, name, "", "    ")
    }

    /* add the root block */
    m[cfg.Root().Id] = _DotBlock { cfg.Root(), cfg }
    g.AddNode(m[cfg.Root().Id])

    /* traverse the graph with BFS */
    for q.Enqueue(cfg.Root()); !q.Empty(); {
        p := q.Dequeue().(*Block)

        /* add all the successors */
        for _, bb := range p.Succs {
            if _, ok := m[bb.Id]; !ok {
                m[bb.Id] = _DotBlock { bb, cfg }
                g.AddNode(m[bb.Id])
                q.Enqueue(bb)
            }

            /* simple graphs do not have self loops */
            if bb != p {
                g.SetEdge(g.NewEdge(m[p.Id], m[bb.Id]))
            }
        }
    }

    /* render the graph */
    return dot.Marshal(g, name, "", "    ")
}
