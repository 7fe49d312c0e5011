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

// Package peephole removes flag-setting instructions made redundant across
// basic block boundaries of a scheduled, register-allocated machine graph.
//
// A comparison at the top of a block is dropped when the single predecessor
// of that block ends with an identical comparison and nothing in between can
// have changed the condition flags. Chained comparisons on the same value,
// as produced by if-else ladders and switch lowering, are the typical case.
package peephole

import (
    `runtime`

    `github.com/cloudwego/peephole/internal/arch/aarch64`
    `github.com/cloudwego/peephole/internal/arch/amd64`
    `github.com/cloudwego/peephole/internal/driver`
    `github.com/cloudwego/peephole/internal/opts`
    `github.com/cloudwego/peephole/opto`
)

// Target is an architecture with its shape catalog and peephole rules.
type Target = driver.Arch

// Stats records what one call to Optimize did.
type Stats = driver.Stats

var targets = map[string]*Target {
    "amd64"   : amd64.Target,
    "x86_64"  : amd64.Target,
    "arm64"   : aarch64.Target,
    "aarch64" : aarch64.Target,
}

// LookupTarget finds a target by its GOARCH or GNU name.
func LookupTarget(name string) (*Target, error) {
    if t, ok := targets[name]; !ok {
        return nil, UnsupportedTargetError { Name: name }
    } else {
        return t, nil
    }
}

// HostTarget returns the target of the running process.
func HostTarget() (*Target, error) {
    return LookupTarget(runtime.GOARCH)
}

// Optimize runs the peephole rules of target over every block of cfg. The
// graph must already be scheduled and register allocated, ra holds the
// allocation result.
//
// Nodes eliminated by a rule are marked as removed and unlinked from both
// their block and the node-to-block index.
func Optimize(target *Target, cfg *opto.CFG, ra *opto.RegAlloc, options ...Option) Stats {
    o := opts.GetDefaultOptions()
    for _, fn := range options { fn(&o) }

    /* peephole optimizations are turned off */
    if !o.OptoPeephole {
        return Stats { ByRule: map[string]int{} }
    }

    /* run the driver */
    return driver.Peephole {
        Arch      : target,
        MaxRounds : o.MaxRounds,
        Logger    : o.Logger,
    }.Apply(cfg, ra)
}
