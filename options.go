/*
 * Copyright 2022 CloudWeGo Authors
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

package peephole

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/peephole/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithOptoPeephole turns the peephole pass on or off for one call.
//
// The default value of this option is "true".
func WithOptoPeephole(enable bool) Option {
	return func(o *opts.Options) { o.OptoPeephole = enable }
}

// WithMaxRounds limits how many times a single block is scanned.
//
// A block is scanned again when a rule changed one of its predecessors,
// which may expose new opportunities.
//
// The default value of this option is "4".
func WithMaxRounds(rounds int) Option {
	if rounds < 1 {
		panic(fmt.Sprintf("peephole: invalid max rounds: %d", rounds))
	} else {
		return func(o *opts.Options) { o.MaxRounds = rounds }
	}
}

// WithLogger sets the logger every applied rule is reported to, at debug
// level. A nil logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(o *opts.Options) { o.Logger = logger }
}

// SetOptoPeephole turns the peephole pass on or off for all calls from now on.
//
// This value can also be configured with the `PEEPHOLE_OPTO` environment
// variable.
//
// Returns the old opts.OptoPeephole value.
func SetOptoPeephole(enable bool) bool {
	enable, opts.OptoPeephole = opts.OptoPeephole, enable
	return enable
}

// SetMaxRounds sets the default maximum scans per block for all calls from
// now on.
//
// This value can also be configured with the `PEEPHOLE_MAX_ROUNDS`
// environment variable.
//
// Returns the old opts.MaxRounds value.
func SetMaxRounds(rounds int) int {
	if rounds < 1 {
		panic(fmt.Sprintf("peephole: invalid max rounds: %d", rounds))
	}
	rounds, opts.MaxRounds = opts.MaxRounds, rounds
	return rounds
}
