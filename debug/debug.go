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

package debug

import (
	"github.com/cloudwego/peephole/internal/driver"
)

// A Stats records cumulative statistics about the peephole pass.
type Stats struct {
	Peephole PassStats
}

// A PassStats records how often a pass ran and what it did.
type PassStats struct {
	Runs       int
	Candidates int
	Applied    int
}

// GetStats returns statistics of the peephole pass since process start.
func GetStats() Stats {
	return Stats{
		Peephole: PassStats{
			Runs:       int(driver.RunCount.Load()),
			Candidates: int(driver.CandidateCount.Load()),
			Applied:    int(driver.AppliedCount.Load()),
		},
	}
}
