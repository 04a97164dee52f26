// Copyright 2025 The coneprox Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package splitting

import "fmt"

// Status reports the outcome of a solve.
type Status int

const (
	// StatusUnsolved means no solve has run against the workspace yet.
	StatusUnsolved Status = iota
	// StatusSolved means the iterate met the residual tolerances.
	StatusSolved
	// StatusMaxIterations means the iteration cap was reached before the
	// tolerances were met. The returned iterate is the best available and
	// is still usable as a warm start.
	StatusMaxIterations
	// StatusPrimalInfeasible means a certificate of primal infeasibility
	// was found.
	StatusPrimalInfeasible
	// StatusDualInfeasible means a certificate of dual infeasibility
	// (an unbounded primal direction) was found.
	StatusDualInfeasible
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusUnsolved:
		return "Unsolved"
	case StatusSolved:
		return "Solved"
	case StatusMaxIterations:
		return "MaxIterations"
	case StatusPrimalInfeasible:
		return "PrimalInfeasible"
	case StatusDualInfeasible:
		return "DualInfeasible"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// HasSolution reports whether the result carries an iterate that
// approximates a solution (possibly a poor one at the iteration cap).
func (s Status) HasSolution() bool {
	return s == StatusSolved || s == StatusMaxIterations
}
