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

package prox

import "github.com/coneprox/coneprox/splitting"

// warmStart owns the primal/dual/slack vectors that seed the next solve.
// The vectors start at the zero state, are replaced wholesale after every
// successful solve, and can be reset back to the zero state. A solve that
// returns an error leaves them untouched.
type warmStart struct {
	x, y, s []float64
}

func newWarmStart(n, m int) *warmStart {
	return &warmStart{
		x: make([]float64, n),
		y: make([]float64, m),
		s: make([]float64, m),
	}
}

func (w *warmStart) current() splitting.WarmStart {
	return splitting.WarmStart{X: w.x, Y: w.y, S: w.s}
}

func (w *warmStart) update(res *splitting.Result) {
	copy(w.x, res.X)
	copy(w.y, res.Y)
	copy(w.s, res.S)
}

// reset restores the zero state. Idempotent.
func (w *warmStart) reset() {
	for i := range w.x {
		w.x[i] = 0
	}
	for i := range w.y {
		w.y[i] = 0
	}
	for i := range w.s {
		w.s[i] = 0
	}
}
