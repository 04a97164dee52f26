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

import (
	"fmt"

	"github.com/coneprox/coneprox/conic"
)

// program is the compiled augmented conic problem: the base problem's fixed
// cost vector plus the identification of which solver columns receive the
// (rho/2)·‖·‖² penalty. Everything here is immutable after compile; only the
// per-call cost perturbation and the penalty scale rho vary between calls.
type program struct {
	cost []float64
	// proxIdx[j] is the solver column of registry flat position j.
	proxIdx []int
	n       int
}

// compile locates every registered proximal variable in the base problem's
// coordinate map and records the regularized column set. It returns
// ErrNonProximalCoverage when a name is absent from the map or its declared
// size disagrees with the registry.
func compile(base *conic.Problem, reg *Registry) (*program, error) {
	n, _ := base.Dims()
	p := &program{
		cost:    append([]float64(nil), base.C...),
		proxIdx: make([]int, reg.Size()),
		n:       n,
	}
	for _, e := range reg.entries {
		span, ok := base.Coords[e.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not in the base problem", ErrNonProximalCoverage, e.name)
		}
		if span.Size() != e.size {
			return nil, fmt.Errorf("%w: %q covers %d coordinates in the base problem, registered size %d",
				ErrNonProximalCoverage, e.name, span.Size(), e.size)
		}
		for j := 0; j < e.size; j++ {
			p.proxIdx[e.offset+j] = span.Offset + j
		}
	}
	return p, nil
}

// perturbedCost writes the per-call linear cost into dst: the fixed base
// cost with -rho·v0 folded onto the proximal columns. Combined with the
// cached quadratic block this implements (rho/2)·‖v - v0‖² over the proximal
// coordinates and leaves every other column unperturbed.
func (p *program) perturbedCost(dst, anchor []float64, rho float64) {
	copy(dst, p.cost)
	for j, col := range p.proxIdx {
		dst[col] -= rho * anchor[j]
	}
}

// penaltyDiag writes the quadratic diagonal into dst: rho on the proximal
// columns, zero elsewhere.
func (p *program) penaltyDiag(dst []float64, rho float64) {
	for j := range dst {
		dst[j] = 0
	}
	for _, col := range p.proxIdx {
		dst[col] = rho
	}
}
