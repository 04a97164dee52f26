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

// Package splitting solves conic quadratic programs
//
//	minimize    ½·xᵀ·diag(p)·x + q·x
//	subject to  A·x + s = b,  s ∈ K
//
// with an ADMM operator-splitting method. A Workspace holds a persistent
// factorization of the method's KKT matrix so that repeated solves against
// the same structure (with varying linear cost q) reuse it, and accepts an
// explicit warm-start point.
//
// A Workspace is not safe for concurrent use; distinct Workspaces are fully
// independent and may be used from separate goroutines.
package splitting

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprox/coneprox/conic"
)

var (
	// ErrNotFactored is returned by Solve before a successful Factor.
	ErrNotFactored = errors.New("splitting: workspace is not factored")

	// ErrBadData indicates non-finite or out-of-range factorization data.
	ErrBadData = errors.New("splitting: invalid factorization data")

	// ErrSingular indicates the KKT matrix could not be factored.
	ErrSingular = errors.New("splitting: kkt factorization failed")

	// ErrDimensionMismatch indicates an argument sized inconsistently with
	// the workspace's problem.
	ErrDimensionMismatch = errors.New("splitting: dimension mismatch")
)

// Workspace owns a copy of one problem's constraint structure and the
// factorization of the KKT matrix
//
//	⎡ diag(p)+σI   Aᵀ    ⎤
//	⎣ A           -(1/ρ)I ⎦
//
// parameterized by the quadratic diagonal p and the method parameters σ
// (Sigma) and ρ (Rho). The factorization stays valid while those inputs are
// unchanged; Factor must be called again when any of them changes.
type Workspace struct {
	n, m  int
	a     *mat.Dense
	b     []float64
	cones []conic.Cone

	pdiag []float64
	sigma float64
	rho   float64

	kkt      *mat.Dense
	lu       mat.LU
	factored bool

	// scratch reused across solves
	rhs, sol *mat.VecDense
	ax, adx  []float64
	aty      []float64
	px       []float64
}

// NewWorkspace validates the problem and allocates a workspace holding a
// private copy of the constraint data. The workspace is unfactored until
// Factor is called.
func NewWorkspace(p *conic.Problem) (*Workspace, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n, m := p.Dims()
	for i := 0; i < m; i++ {
		if !isFinite(p.B[i]) {
			return nil, fmt.Errorf("%w: b[%d] is not finite", ErrBadData, i)
		}
		for j := 0; j < n; j++ {
			if !isFinite(p.A.At(i, j)) {
				return nil, fmt.Errorf("%w: A[%d,%d] is not finite", ErrBadData, i, j)
			}
		}
	}
	w := &Workspace{
		n:     n,
		m:     m,
		a:     mat.DenseCopyOf(p.A),
		b:     append([]float64(nil), p.B...),
		cones: append([]conic.Cone(nil), p.Cones...),
		pdiag: make([]float64, n),
		kkt:   mat.NewDense(n+m, n+m, nil),
		rhs:   mat.NewVecDense(n+m, nil),
		sol:   mat.NewVecDense(n+m, nil),
		ax:    make([]float64, m),
		adx:   make([]float64, m),
		aty:   make([]float64, n),
		px:    make([]float64, n),
	}
	return w, nil
}

// Dims returns the number of decision variables n and constraint rows m.
func (w *Workspace) Dims() (n, m int) {
	return w.n, w.m
}

// Factored reports whether the workspace holds a valid factorization.
func (w *Workspace) Factored() bool {
	return w.factored
}

// Factor builds and factors the KKT matrix for the quadratic diagonal pdiag
// and the method parameters sigma > 0 and rho > 0. On failure the workspace
// is left unfactored and Solve refuses to run.
func (w *Workspace) Factor(pdiag []float64, sigma, rho float64) error {
	if len(pdiag) != w.n {
		return fmt.Errorf("%w: quadratic diagonal has %d entries, want %d", ErrDimensionMismatch, len(pdiag), w.n)
	}
	w.factored = false
	if !isFinite(sigma) || sigma <= 0 {
		return fmt.Errorf("%w: sigma=%g", ErrBadData, sigma)
	}
	if !isFinite(rho) || rho <= 0 {
		return fmt.Errorf("%w: rho=%g", ErrBadData, rho)
	}
	for j, v := range pdiag {
		if !isFinite(v) || v < 0 {
			return fmt.Errorf("%w: quadratic diagonal entry %d is %g", ErrBadData, j, v)
		}
	}

	n, m := w.n, w.m
	w.kkt.Zero()
	for j := 0; j < n; j++ {
		w.kkt.Set(j, j, pdiag[j]+sigma)
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := w.a.At(i, j)
			w.kkt.Set(n+i, j, v)
			w.kkt.Set(j, n+i, v)
		}
		w.kkt.Set(n+i, n+i, -1/rho)
	}
	w.lu.Factorize(w.kkt)

	// A trial solve surfaces singular or hopelessly ill-conditioned
	// factorizations; Factorize itself never reports them.
	probe := make([]float64, n+m)
	for i := range probe {
		probe[i] = 1
	}
	var dst mat.VecDense
	if err := w.lu.SolveVecTo(&dst, false, mat.NewVecDense(n+m, probe)); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}

	copy(w.pdiag, pdiag)
	w.sigma = sigma
	w.rho = rho
	w.factored = true
	log.V(1).Infof("splitting: factored %dx%d kkt system (sigma=%g, rho=%g)", n+m, n+m, sigma, rho)
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
