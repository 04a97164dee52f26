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

import (
	"fmt"
	"math"
	"time"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// WarmStart seeds the iteration. Nil slices start from zero vectors.
type WarmStart struct {
	X []float64 // primal iterate, length n
	Y []float64 // dual iterate, length m
	S []float64 // slack iterate, length m
}

// Result is the outcome of one solve. The vectors are freshly allocated and
// owned by the caller; feeding them back as the next WarmStart is the
// intended use.
type Result struct {
	X, Y, S []float64

	Status         Status
	Iterations     int
	SolveTime      time.Duration
	PrimalResidual float64
	DualResidual   float64
	Objective      float64
}

// Solve minimizes ½·xᵀ·diag(p)·x + q·x over the workspace's constraints,
// where diag(p) is the quadratic diagonal supplied to Factor. The iteration
// always steps with the factored Sigma and Rho; the Sigma and Rho fields of
// set are ignored here.
//
// Residuals are checked on the incoming warm-start point before the first
// step, so resolving from an already-converged point reports 0 iterations.
// Hitting the iteration cap is not an error: the result carries
// StatusMaxIterations and the current iterate.
func (w *Workspace) Solve(q []float64, warm WarmStart, set Settings) (*Result, error) {
	if !w.factored {
		return nil, ErrNotFactored
	}
	if len(q) != w.n {
		return nil, fmt.Errorf("%w: cost has %d entries, want %d", ErrDimensionMismatch, len(q), w.n)
	}
	set = set.withDefaults()

	n, m := w.n, w.m
	x := make([]float64, n)
	y := make([]float64, m)
	s := make([]float64, m)
	if err := seed(x, warm.X, "X"); err != nil {
		return nil, err
	}
	if err := seed(y, warm.Y, "Y"); err != nil {
		return nil, err
	}
	if err := seed(s, warm.S, "S"); err != nil {
		return nil, err
	}

	var (
		xt      = make([]float64, n)
		st      = make([]float64, m)
		u       = make([]float64, m)
		resid   = make([]float64, m)
		dres    = make([]float64, n)
		xCheck  = make([]float64, n)
		yCheck  = make([]float64, m)
		dx      = make([]float64, n)
		dy      = make([]float64, m)
		checked bool
	)

	sigma, rho, alpha := w.sigma, w.rho, set.Alpha
	start := time.Now()
	status := StatusUnsolved
	iter := 0
	var pri, dua float64

	for {
		if iter%set.CheckInterval == 0 || iter >= set.MaxIterations {
			var priTol, duaTol float64
			pri, dua, priTol, duaTol = w.residuals(x, y, s, q, resid, dres, set)
			if set.Verbose {
				log.Infof("splitting: iter %6d  pri %.3e  dua %.3e", iter, pri, dua)
			} else {
				log.V(2).Infof("splitting: iter %6d  pri %.3e  dua %.3e", iter, pri, dua)
			}
			if pri <= priTol && dua <= duaTol {
				status = StatusSolved
				break
			}
			if checked {
				floats.SubTo(dx, x, xCheck)
				floats.SubTo(dy, y, yCheck)
				if st := w.certify(dx, dy, q, set.EpsInfeasible); st != StatusUnsolved {
					status = st
					break
				}
			}
			copy(xCheck, x)
			copy(yCheck, y)
			checked = true
		}
		if iter >= set.MaxIterations {
			status = StatusMaxIterations
			break
		}

		// Solve the KKT system for (x̃, ν).
		for j := 0; j < n; j++ {
			w.rhs.SetVec(j, sigma*x[j]-q[j])
		}
		for i := 0; i < m; i++ {
			w.rhs.SetVec(n+i, w.b[i]-s[i]-y[i]/rho)
		}
		if err := w.lu.SolveVecTo(w.sol, false, w.rhs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		for j := 0; j < n; j++ {
			xt[j] = w.sol.AtVec(j)
		}
		for i := 0; i < m; i++ {
			nu := w.sol.AtVec(n + i)
			st[i] = s[i] + (y[i]-nu)/rho
		}

		// Relax, project the slack onto the cone product, and take the
		// dual ascent step.
		for j := 0; j < n; j++ {
			x[j] = alpha*xt[j] + (1-alpha)*x[j]
		}
		for i := 0; i < m; i++ {
			u[i] = alpha*st[i] + (1-alpha)*s[i]
			s[i] = u[i] - y[i]/rho
		}
		projectCones(s, w.cones)
		for i := 0; i < m; i++ {
			y[i] += rho * (s[i] - u[i])
		}
		iter++
	}

	obj := floats.Dot(q, x)
	for j := 0; j < n; j++ {
		obj += 0.5 * w.pdiag[j] * x[j] * x[j]
	}
	return &Result{
		X:              x,
		Y:              y,
		S:              s,
		Status:         status,
		Iterations:     iter,
		SolveTime:      time.Since(start),
		PrimalResidual: pri,
		DualResidual:   dua,
		Objective:      obj,
	}, nil
}

// residuals computes the primal residual A·x + s - b and the dual residual
// diag(p)·x + q + Aᵀ·y together with their scaled tolerances.
func (w *Workspace) residuals(x, y, s, q, resid, dres []float64, set Settings) (pri, dua, priTol, duaTol float64) {
	n, m := w.n, w.m
	axv := mat.NewVecDense(m, w.ax)
	axv.MulVec(w.a, mat.NewVecDense(n, x))
	for i := 0; i < m; i++ {
		resid[i] = w.ax[i] + s[i] - w.b[i]
	}
	pri = normInf(resid)
	priTol = set.EpsAbs + set.EpsRel*max3(normInf(w.ax), normInf(s), normInf(w.b))

	atyv := mat.NewVecDense(n, w.aty)
	atyv.MulVec(w.a.T(), mat.NewVecDense(m, y))
	for j := 0; j < n; j++ {
		w.px[j] = w.pdiag[j] * x[j]
		dres[j] = w.px[j] + q[j] + w.aty[j]
	}
	dua = normInf(dres)
	duaTol = set.EpsAbs + set.EpsRel*max3(normInf(w.px), normInf(w.aty), normInf(q))
	return pri, dua, priTol, duaTol
}

// certify tests the one-check deltas for primal and dual infeasibility
// certificates. δy certifies primal infeasibility when it lies in the dual
// cone, is in the null space of Aᵀ, and has b·δy < 0. δx certifies dual
// infeasibility when it is a cost-decreasing recession direction.
func (w *Workspace) certify(dx, dy, q []float64, eps float64) Status {
	n, m := w.n, w.m

	if nrm := normInf(dy); nrm > 0 {
		tol := eps * nrm
		atdy := mat.NewVecDense(n, w.aty)
		atdy.MulVec(w.a.T(), mat.NewVecDense(m, dy))
		if normInf(w.aty) <= tol && floats.Dot(w.b, dy) <= -tol && inDualCones(dy, w.cones, tol) {
			return StatusPrimalInfeasible
		}
	}

	if nrm := normInf(dx); nrm > 0 {
		tol := eps * nrm
		maxP := 0.0
		for j := 0; j < n; j++ {
			if p := math.Abs(w.pdiag[j] * dx[j]); p > maxP {
				maxP = p
			}
		}
		if maxP <= tol && floats.Dot(q, dx) <= -tol {
			adxv := mat.NewVecDense(m, w.adx)
			adxv.MulVec(w.a, mat.NewVecDense(n, dx))
			floats.Scale(-1, w.adx)
			if inCones(w.adx, w.cones, tol) {
				return StatusDualInfeasible
			}
		}
	}
	return StatusUnsolved
}

func seed(dst, src []float64, field string) error {
	if src == nil {
		return nil
	}
	if len(src) != len(dst) {
		return fmt.Errorf("%w: warm start %s has %d entries, want %d", ErrDimensionMismatch, field, len(src), len(dst))
	}
	copy(dst, src)
	return nil
}

func normInf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, math.Inf(1))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
