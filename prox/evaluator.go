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

// Package prox evaluates the proximal operator of a convex conic program
// efficiently and repeatedly. An Evaluator compiles a base conic problem
// plus a named set of proximal variables into a fixed structure augmented
// with a quadratic regularization block, caches the expensive KKT
// factorization across calls, and carries a warm start from each solve to
// the next, so that streams of anchor points (the access pattern of ADMM,
// proximal gradient, and Douglas-Rachford iterations) are solved in few
// iterations each.
//
// Each Evaluate call minimizes
//
//	C·x + (rho/2)·‖v - v0‖²
//
// over the base problem's constraints, where v is the flattened proximal
// variables, v0 the supplied anchor point, and rho the proximal scale.
//
// Distinct evaluators share no mutable state and may run concurrently from
// separate goroutines. A single evaluator must not be used from more than
// one goroutine at a time.
package prox

import (
	"fmt"
	"time"

	"github.com/coneprox/coneprox/conic"
	"github.com/coneprox/coneprox/splitting"
)

// DefaultRho is the proximal scale used when New is not given one.
const DefaultRho = 1.0

// SolveInfo carries the diagnostics of the most recent evaluation. It is
// overwritten wholesale by every call that reaches the solver.
type SolveInfo struct {
	Status         splitting.Status
	Iterations     int
	SolveTime      time.Duration
	PrimalResidual float64
	DualResidual   float64
	Objective      float64
	// Rho is the proximal scale the call solved with.
	Rho float64
	// Refactored reports whether this call rebuilt the KKT factorization.
	Refactored bool
}

// Evaluator repeatedly evaluates the proximal operator of one base problem.
type Evaluator struct {
	reg   *Registry
	prog  *program
	cache *factorCache
	warm  *warmStart
	opts  settingsManager

	rho    float64
	q      []float64
	vprox  []float64
	info   SolveInfo
	failed error
}

// New builds an evaluator for the base problem with the named proximal
// variables, using DefaultRho for the initial factorization. Shapes are
// taken from the base problem's coordinate map; a name missing from the map
// fails with ErrNonProximalCoverage. opts may be nil.
func New(base *conic.Problem, proximal []string, opts Options) (*Evaluator, error) {
	return NewWithRho(base, proximal, DefaultRho, opts)
}

// NewWithRho is New with an explicit initial proximal scale.
func NewWithRho(base *conic.Problem, proximal []string, rho float64, opts Options) (*Evaluator, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if rho <= 0 {
		return nil, fmt.Errorf("%w: rho=%v, want a positive float", ErrInvalidOptionValue, rho)
	}

	reg := NewRegistry()
	for _, name := range proximal {
		span, ok := base.Coords[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not in the base problem", ErrNonProximalCoverage, name)
		}
		if err := reg.Register(name, span.Shape...); err != nil {
			return nil, err
		}
	}

	prog, err := compile(base, reg)
	if err != nil {
		return nil, err
	}
	ws, err := splitting.NewWorkspace(base)
	if err != nil {
		return nil, err
	}

	e := &Evaluator{
		reg:   reg,
		prog:  prog,
		cache: newFactorCache(ws, prog),
		rho:   rho,
		q:     make([]float64, prog.n),
		vprox: make([]float64, reg.Size()),
	}
	n, m := ws.Dims()
	e.warm = newWarmStart(n, m)
	if err := e.opts.setPersistent(opts); err != nil {
		return nil, err
	}

	set, err := e.opts.resolve(nil)
	if err != nil {
		return nil, err
	}
	if err := e.cache.ensureReady(rho, set.Sigma, set.Rho); err != nil {
		return nil, err
	}
	return e, nil
}

// Evaluate is EvaluateWithOptions with the previous rho and no overrides.
// A nil anchor uses the zero element for every variable.
func (e *Evaluator) Evaluate(anchor map[string]Value) (map[string]Value, error) {
	return e.EvaluateWithOptions(anchor, e.rho, nil)
}

// EvaluateWithRho is EvaluateWithOptions with no per-call overrides.
func (e *Evaluator) EvaluateWithRho(anchor map[string]Value, rho float64) (map[string]Value, error) {
	return e.EvaluateWithOptions(anchor, rho, nil)
}

// EvaluateWithOptions evaluates the proximal operator at the anchor point
// with scale rho, applying the overrides on top of the persistent options
// for this call only. Names omitted from anchor default to their zero
// element. The result maps every proximal variable to its minimizer.
//
// Solver non-convergence is not an error: the returned values are the best
// available iterate and Info reports the status. Configuration errors leave
// the evaluator and its warm start unchanged. ErrFactorization is fatal and
// every later call returns it unchanged.
func (e *Evaluator) EvaluateWithOptions(anchor map[string]Value, rho float64, overrides Options) (map[string]Value, error) {
	if e.failed != nil {
		return nil, e.failed
	}
	if rho <= 0 {
		return nil, fmt.Errorf("%w: rho=%v, want a positive float", ErrInvalidOptionValue, rho)
	}

	flat, err := e.reg.Flatten(anchor)
	if err != nil {
		return nil, err
	}
	set, err := e.opts.resolve(overrides)
	if err != nil {
		return nil, err
	}

	before := e.cache.refactors
	if err := e.cache.ensureReady(rho, set.Sigma, set.Rho); err != nil {
		e.failed = err
		return nil, err
	}

	e.prog.perturbedCost(e.q, flat, rho)
	res, err := e.cache.ws.Solve(e.q, e.warm.current(), set)
	if err != nil {
		return nil, err
	}

	e.warm.update(res)
	e.rho = rho
	e.info = SolveInfo{
		Status:         res.Status,
		Iterations:     res.Iterations,
		SolveTime:      res.SolveTime,
		PrimalResidual: res.PrimalResidual,
		DualResidual:   res.DualResidual,
		Objective:      res.Objective,
		Rho:            rho,
		Refactored:     e.cache.refactors != before,
	}

	for j, col := range e.prog.proxIdx {
		e.vprox[j] = res.X[col]
	}
	return e.reg.Unflatten(e.vprox)
}

// Info returns the diagnostics of the most recent evaluation.
func (e *Evaluator) Info() SolveInfo {
	return e.info
}

// Rho returns the proximal scale of the most recent evaluation (or the
// construction-time scale before the first call).
func (e *Evaluator) Rho() float64 {
	return e.rho
}

// Names returns the proximal variable names in registration order.
func (e *Evaluator) Names() []string {
	return e.reg.Names()
}

// ZeroElem returns the all-zero value of every proximal variable, the same
// defaults Evaluate substitutes for omitted anchor names.
func (e *Evaluator) ZeroElem() map[string]Value {
	return e.reg.ZeroElem()
}

// ZeroValue returns the all-zero value of one proximal variable.
func (e *Evaluator) ZeroValue(name string) (Value, error) {
	return e.reg.ZeroValue(name)
}

// SetOptions merges opts into the persistent options layer. The change
// applies to all later calls; it never rebuilds the factorization eagerly.
func (e *Evaluator) SetOptions(opts Options) error {
	return e.opts.setPersistent(opts)
}

// ResetWarmStart restores the warm-start state to the zero state. It does
// not touch the factorization or the options.
func (e *Evaluator) ResetWarmStart() {
	e.warm.reset()
}
