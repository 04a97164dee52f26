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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/coneprox/coneprox/conic"
)

const solveTol = 1e-4

// boxProblem constrains a single variable to x >= 0 via -x + s = 0, s >= 0.
func boxProblem(t *testing.T) *Workspace {
	t.Helper()
	p := &conic.Problem{
		C:     []float64{0},
		A:     mat.NewDense(1, 1, []float64{-1}),
		B:     []float64{0},
		Cones: []conic.Cone{{Kind: conic.NonNegative, Dim: 1}},
	}
	w, err := NewWorkspace(p)
	require.NoError(t, err)
	return w
}

func factorDefault(t *testing.T, w *Workspace, pdiag []float64) {
	t.Helper()
	def := DefaultSettings()
	require.NoError(t, w.Factor(pdiag, def.Sigma, def.Rho))
}

func TestSolve_NotFactored(t *testing.T) {
	w := boxProblem(t)
	_, err := w.Solve([]float64{0}, WarmStart{}, Settings{})
	assert.ErrorIs(t, err, ErrNotFactored)
}

func TestFactor_BadData(t *testing.T) {
	w := boxProblem(t)
	def := DefaultSettings()

	assert.ErrorIs(t, w.Factor([]float64{1, 2}, def.Sigma, def.Rho), ErrDimensionMismatch)
	assert.ErrorIs(t, w.Factor([]float64{1}, 0, def.Rho), ErrBadData)
	assert.ErrorIs(t, w.Factor([]float64{1}, def.Sigma, -1), ErrBadData)
	assert.ErrorIs(t, w.Factor([]float64{math.NaN()}, def.Sigma, def.Rho), ErrBadData)
	assert.ErrorIs(t, w.Factor([]float64{math.Inf(1)}, def.Sigma, def.Rho), ErrBadData)
	assert.False(t, w.Factored())
}

func TestNewWorkspace_BadData(t *testing.T) {
	p := &conic.Problem{
		C:     []float64{0},
		A:     mat.NewDense(1, 1, []float64{math.NaN()}),
		B:     []float64{0},
		Cones: []conic.Cone{{Kind: conic.NonNegative, Dim: 1}},
	}
	_, err := NewWorkspace(p)
	assert.ErrorIs(t, err, ErrBadData)
}

// Minimizing ½(x-v)² subject to x >= 0 projects v onto the nonnegative ray.
func TestSolve_BoxProjection(t *testing.T) {
	tests := []struct {
		v    float64
		want float64
	}{
		{2.5, 2.5},
		{-1.5, 0},
		{0, 0},
	}
	for _, test := range tests {
		w := boxProblem(t)
		factorDefault(t, w, []float64{1})
		res, err := w.Solve([]float64{-test.v}, WarmStart{}, Settings{})
		require.NoError(t, err)
		assert.Equal(t, StatusSolved, res.Status)
		assert.InDelta(t, test.want, res.X[0], solveTol, "projection of %v", test.v)
	}
}

// Minimizing ½x² subject to x = 3 pins the primal and dual exactly:
// x = 3, and stationarity x + y = 0 gives y = -3.
func TestSolve_Equality(t *testing.T) {
	p := &conic.Problem{
		C:     []float64{0},
		A:     mat.NewDense(1, 1, []float64{1}),
		B:     []float64{3},
		Cones: []conic.Cone{{Kind: conic.Zero, Dim: 1}},
	}
	w, err := NewWorkspace(p)
	require.NoError(t, err)
	factorDefault(t, w, []float64{1})

	res, err := w.Solve([]float64{0}, WarmStart{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, res.Status)
	assert.InDelta(t, 3.0, res.X[0], solveTol)
	assert.InDelta(t, -3.0, res.Y[0], solveTol)
	assert.InDelta(t, 0.0, res.S[0], solveTol)
	assert.InDelta(t, 4.5, res.Objective, 10*solveTol)
}

// Minimizing ½‖x-(0,3)‖² subject to x in the second-order cone projects
// (0,3) onto the cone: (1.5, 1.5).
func TestSolve_SecondOrderProjection(t *testing.T) {
	p := &conic.Problem{
		C:     []float64{0, 0},
		A:     mat.NewDense(2, 2, []float64{-1, 0, 0, -1}),
		B:     []float64{0, 0},
		Cones: []conic.Cone{{Kind: conic.SecondOrder, Dim: 2}},
	}
	w, err := NewWorkspace(p)
	require.NoError(t, err)
	factorDefault(t, w, []float64{1, 1})

	res, err := w.Solve([]float64{0, -3}, WarmStart{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, res.Status)
	assert.InDelta(t, 1.5, res.X[0], solveTol)
	assert.InDelta(t, 1.5, res.X[1], solveTol)
}

func TestSolve_WarmStartConvergesImmediately(t *testing.T) {
	w := boxProblem(t)
	factorDefault(t, w, []float64{1})
	q := []float64{-2.5}

	first, err := w.Solve(q, WarmStart{}, Settings{})
	require.NoError(t, err)
	assert.Greater(t, first.Iterations, 0)

	second, err := w.Solve(q, WarmStart{X: first.X, Y: first.Y, S: first.S}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, second.Status)
	assert.Equal(t, 0, second.Iterations)
	assert.Equal(t, first.X, second.X)
}

func TestSolve_WarmStartDimensions(t *testing.T) {
	w := boxProblem(t)
	factorDefault(t, w, []float64{1})
	_, err := w.Solve([]float64{0}, WarmStart{X: []float64{1, 2}}, Settings{})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSolve_MaxIterations(t *testing.T) {
	w := boxProblem(t)
	factorDefault(t, w, []float64{1})

	res, err := w.Solve([]float64{-2.5}, WarmStart{}, Settings{MaxIterations: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusMaxIterations, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Status.HasSolution())
}

// x >= 1 together with x <= 0 is primal infeasible.
func TestSolve_PrimalInfeasible(t *testing.T) {
	p := &conic.Problem{
		C:     []float64{0},
		A:     mat.NewDense(2, 1, []float64{-1, 1}),
		B:     []float64{-1, 0},
		Cones: []conic.Cone{{Kind: conic.NonNegative, Dim: 2}},
	}
	w, err := NewWorkspace(p)
	require.NoError(t, err)
	factorDefault(t, w, []float64{1})

	res, err := w.Solve([]float64{0}, WarmStart{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, StatusPrimalInfeasible, res.Status)
}

// Minimizing -x subject to x >= 0 is unbounded below.
func TestSolve_DualInfeasible(t *testing.T) {
	w := boxProblem(t)
	factorDefault(t, w, []float64{0})

	res, err := w.Solve([]float64{-1}, WarmStart{}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, StatusDualInfeasible, res.Status)
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUnsolved, "Unsolved"},
		{StatusSolved, "Solved"},
		{StatusMaxIterations, "MaxIterations"},
		{StatusPrimalInfeasible, "PrimalInfeasible"},
		{StatusDualInfeasible, "DualInfeasible"},
		{Status(99), "Status(99)"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.status.String())
	}
}
