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

// Package conic defines the canonical conic-program data exchanged with the
// numeric solver: a linear cost over a flat decision vector, affine
// constraints `A·x + s = b` with the slack `s` constrained to a product of
// elementary cones, and a map from declared variable names to their
// coordinate spans in the decision vector.
//
// This package performs no expression canonicalization. Canonical data is
// produced by an external modeling layer (or assembled directly with
// `Builder`) and consumed by the solver and the prox engine.
package conic

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Validation errors returned by Problem.Validate and Builder.
var (
	// ErrEmptyProblem is returned when a problem has no columns or no
	// constraint rows. Canonical conic data always carries at least one
	// variable coordinate and one cone row.
	ErrEmptyProblem = errors.New("conic: problem has no columns or rows")

	// ErrDimensionMismatch indicates inconsistent sizes between the cost
	// vector, constraint matrix, affine offset, and cone dimensions.
	ErrDimensionMismatch = errors.New("conic: dimension mismatch")

	// ErrBadCone indicates a cone piece with an unknown kind or a
	// non-positive dimension.
	ErrBadCone = errors.New("conic: invalid cone")

	// ErrBadSpan indicates a variable span that is empty, has non-positive
	// shape dimensions, or falls outside the decision vector.
	ErrBadSpan = errors.New("conic: invalid variable span")
)

// ConeKind enumerates the elementary cone types understood by the solver.
type ConeKind int

const (
	// Zero is the zero cone {0}; rows in a zero cone are equalities A·x = b.
	Zero ConeKind = iota
	// NonNegative is the nonnegative orthant; rows are inequalities A·x ≤ b.
	NonNegative
	// SecondOrder is the second-order (Lorentz) cone
	// {(t, z) : ‖z‖₂ ≤ t}; the first row of the piece is the cone head t.
	SecondOrder
)

// String returns a human-readable cone kind name.
func (k ConeKind) String() string {
	switch k {
	case Zero:
		return "Zero"
	case NonNegative:
		return "NonNegative"
	case SecondOrder:
		return "SecondOrder"
	}
	return fmt.Sprintf("ConeKind(%d)", int(k))
}

// Cone is one piece of the cone product, covering Dim consecutive slack rows.
type Cone struct {
	Kind ConeKind
	Dim  int
}

// Span locates one declared variable inside the flat decision vector.
// An empty Shape denotes a scalar variable occupying a single coordinate.
type Span struct {
	Offset int
	Shape  []int
}

// Size returns the number of coordinates the span covers.
func (s Span) Size() int {
	n := 1
	for _, d := range s.Shape {
		n *= d
	}
	return n
}

// Problem is a conic program in standard form:
//
//	minimize    C·x
//	subject to  A·x + s = B,  s ∈ K
//
// where K is the product of Cones in order. Coords maps each declared
// variable name to its coordinate span in x.
type Problem struct {
	C      []float64
	A      *mat.Dense
	B      []float64
	Cones  []Cone
	Coords map[string]Span
}

// Dims returns the number of columns n and constraint rows m.
func (p *Problem) Dims() (n, m int) {
	return len(p.C), len(p.B)
}

// ConeRows returns the total number of rows covered by the cone pieces.
func (p *Problem) ConeRows() int {
	var m int
	for _, c := range p.Cones {
		m += c.Dim
	}
	return m
}

// Validate checks the structural consistency of the problem data.
func (p *Problem) Validate() error {
	n, m := p.Dims()
	if n < 1 || m < 1 {
		return fmt.Errorf("%w: n=%d, m=%d", ErrEmptyProblem, n, m)
	}
	if p.A == nil {
		return fmt.Errorf("%w: nil constraint matrix", ErrDimensionMismatch)
	}
	ar, ac := p.A.Dims()
	if ar != m || ac != n {
		return fmt.Errorf("%w: A is %dx%d, want %dx%d", ErrDimensionMismatch, ar, ac, m, n)
	}
	for i, c := range p.Cones {
		if c.Dim < 1 {
			return fmt.Errorf("%w: cone %d has dimension %d", ErrBadCone, i, c.Dim)
		}
		switch c.Kind {
		case Zero, NonNegative, SecondOrder:
		default:
			return fmt.Errorf("%w: cone %d has unknown kind %d", ErrBadCone, i, int(c.Kind))
		}
	}
	if rows := p.ConeRows(); rows != m {
		return fmt.Errorf("%w: cones cover %d rows, want %d", ErrDimensionMismatch, rows, m)
	}
	for name, sp := range p.Coords {
		for _, d := range sp.Shape {
			if d < 1 {
				return fmt.Errorf("%w: variable %q has dimension %d", ErrBadSpan, name, d)
			}
		}
		if sp.Offset < 0 || sp.Offset+sp.Size() > n {
			return fmt.Errorf("%w: variable %q covers [%d,%d) outside %d columns",
				ErrBadSpan, name, sp.Offset, sp.Offset+sp.Size(), n)
		}
	}
	return nil
}
