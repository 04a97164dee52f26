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

package conic

import (
	"fmt"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
)

// Builder assembles a Problem incrementally: declare all variables first,
// then add constraint row groups over the full column space, then Build.
//
// Builder methods record the first usage error and keep accepting calls;
// the error is reported by Build.
type Builder struct {
	cols   int
	coords map[string]Span
	cost   []float64
	rows   [][]float64
	rhs    []float64
	cones  []Cone
	// The first and only the first error is reported in Build.
	err error
}

// NewBuilder creates an empty problem builder.
func NewBuilder() *Builder {
	return &Builder{coords: make(map[string]Span)}
}

// AddVariable declares a named variable with the given shape and returns its
// coordinate span. An empty shape declares a scalar. Variables must be
// declared before any rows are added.
func (b *Builder) AddVariable(name string, shape ...int) Span {
	if len(b.rows) > 0 {
		b.setErrorf("variable %q declared after constraint rows", name)
		return Span{}
	}
	if _, ok := b.coords[name]; ok {
		b.setErrorf("variable %q declared twice", name)
		return Span{}
	}
	sp := Span{Offset: b.cols, Shape: shape}
	for _, d := range shape {
		if d < 1 {
			b.setErrorf("variable %q has dimension %d", name, d)
			return Span{}
		}
	}
	b.coords[name] = sp
	b.cols += sp.Size()
	b.cost = append(b.cost, make([]float64, sp.Size())...)
	return sp
}

// SetCost sets the linear cost coefficients of a declared variable.
// len(c) must equal the variable's size.
func (b *Builder) SetCost(name string, c ...float64) {
	sp, ok := b.coords[name]
	if !ok {
		b.setErrorf("cost set on undeclared variable %q", name)
		return
	}
	if len(c) != sp.Size() {
		b.setErrorf("cost for %q has %d coefficients, want %d", name, len(c), sp.Size())
		return
	}
	copy(b.cost[sp.Offset:sp.Offset+sp.Size()], c)
}

// AddEqualities adds the equality rows `rows·x = rhs` as one zero-cone piece.
func (b *Builder) AddEqualities(rows [][]float64, rhs []float64) {
	b.addRows(Zero, rows, rhs)
}

// AddInequalities adds the rows `rows·x ≤ rhs` as one nonnegative-cone piece.
func (b *Builder) AddInequalities(rows [][]float64, rhs []float64) {
	b.addRows(NonNegative, rows, rhs)
}

// AddSecondOrderCone adds the rows as one second-order-cone piece: the slack
// `rhs - rows·x` must lie in the Lorentz cone, with the first row its head.
func (b *Builder) AddSecondOrderCone(rows [][]float64, rhs []float64) {
	if len(rows) < 2 {
		b.setErrorf("second-order cone needs at least 2 rows, got %d", len(rows))
		return
	}
	b.addRows(SecondOrder, rows, rhs)
}

func (b *Builder) addRows(kind ConeKind, rows [][]float64, rhs []float64) {
	if len(rows) == 0 {
		b.setErrorf("empty %v row group", kind)
		return
	}
	if len(rows) != len(rhs) {
		b.setErrorf("%d rows with %d right-hand sides", len(rows), len(rhs))
		return
	}
	for _, row := range rows {
		if len(row) != b.cols {
			b.setErrorf("row has %d coefficients, want %d", len(row), b.cols)
			return
		}
	}
	for i, row := range rows {
		r := make([]float64, b.cols)
		copy(r, row)
		b.rows = append(b.rows, r)
		b.rhs = append(b.rhs, rhs[i])
	}
	b.cones = append(b.cones, Cone{Kind: kind, Dim: len(rows)})
}

// Build assembles the Problem. It returns the first usage error recorded by
// the builder methods, or any validation error on the assembled data.
func (b *Builder) Build() (*Problem, error) {
	if b.err != nil {
		return nil, b.err
	}
	m := len(b.rows)
	if b.cols < 1 || m < 1 {
		return nil, fmt.Errorf("%w: %d columns, %d rows", ErrEmptyProblem, b.cols, m)
	}
	a := mat.NewDense(m, b.cols, nil)
	for i, row := range b.rows {
		a.SetRow(i, row)
	}
	coords := make(map[string]Span, len(b.coords))
	for name, sp := range b.coords {
		shape := make([]int, len(sp.Shape))
		copy(shape, sp.Shape)
		if len(shape) == 0 {
			shape = nil
		}
		coords[name] = Span{Offset: sp.Offset, Shape: shape}
	}
	p := &Problem{
		C:      append([]float64(nil), b.cost...),
		A:      a,
		B:      append([]float64(nil), b.rhs...),
		Cones:  append([]Cone(nil), b.cones...),
		Coords: coords,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (b *Builder) setErrorf(format string, a ...any) {
	err := fmt.Errorf("conic: "+format, a...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if b.err == nil {
		b.err = err
	}
}
