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
	"slices"
)

// Registry maps proximal-variable names to shapes and to contiguous offsets
// in one flat vector. Offsets are assigned in registration order and
// partition the flat vector with no gaps or overlap.
type Registry struct {
	entries []regEntry
	index   map[string]int
	total   int
}

type regEntry struct {
	name   string
	shape  []int
	offset int
	size   int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a named variable at the next free offset. An empty shape
// registers a scalar. It returns ErrDuplicateName if the name is already
// present and ErrInvalidShape if any dimension is non-positive.
func (r *Registry) Register(name string, shape ...int) error {
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	size := 1
	for _, d := range shape {
		if d < 1 {
			return fmt.Errorf("%w: %q has dimension %d", ErrInvalidShape, name, d)
		}
		size *= d
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, regEntry{
		name:   name,
		shape:  slices.Clone(shape),
		offset: r.total,
		size:   size,
	})
	r.total += size
	return nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Size returns the total flat-vector length.
func (r *Registry) Size() int {
	return r.total
}

// Shape returns the registered shape of name. The second return is false if
// the name was never registered.
func (r *Registry) Shape(name string) ([]int, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(r.entries[i].shape), true
}

// Flatten places the supplied values at their registered offsets in one flat
// vector. Names omitted from values default to the zero element of their
// registered shape. It returns ErrUnknownVariable for a name that was never
// registered and ErrShapeMismatch for a value whose shape disagrees with
// registration.
func (r *Registry) Flatten(values map[string]Value) ([]float64, error) {
	flat := make([]float64, r.total)
	for name, v := range values {
		i, ok := r.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		e := r.entries[i]
		if !slices.Equal(v.Shape, e.shape) {
			return nil, fmt.Errorf("%w: %q has shape %v, registered %v", ErrShapeMismatch, name, v.Shape, e.shape)
		}
		if len(v.Data) != e.size {
			return nil, fmt.Errorf("%w: %q has %d entries, registered size %d", ErrShapeMismatch, name, len(v.Data), e.size)
		}
		copy(flat[e.offset:e.offset+e.size], v.Data)
	}
	return flat, nil
}

// Unflatten slices the flat vector back into named values. Variables
// registered with an empty shape come back as bare scalars.
func (r *Registry) Unflatten(flat []float64) (map[string]Value, error) {
	if len(flat) != r.total {
		return nil, fmt.Errorf("%w: flat vector has %d entries, want %d", ErrShapeMismatch, len(flat), r.total)
	}
	out := make(map[string]Value, len(r.entries))
	for _, e := range r.entries {
		out[e.name] = Value{
			Shape: slices.Clone(e.shape),
			Data:  slices.Clone(flat[e.offset : e.offset+e.size]),
		}
	}
	return out, nil
}

// ZeroElem returns the all-zero value of every registered variable, the
// same defaults Flatten substitutes for omitted names.
func (r *Registry) ZeroElem() map[string]Value {
	out := make(map[string]Value, len(r.entries))
	for _, e := range r.entries {
		out[e.name] = zeroValue(e.shape)
	}
	return out
}

// ZeroValue returns the all-zero value of one registered variable.
func (r *Registry) ZeroValue(name string) (Value, error) {
	i, ok := r.index[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return zeroValue(r.entries[i].shape), nil
}
