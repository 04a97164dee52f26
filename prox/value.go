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

// Value is the numeric value of one named variable: either a bare scalar or
// an array with a fixed shape. The distinction is resolved at registration
// time and carried through Flatten and Unflatten: a nil Shape denotes a
// scalar holding exactly one entry in Data.
type Value struct {
	Shape []int
	Data  []float64
}

// Scalar wraps a bare scalar as a Value.
func Scalar(v float64) Value {
	return Value{Data: []float64{v}}
}

// Vector wraps a one-dimensional array as a Value.
func Vector(data ...float64) Value {
	return Value{Shape: []int{len(data)}, Data: append([]float64(nil), data...)}
}

// Array wraps data with an explicit shape as a Value. The data is used
// directly, not copied.
func Array(shape []int, data []float64) Value {
	return Value{Shape: shape, Data: data}
}

// IsScalar reports whether the value is a bare scalar.
func (v Value) IsScalar() bool {
	return len(v.Shape) == 0
}

// Size returns the number of entries the shape implies.
func (v Value) Size() int {
	n := 1
	for _, d := range v.Shape {
		n *= d
	}
	return n
}

// Float returns the bare scalar. It panics on an array value; check
// IsScalar first when the kind is not known statically.
func (v Value) Float() float64 {
	if !v.IsScalar() {
		panic(fmt.Sprintf("prox: Float called on value with shape %v", v.Shape))
	}
	return v.Data[0]
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	return Value{
		Shape: slices.Clone(v.Shape),
		Data:  slices.Clone(v.Data),
	}
}

func zeroValue(shape []int) Value {
	v := Value{Shape: slices.Clone(shape)}
	v.Data = make([]float64, v.Size())
	return v
}
