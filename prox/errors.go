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

import "errors"

// Usage errors. These are recoverable: the evaluator stays usable after
// returning any of them. Match with errors.Is.
var (
	// ErrDuplicateName is returned when a variable name is registered twice.
	ErrDuplicateName = errors.New("prox: variable already registered")

	// ErrInvalidShape is returned when a registered shape has a
	// non-positive dimension.
	ErrInvalidShape = errors.New("prox: invalid variable shape")

	// ErrShapeMismatch is returned when a supplied value's shape disagrees
	// with the shape the variable was registered with.
	ErrShapeMismatch = errors.New("prox: value shape does not match registration")

	// ErrUnknownVariable is returned when a supplied name was never
	// registered.
	ErrUnknownVariable = errors.New("prox: unknown variable")

	// ErrNonProximalCoverage is returned when a proximal variable cannot
	// be located in the base problem's coordinate map, or its declared
	// shape disagrees with the base problem.
	ErrNonProximalCoverage = errors.New("prox: proximal variable not covered by base problem")

	// ErrUnknownOption is returned when an option key is not in the
	// recognized set.
	ErrUnknownOption = errors.New("prox: unknown solver option")

	// ErrInvalidOptionValue is returned when a recognized option carries a
	// value of the wrong type or outside its valid range.
	ErrInvalidOptionValue = errors.New("prox: invalid solver option value")
)

// ErrFactorization is fatal: once an evaluator returns it, the instance is
// failed and every subsequent evaluation fails immediately with the same
// error.
var ErrFactorization = errors.New("prox: kkt factorization failed")
