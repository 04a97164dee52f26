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

	"github.com/coneprox/coneprox/conic"
)

// projectCones projects v onto the cone product in place.
func projectCones(v []float64, cones []conic.Cone) {
	off := 0
	for _, c := range cones {
		piece := v[off : off+c.Dim]
		switch c.Kind {
		case conic.Zero:
			for i := range piece {
				piece[i] = 0
			}
		case conic.NonNegative:
			for i := range piece {
				if piece[i] < 0 {
					piece[i] = 0
				}
			}
		case conic.SecondOrder:
			projectSecondOrder(piece)
		}
		off += c.Dim
	}
}

// projectSecondOrder projects (t, z) onto {(t, z) : ‖z‖₂ ≤ t} in place.
func projectSecondOrder(v []float64) {
	t, z := v[0], v[1:]
	var nz float64
	for _, zi := range z {
		nz = math.Hypot(nz, zi)
	}
	switch {
	case nz <= t:
		// already inside
	case nz <= -t:
		for i := range v {
			v[i] = 0
		}
	default:
		c := (t + nz) / 2
		v[0] = c
		scale := c / nz
		for i := range z {
			z[i] *= scale
		}
	}
}

// inCones reports whether v lies in the cone product, within tol per entry.
func inCones(v []float64, cones []conic.Cone, tol float64) bool {
	off := 0
	for _, c := range cones {
		piece := v[off : off+c.Dim]
		switch c.Kind {
		case conic.Zero:
			for _, vi := range piece {
				if math.Abs(vi) > tol {
					return false
				}
			}
		case conic.NonNegative:
			for _, vi := range piece {
				if vi < -tol {
					return false
				}
			}
		case conic.SecondOrder:
			if !inSecondOrder(piece, tol) {
				return false
			}
		}
		off += c.Dim
	}
	return true
}

// inDualCones reports whether v lies in the dual cone product, within tol.
// The zero cone's dual is free space; the nonnegative orthant and the
// second-order cone are self dual.
func inDualCones(v []float64, cones []conic.Cone, tol float64) bool {
	off := 0
	for _, c := range cones {
		piece := v[off : off+c.Dim]
		switch c.Kind {
		case conic.Zero:
			// free
		case conic.NonNegative:
			for _, vi := range piece {
				if vi < -tol {
					return false
				}
			}
		case conic.SecondOrder:
			if !inSecondOrder(piece, tol) {
				return false
			}
		}
		off += c.Dim
	}
	return true
}

func inSecondOrder(v []float64, tol float64) bool {
	var nz float64
	for _, zi := range v[1:] {
		nz = math.Hypot(nz, zi)
	}
	return nz <= v[0]+tol
}
