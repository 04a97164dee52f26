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

// Settings are the tuning knobs of one solve. The zero value of a field
// means "use the default"; see DefaultSettings for the defaults.
type Settings struct {
	// EpsAbs and EpsRel are the absolute and relative residual tolerances.
	EpsAbs float64
	EpsRel float64
	// EpsInfeasible is the tolerance of the infeasibility certificates.
	EpsInfeasible float64
	// MaxIterations caps the number of ADMM steps.
	MaxIterations int
	// CheckInterval is the number of steps between termination checks.
	// Residuals are always checked on the incoming iterate before the
	// first step, so an exact warm start terminates at iteration 0.
	CheckInterval int
	// Alpha is the over-relaxation parameter, in (0, 2).
	Alpha float64
	// Sigma is the proximal regularization added to the decision-variable
	// block of the KKT matrix.
	Sigma float64
	// Rho is the ADMM penalty on the slack consensus. This is a solver
	// parameter, unrelated to the proximal scale of the prox engine.
	Rho float64
	// Verbose routes per-check iteration traces through the logger.
	Verbose bool
}

// DefaultSettings returns the settings used when a field is left zero.
func DefaultSettings() Settings {
	return Settings{
		EpsAbs:        1e-6,
		EpsRel:        1e-6,
		EpsInfeasible: 1e-8,
		MaxIterations: 20000,
		CheckInterval: 20,
		Alpha:         1.6,
		Sigma:         1e-6,
		Rho:           0.1,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.EpsAbs <= 0 {
		s.EpsAbs = def.EpsAbs
	}
	if s.EpsRel <= 0 {
		s.EpsRel = def.EpsRel
	}
	if s.EpsInfeasible <= 0 {
		s.EpsInfeasible = def.EpsInfeasible
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = def.MaxIterations
	}
	if s.CheckInterval <= 0 {
		s.CheckInterval = def.CheckInterval
	}
	if s.Alpha <= 0 || s.Alpha >= 2 {
		s.Alpha = def.Alpha
	}
	if s.Sigma <= 0 {
		s.Sigma = def.Sigma
	}
	if s.Rho <= 0 {
		s.Rho = def.Rho
	}
	return s
}
