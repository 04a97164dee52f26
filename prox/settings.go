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
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coneprox/coneprox/splitting"
)

// Recognized option keys. Anything else is rejected with ErrUnknownOption.
const (
	// OptEpsAbs and OptEpsRel are the solver's residual tolerances
	// (positive floats).
	OptEpsAbs = "eps_abs"
	OptEpsRel = "eps_rel"
	// OptEpsInfeasible is the infeasibility-certificate tolerance
	// (positive float).
	OptEpsInfeasible = "eps_infeas"
	// OptMaxIterations caps the solver iterations (positive int).
	OptMaxIterations = "max_iters"
	// OptCheckInterval is the number of iterations between termination
	// checks (positive int).
	OptCheckInterval = "check_interval"
	// OptAlpha is the over-relaxation parameter, in (0, 2).
	OptAlpha = "alpha"
	// OptSigma is the solver's proximal regularization (positive float).
	// Changing it forces a refactorization.
	OptSigma = "sigma"
	// OptADMMRho is the solver's internal penalty parameter (positive
	// float), unrelated to the proximal scale rho. Changing it forces a
	// refactorization.
	OptADMMRho = "admm_rho"
	// OptVerbose routes solver iteration traces through the logger (bool).
	OptVerbose = "verbose"
)

// Options maps recognized option keys to values. Numeric values may be any
// Go integer or float type; OptVerbose takes a bool.
type Options map[string]any

// OptionsFromYAML parses an options document, a flat mapping from option
// keys to values, and validates it against the recognized set.
func OptionsFromYAML(data []byte) (Options, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prox: parsing options: %w", err)
	}
	opts := Options(raw)
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// OptionsFromYAMLFile reads and parses an options file.
func OptionsFromYAMLFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prox: reading options file: %w", err)
	}
	return OptionsFromYAML(data)
}

// settingsManager merges the persistent options (set at construction and by
// SetOptions) with per-call overrides. Overrides never leak into the
// persistent layer.
type settingsManager struct {
	persistent Options
}

// setPersistent validates opts in full before merging, so a rejected call
// leaves the persistent layer untouched.
func (m *settingsManager) setPersistent(opts Options) error {
	if err := validateOptions(opts); err != nil {
		return err
	}
	if m.persistent == nil {
		m.persistent = make(Options, len(opts))
	}
	for k, v := range opts {
		m.persistent[k] = v
	}
	return nil
}

// resolve produces the effective solver settings for one call: defaults,
// then the persistent layer, then the overrides.
func (m *settingsManager) resolve(overrides Options) (splitting.Settings, error) {
	set := splitting.DefaultSettings()
	for _, layer := range []Options{m.persistent, overrides} {
		for k, v := range layer {
			if err := applyOption(&set, k, v); err != nil {
				return splitting.Settings{}, err
			}
		}
	}
	return set, nil
}

func validateOptions(opts Options) error {
	set := splitting.DefaultSettings()
	for k, v := range opts {
		if err := applyOption(&set, k, v); err != nil {
			return err
		}
	}
	return nil
}

func applyOption(set *splitting.Settings, key string, val any) error {
	switch key {
	case OptEpsAbs:
		return setPositiveFloat(&set.EpsAbs, key, val)
	case OptEpsRel:
		return setPositiveFloat(&set.EpsRel, key, val)
	case OptEpsInfeasible:
		return setPositiveFloat(&set.EpsInfeasible, key, val)
	case OptMaxIterations:
		return setPositiveInt(&set.MaxIterations, key, val)
	case OptCheckInterval:
		return setPositiveInt(&set.CheckInterval, key, val)
	case OptAlpha:
		f, ok := toFloat(val)
		if !ok || !(f > 0 && f < 2) {
			return fmt.Errorf("%w: %s=%v, want a float in (0, 2)", ErrInvalidOptionValue, key, val)
		}
		set.Alpha = f
		return nil
	case OptSigma:
		return setPositiveFloat(&set.Sigma, key, val)
	case OptADMMRho:
		return setPositiveFloat(&set.Rho, key, val)
	case OptVerbose:
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("%w: %s=%v, want a bool", ErrInvalidOptionValue, key, val)
		}
		set.Verbose = b
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownOption, key)
}

func setPositiveFloat(dst *float64, key string, val any) error {
	f, ok := toFloat(val)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return fmt.Errorf("%w: %s=%v, want a positive float", ErrInvalidOptionValue, key, val)
	}
	*dst = f
	return nil
}

func setPositiveInt(dst *int, key string, val any) error {
	i, ok := toInt(val)
	if !ok || i < 1 {
		return fmt.Errorf("%w: %s=%v, want a positive int", ErrInvalidOptionValue, key, val)
	}
	*dst = i
	return nil
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func toInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}
