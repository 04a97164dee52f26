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

	log "github.com/golang/glog"

	"github.com/coneprox/coneprox/splitting"
)

// factorCache owns the workspace's persistent KKT factorization and the
// decision of when it must be rebuilt. The factorization depends on every
// parameter entering the KKT matrix (the proximal scale rho and the solver's
// sigma and penalty), so the cache keys on that triple and refactorizes
// exactly when it changes. A factorization failure is fatal:
// the cache latches the error and returns it on every later call.
type factorCache struct {
	ws   *splitting.Workspace
	prog *program

	pdiag []float64
	rho   float64
	sigma float64
	admm  float64
	ready bool

	refactors int
	fatal     error
}

func newFactorCache(ws *splitting.Workspace, prog *program) *factorCache {
	n, _ := ws.Dims()
	return &factorCache{ws: ws, prog: prog, pdiag: make([]float64, n)}
}

// ensureReady makes the workspace factorization consistent with (rho, sigma,
// admm), reusing the existing one when the triple is unchanged.
func (c *factorCache) ensureReady(rho, sigma, admm float64) error {
	if c.fatal != nil {
		return c.fatal
	}
	if c.ready && rho == c.rho && sigma == c.sigma && admm == c.admm {
		return nil
	}
	if c.ready {
		log.V(1).Infof("prox: refactoring kkt system (rho %g -> %g)", c.rho, rho)
	} else {
		log.V(1).Infof("prox: factoring kkt system (rho=%g)", rho)
	}
	c.prog.penaltyDiag(c.pdiag, rho)
	if err := c.ws.Factor(c.pdiag, sigma, admm); err != nil {
		c.ready = false
		c.fatal = fmt.Errorf("%w: %v", ErrFactorization, err)
		return c.fatal
	}
	c.rho, c.sigma, c.admm = rho, sigma, admm
	c.ready = true
	c.refactors++
	return nil
}
