/*
Copyright © 2018 the PopBal authors.
This file is part of PopBal.

PopBal is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PopBal is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PopBal.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package aggregation computes the aggregation efficiency term for
// liquid-particulate systems. The efficiency is a size-dependent
// coefficient with one field per ordered pair of size classes,
// ψ = x/(1+x) with x = l·g0/(ρ d̄² ε), where l is a physical length
// parameter, g0 the growth rate, d̄ the collision diameter, and ε the
// turbulent energy dissipation rate.
package aggregation

import (
	"fmt"
	"math"

	"github.com/spatialmodel/popbal"
	"github.com/spatialmodel/popbal/science/growth"
)

// An Efficiency is an expression computing the aggregation efficiency for
// every ordered pair of particle-size classes. For n size classes it
// produces n² result fields in row-major order, so the field for pair
// (i,j) is at index i*n+j. Every efficiency value is in [0,1): degenerate
// inputs (non-positive density or dissipation, negative growth rate) map
// to zero rather than an error, because locally invalid physical states
// occur transiently during a simulation and must not poison downstream
// accumulation.
type Efficiency struct {
	resultTags   popbal.TagList
	abscissaTags popbal.TagList
	growthTag    popbal.Tag
	dissipTag    popbal.Tag
	densityTag   popbal.Tag

	l     float64 // length parameter matching efficiency-model units
	model growth.Model

	abscissae []*popbal.Field
	g0        *popbal.Field
	eps       *popbal.Field
	rho       *popbal.Field
	results   []*popbal.Field
	pool      *popbal.FieldPool
}

// New creates an aggregation efficiency expression. resultTags names the
// n² output fields in row-major pair order and abscissaTags the n
// size-class fields; growthTag, dissipationTag, and densityTag name the
// growth-rate coefficient, turbulent dissipation rate, and fluid density
// fields. New returns an error if the number of result tags is not the
// square of the number of abscissa tags, or if model is not one of the
// four growth sub-models.
func New(resultTags, abscissaTags popbal.TagList, growthTag, dissipationTag,
	densityTag popbal.Tag, lengthParam float64, model growth.Model) (*Efficiency, error) {
	n := len(abscissaTags)
	if n == 0 {
		return nil, fmt.Errorf("aggregation: at least one abscissa is required")
	}
	if len(resultTags) != n*n {
		return nil, fmt.Errorf("aggregation: %d result tags for %d abscissae; want %d",
			len(resultTags), n, n*n)
	}
	switch model {
	case growth.BulkDiffusion, growth.Monosurface, growth.Constant, growth.Kinetic:
	default:
		return nil, fmt.Errorf("aggregation: invalid growth model %v", model)
	}
	return &Efficiency{
		resultTags:   resultTags,
		abscissaTags: abscissaTags,
		growthTag:    growthTag,
		dissipTag:    dissipationTag,
		densityTag:   densityTag,
		l:            lengthParam,
		model:        model,
	}, nil
}

// DeclareDependencies registers the abscissa, growth-rate, dissipation,
// and density fields as required inputs.
func (e *Efficiency) DeclareDependencies(reg *popbal.DepRegistry) {
	reg.Requires(e.abscissaTags...)
	reg.Requires(e.growthTag, e.dissipTag, e.densityTag)
}

// BindFields resolves all input and result tags to concrete fields.
// Resolution failures are returned unmodified.
func (e *Efficiency) BindFields(fm *popbal.FieldManager) error {
	var err error
	if e.abscissae, err = fm.Fields(e.abscissaTags); err != nil {
		return err
	}
	if e.g0, err = fm.Field(e.growthTag); err != nil {
		return err
	}
	if e.eps, err = fm.Field(e.dissipTag); err != nil {
		return err
	}
	if e.rho, err = fm.Field(e.densityTag); err != nil {
		return err
	}
	if e.results, err = fm.Fields(e.resultTags); err != nil {
		return err
	}
	e.pool = fm.Pool()
	return nil
}

// Evaluate computes the n² efficiency fields from the currently bound
// inputs. It allocates a single scratch field, released on return, and
// holds no state across calls, so concurrent evaluations of the same
// expression in different contexts are safe.
func (e *Efficiency) Evaluate() error {
	n := len(e.abscissae)
	tmp := e.pool.Get(e.results[0])
	defer e.pool.Put(tmp)

	// Points where the formula denominator is physical; everywhere else
	// the efficiency is zero.
	valid := e.rho.GreaterScalar(0).And(e.eps.GreaterScalar(0))

	// The bulk-diffusion and monosurface models divide by the larger of
	// the two colliding radii; the constant and kinetic models do not
	// depend on which radius is larger.
	maxRadius := e.model == growth.BulkDiffusion || e.model == growth.Monosurface

	g0 := e.g0.Elements()
	eps := e.eps.Elements()
	rho := e.rho.Elements()

	idx := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ri := e.abscissae[i].Elements()
			rj := e.abscissae[j].Elements()
			x := tmp.Elements()
			for k := range x {
				if !valid[k] {
					x[k] = 0
					continue
				}
				d := ri[k] + rj[k]
				if maxRadius {
					x[k] = e.l * g0[k] / (math.Max(ri[k], rj[k]) * rho[k] * d * d * eps[k])
				} else {
					x[k] = e.l * g0[k] / (rho[k] * d * d * eps[k])
				}
			}
			// Negative growth rates give negative x; clamp before
			// saturating so the efficiency stays in [0,1).
			tmp.Assign(popbal.Cond(tmp.GreaterScalar(0), tmp).OtherwiseVal(0))
			out := e.results[idx]
			out.CopyFrom(tmp)
			tmp.AddScalar(1)
			out.DivField(tmp) // ψ = x/(1+x)
			idx++
		}
	}
	return nil
}
