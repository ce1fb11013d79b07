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

// Package growth contains the closed-form particle growth-rate sub-models
// used by the precipitation expressions.
package growth

import (
	"fmt"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/popbal"
)

// Model selects one of the closed-form growth-rate sub-models.
type Model int

// The available growth-rate sub-models.
const (
	BulkDiffusion Model = iota // diffusion-limited growth
	Monosurface                // mononuclear surface growth
	Constant                   // constant growth rate
	Kinetic                    // kinetically-limited growth
)

var modelNames = map[Model]string{
	BulkDiffusion: "BULK_DIFFUSION",
	Monosurface:   "MONOSURFACE",
	Constant:      "CONSTANT",
	Kinetic:       "KINETIC",
}

func (m Model) String() string {
	if s, ok := modelNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// ParseModel converts a configuration string to a Model. Unrecognized
// strings are an error.
func ParseModel(s string) (Model, error) {
	for m, name := range modelNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("growth: invalid growth model %q; valid options are "+
		"BULK_DIFFUSION, MONOSURFACE, CONSTANT, and KINETIC", s)
}

// MeterPerSecond is the dimension of a growth-rate coefficient.
var MeterPerSecond = unit.Dimensions{
	unit.LengthDim: 1,
	unit.TimeDim:   -1,
}

// A RateCoefficient is an expression computing the growth-rate coefficient
// field g for one growth sub-model from the local supersaturation S:
//
//	BULK_DIFFUSION: g = kg (S-1)
//	MONOSURFACE:    g = kg (S-1)²
//	CONSTANT:       g = kg
//	KINETIC:        g = kg (S-1)^p
//
// Undersaturated points (S ≤ 1) produce zero growth rather than a negative
// or complex value.
type RateCoefficient struct {
	resultTag   popbal.Tag
	supersatTag popbal.Tag

	model Model
	kg    float64 // growth coefficient magnitude [m/s]
	expn  float64 // kinetic-model exponent

	s      *popbal.Field
	result *popbal.Field
}

// NewRateCoefficient creates a growth-rate coefficient expression writing
// to resultTag. coef is the growth coefficient and must have units of m/s.
// expn is the kinetic-model exponent; it is only used when model is
// Kinetic.
func NewRateCoefficient(resultTag, supersatTag popbal.Tag, coef *unit.Unit,
	model Model, expn float64) (*RateCoefficient, error) {
	if _, ok := modelNames[model]; !ok {
		return nil, fmt.Errorf("growth: invalid growth model %v", model)
	}
	if err := coef.Check(MeterPerSecond); err != nil {
		return nil, fmt.Errorf("growth: growth coefficient: %v", err)
	}
	if model == Kinetic && expn <= 0 {
		return nil, fmt.Errorf("growth: kinetic exponent must be positive; got %g", expn)
	}
	return &RateCoefficient{
		resultTag:   resultTag,
		supersatTag: supersatTag,
		model:       model,
		kg:          coef.Value(),
		expn:        expn,
	}, nil
}

// DeclareDependencies registers the supersaturation field as a required
// input.
func (r *RateCoefficient) DeclareDependencies(reg *popbal.DepRegistry) {
	reg.Requires(r.supersatTag)
}

// BindFields resolves the supersaturation and result fields.
func (r *RateCoefficient) BindFields(fm *popbal.FieldManager) error {
	var err error
	if r.s, err = fm.Field(r.supersatTag); err != nil {
		return err
	}
	r.result, err = fm.Field(r.resultTag)
	return err
}

// Evaluate computes the growth-rate coefficient field.
func (r *RateCoefficient) Evaluate() error {
	g := r.result
	if r.model == Constant {
		g.Fill(r.kg)
		return nil
	}
	// g = S-1, clamped to zero where undersaturated.
	g.CopyFrom(r.s)
	g.AddScalar(-1)
	g.Assign(popbal.Cond(g.GreaterScalar(0), g).OtherwiseVal(0))
	switch r.model {
	case Monosurface:
		g.MulField(g)
	case Kinetic:
		g.PowScalar(r.expn)
	}
	g.Scale(r.kg)
	return nil
}
