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

package popbalutil

import (
	"encoding/json"
	"fmt"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/unit"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/popbal"
	"github.com/spatialmodel/popbal/science/aggregation"
	"github.com/spatialmodel/popbal/science/growth"
	"github.com/spf13/cast"
)

// Names of the fields the assembled simulation registers and computes.
const (
	SupersaturationName = "supersaturation"
	DissipationName     = "dissipation_rate"
	DensityName         = "density"
	GrowthName          = "growth_coefficient"
	AbscissaPrefix      = "abscissa"
	EfficiencyPrefix    = "aggregation_efficiency"
)

// Config holds the settings for one PopBal evaluation.
type Config struct {
	// GridShape gives the number of grid points in each dimension.
	GridShape []int

	// GrowthModel selects the particle growth sub-model.
	GrowthModel string

	// LengthParameter scales the aggregation efficiency model [-].
	LengthParameter float64

	// GrowthCoefficient is the growth-rate coefficient kg [m/s].
	GrowthCoefficient float64

	// KineticExponent is the supersaturation exponent of the KINETIC
	// growth model.
	KineticExponent float64

	// AbscissaRadii gives the representative radius [m] of each
	// quadrature size class.
	AbscissaRadii []float64

	// Density is the fluid density [kg/m³].
	Density float64

	// DissipationRate is the turbulent kinetic energy dissipation
	// rate [m²/s³].
	DissipationRate float64

	// Supersaturation is the solute supersaturation ratio.
	Supersaturation float64
}

// toIntSliceE converts a viper configuration value to []int, accounting
// for the fact that it might be a json array if it was set from a command
// line argument.
func toIntSliceE(s interface{}) ([]int, error) {
	if v, ok := s.(string); ok {
		var o []int
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	}
	return cast.ToIntSliceE(s)
}

// ConfigFromViper reads a Config from cfg.
func ConfigFromViper(cfg *viper.Viper) (*Config, error) {
	shape, err := toIntSliceE(cfg.Get("GridShape"))
	if err != nil {
		return nil, fmt.Errorf("popbal: GridShape: %v", err)
	}
	radiiStr := cfg.GetStringSlice("AbscissaRadii")
	radii := make([]float64, len(radiiStr))
	for i, s := range radiiStr {
		if radii[i], err = cast.ToFloat64E(s); err != nil {
			return nil, fmt.Errorf("popbal: AbscissaRadii[%d]: %v", i, err)
		}
	}
	return &Config{
		GridShape:         shape,
		GrowthModel:       cfg.GetString("GrowthModel"),
		LengthParameter:   cfg.GetFloat64("LengthParameter"),
		GrowthCoefficient: cfg.GetFloat64("GrowthCoefficient"),
		KineticExponent:   cfg.GetFloat64("KineticExponent"),
		AbscissaRadii:     radii,
		Density:           cfg.GetFloat64("Density"),
		DissipationRate:   cfg.GetFloat64("DissipationRate"),
		Supersaturation:   cfg.GetFloat64("Supersaturation"),
	}, nil
}

// A Simulation couples an expression graph with the tags of the fields it
// computes.
type Simulation struct {
	Config *Config
	Graph  *popbal.Graph

	// EfficiencyTags names the n² aggregation-efficiency result fields
	// in row-major pair order.
	EfficiencyTags popbal.TagList
}

// NewSimulation assembles the expression graph described by c: uniform
// input fields for density, dissipation rate, supersaturation, and the
// size-class abscissae; the growth-rate coefficient expression; and the
// aggregation-efficiency expression.
func NewSimulation(c *Config) (*Simulation, error) {
	if len(c.GridShape) == 0 {
		return nil, fmt.Errorf("popbal: GridShape must have at least one dimension")
	}
	for _, d := range c.GridShape {
		if d < 1 {
			return nil, fmt.Errorf("popbal: invalid grid dimension %d", d)
		}
	}
	n := len(c.AbscissaRadii)
	if n == 0 {
		return nil, fmt.Errorf("popbal: at least one abscissa radius is required")
	}
	for i, r := range c.AbscissaRadii {
		if r <= 0 {
			return nil, fmt.Errorf("popbal: AbscissaRadii[%d] = %g; radii must be positive", i, r)
		}
	}
	model, err := growth.ParseModel(c.GrowthModel)
	if err != nil {
		return nil, err
	}

	fm := popbal.NewFieldManager()
	uniform := func(tag popbal.Tag, v float64) error {
		f := popbal.NewField(c.GridShape...)
		f.Fill(v)
		return fm.Register(tag, f)
	}
	abscissaTags := popbal.IndexedTags(AbscissaPrefix, n)
	for i, r := range c.AbscissaRadii {
		if err := uniform(abscissaTags[i], r); err != nil {
			return nil, err
		}
	}
	if err := uniform(SupersaturationName, c.Supersaturation); err != nil {
		return nil, err
	}
	if err := uniform(DissipationName, c.DissipationRate); err != nil {
		return nil, err
	}
	if err := uniform(DensityName, c.Density); err != nil {
		return nil, err
	}

	g := popbal.NewGraph(fm, c.GridShape...)

	rate, err := growth.NewRateCoefficient(GrowthName, SupersaturationName,
		unit.New(c.GrowthCoefficient, growth.MeterPerSecond), model, c.KineticExponent)
	if err != nil {
		return nil, err
	}
	if err := g.Add(popbal.TagList{GrowthName}, rate); err != nil {
		return nil, err
	}

	effTags := popbal.PairTags(EfficiencyPrefix, n)
	eff, err := aggregation.New(effTags, abscissaTags, GrowthName,
		DissipationName, DensityName, c.LengthParameter, model)
	if err != nil {
		return nil, err
	}
	if err := g.Add(effTags, eff); err != nil {
		return nil, err
	}

	return &Simulation{Config: c, Graph: g, EfficiencyTags: effTags}, nil
}

// Run evaluates one cycle of the expression graph.
func (s *Simulation) Run() error { return s.Graph.Run() }

// Field resolves one of the simulation's fields by tag.
func (s *Simulation) Field(tag popbal.Tag) (*popbal.Field, error) {
	return s.Graph.FieldManager().Field(tag)
}

// LogSummary logs summary statistics of each computed efficiency field.
func (s *Simulation) LogSummary() {
	for _, tag := range s.EfficiencyTags {
		f, err := s.Field(tag)
		if err != nil {
			logrus.WithError(err).Error("popbal: summarizing results")
			continue
		}
		var d stats.Stats
		d.UpdateArray(f.Elements())
		logrus.WithFields(logrus.Fields{
			"field": string(tag),
			"mean":  d.Mean(),
			"min":   d.Min(),
			"max":   d.Max(),
		}).Info("popbal: aggregation efficiency")
	}
}
