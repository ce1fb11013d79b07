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

package aggregation

import (
	"math"
	"testing"

	"github.com/spatialmodel/popbal"
	"github.com/spatialmodel/popbal/science/growth"
)

const testTolerance = 1.e-8

// evalSinglePoint runs the efficiency expression on a one-point domain
// and returns the n² efficiency values in row-major pair order.
func evalSinglePoint(t *testing.T, model growth.Model, l, g0, rho, eps float64,
	radii []float64) []float64 {
	t.Helper()
	n := len(radii)
	fm := popbal.NewFieldManager()

	set := func(tag popbal.Tag, v float64) {
		f := popbal.NewField(1)
		f.Fill(v)
		if err := fm.Register(tag, f); err != nil {
			t.Fatal(err)
		}
	}
	abscissaTags := popbal.IndexedTags("abscissa", n)
	for i, r := range radii {
		set(abscissaTags[i], r)
	}
	set("growth_coefficient", g0)
	set("dissipation_rate", eps)
	set("density", rho)

	resultTags := popbal.PairTags("efficiency", n)
	for _, tag := range resultTags {
		if err := fm.Register(tag, popbal.NewField(1)); err != nil {
			t.Fatal(err)
		}
	}

	e, err := New(resultTags, abscissaTags, "growth_coefficient",
		"dissipation_rate", "density", l, model)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.BindFields(fm); err != nil {
		t.Fatal(err)
	}
	if err := e.Evaluate(); err != nil {
		t.Fatal(err)
	}

	o := make([]float64, n*n)
	for i, tag := range resultTags {
		f, err := fm.Field(tag)
		if err != nil {
			t.Fatal(err)
		}
		o[i] = f.Get(0)
	}
	return o
}

func TestZeroDensity(t *testing.T) {
	o := evalSinglePoint(t, growth.Constant, 1, 2, 0, 5, []float64{1, 2})
	for i, v := range o {
		if v != 0 {
			t.Errorf("pair %d: efficiency = %g, want 0 for zero density", i, v)
		}
	}
}

func TestZeroDissipation(t *testing.T) {
	for _, model := range []growth.Model{growth.BulkDiffusion, growth.Monosurface,
		growth.Constant, growth.Kinetic} {
		o := evalSinglePoint(t, model, 1, 2, 1, 0, []float64{1, 2})
		for i, v := range o {
			if v != 0 {
				t.Errorf("%v pair %d: efficiency = %g, want 0 for zero dissipation",
					model, i, v)
			}
		}
	}
}

func TestConstantModelEqualRadii(t *testing.T) {
	// x = 1·2/(1·(1+1)²·1) = 0.5, ψ = 0.5/1.5 = 1/3.
	o := evalSinglePoint(t, growth.Constant, 1, 2, 1, 1, []float64{1, 1})
	for i, v := range o {
		if math.Abs(v-1./3.) > testTolerance {
			t.Errorf("pair %d: efficiency = %g, want %g", i, v, 1./3.)
		}
	}
}

func TestBulkDiffusionMaxRadius(t *testing.T) {
	o := evalSinglePoint(t, growth.BulkDiffusion, 1, 4, 1, 1, []float64{1, 3})

	// Pair (0,1): r_max = 3, x = 4/(3·16) = 1/12, ψ = 1/13.
	if math.Abs(o[1]-1./13.) > testTolerance {
		t.Errorf("pair (0,1): efficiency = %g, want %g", o[1], 1./13.)
	}
	// max(r_i,r_j) is symmetric, so (1,0) matches (0,1) even though the
	// formula branches on which radius is larger.
	if o[1] != o[2] {
		t.Errorf("efficiency(0,1) = %g != efficiency(1,0) = %g", o[1], o[2])
	}
	// Pair (0,0): x = 4/(1·4) = 1, ψ = 0.5.
	if math.Abs(o[0]-0.5) > testTolerance {
		t.Errorf("pair (0,0): efficiency = %g, want 0.5", o[0])
	}
	// Pair (1,1): x = 4/(3·36) = 1/27, ψ = 1/28.
	if math.Abs(o[3]-1./28.) > testTolerance {
		t.Errorf("pair (1,1): efficiency = %g, want %g", o[3], 1./28.)
	}
}

// Check the closed form ψ = x/(1+x) with x = l·g0/(r·ρ·(2r)²·ε) at equal
// radii for the max-radius models.
func TestEqualRadiiClosedForm(t *testing.T) {
	const (
		l   = 2.5
		g0  = 3.0
		rho = 1.2
		eps = 0.7
		r   = 1.5
	)
	x := l * g0 / (r * rho * (2 * r) * (2 * r) * eps)
	want := x / (1 + x)
	for _, model := range []growth.Model{growth.BulkDiffusion, growth.Monosurface} {
		o := evalSinglePoint(t, model, l, g0, rho, eps, []float64{r, r})
		for i, v := range o {
			if math.Abs(v-want) > testTolerance {
				t.Errorf("%v pair %d: efficiency = %g, want %g", model, i, v, want)
			}
		}
	}
}

func TestNegativeGrowthClamped(t *testing.T) {
	for _, model := range []growth.Model{growth.BulkDiffusion, growth.Constant} {
		o := evalSinglePoint(t, model, 1, -1, 1, 1, []float64{1, 2})
		for i, v := range o {
			if v != 0 {
				t.Errorf("%v pair %d: efficiency = %g, want 0 for negative growth",
					model, i, v)
			}
		}
	}
}

func TestEfficiencyRange(t *testing.T) {
	cases := []struct {
		l, g0, rho, eps float64
		radii           []float64
	}{
		{1, 1e3, 1, 1e-6, []float64{1, 2, 5}},
		{1e-4, 2, 1000, 0.3, []float64{1e-6, 1e-5}},
		{7, 0, 2, 3, []float64{1, 2}},
		{1, 5, 0, 0, []float64{1, 2}},
	}
	for _, c := range cases {
		for _, model := range []growth.Model{growth.BulkDiffusion, growth.Monosurface,
			growth.Constant, growth.Kinetic} {
			o := evalSinglePoint(t, model, c.l, c.g0, c.rho, c.eps, c.radii)
			for i, v := range o {
				if math.IsNaN(v) || v < 0 || v >= 1 {
					t.Errorf("%v pair %d: efficiency = %g outside [0,1)", model, i, v)
				}
			}
		}
	}
}

func TestSymmetricModels(t *testing.T) {
	for _, model := range []growth.Model{growth.Constant, growth.Kinetic} {
		o := evalSinglePoint(t, model, 1, 2, 1.5, 0.8, []float64{1, 4, 9})
		n := 3
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if o[i*n+j] != o[j*n+i] {
					t.Errorf("%v: efficiency(%d,%d) = %g != efficiency(%d,%d) = %g",
						model, i, j, o[i*n+j], j, i, o[j*n+i])
				}
			}
		}
	}
}

// Increasing the growth rate with everything else fixed must strictly
// increase the efficiency.
func TestGrowthMonotonicity(t *testing.T) {
	prev := -1.0
	for _, g0 := range []float64{0.5, 1, 2, 4, 8} {
		o := evalSinglePoint(t, growth.Constant, 1, g0, 1, 1, []float64{1, 2})
		if o[1] <= prev {
			t.Errorf("efficiency %g at growth %g not greater than %g", o[1], g0, prev)
		}
		prev = o[1]
	}
}

// Degenerate density at only some grid points must zero only those points.
func TestPointwiseDegeneracy(t *testing.T) {
	fm := popbal.NewFieldManager()

	set := func(tag popbal.Tag, vals []float64) *popbal.Field {
		f := popbal.NewField(len(vals))
		copy(f.Elements(), vals)
		if err := fm.Register(tag, f); err != nil {
			t.Fatal(err)
		}
		return f
	}
	set("abscissa_0", []float64{1, 1, 1})
	set("growth_coefficient", []float64{2, 2, 2})
	set("dissipation_rate", []float64{1, 1, 0})
	set("density", []float64{1, 0, 1})
	if err := fm.Register("efficiency_0_0", popbal.NewField(3)); err != nil {
		t.Fatal(err)
	}

	e, err := New(popbal.Tags("efficiency_0_0"), popbal.Tags("abscissa_0"),
		"growth_coefficient", "dissipation_rate", "density", 1, growth.Constant)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.BindFields(fm); err != nil {
		t.Fatal(err)
	}
	if err := e.Evaluate(); err != nil {
		t.Fatal(err)
	}

	f, err := fm.Field("efficiency_0_0")
	if err != nil {
		t.Fatal(err)
	}
	// x = 2/(1·4·1) = 0.5 where valid.
	want := []float64{1. / 3., 0, 0}
	for i, w := range want {
		if math.Abs(f.Get(i)-w) > testTolerance {
			t.Errorf("point %d: efficiency = %g, want %g", i, f.Get(i), w)
		}
	}
}

func TestConstructionErrors(t *testing.T) {
	abscissae := popbal.IndexedTags("abscissa", 2)

	// Result count must be the square of the abscissa count.
	if _, err := New(popbal.PairTags("efficiency", 3), abscissae,
		"g", "eps", "rho", 1, growth.Constant); err == nil {
		t.Error("expected error for result/abscissa count mismatch")
	}

	// Unknown growth models are rejected at construction, not silently
	// skipped at evaluation.
	if _, err := New(popbal.PairTags("efficiency", 2), abscissae,
		"g", "eps", "rho", 1, growth.Model(42)); err == nil {
		t.Error("expected error for invalid growth model")
	}

	if _, err := New(nil, nil, "g", "eps", "rho", 1, growth.Constant); err == nil {
		t.Error("expected error for zero abscissae")
	}
}

func TestBindUnresolvedTag(t *testing.T) {
	e, err := New(popbal.PairTags("efficiency", 1), popbal.IndexedTags("abscissa", 1),
		"growth_coefficient", "dissipation_rate", "density", 1, growth.Constant)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.BindFields(popbal.NewFieldManager()); err == nil {
		t.Error("expected resolution error for empty field manager")
	}
}
