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

package popbal

import (
	"fmt"
	"math"
	"sync"

	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
)

// A Field is a scalar quantity discretized over the simulation domain,
// with one value per grid point. All Fields participating in an operation
// must share the same shape; mixing shapes is a programming error and
// panics.
type Field struct {
	data *sparse.DenseArray
}

// NewField creates a zero-valued Field with the given shape.
func NewField(shape ...int) *Field {
	return &Field{data: sparse.ZerosDense(shape...)}
}

// NewFieldLike creates a zero-valued Field with the same shape as f.
func NewFieldLike(f *Field) *Field {
	return NewField(f.data.Shape...)
}

// Shape returns the field dimensions.
func (f *Field) Shape() []int { return f.data.Shape }

// Len returns the number of grid points.
func (f *Field) Len() int { return len(f.data.Elements) }

// Elements returns the backing data in row-major order. The slice is
// shared with the field, not copied.
func (f *Field) Elements() []float64 { return f.data.Elements }

// Get returns the value at the given index.
func (f *Field) Get(index ...int) float64 { return f.data.Get(index...) }

// Set sets the value at the given index.
func (f *Field) Set(val float64, index ...int) { f.data.Set(val, index...) }

// Sum returns the sum over all grid points.
func (f *Field) Sum() float64 { return f.data.Sum() }

// Max returns the largest value in the field.
func (f *Field) Max() float64 { return f.data.Max() }

func (f *Field) checkShape(g *Field) {
	if len(f.data.Elements) != len(g.data.Elements) {
		panic(fmt.Sprintf("popbal: field shape mismatch: %v != %v",
			f.data.Shape, g.data.Shape))
	}
}

// Fill sets every grid point to v.
func (f *Field) Fill(v float64) {
	e := f.data.Elements
	for i := range e {
		e[i] = v
	}
}

// CopyFrom sets f to the values of g.
func (f *Field) CopyFrom(g *Field) {
	f.checkShape(g)
	copy(f.data.Elements, g.data.Elements)
}

// AddField adds g to f elementwise.
func (f *Field) AddField(g *Field) {
	f.checkShape(g)
	floats.Add(f.data.Elements, g.data.Elements)
}

// SubField subtracts g from f elementwise.
func (f *Field) SubField(g *Field) {
	f.checkShape(g)
	floats.Sub(f.data.Elements, g.data.Elements)
}

// MulField multiplies f by g elementwise.
func (f *Field) MulField(g *Field) {
	f.checkShape(g)
	floats.Mul(f.data.Elements, g.data.Elements)
}

// DivField divides f by g elementwise.
func (f *Field) DivField(g *Field) {
	f.checkShape(g)
	floats.Div(f.data.Elements, g.data.Elements)
}

// Scale multiplies every grid point by c.
func (f *Field) Scale(c float64) {
	floats.Scale(c, f.data.Elements)
}

// AddScalar adds c to every grid point.
func (f *Field) AddScalar(c float64) {
	floats.AddConst(c, f.data.Elements)
}

// PowScalar raises every grid point to the power p.
func (f *Field) PowScalar(p float64) {
	e := f.data.Elements
	for i, v := range e {
		e[i] = math.Pow(v, p)
	}
}

// A Mask is the result of an elementwise comparison, with one boolean per
// grid point.
type Mask []bool

// Greater compares f and g elementwise, producing a Mask that is true
// where f > g.
func (f *Field) Greater(g *Field) Mask {
	f.checkShape(g)
	m := make(Mask, len(f.data.Elements))
	for i, v := range f.data.Elements {
		m[i] = v > g.data.Elements[i]
	}
	return m
}

// GreaterScalar produces a Mask that is true where f > v.
func (f *Field) GreaterScalar(v float64) Mask {
	m := make(Mask, len(f.data.Elements))
	for i, fv := range f.data.Elements {
		m[i] = fv > v
	}
	return m
}

// And combines two Masks elementwise.
func (m Mask) And(n Mask) Mask {
	if len(m) != len(n) {
		panic(fmt.Sprintf("popbal: mask length mismatch: %d != %d",
			len(m), len(n)))
	}
	o := make(Mask, len(m))
	for i, v := range m {
		o[i] = v && n[i]
	}
	return o
}

// A Selection is an elementwise multi-branch conditional: at each grid
// point the value comes from the first branch whose mask is true, or from
// the otherwise branch when none is. Branches are appended with When and
// WhenVal and the chain is terminated by assigning it to a Field.
type Selection struct {
	branches  []branch
	otherwise branch
}

type branch struct {
	mask Mask
	f    *Field
	v    float64
}

func (b branch) value(i int) float64 {
	if b.f != nil {
		return b.f.data.Elements[i]
	}
	return b.v
}

// Cond starts a Selection whose first branch takes values from f where
// mask is true.
func Cond(mask Mask, f *Field) *Selection {
	return &Selection{branches: []branch{{mask: mask, f: f}}}
}

// CondVal starts a Selection whose first branch has the constant value v
// where mask is true.
func CondVal(mask Mask, v float64) *Selection {
	return &Selection{branches: []branch{{mask: mask, v: v}}}
}

// When appends a branch taking values from f where mask is true.
func (s *Selection) When(mask Mask, f *Field) *Selection {
	s.branches = append(s.branches, branch{mask: mask, f: f})
	return s
}

// WhenVal appends a branch with the constant value v where mask is true.
func (s *Selection) WhenVal(mask Mask, v float64) *Selection {
	s.branches = append(s.branches, branch{mask: mask, v: v})
	return s
}

// Otherwise sets the fallback values for grid points not covered by any
// branch.
func (s *Selection) Otherwise(f *Field) *Selection {
	s.otherwise = branch{f: f}
	return s
}

// OtherwiseVal sets the constant fallback value for grid points not
// covered by any branch.
func (s *Selection) OtherwiseVal(v float64) *Selection {
	s.otherwise = branch{v: v}
	return s
}

// Assign evaluates the Selection into f. The Selection may read from f;
// values are written point-by-point after each point is resolved.
func (f *Field) Assign(s *Selection) {
	e := f.data.Elements
points:
	for i := range e {
		for _, b := range s.branches {
			if b.mask[i] {
				e[i] = b.value(i)
				continue points
			}
		}
		e[i] = s.otherwise.value(i)
	}
}

// A FieldPool provides scratch Fields scoped to a single computation.
// Fields obtained from Get are exclusively owned by the caller until
// returned with Put, so concurrent computations never share a temporary.
type FieldPool struct {
	mx   sync.Mutex
	free map[string][]*Field
}

// NewFieldPool creates an empty FieldPool.
func NewFieldPool() *FieldPool {
	return &FieldPool{free: make(map[string][]*Field)}
}

func shapeKey(shape []int) string { return fmt.Sprint(shape) }

// Get returns a zeroed Field with the same shape as like.
func (p *FieldPool) Get(like *Field) *Field {
	p.mx.Lock()
	defer p.mx.Unlock()
	k := shapeKey(like.Shape())
	if n := len(p.free[k]); n > 0 {
		f := p.free[k][n-1]
		p.free[k] = p.free[k][:n-1]
		f.Fill(0)
		return f
	}
	return NewFieldLike(like)
}

// Put returns a Field to the pool for reuse.
func (p *FieldPool) Put(f *Field) {
	p.mx.Lock()
	defer p.mx.Unlock()
	k := shapeKey(f.Shape())
	p.free[k] = append(p.free[k], f)
}
