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
	"time"

	"github.com/sirupsen/logrus"
)

// An Expression is one node of the evaluation graph. The host calls
// DeclareDependencies once when the expression is added to a Graph,
// BindFields at the start of each evaluation cycle, and Evaluate once the
// expressions it depends on have been evaluated.
type Expression interface {
	// DeclareDependencies registers the tags of the fields the
	// expression reads with reg. No field access happens here.
	DeclareDependencies(reg *DepRegistry)

	// BindFields resolves the expression's input and result tags to
	// concrete fields using fm. Resolution errors are returned
	// unmodified.
	BindFields(fm *FieldManager) error

	// Evaluate computes the expression's result fields from its
	// currently bound inputs.
	Evaluate() error
}

// A DepRegistry accumulates the field tags an expression declares as
// required inputs.
type DepRegistry struct {
	tags TagList
}

// Requires registers tags as required inputs.
func (r *DepRegistry) Requires(tags ...Tag) {
	r.tags = append(r.tags, tags...)
}

// A FieldManager maps Tags to concrete Fields and provides scratch-field
// allocation. Input fields are registered by the host before the graph
// runs; result fields are registered when expressions are added to a
// Graph.
type FieldManager struct {
	fields map[Tag]*Field
	pool   *FieldPool
}

// NewFieldManager creates an empty FieldManager.
func NewFieldManager() *FieldManager {
	return &FieldManager{
		fields: make(map[Tag]*Field),
		pool:   NewFieldPool(),
	}
}

// Register associates tag with f. Registering the same tag twice is an
// error.
func (fm *FieldManager) Register(tag Tag, f *Field) error {
	if _, ok := fm.fields[tag]; ok {
		return fmt.Errorf("popbal: field %q is already registered", tag)
	}
	fm.fields[tag] = f
	return nil
}

// Field resolves tag to its Field. An unregistered tag is an error.
func (fm *FieldManager) Field(tag Tag) (*Field, error) {
	f, ok := fm.fields[tag]
	if !ok {
		return nil, fmt.Errorf("popbal: cannot resolve field %q", tag)
	}
	return f, nil
}

// Fields resolves every tag in tags, in order.
func (fm *FieldManager) Fields(tags TagList) ([]*Field, error) {
	o := make([]*Field, len(tags))
	for i, t := range tags {
		f, err := fm.Field(t)
		if err != nil {
			return nil, err
		}
		o[i] = f
	}
	return o, nil
}

// Pool returns the scratch-field pool.
func (fm *FieldManager) Pool() *FieldPool { return fm.pool }

// A Graph evaluates a set of Expressions in dependency order. Result
// fields are allocated with the Graph's domain shape when expressions are
// added; fields that no expression produces must be registered on the
// FieldManager before Run is called.
type Graph struct {
	fm    *FieldManager
	shape []int
	nodes []*graphNode
}

type graphNode struct {
	expr    Expression
	results TagList
	deps    TagList
}

// NewGraph creates a Graph that evaluates fields with the given domain
// shape, resolving them through fm.
func NewGraph(fm *FieldManager, shape ...int) *Graph {
	return &Graph{fm: fm, shape: shape}
}

// FieldManager returns the Graph's FieldManager.
func (g *Graph) FieldManager() *FieldManager { return g.fm }

// Add registers expr as the producer of the fields named by results,
// allocating and registering one field per result tag. The expression's
// dependencies are collected here; evaluation happens in Run.
func (g *Graph) Add(results TagList, expr Expression) error {
	for _, t := range results {
		if err := g.fm.Register(t, NewField(g.shape...)); err != nil {
			return err
		}
	}
	reg := new(DepRegistry)
	expr.DeclareDependencies(reg)
	g.nodes = append(g.nodes, &graphNode{expr: expr, results: results, deps: reg.tags})
	return nil
}

// Run binds and evaluates every expression once, in an order where each
// expression runs after the producers of all of its inputs. Dependencies
// no expression produces must already be registered on the FieldManager.
// Cyclic dependencies are an error.
func (g *Graph) Run() error {
	order, err := g.order()
	if err != nil {
		return err
	}
	start := time.Now()
	for _, n := range order {
		if err := n.expr.BindFields(g.fm); err != nil {
			return err
		}
		if err := n.expr.Evaluate(); err != nil {
			return err
		}
	}
	logrus.WithFields(logrus.Fields{
		"expressions": len(order),
		"elapsed":     time.Since(start),
	}).Debug("popbal: evaluation cycle finished")
	return nil
}

// order topologically sorts the graph nodes by their declared
// dependencies.
func (g *Graph) order() ([]*graphNode, error) {
	producer := make(map[Tag]*graphNode)
	for _, n := range g.nodes {
		for _, t := range n.results {
			producer[t] = n
		}
	}
	// Count, for each node, the unevaluated producer nodes it waits on.
	waits := make(map[*graphNode]int)
	dependents := make(map[*graphNode][]*graphNode)
	for _, n := range g.nodes {
		waits[n] = 0
		for _, t := range n.deps {
			p, ok := producer[t]
			if !ok {
				// External input; must be pre-registered.
				if _, err := g.fm.Field(t); err != nil {
					return nil, fmt.Errorf("popbal: unsatisfied dependency %q", t)
				}
				continue
			}
			if p == n {
				return nil, fmt.Errorf("popbal: expression for %q depends on itself", t)
			}
			waits[n]++
			dependents[p] = append(dependents[p], n)
		}
	}
	var ready, order []*graphNode
	for _, n := range g.nodes { // insertion order keeps runs deterministic
		if waits[n] == 0 {
			ready = append(ready, n)
		}
	}
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, d := range dependents[n] {
			waits[d]--
			if waits[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("popbal: dependency cycle among %d expressions",
			len(g.nodes)-len(order))
	}
	return order, nil
}
