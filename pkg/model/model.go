/*
Copyright 2024 Simon Murray

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package model is a typed convenience layer over pkg/cdcl: it maps
// arbitrary comparable user identifiers (the "variable{i,j,n}"-style
// composite keys a caller builds for, say, a Sudoku encoding) onto the
// dense cdcl.Var integers the core engine needs, and provides
// CNF-building helpers (Unary, AtMostOneOf, and so on) over
// cdcl.Solver.AddClause.
package model

import (
	"iter"

	"github.com/spjmurray/go-util/pkg/set"
	"github.com/spjmurray/go-util/pkg/slices"

	"github.com/spjmurray/go-cdcl/pkg/cdcl"
)

// Model maps a user's own variable identifiers onto a cdcl.Solver.
type Model[T comparable] struct {
	solver *cdcl.Solver

	ids      map[T]cdcl.Var
	names    map[cdcl.Var]T
	declared set.Set[T]
	order    []T
}

// New wraps a freshly constructed solver. Pass cdcl.DefaultOptions() for
// the usual starting point.
func New[T comparable](opts cdcl.Options) *Model[T] {
	return &Model[T]{
		solver:   cdcl.New(opts),
		ids:      map[T]cdcl.Var{},
		names:    map[cdcl.Var]T{},
		declared: set.New[T](),
	}
}

// Solver exposes the underlying engine for callers that need statistics,
// assumptions, or incremental push/pop beyond this package's helpers.
func (m *Model[T]) Solver() *cdcl.Solver {
	return m.solver
}

// variable returns the existing or newly allocated cdcl.Var for t.
func (m *Model[T]) variable(t T) cdcl.Var {
	if v, ok := m.ids[t]; ok {
		return v
	}

	v := m.solver.NewVar(false, true)
	m.ids[t] = v
	m.names[v] = t
	m.declared.Add(t)
	m.order = append(m.order, t)

	return v
}

// Literal gets the non-negated literal for t, allocating the variable on
// first use.
func (m *Model[T]) Literal(t T) cdcl.Lit {
	return cdcl.NewLit(m.variable(t), false)
}

// NegatedLiteral gets the negated literal for t.
func (m *Model[T]) NegatedLiteral(t T) cdcl.Lit {
	return cdcl.NewLit(m.variable(t), true)
}

// Clause defines a new clause from a set of literals.
func (m *Model[T]) Clause(literals ...cdcl.Lit) {
	m.solver.AddClause(literals, false)
}

// Unary adds a unary clause: t must be true.
func (m *Model[T]) Unary(t T) {
	m.Clause(m.Literal(t))
}

// NegatedUnary adds a negated unary clause: t must be false.
func (m *Model[T]) NegatedUnary(t T) {
	m.Clause(m.NegatedLiteral(t))
}

// AtLeastOneOf defines a clause: x1 v x2 v x3 v ... xN.
func (m *Model[T]) AtLeastOneOf(t ...T) {
	l := make([]cdcl.Lit, len(t))

	for i := range t {
		l[i] = m.Literal(t[i])
	}

	m.Clause(l...)
}

// AtMostOneOf defines the pairwise clauses ¬x1∨¬x2, ¬x1∨¬x3, ...,
// ¬xN-1∨¬xN, using go-util's Permute helper for the unique-pair expansion.
func (m *Model[T]) AtMostOneOf(t ...T) {
	l := make([]cdcl.Lit, len(t))

	for i := range t {
		l[i] = m.NegatedLiteral(t[i])
	}

	for a, b := range slices.Permute(l) {
		m.Clause(a, b)
	}
}

// ImpliesAtLeastOneOf defines a clause: ¬t v y1 v y2 v ... yN.
func (m *Model[T]) ImpliesAtLeastOneOf(t T, ti ...T) {
	l := make([]cdcl.Lit, len(ti)+1)
	l[0] = m.NegatedLiteral(t)

	for i := range ti {
		l[i+1] = m.Literal(ti[i])
	}

	m.Clause(l...)
}

// Declared reports whether t has had a variable allocated for it.
func (m *Model[T]) Declared(t T) bool {
	return m.declared.Contains(t)
}

// Solve runs the core search with no assumptions. The decision order is
// the core heuristic's own (VSIDS/CHB/LRB per cdcl.Options) rather than a
// caller-supplied chooser: an activity-based heuristic generally picks
// better variables than any simple caller-supplied rule would.
func (m *Model[T]) Solve() (cdcl.Status, error) {
	return m.solver.Solve()
}

// Variables iterates every declared identifier and its current truth
// value, in declaration order.
func (m *Model[T]) Variables() iter.Seq2[T, cdcl.LBool] {
	return func(yield func(T, cdcl.LBool) bool) {
		for _, t := range m.order {
			if !yield(t, m.solver.Value(m.ids[t])) {
				return
			}
		}
	}
}
