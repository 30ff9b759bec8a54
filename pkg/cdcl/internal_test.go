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

package cdcl

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLubySequence(t *testing.T) {
	// 1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8
	want := []int{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}

	for i, w := range want {
		require.Equal(t, w, luby(i+1), "luby(%d)", i+1)
	}
}

func TestRestartPolicyLubyThresholdGrows(t *testing.T) {
	opts := DefaultOptions()
	opts.Restart = RestartLuby
	opts.RestartInitial = 100

	r := newRestartPolicy(opts)

	for i := 0; i < r.threshold; i++ {
		require.False(t, r.onConflict())
	}

	require.True(t, r.onConflict())

	r.reset()

	require.Zero(t, r.conflictsSince)
	require.Equal(t, opts.RestartInitial*luby(1), r.threshold)

	r.reset()
	r.reset()

	require.Equal(t, 2*opts.RestartInitial, r.threshold) // luby(3) == 2
}

func TestRestartPolicyGeometric(t *testing.T) {
	opts := DefaultOptions()
	opts.Restart = RestartGeometric
	opts.RestartInitial = 50
	opts.RestartFactor = 2.0

	r := newRestartPolicy(opts)
	r.reset()

	require.Equal(t, 100, r.threshold)
}

func TestGCPolicyDueAndAdvance(t *testing.T) {
	opts := DefaultOptions()
	opts.GCInitial = 10
	opts.GCIncrement = 5

	g := newGCPolicy(opts)

	require.False(t, g.due(9))
	require.True(t, g.due(10))

	g.advance()
	require.Equal(t, 15, g.threshold)
}

func TestGCScoreByStrategy(t *testing.T) {
	opts := DefaultOptions()
	g := newGCPolicy(opts)

	c := &Clause{Glue: 3, PSM: 2, Inactive: 1, Literals: make([]Lit, 5)}

	g.strategy = GCGlue
	require.Equal(t, [3]int{3, 0, 5}, g.score(c))

	g.strategy = GCPSM
	require.Equal(t, [3]int{2, 0, 5}, g.score(c))

	g.strategy = GCGluePSM
	require.Equal(t, [3]int{3, 2, 5}, g.score(c))

	g.strategy = GCPSMGlue
	require.Equal(t, [3]int{2, 3, 5}, g.score(c))

	g.strategy = GCDynPSM
	require.Equal(t, [3]int{3, 0, 5}, g.score(c))
}

func TestLessScoreOrdersLexicographically(t *testing.T) {
	require.True(t, lessScore([3]int{1, 5, 5}, [3]int{2, 0, 0}))
	require.True(t, lessScore([3]int{1, 1, 9}, [3]int{1, 2, 0}))
	require.True(t, lessScore([3]int{1, 1, 3}, [3]int{1, 1, 4}))
	require.False(t, lessScore([3]int{1, 1, 4}, [3]int{1, 1, 4}))
}

// TestBinaryConflictFalsifiedLiteralIsFalse reproduces a multi-level
// binary-watch conflict directly: B is forced true at level 1 by
// whatever reason, unrelated to the binary clause under test, and A is
// decided true at level 2. The clause's watch entry keyed on A then
// finds its companion literal ¬B false and must report that false
// literal, not its (currently true) negation.
func TestBinaryConflictFalsifiedLiteralIsFalse(t *testing.T) {
	s := New(DefaultOptions())
	a := s.NewVar(false, true)
	b := s.NewVar(false, true)

	notA, notB := NewLit(a, true), NewLit(b, true)
	s.watches.addBinary(notA, notB, false)

	s.trail.pushScope(false)
	s.trail.assign(NewLit(b, false), NoJustification) // B true @ level 1

	s.trail.pushScope(false)
	s.trail.assign(NewLit(a, false), NoJustification) // A true @ level 2, decision

	require.False(t, s.propagate())
	require.Equal(t, notB, s.conflict.falsified)
	require.Equal(t, notA, s.conflict.just.Other)

	antecedents := s.conflictAntecedents(s.conflict)
	for _, lit := range antecedents {
		require.Equal(t, LFalse, s.trail.litValue(lit), "antecedent %v must be false under the conflicting trail", lit)
	}
}

func TestTrailPushPopScope(t *testing.T) {
	tr := newTrail()

	v0 := tr.newVar()
	v1 := tr.newVar()

	tr.assign(NewLit(v0, false), NoJustification)

	tr.pushScope(false)
	tr.assign(NewLit(v1, false), NoJustification)

	require.Equal(t, LTrue, tr.value(v1))

	unassigned := map[Var]bool{}
	tr.popScopes(1, func(v Var) { unassigned[v] = true })

	require.True(t, unassigned[v1])
	require.Equal(t, LUndef, tr.value(v1))
	require.Equal(t, LTrue, tr.value(v0)) // level 0 assignment survives
}

func TestHeuristicVSIDSBumpOrdersByActivity(t *testing.T) {
	opts := DefaultOptions()
	opts.Branching = BranchingVSIDS

	h := newHeuristic(opts)
	tr := newTrail()

	v0 := tr.newVar()
	v1 := tr.newVar()
	h.addVar(v0)
	h.addVar(v1)

	h.bump(tr, v1, 0)
	h.bump(tr, v1, 0)
	h.bump(tr, v0, 0)

	next, ok := h.nextVar(tr)
	require.True(t, ok)
	require.Equal(t, v1, next)
}

func TestCachingWindowOn(t *testing.T) {
	h := &heuristic{cachingOn: 4, cachingOff: 2}

	require.True(t, h.cachingWindowOn(0))
	require.True(t, h.cachingWindowOn(3))
	require.False(t, h.cachingWindowOn(4))
	require.False(t, h.cachingWindowOn(5))
	require.True(t, h.cachingWindowOn(6))
}

// TestComputePSMCountsAgreeingLiterals exercises computePSM against three
// variables in three different phase states: cached true, cached false,
// and never assigned.
func TestComputePSMCountsAgreeingLiterals(t *testing.T) {
	s := New(DefaultOptions())
	a := s.NewVar(false, true)
	b := s.NewVar(false, true)
	c := s.NewVar(false, true)

	s.trail.pushScope(false)
	s.trail.assign(NewLit(a, false), NoJustification) // a's phase: LTrue
	s.trail.assign(NewLit(b, true), NoJustification)  // b's phase: LFalse
	// c is never assigned: phase stays LUndef.

	clause := &Clause{Literals: []Lit{NewLit(a, false), NewLit(b, false), NewLit(c, false)}}

	// Positive a agrees with LTrue; positive b disagrees with LFalse;
	// positive c never agrees with LUndef.
	require.Equal(t, 1, s.computePSM(clause))
}

// TestDynPSMFreezeDetachesThenReactivateReattaches drives the freeze and
// reactivate halves of dynPSMFreeze back to back on the same clause: a
// high volatility estimate first pushes its PSM above the freeze
// threshold, then a low estimate on the next sweep (with a low PSM) pulls
// it back below and reactivates it.
func TestDynPSMFreezeDetachesThenReactivateReattaches(t *testing.T) {
	opts := DefaultOptions()
	opts.GC = GCDynPSM

	s := New(opts)

	a := s.NewVar(false, true)
	b := s.NewVar(false, true)
	c := s.NewVar(false, true)
	d := s.NewVar(false, true)

	lits := []Lit{NewLit(a, false), NewLit(b, false), NewLit(c, false), NewLit(d, false)}
	ref := s.clauses.alloc(lits, true)
	cl := s.clauses.get(ref)
	s.attachClause(ref, cl)
	s.learned = append(s.learned, ref)

	// Volatility 0.5 over a size-4 clause sets the freeze threshold to 2;
	// a PSM of 4 (all literals agreeing) clears it.
	s.trail.assignedCount = 20
	s.trail.phaseFlips = 10
	cl.PSM = 4

	s.dynPSMFreeze()

	require.True(t, cl.Frozen)
	require.Empty(t, s.watches.lists[cl.Literals[0].Not()])
	require.Empty(t, s.watches.lists[cl.Literals[1].Not()])

	// No further flips/assignments this round: volatility floors at 0.01,
	// so threshold is 0.04. A PSM of 0 drops below it and reactivates.
	cl.PSM = 0

	s.dynPSMFreeze()

	require.False(t, cl.Frozen)
	require.NotEmpty(t, s.watches.lists[cl.Literals[0].Not()])
	require.NotEmpty(t, s.watches.lists[cl.Literals[1].Not()])
}

// TestSimplifyDueGrowsThreshold exercises nextSimplify's two-phase
// schedule: the first pass is due at once (nextSimplify starts at 0) and
// sets the next threshold to RestartInitial*SimplifyMult1 conflicts; every
// later pass sets it to conflicts*SimplifyMult2 capped at
// conflicts+SimplifyMax.
func TestSimplifyDueGrowsThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.RestartInitial = 100
	opts.SimplifyMult1 = 1.5
	opts.SimplifyMult2 = 8.0
	opts.SimplifyMax = 50
	opts.MaxInprocess = -1 // unlimited passes, so the schedule can be observed twice

	s := New(opts)

	a := s.NewVar(false, true)
	b := s.NewVar(false, true)
	c := s.NewVar(false, true)
	d := s.NewVar(false, true)

	s.AddClause([]Lit{NewLit(a, false), NewLit(b, false), NewLit(c, false), NewLit(d, false)}, false)

	require.True(t, s.simplifyDue()) // nextSimplify starts at 0

	s.simplifyProblem()
	require.Equal(t, int64(150), s.nextSimplify) // 100 * 1.5

	s.stats.Conflicts = 100
	require.False(t, s.simplifyDue())

	s.stats.Conflicts = 150
	require.True(t, s.simplifyDue())

	s.simplifyProblem()
	// conflicts*mult2 = 1200, capped at conflicts+SimplifyMax = 200.
	require.Equal(t, int64(200), s.nextSimplify)
}

// TestCopyAppliesQualityFilter exercises Copy's two-branch quality
// predicate on learned clauses: glue <= 2 is always kept, glue <= 8 is
// kept only up to size 40, and anything else is dropped.
func TestCopyAppliesQualityFilter(t *testing.T) {
	s := New(DefaultOptions())
	for i := 0; i < 4; i++ {
		s.NewVar(false, true)
	}

	addLearned := func(lits []Lit, glue int) []Lit {
		before := len(s.learned)
		s.AddClause(lits, true)
		ref := s.learned[before]
		c := s.clauses.get(ref)
		c.Glue = glue

		return c.Literals
	}

	l := func(v int) Lit {
		if v < 0 {
			return NewLit(Var(-v-1), true)
		}
		return NewLit(Var(v-1), false)
	}

	lowGlue := addLearned([]Lit{l(1), l(2), l(3), l(4)}, 2)
	boundedGlue := addLearned([]Lit{l(-1), l(-2), l(-3), l(-4)}, 8)
	tooHighGlue := addLearned([]Lit{l(1), l(-2), l(3), l(-4)}, 9)

	dup := s.Copy()

	hasClause := func(want []Lit) bool {
		for _, ref := range dup.learned {
			if reflect.DeepEqual(dup.clauses.get(ref).Literals, want) {
				return true
			}
		}

		return false
	}

	require.True(t, hasClause(lowGlue))
	require.True(t, hasClause(boundedGlue))
	require.False(t, hasClause(tooHighGlue))
}
