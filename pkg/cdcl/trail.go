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

// varState carries everything per-variable: current value, the decision
// level it was assigned at, its justification, and the decision/phase
// heuristics' bookkeeping.
type varState struct {
	value      LBool
	level      int
	just       Justification
	phase      LBool // cached last value
	prevPhase  LBool
	activity   float64
	decisionOK bool
	eliminated bool
	external   bool
	mark       bool // transient, reset between analyses
	lastConfl  uint64
}

// scopeMark snapshots everything push_scope needs to later undo.
type scopeMark struct {
	trailLen      int
	reinitLen     int
	inconsistent  bool
	userScopeLit  Lit // LitUndef unless this level opens a user scope
}

// trail is the ordered assignment history plus its per-decision-level
// checkpoints.
type trail struct {
	lits    []Lit
	qhead   int
	marks   []scopeMark
	reinit  []ClauseRef
	vars    []varState

	phaseFlips    int // variables assigned to the opposite of their cached phase
	assignedCount int // total assignments made, for dyn_psm's volatility estimate
}

func newTrail() *trail {
	return &trail{}
}

func (t *trail) level() int {
	return len(t.marks)
}

func (t *trail) newVar() Var {
	v := Var(len(t.vars))
	t.vars = append(t.vars, varState{value: LUndef, level: LevelUndef, decisionOK: true})
	return v
}

func (t *trail) value(v Var) LBool {
	return t.vars[v].value
}

func (t *trail) litValue(l Lit) LBool {
	v := t.vars[l.Var()].value
	if l.Sign() {
		return v.Not()
	}
	return v
}

func (t *trail) varLevel(v Var) int {
	return t.vars[v].level
}

// assign appends ℓ to the trail and records value/level/justification.
// At level 0 the justification is erased to JustNone, making the
// assignment permanent.
func (t *trail) assign(l Lit, just Justification) {
	v := l.Var()
	value := LTrue
	if l.Sign() {
		value = LFalse
	}

	level := t.level()
	if level == 0 {
		just = NoJustification
	}

	if t.vars[v].phase != LUndef && t.vars[v].phase != value {
		t.phaseFlips++
	}

	t.assignedCount++

	t.vars[v].value = value
	t.vars[v].level = level
	t.vars[v].just = just
	t.vars[v].phase = value

	t.lits = append(t.lits, l)
}

// pushScope opens a new decision level, snapshotting everything push_scope
// needs to roll back later.
func (t *trail) pushScope(inconsistent bool) {
	t.marks = append(t.marks, scopeMark{
		trailLen:     len(t.lits),
		reinitLen:    len(t.reinit),
		inconsistent: inconsistent,
		userScopeLit: LitUndef,
	})
}

// popScopes unwinds n scope levels, walking the trail backward to the
// snapshot, clearing each variable and re-enqueuing it for the decision
// heuristic via the supplied callback.
func (t *trail) popScopes(n int, onUnassign func(Var)) []ClauseRef {
	var reinitDone []ClauseRef

	for i := 0; i < n; i++ {
		mark := t.marks[len(t.marks)-1]
		t.marks = t.marks[:len(t.marks)-1]

		for len(t.lits) > mark.trailLen {
			l := t.lits[len(t.lits)-1]
			t.lits = t.lits[:len(t.lits)-1]

			v := l.Var()
			t.vars[v].prevPhase = t.vars[v].phase
			t.vars[v].value = LUndef
			t.vars[v].level = LevelUndef
			t.vars[v].just = NoJustification

			if onUnassign != nil {
				onUnassign(v)
			}
		}

		reinitDone = append(reinitDone, t.reinit[mark.reinitLen:]...)
		t.reinit = t.reinit[:mark.reinitLen]
	}

	t.qhead = len(t.lits)

	return reinitDone
}

// pushReinit remembers a clause whose propagated literal was asserted at a
// scope above the one it was learned in; it must be re-examined on pop.
func (t *trail) pushReinit(ref ClauseRef) {
	t.reinit = append(t.reinit, ref)
}
