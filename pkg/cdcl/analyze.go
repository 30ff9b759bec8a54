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

// conflictAntecedents returns the literals of the "reason clause" for a
// conflict: all of them are false under the current trail.
func (s *Solver) conflictAntecedents(desc conflictDescriptor) []Lit {
	switch desc.just.Kind {
	case JustBinary:
		return []Lit{desc.just.Other, desc.falsified}
	case JustTernary:
		return []Lit{desc.just.Other, desc.just.Other2}
	case JustClause:
		return s.clauses.get(desc.just.Clause).Literals
	case JustExternal:
		return s.ext.GetAntecedents(desc.falsified, desc.just.ExtIdx, nil)
	default:
		return nil
	}
}

// reasonLiterals returns the antecedent literals (all false) that forced
// the assignment of v, excluding v's own trail literal.
func (s *Solver) reasonLiterals(v Var) []Lit {
	j := s.trail.vars[v].just

	switch j.Kind {
	case JustBinary:
		return []Lit{j.Other}
	case JustTernary:
		return []Lit{j.Other, j.Other2}
	case JustClause:
		return s.clauses.get(j.Clause).Literals[1:]
	case JustExternal:
		value := s.trail.value(v)
		lit := NewLit(v, value == LFalse)

		return s.ext.GetAntecedents(lit, j.ExtIdx, nil)
	default:
		return nil
	}
}

// analyze performs first-UIP resolution. Given a conflict at decision level
// d >= 1 it returns the learned lemma (literal 0 is the negated UIP) and
// the backjump level (the maximum level among the other literals, 0 if the
// lemma is unit).
func (s *Solver) analyze(desc conflictDescriptor) (lemma []Lit, backjumpLevel int) {
	t := s.trail
	d := t.level()

	var touched []Var

	defer func() {
		for _, v := range touched {
			t.vars[v].mark = false
		}
	}()

	lemma = []Lit{LitUndef}
	open := 0

	mark := func(lits []Lit) {
		for _, lit := range lits {
			v := lit.Var()
			if t.vars[v].mark {
				continue
			}

			lvl := t.varLevel(v)
			if lvl < 0 {
				continue
			}

			t.vars[v].mark = true
			touched = append(touched, v)
			s.heur.bump(t, v, s.stats.Conflicts)

			switch {
			case lvl == d:
				open++
			case lvl > 0:
				lemma = append(lemma, lit)
				if lvl > backjumpLevel {
					backjumpLevel = lvl
				}
			}
		}
	}

	mark(s.conflictAntecedents(desc))

	pos := len(t.lits)
	var pivot Lit

	for {
		pos--

		v := t.lits[pos].Var()
		if !t.vars[v].mark {
			continue
		}

		pivot = t.lits[pos]
		open--

		if open == 0 {
			break
		}

		mark(s.reasonLiterals(v))
	}

	lemma[0] = pivot.Not()

	if s.opts.MinimizeLemmas {
		lemma = s.minimizeLemma(lemma, touched)
	}

	return lemma, backjumpLevel
}

// minimizeLemma drops non-UIP literals whose negation is implied by the
// rest of the (already marked) lemma plus level-0 facts, found by DFS over
// justifications (the "Sörensson-Biere" scheme). A 64-bit "levels
// present" bitmask prunes antecedents whose level cannot possibly be
// covered.
func (s *Solver) minimizeLemma(lemma []Lit, marked []Var) []Lit {
	t := s.trail

	var levelMask uint64

	for _, v := range marked {
		lvl := t.varLevel(v)
		if lvl >= 0 {
			levelMask |= 1 << uint(lvl&63)
		}
	}

	redundant := make(map[Var]bool, len(lemma))

	var isRedundant func(v Var, depth int) bool

	isRedundant = func(v Var, depth int) bool {
		if depth > 64 {
			return false // DFS depth guard; treat as non-redundant rather than loop forever
		}

		if t.vars[v].mark {
			return true
		}

		if red, ok := redundant[v]; ok {
			return red
		}

		lvl := t.varLevel(v)
		if lvl == 0 {
			return true
		}

		if levelMask&(1<<uint(lvl&63)) == 0 {
			redundant[v] = false
			return false
		}

		for _, lit := range s.reasonLiterals(v) {
			if !isRedundant(lit.Var(), depth+1) {
				redundant[v] = false
				return false
			}
		}

		redundant[v] = true

		return true
	}

	out := lemma[:1]

	for _, lit := range lemma[1:] {
		keep := true

		for _, antecedent := range s.reasonLiterals(lit.Var()) {
			if !t.vars[antecedent.Var()].mark && !isRedundant(antecedent.Var(), 0) {
				keep = false
				break
			}
		}

		// A decision or assumption literal (no justification) is never
		// redundant: it has no antecedents to subsume it.
		if t.vars[lit.Var()].just.Kind == JustNone {
			keep = true
		}

		if keep {
			out = append(out, lit)
		}
	}

	return out
}

// selectLearnedWatch picks the second watch for a freshly learned clause:
// the non-UIP literal of highest decision level.
func selectLearnedWatch(t *trail, lits []Lit) int {
	best, bestLevel := 1, -1

	for i := 1; i < len(lits); i++ {
		lvl := t.varLevel(lits[i].Var())
		if lvl > bestLevel {
			bestLevel = lvl
			best = i
		}
	}

	return best
}

// learn installs the analyzed lemma: backjumps to backjumpLevel, attaches
// the clause with watches on its first two literals, and immediately
// unit-propagates the UIP.
func (s *Solver) learn(lemma []Lit, backjumpLevel int, glue int) {
	if len(lemma) > 2 {
		wi := selectLearnedWatch(s.trail, lemma)
		lemma[1], lemma[wi] = lemma[wi], lemma[1]
	}

	s.backjumpTo(backjumpLevel)

	switch len(lemma) {
	case 1:
		s.trail.assign(lemma[0], NoJustification)
		s.units = append(s.units, lemma[0])
	case 2:
		s.addBinary(lemma[0], lemma[1], true)
		s.enqueue(lemma[0], BinaryJustification(lemma[1]))
	case 3:
		s.addTernary(lemma[0], lemma[1], lemma[2], true)
		s.enqueue(lemma[0], TernaryJustification(lemma[1], lemma[2]))
	default:
		ref := s.clauses.alloc(lemma, true)
		c := s.clauses.get(ref)
		c.Glue = glue
		s.attachClause(ref, c)
		s.learned = append(s.learned, ref)
		s.stats.ClausesLearned++
		s.enqueue(lemma[0], ClauseJustification(ref))
	}

	s.heur.decay()
}

// computeGlue returns the number of distinct decision levels among lits'
// variables at the moment of learning (the clause's glue, a.k.a. LBD).
func (s *Solver) computeGlue(lits []Lit) int {
	seen := map[int]bool{}
	glue := 0

	for _, lit := range lits {
		lvl := s.trail.varLevel(lit.Var())
		if lvl < 0 {
			lvl = 0
		}

		if !seen[lvl] {
			seen[lvl] = true
			glue++
		}
	}

	return glue
}

// backjumpTo pops scopes until the trail is at level, re-enqueuing
// unassigned variables into the decision heuristic and replaying the
// reinit stack.
func (s *Solver) backjumpTo(level int) {
	n := s.trail.level() - level
	if n <= 0 {
		return
	}

	conflictIdx := s.stats.Conflicts
	reinit := s.trail.popScopes(n, func(v Var) {
		s.heur.requeue(s.trail, v, conflictIdx)
		s.heur.forgetPhasesAbove(s.trail, v)
	})

	for _, ref := range reinit {
		s.reattachReinit(ref)
	}
}

// reattachReinit re-examines a clause whose propagated literal was undone
// by the backjump: its watches may need to move.
func (s *Solver) reattachReinit(ref ClauseRef) {
	c := s.clauses.get(ref)
	if c.Deleted {
		return
	}

	c.Reinit = false

	s.detachClause(ref, c)
	s.attachClause(ref, c)
}
