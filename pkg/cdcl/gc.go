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

import "sort"

// gcPolicy decides when the learned-clause database has grown enough to
// warrant a sweep, and how to score clauses for deletion. Strategy names
// follow Z3's gc_glue/gc_psm/gc_dyn_psm convention.
type gcPolicy struct {
	strategy  GCStrategy
	threshold int
	increment int
	smallLBD  int
	k         int // Options.GCK; neither gcSweep nor dynPSMFreeze reads it

	// dyn_psm's volatility estimate is measured since the previous sweep;
	// these snapshot the trail's running counters at that point.
	flipsAtLastGC    int
	assignedAtLastGC int
}

func newGCPolicy(opts Options) *gcPolicy {
	return &gcPolicy{
		strategy:  opts.GC,
		threshold: opts.GCInitial,
		increment: opts.GCIncrement,
		smallLBD:  opts.GCSmallLBD,
		k:         opts.GCK,
	}
}

// due reports whether the learned clause count has reached the threshold.
func (g *gcPolicy) due(numLearned int) bool {
	return numLearned >= g.threshold
}

// advance raises the threshold for the next sweep.
func (g *gcPolicy) advance() {
	g.threshold += g.increment
}

// score ranks a clause for deletion as a lexicographic key: lower sorts
// first and is kept, higher sorts last and is deleted. glue-based
// strategies prefer a small glue; psm-based strategies prefer a small PSM
// (the count of literals agreeing with their variable's cached phase, see
// computePSM); the combined strategies break ties between the two. Every key ends
// with clause size as the final tiebreaker, so two clauses that are
// otherwise equally good by the configured strategy prefer keeping the
// shorter one.
func (g *gcPolicy) score(c *Clause) [3]int {
	switch g.strategy {
	case GCPSM:
		return [3]int{c.PSM, 0, c.Size()}
	case GCGluePSM:
		return [3]int{c.Glue, c.PSM, c.Size()}
	case GCPSMGlue:
		return [3]int{c.PSM, c.Glue, c.Size()}
	case GCDynPSM:
		return [3]int{c.PSM + c.Inactive, 0, c.Size()}
	default: // GCGlue
		return [3]int{c.Glue, 0, c.Size()}
	}
}

// lessScore compares two lexicographic GC scores.
func lessScore(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}

// computePSM counts the literals of c whose sign agrees with the cached
// phase of their variable: the phase-saving measure gc.score reads for the
// psm-based strategies. A variable never yet assigned (LUndef phase) never
// agrees.
func (s *Solver) computePSM(c *Clause) int {
	psm := 0

	for _, lit := range c.Literals {
		phase := s.trail.vars[lit.Var()].phase
		if phase == LUndef {
			continue
		}

		agrees := phase == LTrue
		if lit.Sign() {
			agrees = phase == LFalse
		}

		if agrees {
			psm++
		}
	}

	return psm
}

// dynPSMFreeze applies the dyn_psm freeze/reactivate transition. The
// volatility estimate is the fraction of assignments made since the last
// sweep that flipped a variable's cached phase, floored so an early,
// flip-free search never freezes everything outright. A clause whose PSM
// has grown past size*volatility is currently easy to satisfy under the
// cached phase and is detached from the watch index but kept in the
// arena; a frozen clause whose PSM later drops back below the threshold
// is reactivated.
func (s *Solver) dynPSMFreeze() {
	t := s.trail

	flips := t.phaseFlips - s.gc.flipsAtLastGC
	assigned := t.assignedCount - s.gc.assignedAtLastGC
	s.gc.flipsAtLastGC, s.gc.assignedAtLastGC = t.phaseFlips, t.assignedCount

	const minVolatility = 0.01

	volatility := minVolatility
	if assigned > 0 {
		if v := float64(flips) / float64(assigned); v > volatility {
			volatility = v
		}
	}

	kept := s.learned[:0]

	for _, ref := range s.learned {
		c := s.clauses.get(ref)
		if c.Deleted || c.Size() == 3 || c.Reinit || s.isLocked(ref, c) {
			kept = append(kept, ref)
			continue
		}

		threshold := float64(c.Size()) * volatility

		switch {
		case !c.Frozen && float64(c.PSM) > threshold:
			s.detachClause(ref, c)
			c.Frozen = true
		case c.Frozen && float64(c.PSM) < threshold:
			s.reactivateFrozen(ref, c)
		}

		// reactivateFrozen frees the slot of a clause that shrank below
		// three literals; its handle must not stay in s.learned.
		if !c.Deleted {
			kept = append(kept, ref)
		}
	}

	s.learned = kept
}

// reactivateFrozen brings a frozen clause back into the watch index,
// first dropping any literal already falsified at level 0. A clause that
// shrinks to one or two literals is re-routed through the trail/binary
// path instead of the generic arena watch pair; one that shrinks to zero
// is a top-level conflict.
func (s *Solver) reactivateFrozen(ref ClauseRef, c *Clause) {
	c.Frozen = false

	out := c.Literals[:0]

	for _, lit := range c.Literals {
		if s.trail.varLevel(lit.Var()) == 0 && s.trail.litValue(lit) == LFalse {
			continue
		}

		out = append(out, lit)
	}

	c.Literals = out

	switch len(c.Literals) {
	case 0:
		s.inconsistent = true
		s.clauses.free_(ref)
	case 1:
		switch s.trail.litValue(c.Literals[0]) {
		case LFalse:
			s.inconsistent = true
		case LUndef:
			s.trail.assign(c.Literals[0], NoJustification)
			s.units = append(s.units, c.Literals[0])
		}

		s.clauses.free_(ref)
	case 2:
		s.addBinary(c.Literals[0], c.Literals[1], true)
		s.clauses.free_(ref)
	default:
		s.attachClause(ref, c)
	}
}

// isLocked reports whether ref is the reason for its first literal's
// current assignment: deleting it would leave a dangling justification.
func (s *Solver) isLocked(ref ClauseRef, c *Clause) bool {
	if len(c.Literals) == 0 {
		return false
	}

	v := c.Literals[0].Var()
	st := s.trail.vars[v]

	return st.value != LUndef && st.just.Kind == JustClause && st.just.Clause == ref
}

// gcSweep is the learned-clause reduction pass: it scores every non-locked, non-frozen
// learned clause, keeps the better half (plus anything with glue at or
// below smallLBD, which is never a deletion candidate), and frees the
// rest, detaching their watches first.
func (s *Solver) gcSweep() {
	type candidate struct {
		ref   ClauseRef
		score [3]int
	}

	needsPSM := s.gc.strategy == GCPSM || s.gc.strategy == GCGluePSM ||
		s.gc.strategy == GCPSMGlue || s.gc.strategy == GCDynPSM

	if needsPSM {
		for _, ref := range s.learned {
			c := s.clauses.get(ref)
			if !c.Deleted {
				c.PSM = s.computePSM(c)
			}
		}
	}

	if s.gc.strategy == GCDynPSM {
		s.dynPSMFreeze()
	}

	var candidates []candidate
	var survivors []ClauseRef

	for _, ref := range s.learned {
		c := s.clauses.get(ref)
		if c.Deleted {
			continue
		}

		if c.Size() == 3 || c.Glue <= s.gc.smallLBD || c.Frozen || c.Reinit || s.isLocked(ref, c) {
			survivors = append(survivors, ref)
			continue
		}

		candidates = append(candidates, candidate{ref: ref, score: s.gc.score(c)})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return lessScore(candidates[i].score, candidates[j].score) })

	keep := len(candidates) / 2

	for i, cand := range candidates {
		if i < keep {
			survivors = append(survivors, cand.ref)
			continue
		}

		c := s.clauses.get(cand.ref)
		s.detachClause(cand.ref, c)
		s.clauses.free_(cand.ref)
		s.stats.ClausesDeleted++
	}

	s.learned = survivors
	s.gc.advance()
	s.stats.GCSweeps++

	for _, ref := range s.learned {
		c := s.clauses.get(ref)
		if !c.Used {
			c.Inactive++
		} else {
			c.Inactive = 0
		}

		c.Used = false
	}
}
