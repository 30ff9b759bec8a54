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

// enqueue assigns l with the given justification if it is currently
// unassigned, reports a conflict if it is assigned false, and is a no-op
// if it is already assigned true.
func (s *Solver) enqueue(l Lit, just Justification) bool {
	switch s.trail.litValue(l) {
	case LFalse:
		return false
	case LTrue:
		return true
	default:
		s.trail.assign(l, just)
		s.stats.Propagations++

		if s.trail.vars[l.Var()].external {
			s.ext.Asserted(l)
		}

		return true
	}
}

// propagate performs unit propagation over watches. It returns true if
// the queue drained cleanly, or false with s.conflict populated
// otherwise. On conflict the current watch list is fully compacted
// before returning.
func (s *Solver) propagate() bool {
	for s.trail.qhead < len(s.trail.lits) {
		l := s.trail.lits[s.trail.qhead]
		s.trail.qhead++

		list := s.watches.listFor(l)

		for i := 0; i < len(list); i++ {
			e := list[i]

			switch e.kind {
			case watchBinary:
				switch s.trail.litValue(e.other) {
				case LFalse:
					s.watches.lists[l] = list
					s.conflict = conflictDescriptor{just: BinaryJustification(l.Not()), falsified: e.other}
					return false
				case LUndef:
					s.enqueue(e.other, BinaryJustification(l.Not()))
				}
				// LTrue: nothing to do, entry stays.

			case watchTernary:
				va, vb := s.trail.litValue(e.l1), s.trail.litValue(e.l2)

				switch {
				case va == LTrue || vb == LTrue:
					// satisfied, keep.
				case va == LFalse && vb == LUndef:
					s.enqueue(e.l2, TernaryJustification(e.l1, l.Not()))
				case va == LUndef && vb == LFalse:
					s.enqueue(e.l1, TernaryJustification(e.l2, l.Not()))
				case va == LFalse && vb == LFalse:
					s.watches.lists[l] = list
					s.conflict = conflictDescriptor{just: TernaryJustification(e.l1, e.l2), falsified: e.l2}
					return false
				}

			case watchClause:
				if s.trail.litValue(e.blocked) == LTrue {
					continue // fast skip
				}

				c := s.clauses.get(e.ref)

				if c.Literals[0] == l.Not() {
					c.Literals[0], c.Literals[1] = c.Literals[1], c.Literals[0]
				}

				if c.Literals[1] != l.Not() {
					// stale watch from a clause that shrank under us; drop it.
					list[i] = list[len(list)-1]
					list = list[:len(list)-1]
					i--

					continue
				}

				if s.trail.litValue(c.Literals[0]) == LTrue {
					list[i].blocked = c.Literals[0]
					continue
				}

				found := false

				for k := 2; k < len(c.Literals); k++ {
					if s.trail.litValue(c.Literals[k]) != LFalse {
						c.Literals[1], c.Literals[k] = c.Literals[k], c.Literals[1]
						s.watches.addClause(c.Literals[1], c.Literals[0], e.ref)

						list[i] = list[len(list)-1]
						list = list[:len(list)-1]
						i--
						found = true

						break
					}
				}

				if found {
					continue
				}

				if s.trail.litValue(c.Literals[0]) == LFalse {
					s.watches.lists[l] = list
					s.conflict = conflictDescriptor{just: ClauseJustification(e.ref), falsified: c.Literals[0]}

					return false
				}

				c.Used = true
				s.updateGlue(c)
				s.enqueue(c.Literals[0], ClauseJustification(e.ref))

			case watchExternal:
				keep, ok := s.ext.Propagate(l, e.extIdx)
				if !ok {
					s.watches.lists[l] = list
					s.conflict = conflictDescriptor{just: ExternalJustification(e.extIdx), falsified: l}
					return false
				}

				if !keep {
					list[i] = list[len(list)-1]
					list = list[:len(list)-1]
					i--
				}
			}
		}

		s.watches.lists[l] = list
	}

	return true
}

// updateGlue opportunistically tightens a learned clause's glue downward
// when the clause propagates: it counts the distinct decision levels of
// the literals currently assigned (unassigned ones are skipped) and keeps
// that count if it is smaller.
func (s *Solver) updateGlue(c *Clause) {
	if !c.Learned || c.Glue <= 2 {
		return
	}

	seen := map[int]bool{}
	glue := 0

	for _, lit := range c.Literals {
		lvl := s.trail.varLevel(lit.Var())
		if lvl < 0 {
			continue
		}

		if !seen[lvl] {
			seen[lvl] = true
			glue++
		}
	}

	if glue < c.Glue {
		c.Glue = glue
	}
}
