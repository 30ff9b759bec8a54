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

// simplifyDue reports whether the problem is eligible for another
// in-processing pass: the combined clause count must stay within
// SimplifyMax, MaxInprocess caps the total number of rounds, and the
// conflict count must have reached nextSimplify, a growing threshold
// recomputed by simplifyProblem after each pass.
func (s *Solver) simplifyDue() bool {
	if s.opts.MaxInprocess >= 0 && s.inprocessCount >= s.opts.MaxInprocess {
		return false
	}

	total := len(s.problem) + len(s.learned)
	if total == 0 || total > s.opts.SimplifyMax {
		return false
	}

	return int64(s.stats.Conflicts) >= s.nextSimplify
}

// simplifyProblem is called only at decision level 0: it drops any
// arena-resident clause (ternary and up) already satisfied by a level-0
// unit, freeing the slot and detaching its watches. Binary clauses never
// enter the arena and are left untouched; the watch structure already
// makes a satisfied one cheap to skip during propagation, so the sweep
// isn't worth the bookkeeping there.
//
// nextSimplify grows after every pass: the first threshold is
// RestartInitial*SimplifyMult1, later ones are the conflict count scaled
// by SimplifyMult2, capped so the gap between passes never exceeds
// SimplifyMax conflicts.
func (s *Solver) simplifyProblem() {
	s.inprocessCount++

	conflicts := int64(s.stats.Conflicts)

	if s.inprocessCount == 1 {
		s.nextSimplify = int64(float64(s.opts.RestartInitial) * s.opts.SimplifyMult1)
	} else {
		next := int64(float64(conflicts) * s.opts.SimplifyMult2)
		if capped := conflicts + int64(s.opts.SimplifyMax); next > capped {
			next = capped
		}

		s.nextSimplify = next
	}

	simplifyList := func(refs []ClauseRef) []ClauseRef {
		out := refs[:0]

		for _, ref := range refs {
			c := s.clauses.get(ref)
			if c.Deleted {
				continue
			}

			satisfied := false

			for _, lit := range c.Literals {
				if s.trail.litValue(lit) == LTrue {
					satisfied = true
					break
				}
			}

			if satisfied {
				s.detachArena(ref, c)
				s.clauses.free_(ref)

				continue
			}

			out = append(out, ref)
		}

		return out
	}

	s.problem = simplifyList(s.problem)
	s.learned = simplifyList(s.learned)
}
