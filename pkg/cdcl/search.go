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

// Check is the top-level decision procedure. It installs assumptions,
// then alternates propagation, conflict analysis, restarts, clause-DB
// reduction and decisions until the formula is proven satisfiable,
// unsatisfiable (optionally under assumptions, in which case core names
// the implicated subset), or the search is abandoned via err. The literal
// of every open user scope is assumed ahead of the caller's assumptions,
// so it can appear in core. Each call starts again from level 0.
func (s *Solver) Check(assumptions []Lit) (status Status, core []Lit, err error) {
	if s.inconsistent {
		return Unsat, nil, nil
	}

	s.backjumpTo(0)

	if len(s.userScopeLits) > 0 {
		assumptions = append(append([]Lit(nil), s.userScopeLits...), assumptions...)
	}

	if !s.propagate() {
		s.inconsistent = true
		return Unsat, nil, nil
	}

	core, ok := s.installAssumptions(assumptions)
	if !ok {
		s.backjumpTo(0)
		return Unsat, core, nil
	}

	for {
		if s.opts.Checkpoint != nil && s.opts.Checkpoint.Done() {
			reason := s.opts.Checkpoint.Reason()
			s.backjumpTo(0)

			return Unknown, nil, resourceExhausted(reason)
		}

		if s.opts.MaxConflicts >= 0 && int64(s.stats.Conflicts) >= s.opts.MaxConflicts {
			s.backjumpTo(0)
			return Unknown, nil, resourceExhausted("max conflicts reached")
		}

		if s.opts.MaxRestarts >= 0 && int64(s.stats.Restarts) >= s.opts.MaxRestarts {
			s.backjumpTo(0)
			return Unknown, nil, resourceExhausted("max restarts reached")
		}

		if !s.propagate() {
			if s.trail.level() == 0 {
				s.inconsistent = true
				return Unsat, nil, nil
			}

			if res := s.ext.ResolveConflict(); res == ResolveHandled {
				continue
			}

			lemma, backjumpLevel := s.analyze(s.conflict)
			glue := s.computeGlue(lemma)

			s.stats.Conflicts++
			s.stats.AvgLBD.Add(float64(glue))
			s.stats.AvgConflictLevel.Add(float64(s.trail.level()))

			s.learn(lemma, backjumpLevel, glue)

			if s.restart.onConflict() {
				s.backjumpTo(s.assume.level)
				s.restart.reset()
				s.stats.Restarts++
				s.logger.Debug("restart", "conflicts", s.stats.Conflicts, "threshold", s.restart.threshold)
			}

			if s.trail.level() == 0 && s.simplifyDue() {
				s.simplifyProblem()
			}

			if s.gc.due(len(s.learned)) {
				s.gcSweep()
				s.logger.Debug("gc sweep", "learned", len(s.learned))
			}

			continue
		}

		v, ok := s.heur.nextVar(s.trail)
		if !ok {
			switch s.ext.Check() {
			case FinalCheckDone:
				return Sat, nil, nil
			case FinalCheckGiveUp:
				s.backjumpTo(0)
				return Unknown, nil, giveUp("extension gave up at final check")
			default: // FinalCheckContinue
				continue
			}
		}

		s.decide(v)
	}
}

// decide opens a new scope and assigns v the phase chosen by the
// configured policy.
func (s *Solver) decide(v Var) {
	s.trail.pushScope(false)

	negated := s.heur.selectPhase(s.trail, v, s.heur.cachingWindowOn(s.stats.Conflicts))
	s.trail.assign(NewLit(v, negated), NoJustification)

	s.stats.Decisions++
}

// checkAssumptions is Check without the error channel, for callers (like
// ShrinkCore) that only care about sat/unsat and a possibly smaller core.
func (s *Solver) checkAssumptions(assumptions []Lit) (Status, []Lit) {
	status, core, err := s.Check(assumptions)
	if err != nil {
		return Unknown, nil
	}

	return status, core
}

// Solve is the simple, assumption-free entry point most callers want.
func (s *Solver) Solve() (Status, error) {
	status, _, err := s.Check(nil)
	return status, err
}
