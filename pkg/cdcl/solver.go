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
	"log/slog"
	"sort"
)

// Status is the three-valued outcome of Check.
type Status int

const (
	Unknown Status = iota
	Sat
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// conflictDescriptor records the data conflict handed from the propagator
// to the analyzer.
type conflictDescriptor struct {
	just      Justification
	falsified Lit
}

// Solver is a CDCL (conflict-driven clause learning) SAT engine: trail,
// watches, clause arena, decision heuristic, restart and GC policies,
// assumption handling, and an optional external theory extension, all
// wired together into one incremental search.
type Solver struct {
	opts   Options
	logger *slog.Logger

	trail   *trail
	watches *watchIndex
	clauses *clauseStore
	heur    *heuristic
	restart *restartPolicy
	gc      *gcPolicy
	assume  *assumptionManager
	ext     Extension

	binaries  []binaryClause
	ternaries []ternaryClause
	problem   []ClauseRef // non-learned arena clauses, insertion order
	learned   []ClauseRef // learned arena clauses, for GC sweeps
	units     []Lit       // level-0 unit assignments, trail order

	userScopeLits []Lit // one external var-literal per open user scope

	inconsistent bool
	conflict     conflictDescriptor

	stats Stats

	inprocessCount int
	nextSimplify   int64 // conflict count at which the next in-processing pass is due

	reasonExt func(Lit) Justification // set by extension bridge wiring, may be nil
}

type binaryClause struct {
	a, b    Lit
	learned bool
}

type ternaryClause struct {
	a, b, c Lit
}

// New creates a solver with the given options. A zero Options{} is legal
// but DefaultOptions() is the usual starting point.
func New(opts Options) *Solver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Branching == "" {
		d := DefaultOptions()
		opts.Branching, opts.Phase, opts.Restart, opts.GC = d.Branching, d.Phase, d.Restart, d.GC
	}

	ext := opts.Extension
	if ext == nil {
		ext = NoExtension{}
	}

	s := &Solver{
		opts:    opts,
		logger:  opts.Logger,
		trail:   newTrail(),
		watches: newWatchIndex(),
		clauses: newClauseStore(),
		heur:    newHeuristic(opts),
		restart: newRestartPolicy(opts),
		gc:      newGCPolicy(opts),
		assume:  newAssumptionManager(),
		ext:     ext,
	}

	s.stats.AvgLBD = NewEMA(0.9999)
	s.stats.AvgConflictLevel = NewEMA(0.9999)

	return s
}

// NewVar allocates a fresh variable. decisionCandidate controls whether the
// decision heuristic may pick it; external marks it visible to the
// extension bridge.
func (s *Solver) NewVar(external, decisionCandidate bool) Var {
	v := s.trail.newVar()
	s.watches.ensure(v)
	s.trail.vars[v].external = external
	s.trail.vars[v].decisionOK = decisionCandidate
	s.heur.addVar(v)

	return v
}

// NumVars returns the number of allocated variables.
func (s *Solver) NumVars() int {
	return len(s.trail.vars)
}

// Value reports the current truth value of a variable.
func (s *Solver) Value(v Var) LBool {
	return s.trail.value(v)
}

// LitValue reports the current truth value of a literal.
func (s *Solver) LitValue(l Lit) LBool {
	return s.trail.litValue(l)
}

// Inconsistent reports the sticky top-level-conflict flag.
func (s *Solver) Inconsistent() bool {
	return s.inconsistent
}

// Stats returns a snapshot of the search statistics.
func (s *Solver) Stats() Stats {
	return s.stats
}

// AddClause ingests a clause: sort and dedup literals, detect tautology,
// drop level-0-false literals, and dispatch to the
// unit/binary/ternary/arena representation by size.
// learned clauses skip the general simplification (the caller is expected
// to have already minimized them) but still get routed by size.
func (s *Solver) AddClause(lits []Lit, learned bool) {
	if s.inconsistent {
		return
	}

	if !learned && len(s.userScopeLits) > 0 {
		augmented := make([]Lit, 0, len(lits)+len(s.userScopeLits))
		augmented = append(augmented, lits...)

		for _, scopeLit := range s.userScopeLits {
			augmented = append(augmented, scopeLit.Not())
		}

		lits = augmented
	}

	out := s.normalizeClause(lits, learned)
	if out == nil {
		return // tautology or clause already satisfied, nothing to add
	}

	switch len(out) {
	case 0:
		s.inconsistent = true
	case 1:
		s.trail.assign(out[0], NoJustification)
		s.units = append(s.units, out[0])
	case 2:
		s.addBinary(out[0], out[1], learned)
	case 3:
		s.addTernary(out[0], out[1], out[2], learned)
	default:
		s.addGeneric(out, learned)
	}
}

func (s *Solver) normalizeClause(lits []Lit, learned bool) []Lit {
	out := append([]Lit(nil), lits...)

	if !learned {
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

		dedup := out[:0]

		for i, l := range out {
			if i > 0 && l == dedup[len(dedup)-1] {
				continue // duplicate literal
			}

			if len(dedup) > 0 && l == dedup[len(dedup)-1].Not() {
				return nil // tautology: ℓ and ¬ℓ both present
			}

			dedup = append(dedup, l)
		}

		out = dedup

		j := 0

		for _, l := range out {
			switch s.trail.litValue(l) {
			case LTrue:
				return nil // satisfied at level 0 already
			case LFalse:
				// dropped: false at level 0
			default:
				out[j] = l
				j++
			}
		}

		out = out[:j]
	}

	return out
}

func (s *Solver) addBinary(a, b Lit, learned bool) {
	s.watches.addBinary(a, b, learned)
	s.watches.addBinary(b, a, learned)
	s.binaries = append(s.binaries, binaryClause{a: a, b: b, learned: learned})
}

func (s *Solver) addTernary(a, b, c Lit, learned bool) {
	s.watches.addTernary(a, b, c)
	s.watches.addTernary(b, a, c)
	s.watches.addTernary(c, a, b)

	ref := s.clauses.alloc([]Lit{a, b, c}, learned)

	s.ternaries = append(s.ternaries, ternaryClause{a: a, b: b, c: c})

	if learned {
		s.learned = append(s.learned, ref)
	} else {
		s.problem = append(s.problem, ref)
	}
}

func (s *Solver) addGeneric(lits []Lit, learned bool) {
	ref := s.clauses.alloc(lits, learned)
	c := s.clauses.get(ref)

	s.attachClause(ref, c)

	if learned {
		s.learned = append(s.learned, ref)
		s.stats.ClausesLearned++
	} else {
		s.problem = append(s.problem, ref)
	}
}

// attachClause installs watches on c[0] and c[1] for a generic clause.
func (s *Solver) attachClause(ref ClauseRef, c *Clause) {
	s.watches.addClause(c.Literals[0], c.Literals[1], ref)
	s.watches.addClause(c.Literals[1], c.Literals[0], ref)
}

// detachClause removes the watches installed by attachClause.
func (s *Solver) detachClause(ref ClauseRef, c *Clause) {
	s.watches.removeClause(c.Literals[0], ref)
	s.watches.removeClause(c.Literals[1], ref)
}

// detachArena removes whichever watch representation ref's arity uses:
// the three ternary watches for a 3-literal clause, or the generic pair
// otherwise. Ternary clauses are arena-resident (for their Glue/PSM
// bookkeeping) but watched the ternary way, not the generic way.
func (s *Solver) detachArena(ref ClauseRef, c *Clause) {
	if c.Size() == 3 {
		a, b, cc := c.Literals[0], c.Literals[1], c.Literals[2]
		s.watches.removeTernary(a, b, cc)
		s.watches.removeTernary(b, a, cc)
		s.watches.removeTernary(cc, a, b)

		return
	}

	s.detachClause(ref, c)
}

// Units returns the level-0 unit literals in trail order.
func (s *Solver) Units() []Lit {
	return append([]Lit(nil), s.units...)
}

// Binaries walks the watch index in lex order of the watch key and yields
// each live binary clause exactly once, canonicalized as (a, b) with
// a < b. Two watch entries name every binary clause (one per literal); the
// a < b filter keeps only the copy reached first while scanning keys in
// order.
func (s *Solver) Binaries(yield func(a, b Lit) bool) {
	for key, list := range s.watches.lists {
		for _, w := range list {
			if w.kind != watchBinary {
				continue
			}

			a := Lit(key).Not()
			if a >= w.other {
				continue
			}

			if !yield(a, w.other) {
				return
			}
		}
	}
}

// ProblemClauses iterates the non-learned arena clauses (ternary and up)
// in insertion order.
func (s *Solver) ProblemClauses(yield func([]Lit) bool) {
	for _, ref := range s.problem {
		c := s.clauses.get(ref)
		if c.Deleted {
			continue
		}

		if !yield(c.Literals) {
			return
		}
	}
}

// Model returns the current full assignment, valid after Check returns Sat.
func (s *Solver) Model() []LBool {
	model := make([]LBool, len(s.trail.vars))
	for v := range s.trail.vars {
		model[v] = s.trail.value(Var(v))
	}

	return model
}
