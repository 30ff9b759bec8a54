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

package dimacs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spjmurray/go-cdcl/pkg/cdcl"
)

// Load parses a DIMACS CNF stream and installs it into s, allocating one
// solver variable per DIMACS variable (1-indexed in the file, 0-indexed
// in the solver).
func Load(s *cdcl.Solver, r io.Reader) (*Problem, error) {
	p, err := Parse(r)
	if err != nil {
		return nil, err
	}

	for i := 0; i < p.NumVars; i++ {
		s.NewVar(false, true)
	}

	for _, clause := range p.Clauses {
		lits := make([]cdcl.Lit, len(clause))

		for i, n := range clause {
			lits[i] = cdcl.NewLit(cdcl.Var(abs(n)-1), n < 0)
		}

		s.AddClause(lits, false)
	}

	return p, nil
}

// WriteSolverCNF serializes a live solver's clause database — not a
// parsed Problem — to DIMACS CNF text in a deterministic order: units in
// trail order, then binaries in lex order of watch index, then arena
// clauses (ternary and up) in insertion order. WriteCNF replays whatever
// order a parsed Problem's clause list happens to hold; this walks the
// solver's own trail/watch-index/arena instead, for callers that need a
// reproducible dump of a solver's current state rather than its input.
func WriteSolverCNF(w io.Writer, s *cdcl.Solver) error {
	bw := bufio.NewWriter(w)

	numClauses := len(s.Units())

	s.Binaries(func(cdcl.Lit, cdcl.Lit) bool {
		numClauses++
		return true
	})

	s.ProblemClauses(func([]cdcl.Lit) bool {
		numClauses++
		return true
	})

	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", s.NumVars(), numClauses); err != nil {
		return err
	}

	writeClause := func(lits []int) error {
		for _, lit := range lits {
			if _, err := fmt.Fprintf(bw, "%d ", lit); err != nil {
				return err
			}
		}

		_, err := fmt.Fprint(bw, "0\n")

		return err
	}

	for _, lit := range s.Units() {
		if err := writeClause([]int{litToDimacs(lit)}); err != nil {
			return err
		}
	}

	var werr error

	s.Binaries(func(a, b cdcl.Lit) bool {
		werr = writeClause([]int{litToDimacs(a), litToDimacs(b)})
		return werr == nil
	})

	if werr != nil {
		return werr
	}

	s.ProblemClauses(func(lits []cdcl.Lit) bool {
		out := make([]int, len(lits))
		for i, l := range lits {
			out[i] = litToDimacs(l)
		}

		werr = writeClause(out)

		return werr == nil
	})

	if werr != nil {
		return werr
	}

	return bw.Flush()
}

func litToDimacs(l cdcl.Lit) int {
	n := int(l.Var()) + 1
	if l.Sign() {
		return -n
	}

	return n
}

// WriteModel prints the "v ..." model line in the SAT competition's output
// convention; the "s SATISFIABLE" status line is left to the caller.
func WriteModel(w io.Writer, s *cdcl.Solver) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprint(bw, "v "); err != nil {
		return err
	}

	for v := 0; v < s.NumVars(); v++ {
		lit := v + 1
		if s.Value(cdcl.Var(v)) == cdcl.LFalse {
			lit = -lit
		}

		if _, err := fmt.Fprintf(bw, "%d ", lit); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(bw, "0\n"); err != nil {
		return err
	}

	return bw.Flush()
}
