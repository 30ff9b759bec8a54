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

package dimacs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spjmurray/go-cdcl/pkg/cdcl"
	"github.com/spjmurray/go-cdcl/pkg/dimacs"
)

const sampleCNF = `c a trivial example
p cnf 3 2
1 -2 0
2 3 0
%
`

func TestParse(t *testing.T) {
	p, err := dimacs.Parse(strings.NewReader(sampleCNF))
	require.NoError(t, err)
	require.Equal(t, 3, p.NumVars)
	require.Equal(t, 2, p.NumClauses)
	require.Equal(t, [][]int{{1, -2}, {2, 3}}, p.Clauses)
}

func TestParseMissingHeader(t *testing.T) {
	_, err := dimacs.Parse(strings.NewReader("1 -2 0\n"))
	require.Error(t, err)
}

func TestParseOutOfRangeLiteral(t *testing.T) {
	_, err := dimacs.Parse(strings.NewReader("p cnf 1 1\n1 2 0\n"))
	require.Error(t, err)
}

func TestWriteCNFRoundTrip(t *testing.T) {
	p, err := dimacs.Parse(strings.NewReader(sampleCNF))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, dimacs.WriteCNF(&buf, p))

	reparsed, err := dimacs.Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, p.NumVars, reparsed.NumVars)
	require.Equal(t, p.Clauses, reparsed.Clauses)
}

func TestLoadAndSolve(t *testing.T) {
	s := cdcl.New(cdcl.DefaultOptions())

	p, err := dimacs.Load(s, strings.NewReader(sampleCNF))
	require.NoError(t, err)
	require.Equal(t, 3, s.NumVars())
	require.Equal(t, 3, p.NumVars)

	status, err := s.Solve()
	require.NoError(t, err)
	require.Equal(t, cdcl.Sat, status)

	var buf bytes.Buffer
	require.NoError(t, dimacs.WriteModel(&buf, s))
	require.Contains(t, buf.String(), "v ")
}

func TestWriteSolverCNFOrdering(t *testing.T) {
	s := cdcl.New(cdcl.DefaultOptions())

	for i := 0; i < 8; i++ {
		s.NewVar(false, true)
	}

	v := func(i int) cdcl.Var { return cdcl.Var(i) }
	pos := func(i int) cdcl.Lit { return cdcl.NewLit(v(i), false) }
	neg := func(i int) cdcl.Lit { return cdcl.NewLit(v(i), true) }

	// Only the unit assigns a variable (var 0), and no other clause mentions
	// it, so AddClause's level-0 simplification never collapses a clause.
	s.AddClause([]cdcl.Lit{pos(0)}, false)                           // unit
	s.AddClause([]cdcl.Lit{neg(1), pos(2)}, false)                   // binary
	s.AddClause([]cdcl.Lit{pos(3), neg(4), pos(5)}, false)           // ternary, arena
	s.AddClause([]cdcl.Lit{neg(6), pos(7), pos(1), pos(4)}, false)   // generic, arena

	var buf bytes.Buffer
	require.NoError(t, dimacs.WriteSolverCNF(&buf, s))

	reparsed, err := dimacs.Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, 8, reparsed.NumVars)
	require.Len(t, reparsed.Clauses, 4)

	// Units first, in trail order.
	require.Equal(t, []int{1}, reparsed.Clauses[0])

	// Then binaries, in lex order of watch index.
	require.ElementsMatch(t, []int{-2, 3}, reparsed.Clauses[1])

	// Then arena clauses (ternary and generic) in insertion order.
	require.ElementsMatch(t, []int{4, -5, 6}, reparsed.Clauses[2])
	require.ElementsMatch(t, []int{-7, 8, 2, 5}, reparsed.Clauses[3])
}

const sampleWCNF = `c a trivial weighted example
p wcnf 2 3 10
10 1 0
10 2 0
5 -1 -2 0
`

func TestParseWCNF(t *testing.T) {
	p, err := dimacs.ParseWCNF(strings.NewReader(sampleWCNF))
	require.NoError(t, err)
	require.Equal(t, 2, p.NumVars)
	require.Equal(t, int64(10), p.TopWeight)
	require.Len(t, p.HardClauses, 2)
	require.Len(t, p.SoftClauses, 1)
	require.Equal(t, int64(5), p.SoftClauses[0].Weight)
}
