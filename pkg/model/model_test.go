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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spjmurray/go-cdcl/pkg/cdcl"
	"github.com/spjmurray/go-cdcl/pkg/model"
)

// cell names a Sudoku variable: row i, column j holds digit n (0-indexed).
type cell struct {
	i, j, n int
}

//nolint:gochecknoglobals
var sudoku = [9][9]int{
	{6, 0, 0, 0, 0, 3, 2, 0, 4},
	{0, 4, 0, 2, 0, 0, 0, 9, 0},
	{0, 0, 8, 0, 0, 0, 0, 5, 0},
	{0, 0, 9, 0, 3, 0, 0, 0, 0},
	{0, 0, 0, 6, 0, 0, 0, 0, 0},
	{3, 0, 6, 0, 0, 0, 5, 4, 0},
	{8, 0, 3, 0, 0, 2, 4, 0, 0},
	{0, 0, 0, 1, 8, 0, 0, 6, 0},
	{1, 6, 5, 0, 7, 0, 0, 0, 8},
}

func sudokuRules(m *model.Model[cell]) {
	for i := range 9 {
		for j := range 9 {
			names := make([]cell, 9)

			for n := range 9 {
				names[n] = cell{i, j, n}
			}

			m.AtLeastOneOf(names...)
			m.AtMostOneOf(names...)
		}

		for n := range 9 {
			names := make([]cell, 9)

			for j := range 9 {
				names[j] = cell{i, j, n}
			}

			m.AtMostOneOf(names...)
		}
	}

	for j := range 9 {
		for n := range 9 {
			names := make([]cell, 9)

			for i := range 9 {
				names[i] = cell{i, j, n}
			}

			m.AtMostOneOf(names...)
		}
	}

	for i := 0; i < 9; i += 3 {
		for j := 0; j < 9; j += 3 {
			for n := range 9 {
				names := make([]cell, 9)

				for x := range 9 {
					names[x] = cell{i + x/3, j + x%3, n}
				}

				m.AtMostOneOf(names...)
			}
		}
	}
}

func sudokuInitialize(m *model.Model[cell]) {
	for i := range 9 {
		for j := range 9 {
			if sudoku[i][j] > 0 {
				m.Unary(cell{i, j, sudoku[i][j] - 1})
			}
		}
	}
}

func TestSudoku(t *testing.T) {
	m := model.New[cell](cdcl.DefaultOptions())

	sudokuRules(m)
	sudokuInitialize(m)

	status, err := m.Solve()
	require.NoError(t, err)
	require.Equal(t, cdcl.Sat, status)

	grid := [9][9]int{}

	for c, value := range m.Variables() {
		if value == cdcl.LTrue {
			require.Zero(t, grid[c.i][c.j], "cell %v assigned twice", c)
			grid[c.i][c.j] = c.n + 1
		}
	}

	for i := range 9 {
		for j := range 9 {
			require.NotZero(t, grid[i][j], "cell (%d,%d) left undefined", i, j)

			if sudoku[i][j] > 0 {
				require.Equal(t, sudoku[i][j], grid[i][j], "clue at (%d,%d) overwritten", i, j)
			}
		}
	}

	for i := range 9 {
		require.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, grid[i][:], "row %d", i)
	}

	for j := range 9 {
		col := make([]int, 9)
		for i := range 9 {
			col[i] = grid[i][j]
		}

		require.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, col, "column %d", j)
	}

	for bi := 0; bi < 9; bi += 3 {
		for bj := 0; bj < 9; bj += 3 {
			block := make([]int, 0, 9)

			for x := range 9 {
				block = append(block, grid[bi+x/3][bj+x%3])
			}

			require.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, block, "block (%d,%d)", bi, bj)
		}
	}
}

func TestUnsatisfiable(t *testing.T) {
	m := model.New[string](cdcl.DefaultOptions())

	m.Unary("x")
	m.NegatedUnary("x")

	status, err := m.Solve()
	require.NoError(t, err)
	require.Equal(t, cdcl.Unsat, status)
}

func TestAtMostOneOf(t *testing.T) {
	m := model.New[string](cdcl.DefaultOptions())

	m.AtLeastOneOf("a", "b", "c")
	m.AtMostOneOf("a", "b", "c")

	status, err := m.Solve()
	require.NoError(t, err)
	require.Equal(t, cdcl.Sat, status)

	count := 0

	for _, v := range m.Variables() {
		if v == cdcl.LTrue {
			count++
		}
	}

	require.Equal(t, 1, count)
}
