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

// Command gosat is a DIMACS CNF command-line driver for pkg/cdcl.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/spjmurray/go-cdcl/pkg/cdcl"
	"github.com/spjmurray/go-cdcl/pkg/dimacs"
)

var startTime time.Time

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "DIMACS CNF file to solve",
			Required: true,
		},
		&cli.Int64Flag{
			Name:  "max-conflicts",
			Usage: "abandon search after this many conflicts (-1 for unbounded)",
			Value: -1,
		},
		&cli.StringFlag{
			Name:  "assume",
			Usage: "comma-separated signed literals to assume, e.g. 1,-2,3",
		},
		&cli.StringFlag{
			Name:  "branching",
			Usage: "decision heuristic: vsids, chb or lrb",
			Value: string(cdcl.BranchingVSIDS),
		},
		&cli.StringFlag{
			Name:  "restart",
			Usage: "restart schedule: luby or geometric",
			Value: string(cdcl.RestartLuby),
		},
		&cli.StringFlag{
			Name:  "gc",
			Usage: "learned-clause reduction strategy: glue, psm, glue_psm, psm_glue or dyn_psm",
			Value: string(cdcl.GCGlue),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "print problem and search statistics",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "abandon search after this many seconds (0 for unbounded)",
			Value: 0,
		},
	}
}

func printProblemStatistics(p *dimacs.Problem) {
	fmt.Printf("c ============================[ Problem Statistics ]=============================\n")
	fmt.Printf("c |  Number of variables:  %12d                                         |\n", p.NumVars)
	fmt.Printf("c |  Number of clauses:    %12d                                         |\n", len(p.Clauses))
	fmt.Printf("c ================================================================================\n")
}

func printSearchStatistics(s cdcl.Stats) {
	elapsed := time.Since(startTime).Seconds()
	fmt.Printf("c ================================================================================\n")
	fmt.Printf("c restarts: %12d\n", s.Restarts)
	fmt.Printf("c conflicts: %12d (%.02f / sec)\n", s.Conflicts, float64(s.Conflicts)/elapsed)
	fmt.Printf("c decisions: %12d (%.02f / sec)\n", s.Decisions, float64(s.Decisions)/elapsed)
	fmt.Printf("c propagations: %12d (%.02f / sec)\n", s.Propagations, float64(s.Propagations)/elapsed)
	fmt.Printf("c gc sweeps: %12d\n", s.GCSweeps)
	fmt.Printf("c clauses learned: %12d\n", s.ClausesLearned)
	fmt.Printf("c clauses deleted: %12d\n", s.ClausesDeleted)
	fmt.Printf("c cpu time: %12f\n", elapsed)
}

// deadline is a cdcl.Checkpoint backed by a wall-clock cutoff.
type deadline struct {
	at time.Time
}

func (d deadline) Done() bool {
	return !d.at.IsZero() && time.Now().After(d.at)
}

func (d deadline) Reason() string {
	return "timeout exceeded"
}

func parseAssumptions(s *cdcl.Solver, spec string) ([]cdcl.Lit, error) {
	if spec == "" {
		return nil, nil
	}

	var lits []cdcl.Lit

	var n int

	for _, tok := range splitComma(spec) {
		if _, err := fmt.Sscanf(tok, "%d", &n); err != nil {
			return nil, fmt.Errorf("invalid assumption %q: %w", tok, err)
		}

		if n == 0 || abs(n) > s.NumVars() {
			return nil, fmt.Errorf("assumption %d out of range 1..%d", n, s.NumVars())
		}

		lits = append(lits, cdcl.NewLit(cdcl.Var(abs(n)-1), n < 0))
	}

	return lits, nil
}

func splitComma(s string) []string {
	var out []string

	start := 0

	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}

	out = append(out, s[start:])

	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

func setInterrupt(logger *slog.Logger) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("interrupted")
		fmt.Println("\ns UNKNOWN")
		os.Exit(0)
	}()
}

func run(c *cli.Context) error {
	logger := slog.Default()
	setInterrupt(logger)

	opts := cdcl.DefaultOptions()
	opts.Branching = cdcl.Branching(c.String("branching"))
	opts.Restart = cdcl.Restart(c.String("restart"))
	opts.GC = cdcl.GCStrategy(c.String("gc"))
	opts.MaxConflicts = c.Int64("max-conflicts")
	opts.Logger = logger

	if seconds := c.Int("timeout"); seconds > 0 {
		opts.Checkpoint = deadline{at: startTime.Add(time.Duration(seconds) * time.Second)}
	}

	solver := cdcl.New(opts)

	fp, err := os.Open(c.String("input"))
	if err != nil {
		return err
	}
	defer fp.Close()

	problem, err := dimacs.Load(solver, fp)
	if err != nil {
		return err
	}

	if c.Bool("verbose") {
		printProblemStatistics(problem)
	}

	assumptions, err := parseAssumptions(solver, c.String("assume"))
	if err != nil {
		return err
	}

	status, core, err := solver.Check(assumptions)

	if c.Bool("verbose") {
		printSearchStatistics(solver.Stats())
	}

	if err != nil {
		fmt.Println("\ns UNKNOWN")
		return err
	}

	switch status {
	case cdcl.Sat:
		fmt.Println("\ns SATISFIABLE")

		return dimacs.WriteModel(os.Stdout, solver)
	case cdcl.Unsat:
		fmt.Println("\ns UNSATISFIABLE")

		if len(core) > 0 {
			fmt.Print("c core ")

			for _, l := range core {
				fmt.Printf("%d ", l.Var()+1)
			}

			fmt.Println()
		}
	default:
		fmt.Println("\ns UNKNOWN")
	}

	return nil
}

func init() {
	startTime = time.Now()
}

func main() {
	app := &cli.App{
		Name:  "gosat",
		Usage: "a CDCL SAT solver",
		Flags: flags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
