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

import "log/slog"

// Branching selects the decision-heuristic activity scheme.
type Branching string

const (
	BranchingVSIDS Branching = "vsids"
	BranchingCHB   Branching = "chb"
	BranchingLRB   Branching = "lrb"
)

// Phase selects the phase-selection policy.
type Phase string

const (
	PhaseAlwaysTrue  Phase = "always_true"
	PhaseAlwaysFalse Phase = "always_false"
	PhaseCaching     Phase = "caching"
	PhaseRandom      Phase = "random"
)

// Restart selects the restart-threshold schedule.
type Restart string

const (
	RestartGeometric Restart = "geometric"
	RestartLuby      Restart = "luby"
)

// GCStrategy selects the learned-clause reduction strategy.
type GCStrategy string

const (
	GCGlue      GCStrategy = "glue"
	GCPSM       GCStrategy = "psm"
	GCGluePSM   GCStrategy = "glue_psm"
	GCPSMGlue   GCStrategy = "psm_glue"
	GCDynPSM    GCStrategy = "dyn_psm"
)

// Options enumerates every configuration scalar and policy choice the
// solver accepts.
type Options struct {
	Branching Branching
	Phase     Phase
	Restart   Restart
	GC        GCStrategy

	RandomFreq      float64
	RestartInitial  int
	RestartFactor   float64
	GCInitial       int
	GCIncrement     int
	GCSmallLBD      int
	GCK             int
	SimplifyMax     int
	SimplifyMult1   float64
	SimplifyMult2   float64
	MaxConflicts    int64
	MaxRestarts     int64
	MaxInprocess    int
	StepSizeInit    float64
	StepSizeDec     float64
	StepSizeMin     float64
	RewardOffset    float64
	RewardMultiplier float64
	PhaseCachingOn  int
	PhaseCachingOff int
	RandomSeed      int64
	AntiExploration bool
	MinimizeLemmas  bool

	// Checkpoint is polled once per iteration of Check's search loop,
	// before its propagation round; it is not polled inside conflict
	// analysis or lemma minimization. A nil Checkpoint never fires.
	Checkpoint Checkpoint

	// Logger receives restart and GC diagnostics at Debug level;
	// cancellation is reported through Check's error, not logged.
	// Defaults to slog.Default() when nil.
	Logger *slog.Logger

	// Extension is the optional "theory" collaborator a caller can wire
	// in to participate in the same trail.
	Extension Extension
}

// DefaultOptions returns the baseline configuration used when the caller
// supplies none.
func DefaultOptions() Options {
	return Options{
		Branching:        BranchingVSIDS,
		Phase:            PhaseCaching,
		Restart:          RestartLuby,
		GC:               GCGlue,
		RandomFreq:       0.02,
		RestartInitial:   100,
		RestartFactor:    2.0,
		GCInitial:        2000,
		GCIncrement:      300,
		GCSmallLBD:       3,
		GCK:              8,
		SimplifyMax:      2_000_000,
		SimplifyMult1:    1.5,
		SimplifyMult2:    8.0,
		MaxConflicts:     -1,
		MaxRestarts:      -1,
		MaxInprocess:     1,
		StepSizeInit:     0.4,
		StepSizeDec:      0.000001,
		StepSizeMin:      0.06,
		RewardOffset:     1_000_000,
		RewardMultiplier: 0.9,
		PhaseCachingOn:   400,
		PhaseCachingOff:  100,
		RandomSeed:       1,
		AntiExploration:  true,
		MinimizeLemmas:   true,
	}
}

// Checkpoint lets a caller cooperatively cancel a Check() in progress.
type Checkpoint interface {
	// Done reports whether the resource limit has fired.
	Done() bool
	// Reason describes why Done became true, for the "unknown" result.
	Reason() string
}
