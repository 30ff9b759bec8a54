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
	"math/rand"

	"github.com/rhartert/yagh"
)

// heuristic is a priority queue over unassigned decision-candidate
// variables keyed by activity, plus the companion phase-selection policy.
// It supports VSIDS, CHB and LRB activity updates over the same queue.
type heuristic struct {
	mode   Branching
	phase  Phase
	heap   *yagh.IntMap[float64]
	rng    *rand.Rand

	varInc      float64
	varDecay    float64
	stepSize    float64
	stepSizeDec float64
	stepSizeMin float64
	rewardOff   float64
	rewardMult  float64

	randomFreq      float64
	antiExploration bool

	cachingOn  int
	cachingOff int
}

func newHeuristic(opts Options) *heuristic {
	return &heuristic{
		mode:            opts.Branching,
		phase:           opts.Phase,
		heap:            yagh.New[float64](0),
		rng:             rand.New(rand.NewSource(opts.RandomSeed)),
		varInc:          1,
		varDecay:        1.0 / 0.95,
		stepSize:        opts.StepSizeInit,
		stepSizeDec:     opts.StepSizeDec,
		stepSizeMin:     opts.StepSizeMin,
		rewardOff:       opts.RewardOffset,
		rewardMult:      opts.RewardMultiplier,
		randomFreq:      opts.RandomFreq,
		antiExploration: opts.AntiExploration,
		cachingOn:       opts.PhaseCachingOn,
		cachingOff:      opts.PhaseCachingOff,
	}
}

// addVar registers a freshly allocated variable with zero activity.
func (h *heuristic) addVar(v Var) {
	h.heap.Put(int(v), 0)
}

// bumpVSIDS increments v's activity by the current additive step,
// rescaling every activity and the step on overflow. The step itself
// grows once per conflict in decayVSIDS.
func (h *heuristic) bumpVSIDS(t *trail, v Var) {
	t.vars[v].activity += h.varInc
	if t.vars[v].activity > 1e100 {
		for i := range t.vars {
			t.vars[i].activity *= 1e-100
		}

		h.varInc *= 1e-100
	}

	if t.value(v) == LUndef {
		h.heap.Put(int(v), -t.vars[v].activity)
	}
}

func (h *heuristic) decayVSIDS() {
	h.varInc *= h.varDecay
}

// bumpConflictIndex records the conflict at which v participated, used by
// CHB's reward-at-assignment-time scheme.
func (h *heuristic) bumpConflictIndex(t *trail, v Var, conflictIdx uint64) {
	t.vars[v].lastConfl = conflictIdx
}

// rewardCHB applies the "conflict history" reward to v, using the age
// since its last bump. Nothing in the package calls it: backjumps go
// through requeue, and CHB activity changes only in bump.
func (h *heuristic) rewardCHB(t *trail, v Var, conflictIdx uint64) {
	age := conflictIdx - t.vars[v].lastConfl
	if age == 0 {
		age = 1
	}

	reward := h.rewardMult / float64(age)
	t.vars[v].activity = (1-h.stepSize)*t.vars[v].activity + h.stepSize*reward

	if h.stepSize > h.stepSizeMin {
		h.stepSize -= h.stepSizeDec
	}
}

// bump dispatches to the configured branching scheme's activity update.
func (h *heuristic) bump(t *trail, v Var, conflictIdx uint64) {
	switch h.mode {
	case BranchingCHB:
		h.bumpConflictIndex(t, v, conflictIdx)
		t.vars[v].activity += h.rewardOff / float64(conflictIdx+1)
		if t.value(v) == LUndef {
			h.heap.Put(int(v), -t.vars[v].activity)
		}
	case BranchingLRB:
		t.vars[v].activity++
		if t.value(v) == LUndef {
			h.heap.Put(int(v), -t.vars[v].activity)
		}
	default: // BranchingVSIDS
		h.bumpVSIDS(t, v)
	}
}

// decay applies the per-conflict decay of the configured scheme.
func (h *heuristic) decay() {
	if h.mode == BranchingVSIDS {
		h.decayVSIDS()
	}
}

// requeue puts v back in the priority queue, applying the anti-exploration
// decay when the variable has been idle a long time.
func (h *heuristic) requeue(t *trail, v Var, conflictIdx uint64) {
	if h.antiExploration && h.mode == BranchingVSIDS {
		age := conflictIdx - t.vars[v].lastConfl
		if age > 0 {
			decay := 1.0

			// 0.95^age via repeated squaring to avoid a dependency on math.Pow
			// for a handful of iterations; age is usually small.
			base, exp := 0.95, age
			for exp > 0 {
				if exp&1 == 1 {
					decay *= base
				}

				base *= base
				exp >>= 1
			}

			t.vars[v].activity *= decay
		}

		t.vars[v].lastConfl = conflictIdx
	}

	h.heap.Put(int(v), -t.vars[v].activity)
}

// nextVar pops the next decision candidate: a uniformly random unassigned
// variable with probability randomFreq, otherwise the highest-activity
// unassigned non-eliminated variable. Stale heap entries are discarded
// lazily.
func (h *heuristic) nextVar(t *trail) (Var, bool) {
	if h.randomFreq > 0 && h.rng.Float64() < h.randomFreq {
		if v, ok := h.randomUnassigned(t); ok {
			return v, true
		}
	}

	for {
		entry, ok := h.heap.Pop()
		if !ok {
			return VarUndef, false
		}

		v := Var(entry.Elem)
		if t.value(v) != LUndef || t.vars[v].eliminated || !t.vars[v].decisionOK {
			continue
		}

		return v, true
	}
}

func (h *heuristic) randomUnassigned(t *trail) (Var, bool) {
	var candidates []Var

	for v := Var(0); int(v) < len(t.vars); v++ {
		if t.value(v) == LUndef && !t.vars[v].eliminated && t.vars[v].decisionOK {
			candidates = append(candidates, v)
		}
	}

	if len(candidates) == 0 {
		return VarUndef, false
	}

	return candidates[h.rng.Intn(len(candidates))], true
}

// cachingWindowOn implements the on/off duty cycle that toggles phase
// caching periodically: cachingOn conflicts with caching enabled, then
// cachingOff conflicts with it disabled, repeating.
func (h *heuristic) cachingWindowOn(conflicts uint64) bool {
	cycle := uint64(h.cachingOn + h.cachingOff)
	if cycle == 0 {
		return true
	}

	return conflicts%cycle < uint64(h.cachingOn)
}

// selectPhase applies the configured phase policy for a fresh decision on v.
func (h *heuristic) selectPhase(t *trail, v Var, cachingWindowOn bool) bool {
	switch h.phase {
	case PhaseAlwaysTrue:
		return false // NewLit(v, negated=false) => true
	case PhaseAlwaysFalse:
		return true
	case PhaseRandom:
		return h.rng.Intn(2) == 0
	default: // PhaseCaching
		if cachingWindowOn && t.vars[v].phase != LUndef {
			return t.vars[v].phase == LFalse
		}

		return true
	}
}

// forgetPhasesAbove clears the cached phase of every variable unassigned
// by a backjump crossing level.
func (h *heuristic) forgetPhasesAbove(t *trail, v Var) {
	t.vars[v].phase = LUndef
}
