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

// restartPolicy evolves the conflicts-before-restart threshold by either a
// geometric factor or a Luby sequence.
type restartPolicy struct {
	kind    Restart
	initial int
	factor  float64

	conflictsSince int
	threshold      int
	lubyIndex      int
}

func newRestartPolicy(opts Options) *restartPolicy {
	return &restartPolicy{
		kind:      opts.Restart,
		initial:   opts.RestartInitial,
		factor:    opts.RestartFactor,
		threshold: opts.RestartInitial,
	}
}

// onConflict bumps the since-last-restart counter and reports whether the
// threshold has been exceeded.
func (r *restartPolicy) onConflict() bool {
	r.conflictsSince++
	return r.conflictsSince > r.threshold
}

// reset is called right after a restart fires: it zeroes the counter and
// advances the threshold to the next value of the configured schedule.
func (r *restartPolicy) reset() {
	r.conflictsSince = 0
	r.lubyIndex++

	switch r.kind {
	case RestartGeometric:
		r.threshold = int(float64(r.threshold) * r.factor)
	default: // RestartLuby
		r.threshold = r.initial * luby(r.lubyIndex)
	}

	if r.threshold < 1 {
		r.threshold = 1
	}
}

// luby returns the i-th (1-indexed) term of the Luby restart sequence
// (1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, ...).
func luby(i int) int {
	i-- // the search below works on the 0-indexed position

	size, seq := 1, 0

	for size < i+1 {
		seq++
		size = 2*size + 1
	}

	for size-1 != i {
		size = (size - 1) / 2
		seq--
		i = i % size
	}

	return 1 << seq
}
