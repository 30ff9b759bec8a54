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

// FinalCheckResult is the only non-UNSAT-or-SAT answer an Extension may
// give during final_check.
type FinalCheckResult int

const (
	FinalCheckDone FinalCheckResult = iota
	FinalCheckContinue
	FinalCheckGiveUp
)

// ResolveConflictResult reports whether an Extension handled its own
// conflict resolution and backjumping.
type ResolveConflictResult int

const (
	ResolveUnhandled ResolveConflictResult = iota // fall through to the core analyzer
	ResolveHandled                                 // the extension did everything
	ResolveConflict                                // the extension itself hit a dead end
)

// Extension is the bridge to an external "theory" collaborator: an opaque
// propagator participating in the same trail. A nil Extension is legal
// and simply never contributes External watches.
type Extension interface {
	// Propagate is called during unit propagation for every External
	// watch on a literal that just became true; it reports whether the
	// watch should be kept and may raise a conflict by returning false
	// with ok=false.
	Propagate(lit Lit, idx int) (keep, ok bool)

	// GetAntecedents appends the antecedent literals of an External
	// justification to out, for use during conflict analysis.
	GetAntecedents(lit Lit, idx int, out []Lit) []Lit

	// ResolveConflict gives the extension a chance to produce its own
	// lemma and backjump instead of the core analyzer.
	ResolveConflict() ResolveConflictResult

	// Check is invoked from final_check when the core has no more
	// decisions to make.
	Check() FinalCheckResult

	// Push/Pop/GC mirror the core's own lifecycle hooks.
	Push()
	Pop(n int)
	GC()

	// Asserted notifies the extension that an external variable's
	// literal was just assigned.
	Asserted(lit Lit)
}

// NoExtension is returned by nothing; it exists so callers without a
// theory collaborator can leave Options.Extension nil instead of
// implementing a no-op Extension.
var _ Extension = (*NoExtension)(nil)

// NoExtension is a trivial Extension that keeps every watch, never
// conflicts and never has extra work to do.
type NoExtension struct{}

func (NoExtension) Propagate(Lit, int) (bool, bool)         { return true, true }
func (NoExtension) GetAntecedents(Lit, int, []Lit) []Lit     { return nil }
func (NoExtension) ResolveConflict() ResolveConflictResult   { return ResolveUnhandled }
func (NoExtension) Check() FinalCheckResult                  { return FinalCheckDone }
func (NoExtension) Push()                                    {}
func (NoExtension) Pop(int)                                  {}
func (NoExtension) GC()                                      {}
func (NoExtension) Asserted(Lit)                             {}
