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

// watchKind discriminates the tagged watch-entry union.
type watchKind uint8

const (
	watchBinary watchKind = iota
	watchTernary
	watchClause
	watchExternal
)

// watch guarding clause literal ℓ lives in the list indexed by ¬ℓ:
// propagate examines it when ¬ℓ becomes true, i.e. when ℓ becomes false.
type watch struct {
	kind    watchKind
	other   Lit       // Binary: the other literal of the pair.
	l1, l2  Lit       // Ternary: the two companion literals.
	blocked Lit       // Clause: a cheap satisfaction hint.
	ref     ClauseRef // Clause: the arena handle.
	learned bool      // Binary: whether the pair came from a learned clause.
	extIdx  int        // External: opaque index resolved by the extension.
}

// watchIndex is the per-literal vector-of-watches structure.
type watchIndex struct {
	lists [][]watch
}

func newWatchIndex() *watchIndex {
	return &watchIndex{}
}

// ensure grows the index so literals of v are valid without a bounds check.
func (w *watchIndex) ensure(v Var) {
	need := 2*int(v) + 2
	for len(w.lists) < need {
		w.lists = append(w.lists, nil)
	}
}

func (w *watchIndex) listFor(l Lit) []watch {
	return w.lists[l]
}

func (w *watchIndex) add(l Lit, e watch) {
	w.lists[l] = append(w.lists[l], e)
}

// addBinary records the watch pair for a binary clause {l, other}.
func (w *watchIndex) addBinary(l, other Lit, learned bool) {
	w.add(l.Not(), watch{kind: watchBinary, other: other, learned: learned})
}

// removeBinary deletes the first binary watch for `other` from ¬l's list.
func (w *watchIndex) removeBinary(l, other Lit) {
	list := w.lists[l.Not()]
	for i, e := range list {
		if e.kind == watchBinary && e.other == other {
			list[i] = list[len(list)-1]
			w.lists[l.Not()] = list[:len(list)-1]
			return
		}
	}
}

// addTernary records the watch for a ternary clause watched on l, with the
// two companion literals a and b.
func (w *watchIndex) addTernary(l, a, b Lit) {
	w.add(l.Not(), watch{kind: watchTernary, l1: a, l2: b})
}

func (w *watchIndex) removeTernary(l, a, b Lit) {
	list := w.lists[l.Not()]
	for i, e := range list {
		if e.kind == watchTernary && e.l1 == a && e.l2 == b {
			list[i] = list[len(list)-1]
			w.lists[l.Not()] = list[:len(list)-1]
			return
		}
	}
}

// addClause records a generic clause watch on l with blocked literal b.
func (w *watchIndex) addClause(l, blocked Lit, ref ClauseRef) {
	w.add(l.Not(), watch{kind: watchClause, blocked: blocked, ref: ref})
}

// removeClause scans for and deletes the watch entry naming ref.
func (w *watchIndex) removeClause(l Lit, ref ClauseRef) {
	list := w.lists[l.Not()]
	for i, e := range list {
		if e.kind == watchClause && e.ref == ref {
			list[i] = list[len(list)-1]
			w.lists[l.Not()] = list[:len(list)-1]
			return
		}
	}
}

func (w *watchIndex) addExternal(l Lit, idx int) {
	w.add(l.Not(), watch{kind: watchExternal, extIdx: idx})
}

// sortWatches canonicalizes each list so binary/ternary entries precede
// longer ones, letting analyzer shortcuts bail out early.
func (w *watchIndex) sortWatches() {
	for i, list := range w.lists {
		if len(list) < 2 {
			continue
		}

		sorted := make([]watch, 0, len(list))

		for _, e := range list {
			if e.kind == watchBinary || e.kind == watchTernary {
				sorted = append(sorted, e)
			}
		}

		for _, e := range list {
			if e.kind != watchBinary && e.kind != watchTernary {
				sorted = append(sorted, e)
			}
		}

		w.lists[i] = sorted
	}
}
