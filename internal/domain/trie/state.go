package trie

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// StateID is a handle to a State inside the arena of the trie that owns it.
type StateID int32

// RootState is the handle of the root state of every trie.
const RootState StateID = 0

const noState StateID = -1

// output is a keyword terminating at a state, with its rune length cached so
// emit positions can be computed without recounting.
type output struct {
	keyword string
	length  int
}

// State is a node of the keyword trie: goto transitions, the keywords that
// end here (including those inherited through the failure link) and the
// failure link itself.
//
// States are created and linked while a Builder builds a trie and are never
// written afterwards.
type State struct {
	depth   int
	success map[rune]StateID
	emits   []output // sorted by keyword, unique
	failure StateID
}

func newState(depth int) State {
	return State{depth: depth, failure: noState}
}

// Depth is the distance from the root; the root has depth 0.
func (s State) Depth() int {
	return s.depth
}

// IsRoot reports whether this is the root state.
func (s State) IsRoot() bool {
	return s.depth == 0
}

// Failure returns the failure link. The root links to itself.
func (s State) Failure() StateID {
	return s.failure
}

// NextState returns the goto transition for r. Unmatched runes at the root
// loop back to the root, so the root always has a transition.
func (s State) NextState(r rune) (StateID, bool) {
	return s.nextState(r, false)
}

// NextStateIgnoreRootState is NextState without the root self-loop.
func (s State) NextStateIgnoreRootState(r rune) (StateID, bool) {
	return s.nextState(r, true)
}

func (s State) nextState(r rune, ignoreRootState bool) (StateID, bool) {
	if next, ok := s.success[r]; ok {
		return next, true
	}
	if !ignoreRootState && s.depth == 0 {
		return RootState, true
	}
	return noState, false
}

// Emits returns the keywords reported when the automaton reaches this state,
// in lexicographic order.
func (s State) Emits() []string {
	out := make([]string, len(s.emits))
	for i, o := range s.emits {
		out[i] = o.keyword
	}
	return out
}

// Transitions returns the runes with an outgoing edge, in ascending order.
func (s State) Transitions() []rune {
	runes := make([]rune, 0, len(s.success))
	for r := range s.success {
		runes = append(runes, r)
	}
	slices.Sort(runes)
	return runes
}

// States returns the direct children, ordered like Transitions.
func (s State) States() []StateID {
	transitions := s.Transitions()
	children := make([]StateID, len(transitions))
	for i, r := range transitions {
		children[i] = s.success[r]
	}
	return children
}

func (s *State) addEmit(keyword string) {
	s.insertOutput(output{keyword: keyword, length: utf8.RuneCountInString(keyword)})
}

func (s *State) addEmits(outputs []output) {
	for _, o := range outputs {
		s.insertOutput(o)
	}
}

func (s *State) insertOutput(o output) {
	i, found := slices.BinarySearchFunc(s.emits, o.keyword, func(e output, k string) int {
		return strings.Compare(e.keyword, k)
	})
	if !found {
		s.emits = slices.Insert(s.emits, i, o)
	}
}

// arena owns every state of one trie; StateIDs index into it.
type arena []State

// addState returns the child of from for r, creating it one level deeper
// when no edge exists yet.
func (a *arena) addState(from StateID, r rune) StateID {
	if next, ok := (*a)[from].NextStateIgnoreRootState(r); ok {
		return next
	}
	id := StateID(len(*a))
	*a = append(*a, newState((*a)[from].depth+1))

	parent := &(*a)[from]
	if parent.success == nil {
		parent.success = make(map[rune]StateID)
	}
	parent.success[r] = id
	return id
}

// addPath folds addState over every rune of keyword and returns the state
// spelling the whole keyword.
func (a *arena) addPath(from StateID, keyword string) StateID {
	current := from
	for _, r := range keyword {
		current = a.addState(current, r)
	}
	return current
}

// constructFailureStates links every state to the deepest proper suffix of
// its path present in the trie, breadth first, and copies the emits of that
// suffix state so every suffix match is reported.
func (a arena) constructFailureStates() {
	root := &a[RootState]
	root.failure = RootState

	queue := make([]StateID, 0, len(a))
	for _, child := range root.States() {
		a[child].failure = RootState
		queue = append(queue, child)
	}

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		for _, r := range a[current].Transitions() {
			target := a[current].success[r]
			queue = append(queue, target)

			trace := a[current].failure
			next, ok := a[trace].NextState(r)
			for !ok {
				trace = a[trace].failure
				next, ok = a[trace].NextState(r)
			}

			a[target].failure = next
			a[target].addEmits(a[next].emits)
		}
	}
}

// foldCase lower-cases rune by rune, so the result has the same rune count
// as s (strings.ToLower may expand some runes).
func foldCase(s string) string {
	return strings.Map(unicode.ToLower, s)
}
