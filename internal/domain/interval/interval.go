// Package interval resolves overlaps between closed integer spans.
// Trie emits are intervals; when overlapping matches must be suppressed the
// trie hands its emit list to RemoveOverlaps.
package interval

import "fmt"

// Interval is a closed span [Start, End] of positions.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Intervalable is anything that occupies an Interval.
type Intervalable interface {
	Span() Interval
}

// Span returns the interval itself, so Interval and every type embedding it
// satisfy Intervalable.
func (i Interval) Span() Interval {
	return i
}

// Size is the number of positions covered (End - Start + 1).
func (i Interval) Size() int {
	return i.End - i.Start + 1
}

// OverlapsWith reports whether the two spans share at least one position.
func (i Interval) OverlapsWith(other Interval) bool {
	return i.Start <= other.End && i.End >= other.Start
}

// OverlapsWithPoint reports whether point lies inside the span.
func (i Interval) OverlapsWithPoint(point int) bool {
	return i.Start <= point && point <= i.End
}

func (i Interval) String() string {
	return fmt.Sprintf("%d:%d", i.Start, i.End)
}
