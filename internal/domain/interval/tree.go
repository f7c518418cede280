package interval

import (
	"cmp"
	"slices"
)

// Tree is a centered interval tree over a fixed set of items. Each node holds
// the items that contain its center point; items entirely before the center
// go left, items entirely after go right. Queries run in O(log n + k).
//
// A Tree never mutates the slice it was built from and is safe for
// concurrent queries.
type Tree[T Intervalable] struct {
	items []T
	root  *node
}

type node struct {
	center  int
	members []int // indices into Tree.items containing center
	left    *node
	right   *node
}

// NewTree builds a tree over items.
func NewTree[T Intervalable](items []T) *Tree[T] {
	all := make([]int, len(items))
	for i := range all {
		all[i] = i
	}
	t := &Tree[T]{items: items}
	t.root = t.build(all)
	return t
}

func (t *Tree[T]) build(indices []int) *node {
	if len(indices) == 0 {
		return nil
	}

	lo, hi := t.items[indices[0]].Span().Start, t.items[indices[0]].Span().End
	for _, i := range indices[1:] {
		s := t.items[i].Span()
		lo = min(lo, s.Start)
		hi = max(hi, s.End)
	}

	n := &node{center: lo + (hi-lo)/2}
	var left, right []int
	for _, i := range indices {
		s := t.items[i].Span()
		switch {
		case s.End < n.center:
			left = append(left, i)
		case s.Start > n.center:
			right = append(right, i)
		default:
			n.members = append(n.members, i)
		}
	}
	n.left = t.build(left)
	n.right = t.build(right)
	return n
}

// Len returns the number of items in the tree.
func (t *Tree[T]) Len() int {
	return len(t.items)
}

// FindOverlaps returns every item sharing at least one position with span,
// in input order, or nil. Items whose span equals span are included.
func (t *Tree[T]) FindOverlaps(span Interval) []T {
	hits := t.overlaps(t.root, span, nil)
	if len(hits) == 0 {
		return nil
	}
	slices.Sort(hits)
	out := make([]T, len(hits))
	for k, i := range hits {
		out[k] = t.items[i]
	}
	return out
}

func (t *Tree[T]) overlaps(n *node, span Interval, out []int) []int {
	if n == nil {
		return out
	}
	for _, i := range n.members {
		if t.items[i].Span().OverlapsWith(span) {
			out = append(out, i)
		}
	}
	// Left members all end before center, right members all start after it.
	if span.Start < n.center {
		out = t.overlaps(n.left, span, out)
	}
	if span.End > n.center {
		out = t.overlaps(n.right, span, out)
	}
	return out
}

// RemoveOverlaps returns the subset of items in which no two spans overlap.
// Longer spans win; between equal lengths the one starting first wins; between
// identical spans the earliest item wins. Survivors are returned unmodified,
// ordered by start position. The input slice is left untouched.
func RemoveOverlaps[T Intervalable](items []T) []T {
	if len(items) < 2 {
		return slices.Clone(items)
	}

	t := NewTree(items)

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		sa, sb := items[a].Span(), items[b].Span()
		if c := cmp.Compare(sb.Size(), sa.Size()); c != 0 {
			return c
		}
		return cmp.Compare(sa.Start, sb.Start)
	})

	removed := make([]bool, len(items))
	var hits []int
	for _, i := range order {
		if removed[i] {
			continue
		}
		hits = t.overlaps(t.root, items[i].Span(), hits[:0])
		for _, j := range hits {
			if j != i {
				removed[j] = true
			}
		}
	}

	kept := make([]T, 0, len(items))
	for i, item := range items {
		if !removed[i] {
			kept = append(kept, item)
		}
	}
	slices.SortStableFunc(kept, func(a, b T) int {
		return cmp.Compare(a.Span().Start, b.Span().Start)
	})
	return kept
}
