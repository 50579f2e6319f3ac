package clippings

import "sort"

// Deduplicate collapses clippings whose position ranges overlap, keeping the
// most recently timestamped member of each connected overlap group. A
// highlight that was later extended therefore replaces its earlier, shorter
// version even though the ranges are not identical.
//
// Within a group, an absent timestamp always loses to a present one; if no
// member has a timestamp, or timestamps tie, the entry appearing last in the
// source file wins. Clippings without a position range never overlap
// anything and survive untouched. Surviving entries come out in their
// original source order, which makes the pass idempotent.
func Deduplicate(entries []Clipping) []Clipping {
	if len(entries) < 2 {
		return entries
	}

	// Sort positioned entries by range start, then sweep merging
	// overlapping intervals into groups.
	var positioned []int
	for i, e := range entries {
		if e.Position != nil {
			positioned = append(positioned, i)
		}
	}

	sort.SliceStable(positioned, func(a, b int) bool {
		pa, pb := entries[positioned[a]].Position, entries[positioned[b]].Position
		if pa.Start != pb.Start {
			return pa.Start < pb.Start
		}
		return positioned[a] < positioned[b]
	})

	keep := make(map[int]bool, len(entries))
	for i, e := range entries {
		if e.Position == nil {
			keep[i] = true
		}
	}

	var group []int
	groupEnd := 0
	flush := func() {
		if len(group) > 0 {
			keep[pickLatest(entries, group)] = true
			group = nil
		}
	}

	for _, idx := range positioned {
		pos := entries[idx].Position
		if len(group) > 0 && pos.Start <= groupEnd {
			group = append(group, idx)
			if pos.End > groupEnd {
				groupEnd = pos.End
			}
			continue
		}
		flush()
		group = append(group, idx)
		groupEnd = pos.End
	}
	flush()

	result := make([]Clipping, 0, len(keep))
	for i, e := range entries {
		if keep[i] {
			result = append(result, e)
		}
	}
	return result
}

// pickLatest returns the index of the group member with the latest
// timestamp. Untimestamped members lose to timestamped ones; among equals
// the later source position wins.
func pickLatest(entries []Clipping, group []int) int {
	best := group[0]
	for _, idx := range group[1:] {
		if laterThan(entries[idx], entries[best]) || idx > best && sameTime(entries[idx], entries[best]) {
			best = idx
		}
	}
	return best
}

func laterThan(a, b Clipping) bool {
	switch {
	case a.AddedAt == nil:
		return false
	case b.AddedAt == nil:
		return true
	default:
		return a.AddedAt.After(*b.AddedAt)
	}
}

func sameTime(a, b Clipping) bool {
	if a.AddedAt == nil && b.AddedAt == nil {
		return true
	}
	return a.AddedAt != nil && b.AddedAt != nil && a.AddedAt.Equal(*b.AddedAt)
}
