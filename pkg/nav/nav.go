// Package nav reconciles the detail view's position when the item being
// viewed is deleted or when the underlying ordered list is refetched.
package nav

// Resolution is the item to display after a deletion.
type Resolution struct {
	NextID    int64
	NextIndex int
}

// ResolveNext computes the successor of deletedID within orderedIDs.
//
// When deletedID sits at position p, the successor is whatever occupies
// position p after removal (originally p+1), or the new last item when p
// was the last index. When deletedID is not in the list at all — a
// concurrent refetch already dropped it — the call is idempotent:
// lastKnownIndex is clamped to the current bounds and that item is the
// successor. ok is false only when nothing remains to show, in which
// case the caller must navigate to a fallback listing view.
func ResolveNext(orderedIDs []int64, deletedID int64, lastKnownIndex int) (Resolution, bool) {
	p := indexOf(orderedIDs, deletedID)
	if p < 0 {
		return clampTo(orderedIDs, lastKnownIndex)
	}

	remaining := len(orderedIDs) - 1
	if remaining == 0 {
		return Resolution{}, false
	}
	next := p
	if next >= remaining {
		next = remaining - 1
	}
	// Index next in the post-removal list; skip over the removed slot
	// when mapping back to the original slice.
	orig := next
	if orig >= p {
		orig++
	}
	return Resolution{NextID: orderedIDs[orig], NextIndex: next}, true
}

// RemoveID returns ids without the first occurrence of id, for keeping
// an externally supplied filtered id list in step with a deletion. The
// input slice is not modified.
func RemoveID(ids []int64, id int64) []int64 {
	p := indexOf(ids, id)
	if p < 0 {
		out := make([]int64, len(ids))
		copy(out, ids)
		return out
	}
	out := make([]int64, 0, len(ids)-1)
	out = append(out, ids[:p]...)
	out = append(out, ids[p+1:]...)
	return out
}

func clampTo(ids []int64, index int) (Resolution, bool) {
	if len(ids) == 0 {
		return Resolution{}, false
	}
	if index < 0 {
		index = 0
	}
	if index >= len(ids) {
		index = len(ids) - 1
	}
	return Resolution{NextID: ids[index], NextIndex: index}, true
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
