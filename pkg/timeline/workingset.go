// Package timeline tracks which offset window of a server-side result
// set is currently loaded, accumulates the fetched assets into a
// deduplicated working set, and provides the debounce primitive used to
// coalesce reset triggers.
package timeline

import "github.com/markrai/seen-engine/pkg/asset"

// WorkingSet is the in-memory ordered collection of currently loaded
// assets for one logical query. No id ever appears twice; the first
// occurrence wins. Deletions are logical, tracked in an exclusion set
// rather than spliced out, until a refetch supersedes the whole set.
//
// WorkingSet is not safe for concurrent use; the owning Cursor guards it.
type WorkingSet struct {
	items   []asset.Asset
	seen    map[int64]struct{}
	deleted map[int64]struct{}
}

// NewWorkingSet returns an empty working set.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{
		seen:    make(map[int64]struct{}),
		deleted: make(map[int64]struct{}),
	}
}

// Append adds items at the end, skipping ids already present. It
// returns how many items were actually inserted.
func (w *WorkingSet) Append(items []asset.Asset) int {
	added := 0
	for _, a := range items {
		if _, ok := w.seen[a.ID]; ok {
			continue
		}
		w.seen[a.ID] = struct{}{}
		w.items = append(w.items, a)
		added++
	}
	return added
}

// Prepend inserts items before the existing ones, preserving their
// given order and skipping ids already present. It returns how many
// items were actually inserted.
func (w *WorkingSet) Prepend(items []asset.Asset) int {
	fresh := make([]asset.Asset, 0, len(items))
	for _, a := range items {
		if _, ok := w.seen[a.ID]; ok {
			continue
		}
		w.seen[a.ID] = struct{}{}
		fresh = append(fresh, a)
	}
	if len(fresh) == 0 {
		return 0
	}
	w.items = append(fresh, w.items...)
	return len(fresh)
}

// Has reports whether the id is loaded, deleted or not.
func (w *WorkingSet) Has(id int64) bool {
	_, ok := w.seen[id]
	return ok
}

// MarkDeleted logically removes an id. It reports whether the call
// changed anything (the id was loaded and not already deleted).
func (w *WorkingSet) MarkDeleted(id int64) bool {
	if _, ok := w.seen[id]; !ok {
		return false
	}
	if _, ok := w.deleted[id]; ok {
		return false
	}
	w.deleted[id] = struct{}{}
	return true
}

// IsDeleted reports whether the id has been logically removed.
func (w *WorkingSet) IsDeleted(id int64) bool {
	_, ok := w.deleted[id]
	return ok
}

// Live returns the non-deleted assets in load order.
func (w *WorkingSet) Live() []asset.Asset {
	out := make([]asset.Asset, 0, len(w.items))
	for _, a := range w.items {
		if _, ok := w.deleted[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

// LiveLen counts the non-deleted assets.
func (w *WorkingSet) LiveLen() int {
	return len(w.items) - len(w.deleted)
}

// LoadedLen counts all loaded assets, deleted ones included.
func (w *WorkingSet) LoadedLen() int {
	return len(w.items)
}

// DeletedLen counts the logically removed assets.
func (w *WorkingSet) DeletedLen() int {
	return len(w.deleted)
}
