// Package organize produces the single deterministic ordering of an
// asset list under the active sort and organization settings, and
// partitions ordered lists into year / year-month buckets for rendering.
// The gallery grid and the detail-view navigation both call into the
// same functions, so repeated calls with identical input must produce
// identical output order.
package organize

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/markrai/seen-engine/pkg/asset"
	"github.com/markrai/seen-engine/pkg/dateinfer"
)

// filenameCollator does case-insensitive locale comparison of filenames.
// collate.Collator is not safe for concurrent use, so comparisons
// serialize on collatorMu.
var (
	filenameCollator = collate.New(language.Und, collate.IgnoreCase)
	collatorMu       sync.Mutex
)

// Organize returns a new slice holding the input assets in their final
// display order. It is a pure function: the input slice is not touched.
func Organize(assets []asset.Asset, toggles asset.OrganizationToggles, spec asset.SortSpec) []asset.Asset {
	out := make([]asset.Asset, len(assets))
	copy(out, assets)

	switch spec.Field {
	case asset.SortFilename:
		// Non-date fields sort on the literal value regardless of the
		// organization toggles.
		stableSort(out, spec.Order, func(a, b asset.Asset) int {
			return compareFilenames(a.Filename, b.Filename)
		})
		return out
	case asset.SortSize:
		stableSort(out, spec.Order, func(a, b asset.Asset) int {
			switch {
			case a.SizeBytes < b.SizeBytes:
				return -1
			case a.SizeBytes > b.SizeBytes:
				return 1
			}
			return 0
		})
		return out
	case asset.SortNone:
		if !toggles.PrioritizeFolderStructure && !toggles.PrioritizeFilenameDate {
			// Identity: keep whatever order the server returned.
			return out
		}
	}

	return sortByDate(out, toggles, spec)
}

// sortByDate orders assets by their inferred timestamp. Assets with no
// derivable timestamp sink to the end in input order, for both
// directions.
func sortByDate(out []asset.Asset, toggles asset.OrganizationToggles, spec asset.SortSpec) []asset.Asset {
	pref := metaPreference(spec.Field)

	type keyed struct {
		a  asset.Asset
		ts int64
	}
	dated := make([]keyed, 0, len(out))
	undated := make([]asset.Asset, 0)
	for _, a := range out {
		if ts, ok := dateinfer.SortTimestamp(a, toggles, pref); ok {
			dated = append(dated, keyed{a: a, ts: ts})
		} else {
			undated = append(undated, a)
		}
	}

	dir := direction(spec.Order)
	sort.SliceStable(dated, func(i, j int) bool {
		if dated[i].ts == dated[j].ts {
			return false
		}
		if dir < 0 {
			return dated[i].ts > dated[j].ts
		}
		return dated[i].ts < dated[j].ts
	})

	result := out[:0]
	for _, k := range dated {
		result = append(result, k.a)
	}
	result = append(result, undated...)
	return result
}

// metaPreference picks which metadata timestamp dominates the fallback
// stage for a given sort field.
func metaPreference(f asset.SortField) dateinfer.MetaPreference {
	if f == asset.SortMtime {
		return dateinfer.PreferMtime
	}
	return dateinfer.PreferTakenAt
}

// stableSort sorts with a three-way comparator, applying descending
// order by negating the comparator rather than reversing the slice, so
// that ties always keep their input order.
func stableSort(items []asset.Asset, order asset.SortOrder, cmp func(a, b asset.Asset) int) {
	dir := direction(order)
	sort.SliceStable(items, func(i, j int) bool {
		return dir*cmp(items[i], items[j]) < 0
	})
}

func direction(order asset.SortOrder) int {
	if order == asset.OrderDesc {
		return -1
	}
	return 1
}

// compareFilenames is the case-insensitive locale comparison used for
// the filename sort field.
func compareFilenames(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return filenameCollator.CompareString(a, b)
}
