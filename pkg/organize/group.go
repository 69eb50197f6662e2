package organize

import (
	"sort"
	"strconv"
	"strings"

	"github.com/markrai/seen-engine/pkg/asset"
	"github.com/markrai/seen-engine/pkg/dateinfer"
)

// Group partitions an already-ordered asset list into year or year-month
// buckets. Assets with no derivable date are dropped from grouped views;
// there is no sensible bucket for them, and the flat view still shows
// them. Intra-bucket order is re-derived with Organize so it matches
// what a flat view of the same assets would show.
func Group(ordered []asset.Asset, groupBy asset.GroupBy, toggles asset.OrganizationToggles, spec asset.SortSpec) []asset.GroupBucket {
	if groupBy == asset.GroupNone {
		return nil
	}

	pref := metaPreference(spec.Field)
	byKey := make(map[string]int)
	buckets := make([]asset.GroupBucket, 0)

	for _, a := range ordered {
		parts := dateinfer.Parts(a, toggles, pref)
		if parts.Year == nil {
			continue
		}
		var key string
		switch groupBy {
		case asset.GroupYears:
			key = asset.BucketKey(*parts.Year, nil)
		case asset.GroupMonths:
			if parts.Month == nil {
				continue
			}
			key = asset.BucketKey(*parts.Year, parts.Month)
		}
		idx, ok := byKey[key]
		if !ok {
			idx = len(buckets)
			byKey[key] = idx
			buckets = append(buckets, asset.GroupBucket{Key: key})
		}
		buckets[idx].Items = append(buckets[idx].Items, a)
	}

	for i := range buckets {
		buckets[i].Items = Organize(buckets[i].Items, toggles, spec)
	}
	sortBuckets(buckets, spec.Order)
	return buckets
}

// SplitMonths splits a year bucket into month sub-buckets for the folder
// presentation mode. Unlike Group, nothing is dropped here: an asset
// whose month cannot be determined defaults to January, and its year
// falls back to the enclosing bucket's year. This level is presentation
// nesting, not filtering.
func SplitMonths(bucket asset.GroupBucket, toggles asset.OrganizationToggles, spec asset.SortSpec) []asset.GroupBucket {
	bucketYear, _, yearOK := parseBucketKey(bucket.Key)

	pref := metaPreference(spec.Field)
	byKey := make(map[string]int)
	subs := make([]asset.GroupBucket, 0)

	for _, a := range bucket.Items {
		parts := dateinfer.Parts(a, toggles, pref)
		year := bucketYear
		if parts.Year != nil {
			year = *parts.Year
		} else if !yearOK {
			year = 0
		}
		month := 1
		if parts.Month != nil {
			month = *parts.Month
		}
		key := asset.BucketKey(year, &month)

		idx, ok := byKey[key]
		if !ok {
			idx = len(subs)
			byKey[key] = idx
			subs = append(subs, asset.GroupBucket{Key: key})
		}
		subs[idx].Items = append(subs[idx].Items, a)
	}

	for i := range subs {
		subs[i].Items = Organize(subs[i].Items, toggles, spec)
	}
	sortBuckets(subs, spec.Order)
	return subs
}

// sortBuckets orders buckets numerically by parsed (year, month),
// ascending meaning oldest first. Keys that fail to parse fall back to
// lexicographic comparison and sort after parseable ones.
func sortBuckets(buckets []asset.GroupBucket, order asset.SortOrder) {
	dir := direction(order)
	sort.SliceStable(buckets, func(i, j int) bool {
		return dir*compareBucketKeys(buckets[i].Key, buckets[j].Key) < 0
	})
}

func compareBucketKeys(a, b string) int {
	ay, am, aok := parseBucketKey(a)
	by, bm, bok := parseBucketKey(b)
	if aok && bok {
		switch {
		case ay != by:
			if ay < by {
				return -1
			}
			return 1
		case am != bm:
			if am < bm {
				return -1
			}
			return 1
		}
		return 0
	}
	if aok != bok {
		if aok {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// parseBucketKey parses "YYYY" or "YYYY-MM"; month is 0 for year-only
// keys.
func parseBucketKey(key string) (year, month int, ok bool) {
	head, tail, hasMonth := strings.Cut(key, "-")
	y, err := strconv.Atoi(head)
	if err != nil {
		return 0, 0, false
	}
	if !hasMonth {
		return y, 0, true
	}
	m, err := strconv.Atoi(tail)
	if err != nil {
		return 0, 0, false
	}
	return y, m, true
}
