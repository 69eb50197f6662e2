// Package dateinfer determines when an asset was taken, using filename
// text, folder path segments, or stored metadata in a configurable
// priority order. It never fails: unparseable input yields partial or
// empty results and downstream code decides what to do with those.
package dateinfer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markrai/seen-engine/pkg/asset"
)

// MetaPreference selects which metadata timestamp the final fallback
// stage tries first. The organizer derives it from the active sort field.
type MetaPreference int

const (
	PreferTakenAt MetaPreference = iota
	PreferMtime
)

const (
	minYear = 1900
	maxYear = 2100

	// maxEpochMillis is 2100-01-01T00:00:00Z. Metadata timestamps outside
	// [0, maxEpochMillis] are treated as absent rather than trusted.
	maxEpochMillis = 4102444800000
)

// Filename patterns, tried in this fixed order; the first match wins.
// RE2 has no lookarounds, so digit boundaries are expressed as
// non-digit-or-edge groups around the captures.
var filenamePatterns = []struct {
	re       *regexp.Regexp
	dayFirst bool // two-digit, two-digit, four-digit-year form
}{
	{re: regexp.MustCompile(`(?:^|[^\d])(\d{4})-(\d{2})-(\d{2})(?:[^\d]|$)`)},
	{re: regexp.MustCompile(`(?:^|[^\d])(\d{4})(\d{2})(\d{2})(?:[^\d]|$)`)},
	{re: regexp.MustCompile(`(?:^|[^\d])(\d{4})_(\d{2})_(\d{2})(?:[^\d]|$)`)},
	{re: regexp.MustCompile(`(?:^|[^\d])(\d{4})-(\d{2})(?:[^-\d]|$)`)},
	{re: regexp.MustCompile(`(?:^|[^\d])(\d{4})(\d{2})(?:[^\d]|$)`)},
	{re: regexp.MustCompile(`(?:^|[^\d])(\d{2})-(\d{2})-(\d{4})(?:[^\d]|$)`), dayFirst: true},
}

var monthNames = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// Parts infers a (year, month) for the asset, honoring the organization
// toggles. Sources are tried in priority order; a partial result from an
// earlier source is filled field-by-field by later sources, and metadata
// is always the last resort regardless of toggle state.
func Parts(a asset.Asset, toggles asset.OrganizationToggles, pref MetaPreference) asset.DateParts {
	parts := structuralParts(a, toggles)
	if parts.Complete() {
		return parts
	}
	if ms, ok := metaTimestamp(a, pref); ok {
		t := time.UnixMilli(ms).UTC()
		if parts.Year == nil {
			y := t.Year()
			parts.Year = &y
		}
		if parts.Month == nil {
			m := int(t.Month())
			parts.Month = &m
		}
	}
	return parts
}

// SortTimestamp produces a single sortable millisecond timestamp for the
// asset, or ok=false when no source yields one. A date derived from the
// filename or folder structure is anchored to the first instant of its
// month so that within-month comparisons stay stable; only the metadata
// fallback carries full timestamp precision.
func SortTimestamp(a asset.Asset, toggles asset.OrganizationToggles, pref MetaPreference) (int64, bool) {
	parts := structuralParts(a, toggles)
	if parts.Complete() {
		t := time.Date(*parts.Year, time.Month(*parts.Month), 1, 0, 0, 0, 0, time.UTC)
		return t.UnixMilli(), true
	}
	return metaTimestamp(a, pref)
}

// structuralParts runs only the toggle-gated filename and folder stages.
// Either stage, when it matches at all, yields a complete (year, month).
func structuralParts(a asset.Asset, toggles asset.OrganizationToggles) asset.DateParts {
	var parts asset.DateParts
	if toggles.PrioritizeFilenameDate {
		merge(&parts, filenameParts(a.Filename))
	}
	if !parts.Complete() && toggles.PrioritizeFolderStructure {
		merge(&parts, folderParts(a.Path))
	}
	return parts
}

// filenameParts scans a filename for an embedded date.
func filenameParts(name string) asset.DateParts {
	for _, p := range filenamePatterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		var year, month int
		if p.dayFirst {
			a, _ := strconv.Atoi(m[1])
			b, _ := strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
			// DD-MM vs MM-DD: a first group over 12 can only be a day.
			// Otherwise the first group is read as the month, which can
			// misread day-first names; kept for compatibility with how
			// existing libraries were indexed.
			if a > 12 {
				month = b
			} else {
				month = a
			}
		} else {
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
		}
		if year < minYear || year > maxYear {
			continue
		}
		month = clampMonth(month)
		return asset.DateParts{Year: &year, Month: &month}
	}
	return asset.DateParts{}
}

// folderParts scans directory segments for a year/month pair, falling
// back to a lone year (month defaulting to January). The final segment
// is the filename and is never considered.
func folderParts(path string) asset.DateParts {
	segs := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segs) < 2 {
		return asset.DateParts{}
	}
	dirs := segs[:len(segs)-1]

	for i := 0; i+1 < len(dirs); i++ {
		year, ok := yearSegment(dirs[i])
		if !ok {
			continue
		}
		if month, ok := monthSegment(dirs[i+1]); ok {
			month = clampMonth(month)
			return asset.DateParts{Year: &year, Month: &month}
		}
	}
	for _, seg := range dirs {
		if year, ok := yearSegment(seg); ok {
			month := 1
			return asset.DateParts{Year: &year, Month: &month}
		}
	}
	return asset.DateParts{}
}

// metaTimestamp reads the asset's stored timestamps, preferring one
// source per pref and falling back to the other. A value outside the
// epoch..2100 window is treated as absent.
func metaTimestamp(a asset.Asset, pref MetaPreference) (int64, bool) {
	takenAt := func() (int64, bool) {
		if a.TakenAt == nil {
			return 0, false
		}
		return validMillis(*a.TakenAt * 1000)
	}
	mtime := func() (int64, bool) {
		if a.MtimeNs == 0 {
			return 0, false
		}
		return validMillis(a.MtimeNs / int64(time.Millisecond))
	}

	if pref == PreferMtime {
		if ms, ok := mtime(); ok {
			return ms, true
		}
		return takenAt()
	}
	if ms, ok := takenAt(); ok {
		return ms, true
	}
	return mtime()
}

func validMillis(ms int64) (int64, bool) {
	if ms < 0 || ms > maxEpochMillis {
		return 0, false
	}
	return ms, true
}

func yearSegment(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < minYear || y > maxYear {
		return 0, false
	}
	return y, true
}

func monthSegment(s string) (int, bool) {
	if m, ok := monthNames[strings.ToLower(s)]; ok {
		return m, true
	}
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// clampMonth forces a parsed month into [1,12] instead of rejecting the
// inference, matching how malformed names were already being indexed.
func clampMonth(m int) int {
	if m < 1 {
		return 1
	}
	if m > 12 {
		return 12
	}
	return m
}

func merge(dst *asset.DateParts, src asset.DateParts) {
	if dst.Year == nil {
		dst.Year = src.Year
	}
	if dst.Month == nil {
		dst.Month = src.Month
	}
}
