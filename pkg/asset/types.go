package asset

import "fmt"

// Asset is one media file record as returned by the server. Assets are
// never mutated client-side; only membership in working sets changes.
type Asset struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	Ext       string `json:"ext"`
	SizeBytes int64  `json:"sizeBytes"`
	MtimeNs   int64  `json:"mtimeNs"`
	TakenAt   *int64 `json:"takenAt,omitempty"` // epoch seconds
	Type      string `json:"type,omitempty"`    // IMAGE or VIDEO

	Camera *CameraInfo `json:"camera,omitempty"`
}

// CameraInfo carries optional capture metadata.
type CameraInfo struct {
	Make         string  `json:"make,omitempty"`
	Model        string  `json:"model,omitempty"`
	LensModel    string  `json:"lensModel,omitempty"`
	ISO          int     `json:"iso,omitempty"`
	FNumber      float64 `json:"fNumber,omitempty"`
	ExposureTime string  `json:"exposureTime,omitempty"`
	FocalLength  float64 `json:"focalLength,omitempty"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
}

// DateParts is a partially inferred calendar date. Nil fields mean the
// source could not determine that component.
type DateParts struct {
	Year  *int `json:"year"`
	Month *int `json:"month"` // 1..12
}

// Complete reports whether both year and month are known.
func (p DateParts) Complete() bool {
	return p.Year != nil && p.Month != nil
}

// SortField selects the attribute assets are ordered by.
type SortField string

const (
	SortNone     SortField = "none"
	SortMtime    SortField = "mtime"
	SortTakenAt  SortField = "taken_at"
	SortFilename SortField = "filename"
	SortSize     SortField = "size_bytes"
)

// ParseSortField maps a stored preference value back to a SortField,
// returning the given default for anything unrecognized.
func ParseSortField(s string, def SortField) SortField {
	switch SortField(s) {
	case SortNone, SortMtime, SortTakenAt, SortFilename, SortSize:
		return SortField(s)
	}
	return def
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder maps a stored preference value back to a SortOrder.
func ParseSortOrder(s string, def SortOrder) SortOrder {
	switch SortOrder(s) {
	case OrderAsc, OrderDesc:
		return SortOrder(s)
	}
	return def
}

// SortSpec pairs a field with a direction. Both are always set; SortNone
// is only meaningful combined with the organization toggles.
type SortSpec struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort is what a fresh view uses before any preference is stored.
var DefaultSort = SortSpec{Field: SortTakenAt, Order: OrderDesc}

// OrganizationToggles select which date-inference source dominates when
// ordering by date. They do not affect filename or size sorting.
type OrganizationToggles struct {
	PrioritizeFolderStructure bool `json:"prioritizeFolderStructure"`
	PrioritizeFilenameDate    bool `json:"prioritizeFilenameDate"`
}

// GroupBy selects how the timeline is bucketed for rendering.
type GroupBy string

const (
	GroupNone   GroupBy = "none"
	GroupYears  GroupBy = "years"
	GroupMonths GroupBy = "months"
)

// ParseGroupBy maps a stored preference value back to a GroupBy.
func ParseGroupBy(s string, def GroupBy) GroupBy {
	switch GroupBy(s) {
	case GroupNone, GroupYears, GroupMonths:
		return GroupBy(s)
	}
	return def
}

// GroupBucket is one year or year-month section of a grouped view.
// Buckets are recomputed on every organize pass and never persisted.
type GroupBucket struct {
	Key   string  `json:"key"` // "YYYY" or "YYYY-MM"
	Items []Asset `json:"items"`
}

// BucketKey formats a bucket key for a year or year-month.
func BucketKey(year int, month *int) string {
	if month == nil {
		return fmt.Sprintf("%04d", year)
	}
	return fmt.Sprintf("%04d-%02d", year, *month)
}

// Page is one fetched window of the server-side result set. Total is the
// full matching count at the time of the call, independent of the window.
type Page struct {
	Items []Asset `json:"items"`
	Total int     `json:"total"`
}

// FilterCriteria is forwarded opaquely to the server; the engine never
// interprets it beyond including it in cache keys.
type FilterCriteria struct {
	Type       string `json:"type,omitempty"` // IMAGE, VIDEO, empty = all
	PersonID   string `json:"personId,omitempty"`
	FolderPath string `json:"folderPath,omitempty"`
	Favorite   bool   `json:"favorite,omitempty"`
	Query      string `json:"query,omitempty"`
}
