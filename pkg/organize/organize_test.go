package organize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markrai/seen-engine/pkg/asset"
)

func i64p(v int64) *int64 { return &v }

func ids(assets []asset.Asset) []int64 {
	out := make([]int64, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}
	return out
}

func secs(s int64) *int64 { return i64p(s) }

func TestIdentityWhenNoSortAndNoToggles(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{{ID: 3}, {ID: 1}, {ID: 2}}
	out := Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortNone, Order: asset.OrderAsc})

	assert.Equal(t, []int64{3, 1, 2}, ids(out))
}

func TestOrganizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{
		{ID: 1, SizeBytes: 30},
		{ID: 2, SizeBytes: 10},
		{ID: 3, SizeBytes: 20},
	}
	Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortSize, Order: asset.OrderAsc})

	assert.Equal(t, []int64{1, 2, 3}, ids(in))
}

func TestFilenameSortCaseInsensitiveStable(t *testing.T) {
	t.Parallel()

	// Identical up to case: relative input order must survive in both
	// directions.
	in := []asset.Asset{
		{ID: 1, Filename: "IMG_001.jpg"},
		{ID: 2, Filename: "img_001.jpg"},
		{ID: 3, Filename: "aaa.jpg"},
	}

	asc := Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortFilename, Order: asset.OrderAsc})
	assert.Equal(t, []int64{3, 1, 2}, ids(asc))

	desc := Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortFilename, Order: asset.OrderDesc})
	assert.Equal(t, []int64{1, 2, 3}, ids(desc))
}

func TestFilenameSortIgnoresToggles(t *testing.T) {
	t.Parallel()

	// Filename in conflict with embedded dates: the literal name wins
	// because toggles never apply to non-date fields.
	in := []asset.Asset{
		{ID: 1, Filename: "2030-01-01_z.jpg", TakenAt: secs(100)},
		{ID: 2, Filename: "2001-01-01_a.jpg", TakenAt: secs(200)},
	}
	toggles := asset.OrganizationToggles{PrioritizeFilenameDate: true}

	out := Organize(in, toggles, asset.SortSpec{Field: asset.SortFilename, Order: asset.OrderAsc})
	assert.Equal(t, []int64{2, 1}, ids(out))
}

func TestSizeSortDescKeepsTieOrder(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{
		{ID: 1, SizeBytes: 10},
		{ID: 2, SizeBytes: 20},
		{ID: 3, SizeBytes: 10},
	}
	out := Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortSize, Order: asset.OrderDesc})

	// Descending by negated comparator, not reversal: the 10-byte tie
	// keeps 1 before 3.
	assert.Equal(t, []int64{2, 1, 3}, ids(out))
}

func TestDateSortAscAndDesc(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{
		{ID: 1, TakenAt: secs(3000)},
		{ID: 2, TakenAt: secs(1000)},
		{ID: 3, TakenAt: secs(2000)},
	}
	spec := asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderAsc}

	asc := Organize(in, asset.OrganizationToggles{}, spec)
	assert.Equal(t, []int64{2, 3, 1}, ids(asc))

	spec.Order = asset.OrderDesc
	desc := Organize(in, asset.OrganizationToggles{}, spec)
	assert.Equal(t, []int64{1, 3, 2}, ids(desc))
}

func TestUndatedAssetsSinkInBothDirections(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{
		{ID: 1, Filename: "no-date-a.jpg"},
		{ID: 2, TakenAt: secs(2000)},
		{ID: 3, Filename: "no-date-b.jpg"},
		{ID: 4, TakenAt: secs(1000)},
	}

	for _, order := range []asset.SortOrder{asset.OrderAsc, asset.OrderDesc} {
		out := Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortTakenAt, Order: order})
		require.Len(t, out, 4)
		// Undated always last, in input order.
		assert.Equal(t, int64(1), out[2].ID)
		assert.Equal(t, int64(3), out[3].ID)
	}
}

func TestMtimeFieldPrefersMtime(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{
		{ID: 1, TakenAt: secs(1000), MtimeNs: 4000 * int64(time.Second)},
		{ID: 2, TakenAt: secs(2000), MtimeNs: 3000 * int64(time.Second)},
	}

	byTaken := Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderAsc})
	assert.Equal(t, []int64{1, 2}, ids(byTaken))

	byMtime := Organize(in, asset.OrganizationToggles{}, asset.SortSpec{Field: asset.SortMtime, Order: asset.OrderAsc})
	assert.Equal(t, []int64{2, 1}, ids(byMtime))
}

func TestTogglesTriggerDatePathWithSortNone(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{
		{ID: 1, Filename: "2025-06_a.jpg"},
		{ID: 2, Filename: "2024-06_b.jpg"},
	}
	toggles := asset.OrganizationToggles{PrioritizeFilenameDate: true}

	out := Organize(in, toggles, asset.SortSpec{Field: asset.SortNone, Order: asset.OrderAsc})
	assert.Equal(t, []int64{2, 1}, ids(out))
}

func TestMonthAnchoredDatesKeepInputOrderWithinMonth(t *testing.T) {
	t.Parallel()

	// All three land in March 2025; filename dates are anchored to the
	// month, so day differences do not reorder them.
	in := []asset.Asset{
		{ID: 1, Filename: "2025-03-28_c.jpg"},
		{ID: 2, Filename: "2025-03-01_a.jpg"},
		{ID: 3, Filename: "2025-03-14_b.jpg"},
	}
	toggles := asset.OrganizationToggles{PrioritizeFilenameDate: true}

	out := Organize(in, toggles, asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderAsc})
	assert.Equal(t, []int64{1, 2, 3}, ids(out))
}

func TestOrganizeDeterministic(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{
		{ID: 1, TakenAt: secs(500)},
		{ID: 2, Filename: "nodate.jpg"},
		{ID: 3, TakenAt: secs(500)},
		{ID: 4, TakenAt: secs(100)},
	}
	toggles := asset.OrganizationToggles{PrioritizeFilenameDate: true, PrioritizeFolderStructure: true}
	spec := asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderDesc}

	first := Organize(in, toggles, spec)
	second := Organize(in, toggles, spec)
	assert.Equal(t, ids(first), ids(second))
}
