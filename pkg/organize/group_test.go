package organize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markrai/seen-engine/pkg/asset"
)

// Epoch seconds inside known months, for metadata-derived grouping.
const (
	jan2023 = int64(1672617600) // 2023-01-02
	jun2023 = int64(1685664000) // 2023-06-02
	feb2024 = int64(1706832000) // 2024-02-02
)

func datedAsset(id int64, takenAt int64) asset.Asset {
	return asset.Asset{ID: id, TakenAt: i64p(takenAt)}
}

func TestGroupNone(t *testing.T) {
	t.Parallel()

	in := []asset.Asset{datedAsset(1, jan2023)}
	assert.Nil(t, Group(in, asset.GroupNone, asset.OrganizationToggles{}, asset.DefaultSort))
}

func TestGroupYears(t *testing.T) {
	t.Parallel()

	spec := asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderAsc}
	in := Organize([]asset.Asset{
		datedAsset(1, feb2024),
		datedAsset(2, jan2023),
		datedAsset(3, jun2023),
	}, asset.OrganizationToggles{}, spec)

	buckets := Group(in, asset.GroupYears, asset.OrganizationToggles{}, spec)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2023", buckets[0].Key)
	assert.Equal(t, []int64{2, 3}, ids(buckets[0].Items))
	assert.Equal(t, "2024", buckets[1].Key)
	assert.Equal(t, []int64{1}, ids(buckets[1].Items))
}

func TestGroupMonthsDescOrdersBucketsNewestFirst(t *testing.T) {
	t.Parallel()

	spec := asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderDesc}
	in := Organize([]asset.Asset{
		datedAsset(1, jan2023),
		datedAsset(2, feb2024),
		datedAsset(3, jun2023),
	}, asset.OrganizationToggles{}, spec)

	buckets := Group(in, asset.GroupMonths, asset.OrganizationToggles{}, spec)
	require.Len(t, buckets, 3)

	assert.Equal(t, "2024-02", buckets[0].Key)
	assert.Equal(t, "2023-06", buckets[1].Key)
	assert.Equal(t, "2023-01", buckets[2].Key)
}

func TestGroupDropsUndatableAssets(t *testing.T) {
	t.Parallel()

	spec := asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderAsc}
	in := []asset.Asset{
		datedAsset(1, jan2023),
		{ID: 2, Filename: "no-date.jpg"},
	}

	buckets := Group(in, asset.GroupYears, asset.OrganizationToggles{}, spec)
	require.Len(t, buckets, 1)
	assert.Equal(t, []int64{1}, ids(buckets[0].Items))
}

// Flattening the year buckets in bucket order, then intra-bucket order,
// must reproduce the flat organized list restricted to datable assets.
func TestGroupRoundTrip(t *testing.T) {
	t.Parallel()

	spec := asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderDesc}
	toggles := asset.OrganizationToggles{}
	raw := []asset.Asset{
		datedAsset(4, jun2023),
		{ID: 5, Filename: "no-date.jpg"},
		datedAsset(1, feb2024),
		datedAsset(2, jan2023),
		datedAsset(3, feb2024),
	}

	organized := Organize(raw, toggles, spec)
	buckets := Group(organized, asset.GroupYears, toggles, spec)

	var flattened []int64
	for _, b := range buckets {
		flattened = append(flattened, ids(b.Items)...)
	}

	var datable []int64
	for _, a := range organized {
		if a.ID != 5 {
			datable = append(datable, a.ID)
		}
	}
	assert.Equal(t, datable, flattened)
}

func TestSplitMonthsDefaultsInsteadOfDropping(t *testing.T) {
	t.Parallel()

	spec := asset.SortSpec{Field: asset.SortTakenAt, Order: asset.OrderAsc}
	bucket := asset.GroupBucket{
		Key: "2023",
		Items: []asset.Asset{
			datedAsset(1, jun2023),
			{ID: 2, Filename: "no-date.jpg"}, // month falls back to January
			datedAsset(3, jan2023),
		},
	}

	subs := SplitMonths(bucket, asset.OrganizationToggles{}, spec)
	require.Len(t, subs, 2)

	assert.Equal(t, "2023-01", subs[0].Key)
	assert.ElementsMatch(t, []int64{2, 3}, ids(subs[0].Items))
	assert.Equal(t, "2023-06", subs[1].Key)
	assert.Equal(t, []int64{1}, ids(subs[1].Items))
}

func TestCompareBucketKeysLexicographicFallback(t *testing.T) {
	t.Parallel()

	assert.Negative(t, compareBucketKeys("2023", "2024"))
	assert.Negative(t, compareBucketKeys("2023-01", "2023-02"))
	// Parseable keys sort before unparseable ones; unparseable keys
	// compare as strings.
	assert.Negative(t, compareBucketKeys("2023", "junk"))
	assert.Positive(t, compareBucketKeys("zz", "aa"))
}
