package prefs

import "github.com/markrai/seen-engine/pkg/asset"

// Keys under which the durable view settings persist.
const (
	KeySortField              = "view.sort_field"
	KeySortOrder              = "view.sort_order"
	KeyGroupBy                = "view.group_by"
	KeyFolderView             = "view.folder_view"
	KeyTypeFilter             = "view.type_filter"
	KeyPrioritizeFolders      = "view.prioritize_folders"
	KeyPrioritizeFilenameDate = "view.prioritize_filename_date"
)

// View bundles the durable settings one gallery view runs under.
type View struct {
	Sort       asset.SortSpec
	GroupBy    asset.GroupBy
	FolderView bool // split year buckets into month sub-buckets
	Toggles    asset.OrganizationToggles
	TypeFilter string
}

// LoadView reads the view settings from a store, falling back to the
// documented defaults for anything missing or unparseable.
func LoadView(s Store) View {
	return View{
		Sort: asset.SortSpec{
			Field: asset.ParseSortField(s.GetString(KeySortField, ""), asset.DefaultSort.Field),
			Order: asset.ParseSortOrder(s.GetString(KeySortOrder, ""), asset.DefaultSort.Order),
		},
		GroupBy:    asset.ParseGroupBy(s.GetString(KeyGroupBy, ""), asset.GroupNone),
		FolderView: s.GetBool(KeyFolderView, false),
		Toggles: asset.OrganizationToggles{
			PrioritizeFolderStructure: s.GetBool(KeyPrioritizeFolders, false),
			PrioritizeFilenameDate:    s.GetBool(KeyPrioritizeFilenameDate, false),
		},
		TypeFilter: s.GetString(KeyTypeFilter, ""),
	}
}

// SaveView writes the view settings back, best-effort.
func SaveView(s Store, v View) {
	s.SetString(KeySortField, string(v.Sort.Field))
	s.SetString(KeySortOrder, string(v.Sort.Order))
	s.SetString(KeyGroupBy, string(v.GroupBy))
	s.SetBool(KeyFolderView, v.FolderView)
	s.SetBool(KeyPrioritizeFolders, v.Toggles.PrioritizeFolderStructure)
	s.SetBool(KeyPrioritizeFilenameDate, v.Toggles.PrioritizeFilenameDate)
	s.SetString(KeyTypeFilter, v.TypeFilter)
}
