// Package gallery owns the per-view state machine: one Session per
// logical query (gallery, search, person filter), each with its own
// cursor and working set. The host event loop calls into the session on
// UI events; the session never shares its working set by reference with
// another view.
package gallery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markrai/seen-engine/pkg/asset"
	"github.com/markrai/seen-engine/pkg/nav"
	"github.com/markrai/seen-engine/pkg/organize"
	"github.com/markrai/seen-engine/pkg/photoapi"
	"github.com/markrai/seen-engine/pkg/prefs"
	"github.com/markrai/seen-engine/pkg/timeline"
)

var (
	// ErrNoContent means the organized list became empty while a detail
	// view was open; the host must navigate to a fallback listing view.
	ErrNoContent = errors.New("gallery: no content left to display")

	// ErrRefetchPending means page loads are suspended because a
	// post-delete refetch has not completed and the cursor's offset
	// bookkeeping cannot be trusted.
	ErrRefetchPending = errors.New("gallery: loads suspended until pending refetch completes")
)

// Invalidator is implemented by sources whose cached pages must be
// dropped when the session resets (photoapi.CachedSource is one).
type Invalidator interface {
	Invalidate()
}

// Options configure a session.
type Options struct {
	PageSize     int
	Filter       asset.FilterCriteria
	DeleteSettle time.Duration // delay before the post-delete refetch
	ResetSettle  time.Duration // debounce for total-count changes
	Logger       zerolog.Logger
}

// Session drives one view's pagination, organization, and navigation.
type Session struct {
	mu     sync.Mutex
	id     string
	log    zerolog.Logger
	source photoapi.Source
	store  prefs.Store

	pageSize int
	filter   asset.FilterCriteria
	view     prefs.View

	cursor *timeline.Cursor

	// filteredIDs, when set, scopes detail navigation to an externally
	// supplied id list (folder or person context) instead of the full
	// organized list.
	filteredIDs []int64

	currentID    int64
	currentIndex int
	detailOpen   bool

	refetchPending bool
	refetchDeb     *timeline.Debouncer
	resetDeb       *timeline.Debouncer

	// OnChange, when non-nil, is invoked after a background refetch or
	// reset completes, so the host can re-render. Set before Open.
	OnChange func()
}

// New creates a session reading its sort/group/toggle settings from the
// preference store. Call Open before anything else.
func New(source photoapi.Source, store prefs.Store, opts Options) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.DeleteSettle <= 0 {
		opts.DeleteSettle = 500 * time.Millisecond
	}
	if opts.ResetSettle <= 0 {
		opts.ResetSettle = time.Second
	}
	id := uuid.NewString()
	logger := opts.Logger.With().Str("component", "gallery").Str("session", id).Logger()

	s := &Session{
		id:           id,
		log:          logger,
		source:       source,
		store:        store,
		pageSize:     opts.PageSize,
		filter:       opts.Filter,
		view:         prefs.LoadView(store),
		refetchDeb:   timeline.NewDebouncer(opts.DeleteSettle),
		resetDeb:     timeline.NewDebouncer(opts.ResetSettle),
		currentIndex: -1,
	}
	if opts.Filter.Type == "" && s.view.TypeFilter != "" {
		s.filter.Type = s.view.TypeFilter
	}
	s.cursor = s.newCursor()
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) newCursor() *timeline.Cursor {
	return timeline.NewCursor(s.source.FetchPage, s.pageSize, s.view.Sort, s.filter, s.log)
}

// Open loads the first page at offset 0.
func (s *Session) Open(ctx context.Context) error {
	return s.OpenAt(ctx, 0)
}

// OpenAt loads the first page at an arbitrary offset, for deep links
// into the middle of a large collection.
func (s *Session) OpenAt(ctx context.Context, offset int) error {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()

	_, err := cursor.Load(ctx, offset)
	return err
}

// LoadMore extends the loaded window forward. Loads are refused while a
// post-delete refetch is pending, because the cursor's offsets are
// known stale until it completes.
func (s *Session) LoadMore(ctx context.Context) (int, error) {
	cursor, err := s.loadableCursor()
	if err != nil {
		return 0, err
	}
	return cursor.LoadForward(ctx)
}

// LoadEarlier extends the loaded window backward.
func (s *Session) LoadEarlier(ctx context.Context) (int, error) {
	cursor, err := s.loadableCursor()
	if err != nil {
		return 0, err
	}
	return cursor.LoadBackward(ctx)
}

func (s *Session) loadableCursor() (*timeline.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refetchPending {
		return nil, ErrRefetchPending
	}
	return s.cursor, nil
}

// HasNext reports whether more items exist past the loaded window.
func (s *Session) HasNext() bool {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()
	return cursor.HasNext()
}

// HasPrevious reports whether anything precedes the loaded window.
func (s *Session) HasPrevious() bool {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()
	return cursor.HasPrevious()
}

// State snapshots the cursor bookkeeping.
func (s *Session) State() timeline.State {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()
	return cursor.State()
}

// Organized returns the loaded, non-deleted assets in display order
// under the session's current settings. The detail-view navigation path
// derives its indices from this same call, so gallery and detail always
// agree on the index-to-asset mapping.
func (s *Session) Organized() []asset.Asset {
	s.mu.Lock()
	cursor := s.cursor
	view := s.view
	s.mu.Unlock()
	return organize.Organize(cursor.Items(), view.Toggles, view.Sort)
}

// Buckets returns the organized assets grouped for rendering, or nil
// when grouping is off. In folder view the year buckets are further
// split into month sub-buckets, keeping every asset placed.
func (s *Session) Buckets() []asset.GroupBucket {
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()
	buckets := organize.Group(s.Organized(), view.GroupBy, view.Toggles, view.Sort)
	if !view.FolderView || view.GroupBy != asset.GroupYears {
		return buckets
	}
	split := make([]asset.GroupBucket, 0, len(buckets))
	for _, b := range buckets {
		split = append(split, organize.SplitMonths(b, view.Toggles, view.Sort)...)
	}
	return split
}

// View returns the session's active settings.
func (s *Session) View() prefs.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetSort changes the sort spec, persists it best-effort, and reloads
// from the server: the raw ordering is the server's, so a changed sort
// invalidates every loaded page.
func (s *Session) SetSort(ctx context.Context, spec asset.SortSpec) error {
	s.mu.Lock()
	s.view.Sort = spec
	prefs.SaveView(s.store, s.view)
	s.invalidateSourceLocked()
	s.cursor = s.newCursor()
	cursor := s.cursor
	s.mu.Unlock()

	_, err := cursor.Load(ctx, 0)
	return err
}

// SetToggles changes the organization toggles. Purely client-side: the
// next Organized call reflects them, no refetch needed.
func (s *Session) SetToggles(t asset.OrganizationToggles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Toggles = t
	prefs.SaveView(s.store, s.view)
}

// SetGroupBy changes the grouping mode. Client-side only.
func (s *Session) SetGroupBy(g asset.GroupBy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.GroupBy = g
	prefs.SaveView(s.store, s.view)
}

// SetFolderView toggles the month sub-bucket presentation for grouped
// years. Client-side only.
func (s *Session) SetFolderView(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.FolderView = on
	prefs.SaveView(s.store, s.view)
}

// SetFilterIDs installs an externally supplied id list that scopes
// detail navigation (folder or person context). Pass nil to go back to
// navigating the full organized list.
func (s *Session) SetFilterIDs(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ids == nil {
		s.filteredIDs = nil
		return
	}
	s.filteredIDs = make([]int64, len(ids))
	copy(s.filteredIDs, ids)
}

// OpenAsset opens the detail view on an asset. Assets not present in
// the working set (deep links) are fetched by id.
func (s *Session) OpenAsset(ctx context.Context, id int64) (asset.Asset, error) {
	for _, a := range s.Organized() {
		if a.ID == id {
			s.setCurrent(id)
			return a, nil
		}
	}
	a, err := s.source.FetchByID(ctx, id)
	if err != nil {
		return asset.Asset{}, err
	}
	s.setCurrent(id)
	return a, nil
}

func (s *Session) setCurrent(id int64) {
	scope := s.navScope()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = id
	s.currentIndex = indexOf(scope, id)
	s.detailOpen = true
}

// CloseDetail leaves the detail view.
func (s *Session) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailOpen = false
	s.currentID = 0
	s.currentIndex = -1
}

// Current returns the id and index of the asset the detail view is on.
func (s *Session) Current() (int64, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID, s.currentIndex, s.detailOpen
}

// navScope returns the ordered id list detail navigation runs over: the
// external filtered list when set, otherwise the full organized list.
func (s *Session) navScope() []int64 {
	s.mu.Lock()
	filtered := s.filteredIDs
	s.mu.Unlock()
	if filtered != nil {
		out := make([]int64, len(filtered))
		copy(out, filtered)
		return out
	}
	organized := s.Organized()
	ids := make([]int64, len(organized))
	for i, a := range organized {
		ids[i] = a.ID
	}
	return ids
}

// Delete removes an asset optimistically: the id enters the local
// exclusion set synchronously so the UI updates at once, the next item
// to display is resolved against the navigation scope, and a debounced
// background refetch reconciles with the server's authoritative state.
// It returns ErrNoContent when nothing remains and a detail view is
// open.
func (s *Session) Delete(id int64) (nav.Resolution, error) {
	scope := s.navScope()

	s.mu.Lock()
	s.cursor.MarkDeleted(id)
	if s.filteredIDs != nil {
		s.filteredIDs = nav.RemoveID(s.filteredIDs, id)
	}
	lastKnown := s.currentIndex
	detailOpen := s.detailOpen
	s.refetchPending = true
	s.mu.Unlock()

	s.log.Info().Int64("asset_id", id).Msg("asset deleted locally, refetch scheduled")
	s.refetchDeb.Schedule(s.backgroundRefetch)

	res, ok := nav.ResolveNext(scope, id, lastKnown)
	if !ok {
		if detailOpen {
			return nav.Resolution{}, ErrNoContent
		}
		return nav.Resolution{}, nil
	}

	s.mu.Lock()
	if s.detailOpen {
		if s.currentID == id {
			s.currentID = res.NextID
			s.currentIndex = res.NextIndex
		} else {
			// Deleting something other than the viewed asset must not
			// steal the detail view; only its index can shift.
			s.currentIndex = indexOf(nav.RemoveID(scope, id), s.currentID)
		}
	}
	s.mu.Unlock()
	return res, nil
}

// TotalChanged is the handler for the external stats poller. A changed
// server-side count never patches the live cursor; it schedules a
// debounced full reset from offset 0.
func (s *Session) TotalChanged(total int) {
	s.mu.Lock()
	known := s.cursor.State().Total
	s.mu.Unlock()
	if known != timeline.TotalUnknown && known == total {
		return
	}
	s.log.Info().Int("total", total).Int("known", known).Msg("server total changed, reset scheduled")
	s.resetDeb.Schedule(s.backgroundRefetch)
}

// RefetchPending reports whether page loads are currently suspended.
func (s *Session) RefetchPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refetchPending
}

// Close stops the session's timers.
func (s *Session) Close() {
	s.refetchDeb.Stop()
	s.resetDeb.Stop()
}

// backgroundRefetch rebuilds the working set from offset 0 and
// re-derives the detail position, keeping index and id consistent with
// the fresh list.
func (s *Session) backgroundRefetch() {
	s.invalidateSource()

	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := cursor.Reset(ctx); err != nil {
		if errors.Is(err, timeline.ErrSuperseded) {
			return
		}
		// The previous working set (with its local exclusions) stays in
		// place, offsets are still stale, and loads stay suspended until
		// a retry succeeds.
		s.log.Warn().Err(err).Msg("background refetch failed, retrying")
		s.refetchDeb.Schedule(s.backgroundRefetch)
		return
	}

	s.mu.Lock()
	s.refetchPending = false
	detailOpen := s.detailOpen
	currentID := s.currentID
	lastKnown := s.currentIndex
	s.mu.Unlock()

	if detailOpen {
		scope := s.navScope()
		idx := indexOf(scope, currentID)
		if idx < 0 {
			// The viewed item is gone server-side; fall back to the
			// nearest position.
			if res, ok := nav.ResolveNext(scope, currentID, lastKnown); ok {
				s.mu.Lock()
				s.currentID = res.NextID
				s.currentIndex = res.NextIndex
				s.mu.Unlock()
			} else {
				s.log.Warn().Msg("no content after refetch while detail view open")
			}
		} else {
			s.mu.Lock()
			s.currentIndex = idx
			s.mu.Unlock()
		}
	}

	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Session) invalidateSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateSourceLocked()
}

func (s *Session) invalidateSourceLocked() {
	if inv, ok := s.source.(Invalidator); ok {
		inv.Invalidate()
	}
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
