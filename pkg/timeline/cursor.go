package timeline

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/markrai/seen-engine/pkg/asset"
)

// TotalUnknown is the Total value before the first page has loaded.
const TotalUnknown = -1

var (
	// ErrLoadInFlight means a load in the same direction has not
	// completed yet. Forward and backward loads may overlap; two loads
	// in the same direction may not, or they would capture the same
	// starting offset and double-fetch the range. A pending reset
	// blocks both directions, since the offsets a directional load
	// would capture are about to be replaced.
	ErrLoadInFlight = errors.New("timeline: load already in flight in this direction")

	// ErrSuperseded means the response arrived after a newer reset and
	// was discarded. Cursor state is untouched.
	ErrSuperseded = errors.New("timeline: load superseded by a newer reset")

	// ErrNoPrevious means the window already begins at offset 0.
	ErrNoPrevious = errors.New("timeline: no previous page before offset 0")
)

// FetchFunc is the external paged-fetch collaborator. Items must come
// back in the order implied by the sort spec; Total reflects the full
// matching count at the time of the call.
type FetchFunc func(ctx context.Context, offset, limit int, spec asset.SortSpec, filter asset.FilterCriteria) (asset.Page, error)

// State is a snapshot of the cursor's offset bookkeeping.
type State struct {
	Start      int
	End        int
	Total      int
	Generation uint64
}

// Cursor tracks the contiguous offset window loaded so far and extends
// it in either direction. All state updates use the offset captured at
// request time and are applied atomically when the fetch completes; a
// failed fetch leaves the state unchanged so a retry is idempotent.
//
// The cursor never self-heals against server-side count changes. The
// owner is expected to call Reset, which starts a new generation;
// responses from before the reset are discarded.
type Cursor struct {
	mu       sync.Mutex
	fetch    FetchFunc
	pageSize int
	spec     asset.SortSpec
	filter   asset.FilterCriteria
	log      zerolog.Logger

	working     *WorkingSet
	start, end  int
	total       int
	generation  uint64
	loadingFwd  bool
	loadingBack bool
}

// NewCursor creates an empty cursor. Call Load to populate the first
// page before using the directional loads.
func NewCursor(fetch FetchFunc, pageSize int, spec asset.SortSpec, filter asset.FilterCriteria, log zerolog.Logger) *Cursor {
	return &Cursor{
		fetch:    fetch,
		pageSize: pageSize,
		spec:     spec,
		filter:   filter,
		log:      log.With().Str("component", "cursor").Logger(),
		working:  NewWorkingSet(),
		total:    TotalUnknown,
	}
}

// Load starts a new generation anchored at the given offset and fetches
// the first page there. Any in-flight loads from the previous
// generation are discarded when they complete. While the fetch runs the
// cursor counts as loading in both directions, so directional loads are
// refused rather than capturing offsets that the new generation is about
// to replace. The old working set stays in place until the new page
// arrives, so a failed load leaves the previous state intact and a
// retry is safe.
func (c *Cursor) Load(ctx context.Context, offset int) (int, error) {
	if offset < 0 {
		offset = 0
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loadingFwd, c.loadingBack = true, true
	c.mu.Unlock()

	page, err := c.fetch(ctx, offset, c.pageSize, c.spec, c.filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return 0, ErrSuperseded
	}
	c.loadingFwd, c.loadingBack = false, false
	if err != nil {
		return 0, err
	}
	fresh := NewWorkingSet()
	added := fresh.Append(page.Items)
	c.working = fresh
	c.start, c.end = offset, offset+len(page.Items)
	c.total = page.Total
	c.log.Debug().Int("offset", offset).Int("added", added).Int("total", page.Total).Msg("initial page loaded")
	return added, nil
}

// Reset reloads from offset 0 under a new generation.
func (c *Cursor) Reset(ctx context.Context) (int, error) {
	return c.Load(ctx, 0)
}

// LoadForward fetches the page after the loaded window and appends it.
// It returns the number of newly inserted items.
func (c *Cursor) LoadForward(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.loadingFwd {
		c.mu.Unlock()
		return 0, ErrLoadInFlight
	}
	c.loadingFwd = true
	off := c.end
	gen := c.generation
	c.mu.Unlock()

	page, err := c.fetch(ctx, off, c.pageSize, c.spec, c.filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return 0, ErrSuperseded
	}
	c.loadingFwd = false
	if err != nil {
		return 0, err
	}
	added := c.working.Append(page.Items)
	c.end = off + len(page.Items)
	c.total = page.Total
	c.log.Debug().Int("offset", off).Int("added", added).Msg("forward page loaded")
	return added, nil
}

// LoadBackward fetches the page before the loaded window and prepends
// it. It returns ErrNoPrevious when the window already starts at 0.
// When less than a full page precedes the window, the fetched range
// overlaps items already loaded; dedup drops the overlap.
func (c *Cursor) LoadBackward(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.loadingBack {
		c.mu.Unlock()
		return 0, ErrLoadInFlight
	}
	if c.start <= 0 {
		c.mu.Unlock()
		return 0, ErrNoPrevious
	}
	c.loadingBack = true
	off := c.start - c.pageSize
	if off < 0 {
		off = 0
	}
	gen := c.generation
	c.mu.Unlock()

	page, err := c.fetch(ctx, off, c.pageSize, c.spec, c.filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return 0, ErrSuperseded
	}
	c.loadingBack = false
	if err != nil {
		return 0, err
	}
	added := c.working.Prepend(page.Items)
	c.start = off
	c.total = page.Total
	c.log.Debug().Int("offset", off).Int("added", added).Msg("backward page loaded")
	return added, nil
}

// HasNext reports whether more items exist after the loaded window.
// Unknown total defaults to true so the first load is always attempted.
func (c *Cursor) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total == TotalUnknown {
		return true
	}
	return c.end < c.total
}

// HasPrevious reports whether anything precedes the loaded window.
func (c *Cursor) HasPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start > 0
}

// State returns a snapshot of the offset bookkeeping.
func (c *Cursor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Start: c.start, End: c.end, Total: c.total, Generation: c.generation}
}

// Items returns the live (non-deleted) assets in load order.
func (c *Cursor) Items() []asset.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working.Live()
}

// Has reports whether the id is loaded, deleted or not.
func (c *Cursor) Has(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working.Has(id)
}

// MarkDeleted logically removes an id from the working set. Offset
// bookkeeping is stale afterwards until the owner resets; the cursor
// does not attempt partial patching.
func (c *Cursor) MarkDeleted(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working.MarkDeleted(id)
}

// LiveLen counts the live (non-deleted) assets.
func (c *Cursor) LiveLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working.LiveLen()
}
