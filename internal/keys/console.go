package keys

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// --- Requests ---

// SearchRequest is a search issued by the console. Run touches no console
// state and may be called off the event loop.
type SearchRequest struct {
	Seq   uint64
	Query SearchQuery

	ctx  context.Context
	repo Repository
}

// SearchResult is the completion of a SearchRequest.
type SearchResult struct {
	Seq     uint64
	Records []Record
	Err     error
}

// Run performs the search.
func (r SearchRequest) Run() SearchResult {
	records, err := r.repo.Search(r.ctx, r.Query)
	return SearchResult{Seq: r.Seq, Records: records, Err: err}
}

// SaveRequest is a validated save issued by the console.
type SaveRequest struct {
	Payload Record
	Edit    bool

	ctx  context.Context
	repo Repository
}

// SaveResult is the completion of a SaveRequest.
type SaveResult struct {
	Payload   Record
	Edit      bool
	Canonical *Record
	Err       error
}

// Run performs the save.
func (r SaveRequest) Run() SaveResult {
	canonical, err := r.repo.Save(r.ctx, r.Payload)
	return SaveResult{Payload: r.Payload, Edit: r.Edit, Canonical: canonical, Err: err}
}

// --- Console ---

// Console owns the filter, cache, pager and form of the key list. All
// methods must be called from one goroutine.
type Console struct {
	ctx  context.Context
	repo Repository
	log  zerolog.Logger

	filter     FilterState
	cache      Cache
	pager      Pager
	form       Form
	projected  []Record
	lastErr    error
	saveCancel context.CancelFunc
}

// NewConsole builds a console over repo. ctx bounds every remote call.
func NewConsole(ctx context.Context, repo Repository, log zerolog.Logger) *Console {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Console{
		ctx:   ctx,
		repo:  repo,
		log:   log,
		pager: NewPager(),
	}
}

// Load issues the initial search for the empty filter.
func (c *Console) Load() SearchRequest {
	return c.search()
}

// Refetch repeats the search for the current filter.
func (c *Console) Refetch() SearchRequest {
	return c.search()
}

// Close cancels any outstanding search or save.
func (c *Console) Close() {
	c.cache.Close()
	c.cancelSave()
}

func (c *Console) cancelSave() {
	if c.saveCancel != nil {
		c.saveCancel()
		c.saveCancel = nil
	}
}

// --- Filter ---

// Filter returns the current filter.
func (c *Console) Filter() FilterState {
	return c.filter
}

// SetQuery changes the free-text query, resets to page 1 and searches.
// It returns false when the query is unchanged.
func (c *Console) SetQuery(q string) (SearchRequest, bool) {
	if q == c.filter.Query() {
		return SearchRequest{}, false
	}
	c.filter.SetQuery(q)
	return c.filterChanged(), true
}

// ToggleFilter flips one attribute filter, resets to page 1 and searches.
func (c *Console) ToggleFilter(a Attribute) SearchRequest {
	c.filter.Toggle(a)
	return c.filterChanged()
}

// SetFilter sets one attribute filter. It returns false when unchanged.
func (c *Console) SetFilter(a Attribute, on bool) (SearchRequest, bool) {
	if c.filter.Enabled(a) == on {
		return SearchRequest{}, false
	}
	c.filter.Set(a, on)
	return c.filterChanged(), true
}

// ClearFilters turns every attribute filter off. It returns false when none
// were on.
func (c *Console) ClearFilters() (SearchRequest, bool) {
	if c.filter.Active() == 0 {
		return SearchRequest{}, false
	}
	c.filter.Clear()
	return c.filterChanged(), true
}

func (c *Console) filterChanged() SearchRequest {
	c.pager.Reset()
	c.reproject()
	return c.search()
}

func (c *Console) search() SearchRequest {
	ctx, seq := c.cache.Begin(c.ctx)
	return SearchRequest{
		Seq:   seq,
		Query: Translate(c.filter),
		ctx:   ctx,
		repo:  c.repo,
	}
}

// ApplySearch folds a search completion into the cache. Results for a
// superseded search and failed searches leave the list as it was. It
// returns true when the list was replaced.
func (c *Console) ApplySearch(res SearchResult) bool {
	if res.Seq != c.cache.Current() {
		c.log.Debug().
			Uint64("seq", res.Seq).
			Uint64("current", c.cache.Current()).
			Msg("dropping superseded search result")
		return false
	}
	if res.Err != nil {
		c.cache.Settle(res.Seq)
		if errors.Is(res.Err, context.Canceled) {
			return false
		}
		c.lastErr = res.Err
		c.log.Warn().Err(res.Err).Uint64("seq", res.Seq).Msg("search failed, keeping cached list")
		return false
	}
	dropped, ok := c.cache.Replace(res.Seq, res.Records)
	if !ok {
		return false
	}
	if dropped > 0 {
		c.log.Warn().Int("dropped", dropped).Msg("search returned records without a client name")
	}
	c.lastErr = nil
	c.reproject()
	c.pager.Clamp(c.TotalPages())
	return true
}

// Searching reports whether the newest search is outstanding.
func (c *Console) Searching() bool {
	return c.cache.Pending()
}

// Loaded reports whether any search has succeeded.
func (c *Console) Loaded() bool {
	return c.cache.Loaded()
}

// LastError returns the most recent remote failure, cleared by the next
// successful search or save.
func (c *Console) LastError() error {
	return c.lastErr
}

// Records returns the whole cached list.
func (c *Console) Records() []Record {
	return c.cache.Records()
}

// --- Projection & Paging ---

func (c *Console) reproject() {
	c.projected = Project(c.cache.Records(), c.filter.Criteria())
}

// Projected returns the cached records matching the filter.
func (c *Console) Projected() []Record {
	return c.projected
}

// Visible returns the records on the current page.
func (c *Console) Visible() []Record {
	return c.pager.Window(c.projected)
}

// Page returns the current 1-based page.
func (c *Console) Page() int {
	return c.pager.Page()
}

// TotalPages returns the page count of the projected list.
func (c *Console) TotalPages() int {
	return TotalPages(len(c.projected))
}

// FirstPage jumps to page 1.
func (c *Console) FirstPage() {
	c.pager.First()
}

// PrevPage moves back one page.
func (c *Console) PrevPage() {
	c.pager.Prev()
}

// HasPrevPage reports whether PrevPage would move.
func (c *Console) HasPrevPage() bool {
	return c.pager.HasPrev()
}

// HasNextPage reports whether NextPage would move.
func (c *Console) HasNextPage() bool {
	return c.pager.HasNext(c.TotalPages())
}

// NextPage moves forward one page.
func (c *Console) NextPage() {
	c.pager.Next(c.TotalPages())
}

// LastPage jumps to the last page.
func (c *Console) LastPage() {
	c.pager.Last(c.TotalPages())
}

// --- Form ---

// Form exposes the modal draft for reading and field edits.
func (c *Console) Form() *Form {
	return &c.form
}

// OpenCreate opens the modal with a blank draft.
func (c *Console) OpenCreate() bool {
	if !c.form.OpenCreate() {
		return false
	}
	c.lastErr = nil
	return true
}

// OpenEdit opens the modal on the i-th record of the current page. Records
// the server has not confirmed yet carry no key to edit and are refused.
func (c *Console) OpenEdit(i int) bool {
	visible := c.Visible()
	if i < 0 || i >= len(visible) || !visible[i].Confirmed() {
		return false
	}
	if !c.form.OpenEdit(visible[i]) {
		return false
	}
	c.lastErr = nil
	return true
}

// CloseForm hides the modal and discards the draft.
func (c *Console) CloseForm() bool {
	return c.form.Close()
}

// Submit validates the draft. When it fails no request is returned and the
// errors are on Form().Errors().
func (c *Console) Submit() (SaveRequest, bool) {
	editing := c.form.Editing()
	payload, ok := c.form.Submit()
	if !ok {
		return SaveRequest{}, false
	}
	c.log.Debug().
		Str("client_name", payload.ClientName).
		Bool("edit", editing).
		Msg("submitting api key")
	c.cancelSave()
	ctx, cancel := context.WithCancel(c.ctx)
	c.saveCancel = cancel
	return SaveRequest{
		Payload: payload,
		Edit:    editing,
		ctx:     ctx,
		repo:    c.repo,
	}, true
}

// ApplySave folds a save completion into the console. On success the record
// is merged into the cache, the modal closes and a refetch is returned. On
// failure the modal stays open with the draft intact.
func (c *Console) ApplySave(res SaveResult) (SearchRequest, bool) {
	c.cancelSave()
	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			c.log.Debug().Str("client_name", res.Payload.ClientName).Msg("save cancelled")
			c.form.Fail()
			return SearchRequest{}, false
		}
		c.lastErr = res.Err
		c.log.Error().
			Err(res.Err).
			Str("client_name", res.Payload.ClientName).
			Bool("edit", res.Edit).
			Msg("save api key failed")
		c.form.Fail()
		return SearchRequest{}, false
	}

	merged := res.Payload.Clone()
	if res.Canonical != nil && res.Canonical.Confirmed() && res.Canonical.ClientName != "" {
		merged = res.Canonical.Clone()
		if !merged.Equal(res.Payload) {
			c.log.Debug().Str("client_name", merged.ClientName).Msg("server adjusted saved record")
		}
	}
	if res.Edit {
		c.cache.Upsert(merged)
	} else {
		c.cache.Append(merged)
	}
	c.lastErr = nil
	c.reproject()
	c.pager.Clamp(c.TotalPages())
	c.form.Succeed()
	c.log.Info().Str("client_name", merged.ClientName).Bool("edit", res.Edit).Msg("api key saved")
	return c.Refetch(), true
}
