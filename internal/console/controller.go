package console

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/models"
)

// ErrSuperseded is returned by Load when a newer request was issued before
// this one completed; its response was discarded.
var ErrSuperseded = errors.New("list response superseded by a newer request")

// Lister fetches one page of suggestions.
type Lister interface {
	List(ctx context.Context, req ListRequest) (*ListResult, error)
}

// Filter is the set of list criteria. Empty or "all" means unfiltered.
type Filter struct {
	Status   string
	Type     string
	Category string
}

// ListState is a copy of the controller state for rendering. Filter and Page
// describe the held list; Requested is the last fetch asked for, which differs
// from them while a load is running or after it failed.
type ListState struct {
	Filter      Filter
	Page        int
	Requested   Filter
	Suggestions []models.Suggestion
	Pagination  models.Pagination
	Loading     bool
	Err         error
}

// ListController owns the held page of suggestions. Every fetch carries a
// sequence number; only the response to the latest fetch is applied, and
// only a successful one changes the held filter, page and items.
type ListController struct {
	lister Lister
	logger *zap.Logger

	mu          sync.Mutex
	filter      Filter
	page        int
	next        Filter
	nextPage    int
	seq         uint64
	suggestions []models.Suggestion
	pagination  models.Pagination
	loading     bool
	err         error
}

// NewListController starts on page 1 with every filter set to "all".
func NewListController(lister Lister, logger *zap.Logger) *ListController {
	if logger == nil {
		logger = zap.NewNop()
	}
	all := Filter{Status: dto.StatusAll, Type: dto.StatusAll}
	return &ListController{
		lister:   lister,
		logger:   logger,
		filter:   all,
		next:     all,
		page:     1,
		nextPage: 1,
	}
}

// Load fetches page under the requested filter. On failure the held list,
// filter and page cursor are kept and the error is retained; Retry repeats
// the failed request.
func (c *ListController) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.seq++
	seq := c.seq
	filter := c.next
	c.nextPage = page
	c.loading = true
	c.mu.Unlock()

	res, err := c.lister.List(ctx, ListRequest{
		Page:     page,
		PerPage:  PageSize,
		Status:   filter.Status,
		Type:     filter.Type,
		Category: filter.Category,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("discarding stale list response", zap.Uint64("seq", seq), zap.Uint64("latest", c.seq))
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.err = err
		return err
	}
	c.err = nil
	c.filter = filter
	c.suggestions = res.Suggestions
	c.pagination = res.Pagination
	c.page = page
	if res.Pagination.CurrentPage > 0 {
		c.page = res.Pagination.CurrentPage
	}
	return nil
}

// Reload fetches the held page again.
func (c *ListController) Reload(ctx context.Context) error {
	return c.Load(ctx, c.CurrentPage())
}

// Retry repeats the last requested fetch, including one that failed.
func (c *ListController) Retry(ctx context.Context) error {
	c.mu.Lock()
	page := c.nextPage
	c.mu.Unlock()
	return c.Load(ctx, page)
}

// GoToPage keeps the filter and moves the cursor once the page arrives.
func (c *ListController) GoToPage(ctx context.Context, page int) error {
	return c.Load(ctx, page)
}

// SetStatusFilter changes the status criterion; a change loads page 1.
func (c *ListController) SetStatusFilter(ctx context.Context, status string) error {
	return c.applyFilter(ctx, func(f *Filter) { f.Status = normalizeChoice(status) })
}

// SetTypeFilter changes the suggestion type criterion; a change loads page 1.
func (c *ListController) SetTypeFilter(ctx context.Context, suggestionType string) error {
	return c.applyFilter(ctx, func(f *Filter) { f.Type = normalizeChoice(suggestionType) })
}

// SetCategoryFilter changes the gyeokguk name fragment; a change loads page 1.
func (c *ListController) SetCategoryFilter(ctx context.Context, category string) error {
	return c.applyFilter(ctx, func(f *Filter) { f.Category = category })
}

// StageFilter replaces the requested filter without fetching, so several
// criteria can be applied with a single Load. It reports whether anything
// changed.
func (c *ListController) StageFilter(f Filter) bool {
	return c.stage(func(next *Filter) { *next = f })
}

func (c *ListController) stage(mutate func(*Filter)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.next
	mutate(&next)
	next.Status = normalizeChoice(next.Status)
	next.Type = normalizeChoice(next.Type)
	if next == c.next {
		return false
	}
	c.next = next
	return true
}

func (c *ListController) applyFilter(ctx context.Context, mutate func(*Filter)) error {
	if !c.stage(mutate) {
		return nil
	}
	return c.Load(ctx, 1)
}

func normalizeChoice(value string) string {
	if value == "" {
		return dto.StatusAll
	}
	return value
}

// CurrentPage is the page of the held list.
func (c *ListController) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Snapshot copies the controller state.
func (c *ListController) Snapshot() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.Suggestion, len(c.suggestions))
	copy(items, c.suggestions)
	return ListState{
		Filter:      c.filter,
		Page:        c.page,
		Requested:   c.next,
		Suggestions: items,
		Pagination:  c.pagination,
		Loading:     c.loading,
		Err:         c.err,
	}
}
