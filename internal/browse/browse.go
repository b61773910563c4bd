// Package browse owns the filter state for one letters view and guards result
// application against out-of-order responses: only the response belonging to
// the most recently issued request may touch visible state.
package browse

import (
	"context"
	"sort"
	"time"

	"github.com/openletters/carta/internal/logger"
	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
)

// State is the view's lifecycle phase
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateFailure
)

// Lister fetches letters for a query descriptor
type Lister interface {
	ListLetters(ctx context.Context, d query.Descriptor) ([]model.Letter, error)
}

// Result is the outcome of one fetch, tagged with the request generation that
// issued it.
type Result struct {
	ReqID   uint64
	Letters []model.Letter
	Err     error
}

// Controller drives one browse/search view. It is used from a single
// goroutine (the TUI update loop or a CLI command); fetches run elsewhere and
// hand their Result back through Apply.
type Controller struct {
	lister  Lister
	filters query.Filters

	state   State
	letters []model.Letter
	errMsg  string
	reqID   uint64
}

// New creates a controller with the given initial filters
func New(lister Lister, filters query.Filters) *Controller {
	return &Controller{lister: lister, filters: filters}
}

func (c *Controller) State() State            { return c.state }
func (c *Controller) Letters() []model.Letter { return c.letters }
func (c *Controller) Filters() query.Filters  { return c.filters }

// ErrMsg returns the user-facing failure message, empty outside StateFailure
func (c *Controller) ErrMsg() string { return c.errMsg }

// Empty reports a successful fetch that matched nothing. This is a distinct
// situation from StateFailure and gets a different message.
func (c *Controller) Empty() bool {
	return c.state == StateSuccess && len(c.letters) == 0
}

// SetFilters replaces the filter state without fetching
func (c *Controller) SetFilters(f query.Filters) {
	c.filters = f
}

// SetRange switches the time-range shortcut
func (c *Controller) SetRange(r query.Range) {
	c.filters.Range = r
}

// SetSort changes the sort order. When results are already fully loaded they
// are re-sorted locally by signature count with a stable order (ties keep
// their arrival order); no other filter is touched and no refetch happens.
func (c *Controller) SetSort(s query.Sort) {
	if c.filters.Sort == s {
		return
	}
	c.filters.Sort = s
	if c.state == StateSuccess {
		c.resort()
	}
}

func (c *Controller) resort() {
	asc := c.filters.Sort == query.SortAsc
	sort.SliceStable(c.letters, func(i, j int) bool {
		if asc {
			return c.letters[i].SignatureCount < c.letters[j].SignatureCount
		}
		return c.letters[i].SignatureCount > c.letters[j].SignatureCount
	})
}

// Fetch starts a new request cycle. It bumps the request generation, moves
// the view to Loading, and returns a closure that performs the network call
// and yields a tagged Result. Running the closure on another goroutine (or a
// tea.Cmd) is the caller's business; the Result must come back through Apply.
func (c *Controller) Fetch(ctx context.Context) func() Result {
	c.reqID++
	c.state = StateLoading
	c.errMsg = ""

	id := c.reqID
	d := query.Build(c.filters, time.Now())

	logger.Debug("Fetching letters", logger.F("reqID", id), logger.F("query", d.Encode()))

	lister := c.lister
	return func() Result {
		letters, err := lister.ListLetters(ctx, d)
		return Result{ReqID: id, Letters: letters, Err: err}
	}
}

// Apply folds a fetch result into the view state. Results from superseded
// requests are discarded: a fetch issued before the latest filter change must
// never overwrite newer results, even if it completes last. Returns whether
// the result was applied.
func (c *Controller) Apply(res Result) bool {
	if res.ReqID != c.reqID {
		logger.Debug("Discarding stale response",
			logger.F("got", res.ReqID), logger.F("current", c.reqID))
		return false
	}

	if res.Err != nil {
		c.state = StateFailure
		c.errMsg = "Could not load letters. Try again."
		c.letters = nil
		logger.Warn("Letter fetch failed", logger.F("error", res.Err))
		return true
	}

	c.state = StateSuccess
	c.errMsg = ""
	c.letters = res.Letters
	c.resort()
	return true
}
