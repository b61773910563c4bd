package query

import (
	"fmt"
	"net/url"
	"time"
)

// Field selects which letter attribute a text search matches against. The
// values are the wire names the API expects.
type Field string

const (
	FieldSubject   Field = "subject"
	FieldSender    Field = "from"
	FieldRecipient Field = "to"
)

// Sort orders results by signature count
type Sort string

const (
	SortAsc  Sort = "asc"
	SortDesc Sort = "desc"
)

// Range is a time-range shortcut relative to today. When set it computes the
// date bounds and overrides any manually chosen dates.
type Range string

const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

const dateLayout = "2006-01-02"

// Filters holds the user-selected browse/search parameters for one view.
// Start and End are manual calendar dates in YYYY-MM-DD form, used only when
// no Range shortcut is set.
type Filters struct {
	Field Field
	Text  string
	Sort  Sort
	Start string
	End   string
	Range Range
}

// Validate rejects filter combinations the API would misinterpret. The enum
// fields are closed sets: an unrecognized shortcut must fail here rather than
// silently collapse to some other window downstream.
func (f Filters) Validate() error {
	switch f.Field {
	case "", FieldSubject, FieldSender, FieldRecipient:
	default:
		return fmt.Errorf("unknown search field %q: expected subject, from or to", f.Field)
	}
	switch f.Sort {
	case "", SortAsc, SortDesc:
	default:
		return fmt.Errorf("unknown sort order %q: expected asc or desc", f.Sort)
	}
	switch f.Range {
	case "", RangeToday, RangeWeek, RangeMonth, RangeYear, RangeAll:
	default:
		return fmt.Errorf("unknown time range %q: expected today, week, month, year or all", f.Range)
	}
	for _, d := range []string{f.Start, f.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", d)
		}
	}
	if f.Start != "" && f.End != "" && f.Start > f.End {
		return fmt.Errorf("start date %s is after end date %s", f.Start, f.End)
	}
	return nil
}

// Descriptor is the canonical key-value form of a filter set, ready for URL
// encoding.
type Descriptor map[string]string

// Values converts the descriptor to url.Values
func (d Descriptor) Values() url.Values {
	v := url.Values{}
	for k, val := range d {
		v.Set(k, val)
	}
	return v
}

// Encode renders the descriptor as a query string with sorted keys
func (d Descriptor) Encode() string {
	return d.Values().Encode()
}

// Build derives the request descriptor from a filter set. It is pure: the
// input is never mutated and the same filters with the same now always yield
// the same descriptor.
//
// A Range shortcut, when set, owns the date bounds: RangeAll omits them
// entirely even if stale manual dates linger in the filter state, and any
// other shortcut computes start relative to now with end = today. Without a
// shortcut the manual dates pass through when non-empty. Both bounds are
// inclusive calendar dates on the server side.
func Build(f Filters, now time.Time) Descriptor {
	sort := f.Sort
	if sort == "" {
		sort = SortDesc
	}
	d := Descriptor{"sortOrder": string(sort)}

	if f.Field != "" {
		d["field"] = string(f.Field)
		d["query"] = f.Text
	}

	switch {
	case f.Range == RangeAll:
		// unbounded, drop any manual dates
	case f.Range != "":
		start := now
		switch f.Range {
		case RangeWeek:
			start = now.AddDate(0, 0, -7)
		case RangeMonth:
			start = now.AddDate(0, -1, 0)
		case RangeYear:
			start = now.AddDate(-1, 0, 0)
		}
		d["startDate"] = start.Format(dateLayout)
		d["endDate"] = now.Format(dateLayout)
	default:
		if f.Start != "" {
			d["startDate"] = f.Start
		}
		if f.End != "" {
			d["endDate"] = f.End
		}
	}

	return d
}
