package browse

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
)

// fakeLister returns a canned response per query text
type fakeLister struct {
	byQuery map[string][]model.Letter
	err     error
	calls   int
}

func (f *fakeLister) ListLetters(_ context.Context, d query.Descriptor) ([]model.Letter, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[d["query"]], nil
}

func letterNamed(id string, count int) model.Letter {
	return model.Letter{ID: id, Subject: id, SignatureCount: count}
}

func TestFetchMovesToLoading(t *testing.T) {
	c := New(&fakeLister{}, query.Filters{Range: query.RangeAll})
	if c.State() != StateIdle {
		t.Fatalf("initial state = %v, want Idle", c.State())
	}
	c.Fetch(context.Background())
	if c.State() != StateLoading {
		t.Errorf("state after Fetch = %v, want Loading", c.State())
	}
}

func TestLastRequestWins(t *testing.T) {
	lister := &fakeLister{byQuery: map[string][]model.Letter{
		"ciclo":  {letterNamed("ciclo-1", 10)},
		"teatro": {letterNamed("teatro-1", 20)},
	}}
	c := New(lister, query.Filters{Field: query.FieldSubject, Text: "ciclo", Range: query.RangeAll})

	runFirst := c.Fetch(context.Background())

	c.SetFilters(query.Filters{Field: query.FieldSubject, Text: "teatro", Range: query.RangeAll})
	runSecond := c.Fetch(context.Background())

	// The second response lands first, then the slow first response arrives.
	second := runSecond()
	first := runFirst()

	if !c.Apply(second) {
		t.Fatal("latest response must be applied")
	}
	if c.Apply(first) {
		t.Fatal("superseded response must be discarded")
	}

	if len(c.Letters()) != 1 || c.Letters()[0].ID != "teatro-1" {
		t.Errorf("visible letters = %+v, want the teatro results", c.Letters())
	}
	if c.State() != StateSuccess {
		t.Errorf("state = %v, want Success", c.State())
	}
}

func TestEmptySuccessIsNotFailure(t *testing.T) {
	c := New(&fakeLister{byQuery: map[string][]model.Letter{}}, query.Filters{Range: query.RangeAll})
	run := c.Fetch(context.Background())
	c.Apply(run())

	if c.State() != StateSuccess {
		t.Errorf("state = %v, want Success", c.State())
	}
	if !c.Empty() {
		t.Error("Empty() should be true for a successful fetch with no rows")
	}
	if c.ErrMsg() != "" {
		t.Errorf("empty result must not carry an error message, got %q", c.ErrMsg())
	}
}

func TestFailureState(t *testing.T) {
	c := New(&fakeLister{err: fmt.Errorf("connection refused")}, query.Filters{Range: query.RangeAll})
	run := c.Fetch(context.Background())
	c.Apply(run())

	if c.State() != StateFailure {
		t.Errorf("state = %v, want Failure", c.State())
	}
	if c.ErrMsg() == "" {
		t.Error("failure must carry a user-facing message")
	}
	if c.Empty() {
		t.Error("a failure is not an empty result")
	}
}

func TestRetryAfterFailure(t *testing.T) {
	lister := &fakeLister{err: fmt.Errorf("boom")}
	c := New(lister, query.Filters{Range: query.RangeAll})
	c.Apply(c.Fetch(context.Background())())

	lister.err = nil
	lister.byQuery = map[string][]model.Letter{"": {letterNamed("l1", 5)}}
	c.Apply(c.Fetch(context.Background())())

	if c.State() != StateSuccess {
		t.Errorf("state = %v, want Success after retry", c.State())
	}
	if c.ErrMsg() != "" {
		t.Errorf("error message must be cleared on success, got %q", c.ErrMsg())
	}
}

func TestSetSortResortsLocallyWithoutRefetch(t *testing.T) {
	lister := &fakeLister{byQuery: map[string][]model.Letter{
		"": {
			letterNamed("a", 30),
			letterNamed("b", 10),
			letterNamed("c", 10),
			letterNamed("d", 20),
		},
	}}
	f := query.Filters{Field: query.FieldSubject, Sort: query.SortDesc, Range: query.RangeAll}
	c := New(lister, f)
	c.Apply(c.Fetch(context.Background())())
	callsAfterFetch := lister.calls

	c.SetSort(query.SortAsc)

	if lister.calls != callsAfterFetch {
		t.Errorf("sort change triggered %d extra fetches", lister.calls-callsAfterFetch)
	}

	gotIDs := make([]string, 0, len(c.Letters()))
	for _, l := range c.Letters() {
		gotIDs = append(gotIDs, l.ID)
	}
	// Ties (b, c at 10) keep their original relative order.
	want := []string{"b", "c", "d", "a"}
	if diff := cmp.Diff(want, gotIDs); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// Unrelated filters stay untouched.
	got := c.Filters()
	if got.Field != f.Field || got.Text != f.Text || got.Range != f.Range {
		t.Errorf("sort change altered unrelated filters: %+v", got)
	}
	if got.Sort != query.SortAsc {
		t.Errorf("sort = %v, want asc", got.Sort)
	}
}

func TestSetSortSameOrderNoop(t *testing.T) {
	lister := &fakeLister{byQuery: map[string][]model.Letter{"": {letterNamed("a", 1)}}}
	c := New(lister, query.Filters{Sort: query.SortDesc, Range: query.RangeAll})
	c.Apply(c.Fetch(context.Background())())

	c.SetSort(query.SortDesc)
	if c.Filters().Sort != query.SortDesc {
		t.Error("sort should remain desc")
	}
}
