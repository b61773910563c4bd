package sign

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openletters/carta/internal/api"
	"github.com/openletters/carta/internal/model"
)

type fakeToggler struct {
	res   api.ToggleResult
	err   error
	calls int
}

func (f *fakeToggler) ToggleSignature(_ context.Context, _ string) (api.ToggleResult, error) {
	f.calls++
	return f.res, f.err
}

type fakeSessions struct {
	authed bool
	clears int
}

func (f *fakeSessions) IsAuthenticated() bool { return f.authed }
func (f *fakeSessions) Clear() error          { f.clears++; f.authed = false; return nil }

func TestToggleUnauthenticatedMakesNoCall(t *testing.T) {
	toggler := &fakeToggler{}
	c := New(toggler, &fakeSessions{authed: false})

	l := model.Letter{ID: "3", SignatureCount: 10}
	before := l

	err := c.Toggle(context.Background(), &l)
	if !errors.Is(err, api.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if toggler.calls != 0 {
		t.Errorf("no network call may happen without a session, got %d calls", toggler.calls)
	}
	if diff := cmp.Diff(before, l); diff != "" {
		t.Errorf("letter changed (-before +after):\n%s", diff)
	}
}

func TestToggleReplacesOnlySignatureFields(t *testing.T) {
	toggler := &fakeToggler{res: api.ToggleResult{Signed: true, SignatureCount: 873}}
	c := New(toggler, &fakeSessions{authed: true})

	l := model.Letter{
		ID:             "l1",
		SenderEmail:    "ana@example.com",
		Subject:        "Mais ciclovias",
		Body:           "texto",
		SignatureCount: 872,
		IsSigned:       false,
	}

	if err := c.Toggle(context.Background(), &l); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if !l.IsSigned || l.SignatureCount != 873 {
		t.Errorf("signature fields = (%v, %d), want (true, 873)", l.IsSigned, l.SignatureCount)
	}
	if l.SenderEmail != "ana@example.com" || l.Subject != "Mais ciclovias" || l.Body != "texto" {
		t.Error("toggle must not touch fields other than IsSigned/SignatureCount")
	}
}

func TestToggleSessionExpiredClearsSession(t *testing.T) {
	toggler := &fakeToggler{err: api.ErrSessionExpired}
	sessions := &fakeSessions{authed: true}
	c := New(toggler, sessions)

	l := model.Letter{ID: "l1", SignatureCount: 5}
	err := c.Toggle(context.Background(), &l)

	if !errors.Is(err, api.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if sessions.clears != 1 {
		t.Errorf("session must be cleared on 401, got %d clears", sessions.clears)
	}
	if l.SignatureCount != 5 {
		t.Error("letter must stay unchanged on failure")
	}
}

func TestToggleValidationErrorKeepsSession(t *testing.T) {
	toggler := &fakeToggler{err: &api.ValidationError{Message: "cooldown active"}}
	sessions := &fakeSessions{authed: true}
	c := New(toggler, sessions)

	l := model.Letter{ID: "l1", SignatureCount: 5}
	err := c.Toggle(context.Background(), &l)

	var verr *api.ValidationError
	if !errors.As(err, &verr) || verr.Message != "cooldown active" {
		t.Fatalf("expected the server message verbatim, got %v", err)
	}
	if sessions.clears != 0 {
		t.Error("a validation error must not clear the session")
	}
	if l.SignatureCount != 5 {
		t.Error("letter must stay unchanged on failure")
	}
}

func TestToggleGenericFailure(t *testing.T) {
	toggler := &fakeToggler{err: fmt.Errorf("connection reset")}
	sessions := &fakeSessions{authed: true}
	c := New(toggler, sessions)

	l := model.Letter{ID: "l1", SignatureCount: 5, IsSigned: true}
	before := l

	err := c.Toggle(context.Background(), &l)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, api.ErrSessionExpired) || errors.Is(err, api.ErrUnauthenticated) {
		t.Errorf("generic failure misclassified: %v", err)
	}
	if sessions.clears != 0 {
		t.Error("generic failures must not clear the session")
	}
	if diff := cmp.Diff(before, l); diff != "" {
		t.Errorf("letter changed (-before +after):\n%s", diff)
	}
}
