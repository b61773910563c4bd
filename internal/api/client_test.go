package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
	"github.com/openletters/carta/internal/session"
)

type memStorage struct {
	token string
}

func (s *memStorage) Read() (string, error) { return s.token, nil }
func (s *memStorage) Write(t string) error  { s.token = t; return nil }
func (s *memStorage) Clear() error          { s.token = ""; return nil }

func newTestClient(serverURL, token string) (*Client, *memStorage) {
	storage := &memStorage{token: token}
	return New(serverURL, session.NewManager(storage)), storage
}

func TestListLettersNormalizesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/letters" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("sortOrder"); got != "desc" {
			t.Errorf("sortOrder = %q, want desc", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"l1","senderEmail":"ana@example.com","recipient_email":"camara@cidade.gov",
			 "subject":"Mais ciclovias","body":"...","created_at":"2025-03-01T12:00:00Z",
			 "signatureCount":872}
		]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "")
	letters, err := client.ListLetters(context.Background(), query.Descriptor{"sortOrder": "desc"})
	if err != nil {
		t.Fatalf("ListLetters: %v", err)
	}

	want := []model.Letter{{
		ID:             "l1",
		SenderEmail:    "ana@example.com",
		RecipientEmail: "camara@cidade.gov",
		Subject:        "Mais ciclovias",
		Body:           "...",
		CreatedAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		SignatureCount: 872,
	}}
	if diff := cmp.Diff(want, letters); diff != "" {
		t.Errorf("letters mismatch (-want +got):\n%s", diff)
	}
}

func TestListLettersEmptyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "")
	letters, err := client.ListLetters(context.Background(), query.Descriptor{"sortOrder": "desc"})
	if err != nil {
		t.Fatalf("ListLetters: %v", err)
	}
	if len(letters) != 0 {
		t.Errorf("expected 0 letters, got %d", len(letters))
	}
}

func TestGetLetterNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"letter not found"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "")
	_, err := client.GetLetter(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "raw-token-value")
	if _, err := client.ListLetters(context.Background(), query.Descriptor{}); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer raw-token-value" {
		t.Errorf("Authorization = %q, want Bearer raw-token-value", gotAuth)
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "")
	if _, err := client.ListLetters(context.Background(), query.Descriptor{}); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestToggleSignatureSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "stale-token")
	_, err := client.ToggleSignature(context.Background(), "l1")
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestToggleSignatureResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/letters/l1/toggle-signature" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"signed":true,"signatureCount":873}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "tok")
	res, err := client.ToggleSignature(context.Background(), "l1")
	if err != nil {
		t.Fatalf("ToggleSignature: %v", err)
	}
	if !res.Signed || res.SignatureCount != 873 {
		t.Errorf("result = %+v, want signed=true count=873", res)
	}
}

func TestCreateLetterCooldownSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"cooldown active"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, "tok")
	_, err := client.CreateLetter(context.Background(), CreateLetterInput{
		RecipientEmail: "alguem@example.com",
		Subject:        "Oi",
		Body:           "corpo",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "cooldown active" {
		t.Errorf("message = %q, want it passed through verbatim", verr.Message)
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"token":"issued-token"}`))
	}))
	defer srv.Close()

	client, storage := newTestClient(srv.URL, "")
	if err := client.Login(context.Background(), "ana@example.com", "Senha123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if storage.token != "issued-token" {
		t.Errorf("stored token = %q, want issued-token", storage.token)
	}
}

func TestLoginRejectionIsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	client, storage := newTestClient(srv.URL, "")
	err := client.Login(context.Background(), "ana@example.com", "wrong")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if storage.token != "" {
		t.Error("a failed login must not store a token")
	}
}
