package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

// memStorage is an in-memory Storage for tests
type memStorage struct {
	token  string
	reads  int
	clears int
}

func (s *memStorage) Read() (string, error)   { s.reads++; return s.token, nil }
func (s *memStorage) Write(t string) error    { s.token = t; return nil }
func (s *memStorage) Clear() error            { s.token = ""; s.clears++; return nil }

func mintToken(t *testing.T, email string, exp int64) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]interface{}{
		"sub":   "user-1",
		"email": email,
		"exp":   exp,
		"iat":   time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	sig := base64.RawURLEncoding.EncodeToString([]byte("test-signature"))
	return header + "." + body + "." + sig
}

func TestDecodeValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	claims, err := Decode(mintToken(t, "helena@example.com", exp))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if claims.Email != "helena@example.com" {
		t.Errorf("expected email helena@example.com, got %q", claims.Email)
	}
	if claims.ExpiresAt != exp {
		t.Errorf("expected exp %d, got %d", exp, claims.ExpiresAt)
	}
}

func TestDecodeMalformedToken(t *testing.T) {
	cases := []string{
		"",
		"not-a-token",
		"only.two",
		"a.b.c.d",
		"x.!!!notbase64!!!.y",
	}
	for _, raw := range cases {
		if _, err := Decode(raw); err == nil {
			t.Errorf("Decode(%q) expected error, got nil", raw)
		}
	}
}

func TestDecodeIsPure(t *testing.T) {
	raw := mintToken(t, "a@b.com", time.Now().Add(time.Hour).Unix())
	first, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Decode not deterministic: %+v != %+v", first, second)
	}
}

func TestCurrentValidSession(t *testing.T) {
	storage := &memStorage{token: mintToken(t, "helena@example.com", time.Now().Add(time.Hour).Unix())}
	m := NewManager(storage)

	sess, ok := m.Current()
	if !ok {
		t.Fatal("expected a valid session")
	}
	if sess.Email != "helena@example.com" {
		t.Errorf("expected email helena@example.com, got %q", sess.Email)
	}
	if storage.clears != 0 {
		t.Errorf("valid session must not touch storage, got %d clears", storage.clears)
	}
	if !m.IsAuthenticated() {
		t.Error("IsAuthenticated should be true")
	}
}

func TestCurrentPurgesInvalidToken(t *testing.T) {
	storage := &memStorage{token: "garbage"}
	m := NewManager(storage)

	if _, ok := m.Current(); ok {
		t.Fatal("expected no session for an invalid token")
	}
	if storage.clears != 1 {
		t.Fatalf("expected 1 clear, got %d", storage.clears)
	}

	// Second read finds nothing stored and must not purge again.
	if _, ok := m.Current(); ok {
		t.Fatal("expected no session on second read")
	}
	if storage.clears != 1 {
		t.Errorf("expected no further clears, got %d", storage.clears)
	}
}

func TestCurrentPurgesExpiredToken(t *testing.T) {
	storage := &memStorage{token: mintToken(t, "old@example.com", time.Now().Add(-time.Hour).Unix())}
	m := NewManager(storage)

	if _, ok := m.Current(); ok {
		t.Fatal("expected no session for an expired token")
	}
	if storage.clears != 1 {
		t.Errorf("expected expired token to be purged, got %d clears", storage.clears)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	storage := &memStorage{}
	m := NewManager(storage)

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear on empty storage: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestRawSkipsDecode(t *testing.T) {
	storage := &memStorage{token: "opaque-but-present"}
	m := NewManager(storage)

	raw, ok := m.Raw()
	if !ok || raw != "opaque-but-present" {
		t.Fatalf("Raw() = %q, %v", raw, ok)
	}
	if storage.clears != 0 {
		t.Error("Raw must not purge storage")
	}
}
