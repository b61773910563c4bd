package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/openletters/carta/internal/model"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "letters.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func TestSaveAndListLetters(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	letters := []model.Letter{
		{ID: "a", SenderEmail: "a@x.com", RecipientEmail: "r@x.com", Subject: "A",
			Body: "body a", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), SignatureCount: 5},
		{ID: "b", SenderEmail: "b@x.com", RecipientEmail: "r@x.com", Subject: "B",
			Body: "body b", CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), SignatureCount: 50},
	}
	if err := c.SaveLetters(ctx, letters); err != nil {
		t.Fatalf("SaveLetters: %v", err)
	}

	got, err := c.ListLetters(ctx, 10)
	if err != nil {
		t.Fatalf("ListLetters: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" {
		t.Errorf("expected most-signed first, got %+v", got)
	}
}

func TestSaveLettersUpserts(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	l := model.Letter{ID: "a", SenderEmail: "a@x.com", RecipientEmail: "r@x.com",
		Subject: "A", Body: "body", CreatedAt: time.Now().UTC().Truncate(time.Second), SignatureCount: 5}
	if err := c.SaveLetters(ctx, []model.Letter{l}); err != nil {
		t.Fatal(err)
	}

	l.SignatureCount = 6
	if err := c.SaveLetters(ctx, []model.Letter{l}); err != nil {
		t.Fatal(err)
	}

	got, err := c.GetLetter(ctx, "a")
	if err != nil {
		t.Fatalf("GetLetter: %v", err)
	}
	if diff := cmp.Diff(l, got); diff != "" {
		t.Errorf("letter mismatch (-want +got):\n%s", diff)
	}
}

func TestGetLetterCorruptDate(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	_, err := c.db.ExecContext(ctx, `
INSERT INTO letters (id, sender_email, recipient_email, subject, body, created_at, signature_count, fetched_at)
VALUES ('bad', 'a@x.com', 'r@x.com', 'A', 'body', 'not-a-date', 1, 'not-a-date')`)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	if _, err := c.GetLetter(ctx, "bad"); err == nil {
		t.Error("expected an error for an unparseable cached date")
	}
	if _, err := c.ListLetters(ctx, 10); err == nil {
		t.Error("expected ListLetters to surface the unparseable date")
	}
}

func TestGetLetterMissing(t *testing.T) {
	c := testCache(t)
	_, err := c.GetLetter(context.Background(), "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}
