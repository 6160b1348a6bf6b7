package journal

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func assertEntry(t *testing.T, want, got Entry) {
	t.Helper()
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("seq %d: expected created_at %v, got %v", want.Seq, want.CreatedAt, got.CreatedAt)
	}
	want.CreatedAt, got.CreatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("expected %#v, got %#v", want, got)
	}
}

func TestAppendAndList(t *testing.T) {
	s := tempStore(t)
	if err := s.BeginSession("s1", "Launchpad"); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	first := Entry{
		SessionID:  "s1",
		Seq:        1,
		IntentKind: "request_fetch",
		IntentJSON: `{"kind":"request_fetch"}`,
		Effects:    []string{"call_fetch"},
		Fetching:   true,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	second := Entry{
		SessionID:      "s1",
		Seq:            2,
		IntentKind:     "fetch_succeeded",
		IntentJSON:     `{"kind":"fetch_succeeded","request":1,"status":{"kind":"valid"}}`,
		StatusKind:     "valid",
		ContentVisible: true,
		CanShowContent: true,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}
	for _, e := range []Entry{second, first} {
		if err := s.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := s.List("s1", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	assertEntry(t, first, entries[0])
	assertEntry(t, second, entries[1])

	limited, err := s.List("s1", 1)
	if err != nil {
		t.Fatalf("List limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Seq != 1 {
		t.Fatalf("expected only seq 1, got %#v", limited)
	}
}

func TestAppendFillsCreatedAt(t *testing.T) {
	s := tempStore(t)
	if err := s.BeginSession("s1", "Launchpad"); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	before := time.Now().UTC()
	if err := s.Append(Entry{SessionID: "s1", Seq: 1, IntentKind: "request_fetch", IntentJSON: "{}"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, _ := s.List("s1", 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].CreatedAt.Before(before.Add(-time.Second)) {
		t.Error("expected auto-filled created_at")
	}
	if entries[0].Effects != nil {
		t.Errorf("expected nil effects for empty list, got %v", entries[0].Effects)
	}
}

func TestAppendRejectsUnknownSession(t *testing.T) {
	s := tempStore(t)
	err := s.Append(Entry{SessionID: "ghost", Seq: 1, IntentKind: "request_fetch", IntentJSON: "{}"})
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestAppendRejectsDuplicateSeq(t *testing.T) {
	s := tempStore(t)
	s.BeginSession("s1", "Launchpad")
	e := Entry{SessionID: "s1", Seq: 1, IntentKind: "request_fetch", IntentJSON: "{}"}
	if err := s.Append(e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(e); err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestSessionsCountsIntents(t *testing.T) {
	s := tempStore(t)
	s.BeginSession("a", "Launchpad")
	s.BeginSession("b", "Launchpad")
	for i := int64(1); i <= 3; i++ {
		if err := s.Append(Entry{SessionID: "a", Seq: i, IntentKind: "request_fetch", IntentJSON: "{}"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	sessions, err := s.Sessions(10)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	counts := map[string]int64{}
	for _, r := range sessions {
		counts[r.SessionID] = r.Intents
		if r.AppName != "Launchpad" {
			t.Errorf("unexpected app name %q", r.AppName)
		}
	}
	if counts["a"] != 3 || counts["b"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestClosedStoreErrors(t *testing.T) {
	s := tempStore(t)
	s.Close()
	if err := s.BeginSession("s1", "x"); err == nil {
		t.Fatal("expected error on closed db")
	}
}
