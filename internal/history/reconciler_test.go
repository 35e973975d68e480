package history

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/jfmyers9/tracklog/internal/store"
)

// createTestStore creates an in-memory store for testing
func createTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// fixedClock returns a clock pinned at the given unix timestamp
func fixedClock(unix int64) func() time.Time {
	return func() time.Time {
		return time.Unix(unix, 0).UTC()
	}
}

func seedTracks(t *testing.T, s *store.Store, timestamps ...int64) {
	t.Helper()

	tracks := make([]store.Track, len(timestamps))
	for i, ts := range timestamps {
		tracks[i] = store.Track{Name: "Track", Artist: "Artist", Timestamp: ts}
	}
	if err := s.InsertTracks(context.Background(), tracks); err != nil {
		t.Fatalf("failed to seed tracks: %v", err)
	}
}

func seedRanges(t *testing.T, s *store.Store, ranges ...store.TimeRange) {
	t.Helper()

	for _, tr := range ranges {
		if err := s.InsertMissingRange(context.Background(), tr); err != nil {
			t.Fatalf("failed to seed missing range: %v", err)
		}
	}
}

func assertLedger(t *testing.T, s *store.Store, want []store.TimeRange) {
	t.Helper()

	got, err := s.AllMissingRanges(context.Background())
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}

	sort.Slice(got, func(i, j int) bool { return got[i].From < got[j].From })
	sort.Slice(want, func(i, j int) bool { return want[i].From < want[j].From })

	if len(got) != len(want) {
		t.Fatalf("expected ledger %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected ledger %v, got %v", want, got)
		}
	}
}

func TestNextWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("first request ever", func(t *testing.T) {
		s := createTestStore(t)
		r := NewReconciler(s, ReconcilerConfig{Now: fixedClock(100)})

		window, err := r.NextWindow(ctx, 0)
		if err != nil {
			t.Fatalf("failed to compute next window: %v", err)
		}
		if window == nil {
			t.Fatal("expected a window, got nil")
		}
		if window.From != 0 || window.To != 100 {
			t.Errorf("expected [0, 100], got [%d, %d]", window.From, window.To)
		}
	})

	t.Run("further request in first session", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 0, To: 95})
		seedTracks(t, s, 100, 96)
		r := NewReconciler(s, ReconcilerConfig{Now: fixedClock(100)})

		window, err := r.NextWindow(ctx, 1)
		if err != nil {
			t.Fatalf("failed to compute next window: %v", err)
		}
		if window == nil {
			t.Fatal("expected a window, got nil")
		}
		if window.From != 0 || window.To != 95 {
			t.Errorf("expected [0, 95], got [%d, %d]", window.From, window.To)
		}
	})

	t.Run("first request of a new session", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 90, To: 95}, store.TimeRange{From: 0, To: 80})
		seedTracks(t, s, 100, 96, 89, 81)
		r := NewReconciler(s, ReconcilerConfig{Now: fixedClock(110)})

		window, err := r.NextWindow(ctx, 0)
		if err != nil {
			t.Fatalf("failed to compute next window: %v", err)
		}
		if window == nil {
			t.Fatal("expected a window, got nil")
		}
		if window.From != 100 || window.To != 110 {
			t.Errorf("expected [100, 110], got [%d, %d]", window.From, window.To)
		}
	})

	t.Run("further request of a new session resumes newest gap", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 90, To: 95}, store.TimeRange{From: 0, To: 80})
		seedTracks(t, s, 110, 101, 100, 96, 89, 81)
		r := NewReconciler(s, ReconcilerConfig{Now: fixedClock(120)})

		window, err := r.NextWindow(ctx, 1)
		if err != nil {
			t.Fatalf("failed to compute next window: %v", err)
		}
		if window == nil {
			t.Fatal("expected a window, got nil")
		}
		if window.From != 90 || window.To != 95 {
			t.Errorf("expected [90, 95], got [%d, %d]", window.From, window.To)
		}
	})

	t.Run("no more work once ledger drained mid-session", func(t *testing.T) {
		s := createTestStore(t)
		seedTracks(t, s, 100)
		r := NewReconciler(s, ReconcilerConfig{Now: fixedClock(110)})

		window, err := r.NextWindow(ctx, 2)
		if err != nil {
			t.Fatalf("failed to compute next window: %v", err)
		}
		if window != nil {
			t.Errorf("expected no window, got [%d, %d]", window.From, window.To)
		}
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("records remaining older portion", func(t *testing.T) {
		s := createTestStore(t)
		seedTracks(t, s, 100, 95, 90)
		r := NewReconciler(s, ReconcilerConfig{})

		err := r.Reconcile(ctx,
			store.TimeRange{From: 0, To: 100},
			store.TimeRange{From: 90, To: 100},
		)
		if err != nil {
			t.Fatalf("failed to reconcile: %v", err)
		}

		assertLedger(t, s, []store.TimeRange{{From: 0, To: 90}})
	})

	t.Run("replaces ledger entry with narrower remainder", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 0, To: 90})
		seedTracks(t, s, 89, 85, 80)
		r := NewReconciler(s, ReconcilerConfig{})

		err := r.Reconcile(ctx,
			store.TimeRange{From: 0, To: 90},
			store.TimeRange{From: 80, To: 89},
		)
		if err != nil {
			t.Fatalf("failed to reconcile: %v", err)
		}

		assertLedger(t, s, []store.TimeRange{{From: 0, To: 80}})
	})

	t.Run("short gap with track on query bound resolves fully", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 100, To: 105})
		seedTracks(t, s, 104, 102, 101, 100)
		r := NewReconciler(s, ReconcilerConfig{})

		err := r.Reconcile(ctx,
			store.TimeRange{From: 100, To: 105},
			store.TimeRange{From: 101, To: 104},
		)
		if err != nil {
			t.Fatalf("failed to reconcile: %v", err)
		}

		assertLedger(t, s, nil)
	})

	t.Run("short gap with track on fetched bound resolves fully", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 100, To: 105})
		seedTracks(t, s, 104, 102, 101)
		r := NewReconciler(s, ReconcilerConfig{})

		err := r.Reconcile(ctx,
			store.TimeRange{From: 100, To: 105},
			store.TimeRange{From: 101, To: 104},
		)
		if err != nil {
			t.Fatalf("failed to reconcile: %v", err)
		}

		assertLedger(t, s, nil)
	})

	t.Run("short gap without boundary track is still recorded", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 100, To: 105})
		seedTracks(t, s, 104, 102)
		r := NewReconciler(s, ReconcilerConfig{})

		err := r.Reconcile(ctx,
			store.TimeRange{From: 100, To: 105},
			store.TimeRange{From: 101, To: 104},
		)
		if err != nil {
			t.Fatalf("failed to reconcile: %v", err)
		}

		assertLedger(t, s, []store.TimeRange{{From: 100, To: 101}})
	})

	t.Run("wider boundary slack", func(t *testing.T) {
		s := createTestStore(t)
		seedRanges(t, s, store.TimeRange{From: 100, To: 110})
		seedTracks(t, s, 109, 105, 103, 100)
		r := NewReconciler(s, ReconcilerConfig{BoundarySlack: 5})

		err := r.Reconcile(ctx,
			store.TimeRange{From: 100, To: 110},
			store.TimeRange{From: 103, To: 109},
		)
		if err != nil {
			t.Fatalf("failed to reconcile: %v", err)
		}

		assertLedger(t, s, nil)
	})
}
