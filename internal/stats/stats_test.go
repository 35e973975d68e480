package stats

import (
	"context"
	"strings"
	"testing"

	"github.com/jfmyers9/tracklog/internal/store"
)

func createSeededStore(t *testing.T, tracks []store.Track) *store.Store {
	t.Helper()

	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.InsertTracks(context.Background(), tracks); err != nil {
		t.Fatalf("failed to seed tracks: %v", err)
	}

	return s
}

func TestCollect(t *testing.T) {
	// Four tracks on 1970-01-01 (a Thursday), two on 1970-01-02.
	s := createSeededStore(t, []store.Track{
		{Name: "a", Artist: "Alpha", Timestamp: 100},
		{Name: "b", Artist: "Alpha", Timestamp: 200},
		{Name: "c", Artist: "Alpha", Timestamp: 300},
		{Name: "d", Artist: "Beta", Timestamp: 400},
		{Name: "e", Artist: "Beta", Timestamp: 86500},
		{Name: "f", Artist: "Gamma", Timestamp: 86600},
	})

	report, err := Collect(context.Background(), s, "test-user")
	if err != nil {
		t.Fatalf("failed to collect stats: %v", err)
	}

	if report.Username != "test-user" {
		t.Errorf("expected username test-user, got %q", report.Username)
	}
	if report.TrackCount != 6 {
		t.Errorf("expected 6 tracks, got %d", report.TrackCount)
	}
	if report.AveragePerDay != 3.0 {
		t.Errorf("expected average 3.0, got %f", report.AveragePerDay)
	}
	if report.MostActiveDay != "Thursday" {
		t.Errorf("expected Thursday, got %q", report.MostActiveDay)
	}

	want := []store.ArtistCount{
		{Artist: "Alpha", Plays: 3},
		{Artist: "Beta", Plays: 2},
		{Artist: "Gamma", Plays: 1},
	}
	if len(report.TopArtists) != len(want) {
		t.Fatalf("expected %d artists, got %d", len(want), len(report.TopArtists))
	}
	for i := range want {
		if report.TopArtists[i] != want[i] {
			t.Errorf("artist %d: expected %+v, got %+v", i, want[i], report.TopArtists[i])
		}
	}
}

func TestCollectEmptyStore(t *testing.T) {
	s := createSeededStore(t, nil)

	report, err := Collect(context.Background(), s, "test-user")
	if err != nil {
		t.Fatalf("failed to collect stats: %v", err)
	}

	if report.TrackCount != 0 {
		t.Errorf("expected 0 tracks, got %d", report.TrackCount)
	}
	if report.AveragePerDay != 0 {
		t.Errorf("expected average 0, got %f", report.AveragePerDay)
	}
	if report.MostActiveDay != "" {
		t.Errorf("expected empty weekday, got %q", report.MostActiveDay)
	}
	if len(report.TopArtists) != 0 {
		t.Errorf("expected no artists, got %v", report.TopArtists)
	}
}

func TestReportFormat(t *testing.T) {
	t.Run("with data", func(t *testing.T) {
		report := &Report{
			Username:   "test-user",
			TrackCount: 6,
			TopArtists: []store.ArtistCount{
				{Artist: "Alpha", Plays: 3},
				{Artist: "木村カエラ", Plays: 2},
			},
			AveragePerDay: 3.0,
			MostActiveDay: "Thursday",
		}

		out := report.Format()

		for _, want := range []string{
			`Stats for user "test-user"`,
			"Total tracks:    6",
			"Average per day: 3.0",
			"Most active day: Thursday",
			"1. Alpha",
			"2. 木村カエラ",
			"3 plays",
			"2 plays",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("empty store", func(t *testing.T) {
		report := &Report{Username: "test-user"}

		out := report.Format()

		if !strings.Contains(out, "No listening data fetched yet") {
			t.Errorf("expected empty-store message, got:\n%s", out)
		}
		if strings.Contains(out, "Most active day") {
			t.Errorf("expected no aggregate lines for empty store, got:\n%s", out)
		}
	})
}
