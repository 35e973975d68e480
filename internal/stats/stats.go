// Package stats computes and renders aggregate listening statistics
// from the local store. It is read-only and never touches the network.
package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfmyers9/tracklog/internal/store"
	"github.com/mattn/go-runewidth"
)

// TopArtistCount is how many artists the report lists.
const TopArtistCount = 5

// Source is the slice of the store's read interface the reporter needs.
type Source interface {
	CountTracks(ctx context.Context) (int, error)
	TopArtists(ctx context.Context, n int) ([]store.ArtistCount, error)
	MostActiveWeekday(ctx context.Context) (string, error)
	AverageTracksPerDay(ctx context.Context) (float64, error)
}

// Report holds one user's aggregate listening statistics.
type Report struct {
	Username      string
	TrackCount    int
	TopArtists    []store.ArtistCount
	AveragePerDay float64
	MostActiveDay string
}

// Collect computes a report from the given source.
func Collect(ctx context.Context, src Source, username string) (*Report, error) {
	count, err := src.CountTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}

	artists, err := src.TopArtists(ctx, TopArtistCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute top artists: %w", err)
	}

	weekday, err := src.MostActiveWeekday(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute most active weekday: %w", err)
	}

	avg, err := src.AverageTracksPerDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute average per day: %w", err)
	}

	return &Report{
		Username:      username,
		TrackCount:    count,
		TopArtists:    artists,
		AveragePerDay: avg,
		MostActiveDay: weekday,
	}, nil
}

// Format renders the report as human-readable text.
func (r *Report) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Stats for user %q:\n", r.Username)
	fmt.Fprintf(&b, "  Total tracks:    %d\n", r.TrackCount)

	if r.TrackCount == 0 {
		b.WriteString("  No listening data fetched yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  Average per day: %.1f\n", r.AveragePerDay)
	fmt.Fprintf(&b, "  Most active day: %s\n", r.MostActiveDay)

	if len(r.TopArtists) > 0 {
		fmt.Fprintf(&b, "  Top %d artists:\n", len(r.TopArtists))

		// Align the play counts on the widest artist name. Width is
		// measured in display columns so CJK names line up too.
		nameWidth := 0
		for _, ac := range r.TopArtists {
			if w := runewidth.StringWidth(ac.Artist); w > nameWidth {
				nameWidth = w
			}
		}

		for i, ac := range r.TopArtists {
			padding := strings.Repeat(" ", nameWidth-runewidth.StringWidth(ac.Artist))
			fmt.Fprintf(&b, "    %d. %s%s  %d plays\n", i+1, ac.Artist, padding, ac.Plays)
		}
	}

	return b.String()
}
