package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Aggregate queries over the tracks table. Day and weekday grouping use
// UTC calendar dates derived from the unix timestamp.

// weekdayNames maps sqlite's strftime('%w') digit to a day name.
var weekdayNames = map[string]string{
	"0": "Sunday",
	"1": "Monday",
	"2": "Tuesday",
	"3": "Wednesday",
	"4": "Thursday",
	"5": "Friday",
	"6": "Saturday",
}

// TopArtists returns the n most-played artists in descending play
// order. Ties break on artist name so results are deterministic.
func (s *Store) TopArtists(ctx context.Context, n int) ([]ArtistCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT artist, COUNT(*)
		FROM tracks
		GROUP BY artist
		ORDER BY 2 DESC, artist ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top artists: %w", err)
	}
	defer rows.Close()

	var artists []ArtistCount
	for rows.Next() {
		var ac ArtistCount
		if err := rows.Scan(&ac.Artist, &ac.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan artist count: %w", err)
		}
		artists = append(artists, ac)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artist counts: %w", err)
	}

	return artists, nil
}

// MostActiveWeekday returns the day of week with the most plays, or ""
// if the store is empty.
func (s *Store) MostActiveWeekday(ctx context.Context) (string, error) {
	var weekday string
	err := s.db.QueryRowContext(ctx, `
		SELECT strftime('%w', timestamp, 'unixepoch')
		FROM tracks
		GROUP BY 1
		ORDER BY COUNT(*) DESC
		LIMIT 1
	`).Scan(&weekday)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query most active weekday: %w", err)
	}

	name, ok := weekdayNames[weekday]
	if !ok {
		return "", fmt.Errorf("unexpected weekday value %q", weekday)
	}
	return name, nil
}

// AverageTracksPerDay returns the mean number of tracks per distinct
// calendar day with at least one play, or 0 for an empty store.
func (s *Store) AverageTracksPerDay(ctx context.Context) (float64, error) {
	count, err := s.CountTracks(ctx)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	var days int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT date(timestamp, 'unixepoch'))
		FROM tracks
	`).Scan(&days)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct days: %w", err)
	}

	return float64(count) / float64(days), nil
}
