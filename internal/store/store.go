// Package store persists one user's fetched tracks and the ledger of
// time ranges that still need fetching.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrDuplicateRange is returned when inserting a missing range whose
// exact (from, to) pair is already in the ledger. The reconciliation
// algorithm never re-inserts an existing pair, so hitting this is a
// contract violation, not a recoverable condition.
var ErrDuplicateRange = errors.New("store: missing range already exists")

// Track is one fetched listening-history entry. Tracks are immutable;
// the timestamp is the dedup key.
type Track struct {
	Name      string
	Artist    string
	Timestamp int64
}

// TimeRange is a half-open window of time, From < To, known not to be
// fully fetched yet.
type TimeRange struct {
	From int64
	To   int64
}

// ArtistCount pairs an artist with how many of their tracks are stored.
type ArtistCount struct {
	Artist string
	Plays  int
}

// Store is a per-user SQLite database holding tracks and missing ranges.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent and is
	// plenty for one session's single-threaded access.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			artist TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_timestamp ON tracks(timestamp);

		CREATE TABLE IF NOT EXISTS missing_ranges (
			ts_from INTEGER NOT NULL,
			ts_to INTEGER NOT NULL,
			UNIQUE(ts_from, ts_to)
		);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertTracks appends all tracks in one transaction. No dedup happens
// at this layer; callers check HasTrack before deciding to insert.
func (s *Store) InsertTracks(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO tracks (name, artist, timestamp) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, track := range tracks {
		if _, err := stmt.ExecContext(ctx, track.Name, track.Artist, track.Timestamp); err != nil {
			return fmt.Errorf("failed to insert track at %d: %w", track.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HasTrack reports whether a track with the given timestamp is stored.
func (s *Store) HasTrack(ctx context.Context, timestamp int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tracks WHERE timestamp = ?)", timestamp,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check track existence: %w", err)
	}
	return exists, nil
}

// LatestTrack returns the track with the highest timestamp, or nil if
// the store is empty.
func (s *Store) LatestTrack(ctx context.Context) (*Track, error) {
	var track Track
	err := s.db.QueryRowContext(ctx,
		"SELECT name, artist, timestamp FROM tracks ORDER BY timestamp DESC LIMIT 1",
	).Scan(&track.Name, &track.Artist, &track.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest track: %w", err)
	}
	return &track, nil
}

// Empty reports whether no tracks are stored.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	count, err := s.CountTracks(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// CountTracks returns the number of stored tracks.
func (s *Store) CountTracks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}

// AllTracks returns every stored track, for inspection and tests.
// Order is not guaranteed.
func (s *Store) AllTracks(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, artist, timestamp FROM tracks")
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var track Track
		if err := rows.Scan(&track.Name, &track.Artist, &track.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}

	return tracks, nil
}

// InsertMissingRange records a still-unfetched window. Inserting a
// (from, to) pair that already exists returns ErrDuplicateRange.
func (s *Store) InsertMissingRange(ctx context.Context, tr TimeRange) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO missing_ranges (ts_from, ts_to) VALUES (?, ?)", tr.From, tr.To,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: [%d, %d]", ErrDuplicateRange, tr.From, tr.To)
		}
		return fmt.Errorf("failed to insert missing range: %w", err)
	}
	return nil
}

// RemoveMissingRange deletes the exact (from, to) pair. It returns true
// if a row existed and was removed.
func (s *Store) RemoveMissingRange(ctx context.Context, tr TimeRange) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM missing_ranges WHERE ts_from = ? AND ts_to = ?", tr.From, tr.To,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove missing range: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// LatestMissingRange returns the range with the highest From value, the
// most recently opened gap, or nil if the ledger is empty.
func (s *Store) LatestMissingRange(ctx context.Context) (*TimeRange, error) {
	var tr TimeRange
	err := s.db.QueryRowContext(ctx,
		"SELECT ts_from, ts_to FROM missing_ranges ORDER BY ts_from DESC LIMIT 1",
	).Scan(&tr.From, &tr.To)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest missing range: %w", err)
	}
	return &tr, nil
}

// MissingRangesEmpty reports whether the ledger has no entries.
func (s *Store) MissingRangesEmpty(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM missing_ranges").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count missing ranges: %w", err)
	}
	return count == 0, nil
}

// AllMissingRanges returns every ledger entry, for inspection and
// tests. Order is not guaranteed.
func (s *Store) AllMissingRanges(ctx context.Context) ([]TimeRange, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT ts_from, ts_to FROM missing_ranges")
	if err != nil {
		return nil, fmt.Errorf("failed to query missing ranges: %w", err)
	}
	defer rows.Close()

	var ranges []TimeRange
	for rows.Next() {
		var tr TimeRange
		if err := rows.Scan(&tr.From, &tr.To); err != nil {
			return nil, fmt.Errorf("failed to scan missing range: %w", err)
		}
		ranges = append(ranges, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missing ranges: %w", err)
	}

	return ranges, nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure. modernc.org/sqlite does not export a typed error for this,
// so the message is matched.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
