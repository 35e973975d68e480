package history

import (
	"context"

	"github.com/jfmyers9/tracklog/internal/store"
	"github.com/jfmyers9/tracklog/pkg/lastfm"
)

// DefaultRequestLimit is the number of upstream requests a session may
// make before the fetcher starts refusing with ErrQuotaExceeded.
const DefaultRequestLimit = 5

// Fetcher retrieves the tracks played within one time window.
//
// Implementations return tracks newest-first; the reconciler depends on
// that ordering. Requests reports how many fetch attempts this session
// has made so far.
type Fetcher interface {
	Fetch(ctx context.Context, from, to int64) ([]store.Track, error)
	Requests() int
}

// LastFMFetcher fetches a user's listening history from Last.fm,
// enforcing a per-session request quota. It is not safe for concurrent
// use; one session owns one fetcher.
type LastFMFetcher struct {
	client   *lastfm.Client
	username string
	limit    int
	requests int
}

// NewLastFMFetcher creates a fetcher for one user's history. A limit of
// 0 or less falls back to DefaultRequestLimit.
func NewLastFMFetcher(client *lastfm.Client, username string, limit int) *LastFMFetcher {
	if limit <= 0 {
		limit = DefaultRequestLimit
	}
	return &LastFMFetcher{
		client:   client,
		username: username,
		limit:    limit,
	}
}

// Fetch retrieves tracks played between from and to, newest-first.
//
// Once the quota is spent further calls return ErrQuotaExceeded without
// counting against the quota. Upstream failures are wrapped in
// *UpstreamError; the attempt still counts.
func (f *LastFMFetcher) Fetch(ctx context.Context, from, to int64) ([]store.Track, error) {
	if f.requests >= f.limit {
		return nil, ErrQuotaExceeded
	}
	f.requests++

	recent, err := f.client.User().RecentTracks(ctx, f.username, from, to)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	tracks := make([]store.Track, 0, len(recent))
	for _, rt := range recent {
		tracks = append(tracks, store.Track{
			Name:      rt.Name,
			Artist:    rt.Artist,
			Timestamp: rt.Timestamp,
		})
	}

	return tracks, nil
}

// Requests returns the number of fetch attempts made this session.
func (f *LastFMFetcher) Requests() int {
	return f.requests
}
