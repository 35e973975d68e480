// Package history implements incremental backfill of a user's
// listening history: deciding which time window to fetch next,
// reconciling what a fetch actually returned against what was asked
// for, and keeping a durable ledger of still-missing ranges so a later
// session can pick up where a rate-limited one stopped.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jfmyers9/tracklog/internal/store"
)

// DefaultBoundarySlack is how close (in seconds) a fetch's oldest
// timestamp must be to the requested lower bound before the remaining
// sliver may be considered resolved. Tuned to Last.fm's one-second
// timestamp granularity.
const DefaultBoundarySlack = 1

// ReconcilerConfig holds optional Reconciler settings.
type ReconcilerConfig struct {
	// Now supplies the wall clock, defaults to time.Now. Sampled
	// once per session-start window, not per request.
	Now func() time.Time

	// BoundarySlack overrides DefaultBoundarySlack when positive.
	BoundarySlack int64
}

// Reconciler decides which window to fetch next and folds fetch
// results back into the missing-range ledger.
type Reconciler struct {
	store *store.Store
	now   func() time.Time
	slack int64
}

// NewReconciler creates a Reconciler over the given store.
func NewReconciler(s *store.Store, cfg ReconcilerConfig) *Reconciler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	slack := cfg.BoundarySlack
	if slack <= 0 {
		slack = DefaultBoundarySlack
	}
	return &Reconciler{
		store: s,
		now:   now,
		slack: slack,
	}
}

// NextWindow returns the next window to fetch, or nil when the session
// has no more work. requests is the number of fetch attempts the
// session has made so far.
//
// The first request of a session always targets [latest stored
// timestamp (or 0), now]: catch up since the last session. Later
// requests resolve ledger gaps depth-first, newest gap (highest From)
// before older ones. Once a session has started on the ledger and
// emptied it, the session is done; the catch-up window is never
// re-derived mid-session.
func (r *Reconciler) NextWindow(ctx context.Context, requests int) (*store.TimeRange, error) {
	if requests > 0 {
		empty, err := r.store.MissingRangesEmpty(ctx)
		if err != nil {
			return nil, err
		}
		if empty {
			return nil, nil
		}

		latest, err := r.store.LatestMissingRange(ctx)
		if err != nil {
			return nil, err
		}
		return latest, nil
	}

	var from int64
	latest, err := r.store.LatestTrack(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		from = latest.Timestamp
	}

	return &store.TimeRange{From: from, To: r.now().UTC().Unix()}, nil
}

// Reconcile updates the ledger after a non-empty fetch. query is the
// window that was requested; got spans the returned tracks, oldest as
// From and newest as To.
//
// The queried window is always removed: either it was a ledger entry
// being resolved, or it was the session-start window which never had
// one (removal is then a no-op). If the fetch stopped short of the
// query's lower bound, the remaining older portion [query.From,
// got.From] is recorded as still missing, unless the leftover sliver is
// within the boundary slack and a track already sits on either bound,
// in which case a previous pass already covered it and inserting a
// residual range would only cause a pointless re-fetch.
func (r *Reconciler) Reconcile(ctx context.Context, query, got store.TimeRange) error {
	if _, err := r.store.RemoveMissingRange(ctx, query); err != nil {
		return err
	}

	if got.From-query.From <= r.slack {
		onQueryBound, err := r.store.HasTrack(ctx, query.From)
		if err != nil {
			return err
		}
		onGotBound, err := r.store.HasTrack(ctx, got.From)
		if err != nil {
			return err
		}
		if onQueryBound || onGotBound {
			return nil
		}
	}

	if err := r.store.InsertMissingRange(ctx, store.TimeRange{From: query.From, To: got.From}); err != nil {
		return fmt.Errorf("failed to record remaining window: %w", err)
	}
	return nil
}
