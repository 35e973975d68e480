package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jfmyers9/tracklog/internal/store"
	"github.com/rs/zerolog"
)

// Outcome says why a session stopped.
type Outcome int

const (
	// OutcomeCaughtUp means no missing ranges remain.
	OutcomeCaughtUp Outcome = iota

	// OutcomeQuotaExhausted means the request quota ran out with
	// gaps still in the ledger; a later session will resume them.
	OutcomeQuotaExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCaughtUp:
		return "caught up"
	case OutcomeQuotaExhausted:
		return "quota exhausted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Session drives one polling run: ask the reconciler for a window,
// fetch it, persist, reconcile, repeat until caught up or out of quota.
type Session struct {
	store      *store.Store
	fetcher    Fetcher
	reconciler *Reconciler
	logger     zerolog.Logger
}

// NewSession creates a session over one user's store and fetcher.
func NewSession(s *store.Store, fetcher Fetcher, reconciler *Reconciler, logger zerolog.Logger) *Session {
	return &Session{
		store:      s,
		fetcher:    fetcher,
		reconciler: reconciler,
		logger:     logger.With().Str("component", "session").Logger(),
	}
}

// Run loops cycles until the session terminates. Quota exhaustion is a
// normal outcome, not an error; upstream failures abort the session.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	for {
		more, err := s.RunCycle(ctx)
		if errors.Is(err, ErrQuotaExceeded) {
			s.logger.Info().Int("requests", s.fetcher.Requests()).Msg("Request quota exhausted, stopping session")
			return OutcomeQuotaExhausted, nil
		}
		if err != nil {
			return OutcomeCaughtUp, err
		}
		if !more {
			s.logger.Info().Msg("No more missing ranges, session complete")
			return OutcomeCaughtUp, nil
		}
	}
}

// RunCycle performs one fetch-and-reconcile cycle. It returns whether
// more work may remain.
func (s *Session) RunCycle(ctx context.Context) (bool, error) {
	window, err := s.reconciler.NextWindow(ctx, s.fetcher.Requests())
	if err != nil {
		return false, err
	}
	if window == nil {
		return false, nil
	}

	s.logger.Debug().
		Int64("from", window.From).
		Int64("to", window.To).
		Msg("Fetching window")

	tracks, err := s.fetcher.Fetch(ctx, window.From, window.To)
	if err != nil {
		return false, err
	}

	if len(tracks) == 0 {
		// Nothing in this window; it is fully resolved.
		if _, err := s.store.RemoveMissingRange(ctx, *window); err != nil {
			return false, err
		}
		empty, err := s.store.MissingRangesEmpty(ctx)
		if err != nil {
			return false, err
		}
		return !empty, nil
	}

	// A window may overlap tracks persisted by an earlier, aborted
	// session; only timestamps not yet stored are inserted.
	fresh := make([]store.Track, 0, len(tracks))
	for _, track := range tracks {
		exists, err := s.store.HasTrack(ctx, track.Timestamp)
		if err != nil {
			return false, err
		}
		if !exists {
			fresh = append(fresh, track)
		}
	}

	if err := s.store.InsertTracks(ctx, fresh); err != nil {
		return false, err
	}

	// Newest-first ordering: first element is the newest.
	got := store.TimeRange{
		From: tracks[len(tracks)-1].Timestamp,
		To:   tracks[0].Timestamp,
	}

	s.logger.Debug().
		Int("tracks", len(fresh)).
		Int64("oldest", got.From).
		Int64("newest", got.To).
		Msg("Persisted tracks")

	if err := s.reconciler.Reconcile(ctx, *window, got); err != nil {
		return false, err
	}

	return true, nil
}
