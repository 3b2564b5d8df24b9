package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/memberboard/memberboard/internal/board"
	"github.com/memberboard/memberboard/internal/storage"
)

// ProfileSource lists stored profile records.
type ProfileSource interface {
	ListProfiles(limit int) ([]storage.Profile, error)
	CountProfiles() (int, error)
}

// ArtifactChecker verifies a posted card still exists on the board.
// Implemented by board.Publisher.
type ArtifactChecker interface {
	Ready() error
	Verify(ctx context.Context, artifactID string) error
}

// Worker periodically sweeps stored profiles and reports drift between
// records and their posted cards: a record without a card id (a save that
// outlived a failed publish bookkeeping step) or a card deleted on the
// platform out-of-band. It only logs; repair stays an operator decision.
type Worker struct {
	profiles ProfileSource
	checker  ArtifactChecker
	interval time.Duration
	logger   *slog.Logger
}

// NewWorker creates a Worker sweeping at the given interval.
// If interval is <= 0, it defaults to 15 minutes.
func NewWorker(profiles ProfileSource, checker ArtifactChecker, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Worker{
		profiles: profiles,
		checker:  checker,
		interval: interval,
		logger:   slog.Default(),
	}
}

// Run sweeps until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}

		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Error("board audit failed", "error", err)
		}
	}
}

// RunOnce performs a single sweep and returns the number of drifted
// records found. An unconfigured channel skips the sweep entirely.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	if err := w.checker.Ready(); err != nil {
		w.logger.Debug("board audit skipped", "reason", err)
		return 0, nil
	}

	total, err := w.profiles.CountProfiles()
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	records, err := w.profiles.ListProfiles(total)
	if err != nil {
		return 0, err
	}

	drifted := 0
	for _, p := range records {
		if ctx.Err() != nil {
			return drifted, ctx.Err()
		}

		if p.ArtifactID == "" {
			drifted++
			w.logger.Warn("profile record has no posted card", "user_id", p.UserID)
			continue
		}

		err := w.checker.Verify(ctx, p.ArtifactID)
		switch {
		case err == nil:
		case errors.Is(err, board.ErrArtifactNotFound):
			drifted++
			w.logger.Warn("posted card missing from board",
				"user_id", p.UserID,
				"artifact_id", p.ArtifactID,
			)
		default:
			// Transient board trouble; the next sweep will retry the check.
			w.logger.Warn("could not verify posted card",
				"user_id", p.UserID,
				"artifact_id", p.ArtifactID,
				"error", err,
			)
		}
	}

	if drifted > 0 {
		w.logger.Warn("board audit found drift", "records", total, "drifted", drifted)
	}
	return drifted, nil
}
