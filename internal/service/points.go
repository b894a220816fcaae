package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sports-week-api/internal/metrics"
	"sports-week-api/internal/model"
	"sports-week-api/internal/pkg/lock"
	"sports-week-api/internal/points"
	"sports-week-api/internal/repository"
)

// PointsService scores finished matches: it calculates awards, applies
// them once per match and broadcasts the leaderboard update.
type PointsService struct {
	store       Store
	calculator  *points.Calculator
	applier     *points.Applier
	locks       *lock.KeyLock
	lockTimeout time.Duration
	notifier    Notifier
	now         func() time.Time
}

// NewPointsService creates a new PointsService instance.
// A nil notifier discards events.
func NewPointsService(store Store, locks *lock.KeyLock, lockTimeout time.Duration, notifier Notifier) *PointsService {
	if locks == nil {
		locks = lock.NewKeyLock()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &PointsService{
		store:       store,
		calculator:  points.NewCalculator(store),
		applier:     points.NewApplier(store),
		locks:       locks,
		lockTimeout: lockTimeout,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Calculate returns the award for a finished match without writing.
func (s *PointsService) Calculate(ctx context.Context, matchID uuid.UUID) (*model.PointsCalculationResult, error) {
	start := time.Now()
	calc, err := s.calculator.Calculate(ctx, matchID)
	metrics.RecordPointsOperation("calculate", outcome(err), start)
	if err != nil {
		return nil, err
	}
	return calc, nil
}

// Apply persists a calculation produced by Calculate and broadcasts it.
func (s *PointsService) Apply(ctx context.Context, calc *model.PointsCalculationResult) error {
	if calc == nil {
		return points.ErrNilCalculation
	}
	start := time.Now()
	err := s.withMatchLock(ctx, calc.MatchID, func() error {
		return s.applier.Apply(ctx, calc)
	})
	metrics.RecordPointsOperation("apply", outcome(err), start)
	if err != nil {
		return err
	}

	s.applied(calc)
	return nil
}

// CalculateAndApply calculates from stored state and applies the result in
// one transaction.
func (s *PointsService) CalculateAndApply(ctx context.Context, matchID uuid.UUID) (*model.PointsCalculationResult, error) {
	start := time.Now()
	var calc *model.PointsCalculationResult
	err := s.withMatchLock(ctx, matchID, func() error {
		var err error
		calc, err = s.score(ctx, matchID, false, nil)
		return err
	})
	metrics.RecordPointsOperation("apply", outcome(err), start)
	if err != nil {
		return nil, err
	}

	s.applied(calc)
	return calc, nil
}

// Correction replaces the recorded outcome of a match during a recompute.
// WinnerID nil records a drawn match. Draws nil keeps the stored DRAW
// markers; a non-nil slice becomes the exact set of drawn participants.
type Correction struct {
	WinnerID *uuid.UUID
	Draws    []uuid.UUID
}

// Recompute reverses any previous award for the match, applies corr when
// given, and applies a fresh calculation, all in one transaction.
func (s *PointsService) Recompute(ctx context.Context, matchID uuid.UUID, corr *Correction) (*model.PointsCalculationResult, error) {
	start := time.Now()
	var calc *model.PointsCalculationResult
	err := s.withMatchLock(ctx, matchID, func() error {
		var err error
		calc, err = s.score(ctx, matchID, true, corr)
		return err
	})
	metrics.RecordPointsOperation("recompute", outcome(err), start)
	if err != nil {
		return nil, err
	}

	if corr != nil && corr.WinnerID != nil {
		s.notifier.Publish(model.EventMatchWinnerSet, model.MatchWinnerSet{
			MatchID:   matchID,
			WinnerID:  *corr.WinnerID,
			Timestamp: s.now(),
		})
	}
	s.applied(calc)
	return calc, nil
}

// score locks the match row, optionally reverses a previous application and
// records a correction, then calculates and applies. Callers hold the match
// key lock.
func (s *PointsService) score(ctx context.Context, matchID uuid.UUID, reverse bool, corr *Correction) (*model.PointsCalculationResult, error) {
	var calc *model.PointsCalculationResult
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		match, err := s.store.GetMatchForUpdate(ctx, matchID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return points.ErrNotApplicable
			}
			return fmt.Errorf("%w: lock match: %w", points.ErrStorage, err)
		}

		if reverse && match.PointsApplied() {
			if err := s.applier.Reverse(ctx, matchID); err != nil {
				return err
			}
		}

		if corr != nil {
			participants, err := s.store.ListParticipants(ctx, matchID)
			if err != nil {
				return fmt.Errorf("%w: list participants: %w", points.ErrStorage, err)
			}
			if err := recordOutcome(ctx, s.store, matchID, participants, corr.WinnerID, corr.Draws); err != nil {
				return err
			}
		}

		c, err := s.calculator.Calculate(ctx, matchID)
		if err != nil {
			return err
		}
		if err := s.applier.Apply(ctx, c); err != nil {
			return err
		}
		calc = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return calc, nil
}

func (s *PointsService) withMatchLock(ctx context.Context, matchID uuid.UUID, fn func() error) error {
	return s.locks.WithLockContext(ctx, matchID.String(), s.lockTimeout, fn)
}

func (s *PointsService) applied(calc *model.PointsCalculationResult) {
	total := 0
	for _, pr := range calc.ParticipantResults {
		total += pr.PointsEarned
	}
	metrics.PointsAwarded.Add(float64(total))

	log.Info().
		Str("match_id", calc.MatchID.String()).
		Str("winner_faculty", calc.WinnerFacultyName).
		Int("points_awarded", calc.PointsAwarded).
		Int("game_weight", calc.GameWeight).
		Msg("Match points applied")

	s.notifier.Publish(model.EventLeaderboardUpdate, model.NewLeaderboardUpdate(calc, s.now()))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, points.ErrNotApplicable):
		return "not_applicable"
	case errors.Is(err, points.ErrPointsAlreadyApplied):
		return "already_applied"
	case errors.Is(err, points.ErrDataIntegrity):
		return "integrity"
	case errors.Is(err, lock.ErrLockTimeout):
		return "lock_timeout"
	default:
		return "error"
	}
}
