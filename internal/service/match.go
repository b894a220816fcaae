package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sports-week-api/internal/model"
	"sports-week-api/internal/repository"
)

// FinishRequest carries the final state of a match.
// WinnerID is nil for a drawn match. Draws nil keeps the markers set with
// MarkDraw; a non-nil slice, even empty, replaces them.
type FinishRequest struct {
	WinnerID *uuid.UUID
	Scores   map[uuid.UUID]int
	Draws    []uuid.UUID
}

// MatchService manages live match state: status, scores, draw markers and
// the winner.
type MatchService struct {
	store    Store
	points   *PointsService
	notifier Notifier
	now      func() time.Time
}

// NewMatchService creates a new MatchService instance.
func NewMatchService(store Store, pointsSvc *PointsService, notifier Notifier) *MatchService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &MatchService{
		store:    store,
		points:   pointsSvc,
		notifier: notifier,
		now:      time.Now,
	}
}

// UpdateStatus moves a match forward to status. Backward moves are rejected.
func (s *MatchService) UpdateStatus(ctx context.Context, matchID uuid.UUID, status model.MatchStatus) (*model.Match, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, match.Status, status)
	}
	if match.Status == status {
		return match, nil
	}

	match, err = s.store.UpdateMatchStatus(ctx, matchID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update match status: %w", err)
	}

	s.notifier.Publish(model.EventMatchStatusChange, model.MatchStatusChange{
		MatchID:   match.ID,
		Status:    match.Status,
		Timestamp: s.now(),
	})
	return match, nil
}

// UpdateScore sets a participant's live score.
func (s *MatchService) UpdateScore(ctx context.Context, participantID uuid.UUID, score int) (*model.MatchParticipant, error) {
	if score < 0 {
		return nil, ErrInvalidScore
	}

	p, match, err := s.participantAndMatch(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if match.Status == model.MatchFinished {
		return nil, ErrMatchFinished
	}

	p, err = s.store.UpdateParticipantScore(ctx, p.ID, score)
	if err != nil {
		return nil, fmt.Errorf("failed to update score: %w", err)
	}

	s.notifier.Publish(model.EventScoreUpdate, model.ScoreUpdate{
		MatchID:       p.MatchID,
		ParticipantID: p.ID,
		Score:         p.Score,
		Timestamp:     s.now(),
	})
	return p, nil
}

// MarkDraw stores or clears the DRAW marker the calculator reads. Once a
// match has been scored the marker can only change through a recompute.
func (s *MatchService) MarkDraw(ctx context.Context, participantID uuid.UUID, draw bool) (*model.MatchParticipant, error) {
	_, match, err := s.participantAndMatch(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if match.PointsApplied() {
		return nil, ErrMatchScored
	}

	p, err := s.store.SetParticipantDraw(ctx, participantID, draw)
	if err != nil {
		return nil, fmt.Errorf("failed to mark draw: %w", err)
	}
	return p, nil
}

// SetWinner records the winning team or player of a match.
func (s *MatchService) SetWinner(ctx context.Context, matchID, winnerID uuid.UUID) (*model.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.PointsApplied() {
		return nil, ErrMatchScored
	}
	if err := s.checkEntrant(ctx, matchID, winnerID); err != nil {
		return nil, err
	}

	match, err = s.store.SetMatchWinner(ctx, matchID, &winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to set winner: %w", err)
	}

	s.notifier.Publish(model.EventMatchWinnerSet, model.MatchWinnerSet{
		MatchID:   match.ID,
		WinnerID:  winnerID,
		Timestamp: s.now(),
	})
	return match, nil
}

// Finish records final scores, draw markers and the winner, marks the match
// FINISHED and scores it. The match state and the award commit together.
func (s *MatchService) Finish(ctx context.Context, matchID uuid.UUID, req FinishRequest) (*model.PointsCalculationResult, error) {
	for _, score := range req.Scores {
		if score < 0 {
			return nil, ErrInvalidScore
		}
	}

	var calc *model.PointsCalculationResult
	err := s.points.withMatchLock(ctx, matchID, func() error {
		return s.store.WithTx(ctx, func(ctx context.Context) error {
			if err := s.prepareFinish(ctx, matchID, req); err != nil {
				return err
			}
			var err error
			calc, err = s.points.score(ctx, matchID, false, nil)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.notifier.Publish(model.EventMatchStatusChange, model.MatchStatusChange{
		MatchID:   matchID,
		Status:    model.MatchFinished,
		Timestamp: now,
	})
	if req.WinnerID != nil {
		s.notifier.Publish(model.EventMatchWinnerSet, model.MatchWinnerSet{
			MatchID:   matchID,
			WinnerID:  *req.WinnerID,
			Timestamp: now,
		})
	}
	s.points.applied(calc)

	log.Info().Str("match_id", matchID.String()).Msg("Match finished")
	return calc, nil
}

func (s *MatchService) prepareFinish(ctx context.Context, matchID uuid.UUID, req FinishRequest) error {
	match, err := s.store.GetMatchForUpdate(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to lock match: %w", err)
	}
	if match.PointsApplied() {
		return ErrMatchScored
	}

	participants, err := s.store.ListParticipants(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	members := make(map[uuid.UUID]*model.MatchParticipant, len(participants))
	for _, p := range participants {
		members[p.ID] = p
	}

	for id, score := range req.Scores {
		if _, ok := members[id]; !ok {
			return fmt.Errorf("%w: %s", ErrParticipantMismatch, id)
		}
		if _, err := s.store.UpdateParticipantScore(ctx, id, score); err != nil {
			return fmt.Errorf("failed to update score: %w", err)
		}
	}
	if err := recordOutcome(ctx, s.store, matchID, participants, req.WinnerID, req.Draws); err != nil {
		return err
	}

	if match.Status != model.MatchFinished {
		if _, err := s.store.UpdateMatchStatus(ctx, matchID, model.MatchFinished); err != nil {
			return fmt.Errorf("failed to finish match: %w", err)
		}
	}
	return nil
}

// recordOutcome stores the winner and, when draws is non-nil, makes draws the
// exact set of DRAW-flagged participants.
func recordOutcome(ctx context.Context, store Store, matchID uuid.UUID, participants []*model.MatchParticipant, winnerID *uuid.UUID, draws []uuid.UUID) error {
	if winnerID != nil {
		found := false
		for _, p := range participants {
			if p.IsEntrant(*winnerID) {
				found = true
				break
			}
		}
		if !found {
			return ErrWinnerNotParticipant
		}
	}

	if draws != nil {
		members := make(map[uuid.UUID]struct{}, len(participants))
		for _, p := range participants {
			members[p.ID] = struct{}{}
		}
		drawn := make(map[uuid.UUID]struct{}, len(draws))
		for _, id := range draws {
			if _, ok := members[id]; !ok {
				return fmt.Errorf("%w: %s", ErrParticipantMismatch, id)
			}
			drawn[id] = struct{}{}
		}

		for _, p := range participants {
			_, want := drawn[p.ID]
			if want == p.DrawFlagged() {
				continue
			}
			if _, err := store.SetParticipantDraw(ctx, p.ID, want); err != nil {
				return fmt.Errorf("failed to mark draw: %w", err)
			}
		}
	}

	if _, err := store.SetMatchWinner(ctx, matchID, winnerID); err != nil {
		return fmt.Errorf("failed to set winner: %w", err)
	}
	return nil
}

func (s *MatchService) getMatch(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

func (s *MatchService) participantAndMatch(ctx context.Context, participantID uuid.UUID) (*model.MatchParticipant, *model.Match, error) {
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrParticipantNotFound
		}
		return nil, nil, fmt.Errorf("failed to get participant: %w", err)
	}
	match, err := s.getMatch(ctx, p.MatchID)
	if err != nil {
		return nil, nil, err
	}
	return p, match, nil
}

func (s *MatchService) checkEntrant(ctx context.Context, matchID, entrantID uuid.UUID) error {
	participants, err := s.store.ListParticipants(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	for _, p := range participants {
		if p.IsEntrant(entrantID) {
			return nil
		}
	}
	return ErrWinnerNotParticipant
}
