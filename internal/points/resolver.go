package points

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sports-week-api/internal/model"
	"sports-week-api/internal/repository"
)

// Outcome is the resolved result of one participant.
type Outcome struct {
	ParticipantID uuid.UUID
	TeamID        *uuid.UUID
	PlayerID      *uuid.UUID
	FacultyID     uuid.UUID
	DisplayName   string
	Score         int
	Result        model.MatchResult
}

// ResolveResult decides a participant's result: WIN when it is the match
// winner, DRAW when a draw marker is stored, LOSS otherwise.
func ResolveResult(p *model.MatchParticipant, winnerID *uuid.UUID) model.MatchResult {
	switch {
	case winnerID != nil && p.IsEntrant(*winnerID):
		return model.ResultWin
	case p.DrawFlagged():
		return model.ResultDraw
	default:
		return model.ResultLoss
	}
}

// Resolver turns a finished match into per-participant outcomes.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the finished match and the outcome of every participant
// in entry order. A missing or unfinished match yields ErrNotApplicable.
func (r *Resolver) Resolve(ctx context.Context, matchID uuid.UUID) (*model.Match, []Outcome, error) {
	match, err := r.finishedMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	outcomes, err := r.outcomes(ctx, match)
	if err != nil {
		return nil, nil, err
	}
	return match, outcomes, nil
}

func (r *Resolver) finishedMatch(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	match, err := r.store.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotApplicable
		}
		return nil, storageErr("get match", err)
	}
	if match.Status != model.MatchFinished {
		return nil, ErrNotApplicable
	}
	return match, nil
}

func (r *Resolver) outcomes(ctx context.Context, match *model.Match) ([]Outcome, error) {
	participants, err := r.store.ListParticipants(ctx, match.ID)
	if err != nil {
		return nil, storageErr("list participants", err)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: match %s", ErrNoParticipants, match.ID)
	}

	outcomes := make([]Outcome, 0, len(participants))
	for _, p := range participants {
		owner, err := r.store.GetParticipantOwner(ctx, p.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrFacultyUnresolved, p.ID)
			}
			return nil, storageErr("resolve participant owner", err)
		}

		outcomes = append(outcomes, Outcome{
			ParticipantID: p.ID,
			TeamID:        p.TeamID,
			PlayerID:      p.PlayerID,
			FacultyID:     owner.FacultyID,
			DisplayName:   owner.DisplayName,
			Score:         p.Score,
			Result:        ResolveResult(p, match.WinnerID),
		})
	}
	return outcomes, nil
}
