package points

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sports-week-api/internal/model"
	"sports-week-api/internal/repository"
)

// Base awards before the game weight is applied.
const (
	WinPoints  = 3
	DrawPoints = 1
	LossPoints = 0
)

// Award returns the points a result earns in a game of the given weight.
//   - WIN:  3 * weight
//   - DRAW: 1 * weight
//   - LOSS: 0
func Award(result model.MatchResult, weight int) int {
	switch result {
	case model.ResultWin:
		return WinPoints * weight
	case model.ResultDraw:
		return DrawPoints * weight
	default:
		return LossPoints
	}
}

// Summarize builds a calculation from resolved outcomes without touching
// storage. It returns the winner's outcome, or nil for a drawn match with
// no winner set.
func Summarize(match *model.Match, game *model.Game, outcomes []Outcome) (*model.PointsCalculationResult, *Outcome, error) {
	if len(outcomes) == 0 {
		return nil, nil, fmt.Errorf("%w: match %s", ErrNoParticipants, match.ID)
	}

	res := &model.PointsCalculationResult{
		MatchID:            match.ID,
		GameID:             game.ID,
		GameWeight:         game.PointWeight,
		ParticipantResults: make([]model.ParticipantResult, 0, len(outcomes)),
	}

	var winner *Outcome
	drawn := false
	for i := range outcomes {
		o := &outcomes[i]
		switch o.Result {
		case model.ResultWin:
			if winner == nil {
				winner = o
			}
		case model.ResultDraw:
			drawn = true
		}

		res.ParticipantResults = append(res.ParticipantResults, model.ParticipantResult{
			ParticipantID: o.ParticipantID,
			TeamID:        o.TeamID,
			PlayerID:      o.PlayerID,
			FacultyID:     o.FacultyID,
			Score:         o.Score,
			Result:        o.Result,
			PointsEarned:  Award(o.Result, game.PointWeight),
		})
	}

	switch {
	case winner != nil:
		fid := winner.FacultyID
		res.WinnerFacultyID = &fid
		res.PointsAwarded = Award(model.ResultWin, game.PointWeight)
	case match.WinnerID == nil && drawn:
		// Drawn match: nobody takes the winner's award.
	default:
		return nil, nil, fmt.Errorf("%w: match %s", ErrWinnerNotFound, match.ID)
	}

	return res, winner, nil
}

// Calculator computes the award for a finished match. It never writes.
type Calculator struct {
	store    Store
	resolver *Resolver
}

// NewCalculator creates a Calculator.
func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store, resolver: NewResolver(store)}
}

// Calculate returns the award for matchID. ErrNotApplicable means the match
// is missing or not finished; every other error is fatal for the call.
func (c *Calculator) Calculate(ctx context.Context, matchID uuid.UUID) (*model.PointsCalculationResult, error) {
	match, err := c.resolver.finishedMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	game, err := c.store.GetGame(ctx, match.GameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, match.GameID)
		}
		return nil, storageErr("get game", err)
	}

	outcomes, err := c.resolver.outcomes(ctx, match)
	if err != nil {
		return nil, err
	}

	res, winner, err := Summarize(match, game, outcomes)
	if err != nil {
		return nil, err
	}

	if winner != nil {
		faculty, err := c.store.GetFaculty(ctx, winner.FacultyID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrWinnerFacultyNotFound, winner.FacultyID)
			}
			return nil, storageErr("get winner faculty", err)
		}
		res.WinnerFacultyName = faculty.Name
	}

	return res, nil
}
