package points

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

// Applier is the only writer of faculty totals and participant results.
// Every call runs in a single store transaction.
type Applier struct {
	store Store
	now   func() time.Time
}

// NewApplier creates an Applier.
func NewApplier(store Store) *Applier {
	return &Applier{store: store, now: time.Now}
}

// Apply persists calc. For each participant the result and points are
// written before the faculty total is incremented. A match that was
// already applied yields ErrPointsAlreadyApplied and nothing is written.
func (a *Applier) Apply(ctx context.Context, calc *model.PointsCalculationResult) error {
	if calc == nil {
		return ErrNilCalculation
	}

	return a.store.WithTx(ctx, func(ctx context.Context) error {
		match, err := a.lockMatch(ctx, calc.MatchID)
		if err != nil {
			return err
		}
		if match.PointsApplied() {
			return fmt.Errorf("%w: %s", ErrPointsAlreadyApplied, match.ID)
		}

		members, err := a.participantSet(ctx, match.ID)
		if err != nil {
			return err
		}

		for _, pr := range calc.ParticipantResults {
			if _, ok := members[pr.ParticipantID]; !ok {
				return fmt.Errorf("%w: %s", ErrUnknownParticipant, pr.ParticipantID)
			}

			result := pr.Result
			if err := a.store.UpdateParticipantResult(ctx, pr.ParticipantID, &result, pr.PointsEarned); err != nil {
				return storageErr("update participant result", err)
			}

			faculty, err := a.store.AddFacultyPoints(ctx, pr.FacultyID, pr.PointsEarned)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: faculty %s", ErrFacultyUnresolved, pr.FacultyID)
				}
				return storageErr("add faculty points", err)
			}

			log.Info().
				Str("match_id", match.ID.String()).
				Str("faculty", faculty.Name).
				Int("points", pr.PointsEarned).
				Int("total", faculty.TotalPoints).
				Msg("Faculty points updated")
		}

		now := a.now()
		if err := a.store.SetPointsApplied(ctx, match.ID, &now); err != nil {
			return storageErr("mark points applied", err)
		}
		return nil
	})
}

// Reverse undoes a previous Apply: each participant's points are subtracted
// from its faculty, points are zeroed and the applied marker is cleared.
// Stored DRAW markers survive so a later calculation sees them again.
func (a *Applier) Reverse(ctx context.Context, matchID uuid.UUID) error {
	return a.store.WithTx(ctx, func(ctx context.Context) error {
		match, err := a.lockMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if !match.PointsApplied() {
			return fmt.Errorf("%w: %s", ErrPointsNotApplied, match.ID)
		}

		participants, err := a.store.ListParticipants(ctx, match.ID)
		if err != nil {
			return storageErr("list participants", err)
		}

		for _, p := range participants {
			var kept *model.MatchResult
			if p.DrawFlagged() {
				kept = p.Result
			}
			if err := a.store.UpdateParticipantResult(ctx, p.ID, kept, 0); err != nil {
				return storageErr("reset participant result", err)
			}

			if p.PointsEarned == 0 {
				continue
			}
			owner, err := a.store.GetParticipantOwner(ctx, p.ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrFacultyUnresolved, p.ID)
				}
				return storageErr("resolve participant owner", err)
			}
			if _, err := a.store.AddFacultyPoints(ctx, owner.FacultyID, -p.PointsEarned); err != nil {
				return storageErr("subtract faculty points", err)
			}
		}

		if err := a.store.SetPointsApplied(ctx, match.ID, nil); err != nil {
			return storageErr("clear points applied", err)
		}

		log.Info().Str("match_id", match.ID.String()).Msg("Match points reversed")
		return nil
	})
}

func (a *Applier) lockMatch(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	match, err := a.store.GetMatchForUpdate(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotApplicable
		}
		return nil, storageErr("lock match", err)
	}
	if match.Status != model.MatchFinished {
		return nil, ErrNotApplicable
	}
	return match, nil
}

func (a *Applier) participantSet(ctx context.Context, matchID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	participants, err := a.store.ListParticipants(ctx, matchID)
	if err != nil {
		return nil, storageErr("list participants", err)
	}
	set := make(map[uuid.UUID]struct{}, len(participants))
	for _, p := range participants {
		set[p.ID] = struct{}{}
	}
	return set, nil
}
