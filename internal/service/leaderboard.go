package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sports-week-api/internal/model"
	"sports-week-api/internal/repository"
)

// LeaderboardService ranks faculties and reports their points history.
type LeaderboardService struct {
	store       Store
	concurrency int
}

// NewLeaderboardService creates a new LeaderboardService instance.
// concurrency bounds the per-faculty lookups of the detailed leaderboard.
func NewLeaderboardService(store Store, concurrency int) *LeaderboardService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &LeaderboardService{store: store, concurrency: concurrency}
}

// Leaderboard returns all faculties by total points descending, ties by
// name ascending.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]*model.Faculty, error) {
	faculties, err := s.store.ListFacultiesByPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return faculties, nil
}

// DetailedLeaderboard returns one standing per faculty in leaderboard order.
func (s *LeaderboardService) DetailedLeaderboard(ctx context.Context) ([]model.FacultyStanding, error) {
	faculties, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	standings := make([]model.FacultyStanding, len(faculties))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, f := range faculties {
		g.Go(func() error {
			parts, err := s.store.ListParticipationsByFaculty(gctx, f.ID)
			if err != nil {
				return fmt.Errorf("failed to load participations for %s: %w", f.Name, err)
			}
			standings[i] = Standing(f, parts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return standings, nil
}

// Standing counts a faculty's results. PointsPerMatch is total points over
// participations rounded to two decimals, or 0 with no participations.
func Standing(f *model.Faculty, parts []model.Participation) model.FacultyStanding {
	st := model.FacultyStanding{Faculty: f, TotalMatches: len(parts)}
	for _, p := range parts {
		if p.Result == nil {
			continue
		}
		switch *p.Result {
		case model.ResultWin:
			st.Wins++
		case model.ResultLoss:
			st.Losses++
		case model.ResultDraw:
			st.Draws++
		}
	}
	if st.TotalMatches > 0 {
		st.PointsPerMatch = round2(float64(f.TotalPoints) / float64(st.TotalMatches))
	}
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FacultyHistory returns the faculty's finished participations, most
// recent first.
func (s *LeaderboardService) FacultyHistory(ctx context.Context, facultyID uuid.UUID) ([]model.HistoryEntry, error) {
	if _, err := s.store.GetFaculty(ctx, facultyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFacultyNotFound
		}
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}

	history, err := s.store.FacultyHistory(ctx, facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load faculty history: %w", err)
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}
	return history, nil
}
