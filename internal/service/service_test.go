package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sports-week-api/internal/model"
	"sports-week-api/internal/pkg/lock"
	"sports-week-api/internal/points"
	"sports-week-api/internal/points/pointstest"
)

var _ Store = (*pointstest.Store)(nil)

type published struct {
	eventType string
	payload   any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{eventType, payload})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.eventType
	}
	return out
}

type env struct {
	store   *pointstest.Store
	notify  *recorder
	points  *PointsService
	matches *MatchService
	board   *LeaderboardService

	science *model.Faculty
	arts    *model.Faculty
	game    *model.Game
	teamA   *model.Team
	teamB   *model.Team
	match   *model.Match
	partA   *model.MatchParticipant
	partB   *model.MatchParticipant
}

func newEnv(t *testing.T, status model.MatchStatus) *env {
	t.Helper()
	s := pointstest.New()
	n := &recorder{}
	ps := NewPointsService(s, lock.NewKeyLock(), time.Second, n)
	e := &env{
		store:   s,
		notify:  n,
		points:  ps,
		matches: NewMatchService(s, ps, n),
		board:   NewLeaderboardService(s, 4),
	}
	e.science = s.AddFaculty("Science", 0)
	e.arts = s.AddFaculty("Arts", 0)
	e.game = s.AddGame("Futsal", model.GameTypeTeam, 2)
	e.teamA = s.AddTeam("Science FC", e.science.ID, e.game.ID)
	e.teamB = s.AddTeam("Arts United", e.arts.ID, e.game.ID)
	e.match = s.AddMatch(e.game.ID, status)
	e.partA = s.AddParticipant(e.match.ID, &e.teamA.ID, nil)
	e.partB = s.AddParticipant(e.match.ID, &e.teamB.ID, nil)
	return e
}

func (e *env) total(t *testing.T, id uuid.UUID) int {
	t.Helper()
	f, err := e.store.GetFaculty(context.Background(), id)
	require.NoError(t, err)
	return f.TotalPoints
}

// ============================================================================
// PointsService Tests
// ============================================================================

func TestPointsService_CalculateAndApply(t *testing.T) {
	e := newEnv(t, model.MatchFinished)
	ctx := context.Background()
	_, err := e.store.SetMatchWinner(ctx, e.match.ID, &e.teamA.ID)
	require.NoError(t, err)

	calc, err := e.points.CalculateAndApply(ctx, e.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, calc.PointsAwarded)
	assert.Equal(t, 6, e.total(t, e.science.ID))
	assert.Equal(t, 0, e.total(t, e.arts.ID))

	require.Equal(t, []string{model.EventLeaderboardUpdate}, e.notify.types())
	ev, ok := e.notify.events[0].payload.(model.LeaderboardUpdate)
	require.True(t, ok)
	assert.Equal(t, e.match.ID, ev.MatchID)
	assert.Equal(t, "Science", ev.WinnerFacultyName)
	assert.Equal(t, 2, ev.GameWeight)
	assert.Len(t, ev.ParticipantResults, 2)
	assert.False(t, ev.Timestamp.IsZero())

	_, err = e.points.CalculateAndApply(ctx, e.match.ID)
	assert.ErrorIs(t, err, points.ErrPointsAlreadyApplied)
	assert.Equal(t, 6, e.total(t, e.science.ID))
	assert.Len(t, e.notify.types(), 1, "failed apply must not broadcast")
}

func TestPointsService_CalculateThenApply(t *testing.T) {
	e := newEnv(t, model.MatchFinished)
	ctx := context.Background()
	_, err := e.store.SetMatchWinner(ctx, e.match.ID, &e.teamB.ID)
	require.NoError(t, err)

	calc, err := e.points.Calculate(ctx, e.match.ID)
	require.NoError(t, err)
	assert.Empty(t, e.notify.types())

	require.NoError(t, e.points.Apply(ctx, calc))
	assert.Equal(t, 6, e.total(t, e.arts.ID))
	assert.ErrorIs(t, e.points.Apply(ctx, calc), points.ErrPointsAlreadyApplied)
	assert.Equal(t, 6, e.total(t, e.arts.ID))
}

func TestPointsService_NotApplicable(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	_, err := e.points.Calculate(ctx, e.match.ID)
	assert.ErrorIs(t, err, points.ErrNotApplicable)

	_, err = e.points.CalculateAndApply(ctx, uuid.New())
	assert.ErrorIs(t, err, points.ErrNotApplicable)
	assert.Empty(t, e.notify.types())
}

func TestPointsService_RecomputeCorrectsWinner(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	_, err := e.matches.Finish(ctx, e.match.ID, FinishRequest{WinnerID: &e.teamA.ID})
	require.NoError(t, err)
	require.Equal(t, 6, e.total(t, e.science.ID))

	// The result was entered wrongly. Scored matches reject direct edits.
	_, err = e.matches.SetWinner(ctx, e.match.ID, e.teamB.ID)
	require.ErrorIs(t, err, ErrMatchScored)
	_, err = e.matches.MarkDraw(ctx, e.partB.ID, true)
	require.ErrorIs(t, err, ErrMatchScored)
	_, err = e.matches.Finish(ctx, e.match.ID, FinishRequest{WinnerID: &e.teamB.ID})
	require.ErrorIs(t, err, ErrMatchScored)

	calc, err := e.points.Recompute(ctx, e.match.ID, &Correction{WinnerID: &e.teamB.ID})
	require.NoError(t, err)
	assert.Equal(t, "Arts", calc.WinnerFacultyName)
	assert.Equal(t, 0, e.total(t, e.science.ID))
	assert.Equal(t, 6, e.total(t, e.arts.ID))

	m, err := e.store.GetMatch(ctx, e.match.ID)
	require.NoError(t, err)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, e.teamB.ID, *m.WinnerID)
	assert.True(t, m.PointsApplied())

	assert.Equal(t, []string{
		model.EventMatchStatusChange,
		model.EventMatchWinnerSet,
		model.EventLeaderboardUpdate,
		model.EventMatchWinnerSet,
		model.EventLeaderboardUpdate,
	}, e.notify.types())
}

func TestPointsService_RecomputeCorrectsToDraw(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	_, err := e.matches.Finish(ctx, e.match.ID, FinishRequest{WinnerID: &e.teamA.ID})
	require.NoError(t, err)

	calc, err := e.points.Recompute(ctx, e.match.ID, &Correction{
		Draws: []uuid.UUID{e.partA.ID, e.partB.ID},
	})
	require.NoError(t, err)
	assert.Nil(t, calc.WinnerFacultyID)
	assert.Equal(t, 0, calc.PointsAwarded)
	assert.Equal(t, 2, e.total(t, e.science.ID))
	assert.Equal(t, 2, e.total(t, e.arts.ID))

	// And back to a win: an empty draw list clears the markers.
	_, err = e.points.Recompute(ctx, e.match.ID, &Correction{
		WinnerID: &e.teamB.ID,
		Draws:    []uuid.UUID{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, e.total(t, e.science.ID))
	assert.Equal(t, 6, e.total(t, e.arts.ID))
	p, err := e.store.GetParticipant(ctx, e.partA.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Result)
	assert.Equal(t, model.ResultLoss, *p.Result)
}

func TestPointsService_RecomputeWithoutCorrection(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	_, err := e.matches.Finish(ctx, e.match.ID, FinishRequest{WinnerID: &e.teamA.ID})
	require.NoError(t, err)

	calc, err := e.points.Recompute(ctx, e.match.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Science", calc.WinnerFacultyName)
	assert.Equal(t, 6, e.total(t, e.science.ID))

	// Recompute of a never-applied match simply applies it.
	e2 := newEnv(t, model.MatchFinished)
	_, err = e2.matches.SetWinner(ctx, e2.match.ID, e2.teamA.ID)
	require.NoError(t, err)
	_, err = e2.points.Recompute(ctx, e2.match.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, e2.total(t, e2.science.ID))
}

func TestPointsService_RecomputeRejectsBadCorrection(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	_, err := e.matches.Finish(ctx, e.match.ID, FinishRequest{WinnerID: &e.teamA.ID})
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = e.points.Recompute(ctx, e.match.ID, &Correction{WinnerID: &stranger})
	assert.ErrorIs(t, err, ErrWinnerNotParticipant)

	_, err = e.points.Recompute(ctx, e.match.ID, &Correction{
		WinnerID: &e.teamB.ID,
		Draws:    []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, ErrParticipantMismatch)

	// Both reversals rolled back with the rejected corrections.
	assert.Equal(t, 6, e.total(t, e.science.ID))
	assert.Equal(t, 0, e.total(t, e.arts.ID))
	m, err := e.store.GetMatch(ctx, e.match.ID)
	require.NoError(t, err)
	assert.True(t, m.PointsApplied())
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, e.teamA.ID, *m.WinnerID)
}

func TestPointsService_ApplyNilCalculation(t *testing.T) {
	e := newEnv(t, model.MatchFinished)

	assert.NotPanics(t, func() {
		err := e.points.Apply(context.Background(), nil)
		assert.ErrorIs(t, err, points.ErrNilCalculation)
	})
	assert.Empty(t, e.notify.types())
}

func TestPointsService_RecomputeRollsBackOnIntegrityError(t *testing.T) {
	e := newEnv(t, model.MatchFinished)
	ctx := context.Background()
	_, err := e.store.SetMatchWinner(ctx, e.match.ID, &e.teamA.ID)
	require.NoError(t, err)
	_, err = e.points.CalculateAndApply(ctx, e.match.ID)
	require.NoError(t, err)

	// A stored winner that matches no participant, as after a manual edit.
	stranger := uuid.New()
	_, err = e.store.SetMatchWinner(ctx, e.match.ID, &stranger)
	require.NoError(t, err)

	_, err = e.points.Recompute(ctx, e.match.ID, nil)
	assert.ErrorIs(t, err, points.ErrDataIntegrity)

	// The reversal was rolled back with the failed recalculation.
	assert.Equal(t, 6, e.total(t, e.science.ID))
	m, err := e.store.GetMatch(ctx, e.match.ID)
	require.NoError(t, err)
	assert.True(t, m.PointsApplied())
}

func TestPointsService_LockTimeout(t *testing.T) {
	e := newEnv(t, model.MatchFinished)
	ctx := context.Background()
	_, err := e.store.SetMatchWinner(ctx, e.match.ID, &e.teamA.ID)
	require.NoError(t, err)

	locks := lock.NewKeyLock()
	svc := NewPointsService(e.store, locks, 20*time.Millisecond, nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	held := make(chan error, 1)
	go func() {
		held <- locks.WithLockContext(ctx, e.match.ID.String(), time.Second, func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	_, err = svc.CalculateAndApply(ctx, e.match.ID)
	assert.ErrorIs(t, err, lock.ErrLockTimeout)
	assert.Equal(t, 0, e.total(t, e.science.ID))

	close(release)
	require.NoError(t, <-held)
	_, err = svc.CalculateAndApply(ctx, e.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, e.total(t, e.science.ID))
}

func TestPointsService_ConcurrentApplyCountsOnce(t *testing.T) {
	e := newEnv(t, model.MatchFinished)
	ctx := context.Background()
	_, err := e.store.SetMatchWinner(ctx, e.match.ID, &e.teamA.ID)
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.points.CalculateAndApply(ctx, e.match.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, points.ErrPointsAlreadyApplied)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 6, e.total(t, e.science.ID))
}

// ============================================================================
// LeaderboardService Tests
// ============================================================================

func TestLeaderboardService_Ordering(t *testing.T) {
	s := pointstest.New()
	s.AddFaculty("Business", 30)
	s.AddFaculty("Law", 45)
	s.AddFaculty("Arts", 30)

	board, err := NewLeaderboardService(s, 2).Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "Law", board[0].Name)
	assert.Equal(t, "Arts", board[1].Name)
	assert.Equal(t, "Business", board[2].Name)
}

func TestLeaderboardService_Detailed(t *testing.T) {
	e := newEnv(t, model.MatchFinished)
	ctx := context.Background()
	_, err := e.store.SetMatchWinner(ctx, e.match.ID, &e.teamA.ID)
	require.NoError(t, err)
	_, err = e.points.CalculateAndApply(ctx, e.match.ID)
	require.NoError(t, err)

	// Science also enters an individual match through a player.
	chess := e.store.AddGame("Chess", model.GameTypeIndividual, 1)
	p := e.store.AddPlayer("Ana", e.science.ID)
	q := e.store.AddPlayer("Ben", e.arts.ID)
	m := e.store.AddMatch(chess.ID, model.MatchFinished)
	e.store.AddParticipant(m.ID, nil, &p.ID)
	e.store.AddParticipant(m.ID, nil, &q.ID)
	_, err = e.store.SetMatchWinner(ctx, m.ID, &q.ID)
	require.NoError(t, err)
	_, err = e.points.CalculateAndApply(ctx, m.ID)
	require.NoError(t, err)

	lonely := e.store.AddFaculty("Medicine", 0)

	standings, err := e.board.DetailedLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	science := standings[0]
	assert.Equal(t, "Science", science.Faculty.Name)
	assert.Equal(t, 6, science.Faculty.TotalPoints)
	assert.Equal(t, 1, science.Wins)
	assert.Equal(t, 1, science.Losses)
	assert.Equal(t, 2, science.TotalMatches)
	assert.Equal(t, 3.0, science.PointsPerMatch)

	arts := standings[1]
	assert.Equal(t, "Arts", arts.Faculty.Name)
	assert.Equal(t, 3, arts.Faculty.TotalPoints)
	assert.Equal(t, 1, arts.Wins)
	assert.Equal(t, 1, arts.Losses)
	assert.Equal(t, 0, arts.Draws)
	assert.Equal(t, 1.5, arts.PointsPerMatch)

	assert.Equal(t, lonely.ID, standings[2].Faculty.ID)
	assert.Equal(t, 0, standings[2].TotalMatches)
	assert.Equal(t, 0.0, standings[2].PointsPerMatch)
}

func TestLeaderboardService_DetailedStorageError(t *testing.T) {
	s := pointstest.New()
	s.AddFaculty("Arts", 0)
	s.FailOn("ListParticipationsByFaculty", errors.New("timeout"))

	_, err := NewLeaderboardService(s, 2).DetailedLeaderboard(context.Background())
	assert.Error(t, err)
}

func TestStanding_Rounding(t *testing.T) {
	win, draw, loss := model.ResultWin, model.ResultDraw, model.ResultLoss
	f := &model.Faculty{Name: "Law", TotalPoints: 10}
	parts := []model.Participation{{Result: &win}, {Result: &draw}, {Result: &loss}}

	st := Standing(f, parts)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 1, st.Draws)
	assert.Equal(t, 1, st.Losses)
	assert.Equal(t, 3, st.TotalMatches)
	assert.Equal(t, 3.33, st.PointsPerMatch)

	// Unscored participations still count as matches.
	st = Standing(f, append(parts, model.Participation{}))
	assert.Equal(t, 4, st.TotalMatches)
	assert.Equal(t, 2.5, st.PointsPerMatch)
}

func TestLeaderboardService_FacultyHistory(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	history, err := e.board.FacultyHistory(ctx, e.arts.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = e.matches.UpdateStatus(ctx, e.match.ID, model.MatchFinished)
	require.NoError(t, err)

	history, err = e.board.FacultyHistory(ctx, e.arts.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.UnknownResult, history[0].Result)
	assert.Equal(t, "Arts United", history[0].ParticipantName)
	assert.Equal(t, "Futsal", history[0].GameName)

	_, err = e.board.FacultyHistory(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrFacultyNotFound)
}

// ============================================================================
// MatchService Tests
// ============================================================================

func TestMatchService_UpdateStatus(t *testing.T) {
	e := newEnv(t, model.MatchUpcoming)
	ctx := context.Background()

	m, err := e.matches.UpdateStatus(ctx, e.match.ID, model.MatchLive)
	require.NoError(t, err)
	assert.Equal(t, model.MatchLive, m.Status)
	assert.Equal(t, []string{model.EventMatchStatusChange}, e.notify.types())

	_, err = e.matches.UpdateStatus(ctx, e.match.ID, model.MatchUpcoming)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.matches.UpdateStatus(ctx, e.match.ID, "PAUSED")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = e.matches.UpdateStatus(ctx, uuid.New(), model.MatchLive)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	// Same status is a no-op without an event.
	_, err = e.matches.UpdateStatus(ctx, e.match.ID, model.MatchLive)
	require.NoError(t, err)
	assert.Len(t, e.notify.types(), 1)
}

func TestMatchService_UpdateScore(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	p, err := e.matches.UpdateScore(ctx, e.partA.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Score)
	require.Equal(t, []string{model.EventScoreUpdate}, e.notify.types())

	_, err = e.matches.UpdateScore(ctx, e.partA.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = e.matches.UpdateScore(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = e.matches.UpdateStatus(ctx, e.match.ID, model.MatchFinished)
	require.NoError(t, err)
	_, err = e.matches.UpdateScore(ctx, e.partA.ID, 4)
	assert.ErrorIs(t, err, ErrMatchFinished)
}

func TestMatchService_SetWinnerAndMarkDraw(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	_, err := e.matches.SetWinner(ctx, e.match.ID, uuid.New())
	assert.ErrorIs(t, err, ErrWinnerNotParticipant)

	m, err := e.matches.SetWinner(ctx, e.match.ID, e.teamB.ID)
	require.NoError(t, err)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, e.teamB.ID, *m.WinnerID)

	p, err := e.matches.MarkDraw(ctx, e.partA.ID, true)
	require.NoError(t, err)
	assert.True(t, p.DrawFlagged())

	_, err = e.matches.UpdateStatus(ctx, e.match.ID, model.MatchFinished)
	require.NoError(t, err)
	_, err = e.points.CalculateAndApply(ctx, e.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.total(t, e.science.ID), "draw-flagged loser earns the draw award")
	assert.Equal(t, 6, e.total(t, e.arts.ID))

	_, err = e.matches.MarkDraw(ctx, e.partA.ID, false)
	assert.ErrorIs(t, err, ErrMatchScored)
	_, err = e.matches.SetWinner(ctx, e.match.ID, e.teamA.ID)
	assert.ErrorIs(t, err, ErrMatchScored)
}

func TestMatchService_Finish(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	calc, err := e.matches.Finish(ctx, e.match.ID, FinishRequest{
		WinnerID: &e.teamA.ID,
		Scores:   map[uuid.UUID]int{e.partA.ID: 3, e.partB.ID: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, calc.PointsAwarded)
	assert.Equal(t, 3, calc.ParticipantResults[0].Score)
	assert.Equal(t, 6, e.total(t, e.science.ID))

	m, err := e.store.GetMatch(ctx, e.match.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchFinished, m.Status)
	assert.True(t, m.PointsApplied())

	assert.Equal(t, []string{
		model.EventMatchStatusChange,
		model.EventMatchWinnerSet,
		model.EventLeaderboardUpdate,
	}, e.notify.types())

	_, err = e.matches.Finish(ctx, e.match.ID, FinishRequest{WinnerID: &e.teamA.ID})
	assert.ErrorIs(t, err, ErrMatchScored)
}

func TestMatchService_FinishDraw(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	calc, err := e.matches.Finish(ctx, e.match.ID, FinishRequest{
		Draws: []uuid.UUID{e.partA.ID, e.partB.ID},
	})
	require.NoError(t, err)
	assert.Nil(t, calc.WinnerFacultyID)
	assert.Equal(t, 2, e.total(t, e.science.ID))
	assert.Equal(t, 2, e.total(t, e.arts.ID))
}

func TestMatchService_FinishDrawList(t *testing.T) {
	ctx := context.Background()

	// A non-nil list replaces markers set earlier with MarkDraw.
	e := newEnv(t, model.MatchLive)
	_, err := e.matches.MarkDraw(ctx, e.partB.ID, true)
	require.NoError(t, err)
	_, err = e.matches.Finish(ctx, e.match.ID, FinishRequest{
		WinnerID: &e.teamA.ID,
		Draws:    []uuid.UUID{},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, e.total(t, e.science.ID))
	assert.Equal(t, 0, e.total(t, e.arts.ID))
	p, err := e.store.GetParticipant(ctx, e.partB.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Result)
	assert.Equal(t, model.ResultLoss, *p.Result)

	// Omitting the list keeps them.
	e2 := newEnv(t, model.MatchLive)
	_, err = e2.matches.MarkDraw(ctx, e2.partB.ID, true)
	require.NoError(t, err)
	_, err = e2.matches.Finish(ctx, e2.match.ID, FinishRequest{WinnerID: &e2.teamA.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, e2.total(t, e2.arts.ID))
}

func TestMatchService_FinishRollsBack(t *testing.T) {
	e := newEnv(t, model.MatchLive)
	ctx := context.Background()

	// Neither a winner nor a draw: the calculation fails and nothing sticks.
	_, err := e.matches.Finish(ctx, e.match.ID, FinishRequest{
		Scores: map[uuid.UUID]int{e.partA.ID: 2},
	})
	assert.ErrorIs(t, err, points.ErrWinnerNotFound)

	m, err := e.store.GetMatch(ctx, e.match.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchLive, m.Status)
	p, err := e.store.GetParticipant(ctx, e.partA.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Score)
	assert.Empty(t, e.notify.types())

	_, err = e.matches.Finish(ctx, e.match.ID, FinishRequest{
		WinnerID: &e.teamA.ID,
		Scores:   map[uuid.UUID]int{uuid.New(): 2},
	})
	assert.ErrorIs(t, err, ErrParticipantMismatch)

	_, err = e.matches.Finish(ctx, e.match.ID, FinishRequest{WinnerID: &e.teamA.ID, Scores: map[uuid.UUID]int{e.partA.ID: -2}})
	assert.ErrorIs(t, err, ErrInvalidScore)
}
