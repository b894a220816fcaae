package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sports-week-api/internal/model"
	"sports-week-api/internal/pkg/db"
)

// Store bundles the repositories behind the single interface the points
// engine and the services depend on. Calls made inside WithTx share one
// transaction.
type Store struct {
	pool *pgxpool.Pool

	Faculties    *FacultyRepository
	Games        *GameRepository
	Roster       *RosterRepository
	Matches      *MatchRepository
	Participants *ParticipantRepository
}

// NewStore creates a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:         pool,
		Faculties:    NewFacultyRepository(pool),
		Games:        NewGameRepository(pool),
		Roster:       NewRosterRepository(pool),
		Matches:      NewMatchRepository(pool),
		Participants: NewParticipantRepository(pool),
	}
}

// WithTx runs fn in a transaction. Nested calls join the outer one.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, s.pool, fn)
}

func (s *Store) GetMatch(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	return s.Matches.GetByID(ctx, id)
}

func (s *Store) GetMatchForUpdate(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	return s.Matches.GetForUpdate(ctx, id)
}

func (s *Store) UpdateMatchStatus(ctx context.Context, id uuid.UUID, status model.MatchStatus) (*model.Match, error) {
	return s.Matches.UpdateStatus(ctx, id, status)
}

func (s *Store) SetMatchWinner(ctx context.Context, id uuid.UUID, winnerID *uuid.UUID) (*model.Match, error) {
	return s.Matches.SetWinner(ctx, id, winnerID)
}

func (s *Store) SetPointsApplied(ctx context.Context, matchID uuid.UUID, at *time.Time) error {
	return s.Matches.SetPointsApplied(ctx, matchID, at)
}

func (s *Store) GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	return s.Games.GetByID(ctx, id)
}

func (s *Store) GetFaculty(ctx context.Context, id uuid.UUID) (*model.Faculty, error) {
	return s.Faculties.GetByID(ctx, id)
}

func (s *Store) ListFacultiesByPoints(ctx context.Context) ([]*model.Faculty, error) {
	return s.Faculties.ListByPoints(ctx)
}

func (s *Store) AddFacultyPoints(ctx context.Context, id uuid.UUID, delta int) (*model.Faculty, error) {
	return s.Faculties.AddPoints(ctx, id, delta)
}

func (s *Store) GetParticipantOwner(ctx context.Context, participantID uuid.UUID) (*model.ParticipantOwner, error) {
	return s.Roster.GetOwner(ctx, participantID)
}

func (s *Store) GetParticipant(ctx context.Context, id uuid.UUID) (*model.MatchParticipant, error) {
	return s.Participants.GetByID(ctx, id)
}

func (s *Store) ListParticipants(ctx context.Context, matchID uuid.UUID) ([]*model.MatchParticipant, error) {
	return s.Participants.ListByMatch(ctx, matchID)
}

func (s *Store) UpdateParticipantScore(ctx context.Context, id uuid.UUID, score int) (*model.MatchParticipant, error) {
	return s.Participants.UpdateScore(ctx, id, score)
}

func (s *Store) UpdateParticipantResult(ctx context.Context, id uuid.UUID, result *model.MatchResult, points int) error {
	return s.Participants.UpdateResult(ctx, id, result, points)
}

func (s *Store) SetParticipantDraw(ctx context.Context, id uuid.UUID, draw bool) (*model.MatchParticipant, error) {
	return s.Participants.SetDrawFlag(ctx, id, draw)
}

func (s *Store) ListParticipationsByFaculty(ctx context.Context, facultyID uuid.UUID) ([]model.Participation, error) {
	return s.Participants.ListParticipationsByFaculty(ctx, facultyID)
}

func (s *Store) FacultyHistory(ctx context.Context, facultyID uuid.UUID) ([]model.HistoryEntry, error) {
	return s.Participants.FacultyHistory(ctx, facultyID)
}
