// Package points resolves match outcomes, calculates faculty awards and
// applies them to persisted totals.
package points

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sports-week-api/internal/model"
)

// Store is the persistence the points engine needs. Lookups return errors
// matching repository.ErrNotFound for missing rows.
type Store interface {
	GetMatch(ctx context.Context, id uuid.UUID) (*model.Match, error)
	GetMatchForUpdate(ctx context.Context, id uuid.UUID) (*model.Match, error)
	GetGame(ctx context.Context, id uuid.UUID) (*model.Game, error)
	GetFaculty(ctx context.Context, id uuid.UUID) (*model.Faculty, error)
	ListParticipants(ctx context.Context, matchID uuid.UUID) ([]*model.MatchParticipant, error)
	GetParticipantOwner(ctx context.Context, participantID uuid.UUID) (*model.ParticipantOwner, error)

	UpdateParticipantResult(ctx context.Context, id uuid.UUID, result *model.MatchResult, points int) error
	AddFacultyPoints(ctx context.Context, id uuid.UUID, delta int) (*model.Faculty, error)
	SetPointsApplied(ctx context.Context, matchID uuid.UUID, at *time.Time) error

	// WithTx runs fn so that every call made with the ctx it receives
	// commits or rolls back together.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
