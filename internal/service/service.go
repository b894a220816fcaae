// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"sports-week-api/internal/model"
	"sports-week-api/internal/points"
)

// Service-level errors.
var (
	ErrFacultyNotFound      = errors.New("faculty not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrInvalidStatus        = errors.New("invalid match status")
	ErrInvalidTransition    = errors.New("match status cannot move backwards")
	ErrInvalidScore         = errors.New("invalid score: must not be negative")
	ErrMatchFinished        = errors.New("match is already finished")
	ErrMatchScored          = errors.New("match points already applied")
	ErrWinnerNotParticipant = errors.New("winner is not a participant of the match")
	ErrParticipantMismatch  = errors.New("participant does not belong to the match")
)

// Store is everything the services read and write.
type Store interface {
	points.Store

	UpdateMatchStatus(ctx context.Context, id uuid.UUID, status model.MatchStatus) (*model.Match, error)
	SetMatchWinner(ctx context.Context, id uuid.UUID, winnerID *uuid.UUID) (*model.Match, error)

	ListFacultiesByPoints(ctx context.Context) ([]*model.Faculty, error)

	GetParticipant(ctx context.Context, id uuid.UUID) (*model.MatchParticipant, error)
	UpdateParticipantScore(ctx context.Context, id uuid.UUID, score int) (*model.MatchParticipant, error)
	SetParticipantDraw(ctx context.Context, id uuid.UUID, draw bool) (*model.MatchParticipant, error)

	ListParticipationsByFaculty(ctx context.Context, facultyID uuid.UUID) ([]model.Participation, error)
	FacultyHistory(ctx context.Context, facultyID uuid.UUID) ([]model.HistoryEntry, error)
}

// Notifier receives realtime events. Publish must not block.
type Notifier interface {
	Publish(eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}
