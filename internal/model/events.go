package model

import (
	"time"

	"github.com/google/uuid"
)

// Realtime event names.
const (
	EventLeaderboardUpdate = "leaderboardUpdate"
	EventScoreUpdate       = "scoreUpdate"
	EventMatchStatusChange = "matchStatusChange"
	EventMatchWinnerSet    = "matchWinnerSet"
)

// Event is the envelope pushed to realtime subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// LeaderboardUpdate is published after points are applied.
type LeaderboardUpdate struct {
	MatchID            uuid.UUID           `json:"matchId"`
	WinnerFacultyID    *uuid.UUID          `json:"winnerFacultyId"`
	WinnerFacultyName  string              `json:"winnerFacultyName"`
	PointsAwarded      int                 `json:"pointsAwarded"`
	GameWeight         int                 `json:"gameWeight"`
	ParticipantResults []ParticipantResult `json:"participantResults"`
	Timestamp          time.Time           `json:"timestamp"`
}

// NewLeaderboardUpdate builds the event for an applied calculation.
func NewLeaderboardUpdate(calc *PointsCalculationResult, at time.Time) LeaderboardUpdate {
	return LeaderboardUpdate{
		MatchID:            calc.MatchID,
		WinnerFacultyID:    calc.WinnerFacultyID,
		WinnerFacultyName:  calc.WinnerFacultyName,
		PointsAwarded:      calc.PointsAwarded,
		GameWeight:         calc.GameWeight,
		ParticipantResults: calc.ParticipantResults,
		Timestamp:          at,
	}
}

// ScoreUpdate is published when a participant's score changes.
type ScoreUpdate struct {
	MatchID       uuid.UUID `json:"matchId"`
	ParticipantID uuid.UUID `json:"participantId"`
	Score         int       `json:"score"`
	Timestamp     time.Time `json:"timestamp"`
}

// MatchStatusChange is published when a match moves to a new status.
type MatchStatusChange struct {
	MatchID   uuid.UUID   `json:"matchId"`
	Status    MatchStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// MatchWinnerSet is published when a winner is recorded.
type MatchWinnerSet struct {
	MatchID   uuid.UUID `json:"matchId"`
	WinnerID  uuid.UUID `json:"winnerId"`
	Timestamp time.Time `json:"timestamp"`
}
