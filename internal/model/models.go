// Package model defines the data models for the sports week service.
package model

import (
	"time"

	"github.com/google/uuid"
)

// GameType is the participation mode of a game.
type GameType string

const (
	GameTypeTeam       GameType = "TEAM"
	GameTypeIndividual GameType = "INDIVIDUAL"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchUpcoming MatchStatus = "UPCOMING"
	MatchLive     MatchStatus = "LIVE"
	MatchFinished MatchStatus = "FINISHED"
)

// rank orders statuses so transitions can be checked for direction.
func (s MatchStatus) rank() int {
	switch s {
	case MatchUpcoming:
		return 0
	case MatchLive:
		return 1
	case MatchFinished:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status.
func (s MatchStatus) Valid() bool {
	return s.rank() >= 0
}

// CanTransitionTo reports whether a match may move from s to next.
// Statuses only move forward; staying in place is allowed.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// MatchResult is the outcome recorded for one participant.
type MatchResult string

const (
	ResultWin  MatchResult = "WIN"
	ResultLoss MatchResult = "LOSS"
	ResultDraw MatchResult = "DRAW"
)

// Valid reports whether r is a known result.
func (r MatchResult) Valid() bool {
	return r == ResultWin || r == ResultLoss || r == ResultDraw
}

// Faculty is an academic department competing for points.
type Faculty struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	TotalPoints int       `json:"totalPoints" db:"total_points"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Game is a sport or competition category.
// PointWeight multiplies every award from the game's matches.
type Game struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Type        GameType   `json:"type" db:"type"`
	PointWeight int        `json:"pointWeight" db:"point_weight"`
	ManagerID   *uuid.UUID `json:"managerId,omitempty" db:"manager_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Team belongs to one faculty and plays one game.
type Team struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	FacultyID uuid.UUID `json:"facultyId" db:"faculty_id"`
	GameID    uuid.UUID `json:"gameId" db:"game_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Player is an individual competitor belonging to one faculty.
type Player struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	FacultyID uuid.UUID `json:"facultyId" db:"faculty_id"`
	Semester  *string   `json:"semester,omitempty" db:"semester"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Match is one scheduled contest within a game.
// WinnerID references a team or a player, never a faculty.
type Match struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	GameID          uuid.UUID   `json:"gameId" db:"game_id"`
	StartTime       time.Time   `json:"startTime" db:"start_time"`
	Venue           string      `json:"venue" db:"venue"`
	Status          MatchStatus `json:"status" db:"status"`
	WinnerID        *uuid.UUID  `json:"winnerId,omitempty" db:"winner_id"`
	PointsAppliedAt *time.Time  `json:"pointsAppliedAt,omitempty" db:"points_applied_at"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// PointsApplied reports whether the match's awards were already credited.
func (m *Match) PointsApplied() bool {
	return m.PointsAppliedAt != nil
}

// MatchParticipant is a team or a player entered into a match.
// Exactly one of TeamID and PlayerID is set.
type MatchParticipant struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	MatchID      uuid.UUID    `json:"matchId" db:"match_id"`
	TeamID       *uuid.UUID   `json:"teamId" db:"team_id"`
	PlayerID     *uuid.UUID   `json:"playerId" db:"player_id"`
	Score        int          `json:"score" db:"score"`
	PointsEarned int          `json:"pointsEarned" db:"points_earned"`
	Result       *MatchResult `json:"result" db:"result"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// EntrantID returns the team or player id the participant stands for.
func (p *MatchParticipant) EntrantID() (uuid.UUID, bool) {
	switch {
	case p.TeamID != nil:
		return *p.TeamID, true
	case p.PlayerID != nil:
		return *p.PlayerID, true
	default:
		return uuid.Nil, false
	}
}

// IsEntrant reports whether id names this participant's team or player.
func (p *MatchParticipant) IsEntrant(id uuid.UUID) bool {
	return (p.TeamID != nil && *p.TeamID == id) || (p.PlayerID != nil && *p.PlayerID == id)
}

// DrawFlagged reports whether a DRAW marker was stored for the participant.
func (p *MatchParticipant) DrawFlagged() bool {
	return p.Result != nil && *p.Result == ResultDraw
}

// OwnerKind tells whether a participation is team-backed or player-backed.
type OwnerKind string

const (
	OwnerTeam   OwnerKind = "team"
	OwnerPlayer OwnerKind = "player"
)

// ParticipantOwner is the faculty-side view of a participant, regardless of
// whether it entered as a team or as a player.
type ParticipantOwner struct {
	ParticipantID uuid.UUID `json:"participantId"`
	FacultyID     uuid.UUID `json:"facultyId"`
	DisplayName   string    `json:"displayName"`
	Kind          OwnerKind `json:"kind"`
}

// ParticipantResult is one participant's line in a points calculation.
type ParticipantResult struct {
	ParticipantID uuid.UUID   `json:"participantId"`
	TeamID        *uuid.UUID  `json:"teamId"`
	PlayerID      *uuid.UUID  `json:"playerId"`
	FacultyID     uuid.UUID   `json:"facultyId"`
	Score         int         `json:"score"`
	Result        MatchResult `json:"result"`
	PointsEarned  int         `json:"pointsEarned"`
}

// PointsCalculationResult is the full award computed for one finished match.
// WinnerFacultyID is nil for a drawn match.
type PointsCalculationResult struct {
	MatchID            uuid.UUID           `json:"matchId"`
	GameID             uuid.UUID           `json:"gameId"`
	GameWeight         int                 `json:"gameWeight"`
	WinnerFacultyID    *uuid.UUID          `json:"winnerFacultyId"`
	WinnerFacultyName  string              `json:"winnerFacultyName"`
	PointsAwarded      int                 `json:"pointsAwarded"`
	ParticipantResults []ParticipantResult `json:"participantResults"`
}

// FacultyStanding is a detailed leaderboard row.
type FacultyStanding struct {
	Faculty        *Faculty `json:"faculty"`
	Wins           int      `json:"wins"`
	Losses         int      `json:"losses"`
	Draws          int      `json:"draws"`
	TotalMatches   int      `json:"totalMatches"`
	PointsPerMatch float64  `json:"pointsPerMatch"`
}

// Participation is one participant row owned by a faculty, used for
// detailed standings.
type Participation struct {
	Owner        ParticipantOwner `json:"owner"`
	MatchID      uuid.UUID        `json:"matchId"`
	Result       *MatchResult     `json:"result"`
	PointsEarned int              `json:"pointsEarned"`
}

// HistoryEntry is one point-earning event in a faculty's history.
type HistoryEntry struct {
	MatchID         uuid.UUID `json:"matchId"`
	GameName        string    `json:"gameName"`
	GameWeight      int       `json:"gameWeight"`
	ParticipantName string    `json:"participantName"`
	Result          string    `json:"result"`
	PointsEarned    int       `json:"pointsEarned"`
	CompletedAt     time.Time `json:"completedAt"`
}

// UnknownResult is reported in history rows that were never scored.
const UnknownResult = "UNKNOWN"
