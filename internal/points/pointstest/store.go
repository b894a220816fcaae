// Package pointstest provides an in-memory store for exercising the points
// engine and the services without a database.
package pointstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sports-week-api/internal/model"
	"sports-week-api/internal/repository"
)

type state struct {
	faculties    map[uuid.UUID]model.Faculty
	games        map[uuid.UUID]model.Game
	teams        map[uuid.UUID]model.Team
	players      map[uuid.UUID]model.Player
	matches      map[uuid.UUID]model.Match
	participants map[uuid.UUID]model.MatchParticipant
	order        []uuid.UUID
}

func (s *state) clone() *state {
	c := &state{
		faculties:    make(map[uuid.UUID]model.Faculty, len(s.faculties)),
		games:        make(map[uuid.UUID]model.Game, len(s.games)),
		teams:        make(map[uuid.UUID]model.Team, len(s.teams)),
		players:      make(map[uuid.UUID]model.Player, len(s.players)),
		matches:      make(map[uuid.UUID]model.Match, len(s.matches)),
		participants: make(map[uuid.UUID]model.MatchParticipant, len(s.participants)),
		order:        append([]uuid.UUID(nil), s.order...),
	}
	for k, v := range s.faculties {
		c.faculties[k] = v
	}
	for k, v := range s.games {
		c.games[k] = v
	}
	for k, v := range s.teams {
		c.teams[k] = v
	}
	for k, v := range s.players {
		c.players[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.participants {
		c.participants[k] = v
	}
	return c
}

// Store is a mutex-guarded in-memory implementation of the points and
// service store interfaces. WithTx restores a snapshot when fn fails.
type Store struct {
	mu    sync.Mutex
	st    *state
	clock time.Time
	fail  map[string]error
	calls []string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		st: &state{
			faculties:    map[uuid.UUID]model.Faculty{},
			games:        map[uuid.UUID]model.Game{},
			teams:        map[uuid.UUID]model.Team{},
			players:      map[uuid.UUID]model.Player{},
			matches:      map[uuid.UUID]model.Match{},
			participants: map[uuid.UUID]model.MatchParticipant{},
		},
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		fail:  map[string]error{},
	}
}

// FailOn makes every later call to op return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

// Calls returns the operation names invoked so far.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// enter records op and returns its injected failure. Callers hold mu.
func (s *Store) enter(op string) error {
	s.calls = append(s.calls, op)
	return s.fail[op]
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Seeding helpers.

func (s *Store) AddFaculty(name string, points int) *model.Faculty {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	f := model.Faculty{ID: uuid.New(), Name: name, TotalPoints: points, CreatedAt: now, UpdatedAt: now}
	s.st.faculties[f.ID] = f
	return &f
}

func (s *Store) AddGame(name string, gameType model.GameType, weight int) *model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	g := model.Game{ID: uuid.New(), Name: name, Type: gameType, PointWeight: weight, CreatedAt: now, UpdatedAt: now}
	s.st.games[g.ID] = g
	return &g
}

func (s *Store) AddTeam(name string, facultyID, gameID uuid.UUID) *model.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	t := model.Team{ID: uuid.New(), Name: name, FacultyID: facultyID, GameID: gameID, CreatedAt: now, UpdatedAt: now}
	s.st.teams[t.ID] = t
	return &t
}

func (s *Store) AddPlayer(name string, facultyID uuid.UUID) *model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	p := model.Player{ID: uuid.New(), Name: name, FacultyID: facultyID, CreatedAt: now, UpdatedAt: now}
	s.st.players[p.ID] = p
	return &p
}

func (s *Store) AddMatch(gameID uuid.UUID, status model.MatchStatus) *model.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	m := model.Match{ID: uuid.New(), GameID: gameID, StartTime: now, Venue: "Main Court", Status: status, CreatedAt: now, UpdatedAt: now}
	s.st.matches[m.ID] = m
	return &m
}

// AddParticipant enters a team (teamID) or a player (playerID).
func (s *Store) AddParticipant(matchID uuid.UUID, teamID, playerID *uuid.UUID) *model.MatchParticipant {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.MatchParticipant{ID: uuid.New(), MatchID: matchID, TeamID: teamID, PlayerID: playerID, UpdatedAt: s.tick()}
	s.st.participants[p.ID] = p
	s.st.order = append(s.st.order, p.ID)
	return &p
}

// DeleteTeam removes a team without cascading, leaving dangling
// participants behind.
func (s *Store) DeleteTeam(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.teams, id)
}

// DeleteGame removes a game without cascading.
func (s *Store) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.games, id)
}

// DeleteFaculty removes a faculty without cascading.
func (s *Store) DeleteFaculty(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.faculties, id)
}

// Transactions.

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if err := s.enter("WithTx"); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Matches.

func (s *Store) GetMatch(_ context.Context, id uuid.UUID) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetMatch"); err != nil {
		return nil, err
	}
	m, ok := s.st.matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	return &m, nil
}

func (s *Store) GetMatchForUpdate(_ context.Context, id uuid.UUID) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetMatchForUpdate"); err != nil {
		return nil, err
	}
	m, ok := s.st.matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	return &m, nil
}

func (s *Store) UpdateMatchStatus(_ context.Context, id uuid.UUID, status model.MatchStatus) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateMatchStatus"); err != nil {
		return nil, err
	}
	m, ok := s.st.matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	m.Status = status
	m.UpdatedAt = s.tick()
	s.st.matches[id] = m
	return &m, nil
}

func (s *Store) SetMatchWinner(_ context.Context, id uuid.UUID, winnerID *uuid.UUID) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetMatchWinner"); err != nil {
		return nil, err
	}
	m, ok := s.st.matches[id]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	m.WinnerID = winnerID
	m.UpdatedAt = s.tick()
	s.st.matches[id] = m
	return &m, nil
}

func (s *Store) SetPointsApplied(_ context.Context, matchID uuid.UUID, at *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetPointsApplied"); err != nil {
		return err
	}
	m, ok := s.st.matches[matchID]
	if !ok {
		return repository.ErrMatchNotFound
	}
	m.PointsAppliedAt = at
	s.st.matches[matchID] = m
	return nil
}

// Games and faculties.

func (s *Store) GetGame(_ context.Context, id uuid.UUID) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetGame"); err != nil {
		return nil, err
	}
	g, ok := s.st.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	return &g, nil
}

func (s *Store) GetFaculty(_ context.Context, id uuid.UUID) (*model.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetFaculty"); err != nil {
		return nil, err
	}
	f, ok := s.st.faculties[id]
	if !ok {
		return nil, repository.ErrFacultyNotFound
	}
	return &f, nil
}

func (s *Store) ListFacultiesByPoints(_ context.Context) ([]*model.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListFacultiesByPoints"); err != nil {
		return nil, err
	}
	out := make([]*model.Faculty, 0, len(s.st.faculties))
	for _, f := range s.st.faculties {
		f := f
		out = append(out, &f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) AddFacultyPoints(_ context.Context, id uuid.UUID, delta int) (*model.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("AddFacultyPoints"); err != nil {
		return nil, err
	}
	f, ok := s.st.faculties[id]
	if !ok {
		return nil, repository.ErrFacultyNotFound
	}
	f.TotalPoints += delta
	f.UpdatedAt = s.tick()
	s.st.faculties[id] = f
	return &f, nil
}

// Participants.

// owner resolves a participant's faculty. Callers hold mu.
func (s *Store) owner(p model.MatchParticipant) (*model.ParticipantOwner, bool) {
	switch {
	case p.TeamID != nil:
		t, ok := s.st.teams[*p.TeamID]
		if !ok {
			return nil, false
		}
		return &model.ParticipantOwner{ParticipantID: p.ID, FacultyID: t.FacultyID, DisplayName: t.Name, Kind: model.OwnerTeam}, true
	case p.PlayerID != nil:
		pl, ok := s.st.players[*p.PlayerID]
		if !ok {
			return nil, false
		}
		return &model.ParticipantOwner{ParticipantID: p.ID, FacultyID: pl.FacultyID, DisplayName: pl.Name, Kind: model.OwnerPlayer}, true
	default:
		return nil, false
	}
}

func (s *Store) GetParticipantOwner(_ context.Context, participantID uuid.UUID) (*model.ParticipantOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetParticipantOwner"); err != nil {
		return nil, err
	}
	p, ok := s.st.participants[participantID]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	o, ok := s.owner(p)
	if !ok {
		return nil, repository.ErrOwnerNotFound
	}
	return o, nil
}

func (s *Store) GetParticipant(_ context.Context, id uuid.UUID) (*model.MatchParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetParticipant"); err != nil {
		return nil, err
	}
	p, ok := s.st.participants[id]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	return &p, nil
}

func (s *Store) ListParticipants(_ context.Context, matchID uuid.UUID) ([]*model.MatchParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListParticipants"); err != nil {
		return nil, err
	}
	var out []*model.MatchParticipant
	for _, id := range s.st.order {
		p, ok := s.st.participants[id]
		if ok && p.MatchID == matchID {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (s *Store) UpdateParticipantScore(_ context.Context, id uuid.UUID, score int) (*model.MatchParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateParticipantScore"); err != nil {
		return nil, err
	}
	p, ok := s.st.participants[id]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	p.Score = score
	p.UpdatedAt = s.tick()
	s.st.participants[id] = p
	return &p, nil
}

func (s *Store) UpdateParticipantResult(_ context.Context, id uuid.UUID, result *model.MatchResult, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateParticipantResult"); err != nil {
		return err
	}
	p, ok := s.st.participants[id]
	if !ok {
		return repository.ErrParticipantNotFound
	}
	if result != nil {
		r := *result
		result = &r
	}
	p.Result = result
	p.PointsEarned = points
	p.UpdatedAt = s.tick()
	s.st.participants[id] = p
	return nil
}

func (s *Store) SetParticipantDraw(_ context.Context, id uuid.UUID, draw bool) (*model.MatchParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetParticipantDraw"); err != nil {
		return nil, err
	}
	p, ok := s.st.participants[id]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	p.Result = nil
	if draw {
		d := model.ResultDraw
		p.Result = &d
	}
	p.UpdatedAt = s.tick()
	s.st.participants[id] = p
	return &p, nil
}

func (s *Store) ListParticipationsByFaculty(_ context.Context, facultyID uuid.UUID) ([]model.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListParticipationsByFaculty"); err != nil {
		return nil, err
	}
	var out []model.Participation
	for _, id := range s.st.order {
		p, ok := s.st.participants[id]
		if !ok {
			continue
		}
		o, ok := s.owner(p)
		if !ok || o.FacultyID != facultyID {
			continue
		}
		out = append(out, model.Participation{Owner: *o, MatchID: p.MatchID, Result: p.Result, PointsEarned: p.PointsEarned})
	}
	return out, nil
}

func (s *Store) FacultyHistory(_ context.Context, facultyID uuid.UUID) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FacultyHistory"); err != nil {
		return nil, err
	}
	var out []model.HistoryEntry
	for _, id := range s.st.order {
		p, ok := s.st.participants[id]
		if !ok {
			continue
		}
		o, ok := s.owner(p)
		if !ok || o.FacultyID != facultyID {
			continue
		}
		m, ok := s.st.matches[p.MatchID]
		if !ok || m.Status != model.MatchFinished {
			continue
		}
		g, ok := s.st.games[m.GameID]
		if !ok {
			continue
		}
		result := model.UnknownResult
		if p.Result != nil {
			result = string(*p.Result)
		}
		out = append(out, model.HistoryEntry{
			MatchID:         m.ID,
			GameName:        g.Name,
			GameWeight:      g.PointWeight,
			ParticipantName: o.DisplayName,
			Result:          result,
			PointsEarned:    p.PointsEarned,
			CompletedAt:     m.UpdatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}
