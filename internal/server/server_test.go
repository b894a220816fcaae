package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sports-week-api/internal/config"
	"sports-week-api/internal/handler"
	"sports-week-api/internal/model"
	"sports-week-api/internal/pkg/lock"
	"sports-week-api/internal/points/pointstest"
	"sports-week-api/internal/realtime"
	"sports-week-api/internal/service"
)

var secret = []byte("test-secret")

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(context.Context) error { return f.err }

func newTestServer(t *testing.T, health HealthChecker) (*Server, *pointstest.Store, *model.Match) {
	t.Helper()
	store := pointstest.New()
	hub := realtime.NewHub(nil)
	ps := service.NewPointsService(store, lock.NewKeyLock(), time.Second, hub)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 3001, AllowedOrigins: []string{"http://localhost:5173"}},
		Auth:   config.AuthConfig{JWTSecret: string(secret)},
	}
	srv, err := New(&Dependencies{
		Config:             cfg,
		PointsService:      ps,
		LeaderboardService: service.NewLeaderboardService(store, 2),
		MatchService:       service.NewMatchService(store, ps, hub),
		Hub:                hub,
		Health:             health,
	})
	require.NoError(t, err)

	sci := store.AddFaculty("Science", 0)
	arts := store.AddFaculty("Arts", 0)
	game := store.AddGame("Chess", model.GameTypeIndividual, 1)
	a := store.AddPlayer("Dana", sci.ID)
	b := store.AddPlayer("Eli", arts.ID)
	match := store.AddMatch(game.ID, model.MatchFinished)
	store.AddParticipant(match.ID, nil, &a.ID)
	store.AddParticipant(match.ID, nil, &b.ID)
	_, err = store.SetMatchWinner(context.Background(), match.ID, &a.ID)
	require.NoError(t, err)

	return srv, store, match
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := SignToken(secret, uuid.NewString(), "tester", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, srv *Server, method, path, bearer string) (int, handler.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp handler.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(&Dependencies{Config: &config.Config{}})
	assert.Error(t, err)

	_, err = New(&Dependencies{})
	assert.Error(t, err)
}

func TestPublicRoutes(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	code, resp := call(t, srv, http.MethodGet, "/api/points/leaderboard", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	code, _ = call(t, srv, http.MethodGet, "/api/points/leaderboard/detailed", "")
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sportsweek_")
}

func TestPointsRoutes_Auth(t *testing.T) {
	srv, _, match := newTestServer(t, nil)
	path := "/api/points/calculate/" + match.ID.String()

	code, resp := call(t, srv, http.MethodPost, path, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access token required", resp.Error)

	code, resp = call(t, srv, http.MethodPost, path, "garbage")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Invalid or expired token", resp.Error)

	code, resp = call(t, srv, http.MethodPost, path, token(t, RoleManager))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", resp.Error)

	code, resp = call(t, srv, http.MethodPost, path, token(t, RoleAdmin))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Points calculated successfully", resp.Message)
}

func TestPointsRoutes_ExpiredAndForeignTokens(t *testing.T) {
	srv, _, match := newTestServer(t, nil)
	path := "/api/points/apply/" + match.ID.String()

	expired, err := SignToken(secret, "1", "old", RoleAdmin, -time.Minute)
	require.NoError(t, err)
	code, _ := call(t, srv, http.MethodPost, path, expired)
	assert.Equal(t, http.StatusForbidden, code)

	foreign, err := SignToken([]byte("other"), "1", "x", RoleAdmin, time.Hour)
	require.NoError(t, err)
	code, _ = call(t, srv, http.MethodPost, path, foreign)
	assert.Equal(t, http.StatusForbidden, code)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	code, _ = call(t, srv, http.MethodPost, path, raw)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestMatchRoutes_ManagerAllowed(t *testing.T) {
	srv, _, match := newTestServer(t, nil)
	path := "/api/matches/" + match.ID.String() + "/status"

	code, resp := call(t, srv, http.MethodPut, path, token(t, RoleUser))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Manager or Admin access required", resp.Error)

	// Past auth the handler rejects the empty body.
	code, _ = call(t, srv, http.MethodPut, path, token(t, RoleManager))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestApplyRoute_AppliesOnce(t *testing.T) {
	srv, store, match := newTestServer(t, nil)
	path := "/api/points/apply/" + match.ID.String()
	admin := token(t, RoleAdmin)

	code, _ := call(t, srv, http.MethodPost, path, admin)
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, srv, http.MethodPost, path, admin)
	assert.Equal(t, http.StatusConflict, code)

	board, err := store.ListFacultiesByPoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Science", board[0].Name)
	assert.Equal(t, 3, board[0].TotalPoints)
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeHealth{})
	code, _ := call(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)

	srv, _, _ = newTestServer(t, fakeHealth{err: errors.New("down")})
	code, resp := call(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "database unavailable", resp.Error)
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/points/leaderboard", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
