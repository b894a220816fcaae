package handler

import (
	"net/http"

	"github.com/google/uuid"

	"sports-week-api/internal/service"
)

// PointsHandler serves the leaderboard and scoring endpoints.
type PointsHandler struct {
	points *service.PointsService
	board  *service.LeaderboardService
}

// NewPointsHandler creates a new PointsHandler.
func NewPointsHandler(pointsSvc *service.PointsService, board *service.LeaderboardService) *PointsHandler {
	return &PointsHandler{points: pointsSvc, board: board}
}

// Leaderboard handles GET /points/leaderboard.
func (h *PointsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	faculties, err := h.board.Leaderboard(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, faculties, "")
}

// DetailedLeaderboard handles GET /points/leaderboard/detailed.
func (h *PointsHandler) DetailedLeaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := h.board.DetailedLeaderboard(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, standings, "")
}

// FacultyHistory handles GET /points/faculty/{facultyID}/history.
func (h *PointsHandler) FacultyHistory(w http.ResponseWriter, r *http.Request) {
	facultyID, err := uuidParam(r, "facultyID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := h.board.FacultyHistory(r.Context(), facultyID)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, history, "")
}

// Calculate handles POST /points/calculate/{matchID}. Nothing is written.
func (h *PointsHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	calc, err := h.points.Calculate(r.Context(), matchID)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, calc, "Points calculated successfully")
}

// Apply handles POST /points/apply/{matchID}. The award is recalculated
// from stored state so callers never submit results themselves.
func (h *PointsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	calc, err := h.points.CalculateAndApply(r.Context(), matchID)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, calc, "Points applied successfully and leaderboard updated")
}

type correctionRequest struct {
	WinnerID *uuid.UUID  `json:"winnerId"`
	Draws    []uuid.UUID `json:"draws"`
}

// Recompute handles POST /points/recompute/{matchID}. An optional body
// corrects the winner and draw markers before the award is recalculated.
func (h *PointsHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var corr *service.Correction
	if r.ContentLength != 0 {
		var req correctionRequest
		if err := readJSON(w, r, &req); err != nil {
			Fail(w, http.StatusBadRequest, err.Error())
			return
		}
		corr = &service.Correction{WinnerID: req.WinnerID, Draws: req.Draws}
	}

	calc, err := h.points.Recompute(r.Context(), matchID, corr)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, calc, "Points recomputed successfully and leaderboard updated")
}
