package handler

import (
	"net/http"

	"github.com/google/uuid"

	"sports-week-api/internal/model"
	"sports-week-api/internal/service"
)

// MatchHandler serves live match updates for managers and admins.
type MatchHandler struct {
	matches *service.MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

type statusRequest struct {
	Status model.MatchStatus `json:"status"`
}

type winnerRequest struct {
	WinnerID uuid.UUID `json:"winnerId"`
}

type scoreRequest struct {
	Score *int `json:"score"`
}

type drawRequest struct {
	Draw bool `json:"draw"`
}

type finishRequest struct {
	WinnerID *uuid.UUID     `json:"winnerId"`
	Scores   map[string]int `json:"scores"`
	Draws    []uuid.UUID    `json:"draws"`
}

// UpdateStatus handles PUT /matches/{matchID}/status.
func (h *MatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	var req statusRequest
	if err := readJSON(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.matches.UpdateStatus(r.Context(), matchID, req.Status)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, match, "Match status updated")
}

// SetWinner handles PUT /matches/{matchID}/winner.
func (h *MatchHandler) SetWinner(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	var req winnerRequest
	if err := readJSON(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.WinnerID == uuid.Nil {
		Fail(w, http.StatusBadRequest, "winnerId is required")
		return
	}

	match, err := h.matches.SetWinner(r.Context(), matchID, req.WinnerID)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, match, "Match winner set")
}

// Finish handles POST /matches/{matchID}/finish.
func (h *MatchHandler) Finish(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuidParam(r, "matchID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	var req finishRequest
	if err := readJSON(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	scores := make(map[uuid.UUID]int, len(req.Scores))
	for raw, score := range req.Scores {
		id, err := uuid.Parse(raw)
		if err != nil {
			Fail(w, http.StatusBadRequest, "scores must be keyed by participant UUID")
			return
		}
		scores[id] = score
	}

	calc, err := h.matches.Finish(r.Context(), matchID, service.FinishRequest{
		WinnerID: req.WinnerID,
		Scores:   scores,
		Draws:    req.Draws,
	})
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, calc, "Match finished and points applied")
}

// UpdateScore handles PUT /participants/{participantID}/score.
func (h *MatchHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	participantID, err := uuidParam(r, "participantID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	var req scoreRequest
	if err := readJSON(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Score == nil {
		Fail(w, http.StatusBadRequest, "score is required")
		return
	}

	p, err := h.matches.UpdateScore(r.Context(), participantID, *req.Score)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, p, "Score updated")
}

// MarkDraw handles PUT /participants/{participantID}/draw.
func (h *MatchHandler) MarkDraw(w http.ResponseWriter, r *http.Request) {
	participantID, err := uuidParam(r, "participantID")
	if err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	var req drawRequest
	if err := readJSON(w, r, &req); err != nil {
		Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.matches.MarkDraw(r.Context(), participantID, req.Draw)
	if err != nil {
		mapError(w, r, err)
		return
	}
	ok(w, p, "Draw marker updated")
}
