// Package handler provides the HTTP handlers of the sports week API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sports-week-api/internal/pkg/lock"
	"sports-week-api/internal/points"
	"sports-week-api/internal/service"
)

const maxBodyBytes = 1_048_576

// Response is the envelope of every API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func ok(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// Fail writes an error envelope. It is exported for the server's auth and
// recovery middleware.
func Fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid UUID", name)
	}
	return id, nil
}

// mapError turns service and engine errors into HTTP responses.
func mapError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, points.ErrNotApplicable):
		Fail(w, http.StatusConflict, "Match is not finished or not found")

	case errors.Is(err, points.ErrPointsAlreadyApplied),
		errors.Is(err, points.ErrPointsNotApplied),
		errors.Is(err, service.ErrMatchScored),
		errors.Is(err, service.ErrMatchFinished),
		errors.Is(err, service.ErrInvalidTransition):
		Fail(w, http.StatusConflict, err.Error())

	case errors.Is(err, points.ErrDataIntegrity):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Data integrity violation")
		Fail(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, service.ErrFacultyNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrParticipantNotFound):
		Fail(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrWinnerNotParticipant),
		errors.Is(err, service.ErrParticipantMismatch):
		Fail(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, lock.ErrLockTimeout):
		Fail(w, http.StatusServiceUnavailable, "match is busy, try again")

	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		Fail(w, http.StatusInternalServerError, "internal server error")
	}
}
