package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every entity-specific not-found error.
var ErrNotFound = errors.New("not found")

// Common errors for repository operations.
var (
	ErrFacultyNotFound     = fmt.Errorf("faculty %w", ErrNotFound)
	ErrGameNotFound        = fmt.Errorf("game %w", ErrNotFound)
	ErrTeamNotFound        = fmt.Errorf("team %w", ErrNotFound)
	ErrPlayerNotFound      = fmt.Errorf("player %w", ErrNotFound)
	ErrMatchNotFound       = fmt.Errorf("match %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)
	ErrOwnerNotFound       = fmt.Errorf("participant owner %w", ErrNotFound)
)
