package points

import (
	"errors"
	"fmt"
)

// Failure categories. Callers branch on these with errors.Is.
var (
	// ErrNotApplicable means the match is missing or not FINISHED. It is a
	// no-op signal rather than a failure.
	ErrNotApplicable = errors.New("match is not finished or not found")
	// ErrDataIntegrity means persisted state contradicts itself.
	ErrDataIntegrity = errors.New("data integrity violation")
	// ErrStorage wraps any failure of the underlying store.
	ErrStorage = errors.New("storage failure")
)

// Integrity errors.
var (
	ErrGameNotFound          = fmt.Errorf("%w: game not found", ErrDataIntegrity)
	ErrNoParticipants        = fmt.Errorf("%w: match has no participants", ErrDataIntegrity)
	ErrFacultyUnresolved     = fmt.Errorf("%w: cannot determine faculty for participant", ErrDataIntegrity)
	ErrWinnerNotFound        = fmt.Errorf("%w: winner not found in participants", ErrDataIntegrity)
	ErrWinnerFacultyNotFound = fmt.Errorf("%w: winner faculty not found", ErrDataIntegrity)
	ErrUnknownParticipant    = fmt.Errorf("%w: participant does not belong to match", ErrDataIntegrity)
)

// Apply state errors.
var (
	ErrPointsAlreadyApplied = errors.New("points already applied for match")
	ErrPointsNotApplied     = errors.New("points not applied for match")
	ErrNilCalculation       = errors.New("nil calculation")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
