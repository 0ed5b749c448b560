package service

import "errors"

// Domain errors returned by SchedulerService. Their text is what clients see.
var (
	// ErrInvalidSchedulingDate is returned when the requested date is not strictly in the future.
	ErrInvalidSchedulingDate = errors.New("Cannot schedule a message for a past date.")
	// ErrDuplicateSchedule is returned when the same tuple is already stored.
	ErrDuplicateSchedule = errors.New("This message has already been scheduled.")
	// ErrMessageNotFound is returned when no message has the requested id.
	ErrMessageNotFound = errors.New("Message not found")
)

// IsDomainError reports whether err is one of the errors above.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrInvalidSchedulingDate) ||
		errors.Is(err, ErrDuplicateSchedule) ||
		errors.Is(err, ErrMessageNotFound)
}
