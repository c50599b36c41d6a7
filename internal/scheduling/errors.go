package scheduling

import "errors"

// Booking admission rejections are deterministic, user-correctable conditions
// and are kept distinct from infrastructure failures so callers can surface a
// specific reason instead of a generic error.
var (
	ErrDoctorUnavailable = errors.New("doctor is not available on this day")
	ErrOutsideHours      = errors.New("requested time is outside the doctor's working hours")
	ErrSlotTaken         = errors.New("this time slot is already booked")

	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("you are not allowed to perform this action")
	ErrInvalidTransition = errors.New("appointment state does not permit this transition")

	ErrInvalidTime = errors.New("time must be in HH:MM format")
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)
