package booking

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventNotPublished  = errors.New("event is not open for bookings")
	ErrBookingDisabled    = errors.New("table bookings are disabled for this event")
	ErrPromoterRequired   = errors.New("table bookings for this event require a promoter referral")
	ErrLinkInvalid        = errors.New("booking link is no longer valid")
	ErrLinkTableMismatch  = errors.New("booking link is not valid for this table")
	ErrTableNotFound      = errors.New("table not found")
	ErrTableUnavailable   = errors.New("table is not available for this event")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDuplicatePending   = errors.New("a booking request for this table is already pending for this email")
	ErrDuplicateConfirmed = errors.New("this table is already confirmed for this email")
)

// ValidationError reports a malformed booking request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
