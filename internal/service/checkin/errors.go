package checkin

import "errors"

var (
	ErrUnauthorized         = errors.New("authentication required")
	ErrForbidden            = errors.New("you are not allowed to check guests in for this event")
	ErrEventNotFound        = errors.New("event not found")
	ErrInvalidToken         = errors.New("invalid or expired pass token")
	ErrEventMismatch        = errors.New("this pass belongs to a different event")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrBadInput             = errors.New("provide exactly one of qr_token or registration_id")
)
