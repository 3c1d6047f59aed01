package party

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotConfirmed    = errors.New("booking is not confirmed yet")
	ErrNotHost         = errors.New("only the booking host can manage the guest list")
	ErrHostImmutable   = errors.New("the host cannot be removed from the party")
	ErrAlreadyOnList   = errors.New("this guest is already on the list")
	ErrInvalidEmail    = errors.New("a valid guest email is required")
	ErrGuestNotFound   = errors.New("guest not found")
	ErrPassNotReady    = errors.New("no pass has been issued for this guest yet")
)
