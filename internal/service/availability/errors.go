package availability

import "errors"

var (
	ErrTableNotFound = errors.New("table not found or not active")
	ErrEventNotFound = errors.New("event not found")
)
