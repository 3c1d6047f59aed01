package payment

import "errors"

var (
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured for this venue")
	ErrGatewayUnreachable   = errors.New("payment gateway test failed")
)
