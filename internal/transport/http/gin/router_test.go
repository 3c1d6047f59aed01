package httpgin

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nightowl-club/tablepass/internal/service/booking"
	"github.com/nightowl-club/tablepass/internal/service/checkin"
	"github.com/nightowl-club/tablepass/internal/service/party"
	"github.com/nightowl-club/tablepass/internal/service/payment"
)

func TestRespondErrMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation error", &booking.ValidationError{Field: "guest_email", Reason: "is required"}, http.StatusBadRequest},
		{"wrapped validation error", fmt.Errorf("op:%w", &booking.ValidationError{Field: "table_id", Reason: "is required"}), http.StatusBadRequest},
		{"event not found", booking.ErrEventNotFound, http.StatusNotFound},
		{"booking not found", booking.ErrBookingNotFound, http.StatusNotFound},
		{"expired link", booking.ErrLinkInvalid, http.StatusGone},
		{"booking disabled", booking.ErrBookingDisabled, http.StatusBadRequest},
		{"duplicate confirmed", booking.ErrDuplicateConfirmed, http.StatusBadRequest},
		{"not host", party.ErrNotHost, http.StatusForbidden},
		{"host immutable", party.ErrHostImmutable, http.StatusBadRequest},
		{"already on list", party.ErrAlreadyOnList, http.StatusBadRequest},
		{"pass not ready", party.ErrPassNotReady, http.StatusNotFound},
		{"checkin unauthorized", checkin.ErrUnauthorized, http.StatusUnauthorized},
		{"checkin forbidden", checkin.ErrForbidden, http.StatusForbidden},
		{"invalid pass token", checkin.ErrInvalidToken, http.StatusBadRequest},
		{"event mismatch", checkin.ErrEventMismatch, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("service.checkin.Process:%w", checkin.ErrForbidden), http.StatusForbidden},
		{"gateway not configured", payment.ErrGatewayNotConfigured, http.StatusBadRequest},
		{"gateway unreachable", payment.ErrGatewayUnreachable, http.StatusBadGateway},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondErr(c, tt.err)

			// c.Status alone does not flush the header under a test
			// context, so read the status off the writer.
			if got := c.Writer.Status(); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCallerIdentityFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/booking/x/guests?email=host%40example.com", nil)

	id := callerIdentity(c)
	if id.ParamEmail != "host@example.com" {
		t.Errorf("param email = %q", id.ParamEmail)
	}
	if id.Email != "" {
		t.Errorf("email = %q, want empty for anonymous request", id.Email)
	}
}
