package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	redisrepo "github.com/nightowl-club/tablepass/internal/repository/redis"
	"github.com/nightowl-club/tablepass/internal/service"
	"github.com/nightowl-club/tablepass/internal/service/availability"
	"github.com/nightowl-club/tablepass/internal/service/booking"
	"github.com/nightowl-club/tablepass/internal/service/checkin"
	"github.com/nightowl-club/tablepass/internal/service/party"
	"github.com/nightowl-club/tablepass/internal/service/payment"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.POST("/book", handleSubmitBooking(svcs, idem))
	r.GET("/booking/:id", handleGetBooking(svcs))

	r.GET("/booking/:id/guests", handleListGuests(svcs))
	r.POST("/booking/:id/guests", handleAddGuest(svcs))
	r.DELETE("/booking/:id/guests/:guestId", handleRemoveGuest(svcs))

	r.GET("/events/:id/tables", handleListEventTables(svcs))
	r.POST("/events/:id/checkin", handleCheckin(svcs))

	r.GET("/party/guests/:id/qr", handleGuestQR(svcs))

	// Admin-API
	admin := r.Group("/admin")
	{
		admin.POST("/venues/:id/payments/test", handlePaymentTest(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Submit a table booking request (idempotent)
// @Param    req body  SubmitBookingRequest true "payload"
// @Header   200 {string} Idempotency-Key "echo"
// @Success  200 {object} SubmitBookingResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  410 {object} ErrorResponse "booking link expired"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /book [post]
func handleSubmitBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubmitBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(req.EventID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusOK,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusOK,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		rlKey := "ip:" + c.ClientIP()

		res, err := svcs.Booking.Submit(
			c.Request.Context(),
			CurrentUser(c),
			booking.SubmitInput{
				EventID:         req.EventID,
				TableID:         req.TableID,
				GuestName:       req.GuestName,
				GuestEmail:      req.GuestEmail,
				GuestWhatsApp:   req.GuestWhatsApp,
				SpecialRequests: req.SpecialRequests,
				RefCode:         req.RefCode,
				LinkCode:        req.LinkCode,
			},
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: "too many booking attempts, slow down"},
				)
				return
			}
			respondErr(c, err)
			return
		}

		resp := SubmitBookingResponse{
			BookingID:     res.Booking.ID.String(),
			Status:        string(res.Booking.Status),
			PaymentStatus: string(res.Booking.PaymentStatus),
			Message:       res.Message,
		}
		resp.Payment = toPaymentInfo(res.Payment)

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Get booking detail with the materialized party
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  404 {object} ErrorResponse
// @Router   /booking/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		d, err := svcs.Booking.Get(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		// Reading the detail page is what materializes the party roster.
		view, err := svcs.Party.Materialize(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toBookingResponse(d.Booking, d.Payment, view))
	}
}

// @Summary  List the booking's guest roster
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} GuestListResponse
// @Router   /booking/{id}/guests [get]
func handleListGuests(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		roster, err := svcs.Party.ListGuests(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, GuestListResponse{
			Guests:  toGuestEntries(roster.Guests),
			Summary: roster.Summary,
		})
	}
}

// @Summary  Add a guest to the party
// @Param    id    path   string          true  "Booking ID (uuid)"
// @Param    email query  string          false "host email when unauthenticated"
// @Param    req   body   AddGuestRequest true  "payload"
// @Success  200 {object} AddGuestResponse
// @Failure  400 {object} ErrorResponse
// @Failure  403 {object} ErrorResponse
// @Router   /booking/{id}/guests [post]
func handleAddGuest(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req AddGuestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Party.AddGuest(
			c.Request.Context(),
			bookingID,
			callerIdentity(c),
			party.AddGuestInput{
				Name:  req.Name,
				Email: req.Email,
				Phone: req.Phone,
			},
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, AddGuestResponse{
			GuestID: res.Guest.ID.String(),
			Status:  string(res.Guest.Status),
			JoinURL: res.JoinURL,
		})
	}
}

// @Summary  Remove a guest from the party
// @Param    id      path  string true "Booking ID (uuid)"
// @Param    guestId path  string true "Guest ID (uuid)"
// @Success  200 {object} RemoveGuestResponse
// @Failure  400 {object} ErrorResponse "host cannot be removed"
// @Failure  403 {object} ErrorResponse
// @Router   /booking/{id}/guests/{guestId} [delete]
func handleRemoveGuest(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		guestID, ok := parseUUIDParam(c, "guestId")
		if !ok {
			return
		}

		if err := svcs.Party.RemoveGuest(
			c.Request.Context(),
			bookingID,
			guestID,
			callerIdentity(c),
		); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, RemoveGuestResponse{GuestID: guestID.String(), Status: "removed"})
	}
}

// @Summary  List effective table availability for an event
// @Param    id  path  int  true  "Event ID"
// @Success  200 {array} TableAvailability
// @Router   /events/{id}/tables [get]
func handleListEventTables(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		tables, err := svcs.Availability.ListEventTables(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}

		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, toTableAvailability(tables), "public, max-age=15", true)
	}
}

// @Summary  Check a guest in at the door
// @Param    id  path  int            true "Event ID"
// @Param    req body  CheckinRequest true "exactly one of qr_token / registration_id"
// @Success  200 {object} CheckinResponse
// @Failure  400 {object} ErrorResponse
// @Failure  401 {object} ErrorResponse
// @Failure  403 {object} ErrorResponse
// @Router   /events/{id}/checkin [post]
func handleCheckin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req CheckinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		in := checkin.Input{QRToken: strings.TrimSpace(req.QRToken)}
		if req.RegistrationID != "" {
			regID, err := uuid.Parse(req.RegistrationID)
			if err != nil {
				badRequest(c, "invalid registration_id")
				return
			}
			in.RegistrationID = &regID
		}

		res, err := svcs.Checkin.Process(c.Request.Context(), eventID, CurrentUser(c), in)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := CheckinResponse{
			CheckinID:      res.Checkin.ID.String(),
			RegistrationID: res.Checkin.RegistrationID.String(),
			CheckedInAt:    res.Checkin.CheckedInAt,
			Duplicate:      res.Duplicate,
		}
		if res.Attendee != nil {
			resp.Attendee = &CheckinAttendee{
				ID:    res.Attendee.ID.String(),
				Name:  res.Attendee.Name,
				Email: res.Attendee.Email,
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Render a guest's pass as a QR PNG
// @Param    id  path  string  true  "Guest ID (uuid)"
// @Success  200 {file} png
// @Failure  404 {object} ErrorResponse
// @Router   /party/guests/{id}/qr [get]
func handleGuestQR(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		png, err := svcs.Party.GuestQR(c.Request.Context(), guestID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("Cache-Control", "private, max-age=300")
		c.Data(http.StatusOK, "image/png", png)
	}
}

// @Summary  Test a venue's payment gateway credentials
// @Param    id  path  int  true  "Venue ID"
// @Success  200 {object} map[string]string
// @Failure  400 {object} ErrorResponse "gateway not configured"
// @Failure  502 {object} ErrorResponse "gateway unreachable"
// @Router   /admin/venues/{id}/payments/test [post]
func handlePaymentTest(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
			return
		}
		if user.Role != domain.RoleSuperadmin && user.Role != domain.RoleVenueAdmin {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin access required"})
			return
		}

		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		if err := svcs.Payment.TestConnection(c.Request.Context(), venueID); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// --- Helpers ---

func callerIdentity(c *gin.Context) party.CallerIdentity {
	id := party.CallerIdentity{ParamEmail: strings.TrimSpace(c.Query("email"))}
	if u := CurrentUser(c); u != nil {
		id.Email = u.Email
	}
	return id
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Error()})
		return
	}

	switch {
	// availability service
	case errors.Is(err, availability.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, availability.ErrTableNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
		return
	// booking service
	case errors.Is(err, booking.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrTableNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
		return
	case errors.Is(err, booking.ErrLinkInvalid):
		c.JSON(http.StatusGone, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, booking.ErrEventNotPublished),
		errors.Is(err, booking.ErrBookingDisabled),
		errors.Is(err, booking.ErrPromoterRequired),
		errors.Is(err, booking.ErrLinkTableMismatch),
		errors.Is(err, booking.ErrTableUnavailable),
		errors.Is(err, booking.ErrDuplicatePending),
		errors.Is(err, booking.ErrDuplicateConfirmed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// party service
	case errors.Is(err, party.ErrBookingNotFound),
		errors.Is(err, party.ErrGuestNotFound),
		errors.Is(err, party.ErrPassNotReady):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, party.ErrNotHost):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, party.ErrNotConfirmed),
		errors.Is(err, party.ErrHostImmutable),
		errors.Is(err, party.ErrAlreadyOnList),
		errors.Is(err, party.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// checkin service
	case errors.Is(err, checkin.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, checkin.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, checkin.ErrEventNotFound),
		errors.Is(err, checkin.ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, checkin.ErrInvalidToken),
		errors.Is(err, checkin.ErrEventMismatch),
		errors.Is(err, checkin.ErrBadInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// payment service
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, payment.ErrGatewayUnreachable):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
