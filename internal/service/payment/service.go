// Package payment is the bridge between bookings and the external payment
// gateway. A missing or failing gateway never fails the parent booking: the
// bridge degrades to "no payment session" and the booking stays payable later.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	gateway "github.com/nightowl-club/tablepass/internal/payment"
	"github.com/nightowl-club/tablepass/internal/repository"
	postgresrepo "github.com/nightowl-club/tablepass/internal/repository/postgres"
)

type Config struct {
	SuccessURL         string
	CancelURL          string
	DefaultExpiryHours int
}

type Service struct {
	store   *postgresrepo.Store
	gateway gateway.Gateway
	logger  *slog.Logger
	cfg     Config
}

func New(store *postgresrepo.Store, gw gateway.Gateway, logger *slog.Logger, cfg Config) *Service {
	if cfg.DefaultExpiryHours <= 0 {
		cfg.DefaultExpiryHours = 24
	}

	return &Service{
		store:   store,
		gateway: gw,
		logger:  logger,
		cfg:     cfg,
	}
}

// CreateSession opens a hosted checkout session for a booking deposit and
// records the local payment transaction. It returns nil (not an error) when
// the venue has no enabled gateway or the upstream call fails; the caller
// proceeds without a payment link.
func (s *Service) CreateSession(
	ctx context.Context,
	venueID int64,
	booking *domain.TableBooking,
	event *domain.Event,
	amount int64,
) *domain.PaymentTransaction {
	settings, err := s.store.Payments().GetVenueSettings(ctx, venueID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("payment settings lookup failed", "venue_id", venueID, "error", err)
		}
		return nil
	}

	if !settings.GatewayEnabled || settings.APIKey == "" {
		return nil
	}

	invoice := invoiceNumber(booking.ID)

	res, err := s.gateway.CreateCheckout(ctx, gateway.CheckoutRequest{
		APIKey:        settings.APIKey,
		AmountCents:   amount,
		Currency:      event.Currency,
		InvoiceNumber: invoice,
		Description:   fmt.Sprintf("Table deposit for %s", event.Title),
		CustomerName:  booking.GuestName,
		CustomerEmail: booking.GuestEmail,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
	})
	if err != nil {
		s.logger.Warn("checkout session failed", "booking_id", booking.ID, "error", err)
		return nil
	}

	expiryHours := settings.ExpiryHours
	if expiryHours <= 0 {
		expiryHours = s.cfg.DefaultExpiryHours
	}

	tx := &domain.PaymentTransaction{
		ID:            uuid.New(),
		VenueID:       venueID,
		ReferenceType: "table_booking",
		ReferenceID:   booking.ID,
		Amount:        amount,
		Currency:      event.Currency,
		InvoiceNumber: invoice,
		PaymentURL:    res.PaymentURL,
		Status:        domain.TransactionPending,
		ExpiresAt:     time.Now().Add(time.Duration(expiryHours) * time.Hour),
	}

	if err := s.store.Payments().CreateTransaction(ctx, tx); err != nil {
		s.logger.Warn("payment transaction insert failed", "booking_id", booking.ID, "error", err)
		return nil
	}

	if err := s.store.Bookings().SetPaymentRef(ctx, booking.ID, tx.ID); err != nil {
		s.logger.Warn("booking payment link failed", "booking_id", booking.ID, "error", err)
	}

	return tx
}

// TestConnection checks the venue's gateway credentials. This is the one
// place where an upstream failure is surfaced rather than swallowed.
func (s *Service) TestConnection(ctx context.Context, venueID int64) error {
	const op = "service.payment.TestConnection"

	settings, err := s.store.Payments().GetVenueSettings(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrGatewayNotConfigured)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	if !settings.GatewayEnabled || settings.APIKey == "" {
		return fmt.Errorf("%s:%w", op, ErrGatewayNotConfigured)
	}

	if err := s.gateway.Ping(ctx, settings.APIKey); err != nil {
		return fmt.Errorf("%s:%w", op, ErrGatewayUnreachable)
	}

	return nil
}

func invoiceNumber(bookingID uuid.UUID) string {
	return fmt.Sprintf("TB-%s-%d", bookingID.String()[:8], time.Now().Unix())
}
