package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/mailer"
	"github.com/nightowl-club/tablepass/internal/phone"
	"github.com/nightowl-club/tablepass/internal/repository"
	postgresrepo "github.com/nightowl-club/tablepass/internal/repository/postgres"
	redisrepo "github.com/nightowl-club/tablepass/internal/repository/redis"
	"github.com/nightowl-club/tablepass/internal/service/availability"
	paysession "github.com/nightowl-club/tablepass/internal/service/payment"
	"github.com/nightowl-club/tablepass/internal/uow"
)

// EventStore reads the event, its tables and the admission inputs.
type EventStore interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	GetTable(ctx context.Context, id int64) (*domain.VenueTable, error)
	GetOverride(ctx context.Context, eventID, tableID int64) (*domain.TableOverride, error)
	GetBookingLink(ctx context.Context, eventID int64, code string) (*domain.BookingLink, error)
	GetPromoter(ctx context.Context, id int64) (*domain.Promoter, error)
	GetPromoterByUserID(ctx context.Context, userID int64) (*domain.Promoter, error)
}

// BookingStore reads and writes booking rows.
type BookingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.TableBooking, error)
	FindActive(ctx context.Context, eventID, tableID int64, guestEmail string) (*domain.TableBooking, error)
	CreateIn(ctx context.Context, tx postgresrepo.DB, b *domain.TableBooking) error
}

// AttendeeStore resolves the attendee a booking belongs to.
type AttendeeStore interface {
	FindAttendeeByUserID(ctx context.Context, userID int64) (*domain.Attendee, error)
	FindAttendeeByEmail(ctx context.Context, email string) (*domain.Attendee, error)
}

// PaymentStore reads the transaction a booking references.
type PaymentStore interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.PaymentTransaction, error)
}

// Store groups the persistence surfaces the booking flow touches. Tx is the
// transactional boundary the insert runs under.
type Store struct {
	Events   EventStore
	Bookings BookingStore
	Party    AttendeeStore
	Payments PaymentStore
	Tx       uow.TxStore
}

type Config struct {
	// DefaultPhoneRegion interprets guest WhatsApp numbers that carry no
	// country code.
	DefaultPhoneRegion string
}

type Service struct {
	store    Store
	cache    *redisrepo.Cache
	pubsub   *redisrepo.BookingsPubSub
	limiter  *redisrepo.SlidingWindowLimiter
	payments *paysession.Service
	mail     mailer.Sender
	uow      *uow.UnitOfWork
	cfg      Config
}

func New(
	store Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BookingsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	payments *paysession.Service,
	mail mailer.Sender,
	cfg Config,
) *Service {
	if cfg.DefaultPhoneRegion == "" {
		cfg.DefaultPhoneRegion = "GB"
	}

	return &Service{
		store:    store,
		cache:    cache,
		pubsub:   pubsub,
		limiter:  limiter,
		payments: payments,
		mail:     mail,
		uow:      uow.New(store.Tx),
		cfg:      cfg,
	}
}

type SubmitInput struct {
	EventID         int64
	TableID         int64
	GuestName       string
	GuestEmail      string
	GuestWhatsApp   string
	SpecialRequests string
	RefCode         string
	LinkCode        string
}

type SubmitResult struct {
	Booking *domain.TableBooking
	Event   *domain.Event
	Payment *domain.PaymentTransaction
	Message string
}

// Submit runs the full table-booking workflow: validation, admission policy,
// availability resolution, promoter attribution, attendee linkage, the
// duplicate guard and the insert. The confirmation email and payment session
// run as post-commit effects and can never fail the booking itself.
//
// Returns:
//   - *SubmitResult: the created booking plus optional payment info.
//   - error: *ValidationError, booking.ErrEventNotFound, booking.ErrEventNotPublished,
//     booking.ErrBookingDisabled, booking.ErrPromoterRequired, booking.ErrLinkInvalid,
//     booking.ErrLinkTableMismatch, booking.ErrTableNotFound, booking.ErrTableUnavailable,
//     booking.ErrDuplicatePending or booking.ErrDuplicateConfirmed.
func (s *Service) Submit(
	ctx context.Context,
	user *domain.User,
	in SubmitInput,
	rlKey string,
) (*SubmitResult, error) {
	const op = "service.booking.Submit"

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	normalized, err := validateSubmit(in, s.cfg.DefaultPhoneRegion)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	in = *normalized

	ev, err := s.store.Events.GetEvent(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if ev.Status != domain.EventPublished {
		return nil, fmt.Errorf("%s:%w", op, ErrEventNotPublished)
	}

	var link *domain.BookingLink
	if in.LinkCode != "" {
		link, err = s.store.Events.GetBookingLink(ctx, in.EventID, in.LinkCode)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s:%w", op, ErrLinkInvalid)
			}

			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	if err := decideAdmission(ev.BookingMode, in.RefCode, link, in.TableID, time.Now()); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	table, err := s.store.Events.GetTable(ctx, in.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTableNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !table.IsActive {
		return nil, fmt.Errorf("%s:%w", op, ErrTableNotFound)
	}

	override, err := s.store.Events.GetOverride(ctx, in.EventID, in.TableID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	av := availability.Effective(*table, override)
	if !av.Available {
		return nil, fmt.Errorf("%s:%w", op, ErrTableUnavailable)
	}

	// Attribution is best-effort: an unmatched code is stored verbatim and
	// never fails the booking.
	promoterID := s.resolvePromoter(ctx, in.RefCode)

	attendeeID := s.resolveAttendee(ctx, user, in.GuestEmail)

	existing, err := s.store.Bookings.FindActive(ctx, in.EventID, in.TableID, in.GuestEmail)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if existing != nil {
		if existing.Status == domain.BookingConfirmed {
			return nil, fmt.Errorf("%s:%w", op, ErrDuplicateConfirmed)
		}
		return nil, fmt.Errorf("%s:%w", op, ErrDuplicatePending)
	}

	b := &domain.TableBooking{
		ID:              uuid.New(),
		EventID:         in.EventID,
		TableID:         in.TableID,
		AttendeeID:      attendeeID,
		GuestName:       in.GuestName,
		GuestEmail:      in.GuestEmail,
		GuestWhatsApp:   in.GuestWhatsApp,
		PartySize:       av.PartySize,
		SpecialRequests: in.SpecialRequests,
		PromoterID:      promoterID,
		ReferralCode:    in.RefCode,
		Status:          domain.BookingPending,
		PaymentStatus:   domain.PaymentNotRequired,
		MinimumSpend:    av.MinimumSpend,
		DepositRequired: av.Deposit,
	}
	if av.Deposit > 0 {
		b.PaymentStatus = domain.PaymentPending
	}

	var paymentTx *domain.PaymentTransaction

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		enqueue func(uow.Effect),
	) error {
		if err := s.store.Bookings.CreateIn(ctx, tx, b); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		enqueue(func(ctx context.Context) {
			s.sendRequestEmail(b, ev)

			if s.payments != nil && av.Deposit > 0 {
				paymentTx = s.payments.CreateSession(ctx, table.VenueID, b, ev, av.Deposit)
				if paymentTx != nil {
					b.PaymentTransactionID = &paymentTx.ID
				}
			}

			if s.cache != nil {
				_ = s.cache.InvalidateEvent(ctx, ev.ID)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishBookingChanged(ctx, ev.ID)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := "Booking request received. The venue will confirm your table shortly."
	if av.Deposit > 0 {
		msg = fmt.Sprintf(
			"Booking request received. A deposit of %s is required to secure your table.",
			formatAmount(av.Deposit, ev.Currency),
		)
	}

	return &SubmitResult{
		Booking: b,
		Event:   ev,
		Payment: paymentTx,
		Message: msg,
	}, nil
}

type Detail struct {
	Booking *domain.TableBooking
	Payment *domain.PaymentTransaction
}

// Get retrieves a booking together with its referenced payment transaction,
// so the detail page can surface a pending or expired payment state. The
// transaction lookup is best-effort.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	const op = "service.booking.Get"

	b, err := s.store.Bookings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	d := &Detail{Booking: b}
	if b.PaymentTransactionID != nil && s.store.Payments != nil {
		if tx, err := s.store.Payments.GetTransaction(ctx, *b.PaymentTransactionID); err == nil {
			d.Payment = tx
		}
	}

	return d, nil
}

// resolvePromoter matches a referral code first as a promoter id, then as the
// id of a user who is also a promoter.
func (s *Service) resolvePromoter(ctx context.Context, refCode string) *int64 {
	if refCode == "" {
		return nil
	}

	id, err := strconv.ParseInt(refCode, 10, 64)
	if err != nil {
		return nil
	}

	if p, err := s.store.Events.GetPromoter(ctx, id); err == nil {
		return &p.ID
	}

	if p, err := s.store.Events.GetPromoterByUserID(ctx, id); err == nil {
		return &p.ID
	}

	return nil
}

// resolveAttendee prefers the authenticated user's attendee record, then a
// lookup by guest email. A missing record is left nil and created later at
// confirmation time by the party engine.
func (s *Service) resolveAttendee(ctx context.Context, user *domain.User, guestEmail string) *uuid.UUID {
	if user != nil {
		if a, err := s.store.Party.FindAttendeeByUserID(ctx, user.ID); err == nil {
			return &a.ID
		}
	}

	if a, err := s.store.Party.FindAttendeeByEmail(ctx, guestEmail); err == nil {
		return &a.ID
	}

	return nil
}

func (s *Service) sendRequestEmail(b *domain.TableBooking, ev *domain.Event) {
	paymentLine := "No deposit is required."
	if b.DepositRequired > 0 {
		paymentLine = fmt.Sprintf("A deposit of %s is required.", formatAmount(b.DepositRequired, ev.Currency))
	}

	_ = s.mail.Send("booking_requested", b.GuestEmail, map[string]string{
		"name":         b.GuestName,
		"event":        ev.Title,
		"payment_line": paymentLine,
	})
}

// validateSubmit checks required fields and shapes, and returns the input
// with the guest email lowercased and the WhatsApp number normalized to E.164.
func validateSubmit(in SubmitInput, phoneRegion string) (*SubmitInput, error) {
	if in.TableID <= 0 {
		return nil, &ValidationError{Field: "table_id", Reason: "is required"}
	}

	in.GuestName = strings.TrimSpace(in.GuestName)
	if in.GuestName == "" {
		return nil, &ValidationError{Field: "guest_name", Reason: "is required"}
	}

	in.GuestEmail = strings.ToLower(strings.TrimSpace(in.GuestEmail))
	if in.GuestEmail == "" {
		return nil, &ValidationError{Field: "guest_email", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(in.GuestEmail); err != nil {
		return nil, &ValidationError{Field: "guest_email", Reason: "is not a valid email address"}
	}

	if strings.TrimSpace(in.GuestWhatsApp) == "" {
		return nil, &ValidationError{Field: "guest_whatsapp", Reason: "is required"}
	}
	normalized, err := phone.Normalize(in.GuestWhatsApp, phoneRegion)
	if err != nil {
		return nil, &ValidationError{Field: "guest_whatsapp", Reason: "is not a valid phone number"}
	}
	in.GuestWhatsApp = normalized

	return &in, nil
}

// decideAdmission applies the event's booking mode. A valid direct link
// bypasses the mode checks entirely; a link pinned to another table is
// rejected rather than silently ignored.
func decideAdmission(
	mode domain.BookingMode,
	refCode string,
	link *domain.BookingLink,
	tableID int64,
	now time.Time,
) error {
	if link != nil {
		if !link.IsActive || (link.ExpiresAt != nil && now.After(*link.ExpiresAt)) {
			return ErrLinkInvalid
		}
		if link.TableID != nil && *link.TableID != tableID {
			return ErrLinkTableMismatch
		}
		return nil
	}

	switch mode {
	case domain.BookingDisabled:
		return ErrBookingDisabled
	case domain.BookingPromoterOnly:
		if strings.TrimSpace(refCode) == "" {
			return ErrPromoterRequired
		}
	}

	return nil
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%s %.2f", strings.ToUpper(currency), float64(cents)/100)
}
