package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/repository"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const bookingColumns = `id, event_id, table_id, attendee_id, guest_name, guest_email, guest_whatsapp,
	party_size, special_requests, promoter_id, referral_code, status, payment_status,
	minimum_spend, deposit_required, payment_transaction_id, created_at`

func scanBooking(row interface{ Scan(dest ...any) error }) (*domain.TableBooking, error) {
	var b domain.TableBooking
	err := row.Scan(
		&b.ID, &b.EventID, &b.TableID, &b.AttendeeID, &b.GuestName, &b.GuestEmail, &b.GuestWhatsApp,
		&b.PartySize, &b.SpecialRequests, &b.PromoterID, &b.ReferralCode, &b.Status, &b.PaymentStatus,
		&b.MinimumSpend, &b.DepositRequired, &b.PaymentTransactionID, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get retrieves a table booking by its ID.
//
// Returns:
//   - *domain.TableBooking: the booking when found.
//   - error: repository.ErrNotFound if the booking is not found.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.TableBooking, error) {
	const op = "postgres.BookingRepo.Get"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM table_bookings WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// FindActive finds a pending or confirmed booking for the same event, table
// and guest email. This backs the optimistic duplicate guard; it is a plain
// read, not a uniqueness constraint.
func (r *BookingRepo) FindActive(
	ctx context.Context,
	eventID, tableID int64,
	guestEmail string,
) (*domain.TableBooking, error) {
	const op = "postgres.BookingRepo.FindActive"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+`
		 FROM table_bookings
		 WHERE event_id = $1 AND table_id = $2 AND lower(guest_email) = lower($3)
		   AND status IN ('pending', 'confirmed')
		 ORDER BY created_at DESC
		 LIMIT 1`,
		eventID, tableID, guestEmail,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// CreateIn inserts the booking within the caller's transaction.
func (r *BookingRepo) CreateIn(ctx context.Context, tx DB, b *domain.TableBooking) error {
	return r.With(tx).Create(ctx, b)
}

func (r *BookingRepo) Create(ctx context.Context, b *domain.TableBooking) error {
	const op = "postgres.BookingRepo.Create"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO table_bookings(
			id, event_id, table_id, attendee_id, guest_name, guest_email, guest_whatsapp,
			party_size, special_requests, promoter_id, referral_code, status, payment_status,
			minimum_spend, deposit_required)
    	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		b.ID, b.EventID, b.TableID, b.AttendeeID, b.GuestName, b.GuestEmail, b.GuestWhatsApp,
		b.PartySize, b.SpecialRequests, b.PromoterID, b.ReferralCode, b.Status, b.PaymentStatus,
		b.MinimumSpend, b.DepositRequired,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// SetPaymentRef links an in-flight payment transaction to the booking and
// marks its payment as pending.
func (r *BookingRepo) SetPaymentRef(ctx context.Context, bookingID, transactionID uuid.UUID) error {
	const op = "postgres.BookingRepo.SetPaymentRef"

	db := r.handle()

	ct, err := db.Exec(ctx,
		`UPDATE table_bookings
		 SET payment_transaction_id = $2, payment_status = 'pending'
		 WHERE id = $1`,
		bookingID, transactionID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// GetForRegistration resolves the booking a registration belongs to, via the
// party-guest roster. Used to attribute a check-in to the booking's promoter.
func (r *BookingRepo) GetForRegistration(ctx context.Context, registrationID uuid.UUID) (*domain.TableBooking, error) {
	const op = "postgres.BookingRepo.GetForRegistration"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT b.id, b.event_id, b.table_id, b.attendee_id, b.guest_name, b.guest_email, b.guest_whatsapp,
		        b.party_size, b.special_requests, b.promoter_id, b.referral_code, b.status, b.payment_status,
		        b.minimum_spend, b.deposit_required, b.payment_transaction_id, b.created_at
		 FROM table_bookings b
		 JOIN table_party_guests g ON g.booking_id = b.id
		 JOIN registrations r ON r.attendee_id = g.attendee_id AND r.event_id = b.event_id
		 WHERE r.id = $1
		 LIMIT 1`,
		registrationID,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}
