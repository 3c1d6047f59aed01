package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nightowl-club/tablepass/internal/domain"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PaymentRepo) With(db DB) *PaymentRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PaymentRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetVenueSettings retrieves the venue's gateway configuration.
//
// Returns:
//   - error: repository.ErrNotFound when the venue has no payment settings,
//     which callers treat as "gateway not configured".
func (r *PaymentRepo) GetVenueSettings(ctx context.Context, venueID int64) (*domain.VenuePaymentSettings, error) {
	const op = "postgres.PaymentRepo.GetVenueSettings"

	db := r.handle()

	var s domain.VenuePaymentSettings
	err := db.QueryRow(ctx,
		`SELECT venue_id, gateway_enabled, api_key, payment_expiry_hours
		 FROM venue_payment_settings WHERE venue_id = $1`,
		venueID,
	).Scan(&s.VenueID, &s.GatewayEnabled, &s.APIKey, &s.ExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &s, nil
}

// CreateTransaction inserts a payment-transaction row. The table carries a
// unique index on (reference_type, reference_id, status='pending') so a
// duplicate in-flight session surfaces as repository.ErrConflict.
func (r *PaymentRepo) CreateTransaction(ctx context.Context, t *domain.PaymentTransaction) error {
	const op = "postgres.PaymentRepo.CreateTransaction"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO payment_transactions(
			id, venue_id, reference_type, reference_id, amount, currency,
			invoice_number, payment_url, status, expires_at)
    	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.VenueID, t.ReferenceType, t.ReferenceID, t.Amount, t.Currency,
		t.InvoiceNumber, t.PaymentURL, t.Status, t.ExpiresAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PaymentRepo) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.PaymentTransaction, error) {
	const op = "postgres.PaymentRepo.GetTransaction"

	db := r.handle()

	var t domain.PaymentTransaction
	err := db.QueryRow(ctx,
		`SELECT id, venue_id, reference_type, reference_id, amount, currency,
		        invoice_number, payment_url, status, expires_at, created_at
		 FROM payment_transactions WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.VenueID, &t.ReferenceType, &t.ReferenceID, &t.Amount, &t.Currency,
		&t.InvoiceNumber, &t.PaymentURL, &t.Status, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &t, nil
}
