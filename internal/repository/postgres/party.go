package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/repository"
)

type PartyRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PartyRepo) With(db DB) *PartyRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PartyRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const guestColumns = `id, booking_id, attendee_id, guest_name, guest_email, guest_phone,
	is_host, status, invite_token, qr_token, checked_in, invited_at, joined_at`

func scanGuest(row interface{ Scan(dest ...any) error }) (*domain.PartyGuest, error) {
	var g domain.PartyGuest
	err := row.Scan(
		&g.ID, &g.BookingID, &g.AttendeeID, &g.Name, &g.Email, &g.Phone,
		&g.IsHost, &g.Status, &g.InviteToken, &g.QRToken, &g.CheckedIn, &g.InvitedAt, &g.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGuests returns the booking's roster ordered host-first, then by
// creation time. Removed rows are excluded unless includeRemoved is set.
func (r *PartyRepo) ListGuests(ctx context.Context, bookingID uuid.UUID, includeRemoved bool) ([]domain.PartyGuest, error) {
	const op = "postgres.PartyRepo.ListGuests"

	db := r.handle()

	q := `SELECT ` + guestColumns + `
	      FROM table_party_guests
	      WHERE booking_id = $1`
	if !includeRemoved {
		q += ` AND status <> 'removed'`
	}
	q += ` ORDER BY is_host DESC, invited_at`

	rows, err := db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.PartyGuest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *PartyRepo) GetGuest(ctx context.Context, id uuid.UUID) (*domain.PartyGuest, error) {
	const op = "postgres.PartyRepo.GetGuest"

	db := r.handle()

	g, err := scanGuest(db.QueryRow(ctx,
		`SELECT `+guestColumns+` FROM table_party_guests WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return g, nil
}

// FindGuestByEmail matches a roster row by email regardless of status, so
// callers can reinstate removed guests instead of duplicating rows.
func (r *PartyRepo) FindGuestByEmail(ctx context.Context, bookingID uuid.UUID, email string) (*domain.PartyGuest, error) {
	const op = "postgres.PartyRepo.FindGuestByEmail"

	db := r.handle()

	g, err := scanGuest(db.QueryRow(ctx,
		`SELECT `+guestColumns+`
		 FROM table_party_guests
		 WHERE booking_id = $1 AND lower(guest_email) = lower($2)
		 ORDER BY invited_at
		 LIMIT 1`,
		bookingID, email,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return g, nil
}

func (r *PartyRepo) CreateGuest(ctx context.Context, g *domain.PartyGuest) error {
	const op = "postgres.PartyRepo.CreateGuest"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO table_party_guests(
			id, booking_id, attendee_id, guest_name, guest_email, guest_phone,
			is_host, status, invite_token, qr_token, joined_at)
    	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID, g.BookingID, g.AttendeeID, g.Name, g.Email, g.Phone,
		g.IsHost, g.Status, g.InviteToken, g.QRToken, g.JoinedAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// PromoteToHost upgrades an existing roster row to the host seat, marking it
// joined and stamping joined_at if the guest had not joined yet.
func (r *PartyRepo) PromoteToHost(ctx context.Context, id uuid.UUID, now time.Time) error {
	const op = "postgres.PartyRepo.PromoteToHost"

	db := r.handle()

	ct, err := db.Exec(ctx,
		`UPDATE table_party_guests
		 SET is_host = TRUE, status = 'joined', joined_at = COALESCE(joined_at, $2)
		 WHERE id = $1`,
		id, now,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *PartyRepo) SetGuestStatus(ctx context.Context, id uuid.UUID, status domain.GuestStatus) error {
	const op = "postgres.PartyRepo.SetGuestStatus"

	db := r.handle()

	ct, err := db.Exec(ctx,
		`UPDATE table_party_guests SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// ReinstateGuest flips a removed row back to invited and refreshes its invite
// timestamp.
func (r *PartyRepo) ReinstateGuest(ctx context.Context, id uuid.UUID, now time.Time) error {
	const op = "postgres.PartyRepo.ReinstateGuest"

	db := r.handle()

	ct, err := db.Exec(ctx,
		`UPDATE table_party_guests
		 SET status = 'invited', invited_at = $2, joined_at = NULL
		 WHERE id = $1`,
		id, now,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// LinkGuest persists the attendee linkage and minted pass token onto a roster row.
func (r *PartyRepo) LinkGuest(ctx context.Context, id uuid.UUID, attendeeID uuid.UUID, qrToken string) error {
	const op = "postgres.PartyRepo.LinkGuest"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE table_party_guests SET attendee_id = $2, qr_token = $3 WHERE id = $1`,
		id, attendeeID, qrToken,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PartyRepo) SetGuestAttendee(ctx context.Context, id uuid.UUID, attendeeID uuid.UUID) error {
	const op = "postgres.PartyRepo.SetGuestAttendee"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE table_party_guests SET attendee_id = $2 WHERE id = $1`,
		id, attendeeID,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PartyRepo) GetAttendee(ctx context.Context, id uuid.UUID) (*domain.Attendee, error) {
	const op = "postgres.PartyRepo.GetAttendee"

	db := r.handle()

	var a domain.Attendee
	err := db.QueryRow(ctx,
		`SELECT id, email, name, user_id FROM attendees WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Email, &a.Name, &a.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &a, nil
}

func (r *PartyRepo) FindAttendeeByEmail(ctx context.Context, email string) (*domain.Attendee, error) {
	const op = "postgres.PartyRepo.FindAttendeeByEmail"

	db := r.handle()

	var a domain.Attendee
	err := db.QueryRow(ctx,
		`SELECT id, email, name, user_id FROM attendees WHERE lower(email) = lower($1)`,
		email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &a, nil
}

func (r *PartyRepo) FindAttendeeByUserID(ctx context.Context, userID int64) (*domain.Attendee, error) {
	const op = "postgres.PartyRepo.FindAttendeeByUserID"

	db := r.handle()

	var a domain.Attendee
	err := db.QueryRow(ctx,
		`SELECT id, email, name, user_id FROM attendees WHERE user_id = $1`,
		userID,
	).Scan(&a.ID, &a.Email, &a.Name, &a.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &a, nil
}

func (r *PartyRepo) CreateAttendee(ctx context.Context, a *domain.Attendee) error {
	const op = "postgres.PartyRepo.CreateAttendee"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO attendees(id, email, name, user_id) VALUES ($1, $2, $3, $4)`,
		a.ID, a.Email, a.Name, a.UserID,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PartyRepo) FindRegistration(ctx context.Context, attendeeID uuid.UUID, eventID int64) (*domain.Registration, error) {
	const op = "postgres.PartyRepo.FindRegistration"

	db := r.handle()

	var reg domain.Registration
	err := db.QueryRow(ctx,
		`SELECT id, attendee_id, event_id, source, status, registered_at, checked_in_at
		 FROM registrations
		 WHERE attendee_id = $1 AND event_id = $2`,
		attendeeID, eventID,
	).Scan(&reg.ID, &reg.AttendeeID, &reg.EventID, &reg.Source, &reg.Status, &reg.RegisteredAt, &reg.CheckedInAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &reg, nil
}

func (r *PartyRepo) GetRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	const op = "postgres.PartyRepo.GetRegistration"

	db := r.handle()

	var reg domain.Registration
	err := db.QueryRow(ctx,
		`SELECT id, attendee_id, event_id, source, status, registered_at, checked_in_at
		 FROM registrations WHERE id = $1`,
		id,
	).Scan(&reg.ID, &reg.AttendeeID, &reg.EventID, &reg.Source, &reg.Status, &reg.RegisteredAt, &reg.CheckedInAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &reg, nil
}

func (r *PartyRepo) CreateRegistration(ctx context.Context, reg *domain.Registration) error {
	const op = "postgres.PartyRepo.CreateRegistration"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO registrations(id, attendee_id, event_id, source, status)
    	 VALUES ($1, $2, $3, $4, $5)`,
		reg.ID, reg.AttendeeID, reg.EventID, reg.Source, reg.Status,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PartyRepo) CancelRegistration(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.PartyRepo.CancelRegistration"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE registrations SET status = 'cancelled' WHERE id = $1`,
		id,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
