package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nightowl-club/tablepass/internal/domain"
)

type CheckinRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CheckinRepo) With(db DB) *CheckinRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CheckinRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetByRegistration retrieves the check-in row for a registration, if any.
//
// Returns:
//   - *domain.Checkin: the check-in when found.
//   - error: repository.ErrNotFound if no check-in exists yet.
func (r *CheckinRepo) GetByRegistration(ctx context.Context, registrationID uuid.UUID) (*domain.Checkin, error) {
	const op = "postgres.CheckinRepo.GetByRegistration"

	db := r.handle()

	var c domain.Checkin
	err := db.QueryRow(ctx,
		`SELECT id, registration_id, checked_in_by, checked_in_at
		 FROM checkins WHERE registration_id = $1`,
		registrationID,
	).Scan(&c.ID, &c.RegistrationID, &c.CheckedInBy, &c.CheckedInAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &c, nil
}

// Create inserts a new check-in row. registration_id carries a unique index;
// a concurrent insert for the same registration surfaces as
// repository.ErrConflict, which callers treat as the duplicate-success case
// rather than an error.
func (r *CheckinRepo) Create(ctx context.Context, c *domain.Checkin) error {
	const op = "postgres.CheckinRepo.Create"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO checkins(id, registration_id, checked_in_by, checked_in_at)
    	 VALUES ($1, $2, $3, $4)`,
		c.ID, c.RegistrationID, c.CheckedInBy, c.CheckedInAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CheckinRepo) MarkRegistrationCheckedIn(ctx context.Context, registrationID uuid.UUID, at time.Time) error {
	const op = "postgres.CheckinRepo.MarkRegistrationCheckedIn"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE registrations SET checked_in_at = COALESCE(checked_in_at, $2) WHERE id = $1`,
		registrationID, at,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CheckinRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	const op = "postgres.CheckinRepo.GetUser"

	db := r.handle()

	var u domain.User
	err := db.QueryRow(ctx,
		`SELECT id, email, role FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Role)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}

func (r *CheckinRepo) HasVenueMembership(ctx context.Context, userID, venueID int64) (bool, error) {
	const op = "postgres.CheckinRepo.HasVenueMembership"

	db := r.handle()

	var ok bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM venue_memberships WHERE user_id = $1 AND venue_id = $2
		 )`,
		userID, venueID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return ok, nil
}

func (r *CheckinRepo) HasDoorAssignment(ctx context.Context, userID, eventID int64) (bool, error) {
	const op = "postgres.CheckinRepo.HasDoorAssignment"

	db := r.handle()

	var ok bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM door_staff_assignments
			WHERE user_id = $1 AND event_id = $2 AND is_active
		 )`,
		userID, eventID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return ok, nil
}

// AwardXP credits XP through the atomic award_checkin_xp function. When the
// function is not installed (undefined_function) it falls back to a direct
// ledger insert.
func (r *CheckinRepo) AwardXP(ctx context.Context, attendeeID uuid.UUID, amount int, reason string) error {
	const op = "postgres.CheckinRepo.AwardXP"

	db := r.handle()

	_, err := db.Exec(ctx, `SELECT award_checkin_xp($1, $2)`, attendeeID, amount)
	if err == nil {
		return nil
	}

	if !isUndefinedFunction(err) {
		return wrapDBErr(op, err)
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO xp_ledger(id, attendee_id, amount, reason)
    	 VALUES ($1, $2, $3, $4)`,
		uuid.New(), attendeeID, amount, reason,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// CountPromoterCheckins counts non-undone check-ins attributed to a promoter
// for one event, feeding the bonus-threshold notification.
func (r *CheckinRepo) CountPromoterCheckins(ctx context.Context, promoterID, eventID int64) (int, error) {
	const op = "postgres.CheckinRepo.CountPromoterCheckins"

	db := r.handle()

	var n int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM checkins c
		 JOIN registrations r ON r.id = c.registration_id
		 JOIN table_party_guests g ON g.attendee_id = r.attendee_id
		 JOIN table_bookings b ON b.id = g.booking_id
		 WHERE b.promoter_id = $1 AND b.event_id = $2 AND r.event_id = $2`,
		promoterID, eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return n, nil
}

func (r *CheckinRepo) InsertNotification(
	ctx context.Context,
	userID int64,
	kind, title, message, link string,
	metadata map[string]any,
) error {
	const op = "postgres.CheckinRepo.InsertNotification"

	db := r.handle()

	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO notifications(id, user_id, type, title, message, link, metadata)
    	 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), userID, kind, title, message, link, meta,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CheckinRepo) InsertActivity(ctx context.Context, actorID int64, action string, payload map[string]any) error {
	const op = "postgres.CheckinRepo.InsertActivity"

	db := r.handle()

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO activity_log(id, actor_id, action, payload)
    	 VALUES ($1, $2, $3, $4)`,
		uuid.New(), actorID, action, b,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CheckinRepo) InsertAnalyticsEvent(ctx context.Context, name string, payload map[string]any) error {
	const op = "postgres.CheckinRepo.InsertAnalyticsEvent"

	db := r.handle()

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO analytics_events(id, name, payload)
    	 VALUES ($1, $2, $3)`,
		uuid.New(), name, b,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
