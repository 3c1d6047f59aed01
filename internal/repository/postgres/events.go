package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nightowl-club/tablepass/internal/domain"
)

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *EventRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.EventRepo.GetEvent"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, venue_id, created_by, title, status, table_booking_mode, currency, starts_at, ends_at
       	 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.VenueID, &e.CreatedBy, &e.Title, &e.Status, &e.BookingMode, &e.Currency, &e.Starts, &e.Ends)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// GetTable retrieves a venue table by its ID.
//
// Returns:
//   - *domain.VenueTable: the table when found.
//   - error: repository.ErrNotFound if the table is not found.
func (r *EventRepo) GetTable(ctx context.Context, id int64) (*domain.VenueTable, error) {
	const op = "postgres.EventRepo.GetTable"

	db := r.handle()

	var t domain.VenueTable
	err := db.QueryRow(ctx,
		`SELECT id, venue_id, zone, capacity, minimum_spend, deposit_amount, is_active
       	 FROM venue_tables WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.VenueID, &t.Zone, &t.Capacity, &t.MinimumSpend, &t.DepositAmount, &t.IsActive)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &t, nil
}

// GetOverride retrieves the per-event availability override for a table.
// Absence of an override row is reported as repository.ErrNotFound; callers
// treat that as "use table defaults", not as a failure.
func (r *EventRepo) GetOverride(ctx context.Context, eventID, tableID int64) (*domain.TableOverride, error) {
	const op = "postgres.EventRepo.GetOverride"

	db := r.handle()

	var o domain.TableOverride
	err := db.QueryRow(ctx,
		`SELECT event_id, table_id, is_available, capacity, minimum_spend, deposit_amount
       	 FROM event_table_availability
      	 WHERE event_id = $1 AND table_id = $2`,
		eventID, tableID,
	).Scan(&o.EventID, &o.TableID, &o.IsAvailable, &o.Capacity, &o.MinimumSpend, &o.DepositAmount)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &o, nil
}

// ListEventTables lists the active tables of the event's venue together with
// any per-event overrides, ordered by zone then table id.
func (r *EventRepo) ListEventTables(ctx context.Context, eventID, venueID int64) ([]domain.EventTable, error) {
	const op = "postgres.EventRepo.ListEventTables"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT t.id, t.venue_id, t.zone, t.capacity, t.minimum_spend, t.deposit_amount, t.is_active,
		        a.is_available, a.capacity, a.minimum_spend, a.deposit_amount
		 FROM venue_tables t
		 LEFT JOIN event_table_availability a ON a.table_id = t.id AND a.event_id = $1
		 WHERE t.venue_id = $2 AND t.is_active
		 ORDER BY t.zone, t.id`,
		eventID, venueID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.EventTable
	for rows.Next() {
		var et domain.EventTable
		var oAvail *bool
		var oCap *int
		var oSpend, oDep *int64
		if err := rows.Scan(
			&et.Table.ID, &et.Table.VenueID, &et.Table.Zone, &et.Table.Capacity,
			&et.Table.MinimumSpend, &et.Table.DepositAmount, &et.Table.IsActive,
			&oAvail, &oCap, &oSpend, &oDep,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		if oAvail != nil || oCap != nil || oSpend != nil || oDep != nil {
			et.Override = &domain.TableOverride{
				EventID:       eventID,
				TableID:       et.Table.ID,
				IsAvailable:   oAvail,
				Capacity:      oCap,
				MinimumSpend:  oSpend,
				DepositAmount: oDep,
			}
		}

		out = append(out, et)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// GetBookingLink retrieves a direct booking link by its code, scoped to one event.
func (r *EventRepo) GetBookingLink(ctx context.Context, eventID int64, code string) (*domain.BookingLink, error) {
	const op = "postgres.EventRepo.GetBookingLink"

	db := r.handle()

	var l domain.BookingLink
	err := db.QueryRow(ctx,
		`SELECT id, event_id, table_id, code, is_active, expires_at
       	 FROM booking_links
      	 WHERE event_id = $1 AND code = $2`,
		eventID, code,
	).Scan(&l.ID, &l.EventID, &l.TableID, &l.Code, &l.IsActive, &l.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &l, nil
}

func (r *EventRepo) GetPromoter(ctx context.Context, id int64) (*domain.Promoter, error) {
	const op = "postgres.EventRepo.GetPromoter"

	db := r.handle()

	var p domain.Promoter
	err := db.QueryRow(ctx,
		`SELECT id, user_id, name FROM promoters WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.UserID, &p.Name)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &p, nil
}

func (r *EventRepo) GetPromoterByUserID(ctx context.Context, userID int64) (*domain.Promoter, error) {
	const op = "postgres.EventRepo.GetPromoterByUserID"

	db := r.handle()

	var p domain.Promoter
	err := db.QueryRow(ctx,
		`SELECT id, user_id, name FROM promoters WHERE user_id = $1`,
		userID,
	).Scan(&p.ID, &p.UserID, &p.Name)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &p, nil
}
