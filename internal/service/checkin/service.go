// Package checkin processes door scans. A registration can be checked in at
// most once; concurrent scans race on a unique index and the loser adopts
// the winner's row instead of erroring.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/outbox"
	"github.com/nightowl-club/tablepass/internal/repository"
	"github.com/nightowl-club/tablepass/internal/token"
)

// EventStore resolves the event being scanned and promoter attribution.
type EventStore interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	GetPromoter(ctx context.Context, id int64) (*domain.Promoter, error)
}

// BookingStore traces a registration back to the booking that produced it.
type BookingStore interface {
	GetForRegistration(ctx context.Context, registrationID uuid.UUID) (*domain.TableBooking, error)
}

// RegistrationStore reads the registration and its attendee.
type RegistrationStore interface {
	GetRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error)
	GetAttendee(ctx context.Context, id uuid.UUID) (*domain.Attendee, error)
}

// CheckinStore is the write surface of the door flow plus its side-effect
// tables.
type CheckinStore interface {
	GetByRegistration(ctx context.Context, registrationID uuid.UUID) (*domain.Checkin, error)
	Create(ctx context.Context, c *domain.Checkin) error
	MarkRegistrationCheckedIn(ctx context.Context, registrationID uuid.UUID, at time.Time) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	HasVenueMembership(ctx context.Context, userID, venueID int64) (bool, error)
	HasDoorAssignment(ctx context.Context, userID, eventID int64) (bool, error)
	AwardXP(ctx context.Context, attendeeID uuid.UUID, amount int, reason string) error
	CountPromoterCheckins(ctx context.Context, promoterID, eventID int64) (int, error)
	InsertNotification(ctx context.Context, userID int64, kind, title, message, link string, metadata map[string]any) error
	InsertActivity(ctx context.Context, actorID int64, action string, payload map[string]any) error
	InsertAnalyticsEvent(ctx context.Context, name string, payload map[string]any) error
}

// Store groups the persistence surfaces a door scan touches.
type Store struct {
	Events   EventStore
	Bookings BookingStore
	Party    RegistrationStore
	Checkins CheckinStore
}

type Config struct {
	// XPAmount is the fixed XP credited to an attendee on first check-in.
	XPAmount int
	// BonusThreshold is the check-in count at which a promoter gets a
	// bonus-progress notification.
	BonusThreshold int
}

type Service struct {
	store  Store
	codec  *token.Codec
	outbox outbox.Emitter
	logger *slog.Logger
	cfg    Config
}

func New(store Store, codec *token.Codec, emitter outbox.Emitter, logger *slog.Logger, cfg Config) *Service {
	if cfg.XPAmount <= 0 {
		cfg.XPAmount = 50
	}
	if cfg.BonusThreshold <= 0 {
		cfg.BonusThreshold = 10
	}

	return &Service{
		store:  store,
		codec:  codec,
		outbox: emitter,
		logger: logger,
		cfg:    cfg,
	}
}

type Input struct {
	QRToken        string
	RegistrationID *uuid.UUID
}

type Result struct {
	Checkin   *domain.Checkin
	Duplicate bool
	Attendee  *domain.Attendee
}

// Process checks a registration in for an event. Exactly one of
// Input.QRToken and Input.RegistrationID must be set.
//
// Returns:
//   - *Result: the check-in row, whether it already existed, and the
//     attendee it belongs to.
//   - error: checkin.ErrUnauthorized, checkin.ErrForbidden,
//     checkin.ErrEventNotFound, checkin.ErrBadInput, checkin.ErrInvalidToken,
//     checkin.ErrEventMismatch or checkin.ErrRegistrationNotFound.
func (s *Service) Process(ctx context.Context, eventID int64, actor *domain.User, in Input) (*Result, error) {
	const op = "service.checkin.Process"

	if actor == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrUnauthorized)
	}

	// The token only claims a role; the user row is authoritative for door
	// access decisions.
	switch u, err := s.store.Checkins.GetUser(ctx, actor.ID); {
	case err == nil:
		actor = u
	case errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%s:%w", op, ErrUnauthorized)
	default:
		s.logger.Warn("checkin: user lookup failed, trusting token role",
			"user_id", actor.ID, "error", err)
	}

	ev, err := s.store.Events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.authorize(ctx, actor, ev); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	regID, err := s.resolveRegistrationID(eventID, in)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	reg, err := s.store.Party.GetRegistration(ctx, regID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrRegistrationNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if reg.EventID != eventID {
		return nil, fmt.Errorf("%s:%w", op, ErrEventMismatch)
	}

	if existing, err := s.store.Checkins.GetByRegistration(ctx, reg.ID); err == nil {
		return s.duplicateResult(ctx, reg, existing), nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	c := &domain.Checkin{
		ID:             uuid.New(),
		RegistrationID: reg.ID,
		CheckedInBy:    actor.ID,
		CheckedInAt:    time.Now().UTC(),
	}

	if err := s.store.Checkins.Create(ctx, c); err != nil {
		// Lost the race with a concurrent scan. The winner's row is the
		// check-in of record.
		if errors.Is(err, repository.ErrConflict) {
			winner, gerr := s.store.Checkins.GetByRegistration(ctx, reg.ID)
			if gerr != nil {
				return nil, fmt.Errorf("%s:%w", op, gerr)
			}
			return s.duplicateResult(ctx, reg, winner), nil
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Checkins.MarkRegistrationCheckedIn(ctx, reg.ID, c.CheckedInAt); err != nil {
		s.logger.Warn("checkin: registration stamp failed",
			"registration_id", reg.ID, "error", err)
	}

	s.runSideEffects(ctx, actor, ev, reg, c)

	return &Result{
		Checkin:  c,
		Attendee: s.lookupAttendee(ctx, reg.AttendeeID),
	}, nil
}

// resolveRegistrationID turns the scanned input into a registration id.
func (s *Service) resolveRegistrationID(eventID int64, in Input) (uuid.UUID, error) {
	hasToken := in.QRToken != ""
	hasID := in.RegistrationID != nil

	if hasToken == hasID {
		return uuid.Nil, ErrBadInput
	}

	if hasID {
		return *in.RegistrationID, nil
	}

	claims, err := s.codec.Verify(in.QRToken)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.EventID != eventID {
		return uuid.Nil, ErrEventMismatch
	}

	return claims.RegistrationID, nil
}

type accessTier int

const (
	tierFull accessTier = iota
	tierVenue
	tierAssignment
	tierNone
)

// roleTier maps a role onto how its event access is established.
func roleTier(role domain.Role) accessTier {
	switch role {
	case domain.RoleSuperadmin, domain.RoleDoorStaff:
		return tierFull
	case domain.RoleVenueAdmin, domain.RoleEventOrganizer:
		return tierVenue
	case domain.RolePromoter, domain.RoleGuest:
		return tierAssignment
	default:
		return tierNone
	}
}

// authorize applies the access precedence for door operations: trusted roles
// pass outright, venue-scoped roles need a membership or creator link to
// this event's venue, and everyone else needs an active door assignment.
func (s *Service) authorize(ctx context.Context, actor *domain.User, ev *domain.Event) error {
	switch roleTier(actor.Role) {
	case tierFull:
		return nil

	case tierVenue:
		if ev.CreatedBy != nil && *ev.CreatedBy == actor.ID {
			return nil
		}
		if ev.VenueID != nil {
			ok, err := s.store.Checkins.HasVenueMembership(ctx, actor.ID, *ev.VenueID)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		}

	case tierAssignment:
		ok, err := s.store.Checkins.HasDoorAssignment(ctx, actor.ID, ev.ID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return ErrForbidden
}

// runSideEffects performs the first-time-only follow-ups. Each one is
// wrapped individually so a failure never undoes the check-in or blocks the
// effects after it.
func (s *Service) runSideEffects(ctx context.Context, actor *domain.User, ev *domain.Event, reg *domain.Registration, c *domain.Checkin) {
	if err := s.store.Checkins.InsertActivity(ctx, actor.ID, "checkin.created", map[string]any{
		"event_id":        ev.ID,
		"registration_id": reg.ID.String(),
		"checkin_id":      c.ID.String(),
	}); err != nil {
		s.logger.Warn("checkin: activity log failed", "checkin_id", c.ID, "error", err)
	}

	if err := s.store.Checkins.AwardXP(ctx, reg.AttendeeID, s.cfg.XPAmount, "event_checkin"); err != nil {
		s.logger.Warn("checkin: xp award failed", "attendee_id", reg.AttendeeID, "error", err)
	}

	s.notifyPromoterProgress(ctx, ev, reg)

	if s.outbox != nil {
		if err := s.outbox.Emit(ctx, "checkin.created", map[string]any{
			"checkin_id":      c.ID.String(),
			"registration_id": reg.ID.String(),
			"event_id":        ev.ID,
			"attendee_id":     reg.AttendeeID.String(),
			"checked_in_by":   actor.ID,
			"checked_in_at":   c.CheckedInAt,
		}); err != nil {
			s.logger.Warn("checkin: outbox emit failed", "checkin_id", c.ID, "error", err)
		}
	}

	if err := s.store.Checkins.InsertAnalyticsEvent(ctx, "checkin", map[string]any{
		"event_id": ev.ID,
		"source":   "door",
	}); err != nil {
		s.logger.Warn("checkin: analytics failed", "checkin_id", c.ID, "error", err)
	}
}

// notifyPromoterProgress checks whether this scan pushed the attributed
// promoter across the bonus threshold and, exactly at the crossing, sends a
// progress notification.
func (s *Service) notifyPromoterProgress(ctx context.Context, ev *domain.Event, reg *domain.Registration) {
	b, err := s.store.Bookings.GetForRegistration(ctx, reg.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("checkin: promoter attribution lookup failed",
				"registration_id", reg.ID, "error", err)
		}
		return
	}
	if b.PromoterID == nil {
		return
	}

	count, err := s.store.Checkins.CountPromoterCheckins(ctx, *b.PromoterID, ev.ID)
	if err != nil {
		s.logger.Warn("checkin: promoter count failed", "promoter_id", *b.PromoterID, "error", err)
		return
	}
	if count != s.cfg.BonusThreshold {
		return
	}

	p, err := s.store.Events.GetPromoter(ctx, *b.PromoterID)
	if err != nil {
		s.logger.Warn("checkin: promoter lookup failed", "promoter_id", *b.PromoterID, "error", err)
		return
	}

	if err := s.store.Checkins.InsertNotification(ctx, p.UserID,
		"promoter_bonus_progress",
		"Bonus unlocked",
		fmt.Sprintf("%d of your guests have checked in to %s.", count, ev.Title),
		fmt.Sprintf("/promoter/events/%d", ev.ID),
		map[string]any{"event_id": ev.ID, "checkins": count},
	); err != nil {
		s.logger.Warn("checkin: promoter notification failed", "promoter_id", *b.PromoterID, "error", err)
	}
}

func (s *Service) duplicateResult(ctx context.Context, reg *domain.Registration, c *domain.Checkin) *Result {
	return &Result{
		Checkin:   c,
		Duplicate: true,
		Attendee:  s.lookupAttendee(ctx, reg.AttendeeID),
	}
}

func (s *Service) lookupAttendee(ctx context.Context, id uuid.UUID) *domain.Attendee {
	att, err := s.store.Party.GetAttendee(ctx, id)
	if err != nil {
		s.logger.Warn("checkin: attendee lookup failed", "attendee_id", id, "error", err)
		return nil
	}
	return att
}
