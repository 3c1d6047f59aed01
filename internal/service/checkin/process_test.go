package checkin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/repository"
	"github.com/nightowl-club/tablepass/internal/token"
)

type stubEventStore struct {
	events    map[int64]*domain.Event
	promoters map[int64]*domain.Promoter
}

func (f *stubEventStore) GetEvent(_ context.Context, id int64) (*domain.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *stubEventStore) GetPromoter(_ context.Context, id int64) (*domain.Promoter, error) {
	p, ok := f.promoters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type stubBookingStore struct {
	byReg map[uuid.UUID]*domain.TableBooking
}

func (f *stubBookingStore) GetForRegistration(_ context.Context, regID uuid.UUID) (*domain.TableBooking, error) {
	b, ok := f.byReg[regID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

type stubRegStore struct {
	regs      map[uuid.UUID]*domain.Registration
	attendees map[uuid.UUID]*domain.Attendee
}

func (f *stubRegStore) GetRegistration(_ context.Context, id uuid.UUID) (*domain.Registration, error) {
	r, ok := f.regs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *stubRegStore) GetAttendee(_ context.Context, id uuid.UUID) (*domain.Attendee, error) {
	a, ok := f.attendees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type stubCheckinStore struct {
	users    map[int64]*domain.User
	checkins map[uuid.UUID]*domain.Checkin

	// conflictWith simulates losing the unique-index race: Create fails
	// with ErrConflict after this row lands as the check-in of record.
	conflictWith *domain.Checkin

	hasMembership bool
	hasAssignment bool

	promoterCount int

	created       int
	stamped       int
	xpAwards      int
	activities    int
	analytics     int
	notifications []int64
}

func (f *stubCheckinStore) GetByRegistration(_ context.Context, regID uuid.UUID) (*domain.Checkin, error) {
	c, ok := f.checkins[regID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *stubCheckinStore) Create(_ context.Context, c *domain.Checkin) error {
	if f.conflictWith != nil {
		f.checkins[f.conflictWith.RegistrationID] = f.conflictWith
		return repository.ErrConflict
	}
	cp := *c
	f.checkins[c.RegistrationID] = &cp
	f.created++
	return nil
}

func (f *stubCheckinStore) MarkRegistrationCheckedIn(_ context.Context, _ uuid.UUID, _ time.Time) error {
	f.stamped++
	return nil
}

func (f *stubCheckinStore) GetUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *stubCheckinStore) HasVenueMembership(_ context.Context, _, _ int64) (bool, error) {
	return f.hasMembership, nil
}

func (f *stubCheckinStore) HasDoorAssignment(_ context.Context, _, _ int64) (bool, error) {
	return f.hasAssignment, nil
}

func (f *stubCheckinStore) AwardXP(_ context.Context, _ uuid.UUID, _ int, _ string) error {
	f.xpAwards++
	return nil
}

func (f *stubCheckinStore) CountPromoterCheckins(_ context.Context, _, _ int64) (int, error) {
	return f.promoterCount, nil
}

func (f *stubCheckinStore) InsertNotification(_ context.Context, userID int64, _, _, _, _ string, _ map[string]any) error {
	f.notifications = append(f.notifications, userID)
	return nil
}

func (f *stubCheckinStore) InsertActivity(_ context.Context, _ int64, _ string, _ map[string]any) error {
	f.activities++
	return nil
}

func (f *stubCheckinStore) InsertAnalyticsEvent(_ context.Context, _ string, _ map[string]any) error {
	f.analytics++
	return nil
}

type scanFixture struct {
	svc      *Service
	events   *stubEventStore
	bookings *stubBookingStore
	regs     *stubRegStore
	checkins *stubCheckinStore

	actor *domain.User
	reg   *domain.Registration
}

func newScanFixture(t *testing.T, cfg Config) *scanFixture {
	t.Helper()

	actor := &domain.User{ID: 9, Email: "door@example.com", Role: domain.RoleDoorStaff}
	att := &domain.Attendee{ID: uuid.New(), Email: "ada@example.com", Name: "Ada"}
	reg := &domain.Registration{
		ID:         uuid.New(),
		AttendeeID: att.ID,
		EventID:    7,
		Source:     "table_booking",
		Status:     domain.RegistrationActive,
	}

	events := &stubEventStore{
		events:    map[int64]*domain.Event{7: {ID: 7, Title: "Neon Fridays"}},
		promoters: map[int64]*domain.Promoter{},
	}
	bookings := &stubBookingStore{byReg: map[uuid.UUID]*domain.TableBooking{}}
	regs := &stubRegStore{
		regs:      map[uuid.UUID]*domain.Registration{reg.ID: reg},
		attendees: map[uuid.UUID]*domain.Attendee{att.ID: att},
	}
	checkins := &stubCheckinStore{
		users:    map[int64]*domain.User{actor.ID: actor},
		checkins: map[uuid.UUID]*domain.Checkin{},
	}

	svc := New(
		Store{Events: events, Bookings: bookings, Party: regs, Checkins: checkins},
		token.NewCodec("test-secret", time.Hour),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg,
	)

	return &scanFixture{
		svc:      svc,
		events:   events,
		bookings: bookings,
		regs:     regs,
		checkins: checkins,
		actor:    actor,
		reg:      reg,
	}
}

func TestProcessFirstScan(t *testing.T) {
	fx := newScanFixture(t, Config{})

	res, err := fx.svc.Process(context.Background(), 7, fx.actor, Input{RegistrationID: &fx.reg.ID})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Duplicate {
		t.Error("first scan reported as duplicate")
	}
	if res.Attendee == nil || res.Attendee.Name != "Ada" {
		t.Errorf("attendee = %+v", res.Attendee)
	}
	if fx.checkins.created != 1 {
		t.Errorf("created %d rows, want 1", fx.checkins.created)
	}
	if fx.checkins.xpAwards != 1 || fx.checkins.activities != 1 || fx.checkins.analytics != 1 {
		t.Errorf("side effects = xp %d, activity %d, analytics %d, want 1 each",
			fx.checkins.xpAwards, fx.checkins.activities, fx.checkins.analytics)
	}
	if fx.checkins.stamped != 1 {
		t.Errorf("registration stamped %d times, want 1", fx.checkins.stamped)
	}
}

func TestProcessRepeatScanIsDuplicate(t *testing.T) {
	fx := newScanFixture(t, Config{})
	ctx := context.Background()

	first, err := fx.svc.Process(ctx, 7, fx.actor, Input{RegistrationID: &fx.reg.ID})
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}

	second, err := fx.svc.Process(ctx, 7, fx.actor, Input{RegistrationID: &fx.reg.ID})
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}

	if !second.Duplicate {
		t.Error("second scan not flagged duplicate")
	}
	if second.Checkin.ID != first.Checkin.ID {
		t.Errorf("duplicate returned row %s, want original %s", second.Checkin.ID, first.Checkin.ID)
	}
	if fx.checkins.xpAwards != 1 {
		t.Errorf("xp awarded %d times, want once", fx.checkins.xpAwards)
	}
	if fx.checkins.created != 1 {
		t.Errorf("created %d rows, want 1", fx.checkins.created)
	}
}

func TestProcessAdoptsWinnerOnInsertRace(t *testing.T) {
	fx := newScanFixture(t, Config{})

	winner := &domain.Checkin{
		ID:             uuid.New(),
		RegistrationID: fx.reg.ID,
		CheckedInBy:    42,
		CheckedInAt:    time.Now().UTC(),
	}
	fx.checkins.conflictWith = winner

	res, err := fx.svc.Process(context.Background(), 7, fx.actor, Input{RegistrationID: &fx.reg.ID})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !res.Duplicate {
		t.Error("race loser not flagged duplicate")
	}
	if res.Checkin.ID != winner.ID {
		t.Errorf("adopted row %s, want winner %s", res.Checkin.ID, winner.ID)
	}
	if fx.checkins.xpAwards != 0 || fx.checkins.activities != 0 {
		t.Error("race loser fired first-time side effects")
	}
	if fx.checkins.stamped != 0 {
		t.Error("race loser re-stamped the registration")
	}
}

func TestProcessUnknownUserUnauthorized(t *testing.T) {
	fx := newScanFixture(t, Config{})
	ghost := &domain.User{ID: 404, Role: domain.RoleSuperadmin}

	_, err := fx.svc.Process(context.Background(), 7, ghost, Input{RegistrationID: &fx.reg.ID})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestProcessRoleFromStoreOverridesClaims(t *testing.T) {
	fx := newScanFixture(t, Config{})

	// Token claims door staff, but the user row says promoter with no
	// assignment for this event.
	fx.checkins.users[fx.actor.ID].Role = domain.RolePromoter
	claimed := &domain.User{ID: fx.actor.ID, Role: domain.RoleDoorStaff}

	_, err := fx.svc.Process(context.Background(), 7, claimed, Input{RegistrationID: &fx.reg.ID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestProcessRegistrationFromAnotherEvent(t *testing.T) {
	fx := newScanFixture(t, Config{})
	fx.events.events[8] = &domain.Event{ID: 8, Title: "Saturday Sessions"}

	_, err := fx.svc.Process(context.Background(), 8, fx.actor, Input{RegistrationID: &fx.reg.ID})
	if !errors.Is(err, ErrEventMismatch) {
		t.Fatalf("err = %v, want ErrEventMismatch", err)
	}
}

func TestProcessPromoterBonusAtThreshold(t *testing.T) {
	promoterID := int64(5)

	run := func(t *testing.T, count int) *stubCheckinStore {
		fx := newScanFixture(t, Config{BonusThreshold: 3})
		fx.events.promoters[promoterID] = &domain.Promoter{ID: promoterID, UserID: 77, Name: "Max"}
		fx.bookings.byReg[fx.reg.ID] = &domain.TableBooking{
			ID:         uuid.New(),
			EventID:    7,
			PromoterID: &promoterID,
		}
		fx.checkins.promoterCount = count

		if _, err := fx.svc.Process(context.Background(), 7, fx.actor, Input{RegistrationID: &fx.reg.ID}); err != nil {
			t.Fatalf("Process: %v", err)
		}
		return fx.checkins
	}

	t.Run("exactly at threshold", func(t *testing.T) {
		cs := run(t, 3)
		if len(cs.notifications) != 1 || cs.notifications[0] != 77 {
			t.Errorf("notifications = %v, want one to user 77", cs.notifications)
		}
	})

	t.Run("past threshold stays quiet", func(t *testing.T) {
		cs := run(t, 4)
		if len(cs.notifications) != 0 {
			t.Errorf("notifications = %v, want none", cs.notifications)
		}
	})
}
