package party

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/repository"
	"github.com/nightowl-club/tablepass/internal/token"
)

type fakeBookingStore struct {
	bookings map[uuid.UUID]*domain.TableBooking
}

func (f *fakeBookingStore) Get(_ context.Context, id uuid.UUID) (*domain.TableBooking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

type fakeEventStore struct {
	events map[int64]*domain.Event
}

func (f *fakeEventStore) GetEvent(_ context.Context, id int64) (*domain.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

type fakeGuestStore struct {
	guests    map[uuid.UUID]*domain.PartyGuest
	attendees map[string]*domain.Attendee
	regs      map[string]*domain.Registration

	createdGuests    int
	createdAttendees int
	createdRegs      int
	linked           int
	cancelledRegs    []uuid.UUID
}

func newFakeGuestStore() *fakeGuestStore {
	return &fakeGuestStore{
		guests:    map[uuid.UUID]*domain.PartyGuest{},
		attendees: map[string]*domain.Attendee{},
		regs:      map[string]*domain.Registration{},
	}
}

func regKey(attendeeID uuid.UUID, eventID int64) string {
	return attendeeID.String() + "|" + strconv.FormatInt(eventID, 10)
}

func (f *fakeGuestStore) ListGuests(_ context.Context, bookingID uuid.UUID, includeRemoved bool) ([]domain.PartyGuest, error) {
	var out []domain.PartyGuest
	for _, g := range f.guests {
		if g.BookingID != bookingID {
			continue
		}
		if !includeRemoved && g.Status == domain.GuestRemoved {
			continue
		}
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeGuestStore) GetGuest(_ context.Context, id uuid.UUID) (*domain.PartyGuest, error) {
	g, ok := f.guests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGuestStore) FindGuestByEmail(_ context.Context, bookingID uuid.UUID, email string) (*domain.PartyGuest, error) {
	for _, g := range f.guests {
		if g.BookingID == bookingID && strings.EqualFold(g.Email, email) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGuestStore) CreateGuest(_ context.Context, g *domain.PartyGuest) error {
	cp := *g
	f.guests[g.ID] = &cp
	f.createdGuests++
	return nil
}

func (f *fakeGuestStore) PromoteToHost(_ context.Context, id uuid.UUID, now time.Time) error {
	g, ok := f.guests[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.IsHost = true
	g.Status = domain.GuestJoined
	if g.JoinedAt == nil {
		g.JoinedAt = &now
	}
	return nil
}

func (f *fakeGuestStore) SetGuestStatus(_ context.Context, id uuid.UUID, status domain.GuestStatus) error {
	g, ok := f.guests[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.Status = status
	return nil
}

func (f *fakeGuestStore) ReinstateGuest(_ context.Context, id uuid.UUID, now time.Time) error {
	g, ok := f.guests[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.Status = domain.GuestInvited
	g.InvitedAt = now
	g.JoinedAt = nil
	return nil
}

func (f *fakeGuestStore) LinkGuest(_ context.Context, id uuid.UUID, attendeeID uuid.UUID, qrToken string) error {
	g, ok := f.guests[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.AttendeeID = &attendeeID
	g.QRToken = qrToken
	f.linked++
	return nil
}

func (f *fakeGuestStore) SetGuestAttendee(_ context.Context, id uuid.UUID, attendeeID uuid.UUID) error {
	g, ok := f.guests[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.AttendeeID = &attendeeID
	return nil
}

func (f *fakeGuestStore) FindAttendeeByEmail(_ context.Context, email string) (*domain.Attendee, error) {
	a, ok := f.attendees[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeGuestStore) CreateAttendee(_ context.Context, a *domain.Attendee) error {
	cp := *a
	f.attendees[strings.ToLower(a.Email)] = &cp
	f.createdAttendees++
	return nil
}

func (f *fakeGuestStore) FindRegistration(_ context.Context, attendeeID uuid.UUID, eventID int64) (*domain.Registration, error) {
	r, ok := f.regs[regKey(attendeeID, eventID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeGuestStore) CreateRegistration(_ context.Context, reg *domain.Registration) error {
	cp := *reg
	f.regs[regKey(reg.AttendeeID, reg.EventID)] = &cp
	f.createdRegs++
	return nil
}

func (f *fakeGuestStore) CancelRegistration(_ context.Context, id uuid.UUID) error {
	f.cancelledRegs = append(f.cancelledRegs, id)
	return nil
}

type captureMailer struct {
	slug string
	to   string
	vars map[string]string
}

func (m *captureMailer) Send(slug, toEmail string, vars map[string]string) error {
	m.slug = slug
	m.to = toEmail
	m.vars = vars
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeBookingStore, *fakeGuestStore, *captureMailer) {
	t.Helper()

	bookings := &fakeBookingStore{bookings: map[uuid.UUID]*domain.TableBooking{}}
	guests := newFakeGuestStore()
	events := &fakeEventStore{events: map[int64]*domain.Event{
		7: {ID: 7, Title: "Neon Fridays"},
	}}
	mail := &captureMailer{}

	svc := New(
		Store{Bookings: bookings, Events: events, Guests: guests},
		token.NewCodec("test-secret", time.Hour),
		mail,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config{PublicBaseURL: "https://nightowl.club"},
	)

	return svc, bookings, guests, mail
}

func confirmedBooking() *domain.TableBooking {
	return &domain.TableBooking{
		ID:            uuid.New(),
		EventID:       7,
		TableID:       3,
		GuestName:     "Ada",
		GuestEmail:    "ada@example.com",
		GuestWhatsApp: "+447911123456",
		PartySize:     6,
		Status:        domain.BookingConfirmed,
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	svc, bookings, guests, _ := newTestService(t)
	b := confirmedBooking()
	bookings.bookings[b.ID] = b

	ctx := context.Background()

	first, err := svc.Materialize(ctx, b.ID)
	if err != nil {
		t.Fatalf("first Materialize: %v", err)
	}
	if first == nil || first.Host == nil {
		t.Fatal("first read did not materialize a host")
	}
	if first.Host.Status != domain.GuestJoined {
		t.Errorf("host status = %s, want joined", first.Host.Status)
	}
	if first.TotalJoined != 1 {
		t.Errorf("total joined = %d, want 1", first.TotalJoined)
	}

	host, err := guests.GetGuest(ctx, first.Host.ID)
	if err != nil {
		t.Fatalf("host row missing after materialization: %v", err)
	}
	if host.QRToken == "" {
		t.Error("host has no pass token after materialization")
	}
	if host.AttendeeID == nil {
		t.Error("host not linked to an attendee")
	}

	createdGuests := guests.createdGuests
	createdAttendees := guests.createdAttendees
	createdRegs := guests.createdRegs
	linked := guests.linked

	second, err := svc.Materialize(ctx, b.ID)
	if err != nil {
		t.Fatalf("second Materialize: %v", err)
	}

	if guests.createdGuests != createdGuests {
		t.Errorf("second read created %d extra guest rows", guests.createdGuests-createdGuests)
	}
	if guests.createdAttendees != createdAttendees {
		t.Errorf("second read created %d extra attendees", guests.createdAttendees-createdAttendees)
	}
	if guests.createdRegs != createdRegs {
		t.Errorf("second read created %d extra registrations", guests.createdRegs-createdRegs)
	}
	if guests.linked != linked {
		t.Errorf("second read re-minted the pass token")
	}
	if second.Host.ID != first.Host.ID {
		t.Errorf("host id changed between reads: %s vs %s", first.Host.ID, second.Host.ID)
	}
	if second.TotalJoined != first.TotalJoined {
		t.Errorf("total joined drifted: %d vs %d", first.TotalJoined, second.TotalJoined)
	}
}

func TestMaterializeUpgradeCountsHostAsJoined(t *testing.T) {
	svc, bookings, guests, _ := newTestService(t)
	b := confirmedBooking()
	bookings.bookings[b.ID] = b

	// A pre-existing roster row with the booking email but no host flag,
	// as left behind by an invite that predates confirmation.
	existing := &domain.PartyGuest{
		ID:          uuid.New(),
		BookingID:   b.ID,
		Name:        b.GuestName,
		Email:       b.GuestEmail,
		Status:      domain.GuestInvited,
		InviteToken: uuid.NewString(),
	}
	guests.guests[existing.ID] = existing

	view, err := svc.Materialize(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	if view.Host == nil || view.Host.ID != existing.ID {
		t.Fatalf("host = %+v, want upgraded row %s", view.Host, existing.ID)
	}
	if view.Host.Status != domain.GuestJoined {
		t.Errorf("host status = %s, want joined", view.Host.Status)
	}
	if view.TotalJoined != 1 {
		t.Errorf("total joined = %d, want 1 on the upgrade read", view.TotalJoined)
	}
	if guests.createdGuests != 0 {
		t.Errorf("upgrade created %d new rows, want 0", guests.createdGuests)
	}
}

func TestMaterializeNotEligible(t *testing.T) {
	svc, bookings, _, _ := newTestService(t)
	b := confirmedBooking()
	b.Status = domain.BookingPending
	b.PaymentStatus = domain.PaymentPending
	bookings.bookings[b.ID] = b

	view, err := svc.Materialize(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if view != nil {
		t.Errorf("view = %+v, want nil for an unconfirmed booking", view)
	}
}

func TestRemoveGuestHostImmutable(t *testing.T) {
	svc, bookings, guests, _ := newTestService(t)
	b := confirmedBooking()
	bookings.bookings[b.ID] = b

	now := time.Now()
	host := &domain.PartyGuest{
		ID:        uuid.New(),
		BookingID: b.ID,
		Email:     b.GuestEmail,
		IsHost:    true,
		Status:    domain.GuestJoined,
		JoinedAt:  &now,
	}
	guests.guests[host.ID] = host

	err := svc.RemoveGuest(context.Background(), b.ID, host.ID, CallerIdentity{Email: b.GuestEmail})
	if !errors.Is(err, ErrHostImmutable) {
		t.Fatalf("err = %v, want ErrHostImmutable", err)
	}
	if guests.guests[host.ID].Status != domain.GuestJoined {
		t.Error("host row was mutated by the rejected removal")
	}
}

func TestRemoveGuestEmailNamesTheEvent(t *testing.T) {
	svc, bookings, guests, mail := newTestService(t)
	b := confirmedBooking()
	bookings.bookings[b.ID] = b

	guest := &domain.PartyGuest{
		ID:        uuid.New(),
		BookingID: b.ID,
		Name:      "Grace",
		Email:     "grace@example.com",
		Status:    domain.GuestInvited,
	}
	guests.guests[guest.ID] = guest

	if err := svc.RemoveGuest(context.Background(), b.ID, guest.ID, CallerIdentity{Email: b.GuestEmail}); err != nil {
		t.Fatalf("RemoveGuest: %v", err)
	}

	if mail.slug != "party_guest_removed" {
		t.Fatalf("template = %q", mail.slug)
	}
	if mail.vars["event"] != "Neon Fridays" {
		t.Errorf("event var = %q, want the event title", mail.vars["event"])
	}
	if mail.vars["name"] != "Grace" {
		t.Errorf("name var = %q", mail.vars["name"])
	}
}

func TestAddGuestReinstatesRemovedRow(t *testing.T) {
	svc, bookings, guests, _ := newTestService(t)
	b := confirmedBooking()
	bookings.bookings[b.ID] = b

	removed := &domain.PartyGuest{
		ID:          uuid.New(),
		BookingID:   b.ID,
		Name:        "Grace",
		Email:       "grace@example.com",
		Status:      domain.GuestRemoved,
		InviteToken: "tok-original",
	}
	guests.guests[removed.ID] = removed

	res, err := svc.AddGuest(context.Background(), b.ID, CallerIdentity{Email: b.GuestEmail}, AddGuestInput{
		Name:  "Grace",
		Email: "Grace@Example.com",
	})
	if err != nil {
		t.Fatalf("AddGuest: %v", err)
	}

	if res.Guest.ID != removed.ID {
		t.Errorf("guest id = %s, want reinstated row %s", res.Guest.ID, removed.ID)
	}
	if res.Guest.Status != domain.GuestInvited {
		t.Errorf("status = %s, want invited", res.Guest.Status)
	}
	if guests.createdGuests != 0 {
		t.Errorf("re-add created %d duplicate rows, want 0", guests.createdGuests)
	}
	if !strings.Contains(res.JoinURL, "tok-original") {
		t.Errorf("join URL %q lost the original invite token", res.JoinURL)
	}
}

func TestAddGuestAlreadyOnList(t *testing.T) {
	svc, bookings, guests, _ := newTestService(t)
	b := confirmedBooking()
	bookings.bookings[b.ID] = b

	active := &domain.PartyGuest{
		ID:        uuid.New(),
		BookingID: b.ID,
		Email:     "grace@example.com",
		Status:    domain.GuestJoined,
	}
	guests.guests[active.ID] = active

	_, err := svc.AddGuest(context.Background(), b.ID, CallerIdentity{Email: b.GuestEmail}, AddGuestInput{
		Email: "grace@example.com",
	})
	if !errors.Is(err, ErrAlreadyOnList) {
		t.Fatalf("err = %v, want ErrAlreadyOnList", err)
	}
}
