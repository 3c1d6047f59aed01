// Package party implements read-time reconciliation of a booking's guest
// roster. The host row is materialized lazily on the first read of a
// confirmed booking, so the whole flow is safe to re-run any number of times.
package party

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/mailer"
	"github.com/nightowl-club/tablepass/internal/repository"
	"github.com/nightowl-club/tablepass/internal/token"
	qrcode "github.com/skip2/go-qrcode"
)

// BookingStore is the slice of the booking repository the roster flow reads.
type BookingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.TableBooking, error)
}

// EventStore resolves event metadata for notification copy.
type EventStore interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
}

// GuestStore covers the roster, attendee and registration tables.
type GuestStore interface {
	ListGuests(ctx context.Context, bookingID uuid.UUID, includeRemoved bool) ([]domain.PartyGuest, error)
	GetGuest(ctx context.Context, id uuid.UUID) (*domain.PartyGuest, error)
	FindGuestByEmail(ctx context.Context, bookingID uuid.UUID, email string) (*domain.PartyGuest, error)
	CreateGuest(ctx context.Context, g *domain.PartyGuest) error
	PromoteToHost(ctx context.Context, id uuid.UUID, now time.Time) error
	SetGuestStatus(ctx context.Context, id uuid.UUID, status domain.GuestStatus) error
	ReinstateGuest(ctx context.Context, id uuid.UUID, now time.Time) error
	LinkGuest(ctx context.Context, id uuid.UUID, attendeeID uuid.UUID, qrToken string) error
	SetGuestAttendee(ctx context.Context, id uuid.UUID, attendeeID uuid.UUID) error
	FindAttendeeByEmail(ctx context.Context, email string) (*domain.Attendee, error)
	CreateAttendee(ctx context.Context, a *domain.Attendee) error
	FindRegistration(ctx context.Context, attendeeID uuid.UUID, eventID int64) (*domain.Registration, error)
	CreateRegistration(ctx context.Context, reg *domain.Registration) error
	CancelRegistration(ctx context.Context, id uuid.UUID) error
}

// Store groups the persistence surfaces the roster flow touches.
type Store struct {
	Bookings BookingStore
	Events   EventStore
	Guests   GuestStore
}

type Config struct {
	// PublicBaseURL is the externally reachable origin used when templating
	// pass and invite URLs.
	PublicBaseURL string
}

type Service struct {
	store  Store
	codec  *token.Codec
	mail   mailer.Sender
	logger *slog.Logger
	cfg    Config
}

func New(store Store, codec *token.Codec, mail mailer.Sender, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		store:  store,
		codec:  codec,
		mail:   mail,
		logger: logger,
		cfg:    cfg,
	}
}

// Materialize reconciles the booking's party roster and returns the current
// view. A nil view with a nil error means the booking is not confirmed or
// paid yet and no party has formed.
//
// Every step here is idempotent: the host row is upgraded or created at most
// once, the attendee and registration are find-or-create, and the pass token
// is minted only while the host row has none. Linking failures are logged
// and retried naturally on the next read.
func (s *Service) Materialize(ctx context.Context, bookingID uuid.UUID) (*domain.PartyView, error) {
	const op = "service.party.Materialize"

	b, err := s.store.Bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !partyEligible(b) {
		return nil, nil
	}

	guests, err := s.store.Guests.ListGuests(ctx, bookingID, false)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	host := findHost(guests)

	if host == nil {
		now := time.Now().UTC()

		if match := matchByEmail(guests, b.GuestEmail); match != nil {
			if err := s.store.Guests.PromoteToHost(ctx, match.ID, now); err != nil {
				return nil, fmt.Errorf("%s:%w", op, err)
			}
			host = match
		} else {
			host = &domain.PartyGuest{
				ID:          uuid.New(),
				BookingID:   b.ID,
				Name:        b.GuestName,
				Email:       b.GuestEmail,
				Phone:       b.GuestWhatsApp,
				IsHost:      true,
				Status:      domain.GuestJoined,
				InviteToken: uuid.NewString(),
				JoinedAt:    &now,
			}
			if err := s.store.Guests.CreateGuest(ctx, host); err != nil {
				return nil, fmt.Errorf("%s:%w", op, err)
			}
		}
	}

	s.linkHost(ctx, b, host)

	// Re-read so the returned view reflects persisted state rather than
	// whatever this request mutated in memory.
	host, err = s.store.Guests.GetGuest(ctx, host.ID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	view := buildView(b, host, guests, s.cfg.PublicBaseURL)

	return view, nil
}

// linkHost ensures the host row is backed by an attendee, a registration and
// a minted pass token. Failures are logged, not returned: the next read of
// the booking repeats the whole sequence.
func (s *Service) linkHost(ctx context.Context, b *domain.TableBooking, host *domain.PartyGuest) {
	att, err := s.store.Guests.FindAttendeeByEmail(ctx, b.GuestEmail)
	if errors.Is(err, repository.ErrNotFound) {
		att = &domain.Attendee{
			ID:    uuid.New(),
			Email: b.GuestEmail,
			Name:  b.GuestName,
		}
		err = s.store.Guests.CreateAttendee(ctx, att)
	}
	if err != nil {
		s.logger.Warn("party: attendee linkage failed",
			"booking_id", b.ID, "error", err)
		return
	}

	reg, err := s.store.Guests.FindRegistration(ctx, att.ID, b.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		reg = &domain.Registration{
			ID:         uuid.New(),
			AttendeeID: att.ID,
			EventID:    b.EventID,
			Source:     "table_booking",
			Status:     domain.RegistrationActive,
		}
		err = s.store.Guests.CreateRegistration(ctx, reg)
	}
	if err != nil {
		s.logger.Warn("party: registration linkage failed",
			"booking_id", b.ID, "attendee_id", att.ID, "error", err)
		return
	}

	if host.QRToken != "" {
		if host.AttendeeID == nil {
			if err := s.store.Guests.SetGuestAttendee(ctx, host.ID, att.ID); err != nil {
				s.logger.Warn("party: host attendee backfill failed",
					"booking_id", b.ID, "guest_id", host.ID, "error", err)
			}
		}
		return
	}

	pass, err := s.codec.Mint(reg.ID, b.EventID, att.ID)
	if err != nil {
		s.logger.Warn("party: pass mint failed",
			"booking_id", b.ID, "registration_id", reg.ID, "error", err)
		return
	}

	if err := s.store.Guests.LinkGuest(ctx, host.ID, att.ID, pass); err != nil {
		s.logger.Warn("party: host linkage persist failed",
			"booking_id", b.ID, "guest_id", host.ID, "error", err)
	}
}

type AddGuestInput struct {
	Name  string
	Email string
	Phone string
}

type AddGuestResult struct {
	Guest   *domain.PartyGuest
	JoinURL string
}

// AddGuest puts a guest on the booking's roster and returns a shareable join
// URL. No email is sent; hosts share the link themselves. Re-adding an email
// that was previously removed reinstates the original row instead of
// creating a duplicate.
func (s *Service) AddGuest(ctx context.Context, bookingID uuid.UUID, caller CallerIdentity, in AddGuestInput) (*AddGuestResult, error) {
	const op = "service.party.AddGuest"

	b, hostEmail, err := s.loadForMutation(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !authorizeHost(caller, b.GuestEmail, hostEmail) {
		return nil, fmt.Errorf("%s:%w", op, ErrNotHost)
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidEmail)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidEmail)
	}

	existing, err := s.store.Guests.FindGuestByEmail(ctx, bookingID, in.Email)
	switch {
	case err == nil && existing.Status == domain.GuestRemoved:
		if err := s.store.Guests.ReinstateGuest(ctx, existing.ID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		g, err := s.store.Guests.GetGuest(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return &AddGuestResult{Guest: g, JoinURL: joinURL(s.cfg.PublicBaseURL, g.InviteToken)}, nil
	case err == nil:
		return nil, fmt.Errorf("%s:%w", op, ErrAlreadyOnList)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	g := &domain.PartyGuest{
		ID:          uuid.New(),
		BookingID:   bookingID,
		Name:        strings.TrimSpace(in.Name),
		Email:       in.Email,
		Phone:       strings.TrimSpace(in.Phone),
		Status:      domain.GuestInvited,
		InviteToken: uuid.NewString(),
	}

	// Linking a known attendee up front lets the pass flow skip a lookup
	// later. Absence is fine, the guest may never have attended anything.
	if att, err := s.store.Guests.FindAttendeeByEmail(ctx, in.Email); err == nil {
		g.AttendeeID = &att.ID
	}

	if err := s.store.Guests.CreateGuest(ctx, g); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &AddGuestResult{Guest: g, JoinURL: joinURL(s.cfg.PublicBaseURL, g.InviteToken)}, nil
}

// RemoveGuest soft-deletes a roster row. The host row can never be removed.
// A linked guest's event registration is cancelled and a courtesy email is
// attempted; neither rolls back the removal.
func (s *Service) RemoveGuest(ctx context.Context, bookingID, guestID uuid.UUID, caller CallerIdentity) error {
	const op = "service.party.RemoveGuest"

	b, hostEmail, err := s.loadForMutation(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if !authorizeHost(caller, b.GuestEmail, hostEmail) {
		return fmt.Errorf("%s:%w", op, ErrNotHost)
	}

	g, err := s.store.Guests.GetGuest(ctx, guestID)
	if err != nil || g.BookingID != bookingID {
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrGuestNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if g.IsHost {
		return fmt.Errorf("%s:%w", op, ErrHostImmutable)
	}

	if err := s.store.Guests.SetGuestStatus(ctx, guestID, domain.GuestRemoved); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if g.AttendeeID != nil {
		reg, err := s.store.Guests.FindRegistration(ctx, *g.AttendeeID, b.EventID)
		if err == nil {
			err = s.store.Guests.CancelRegistration(ctx, reg.ID)
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("party: registration cancel failed",
				"booking_id", bookingID, "guest_id", guestID, "error", err)
		}
	}

	if g.Email != "" {
		eventTitle := "the event"
		if ev, err := s.store.Events.GetEvent(ctx, b.EventID); err == nil {
			eventTitle = ev.Title
		}
		if err := s.mail.Send("party_guest_removed", g.Email, map[string]string{
			"name":  g.Name,
			"event": eventTitle,
		}); err != nil {
			s.logger.Warn("party: removal email failed",
				"guest_id", guestID, "error", err)
		}
	}

	return nil
}

type Roster struct {
	Guests  []domain.PartyGuest
	Summary domain.RosterSummary
}

// ListGuests returns the non-removed roster with status counts.
func (s *Service) ListGuests(ctx context.Context, bookingID uuid.UUID) (*Roster, error) {
	const op = "service.party.ListGuests"

	if _, err := s.store.Bookings.Get(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	guests, err := s.store.Guests.ListGuests(ctx, bookingID, false)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Roster{Guests: guests, Summary: summarize(guests)}, nil
}

// GuestQR renders the guest's pass token as a PNG QR code.
func (s *Service) GuestQR(ctx context.Context, guestID uuid.UUID) ([]byte, error) {
	const op = "service.party.GuestQR"

	g, err := s.store.Guests.GetGuest(ctx, guestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrGuestNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if g.QRToken == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrPassNotReady)
	}

	png, err := qrcode.Encode(g.QRToken, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return png, nil
}

// loadForMutation fetches the booking, checks it has a party to manage, and
// resolves the current host email if a host row exists.
func (s *Service) loadForMutation(ctx context.Context, bookingID uuid.UUID) (*domain.TableBooking, string, error) {
	b, err := s.store.Bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrBookingNotFound
		}
		return nil, "", err
	}

	if !partyEligible(b) {
		return nil, "", ErrNotConfirmed
	}

	hostEmail := ""
	if guests, err := s.store.Guests.ListGuests(ctx, bookingID, false); err == nil {
		if h := findHost(guests); h != nil {
			hostEmail = h.Email
		}
	}

	return b, hostEmail, nil
}

func partyEligible(b *domain.TableBooking) bool {
	return b.Status == domain.BookingConfirmed || b.PaymentStatus == domain.PaymentPaid
}

// CallerIdentity carries what the transport layer knows about the caller:
// an authenticated email, if any, and the raw email query parameter.
type CallerIdentity struct {
	Email      string
	ParamEmail string
}

// authorizeHost accepts the caller when their email matches the booking's
// guest email, the current host row's email, or the email query parameter
// they supplied themselves. The last clause is not a cryptographic check; it
// exists so shared booking links keep working for guests without accounts.
func authorizeHost(caller CallerIdentity, bookingEmail, hostEmail string) bool {
	email := strings.TrimSpace(caller.Email)
	if email == "" {
		email = strings.TrimSpace(caller.ParamEmail)
	}
	if email == "" {
		return false
	}

	if strings.EqualFold(email, bookingEmail) {
		return true
	}
	if hostEmail != "" && strings.EqualFold(email, hostEmail) {
		return true
	}
	return caller.ParamEmail != "" && strings.EqualFold(email, caller.ParamEmail)
}

func findHost(guests []domain.PartyGuest) *domain.PartyGuest {
	for i := range guests {
		if guests[i].IsHost {
			return &guests[i]
		}
	}
	return nil
}

func matchByEmail(guests []domain.PartyGuest, email string) *domain.PartyGuest {
	for i := range guests {
		if strings.EqualFold(guests[i].Email, email) {
			return &guests[i]
		}
	}
	return nil
}

// summarize counts the roster by status. Removed rows are expected to be
// filtered out already.
func summarize(guests []domain.PartyGuest) domain.RosterSummary {
	var sum domain.RosterSummary
	for _, g := range guests {
		sum.Total++
		switch g.Status {
		case domain.GuestInvited:
			sum.Invited++
		case domain.GuestJoined:
			sum.Joined++
		}
		if g.CheckedIn {
			sum.CheckedIn++
		}
	}
	return sum
}

// buildView assembles the party view. The roster list may predate this
// request's host creation or upgrade, so the host's contribution to the
// joined count always comes from the re-fetched host row, never from the
// stale list entry.
func buildView(b *domain.TableBooking, host *domain.PartyGuest, fetched []domain.PartyGuest, baseURL string) *domain.PartyView {
	joined := 0
	for _, g := range fetched {
		if g.ID == host.ID {
			continue
		}
		if g.Status == domain.GuestJoined {
			joined++
		}
	}
	if host.Status == domain.GuestJoined {
		joined++
	}

	view := &domain.PartyView{
		Guests:      make([]domain.PartyMember, 0, len(fetched)),
		InviteURL:   joinURL(baseURL, host.InviteToken),
		TotalJoined: joined,
		PartySize:   b.PartySize,
	}

	view.Host = &domain.PartyMember{
		ID:        host.ID,
		Name:      host.Name,
		Status:    host.Status,
		CheckedIn: host.CheckedIn,
		PassURL:   passURL(baseURL, host.ID),
	}

	for _, g := range fetched {
		if g.IsHost || g.ID == host.ID {
			continue
		}
		view.Guests = append(view.Guests, domain.PartyMember{
			ID:        g.ID,
			Name:      g.Name,
			Email:     g.Email,
			Status:    g.Status,
			CheckedIn: g.CheckedIn,
		})
	}

	return view
}

func passURL(base string, guestID uuid.UUID) string {
	return fmt.Sprintf("%s/party/guests/%s/qr", strings.TrimRight(base, "/"), guestID)
}

func joinURL(base, inviteToken string) string {
	if inviteToken == "" {
		return ""
	}
	return fmt.Sprintf("%s/party/join/%s", strings.TrimRight(base, "/"), inviteToken)
}
