package party

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
)

func TestAuthorizeHost(t *testing.T) {
	tests := []struct {
		name         string
		caller       CallerIdentity
		bookingEmail string
		hostEmail    string
		want         bool
	}{
		{
			name:         "booking email match",
			caller:       CallerIdentity{Email: "host@example.com"},
			bookingEmail: "host@example.com",
			want:         true,
		},
		{
			name:         "case-insensitive match",
			caller:       CallerIdentity{Email: "HOST@Example.COM"},
			bookingEmail: "host@example.com",
			want:         true,
		},
		{
			name:         "host row email match",
			caller:       CallerIdentity{Email: "upgraded@example.com"},
			bookingEmail: "host@example.com",
			hostEmail:    "upgraded@example.com",
			want:         true,
		},
		{
			name:         "query parameter accepted as identity",
			caller:       CallerIdentity{ParamEmail: "anyone@example.com"},
			bookingEmail: "host@example.com",
			want:         true,
		},
		{
			name:         "no identity at all",
			caller:       CallerIdentity{},
			bookingEmail: "host@example.com",
			want:         false,
		},
		{
			name:         "authenticated non-host without param",
			caller:       CallerIdentity{Email: "stranger@example.com"},
			bookingEmail: "host@example.com",
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := authorizeHost(tt.caller, tt.bookingEmail, tt.hostEmail)
			if got != tt.want {
				t.Errorf("authorizeHost = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartyEligible(t *testing.T) {
	tests := []struct {
		name    string
		booking domain.TableBooking
		want    bool
	}{
		{
			name:    "confirmed",
			booking: domain.TableBooking{Status: domain.BookingConfirmed},
			want:    true,
		},
		{
			name:    "pending but paid",
			booking: domain.TableBooking{Status: domain.BookingPending, PaymentStatus: domain.PaymentPaid},
			want:    true,
		},
		{
			name:    "pending unpaid",
			booking: domain.TableBooking{Status: domain.BookingPending, PaymentStatus: domain.PaymentPending},
			want:    false,
		},
		{
			name:    "cancelled",
			booking: domain.TableBooking{Status: domain.BookingCancelled},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := partyEligible(&tt.booking); got != tt.want {
				t.Errorf("partyEligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindHostAndMatchByEmail(t *testing.T) {
	guests := []domain.PartyGuest{
		{ID: uuid.New(), Email: "a@x.com", IsHost: false},
		{ID: uuid.New(), Email: "b@x.com", IsHost: true},
		{ID: uuid.New(), Email: "c@x.com", IsHost: false},
	}

	if h := findHost(guests); h == nil || h.Email != "b@x.com" {
		t.Errorf("findHost = %+v, want b@x.com", h)
	}
	if h := findHost(guests[:1]); h != nil {
		t.Errorf("findHost on hostless roster = %+v, want nil", h)
	}

	if m := matchByEmail(guests, "C@X.com"); m == nil || m.Email != "c@x.com" {
		t.Errorf("matchByEmail = %+v, want c@x.com", m)
	}
	if m := matchByEmail(guests, "nobody@x.com"); m != nil {
		t.Errorf("matchByEmail = %+v, want nil", m)
	}
}

func TestSummarize(t *testing.T) {
	guests := []domain.PartyGuest{
		{Status: domain.GuestJoined, CheckedIn: true},
		{Status: domain.GuestJoined},
		{Status: domain.GuestInvited},
		{Status: domain.GuestInvited},
		{Status: domain.GuestInvited, CheckedIn: true},
	}

	got := summarize(guests)
	want := domain.RosterSummary{Total: 5, Invited: 3, Joined: 2, CheckedIn: 2}
	if got != want {
		t.Errorf("summarize = %+v, want %+v", got, want)
	}
}

func TestBuildView(t *testing.T) {
	now := time.Now()
	host := domain.PartyGuest{
		ID:          uuid.New(),
		Name:        "Host",
		Email:       "host@x.com",
		IsHost:      true,
		Status:      domain.GuestJoined,
		InviteToken: "tok-123",
		JoinedAt:    &now,
	}
	guest := domain.PartyGuest{
		ID:     uuid.New(),
		Name:   "Guest",
		Email:  "guest@x.com",
		Status: domain.GuestInvited,
	}
	booking := &domain.TableBooking{PartySize: 6}

	t.Run("existing host", func(t *testing.T) {
		view := buildView(booking, &host, []domain.PartyGuest{host, guest}, "https://nightowl.club")

		if view.Host == nil || view.Host.ID != host.ID {
			t.Fatalf("host = %+v", view.Host)
		}
		if view.Host.PassURL == "" {
			t.Error("host pass URL missing")
		}
		if len(view.Guests) != 1 || view.Guests[0].ID != guest.ID {
			t.Errorf("guests = %+v", view.Guests)
		}
		if view.TotalJoined != 1 {
			t.Errorf("total joined = %d, want 1", view.TotalJoined)
		}
		if view.PartySize != 6 {
			t.Errorf("party size = %d, want 6", view.PartySize)
		}
		if view.InviteURL != "https://nightowl.club/party/join/tok-123" {
			t.Errorf("invite URL = %q", view.InviteURL)
		}
	})

	t.Run("host created this request counts as joined", func(t *testing.T) {
		view := buildView(booking, &host, []domain.PartyGuest{guest}, "https://nightowl.club")

		if view.TotalJoined != 1 {
			t.Errorf("total joined = %d, want 1", view.TotalJoined)
		}
		if len(view.Guests) != 1 {
			t.Errorf("guests = %+v", view.Guests)
		}
	})

	t.Run("upgraded host counts from its fresh row, not the stale list", func(t *testing.T) {
		stale := host
		stale.Status = domain.GuestInvited
		fresh := host

		view := buildView(booking, &fresh, []domain.PartyGuest{stale, guest}, "https://nightowl.club")

		if view.TotalJoined != 1 {
			t.Errorf("total joined = %d, want 1", view.TotalJoined)
		}
		if view.Host.Status != domain.GuestJoined {
			t.Errorf("host status = %s, want joined", view.Host.Status)
		}
	})
}

func TestURLTemplating(t *testing.T) {
	id := uuid.MustParse("a3bb189e-8bf9-3888-9912-ace4e6543002")

	if got := passURL("https://app.example.com/", id); got != "https://app.example.com/party/guests/a3bb189e-8bf9-3888-9912-ace4e6543002/qr" {
		t.Errorf("passURL = %q", got)
	}
	if got := joinURL("https://app.example.com", ""); got != "" {
		t.Errorf("joinURL with empty token = %q, want empty", got)
	}
}
