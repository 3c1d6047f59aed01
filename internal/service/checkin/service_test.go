package checkin

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/token"
)

func TestRoleTier(t *testing.T) {
	tests := []struct {
		role domain.Role
		want accessTier
	}{
		{domain.RoleSuperadmin, tierFull},
		{domain.RoleDoorStaff, tierFull},
		{domain.RoleVenueAdmin, tierVenue},
		{domain.RoleEventOrganizer, tierVenue},
		{domain.RolePromoter, tierAssignment},
		{domain.RoleGuest, tierAssignment},
		{domain.Role("unknown"), tierNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := roleTier(tt.role); got != tt.want {
				t.Errorf("roleTier(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestResolveRegistrationID(t *testing.T) {
	codec := token.NewCodec("door-secret", time.Hour)
	svc := &Service{codec: codec}

	regID := uuid.New()
	attID := uuid.New()
	const eventID = int64(42)

	pass, err := codec.Mint(regID, eventID, attID)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	t.Run("valid token resolves", func(t *testing.T) {
		got, err := svc.resolveRegistrationID(eventID, Input{QRToken: pass})
		if err != nil {
			t.Fatalf("resolveRegistrationID: %v", err)
		}
		if got != regID {
			t.Errorf("registration = %s, want %s", got, regID)
		}
	})

	t.Run("explicit registration id resolves", func(t *testing.T) {
		id := uuid.New()
		got, err := svc.resolveRegistrationID(eventID, Input{RegistrationID: &id})
		if err != nil {
			t.Fatalf("resolveRegistrationID: %v", err)
		}
		if got != id {
			t.Errorf("registration = %s, want %s", got, id)
		}
	})

	t.Run("neither input rejected", func(t *testing.T) {
		_, err := svc.resolveRegistrationID(eventID, Input{})
		if !errors.Is(err, ErrBadInput) {
			t.Errorf("err = %v, want ErrBadInput", err)
		}
	})

	t.Run("both inputs rejected", func(t *testing.T) {
		id := uuid.New()
		_, err := svc.resolveRegistrationID(eventID, Input{QRToken: pass, RegistrationID: &id})
		if !errors.Is(err, ErrBadInput) {
			t.Errorf("err = %v, want ErrBadInput", err)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.resolveRegistrationID(eventID, Input{QRToken: "not.a.token"})
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong-event token rejected", func(t *testing.T) {
		_, err := svc.resolveRegistrationID(99, Input{QRToken: pass})
		if !errors.Is(err, ErrEventMismatch) {
			t.Errorf("err = %v, want ErrEventMismatch", err)
		}
	})

	t.Run("foreign-secret token rejected", func(t *testing.T) {
		other, err := token.NewCodec("other-secret", time.Hour).Mint(regID, eventID, attID)
		if err != nil {
			t.Fatalf("Mint: %v", err)
		}
		_, err = svc.resolveRegistrationID(eventID, Input{QRToken: other})
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})
}

func TestConfigDefaults(t *testing.T) {
	svc := New(Store{}, nil, nil, nil, Config{})
	if svc.cfg.XPAmount != 50 {
		t.Errorf("XPAmount = %d, want 50", svc.cfg.XPAmount)
	}
	if svc.cfg.BonusThreshold != 10 {
		t.Errorf("BonusThreshold = %d, want 10", svc.cfg.BonusThreshold)
	}
}
