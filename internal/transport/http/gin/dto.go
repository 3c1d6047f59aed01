package httpgin

import (
	"time"

	"github.com/nightowl-club/tablepass/internal/domain"
)

type SubmitBookingRequest struct {
	EventID         int64  `json:"event_id" binding:"required"`
	TableID         int64  `json:"table_id" binding:"required"`
	GuestName       string `json:"guest_name" binding:"required"`
	GuestEmail      string `json:"guest_email" binding:"required"`
	GuestWhatsApp   string `json:"guest_whatsapp" binding:"required"`
	SpecialRequests string `json:"special_requests"`
	RefCode         string `json:"ref_code"`
	LinkCode        string `json:"link_code"`
}

type PaymentInfo struct {
	URL       string    `json:"url"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SubmitBookingResponse struct {
	BookingID     string       `json:"booking_id"`
	Status        string       `json:"status"`
	PaymentStatus string       `json:"payment_status"`
	Message       string       `json:"message"`
	Payment       *PaymentInfo `json:"payment,omitempty"`
}

type BookingResponse struct {
	ID              string            `json:"id"`
	EventID         int64             `json:"event_id"`
	TableID         int64             `json:"table_id"`
	GuestName       string            `json:"guest_name"`
	GuestEmail      string            `json:"guest_email"`
	PartySize       int               `json:"party_size"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	MinimumSpend    int64             `json:"minimum_spend"`
	DepositRequired int64             `json:"deposit_required"`
	CreatedAt       time.Time         `json:"created_at"`
	Payment         *PaymentInfo      `json:"payment,omitempty"`
	Party           *domain.PartyView `json:"party,omitempty"`
}

type AddGuestRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

type AddGuestResponse struct {
	GuestID string `json:"guest_id"`
	Status  string `json:"status"`
	JoinURL string `json:"join_url"`
}

type RemoveGuestResponse struct {
	GuestID string `json:"guest_id"`
	Status  string `json:"status"`
}

type GuestListResponse struct {
	Guests  []GuestEntry         `json:"guests"`
	Summary domain.RosterSummary `json:"summary"`
}

type GuestEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	IsHost    bool   `json:"is_host"`
	Status    string `json:"status"`
	CheckedIn bool   `json:"checked_in"`
}

type CheckinRequest struct {
	QRToken        string `json:"qr_token"`
	RegistrationID string `json:"registration_id"`
}

type CheckinAttendee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CheckinResponse struct {
	CheckinID      string           `json:"checkin_id"`
	RegistrationID string           `json:"registration_id"`
	CheckedInAt    time.Time        `json:"checked_in_at"`
	Duplicate      bool             `json:"duplicate"`
	Attendee       *CheckinAttendee `json:"attendee,omitempty"`
}

type TableAvailability struct {
	TableID      int64  `json:"table_id"`
	Zone         string `json:"zone"`
	Capacity     int    `json:"capacity"`
	MinimumSpend int64  `json:"minimum_spend"`
	Deposit      int64  `json:"deposit"`
	Available    bool   `json:"available"`
	PartySize    int    `json:"party_size"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toPaymentInfo(t *domain.PaymentTransaction) *PaymentInfo {
	if t == nil {
		return nil
	}
	return &PaymentInfo{
		URL:       t.PaymentURL,
		Amount:    t.Amount,
		Currency:  t.Currency,
		Status:    string(t.Status),
		ExpiresAt: t.ExpiresAt,
	}
}

func toBookingResponse(b *domain.TableBooking, payment *domain.PaymentTransaction, party *domain.PartyView) BookingResponse {
	return BookingResponse{
		ID:              b.ID.String(),
		EventID:         b.EventID,
		TableID:         b.TableID,
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		PartySize:       b.PartySize,
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		MinimumSpend:    b.MinimumSpend,
		DepositRequired: b.DepositRequired,
		CreatedAt:       b.CreatedAt,
		Payment:         toPaymentInfo(payment),
		Party:           party,
	}
}

func toGuestEntries(guests []domain.PartyGuest) []GuestEntry {
	out := make([]GuestEntry, 0, len(guests))
	for _, g := range guests {
		out = append(out, GuestEntry{
			ID:        g.ID.String(),
			Name:      g.Name,
			Email:     g.Email,
			IsHost:    g.IsHost,
			Status:    string(g.Status),
			CheckedIn: g.CheckedIn,
		})
	}
	return out
}

func toTableAvailability(list []domain.Availability) []TableAvailability {
	out := make([]TableAvailability, 0, len(list))
	for _, a := range list {
		out = append(out, TableAvailability{
			TableID:      a.TableID,
			Zone:         a.Zone,
			Capacity:     a.Capacity,
			MinimumSpend: a.MinimumSpend,
			Deposit:      a.Deposit,
			Available:    a.Available,
			PartySize:    a.PartySize,
		})
	}
	return out
}
