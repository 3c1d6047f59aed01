package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventEnded     EventStatus = "ended"
	EventCancelled EventStatus = "cancelled"
)

type BookingMode string

const (
	BookingDisabled     BookingMode = "disabled"
	BookingPromoterOnly BookingMode = "promoter_only"
	BookingOpen         BookingMode = "open"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not_required"
	PaymentPending     PaymentStatus = "pending"
	PaymentPaid        PaymentStatus = "paid"
	PaymentFailed      PaymentStatus = "failed"
)

type GuestStatus string

const (
	GuestInvited GuestStatus = "invited"
	GuestJoined  GuestStatus = "joined"
	GuestRemoved GuestStatus = "removed"
)

type Role string

const (
	RoleSuperadmin     Role = "superadmin"
	RoleDoorStaff      Role = "door_staff"
	RoleVenueAdmin     Role = "venue_admin"
	RoleEventOrganizer Role = "event_organizer"
	RolePromoter       Role = "promoter"
	RoleGuest          Role = "guest"
)

type Event struct {
	ID          int64
	VenueID     *int64
	CreatedBy   *int64
	Title       string
	Status      EventStatus
	BookingMode BookingMode
	Currency    string
	Starts      time.Time
	Ends        time.Time
}

type VenueTable struct {
	ID            int64
	VenueID       int64
	Zone          string
	Capacity      int
	MinimumSpend  int64 // cents
	DepositAmount int64 // cents
	IsActive      bool
}

// TableOverride is an optional per-(event, table) override of the venue
// table defaults. Nil pointer fields mean "fall back to the table value".
type TableOverride struct {
	EventID       int64
	TableID       int64
	IsAvailable   *bool
	Capacity      *int
	MinimumSpend  *int64
	DepositAmount *int64
}

// Availability carries the effective table attributes for one event after
// layering any override on top of the venue defaults.
type Availability struct {
	TableID      int64
	VenueID      int64
	Zone         string
	Capacity     int
	MinimumSpend int64
	Deposit      int64
	Available    bool
	PartySize    int
}

type EventTable struct {
	Table    VenueTable
	Override *TableOverride
}

// BookingLink is a direct booking link that bypasses the event's booking
// mode. An optional TableID pins the link to a single table.
type BookingLink struct {
	ID        int64
	EventID   int64
	TableID   *int64
	Code      string
	IsActive  bool
	ExpiresAt *time.Time
}

type Promoter struct {
	ID     int64
	UserID int64
	Name   string
}

type TableBooking struct {
	ID                   uuid.UUID
	EventID              int64
	TableID              int64
	AttendeeID           *uuid.UUID
	GuestName            string
	GuestEmail           string
	GuestWhatsApp        string
	PartySize            int
	SpecialRequests      string
	PromoterID           *int64
	ReferralCode         string
	Status               BookingStatus
	PaymentStatus        PaymentStatus
	MinimumSpend         int64
	DepositRequired      int64
	PaymentTransactionID *uuid.UUID
	CreatedAt            time.Time
}

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionPaid    TransactionStatus = "paid"
	TransactionFailed  TransactionStatus = "failed"
	TransactionExpired TransactionStatus = "expired"
)

type PaymentTransaction struct {
	ID            uuid.UUID
	VenueID       int64
	ReferenceType string
	ReferenceID   uuid.UUID
	Amount        int64
	Currency      string
	InvoiceNumber string
	PaymentURL    string
	Status        TransactionStatus
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

type VenuePaymentSettings struct {
	VenueID        int64
	GatewayEnabled bool
	APIKey         string
	ExpiryHours    int
}

// PartyGuest is one row in a booking's guest roster. Exactly one non-removed
// row per booking has IsHost set; the host row is created lazily on the first
// read of a confirmed booking.
type PartyGuest struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	AttendeeID  *uuid.UUID
	Name        string
	Email       string
	Phone       string
	IsHost      bool
	Status      GuestStatus
	InviteToken string
	QRToken     string
	CheckedIn   bool
	InvitedAt   time.Time
	JoinedAt    *time.Time
}

type RegistrationStatus string

const (
	RegistrationActive    RegistrationStatus = "active"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

type Registration struct {
	ID           uuid.UUID
	AttendeeID   uuid.UUID
	EventID      int64
	Source       string
	Status       RegistrationStatus
	RegisteredAt time.Time
	CheckedInAt  *time.Time
}

type Checkin struct {
	ID             uuid.UUID
	RegistrationID uuid.UUID
	CheckedInBy    int64
	CheckedInAt    time.Time
}

type Attendee struct {
	ID     uuid.UUID
	Email  string
	Name   string
	UserID *int64
}

type User struct {
	ID    int64
	Email string
	Role  Role
}

type PartyMember struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Status    GuestStatus `json:"status"`
	CheckedIn bool        `json:"checked_in"`
	PassURL   string      `json:"pass_url,omitempty"`
}

type PartyView struct {
	Host        *PartyMember  `json:"host,omitempty"`
	Guests      []PartyMember `json:"guests"`
	InviteURL   string        `json:"invite_url,omitempty"`
	TotalJoined int           `json:"total_joined"`
	PartySize   int           `json:"party_size"`
}

type RosterSummary struct {
	Total     int `json:"total"`
	Invited   int `json:"invited"`
	Joined    int `json:"joined"`
	CheckedIn int `json:"checked_in"`
}
