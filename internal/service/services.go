package service

import (
	"log/slog"

	"github.com/nightowl-club/tablepass/internal/mailer"
	"github.com/nightowl-club/tablepass/internal/outbox"
	gateway "github.com/nightowl-club/tablepass/internal/payment"
	postgres "github.com/nightowl-club/tablepass/internal/repository/postgres"
	redis "github.com/nightowl-club/tablepass/internal/repository/redis"
	"github.com/nightowl-club/tablepass/internal/service/availability"
	"github.com/nightowl-club/tablepass/internal/service/booking"
	"github.com/nightowl-club/tablepass/internal/service/checkin"
	"github.com/nightowl-club/tablepass/internal/service/party"
	"github.com/nightowl-club/tablepass/internal/service/payment"
	"github.com/nightowl-club/tablepass/internal/token"
)

type Services struct {
	Availability *availability.Service
	Booking      *booking.Service
	Payment      *payment.Service
	Party        *party.Service
	Checkin      *checkin.Service
}

type Config struct {
	Availability availability.Config
	Booking      booking.Config
	Payment      payment.Config
	Party        party.Config
	Checkin      checkin.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.BookingsPubSub,
	limiter *redis.SlidingWindowLimiter,
	codec *token.Codec,
	gw gateway.Gateway,
	mail mailer.Sender,
	emitter outbox.Emitter,
	logger *slog.Logger,
	cfg Config,
) *Services {
	payments := payment.New(store, gw, logger, cfg.Payment)

	bookingStore := booking.Store{
		Events:   store.Events(),
		Bookings: store.Bookings(),
		Party:    store.Party(),
		Payments: store.Payments(),
		Tx:       store,
	}
	partyStore := party.Store{
		Bookings: store.Bookings(),
		Events:   store.Events(),
		Guests:   store.Party(),
	}
	checkinStore := checkin.Store{
		Events:   store.Events(),
		Bookings: store.Bookings(),
		Party:    store.Party(),
		Checkins: store.Checkins(),
	}

	return &Services{
		Availability: availability.New(store, cache, cfg.Availability),
		Booking:      booking.New(bookingStore, cache, pubsub, limiter, payments, mail, cfg.Booking),
		Payment:      payments,
		Party:        party.New(partyStore, codec, mail, logger, cfg.Party),
		Checkin:      checkin.New(checkinStore, codec, emitter, logger, cfg.Checkin),
	}
}
