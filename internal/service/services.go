package service

import (
	redisx "github.com/guillermo-martinez42/cc6-trivago/internal/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
	redisrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/booking"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/flights"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/payment"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/seats"
)

type Services struct {
	Seats   *seats.Service
	Flights *flights.Service
	Payment *payment.Service
	Booking *booking.Service
}

type Config struct {
	Seats   seats.Config
	Flights flights.Config
}

func NewServices(
	inventory *memory.SeatInventory,
	cards *memory.CardRegistry,
	sessions *memory.BookingStore,
	ledger booking.Ledger,
	cache *redisrepo.Cache,
	pubsub *redisx.SeatsPubSub,
	limiter payment.RateLimiter,
	cfg Config,
) *Services {
	seatSvc := seats.New(inventory, cache, pubsub, cfg.Seats)
	flightSvc := flights.New(seatSvc, cache, cfg.Flights)
	paymentSvc := payment.New(cards, limiter)

	return &Services{
		Seats:   seatSvc,
		Flights: flightSvc,
		Payment: paymentSvc,
		Booking: booking.New(sessions, seatSvc, flightSvc, paymentSvc, ledger),
	}
}
