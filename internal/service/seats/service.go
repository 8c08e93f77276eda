// Package seats implements the seat-inventory component: computing free
// seats from the aircraft template minus the occupied set, and the
// commit-time reservation of seats on a flight instance.
package seats

import (
	"context"
	"fmt"
	"time"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	redisx "github.com/guillermo-martinez42/cc6-trivago/internal/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/refdata"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
	redisrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/redis"
)

type Config struct {
	SeatMapTTL time.Duration
}

type Service struct {
	inv    *memory.SeatInventory
	cache  *redisrepo.Cache
	pubsub *redisx.SeatsPubSub
	cfg    Config
}

func New(inv *memory.SeatInventory, cache *redisrepo.Cache, pubsub *redisx.SeatsPubSub, cfg Config) *Service {
	if cfg.SeatMapTTL <= 0 {
		cfg.SeatMapTTL = 15 * time.Second
	}

	return &Service{inv: inv, cache: cache, pubsub: pubsub, cfg: cfg}
}

// AvailableSeats returns the free seats of a flight instance in row-major
// order: template seats minus the occupied set. An unknown aircraft type
// yields an empty result rather than an error.
func (s *Service) AvailableSeats(flightKey, aircraft string) []domain.Seat {
	tpl, ok := refdata.SeatTemplates[aircraft]
	if !ok {
		return nil
	}

	occupied := s.inv.Occupied(flightKey)

	var out []domain.Seat
	for row := 1; row <= tpl.RowCount; row++ {
		for _, letter := range tpl.Letters {
			code := fmt.Sprintf("%d%s", row, letter)
			if _, taken := occupied[code]; taken {
				continue
			}
			out = append(out, domain.Seat{Row: row, Letter: letter, Code: code})
		}
	}

	return out
}

// AvailableCount is the number of free seats on a flight instance.
func (s *Service) AvailableCount(flightKey, aircraft string) int {
	tpl, ok := refdata.SeatTemplates[aircraft]
	if !ok {
		return 0
	}

	return tpl.TotalSeats() - len(s.inv.Occupied(flightKey))
}

// SeatMap returns every template seat of a flight instance with its
// occupancy, cached briefly per instance.
//
// Returns seats.ErrFlightNotFound when the (airline, number) key is unknown.
func (s *Service) SeatMap(ctx context.Context, airline, number, date string) ([]domain.SeatWithStatus, error) {
	const op = "service.seats.SeatMap"

	f := refdata.FlightByKey(airline, number)
	if f == nil {
		return nil, fmt.Errorf("%s: %s%s: %w", op, airline, number, ErrFlightNotFound)
	}

	key := refdata.InstanceKey(airline, number, date)

	build := func(context.Context) ([]domain.SeatWithStatus, error) {
		tpl, ok := refdata.SeatTemplates[f.Aircraft]
		if !ok {
			return []domain.SeatWithStatus{}, nil
		}

		occupied := s.inv.Occupied(key)

		out := make([]domain.SeatWithStatus, 0, tpl.TotalSeats())
		for row := 1; row <= tpl.RowCount; row++ {
			for _, letter := range tpl.Letters {
				code := fmt.Sprintf("%d%s", row, letter)
				_, taken := occupied[code]
				out = append(out, domain.SeatWithStatus{
					Seat:     domain.Seat{Row: row, Letter: letter, Code: code},
					Occupied: taken,
				})
			}
		}
		return out, nil
	}

	if s.cache == nil {
		return build(ctx)
	}

	seatMap, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeySeatMap(key), s.cfg.SeatMapTTL, build)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seatMap, nil
}

// Reserve takes a single seat, re-checking occupancy atomically.
func (s *Service) Reserve(ctx context.Context, flightKey, seat string) error {
	const op = "service.seats.Reserve"

	if err := s.inv.Reserve(flightKey, seat); err != nil {
		return fmt.Errorf("%s: %w", op, &ConflictError{FlightKey: flightKey, Seats: []string{seat}})
	}

	s.notifyChanged(ctx, flightKey)

	return nil
}

// ReserveAll takes every seat or none. Occupancy is re-checked at commit
// time under the inventory lock, so a seat grabbed by a concurrent session
// since selection fails the whole reservation with no partial state.
func (s *Service) ReserveAll(ctx context.Context, flightKey string, seatCodes []string) error {
	const op = "service.seats.ReserveAll"

	failed, err := s.inv.ReserveAll(flightKey, seatCodes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &ConflictError{FlightKey: flightKey, Seats: failed})
	}

	s.notifyChanged(ctx, flightKey)

	return nil
}

// Release frees seats reserved by a booking that did not complete.
func (s *Service) Release(ctx context.Context, flightKey string, seatCodes []string) {
	s.inv.Release(flightKey, seatCodes)
	s.notifyChanged(ctx, flightKey)
}

func (s *Service) notifyChanged(ctx context.Context, flightKey string) {
	if s.cache != nil {
		_ = s.cache.InvalidateFlight(ctx, flightKey)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishSeatsChanged(ctx, flightKey)
	}
}
