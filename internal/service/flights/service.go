// Package flights implements the flight-query component: searching the
// static schedule by route and travel date, enriching matches with computed
// fields, and the filter/sort operations search results support.
package flights

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	redisx "github.com/guillermo-martinez42/cc6-trivago/internal/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/refdata"
	redisrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/redis"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/seats"
)

type Config struct {
	SearchTTL time.Duration
}

type Service struct {
	seats *seats.Service
	cache *redisrepo.Cache
	cfg   Config
}

func New(seatSvc *seats.Service, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = 15 * time.Second
	}

	return &Service{seats: seatSvc, cache: cache, cfg: cfg}
}

// Search returns the flights serving origin→destination on the weekday the
// date falls on, enriched, in schedule declaration order. Results are cached
// briefly per route and date.
//
// Returns flights.ErrInvalidSearch on missing fields, equal endpoints or a
// malformed date.
func (s *Service) Search(ctx context.Context, origin, destination, date string) ([]domain.EnrichedFlight, error) {
	const op = "service.flights.Search"

	if origin == "" || destination == "" || date == "" {
		return nil, fmt.Errorf("%s: missing fields: %w", op, ErrInvalidSearch)
	}
	if origin == destination {
		return nil, fmt.Errorf("%s: origin equals destination: %w", op, ErrInvalidSearch)
	}

	day, err := refdata.DayOfWeek(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSearch)
	}

	load := func(context.Context) ([]domain.EnrichedFlight, error) {
		var out []domain.EnrichedFlight
		for _, f := range refdata.AllFlights() {
			if f.Origin != origin || f.Destination != destination || !f.OperatesOn(day) {
				continue
			}
			out = append(out, s.Enrich(f, date))
		}
		if out == nil {
			out = []domain.EnrichedFlight{}
		}
		return out, nil
	}

	if s.cache == nil {
		return load(ctx)
	}

	key := redisx.KeySearch(origin, destination, date)
	result, err := redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.SearchTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// Enrich adds the computed fields a search result carries: arrival time,
// seat availability, occupancy percentage, price category, and the minute
// forms of departure and duration used for sorting.
func (s *Service) Enrich(f domain.Flight, date string) domain.EnrichedFlight {
	key := refdata.InstanceKey(f.Airline, f.Number, date)

	available := s.seats.AvailableCount(key, f.Aircraft)
	total := 0
	if tpl, ok := refdata.SeatTemplates[f.Aircraft]; ok {
		total = tpl.TotalSeats()
	}

	occupancy := 0
	if total > 0 {
		occupancy = int(math.Round((1 - float64(available)/float64(total)) * 100))
	}

	return domain.EnrichedFlight{
		Flight:           f,
		Date:             date,
		ArrivalTime:      ArrivalTime(f.DepartureTime, f.Duration),
		SeatsAvailable:   available,
		OccupancyPercent: occupancy,
		Category:         PriceCategoryOf(f.Price),
		DurationMinutes:  durationToMinutes(f.Duration),
		DepartureMinutes: timeToMinutes(f.DepartureTime),
	}
}

// ArrivalTime computes departure ("HHMM") plus duration ("HH:MM") modulo
// 24h, rendered "HH:MM". "2200" + "11:15" → "09:15".
func ArrivalTime(departure, duration string) string {
	total := timeToMinutes(departure) + durationToMinutes(duration)
	h := (total / 60) % 24
	m := total % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// PriceCategoryOf buckets a fare: <500 economico, <1000 medio, <1500 alto,
// else premium.
func PriceCategoryOf(price float64) domain.PriceCategory {
	switch {
	case price < 500:
		return domain.PriceEconomico
	case price < 1000:
		return domain.PriceMedio
	case price < 1500:
		return domain.PriceAlto
	default:
		return domain.PricePremium
	}
}

func timeToMinutes(hhmm string) int {
	if len(hhmm) != 4 {
		return 0
	}
	h, _ := strconv.Atoi(hhmm[:2])
	m, _ := strconv.Atoi(hhmm[2:])
	return h*60 + m
}

func durationToMinutes(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}

// Filters narrows a result set. A zero value leaves that dimension
// unconstrained. Price bounds apply to the fare multiplied by Passengers.
type Filters struct {
	MinPrice           float64
	MaxPrice           float64
	DepartureStartMins int
	DepartureEndMins   int
	MaxDurationMins    int
	Airlines           []string
	MinSeats           int
	Passengers         int
}

// Filter applies each bounded predicate, keeping original order.
func Filter(in []domain.EnrichedFlight, f Filters) []domain.EnrichedFlight {
	passengers := f.Passengers
	if passengers < 1 {
		passengers = 1
	}

	allowed := make(map[string]struct{}, len(f.Airlines))
	for _, a := range f.Airlines {
		allowed[a] = struct{}{}
	}

	out := make([]domain.EnrichedFlight, 0, len(in))
	for _, fl := range in {
		price := fl.Price * float64(passengers)

		if f.MinPrice > 0 && price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && price > f.MaxPrice {
			continue
		}
		if f.DepartureStartMins > 0 && fl.DepartureMinutes < f.DepartureStartMins {
			continue
		}
		if f.DepartureEndMins > 0 && fl.DepartureMinutes > f.DepartureEndMins {
			continue
		}
		if f.MaxDurationMins > 0 && fl.DurationMinutes > f.MaxDurationMins {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[fl.Airline]; !ok {
				continue
			}
		}
		if f.MinSeats > 0 && fl.SeatsAvailable < f.MinSeats {
			continue
		}

		out = append(out, fl)
	}

	return out
}

// SortKey selects the comparison Sort uses.
type SortKey string

const (
	SortByPrice        SortKey = "price"
	SortByTime         SortKey = "time"
	SortByDuration     SortKey = "duration"
	SortByAirline      SortKey = "airline"
	SortByAvailability SortKey = "availability"
)

// Sort orders flights stably by the given key; ties keep original order.
// Availability sorts descending by default; order "desc" reverses whichever
// direction the key defaults to.
func Sort(in []domain.EnrichedFlight, key SortKey, order string) []domain.EnrichedFlight {
	out := append([]domain.EnrichedFlight(nil), in...)

	cmp := func(a, b domain.EnrichedFlight) int {
		switch key {
		case SortByPrice:
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return 0
		case SortByTime:
			return a.DepartureMinutes - b.DepartureMinutes
		case SortByDuration:
			return a.DurationMinutes - b.DurationMinutes
		case SortByAirline:
			return strings.Compare(a.AirlineName, b.AirlineName)
		case SortByAvailability:
			return b.SeatsAvailable - a.SeatsAvailable
		default:
			return 0
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if order == "desc" {
			c = -c
		}
		return c < 0
	})

	return out
}
