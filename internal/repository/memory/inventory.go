// Package memory holds the mutable demo state as explicit, session-owned
// objects: seat occupancy per flight instance, card balances and in-progress
// booking sessions. Each structure carries its own lock so concurrent
// sessions cannot double-book a seat or double-spend a balance.
package memory

import (
	"fmt"
	"sync"

	"github.com/guillermo-martinez42/cc6-trivago/internal/repository"
)

// SeatInventory tracks occupied seats per flight-instance key
// ("CA-123-20250909"). The occupied set only grows during normal booking;
// Release exists for abandoned bookings.
type SeatInventory struct {
	mu       sync.RWMutex
	occupied map[string]map[string]struct{}
}

// NewSeatInventory builds an inventory seeded with pre-occupied seats.
// A flight instance with no entry is equivalent to "no seats taken".
func NewSeatInventory(seed map[string][]string) *SeatInventory {
	inv := &SeatInventory{occupied: make(map[string]map[string]struct{}, len(seed))}
	for key, seats := range seed {
		set := make(map[string]struct{}, len(seats))
		for _, s := range seats {
			set[s] = struct{}{}
		}
		inv.occupied[key] = set
	}
	return inv
}

// Occupied returns the occupied seat set for a flight instance.
func (inv *SeatInventory) Occupied(flightKey string) map[string]struct{} {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	set := inv.occupied[flightKey]
	out := make(map[string]struct{}, len(set))
	for s := range set {
		out[s] = struct{}{}
	}
	return out
}

// IsOccupied reports whether a single seat is taken.
func (inv *SeatInventory) IsOccupied(flightKey, seat string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	_, ok := inv.occupied[flightKey][seat]
	return ok
}

// Reserve atomically checks and takes one seat. On conflict nothing mutates.
func (inv *SeatInventory) Reserve(flightKey, seat string) error {
	const op = "memory.SeatInventory.Reserve"

	inv.mu.Lock()
	defer inv.mu.Unlock()

	set := inv.occupied[flightKey]
	if set == nil {
		set = make(map[string]struct{})
		inv.occupied[flightKey] = set
	}

	if _, taken := set[seat]; taken {
		return fmt.Errorf("%s: seat %s: %w", op, seat, repository.ErrSeatOccupied)
	}

	set[seat] = struct{}{}

	return nil
}

// ReserveAll takes every seat or none. The occupancy of each seat is
// re-checked under the lock at commit time; if any seat is taken the whole
// reservation fails and the conflicting seats are returned.
func (inv *SeatInventory) ReserveAll(flightKey string, seats []string) ([]string, error) {
	const op = "memory.SeatInventory.ReserveAll"

	inv.mu.Lock()
	defer inv.mu.Unlock()

	set := inv.occupied[flightKey]
	if set == nil {
		set = make(map[string]struct{})
		inv.occupied[flightKey] = set
	}

	var failed []string
	for _, s := range seats {
		if _, taken := set[s]; taken {
			failed = append(failed, s)
		}
	}
	if len(failed) > 0 {
		return failed, fmt.Errorf("%s: %w", op, repository.ErrSeatOccupied)
	}

	for _, s := range seats {
		set[s] = struct{}{}
	}

	return nil, nil
}

// Release frees previously reserved seats (abandoned booking). Releasing a
// seat that is not occupied is a no-op.
func (inv *SeatInventory) Release(flightKey string, seats []string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	set := inv.occupied[flightKey]
	if set == nil {
		return
	}
	for _, s := range seats {
		delete(set, s)
	}
}
