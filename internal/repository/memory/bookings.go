package memory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository"
)

// BookingStore keeps in-progress booking sessions. Sessions are transient
// and removed on ticket issuance or abandonment.
type BookingStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{sessions: make(map[uuid.UUID]*domain.Booking)}
}

func (s *BookingStore) Put(b *domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[b.ID] = b
}

func (s *BookingStore) Get(id uuid.UUID) (*domain.Booking, error) {
	const op = "memory.BookingStore.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return b, nil
}

func (s *BookingStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}
