package fare

import (
	"context"
	"sync"
	"time"

	"github.com/rts-transit/rapidride/internal/model"
)

// MemoryTicketStore is the in-memory reference implementation of
// TicketStore.  It backs the engine's tests and small tools; production
// deployments use the MySQL repository instead.  All operations are
// guarded by one mutex, which makes TryMarkUsed a true compare-and-swap.
type MemoryTicketStore struct {
	mu      sync.Mutex
	tickets map[string]model.StoredTicket
}

// NewMemoryTicketStore returns an empty in-memory store.
func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{tickets: make(map[string]model.StoredTicket)}
}

// Insert stores a freshly issued ticket row.
func (m *MemoryTicketStore) Insert(ctx context.Context, t model.StoredTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[t.TicketID]; ok {
		return ErrTicketExists
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.tickets[t.TicketID] = t
	return nil
}

// Get returns a copy of the stored row for the given id.
func (m *MemoryTicketStore) Get(ctx context.Context, ticketID string) (model.StoredTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok {
		return model.StoredTicket{}, ErrTicketNotFound
	}
	return t, nil
}

// TryMarkUsed flips active→used under the store lock and reports
// whether this call made the transition.
func (m *MemoryTicketStore) TryMarkUsed(ctx context.Context, ticketID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok || t.Status != model.StatusActive {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = model.StatusUsed
	t.UsedAt = &now
	m.tickets[ticketID] = t
	return true, nil
}

// Revoke marks a ticket revoked regardless of its current status.
// Revocation is an administrative action outside the narrow TicketStore
// contract, mirrored here so the verifier's revoked path is testable.
func (m *MemoryTicketStore) Revoke(ctx context.Context, ticketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok {
		return ErrTicketNotFound
	}
	t.Status = model.StatusRevoked
	m.tickets[ticketID] = t
	return nil
}
