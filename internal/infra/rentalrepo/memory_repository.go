package rentalrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/jeevamithra/internal/domain/rentals"
)

// MemoryRepository serves a fixed catalog and keeps bookings in process.
type MemoryRepository struct {
	mu       sync.RWMutex
	machines []rentals.Machine
	bookings map[int64][]rentals.Booking
}

// NewMemoryRepository seeds the repository with machines.
func NewMemoryRepository(machines []rentals.Machine) *MemoryRepository {
	return &MemoryRepository{
		machines: append([]rentals.Machine(nil), machines...),
		bookings: make(map[int64][]rentals.Booking),
	}
}

// ListMachines returns the catalog in seed order.
func (r *MemoryRepository) ListMachines(context.Context) ([]rentals.Machine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]rentals.Machine(nil), r.machines...), nil
}

// GetMachine looks a machine up by id.
func (r *MemoryRepository) GetMachine(_ context.Context, id string) (rentals.Machine, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.machines {
		if m.ID == id {
			return m, true, nil
		}
	}
	return rentals.Machine{}, false, nil
}

// CreateBooking records b.
func (r *MemoryRepository) CreateBooking(_ context.Context, b rentals.Booking) (rentals.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.UserID] = append(r.bookings[b.UserID], b)
	return b, nil
}

// ListBookings returns the user's bookings, newest first.
func (r *MemoryRepository) ListBookings(_ context.Context, userID int64) ([]rentals.Booking, error) {
	r.mu.RLock()
	out := append([]rentals.Booking(nil), r.bookings[userID]...)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var _ rentals.Repository = (*MemoryRepository)(nil)
