// Package rentals is the farm equipment marketplace: a machine catalog with
// filters and day-rate bookings.
package rentals

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
)

var validate = validator.New()

// Service exposes the marketplace.
type Service interface {
	List(ctx context.Context, f Filter) ([]Machine, error)
	Get(ctx context.Context, id string) (Machine, error)
	Book(ctx context.Context, userID int64, req BookingRequest) (Booking, error)
	Bookings(ctx context.Context, userID int64) ([]Booking, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the rentals domain.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "rentals.service"),
		now:    time.Now,
	}
}

func (s *service) List(ctx context.Context, f Filter) ([]Machine, error) {
	match, ok := priceMatcher(f.PriceRange)
	if !ok {
		return nil, apperrors.Wrap("invalid_input", "unknown price range", nil)
	}
	machines, err := s.repo.ListMachines(ctx)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load machines", err)
	}
	location := strings.ToLower(wildcard(f.Location))
	kind := wildcard(f.Type)

	out := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if location != "" && !strings.Contains(strings.ToLower(m.Location), location) {
			continue
		}
		if kind != "" && !strings.EqualFold(m.Type, kind) {
			continue
		}
		if !match(m.PricePerDay) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (Machine, error) {
	m, ok, err := s.repo.GetMachine(ctx, id)
	if err != nil {
		return Machine{}, apperrors.Wrap("storage_error", "failed to load machine", err)
	}
	if !ok {
		return Machine{}, apperrors.Wrap("not_found", "machine not found", nil)
	}
	return m, nil
}

// Book charges Days times the machine's day rate.
func (s *service) Book(ctx context.Context, userID int64, req BookingRequest) (Booking, error) {
	if err := validate.Struct(req); err != nil {
		return Booking{}, apperrors.Wrap("invalid_input", "startDate (YYYY-MM-DD) and days are required", err)
	}
	start, _ := time.Parse(time.DateOnly, req.StartDate)
	m, err := s.Get(ctx, req.MachineID)
	if err != nil {
		return Booking{}, err
	}
	booking, err := s.repo.CreateBooking(ctx, Booking{
		ID:          uuid.NewString(),
		MachineID:   m.ID,
		MachineName: m.Name,
		UserID:      userID,
		StartDate:   start,
		Days:        req.Days,
		TotalPrice:  req.Days * m.PricePerDay,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return Booking{}, apperrors.Wrap("storage_error", "failed to save booking", err)
	}
	s.logger.Info("machine booked", "booking_id", booking.ID, "machine_id", m.ID, "user_id", userID, "days", req.Days)
	return booking, nil
}

func (s *service) Bookings(ctx context.Context, userID int64) ([]Booking, error) {
	out, err := s.repo.ListBookings(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load bookings", err)
	}
	if out == nil {
		out = []Booking{}
	}
	return out, nil
}

func wildcard(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func priceMatcher(raw string) (func(int) bool, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "₹")) {
	case "", PriceAll:
		return func(int) bool { return true }, true
	case Price500To1k:
		return func(p int) bool { return p <= 1000 }, true
	case Price1kTo2k:
		return func(p int) bool { return p > 1000 && p <= 2000 }, true
	case PriceOver2k:
		return func(p int) bool { return p > 2000 }, true
	default:
		return nil, false
	}
}
