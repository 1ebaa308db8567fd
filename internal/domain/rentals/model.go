package rentals

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Machine is a rentable piece of farm equipment.
type Machine struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	ImageURL       string  `json:"imageUrl" yaml:"imageUrl"`
	PricePerDay    int     `json:"pricePerDay" yaml:"pricePerDay"`
	Location       string  `json:"location" yaml:"location"`
	AvailableDates string  `json:"availableDates" yaml:"availableDates"`
	Rating         float64 `json:"rating" yaml:"rating"`
	Type           string  `json:"type" yaml:"type"`
	Description    string  `json:"description" yaml:"description"`
}

// Price ranges accepted by Filter.
const (
	PriceAll     = "all"
	Price500To1k = "500-1000"
	Price1kTo2k  = "1000-2000"
	PriceOver2k  = "2000+"
)

// Filter narrows the catalog. Empty or "All" fields match everything.
type Filter struct {
	Location   string `form:"location"`
	Type       string `form:"type"`
	PriceRange string `form:"priceRange"`
}

// BookingRequest reserves a machine from StartDate (YYYY-MM-DD) for Days.
type BookingRequest struct {
	MachineID string `json:"-"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	Days      int    `json:"days" validate:"required,gte=1,lte=60"`
}

// Booking is a confirmed reservation.
type Booking struct {
	ID          string    `json:"id"`
	MachineID   string    `json:"machineId"`
	MachineName string    `json:"machineName"`
	UserID      int64     `json:"userId"`
	StartDate   time.Time `json:"startDate"`
	Days        int       `json:"days"`
	TotalPrice  int       `json:"totalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository persists the catalog and bookings.
type Repository interface {
	ListMachines(ctx context.Context) ([]Machine, error)
	GetMachine(ctx context.Context, id string) (Machine, bool, error)
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	ListBookings(ctx context.Context, userID int64) ([]Booking, error)
}

//go:embed catalog.yaml
var rawCatalog []byte

// LoadCatalog decodes a machine list.
func LoadCatalog(r io.Reader) ([]Machine, error) {
	var doc struct {
		Machines []Machine `yaml:"machines"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(doc.Machines))
	for _, m := range doc.Machines {
		if m.ID == "" || m.PricePerDay <= 0 {
			return nil, fmt.Errorf("catalog: machine %q needs an id and a positive price", m.Name)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("catalog: duplicate machine id %q", m.ID)
		}
		seen[m.ID] = true
	}
	return doc.Machines, nil
}

// DefaultCatalog returns the embedded seed machines.
func DefaultCatalog() []Machine {
	machines, err := LoadCatalog(bytes.NewReader(rawCatalog))
	if err != nil {
		panic("rentals: " + err.Error())
	}
	return machines
}
