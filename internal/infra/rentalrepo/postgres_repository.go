package rentalrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/jeevamithra/internal/domain/rentals"
)

// Schema creates the marketplace tables when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS rental_machines (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	image_url       TEXT NOT NULL DEFAULT '',
	price_per_day   INTEGER NOT NULL,
	location        TEXT NOT NULL,
	available_dates TEXT NOT NULL DEFAULT '',
	rating          DOUBLE PRECISION NOT NULL DEFAULT 0,
	machine_type    TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS rental_bookings (
	id           UUID PRIMARY KEY,
	machine_id   TEXT NOT NULL REFERENCES rental_machines(id),
	machine_name TEXT NOT NULL,
	user_id      BIGINT NOT NULL,
	start_date   DATE NOT NULL,
	days         INTEGER NOT NULL,
	total_price  INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS rental_bookings_user_idx ON rental_bookings (user_id, created_at DESC);`

const machineColumns = `id, name, image_url, price_per_day, location, available_dates, rating, machine_type, description`

// PostgresRepository persists the catalog and bookings in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies Schema and inserts any seed machines not yet present.
func (r *PostgresRepository) Migrate(ctx context.Context, seed []rentals.Machine) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply rentals schema: %w", err)
	}
	batch := &pgx.Batch{}
	for _, m := range seed {
		batch.Queue(`
			INSERT INTO rental_machines (`+machineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING`,
			m.ID, m.Name, m.ImageURL, m.PricePerDay, m.Location, m.AvailableDates, m.Rating, m.Type, m.Description)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed rental machines: %w", err)
	}
	return nil
}

// ListMachines returns the catalog ordered by id.
func (r *PostgresRepository) ListMachines(ctx context.Context) ([]rentals.Machine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+machineColumns+` FROM rental_machines ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []rentals.Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMachine looks a machine up by id.
func (r *PostgresRepository) GetMachine(ctx context.Context, id string) (rentals.Machine, bool, error) {
	m, err := scanMachine(r.pool.QueryRow(ctx, `SELECT `+machineColumns+` FROM rental_machines WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return rentals.Machine{}, false, nil
	}
	if err != nil {
		return rentals.Machine{}, false, err
	}
	return m, true, nil
}

// CreateBooking inserts b.
func (r *PostgresRepository) CreateBooking(ctx context.Context, b rentals.Booking) (rentals.Booking, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rental_bookings (id, machine_id, machine_name, user_id, start_date, days, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.MachineID, b.MachineName, b.UserID, b.StartDate, b.Days, b.TotalPrice, b.CreatedAt)
	if err != nil {
		return rentals.Booking{}, err
	}
	return b, nil
}

// ListBookings returns the user's bookings, newest first.
func (r *PostgresRepository) ListBookings(ctx context.Context, userID int64) ([]rentals.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, machine_id, machine_name, user_id, start_date, days, total_price, created_at
		FROM rental_bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []rentals.Booking
	for rows.Next() {
		var b rentals.Booking
		if err := rows.Scan(&b.ID, &b.MachineID, &b.MachineName, &b.UserID, &b.StartDate, &b.Days, &b.TotalPrice, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.CreatedAt = b.CreatedAt.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanMachine(row pgx.Row) (rentals.Machine, error) {
	var m rentals.Machine
	err := row.Scan(&m.ID, &m.Name, &m.ImageURL, &m.PricePerDay, &m.Location, &m.AvailableDates, &m.Rating, &m.Type, &m.Description)
	return m, err
}

var _ rentals.Repository = (*PostgresRepository)(nil)
