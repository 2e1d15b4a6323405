package reservation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationRepository defines the persistence contract for Reservation aggregates.
type ReservationRepository interface {
	// FindByID retrieves a reservation by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindActiveByPlate returns the ACTIVE parking reservation for a plate.
	FindActiveByPlate(ctx context.Context, plate string) (*Reservation, error)

	// ListByCustomer returns a customer's reservations, newest entry first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Reservation, error)

	// ListByEmployee returns reservations an employee handled, newest entry first.
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*Reservation, error)

	// ListAll returns every reservation, newest entry first.
	ListAll(ctx context.Context) ([]*Reservation, error)

	CountByStatus(ctx context.Context, status Status) (int64, error)

	// SumFinalAmount totals final amounts of reservations in the status.
	SumFinalAmount(ctx context.Context, status Status) (decimal.Decimal, error)

	// Save persists a new reservation aggregate.
	Save(ctx context.Context, r *Reservation) error

	// Update persists a status transition, conditioned on the previous version.
	Update(ctx context.Context, r *Reservation) error
}
