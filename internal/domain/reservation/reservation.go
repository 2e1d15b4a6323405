package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/pricing"
)

// ServiceKind is what is being booked.
type ServiceKind string

const (
	KindLodging ServiceKind = "LODGING"
	KindParking ServiceKind = "PARKING"
)

// ParseServiceKind validates a service kind name.
func ParseServiceKind(s string) (ServiceKind, error) {
	switch k := ServiceKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindLodging, KindParking:
		return k, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid service kind: %s", s))
}

// Status represents the lifecycle state of a reservation.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFinished  Status = "FINISHED"
	StatusCancelled Status = "CANCELLED"
)

// Descriptors are the kind-specific labels. They are not cross-checked
// against the service kind.
type Descriptors struct {
	RoomNumber  string
	PlateNumber string
	SpaceNumber string
}

// Normalize trims the fields and upper-cases the plate.
func (d Descriptors) Normalize() Descriptors {
	return Descriptors{
		RoomNumber:  strings.TrimSpace(d.RoomNumber),
		PlateNumber: strings.ToUpper(strings.TrimSpace(d.PlateNumber)),
		SpaceNumber: strings.TrimSpace(d.SpaceNumber),
	}
}

// Params holds everything needed to open a reservation.
type Params struct {
	CustomerID      uuid.UUID
	EmployeeID      *uuid.UUID
	Kind            ServiceKind
	Descriptors     Descriptors
	ExpectedExit    *time.Time
	BaseAmount      decimal.Decimal
	DiscountPercent decimal.Decimal
	Notes           string
}

// Reservation is the aggregate root for one booked room or parking space.
type Reservation struct {
	id              uuid.UUID
	customerID      uuid.UUID
	employeeID      *uuid.UUID
	kind            ServiceKind
	descriptors     Descriptors
	entryAt         time.Time
	expectedExitAt  *time.Time
	actualExitAt    *time.Time
	baseAmount      decimal.Decimal
	discountPercent decimal.Decimal
	finalAmount     decimal.Decimal
	status          Status
	notes           string
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewReservation opens an ACTIVE reservation entered at now. The final
// amount is always derived from the base amount and discount.
func NewReservation(p Params, now time.Time) (*Reservation, error) {
	if p.CustomerID == uuid.Nil {
		return nil, domain.NewValidationError("customer is required")
	}
	if _, err := ParseServiceKind(string(p.Kind)); err != nil {
		return nil, err
	}
	base := pricing.Round(p.BaseAmount)
	pct := pricing.Round(p.DiscountPercent)
	final, err := pricing.ComputeFinalAmount(base, pct)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	if p.ExpectedExit != nil && p.ExpectedExit.Before(now) {
		return nil, domain.NewValidationError("expected exit must not be before entry")
	}

	return &Reservation{
		id:              uuid.New(),
		customerID:      p.CustomerID,
		employeeID:      p.EmployeeID,
		kind:            p.Kind,
		descriptors:     p.Descriptors.Normalize(),
		entryAt:         now,
		expectedExitAt:  p.ExpectedExit,
		baseAmount:      base,
		discountPercent: pct,
		finalAmount:     final,
		status:          StatusActive,
		notes:           strings.TrimSpace(p.Notes),
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// --- Getters ---

func (r *Reservation) ID() uuid.UUID                    { return r.id }
func (r *Reservation) CustomerID() uuid.UUID            { return r.customerID }
func (r *Reservation) EmployeeID() *uuid.UUID           { return r.employeeID }
func (r *Reservation) Kind() ServiceKind                { return r.kind }
func (r *Reservation) Descriptors() Descriptors         { return r.descriptors }
func (r *Reservation) EntryAt() time.Time               { return r.entryAt }
func (r *Reservation) ExpectedExitAt() *time.Time       { return r.expectedExitAt }
func (r *Reservation) ActualExitAt() *time.Time         { return r.actualExitAt }
func (r *Reservation) BaseAmount() decimal.Decimal      { return r.baseAmount }
func (r *Reservation) DiscountPercent() decimal.Decimal { return r.discountPercent }
func (r *Reservation) FinalAmount() decimal.Decimal     { return r.finalAmount }
func (r *Reservation) Status() Status                   { return r.status }
func (r *Reservation) Notes() string                    { return r.notes }
func (r *Reservation) Version() int64                   { return r.version }
func (r *Reservation) CreatedAt() time.Time             { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time             { return r.updatedAt }

// --- State transitions ---

// Finish closes an ACTIVE reservation, recording the actual exit time.
func (r *Reservation) Finish(exitAt time.Time) error {
	if r.status != StatusActive {
		return domain.NewInvalidStateError(string(r.status), string(StatusFinished))
	}
	exitAt = exitAt.UTC()
	if exitAt.Before(r.entryAt) {
		return domain.NewValidationError("exit must not be before entry")
	}
	r.status = StatusFinished
	r.actualExitAt = &exitAt
	r.touch(exitAt)
	return nil
}

// Cancel abandons an ACTIVE reservation. The reason is appended to notes.
func (r *Reservation) Cancel(reason string, now time.Time) error {
	if r.status != StatusActive {
		return domain.NewInvalidStateError(string(r.status), string(StatusCancelled))
	}
	r.status = StatusCancelled
	if reason = strings.TrimSpace(reason); reason != "" {
		if r.notes != "" {
			r.notes += "\n"
		}
		r.notes += "cancelled: " + reason
	}
	r.touch(now.UTC())
	return nil
}

// touch bumps the version used for the conditional update.
func (r *Reservation) touch(now time.Time) {
	r.version++
	r.updatedAt = now
}

// Reconstitute rebuilds a Reservation from persisted data.
func Reconstitute(
	id, customerID uuid.UUID,
	employeeID *uuid.UUID,
	kind ServiceKind,
	descriptors Descriptors,
	entryAt time.Time,
	expectedExitAt, actualExitAt *time.Time,
	baseAmount, discountPercent, finalAmount decimal.Decimal,
	status Status,
	notes string,
	version int64,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:              id,
		customerID:      customerID,
		employeeID:      employeeID,
		kind:            kind,
		descriptors:     descriptors,
		entryAt:         entryAt,
		expectedExitAt:  expectedExitAt,
		actualExitAt:    actualExitAt,
		baseAmount:      baseAmount,
		discountPercent: discountPercent,
		finalAmount:     finalAmount,
		status:          status,
		notes:           notes,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}
