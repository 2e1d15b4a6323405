package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Transactor runs fn as one all-or-nothing unit of work.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher emits integration events after a unit of work commits.
// Implementations log delivery failures instead of returning them.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, subject string, data interface{})
}

// NoopPublisher discards events.
type NoopPublisher struct{}

// Publish implements EventPublisher.
func (NoopPublisher) Publish(context.Context, string, string, interface{}) {}

// TokenIssuer signs access tokens for authenticated persons.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email, role string) (string, error)
	AccessTTL() time.Duration
}

// Integration event types published on the frontdesk topic.
const (
	EventPersonRegistered     = "person.registered"
	EventReservationCreated   = "reservation.created"
	EventReservationFinished  = "reservation.finished"
	EventReservationCancelled = "reservation.cancelled"
	EventAttendanceClocked    = "attendance.clocked"
)

// PersonRegisteredEvent is the payload of person.registered.
type PersonRegisteredEvent struct {
	PersonID     uuid.UUID `json:"person_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Guest        bool      `json:"guest"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ReservationEvent is the payload of the reservation.* events.
type ReservationEvent struct {
	ReservationID uuid.UUID  `json:"reservation_id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	EmployeeID    *uuid.UUID `json:"employee_id,omitempty"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	PlateNumber   string     `json:"plate_number,omitempty"`
	FinalAmount   string     `json:"final_amount"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// AttendanceClockedEvent is the payload of attendance.clocked.
type AttendanceClockedEvent struct {
	RecordID   uuid.UUID `json:"record_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Action     string    `json:"action"`
	At         time.Time `json:"at"`
	TotalHours string    `json:"total_hours,omitempty"`
}
