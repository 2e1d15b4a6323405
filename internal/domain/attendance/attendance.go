package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/pricing"
)

// Action is the outcome of a clock action.
type Action string

const (
	ClockedIn  Action = "CLOCKED_IN"
	ClockedOut Action = "CLOCKED_OUT"
)

// DefaultHistoryLimit is how many days MyHistory returns by default.
const DefaultHistoryLimit = 30

var secondsPerHour = decimal.NewFromInt(3600)

// Record is one employee's clock-in/clock-out pair for one UTC calendar day.
type Record struct {
	id         uuid.UUID
	employeeID uuid.UUID
	workDate   time.Time
	clockInAt  time.Time
	clockOutAt *time.Time
	totalHours *decimal.Decimal
	notes      string
	createdAt  time.Time
	updatedAt  time.Time
}

// ClockIn opens the record for the day containing now.
func ClockIn(employeeID uuid.UUID, now time.Time) *Record {
	now = now.UTC()
	return &Record{
		id:         uuid.New(),
		employeeID: employeeID,
		workDate:   domain.DateOf(now),
		clockInAt:  now,
		createdAt:  now,
		updatedAt:  now,
	}
}

// Reconstruct rebuilds a Record from persistence.
func Reconstruct(id, employeeID uuid.UUID, workDate, clockInAt time.Time, clockOutAt *time.Time, totalHours *decimal.Decimal, notes string, createdAt, updatedAt time.Time) *Record {
	return &Record{
		id: id, employeeID: employeeID, workDate: workDate,
		clockInAt: clockInAt, clockOutAt: clockOutAt, totalHours: totalHours,
		notes: notes, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// IsOpen is true while clock-out is unset.
func (r *Record) IsOpen() bool { return r.clockOutAt == nil }

// ClockOut closes the record and computes total hours. A closed record
// cannot be clocked out again.
func (r *Record) ClockOut(now time.Time) error {
	if !r.IsOpen() {
		return domain.NewAlreadyCompleteError("attendance for today is already complete")
	}
	now = now.UTC()
	if now.Before(r.clockInAt) {
		return domain.NewValidationError("clock-out must not be before clock-in")
	}
	hours := HoursBetween(r.clockInAt, now)
	r.clockOutAt = &now
	r.totalHours = &hours
	r.updatedAt = now
	return nil
}

// HoursBetween is the elapsed time in hours, rounded to 2 places.
func HoursBetween(from, to time.Time) decimal.Decimal {
	elapsed := decimal.New(int64(to.Sub(from)/time.Millisecond), -3)
	return pricing.Round(elapsed.Div(secondsPerHour))
}

// Getters.
func (r *Record) ID() uuid.UUID                { return r.id }
func (r *Record) EmployeeID() uuid.UUID        { return r.employeeID }
func (r *Record) WorkDate() time.Time          { return r.workDate }
func (r *Record) ClockInAt() time.Time         { return r.clockInAt }
func (r *Record) ClockOutAt() *time.Time       { return r.clockOutAt }
func (r *Record) TotalHours() *decimal.Decimal { return r.totalHours }
func (r *Record) Notes() string                { return r.notes }
func (r *Record) CreatedAt() time.Time         { return r.createdAt }
func (r *Record) UpdatedAt() time.Time         { return r.updatedAt }
