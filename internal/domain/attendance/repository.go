package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordRepository defines persistence operations for attendance records.
type RecordRepository interface {
	// FindByEmployeeAndDate returns a NotFoundError when the day has no record.
	FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*Record, error)

	// ListByEmployee returns the most recent records first.
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit int) ([]*Record, error)

	// ListByDate returns every record for the date.
	ListByDate(ctx context.Context, date time.Time) ([]*Record, error)

	// CountOpenOnDate counts records on the date still missing a clock-out.
	CountOpenOnDate(ctx context.Context, date time.Time) (int64, error)

	// Save inserts a new record. A second record for the same employee and
	// date is rejected with AlreadyCompleteError.
	Save(ctx context.Context, r *Record) error

	// Update persists the clock-out.
	Update(ctx context.Context, r *Record) error
}
