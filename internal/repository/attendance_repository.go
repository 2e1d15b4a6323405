package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/attendance"
)

// AttendanceModel is the GORM persistence model for the attendance_records table.
type AttendanceModel struct {
	ID         uuid.UUID           `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	WorkDate   datatypes.Date      `gorm:"not null;uniqueIndex:uq_attendance_employee_date,priority:2"`
	ClockInAt  time.Time           `gorm:"type:timestamptz;not null"`
	ClockOutAt *time.Time          `gorm:"type:timestamptz"`
	TotalHours decimal.NullDecimal `gorm:"type:numeric(5,2)"`
	Notes      string              `gorm:"type:text"`
	CreatedAt  time.Time           `gorm:"type:timestamptz;not null"`
	UpdatedAt  time.Time           `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (AttendanceModel) TableName() string { return "attendance_records" }

// AttendanceRepositoryImpl is the GORM-based implementation of attendance.RecordRepository.
type AttendanceRepositoryImpl struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new GORM-based attendance repository.
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepositoryImpl {
	return &AttendanceRepositoryImpl{db: db}
}

// FindByEmployeeAndDate returns the employee's record for the date.
func (r *AttendanceRepositoryImpl) FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*attendance.Record, error) {
	var model AttendanceModel
	err := conn(ctx, r.db).
		Where("employee_id = ? AND work_date = ?", employeeID, datatypes.Date(date)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("attendance record", date.Format(time.DateOnly))
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return toAttendanceDomain(&model), nil
}

// ListByEmployee returns the employee's most recent records first.
func (r *AttendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit int) ([]*attendance.Record, error) {
	var models []AttendanceModel
	err := conn(ctx, r.db).
		Where("employee_id = ?", employeeID).
		Order("work_date DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return toAttendanceDomains(models), nil
}

// ListByDate returns every record for the date.
func (r *AttendanceRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]*attendance.Record, error) {
	var models []AttendanceModel
	if err := conn(ctx, r.db).
		Where("work_date = ?", datatypes.Date(date)).
		Order("clock_in_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return toAttendanceDomains(models), nil
}

// CountOpenOnDate counts records for the date with no clock-out.
func (r *AttendanceRepositoryImpl) CountOpenOnDate(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&AttendanceModel{}).
		Where("work_date = ? AND clock_out_at IS NULL", datatypes.Date(date)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count open attendance: %w", err)
	}
	return count, nil
}

// Save inserts a new record.
func (r *AttendanceRepositoryImpl) Save(ctx context.Context, rec *attendance.Record) error {
	if err := conn(ctx, r.db).Create(toAttendanceModel(rec)).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Update writes the clock-out. A record already closed in the store is left untouched.
func (r *AttendanceRepositoryImpl) Update(ctx context.Context, rec *attendance.Record) error {
	result := conn(ctx, r.db).Model(&AttendanceModel{}).
		Where("id = ? AND clock_out_at IS NULL", rec.ID()).
		Updates(map[string]interface{}{
			"clock_out_at": rec.ClockOutAt(),
			"total_hours":  nullDecimal(rec.TotalHours()),
			"notes":        rec.Notes(),
			"updated_at":   rec.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("update attendance record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewAlreadyCompleteError("attendance already completed for today")
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func toAttendanceModel(rec *attendance.Record) *AttendanceModel {
	return &AttendanceModel{
		ID:         rec.ID(),
		EmployeeID: rec.EmployeeID(),
		WorkDate:   datatypes.Date(rec.WorkDate()),
		ClockInAt:  rec.ClockInAt(),
		ClockOutAt: rec.ClockOutAt(),
		TotalHours: nullDecimal(rec.TotalHours()),
		Notes:      rec.Notes(),
		CreatedAt:  rec.CreatedAt(),
		UpdatedAt:  rec.UpdatedAt(),
	}
}

func toAttendanceDomain(m *AttendanceModel) *attendance.Record {
	var hours *decimal.Decimal
	if m.TotalHours.Valid {
		h := m.TotalHours.Decimal
		hours = &h
	}
	return attendance.Reconstruct(
		m.ID, m.EmployeeID,
		domain.DateOf(time.Time(m.WorkDate)),
		m.ClockInAt.UTC(), utcPtr(m.ClockOutAt), hours,
		m.Notes, m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	)
}

func toAttendanceDomains(models []AttendanceModel) []*attendance.Record {
	out := make([]*attendance.Record, len(models))
	for i := range models {
		out[i] = toAttendanceDomain(&models[i])
	}
	return out
}
