package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/reservation"
)

// ReservationModel is the GORM persistence model for the reservations table.
type ReservationModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployeeID      *uuid.UUID      `gorm:"type:uuid;index"`
	Kind            string          `gorm:"type:varchar(20);not null"`
	RoomNumber      string          `gorm:"type:varchar(10)"`
	PlateNumber     string          `gorm:"type:varchar(10);index"`
	SpaceNumber     string          `gorm:"type:varchar(10)"`
	EntryAt         time.Time       `gorm:"type:timestamptz;not null;index"`
	ExpectedExitAt  *time.Time      `gorm:"type:timestamptz"`
	ActualExitAt    *time.Time      `gorm:"type:timestamptz"`
	BaseAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null;check:base_amount >= 0"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0;check:discount_percent BETWEEN 0 AND 100"`
	FinalAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null;check:final_amount >= 0"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	Notes           string          `gorm:"type:text"`
	Version         int64           `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"type:timestamptz;not null"`
	UpdatedAt       time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (ReservationModel) TableName() string { return "reservations" }

// ReservationRepositoryImpl is the GORM-based implementation of reservation.ReservationRepository.
type ReservationRepositoryImpl struct {
	db *gorm.DB
}

// NewReservationRepository creates a new GORM-based reservation repository.
func NewReservationRepository(db *gorm.DB) *ReservationRepositoryImpl {
	return &ReservationRepositoryImpl{db: db}
}

// FindByID retrieves a reservation by its unique ID.
func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("reservation", id.String())
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return toReservationDomain(&model), nil
}

// FindActiveByPlate returns the newest ACTIVE parking reservation for the plate.
func (r *ReservationRepositoryImpl) FindActiveByPlate(ctx context.Context, plate string) (*reservation.Reservation, error) {
	var model ReservationModel
	err := conn(ctx, r.db).
		Where("kind = ? AND status = ? AND plate_number = ?",
			string(reservation.KindParking), string(reservation.StatusActive), plate).
		Order("entry_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("active parking reservation for plate", plate)
		}
		return nil, fmt.Errorf("find reservation by plate: %w", err)
	}
	return toReservationDomain(&model), nil
}

// ListByCustomer returns a customer's reservations, newest entry first.
func (r *ReservationRepositoryImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx, conn(ctx, r.db).Where("customer_id = ?", customerID))
}

// ListByEmployee returns reservations the employee handled, newest entry first.
func (r *ReservationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx, conn(ctx, r.db).Where("employee_id = ?", employeeID))
}

// ListAll returns every reservation, newest entry first.
func (r *ReservationRepositoryImpl) ListAll(ctx context.Context) ([]*reservation.Reservation, error) {
	return r.list(ctx, conn(ctx, r.db))
}

func (r *ReservationRepositoryImpl) list(_ context.Context, q *gorm.DB) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	if err := q.Order("entry_at DESC").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	out := make([]*reservation.Reservation, len(models))
	for i := range models {
		out[i] = toReservationDomain(&models[i])
	}
	return out, nil
}

// CountByStatus counts reservations in status.
func (r *ReservationRepositoryImpl) CountByStatus(ctx context.Context, status reservation.Status) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&ReservationModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return count, nil
}

// SumFinalAmount totals the final amount of reservations in status.
func (r *ReservationRepositoryImpl) SumFinalAmount(ctx context.Context, status reservation.Status) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).Model(&ReservationModel{}).
		Where("status = ?", string(status)).
		Select("COALESCE(SUM(final_amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, fmt.Errorf("sum reservation amounts: %w", err)
	}
	return row.Total, nil
}

// Save persists a new reservation.
func (r *ReservationRepositoryImpl) Save(ctx context.Context, res *reservation.Reservation) error {
	if err := conn(ctx, r.db).Create(toReservationModel(res)).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Update persists a status transition with optimistic locking.
func (r *ReservationRepositoryImpl) Update(ctx context.Context, res *reservation.Reservation) error {
	previousVersion := res.Version() - 1

	result := conn(ctx, r.db).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", res.ID(), previousVersion).
		Updates(map[string]interface{}{
			"status":         string(res.Status()),
			"actual_exit_at": res.ActualExitAt(),
			"notes":          res.Notes(),
			"version":        res.Version(),
			"updated_at":     res.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("update reservation: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("reservation was modified by another transaction")
	}
	return nil
}

func toReservationModel(res *reservation.Reservation) *ReservationModel {
	d := res.Descriptors()
	return &ReservationModel{
		ID:              res.ID(),
		CustomerID:      res.CustomerID(),
		EmployeeID:      res.EmployeeID(),
		Kind:            string(res.Kind()),
		RoomNumber:      d.RoomNumber,
		PlateNumber:     d.PlateNumber,
		SpaceNumber:     d.SpaceNumber,
		EntryAt:         res.EntryAt(),
		ExpectedExitAt:  res.ExpectedExitAt(),
		ActualExitAt:    res.ActualExitAt(),
		BaseAmount:      res.BaseAmount(),
		DiscountPercent: res.DiscountPercent(),
		FinalAmount:     res.FinalAmount(),
		Status:          string(res.Status()),
		Notes:           res.Notes(),
		Version:         res.Version(),
		CreatedAt:       res.CreatedAt(),
		UpdatedAt:       res.UpdatedAt(),
	}
}

func toReservationDomain(m *ReservationModel) *reservation.Reservation {
	return reservation.Reconstitute(
		m.ID, m.CustomerID, m.EmployeeID,
		reservation.ServiceKind(m.Kind),
		reservation.Descriptors{RoomNumber: m.RoomNumber, PlateNumber: m.PlateNumber, SpaceNumber: m.SpaceNumber},
		m.EntryAt.UTC(), utcPtr(m.ExpectedExitAt), utcPtr(m.ActualExitAt),
		m.BaseAmount, m.DiscountPercent, m.FinalAmount,
		reservation.Status(m.Status),
		m.Notes, m.Version,
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
