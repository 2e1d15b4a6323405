package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stayandpark/service-frontdesk/internal/domain"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Names of the unique constraints created by the migrations.
const (
	constraintPersonEmail            = "uq_persons_email"
	constraintPersonNationalID       = "uq_persons_national_id"
	constraintAttendanceEmployeeDate = "uq_attendance_employee_date"
)

// translateError maps store-level unique and check violations to domain
// errors. Everything else is returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
	case pgCheckViolation:
		return domain.NewValidationError("value rejected by constraint " + pgErr.ConstraintName)
	default:
		return err
	}
	switch pgErr.ConstraintName {
	case constraintPersonEmail:
		return domain.NewDuplicateError("person", "email")
	case constraintPersonNationalID:
		return domain.NewDuplicateError("person", "national id")
	case constraintAttendanceEmployeeDate:
		return domain.NewAlreadyCompleteError("attendance already recorded for today")
	default:
		return domain.NewConflictError("unique constraint " + pgErr.ConstraintName + " violated")
	}
}
