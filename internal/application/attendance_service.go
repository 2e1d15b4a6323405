package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/attendance"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
	"github.com/stayandpark/service-frontdesk/internal/platform/metrics"
)

// ClockResultDTO describes the outcome of a clock action.
type ClockResultDTO struct {
	Action     string    `json:"action"`
	At         time.Time `json:"at"`
	TotalHours string    `json:"total_hours,omitempty"`
	Message    string    `json:"message"`
}

// AttendanceDTO is the API response representation of a day's record.
type AttendanceDTO struct {
	ID         uuid.UUID  `json:"id"`
	EmployeeID uuid.UUID  `json:"employee_id"`
	WorkDate   string     `json:"work_date"`
	ClockInAt  time.Time  `json:"clock_in_at"`
	ClockOutAt *time.Time `json:"clock_out_at,omitempty"`
	TotalHours string     `json:"total_hours,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// PresenceDTO is one line of the admin presence report.
type PresenceDTO struct {
	EmployeeID uuid.UUID  `json:"employee_id"`
	Name       string     `json:"name"`
	Present    bool       `json:"present"`
	ClockInAt  *time.Time `json:"clock_in_at,omitempty"`
	ClockOutAt *time.Time `json:"clock_out_at,omitempty"`
}

// AttendanceService handles the daily clock-in / clock-out ledger.
type AttendanceService struct {
	records      attendance.RecordRepository
	persons      identity.PersonRepository
	tx           Transactor
	clock        domain.Clock
	publisher    EventPublisher
	metrics      *metrics.Metrics
	historyLimit int
	logger       *zap.Logger
}

// NewAttendanceService creates a new AttendanceService. historyLimit <= 0
// falls back to attendance.DefaultHistoryLimit.
func NewAttendanceService(
	records attendance.RecordRepository,
	persons identity.PersonRepository,
	tx Transactor,
	clock domain.Clock,
	publisher EventPublisher,
	m *metrics.Metrics,
	historyLimit int,
	logger *zap.Logger,
) *AttendanceService {
	if historyLimit <= 0 {
		historyLimit = attendance.DefaultHistoryLimit
	}
	return &AttendanceService{
		records:      records,
		persons:      persons,
		tx:           tx,
		clock:        clock,
		publisher:    publisher,
		metrics:      m,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// ClockAction records the next step of today's ledger for the employee:
// clock-in when there is no record, clock-out when it is open, and
// AlreadyCompleteError once both are recorded.
func (s *AttendanceService) ClockAction(ctx context.Context, employeeID uuid.UUID) (*ClockResultDTO, error) {
	now := s.clock.Now()

	var (
		rec    *attendance.Record
		action attendance.Action
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := loadPrincipal(ctx, s.persons, employeeID, "clock action", identity.RoleEmployee); err != nil {
			return err
		}

		existing, err := s.records.FindByEmployeeAndDate(ctx, employeeID, domain.DateOf(now))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			rec = attendance.ClockIn(employeeID, now)
			action = attendance.ClockedIn
			return s.records.Save(ctx, rec)
		case err != nil:
			return err
		}

		rec = existing
		if err := rec.ClockOut(now); err != nil {
			return err
		}
		action = attendance.ClockedOut
		return s.records.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	result := &ClockResultDTO{Action: string(action), At: now}
	event := AttendanceClockedEvent{RecordID: rec.ID(), EmployeeID: employeeID, Action: string(action), At: now}
	if action == attendance.ClockedIn {
		result.Message = "clock-in recorded"
	} else {
		result.Message = "clock-out recorded"
		result.TotalHours = money(*rec.TotalHours())
		event.TotalHours = result.TotalHours
	}

	s.logger.Info("attendance "+result.Message,
		zap.String("employee_id", employeeID.String()),
		zap.String("total_hours", result.TotalHours),
	)
	s.metrics.ObserveClock(string(action))
	s.publisher.Publish(ctx, EventAttendanceClocked, rec.ID().String(), event)
	return result, nil
}

// MyHistory returns the employee's most recent records first. limit <= 0
// uses the configured default.
func (s *AttendanceService) MyHistory(ctx context.Context, employeeID uuid.UUID, limit int) ([]*AttendanceDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, employeeID, "attendance history", identity.RoleEmployee); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.historyLimit
	}
	records, err := s.records.ListByEmployee(ctx, employeeID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*AttendanceDTO, len(records))
	for i, r := range records {
		dtos[i] = toAttendanceDTO(r)
	}
	return dtos, nil
}

// PresenceToday reports whether the employee is clocked in and not yet out.
func (s *AttendanceService) PresenceToday(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	if _, err := loadPrincipal(ctx, s.persons, employeeID, "presence today", identity.RoleEmployee); err != nil {
		return false, err
	}
	rec, err := s.records.FindByEmployeeAndDate(ctx, employeeID, domain.DateOf(s.clock.Now()))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.IsOpen(), nil
}

// PresenceReport lists every active employee with today's clock times (admin only).
func (s *AttendanceService) PresenceReport(ctx context.Context, adminID uuid.UUID) ([]*PresenceDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, adminID, "presence report", identity.RoleAdmin); err != nil {
		return nil, err
	}

	employees, err := s.persons.List(ctx, identity.PersonFilter{Role: identity.RoleEmployee, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	today, err := s.records.ListByDate(ctx, domain.DateOf(s.clock.Now()))
	if err != nil {
		return nil, err
	}
	byEmployee := make(map[uuid.UUID]*attendance.Record, len(today))
	for _, r := range today {
		byEmployee[r.EmployeeID()] = r
	}

	report := make([]*PresenceDTO, len(employees))
	for i, e := range employees {
		line := &PresenceDTO{EmployeeID: e.ID(), Name: e.Name()}
		if r, ok := byEmployee[e.ID()]; ok {
			in := r.ClockInAt()
			line.ClockInAt = &in
			line.ClockOutAt = r.ClockOutAt()
			line.Present = r.IsOpen()
		}
		report[i] = line
	}
	return report, nil
}

func toAttendanceDTO(r *attendance.Record) *AttendanceDTO {
	dto := &AttendanceDTO{
		ID:         r.ID(),
		EmployeeID: r.EmployeeID(),
		WorkDate:   r.WorkDate().Format(time.DateOnly),
		ClockInAt:  r.ClockInAt(),
		ClockOutAt: r.ClockOutAt(),
		Notes:      r.Notes(),
	}
	if h := r.TotalHours(); h != nil {
		dto.TotalHours = money(*h)
	}
	return dto
}
