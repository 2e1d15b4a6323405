package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/attendance"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
	"github.com/stayandpark/service-frontdesk/internal/domain/reservation"
)

const (
	// DefaultFrequentMonths is the look-back window of FrequentCustomers.
	DefaultFrequentMonths = 12
	// MaxFrequentMonths caps the window; larger values are clamped.
	MaxFrequentMonths    = 120
	frequentCustomersTop = 10
	daysPerMonth         = 30
)

// StatsDTO is the admin dashboard summary.
type StatsDTO struct {
	Customers          int64  `json:"customers"`
	Employees          int64  `json:"employees"`
	Admins             int64  `json:"admins"`
	ActiveReservations int64  `json:"active_reservations"`
	Revenue            string `json:"revenue"`
	EmployeesPresent   int64  `json:"employees_present"`
}

// FrequentCustomerDTO is one entry of the frequent customers ranking.
type FrequentCustomerDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	VisitCount  int       `json:"visit_count"`
	LastVisitAt time.Time `json:"last_visit_at"`
}

// ReportService builds the admin reports.
type ReportService struct {
	persons      identity.PersonRepository
	reservations reservation.ReservationRepository
	records      attendance.RecordRepository
	clock        domain.Clock
	logger       *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	persons identity.PersonRepository,
	reservations reservation.ReservationRepository,
	records attendance.RecordRepository,
	clock domain.Clock,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{persons: persons, reservations: reservations, records: records, clock: clock, logger: logger}
}

// Statistics summarizes persons, open reservations, revenue of finished
// reservations and employees currently clocked in (admin only).
func (s *ReportService) Statistics(ctx context.Context, adminID uuid.UUID) (*StatsDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, adminID, "statistics", identity.RoleAdmin); err != nil {
		return nil, err
	}

	byRole, err := s.persons.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.reservations.CountByStatus(ctx, reservation.StatusActive)
	if err != nil {
		return nil, err
	}
	revenue, err := s.reservations.SumFinalAmount(ctx, reservation.StatusFinished)
	if err != nil {
		return nil, err
	}
	present, err := s.records.CountOpenOnDate(ctx, domain.DateOf(s.clock.Now()))
	if err != nil {
		return nil, err
	}

	return &StatsDTO{
		Customers:          byRole[identity.RoleCustomer],
		Employees:          byRole[identity.RoleEmployee],
		Admins:             byRole[identity.RoleAdmin],
		ActiveReservations: active,
		Revenue:            money(revenue),
		EmployeesPresent:   present,
	}, nil
}

// FrequentCustomers ranks the top customers by visit count among those seen
// in the last months (30-day months). months <= 0 uses DefaultFrequentMonths
// and values above MaxFrequentMonths are clamped.
func (s *ReportService) FrequentCustomers(ctx context.Context, adminID uuid.UUID, months int) ([]*FrequentCustomerDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, adminID, "frequent customers", identity.RoleAdmin); err != nil {
		return nil, err
	}
	if months <= 0 {
		months = DefaultFrequentMonths
	}
	months = min(months, MaxFrequentMonths)
	since := s.clock.Now().AddDate(0, 0, -daysPerMonth*months)

	customers, err := s.persons.ListFrequentCustomers(ctx, since, frequentCustomersTop)
	if err != nil {
		return nil, err
	}
	out := make([]*FrequentCustomerDTO, len(customers))
	for i, c := range customers {
		out[i] = &FrequentCustomerDTO{
			ID:          c.ID(),
			Name:        c.Name(),
			Email:       c.Email(),
			VisitCount:  c.VisitCount(),
			LastVisitAt: c.LastVisitAt(),
		}
	}
	return out, nil
}
