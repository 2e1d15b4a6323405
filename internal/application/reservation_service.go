package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/adapter"
	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
	"github.com/stayandpark/service-frontdesk/internal/domain/pricing"
	"github.com/stayandpark/service-frontdesk/internal/domain/reservation"
	"github.com/stayandpark/service-frontdesk/internal/platform/metrics"
)

// Default checkout prices when a guest submits no base amount.
var defaultBaseAmounts = map[reservation.ServiceKind]decimal.Decimal{
	reservation.KindLodging: decimal.NewFromInt(250),
	reservation.KindParking: decimal.NewFromInt(35),
}

const guestPasswordBytes = 12

// CreateReservationRequest holds data for a customer's own reservation.
type CreateReservationRequest struct {
	Kind         string     `json:"kind" binding:"required"`
	RoomNumber   string     `json:"room_number"`
	PlateNumber  string     `json:"plate_number"`
	SpaceNumber  string     `json:"space_number"`
	ExpectedExit *time.Time `json:"expected_exit"`
	BaseAmount   string     `json:"base_amount" binding:"required"`
	Notes        string     `json:"notes"`
}

// StaffReservationRequest holds data for a reservation opened by an employee.
type StaffReservationRequest struct {
	CustomerNationalID string     `json:"customer_national_id" binding:"required"`
	Kind               string     `json:"kind" binding:"required"`
	RoomNumber         string     `json:"room_number"`
	PlateNumber        string     `json:"plate_number"`
	SpaceNumber        string     `json:"space_number"`
	ExpectedExit       *time.Time `json:"expected_exit"`
	BaseAmount         string     `json:"base_amount" binding:"required"`
	DiscountPercent    string     `json:"discount_percent"`
	Notes              string     `json:"notes"`
}

// GuestReservationRequest holds checkout data from a visitor without an account.
type GuestReservationRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	NationalID  string `json:"national_id" binding:"required"`
	Phone       string `json:"phone"`
	Kind        string `json:"kind" binding:"required"`
	RoomNumber  string `json:"room_number"`
	PlateNumber string `json:"plate_number"`
	SpaceNumber string `json:"space_number"`
	BaseAmount  string `json:"base_amount"`
}

// FinishReservationRequest optionally overrides the exit time.
type FinishReservationRequest struct {
	ExitAt *time.Time `json:"exit_at"`
}

// CancelReservationRequest carries the cancellation reason.
type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

// ReservationDTO is the API response representation of a reservation.
type ReservationDTO struct {
	ID              uuid.UUID  `json:"id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	EmployeeID      *uuid.UUID `json:"employee_id,omitempty"`
	Kind            string     `json:"kind"`
	RoomNumber      string     `json:"room_number,omitempty"`
	PlateNumber     string     `json:"plate_number,omitempty"`
	SpaceNumber     string     `json:"space_number,omitempty"`
	EntryAt         time.Time  `json:"entry_at"`
	ExpectedExitAt  *time.Time `json:"expected_exit_at,omitempty"`
	ActualExitAt    *time.Time `json:"actual_exit_at,omitempty"`
	BaseAmount      string     `json:"base_amount"`
	DiscountPercent string     `json:"discount_percent"`
	FinalAmount     string     `json:"final_amount"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
}

// GuestCheckoutDTO is returned by a guest checkout.
type GuestCheckoutDTO struct {
	Customer    *PersonDTO      `json:"customer"`
	Reservation *ReservationDTO `json:"reservation"`
}

// CreateReservationInput is the general form every caller reduces to.
type CreateReservationInput struct {
	CustomerID      uuid.UUID
	EmployeeID      *uuid.UUID
	Kind            reservation.ServiceKind
	Descriptors     reservation.Descriptors
	ExpectedExit    *time.Time
	BaseAmount      decimal.Decimal
	DiscountPercent decimal.Decimal
	Notes           string
}

// ReservationService handles the reservation lifecycle.
type ReservationService struct {
	reservations reservation.ReservationRepository
	persons      identity.PersonRepository
	hasher       adapter.PasswordHasher
	tx           Transactor
	clock        domain.Clock
	publisher    EventPublisher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	reservations reservation.ReservationRepository,
	persons identity.PersonRepository,
	hasher adapter.PasswordHasher,
	tx Transactor,
	clock domain.Clock,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		persons:      persons,
		hasher:       hasher,
		tx:           tx,
		clock:        clock,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// CreateReservation opens an ACTIVE reservation for an existing customer.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*ReservationDTO, error) {
	var res *reservation.Reservation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.create(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterCreate(ctx, res)
	return toReservationDTO(res), nil
}

func (s *ReservationService) create(ctx context.Context, in CreateReservationInput) (*reservation.Reservation, error) {
	customer, err := s.persons.FindByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if !identity.IsCustomer(customer) {
		return nil, domain.NewValidationError("reservations can only be opened for customers")
	}

	res, err := reservation.NewReservation(reservation.Params{
		CustomerID:      customer.ID(),
		EmployeeID:      in.EmployeeID,
		Kind:            in.Kind,
		Descriptors:     in.Descriptors,
		ExpectedExit:    in.ExpectedExit,
		BaseAmount:      in.BaseAmount,
		DiscountPercent: in.DiscountPercent,
		Notes:           in.Notes,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReservationService) afterCreate(ctx context.Context, res *reservation.Reservation) {
	s.logger.Info("reservation created",
		zap.String("reservation_id", res.ID().String()),
		zap.String("customer_id", res.CustomerID().String()),
		zap.String("kind", string(res.Kind())),
		zap.String("final_amount", money(res.FinalAmount())),
	)
	s.metrics.ObserveReservation(string(res.Kind()), string(res.Status()))
	s.publisher.Publish(ctx, EventReservationCreated, res.ID().String(), toReservationEvent(res, s.clock.Now()))
}

// CreateOwnReservation lets a customer book for themselves. No discount applies.
func (s *ReservationService) CreateOwnReservation(ctx context.Context, customerID uuid.UUID, req CreateReservationRequest) (*ReservationDTO, error) {
	customer, err := loadPrincipal(ctx, s.persons, customerID, "create own reservation", identity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	kind, err := reservation.ParseServiceKind(req.Kind)
	if err != nil {
		return nil, err
	}
	base, err := pricing.ParseAmount(req.BaseAmount)
	if err != nil {
		return nil, err
	}
	return s.CreateReservation(ctx, CreateReservationInput{
		CustomerID:      customer.ID(),
		Kind:            kind,
		Descriptors:     descriptors(req.RoomNumber, req.PlateNumber, req.SpaceNumber),
		ExpectedExit:    req.ExpectedExit,
		BaseAmount:      base,
		DiscountPercent: decimal.Zero,
		Notes:           req.Notes,
	})
}

// CreateReservationForCustomer lets an employee open a reservation for a
// customer identified by national id. The employee is recorded as handler.
func (s *ReservationService) CreateReservationForCustomer(ctx context.Context, employeeID uuid.UUID, req StaffReservationRequest) (*ReservationDTO, error) {
	employee, err := loadPrincipal(ctx, s.persons, employeeID, "create reservation for customer", identity.RoleEmployee)
	if err != nil {
		return nil, err
	}
	nationalID, err := identity.NormalizeNationalID(req.CustomerNationalID)
	if err != nil {
		return nil, err
	}
	customer, err := s.persons.FindByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	kind, err := reservation.ParseServiceKind(req.Kind)
	if err != nil {
		return nil, err
	}
	base, err := pricing.ParseAmount(req.BaseAmount)
	if err != nil {
		return nil, err
	}
	pct, err := pricing.ParsePercent(req.DiscountPercent)
	if err != nil {
		return nil, err
	}

	handler := employee.ID()
	return s.CreateReservation(ctx, CreateReservationInput{
		CustomerID:      customer.ID(),
		EmployeeID:      &handler,
		Kind:            kind,
		Descriptors:     descriptors(req.RoomNumber, req.PlateNumber, req.SpaceNumber),
		ExpectedExit:    req.ExpectedExit,
		BaseAmount:      base,
		DiscountPercent: pct,
		Notes:           req.Notes,
	})
}

// CreateGuestReservation creates a CUSTOMER account with a throwaway password
// and its first reservation in one transaction. Existing email or national id
// is rejected so the visitor logs in instead. No visit is registered.
func (s *ReservationService) CreateGuestReservation(ctx context.Context, req GuestReservationRequest) (*GuestCheckoutDTO, error) {
	kind, err := reservation.ParseServiceKind(req.Kind)
	if err != nil {
		return nil, err
	}
	base := defaultBaseAmounts[kind]
	if strings.TrimSpace(req.BaseAmount) != "" {
		if base, err = pricing.ParseAmount(req.BaseAmount); err != nil {
			return nil, err
		}
	}

	secret, err := adapter.RandomPassword(guestPasswordBytes)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash guest password: %w", err)
	}
	guest, err := identity.NewPerson(req.Name, req.Email, req.NationalID, req.Phone, hash, identity.RoleCustomer, s.clock.Now())
	if err != nil {
		return nil, err
	}

	var res *reservation.Reservation
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := ensureUnique(ctx, s.persons, guest.Email(), guest.NationalID()); err != nil {
			return err
		}
		if err := s.persons.Save(ctx, guest); err != nil {
			return err
		}
		created, err := s.create(ctx, CreateReservationInput{
			CustomerID:      guest.ID(),
			Kind:            kind,
			Descriptors:     descriptors(req.RoomNumber, req.PlateNumber, req.SpaceNumber),
			BaseAmount:      base,
			DiscountPercent: decimal.Zero,
		})
		res = created
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			s.logger.Info("guest checkout rejected, account exists")
		}
		return nil, err
	}

	s.metrics.ObserveRegistration(string(identity.RoleCustomer))
	s.publisher.Publish(ctx, EventPersonRegistered, guest.ID().String(), PersonRegisteredEvent{
		PersonID:     guest.ID(),
		Email:        guest.Email(),
		Role:         string(identity.RoleCustomer),
		Guest:        true,
		RegisteredAt: guest.RegisteredAt(),
	})
	s.afterCreate(ctx, res)
	return &GuestCheckoutDTO{Customer: toPersonDTO(guest), Reservation: toReservationDTO(res)}, nil
}

// ListReservationsForCustomer returns the customer's reservations, newest first.
func (s *ReservationService) ListReservationsForCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReservationDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, customerID, "list own reservations", identity.RoleCustomer); err != nil {
		return nil, err
	}
	list, err := s.reservations.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toReservationDTOs(list), nil
}

// ListReservationsHandledOrAll returns what an employee handled, or
// everything for an admin. Newest first.
func (s *ReservationService) ListReservationsHandledOrAll(ctx context.Context, actorID uuid.UUID) ([]*ReservationDTO, error) {
	actor, err := loadPrincipal(ctx, s.persons, actorID, "list reservations", identity.RoleEmployee, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var list []*reservation.Reservation
	if identity.IsAdmin(actor) {
		list, err = s.reservations.ListAll(ctx)
	} else {
		list, err = s.reservations.ListByEmployee(ctx, actor.ID())
	}
	if err != nil {
		return nil, err
	}
	return toReservationDTOs(list), nil
}

// FinishReservation closes an ACTIVE reservation. Exit defaults to now.
func (s *ReservationService) FinishReservation(ctx context.Context, actorID, reservationID uuid.UUID, req FinishReservationRequest) (*ReservationDTO, error) {
	exitAt := s.clock.Now()
	if req.ExitAt != nil {
		exitAt = req.ExitAt.UTC()
	}
	return s.transition(ctx, actorID, reservationID, "finish reservation", EventReservationFinished, func(r *reservation.Reservation) error {
		return r.Finish(exitAt)
	})
}

// CancelReservation abandons an ACTIVE reservation.
func (s *ReservationService) CancelReservation(ctx context.Context, actorID, reservationID uuid.UUID, req CancelReservationRequest) (*ReservationDTO, error) {
	now := s.clock.Now()
	return s.transition(ctx, actorID, reservationID, "cancel reservation", EventReservationCancelled, func(r *reservation.Reservation) error {
		return r.Cancel(req.Reason, now)
	})
}

func (s *ReservationService) transition(
	ctx context.Context,
	actorID, reservationID uuid.UUID,
	operation, eventType string,
	apply func(*reservation.Reservation) error,
) (*ReservationDTO, error) {
	var res *reservation.Reservation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := loadPrincipal(ctx, s.persons, actorID, operation, identity.RoleEmployee, identity.RoleAdmin); err != nil {
			return err
		}
		var err error
		if res, err = s.reservations.FindByID(ctx, reservationID); err != nil {
			return err
		}
		if err := apply(res); err != nil {
			return err
		}
		return s.reservations.Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation "+string(res.Status()),
		zap.String("reservation_id", res.ID().String()),
		zap.String("actor_id", actorID.String()),
	)
	s.metrics.ObserveReservation(string(res.Kind()), string(res.Status()))
	s.publisher.Publish(ctx, eventType, res.ID().String(), toReservationEvent(res, s.clock.Now()))
	return toReservationDTO(res), nil
}

// HandleGateExit finishes the ACTIVE parking reservation for a plate when the
// gate reports the vehicle left. An unknown plate is logged and skipped.
func (s *ReservationService) HandleGateExit(ctx context.Context, plate string, exitedAt time.Time) error {
	plate = reservation.Descriptors{PlateNumber: plate}.Normalize().PlateNumber
	if plate == "" {
		s.metrics.ObserveGateEvent("invalid")
		return domain.NewValidationError("gate event has no plate number")
	}
	if exitedAt.IsZero() {
		exitedAt = s.clock.Now()
	}

	var res *reservation.Reservation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if res, err = s.reservations.FindActiveByPlate(ctx, plate); err != nil {
			return err
		}
		if err := res.Finish(exitedAt); err != nil {
			return err
		}
		return s.reservations.Update(ctx, res)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("no active parking reservation for plate, skipping gate exit",
				zap.String("plate", plate),
			)
			s.metrics.ObserveGateEvent("unmatched")
			return nil
		}
		s.metrics.ObserveGateEvent("failed")
		return err
	}

	s.logger.Info("parking reservation finished by gate exit",
		zap.String("reservation_id", res.ID().String()),
		zap.String("plate", plate),
	)
	s.metrics.ObserveGateEvent("finished")
	s.metrics.ObserveReservation(string(res.Kind()), string(res.Status()))
	s.publisher.Publish(ctx, EventReservationFinished, res.ID().String(), toReservationEvent(res, s.clock.Now()))
	return nil
}

// money renders a decimal with exactly two places.
func money(d decimal.Decimal) string {
	return d.StringFixedBank(pricing.Places)
}

func descriptors(room, plate, space string) reservation.Descriptors {
	return reservation.Descriptors{RoomNumber: room, PlateNumber: plate, SpaceNumber: space}.Normalize()
}

func toReservationDTO(r *reservation.Reservation) *ReservationDTO {
	d := r.Descriptors()
	return &ReservationDTO{
		ID:              r.ID(),
		CustomerID:      r.CustomerID(),
		EmployeeID:      r.EmployeeID(),
		Kind:            string(r.Kind()),
		RoomNumber:      d.RoomNumber,
		PlateNumber:     d.PlateNumber,
		SpaceNumber:     d.SpaceNumber,
		EntryAt:         r.EntryAt(),
		ExpectedExitAt:  r.ExpectedExitAt(),
		ActualExitAt:    r.ActualExitAt(),
		BaseAmount:      money(r.BaseAmount()),
		DiscountPercent: money(r.DiscountPercent()),
		FinalAmount:     money(r.FinalAmount()),
		Status:          string(r.Status()),
		Notes:           r.Notes(),
	}
}

func toReservationDTOs(list []*reservation.Reservation) []*ReservationDTO {
	dtos := make([]*ReservationDTO, len(list))
	for i, r := range list {
		dtos[i] = toReservationDTO(r)
	}
	return dtos
}

func toReservationEvent(r *reservation.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		ReservationID: r.ID(),
		CustomerID:    r.CustomerID(),
		EmployeeID:    r.EmployeeID(),
		Kind:          string(r.Kind()),
		Status:        string(r.Status()),
		PlateNumber:   r.Descriptors().PlateNumber,
		FinalAmount:   money(r.FinalAmount()),
		OccurredAt:    at,
	}
}
