package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/adapter"
	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
	"github.com/stayandpark/service-frontdesk/internal/platform/metrics"
)

// MinPasswordLength is the shortest accepted plaintext password.
const MinPasswordLength = 6

// RegisterRequest holds data to register a person.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	NationalID string `json:"national_id" binding:"required"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required"`
}

// LoginRequest holds credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PersonDTO is the API response representation of a person. The password
// hash never leaves the service.
type PersonDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	NationalID   string    `json:"national_id"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registered_at"`
	LastVisitAt  time.Time `json:"last_visit_at"`
	VisitCount   int       `json:"visit_count"`
}

// LoginDTO is returned by a successful login.
type LoginDTO struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	Person      *PersonDTO `json:"person"`
}

// IdentityService handles registration, authentication and visit tracking.
type IdentityService struct {
	persons   identity.PersonRepository
	hasher    adapter.PasswordHasher
	tokens    TokenIssuer
	tx        Transactor
	clock     domain.Clock
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(
	persons identity.PersonRepository,
	hasher adapter.PasswordHasher,
	tokens TokenIssuer,
	tx Transactor,
	clock domain.Clock,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *IdentityService {
	return &IdentityService{
		persons:   persons,
		hasher:    hasher,
		tokens:    tokens,
		tx:        tx,
		clock:     clock,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Register creates a self-service CUSTOMER account.
func (s *IdentityService) Register(ctx context.Context, req RegisterRequest) (*PersonDTO, error) {
	return s.register(ctx, req, identity.RoleCustomer)
}

// RegisterCustomerByStaff lets an employee or admin register a customer at the desk.
func (s *IdentityService) RegisterCustomerByStaff(ctx context.Context, actorID uuid.UUID, req RegisterRequest) (*PersonDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, actorID, "register customer", identity.RoleEmployee, identity.RoleAdmin); err != nil {
		return nil, err
	}
	return s.register(ctx, req, identity.RoleCustomer)
}

// Provision creates a person with any role. It has no actor and is reserved
// for bootstrap tooling.
func (s *IdentityService) Provision(ctx context.Context, req RegisterRequest, role identity.Role) (*PersonDTO, error) {
	if _, err := identity.ParseRole(string(role)); err != nil {
		return nil, err
	}
	return s.register(ctx, req, role)
}

func (s *IdentityService) register(ctx context.Context, req RegisterRequest, role identity.Role) (*PersonDTO, error) {
	if len(req.Password) < MinPasswordLength {
		return nil, domain.NewValidationError(fmt.Sprintf("password must have at least %d characters", MinPasswordLength))
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	person, err := identity.NewPerson(req.Name, req.Email, req.NationalID, req.Phone, hash, role, s.clock.Now())
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := ensureUnique(ctx, s.persons, person.Email(), person.NationalID()); err != nil {
			return err
		}
		return s.persons.Save(ctx, person)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("person registered",
		zap.String("person_id", person.ID().String()),
		zap.String("role", string(role)),
	)
	s.metrics.ObserveRegistration(string(role))
	s.publisher.Publish(ctx, EventPersonRegistered, person.ID().String(), PersonRegisteredEvent{
		PersonID:     person.ID(),
		Email:        person.Email(),
		Role:         string(role),
		RegisteredAt: person.RegisteredAt(),
	})
	return toPersonDTO(person), nil
}

// ensureUnique reports which of email or national id is already taken.
// The store constraints still back this check under concurrency.
func ensureUnique(ctx context.Context, persons identity.PersonRepository, email, nationalID string) error {
	taken, err := persons.ExistsByEmailOrNationalID(ctx, email, nationalID)
	if err != nil || !taken {
		return err
	}
	if _, err := persons.FindByEmail(ctx, email); err == nil {
		return domain.NewDuplicateError("person", "email")
	}
	return domain.NewDuplicateError("person", "national id")
}

// Authenticate verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*identity.Person, error) {
	normalized, err := identity.NormalizeEmail(email)
	if err != nil {
		return nil, domain.NewInvalidCredentialsError()
	}
	person, err := s.persons.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewInvalidCredentialsError()
		}
		return nil, err
	}
	if !s.hasher.Verify(password, person.PasswordHash()) {
		return nil, domain.NewInvalidCredentialsError()
	}
	if !person.Active() {
		return nil, domain.NewInactiveError()
	}
	return person, nil
}

// RegisterVisit stamps the visit and persists the incremented counter.
func (s *IdentityService) RegisterVisit(ctx context.Context, person *identity.Person) (*identity.Person, error) {
	person.RecordVisit(s.clock.Now())
	if err := s.persons.Update(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// Login authenticates, registers the visit and issues an access token.
func (s *IdentityService) Login(ctx context.Context, req LoginRequest) (*LoginDTO, error) {
	var person *identity.Person
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.Authenticate(ctx, req.Email, req.Password)
		if err != nil {
			return err
		}
		person, err = s.RegisterVisit(ctx, p)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.logger.Warn("login rejected", zap.String("reason", "invalid credentials"))
		}
		return nil, err
	}

	token, err := s.tokens.GenerateAccessToken(person.ID(), person.Email(), string(person.Role()))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.logger.Info("login succeeded",
		zap.String("person_id", person.ID().String()),
		zap.Int("visit_count", person.VisitCount()),
	)
	return &LoginDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
		Person:      toPersonDTO(person),
	}, nil
}

// GetPerson returns a person by id.
func (s *IdentityService) GetPerson(ctx context.Context, id uuid.UUID) (*PersonDTO, error) {
	p, err := s.persons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPersonDTO(p), nil
}

// ListPersons returns every person, optionally filtered by role (admin only).
func (s *IdentityService) ListPersons(ctx context.Context, actorID uuid.UUID, role string) ([]*PersonDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, actorID, "list persons", identity.RoleAdmin); err != nil {
		return nil, err
	}

	var filter identity.PersonFilter
	if role != "" {
		r, err := identity.ParseRole(role)
		if err != nil {
			return nil, err
		}
		filter.Role = r
	}

	persons, err := s.persons.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toPersonDTOs(persons), nil
}

func toPersonDTO(p *identity.Person) *PersonDTO {
	return &PersonDTO{
		ID:           p.ID(),
		Name:         p.Name(),
		Email:        p.Email(),
		NationalID:   p.NationalID(),
		Phone:        p.Phone(),
		Role:         string(p.Role()),
		Active:       p.Active(),
		RegisteredAt: p.RegisteredAt(),
		LastVisitAt:  p.LastVisitAt(),
		VisitCount:   p.VisitCount(),
	}
}

func toPersonDTOs(persons []*identity.Person) []*PersonDTO {
	dtos := make([]*PersonDTO, len(persons))
	for i, p := range persons {
		dtos[i] = toPersonDTO(p)
	}
	return dtos
}
