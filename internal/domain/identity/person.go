package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stayandpark/service-frontdesk/internal/domain"
)

// Role is the closed set of principal kinds.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return r, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid role: %s", s))
}

var (
	nationalIDPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// NormalizeNationalID accepts either 11 bare digits or the dotted form
// 000.000.000-00 and returns the dotted form.
func NormalizeNationalID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if nationalIDPattern.MatchString(raw) {
		return raw, nil
	}
	if len(raw) == 11 && strings.Trim(raw, "0123456789") == "" {
		return fmt.Sprintf("%s.%s.%s-%s", raw[0:3], raw[3:6], raw[6:9], raw[9:11]), nil
	}
	return "", domain.NewValidationError("national id must be 11 digits (000.000.000-00)")
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		return "", domain.NewValidationError("invalid email address")
	}
	return email, nil
}

// Person is the aggregate root for any user of the system.
type Person struct {
	id           uuid.UUID
	name         string
	email        string
	nationalID   string
	phone        string
	passwordHash string
	role         Role
	active       bool
	registeredAt time.Time
	lastVisitAt  time.Time
	visitCount   int
}

// NewPerson creates an active person with a visit count of 1.
// passwordHash must already be hashed; the plaintext never reaches this package.
func NewPerson(name, email, nationalID, phone, passwordHash string, role Role, now time.Time) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	normEmail, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	normID, err := NormalizeNationalID(nationalID)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password hash is required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Person{
		id:           uuid.New(),
		name:         name,
		email:        normEmail,
		nationalID:   normID,
		phone:        strings.TrimSpace(phone),
		passwordHash: passwordHash,
		role:         role,
		active:       true,
		registeredAt: now,
		lastVisitAt:  now,
		visitCount:   1,
	}, nil
}

// Reconstruct rebuilds a Person from persistence.
func Reconstruct(id uuid.UUID, name, email, nationalID, phone, passwordHash string, role Role, active bool, registeredAt, lastVisitAt time.Time, visitCount int) *Person {
	return &Person{
		id: id, name: name, email: email, nationalID: nationalID, phone: phone,
		passwordHash: passwordHash, role: role, active: active,
		registeredAt: registeredAt, lastVisitAt: lastVisitAt, visitCount: visitCount,
	}
}

// RecordVisit stamps the visit time and increments the counter.
func (p *Person) RecordVisit(now time.Time) {
	p.lastVisitAt = now.UTC()
	p.visitCount++
}

// Getters.
func (p *Person) ID() uuid.UUID           { return p.id }
func (p *Person) Name() string            { return p.name }
func (p *Person) Email() string           { return p.email }
func (p *Person) NationalID() string      { return p.nationalID }
func (p *Person) Phone() string           { return p.phone }
func (p *Person) PasswordHash() string    { return p.passwordHash }
func (p *Person) Role() Role              { return p.role }
func (p *Person) Active() bool            { return p.active }
func (p *Person) RegisteredAt() time.Time { return p.registeredAt }
func (p *Person) LastVisitAt() time.Time  { return p.lastVisitAt }
func (p *Person) VisitCount() int         { return p.visitCount }
