package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
)

// PersonModel is the GORM persistence model for the persons table.
type PersonModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(150);not null"`
	Email        string    `gorm:"type:varchar(254);not null;uniqueIndex:uq_persons_email"`
	NationalID   string    `gorm:"type:varchar(14);not null;uniqueIndex:uq_persons_national_id"`
	Phone        string    `gorm:"type:varchar(20)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null;index"`
	Active       bool      `gorm:"not null;default:true"`
	RegisteredAt time.Time `gorm:"type:timestamptz;not null"`
	LastVisitAt  time.Time `gorm:"type:timestamptz;not null"`
	VisitCount   int       `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM.
func (PersonModel) TableName() string { return "persons" }

// PersonRepositoryImpl is the GORM-based implementation of identity.PersonRepository.
type PersonRepositoryImpl struct {
	db *gorm.DB
}

// NewPersonRepository creates a new GORM-based person repository.
func NewPersonRepository(db *gorm.DB) *PersonRepositoryImpl {
	return &PersonRepositoryImpl{db: db}
}

func (r *PersonRepositoryImpl) findOne(ctx context.Context, what, value string, query string, args ...interface{}) (*identity.Person, error) {
	var model PersonModel
	if err := conn(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("person", value)
		}
		return nil, fmt.Errorf("find person by %s: %w", what, err)
	}
	return toPersonDomain(&model), nil
}

// FindByID retrieves a person by id.
func (r *PersonRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*identity.Person, error) {
	return r.findOne(ctx, "id", id.String(), "id = ?", id)
}

// FindByEmail retrieves a person by normalized email.
func (r *PersonRepositoryImpl) FindByEmail(ctx context.Context, email string) (*identity.Person, error) {
	return r.findOne(ctx, "email", email, "email = ?", email)
}

// FindByNationalID retrieves a person by normalized national id.
func (r *PersonRepositoryImpl) FindByNationalID(ctx context.Context, nationalID string) (*identity.Person, error) {
	return r.findOne(ctx, "national id", nationalID, "national_id = ?", nationalID)
}

// ExistsByEmailOrNationalID reports whether either value is already registered.
func (r *PersonRepositoryImpl) ExistsByEmailOrNationalID(ctx context.Context, email, nationalID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&PersonModel{}).
		Where("email = ? OR national_id = ?", email, nationalID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check person uniqueness: %w", err)
	}
	return count > 0, nil
}

// List returns persons matching filter ordered by name.
func (r *PersonRepositoryImpl) List(ctx context.Context, filter identity.PersonFilter) ([]*identity.Person, error) {
	q := conn(ctx, r.db).Model(&PersonModel{})
	if filter.Role != "" {
		q = q.Where("role = ?", string(filter.Role))
	}
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}

	var models []PersonModel
	if err := q.Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return toPersonDomains(models), nil
}

// ListFrequentCustomers returns customers seen since the given time by visit count.
func (r *PersonRepositoryImpl) ListFrequentCustomers(ctx context.Context, since time.Time, limit int) ([]*identity.Person, error) {
	var models []PersonModel
	err := conn(ctx, r.db).
		Where("role = ? AND last_visit_at >= ?", string(identity.RoleCustomer), since).
		Order("visit_count DESC").
		Order("last_visit_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list frequent customers: %w", err)
	}
	return toPersonDomains(models), nil
}

// CountByRole returns the number of persons per role.
func (r *PersonRepositoryImpl) CountByRole(ctx context.Context) (map[identity.Role]int64, error) {
	type roleCount struct {
		Role  string
		Count int64
	}
	var results []roleCount
	if err := conn(ctx, r.db).Model(&PersonModel{}).
		Select("role, count(*) as count").
		Group("role").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("count persons by role: %w", err)
	}

	counts := make(map[identity.Role]int64, len(results))
	for _, rc := range results {
		counts[identity.Role(rc.Role)] = rc.Count
	}
	return counts, nil
}

// Save inserts a new person.
func (r *PersonRepositoryImpl) Save(ctx context.Context, p *identity.Person) error {
	model := toPersonModel(p)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Update persists visit tracking and activation changes.
func (r *PersonRepositoryImpl) Update(ctx context.Context, p *identity.Person) error {
	result := conn(ctx, r.db).Model(&PersonModel{}).
		Where("id = ?", p.ID()).
		Updates(map[string]interface{}{
			"last_visit_at": p.LastVisitAt(),
			"visit_count":   p.VisitCount(),
			"active":        p.Active(),
		})
	if result.Error != nil {
		return fmt.Errorf("update person: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("person", p.ID().String())
	}
	return nil
}

func toPersonModel(p *identity.Person) *PersonModel {
	return &PersonModel{
		ID:           p.ID(),
		Name:         p.Name(),
		Email:        p.Email(),
		NationalID:   p.NationalID(),
		Phone:        p.Phone(),
		PasswordHash: p.PasswordHash(),
		Role:         string(p.Role()),
		Active:       p.Active(),
		RegisteredAt: p.RegisteredAt(),
		LastVisitAt:  p.LastVisitAt(),
		VisitCount:   p.VisitCount(),
	}
}

func toPersonDomain(m *PersonModel) *identity.Person {
	return identity.Reconstruct(
		m.ID, m.Name, m.Email, m.NationalID, m.Phone, m.PasswordHash,
		identity.Role(m.Role), m.Active,
		m.RegisteredAt.UTC(), m.LastVisitAt.UTC(), m.VisitCount,
	)
}

func toPersonDomains(models []PersonModel) []*identity.Person {
	persons := make([]*identity.Person, len(models))
	for i := range models {
		persons[i] = toPersonDomain(&models[i])
	}
	return persons
}
