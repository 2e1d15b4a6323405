package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stayandpark/service-frontdesk/internal/domain/promotion"
)

// PromotionModel is the GORM model for the promotions table.
type PromotionModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name            string          `gorm:"type:varchar(100);not null"`
	Description     string          `gorm:"type:text"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	AppliesTo       string          `gorm:"type:varchar(20);not null;default:'BOTH'"`
	StartsAt        time.Time       `gorm:"type:timestamptz;not null"`
	EndsAt          time.Time       `gorm:"type:timestamptz;not null"`
	Active          bool            `gorm:"not null;default:true"`
	MinimumVisits   int             `gorm:"not null;default:0"`
	CreatedAt       time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (PromotionModel) TableName() string { return "promotions" }

// GormPromotionRepository implements promotion.PromotionRepository using GORM.
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository.
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// Save persists a new promotion.
func (r *GormPromotionRepository) Save(ctx context.Context, p *promotion.Promotion) error {
	model := toPromotionModel(p)
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindValidAt returns active promotions whose window contains at.
func (r *GormPromotionRepository) FindValidAt(ctx context.Context, at time.Time) ([]*promotion.Promotion, error) {
	var models []PromotionModel
	if err := conn(ctx, r.db).
		Where("active = ? AND starts_at <= ? AND ends_at >= ?", true, at, at).
		Order("discount_percent DESC").
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("find valid promotions: %w", err)
	}

	promos := make([]*promotion.Promotion, len(models))
	for i := range models {
		promos[i] = toPromotionDomain(&models[i])
	}
	return promos, nil
}

func toPromotionModel(p *promotion.Promotion) PromotionModel {
	return PromotionModel{
		ID:              p.ID(),
		Name:            p.Name(),
		Description:     p.Description(),
		DiscountPercent: p.DiscountPercent(),
		AppliesTo:       string(p.AppliesTo()),
		StartsAt:        p.StartsAt(),
		EndsAt:          p.EndsAt(),
		Active:          p.Active(),
		MinimumVisits:   p.MinimumVisits(),
		CreatedAt:       p.CreatedAt(),
	}
}

func toPromotionDomain(m *PromotionModel) *promotion.Promotion {
	return promotion.Reconstruct(
		m.ID, m.Name, m.Description, m.DiscountPercent,
		promotion.Applicability(m.AppliesTo),
		m.StartsAt.UTC(), m.EndsAt.UTC(),
		m.Active, m.MinimumVisits, m.CreatedAt.UTC(),
	)
}
