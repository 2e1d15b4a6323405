package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
	"github.com/stayandpark/service-frontdesk/internal/domain/pricing"
	promoDomain "github.com/stayandpark/service-frontdesk/internal/domain/promotion"
	"github.com/stayandpark/service-frontdesk/internal/domain/reservation"
)

// CreatePromotionRequest holds data to create a promotion.
type CreatePromotionRequest struct {
	Name            string    `json:"name" binding:"required"`
	Description     string    `json:"description"`
	DiscountPercent string    `json:"discount_percent" binding:"required"`
	AppliesTo       string    `json:"applies_to"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	EndsAt          time.Time `json:"ends_at" binding:"required"`
	MinimumVisits   int       `json:"minimum_visits"`
}

// PromotionDTO is the API response representation of a promotion.
type PromotionDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DiscountPercent string    `json:"discount_percent"`
	AppliesTo       string    `json:"applies_to"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	Active          bool      `json:"active"`
	MinimumVisits   int       `json:"minimum_visits"`
	CreatedAt       time.Time `json:"created_at"`
}

// PromotionService handles promotion use cases.
type PromotionService struct {
	repo    promoDomain.PromotionRepository
	persons identity.PersonRepository
	clock   domain.Clock
	logger  *zap.Logger
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(repo promoDomain.PromotionRepository, persons identity.PersonRepository, clock domain.Clock, logger *zap.Logger) *PromotionService {
	return &PromotionService{repo: repo, persons: persons, clock: clock, logger: logger}
}

// CreatePromotion creates a new promotion (admin only).
func (s *PromotionService) CreatePromotion(ctx context.Context, adminID uuid.UUID, req CreatePromotionRequest) (*PromotionDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, adminID, "create promotion", identity.RoleAdmin); err != nil {
		return nil, err
	}
	pct, err := pricing.ParsePercent(req.DiscountPercent)
	if err != nil {
		return nil, err
	}
	applies, err := promoDomain.ParseApplicability(req.AppliesTo)
	if err != nil {
		return nil, err
	}

	promo, err := promoDomain.NewPromotion(req.Name, req.Description, pct, applies, req.StartsAt, req.EndsAt, req.MinimumVisits, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to save promotion: %w", err)
	}

	s.logger.Info("promotion created", zap.String("name", promo.Name()), zap.String("promotion_id", promo.ID().String()))
	return toPromotionDTO(promo), nil
}

// ActivePromotions returns promotions valid right now (employees and admins).
func (s *PromotionService) ActivePromotions(ctx context.Context, actorID uuid.UUID) ([]*PromotionDTO, error) {
	if _, err := loadPrincipal(ctx, s.persons, actorID, "list active promotions", identity.RoleEmployee, identity.RoleAdmin); err != nil {
		return nil, err
	}
	promos, err := s.repo.FindValidAt(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return toPromotionDTOs(promos), nil
}

// EligiblePromotions returns the valid promotions the customer's visit count
// unlocks, optionally restricted to a service kind.
func (s *PromotionService) EligiblePromotions(ctx context.Context, customerID uuid.UUID, kind string) ([]*PromotionDTO, error) {
	customer, err := loadPrincipal(ctx, s.persons, customerID, "list eligible promotions", identity.RoleCustomer)
	if err != nil {
		return nil, err
	}

	var kindFilter *reservation.ServiceKind
	if kind != "" {
		k, err := reservation.ParseServiceKind(kind)
		if err != nil {
			return nil, err
		}
		kindFilter = &k
	}

	now := s.clock.Now()
	promos, err := s.repo.FindValidAt(ctx, now)
	if err != nil {
		return nil, err
	}

	eligible := make([]*promoDomain.Promotion, 0, len(promos))
	for _, p := range promos {
		if p.IsEligible(customer.VisitCount(), kindFilter, now) {
			eligible = append(eligible, p)
		}
	}
	return toPromotionDTOs(eligible), nil
}

func toPromotionDTO(p *promoDomain.Promotion) *PromotionDTO {
	return &PromotionDTO{
		ID:              p.ID(),
		Name:            p.Name(),
		Description:     p.Description(),
		DiscountPercent: money(p.DiscountPercent()),
		AppliesTo:       string(p.AppliesTo()),
		StartsAt:        p.StartsAt(),
		EndsAt:          p.EndsAt(),
		Active:          p.Active(),
		MinimumVisits:   p.MinimumVisits(),
		CreatedAt:       p.CreatedAt(),
	}
}

func toPromotionDTOs(promos []*promoDomain.Promotion) []*PromotionDTO {
	dtos := make([]*PromotionDTO, len(promos))
	for i, p := range promos {
		dtos[i] = toPromotionDTO(p)
	}
	return dtos
}
