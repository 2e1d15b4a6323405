package promotion

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/pricing"
	"github.com/stayandpark/service-frontdesk/internal/domain/reservation"
)

// Applicability is the service kind a promotion covers.
type Applicability string

const (
	AppliesToLodging Applicability = "LODGING"
	AppliesToParking Applicability = "PARKING"
	AppliesToBoth    Applicability = "BOTH"
)

// ParseApplicability validates an applicability name. Empty means BOTH.
func ParseApplicability(s string) (Applicability, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return AppliesToBoth, nil
	}
	switch a := Applicability(s); a {
	case AppliesToLodging, AppliesToParking, AppliesToBoth:
		return a, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid applicable service kind: %s", s))
}

// Covers reports whether the promotion applies to the service kind.
func (a Applicability) Covers(kind reservation.ServiceKind) bool {
	return a == AppliesToBoth || string(a) == string(kind)
}

// Promotion is the aggregate root for discount campaigns.
type Promotion struct {
	id              uuid.UUID
	name            string
	description     string
	discountPercent decimal.Decimal
	appliesTo       Applicability
	startsAt        time.Time
	endsAt          time.Time
	active          bool
	minimumVisits   int
	createdAt       time.Time
}

// NewPromotion creates an active promotion.
func NewPromotion(name, description string, discountPercent decimal.Decimal, appliesTo Applicability, startsAt, endsAt time.Time, minimumVisits int, now time.Time) (*Promotion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("promotion name is required")
	}
	if err := pricing.ValidatePercent(discountPercent); err != nil {
		return nil, err
	}
	if _, err := ParseApplicability(string(appliesTo)); err != nil {
		return nil, err
	}
	if endsAt.Before(startsAt) {
		return nil, domain.NewValidationError("end must not be before start")
	}
	if minimumVisits < 0 {
		return nil, domain.NewValidationError("minimum visits must not be negative")
	}

	return &Promotion{
		id:              uuid.New(),
		name:            name,
		description:     strings.TrimSpace(description),
		discountPercent: pricing.Round(discountPercent),
		appliesTo:       appliesTo,
		startsAt:        startsAt.UTC(),
		endsAt:          endsAt.UTC(),
		active:          true,
		minimumVisits:   minimumVisits,
		createdAt:       now.UTC(),
	}, nil
}

// Reconstruct rebuilds a Promotion from persistence.
func Reconstruct(id uuid.UUID, name, description string, discountPercent decimal.Decimal, appliesTo Applicability, startsAt, endsAt time.Time, active bool, minimumVisits int, createdAt time.Time) *Promotion {
	return &Promotion{
		id: id, name: name, description: description, discountPercent: discountPercent,
		appliesTo: appliesTo, startsAt: startsAt, endsAt: endsAt, active: active,
		minimumVisits: minimumVisits, createdAt: createdAt,
	}
}

// IsValidAt is true when the promotion is switched on and now falls inside
// [start, end], both ends inclusive.
func (p *Promotion) IsValidAt(now time.Time) bool {
	return p.active && !now.Before(p.startsAt) && !now.After(p.endsAt)
}

// IsEligible adds the visit floor and, when kind is non-nil, the kind match.
func (p *Promotion) IsEligible(visitCount int, kind *reservation.ServiceKind, now time.Time) bool {
	if !p.IsValidAt(now) || visitCount < p.minimumVisits {
		return false
	}
	return kind == nil || p.appliesTo.Covers(*kind)
}

// Getters.
func (p *Promotion) ID() uuid.UUID                    { return p.id }
func (p *Promotion) Name() string                     { return p.name }
func (p *Promotion) Description() string              { return p.description }
func (p *Promotion) DiscountPercent() decimal.Decimal { return p.discountPercent }
func (p *Promotion) AppliesTo() Applicability         { return p.appliesTo }
func (p *Promotion) StartsAt() time.Time              { return p.startsAt }
func (p *Promotion) EndsAt() time.Time                { return p.endsAt }
func (p *Promotion) Active() bool                     { return p.active }
func (p *Promotion) MinimumVisits() int               { return p.minimumVisits }
func (p *Promotion) CreatedAt() time.Time             { return p.createdAt }
