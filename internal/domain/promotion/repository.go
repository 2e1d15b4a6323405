package promotion

import (
	"context"
	"time"
)

// PromotionRepository defines persistence operations for promotions.
type PromotionRepository interface {
	Save(ctx context.Context, p *Promotion) error

	// FindValidAt returns promotions that are active with start <= at <= end.
	FindValidAt(ctx context.Context, at time.Time) ([]*Promotion, error)
}
