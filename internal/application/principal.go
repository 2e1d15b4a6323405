package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
)

// loadPrincipal resolves the acting person and checks their role.
// An unknown id is an access failure, not a lookup failure.
func loadPrincipal(ctx context.Context, persons identity.PersonRepository, id uuid.UUID, operation string, roles ...identity.Role) (*identity.Person, error) {
	p, err := persons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewAccessDeniedError(operation)
		}
		return nil, err
	}
	if err := identity.Authorize(p, operation, roles...); err != nil {
		return nil, err
	}
	return p, nil
}
