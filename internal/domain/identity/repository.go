package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PersonFilter narrows ListPersons. Zero values mean "any".
type PersonFilter struct {
	Role       Role
	ActiveOnly bool
}

// PersonRepository defines the persistence contract for Person aggregates.
type PersonRepository interface {
	// FindByID returns a NotFoundError when no person has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)

	// FindByEmail returns a NotFoundError when no person has the email.
	FindByEmail(ctx context.Context, email string) (*Person, error)

	// FindByNationalID returns a NotFoundError when no person has the id.
	FindByNationalID(ctx context.Context, nationalID string) (*Person, error)

	// ExistsByEmailOrNationalID reports whether either value is already taken.
	ExistsByEmailOrNationalID(ctx context.Context, email, nationalID string) (bool, error)

	List(ctx context.Context, filter PersonFilter) ([]*Person, error)

	// ListFrequentCustomers returns customers seen since the given time,
	// highest visit count first.
	ListFrequentCustomers(ctx context.Context, since time.Time, limit int) ([]*Person, error)

	CountByRole(ctx context.Context) (map[Role]int64, error)

	// Save inserts a new person. Unique violations become DuplicateError.
	Save(ctx context.Context, p *Person) error

	// Update persists visit tracking changes.
	Update(ctx context.Context, p *Person) error
}
