package identity

import "github.com/stayandpark/service-frontdesk/internal/domain"

func IsAdmin(p *Person) bool    { return p != nil && p.role == RoleAdmin }
func IsEmployee(p *Person) bool { return p != nil && p.role == RoleEmployee }
func IsCustomer(p *Person) bool { return p != nil && p.role == RoleCustomer }

// Authorize fails closed: a nil or inactive principal, or one whose role is
// not listed, gets an AccessDeniedError naming the operation.
func Authorize(p *Person, operation string, roles ...Role) error {
	if p == nil || !p.active {
		return domain.NewAccessDeniedError(operation)
	}
	for _, r := range roles {
		if p.role == r {
			return nil
		}
	}
	return domain.NewAccessDeniedError(operation)
}
