package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
)

func registerReq(email, nid string) RegisterRequest {
	return RegisterRequest{Name: "Maria Santos", Email: email, NationalID: nid, Phone: "(22) 2222-2222", Password: "cliente123"}
}

func TestRegister_CreatesCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.identity.Register(ctx, registerReq("Maria@Email.com", "22222222222"))
	require.NoError(t, err)

	assert.Equal(t, "maria@email.com", p.Email)
	assert.Equal(t, "222.222.222-22", p.NationalID)
	assert.Equal(t, string(identity.RoleCustomer), p.Role)
	assert.Equal(t, 1, p.VisitCount)
	assert.True(t, p.Active)
	assert.Equal(t, []string{EventPersonRegistered}, f.events.types())

	stored, err := f.persons.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "cliente123", stored.PasswordHash())
}

func TestRegister_DuplicateNationalIDWithDifferentEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.identity.Register(ctx, registerReq("a@example.com", "222.222.222-22"))
	require.NoError(t, err)

	_, err = f.identity.Register(ctx, registerReq("b@example.com", "22222222222"))
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "national id")
	assert.Equal(t, 1, f.countPersons())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.identity.Register(ctx, registerReq("a@example.com", "111.111.111-11"))
	require.NoError(t, err)

	_, err = f.identity.Register(ctx, registerReq("A@example.com", "333.333.333-33"))
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "email")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := registerReq("a@example.com", "111.111.111-11")
	req.Password = "123"
	_, err := f.identity.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.identity.Register(ctx, registerReq("not-an-email", "111.111.111-11"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.identity.Register(ctx, registerReq("a@example.com", "1234"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, f.countPersons())
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.identity.Register(ctx, registerReq("maria@email.com", "222.222.222-22"))
	require.NoError(t, err)

	p, err := f.identity.Authenticate(ctx, "MARIA@email.com", "cliente123")
	require.NoError(t, err)
	assert.Equal(t, "maria@email.com", p.Email())

	_, err = f.identity.Authenticate(ctx, "maria@email.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, unknownErr := f.identity.Authenticate(ctx, "nobody@email.com", "cliente123")
	assert.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	assert.Equal(t, err.Error(), unknownErr.Error())
}

func TestAuthenticate_Inactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto, err := f.identity.Register(ctx, registerReq("maria@email.com", "222.222.222-22"))
	require.NoError(t, err)

	p, err := f.persons.FindByID(ctx, dto.ID)
	require.NoError(t, err)
	inactive := identity.Reconstruct(p.ID(), p.Name(), p.Email(), p.NationalID(), p.Phone(), p.PasswordHash(),
		p.Role(), false, p.RegisteredAt(), p.LastVisitAt(), p.VisitCount())
	require.NoError(t, f.persons.Update(ctx, inactive))

	_, err = f.identity.Authenticate(ctx, "maria@email.com", "cliente123")
	assert.ErrorIs(t, err, domain.ErrInactive)

	_, err = f.identity.Authenticate(ctx, "maria@email.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterVisit_IncrementsMonotonically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto, err := f.identity.Register(ctx, registerReq("maria@email.com", "222.222.222-22"))
	require.NoError(t, err)

	p, err := f.persons.FindByID(ctx, dto.ID)
	require.NoError(t, err)

	previousCount, previousVisit := p.VisitCount(), p.LastVisitAt()
	for i := 0; i < 3; i++ {
		f.clock.Advance(time.Hour)
		p, err = f.identity.RegisterVisit(ctx, p)
		require.NoError(t, err)

		stored, err := f.persons.FindByID(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, previousCount+1, stored.VisitCount())
		assert.True(t, stored.LastVisitAt().After(previousVisit))
		previousCount, previousVisit = stored.VisitCount(), stored.LastVisitAt()
	}
	assert.Equal(t, 4, previousCount)
}

func TestLogin_RegistersVisitAndIssuesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.identity.Register(ctx, registerReq("maria@email.com", "222.222.222-22"))
	require.NoError(t, err)

	out, err := f.identity.Login(ctx, LoginRequest{Email: "maria@email.com", Password: "cliente123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, int64(3600), out.ExpiresIn)
	assert.Contains(t, out.AccessToken, "CUSTOMER")
	assert.Equal(t, 2, out.Person.VisitCount)

	_, err = f.identity.Login(ctx, LoginRequest{Email: "maria@email.com", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	stored, err := f.persons.FindByEmail(ctx, "maria@email.com")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.VisitCount())
}

func TestRegisterCustomerByStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.person(t, "João", identity.RoleEmployee)
	customer := f.person(t, "Ana", identity.RoleCustomer)

	p, err := f.identity.RegisterCustomerByStaff(ctx, employee.ID, registerReq("walkin@example.com", "444.444.444-44"))
	require.NoError(t, err)
	assert.Equal(t, string(identity.RoleCustomer), p.Role)

	_, err = f.identity.RegisterCustomerByStaff(ctx, customer.ID, registerReq("other@example.com", "555.555.555-55"))
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestListPersons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.person(t, "Admin", identity.RoleAdmin)
	f.person(t, "João", identity.RoleEmployee)
	customer := f.person(t, "Ana", identity.RoleCustomer)

	all, err := f.identity.ListPersons(ctx, admin.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	employees, err := f.identity.ListPersons(ctx, admin.ID, "employee")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "João", employees[0].Name)

	_, err = f.identity.ListPersons(ctx, admin.ID, "GUEST")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.identity.ListPersons(ctx, customer.ID, "")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}
