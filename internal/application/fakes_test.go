package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/adapter"
	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/attendance"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
	promoDomain "github.com/stayandpark/service-frontdesk/internal/domain/promotion"
	"github.com/stayandpark/service-frontdesk/internal/domain/reservation"
)

// memDB is an in-memory store shared by the fake repositories. Entities are
// stored as copies so mutations only land through Save/Update.
type memDB struct {
	mu           sync.Mutex
	persons      map[uuid.UUID]*identity.Person
	reservations map[uuid.UUID]*reservation.Reservation
	records      map[uuid.UUID]*attendance.Record
	promotions   map[uuid.UUID]*promoDomain.Promotion
}

func newMemDB() *memDB {
	return &memDB{
		persons:      map[uuid.UUID]*identity.Person{},
		reservations: map[uuid.UUID]*reservation.Reservation{},
		records:      map[uuid.UUID]*attendance.Record{},
		promotions:   map[uuid.UUID]*promoDomain.Promotion{},
	}
}

func clonePerson(p *identity.Person) *identity.Person {
	return identity.Reconstruct(p.ID(), p.Name(), p.Email(), p.NationalID(), p.Phone(), p.PasswordHash(),
		p.Role(), p.Active(), p.RegisteredAt(), p.LastVisitAt(), p.VisitCount())
}

func cloneReservation(r *reservation.Reservation) *reservation.Reservation {
	return reservation.Reconstitute(r.ID(), r.CustomerID(), r.EmployeeID(), r.Kind(), r.Descriptors(),
		r.EntryAt(), r.ExpectedExitAt(), r.ActualExitAt(),
		r.BaseAmount(), r.DiscountPercent(), r.FinalAmount(),
		r.Status(), r.Notes(), r.Version(), r.CreatedAt(), r.UpdatedAt())
}

func cloneRecord(r *attendance.Record) *attendance.Record {
	return attendance.Reconstruct(r.ID(), r.EmployeeID(), r.WorkDate(), r.ClockInAt(), r.ClockOutAt(),
		r.TotalHours(), r.Notes(), r.CreatedAt(), r.UpdatedAt())
}

// --- Transactor ---

// fakeTx snapshots the store and restores it when fn fails.
type fakeTx struct {
	db *memDB
}

func (t *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.db.mu.Lock()
	persons := make(map[uuid.UUID]*identity.Person, len(t.db.persons))
	for k, v := range t.db.persons {
		persons[k] = v
	}
	reservations := make(map[uuid.UUID]*reservation.Reservation, len(t.db.reservations))
	for k, v := range t.db.reservations {
		reservations[k] = v
	}
	records := make(map[uuid.UUID]*attendance.Record, len(t.db.records))
	for k, v := range t.db.records {
		records[k] = v
	}
	t.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.db.mu.Lock()
		t.db.persons, t.db.reservations, t.db.records = persons, reservations, records
		t.db.mu.Unlock()
		return err
	}
	return nil
}

// --- Persons ---

type fakePersonRepo struct{ db *memDB }

func (r *fakePersonRepo) find(match func(*identity.Person) bool, what string) (*identity.Person, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.persons {
		if match(p) {
			return clonePerson(p), nil
		}
	}
	return nil, domain.NewNotFoundError("person", what)
}

func (r *fakePersonRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.Person, error) {
	return r.find(func(p *identity.Person) bool { return p.ID() == id }, id.String())
}

func (r *fakePersonRepo) FindByEmail(_ context.Context, email string) (*identity.Person, error) {
	return r.find(func(p *identity.Person) bool { return p.Email() == email }, email)
}

func (r *fakePersonRepo) FindByNationalID(_ context.Context, nid string) (*identity.Person, error) {
	return r.find(func(p *identity.Person) bool { return p.NationalID() == nid }, nid)
}

func (r *fakePersonRepo) ExistsByEmailOrNationalID(_ context.Context, email, nid string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.persons {
		if p.Email() == email || p.NationalID() == nid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePersonRepo) List(_ context.Context, f identity.PersonFilter) ([]*identity.Person, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*identity.Person
	for _, p := range r.db.persons {
		if f.Role != "" && p.Role() != f.Role {
			continue
		}
		if f.ActiveOnly && !p.Active() {
			continue
		}
		out = append(out, clonePerson(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *fakePersonRepo) ListFrequentCustomers(_ context.Context, since time.Time, limit int) ([]*identity.Person, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*identity.Person
	for _, p := range r.db.persons {
		if p.Role() == identity.RoleCustomer && !p.LastVisitAt().Before(since) {
			out = append(out, clonePerson(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitCount() > out[j].VisitCount() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePersonRepo) CountByRole(context.Context) (map[identity.Role]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := map[identity.Role]int64{}
	for _, p := range r.db.persons {
		counts[p.Role()]++
	}
	return counts, nil
}

func (r *fakePersonRepo) Save(_ context.Context, p *identity.Person) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.persons {
		if existing.Email() == p.Email() {
			return domain.NewDuplicateError("person", "email")
		}
		if existing.NationalID() == p.NationalID() {
			return domain.NewDuplicateError("person", "national id")
		}
	}
	r.db.persons[p.ID()] = clonePerson(p)
	return nil
}

func (r *fakePersonRepo) Update(_ context.Context, p *identity.Person) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.persons[p.ID()]; !ok {
		return domain.NewNotFoundError("person", p.ID().String())
	}
	r.db.persons[p.ID()] = clonePerson(p)
	return nil
}

// --- Reservations ---

type fakeReservationRepo struct{ db *memDB }

func (r *fakeReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	res, ok := r.db.reservations[id]
	if !ok {
		return nil, domain.NewNotFoundError("reservation", id.String())
	}
	return cloneReservation(res), nil
}

func (r *fakeReservationRepo) FindActiveByPlate(_ context.Context, plate string) (*reservation.Reservation, error) {
	list := r.filter(func(res *reservation.Reservation) bool {
		return res.Kind() == reservation.KindParking && res.Status() == reservation.StatusActive && res.Descriptors().PlateNumber == plate
	})
	if len(list) == 0 {
		return nil, domain.NewNotFoundError("active parking reservation for plate", plate)
	}
	return list[0], nil
}

func (r *fakeReservationRepo) filter(match func(*reservation.Reservation) bool) []*reservation.Reservation {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*reservation.Reservation
	for _, res := range r.db.reservations {
		if match(res) {
			out = append(out, cloneReservation(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryAt().After(out[j].EntryAt()) })
	return out
}

func (r *fakeReservationRepo) ListByCustomer(_ context.Context, id uuid.UUID) ([]*reservation.Reservation, error) {
	return r.filter(func(res *reservation.Reservation) bool { return res.CustomerID() == id }), nil
}

func (r *fakeReservationRepo) ListByEmployee(_ context.Context, id uuid.UUID) ([]*reservation.Reservation, error) {
	return r.filter(func(res *reservation.Reservation) bool {
		return res.EmployeeID() != nil && *res.EmployeeID() == id
	}), nil
}

func (r *fakeReservationRepo) ListAll(context.Context) ([]*reservation.Reservation, error) {
	return r.filter(func(*reservation.Reservation) bool { return true }), nil
}

func (r *fakeReservationRepo) CountByStatus(_ context.Context, status reservation.Status) (int64, error) {
	return int64(len(r.filter(func(res *reservation.Reservation) bool { return res.Status() == status }))), nil
}

func (r *fakeReservationRepo) SumFinalAmount(_ context.Context, status reservation.Status) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.filter(func(res *reservation.Reservation) bool { return res.Status() == status }) {
		total = total.Add(res.FinalAmount())
	}
	return total, nil
}

func (r *fakeReservationRepo) Save(_ context.Context, res *reservation.Reservation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.reservations[res.ID()] = cloneReservation(res)
	return nil
}

func (r *fakeReservationRepo) Update(_ context.Context, res *reservation.Reservation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.reservations[res.ID()]
	if !ok || stored.Version() != res.Version()-1 {
		return domain.NewConflictError("reservation was modified by another transaction")
	}
	r.db.reservations[res.ID()] = cloneReservation(res)
	return nil
}

// --- Attendance ---

type fakeRecordRepo struct {
	db *memDB
	// beforeSave runs inside Save; tests use it to simulate a concurrent insert.
	beforeSave func(r *attendance.Record) error
}

func (r *fakeRecordRepo) FindByEmployeeAndDate(_ context.Context, employeeID uuid.UUID, date time.Time) (*attendance.Record, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, rec := range r.db.records {
		if rec.EmployeeID() == employeeID && rec.WorkDate().Equal(date) {
			return cloneRecord(rec), nil
		}
	}
	return nil, domain.NewNotFoundError("attendance record", date.Format(time.DateOnly))
}

func (r *fakeRecordRepo) list(match func(*attendance.Record) bool) []*attendance.Record {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*attendance.Record
	for _, rec := range r.db.records {
		if match(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate().After(out[j].WorkDate()) })
	return out
}

func (r *fakeRecordRepo) ListByEmployee(_ context.Context, employeeID uuid.UUID, limit int) ([]*attendance.Record, error) {
	out := r.list(func(rec *attendance.Record) bool { return rec.EmployeeID() == employeeID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRecordRepo) ListByDate(_ context.Context, date time.Time) ([]*attendance.Record, error) {
	return r.list(func(rec *attendance.Record) bool { return rec.WorkDate().Equal(date) }), nil
}

func (r *fakeRecordRepo) CountOpenOnDate(_ context.Context, date time.Time) (int64, error) {
	return int64(len(r.list(func(rec *attendance.Record) bool {
		return rec.WorkDate().Equal(date) && rec.IsOpen()
	}))), nil
}

func (r *fakeRecordRepo) Save(_ context.Context, rec *attendance.Record) error {
	if r.beforeSave != nil {
		if err := r.beforeSave(rec); err != nil {
			return err
		}
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.records {
		if existing.EmployeeID() == rec.EmployeeID() && existing.WorkDate().Equal(rec.WorkDate()) {
			return domain.NewAlreadyCompleteError("attendance already recorded for today")
		}
	}
	r.db.records[rec.ID()] = cloneRecord(rec)
	return nil
}

func (r *fakeRecordRepo) Update(_ context.Context, rec *attendance.Record) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.records[rec.ID()] = cloneRecord(rec)
	return nil
}

// --- Promotions ---

type fakePromotionRepo struct{ db *memDB }

func (r *fakePromotionRepo) Save(_ context.Context, p *promoDomain.Promotion) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.promotions[p.ID()] = p
	return nil
}

func (r *fakePromotionRepo) FindValidAt(_ context.Context, at time.Time) ([]*promoDomain.Promotion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*promoDomain.Promotion
	for _, p := range r.db.promotions {
		if p.IsValidAt(at) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// --- Collaborators ---

// plainHasher is a fast reversible PasswordHasher for tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "plain$" + plain, nil }
func (plainHasher) Verify(plain, encoded string) bool { return encoded == "plain$"+plain }

var _ adapter.PasswordHasher = plainHasher{}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(id uuid.UUID, _, role string) (string, error) {
	return "token-" + role + "-" + id.String(), nil
}
func (fakeTokens) AccessTTL() time.Duration { return time.Hour }

type publishedEvent struct {
	Type    string
	Subject string
	Data    interface{}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, subject string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Subject: subject, Data: data})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// --- Fixture ---

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db           *memDB
	clock        *domain.FixedClock
	events       *recordingPublisher
	persons      *fakePersonRepo
	reservations *fakeReservationRepo
	records      *fakeRecordRepo
	promotions   *fakePromotionRepo

	identity    *IdentityService
	reservation *ReservationService
	attendance  *AttendanceService
	promotion   *PromotionService
	report      *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newMemDB()
	f := &fixture{
		db:           db,
		clock:        &domain.FixedClock{T: testNow},
		events:       &recordingPublisher{},
		persons:      &fakePersonRepo{db: db},
		reservations: &fakeReservationRepo{db: db},
		records:      &fakeRecordRepo{db: db},
		promotions:   &fakePromotionRepo{db: db},
	}
	tx := &fakeTx{db: db}
	logger := zap.NewNop()

	f.identity = NewIdentityService(f.persons, plainHasher{}, fakeTokens{}, tx, f.clock, f.events, nil, logger)
	f.reservation = NewReservationService(f.reservations, f.persons, plainHasher{}, tx, f.clock, f.events, nil, logger)
	f.attendance = NewAttendanceService(f.records, f.persons, tx, f.clock, f.events, nil, 0, logger)
	f.promotion = NewPromotionService(f.promotions, f.persons, f.clock, logger)
	f.report = NewReportService(f.persons, f.reservations, f.records, f.clock, logger)
	return f
}

var nidSeq = 10000000000

// person provisions an active person with the given role and returns it.
func (f *fixture) person(t *testing.T, name string, role identity.Role) *PersonDTO {
	t.Helper()
	nidSeq++
	dto, err := f.identity.Provision(context.Background(), RegisterRequest{
		Name:       name,
		Email:      uuid.NewString()[:8] + "@example.com",
		NationalID: formatNID(nidSeq),
		Password:   "secret123",
	}, role)
	require.NoError(t, err)
	return dto
}

func formatNID(n int) string {
	s := decimal.NewFromInt(int64(n)).String()
	return s[0:3] + "." + s[3:6] + "." + s[6:9] + "-" + s[9:11]
}

func (f *fixture) countPersons() int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.persons)
}

func (f *fixture) countReservations() int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.reservations)
}
