package reservation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayandpark/service-frontdesk/internal/domain"
)

var entry = time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)

func newActive(t *testing.T) *Reservation {
	t.Helper()
	r, err := NewReservation(Params{
		CustomerID:      uuid.New(),
		Kind:            KindLodging,
		Descriptors:     Descriptors{RoomNumber: " 101 "},
		BaseAmount:      decimal.RequireFromString("250"),
		DiscountPercent: decimal.RequireFromString("10"),
	}, entry)
	require.NoError(t, err)
	return r
}

func TestNewReservation(t *testing.T) {
	r := newActive(t)

	assert.Equal(t, StatusActive, r.Status())
	assert.Equal(t, entry, r.EntryAt())
	assert.Equal(t, "101", r.Descriptors().RoomNumber)
	assert.Equal(t, "225.00", r.FinalAmount().StringFixed(2))
	assert.Equal(t, int64(1), r.Version())
	assert.Nil(t, r.EmployeeID())
	assert.Nil(t, r.ActualExitAt())
}

func TestNewReservation_DescriptorsNotTiedToKind(t *testing.T) {
	r, err := NewReservation(Params{
		CustomerID:  uuid.New(),
		Kind:        KindLodging,
		Descriptors: Descriptors{PlateNumber: "abc1d23"},
		BaseAmount:  decimal.NewFromInt(35),
	}, entry)
	require.NoError(t, err)
	assert.Equal(t, "ABC1D23", r.Descriptors().PlateNumber)
	assert.Equal(t, "35.00", r.FinalAmount().StringFixed(2))
}

func TestNewReservation_Validation(t *testing.T) {
	past := entry.Add(-time.Hour)
	cases := map[string]Params{
		"no customer":       {Kind: KindParking, BaseAmount: decimal.NewFromInt(1)},
		"bad kind":          {CustomerID: uuid.New(), Kind: "SPA", BaseAmount: decimal.NewFromInt(1)},
		"negative base":     {CustomerID: uuid.New(), Kind: KindParking, BaseAmount: decimal.NewFromInt(-1)},
		"exit in past":      {CustomerID: uuid.New(), Kind: KindParking, BaseAmount: decimal.NewFromInt(1), ExpectedExit: &past},
		"discount over 100": {CustomerID: uuid.New(), Kind: KindLodging, BaseAmount: decimal.NewFromInt(250), DiscountPercent: decimal.NewFromInt(150)},
		"negative discount": {CustomerID: uuid.New(), Kind: KindLodging, BaseAmount: decimal.NewFromInt(250), DiscountPercent: decimal.NewFromInt(-20)},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewReservation(p, entry)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFinish(t *testing.T) {
	r := newActive(t)
	exit := entry.Add(26 * time.Hour)

	require.NoError(t, r.Finish(exit))
	assert.Equal(t, StatusFinished, r.Status())
	require.NotNil(t, r.ActualExitAt())
	assert.Equal(t, exit, *r.ActualExitAt())
	assert.Equal(t, int64(2), r.Version())

	assert.ErrorIs(t, r.Finish(exit), domain.ErrInvalidState)
	assert.ErrorIs(t, r.Cancel("late", exit), domain.ErrInvalidState)
}

func TestFinish_BeforeEntry(t *testing.T) {
	r := newActive(t)
	assert.ErrorIs(t, r.Finish(entry.Add(-time.Minute)), domain.ErrValidation)
	assert.Equal(t, StatusActive, r.Status())
}

func TestCancel(t *testing.T) {
	r := newActive(t)

	require.NoError(t, r.Cancel("guest no-show", entry.Add(time.Hour)))
	assert.Equal(t, StatusCancelled, r.Status())
	assert.Contains(t, r.Notes(), "guest no-show")
	assert.Nil(t, r.ActualExitAt())

	assert.ErrorIs(t, r.Finish(entry.Add(2*time.Hour)), domain.ErrInvalidState)
}

func TestParseServiceKind(t *testing.T) {
	k, err := ParseServiceKind("parking")
	require.NoError(t, err)
	assert.Equal(t, KindParking, k)

	_, err = ParseServiceKind("GARAGEM")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
