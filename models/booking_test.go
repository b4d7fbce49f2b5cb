package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRangeOverlaps(t *testing.T) {
	base := DateRange{Start: day("2025-03-10"), End: day("2025-03-12")}

	cases := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"same range", base, true},
		{"ends on check-in day", DateRange{day("2025-03-08"), day("2025-03-10")}, false},
		{"starts on check-out day", DateRange{day("2025-03-12"), day("2025-03-14")}, false},
		{"starts inside", DateRange{day("2025-03-11"), day("2025-03-15")}, true},
		{"ends inside", DateRange{day("2025-03-05"), day("2025-03-11")}, true},
		{"contains", DateRange{day("2025-03-01"), day("2025-03-31")}, true},
		{"before", DateRange{day("2025-02-01"), day("2025-02-05")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestDateRangeValid(t *testing.T) {
	assert.True(t, DateRange{day("2025-01-01"), day("2025-01-02")}.Valid())
	assert.False(t, DateRange{day("2025-01-02"), day("2025-01-02")}.Valid())
	assert.False(t, DateRange{day("2025-01-03"), day("2025-01-02")}.Valid())
	assert.Equal(t, 3, DateRange{day("2025-01-01"), day("2025-01-04")}.Nights())
}

func TestBookingHoldsAndStay(t *testing.T) {
	b := Booking{
		CheckIn:  datatypes.Date(day("2025-05-01")),
		CheckOut: datatypes.Date(day("2025-05-03")),
		Status:   BookingConfirmed,
	}
	assert.True(t, b.Holds())
	assert.Equal(t, 2, b.Stay().Nights())

	b.Status = BookingCancelled
	assert.False(t, b.Holds())
}

func TestOrderItemBeforeSaveDerivesTotal(t *testing.T) {
	item := &OrderItem{Quantity: 3, PriceEach: 4.5, TotalPrice: 999}
	assert.NoError(t, item.BeforeSave(nil))
	assert.Equal(t, 13.5, item.TotalPrice)

	item = &OrderItem{Quantity: 3, PriceEach: 0.1}
	assert.NoError(t, item.BeforeSave(nil))
	assert.Equal(t, 0.3, item.TotalPrice)
}

func TestStatusSets(t *testing.T) {
	assert.True(t, IsRoomStatus(RoomMaintenance))
	assert.False(t, IsRoomStatus("Dirty"))
	assert.True(t, IsBookingStatus(BookingCheckedOut))
	assert.False(t, IsBookingStatus("confirmed"))
	assert.True(t, IsRole(RoleManager))
	assert.False(t, IsRole("root"))
	assert.True(t, IsMenuAvailability(MenuOutOfStock))
	assert.True(t, IsServiceStatus(ServiceInProgress))
	assert.True(t, IsOrderStatus(OrderServed))
}
