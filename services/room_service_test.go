package services

import (
	"context"
	"testing"

	"hotel-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func booked(roomID uint, in, out, status string) models.Booking {
	return models.Booking{
		RoomID:   roomID,
		CheckIn:  datatypes.Date(date(in)),
		CheckOut: datatypes.Date(date(out)),
		Status:   status,
	}
}

func TestFreeRooms(t *testing.T) {
	rooms := []models.Room{
		{ID: 1, RoomNumber: "103", Status: models.RoomAvailable},
		{ID: 2, RoomNumber: "101", Status: models.RoomAvailable},
		{ID: 3, RoomNumber: "102", Status: models.RoomMaintenance},
		{ID: 4, RoomNumber: "104", Status: models.RoomAvailable},
	}
	stay := models.DateRange{Start: date("2025-08-10"), End: date("2025-08-12")}
	bookings := []models.Booking{
		booked(1, "2025-08-11", "2025-08-13", models.BookingConfirmed),
		booked(2, "2025-08-12", "2025-08-15", models.BookingConfirmed), // starts on checkout day
		booked(4, "2025-08-09", "2025-08-11", models.BookingCancelled),
	}

	free := FreeRooms(rooms, bookings, stay)

	var numbers []string
	for _, r := range free {
		numbers = append(numbers, r.RoomNumber)
	}
	assert.Equal(t, []string{"101", "104"}, numbers)
}

func TestFreeRoomsBackToBackStays(t *testing.T) {
	rooms := []models.Room{{ID: 1, RoomNumber: "201", Status: models.RoomAvailable}}
	existing := []models.Booking{booked(1, "2025-09-01", "2025-09-05", models.BookingConfirmed)}

	before := models.DateRange{Start: date("2025-08-28"), End: date("2025-09-01")}
	after := models.DateRange{Start: date("2025-09-05"), End: date("2025-09-07")}
	inside := models.DateRange{Start: date("2025-09-04"), End: date("2025-09-06")}

	assert.Len(t, FreeRooms(rooms, existing, before), 1)
	assert.Len(t, FreeRooms(rooms, existing, after), 1)
	assert.Empty(t, FreeRooms(rooms, existing, inside))
}

func TestAvailableQueriesOverlapForBranchRooms(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRoomService(db)

	mock.ExpectQuery("SELECT \\* FROM `rooms` WHERE branch_id = \\? AND type = \\?").
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(1, "101", "Deluxe", 100.0, models.RoomAvailable, 1).
			AddRow(2, "102", "Deluxe", 100.0, models.RoomAvailable, 1))
	mock.ExpectQuery("SELECT `id`,`room_id`,`check_in`,`check_out`,`status` FROM `bookings` WHERE room_id IN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "check_in", "check_out", "status"}).
			AddRow(5, 2, date("2025-08-09"), date("2025-08-11"), models.BookingConfirmed))

	rooms, err := svc.Available(context.Background(), 1, "Deluxe",
		models.DateRange{Start: date("2025-08-10"), End: date("2025-08-12")})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].RoomNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailableRejectsInvertedRange(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRoomService(db)

	_, err := svc.Available(context.Background(), 1, "Deluxe",
		models.DateRange{Start: date("2025-08-12"), End: date("2025-08-12")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomUnknownBranch(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRoomService(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `branches`").WillReturnRows(countRow(0))

	_, err := svc.Create(context.Background(), CreateRoomInput{RoomNumber: "101", Type: "Deluxe", Price: 80, BranchID: 9})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomDuplicateNumberInBranch(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRoomService(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `branches`").WillReturnRows(countRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `rooms`").WillReturnError(&mysqlDup)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateRoomInput{RoomNumber: "101", Type: "Deluxe", Price: 80, BranchID: 1})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
