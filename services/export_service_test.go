package services

import (
	"bytes"
	"context"
	"testing"

	"hotel-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBookingsXLSX(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewExportService(db)
	branch := uint(1)

	mock.ExpectQuery("SELECT \\* FROM `bookings` WHERE branch_id = \\?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "check_in", "check_out", "total_amount", "status", "user_id", "room_id", "branch_id"}).
			AddRow(12, "Ann", date("2025-07-01"), date("2025-07-03"), 240.0, models.BookingConfirmed, 3, 7, 1))
	mock.ExpectQuery("SELECT \\* FROM `branches`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Main"))
	mock.ExpectQuery("SELECT \\* FROM `rooms`").
		WillReturnRows(roomRow(7, models.RoomAvailable, 1))

	data, err := svc.BookingsXLSX(context.Background(), ExportFilter{BranchID: &branch})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, bookingHeaders, rows[0])

	row := rows[1]
	require.GreaterOrEqual(t, len(row), 10)
	assert.Equal(t, "12", row[0])
	assert.Equal(t, "Main", row[1])
	assert.Equal(t, "101", row[2])
	assert.Equal(t, "Deluxe", row[3])
	assert.Equal(t, "Ann", row[4])
	assert.Equal(t, "2025-07-01", row[5])
	assert.Equal(t, "2025-07-03", row[6])
	assert.Equal(t, "2", row[7])
	assert.Equal(t, "240", row[8])
	assert.Equal(t, models.BookingConfirmed, row[9])
}

func TestBookingWorkbookEmpty(t *testing.T) {
	data, err := BookingWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, bookingHeaders, rows[0])
}
