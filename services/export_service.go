package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"hotel-platform/models"
	"hotel-platform/utils"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const bookingSheet = "Bookings"

var bookingHeaders = []string{
	"ID", "Branch", "Room", "Room Type", "Customer", "Check-In", "Check-Out",
	"Nights", "Total Amount", "Status", "Created At",
}

type ExportService struct {
	DB *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{DB: db}
}

// ExportFilter selects bookings whose stay intersects [From, To). Zero
// bounds are open.
type ExportFilter struct {
	BranchID *uint
	From     time.Time
	To       time.Time
}

func (s *ExportService) BookingsXLSX(ctx context.Context, f ExportFilter) ([]byte, error) {
	q := s.DB.WithContext(ctx).Preload("Room").Preload("Branch").Order("check_in, id")
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if !f.To.IsZero() {
		q = q.Where("check_in < ?", f.To)
	}
	if !f.From.IsZero() {
		q = q.Where("check_out > ?", f.From)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("load bookings for export: %w", err)
	}
	return BookingWorkbook(bookings)
}

// BookingWorkbook renders bookings into a single-sheet XLSX document.
func BookingWorkbook(bookings []models.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bookingSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, h := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(bookingSheet, cell, h)
		f.SetCellStyle(bookingSheet, cell, cell, header)
	}

	for i, b := range bookings {
		row := i + 2
		branch, room, roomType := "", "", ""
		if b.Branch != nil {
			branch = b.Branch.Name
		}
		if b.Room != nil {
			room = b.Room.RoomNumber
			roomType = b.Room.Type
		}
		stay := b.Stay()
		values := []interface{}{
			b.ID, branch, room, roomType, b.CustomerName,
			utils.FormatDate(stay.Start), utils.FormatDate(stay.End),
			stay.Nights(), b.TotalAmount, b.Status,
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(bookingSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	f.SetColWidth(bookingSheet, "B", "E", 20)
	f.SetPanes(bookingSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
