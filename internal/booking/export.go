package booking

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{
	"Booking ID", "Created", "Guest", "Email", "Hotel", "Rooms",
	"Check-in", "Check-out", "Guests", "Total", "Payment", "Payment Ref", "Special Requests",
}

// Export writes every booking, newest first, as an xlsx workbook.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	items, err := s.Store.ListAll(ctx)
	if err != nil {
		return err
	}
	f, err := workbook(items)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteTo(w)
	return err
}

func workbook(items []View) (*excelize.File, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, v := range items {
		rooms := make([]string, len(v.Rooms))
		for j, r := range v.Rooms {
			rooms[j] = fmt.Sprintf("%s (%s)", r.Type, r.Price.StringFixed(2))
		}
		ref := ""
		if v.PaymentRef != nil {
			ref = *v.PaymentRef
		}
		total, _ := v.TotalPrice.Float64()
		row := []any{
			v.ID, v.CreatedAt.UTC().Format(time.RFC3339), v.User.Name, v.User.Email, v.Hotel.Name,
			strings.Join(rooms, ", "), v.CheckIn.Format(time.DateOnly), v.CheckOut.Format(time.DateOnly),
			v.Guests, total, string(v.PaymentStatus), ref, v.SpecialRequests,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}
