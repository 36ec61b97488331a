package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"rideshare/internal/domain/models"
	"rideshare/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking receipts as PDF.
type DocsService struct {
	Bookings  BookingService
	RequestID string
	Loader    func(context.Context, int64) (models.Receipt, error)
}

func (s DocsService) GenerateReceipt(ctx context.Context, bookingID int64) ([]byte, string, error) {
	r, err := s.loadReceipt(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", fmt.Sprintf("booking_id=%d", bookingID))
	return BuildReceiptPDF(r, time.Now())
}

func (s DocsService) loadReceipt(ctx context.Context, bookingID int64) (models.Receipt, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	return s.Bookings.GetReceipt(ctx, bookingID)
}

// BuildReceiptPDF lays out one receipt page; issuedAt is printed in the header.
func BuildReceiptPDF(r models.Receipt, issuedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Receipt No : RCP-%d", r.Booking.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+utils.FormatDateTime(issuedAt))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Booking")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID : #%d", r.Booking.ID),
		fmt.Sprintf("Seat       : %d", r.Booking.Seat),
		fmt.Sprintf("Status     : %s", r.Booking.Status),
		fmt.Sprintf("Booked at  : %s", utils.FormatDateTime(r.Booking.CreatedAt)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	if t := r.Trip; t != nil {
		lines = []string{
			fmt.Sprintf("Trip ID    : #%d", t.ID),
			fmt.Sprintf("Route      : %s -> %s", safe(t.DepartureLocation, "-"), safe(t.ArrivalLocation, "-")),
			fmt.Sprintf("Departure  : %s", utils.FormatDateTime(t.DepartureTime)),
			fmt.Sprintf("Arrival    : %s", utils.FormatDateTime(t.ArrivalTime)),
			fmt.Sprintf("Vehicle ID : #%d", t.VehicleID),
		}
		for _, l := range lines {
			pdf.Cell(0, 7, l)
			pdf.Ln(7)
		}
	} else {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, "Trip details are no longer available.", "", "", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatMoney(r.Booking.Price))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("RECEIPT_%d.pdf", r.Booking.ID), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
