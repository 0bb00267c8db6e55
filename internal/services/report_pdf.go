package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"workforce_backend/internal/repositories"
	"workforce_backend/pkg/utils"

	"github.com/jung-kurt/gofpdf"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PDFContentType = "application/pdf"

// ExportMyMonthlyPDF renders one employee's monthly attendance as a printable PDF.
func (s *reportService) ExportMyMonthlyPDF(ctx context.Context, employeeID primitive.ObjectID, month string) (*MonthlyExport, error) {
	report, err := s.MyMonthlyReport(ctx, employeeID, month, 1, utils.MaxLimit)
	if err != nil {
		return nil, err
	}
	emp, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("loading employee for pdf: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 8, "Name: "+emp.Name)
	pdf.Ln(8)
	pdf.Cell(40, 8, "Month: "+report.Month)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(90, 10, "Metric")
	pdf.Cell(90, 10, "Value")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	var totalHours float64
	for _, r := range report.AttendanceRecords {
		totalHours += r.WorkingHours
	}
	metrics := []struct{ label, value string }{
		{"Present days", strconv.Itoa(report.Stats.Present)},
		{"Absent days", strconv.Itoa(report.Stats.Absent)},
		{"Upcoming days", strconv.Itoa(report.Stats.Ongoing)},
		{"Days in month", strconv.Itoa(report.Stats.TotalDays)},
		{"Total working hours", strconv.FormatFloat(utils.RoundHours(totalHours), 'f', 2, 64)},
	}
	for _, m := range metrics {
		pdf.Cell(90, 8, m.label)
		pdf.Cell(90, 8, m.value)
		pdf.Ln(8)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(50, 8, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Sessions", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Hours", "1", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, r := range report.AttendanceRecords {
		pdf.CellFormat(50, 7, r.Date, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, strconv.Itoa(len(r.Sessions)), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, strconv.FormatFloat(r.WorkingHours, 'f', 2, 64), "1", 1, "", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 10, "Generated at "+s.clock.Now().In(s.cal.Location()).Format("02 January 2006 15:04"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return &MonthlyExport{
		Filename: fmt.Sprintf("attendance_%s.pdf", report.Month),
		Content:  buf.Bytes(),
	}, nil
}
