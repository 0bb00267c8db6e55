package services

import (
	"context"
	"fmt"
	"strings"

	"workforce_backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	summarySheet    = "Monthly Summary"
)

// MonthlyExport is a rendered workbook ready to stream.
type MonthlyExport struct {
	Filename string
	Content  []byte
}

var summaryHeaders = []string{"Name", "Email", "Department", "Position", "Present Days", "Absent Days", "Total Working Hours"}

// ExportMonthlySummary renders the admin monthly summary for every matching employee as xlsx.
func (s *reportService) ExportMonthlySummary(ctx context.Context, month, department string) (*MonthlyExport, error) {
	now := s.clock.Now()
	m := s.cal.MonthOf(now)
	if strings.TrimSpace(month) != "" {
		parsed, err := s.parseMonth(month)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	dept, err := parseOptionalID(department, ErrInvalidDepartmentID)
	if err != nil {
		return nil, err
	}

	rows, _, err := s.monthlyRows(ctx, m, dept, now, 1, 0)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Attendance summary %s %d", m.Month.String(), m.Year)
	content, err := buildMonthlyWorkbook(title, rows)
	if err != nil {
		return nil, err
	}
	return &MonthlyExport{
		Filename: fmt.Sprintf("attendance_summary_%s.xlsx", m.String()),
		Content:  content,
	}, nil
}

func buildMonthlyWorkbook(title string, rows []models.EmployeeMonthlySummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(summaryHeaders))
	if err != nil {
		return nil, fmt.Errorf("resolving header range: %w", err)
	}
	if err := f.SetCellValue(summarySheet, "A1", title); err != nil {
		return nil, fmt.Errorf("writing title: %w", err)
	}
	if err := f.MergeCell(summarySheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merging title: %w", err)
	}

	header := make([]interface{}, len(summaryHeaders))
	for i, h := range summaryHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(summarySheet, "A3", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A3", lastCol+"3", headerStyle); err != nil {
		return nil, fmt.Errorf("styling header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, fmt.Errorf("locating row %d: %w", i+1, err)
		}
		values := []interface{}{r.Name, r.Email, r.Department, r.Position, r.PresentDays, r.AbsentDays, r.TotalWorkingHours}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{{"A", "B", 28}, {"C", "D", 20}, {"E", lastCol, 16}}
	for _, w := range widths {
		if err := f.SetColWidth(summarySheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("setting column width %s:%s: %w", w.from, w.to, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("rendering workbook: %w", err)
	}
	return buf.Bytes(), nil
}
