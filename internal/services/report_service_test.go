package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"workforce_backend/internal/calendar"
	"workforce_backend/internal/models"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reportFixture struct {
	attendance *memAttendanceRepo
	employees  *memEmployeeRepo
	cache      *memCache
	clock      *calendar.FixedClock
	svc        ReportService
}

func newReportFixture(now time.Time) *reportFixture {
	f := &reportFixture{
		attendance: newMemAttendanceRepo(),
		employees:  newMemEmployeeRepo(),
		cache:      newMemCache(),
		clock:      calendar.NewFixedClock(now),
	}
	f.svc = NewReportService(f.attendance, f.employees, f.cache, time.Hour, calendar.IST(), f.clock)
	return f
}

func TestMyMonthlyReportPastMonth(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 12, 5, 10, 0))
	emp := primitive.NewObjectID()
	for _, d := range []int{3, 4, 5, 28} {
		f.attendance.seed(emp, ist(2025, 11, d, 0, 0), 8)
	}
	f.attendance.seed(emp, ist(2025, 12, 1, 0, 0), 8) // next month

	report, err := f.svc.MyMonthlyReport(ctx, emp, "2025-11", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := models.MonthlyStats{Present: 4, Absent: 26, Ongoing: 0, TotalDays: 30}
	if report.Stats != want {
		t.Errorf("stats = %+v, want %+v", report.Stats, want)
	}
	if report.Pagination.TotalRecords != 4 || report.Pagination.TotalPages != 2 {
		t.Errorf("pagination = %+v", report.Pagination)
	}
	if len(report.AttendanceRecords) != 2 || report.AttendanceRecords[0].Date != "2025-11-28" {
		t.Errorf("records = %+v", report.AttendanceRecords)
	}
}

func TestMyMonthlyReportCurrentMonth(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 13, 10, 0))
	emp := primitive.NewObjectID()
	f.attendance.seed(emp, ist(2025, 11, 1, 0, 0), 8)
	f.attendance.seed(emp, ist(2025, 11, 13, 0, 0), 3)

	report, err := f.svc.MyMonthlyReport(ctx, emp, "2025-11", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	s := report.Stats
	if s.Present != 2 || s.Absent != 11 || s.Ongoing != 17 {
		t.Errorf("stats = %+v", s)
	}
	if s.Present+s.Absent+s.Ongoing != s.TotalDays {
		t.Errorf("classification does not cover the month: %+v", s)
	}
}

func TestMyMonthlyReportClassifiesBeyondPage(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 12, 5, 10, 0))
	emp := primitive.NewObjectID()
	for d := 1; d <= 12; d++ {
		f.attendance.seed(emp, ist(2025, 11, d, 0, 0), 8)
	}
	report, err := f.svc.MyMonthlyReport(ctx, emp, "2025-11", 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if report.Stats.Present != 12 {
		t.Errorf("present = %d, want 12 regardless of page", report.Stats.Present)
	}
	if len(report.AttendanceRecords) != 5 || report.AttendanceRecords[0].Date != "2025-11-07" {
		t.Errorf("page 2 = %+v", report.AttendanceRecords)
	}
}

func TestMyMonthlyReportRejectsMonth(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 13, 10, 0))
	for _, m := range []string{"", "2025-13", "2025-00", "2025-1", "25-11", "2025/11"} {
		if _, err := f.svc.MyMonthlyReport(ctx, primitive.NewObjectID(), m, 1, 10); !errors.Is(err, ErrInvalidMonthFormat) {
			t.Errorf("month %q: err = %v, want ErrInvalidMonthFormat", m, err)
		}
	}
	if f.attendance.findCalls != 0 {
		t.Errorf("queries executed for invalid months: %d", f.attendance.findCalls)
	}
}

func TestAdminMonthlySummaryScenario(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 20, 10, 0))
	dept := primitive.NewObjectID()
	f.employees.departments[dept] = "Engineering"
	alice := f.employees.add("alice", &dept)
	bob := f.employees.add("bob", nil)

	for _, d := range []int{3, 4, 5, 6, 7} {
		f.attendance.seed(alice.ID, ist(2025, 11, d, 0, 0), 8)
	}
	f.attendance.seed(alice.ID, ist(2025, 10, 31, 0, 0), 8) // previous month

	summary, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Month: "2025-11", Page: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Month != "2025-11" || summary.MonthName != "November" || summary.Year != 2025 {
		t.Errorf("header = %s %s %d", summary.Month, summary.MonthName, summary.Year)
	}
	if summary.Pagination.TotalEmployees != 2 || summary.Pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v", summary.Pagination)
	}
	rows := map[primitive.ObjectID]models.EmployeeMonthlySummary{}
	for _, r := range summary.MonthlySummary {
		rows[r.EmployeeID] = r
	}
	a := rows[alice.ID]
	if a.PresentDays != 5 || a.TotalWorkingHours != 40 || a.AbsentDays != 15 || a.Department != "Engineering" {
		t.Errorf("alice = %+v", a)
	}
	b := rows[bob.ID]
	if b.PresentDays != 0 || b.AbsentDays != 20 || b.Department != "-" || b.Position != "-" {
		t.Errorf("bob = %+v", b)
	}
}

func TestAdminMonthlySummaryElapsedDays(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 20, 10, 0))
	f.employees.add("carol", nil)

	tests := []struct {
		month      string
		wantAbsent int
	}{
		{"2025-10", 31},
		{"2025-11", 20},
		{"2025-12", 31},
		{"2024-02", 29},
	}
	for _, tt := range tests {
		s, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Month: tt.month})
		if err != nil {
			t.Fatalf("%s: %v", tt.month, err)
		}
		if got := s.MonthlySummary[0].AbsentDays; got != tt.wantAbsent {
			t.Errorf("%s: absent = %d, want %d", tt.month, got, tt.wantAbsent)
		}
	}
}

func TestAdminMonthlySummaryDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 20, 10, 0))

	s, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Month != "2025-11" || s.Pagination.Page != 1 || s.Pagination.Limit != 10 {
		t.Errorf("defaults = %s %+v", s.Month, s.Pagination)
	}
	if s.MonthlySummary == nil {
		t.Error("monthlySummary should be an empty list, not null")
	}

	if _, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Month: "2025-13"}); !errors.Is(err, ErrInvalidMonthFormat) {
		t.Errorf("bad month: %v", err)
	}
	if _, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Department: "xyz"}); !errors.Is(err, ErrInvalidDepartmentID) {
		t.Errorf("bad department: %v", err)
	}
}

func TestAdminMonthlySummaryDepartmentFilter(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 20, 10, 0))
	dept := primitive.NewObjectID()
	f.employees.add("dave", &dept)
	f.employees.add("erin", nil)

	s, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Department: dept.Hex()})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.MonthlySummary) != 1 || s.MonthlySummary[0].Name != "dave" {
		t.Errorf("rows = %+v", s.MonthlySummary)
	}
}

func TestAdminMonthlySummaryCachesPastMonthsOnly(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 20, 10, 0))
	emp := f.employees.add("frank", nil)
	f.attendance.seed(emp.ID, ist(2025, 10, 2, 0, 0), 8)

	first, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Month: "2025-10"})
	if err != nil {
		t.Fatal(err)
	}
	f.attendance.seed(emp.ID, ist(2025, 10, 3, 0, 0), 8)
	second, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Month: "2025-10"})
	if err != nil {
		t.Fatal(err)
	}
	if f.cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", f.cache.sets)
	}
	if second.MonthlySummary[0].PresentDays != first.MonthlySummary[0].PresentDays {
		t.Errorf("second call should be served from cache")
	}

	if _, err := f.svc.AdminMonthlySummary(ctx, AdminMonthlyQuery{Month: "2025-11"}); err != nil {
		t.Fatal(err)
	}
	if f.cache.sets != 1 {
		t.Errorf("current month must not be cached, sets = %d", f.cache.sets)
	}
}

func TestAdminDetailReport(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 20, 10, 0))
	dept := primitive.NewObjectID()
	f.employees.departments[dept] = "Sales"
	gina := f.employees.add("gina", &dept)
	hank := f.employees.add("hank", nil)
	orphan := primitive.NewObjectID()

	out := ist(2025, 11, 13, 17, 0).UTC()
	f.attendance.seed(gina.ID, ist(2025, 11, 13, 0, 0), 8, models.Session{CheckIn: ist(2025, 11, 13, 9, 0).UTC(), CheckOut: &out, Duration: 8})
	f.attendance.seed(gina.ID, ist(2025, 11, 14, 0, 0), 7)
	f.attendance.seed(hank.ID, ist(2025, 11, 13, 0, 0), 6)
	f.attendance.seed(orphan, ist(2025, 11, 13, 0, 0), 5)

	t.Run("date filter", func(t *testing.T) {
		r, err := f.svc.AdminDetailReport(ctx, AdminDetailQuery{Date: "2025-11-13"})
		if err != nil {
			t.Fatal(err)
		}
		if r.Pagination.TotalRecords != 3 || *r.FilterDate != "2025-11-13" {
			t.Errorf("report = %+v", r.Pagination)
		}
		for _, rec := range r.AttendanceRecords {
			if rec.Date != "2025-11-13" {
				t.Errorf("date = %q", rec.Date)
			}
			if rec.Employee.ID == nil && rec.Employee.Name != nil {
				t.Errorf("orphan employee should be all null: %+v", rec.Employee)
			}
		}
	})

	t.Run("employee overrides department", func(t *testing.T) {
		r, err := f.svc.AdminDetailReport(ctx, AdminDetailQuery{EmployeeID: hank.ID.Hex(), Department: dept.Hex()})
		if err != nil {
			t.Fatal(err)
		}
		if len(r.AttendanceRecords) != 1 || *r.AttendanceRecords[0].Employee.Name != "hank" {
			t.Errorf("records = %+v", r.AttendanceRecords)
		}
		if r.AttendanceRecords[0].Employee.Department != nil {
			t.Errorf("hank has no department, got %v", *r.AttendanceRecords[0].Employee.Department)
		}
	})

	t.Run("department", func(t *testing.T) {
		r, err := f.svc.AdminDetailReport(ctx, AdminDetailQuery{Department: dept.Hex(), Page: 1, Limit: 1})
		if err != nil {
			t.Fatal(err)
		}
		if r.Pagination.TotalRecords != 2 || r.Pagination.TotalPages != 2 || len(r.AttendanceRecords) != 1 {
			t.Errorf("pagination = %+v, records = %d", r.Pagination, len(r.AttendanceRecords))
		}
		rec := r.AttendanceRecords[0]
		if rec.Date != "2025-11-14" || *rec.Employee.Department != "Sales" {
			t.Errorf("newest first expected, got %+v", rec)
		}
	})

	t.Run("empty department", func(t *testing.T) {
		r, err := f.svc.AdminDetailReport(ctx, AdminDetailQuery{Department: primitive.NewObjectID().Hex(), Page: 3, Limit: 5})
		if err != nil {
			t.Fatal(err)
		}
		if r.Message != NoDepartmentEmployeesMessage {
			t.Errorf("message = %q", r.Message)
		}
		want := models.Pagination{Page: 3, Limit: 5}
		if r.Pagination != want || len(r.AttendanceRecords) != 0 || r.AttendanceRecords == nil {
			t.Errorf("empty result = %+v", r)
		}
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			q    AdminDetailQuery
			want error
		}{
			{AdminDetailQuery{Date: "2025-02-30"}, ErrInvalidDateFormat},
			{AdminDetailQuery{Date: "13-11-2025"}, ErrInvalidDateFormat},
			{AdminDetailQuery{EmployeeID: "nope"}, ErrInvalidEmployeeID},
			{AdminDetailQuery{Department: "nope"}, ErrInvalidDepartmentID},
		}
		for _, c := range cases {
			if _, err := f.svc.AdminDetailReport(ctx, c.q); !errors.Is(err, c.want) {
				t.Errorf("%+v: err = %v, want %v", c.q, err, c.want)
			}
		}
		if !errors.Is(ErrInvalidEmployeeID, ErrInvalidObjectID) || !errors.Is(ErrInvalidDepartmentID, ErrInvalidObjectID) {
			t.Error("id errors should wrap ErrInvalidObjectID")
		}
	})
}

func TestExportMonthlySummary(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 11, 20, 10, 0))
	emp := f.employees.add("ivy", nil)
	f.attendance.seed(emp.ID, ist(2025, 11, 3, 0, 0), 7.5)
	f.employees.add("jack", nil)

	export, err := f.svc.ExportMonthlySummary(ctx, "2025-11", "")
	if err != nil {
		t.Fatal(err)
	}
	if export.Filename != "attendance_summary_2025-11.xlsx" {
		t.Errorf("filename = %q", export.Filename)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(export.Content))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(summarySheet)
	if err != nil {
		t.Fatal(err)
	}
	header := -1
	for i, r := range rows {
		if len(r) > 0 && r[0] == "Name" {
			header = i
			break
		}
	}
	if header < 0 || len(rows) != header+3 {
		t.Fatalf("expected header plus two employee rows, got %v", rows)
	}
	ivy := rows[header+1]
	if len(ivy) != 7 || ivy[0] != "ivy" || ivy[4] != "1" || ivy[6] != "7.5" {
		t.Errorf("ivy row = %v", ivy)
	}

	if _, err := f.svc.ExportMonthlySummary(ctx, "2025-13", ""); !errors.Is(err, ErrInvalidMonthFormat) {
		t.Errorf("bad month: %v", err)
	}
}

func TestExportMyMonthlyPDF(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(ist(2025, 12, 5, 10, 0))
	emp := f.employees.add("ivy", nil)
	for _, d := range []int{3, 4} {
		f.attendance.seed(emp.ID, ist(2025, 11, d, 0, 0), 7.5)
	}

	export, err := f.svc.ExportMyMonthlyPDF(ctx, emp.ID, "2025-11")
	if err != nil {
		t.Fatal(err)
	}
	if export.Filename != "attendance_2025-11.pdf" {
		t.Errorf("filename = %q", export.Filename)
	}
	if !bytes.HasPrefix(export.Content, []byte("%PDF-")) {
		t.Errorf("content does not look like a pdf: %q", export.Content[:min(len(export.Content), 8)])
	}

	if _, err := f.svc.ExportMyMonthlyPDF(ctx, primitive.NewObjectID(), "2025-11"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("unknown employee: %v", err)
	}
	if _, err := f.svc.ExportMyMonthlyPDF(ctx, emp.ID, "11-2025"); !errors.Is(err, ErrInvalidMonthFormat) {
		t.Errorf("bad month: %v", err)
	}
}

func TestBuildMonthlyWorkbookLayout(t *testing.T) {
	content, err := buildMonthlyWorkbook("Attendance summary November 2025", []models.EmployeeMonthlySummary{
		{Name: "ivy", Email: "ivy@example.com", Department: "-", Position: "-", PresentDays: 1, AbsentDays: 19, TotalWorkingHours: 7.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer wb.Close()

	if title, _ := wb.GetCellValue(summarySheet, "A1"); title != "Attendance summary November 2025" {
		t.Errorf("title = %q", title)
	}
	merged, err := wb.GetMergeCells(summarySheet)
	if err != nil || len(merged) != 1 || merged[0].GetStartAxis() != "A1" || merged[0].GetEndAxis() != "G1" {
		t.Errorf("merged cells = %v (%v)", merged, err)
	}
	if width, err := wb.GetColWidth(summarySheet, "A"); err != nil || width != 28 {
		t.Errorf("column A width = %v (%v)", width, err)
	}
	if width, err := wb.GetColWidth(summarySheet, "G"); err != nil || width != 16 {
		t.Errorf("column G width = %v (%v)", width, err)
	}
	if styleID, err := wb.GetCellStyle(summarySheet, "A3"); err != nil || styleID == 0 {
		t.Errorf("header style = %d (%v)", styleID, err)
	}
}
