package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"workforce_backend/internal/calendar"
	"workforce_backend/internal/models"
	"workforce_backend/internal/repositories"
	"workforce_backend/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Custom Service Errors for Reports ---
var (
	ErrInvalidMonthFormat = errors.New("invalid month format, use YYYY-MM")
	ErrInvalidDateFormat  = errors.New("invalid date format, expect YYYY-MM-DD")
	ErrInvalidObjectID    = errors.New("invalid object id")

	ErrInvalidEmployeeID   = fmt.Errorf("%w: employeeId", ErrInvalidObjectID)
	ErrInvalidDepartmentID = fmt.Errorf("%w: department", ErrInvalidObjectID)
)

// NoDepartmentEmployeesMessage accompanies the empty detail report for a department without staff.
const NoDepartmentEmployeesMessage = "No employees found for the requested department"

// --- Report DTOs ---

type MyMonthlyReport struct {
	Month             string                 `json:"month"`
	Stats             models.MonthlyStats    `json:"stats"`
	Pagination        models.Pagination      `json:"pagination"`
	AttendanceRecords []models.MonthlyRecord `json:"attendanceRecords"`
}

type AdminMonthlyQuery struct {
	Month      string // optional, defaults to the current civil month
	Department string // optional department id
	Page       int
	Limit      int
}

type AdminMonthlySummary struct {
	Month          string                          `json:"month"`
	MonthName      string                          `json:"monthName"`
	Year           int                             `json:"year"`
	Pagination     models.EmployeePagination       `json:"pagination"`
	MonthlySummary []models.EmployeeMonthlySummary `json:"monthlySummary"`
}

type AdminDetailQuery struct {
	Date       string
	EmployeeID string
	Department string
	Page       int
	Limit      int
}

type AdminDetailReport struct {
	// Message is set for results that are empty by construction.
	Message           string                `json:"-"`
	FilterDate        *string               `json:"filterDate"`
	Pagination        models.Pagination     `json:"pagination"`
	AttendanceRecords []models.DetailRecord `json:"attendanceRecords"`
}

// --- ReportService Interface ---
type ReportService interface {
	MyMonthlyReport(ctx context.Context, employeeID primitive.ObjectID, month string, page, limit int) (*MyMonthlyReport, error)
	AdminMonthlySummary(ctx context.Context, q AdminMonthlyQuery) (*AdminMonthlySummary, error)
	AdminDetailReport(ctx context.Context, q AdminDetailQuery) (*AdminDetailReport, error)
	ExportMonthlySummary(ctx context.Context, month, department string) (*MonthlyExport, error)
	ExportMyMonthlyPDF(ctx context.Context, employeeID primitive.ObjectID, month string) (*MonthlyExport, error)
}

// --- reportService Implementation ---
type reportService struct {
	attendanceRepo repositories.AttendanceRepository
	employeeRepo   repositories.EmployeeRepository
	cache          ReportCache // optional
	cacheTTL       time.Duration
	cal            *calendar.Normalizer
	clock          calendar.Clock
}

// NewReportService creates a new instance of ReportService. cache may be nil.
func NewReportService(
	ar repositories.AttendanceRepository,
	er repositories.EmployeeRepository,
	cache ReportCache,
	cacheTTL time.Duration,
	cal *calendar.Normalizer,
	clock calendar.Clock,
) ReportService {
	return &reportService{
		attendanceRepo: ar,
		employeeRepo:   er,
		cache:          cache,
		cacheTTL:       cacheTTL,
		cal:            cal,
		clock:          clock,
	}
}

func (s *reportService) parseMonth(raw string) (calendar.Month, error) {
	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return calendar.Month{}, fmt.Errorf("%w: %q", ErrInvalidMonthFormat, raw)
	}
	return m, nil
}

func parseOptionalID(raw string, invalid error) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, invalid
	}
	return &id, nil
}

// MyMonthlyReport classifies every day of the month from all of the month's records;
// page and limit only slice the returned record list.
func (s *reportService) MyMonthlyReport(ctx context.Context, employeeID primitive.ObjectID, month string, page, limit int) (*MyMonthlyReport, error) {
	m, err := s.parseMonth(month)
	if err != nil {
		return nil, err
	}
	page, limit = utils.NormalizePagination(page, limit)
	from, to := s.cal.MonthRange(m)

	records, _, err := s.attendanceRepo.Find(ctx, repositories.AttendanceFilter{
		EmployeeIDs: []primitive.ObjectID{employeeID},
		From:        &from,
		To:          &to,
	}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("listing monthly attendance: %w", err)
	}

	attended := make(map[calendar.DayKey]bool, len(records))
	for _, r := range records {
		attended[s.cal.DayKey(r.Date)] = true
	}

	today := s.cal.DayKey(s.clock.Now())
	stats := models.MonthlyStats{TotalDays: m.Days()}
	for d := 1; d <= stats.TotalDays; d++ {
		key := m.Day(d)
		switch {
		case key.After(today):
			stats.Ongoing++
		case attended[key]:
			stats.Present++
		default:
			stats.Absent++
		}
	}

	total := int64(len(records))
	start := int(pageOffsetOf(page, limit))
	if start > len(records) {
		start = len(records)
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}

	pageRecords := make([]models.MonthlyRecord, 0, end-start)
	for _, r := range records[start:end] {
		pageRecords = append(pageRecords, models.MonthlyRecord{
			ID:           r.ID,
			Date:         s.cal.DayKey(r.Date).String(),
			WorkingHours: r.WorkingHours,
			Sessions:     r.Sessions,
		})
	}

	return &MyMonthlyReport{
		Month: m.String(),
		Stats: stats,
		Pagination: models.Pagination{
			Page:         page,
			Limit:        limit,
			TotalRecords: total,
			TotalPages:   utils.TotalPages(total, limit),
		},
		AttendanceRecords: pageRecords,
	}, nil
}

func pageOffsetOf(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}

// daysElapsed is how many days of m can count as absent as of now.
func (s *reportService) daysElapsed(m calendar.Month, now time.Time) int {
	current := s.cal.MonthOf(now)
	switch {
	case m == current:
		_, _, day := now.In(s.cal.Location()).Date()
		if day > m.Days() {
			return m.Days()
		}
		return day
	default:
		return m.Days()
	}
}

func (s *reportService) AdminMonthlySummary(ctx context.Context, q AdminMonthlyQuery) (*AdminMonthlySummary, error) {
	now := s.clock.Now()
	m := s.cal.MonthOf(now)
	if strings.TrimSpace(q.Month) != "" {
		parsed, err := s.parseMonth(q.Month)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	dept, err := parseOptionalID(q.Department, ErrInvalidDepartmentID)
	if err != nil {
		return nil, err
	}
	page, limit := utils.NormalizePagination(q.Page, q.Limit)

	cacheable := s.cache != nil && m.Before(s.cal.MonthOf(now))
	key := monthlySummaryCacheKey(m.String(), strings.TrimSpace(q.Department), page, limit)
	if cacheable {
		var cached AdminMonthlySummary
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			utils.LogWarn("Report cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		} else if hit {
			return &cached, nil
		}
	}

	rows, total, err := s.monthlyRows(ctx, m, dept, now, page, limit)
	if err != nil {
		return nil, err
	}
	summary := &AdminMonthlySummary{
		Month:     m.String(),
		MonthName: m.Month.String(),
		Year:      m.Year,
		Pagination: models.EmployeePagination{
			Page:           page,
			Limit:          limit,
			TotalEmployees: total,
			TotalPages:     utils.TotalPages(total, limit),
		},
		MonthlySummary: rows,
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			utils.LogWarn("Report cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return summary, nil
}

// monthlyRows joins the month's per-employee totals onto a page of employees.
// limit <= 0 returns every employee.
func (s *reportService) monthlyRows(ctx context.Context, m calendar.Month, dept *primitive.ObjectID, now time.Time, page, limit int) ([]models.EmployeeMonthlySummary, int64, error) {
	from, to := s.cal.MonthRange(m)

	profiles, total, err := s.employeeRepo.ListProfiles(ctx, dept, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing employees: %w", err)
	}
	if len(profiles) == 0 {
		return []models.EmployeeMonthlySummary{}, total, nil
	}

	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	totals, err := s.attendanceRepo.SummarizeByEmployee(ctx, from, to, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("summarizing attendance: %w", err)
	}
	byEmployee := make(map[primitive.ObjectID]models.EmployeeAttendanceTotals, len(totals))
	for _, t := range totals {
		byEmployee[t.EmployeeID] = t
	}

	elapsed := s.daysElapsed(m, now)
	rows := make([]models.EmployeeMonthlySummary, 0, len(profiles))
	for _, p := range profiles {
		t := byEmployee[p.ID]
		absent := elapsed - t.PresentDays
		if absent < 0 {
			absent = 0
		}
		rows = append(rows, models.EmployeeMonthlySummary{
			EmployeeID:        p.ID,
			Name:              p.Name,
			Email:             p.Email,
			Department:        orDash(p.Department),
			Position:          orDash(p.Position),
			PresentDays:       t.PresentDays,
			AbsentDays:        absent,
			TotalWorkingHours: utils.RoundHours(t.TotalWorkingHours),
		})
	}
	return rows, total, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// AdminDetailReport lists records newest first. An employeeId filter takes precedence over department.
func (s *reportService) AdminDetailReport(ctx context.Context, q AdminDetailQuery) (*AdminDetailReport, error) {
	page, limit := utils.NormalizePagination(q.Page, q.Limit)
	filter := repositories.AttendanceFilter{}

	var filterDate *string
	if date := strings.TrimSpace(q.Date); date != "" {
		start, err := s.cal.DayStartFromKey(date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDateFormat, date)
		}
		end := s.cal.NextDayStart(start)
		filter.From, filter.To = &start, &end
		filterDate = &date
	}

	employeeID, err := parseOptionalID(q.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}
	if employeeID != nil {
		filter.EmployeeIDs = []primitive.ObjectID{*employeeID}
	} else {
		dept, err := parseOptionalID(q.Department, ErrInvalidDepartmentID)
		if err != nil {
			return nil, err
		}
		if dept != nil {
			ids, err := s.employeeRepo.ListIDsByDepartment(ctx, *dept)
			if err != nil {
				return nil, fmt.Errorf("listing department employees: %w", err)
			}
			if len(ids) == 0 {
				return &AdminDetailReport{
					Message:           NoDepartmentEmployeesMessage,
					FilterDate:        filterDate,
					Pagination:        models.Pagination{Page: page, Limit: limit},
					AttendanceRecords: []models.DetailRecord{},
				}, nil
			}
			filter.EmployeeIDs = ids
		}
	}

	records, total, err := s.attendanceRepo.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("listing attendance details: %w", err)
	}

	owners := uniqueEmployees(records)
	profiles, err := s.employeeRepo.FindProfiles(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("resolving employees: %w", err)
	}

	rows := make([]models.DetailRecord, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.DetailRecord{
			ID:           r.ID,
			Employee:     detailEmployee(profiles, r.Employee),
			Date:         s.cal.DayKey(r.Date).String(),
			WorkingHours: r.WorkingHours,
			Sessions:     detailSessions(r.Sessions),
		})
	}

	return &AdminDetailReport{
		FilterDate: filterDate,
		Pagination: models.Pagination{
			Page:         page,
			Limit:        limit,
			TotalRecords: total,
			TotalPages:   utils.TotalPages(total, limit),
		},
		AttendanceRecords: rows,
	}, nil
}

func uniqueEmployees(records []models.AttendanceRecord) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(records))
	ids := make([]primitive.ObjectID, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Employee]; ok {
			continue
		}
		seen[r.Employee] = struct{}{}
		ids = append(ids, r.Employee)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids
}

// detailEmployee flattens a profile; fields stay null when the employee no longer exists.
func detailEmployee(profiles map[primitive.ObjectID]models.EmployeeProfile, id primitive.ObjectID) models.DetailEmployee {
	p, ok := profiles[id]
	if !ok {
		return models.DetailEmployee{}
	}
	out := models.DetailEmployee{ID: &p.ID, Name: &p.Name, Email: &p.Email}
	if p.Department != "" {
		dept := p.Department
		out.Department = &dept
	}
	return out
}

func detailSessions(sessions []models.Session) []models.DetailSession {
	out := make([]models.DetailSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, models.DetailSession{CheckIn: s.CheckIn, CheckOut: s.CheckOut, Duration: s.Duration})
	}
	return out
}
