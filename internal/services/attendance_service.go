package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workforce_backend/internal/calendar"
	"workforce_backend/internal/models"
	"workforce_backend/internal/repositories"
	"workforce_backend/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Custom Service Errors for Attendance ---
var (
	ErrAlreadyCheckedIn    = errors.New("employee is already checked in")
	ErrNotCheckedIn        = errors.New("employee is not currently checked in")
	ErrNoRecordForToday    = errors.New("no check-in record found for today")
	ErrInvalidSessionRange = errors.New("check-out must be later than check-in")
	ErrConcurrentUpdate    = errors.New("attendance was updated concurrently, please retry")
)

const maxPunchAttempts = 5

// --- Attendance DTOs ---

// SessionView is a stored session plus its civil-zone display times.
type SessionView struct {
	ID          primitive.ObjectID `json:"_id"`
	CheckIn     time.Time          `json:"checkIn"`
	CheckOut    *time.Time         `json:"checkOut"`
	Duration    float64            `json:"duration"`
	CheckInIST  *string            `json:"checkIn_ist"`
	CheckOutIST *string            `json:"checkOut_ist"`
}

// AttendanceView is an AttendanceRecord with its day key and display times.
type AttendanceView struct {
	ID           primitive.ObjectID `json:"_id"`
	Employee     primitive.ObjectID `json:"employee"`
	Date         time.Time          `json:"date"`
	DateUTC      time.Time          `json:"date_utc"`
	DateIST      string             `json:"date_ist"`
	Sessions     []SessionView      `json:"sessions"`
	WorkingHours float64            `json:"working_hours"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// DailyHours is one row of the weekly summary.
type DailyHours struct {
	DateUTC     time.Time `json:"date_utc"`
	DateIST     string    `json:"date_ist"`
	HoursWorked float64   `json:"hoursWorked"`
}

// --- AttendanceService Interface ---
type AttendanceService interface {
	CheckIn(ctx context.Context, employeeID primitive.ObjectID) (*AttendanceView, error)
	CheckOut(ctx context.Context, employeeID primitive.ObjectID) (*AttendanceView, error)
	// GetToday returns nil without error when nothing was punched today.
	GetToday(ctx context.Context, employeeID primitive.ObjectID) (*AttendanceView, error)
	ListMine(ctx context.Context, employeeID primitive.ObjectID) ([]AttendanceView, error)
	WeeklySummary(ctx context.Context, employeeID primitive.ObjectID) ([]DailyHours, error)
}

// --- attendanceService Implementation ---
type attendanceService struct {
	repo  repositories.AttendanceRepository
	cal   *calendar.Normalizer
	clock calendar.Clock
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(repo repositories.AttendanceRepository, cal *calendar.Normalizer, clock calendar.Clock) AttendanceService {
	return &attendanceService{repo: repo, cal: cal, clock: clock}
}

func (s *attendanceService) CheckIn(ctx context.Context, employeeID primitive.ObjectID) (*AttendanceView, error) {
	rec, err := s.punch(ctx, employeeID, true, openSession)
	if err != nil {
		return nil, err
	}
	view := toAttendanceView(s.cal, rec)
	return &view, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, employeeID primitive.ObjectID) (*AttendanceView, error) {
	rec, err := s.punch(ctx, employeeID, false, closeSession)
	if err != nil {
		return nil, err
	}
	view := toAttendanceView(s.cal, rec)
	return &view, nil
}

// punch applies one ledger operation to today's record with optimistic concurrency.
// The unique (employee, date) key turns a racing first punch into a retry against the
// winner's record, and the version check does the same for racing updates.
func (s *attendanceService) punch(
	ctx context.Context,
	employeeID primitive.ObjectID,
	createIfMissing bool,
	apply func(*models.AttendanceRecord, time.Time) error,
) (*models.AttendanceRecord, error) {
	for attempt := 1; attempt <= maxPunchAttempts; attempt++ {
		now := s.clock.Now().UTC()
		today := s.cal.DayStart(now)

		current, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, today)
		if errors.Is(err, repositories.ErrNotFound) {
			if !createIfMissing {
				return nil, ErrNoRecordForToday
			}
			rec := &models.AttendanceRecord{Employee: employeeID, Date: today}
			if err := apply(rec, now); err != nil {
				return nil, err
			}
			recomputeDurations(rec)
			if err := s.repo.Create(ctx, rec); err != nil {
				if errors.Is(err, repositories.ErrDuplicateKey) {
					utils.LogDebug("Concurrent first punch, retrying", map[string]interface{}{"employee": employeeID.Hex(), "attempt": attempt})
					continue
				}
				return nil, fmt.Errorf("creating attendance: %w", err)
			}
			return rec, nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading today's attendance: %w", err)
		}

		next := current.Clone()
		if err := apply(next, now); err != nil {
			return nil, err
		}
		recomputeDurations(next)
		if err := s.repo.UpdateSessions(ctx, next); err != nil {
			if errors.Is(err, repositories.ErrVersionConflict) {
				utils.LogDebug("Attendance version conflict, retrying", map[string]interface{}{"employee": employeeID.Hex(), "attempt": attempt})
				continue
			}
			return nil, fmt.Errorf("saving attendance: %w", err)
		}
		return next, nil
	}
	return nil, ErrConcurrentUpdate
}

func (s *attendanceService) GetToday(ctx context.Context, employeeID primitive.ObjectID) (*AttendanceView, error) {
	today := s.cal.DayStart(s.clock.Now())
	rec, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading today's attendance: %w", err)
	}
	view := toAttendanceView(s.cal, rec)
	return &view, nil
}

func (s *attendanceService) ListMine(ctx context.Context, employeeID primitive.ObjectID) ([]AttendanceView, error) {
	records, _, err := s.repo.Find(ctx, repositories.AttendanceFilter{EmployeeIDs: []primitive.ObjectID{employeeID}}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	views := make([]AttendanceView, 0, len(records))
	for i := range records {
		views = append(views, toAttendanceView(s.cal, &records[i]))
	}
	return views, nil
}

// WeeklySummary covers today and the six civil days before it, oldest first.
func (s *attendanceService) WeeklySummary(ctx context.Context, employeeID primitive.ObjectID) ([]DailyHours, error) {
	today := s.cal.DayStart(s.clock.Now())
	from := s.cal.AddDays(today, -6)
	to := s.cal.NextDayStart(today)

	records, _, err := s.repo.Find(ctx, repositories.AttendanceFilter{
		EmployeeIDs: []primitive.ObjectID{employeeID},
		From:        &from,
		To:          &to,
		Ascending:   true,
	}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("listing weekly attendance: %w", err)
	}

	hours := make(map[calendar.DayKey]float64, len(records))
	for _, r := range records {
		hours[s.cal.DayKey(r.Date)] += r.WorkingHours
	}

	summary := make([]DailyHours, 0, 7)
	for i := 0; i < 7; i++ {
		day := s.cal.AddDays(from, i)
		key := s.cal.DayKey(day)
		summary = append(summary, DailyHours{
			DateUTC:     day,
			DateIST:     key.String(),
			HoursWorked: utils.RoundHours(hours[key]),
		})
	}
	return summary, nil
}

func toAttendanceView(cal *calendar.Normalizer, rec *models.AttendanceRecord) AttendanceView {
	return AttendanceView{
		ID:           rec.ID,
		Employee:     rec.Employee,
		Date:         rec.Date,
		DateUTC:      rec.Date,
		DateIST:      cal.DayKey(rec.Date).String(),
		Sessions:     toSessionViews(cal, rec.Sessions),
		WorkingHours: rec.WorkingHours,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func toSessionViews(cal *calendar.Normalizer, sessions []models.Session) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		checkIn := cal.DisplayTime(s.CheckIn)
		v := SessionView{
			ID:         s.ID,
			CheckIn:    s.CheckIn,
			CheckOut:   s.CheckOut,
			Duration:   s.Duration,
			CheckInIST: &checkIn,
		}
		if s.CheckOut != nil {
			checkOut := cal.DisplayTime(*s.CheckOut)
			v.CheckOutIST = &checkOut
		}
		views = append(views, v)
	}
	return views
}
